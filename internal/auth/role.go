package auth

import (
	"strings"

	"github.com/aidevchallenge/backend/internal/model"
)

// Dashboard roles are granted by email prefix: staff accounts are
// provisioned with a role marker in the local part, everyone else is a
// student.
var rolePrefixes = map[string]model.Role{
	"teacher.": model.RoleTeacher,
	"admin.":   model.RoleAdmin,
	"manager.": model.RoleManager,
}

func RoleForEmail(email string) model.Role {
	local := strings.ToLower(email)
	if at := strings.IndexByte(local, '@'); at >= 0 {
		local = local[:at]
	}

	for prefix, role := range rolePrefixes {
		if strings.HasPrefix(local, prefix) {
			return role
		}
	}
	return model.RoleStudent
}
