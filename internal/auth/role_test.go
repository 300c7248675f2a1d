package auth

import (
	"testing"

	"github.com/aidevchallenge/backend/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestRoleForEmail(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		expected model.Role
	}{
		{
			name:     "plain email is a student",
			email:    "alice@university.edu",
			expected: model.RoleStudent,
		},
		{
			name:     "teacher prefix",
			email:    "teacher.bob@university.edu",
			expected: model.RoleTeacher,
		},
		{
			name:     "admin prefix",
			email:    "admin.carol@university.edu",
			expected: model.RoleAdmin,
		},
		{
			name:     "manager prefix",
			email:    "manager.dave@university.edu",
			expected: model.RoleManager,
		},
		{
			name:     "prefix match is case-insensitive",
			email:    "Teacher.Bob@university.edu",
			expected: model.RoleTeacher,
		},
		{
			name:     "marker in the domain does not count",
			email:    "alice@teacher.university.edu",
			expected: model.RoleStudent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RoleForEmail(tt.email))
		})
	}
}
