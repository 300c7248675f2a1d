package auth

import (
	"testing"
	"time"

	"github.com/aidevchallenge/backend/internal/model"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecretKey = "test-secret-key-for-predictable-results"

func TestGenerateToken(t *testing.T) {
	TokenSecretKey = testSecretKey

	tests := []struct {
		name      string
		role      model.Role
		profileID string
		duration  time.Duration
	}{
		{
			name:      "success: generate valid student token",
			role:      model.RoleStudent,
			profileID: "s1",
			duration:  time.Hour,
		},
		{
			name:      "success: generate valid admin token",
			role:      model.RoleAdmin,
			profileID: "a1",
			duration:  30 * time.Minute,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokenString, err := GenerateToken(tt.role, tt.profileID, tt.duration)
			require.NoError(t, err)
			require.NotEmpty(t, tokenString)

			claims, err := VerifyToken(tokenString)
			require.NoError(t, err)
			assert.Equal(t, tt.role, claims.Role)
			assert.Equal(t, tt.profileID, claims.Subject)
			assert.WithinDuration(t, time.Now().Add(tt.duration), claims.ExpiresAt.Time, time.Second*5)
		})
	}
}

func TestVerifyToken(t *testing.T) {
	TokenSecretKey = testSecretKey

	validToken, _ := GenerateToken(model.RoleStudent, "s1", time.Hour)

	expiredToken, _ := GenerateToken(model.RoleStudent, "s1", -time.Hour)

	claimsWithWrongMethod := TokenClaims{
		Role: model.RoleStudent,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tokenWithWrongMethod := jwt.NewWithClaims(jwt.SigningMethodNone, claimsWithWrongMethod)
	wrongMethodTokenString, _ := tokenWithWrongMethod.SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := []struct {
		name              string
		tokenString       string
		secretSetup       func()
		secretRollback    func()
		expectError       bool
		expectedErrorType error
		expectedRole      model.Role
	}{
		{
			name:         "success: verify valid token",
			tokenString:  validToken,
			expectedRole: model.RoleStudent,
		},
		{
			name:              "failure: verify expired token",
			tokenString:       expiredToken,
			expectError:       true,
			expectedErrorType: jwt.ErrTokenExpired,
		},
		{
			name:              "failure: verify token with invalid signature",
			tokenString:       validToken,
			secretSetup:       func() { TokenSecretKey = "different-secret-key" },
			secretRollback:    func() { TokenSecretKey = testSecretKey },
			expectError:       true,
			expectedErrorType: jwt.ErrTokenSignatureInvalid,
		},
		{
			name:              "failure: verify malformed token",
			tokenString:       "not-a-valid-jwt-token",
			expectError:       true,
			expectedErrorType: jwt.ErrTokenMalformed,
		},
		{
			name:              "failure: verify token with wrong signing method",
			tokenString:       wrongMethodTokenString,
			expectError:       true,
			expectedErrorType: ErrInvalidSigningMethod,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.secretSetup != nil {
				tt.secretSetup()
			}
			if tt.secretRollback != nil {
				defer tt.secretRollback()
			}

			claims, err := VerifyToken(tt.tokenString)

			if tt.expectError {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.expectedErrorType)
				assert.Nil(t, claims)
			} else {
				require.NoError(t, err)
				assert.NotNil(t, claims)
				assert.Equal(t, tt.expectedRole, claims.Role)
			}
		})
	}
}

func TestIsValidToken(t *testing.T) {
	TokenSecretKey = testSecretKey

	validManagerToken, _ := GenerateToken(model.RoleManager, "m1", time.Hour)
	expiredToken, _ := GenerateToken(model.RoleStudent, "s1", -time.Hour)

	tests := []struct {
		name         string
		tokenString  string
		expectedOK   bool
		expectedRole model.Role
	}{
		{
			name:         "success: valid token",
			tokenString:  validManagerToken,
			expectedOK:   true,
			expectedRole: model.RoleManager,
		},
		{
			name:        "failure: expired token",
			tokenString: expiredToken,
		},
		{
			name:        "failure: invalid token string",
			tokenString: "invalid-token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, ok := IsValidToken(tt.tokenString)
			assert.Equal(t, tt.expectedOK, ok)
			if tt.expectedOK {
				require.NotNil(t, claims)
				assert.Equal(t, tt.expectedRole, claims.Role)
			} else {
				assert.Nil(t, claims)
			}
		})
	}
}
