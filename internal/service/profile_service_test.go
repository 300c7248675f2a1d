package service

import (
	"context"
	"errors"
	"testing"

	"github.com/aidevchallenge/backend/internal/model"
	"github.com/aidevchallenge/backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestProfileService_Login(t *testing.T) {
	tests := []struct {
		name          string
		email         string
		displayName   string
		setupMocks    func(*MockProfileRepository)
		expectedError bool
		errorCode     ErrorCode
		expectedRole  model.Role
	}{
		{
			name:        "student role from plain email",
			email:       "alice@university.edu",
			displayName: "Alice",
			setupMocks: func(pr *MockProfileRepository) {
				pr.On("Upsert", mock.Anything, mock.MatchedBy(func(profile *repository.Profile) bool {
					return profile.Email == "alice@university.edu" && profile.Role == model.RoleStudent
				})).Return(nil)
			},
			expectedRole: model.RoleStudent,
		},
		{
			name:        "teacher role from email prefix",
			email:       "teacher.bob@university.edu",
			displayName: "Bob",
			setupMocks: func(pr *MockProfileRepository) {
				pr.On("Upsert", mock.Anything, mock.MatchedBy(func(profile *repository.Profile) bool {
					return profile.Role == model.RoleTeacher
				})).Return(nil)
			},
			expectedRole: model.RoleTeacher,
		},
		{
			name:        "upsert failure",
			email:       "alice@university.edu",
			displayName: "Alice",
			setupMocks: func(pr *MockProfileRepository) {
				pr.On("Upsert", mock.Anything, mock.Anything).Return(errors.New("db error"))
			},
			expectedError: true,
			errorCode:     ErrorCodeUnspecified,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockTx := new(MockTransactor)
			mockProfileRepo := new(MockProfileRepository)

			tt.setupMocks(mockProfileRepo)

			service := NewProfileService(mockTx).WithProfileRepo(mockProfileRepo)

			got, err := service.Login(context.Background(), tt.email, tt.displayName)

			if tt.expectedError {
				assert.NotNil(t, err)
				assert.Equal(t, tt.errorCode, err.Code)
				assert.Nil(t, got)
			} else {
				assert.Nil(t, err)
				assert.NotNil(t, got)
				assert.Equal(t, tt.expectedRole, got.Role)
				assert.Equal(t, tt.email, got.Email)
				assert.NotEmpty(t, got.ID)
			}

			mockProfileRepo.AssertExpectations(t)
		})
	}
}
