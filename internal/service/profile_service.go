package service

import (
	"context"

	"github.com/aidevchallenge/backend/internal/auth"
	"github.com/aidevchallenge/backend/internal/db"
	"github.com/aidevchallenge/backend/internal/model"
	"github.com/aidevchallenge/backend/internal/repository"
	"github.com/aidevchallenge/backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type ProfileService struct {
	tx db.Transactor

	profiles repository.ProfileRepository
}

func NewProfileService(tx db.Transactor) *ProfileService {
	return &ProfileService{tx: tx}
}

// Login upserts the profile for an authenticated email. The dashboard
// role comes from the email prefix, never from the request body. An
// existing profile keeps its id and team reference.
func (s *ProfileService) Login(ctx context.Context, email, displayName string) (*model.StudentProfile, *Error) {
	l := logger.FromContext(ctx)

	role := auth.RoleForEmail(email)
	l.Info("logging in profile", zap.String("email", email), zap.String("role", string(role)))

	repoProfile := &repository.Profile{
		ID:          uuid.NewString(),
		DisplayName: displayName,
		Email:       email,
		Role:        role,
	}

	if err := s.profiles.Upsert(ctx, repoProfile); err != nil {
		l.Error("failed to upsert profile", zap.String("email", email), zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to upsert profile")
	}

	return toModelProfile(repoProfile), nil
}

func (s *ProfileService) GetProfile(ctx context.Context, profileID string) (*model.StudentProfile, *Error) {
	l := logger.FromContext(ctx)
	l.Debug("getting profile", zap.String("profile_id", profileID))

	repoProfile, err := s.profiles.Get(ctx, profileID)
	if errors.Is(err, repository.ErrNotFound) {
		l.Warn("profile not found", zap.String("profile_id", profileID))
		return nil, NewError(ErrorCodeNotFound, "profile not found")
	}
	if err != nil {
		l.Error("failed to get profile", zap.String("profile_id", profileID), zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to get profile")
	}

	return toModelProfile(repoProfile), nil
}

func toModelProfile(repoProfile *repository.Profile) *model.StudentProfile {
	profile := &model.StudentProfile{
		ID:          repoProfile.ID,
		DisplayName: repoProfile.DisplayName,
		Email:       repoProfile.Email,
		Role:        repoProfile.Role,
		CreatedAt:   repoProfile.CreatedAt,
	}
	if repoProfile.TeamID != nil {
		profile.TeamID = *repoProfile.TeamID
	}
	if repoProfile.GroupName != nil {
		profile.GroupName = *repoProfile.GroupName
	}
	return profile
}

func (s *ProfileService) WithProfileRepo(r repository.ProfileRepository) *ProfileService {
	s.profiles = r
	return s
}
