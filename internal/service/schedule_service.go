package service

import (
	"context"

	"github.com/aidevchallenge/backend/internal/db"
	"github.com/aidevchallenge/backend/internal/model"
	"github.com/aidevchallenge/backend/internal/repository"
	"github.com/aidevchallenge/backend/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ScheduleService struct {
	tx db.Transactor

	activities repository.ActivityRepository
}

func NewScheduleService(tx db.Transactor) *ScheduleService {
	return &ScheduleService{tx: tx}
}

func (s *ScheduleService) AddActivity(ctx context.Context, activity *model.Activity) (*model.Activity, *Error) {
	l := logger.FromContext(ctx)
	l.Info("adding activity", zap.String("title", activity.Title))

	if !activity.EndsAt.After(activity.StartsAt) {
		return nil, NewError(ErrorCodeInvalidBody, "activity must end after it starts")
	}

	repoActivity := &repository.Activity{
		ID:       uuid.NewString(),
		Title:    activity.Title,
		Location: activity.Location,
		StartsAt: activity.StartsAt,
		EndsAt:   activity.EndsAt,
	}

	if err := s.activities.Create(ctx, repoActivity); err != nil {
		l.Error("failed to create activity", zap.String("title", activity.Title), zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to create activity")
	}

	activity.ID = repoActivity.ID
	activity.CreatedAt = repoActivity.CreatedAt

	return activity, nil
}

func (s *ScheduleService) ListActivities(ctx context.Context) ([]*model.Activity, *Error) {
	l := logger.FromContext(ctx)

	activitiesRepo, err := s.activities.List(ctx)
	if err != nil {
		l.Error("failed to list activities", zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to list activities")
	}

	activities := make([]*model.Activity, 0, len(activitiesRepo))
	for _, repoActivity := range activitiesRepo {
		activities = append(activities, &model.Activity{
			ID:        repoActivity.ID,
			Title:     repoActivity.Title,
			Location:  repoActivity.Location,
			StartsAt:  repoActivity.StartsAt,
			EndsAt:    repoActivity.EndsAt,
			CreatedAt: repoActivity.CreatedAt,
		})
	}

	return activities, nil
}

func (s *ScheduleService) WithActivityRepo(r repository.ActivityRepository) *ScheduleService {
	s.activities = r
	return s
}
