package service

import (
	"context"

	"github.com/aidevchallenge/backend/internal/db"
	"github.com/aidevchallenge/backend/internal/model"
	"github.com/aidevchallenge/backend/internal/repository"
	"github.com/aidevchallenge/backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type EvaluationService struct {
	tx db.Transactor

	evaluations repository.EvaluationRepository
	teams       repository.TeamRepository
	projects    repository.ProjectRepository
}

func NewEvaluationService(tx db.Transactor) *EvaluationService {
	return &EvaluationService{tx: tx}
}

// SubmitEvaluation writes one evaluator's scoring of a team/project
// pairing. A resubmission for the same pairing overwrites the previous
// record and its scores rather than appending.
func (s *EvaluationService) SubmitEvaluation(ctx context.Context, record *model.EvaluationRecord) (*model.EvaluationRecord, *Error) {
	l := logger.FromContext(ctx)
	l.Info("submitting evaluation",
		zap.String("team_id", record.TeamID),
		zap.String("project_id", record.ProjectID),
		zap.String("evaluator_id", record.EvaluatorID))

	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if _, err := s.teams.Get(txCtx, record.TeamID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return NewError(ErrorCodeNotFound, "team not found")
			}
			return NewError(ErrorCodeUnspecified, "failed to get team")
		}

		if _, err := s.projects.Get(txCtx, record.ProjectID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return NewError(ErrorCodeNotFound, "project not found")
			}
			return NewError(ErrorCodeUnspecified, "failed to get project")
		}

		evaluation := &repository.Evaluation{
			ID:          uuid.NewString(),
			TeamID:      record.TeamID,
			ProjectID:   record.ProjectID,
			RubricID:    record.RubricID,
			EvaluatorID: record.EvaluatorID,
			Comments:    record.Comments,
		}

		if err := s.evaluations.Upsert(txCtx, evaluation); err != nil {
			l.Error("failed to upsert evaluation", zap.Error(err))
			return NewError(ErrorCodeUnspecified, "failed to save evaluation")
		}

		scores := make([]*repository.EvaluationScore, 0, len(record.Scores))
		for _, score := range record.Scores {
			scores = append(scores, &repository.EvaluationScore{
				EvaluationID: evaluation.ID,
				CriterionID:  score.CriterionID,
				Score:        score.Score,
			})
		}

		if err := s.evaluations.ReplaceScores(txCtx, evaluation.ID, scores); err != nil {
			l.Error("failed to replace evaluation scores", zap.Error(err))
			return NewError(ErrorCodeUnspecified, "failed to save evaluation scores")
		}

		record.ID = evaluation.ID
		record.CreatedAt = evaluation.CreatedAt

		return nil
	})

	var res *Error
	if err != nil && !errors.As(err, &res) {
		l.Error("evaluation transaction failed", zap.Error(err))
		res = NewError(ErrorCodeUnspecified, "evaluation transaction failed")
	}
	if res != nil {
		return nil, res
	}

	return record, nil
}

func (s *EvaluationService) WithEvaluationRepo(r repository.EvaluationRepository) *EvaluationService {
	s.evaluations = r
	return s
}

func (s *EvaluationService) WithTeamRepo(r repository.TeamRepository) *EvaluationService {
	s.teams = r
	return s
}

func (s *EvaluationService) WithProjectRepo(r repository.ProjectRepository) *EvaluationService {
	s.projects = r
	return s
}
