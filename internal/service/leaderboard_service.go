package service

import (
	"context"

	"github.com/aidevchallenge/backend/internal/db"
	"github.com/aidevchallenge/backend/internal/model"
	"github.com/aidevchallenge/backend/internal/repository"
	"github.com/aidevchallenge/backend/pkg/logger"
	"go.uber.org/zap"
)

// LeaderboardService fetches a snapshot of evaluation data and hands it
// to the pure aggregation functions. It keeps no state between calls.
type LeaderboardService struct {
	tx db.Transactor

	evaluations repository.EvaluationRepository
	teams       repository.TeamRepository
	projects    repository.ProjectRepository
}

func NewLeaderboardService(tx db.Transactor) *LeaderboardService {
	return &LeaderboardService{tx: tx}
}

func (s *LeaderboardService) GetLeaderboard(ctx context.Context) (*model.Leaderboard, *Error) {
	l := logger.FromContext(ctx)
	l.Debug("computing leaderboard")

	evaluations, err := s.fetchRecords(ctx)
	if err != nil {
		return nil, err
	}

	teamNames, repoErr := s.teams.ListNames(ctx)
	if repoErr != nil {
		l.Error("failed to list team names", zap.Error(repoErr))
		return nil, NewError(ErrorCodeUnspecified, "failed to list teams")
	}

	projectNames, repoErr := s.projects.ListNames(ctx)
	if repoErr != nil {
		l.Error("failed to list project names", zap.Error(repoErr))
		return nil, NewError(ErrorCodeUnspecified, "failed to list projects")
	}

	results := ComputeTeamResults(evaluations, teamNames, projectNames)

	return &model.Leaderboard{
		Results:  results,
		TopThree: TopThree(results),
		Ties:     DetectTies(results),
	}, nil
}

// fetchRecords loads all evaluations with their criterion scores and
// assembles the in-memory records the aggregator runs on.
func (s *LeaderboardService) fetchRecords(ctx context.Context) ([]*model.EvaluationRecord, *Error) {
	l := logger.FromContext(ctx)

	evaluations, err := s.evaluations.List(ctx)
	if err != nil {
		l.Error("failed to list evaluations", zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to list evaluations")
	}

	scores, err := s.evaluations.ListScores(ctx)
	if err != nil {
		l.Error("failed to list evaluation scores", zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to list evaluation scores")
	}

	scoresByEvaluation := make(map[string][]*model.CriterionScore, len(evaluations))
	for _, score := range scores {
		scoresByEvaluation[score.EvaluationID] = append(scoresByEvaluation[score.EvaluationID], &model.CriterionScore{
			CriterionID: score.CriterionID,
			Score:       score.Score,
		})
	}

	records := make([]*model.EvaluationRecord, 0, len(evaluations))
	for _, evaluation := range evaluations {
		records = append(records, &model.EvaluationRecord{
			ID:          evaluation.ID,
			TeamID:      evaluation.TeamID,
			ProjectID:   evaluation.ProjectID,
			RubricID:    evaluation.RubricID,
			EvaluatorID: evaluation.EvaluatorID,
			Scores:      scoresByEvaluation[evaluation.ID],
			Comments:    evaluation.Comments,
			CreatedAt:   evaluation.CreatedAt,
		})
	}

	return records, nil
}

func (s *LeaderboardService) WithEvaluationRepo(r repository.EvaluationRepository) *LeaderboardService {
	s.evaluations = r
	return s
}

func (s *LeaderboardService) WithTeamRepo(r repository.TeamRepository) *LeaderboardService {
	s.teams = r
	return s
}

func (s *LeaderboardService) WithProjectRepo(r repository.ProjectRepository) *LeaderboardService {
	s.projects = r
	return s
}
