package service

import (
	"context"

	"github.com/aidevchallenge/backend/internal/db"
	"github.com/aidevchallenge/backend/internal/model"
	"github.com/aidevchallenge/backend/internal/repository"
	"github.com/aidevchallenge/backend/pkg/logger"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type TeamService struct {
	tx db.Transactor

	teams    repository.TeamRepository
	projects repository.ProjectRepository
}

func NewTeamService(tx db.Transactor) *TeamService {
	return &TeamService{tx: tx}
}

func (t *TeamService) GetTeam(ctx context.Context, teamID string) (*model.Team, *Error) {
	l := logger.FromContext(ctx)
	l.Debug("getting team", zap.String("team_id", teamID))

	teamRepo, err := t.teams.Get(ctx, teamID)
	if errors.Is(err, repository.ErrNotFound) {
		l.Warn("team not found", zap.String("team_id", teamID))
		return nil, NewError(ErrorCodeNotFound, "team not found")
	}
	if err != nil {
		l.Error("failed to get team", zap.String("team_id", teamID), zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to get team")
	}

	membersRepo, err := t.teams.GetMembers(ctx, teamID)
	if err != nil {
		l.Error("failed to get team members", zap.String("team_id", teamID), zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to get team members")
	}

	return toModelTeam(teamRepo, membersRepo), nil
}

func (t *TeamService) ListTeams(ctx context.Context) ([]*model.Team, *Error) {
	l := logger.FromContext(ctx)

	teamsRepo, err := t.teams.List(ctx)
	if err != nil {
		l.Error("failed to list teams", zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to list teams")
	}

	teams := make([]*model.Team, 0, len(teamsRepo))
	for _, teamRepo := range teamsRepo {
		teams = append(teams, toModelTeam(teamRepo, nil))
	}

	return teams, nil
}

// AssignProject points a team at a project after verifying both exist.
func (t *TeamService) AssignProject(ctx context.Context, teamID, projectID string) *Error {
	l := logger.FromContext(ctx)
	l.Info("assigning project to team", zap.String("team_id", teamID), zap.String("project_id", projectID))

	err := t.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if _, err := t.projects.Get(txCtx, projectID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return NewError(ErrorCodeNotFound, "project not found")
			}
			return NewError(ErrorCodeUnspecified, "failed to get project")
		}

		if err := t.teams.SetProject(txCtx, teamID, projectID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return NewError(ErrorCodeNotFound, "team not found")
			}
			return NewError(ErrorCodeUnspecified, "failed to assign project")
		}

		return nil
	})

	var res *Error
	if err != nil && !errors.As(err, &res) {
		l.Error("project assignment failed", zap.String("team_id", teamID), zap.Error(err))
		res = NewError(ErrorCodeUnspecified, "project assignment failed")
	}

	return res
}

func toModelTeam(teamRepo *repository.Team, membersRepo []*repository.Profile) *model.Team {
	team := &model.Team{
		ID:          teamRepo.ID,
		Name:        teamRepo.Name,
		MemberCount: teamRepo.MemberCount,
		Members:     make([]*model.Member, 0, len(membersRepo)),
		CreatedAt:   teamRepo.CreatedAt,
	}
	if teamRepo.ProjectID != nil {
		team.ProjectID = *teamRepo.ProjectID
	}
	for _, member := range membersRepo {
		team.Members = append(team.Members, &model.Member{
			ProfileID:   member.ID,
			DisplayName: member.DisplayName,
			Email:       member.Email,
		})
	}
	return team
}

func (t *TeamService) WithTeamRepo(r repository.TeamRepository) *TeamService {
	t.teams = r
	return t
}

func (t *TeamService) WithProjectRepo(r repository.ProjectRepository) *TeamService {
	t.projects = r
	return t
}
