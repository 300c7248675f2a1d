package service

import (
	"context"
	"slices"

	"github.com/aidevchallenge/backend/internal/db"
	"github.com/aidevchallenge/backend/internal/model"
	"github.com/aidevchallenge/backend/internal/repository"
	"github.com/aidevchallenge/backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// AssignmentService places students without a team into an existing
// under-capacity team, or creates a new one. The whole
// read-validate-write sequence runs in one transaction so no team ever
// exceeds capacity, even under concurrent calls.
type AssignmentService struct {
	tx db.Transactor

	profiles repository.ProfileRepository
	teams    repository.TeamRepository

	maxMembers int
}

func NewAssignmentService(tx db.Transactor, maxMembers int) *AssignmentService {
	return &AssignmentService{
		tx:         tx,
		maxMembers: maxMembers,
	}
}

// AssignStudent is idempotent and safe to call redundantly: a student
// already present in their team's member set gets already_assigned, a
// non-student gets not_eligible, and nothing is mutated in either case.
func (s *AssignmentService) AssignStudent(ctx context.Context, profileID string) (*model.AssignmentResult, *Error) {
	l := logger.FromContext(ctx)
	l.Info("assigning student to team", zap.String("profile_id", profileID))

	// Candidate discovery runs outside the transaction. The pick can go
	// stale before the transactional re-read; the worst outcome is one
	// extra team, never an overfull one.
	candidateID := ""
	candidate, err := s.teams.FindOpenTeam(ctx, s.maxMembers)
	switch {
	case errors.Is(err, repository.ErrNotFound):
	case err != nil:
		l.Error("failed to find open team", zap.Error(err))
		return nil, NewError(ErrorCodeRetryable, "failed to find open team")
	default:
		candidateID = candidate.ID
	}

	result := &model.AssignmentResult{}

	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		profile, err := s.profiles.GetForUpdate(txCtx, profileID)
		if errors.Is(err, repository.ErrNotFound) {
			l.Warn("profile not found", zap.String("profile_id", profileID))
			return NewError(ErrorCodeNotFound, "profile not found")
		}
		if err != nil {
			l.Error("failed to read profile", zap.String("profile_id", profileID), zap.Error(err))
			return NewError(ErrorCodeRetryable, "failed to read profile")
		}

		if profile.Role != model.RoleStudent {
			l.Debug("profile is not a student, skipping", zap.String("profile_id", profileID))
			result.Status = model.AssignmentStatusNotEligible
			return nil
		}

		if profile.TeamID != nil {
			memberIDs, err := s.teams.GetMemberIDs(txCtx, *profile.TeamID)
			if err != nil {
				l.Error("failed to read team members", zap.String("team_id", *profile.TeamID), zap.Error(err))
				return NewError(ErrorCodeRetryable, "failed to read team members")
			}
			if slices.Contains(memberIDs, profile.ID) {
				result.Status = model.AssignmentStatusAlreadyAssigned
				result.TeamID = *profile.TeamID
				return nil
			}
		}

		if candidateID != "" {
			joined, err := s.tryJoin(txCtx, profile.ID, candidateID)
			if err != nil {
				return err
			}
			if joined {
				result.Status = model.AssignmentStatusAssigned
				result.TeamID = candidateID
				return nil
			}
		}

		teamID, err := s.createTeamFor(txCtx, profile.ID)
		if err != nil {
			return err
		}

		result.Status = model.AssignmentStatusAssigned
		result.TeamID = teamID
		return nil
	})

	var res *Error
	if err != nil && !errors.As(err, &res) {
		l.Error("assignment transaction failed", zap.String("profile_id", profileID), zap.Error(err))
		res = NewError(ErrorCodeRetryable, "assignment transaction failed")
	}
	if res != nil {
		return nil, res
	}

	l.Info("assignment resolved",
		zap.String("profile_id", profileID),
		zap.String("status", string(result.Status)),
		zap.String("team_id", result.TeamID))

	return result, nil
}

// tryJoin re-reads the candidate under a row lock and joins it only if
// it still has capacity and does not already hold the student.
func (s *AssignmentService) tryJoin(txCtx context.Context, profileID, teamID string) (bool, error) {
	team, err := s.teams.GetForUpdate(txCtx, teamID)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, NewError(ErrorCodeRetryable, "failed to read candidate team")
	}

	if team.MemberCount >= s.maxMembers {
		return false, nil
	}

	memberIDs, err := s.teams.GetMemberIDs(txCtx, team.ID)
	if err != nil {
		return false, NewError(ErrorCodeRetryable, "failed to read candidate members")
	}
	if slices.Contains(memberIDs, profileID) {
		return false, nil
	}

	if err = s.teams.AddMember(txCtx, team.ID, profileID); err != nil {
		return false, NewError(ErrorCodeRetryable, "failed to add team member")
	}
	if err = s.teams.UpdateMemberCount(txCtx, team.ID, team.MemberCount+1); err != nil {
		return false, NewError(ErrorCodeRetryable, "failed to update member count")
	}
	if _, err = s.profiles.Patch(txCtx, &repository.ProfilePatch{ID: profileID, TeamID: &team.ID}); err != nil {
		return false, NewError(ErrorCodeRetryable, "failed to update profile team")
	}

	return true, nil
}

func (s *AssignmentService) createTeamFor(txCtx context.Context, profileID string) (string, error) {
	teamID := uuid.NewString()
	team := &repository.Team{
		ID:          teamID,
		Name:        "team-" + teamID[:8],
		MemberCount: 1,
	}

	if err := s.teams.Create(txCtx, team); err != nil {
		return "", NewError(ErrorCodeRetryable, "failed to create team")
	}
	if err := s.teams.AddMember(txCtx, teamID, profileID); err != nil {
		return "", NewError(ErrorCodeRetryable, "failed to add team member")
	}
	if _, err := s.profiles.Patch(txCtx, &repository.ProfilePatch{ID: profileID, TeamID: &teamID}); err != nil {
		return "", NewError(ErrorCodeRetryable, "failed to update profile team")
	}

	return teamID, nil
}

func (s *AssignmentService) WithProfileRepo(r repository.ProfileRepository) *AssignmentService {
	s.profiles = r
	return s
}

func (s *AssignmentService) WithTeamRepo(r repository.TeamRepository) *AssignmentService {
	s.teams = r
	return s
}
