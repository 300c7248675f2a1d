package repository

import (
	"context"
	"time"

	"github.com/aidevchallenge/backend/internal/db"
	"github.com/aidevchallenge/backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dialect"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/bob/dialect/psql/um"
)

type Profile struct {
	ID          string     `db:"id"`
	DisplayName string     `db:"display_name"`
	Email       string     `db:"email"`
	Role        model.Role `db:"role"`
	TeamID      *string    `db:"team_id"`
	GroupName   *string    `db:"group_name"`
	CreatedAt   *time.Time `db:"created_at"`
}

type ProfilePatch struct {
	ID          string      `db:"id"`
	DisplayName *string     `db:"display_name"`
	Role        *model.Role `db:"role"`
	TeamID      *string     `db:"team_id"`
	GroupName   *string     `db:"group_name"`
}

type ProfileRepository interface {
	Get(ctx context.Context, profileID string) (*Profile, error)
	// GetForUpdate takes a row lock so a concurrent assignment for the
	// same profile blocks until this transaction finishes.
	GetForUpdate(ctx context.Context, profileID string) (*Profile, error)
	Upsert(ctx context.Context, profile *Profile) error
	Patch(ctx context.Context, patch *ProfilePatch) (*Profile, error)
}

type pgxProfileRepository struct {
	pool *pgxpool.Pool
}

func NewPgxProfileRepository(pool *pgxpool.Pool) ProfileRepository {
	return &pgxProfileRepository{pool: pool}
}

func (p *pgxProfileRepository) get(ctx context.Context, profileID string, forUpdate bool) (*Profile, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	mods := []bob.Mod[*dialect.SelectQuery]{
		sm.Columns("id", "display_name", "email", "role", "team_id", "group_name", "created_at"),
		sm.From("profile"),
		sm.Where(psql.Quote("id").EQ(psql.Arg(profileID))),
	}
	if forUpdate {
		mods = append(mods, sm.ForUpdate("profile"))
	}

	q := psql.Select(mods...)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	profile := &Profile{}
	if err = e.QueryRow(ctx, sql, args...).Scan(
		&profile.ID,
		&profile.DisplayName,
		&profile.Email,
		&profile.Role,
		&profile.TeamID,
		&profile.GroupName,
		&profile.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return profile, nil
}

func (p *pgxProfileRepository) Get(ctx context.Context, profileID string) (*Profile, error) {
	return p.get(ctx, profileID, false)
}

func (p *pgxProfileRepository) GetForUpdate(ctx context.Context, profileID string) (*Profile, error) {
	return p.get(ctx, profileID, true)
}

// Upsert Insert a profile keyed by email; an existing profile keeps its
// id and team and refreshes name and role. Sets profile.ID and CreatedAt.
func (p *pgxProfileRepository) Upsert(ctx context.Context, profile *Profile) error {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Insert(
		im.Into("profile", "id", "display_name", "email", "role", "team_id", "group_name"),
		im.Values(
			psql.Arg(profile.ID),
			psql.Arg(profile.DisplayName),
			psql.Arg(profile.Email),
			psql.Arg(profile.Role),
			psql.Arg(profile.TeamID),
			psql.Arg(profile.GroupName),
		),
		im.OnConflict(psql.Quote("email")).DoUpdate(
			im.SetCol("display_name").ToArg(profile.DisplayName),
			im.SetCol("role").ToArg(profile.Role),
		),
		im.Returning("id", "team_id", "created_at"),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return err
	}

	return e.QueryRow(ctx, sql, args...).Scan(
		&profile.ID,
		&profile.TeamID,
		&profile.CreatedAt,
	)
}

func (p *pgxProfileRepository) Patch(ctx context.Context, patch *ProfilePatch) (*Profile, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	sets := make([]bob.Mod[*dialect.UpdateQuery], 0, 4)

	if patch.DisplayName != nil {
		sets = append(sets, um.SetCol("display_name").ToArg(*patch.DisplayName))
	}
	if patch.Role != nil {
		sets = append(sets, um.SetCol("role").ToArg(*patch.Role))
	}
	if patch.TeamID != nil {
		sets = append(sets, um.SetCol("team_id").ToArg(*patch.TeamID))
	}
	if patch.GroupName != nil {
		sets = append(sets, um.SetCol("group_name").ToArg(*patch.GroupName))
	}

	q := psql.Update(
		um.Table("profile"),
		um.Where(psql.Quote("id").EQ(psql.Arg(patch.ID))),
		um.Returning("id", "display_name", "email", "role", "team_id", "group_name", "created_at"),
	)

	q.Apply(sets...)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	profile := &Profile{}
	if err = e.QueryRow(ctx, sql, args...).Scan(
		&profile.ID,
		&profile.DisplayName,
		&profile.Email,
		&profile.Role,
		&profile.TeamID,
		&profile.GroupName,
		&profile.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return profile, nil
}
