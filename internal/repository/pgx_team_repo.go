package repository

import (
	"context"
	"time"

	"github.com/aidevchallenge/backend/internal/db"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dialect"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/bob/dialect/psql/um"
)

type Team struct {
	ID          string     `db:"id"`
	Name        string     `db:"name"`
	MemberCount int        `db:"member_count"`
	ProjectID   *string    `db:"project_id"`
	CreatedAt   *time.Time `db:"created_at"`
}

type TeamRepository interface {
	Create(ctx context.Context, team *Team) error
	Get(ctx context.Context, teamID string) (*Team, error)
	GetForUpdate(ctx context.Context, teamID string) (*Team, error)
	// FindOpenTeam returns at most one team with spare capacity. The
	// caller must re-read it under lock before relying on the answer.
	FindOpenTeam(ctx context.Context, maxMembers int) (*Team, error)
	List(ctx context.Context) ([]*Team, error)
	GetMembers(ctx context.Context, teamID string) ([]*Profile, error)
	GetMemberIDs(ctx context.Context, teamID string) ([]string, error)
	AddMember(ctx context.Context, teamID, profileID string) error
	UpdateMemberCount(ctx context.Context, teamID string, count int) error
	SetProject(ctx context.Context, teamID, projectID string) error
	ListNames(ctx context.Context) (map[string]string, error)
}

type pgxTeamRepository struct {
	pool *pgxpool.Pool
}

func NewPgxTeamRepository(pool *pgxpool.Pool) TeamRepository {
	return &pgxTeamRepository{pool: pool}
}

func (p *pgxTeamRepository) Create(ctx context.Context, team *Team) error {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Insert(
		im.Into("team", "id", "name", "member_count", "project_id"),
		im.Values(psql.Arg(team.ID), psql.Arg(team.Name), psql.Arg(team.MemberCount), psql.Arg(team.ProjectID)),
		im.Returning("created_at"),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return err
	}

	err = e.QueryRow(ctx, sql, args...).Scan(&team.CreatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrAlreadyExists
	}

	return err
}

func (p *pgxTeamRepository) get(ctx context.Context, teamID string, forUpdate bool) (*Team, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	mods := []bob.Mod[*dialect.SelectQuery]{
		sm.Columns("id", "name", "member_count", "project_id", "created_at"),
		sm.From("team"),
		sm.Where(psql.Quote("id").EQ(psql.Arg(teamID))),
	}
	if forUpdate {
		mods = append(mods, sm.ForUpdate("team"))
	}

	q := psql.Select(mods...)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	team := &Team{}
	if err = e.QueryRow(ctx, sql, args...).Scan(
		&team.ID,
		&team.Name,
		&team.MemberCount,
		&team.ProjectID,
		&team.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return team, nil
}

func (p *pgxTeamRepository) Get(ctx context.Context, teamID string) (*Team, error) {
	return p.get(ctx, teamID, false)
}

func (p *pgxTeamRepository) GetForUpdate(ctx context.Context, teamID string) (*Team, error) {
	return p.get(ctx, teamID, true)
}

func (p *pgxTeamRepository) FindOpenTeam(ctx context.Context, maxMembers int) (*Team, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns("id", "name", "member_count", "project_id", "created_at"),
		sm.From("team"),
		sm.Where(psql.Quote("member_count").LT(psql.Arg(maxMembers))),
		sm.OrderBy("created_at"),
		sm.Limit(1),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	team := &Team{}
	if err = e.QueryRow(ctx, sql, args...).Scan(
		&team.ID,
		&team.Name,
		&team.MemberCount,
		&team.ProjectID,
		&team.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return team, nil
}

func (p *pgxTeamRepository) List(ctx context.Context) ([]*Team, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns("id", "name", "member_count", "project_id", "created_at"),
		sm.From("team"),
		sm.OrderBy("created_at"),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := e.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*Team, error) {
		team := &Team{}
		if err = row.Scan(&team.ID, &team.Name, &team.MemberCount, &team.ProjectID, &team.CreatedAt); err != nil {
			return nil, err
		}
		return team, nil
	})
	if err != nil {
		return nil, err
	}

	return teams, nil
}

func (p *pgxTeamRepository) GetMembers(ctx context.Context, teamID string) ([]*Profile, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns("profile.id", "profile.display_name", "profile.email", "profile.role", "profile.team_id", "profile.group_name", "profile.created_at"),
		sm.From("team_member"),
		sm.LeftJoin("profile").On(psql.Quote("team_member", "profile_id").EQ(psql.Quote("profile", "id"))),
		sm.Where(psql.Quote("team_member", "team_id").EQ(psql.Arg(teamID))),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := e.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*Profile, error) {
		profile := &Profile{}
		if err = row.Scan(
			&profile.ID,
			&profile.DisplayName,
			&profile.Email,
			&profile.Role,
			&profile.TeamID,
			&profile.GroupName,
			&profile.CreatedAt,
		); err != nil {
			return nil, err
		}
		return profile, nil
	})
	if err != nil {
		return nil, err
	}

	return members, nil
}

func (p *pgxTeamRepository) GetMemberIDs(ctx context.Context, teamID string) ([]string, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns("profile_id"),
		sm.From("team_member"),
		sm.Where(psql.Quote("team_id").EQ(psql.Arg(teamID))),
		sm.ForShare("team_member"),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := e.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (string, error) {
		var id string
		err = row.Scan(&id)
		return id, err
	})
	if err != nil {
		return nil, err
	}

	return ids, nil
}

func (p *pgxTeamRepository) AddMember(ctx context.Context, teamID, profileID string) error {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Insert(
		im.Into("team_member", "team_id", "profile_id"),
		im.Values(psql.Arg(teamID), psql.Arg(profileID)),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return err
	}

	_, err = e.Exec(ctx, sql, args...)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrAlreadyExists
	}

	return err
}

func (p *pgxTeamRepository) UpdateMemberCount(ctx context.Context, teamID string, count int) error {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Update(
		um.Table("team"),
		um.SetCol("member_count").ToArg(count),
		um.Where(psql.Quote("id").EQ(psql.Arg(teamID))),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return err
	}

	commandTag, err := e.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}

	if commandTag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (p *pgxTeamRepository) SetProject(ctx context.Context, teamID, projectID string) error {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Update(
		um.Table("team"),
		um.SetCol("project_id").ToArg(projectID),
		um.Where(psql.Quote("id").EQ(psql.Arg(teamID))),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return err
	}

	commandTag, err := e.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}

	if commandTag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (p *pgxTeamRepository) ListNames(ctx context.Context) (map[string]string, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns("id", "name"),
		sm.From("team"),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := e.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := make(map[string]string)
	for rows.Next() {
		var id, name string
		if err = rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		names[id] = name
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return names, nil
}
