package repository

import (
	"context"
	"time"

	"github.com/aidevchallenge/backend/internal/db"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/sm"
)

type Activity struct {
	ID        string     `db:"id"`
	Title     string     `db:"title"`
	Location  string     `db:"location"`
	StartsAt  time.Time  `db:"starts_at"`
	EndsAt    time.Time  `db:"ends_at"`
	CreatedAt *time.Time `db:"created_at"`
}

type ActivityRepository interface {
	Create(ctx context.Context, activity *Activity) error
	List(ctx context.Context) ([]*Activity, error)
}

type pgxActivityRepository struct {
	pool *pgxpool.Pool
}

func NewPgxActivityRepository(pool *pgxpool.Pool) ActivityRepository {
	return &pgxActivityRepository{pool: pool}
}

func (p *pgxActivityRepository) Create(ctx context.Context, activity *Activity) error {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Insert(
		im.Into("activity", "id", "title", "location", "starts_at", "ends_at"),
		im.Values(
			psql.Arg(activity.ID),
			psql.Arg(activity.Title),
			psql.Arg(activity.Location),
			psql.Arg(activity.StartsAt),
			psql.Arg(activity.EndsAt),
		),
		im.Returning("created_at"),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return err
	}

	err = e.QueryRow(ctx, sql, args...).Scan(&activity.CreatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrAlreadyExists
	}

	return err
}

func (p *pgxActivityRepository) List(ctx context.Context) ([]*Activity, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns("id", "title", "location", "starts_at", "ends_at", "created_at"),
		sm.From("activity"),
		sm.OrderBy("starts_at"),
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

	activities, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*Activity, error) {
		activity := &Activity{}
		if err = row.Scan(
			&activity.ID,
			&activity.Title,
			&activity.Location,
			&activity.StartsAt,
			&activity.EndsAt,
			&activity.CreatedAt,
		); err != nil {
			return nil, err
		}
		return activity, nil
	})
	if err != nil {
		return nil, err
	}

	return activities, nil
}
