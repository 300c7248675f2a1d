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
	"github.com/stephenafamo/bob/dialect/psql/dm"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/sm"
)

type Evaluation struct {
	ID          string     `db:"id"`
	TeamID      string     `db:"team_id"`
	ProjectID   string     `db:"project_id"`
	RubricID    string     `db:"rubric_id"`
	EvaluatorID string     `db:"evaluator_id"`
	Comments    string     `db:"comments"`
	CreatedAt   *time.Time `db:"created_at"`
}

type EvaluationScore struct {
	EvaluationID string `db:"evaluation_id"`
	CriterionID  string `db:"criterion_id"`
	Score        int    `db:"score"`
}

type EvaluationRepository interface {
	// Upsert writes the evaluation keyed by (team, project, evaluator);
	// a resubmission keeps the row's id and refreshes rubric and
	// comments. Sets evaluation.ID and CreatedAt.
	Upsert(ctx context.Context, evaluation *Evaluation) error
	ReplaceScores(ctx context.Context, evaluationID string, scores []*EvaluationScore) error
	List(ctx context.Context) ([]*Evaluation, error)
	ListScores(ctx context.Context) ([]*EvaluationScore, error)
}

type pgxEvaluationRepository struct {
	pool *pgxpool.Pool
}

func NewPgxEvaluationRepository(pool *pgxpool.Pool) EvaluationRepository {
	return &pgxEvaluationRepository{pool: pool}
}

func (p *pgxEvaluationRepository) Upsert(ctx context.Context, evaluation *Evaluation) error {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Insert(
		im.Into("evaluation", "id", "team_id", "project_id", "rubric_id", "evaluator_id", "comments"),
		im.Values(
			psql.Arg(evaluation.ID),
			psql.Arg(evaluation.TeamID),
			psql.Arg(evaluation.ProjectID),
			psql.Arg(evaluation.RubricID),
			psql.Arg(evaluation.EvaluatorID),
			psql.Arg(evaluation.Comments),
		),
		im.OnConflict(psql.Quote("team_id"), psql.Quote("project_id"), psql.Quote("evaluator_id")).DoUpdate(
			im.SetCol("rubric_id").ToArg(evaluation.RubricID),
			im.SetCol("comments").ToArg(evaluation.Comments),
		),
		im.Returning("id", "created_at"),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return err
	}

	err = e.QueryRow(ctx, sql, args...).Scan(&evaluation.ID, &evaluation.CreatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		// team_id or project_id points at nothing
		return ErrNotFound
	}

	return err
}

func (p *pgxEvaluationRepository) ReplaceScores(ctx context.Context, evaluationID string, scores []*EvaluationScore) error {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	del := psql.Delete(
		dm.From("evaluation_score"),
		dm.Where(psql.Quote("evaluation_id").EQ(psql.Arg(evaluationID))),
	)

	sql, args, err := del.Build(ctx)
	if err != nil {
		return err
	}

	if _, err = e.Exec(ctx, sql, args...); err != nil {
		return err
	}

	if len(scores) == 0 {
		return nil
	}

	ins := psql.Insert(
		im.Into("evaluation_score", "evaluation_id", "criterion_id", "score"),
	)

	for _, score := range scores {
		ins.Apply(im.Values(psql.Arg(evaluationID), psql.Arg(score.CriterionID), psql.Arg(score.Score)))
	}

	sql, args, err = ins.Build(ctx)
	if err != nil {
		return err
	}

	if _, err = e.Exec(ctx, sql, args...); err != nil {
		return err
	}

	return nil
}

func (p *pgxEvaluationRepository) List(ctx context.Context) ([]*Evaluation, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns("id", "team_id", "project_id", "rubric_id", "evaluator_id", "comments", "created_at"),
		sm.From("evaluation"),
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

	evaluations, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*Evaluation, error) {
		evaluation := &Evaluation{}
		if err = row.Scan(
			&evaluation.ID,
			&evaluation.TeamID,
			&evaluation.ProjectID,
			&evaluation.RubricID,
			&evaluation.EvaluatorID,
			&evaluation.Comments,
			&evaluation.CreatedAt,
		); err != nil {
			return nil, err
		}
		return evaluation, nil
	})
	if err != nil {
		return nil, err
	}

	return evaluations, nil
}

func (p *pgxEvaluationRepository) ListScores(ctx context.Context) ([]*EvaluationScore, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns("evaluation_id", "criterion_id", "score"),
		sm.From("evaluation_score"),
		sm.OrderBy("evaluation_id"),
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

	scores, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*EvaluationScore, error) {
		score := &EvaluationScore{}
		if err = row.Scan(&score.EvaluationID, &score.CriterionID, &score.Score); err != nil {
			return nil, err
		}
		return score, nil
	})
	if err != nil {
		return nil, err
	}

	return scores, nil
}
