package goals

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/goalkeeper/internal/common"
	"github.com/dmitrijs2005/goalkeeper/internal/dbx"
	"github.com/dmitrijs2005/goalkeeper/internal/server/models"
)

const goalColumns = `id, user_id, text, goal_type, done, completed_at, created_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context, ownerID string, period *models.Period) ([]*models.Goal, error) {
	query := `SELECT ` + goalColumns + ` FROM goals WHERE user_id = $1`
	args := []any{ownerID}
	if period != nil {
		query += ` AND goal_type = $2`
		args = append(args, string(*period))
	}
	query += ` ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Goal, 0)
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Create(ctx context.Context, g *models.Goal) error {
	query :=
		`INSERT INTO goals (id, user_id, text, goal_type, done, completed_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 `

	_, err := r.db.ExecContext(ctx, query,
		g.ID, g.OwnerID, g.Text, string(g.Period), g.Done, nullTime(g.CompletedAt), g.CreatedAt)
	if err != nil {
		if dbx.IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: owner %s: %w", common.ErrorNotFound, g.OwnerID, err)
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, ownerID, id string) (*models.Goal, error) {
	query := `SELECT ` + goalColumns + ` FROM goals WHERE id = $1 AND user_id = $2`

	g, err := scanGoal(r.db.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return g, nil
}

func (r *PostgresRepository) Update(ctx context.Context, g *models.Goal) error {
	query :=
		`UPDATE goals SET text = $3, done = $4, completed_at = $5
		 WHERE id = $1 AND user_id = $2
		 `

	res, err := r.db.ExecContext(ctx, query, g.ID, g.OwnerID, g.Text, g.Done, nullTime(g.CompletedAt))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOne(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, ownerID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM goals WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOne(res)
}

func (r *PostgresRepository) ReassignOwner(ctx context.Context, from, to string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE goals SET user_id = $2 WHERE user_id = $1`, from, to)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return rowsAffected(res)
}

func (r *PostgresRepository) DeleteCompletedBefore(ctx context.Context, ownerID string, period models.Period, cutoff time.Time) (int64, error) {
	query :=
		`DELETE FROM goals
		 WHERE user_id = $1 AND goal_type = $2 AND done AND completed_at < $3
		 `

	res, err := r.db.ExecContext(ctx, query, ownerID, string(period), cutoff)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return rowsAffected(res)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanGoal(s scanner) (*models.Goal, error) {
	var (
		g         models.Goal
		period    string
		completed sql.NullTime
	)
	if err := s.Scan(&g.ID, &g.OwnerID, &g.Text, &period, &g.Done, &completed, &g.CreatedAt); err != nil {
		return nil, err
	}
	g.Period = models.Period(period)
	if completed.Valid {
		t := completed.Time
		g.CompletedAt = &t
	}
	return &g, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func rowsAffected(res sql.Result) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func expectOne(res sql.Result) error {
	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
