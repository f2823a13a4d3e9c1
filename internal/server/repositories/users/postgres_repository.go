package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/goalkeeper/internal/common"
	"github.com/dmitrijs2005/goalkeeper/internal/dbx"
	"github.com/dmitrijs2005/goalkeeper/internal/server/models"
)

const userColumns = `id, username, email, password_hash, kind, session_token, display_name, timezone, created_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, u *models.User) error {
	query :=
		`INSERT INTO users (id, username, email, password_hash, kind, session_token, display_name, timezone, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 `

	_, err := r.db.ExecContext(ctx, query,
		u.ID, u.Username, nullable(u.Email), u.PasswordHash, string(u.Kind),
		nullable(u.SessionToken), nullable(u.DisplayName), u.TimeZone, u.CreatedAt)
	if err != nil {
		return wrapErr(err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return r.getOne(ctx, query, username)
}

func (r *PostgresRepository) GetNamedByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1 AND kind = 'named'`
	return r.getOne(ctx, query, username)
}

func (r *PostgresRepository) GetGuestByToken(ctx context.Context, token string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE session_token = $1 AND kind = 'anonymous'`
	return r.getOne(ctx, query, token)
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.getOne(ctx, query, email)
}

func (r *PostgresRepository) Promote(ctx context.Context, id, username, passwordHash string) error {
	query :=
		`UPDATE users SET kind = 'named', username = $2, password_hash = $3, session_token = NULL
		 WHERE id = $1 AND kind = 'anonymous'
		 `

	res, err := r.db.ExecContext(ctx, query, id, username, passwordHash)
	if err != nil {
		return wrapErr(err)
	}
	return expectOne(res)
}

func (r *PostgresRepository) UpdateProfile(ctx context.Context, u *models.User) error {
	query :=
		`UPDATE users SET display_name = $2, timezone = $3, email = $4
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, u.ID, nullable(u.DisplayName), u.TimeZone, nullable(u.Email))
	if err != nil {
		return wrapErr(err)
	}
	return expectOne(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return wrapErr(err)
	}
	return expectOne(res)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	var (
		u                          models.User
		kind                       string
		email, token, displayName sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.Username, &email, &u.PasswordHash, &kind, &token, &displayName, &u.TimeZone, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	u.Kind = models.UserKind(kind)
	u.Email = fromNull(email)
	u.SessionToken = fromNull(token)
	u.DisplayName = fromNull(displayName)
	return &u, nil
}

func wrapErr(err error) error {
	if dbx.IsUniqueViolation(err) {
		return fmt.Errorf("%w: %w", common.ErrorAlreadyExists, err)
	}
	return fmt.Errorf("db error: %w", err)
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func fromNull(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
