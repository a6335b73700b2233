package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ivopashov/classdocs/internal/models"
)

type signupTokenRepo struct {
	pool *pgxpool.Pool
}

func NewSignupTokenRepository(pool *pgxpool.Pool) SignupTokenRepository {
	return &signupTokenRepo{pool: pool}
}

func (r *signupTokenRepo) Create(ctx context.Context, token *models.SignupToken) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO signup_tokens (token, role, created_by, expires_at, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		token.Token, token.Role, token.CreatedBy, token.ExpiresAt, token.CreatedAt,
	)
	return err
}

func (r *signupTokenRepo) GetByToken(ctx context.Context, token string) (*models.SignupToken, error) {
	t := &models.SignupToken{}
	err := r.pool.QueryRow(ctx,
		`SELECT token, role, created_by, expires_at, used_by, created_at
		 FROM signup_tokens WHERE token = $1`, token,
	).Scan(&t.Token, &t.Role, &t.CreatedBy, &t.ExpiresAt, &t.UsedBy, &t.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return t, err
}

func (r *signupTokenRepo) List(ctx context.Context) ([]models.SignupToken, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT token, role, created_by, expires_at, used_by, created_at
		 FROM signup_tokens ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []models.SignupToken
	for rows.Next() {
		var t models.SignupToken
		if err := rows.Scan(&t.Token, &t.Role, &t.CreatedBy, &t.ExpiresAt, &t.UsedBy, &t.CreatedAt); err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}

func (r *signupTokenRepo) MarkUsed(ctx context.Context, token string, userID int64) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE signup_tokens SET used_by = $2 WHERE token = $1`, token, userID,
	)
	return err
}

func (r *signupTokenRepo) Delete(ctx context.Context, token string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM signup_tokens WHERE token = $1`, token)
	return err
}
