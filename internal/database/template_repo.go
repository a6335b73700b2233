package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ivopashov/classdocs/internal/models"
)

type templateRepo struct {
	pool *pgxpool.Pool
}

func NewTemplateRepository(pool *pgxpool.Pool) TemplateRepository {
	return &templateRepo{pool: pool}
}

func (r *templateRepo) Create(ctx context.Context, tmpl *models.Template) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO templates (id, name, content, created_by, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		tmpl.ID, tmpl.Name, tmpl.Content, tmpl.CreatedBy, tmpl.CreatedAt,
	)
	return err
}

func (r *templateRepo) GetByID(ctx context.Context, id int64) (*models.Template, error) {
	t := &models.Template{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, content, created_by, created_at
		 FROM templates WHERE id = $1`, id,
	).Scan(&t.ID, &t.Name, &t.Content, &t.CreatedBy, &t.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return t, err
}

func (r *templateRepo) List(ctx context.Context) ([]models.Template, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, content, created_by, created_at
		 FROM templates ORDER BY name`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []models.Template
	for rows.Next() {
		var t models.Template
		if err := rows.Scan(&t.ID, &t.Name, &t.Content, &t.CreatedBy, &t.CreatedAt); err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

func (r *templateRepo) Update(ctx context.Context, tmpl *models.Template) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE templates SET name = $2, content = $3 WHERE id = $1`,
		tmpl.ID, tmpl.Name, tmpl.Content,
	)
	return err
}

func (r *templateRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM templates WHERE id = $1`, id)
	return err
}
