package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ivopashov/classdocs/internal/models"
)

type documentRootRepo struct {
	pool *pgxpool.Pool
}

func NewDocumentRootRepository(pool *pgxpool.Pool) DocumentRootRepository {
	return &documentRootRepo{pool: pool}
}

func (r *documentRootRepo) Create(ctx context.Context, root *models.DocumentRoot) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO document_roots (id, name, shared_access, created_by, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		root.ID, root.Name, root.SharedAccess, root.CreatedBy, root.CreatedAt,
	)
	return err
}

func (r *documentRootRepo) GetByID(ctx context.Context, id int64) (*models.DocumentRoot, error) {
	root := &models.DocumentRoot{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, shared_access, created_by, created_at
		 FROM document_roots WHERE id = $1`, id,
	).Scan(&root.ID, &root.Name, &root.SharedAccess, &root.CreatedBy, &root.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return root, err
}

func (r *documentRootRepo) List(ctx context.Context) ([]models.DocumentRoot, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, shared_access, created_by, created_at
		 FROM document_roots ORDER BY created_at`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roots []models.DocumentRoot
	for rows.Next() {
		var root models.DocumentRoot
		if err := rows.Scan(&root.ID, &root.Name, &root.SharedAccess, &root.CreatedBy, &root.CreatedAt); err != nil {
			return nil, err
		}
		roots = append(roots, root)
	}
	return roots, rows.Err()
}

func (r *documentRootRepo) Update(ctx context.Context, root *models.DocumentRoot) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE document_roots SET name = $2, shared_access = $3 WHERE id = $1`,
		root.ID, root.Name, root.SharedAccess,
	)
	return err
}

func (r *documentRootRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM document_roots WHERE id = $1`, id)
	return err
}
