package database

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ivopashov/classdocs/internal/models"
)

type documentRepo struct {
	pool *pgxpool.Pool
}

func NewDocumentRepository(pool *pgxpool.Pool) DocumentRepository {
	return &documentRepo{pool: pool}
}

func (r *documentRepo) Create(ctx context.Context, doc *models.Document) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO documents (id, root_id, author_id, parent_id, title, content, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		doc.ID, doc.RootID, doc.AuthorID, doc.ParentID, doc.Title, doc.Content, doc.CreatedAt,
	)
	return err
}

func (r *documentRepo) GetByID(ctx context.Context, id int64) (*models.Document, error) {
	d := &models.Document{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, root_id, author_id, parent_id, title, content, created_at, updated_at
		 FROM documents WHERE id = $1`, id,
	).Scan(&d.ID, &d.RootID, &d.AuthorID, &d.ParentID, &d.Title, &d.Content, &d.CreatedAt, &d.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return d, err
}

func (r *documentRepo) GetByRootID(ctx context.Context, rootID int64) ([]models.Document, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, root_id, author_id, parent_id, title, content, created_at, updated_at
		 FROM documents WHERE root_id = $1 ORDER BY created_at`, rootID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []models.Document
	for rows.Next() {
		var d models.Document
		if err := rows.Scan(&d.ID, &d.RootID, &d.AuthorID, &d.ParentID, &d.Title, &d.Content, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (r *documentRepo) Update(ctx context.Context, doc *models.Document) error {
	now := time.Now()
	doc.UpdatedAt = &now
	_, err := r.pool.Exec(ctx,
		`UPDATE documents SET title = $2, content = $3, updated_at = $4 WHERE id = $1`,
		doc.ID, doc.Title, doc.Content, doc.UpdatedAt,
	)
	return err
}

func (r *documentRepo) UpdateParent(ctx context.Context, id int64, parentID *int64) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE documents SET parent_id = $2 WHERE id = $1`, id, parentID,
	)
	return err
}

func (r *documentRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	return err
}

// IsDescendant reports whether candidateID sits in the subtree rooted at
// ancestorID (including ancestorID itself). Used to reject parent updates
// that would introduce a cycle.
func (r *documentRepo) IsDescendant(ctx context.Context, ancestorID, candidateID int64) (bool, error) {
	var found bool
	err := r.pool.QueryRow(ctx,
		`WITH RECURSIVE subtree AS (
			SELECT id FROM documents WHERE id = $1
			UNION ALL
			SELECT d.id FROM documents d JOIN subtree s ON d.parent_id = s.id
		 )
		 SELECT EXISTS (SELECT 1 FROM subtree WHERE id = $2)`,
		ancestorID, candidateID,
	).Scan(&found)
	return found, err
}
