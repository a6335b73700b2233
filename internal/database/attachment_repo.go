package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ivopashov/classdocs/internal/models"
)

type attachmentRepo struct {
	pool *pgxpool.Pool
}

func NewAttachmentRepository(pool *pgxpool.Pool) AttachmentRepository {
	return &attachmentRepo{pool: pool}
}

func (r *attachmentRepo) Create(ctx context.Context, attachment *models.Attachment) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO attachments (id, document_id, filename, content_type, size, storage_key, url, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		attachment.ID, attachment.DocumentID, attachment.Filename,
		attachment.ContentType, attachment.Size, attachment.StorageKey, attachment.URL, attachment.CreatedAt,
	)
	return err
}

func (r *attachmentRepo) GetByID(ctx context.Context, id int64) (*models.Attachment, error) {
	a := &models.Attachment{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, document_id, filename, content_type, size, storage_key, url, created_at
		 FROM attachments WHERE id = $1`, id,
	).Scan(&a.ID, &a.DocumentID, &a.Filename, &a.ContentType, &a.Size, &a.StorageKey, &a.URL, &a.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return a, err
}

func (r *attachmentRepo) GetByDocumentID(ctx context.Context, documentID int64) ([]models.Attachment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, document_id, filename, content_type, size, storage_key, url, created_at
		 FROM attachments WHERE document_id = $1 ORDER BY created_at`, documentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attachments []models.Attachment
	for rows.Next() {
		var a models.Attachment
		if err := rows.Scan(&a.ID, &a.DocumentID, &a.Filename, &a.ContentType, &a.Size, &a.StorageKey, &a.URL, &a.CreatedAt); err != nil {
			return nil, err
		}
		attachments = append(attachments, a)
	}
	return attachments, rows.Err()
}

func (r *attachmentRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM attachments WHERE id = $1`, id)
	return err
}
