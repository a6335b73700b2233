package service

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/ivopashov/classdocs/internal/access"
	"github.com/ivopashov/classdocs/internal/database"
	"github.com/ivopashov/classdocs/internal/models"
	"github.com/ivopashov/classdocs/internal/snowflake"
	"github.com/ivopashov/classdocs/internal/storage"
)

const maxUploadSize = 10 << 20 // 10 MB

var allowedContentTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,
	"application/pdf": true,
	"text/plain":      true,
}

// FileStorage abstracts object storage operations for testability.
type FileStorage interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	GetURL(key string) string
	Delete(ctx context.Context, key string) error
}

// UploadService handles document attachment business logic.
type UploadService struct {
	attachments database.AttachmentRepository
	documents   database.DocumentRepository
	snowflake   *snowflake.Generator
	storage     FileStorage
	checker     *AccessChecker
}

// NewUploadService creates an UploadService.
func NewUploadService(
	attachments database.AttachmentRepository,
	documents database.DocumentRepository,
	sf *snowflake.Generator,
	store FileStorage,
	checker *AccessChecker,
) *UploadService {
	return &UploadService{
		attachments: attachments,
		documents:   documents,
		snowflake:   sf,
		storage:     store,
		checker:     checker,
	}
}

// UploadAttachment uploads a file and attaches it to a document. Requires RW
// on the document's root.
func (s *UploadService) UploadAttachment(ctx context.Context, userID int64, role access.Role, documentID int64, filename string, size int64, contentType string, reader io.Reader) (*models.Attachment, error) {
	doc, err := s.documents.GetByID(ctx, documentID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if doc == nil {
		return nil, NotFound("NOT_FOUND", "document not found")
	}

	if _, err := s.checker.RequireRootAccess(ctx, userID, role, doc.RootID, access.LevelRW); err != nil {
		return nil, err
	}

	if size > maxUploadSize {
		return nil, BadRequest("FILE_TOO_LARGE", "file must be under 10 MB")
	}
	if !isAllowedContentType(contentType) {
		return nil, BadRequest("INVALID_CONTENT_TYPE", "file type not allowed")
	}

	cleanFilename := filepath.Base(filename)
	storageKey := storage.AttachmentKey(documentID, cleanFilename)

	if err := s.storage.Upload(ctx, storageKey, reader, size, contentType); err != nil {
		return nil, NewError(ErrInternal, "UPLOAD_FAILED", "failed to upload file")
	}

	attachment := &models.Attachment{
		ID:          s.snowflake.Generate().Int64(),
		DocumentID:  documentID,
		Filename:    cleanFilename,
		ContentType: contentType,
		Size:        size,
		StorageKey:  storageKey,
		URL:         s.storage.GetURL(storageKey),
		CreatedAt:   time.Now(),
	}
	if err := s.attachments.Create(ctx, attachment); err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	return attachment, nil
}

// ListAttachments returns a document's attachments if the user can read the
// root.
func (s *UploadService) ListAttachments(ctx context.Context, userID int64, role access.Role, documentID int64) ([]models.Attachment, error) {
	doc, err := s.documents.GetByID(ctx, documentID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if doc == nil {
		return nil, NotFound("NOT_FOUND", "document not found")
	}

	if _, err := s.checker.RequireRootAccess(ctx, userID, role, doc.RootID, access.LevelRO); err != nil {
		return nil, err
	}

	attachments, err := s.attachments.GetByDocumentID(ctx, documentID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if attachments == nil {
		attachments = []models.Attachment{}
	}
	return attachments, nil
}

// DeleteAttachment removes an attachment. Requires RW on the root.
func (s *UploadService) DeleteAttachment(ctx context.Context, userID int64, role access.Role, attachmentID int64) error {
	attachment, err := s.attachments.GetByID(ctx, attachmentID)
	if err != nil {
		return Internal("INTERNAL", "internal server error")
	}
	if attachment == nil {
		return NotFound("NOT_FOUND", "attachment not found")
	}

	doc, err := s.documents.GetByID(ctx, attachment.DocumentID)
	if err != nil {
		return Internal("INTERNAL", "internal server error")
	}
	if doc == nil {
		return NotFound("NOT_FOUND", "document not found")
	}

	if _, err := s.checker.RequireRootAccess(ctx, userID, role, doc.RootID, access.LevelRW); err != nil {
		return err
	}

	if err := s.attachments.Delete(ctx, attachmentID); err != nil {
		return Internal("INTERNAL", "internal server error")
	}
	// Object removal is best effort; the row is already gone.
	_ = s.storage.Delete(ctx, attachment.StorageKey)
	return nil
}

func isAllowedContentType(ct string) bool {
	if allowedContentTypes[ct] {
		return true
	}
	return strings.HasPrefix(ct, "image/")
}
