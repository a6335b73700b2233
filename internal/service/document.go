package service

import (
	"context"
	"time"

	"github.com/ivopashov/classdocs/internal/access"
	"github.com/ivopashov/classdocs/internal/database"
	"github.com/ivopashov/classdocs/internal/gateway"
	"github.com/ivopashov/classdocs/internal/models"
	"github.com/ivopashov/classdocs/internal/snowflake"
)

// DocumentService handles document business logic. Documents carry no
// permissions of their own; every check resolves against the root.
type DocumentService struct {
	documents database.DocumentRepository
	templates database.TemplateRepository
	snowflake *snowflake.Generator
	gateway   gateway.Dispatcher
	checker   *AccessChecker
}

// NewDocumentService creates a DocumentService.
func NewDocumentService(
	documents database.DocumentRepository,
	templates database.TemplateRepository,
	sf *snowflake.Generator,
	gw gateway.Dispatcher,
	checker *AccessChecker,
) *DocumentService {
	return &DocumentService{
		documents: documents,
		templates: templates,
		snowflake: sf,
		gateway:   gw,
		checker:   checker,
	}
}

// CreateDocument creates a document under a root. Requires RW on the root.
// A template ID seeds the initial content.
func (s *DocumentService) CreateDocument(ctx context.Context, userID int64, role access.Role, rootID int64, parentID *int64, title, content string, templateID *int64) (*models.Document, error) {
	if _, err := s.checker.RequireRootAccess(ctx, userID, role, rootID, access.LevelRW); err != nil {
		return nil, err
	}
	if len(title) < 1 || len(title) > 300 {
		return nil, BadRequest("INVALID_TITLE", "title must be 1-300 characters")
	}

	if parentID != nil {
		parent, err := s.documents.GetByID(ctx, *parentID)
		if err != nil {
			return nil, Internal("INTERNAL", "internal server error")
		}
		if parent == nil || parent.RootID != rootID {
			return nil, BadRequest("INVALID_PARENT", "parent document must exist under the same root")
		}
	}

	if templateID != nil {
		tmpl, err := s.templates.GetByID(ctx, *templateID)
		if err != nil {
			return nil, Internal("INTERNAL", "internal server error")
		}
		if tmpl == nil {
			return nil, NotFound("NOT_FOUND", "template not found")
		}
		content = tmpl.Content
	}

	doc := &models.Document{
		ID:        s.snowflake.Generate().Int64(),
		RootID:    rootID,
		AuthorID:  userID,
		ParentID:  parentID,
		Title:     title,
		Content:   content,
		CreatedAt: time.Now(),
	}
	if err := s.documents.Create(ctx, doc); err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	s.dispatchDocumentEvent(ctx, userID, rootID, gateway.EventDocumentCreate, doc)
	return doc, nil
}

// GetDocument returns a document if the user can read its root.
func (s *DocumentService) GetDocument(ctx context.Context, userID int64, role access.Role, documentID int64) (*models.Document, error) {
	doc, err := s.documents.GetByID(ctx, documentID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if doc == nil {
		return nil, NotFound("NOT_FOUND", "document not found")
	}

	if _, err := s.checker.RequireRootAccess(ctx, userID, role, doc.RootID, access.LevelRO); err != nil {
		// Mirror the root policy: an invisible root hides its documents.
		return nil, err
	}
	return doc, nil
}

// ListDocuments returns all documents under a root the user can read.
func (s *DocumentService) ListDocuments(ctx context.Context, userID int64, role access.Role, rootID int64) ([]models.Document, error) {
	if _, err := s.checker.RequireRootAccess(ctx, userID, role, rootID, access.LevelRO); err != nil {
		return nil, err
	}

	docs, err := s.documents.GetByRootID(ctx, rootID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if docs == nil {
		docs = []models.Document{}
	}
	return docs, nil
}

// UpdateDocument updates a document's title and/or content. Requires RW on
// the root.
func (s *DocumentService) UpdateDocument(ctx context.Context, userID int64, role access.Role, documentID int64, title, content *string) (*models.Document, error) {
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

	if title != nil {
		if len(*title) < 1 || len(*title) > 300 {
			return nil, BadRequest("INVALID_TITLE", "title must be 1-300 characters")
		}
		doc.Title = *title
	}
	if content != nil {
		doc.Content = *content
	}

	if err := s.documents.Update(ctx, doc); err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	s.dispatchDocumentEvent(ctx, userID, doc.RootID, gateway.EventDocumentUpdate, doc)
	return doc, nil
}

// MoveDocument re-parents a document within its root. The new parent must
// not sit in the document's own subtree; that would make the tree cyclic.
func (s *DocumentService) MoveDocument(ctx context.Context, userID int64, role access.Role, documentID int64, newParentID *int64) (*models.Document, error) {
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

	if newParentID != nil {
		parent, err := s.documents.GetByID(ctx, *newParentID)
		if err != nil {
			return nil, Internal("INTERNAL", "internal server error")
		}
		if parent == nil || parent.RootID != doc.RootID {
			return nil, BadRequest("INVALID_PARENT", "parent document must exist under the same root")
		}

		cyclic, err := s.documents.IsDescendant(ctx, documentID, *newParentID)
		if err != nil {
			return nil, Internal("INTERNAL", "internal server error")
		}
		if cyclic {
			return nil, BadRequest("CYCLIC_PARENT", "cannot move a document under its own subtree")
		}
	}

	if err := s.documents.UpdateParent(ctx, documentID, newParentID); err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	doc.ParentID = newParentID

	s.dispatchDocumentEvent(ctx, userID, doc.RootID, gateway.EventDocumentUpdate, doc)
	return doc, nil
}

// DeleteDocument deletes a document. Requires RW on the root.
func (s *DocumentService) DeleteDocument(ctx context.Context, userID int64, role access.Role, documentID int64) error {
	doc, err := s.documents.GetByID(ctx, documentID)
	if err != nil {
		return Internal("INTERNAL", "internal server error")
	}
	if doc == nil {
		return NotFound("NOT_FOUND", "document not found")
	}

	if _, err := s.checker.RequireRootAccess(ctx, userID, role, doc.RootID, access.LevelRW); err != nil {
		return err
	}

	if err := s.documents.Delete(ctx, documentID); err != nil {
		return Internal("INTERNAL", "internal server error")
	}

	s.dispatchDocumentEvent(ctx, userID, doc.RootID, gateway.EventDocumentDelete, map[string]string{
		"id":      snowflake.ID(documentID).String(),
		"root_id": snowflake.ID(doc.RootID).String(),
	})
	return nil
}

func (s *DocumentService) dispatchDocumentEvent(ctx context.Context, actorID, rootID int64, event string, data any) {
	audience, err := s.checker.AudienceForRoot(ctx, rootID, actorID)
	if err != nil {
		return
	}
	s.gateway.DispatchToAudience(audience, event, data)
}
