package database

import (
	"context"

	"github.com/ivopashov/classdocs/internal/access"
	"github.com/ivopashov/classdocs/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdateRole(ctx context.Context, id int64, role access.Role) error
	Delete(ctx context.Context, id int64) error
}

type GroupRepository interface {
	Create(ctx context.Context, group *models.Group) error
	GetByID(ctx context.Context, id int64) (*models.Group, error)
	List(ctx context.Context) ([]models.Group, error)
	Update(ctx context.Context, group *models.Group) error
	Delete(ctx context.Context, id int64) error
	AddMember(ctx context.Context, member *models.GroupMember) error
	RemoveMember(ctx context.Context, groupID, userID int64) error
	SetMemberAdmin(ctx context.Context, groupID, userID int64, isAdmin bool) error
	GetMembers(ctx context.Context, groupID int64) ([]models.GroupMember, error)
	GetMembershipsByUser(ctx context.Context, userID int64) ([]models.GroupMember, error)
}

type DocumentRootRepository interface {
	Create(ctx context.Context, root *models.DocumentRoot) error
	GetByID(ctx context.Context, id int64) (*models.DocumentRoot, error)
	List(ctx context.Context) ([]models.DocumentRoot, error)
	Update(ctx context.Context, root *models.DocumentRoot) error
	Delete(ctx context.Context, id int64) error
}

type PermissionRepository interface {
	SetUserPermission(ctx context.Context, perm *models.RootUserPermission) error
	DeleteUserPermission(ctx context.Context, rootID, userID int64) error
	SetGroupPermission(ctx context.Context, perm *models.RootGroupPermission) error
	DeleteGroupPermission(ctx context.Context, rootID, groupID int64) error
	GetUserPermissions(ctx context.Context, rootID int64) ([]models.RootUserPermission, error)
	GetGroupPermissions(ctx context.Context, rootID int64) ([]models.RootGroupPermission, error)
}

type DocumentRepository interface {
	Create(ctx context.Context, doc *models.Document) error
	GetByID(ctx context.Context, id int64) (*models.Document, error)
	GetByRootID(ctx context.Context, rootID int64) ([]models.Document, error)
	Update(ctx context.Context, doc *models.Document) error
	UpdateParent(ctx context.Context, id int64, parentID *int64) error
	Delete(ctx context.Context, id int64) error
	IsDescendant(ctx context.Context, ancestorID, candidateID int64) (bool, error)
}

type AttachmentRepository interface {
	Create(ctx context.Context, attachment *models.Attachment) error
	GetByID(ctx context.Context, id int64) (*models.Attachment, error)
	GetByDocumentID(ctx context.Context, documentID int64) ([]models.Attachment, error)
	Delete(ctx context.Context, id int64) error
}

type SignupTokenRepository interface {
	Create(ctx context.Context, token *models.SignupToken) error
	GetByToken(ctx context.Context, token string) (*models.SignupToken, error)
	List(ctx context.Context) ([]models.SignupToken, error)
	MarkUsed(ctx context.Context, token string, userID int64) error
	Delete(ctx context.Context, token string) error
}

type TemplateRepository interface {
	Create(ctx context.Context, tmpl *models.Template) error
	GetByID(ctx context.Context, id int64) (*models.Template, error)
	List(ctx context.Context) ([]models.Template, error)
	Update(ctx context.Context, tmpl *models.Template) error
	Delete(ctx context.Context, id int64) error
}
