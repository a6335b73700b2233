package api

import (
	"context"
	"io"
	"net/http/httptest"
	"sync"

	"github.com/labstack/echo/v4"

	"github.com/ivopashov/classdocs/internal/access"
	"github.com/ivopashov/classdocs/internal/models"
	"github.com/ivopashov/classdocs/internal/snowflake"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

func newTestContext(method, path string, body io.Reader) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}

func setAuthUser(c echo.Context, userID int64, role access.Role) {
	c.Set("user_id", userID)
	c.Set("user_role", role)
}

func testSnowflake() *snowflake.Generator {
	sf, _ := snowflake.NewGenerator(1)
	return sf
}

// ---------------------------------------------------------------------------
// Mock gateway dispatcher
// ---------------------------------------------------------------------------

type dispatchedEvent struct {
	RoomID   string
	UserID   int64
	Audience access.Audience
	Event    string
	Data     any
}

type mockGateway struct {
	mu     sync.Mutex
	events []dispatchedEvent
	joins  []string
	leaves []string
}

func (m *mockGateway) DispatchToRoom(roomID string, event string, data interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, dispatchedEvent{RoomID: roomID, Event: event, Data: data})
}

func (m *mockGateway) DispatchToUser(userID int64, event string, data interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, dispatchedEvent{UserID: userID, Event: event, Data: data})
}

func (m *mockGateway) DispatchToAudience(audience access.Audience, event string, data interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, dispatchedEvent{Audience: audience, Event: event, Data: data})
}

func (m *mockGateway) JoinRoom(userID int64, roomID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.joins = append(m.joins, roomID)
}

func (m *mockGateway) LeaveRoom(userID int64, roomID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.leaves = append(m.leaves, roomID)
}

func (m *mockGateway) eventNames() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.events))
	for _, ev := range m.events {
		names = append(names, ev.Event)
	}
	return names
}

// ---------------------------------------------------------------------------
// Mock repositories
// ---------------------------------------------------------------------------

// mockUserRepo implements database.UserRepository.
type mockUserRepo struct {
	CreateFn        func(ctx context.Context, user *models.User) error
	GetByIDFn       func(ctx context.Context, id int64) (*models.User, error)
	GetByUsernameFn func(ctx context.Context, username string) (*models.User, error)
	ListFn          func(ctx context.Context) ([]models.User, error)
	UpdateFn        func(ctx context.Context, user *models.User) error
	UpdateRoleFn    func(ctx context.Context, id int64, role access.Role) error
	DeleteFn        func(ctx context.Context, id int64) error
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.GetByUsernameFn != nil {
		return m.GetByUsernameFn(ctx, username)
	}
	return nil, nil
}

func (m *mockUserRepo) List(ctx context.Context) ([]models.User, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}
	return nil, nil
}

func (m *mockUserRepo) Update(ctx context.Context, user *models.User) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepo) UpdateRole(ctx context.Context, id int64, role access.Role) error {
	if m.UpdateRoleFn != nil {
		return m.UpdateRoleFn(ctx, id, role)
	}
	return nil
}

func (m *mockUserRepo) Delete(ctx context.Context, id int64) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return nil
}

// mockGroupRepo implements database.GroupRepository.
type mockGroupRepo struct {
	CreateFn               func(ctx context.Context, group *models.Group) error
	GetByIDFn              func(ctx context.Context, id int64) (*models.Group, error)
	ListFn                 func(ctx context.Context) ([]models.Group, error)
	UpdateFn               func(ctx context.Context, group *models.Group) error
	DeleteFn               func(ctx context.Context, id int64) error
	AddMemberFn            func(ctx context.Context, member *models.GroupMember) error
	RemoveMemberFn         func(ctx context.Context, groupID, userID int64) error
	SetMemberAdminFn       func(ctx context.Context, groupID, userID int64, isAdmin bool) error
	GetMembersFn           func(ctx context.Context, groupID int64) ([]models.GroupMember, error)
	GetMembershipsByUserFn func(ctx context.Context, userID int64) ([]models.GroupMember, error)
}

func (m *mockGroupRepo) Create(ctx context.Context, group *models.Group) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, group)
	}
	return nil
}

func (m *mockGroupRepo) GetByID(ctx context.Context, id int64) (*models.Group, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockGroupRepo) List(ctx context.Context) ([]models.Group, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}
	return nil, nil
}

func (m *mockGroupRepo) Update(ctx context.Context, group *models.Group) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, group)
	}
	return nil
}

func (m *mockGroupRepo) Delete(ctx context.Context, id int64) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return nil
}

func (m *mockGroupRepo) AddMember(ctx context.Context, member *models.GroupMember) error {
	if m.AddMemberFn != nil {
		return m.AddMemberFn(ctx, member)
	}
	return nil
}

func (m *mockGroupRepo) RemoveMember(ctx context.Context, groupID, userID int64) error {
	if m.RemoveMemberFn != nil {
		return m.RemoveMemberFn(ctx, groupID, userID)
	}
	return nil
}

func (m *mockGroupRepo) SetMemberAdmin(ctx context.Context, groupID, userID int64, isAdmin bool) error {
	if m.SetMemberAdminFn != nil {
		return m.SetMemberAdminFn(ctx, groupID, userID, isAdmin)
	}
	return nil
}

func (m *mockGroupRepo) GetMembers(ctx context.Context, groupID int64) ([]models.GroupMember, error) {
	if m.GetMembersFn != nil {
		return m.GetMembersFn(ctx, groupID)
	}
	return nil, nil
}

func (m *mockGroupRepo) GetMembershipsByUser(ctx context.Context, userID int64) ([]models.GroupMember, error) {
	if m.GetMembershipsByUserFn != nil {
		return m.GetMembershipsByUserFn(ctx, userID)
	}
	return nil, nil
}

// mockRootRepo implements database.DocumentRootRepository.
type mockRootRepo struct {
	CreateFn  func(ctx context.Context, root *models.DocumentRoot) error
	GetByIDFn func(ctx context.Context, id int64) (*models.DocumentRoot, error)
	ListFn    func(ctx context.Context) ([]models.DocumentRoot, error)
	UpdateFn  func(ctx context.Context, root *models.DocumentRoot) error
	DeleteFn  func(ctx context.Context, id int64) error
}

func (m *mockRootRepo) Create(ctx context.Context, root *models.DocumentRoot) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, root)
	}
	return nil
}

func (m *mockRootRepo) GetByID(ctx context.Context, id int64) (*models.DocumentRoot, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockRootRepo) List(ctx context.Context) ([]models.DocumentRoot, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}
	return nil, nil
}

func (m *mockRootRepo) Update(ctx context.Context, root *models.DocumentRoot) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, root)
	}
	return nil
}

func (m *mockRootRepo) Delete(ctx context.Context, id int64) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return nil
}

// mockPermissionRepo implements database.PermissionRepository.
type mockPermissionRepo struct {
	SetUserPermissionFn    func(ctx context.Context, perm *models.RootUserPermission) error
	DeleteUserPermissionFn func(ctx context.Context, rootID, userID int64) error
	SetGroupPermissionFn   func(ctx context.Context, perm *models.RootGroupPermission) error
	DeleteGroupPermissionFn func(ctx context.Context, rootID, groupID int64) error
	GetUserPermissionsFn   func(ctx context.Context, rootID int64) ([]models.RootUserPermission, error)
	GetGroupPermissionsFn  func(ctx context.Context, rootID int64) ([]models.RootGroupPermission, error)
}

func (m *mockPermissionRepo) SetUserPermission(ctx context.Context, perm *models.RootUserPermission) error {
	if m.SetUserPermissionFn != nil {
		return m.SetUserPermissionFn(ctx, perm)
	}
	return nil
}

func (m *mockPermissionRepo) DeleteUserPermission(ctx context.Context, rootID, userID int64) error {
	if m.DeleteUserPermissionFn != nil {
		return m.DeleteUserPermissionFn(ctx, rootID, userID)
	}
	return nil
}

func (m *mockPermissionRepo) SetGroupPermission(ctx context.Context, perm *models.RootGroupPermission) error {
	if m.SetGroupPermissionFn != nil {
		return m.SetGroupPermissionFn(ctx, perm)
	}
	return nil
}

func (m *mockPermissionRepo) DeleteGroupPermission(ctx context.Context, rootID, groupID int64) error {
	if m.DeleteGroupPermissionFn != nil {
		return m.DeleteGroupPermissionFn(ctx, rootID, groupID)
	}
	return nil
}

func (m *mockPermissionRepo) GetUserPermissions(ctx context.Context, rootID int64) ([]models.RootUserPermission, error) {
	if m.GetUserPermissionsFn != nil {
		return m.GetUserPermissionsFn(ctx, rootID)
	}
	return nil, nil
}

func (m *mockPermissionRepo) GetGroupPermissions(ctx context.Context, rootID int64) ([]models.RootGroupPermission, error) {
	if m.GetGroupPermissionsFn != nil {
		return m.GetGroupPermissionsFn(ctx, rootID)
	}
	return nil, nil
}

// mockDocumentRepo implements database.DocumentRepository.
type mockDocumentRepo struct {
	CreateFn       func(ctx context.Context, doc *models.Document) error
	GetByIDFn      func(ctx context.Context, id int64) (*models.Document, error)
	GetByRootIDFn  func(ctx context.Context, rootID int64) ([]models.Document, error)
	UpdateFn       func(ctx context.Context, doc *models.Document) error
	UpdateParentFn func(ctx context.Context, id int64, parentID *int64) error
	DeleteFn       func(ctx context.Context, id int64) error
	IsDescendantFn func(ctx context.Context, ancestorID, candidateID int64) (bool, error)
}

func (m *mockDocumentRepo) Create(ctx context.Context, doc *models.Document) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, doc)
	}
	return nil
}

func (m *mockDocumentRepo) GetByID(ctx context.Context, id int64) (*models.Document, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockDocumentRepo) GetByRootID(ctx context.Context, rootID int64) ([]models.Document, error) {
	if m.GetByRootIDFn != nil {
		return m.GetByRootIDFn(ctx, rootID)
	}
	return nil, nil
}

func (m *mockDocumentRepo) Update(ctx context.Context, doc *models.Document) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, doc)
	}
	return nil
}

func (m *mockDocumentRepo) UpdateParent(ctx context.Context, id int64, parentID *int64) error {
	if m.UpdateParentFn != nil {
		return m.UpdateParentFn(ctx, id, parentID)
	}
	return nil
}

func (m *mockDocumentRepo) Delete(ctx context.Context, id int64) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return nil
}

func (m *mockDocumentRepo) IsDescendant(ctx context.Context, ancestorID, candidateID int64) (bool, error) {
	if m.IsDescendantFn != nil {
		return m.IsDescendantFn(ctx, ancestorID, candidateID)
	}
	return false, nil
}

// mockAttachmentRepo implements database.AttachmentRepository.
type mockAttachmentRepo struct {
	CreateFn          func(ctx context.Context, attachment *models.Attachment) error
	GetByIDFn         func(ctx context.Context, id int64) (*models.Attachment, error)
	GetByDocumentIDFn func(ctx context.Context, documentID int64) ([]models.Attachment, error)
	DeleteFn          func(ctx context.Context, id int64) error
}

func (m *mockAttachmentRepo) Create(ctx context.Context, attachment *models.Attachment) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, attachment)
	}
	return nil
}

func (m *mockAttachmentRepo) GetByID(ctx context.Context, id int64) (*models.Attachment, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockAttachmentRepo) GetByDocumentID(ctx context.Context, documentID int64) ([]models.Attachment, error) {
	if m.GetByDocumentIDFn != nil {
		return m.GetByDocumentIDFn(ctx, documentID)
	}
	return nil, nil
}

func (m *mockAttachmentRepo) Delete(ctx context.Context, id int64) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return nil
}

// mockSignupTokenRepo implements database.SignupTokenRepository.
type mockSignupTokenRepo struct {
	CreateFn     func(ctx context.Context, token *models.SignupToken) error
	GetByTokenFn func(ctx context.Context, token string) (*models.SignupToken, error)
	ListFn       func(ctx context.Context) ([]models.SignupToken, error)
	MarkUsedFn   func(ctx context.Context, token string, userID int64) error
	DeleteFn     func(ctx context.Context, token string) error
}

func (m *mockSignupTokenRepo) Create(ctx context.Context, token *models.SignupToken) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, token)
	}
	return nil
}

func (m *mockSignupTokenRepo) GetByToken(ctx context.Context, token string) (*models.SignupToken, error) {
	if m.GetByTokenFn != nil {
		return m.GetByTokenFn(ctx, token)
	}
	return nil, nil
}

func (m *mockSignupTokenRepo) List(ctx context.Context) ([]models.SignupToken, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}
	return nil, nil
}

func (m *mockSignupTokenRepo) MarkUsed(ctx context.Context, token string, userID int64) error {
	if m.MarkUsedFn != nil {
		return m.MarkUsedFn(ctx, token, userID)
	}
	return nil
}

func (m *mockSignupTokenRepo) Delete(ctx context.Context, token string) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, token)
	}
	return nil
}

// mockTemplateRepo implements database.TemplateRepository.
type mockTemplateRepo struct {
	CreateFn  func(ctx context.Context, tmpl *models.Template) error
	GetByIDFn func(ctx context.Context, id int64) (*models.Template, error)
	ListFn    func(ctx context.Context) ([]models.Template, error)
	UpdateFn  func(ctx context.Context, tmpl *models.Template) error
	DeleteFn  func(ctx context.Context, id int64) error
}

func (m *mockTemplateRepo) Create(ctx context.Context, tmpl *models.Template) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, tmpl)
	}
	return nil
}

func (m *mockTemplateRepo) GetByID(ctx context.Context, id int64) (*models.Template, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockTemplateRepo) List(ctx context.Context) ([]models.Template, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}
	return nil, nil
}

func (m *mockTemplateRepo) Update(ctx context.Context, tmpl *models.Template) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, tmpl)
	}
	return nil
}

func (m *mockTemplateRepo) Delete(ctx context.Context, id int64) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return nil
}
