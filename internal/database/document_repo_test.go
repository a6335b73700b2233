package database

import (
	"context"
	"testing"
	"time"

	"github.com/ivopashov/classdocs/internal/access"
	"github.com/ivopashov/classdocs/internal/models"
)

func docTestFixture(t *testing.T, ctx context.Context) (authorID, rootID int64) {
	t.Helper()
	pool := testPool(t)
	users := NewUserRepository(pool)
	roots := NewDocumentRootRepository(pool)

	user := &models.User{
		ID:           nextID(),
		Username:     "doctest_" + time.Now().Format("150405.000000"),
		DisplayName:  "Doc Test",
		Role:         access.RoleStudent,
		PasswordHash: "$argon2id$v=19$m=65536,t=3,p=2$abc$def",
		CreatedAt:    time.Now().Truncate(time.Microsecond),
	}
	if err := users.Create(ctx, user); err != nil {
		t.Fatalf("Create user: %v", err)
	}
	t.Cleanup(func() { _ = users.Delete(ctx, user.ID) })

	root := &models.DocumentRoot{
		ID:           nextID(),
		Name:         "doc test root",
		SharedAccess: access.LevelRW,
		CreatedBy:    user.ID,
		CreatedAt:    time.Now().Truncate(time.Microsecond),
	}
	if err := roots.Create(ctx, root); err != nil {
		t.Fatalf("Create root: %v", err)
	}
	t.Cleanup(func() { _ = roots.Delete(ctx, root.ID) })

	return user.ID, root.ID
}

func createTestDoc(t *testing.T, ctx context.Context, repo DocumentRepository, rootID, authorID int64, parentID *int64) *models.Document {
	t.Helper()
	doc := &models.Document{
		ID:        nextID(),
		RootID:    rootID,
		AuthorID:  authorID,
		ParentID:  parentID,
		Title:     "test doc",
		Content:   "content",
		CreatedAt: time.Now().Truncate(time.Microsecond),
	}
	if err := repo.Create(ctx, doc); err != nil {
		t.Fatalf("Create document: %v", err)
	}
	t.Cleanup(func() { _ = repo.Delete(ctx, doc.ID) })
	return doc
}

func TestDocumentRepo_CreateAndGet(t *testing.T) {
	pool := testPool(t)
	repo := NewDocumentRepository(pool)
	ctx := context.Background()

	authorID, rootID := docTestFixture(t, ctx)
	doc := createTestDoc(t, ctx, repo, rootID, authorID, nil)

	got, err := repo.GetByID(ctx, doc.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got == nil {
		t.Fatal("GetByID returned nil after Create")
	}
	if got.RootID != rootID {
		t.Errorf("RootID = %d, want %d", got.RootID, rootID)
	}
	if got.ParentID != nil {
		t.Errorf("ParentID = %v, want nil", got.ParentID)
	}
	if got.UpdatedAt != nil {
		t.Errorf("UpdatedAt = %v for fresh document, want nil", got.UpdatedAt)
	}
}

func TestDocumentRepo_Update_SetsUpdatedAt(t *testing.T) {
	pool := testPool(t)
	repo := NewDocumentRepository(pool)
	ctx := context.Background()

	authorID, rootID := docTestFixture(t, ctx)
	doc := createTestDoc(t, ctx, repo, rootID, authorID, nil)

	doc.Content = "revised"
	if err := repo.Update(ctx, doc); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := repo.GetByID(ctx, doc.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Content != "revised" {
		t.Errorf("Content = %q, want %q", got.Content, "revised")
	}
	if got.UpdatedAt == nil {
		t.Error("UpdatedAt still nil after Update")
	}
}

func TestDocumentRepo_IsDescendant(t *testing.T) {
	pool := testPool(t)
	repo := NewDocumentRepository(pool)
	ctx := context.Background()

	authorID, rootID := docTestFixture(t, ctx)

	// grandparent -> parent -> child
	grandparent := createTestDoc(t, ctx, repo, rootID, authorID, nil)
	parent := createTestDoc(t, ctx, repo, rootID, authorID, &grandparent.ID)
	child := createTestDoc(t, ctx, repo, rootID, authorID, &parent.ID)
	sibling := createTestDoc(t, ctx, repo, rootID, authorID, nil)

	cases := []struct {
		name       string
		ancestor   int64
		candidate  int64
		descendant bool
	}{
		{"direct child", grandparent.ID, parent.ID, true},
		{"transitive", grandparent.ID, child.ID, true},
		{"self", grandparent.ID, grandparent.ID, true},
		{"unrelated", grandparent.ID, sibling.ID, false},
		{"inverted", child.ID, grandparent.ID, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := repo.IsDescendant(ctx, tc.ancestor, tc.candidate)
			if err != nil {
				t.Fatalf("IsDescendant: %v", err)
			}
			if got != tc.descendant {
				t.Errorf("IsDescendant(%d, %d) = %v, want %v", tc.ancestor, tc.candidate, got, tc.descendant)
			}
		})
	}
}

func TestDocumentRepo_UpdateParent(t *testing.T) {
	pool := testPool(t)
	repo := NewDocumentRepository(pool)
	ctx := context.Background()

	authorID, rootID := docTestFixture(t, ctx)
	parent := createTestDoc(t, ctx, repo, rootID, authorID, nil)
	doc := createTestDoc(t, ctx, repo, rootID, authorID, nil)

	if err := repo.UpdateParent(ctx, doc.ID, &parent.ID); err != nil {
		t.Fatalf("UpdateParent: %v", err)
	}
	got, err := repo.GetByID(ctx, doc.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.ParentID == nil || *got.ParentID != parent.ID {
		t.Errorf("ParentID = %v, want %d", got.ParentID, parent.ID)
	}

	// Detach back to the root level.
	if err := repo.UpdateParent(ctx, doc.ID, nil); err != nil {
		t.Fatalf("UpdateParent detach: %v", err)
	}
	got, err = repo.GetByID(ctx, doc.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.ParentID != nil {
		t.Errorf("ParentID = %v after detach, want nil", got.ParentID)
	}
}
