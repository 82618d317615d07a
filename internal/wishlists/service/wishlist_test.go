package service

import (
	"context"
	"testing"

	propertieserrors "rentals/internal/properties/errors"
	wishlistserrors "rentals/internal/wishlists/errors"
	"rentals/pkg/auth"
	"rentals/pkg/config"
	apperrors "rentals/pkg/errors"
	"rentals/pkg/logger"
	"rentals/pkg/model"
	"rentals/pkg/validation"
)

// ────────────────────────────────────────────────
// Mocks
// ────────────────────────────────────────────────

type mockWishlistRepository struct {
	lists map[string][]string
}

func (m *mockWishlistRepository) Add(ctx context.Context, userID, propertyID string) (bool, error) {
	for _, id := range m.lists[userID] {
		if id == propertyID {
			return false, nil
		}
	}
	m.lists[userID] = append(m.lists[userID], propertyID)
	return true, nil
}

func (m *mockWishlistRepository) FindByUser(ctx context.Context, userID string) (*model.Wishlist, error) {
	return &model.Wishlist{User: userID, Properties: append([]string{}, m.lists[userID]...)}, nil
}

func (m *mockWishlistRepository) Remove(ctx context.Context, userID, propertyID string) error {
	ids := m.lists[userID]
	for i, id := range ids {
		if id == propertyID {
			m.lists[userID] = append(ids[:i], ids[i+1:]...)
			return nil
		}
	}
	return wishlistserrors.ErrNotInWishlist
}

type mockListings struct {
	properties map[string]*model.Property
}

func (m *mockListings) FindByID(ctx context.Context, id string) (*model.Property, error) {
	p, ok := m.properties[id]
	if !ok {
		return nil, propertieserrors.ErrNotFound
	}
	return p, nil
}

func (m *mockListings) FindByIDs(ctx context.Context, ids []string) ([]*model.Property, error) {
	found := []*model.Property{}
	for _, id := range ids {
		if p, ok := m.properties[id]; ok {
			found = append(found, p)
		}
	}
	return found, nil
}

// ────────────────────────────────────────────────
// Fixtures
// ────────────────────────────────────────────────

const (
	userID      = "65a000000000000000000001"
	publishedID = "65b000000000000000000001"
	secondID    = "65b000000000000000000002"
	pendingID   = "65b000000000000000000003"
	missingID   = "65b000000000000000000009"
)

func newTestService() (WishlistService, *mockWishlistRepository, *mockListings) {
	repo := &mockWishlistRepository{lists: map[string][]string{}}
	listings := &mockListings{properties: map[string]*model.Property{
		publishedID: {ID: publishedID, Title: "Harbour loft", Status: model.PropertyPublished},
		secondID:    {ID: secondID, Title: "Garden flat", Status: model.PropertyPublished},
		pendingID:   {ID: pendingID, Title: "Draft", Status: model.PropertyPending},
	}}
	cfg := &config.Config{Log: logger.Discard()}
	return NewWishlistService(repo, listings, validation.New(logger.Discard()), cfg), repo, listings
}

func asUser() context.Context {
	return auth.WithActor(context.Background(), &auth.Actor{ID: userID, Role: model.RoleUser})
}

func code(err error) string {
	if err == nil {
		return ""
	}
	return apperrors.AsAppError(err).Code
}

// ────────────────────────────────────────────────
// Tests
// ────────────────────────────────────────────────

func TestAdd_ReportsWhetherNew(t *testing.T) {
	svc, _, _ := newTestService()

	first, err := svc.Add(asUser(), &model.WishlistAdd{PropertyID: publishedID})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if first.IsNewProperty == nil || !*first.IsNewProperty || first.TotalItems != 1 {
		t.Errorf("first add: %+v", first)
	}

	again, err := svc.Add(asUser(), &model.WishlistAdd{PropertyID: publishedID})
	if err != nil {
		t.Fatalf("Add again: %v", err)
	}
	if again.IsNewProperty == nil || *again.IsNewProperty || again.TotalItems != 1 {
		t.Errorf("repeat add should not duplicate: %+v", again)
	}
}

func TestAdd_Rejections(t *testing.T) {
	tests := []struct {
		name       string
		ctx        context.Context
		propertyID string
		expectCode string
	}{
		{name: "not published", ctx: asUser(), propertyID: pendingID, expectCode: apperrors.CodeNotFound},
		{name: "unknown property", ctx: asUser(), propertyID: missingID, expectCode: apperrors.CodeNotFound},
		{name: "malformed id", ctx: asUser(), propertyID: "abc", expectCode: apperrors.CodeValidation},
		{name: "anonymous", ctx: context.Background(), propertyID: publishedID, expectCode: apperrors.CodeUnauthorized},
		{
			name:       "owner role",
			ctx:        auth.WithActor(context.Background(), &auth.Actor{ID: "o1", Role: model.RoleOwner}),
			propertyID: publishedID,
			expectCode: apperrors.CodeForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newTestService()
			_, err := svc.Add(tt.ctx, &model.WishlistAdd{PropertyID: tt.propertyID})
			if code(err) != tt.expectCode {
				t.Errorf("code = %q, want %q (err: %v)", code(err), tt.expectCode, err)
			}
			if len(repo.lists[userID]) != 0 {
				t.Error("wishlist must stay empty")
			}
		})
	}
}

func TestList_KeepsSavedOrderAndSkipsDeleted(t *testing.T) {
	svc, repo, _ := newTestService()
	repo.lists[userID] = []string{secondID, missingID, publishedID}

	view, err := svc.List(asUser())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if view.TotalItems != 2 || view.Properties[0].ID != secondID || view.Properties[1].ID != publishedID {
		t.Errorf("unexpected view: %+v", view.Properties)
	}
	if view.IsNewProperty != nil {
		t.Error("is_new_property is only reported by Add")
	}
}

func TestRemove(t *testing.T) {
	svc, repo, _ := newTestService()
	repo.lists[userID] = []string{publishedID, secondID}

	view, err := svc.Remove(asUser(), publishedID)
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if view.TotalItems != 1 || view.Properties[0].ID != secondID {
		t.Errorf("unexpected view: %+v", view.Properties)
	}

	if _, err := svc.Remove(asUser(), publishedID); code(err) != apperrors.CodeNotFound {
		t.Errorf("second remove: code = %q, want NOT_FOUND", code(err))
	}
}
