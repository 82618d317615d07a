package mongo

import (
	"context"
	"errors"
	"testing"

	accountserrors "rentals/internal/accounts/errors"
	"rentals/pkg/auth"
	"rentals/pkg/logger"
	"rentals/pkg/model"
)

type mockAdminAccounts struct {
	users      map[string]*model.User
	findErr    error
	createFunc func(ctx context.Context, user *model.User) error
	creates    int
}

func (m *mockAdminAccounts) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	u, ok := m.users[email]
	if !ok {
		return nil, accountserrors.ErrUserNotFound
	}
	return u, nil
}

func (m *mockAdminAccounts) Create(ctx context.Context, user *model.User) error {
	m.creates++
	if m.createFunc != nil {
		return m.createFunc(ctx, user)
	}
	user.ID = "65c000000000000000000001"
	m.users[user.Email] = user
	return nil
}

func TestEnsureAdmin_CreatesVerifiedAdmin(t *testing.T) {
	users := &mockAdminAccounts{users: map[string]*model.User{}}

	if err := EnsureAdmin(context.Background(), users, " Root@Example.com ", "bootstrap-pass", logger.Discard()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	admin, ok := users.users["root@example.com"]
	if !ok {
		t.Fatalf("admin not stored under normalized email: %v", users.users)
	}
	if admin.Role != model.RoleAdmin || !admin.Verified {
		t.Errorf("role=%s verified=%v", admin.Role, admin.Verified)
	}
	match, err := auth.CheckPassword("bootstrap-pass", admin.PasswordHash)
	if err != nil || !match {
		t.Errorf("stored hash does not match password: match=%v err=%v", match, err)
	}
}

func TestEnsureAdmin_Idempotent(t *testing.T) {
	users := &mockAdminAccounts{users: map[string]*model.User{
		"root@example.com": {Email: "root@example.com", Role: model.RoleAdmin},
	}}

	if err := EnsureAdmin(context.Background(), users, "root@example.com", "bootstrap-pass", logger.Discard()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if users.creates != 0 {
		t.Errorf("existing admin must not be recreated, creates=%d", users.creates)
	}
}

func TestEnsureAdmin_Outcomes(t *testing.T) {
	storeDown := errors.New("connection refused")

	tests := []struct {
		name        string
		email       string
		password    string
		users       *mockAdminAccounts
		wantErr     error
		wantCreates int
	}{
		{
			name:  "not configured",
			users: &mockAdminAccounts{users: map[string]*model.User{}},
		},
		{
			name:     "email held by a regular user",
			email:    "root@example.com",
			password: "bootstrap-pass",
			users: &mockAdminAccounts{users: map[string]*model.User{
				"root@example.com": {Email: "root@example.com", Role: model.RoleUser},
			}},
			wantErr: ErrAdminEmailInUse,
		},
		{
			name:       "store unavailable",
			email:      "root@example.com",
			password:   "bootstrap-pass",
			users:      &mockAdminAccounts{users: map[string]*model.User{}, findErr: storeDown},
			wantErr:    storeDown,
		},
		{
			name:     "lost creation race",
			email:    "root@example.com",
			password: "bootstrap-pass",
			users: &mockAdminAccounts{
				users: map[string]*model.User{},
				createFunc: func(ctx context.Context, user *model.User) error {
					return accountserrors.ErrEmailTaken
				},
			},
			wantCreates: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := EnsureAdmin(context.Background(), tt.users, tt.email, tt.password, logger.Discard())
			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if tt.users.creates != tt.wantCreates {
				t.Errorf("creates = %d, want %d", tt.users.creates, tt.wantCreates)
			}
		})
	}
}
