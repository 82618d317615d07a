package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	accountserrors "rentals/internal/accounts/errors"
	"rentals/pkg/auth"
	"rentals/pkg/logger"
	"rentals/pkg/model"
	"rentals/pkg/sanitizer"
)

// AdminAccounts is the part of the user store the bootstrap needs.
type AdminAccounts interface {
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
}

var ErrAdminEmailInUse = errors.New("admin email belongs to a non-admin account")

// EnsureAdmin creates a verified administrator for email unless one exists.
// Registration only issues user and owner roles, so this is the only way an
// admin account comes into being. Empty credentials skip the step. An
// existing non-admin account with that email is left untouched.
func EnsureAdmin(ctx context.Context, users AdminAccounts, email, password string, log *logger.Logger) error {
	if email == "" || password == "" {
		log.Info("Admin bootstrap not configured, skipping")
		return nil
	}
	email = sanitizer.NormalizeEmail(email)

	existing, err := users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.Role != model.RoleAdmin {
			return fmt.Errorf("%w: %s", ErrAdminEmailInUse, email)
		}
		log.Info("Admin account already exists", "email", email)
		return nil
	case !errors.Is(err, accountserrors.ErrUserNotFound):
		return fmt.Errorf("failed to look up admin account: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := &model.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    "Admin",
		Verified:     true,
		Role:         model.RoleAdmin,
		CreatedAt:    time.Now().UTC().Truncate(time.Millisecond),
	}
	if err := users.Create(ctx, admin); err != nil {
		if errors.Is(err, accountserrors.ErrEmailTaken) {
			log.Info("Admin account created concurrently", "email", email)
			return nil
		}
		return fmt.Errorf("failed to create admin account: %w", err)
	}

	log.Info("Admin account created", "email", email, "id", admin.ID)
	return nil
}
