package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	accountserrors "rentals/internal/accounts/errors"
	"rentals/pkg/auth"
	"rentals/pkg/config"
	mongotx "rentals/pkg/db/mongo"
	apperrors "rentals/pkg/errors"
	"rentals/pkg/logger"
	"rentals/pkg/mailer"
	"rentals/pkg/model"
	"rentals/pkg/validation"

	"go.mongodb.org/mongo-driver/mongo"
)

// ────────────────────────────────────────────────
// Mocks
// ────────────────────────────────────────────────

type mockUserRepository struct {
	mu    sync.Mutex
	users map[string]*model.User

	createFunc func(ctx context.Context, user *model.User) error
	txCalls    int
}

func newMockUserRepository(users ...*model.User) *mockUserRepository {
	m := &mockUserRepository{users: map[string]*model.User{}}
	for _, u := range users {
		m.users[u.Email] = u
	}
	return m
}

func (m *mockUserRepository) Create(ctx context.Context, user *model.User) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, user)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.Email]; ok {
		return accountserrors.ErrEmailTaken
	}
	user.ID = fmt.Sprintf("%024d", len(m.users)+1)
	m.users[user.Email] = user
	return nil
}

func (m *mockUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, accountserrors.ErrUserNotFound
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[email]
	if !ok {
		return nil, accountserrors.ErrUserNotFound
	}
	return u, nil
}

func (m *mockUserRepository) MarkVerified(ctx context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[email]
	if !ok {
		return nil, accountserrors.ErrUserNotFound
	}
	u.Verified = true
	return u, nil
}

func (m *mockUserRepository) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[email]
	if !ok {
		return accountserrors.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (m *mockUserRepository) FindAll(ctx context.Context, skip int64, limit int) ([]*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	users := []*model.User{}
	for _, u := range m.users {
		users = append(users, u)
	}
	if int(skip) >= len(users) {
		return []*model.User{}, nil
	}
	users = users[skip:]
	if len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

func (m *mockUserRepository) Count(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.users)), nil
}

func (m *mockUserRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	m.txCalls++
	return fn(mongo.NewSessionContext(ctx, nil))
}

type mockOwnerRepository struct {
	owners     []*model.Owner
	createFunc func(ctx context.Context, owner *model.Owner) error
}

func (m *mockOwnerRepository) Create(ctx context.Context, owner *model.Owner) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, owner)
	}
	owner.ID = fmt.Sprintf("%024d", len(m.owners)+100)
	m.owners = append(m.owners, owner)
	return nil
}

func (m *mockOwnerRepository) FindByID(ctx context.Context, id string) (*model.Owner, error) {
	for _, o := range m.owners {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, accountserrors.ErrOwnerNotFound
}

func (m *mockOwnerRepository) FindByUser(ctx context.Context, userID string) (*model.Owner, error) {
	for _, o := range m.owners {
		if o.User == userID {
			return o, nil
		}
	}
	return nil, accountserrors.ErrOwnerNotFound
}

func (m *mockOwnerRepository) AddProperty(ctx context.Context, ownerID, propertyID string) error {
	return nil
}

func (m *mockOwnerRepository) RemoveProperty(ctx context.Context, ownerID, propertyID string) error {
	return nil
}

type mockOTPRepository struct {
	mu   sync.Mutex
	otps map[string]*model.OTP
}

func newMockOTPRepository() *mockOTPRepository {
	return &mockOTPRepository{otps: map[string]*model.OTP{}}
}

func (m *mockOTPRepository) Upsert(ctx context.Context, otp *model.OTP) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.otps[otp.Email] = otp
	return nil
}

func (m *mockOTPRepository) FindByEmail(ctx context.Context, email string) (*model.OTP, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	otp, ok := m.otps[email]
	if !ok {
		return nil, accountserrors.ErrOTPNotFound
	}
	return otp, nil
}

func (m *mockOTPRepository) Delete(ctx context.Context, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.otps, email)
	return nil
}

func (m *mockOTPRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

type mockMailer struct {
	sent    []mailer.Email
	sendErr error
}

func (m *mockMailer) Send(ctx context.Context, email mailer.Email) (string, error) {
	if m.sendErr != nil {
		return "", m.sendErr
	}
	m.sent = append(m.sent, email)
	return "msg-1", nil
}

// ────────────────────────────────────────────────
// Fixtures
// ────────────────────────────────────────────────

const fixedCode = "123456"

type fixture struct {
	svc    *accountService
	users  *mockUserRepository
	owners *mockOwnerRepository
	otps   *mockOTPRepository
	mail   *mockMailer
	tokens *auth.TokenIssuer
}

func newFixture(users ...*model.User) *fixture {
	f := &fixture{
		users:  newMockUserRepository(users...),
		owners: &mockOwnerRepository{},
		otps:   newMockOTPRepository(),
		mail:   &mockMailer{},
		tokens: auth.NewTokenIssuer("test-secret", time.Hour),
	}
	cfg := &config.Config{
		Log:         logger.Discard(),
		MaxPageSize: 100,
		OTPTTL:      10 * time.Minute,
		OTPLength:   6,
	}
	svc := NewAccountService(f.users, f.owners, f.otps, validation.New(logger.Discard()), f.tokens, f.mail, nil, cfg).(*accountService)
	svc.generateCode = func(int) (string, error) { return fixedCode, nil }
	f.svc = svc
	return f
}

func existingUser(t *testing.T, email, password string, verified bool) *model.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return &model.User{ID: "65a000000000000000000009", Email: email, PasswordHash: hash, Verified: verified, Role: model.RoleUser}
}

func code(err error) string {
	if err == nil {
		return ""
	}
	return apperrors.AsAppError(err).Code
}

// ────────────────────────────────────────────────
// Register
// ────────────────────────────────────────────────

func TestRegister_UserSendsCode(t *testing.T) {
	f := newFixture()

	user, err := f.svc.Register(context.Background(), &model.Registration{
		Email:     "  Ana@Example.COM ",
		Password:  "correct horse",
		FirstName: " Ana ",
		Phone:     "098765 43210",
		Role:      model.RoleUser,
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if user.Email != "ana@example.com" || user.FirstName != "Ana" || user.Verified {
		t.Errorf("unexpected user: %+v", user)
	}
	if user.Phone != "+919876543210" {
		t.Errorf("phone = %q", user.Phone)
	}
	if user.PasswordHash == "" || user.PasswordHash == "correct horse" {
		t.Error("password must be stored hashed")
	}
	if f.users.txCalls != 0 {
		t.Error("plain users are created without a transaction")
	}
	if len(f.mail.sent) != 1 || !strings.Contains(f.mail.sent[0].Text, fixedCode) {
		t.Fatalf("expected one OTP mail, got %+v", f.mail.sent)
	}
	if _, ok := f.otps.otps["ana@example.com"]; !ok {
		t.Error("OTP should be stored for the normalized email")
	}
}

func TestRegister_OwnerCreatesProfileInTransaction(t *testing.T) {
	f := newFixture()

	user, err := f.svc.Register(context.Background(), &model.Registration{
		Email:    "owner@example.com",
		Password: "correct horse",
		Role:     model.RoleOwner,
		Owner: &model.OwnerProfile{
			IDProofNumber:   "AB12345",
			IDProofType:     "passport",
			IDProofImageURL: "https://cdn.example.com/id.png",
		},
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if f.users.txCalls != 1 {
		t.Errorf("txCalls = %d, want 1", f.users.txCalls)
	}
	if len(f.owners.owners) != 1 || f.owners.owners[0].User != user.ID {
		t.Errorf("owner profile not linked: %+v", f.owners.owners)
	}
}

func TestRegister_Rejections(t *testing.T) {
	taken := existingUser(t, "taken@example.com", "whatever1", true)

	tests := []struct {
		name         string
		registration *model.Registration
		expectCode   string
	}{
		{
			name:         "email taken",
			registration: &model.Registration{Email: "TAKEN@example.com", Password: "correct horse", Role: model.RoleUser},
			expectCode:   apperrors.CodeConflict,
		},
		{
			name:         "short password",
			registration: &model.Registration{Email: "a@example.com", Password: "short", Role: model.RoleUser},
			expectCode:   apperrors.CodeValidation,
		},
		{
			name:         "admin role",
			registration: &model.Registration{Email: "a@example.com", Password: "correct horse", Role: model.RoleAdmin},
			expectCode:   apperrors.CodeValidation,
		},
		{
			name:         "owner without profile",
			registration: &model.Registration{Email: "a@example.com", Password: "correct horse", Role: model.RoleOwner},
			expectCode:   apperrors.CodeValidation,
		},
		{
			name:         "bad phone",
			registration: &model.Registration{Email: "a@example.com", Password: "correct horse", Phone: "12", Role: model.RoleUser},
			expectCode:   apperrors.CodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(taken)
			_, err := f.svc.Register(context.Background(), tt.registration)
			if code(err) != tt.expectCode {
				t.Errorf("code = %q, want %q (err: %v)", code(err), tt.expectCode, err)
			}
			if len(f.mail.sent) != 0 {
				t.Error("no mail should be sent on a rejected registration")
			}
		})
	}
}

func TestRegister_OwnerProfileFailureFailsRegistration(t *testing.T) {
	f := newFixture()
	f.owners.createFunc = func(ctx context.Context, owner *model.Owner) error {
		return errors.New("write conflict")
	}

	_, err := f.svc.Register(context.Background(), &model.Registration{
		Email:    "owner@example.com",
		Password: "correct horse",
		Role:     model.RoleOwner,
		Owner: &model.OwnerProfile{
			IDProofNumber:   "AB12345",
			IDProofType:     "passport",
			IDProofImageURL: "https://cdn.example.com/id.png",
		},
	})
	if code(err) != apperrors.CodeInternal {
		t.Errorf("code = %q, want INTERNAL_ERROR", code(err))
	}
}

// ────────────────────────────────────────────────
// Login
// ────────────────────────────────────────────────

func TestLogin(t *testing.T) {
	verified := existingUser(t, "ana@example.com", "correct horse", true)
	unverified := existingUser(t, "new@example.com", "correct horse", false)
	unverified.ID = "65a00000000000000000000a"

	tests := []struct {
		name       string
		email      string
		password   string
		expectCode string
	}{
		{name: "success", email: "Ana@example.com", password: "correct horse"},
		{name: "unknown email", email: "nobody@example.com", password: "correct horse", expectCode: apperrors.CodeUnauthorized},
		{name: "wrong password", email: "ana@example.com", password: "battery staple", expectCode: apperrors.CodeUnauthorized},
		{name: "unverified", email: "new@example.com", password: "correct horse", expectCode: apperrors.CodeForbidden},
		{name: "unverified wrong password", email: "new@example.com", password: "nope", expectCode: apperrors.CodeUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(verified, unverified)
			session, err := f.svc.Login(context.Background(), &model.Credentials{Email: tt.email, Password: tt.password})
			if code(err) != tt.expectCode {
				t.Fatalf("code = %q, want %q (err: %v)", code(err), tt.expectCode, err)
			}
			if tt.expectCode != "" {
				return
			}
			actor, err := f.tokens.Parse(session.Token)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if actor.ID != verified.ID || actor.Role != model.RoleUser {
				t.Errorf("unexpected actor: %+v", actor)
			}
		})
	}
}

// ────────────────────────────────────────────────
// OTP
// ────────────────────────────────────────────────

func TestVerifyOTP_MarksVerifiedAndConsumesCode(t *testing.T) {
	user := existingUser(t, "ana@example.com", "correct horse", false)
	f := newFixture(user)

	if err := f.svc.SendOTP(context.Background(), &model.OTPRequest{Email: "ana@example.com"}); err != nil {
		t.Fatalf("SendOTP: %v", err)
	}

	session, err := f.svc.VerifyOTP(context.Background(), &model.OTPVerification{Email: "ana@example.com", Code: fixedCode})
	if err != nil {
		t.Fatalf("VerifyOTP: %v", err)
	}
	if !session.User.Verified || session.Token == "" {
		t.Errorf("unexpected session: %+v", session)
	}
	if _, ok := f.otps.otps["ana@example.com"]; ok {
		t.Error("code should be deleted after use")
	}

	_, err = f.svc.VerifyOTP(context.Background(), &model.OTPVerification{Email: "ana@example.com", Code: fixedCode})
	if code(err) != apperrors.CodeInvalidInput {
		t.Errorf("reused code: code = %q, want INVALID_INPUT", code(err))
	}
}

func TestVerifyOTP_Rejections(t *testing.T) {
	tests := []struct {
		name       string
		expired    bool
		code       string
		expectCode string
	}{
		{name: "wrong code", code: "654321", expectCode: apperrors.CodeInvalidInput},
		{name: "expired", expired: true, code: fixedCode, expectCode: apperrors.CodeInvalidInput},
		{name: "not numeric", code: "12ab56", expectCode: apperrors.CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := existingUser(t, "ana@example.com", "correct horse", false)
			f := newFixture(user)
			if err := f.svc.SendOTP(context.Background(), &model.OTPRequest{Email: "ana@example.com"}); err != nil {
				t.Fatalf("SendOTP: %v", err)
			}
			if tt.expired {
				f.otps.otps["ana@example.com"].ExpiresAt = time.Now().UTC().Add(-time.Second)
			}

			_, err := f.svc.VerifyOTP(context.Background(), &model.OTPVerification{Email: "ana@example.com", Code: tt.code})
			if code(err) != tt.expectCode {
				t.Errorf("code = %q, want %q (err: %v)", code(err), tt.expectCode, err)
			}
			if user.Verified {
				t.Error("user must stay unverified")
			}
		})
	}
}

func TestSendOTP_UnknownEmail(t *testing.T) {
	f := newFixture()
	err := f.svc.SendOTP(context.Background(), &model.OTPRequest{Email: "nobody@example.com"})
	if code(err) != apperrors.CodeNotFound {
		t.Errorf("code = %q, want NOT_FOUND", code(err))
	}
}

func TestSendOTP_MailFailure(t *testing.T) {
	f := newFixture(existingUser(t, "ana@example.com", "correct horse", false))
	f.mail.sendErr = errors.New("mailersend down")

	err := f.svc.SendOTP(context.Background(), &model.OTPRequest{Email: "ana@example.com"})
	if code(err) != apperrors.CodeInternal {
		t.Errorf("code = %q, want INTERNAL_ERROR", code(err))
	}
}

func TestLoginWithOTP(t *testing.T) {
	tests := []struct {
		name       string
		verified   bool
		email      string
		code       string
		expectCode string
	}{
		{name: "success", verified: true, email: "Ana@example.com", code: fixedCode},
		{name: "wrong code", verified: true, email: "ana@example.com", code: "654321", expectCode: apperrors.CodeInvalidInput},
		{name: "unverified", verified: false, email: "ana@example.com", code: fixedCode, expectCode: apperrors.CodeForbidden},
		{name: "unknown email", verified: true, email: "nobody@example.com", code: fixedCode, expectCode: apperrors.CodeUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := existingUser(t, "ana@example.com", "correct horse", tt.verified)
			f := newFixture(user)
			if err := f.svc.SendOTP(context.Background(), &model.OTPRequest{Email: "ana@example.com"}); err != nil {
				t.Fatalf("SendOTP: %v", err)
			}

			session, err := f.svc.LoginWithOTP(context.Background(), &model.OTPVerification{Email: tt.email, Code: tt.code})
			if code(err) != tt.expectCode {
				t.Fatalf("code = %q, want %q (err: %v)", code(err), tt.expectCode, err)
			}
			if tt.expectCode != "" {
				if _, ok := f.otps.otps["ana@example.com"]; !ok {
					t.Error("a failed login must not consume the code")
				}
				return
			}
			actor, err := f.tokens.Parse(session.Token)
			if err != nil || actor.ID != user.ID {
				t.Errorf("unexpected token: actor=%+v err=%v", actor, err)
			}
			if _, ok := f.otps.otps["ana@example.com"]; ok {
				t.Error("code should be deleted after login")
			}
		})
	}
}

// ────────────────────────────────────────────────
// Password reset
// ────────────────────────────────────────────────

func TestPasswordReset_FullFlow(t *testing.T) {
	user := existingUser(t, "ana@example.com", "correct horse", true)
	f := newFixture(user)
	ctx := context.Background()

	if err := f.svc.ForgotPassword(ctx, &model.OTPRequest{Email: " ANA@example.com"}); err != nil {
		t.Fatalf("ForgotPassword: %v", err)
	}
	if len(f.mail.sent) != 1 || f.mail.sent[0].Subject != "Reset your password" {
		t.Fatalf("expected one reset mail, got %+v", f.mail.sent)
	}

	if err := f.svc.VerifyResetCode(ctx, &model.OTPVerification{Email: "ana@example.com", Code: fixedCode}); err != nil {
		t.Fatalf("VerifyResetCode: %v", err)
	}
	if _, ok := f.otps.otps["ana@example.com"]; !ok {
		t.Fatal("verifying a reset code must not consume it")
	}

	err := f.svc.ResetPassword(ctx, &model.PasswordReset{Email: "ana@example.com", Code: fixedCode, NewPassword: "battery staple"})
	if err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}
	if _, ok := f.otps.otps["ana@example.com"]; ok {
		t.Error("code should be deleted after the reset")
	}

	if _, err := f.svc.Login(ctx, &model.Credentials{Email: "ana@example.com", Password: "correct horse"}); code(err) != apperrors.CodeUnauthorized {
		t.Errorf("old password: code = %q, want UNAUTHORIZED", code(err))
	}
	if _, err := f.svc.Login(ctx, &model.Credentials{Email: "ana@example.com", Password: "battery staple"}); err != nil {
		t.Errorf("new password: %v", err)
	}

	err = f.svc.ResetPassword(ctx, &model.PasswordReset{Email: "ana@example.com", Code: fixedCode, NewPassword: "another pass"})
	if code(err) != apperrors.CodeInvalidInput {
		t.Errorf("reused code: code = %q, want INVALID_INPUT", code(err))
	}
}

func TestPasswordReset_Rejections(t *testing.T) {
	tests := []struct {
		name       string
		reset      *model.PasswordReset
		expired    bool
		expectCode string
	}{
		{
			name:       "wrong code",
			reset:      &model.PasswordReset{Email: "ana@example.com", Code: "654321", NewPassword: "battery staple"},
			expectCode: apperrors.CodeInvalidInput,
		},
		{
			name:       "expired code",
			reset:      &model.PasswordReset{Email: "ana@example.com", Code: fixedCode, NewPassword: "battery staple"},
			expired:    true,
			expectCode: apperrors.CodeInvalidInput,
		},
		{
			name:       "short password",
			reset:      &model.PasswordReset{Email: "ana@example.com", Code: fixedCode, NewPassword: "short"},
			expectCode: apperrors.CodeValidation,
		},
		{
			name:       "unknown email",
			reset:      &model.PasswordReset{Email: "nobody@example.com", Code: fixedCode, NewPassword: "battery staple"},
			expectCode: apperrors.CodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := existingUser(t, "ana@example.com", "correct horse", true)
			original := user.PasswordHash
			f := newFixture(user)
			if err := f.svc.ForgotPassword(context.Background(), &model.OTPRequest{Email: "ana@example.com"}); err != nil {
				t.Fatalf("ForgotPassword: %v", err)
			}
			if tt.expired {
				f.otps.otps["ana@example.com"].ExpiresAt = time.Now().UTC().Add(-time.Second)
			}

			err := f.svc.ResetPassword(context.Background(), tt.reset)
			if code(err) != tt.expectCode {
				t.Errorf("code = %q, want %q (err: %v)", code(err), tt.expectCode, err)
			}
			if user.PasswordHash != original {
				t.Error("password must not change on a rejected reset")
			}
		})
	}
}

func TestForgotPassword_UnknownEmail(t *testing.T) {
	f := newFixture()
	err := f.svc.ForgotPassword(context.Background(), &model.OTPRequest{Email: "nobody@example.com"})
	if code(err) != apperrors.CodeNotFound {
		t.Errorf("code = %q, want NOT_FOUND", code(err))
	}
	if len(f.mail.sent) != 0 {
		t.Error("no mail for unknown accounts")
	}
}

func TestVerifyResetCode_WrongCode(t *testing.T) {
	f := newFixture(existingUser(t, "ana@example.com", "correct horse", true))
	if err := f.svc.ForgotPassword(context.Background(), &model.OTPRequest{Email: "ana@example.com"}); err != nil {
		t.Fatalf("ForgotPassword: %v", err)
	}
	err := f.svc.VerifyResetCode(context.Background(), &model.OTPVerification{Email: "ana@example.com", Code: "000000"})
	if code(err) != apperrors.CodeInvalidInput {
		t.Errorf("code = %q, want INVALID_INPUT", code(err))
	}
}

func TestRandomDigits(t *testing.T) {
	got, err := randomDigits(8)
	if err != nil {
		t.Fatalf("randomDigits: %v", err)
	}
	if len(got) != 8 {
		t.Fatalf("len = %d", len(got))
	}
	for _, r := range got {
		if r < '0' || r > '9' {
			t.Fatalf("non-digit in %q", got)
		}
	}
}

// ────────────────────────────────────────────────
// ListUsers
// ────────────────────────────────────────────────

func TestListUsers(t *testing.T) {
	f := newFixture(existingUser(t, "ana@example.com", "correct horse", true))
	admin := auth.WithActor(context.Background(), &auth.Actor{ID: "admin-1", Role: model.RoleAdmin})
	user := auth.WithActor(context.Background(), &auth.Actor{ID: "u1", Role: model.RoleUser})

	list, err := f.svc.ListUsers(admin, 1, 10)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if list.TotalUsers != 1 || len(list.Users) != 1 || list.Pagination.TotalPages != 1 {
		t.Errorf("unexpected list: %+v", list)
	}

	if _, err := f.svc.ListUsers(user, 1, 10); code(err) != apperrors.CodeForbidden {
		t.Errorf("user: code = %q, want FORBIDDEN", code(err))
	}
	if _, err := f.svc.ListUsers(context.Background(), 1, 10); code(err) != apperrors.CodeUnauthorized {
		t.Errorf("anonymous: code = %q, want UNAUTHORIZED", code(err))
	}
	if _, err := f.svc.ListUsers(admin, 0, 10); code(err) != apperrors.CodeValidation {
		t.Errorf("page 0: code = %q, want VALIDATION_ERROR", code(err))
	}
}
