package service

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
	"sync"
	"time"

	"rentals/internal/access"
	accountserrors "rentals/internal/accounts/errors"
	"rentals/internal/accounts/repository"
	"rentals/pkg/auth"
	"rentals/pkg/config"
	apperrors "rentals/pkg/errors"
	"rentals/pkg/events"
	"rentals/pkg/mailer"
	"rentals/pkg/model"
	"rentals/pkg/sanitizer"
	"rentals/pkg/validation"

	"go.mongodb.org/mongo-driver/mongo"
)

const (
	invalidCredentials = "Invalid email or password"
	invalidCode        = "Invalid or expired verification code"
)

type AccountService interface {
	Register(ctx context.Context, registration *model.Registration) (*model.User, error)
	Login(ctx context.Context, credentials *model.Credentials) (*model.Session, error)
	SendOTP(ctx context.Context, request *model.OTPRequest) error
	VerifyOTP(ctx context.Context, verification *model.OTPVerification) (*model.Session, error)
	LoginWithOTP(ctx context.Context, verification *model.OTPVerification) (*model.Session, error)
	ForgotPassword(ctx context.Context, request *model.OTPRequest) error
	VerifyResetCode(ctx context.Context, verification *model.OTPVerification) error
	ResetPassword(ctx context.Context, reset *model.PasswordReset) error
	ListUsers(ctx context.Context, page, limit int) (*model.UserList, error)
}

type accountService struct {
	users     repository.UserRepository
	owners    repository.OwnerRepository
	otps      repository.OTPRepository
	validator *validation.Validator
	tokens    *auth.TokenIssuer
	mail      mailer.Mailer
	events    *events.Dispatcher
	cfg       *config.Config

	generateCode func(length int) (string, error)
}

func NewAccountService(
	users repository.UserRepository,
	owners repository.OwnerRepository,
	otps repository.OTPRepository,
	validator *validation.Validator,
	tokens *auth.TokenIssuer,
	mail mailer.Mailer,
	dispatcher *events.Dispatcher,
	cfg *config.Config,
) AccountService {
	return &accountService{
		users:        users,
		owners:       owners,
		otps:         otps,
		validator:    validator,
		tokens:       tokens,
		mail:         mail,
		events:       dispatcher,
		cfg:          cfg,
		generateCode: randomDigits,
	}
}

// Register creates an unverified account and mails a verification code.
// Owner accounts get their owner profile in the same transaction.
func (s *accountService) Register(ctx context.Context, registration *model.Registration) (*model.User, error) {
	log := s.cfg.Log.WithContext(ctx)

	registration.Email = sanitizer.NormalizeEmail(registration.Email)
	registration.FirstName = sanitizer.TrimAndNormalize(registration.FirstName)
	registration.LastName = sanitizer.TrimAndNormalize(registration.LastName)
	if err := s.validator.Struct(registration); err != nil {
		log.Warn("Registration validation failed", "error", err)
		return nil, validationError("Invalid registration input", err)
	}

	phone := ""
	if raw := strings.TrimSpace(registration.Phone); raw != "" {
		phone = sanitizer.NormalizePhone(raw)
		if phone == "" {
			return nil, validationError("Invalid registration input", validation.Fail("phone", "phone must be a valid phone number"))
		}
	}

	hash, err := auth.HashPassword(registration.Password)
	if err != nil {
		log.Error("Failed to hash password", "error", err)
		return nil, apperrors.Internal("Failed to create account", err)
	}

	user := &model.User{
		Email:        registration.Email,
		PasswordHash: hash,
		FirstName:    registration.FirstName,
		LastName:     registration.LastName,
		Phone:        phone,
		Role:         registration.Role,
	}

	if registration.Role == model.RoleOwner {
		err = s.users.ExecuteTransaction(ctx, func(sc mongo.SessionContext) error {
			if err := s.users.Create(sc, user); err != nil {
				return err
			}
			return s.owners.Create(sc, &model.Owner{
				User:            user.ID,
				IDProofNumber:   strings.TrimSpace(registration.Owner.IDProofNumber),
				IDProofType:     strings.TrimSpace(registration.Owner.IDProofType),
				IDProofImageURL: sanitizer.NormalizeURL(registration.Owner.IDProofImageURL),
			})
		})
	} else {
		err = s.users.Create(ctx, user)
	}
	if err != nil {
		if errors.Is(err, accountserrors.ErrEmailTaken) {
			log.Info("Registration rejected, email taken", "email", user.Email)
			return nil, apperrors.Conflict("Email is already registered").
				WithDetails(map[string]any{"email": user.Email})
		}
		log.Error("Failed to create account", "email", user.Email, "error", err)
		return nil, apperrors.Internal("Failed to create account", err)
	}

	log.Info("Account registered", "user_id", user.ID, "role", user.Role)
	s.events.Emit(ctx, events.AccountRegistered, user.ID, events.AccountPayload{
		UserID:    user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		Role:      string(user.Role),
	})

	if err := s.issueOTP(ctx, user.Email, mailer.OTPEmail); err != nil {
		// the account exists; the client can ask for a new code
		log.Warn("Failed to send verification code after registration", "user_id", user.ID, "error", err)
	}

	return user, nil
}

// Login checks the password before the verification flag so unverified
// accounts are only disclosed to callers that know the password.
func (s *accountService) Login(ctx context.Context, credentials *model.Credentials) (*model.Session, error) {
	log := s.cfg.Log.WithContext(ctx)

	credentials.Email = sanitizer.NormalizeEmail(credentials.Email)
	if err := s.validator.Struct(credentials); err != nil {
		return nil, validationError("Invalid login input", err)
	}

	user, err := s.users.FindByEmail(ctx, credentials.Email)
	if err != nil {
		if errors.Is(err, accountserrors.ErrUserNotFound) {
			return nil, apperrors.Unauthorized(invalidCredentials)
		}
		log.Error("Failed to load user for login", "error", err)
		return nil, apperrors.Internal("Failed to log in", err)
	}

	match, err := auth.CheckPassword(credentials.Password, user.PasswordHash)
	if err != nil {
		log.Error("Failed to check password", "user_id", user.ID, "error", err)
		return nil, apperrors.Internal("Failed to log in", err)
	}
	if !match {
		log.Warn("Login with wrong password", "user_id", user.ID)
		return nil, apperrors.Unauthorized(invalidCredentials)
	}
	if !user.Verified {
		return nil, apperrors.Forbidden("Email address is not verified")
	}

	return s.session(user)
}

func (s *accountService) SendOTP(ctx context.Context, request *model.OTPRequest) error {
	request.Email = sanitizer.NormalizeEmail(request.Email)
	if err := s.validator.Struct(request); err != nil {
		return validationError("Invalid OTP request", err)
	}

	if err := s.requireUser(ctx, request.Email, "Failed to send verification code"); err != nil {
		return err
	}

	if err := s.issueOTP(ctx, request.Email, mailer.OTPEmail); err != nil {
		s.cfg.Log.WithContext(ctx).Error("Failed to send verification code", "email", request.Email, "error", err)
		return apperrors.Internal("Failed to send verification code", err)
	}
	return nil
}

func (s *accountService) VerifyOTP(ctx context.Context, verification *model.OTPVerification) (*model.Session, error) {
	log := s.cfg.Log.WithContext(ctx)

	verification.Email = sanitizer.NormalizeEmail(verification.Email)
	verification.Code = strings.TrimSpace(verification.Code)
	if err := s.validator.Struct(verification); err != nil {
		return nil, validationError("Invalid OTP verification input", err)
	}

	if err := s.checkOTP(ctx, verification.Email, verification.Code); err != nil {
		return nil, err
	}

	user, err := s.users.MarkVerified(ctx, verification.Email)
	if err != nil {
		if errors.Is(err, accountserrors.ErrUserNotFound) {
			return nil, apperrors.NotFound("User")
		}
		log.Error("Failed to mark user verified", "error", err)
		return nil, apperrors.Internal("Failed to verify code", err)
	}

	if err := s.otps.Delete(ctx, verification.Email); err != nil {
		log.Warn("Failed to delete used verification code", "email", verification.Email, "error", err)
	}

	log.Info("Account verified", "user_id", user.ID)
	return s.session(user)
}

// LoginWithOTP signs a verified user in with a mailed code instead of the
// password. Codes come from SendOTP.
func (s *accountService) LoginWithOTP(ctx context.Context, verification *model.OTPVerification) (*model.Session, error) {
	log := s.cfg.Log.WithContext(ctx)

	verification.Email = sanitizer.NormalizeEmail(verification.Email)
	verification.Code = strings.TrimSpace(verification.Code)
	if err := s.validator.Struct(verification); err != nil {
		return nil, validationError("Invalid OTP login input", err)
	}

	user, err := s.users.FindByEmail(ctx, verification.Email)
	if err != nil {
		if errors.Is(err, accountserrors.ErrUserNotFound) {
			return nil, apperrors.Unauthorized(invalidCode)
		}
		log.Error("Failed to load user for OTP login", "error", err)
		return nil, apperrors.Internal("Failed to log in", err)
	}
	if !user.Verified {
		return nil, apperrors.Forbidden("Email address is not verified")
	}

	if err := s.checkOTP(ctx, verification.Email, verification.Code); err != nil {
		return nil, err
	}
	if err := s.otps.Delete(ctx, verification.Email); err != nil {
		log.Warn("Failed to delete used login code", "email", verification.Email, "error", err)
	}

	log.Info("OTP login", "user_id", user.ID)
	return s.session(user)
}

func (s *accountService) ForgotPassword(ctx context.Context, request *model.OTPRequest) error {
	request.Email = sanitizer.NormalizeEmail(request.Email)
	if err := s.validator.Struct(request); err != nil {
		return validationError("Invalid password reset request", err)
	}

	if err := s.requireUser(ctx, request.Email, "Failed to send reset code"); err != nil {
		return err
	}

	if err := s.issueOTP(ctx, request.Email, mailer.PasswordResetEmail); err != nil {
		s.cfg.Log.WithContext(ctx).Error("Failed to send reset code", "email", request.Email, "error", err)
		return apperrors.Internal("Failed to send reset code", err)
	}
	return nil
}

// VerifyResetCode lets a client check a reset code before asking for the new
// password. The code stays valid for ResetPassword.
func (s *accountService) VerifyResetCode(ctx context.Context, verification *model.OTPVerification) error {
	verification.Email = sanitizer.NormalizeEmail(verification.Email)
	verification.Code = strings.TrimSpace(verification.Code)
	if err := s.validator.Struct(verification); err != nil {
		return validationError("Invalid reset code input", err)
	}

	if err := s.requireUser(ctx, verification.Email, "Failed to verify code"); err != nil {
		return err
	}
	return s.checkOTP(ctx, verification.Email, verification.Code)
}

func (s *accountService) ResetPassword(ctx context.Context, reset *model.PasswordReset) error {
	log := s.cfg.Log.WithContext(ctx)

	reset.Email = sanitizer.NormalizeEmail(reset.Email)
	reset.Code = strings.TrimSpace(reset.Code)
	if err := s.validator.Struct(reset); err != nil {
		return validationError("Invalid password reset input", err)
	}

	if err := s.requireUser(ctx, reset.Email, "Failed to reset password"); err != nil {
		return err
	}
	if err := s.checkOTP(ctx, reset.Email, reset.Code); err != nil {
		return err
	}

	hash, err := auth.HashPassword(reset.NewPassword)
	if err != nil {
		log.Error("Failed to hash password", "error", err)
		return apperrors.Internal("Failed to reset password", err)
	}
	if err := s.users.UpdatePassword(ctx, reset.Email, hash); err != nil {
		if errors.Is(err, accountserrors.ErrUserNotFound) {
			return apperrors.NotFound("User")
		}
		log.Error("Failed to update password", "email", reset.Email, "error", err)
		return apperrors.Internal("Failed to reset password", err)
	}

	if err := s.otps.Delete(ctx, reset.Email); err != nil {
		log.Warn("Failed to delete used reset code", "email", reset.Email, "error", err)
	}

	log.Info("Password reset", "email", reset.Email)
	return nil
}

func (s *accountService) ListUsers(ctx context.Context, page, limit int) (*model.UserList, error) {
	if err := access.Authorize(auth.ActorFrom(ctx), access.UserListAll); err != nil {
		return nil, err
	}
	if page < 1 || limit < 1 || limit > s.cfg.MaxPageSize {
		return nil, apperrors.Validation("Invalid pagination parameters", map[string]any{
			"page":  page,
			"limit": limit,
		})
	}

	skip := int64(page-1) * int64(limit)
	var count int64
	var users []*model.User
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.users.Count(ctx)
	}()

	go func() {
		defer wg.Done()
		users, errFind = s.users.FindAll(ctx, skip, limit)
	}()

	wg.Wait()
	if err := errors.Join(errCount, errFind); err != nil {
		s.cfg.Log.WithContext(ctx).Error("Failed to list users", "error", err)
		return nil, apperrors.Internal("Failed to retrieve users", err)
	}

	return &model.UserList{
		Users:      users,
		TotalUsers: count,
		Pagination: model.NewPagination(page, limit, count, len(users)),
	}, nil
}

func (s *accountService) requireUser(ctx context.Context, email, failure string) error {
	if _, err := s.users.FindByEmail(ctx, email); err != nil {
		if errors.Is(err, accountserrors.ErrUserNotFound) {
			return apperrors.NotFound("User")
		}
		return apperrors.Internal(failure, err)
	}
	return nil
}

// checkOTP matches code against the pending code for email. Expired codes
// are removed on sight. The code is not consumed.
func (s *accountService) checkOTP(ctx context.Context, email, code string) error {
	log := s.cfg.Log.WithContext(ctx)

	otp, err := s.otps.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, accountserrors.ErrOTPNotFound) {
			return apperrors.InvalidInput(invalidCode)
		}
		log.Error("Failed to load verification code", "error", err)
		return apperrors.Internal("Failed to verify code", err)
	}

	if !time.Now().UTC().Before(otp.ExpiresAt) {
		if err := s.otps.Delete(ctx, otp.Email); err != nil {
			log.Warn("Failed to delete expired verification code", "email", otp.Email, "error", err)
		}
		return apperrors.InvalidInput(invalidCode)
	}

	match, err := auth.CheckPassword(code, otp.CodeHash)
	if err != nil {
		log.Error("Failed to check verification code", "error", err)
		return apperrors.Internal("Failed to verify code", err)
	}
	if !match {
		log.Warn("Wrong verification code", "email", email)
		return apperrors.InvalidInput(invalidCode)
	}
	return nil
}

func (s *accountService) issueOTP(ctx context.Context, email string, compose func(to, code string, ttl time.Duration) mailer.Email) error {
	code, err := s.generateCode(s.cfg.OTPLength)
	if err != nil {
		return err
	}
	hash, err := auth.HashPassword(code)
	if err != nil {
		return err
	}

	err = s.otps.Upsert(ctx, &model.OTP{
		Email:     email,
		CodeHash:  hash,
		ExpiresAt: time.Now().UTC().Add(s.cfg.OTPTTL).Truncate(time.Millisecond),
	})
	if err != nil {
		return err
	}

	messageID, err := s.mail.Send(ctx, compose(email, code, s.cfg.OTPTTL))
	if err != nil {
		return err
	}
	s.cfg.Log.WithContext(ctx).Info("Verification code sent", "email", email, "message_id", messageID)
	return nil
}

func (s *accountService) session(user *model.User) (*model.Session, error) {
	token, expiresAt, err := s.tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, apperrors.Internal("Failed to issue token", err)
	}
	return &model.Session{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

func randomDigits(length int) (string, error) {
	var b strings.Builder
	ten := big.NewInt(10)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + n.Int64()))
	}
	return b.String(), nil
}

func validationError(message string, err error) error {
	var verrs validation.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation(message, verrs.Details())
	}
	return apperrors.Validation(message, map[string]any{"error": err.Error()})
}
