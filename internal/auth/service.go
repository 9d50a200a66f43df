package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/redmonkez12/auth-api/internal/logging"
	"github.com/redmonkez12/auth-api/internal/user"
)

var (
	ErrAllFieldsRequired        = errors.New("all fields are required")
	ErrEmailRequired            = errors.New("email is required")
	ErrCodeRequired             = errors.New("verification token is required")
	ErrTokenAndPasswordRequired = errors.New("token and new password are required")
	ErrInvalidCredentials       = errors.New("invalid email or password")
	ErrInvalidOrExpiredToken    = errors.New("invalid or expired token")
)

// Service handles authentication business logic
type Service struct {
	userRepo     UserRepository
	emailService EmailService
	logger       *logging.Logger
	clientURL    string
}

func NewService(userRepo UserRepository, emailService EmailService, logger *logging.Logger, clientURL string) *Service {
	return &Service{
		userRepo:     userRepo,
		emailService: emailService,
		logger:       logger,
		clientURL:    clientURL,
	}
}

// Register creates a new user account with a pending verification code and
// sends the verification email. The created user is returned so the handler
// can issue the session cookie before responding.
func (s *Service) Register(ctx context.Context, email, password, username string) (*user.User, error) {
	if email == "" || password == "" || username == "" {
		return nil, ErrAllFieldsRequired
	}

	// Friendly duplicate check; the unique index on email is the actual
	// guarantee against concurrent signups.
	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, user.ErrDuplicateEmail
	} else if !errors.Is(err, user.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	code, err := generateVerificationCode()
	if err != nil {
		return nil, err
	}

	newUser, err := s.userRepo.Create(ctx, email, passwordHash, username, code, time.Now().Add(VerificationTokenTTL))
	if err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			return nil, user.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	// Send verification email in a goroutine (non-blocking). Registration
	// already succeeded; a delivery failure must not undo it.
	go func() {
		emailCtx := context.Background()
		if err := s.emailService.SendVerificationEmail(emailCtx, email, code); err != nil {
			s.logger.Warn("failed to send verification email", "email", email, "error", err)
		}
	}()

	return newUser, nil
}

// VerifyEmail consumes a pending verification code. Wrong and expired codes
// produce the same error so callers cannot probe which it was.
func (s *Service) VerifyEmail(ctx context.Context, code string) (*user.User, error) {
	if code == "" {
		return nil, ErrCodeRequired
	}

	existingUser, err := s.userRepo.GetByValidVerificationToken(ctx, code, time.Now())
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrInvalidOrExpiredToken
		}
		return nil, fmt.Errorf("failed to find user by verification token: %w", err)
	}

	if err := s.userRepo.MarkEmailVerified(ctx, existingUser.ID); err != nil {
		return nil, fmt.Errorf("failed to mark email as verified: %w", err)
	}
	existingUser.IsVerified = true
	existingUser.VerificationToken = nil
	existingUser.VerificationTokenExpiresAt = nil

	go func() {
		emailCtx := context.Background()
		if err := s.emailService.SendWelcomeEmail(emailCtx, existingUser.Email, existingUser.Username); err != nil {
			s.logger.Warn("failed to send welcome email", "email", existingUser.Email, "error", err)
		}
	}()

	return existingUser, nil
}

// Login authenticates a user. Unknown email and wrong password return the
// same error, so the response bodies are bit-identical for both cases.
func (s *Service) Login(ctx context.Context, email, password string) (*user.User, error) {
	existingUser, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !verifyPassword(existingUser.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	if err := s.userRepo.UpdateLastLogin(ctx, existingUser.ID, now); err != nil {
		return nil, fmt.Errorf("failed to update last login: %w", err)
	}
	existingUser.LastLogin = now

	return existingUser, nil
}

// RequestPasswordReset issues a fresh reset token and emails the reset link.
// Unlike login, this endpoint reveals whether the account exists; that
// asymmetry is the documented product behavior, not an oversight.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	if email == "" {
		return ErrEmailRequired
	}

	existingUser, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.ErrNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	token, err := generateResetToken()
	if err != nil {
		return err
	}

	if err := s.userRepo.SetResetToken(ctx, existingUser.ID, token, time.Now().Add(ResetTokenTTL)); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	resetLink := fmt.Sprintf("%s/reset-password?token=%s", s.clientURL, token)

	go func() {
		emailCtx := context.Background()
		if err := s.emailService.SendPasswordResetEmail(emailCtx, existingUser.Email, resetLink); err != nil {
			s.logger.Warn("failed to send password reset email", "email", existingUser.Email, "error", err)
		}
	}()

	return nil
}

// ResetPassword consumes a reset token and replaces the password hash.
// The token fields are cleared in the same update that writes the hash.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" || newPassword == "" {
		return ErrTokenAndPasswordRequired
	}

	existingUser, err := s.userRepo.GetByValidResetToken(ctx, token, time.Now())
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return ErrInvalidOrExpiredToken
		}
		return fmt.Errorf("failed to find user by reset token: %w", err)
	}

	passwordHash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}

	if err := s.userRepo.UpdatePassword(ctx, existingUser.ID, passwordHash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	go func() {
		emailCtx := context.Background()
		if err := s.emailService.SendResetSuccessEmail(emailCtx, existingUser.Email); err != nil {
			s.logger.Warn("failed to send reset success email", "email", existingUser.Email, "error", err)
		}
	}()

	return nil
}

// GetUser loads the user identified by a verified session token
func (s *Service) GetUser(ctx context.Context, id primitive.ObjectID) (*user.User, error) {
	return s.userRepo.GetByID(ctx, id)
}
