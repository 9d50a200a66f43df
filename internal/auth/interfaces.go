package auth

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/redmonkez12/auth-api/internal/user"
)

// TokenService defines the interface for session token creation and validation
type TokenService interface {
	CreateToken(userID string, duration time.Duration) (string, error)
	VerifyToken(tokenStr string) (*TokenClaims, error)
}

// UserRepository defines the user persistence operations the auth service needs
type UserRepository interface {
	Create(ctx context.Context, email, passwordHash, username, verificationToken string, verificationExpiresAt time.Time) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*user.User, error)
	GetByValidVerificationToken(ctx context.Context, token string, now time.Time) (*user.User, error)
	GetByValidResetToken(ctx context.Context, token string, now time.Time) (*user.User, error)
	MarkEmailVerified(ctx context.Context, id primitive.ObjectID) error
	SetResetToken(ctx context.Context, id primitive.ObjectID, token string, expiresAt time.Time) error
	UpdatePassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error
	UpdateLastLogin(ctx context.Context, id primitive.ObjectID, when time.Time) error
}

// EmailService defines the interface for email operations
type EmailService interface {
	SendVerificationEmail(ctx context.Context, toEmail, code string) error
	SendWelcomeEmail(ctx context.Context, toEmail, username string) error
	SendPasswordResetEmail(ctx context.Context, toEmail, resetLink string) error
	SendResetSuccessEmail(ctx context.Context, toEmail string) error
}
