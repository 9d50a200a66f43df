package email

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"

	"github.com/redmonkez12/auth-api/internal/logging"
)

// Service sends transactional auth emails through Resend.
// In development mode no client is constructed and sends are logged instead,
// so the flows work without an API key.
type Service struct {
	client    *resend.Client
	fromEmail string
	logger    *logging.Logger
	isDev     bool
}

func NewService(apiKey, fromEmail string, logger *logging.Logger, isDev bool) *Service {
	var client *resend.Client
	if apiKey != "" && !isDev {
		client = resend.NewClient(apiKey)
	}

	return &Service{
		client:    client,
		fromEmail: fromEmail,
		logger:    logger,
		isDev:     isDev,
	}
}

// SendVerificationEmail sends the 6-digit verification code.
// Designed to be called in a goroutine.
func (s *Service) SendVerificationEmail(ctx context.Context, toEmail, code string) error {
	body, err := renderVerificationEmail(code)
	if err != nil {
		return fmt.Errorf("render template: %w", err)
	}
	return s.send(ctx, toEmail, "Verify your email", body, "verification")
}

// SendWelcomeEmail greets a freshly verified user
func (s *Service) SendWelcomeEmail(ctx context.Context, toEmail, username string) error {
	body, err := renderWelcomeEmail(username)
	if err != nil {
		return fmt.Errorf("render template: %w", err)
	}
	return s.send(ctx, toEmail, "Welcome to Our Service", body, "welcome")
}

// SendPasswordResetEmail sends the reset link
func (s *Service) SendPasswordResetEmail(ctx context.Context, toEmail, resetLink string) error {
	body, err := renderPasswordResetEmail(resetLink)
	if err != nil {
		return fmt.Errorf("render template: %w", err)
	}
	return s.send(ctx, toEmail, "Password Reset Request", body, "password_reset")
}

// SendResetSuccessEmail confirms a completed password reset
func (s *Service) SendResetSuccessEmail(ctx context.Context, toEmail string) error {
	body, err := renderResetSuccessEmail()
	if err != nil {
		return fmt.Errorf("render template: %w", err)
	}
	return s.send(ctx, toEmail, "Password Reset Successful", body, "password_reset_success")
}

func (s *Service) send(ctx context.Context, to, subject, htmlBody, kind string) error {
	if s.isDev {
		s.logger.Info("email sent (dev mode)", "type", kind, "to", to, "subject", subject)
		return nil
	}

	if s.client == nil {
		return fmt.Errorf("email service not configured (missing RESEND_API_KEY)")
	}

	params := &resend.SendEmailRequest{
		From:    s.fromEmail,
		To:      []string{to},
		Subject: subject,
		Html:    htmlBody,
	}

	if _, err := s.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	s.logger.Info("email sent", "type", kind, "to", to)
	return nil
}
