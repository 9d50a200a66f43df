package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"
)

const (
	// Verification codes are 6 decimal digits typed by the user. Low
	// entropy, accepted given the 24-hour window and single-use semantics.
	verificationCodeMax = 900000
	verificationCodeMin = 100000

	// Reset tokens are 10 random bytes, hex encoded (20 characters),
	// embedded in the reset link. Kept at 10 bytes for parity with the
	// links the product already issues; see DESIGN.md.
	resetTokenBytes = 10

	VerificationTokenTTL = 24 * time.Hour
	ResetTokenTTL        = 1 * time.Hour
)

// generateVerificationCode returns a uniform 6-digit decimal code
func generateVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(verificationCodeMax))
	if err != nil {
		return "", fmt.Errorf("failed to generate verification code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+verificationCodeMin), nil
}

// generateResetToken returns a cryptographically random hex token
func generateResetToken() (string, error) {
	b := make([]byte, resetTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate reset token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
