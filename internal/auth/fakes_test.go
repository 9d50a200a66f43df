package auth

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/redmonkez12/auth-api/internal/user"
)

// fakeUserRepo is an in-memory UserRepository mirroring the store's
// single-document update semantics.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*user.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]*user.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, email, passwordHash, username, verificationToken string, verificationExpiresAt time.Time) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == email {
			return nil, user.ErrDuplicateEmail
		}
	}

	now := time.Now()
	u := &user.User{
		ID:                         primitive.NewObjectID(),
		Email:                      email,
		PasswordHash:               passwordHash,
		Username:                   username,
		VerificationToken:          &verificationToken,
		VerificationTokenExpiresAt: &verificationExpiresAt,
		LastLogin:                  now,
		CreatedAt:                  now,
		UpdatedAt:                  now,
	}
	r.users[u.ID] = u
	return copyUser(u), nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, user.ErrNotFound
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return copyUser(u), nil
}

func (r *fakeUserRepo) GetByValidVerificationToken(ctx context.Context, token string, now time.Time) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.VerificationToken != nil && *u.VerificationToken == token &&
			u.VerificationTokenExpiresAt != nil && u.VerificationTokenExpiresAt.After(now) {
			return copyUser(u), nil
		}
	}
	return nil, user.ErrNotFound
}

func (r *fakeUserRepo) GetByValidResetToken(ctx context.Context, token string, now time.Time) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.ResetPasswordToken != nil && *u.ResetPasswordToken == token &&
			u.ResetPasswordExpiresAt != nil && u.ResetPasswordExpiresAt.After(now) {
			return copyUser(u), nil
		}
	}
	return nil, user.ErrNotFound
}

func (r *fakeUserRepo) MarkEmailVerified(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return user.ErrNotFound
	}
	u.IsVerified = true
	u.VerificationToken = nil
	u.VerificationTokenExpiresAt = nil
	u.UpdatedAt = time.Now()
	return nil
}

func (r *fakeUserRepo) SetResetToken(ctx context.Context, id primitive.ObjectID, token string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return user.ErrNotFound
	}
	u.ResetPasswordToken = &token
	u.ResetPasswordExpiresAt = &expiresAt
	u.UpdatedAt = time.Now()
	return nil
}

func (r *fakeUserRepo) UpdatePassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return user.ErrNotFound
	}
	u.PasswordHash = passwordHash
	u.ResetPasswordToken = nil
	u.ResetPasswordExpiresAt = nil
	u.UpdatedAt = time.Now()
	return nil
}

func (r *fakeUserRepo) UpdateLastLogin(ctx context.Context, id primitive.ObjectID, when time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return user.ErrNotFound
	}
	u.LastLogin = when
	u.UpdatedAt = time.Now()
	return nil
}

// expireVerificationToken backdates the pending verification token
func (r *fakeUserRepo) expireVerificationToken(id primitive.ObjectID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u, ok := r.users[id]; ok && u.VerificationTokenExpiresAt != nil {
		past := time.Now().Add(-time.Minute)
		u.VerificationTokenExpiresAt = &past
	}
}

// expireResetToken backdates the pending reset token
func (r *fakeUserRepo) expireResetToken(id primitive.ObjectID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u, ok := r.users[id]; ok && u.ResetPasswordExpiresAt != nil {
		past := time.Now().Add(-time.Minute)
		u.ResetPasswordExpiresAt = &past
	}
}

func copyUser(u *user.User) *user.User {
	c := *u
	return &c
}

type sentEmail struct {
	kind    string
	to      string
	payload string
}

// emailRecorder captures dispatched emails. Sends happen in goroutines, so
// assertions read from the channel with a timeout.
type emailRecorder struct {
	sent chan sentEmail
	fail bool
}

func newEmailRecorder() *emailRecorder {
	return &emailRecorder{sent: make(chan sentEmail, 16)}
}

func (r *emailRecorder) record(kind, to, payload string) error {
	r.sent <- sentEmail{kind: kind, to: to, payload: payload}
	if r.fail {
		return fmt.Errorf("provider unavailable")
	}
	return nil
}

func (r *emailRecorder) SendVerificationEmail(ctx context.Context, toEmail, code string) error {
	return r.record("verification", toEmail, code)
}

func (r *emailRecorder) SendWelcomeEmail(ctx context.Context, toEmail, username string) error {
	return r.record("welcome", toEmail, username)
}

func (r *emailRecorder) SendPasswordResetEmail(ctx context.Context, toEmail, resetLink string) error {
	return r.record("password_reset", toEmail, resetLink)
}

func (r *emailRecorder) SendResetSuccessEmail(ctx context.Context, toEmail string) error {
	return r.record("password_reset_success", toEmail, "")
}

func (r *emailRecorder) wait(t *testing.T) sentEmail {
	t.Helper()
	select {
	case e := <-r.sent:
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for email dispatch")
		return sentEmail{}
	}
}
