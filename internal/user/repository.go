package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("user already exists")
)

// Repository handles user data persistence
type Repository struct {
	coll *mongo.Collection
}

func NewRepository(coll *mongo.Collection) *Repository {
	return &Repository{coll: coll}
}

// EnsureIndexes creates the unique email index. The index, not the
// handler-level existence check, is what prevents two concurrent signups
// from creating duplicate accounts.
func (r *Repository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create email index: %w", err)
	}
	return nil
}

// Create inserts a new user with a pending verification token
func (r *Repository) Create(ctx context.Context, email, passwordHash, username, verificationToken string, verificationExpiresAt time.Time) (*User, error) {
	now := time.Now()
	newUser := &User{
		Email:                      email,
		PasswordHash:               passwordHash,
		Username:                   username,
		IsVerified:                 false,
		VerificationToken:          &verificationToken,
		VerificationTokenExpiresAt: &verificationExpiresAt,
		LastLogin:                  now,
		CreatedAt:                  now,
		UpdatedAt:                  now,
	}

	result, err := r.coll.InsertOne(ctx, newUser)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if id, ok := result.InsertedID.(primitive.ObjectID); ok {
		newUser.ID = id
	}

	return newUser, nil
}

// GetByEmail retrieves a user by email
func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// GetByID retrieves a user by ID
func (r *Repository) GetByID(ctx context.Context, id primitive.ObjectID) (*User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// GetByValidVerificationToken retrieves a user whose pending verification
// token matches and has not expired. Expiry is checked only here, at lookup
// time; stale tokens are never swept by a background job. A wrong token and
// an expired one are indistinguishable to the caller.
func (r *Repository) GetByValidVerificationToken(ctx context.Context, token string, now time.Time) (*User, error) {
	return r.findOne(ctx, bson.M{
		"verificationToken":          token,
		"verificationTokenExpiresAt": bson.M{"$gt": now},
	})
}

// GetByValidResetToken retrieves a user whose reset token matches and has
// not expired. Same lazy-expiry discipline as verification tokens.
func (r *Repository) GetByValidResetToken(ctx context.Context, token string, now time.Time) (*User, error) {
	return r.findOne(ctx, bson.M{
		"resetPasswordToken":     token,
		"resetPasswordExpiresAt": bson.M{"$gt": now},
	})
}

// MarkEmailVerified sets isVerified and clears both verification fields in
// a single atomic update, so a consumed token can never be replayed.
func (r *Repository) MarkEmailVerified(ctx context.Context, id primitive.ObjectID) error {
	return r.updateOne(ctx, id, bson.M{
		"$set": bson.M{
			"isVerified": true,
			"updatedAt":  time.Now(),
		},
		"$unset": bson.M{
			"verificationToken":          "",
			"verificationTokenExpiresAt": "",
		},
	})
}

// SetResetToken stores a fresh password reset token and its expiry
func (r *Repository) SetResetToken(ctx context.Context, id primitive.ObjectID, token string, expiresAt time.Time) error {
	return r.updateOne(ctx, id, bson.M{
		"$set": bson.M{
			"resetPasswordToken":     token,
			"resetPasswordExpiresAt": expiresAt,
			"updatedAt":              time.Now(),
		},
	})
}

// UpdatePassword replaces the password hash and clears both reset fields in
// a single atomic update
func (r *Repository) UpdatePassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error {
	return r.updateOne(ctx, id, bson.M{
		"$set": bson.M{
			"password":  passwordHash,
			"updatedAt": time.Now(),
		},
		"$unset": bson.M{
			"resetPasswordToken":     "",
			"resetPasswordExpiresAt": "",
		},
	})
}

// UpdateLastLogin records a successful login
func (r *Repository) UpdateLastLogin(ctx context.Context, id primitive.ObjectID, when time.Time) error {
	return r.updateOne(ctx, id, bson.M{
		"$set": bson.M{
			"lastLogin": when,
			"updatedAt": time.Now(),
		},
	})
}

func (r *Repository) findOne(ctx context.Context, filter bson.M) (*User, error) {
	u := new(User)
	err := r.coll.FindOne(ctx, filter).Decode(u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return u, nil
}

func (r *Repository) updateOne(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	result, err := r.coll.UpdateByID(ctx, id, update)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
