package user

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is the single persisted entity. The verification and reset token
// fields are paired with their expiries: both set together on issuance,
// both unset together on consumption.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password" json:"-"` // Never expose password hash in JSON
	Username     string             `bson:"username" json:"username"`
	IsVerified   bool               `bson:"isVerified" json:"isVerified"`

	VerificationToken          *string    `bson:"verificationToken,omitempty" json:"-"`
	VerificationTokenExpiresAt *time.Time `bson:"verificationTokenExpiresAt,omitempty" json:"-"`

	ResetPasswordToken     *string    `bson:"resetPasswordToken,omitempty" json:"-"`
	ResetPasswordExpiresAt *time.Time `bson:"resetPasswordExpiresAt,omitempty" json:"-"`

	LastLogin time.Time `bson:"lastLogin" json:"lastLogin"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
