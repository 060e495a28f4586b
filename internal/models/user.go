package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/marhabatours/api/internal/helpers"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type Address struct {
	Street  string `bson:"street,omitempty" json:"street,omitempty"`
	City    string `bson:"city,omitempty" json:"city,omitempty"`
	State   string `bson:"state,omitempty" json:"state,omitempty"`
	Country string `bson:"country,omitempty" json:"country,omitempty"`
	ZipCode string `bson:"zip_code,omitempty" json:"zip_code,omitempty"`
}

type Preferences struct {
	Newsletter    bool   `bson:"newsletter" json:"newsletter"`
	Notifications bool   `bson:"notifications" json:"notifications"`
	Currency      string `bson:"currency" json:"currency"`
	Language      string `bson:"language" json:"language"`
}

func DefaultPreferences() Preferences {
	return Preferences{
		Newsletter:    true,
		Notifications: true,
		Currency:      "USD",
		Language:      "en",
	}
}

type User struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name" validate:"required,max=50"`
	Email       string             `bson:"email" json:"email" validate:"required,email"`
	Password    string             `bson:"password" json:"-"`
	Role        string             `bson:"role" json:"role" validate:"omitempty,oneof=user admin"`
	Phone       string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Avatar      string             `bson:"avatar,omitempty" json:"avatar,omitempty"`
	DateOfBirth *time.Time         `bson:"date_of_birth,omitempty" json:"date_of_birth,omitempty"`
	Address     Address            `bson:"address,omitempty" json:"address,omitempty"`
	Preferences Preferences        `bson:"preferences" json:"preferences"`
	IsActive    bool               `bson:"is_active" json:"is_active"`
	LastLogin   *time.Time         `bson:"last_login,omitempty" json:"last_login,omitempty"`

	ResetPasswordToken     string     `bson:"reset_password_token,omitempty" json:"-"`
	ResetPasswordExpire    *time.Time `bson:"reset_password_expire,omitempty" json:"-"`
	EmailVerificationToken string     `bson:"email_verification_token,omitempty" json:"-"`
	IsEmailVerified        bool       `bson:"is_email_verified" json:"is_email_verified"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// PublicProfile is the externally visible shape of an identity. The password
// hash and the reset/verification tokens never leave the server.
type PublicProfile struct {
	ID              primitive.ObjectID `json:"id"`
	Name            string             `json:"name"`
	Email           string             `json:"email"`
	Role            string             `json:"role"`
	Phone           string             `json:"phone,omitempty"`
	Avatar          string             `json:"avatar,omitempty"`
	DateOfBirth     *time.Time         `json:"date_of_birth,omitempty"`
	Address         Address            `json:"address,omitempty"`
	Preferences     Preferences        `json:"preferences"`
	IsActive        bool               `json:"is_active"`
	LastLogin       *time.Time         `json:"last_login,omitempty"`
	IsEmailVerified bool               `json:"is_email_verified"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

func (u *User) PublicView() PublicProfile {
	return PublicProfile{
		ID:              u.ID,
		Name:            u.Name,
		Email:           u.Email,
		Role:            u.Role,
		Phone:           u.Phone,
		Avatar:          u.Avatar,
		DateOfBirth:     u.DateOfBirth,
		Address:         u.Address,
		Preferences:     u.Preferences,
		IsActive:        u.IsActive,
		LastLogin:       u.LastLogin,
		IsEmailVerified: u.IsEmailVerified,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

// SetPassword hashes and stores the plaintext. Call it only when the password
// is newly set or changed; the plaintext itself is never persisted.
func (u *User) SetPassword(plain string) error {
	if len(plain) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters", ErrValidation)
	}
	hash, err := helpers.HashPassword(plain)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	u.Password = hash
	return nil
}

// ComparePassword checks the candidate against the stored bcrypt hash.
func (u *User) ComparePassword(candidate string) bool {
	return helpers.VerifyPassword(u.Password, candidate)
}

func (u *User) ValidateNew() error {
	if err := Validate.Struct(u); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if u.Password == "" {
		return fmt.Errorf("%w: password is required", ErrValidation)
	}
	return nil
}
