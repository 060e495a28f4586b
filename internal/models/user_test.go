package models

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestSetPassword(t *testing.T) {
	u := &User{}
	if err := u.SetPassword("short"); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for a short password, got %v", err)
	}

	if err := u.SetPassword("longenough"); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}
	if u.Password == "longenough" {
		t.Fatal("password stored as plaintext")
	}
	if !u.ComparePassword("longenough") {
		t.Error("expected stored hash to match the plaintext")
	}
	if u.ComparePassword("longenuff") {
		t.Error("expected wrong candidate to fail")
	}
}

func TestUserValidateNew(t *testing.T) {
	u := &User{
		Name:  "Amina",
		Email: "amina@example.com",
		Role:  RoleUser,
	}
	if err := u.ValidateNew(); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation without a password, got %v", err)
	}

	if err := u.SetPassword("secret99"); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}
	if err := u.ValidateNew(); err != nil {
		t.Errorf("valid user rejected: %v", err)
	}

	u.Email = "not-an-email"
	if err := u.ValidateNew(); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for a bad email, got %v", err)
	}
}

// The public profile must never leak the password hash or any of the
// token fields, even through JSON encoding.
func TestPublicViewOmitsSecrets(t *testing.T) {
	expire := time.Now().Add(time.Hour)
	u := &User{
		ID:                     primitive.NewObjectID(),
		Name:                   "Amina",
		Email:                  "amina@example.com",
		Password:               "$2a$12$fakehashfakehashfakehash",
		Role:                   RoleUser,
		ResetPasswordToken:     "reset-token",
		ResetPasswordExpire:    &expire,
		EmailVerificationToken: "verify-token",
	}

	raw, err := json.Marshal(u.PublicView())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	body := string(raw)

	for _, forbidden := range []string{
		"password",
		"fakehash",
		"reset-token",
		"verify-token",
		"reset_password_token",
		"reset_password_expire",
		"email_verification_token",
	} {
		if strings.Contains(body, forbidden) {
			t.Errorf("public profile leaks %q: %s", forbidden, body)
		}
	}

	if !strings.Contains(body, `"email":"amina@example.com"`) {
		t.Errorf("public profile missing email: %s", body)
	}
}

func TestDefaultPreferences(t *testing.T) {
	p := DefaultPreferences()
	if !p.Newsletter || !p.Notifications {
		t.Error("expected newsletter and notifications on by default")
	}
	if p.Currency != "USD" || p.Language != "en" {
		t.Errorf("unexpected defaults: %+v", p)
	}
}
