package helpers

import (
	"strings"
	"testing"
	"time"
)

func TestGenerateSlug(t *testing.T) {
	cases := []struct {
		title string
		want  string
	}{
		{"Desert Dunes Adventure", "desert-dunes-adventure"},
		{"Safari: The Big Five!", "safari-the-big-five"},
		{"  Nile  Cruise  ", "nile-cruise"},
		{"2-Day Atlas Trek", "2-day-atlas-trek"},
		{"ALL CAPS", "all-caps"},
	}
	for _, tc := range cases {
		if got := GenerateSlug(tc.title); got != tc.want {
			t.Errorf("GenerateSlug(%q) = %q, want %q", tc.title, got, tc.want)
		}
	}
}

func TestConfirmationNumberFormat(t *testing.T) {
	n := ConfirmationNumber()

	if !strings.HasPrefix(n, "MRM") {
		t.Fatalf("expected MRM prefix, got %q", n)
	}
	rest := strings.TrimPrefix(n, "MRM")
	if len(rest) != 18 {
		t.Fatalf("expected 13-digit timestamp plus 5-char suffix, got %d chars in %q", len(rest), n)
	}
	suffix := rest[13:]
	for _, r := range suffix {
		if !strings.ContainsRune(confirmationAlphabet, r) {
			t.Errorf("suffix character %q outside alphabet in %q", r, n)
		}
	}
}

func TestConfirmationNumberVaries(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		seen[ConfirmationNumber()] = true
	}
	// Timestamps alone would collide within a millisecond; the random suffix
	// should keep these distinct.
	if len(seen) < 45 {
		t.Errorf("expected mostly distinct confirmation numbers, got %d of 50", len(seen))
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	secret := "test-secret"
	token, err := NewAccessToken(secret, "64f0c9e1a2b3c4d5e6f70819", "admin", time.Hour)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}

	claims, err := ValidateToken(secret, token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.Subject != "64f0c9e1a2b3c4d5e6f70819" {
		t.Errorf("subject = %q", claims.Subject)
	}
	if claims.Role != "admin" {
		t.Errorf("role = %q", claims.Role)
	}
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	token, err := NewAccessToken("secret-a", "64f0c9e1a2b3c4d5e6f70819", "user", time.Hour)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	if _, err := ValidateToken("secret-b", token); err == nil {
		t.Error("expected validation failure with the wrong secret")
	}
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	token, err := NewAccessToken("secret", "64f0c9e1a2b3c4d5e6f70819", "user", -time.Minute)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	if _, err := ValidateToken("secret", token); err == nil {
		t.Error("expected validation failure for an expired token")
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	if _, err := ValidateToken("secret", "not-a-token"); err == nil {
		t.Error("expected validation failure for a malformed token")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "hunter22" {
		t.Fatal("hash must not equal the plaintext")
	}
	if !VerifyPassword(hash, "hunter22") {
		t.Error("expected correct password to verify")
	}
	if VerifyPassword(hash, "hunter23") {
		t.Error("expected wrong password to fail verification")
	}
}
