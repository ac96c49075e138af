package token

import (
	"testing"
	"time"

	"github.com/pablodelgado26/family-organizer/internal/apperr"
)

func TestGenerateAndParse(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	signed, err := m.Generate(42, "alice@example.com")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := m.Parse(signed)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("user id = %d, want 42", claims.UserID)
	}
	if claims.Email != "alice@example.com" {
		t.Errorf("email = %q, want alice@example.com", claims.Email)
	}
}

func TestParseExpired(t *testing.T) {
	m := NewManager("test-secret", -time.Minute)

	signed, err := m.Generate(42, "alice@example.com")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := m.Parse(signed); !apperr.Is(err, apperr.KindUnauthorized) {
		t.Errorf("kind = %v, want unauthorized", apperr.KindOf(err))
	}
}

func TestParseWrongSecret(t *testing.T) {
	m := NewManager("test-secret", time.Hour)
	other := NewManager("other-secret", time.Hour)

	signed, _ := m.Generate(42, "alice@example.com")

	if _, err := other.Parse(signed); !apperr.Is(err, apperr.KindUnauthorized) {
		t.Errorf("kind = %v, want unauthorized", apperr.KindOf(err))
	}
}

func TestParseGarbage(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	if _, err := m.Parse("not-a-token"); !apperr.Is(err, apperr.KindUnauthorized) {
		t.Errorf("kind = %v, want unauthorized", apperr.KindOf(err))
	}
}
