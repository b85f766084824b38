package identity_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"hotelops/internal/adapters/identity"
	"hotelops/internal/domain"
)

func TestVerify_RoundTrip(t *testing.T) {
	v := identity.New("s3cret")

	tok, err := v.Issue(domain.Identity{Username: "ada", Role: domain.RoleAdmin}, time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	id, err := v.Verify(tok)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if id.Username != "ada" || id.Role != domain.RoleAdmin {
		t.Fatalf("unexpected identity: %+v", id)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	tok, err := identity.New("one").Issue(domain.Identity{Username: "ada", Role: domain.RoleGuest}, time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := identity.New("other").Verify(tok); !domain.IsKind(err, domain.KindPermission) {
		t.Fatalf("want permission error, got %v", err)
	}
}

func TestVerify_Expired(t *testing.T) {
	v := identity.New("s3cret")
	tok, err := v.Issue(domain.Identity{Username: "ada", Role: domain.RoleGuest}, -time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := v.Verify(tok); !domain.IsKind(err, domain.KindPermission) {
		t.Fatalf("want permission error, got %v", err)
	}
}

func TestVerify_MissingClaims(t *testing.T) {
	secret := []byte("s3cret")
	v := identity.New(string(secret))

	noSub := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"role": "admin"})
	s1, _ := noSub.SignedString(secret)
	if _, err := v.Verify(s1); !domain.IsKind(err, domain.KindPermission) {
		t.Fatalf("no sub: want permission error, got %v", err)
	}

	badRole := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "ada", "role": "superuser"})
	s2, _ := badRole.SignedString(secret)
	if _, err := v.Verify(s2); !domain.IsKind(err, domain.KindPermission) {
		t.Fatalf("bad role: want permission error, got %v", err)
	}
}
