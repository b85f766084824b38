package identity

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"hotelops/internal/domain"
)

// Verifier resolves HS256 bearer tokens to a caller identity. Token
// issuance lives with the identity provider; this adapter only needs the
// shared secret to validate what arrives.
type Verifier struct {
	secret []byte
}

func New(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

func (v *Verifier) Verify(token string) (domain.Identity, error) {
	tok, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !tok.Valid {
		return domain.Identity{}, domain.Permissionf("invalid bearer token")
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return domain.Identity{}, domain.Permissionf("invalid token claims")
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return domain.Identity{}, domain.Permissionf("token has no subject")
	}
	roleStr, _ := claims["role"].(string)
	role, err := domain.ParseRole(roleStr)
	if err != nil {
		return domain.Identity{}, domain.Permissionf("token has no usable role")
	}
	return domain.Identity{Username: sub, Role: role}, nil
}

// Issue mints a token for the given identity. Used by ops tooling and
// tests; the API itself never issues credentials.
func (v *Verifier) Issue(id domain.Identity, ttl time.Duration) (string, error) {
	now := time.Now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  id.Username,
		"role": string(id.Role),
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	})
	return tok.SignedString(v.secret)
}
