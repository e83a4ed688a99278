// Package identity resolves bearer tokens to known users. Tokens are
// validated only; nothing here issues tokens or stores credentials.
package identity

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/medassist-labs/medchat/internal/store"
)

// Claims are the JWT claims accepted on chat requests.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
}

// Directory resolves token subjects to known users.
type Directory interface {
	GetUser(id string) (*store.User, error)
}

// Verifier validates bearer tokens against a shared secret and the user
// directory.
type Verifier struct {
	secret []byte
	dir    Directory
}

func NewVerifier(secret string, dir Directory) *Verifier {
	return &Verifier{secret: []byte(secret), dir: dir}
}

// Verify checks a token signature and maps its subject to an active user.
func (v *Verifier) Verify(tokenString string) (*store.User, error) {
	if len(v.secret) == 0 {
		return nil, fmt.Errorf("no jwt secret configured")
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse jwt: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid jwt claims")
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("token has no subject")
	}

	user, err := v.dir.GetUser(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("look up subject: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("unknown subject %q", claims.Subject)
	}
	if !user.Active {
		return nil, fmt.Errorf("user %s is inactive", user.ID)
	}
	return user, nil
}

// Identify resolves the request's bearer token to a known user.
// Requests without a token resolve to nil with no error.
func (v *Verifier) Identify(r *http.Request) (*store.User, error) {
	token := BearerToken(r)
	if token == "" {
		return nil, nil
	}
	return v.Verify(token)
}

// BearerToken extracts the bearer token from the Authorization header,
// or "" when absent.
func BearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(auth, "Bearer ")
}
