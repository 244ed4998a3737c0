package local

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"ezlearn/internal/adapters/platform"
)

var (
	ErrMissingCredential = errors.New("credential is missing")
	ErrViewerMismatch    = errors.New("credential was issued to a different viewer")
)

// Verifier checks that a session's credential is an HS256 token issued to
// the session's viewer.
type Verifier struct {
	secret []byte
}

// NewVerifier returns a verifier for tokens signed with secret.
// PRE: len(secret) > 0
func NewVerifier(secret []byte) *Verifier {
	return &Verifier{secret: secret}
}

// Verify validates the token signature, expiry and subject.
// PRE: none
// POST: Returns nil only if sess.Credential names sess.ViewerID
func (v *Verifier) Verify(sess platform.Session) error {
	if sess.Credential == "" {
		return ErrMissingCredential
	}
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(sess.Credential, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return fmt.Errorf("verify credential: %w", err)
	}
	if claims.Subject != sess.ViewerID {
		return ErrViewerMismatch
	}
	return nil
}

// Issue signs a token for viewerID valid for ttl from now.
func (v *Verifier) Issue(viewerID string, now time.Time, ttl time.Duration) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   viewerID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}
