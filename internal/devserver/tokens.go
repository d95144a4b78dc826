package devserver

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	kindDevice = "device"
	kindUser   = "user"
)

var errWrongKind = errors.New("token kind mismatch")

type claims struct {
	Kind    string `json:"kind"`
	Version int    `json:"ver,omitempty"`
	jwt.RegisteredClaims
}

// signer issues and verifies the backend's HS256 tokens.
type signer struct {
	secret []byte
	now    func() time.Time
}

func (s *signer) issue(kind, subject string, version int, ttl time.Duration) (string, error) {
	now := s.now()
	c := claims{
		Kind:    kind,
		Version: version,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", kind, err)
	}
	return tok, nil
}

func (s *signer) verify(kind, raw string) (*claims, error) {
	var c claims
	_, err := jwt.ParseWithClaims(raw, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if c.Kind != kind {
		return nil, errWrongKind
	}
	return &c, nil
}
