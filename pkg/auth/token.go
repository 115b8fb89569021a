package auth

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuerName = "instrumentdb"

// Issuer signs and verifies API tokens with a shared HS256 secret.
type Issuer struct {
	secret   []byte
	lifetime time.Duration
}

// NewIssuer wraps a signing secret. lifetime bounds how long issued
// tokens stay valid.
func NewIssuer(secret []byte, lifetime time.Duration) *Issuer {
	return &Issuer{secret: secret, lifetime: lifetime}
}

// LoadIssuer reads the signing secret from a file.
func LoadIssuer(keyFile string, lifetime time.Duration) (*Issuer, error) {
	secret, err := os.ReadFile(keyFile)
	if err != nil {
		return nil, err
	}
	secret = []byte(strings.TrimSpace(string(secret)))
	if len(secret) == 0 {
		return nil, fmt.Errorf("empty signing key in %s", keyFile)
	}
	return NewIssuer(secret, lifetime), nil
}

// Issue returns a signed token naming the user.
func (i *Issuer) Issue(username string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    issuerName,
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(i.lifetime)),
	})
	return token.SignedString(i.secret)
}

// Verify checks signature, issuer and expiry, and returns the username
// the token was issued to.
func (i *Issuer) Verify(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&jwt.RegisteredClaims{},
		func(t *jwt.Token) (interface{}, error) {
			if t.Method != jwt.SigningMethodHS256 {
				return nil, fmt.Errorf("unexpected signing method %s", t.Method.Alg())
			}
			return i.secret, nil
		},
		jwt.WithIssuer(issuerName),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", fmt.Errorf("token without a subject")
	}
	return claims.Subject, nil
}
