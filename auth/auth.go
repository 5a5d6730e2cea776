// Package auth carries the plain credential phrase used by the REST helper's
// authenticate call and the pieces a service needs to check it.
//
// The phrase is "username:password" sent verbatim in a single header. Nothing
// here encrypts it in transit; callers that need secrecy must pre-encrypt the
// values or rely on TLS.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"
)

// HeaderName is the request header that carries the credential phrase.
const HeaderName = "X-Credentials"

var (
	ErrPhraseNotFound     = errors.New("auth: credential phrase not found")
	ErrPhraseInvalid      = errors.New("auth: invalid credential phrase")
	ErrUnknownUser        = errors.New("auth: unknown user")
	ErrCredentialMismatch = errors.New("auth: credentials do not match")
)

// Credentials is a username/password pair.
type Credentials struct {
	Username string
	Password string
}

// Phrase joins the credentials with a colon, unencoded.
func (c Credentials) Phrase() string { return Phrase(c.Username, c.Password) }

// Phrase joins username and password with a colon, unencoded.
func Phrase(username, password string) string { return username + ":" + password }

// ParsePhrase splits a phrase at the first colon. The username must not be
// empty; the password may be.
func ParsePhrase(phrase string) (Credentials, error) {
	username, password, ok := strings.Cut(phrase, ":")
	if !ok || strings.TrimSpace(username) == "" {
		return Credentials{}, ErrPhraseInvalid
	}
	return Credentials{Username: username, Password: password}, nil
}

// FromRequest reads and parses the phrase header of r.
func FromRequest(r *http.Request) (Credentials, error) {
	raw := r.Header.Get(HeaderName)
	if raw == "" {
		return Credentials{}, ErrPhraseNotFound
	}
	return ParsePhrase(raw)
}

// PhraseHash contains the metadata needed to verify a hashed password.
type PhraseHash struct {
	Algorithm string
	Cost      int
	Value     []byte
	CreatedAt time.Time
}

// PhraseHasher hashes passwords and verifies them later.
type PhraseHasher interface {
	Hash(ctx context.Context, plain []byte) (PhraseHash, error)
	Compare(ctx context.Context, plain []byte, hash PhraseHash) error
}

// CredentialStore resolves the stored hash for a username.
type CredentialStore interface {
	Lookup(ctx context.Context, username string) (PhraseHash, error)
}

type usernameKey struct{}

// UsernameFromContext returns the username a Guard accepted.
func UsernameFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	name, ok := ctx.Value(usernameKey{}).(string)
	return name, ok
}

func contextError(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	return ctx.Err()
}
