// Package auth decides whether a registration may join the directory.
//
// The relay does not authenticate devices itself. It asks an Authenticator
// whether the token presented at registration belongs to a trusted caller.
package auth

import (
	"crypto/subtle"
	"errors"
	"strings"

	"utter/internal/domain"
)

// ErrUnauthorized is returned when a registration token is rejected.
var ErrUnauthorized = errors.New("unauthorized")

// Authenticator verifies the caller behind a registration.
type Authenticator interface {
	Authenticate(id domain.DeviceID, token string) error
}

// AllowAll trusts transport-level identity and accepts every registration.
type AllowAll struct{}

// Authenticate always succeeds.
func (AllowAll) Authenticate(domain.DeviceID, string) error { return nil }

// StaticTokens accepts any token from a fixed set.
type StaticTokens struct {
	tokens [][]byte
}

// NewStaticTokens builds a StaticTokens from a list; blank entries are ignored.
func NewStaticTokens(tokens []string) *StaticTokens {
	st := &StaticTokens{}
	for _, t := range tokens {
		if t = strings.TrimSpace(t); t != "" {
			st.tokens = append(st.tokens, []byte(t))
		}
	}
	return st
}

// Authenticate compares token against every configured token in constant time.
func (s *StaticTokens) Authenticate(_ domain.DeviceID, token string) error {
	ok := 0
	for _, t := range s.tokens {
		ok |= subtle.ConstantTimeCompare(t, []byte(token))
	}
	if ok != 1 || token == "" {
		return ErrUnauthorized
	}
	return nil
}

// FromTokens returns AllowAll when tokens is empty, StaticTokens otherwise.
func FromTokens(tokens []string) Authenticator {
	st := NewStaticTokens(tokens)
	if len(st.tokens) == 0 {
		return AllowAll{}
	}
	return st
}
