// Package auth validates access tokens carried in Call envelopes.
package auth

import (
	"crypto/subtle"
	"errors"
	"sync"

	"github.com/danmuck/callwire/internal/protocol"
)

var ErrUnauthorized = errors.New("auth: unauthorized")

// Validator validates an access token.
type Validator interface {
	Validate(token string) error
}

// StaticToken accepts one shared token. Development use only.
type StaticToken struct {
	Token string
}

func (s StaticToken) Validate(token string) error {
	if s.Token == "" || isSentinel(token) {
		return ErrUnauthorized
	}
	if subtle.ConstantTimeCompare([]byte(s.Token), []byte(token)) != 1 {
		return ErrUnauthorized
	}
	return nil
}

// TokenSet holds issued tokens, e.g. the ones handed out by login.
type TokenSet struct {
	mu     sync.RWMutex
	tokens map[string]struct{}
}

func NewTokenSet(tokens ...string) *TokenSet {
	ts := &TokenSet{tokens: make(map[string]struct{}, len(tokens))}
	for _, tok := range tokens {
		ts.Issue(tok)
	}
	return ts
}

func (ts *TokenSet) Issue(token string) {
	if isSentinel(token) {
		return
	}
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.tokens[token] = struct{}{}
}

func (ts *TokenSet) Revoke(token string) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	delete(ts.tokens, token)
}

func (ts *TokenSet) Validate(token string) error {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	if _, ok := ts.tokens[token]; !ok {
		return ErrUnauthorized
	}
	return nil
}

// FuncValidator adapts a function into a Validator.
type FuncValidator func(token string) error

func (f FuncValidator) Validate(token string) error {
	return f(token)
}

func isSentinel(token string) bool {
	return token == "" || token == protocol.NoTokenSentinel
}
