// Package session keeps the access token between calls and injects it into
// every envelope. An empty token is sent as the protocol's "-" sentinel.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/danmuck/callwire/internal/transport"
)

var ErrNoToken = errors.New("session: login response carries no token")

// Caller is the transport contract every business service consumes.
type Caller interface {
	Call(ctx context.Context, op int32, token string, params ...string) (*transport.Result, error)
}

// Store is an in-memory token holder safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	token string
}

func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Store) Set(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

func (s *Store) Clear() { s.Set("") }

type Session struct {
	store  *Store
	caller Caller
}

func New(caller Caller, store *Store) *Session {
	if store == nil {
		store = &Store{}
	}
	return &Session{store: store, caller: caller}
}

func (s *Session) Token() string { return s.store.Token() }

func (s *Session) LoggedIn() bool { return s.store.Token() != "" }

// Do calls op with the current token.
func (s *Session) Do(ctx context.Context, op int32, params ...string) (*transport.Result, error) {
	return s.caller.Call(ctx, op, s.store.Token(), params...)
}

type loginResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
	Message string `json:"message"`
}

// Login calls op without a token and keeps the token from the response.
func (s *Session) Login(ctx context.Context, op int32, params ...string) (*transport.Result, error) {
	res, err := s.caller.Call(ctx, op, "", params...)
	if err != nil {
		return nil, err
	}
	var out loginResponse
	if err := res.Decode(&out); err != nil {
		return nil, err
	}
	if !out.Success || out.Token == "" {
		return res, fmt.Errorf("%w: %s", ErrNoToken, out.Message)
	}
	s.store.Set(out.Token)
	return res, nil
}

func (s *Session) Logout() { s.store.Clear() }
