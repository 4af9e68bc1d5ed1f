// Package session holds the process-wide authentication state: access token,
// profile, and the hydration flag. It is the only writer of persisted auth
// state; the TUI and the API client read from it.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/squarehq/square/pkg/domain"
)

// State is the session lifecycle state.
type State int

const (
	// StateUnhydrated means persisted state has not been loaded yet.
	StateUnhydrated State = iota
	// StateAnonymous means no access token is held.
	StateAnonymous
	// StateAuthenticated means an access token is held. The profile may
	// still be missing: profile fetch can lag token acquisition.
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateUnhydrated:
		return "unhydrated"
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// NotifyFunc tells the server a session ended. Best effort: a failure never
// blocks local logout.
type NotifyFunc func(ctx context.Context) error

// persisted is the on-disk record. hydrated is computed fresh each start and
// never persisted.
type persisted struct {
	AccessToken     string       `json:"access_token"`
	User            *domain.User `json:"user,omitempty"`
	IsAuthenticated bool         `json:"is_authenticated"`
}

// Store is the shared session store. All methods are safe for concurrent use
// from bubbletea command goroutines.
type Store struct {
	mu         sync.Mutex
	path       string
	mirrorPath string
	notify     NotifyFunc
	logger     *zap.Logger

	accessToken     string
	user            *domain.User
	isAuthenticated bool
	hydrated        bool
}

// New creates a store persisting to path. Call Hydrate before reading state.
func New(path string) *Store {
	return &Store{path: path, logger: zap.NewNop()}
}

// SetLogger attaches a logger for session transitions.
func (s *Store) SetLogger(l *zap.Logger) {
	if l != nil {
		s.logger = l
	}
}

// SetNotify registers the best-effort server logout notification.
func (s *Store) SetNotify(fn NotifyFunc) {
	s.notify = fn
}

// SetTokenMirror enables a plain-text copy of the access token at path,
// used outside production so other tooling can check the session without
// parsing the auth record. Pass "" to disable.
func (s *Store) SetTokenMirror(path string) {
	s.mirrorPath = path
}

// Hydrate loads persisted state. The hydrated flag flips exactly once; later
// calls are no-ops. A missing or unreadable record hydrates to anonymous.
func (s *Store) Hydrate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hydrated {
		return
	}
	s.hydrated = true

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("read auth record", zap.Error(err))
		}
		return
	}
	var rec persisted
	if err := json.Unmarshal(data, &rec); err != nil {
		s.logger.Warn("corrupt auth record, starting anonymous", zap.Error(err))
		return
	}
	// An authenticated record without a token is invalid; drop it rather
	// than violate the token invariant.
	if rec.IsAuthenticated && rec.AccessToken == "" {
		s.logger.Warn("auth record missing token, starting anonymous")
		return
	}
	s.accessToken = rec.AccessToken
	s.user = rec.User
	s.isAuthenticated = rec.IsAuthenticated
	s.logger.Info("session hydrated", zap.String("state", s.stateLocked().String()))
}

// Hydrated reports whether persisted state has been loaded.
func (s *Store) Hydrated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hydrated
}

// State returns the current lifecycle state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Store) stateLocked() State {
	switch {
	case !s.hydrated:
		return StateUnhydrated
	case s.isAuthenticated:
		return StateAuthenticated
	default:
		return StateAnonymous
	}
}

// Token returns the access token, or "" when anonymous.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken
}

// IsAuthenticated reports whether a token is held.
func (s *Store) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isAuthenticated
}

// User returns the cached profile, or nil when not yet fetched.
func (s *Store) User() *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// Login stores the access token and marks the session authenticated. It does
// not fetch the profile; that is the caller's responsibility, so a failed
// profile fetch cannot undo a successful login.
func (s *Store) Login(token string) error {
	if strings.TrimSpace(token) == "" {
		return errors.New("session: login requires a token")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = token
	s.isAuthenticated = true
	s.persistLocked()
	s.logger.Info("session login")
	return nil
}

// SetUser attaches the fetched profile. Authentication state is unchanged.
func (s *Store) SetUser(u *domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = u
	s.persistLocked()
}

// Logout clears the session. It first sends the best-effort server
// notification; local clearing always succeeds regardless. Idempotent.
func (s *Store) Logout(ctx context.Context) {
	if s.notify != nil {
		if err := s.notify(ctx); err != nil {
			s.logger.Warn("logout notification failed", zap.Error(err))
		}
	}
	s.ForceLogout()
}

// ForceLogout clears the session locally without notifying the server. Used
// by the gateway's 401 handler, which has already sent the notification.
func (s *Store) ForceLogout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = ""
	s.user = nil
	s.isAuthenticated = false
	s.persistLocked()
	s.logger.Info("session cleared")
}

// persistLocked writes the current state to disk, plus the token mirror when
// enabled. Persistence failures are logged, never surfaced: the in-memory
// session is authoritative for this process.
func (s *Store) persistLocked() {
	rec := persisted{
		AccessToken:     s.accessToken,
		User:            s.user,
		IsAuthenticated: s.isAuthenticated,
	}
	data, err := json.Marshal(rec)
	if err != nil {
		s.logger.Warn("encode auth record", zap.Error(err))
		return
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		s.logger.Warn("create auth dir", zap.Error(err))
		return
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		s.logger.Warn("write auth record", zap.Error(err))
	}
	if s.mirrorPath == "" {
		return
	}
	if s.accessToken == "" {
		if err := os.Remove(s.mirrorPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("remove token mirror", zap.Error(err))
		}
		return
	}
	if err := os.WriteFile(s.mirrorPath, []byte(s.accessToken), 0o600); err != nil {
		s.logger.Warn("write token mirror", zap.Error(err))
	}
}
