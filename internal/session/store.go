// Package session owns the staff login: the persisted token and user, the
// expiry check run on every protected request, and login/logout.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kf-pos/dashboard/internal/auth"
	"github.com/kf-pos/dashboard/internal/model"
)

// Persisted keys. Both are written and cleared together.
const (
	KeyToken = "token"
	KeyUser  = "user"
)

// Store is the single source of truth for the current session.
type Store struct {
	kv        KV
	now       func() time.Time
	logger    *slog.Logger
	onInvalid func(reason string)
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithInvalidHook is called with a short reason each time IsValid clears the session.
func WithInvalidHook(fn func(reason string)) Option {
	return func(s *Store) { s.onInvalid = fn }
}

func NewStore(kv KV, opts ...Option) *Store {
	s := &Store{kv: kv, now: time.Now, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save persists token and user in one write.
func (s *Store) Save(sess model.Session) error {
	user, err := json.Marshal(sess.User)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	if err := s.kv.SetMany(map[string][]byte{
		KeyToken: []byte(sess.Token),
		KeyUser:  user,
	}); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

// Clear removes token and user together.
func (s *Store) Clear() error {
	if err := s.kv.Delete(KeyToken, KeyUser); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Token returns the persisted token, or "" when there is none.
func (s *Store) Token() string {
	v, ok, err := s.kv.Get(KeyToken)
	if err != nil {
		s.logger.Error("read session token", "error", err)
		return ""
	}
	if !ok {
		return ""
	}
	return string(v)
}

// CurrentUser returns the persisted user, or nil if absent or corrupt.
func (s *Store) CurrentUser() *model.User {
	v, ok, err := s.kv.Get(KeyUser)
	if err != nil || !ok {
		return nil
	}
	var u *model.User
	if err := json.Unmarshal(v, &u); err != nil {
		return nil
	}
	return u
}

// IsValid decodes the persisted token's expiry. An absent, malformed or
// expired token clears the session and reports false. The result is never
// cached. With nothing persisted there is no session to clear, so the
// invalid hook does not fire.
func (s *Store) IsValid() bool {
	token := s.Token()
	if token == "" {
		if _, ok, err := s.kv.Get(KeyUser); err == nil && ok {
			s.invalidate("missing token")
		}
		return false
	}

	exp, ok, err := auth.DecodeExpiry(token)
	if err != nil {
		s.invalidate("malformed token")
		return false
	}
	if ok && exp.Before(s.now()) {
		s.invalidate("token expired")
		return false
	}
	return true
}

func (s *Store) invalidate(reason string) {
	s.logger.Info("session invalid, clearing", "reason", reason)
	if err := s.Clear(); err != nil {
		s.logger.Error("clear invalid session", "error", err)
	}
	if s.onInvalid != nil {
		s.onInvalid(reason)
	}
}

// Authenticator exchanges credentials for a session at the backend.
// Satisfied by *backend.Client.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (model.Session, error)
}

var ErrEmptyToken = errors.New("backend returned no token")

// Manager performs login and logout against a Store.
type Manager struct {
	store *Store
	auth  Authenticator
}

func NewManager(store *Store, authn Authenticator) *Manager {
	return &Manager{store: store, auth: authn}
}

// Store returns the underlying session store.
func (m *Manager) Store() *Store { return m.store }

// Login authenticates and persists the session on success. Backend errors
// are returned unchanged (already converted by the client).
func (m *Manager) Login(ctx context.Context, username, password string) (model.Session, error) {
	sess, err := m.auth.Login(ctx, username, password)
	if err != nil {
		return model.Session{}, err
	}
	if sess.Token == "" {
		return model.Session{}, ErrEmptyToken
	}
	if err := m.store.Save(sess); err != nil {
		return model.Session{}, err
	}
	return sess, nil
}

// Logout clears the persisted session. No network call is made.
func (m *Manager) Logout() error {
	return m.store.Clear()
}
