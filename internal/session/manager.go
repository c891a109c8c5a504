package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/mariaangelps/490-The-Team/internal/model"
)

type Options struct {
	Secret []byte
	TTL    time.Duration
	Secure bool
	Now    func() time.Time
}

// Manager creates, loads and destroys sessions. It is the only place that
// reads or writes the session cookie.
type Manager struct {
	store  Store
	codec  CookieCodec
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

func NewManager(store Store, opts Options) *Manager {
	now := opts.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &Manager{
		store:  store,
		codec:  NewCookieCodec(opts.Secret),
		ttl:    ttl,
		secure: opts.Secure,
		now:    now,
	}
}

func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Start writes a new session for identity. Any session the request already
// carried is destroyed first so ids are never reused across logins.
func (m *Manager) Start(ctx context.Context, w http.ResponseWriter, r *http.Request, identity model.Identity) (*model.Session, error) {
	if old, ok := m.sessionID(r); ok {
		if err := m.store.Delete(ctx, old); err != nil {
			slog.Warn("failed to delete previous session", "error", err)
		}
	}

	id, err := newSessionID()
	if err != nil {
		return nil, err
	}

	now := m.now()
	s := &model.Session{
		ID:        id,
		UserID:    identity.ID,
		Email:     identity.Email,
		Name:      identity.Name,
		IP:        clientIP(r),
		UserAgent: truncate(r.UserAgent(), 255),
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}

	err = m.store.Create(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    m.codec.Encode(s.ID),
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(m.ttl.Seconds()),
		Expires:  s.ExpiresAt,
	})
	return s, nil
}

// Load returns the session referenced by the request cookie, or ErrNotFound.
func (m *Manager) Load(ctx context.Context, r *http.Request) (*model.Session, error) {
	id, ok := m.sessionID(r)
	if !ok {
		return nil, ErrNotFound
	}
	s, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.IsExpired(m.now()) {
		return nil, ErrNotFound
	}
	return s, nil
}

// Destroy removes the current session and clears the cookie. It succeeds
// when there is no session.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	defer m.clearCookie(w)

	id, ok := m.sessionID(r)
	if !ok {
		return nil
	}
	err := m.store.Delete(ctx, id)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DestroyUser removes every session belonging to userID.
func (m *Manager) DestroyUser(ctx context.Context, userID string) error {
	return m.store.DeleteByUser(ctx, userID)
}

// Cleanup deletes expired records from stores that do not expire them natively.
func (m *Manager) Cleanup(ctx context.Context) (int64, error) {
	return m.store.DeleteExpired(ctx, m.now())
}

func (m *Manager) sessionID(r *http.Request) (string, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	return m.codec.Decode(c.Value)
}

func (m *Manager) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
}

func newSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
