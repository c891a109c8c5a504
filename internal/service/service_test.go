package service

import (
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/mariaangelps/490-The-Team/internal/db/dbtest"
	"github.com/mariaangelps/490-The-Team/internal/mailer"
	"github.com/mariaangelps/490-The-Team/internal/repository"
	"github.com/mariaangelps/490-The-Team/internal/storage"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type outbox struct {
	mu   sync.Mutex
	msgs []mailer.Message
}

func (o *outbox) Enqueue(msg mailer.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.msgs = append(o.msgs, msg)
	return nil
}

func (o *outbox) byKind(kind string) []mailer.Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	var out []mailer.Message
	for _, m := range o.msgs {
		if m.Kind == kind {
			out = append(out, m)
		}
	}
	return out
}

var resetTokenPattern = regexp.MustCompile(`token=([0-9a-f]{64})`)

// lastResetToken pulls the raw token out of the newest reset email.
func (o *outbox) lastResetToken(t *testing.T) string {
	t.Helper()
	msgs := o.byKind("password_reset")
	require.NotEmpty(t, msgs, "no reset email queued")
	m := resetTokenPattern.FindStringSubmatch(msgs[len(msgs)-1].Text)
	require.Len(t, m, 2)
	return m[1]
}

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type harness struct {
	db      *sqlx.DB
	users   repository.UserRepository
	tokens  repository.TokenRepository
	outbox  *outbox
	clock   *clock
	storage *storage.LocalStorage
	auth    *AuthService
	account *UserService
	files   *FileService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	conn := dbtest.New(t)

	store, err := storage.NewLocalStorage(t.TempDir(), "http://api.test/uploads")
	require.NoError(t, err)

	h := &harness{
		db:      conn,
		users:   repository.NewUserRepository(conn),
		tokens:  repository.NewTokenRepository(conn),
		outbox:  &outbox{},
		clock:   &clock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)},
		storage: store,
	}

	hasher := NewPasswordHasher(bcrypt.MinCost, 2)
	email := NewEmailService(h.outbox, "http://client.test", "Resume")
	h.auth = NewAuthService(h.users, h.tokens, hasher, email, AuthConfig{
		ResetTokenTTL: time.Hour,
		Now:           h.clock.Now,
	})
	h.files = NewFileService(h.users, store)
	h.account = NewUserService(h.users, hasher, h.files, email)
	return h
}
