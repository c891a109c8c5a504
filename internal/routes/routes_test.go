package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mariaangelps/490-The-Team/internal/app"
	"github.com/mariaangelps/490-The-Team/internal/config"
	"github.com/mariaangelps/490-The-Team/internal/mailer"
	"github.com/mariaangelps/490-The-Team/internal/oauth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const clientURL = "http://client.test"

var tokenPattern = regexp.MustCompile(`token=([0-9a-f]{64})`)

type outbox struct {
	mu   sync.Mutex
	msgs []mailer.Message
}

func (o *outbox) Send(ctx context.Context, msg mailer.Message) error {
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

// waitFor blocks until n messages of kind have been delivered.
func (o *outbox) waitFor(t *testing.T, kind string, n int) []mailer.Message {
	t.Helper()
	require.Eventually(t, func() bool { return len(o.byKind(kind)) >= n }, 2*time.Second, 10*time.Millisecond)
	return o.byKind(kind)
}

func (o *outbox) resetToken(t *testing.T, n int) string {
	t.Helper()
	msgs := o.waitFor(t, "password_reset", n)
	m := tokenPattern.FindStringSubmatch(msgs[n-1].Text)
	require.Len(t, m, 2, "reset email should carry a token")
	return m[1]
}

// fakeProvider stands in for an OAuth provider; the code is the profile key.
type fakeProvider struct {
	name     string
	profiles map[string]*oauth.Profile
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) AuthCodeURL(state string) string {
	return "https://provider.test/" + p.name + "/authorize?state=" + url.QueryEscape(state)
}

func (p *fakeProvider) Exchange(ctx context.Context, code string) (*oauth.Profile, error) {
	profile, ok := p.profiles[code]
	if !ok {
		return nil, oauth.ErrProviderResponse
	}
	return profile, nil
}

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		AppName:                  "Resume",
		AppEnv:                   "development",
		ClientURL:                clientURL,
		APIURL:                   "http://api.test",
		DBDriver:                 "sqlite",
		DBConnection:             ":memory:?_pragma=foreign_keys(1)",
		DBTimeout:                5 * time.Second,
		SessionSecret:            "test-session-secret",
		SessionTTL:               time.Hour,
		SessionStore:             "sql",
		BcryptCost:               bcrypt.MinCost,
		TokenPasswordResetExpiry: time.Hour,
		MailTransport:            "log",
		MailTimeout:              time.Second,
		MailQueueSize:            10,
		UploadPath:               t.TempDir(),
	}
}

type testServer struct {
	t      *testing.T
	srv    *httptest.Server
	client *http.Client
	mail   *outbox
}

func newTestServer(t *testing.T, opts ...app.Option) *testServer {
	t.Helper()
	mail := &outbox{}

	a, err := app.New(context.Background(), testConfig(t), append([]app.Option{app.WithMailer(mail)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = a.Close(ctx)
	})

	srv := httptest.NewServer(SetupRoutes(a))
	t.Cleanup(srv.Close)

	ts := &testServer{t: t, srv: srv, mail: mail}
	ts.client = ts.newClient()
	return ts
}

// newClient returns a browser-like client with its own cookie jar that
// does not follow redirects.
func (s *testServer) newClient() *http.Client {
	jar, err := cookiejar.New(nil)
	require.NoError(s.t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

type response struct {
	status int
	header http.Header
	body   map[string]any
}

func (r response) errorCode() string {
	e, _ := r.body["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

func (s *testServer) do(c *http.Client, method, path string, body any) response {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, s.srv.URL+path, reader)
	require.NoError(s.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return s.send(c, req)
}

func (s *testServer) send(c *http.Client, req *http.Request) response {
	s.t.Helper()
	resp, err := c.Do(req)
	require.NoError(s.t, err)
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(s.t, err)

	out := response{status: resp.StatusCode, header: resp.Header}
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(s.t, json.Unmarshal(raw, &out.body), string(raw))
	}
	return out
}

func (s *testServer) register(c *http.Client, email, password string) response {
	s.t.Helper()
	return s.do(c, http.MethodPost, "/api/auth/register", map[string]any{
		"email":           email,
		"password":        password,
		"confirmPassword": password,
		"firstName":       "Ada",
		"lastName":        "Lovelace",
	})
}

func (s *testServer) login(c *http.Client, email, password string) response {
	s.t.Helper()
	return s.do(c, http.MethodPost, "/api/auth/login", map[string]any{"email": email, "password": password})
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	res := s.do(s.client, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, res.status)
	assert.Equal(t, "ok", res.body["status"])
	assert.Equal(t, "up", res.body["database"])
	assert.NotEmpty(t, res.header.Get("X-Request-ID"))
	assert.Equal(t, "nosniff", res.header.Get("X-Content-Type-Options"))
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t)

	res := s.do(s.client, http.MethodGet, "/api/nope", nil)

	assert.Equal(t, http.StatusNotFound, res.status)
	assert.Equal(t, "NOT_FOUND", res.errorCode())
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	s := newTestServer(t)

	routes := []struct{ method, path string }{
		{http.MethodGet, "/api/auth/me"},
		{http.MethodGet, "/api/users/me"},
		{http.MethodDelete, "/api/users/me"},
		{http.MethodGet, "/api/profile/basic"},
		{http.MethodPut, "/api/profile/basic"},
		{http.MethodPost, "/api/profile/avatar"},
		{http.MethodGet, "/api/employment"},
		{http.MethodDelete, "/api/employment/x"},
		{http.MethodGet, "/api/education"},
		{http.MethodGet, "/api/skills"},
	}
	for _, r := range routes {
		t.Run(r.method+" "+r.path, func(t *testing.T) {
			res := s.do(s.client, r.method, r.path, nil)
			assert.Equal(t, http.StatusUnauthorized, res.status)
			assert.Equal(t, "AUTH_REQUIRED", res.errorCode())
		})
	}
}

func TestRegisterLoginLogout(t *testing.T) {
	s := newTestServer(t)

	res := s.register(s.client, "Ada@Example.com", "Aa111111")
	require.Equal(t, http.StatusCreated, res.status)
	assert.Equal(t, "Registered", res.body["message"])
	user := res.body["user"].(map[string]any)
	assert.Equal(t, "Ada Lovelace", user["name"])
	assert.Equal(t, true, user["hasPassword"])
	assert.Equal(t, []any{"local"}, user["providers"])

	// Registration signs the user in
	me := s.do(s.client, http.MethodGet, "/api/auth/me", nil)
	require.Equal(t, http.StatusOK, me.status)
	assert.Equal(t, user["id"], me.body["user"].(map[string]any)["id"])

	s.mail.waitFor(t, "welcome", 1)

	for range 2 {
		out := s.do(s.client, http.MethodPost, "/api/auth/logout", nil)
		assert.Equal(t, http.StatusOK, out.status)
		assert.Equal(t, "Logged out", out.body["message"])
	}
	assert.Equal(t, http.StatusUnauthorized, s.do(s.client, http.MethodGet, "/api/auth/me", nil).status)

	in := s.login(s.client, " ada@example.COM ", "Aa111111")
	require.Equal(t, http.StatusOK, in.status)
	assert.Equal(t, user["id"], in.body["user"].(map[string]any)["id"])
	assert.Equal(t, http.StatusOK, s.do(s.client, http.MethodGet, "/api/auth/me", nil).status)
}

func TestRegister_Failures(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusCreated, s.register(s.newClient(), "a@x.com", "Aa111111").status)

	dup := s.register(s.newClient(), " A@X.COM", "Aa111111")
	assert.Equal(t, http.StatusConflict, dup.status)
	assert.Equal(t, "DUPLICATE_EMAIL", dup.errorCode())

	weak := s.register(s.newClient(), "b@x.com", "short")
	assert.Equal(t, http.StatusBadRequest, weak.status)
	assert.Equal(t, "VALIDATION_ERROR", weak.errorCode())
	fields := weak.body["error"].(map[string]any)["fields"].(map[string]any)
	assert.Contains(t, fields, "password")

	req, err := http.NewRequest(http.MethodPost, s.srv.URL+"/api/auth/register", strings.NewReader("{not json"))
	require.NoError(t, err)
	malformed := s.send(s.newClient(), req)
	assert.Equal(t, http.StatusBadRequest, malformed.status)
	assert.Equal(t, "VALIDATION_ERROR", malformed.errorCode())
}

// logSink captures log output written from server goroutines.
type logSink struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (l *logSink) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buf.Write(p)
}

func (l *logSink) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buf.String()
}

func captureLogs(t *testing.T) *logSink {
	t.Helper()
	sink := &logSink{}
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(sink, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return sink
}

func TestLogin_FailuresDoNotLogSubmittedEmail(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusCreated, s.register(s.newClient(), "known@x.com", "Aa111111").status)
	logs := captureLogs(t)

	assert.Equal(t, http.StatusUnauthorized, s.login(s.client, "known@x.com", "Zz999999").status)
	assert.Equal(t, http.StatusUnauthorized, s.login(s.client, "ghost@x.com", "Zz999999").status)

	out := logs.String()
	assert.Contains(t, out, "login failed")
	assert.NotContains(t, out, "known@x.com")
	assert.NotContains(t, out, "ghost@x.com")
}

func TestLogin_WrongPassword(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusCreated, s.register(s.newClient(), "a@x.com", "Aa111111").status)

	res := s.login(s.client, "a@x.com", "Zz999999")
	assert.Equal(t, http.StatusUnauthorized, res.status)
	assert.Equal(t, "INVALID_CREDENTIALS", res.errorCode())

	unknown := s.login(s.client, "ghost@x.com", "Zz999999")
	assert.Equal(t, http.StatusUnauthorized, unknown.status)
	assert.Equal(t, "INVALID_CREDENTIALS", unknown.errorCode())
}

func TestPasswordResetScenario(t *testing.T) {
	s := newTestServer(t)
	other := s.newClient()
	require.Equal(t, http.StatusCreated, s.register(other, "a@x.com", "Aa111111").status)

	for range 2 {
		res := s.do(s.client, http.MethodPost, "/api/auth/reset/request", map[string]any{"email": "a@x.com"})
		require.Equal(t, http.StatusOK, res.status)
	}
	t1 := s.mail.resetToken(t, 1)
	t2 := s.mail.resetToken(t, 2)

	stale := s.do(s.client, http.MethodPost, "/api/auth/reset/complete", map[string]any{
		"token": t1, "password": "Bb222222", "confirmPassword": "Bb222222",
	})
	assert.Equal(t, http.StatusBadRequest, stale.status)
	assert.Equal(t, "INVALID_TOKEN", stale.errorCode())

	done := s.do(s.client, http.MethodPost, "/api/auth/reset/complete", map[string]any{
		"token": t2, "password": "Bb222222", "confirmPassword": "Bb222222",
	})
	require.Equal(t, http.StatusOK, done.status)
	assert.Equal(t, "Password has been reset", done.body["message"])

	// The reset signs in this client and revokes the session opened before it
	assert.Equal(t, http.StatusOK, s.do(s.client, http.MethodGet, "/api/auth/me", nil).status)
	assert.Equal(t, http.StatusUnauthorized, s.do(other, http.MethodGet, "/api/auth/me", nil).status)

	again := s.do(s.client, http.MethodPost, "/api/auth/reset/complete", map[string]any{
		"token": t2, "password": "Cc333333", "confirmPassword": "Cc333333",
	})
	assert.Equal(t, "INVALID_TOKEN", again.errorCode())

	assert.Equal(t, http.StatusOK, s.login(s.newClient(), "a@x.com", "Bb222222").status)
	assert.Equal(t, "INVALID_CREDENTIALS", s.login(s.newClient(), "a@x.com", "Aa111111").errorCode())
}

func TestResetRequest_SameAnswerForUnknownEmail(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusCreated, s.register(s.newClient(), "a@x.com", "Aa111111").status)

	known := s.do(s.client, http.MethodPost, "/api/auth/reset/request", map[string]any{"email": "a@x.com"})
	unknown := s.do(s.client, http.MethodPost, "/api/auth/reset/request", map[string]any{"email": "ghost@x.com"})
	invalid := s.do(s.client, http.MethodPost, "/api/auth/reset/request", map[string]any{"email": "not-an-email"})

	assert.Equal(t, http.StatusOK, known.status)
	assert.Equal(t, known.body, unknown.body)
	assert.Equal(t, known.body, invalid.body)
}

func newOAuthServer(t *testing.T) *testServer {
	google := &fakeProvider{name: oauth.Google, profiles: map[string]*oauth.Profile{
		"ada": {ID: "g-1", Email: "ada@x.com", GivenName: "Ada", FamilyName: "Lovelace", PictureURL: "https://img.test/ada.png"},
	}}
	linkedIn := &fakeProvider{name: oauth.LinkedIn, profiles: map[string]*oauth.Profile{
		"ada": {ID: "li-1", Email: "ADA@x.com", GivenName: "Augusta"},
	}}
	return newTestServer(t, app.WithOAuthProviders(google, linkedIn))
}

// oauthLogin walks start and callback with one client and returns the
// callback redirect target.
func (s *testServer) oauthLogin(c *http.Client, provider, code string) string {
	s.t.Helper()
	start := s.do(c, http.MethodGet, "/api/auth/"+provider, nil)
	require.Equal(s.t, http.StatusFound, start.status)

	loc, err := url.Parse(start.header.Get("Location"))
	require.NoError(s.t, err)
	state := loc.Query().Get("state")
	require.NotEmpty(s.t, state)

	q := url.Values{"state": {state}, "code": {code}}
	cb := s.do(c, http.MethodGet, "/api/auth/"+provider+"/callback?"+q.Encode(), nil)
	require.Equal(s.t, http.StatusFound, cb.status)
	return cb.header.Get("Location")
}

func TestOAuth_GoogleThenLinkedInMerge(t *testing.T) {
	s := newOAuthServer(t)

	assert.Equal(t, clientURL+"/dashboard", s.oauthLogin(s.client, oauth.Google, "ada"))
	assert.Equal(t, clientURL+"/dashboard", s.oauthLogin(s.client, oauth.Google, "ada"))
	assert.Equal(t, clientURL+"/dashboard", s.oauthLogin(s.client, oauth.LinkedIn, "ada"))

	me := s.do(s.client, http.MethodGet, "/api/users/me", nil)
	require.Equal(t, http.StatusOK, me.status)
	user := me.body["user"].(map[string]any)
	assert.Equal(t, []any{"google", "linkedin"}, user["providers"])
	assert.Equal(t, false, user["hasPassword"])
	assert.Equal(t, "Ada", user["firstName"])
	assert.Equal(t, "https://img.test/ada.png", user["picture"])

	res := s.login(s.newClient(), "ada@x.com", "Aa111111")
	assert.Equal(t, http.StatusForbidden, res.status)
	assert.Equal(t, "OAUTH_ONLY", res.errorCode())
}

func TestOAuth_Failures(t *testing.T) {
	s := newOAuthServer(t)
	failed := clientURL + "/login?error=oauth"

	t.Run("unknown provider", func(t *testing.T) {
		res := s.do(s.client, http.MethodGet, "/api/auth/github", nil)
		assert.Equal(t, http.StatusNotFound, res.status)
		assert.Equal(t, "NOT_FOUND", res.errorCode())
	})

	t.Run("callback for unknown provider", func(t *testing.T) {
		res := s.do(s.client, http.MethodGet, "/api/auth/github/callback?state=x&code=ada", nil)
		assert.Equal(t, http.StatusFound, res.status)
		assert.Equal(t, failed, res.header.Get("Location"))
	})

	t.Run("callback without state cookie", func(t *testing.T) {
		res := s.do(s.newClient(), http.MethodGet, "/api/auth/google/callback?state=x&code=ada", nil)
		assert.Equal(t, http.StatusFound, res.status)
		assert.Equal(t, failed, res.header.Get("Location"))
	})

	t.Run("exchange fails", func(t *testing.T) {
		c := s.newClient()
		assert.Equal(t, failed, s.oauthLogin(c, oauth.Google, "bad-code"))
		assert.Equal(t, http.StatusUnauthorized, s.do(c, http.MethodGet, "/api/auth/me", nil).status)
	})

	t.Run("provider denied consent", func(t *testing.T) {
		c := s.newClient()
		start := s.do(c, http.MethodGet, "/api/auth/google", nil)
		loc, err := url.Parse(start.header.Get("Location"))
		require.NoError(t, err)

		q := url.Values{"state": {loc.Query().Get("state")}, "error": {"access_denied"}}
		res := s.do(c, http.MethodGet, "/api/auth/google/callback?"+q.Encode(), nil)
		assert.Equal(t, failed, res.header.Get("Location"))
	})
}

func TestResumeSections(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusCreated, s.register(s.client, "a@x.com", "Aa111111").status)

	t.Run("profile", func(t *testing.T) {
		empty := s.do(s.client, http.MethodGet, "/api/profile/basic", nil)
		require.Equal(t, http.StatusOK, empty.status)
		assert.Nil(t, empty.body["profile"])

		saved := s.do(s.client, http.MethodPut, "/api/profile/basic", map[string]any{
			"fullName": "Ada Lovelace", "headline": "Analyst", "experienceLevel": "Senior",
		})
		require.Equal(t, http.StatusOK, saved.status)
		assert.Equal(t, "Analyst", saved.body["profile"].(map[string]any)["headline"])

		bad := s.do(s.client, http.MethodPut, "/api/profile/basic", map[string]any{"experienceLevel": "Wizard"})
		assert.Equal(t, "VALIDATION_ERROR", bad.errorCode())
	})

	t.Run("employment", func(t *testing.T) {
		list := s.do(s.client, http.MethodGet, "/api/employment", nil)
		assert.Equal(t, []any{}, list.body["entries"])

		created := s.do(s.client, http.MethodPost, "/api/employment", map[string]any{
			"title": "Engineer", "company": "Analytical Engines", "startDate": "2020-01", "current": true,
		})
		require.Equal(t, http.StatusCreated, created.status)
		id := created.body["entry"].(map[string]any)["id"].(string)

		updated := s.do(s.client, http.MethodPut, "/api/employment/"+id, map[string]any{
			"title": "Lead Engineer", "company": "Analytical Engines", "startDate": "2020-01", "endDate": "2023-06",
		})
		require.Equal(t, http.StatusOK, updated.status)
		assert.Equal(t, "Lead Engineer", updated.body["entry"].(map[string]any)["title"])

		last := s.do(s.client, http.MethodDelete, "/api/employment/"+id, nil)
		assert.Equal(t, http.StatusBadRequest, last.status)
		assert.Equal(t, "ONLY_ONE_ENTRY_LEFT", last.errorCode())

		missing := s.do(s.client, http.MethodPut, "/api/employment/missing", map[string]any{
			"title": "X", "company": "Y", "startDate": "2020-01", "current": true,
		})
		assert.Equal(t, http.StatusNotFound, missing.status)
	})

	t.Run("education", func(t *testing.T) {
		created := s.do(s.client, http.MethodPost, "/api/education", map[string]any{
			"institution": "University of London", "degreeType": "BSc", "fieldOfStudy": "Mathematics",
			"level": "Bachelor's", "currentlyEnrolled": true, "gpa": 3.9, "gpaPrivate": true,
		})
		require.Equal(t, http.StatusCreated, created.status)
		id := created.body["entry"].(map[string]any)["id"].(string)

		list := s.do(s.client, http.MethodGet, "/api/education", nil)
		entries := list.body["entries"].([]any)
		require.Len(t, entries, 1)
		assert.Equal(t, true, entries[0].(map[string]any)["gpaPrivate"])

		deleted := s.do(s.client, http.MethodDelete, "/api/education/"+id, nil)
		assert.Equal(t, http.StatusOK, deleted.status)
		assert.Equal(t, id, deleted.body["deletedId"])
	})

	t.Run("skills", func(t *testing.T) {
		skill := map[string]any{"name": "Go", "category": "Technical", "proficiency": "Advanced"}
		created := s.do(s.client, http.MethodPost, "/api/skills", skill)
		require.Equal(t, http.StatusCreated, created.status)
		id := created.body["skill"].(map[string]any)["id"].(string)

		skill["name"] = " go "
		dup := s.do(s.client, http.MethodPost, "/api/skills", skill)
		assert.Equal(t, http.StatusConflict, dup.status)
		assert.Equal(t, "DUPLICATE_SKILL", dup.errorCode())

		updated := s.do(s.client, http.MethodPut, "/api/skills/"+id, map[string]any{"category": "Technical", "proficiency": "Expert"})
		require.Equal(t, http.StatusOK, updated.status)
		assert.Equal(t, "Expert", updated.body["skill"].(map[string]any)["proficiency"])

		list := s.do(s.client, http.MethodGet, "/api/skills", nil)
		assert.Len(t, list.body["skills"], 1)
		meta := list.body["meta"].(map[string]any)
		assert.Contains(t, meta["categories"], "Technical")
		assert.Contains(t, meta["proficiencies"], "Expert")
	})

	t.Run("entries are private to their owner", func(t *testing.T) {
		intruder := s.newClient()
		require.Equal(t, http.StatusCreated, s.register(intruder, "b@x.com", "Aa111111").status)

		assert.Equal(t, []any{}, s.do(intruder, http.MethodGet, "/api/skills", nil).body["skills"])
	})
}

func pngUpload(t *testing.T, s *testServer) *http.Request {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 20))
	for x := range 40 {
		for y := range 20 {
			img.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	var pic bytes.Buffer
	require.NoError(t, png.Encode(&pic, img))

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("avatar", "me.png")
	require.NoError(t, err)
	_, err = part.Write(pic.Bytes())
	require.NoError(t, err)
	require.NoError(t, form.Close())

	req, err := http.NewRequest(http.MethodPost, s.srv.URL+"/api/profile/avatar", &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", form.FormDataContentType())
	return req
}

func TestAvatarUploadAndRemove(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusCreated, s.register(s.client, "a@x.com", "Aa111111").status)

	res := s.send(s.client, pngUpload(t, s))
	require.Equal(t, http.StatusOK, res.status)
	avatarURL := res.body["url"].(string)
	assert.True(t, strings.HasPrefix(avatarURL, "http://api.test/uploads/avatars/"), avatarURL)

	served := s.do(s.client, http.MethodGet, strings.TrimPrefix(avatarURL, "http://api.test"), nil)
	assert.Equal(t, http.StatusOK, served.status)
	assert.Equal(t, "image/png", served.header.Get("Content-Type"))

	me := s.do(s.client, http.MethodGet, "/api/users/me", nil)
	assert.Equal(t, avatarURL, me.body["user"].(map[string]any)["picture"])

	removed := s.do(s.client, http.MethodDelete, "/api/profile/avatar", nil)
	require.Equal(t, http.StatusOK, removed.status)
	gone := s.do(s.client, http.MethodGet, strings.TrimPrefix(avatarURL, "http://api.test"), nil)
	assert.Equal(t, http.StatusNotFound, gone.status)
}

func TestAvatarUpload_RejectsNonImage(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusCreated, s.register(s.client, "a@x.com", "Aa111111").status)

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("avatar", "notes.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("plain text pretending to be an image"))
	require.NoError(t, err)
	require.NoError(t, form.Close())

	req, err := http.NewRequest(http.MethodPost, s.srv.URL+"/api/profile/avatar", &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", form.FormDataContentType())

	res := s.send(s.client, req)
	assert.Equal(t, http.StatusBadRequest, res.status)
	assert.Equal(t, "VALIDATION_ERROR", res.errorCode())
}

func TestDeleteAccount(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusCreated, s.register(s.client, "a@x.com", "Aa111111").status)
	secondDevice := s.newClient()
	require.Equal(t, http.StatusOK, s.login(secondDevice, "a@x.com", "Aa111111").status)

	wrong := s.do(s.client, http.MethodDelete, "/api/users/me", map[string]any{"password": "Zz999999"})
	assert.Equal(t, http.StatusUnauthorized, wrong.status)
	assert.Equal(t, "INVALID_PASSWORD", wrong.errorCode())

	res := s.do(s.client, http.MethodDelete, "/api/users/me", map[string]any{"password": "Aa111111"})
	require.Equal(t, http.StatusOK, res.status)
	assert.Equal(t, "Account deleted", res.body["message"])

	assert.Equal(t, http.StatusUnauthorized, s.do(s.client, http.MethodGet, "/api/auth/me", nil).status)
	assert.Equal(t, http.StatusUnauthorized, s.do(secondDevice, http.MethodGet, "/api/auth/me", nil).status)
	assert.Equal(t, "INVALID_CREDENTIALS", s.login(s.newClient(), "a@x.com", "Aa111111").errorCode())
	s.mail.waitFor(t, "account_deleted", 1)

	// The address is free again
	assert.Equal(t, http.StatusCreated, s.register(s.newClient(), "a@x.com", "Aa111111").status)
}

func TestCrossOriginPostRejected(t *testing.T) {
	s := newTestServer(t)

	req, err := http.NewRequest(http.MethodPost, s.srv.URL+"/api/auth/logout", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://evil.test")

	res := s.send(s.client, req)
	assert.Equal(t, http.StatusForbidden, res.status)
	assert.Equal(t, "FORBIDDEN", res.errorCode())
}

func TestCORSPreflightForClient(t *testing.T) {
	s := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, s.srv.URL+"/api/auth/login", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", clientURL)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	res := s.send(s.client, req)
	assert.Equal(t, http.StatusNoContent, res.status)
	assert.Equal(t, clientURL, res.header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", res.header.Get("Access-Control-Allow-Credentials"))
}

func TestLoginRateLimited(t *testing.T) {
	s := newTestServer(t)

	var last response
	for range 11 {
		last = s.login(s.client, "a@x.com", "Aa111111")
	}

	assert.Equal(t, http.StatusTooManyRequests, last.status)
	assert.Equal(t, "RATE_LIMITED", last.errorCode())
	assert.NotEmpty(t, last.header.Get("Retry-After"))
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.do(s.client, http.MethodGet, "/health", nil)

	req, err := http.NewRequest(http.MethodGet, s.srv.URL+"/metrics", nil)
	require.NoError(t, err)
	resp, err := s.client.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), `route="GET /health"`)
}
