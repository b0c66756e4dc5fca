package api

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jon4hz/folio/internal/config"
	"github.com/jon4hz/folio/internal/database"
	"github.com/jon4hz/folio/internal/notify/email"
	"github.com/jon4hz/folio/internal/password"
	"github.com/stretchr/testify/suite"
)

var csrfPattern = regexp.MustCompile(`name="csrf_token" value="([^"]+)"`)

type fakeNotifier struct {
	mu   sync.Mutex
	sent []email.ContactFailure
	err  error
}

func (f *fakeNotifier) SendContactFailure(n email.ContactFailure) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, n)
	return nil
}

func (f *fakeNotifier) Sent() []email.ContactFailure {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]email.ContactFailure(nil), f.sent...)
}

func testConfig() *config.Config {
	return &config.Config{
		Listen:        "127.0.0.1:0",
		SessionKey:    "test-secret-test-secret-test-secret",
		SessionMaxAge: 3600,
		Database:      &config.DatabaseConfig{DSN: "unused"},
		Email:         &config.EmailConfig{},
		Gravatar:      &config.GravatarConfig{},
		Resume: &config.ResumeConfig{
			College: []config.Education{{Institution: "State University", Degree: "B.Sc. Computer Science"}},
			Skills:  []string{"Go", "PostgreSQL"},
			Projects: []config.Project{
				{Name: "folio", Description: "this site", URL: "https://example.com/folio"},
			},
		},
	}
}

func testHasher() *password.Hasher {
	return &password.Hasher{Iterations: 1000, SaltLength: password.DefaultSaltLength}
}

// visitor is a browser with its own cookie jar.
type visitor struct {
	t      *testing.T
	client *http.Client
	base   string
}

func newVisitor(t *testing.T, base string) *visitor {
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	return &visitor{
		t:    t,
		base: base,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (v *visitor) get(path string) (*http.Response, string) {
	v.t.Helper()
	resp, err := v.client.Get(v.base + path)
	if err != nil {
		v.t.Fatal(err)
	}
	return resp, readBody(v.t, resp)
}

// submit loads the form page for its anti-forgery token and posts values to it.
func (v *visitor) submit(path string, values url.Values) (*http.Response, string) {
	v.t.Helper()
	_, page := v.get(path)
	m := csrfPattern.FindStringSubmatch(page)
	if m == nil {
		v.t.Fatalf("no csrf token on %s", path)
	}
	values.Set("csrf_token", m[1])
	return v.post(path, values)
}

func (v *visitor) post(path string, values url.Values) (*http.Response, string) {
	v.t.Helper()
	resp, err := v.client.PostForm(v.base+path, values)
	if err != nil {
		v.t.Fatal(err)
	}
	return resp, readBody(v.t, resp)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close() //nolint:errcheck
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func signupValues(username, mail, pw string) url.Values {
	return url.Values{
		"username":         {username},
		"email":            {mail},
		"password":         {pw},
		"confirm_password": {pw},
	}
}

func contactValues() url.Values {
	return url.Values{
		"name":        {"Bob"},
		"email":       {"bob@x.com"},
		"subject":     {"Hi"},
		"description": {"test"},
	}
}

type APITestSuite struct {
	suite.Suite
	db       *database.Client
	notifier *fakeNotifier
	server   *httptest.Server
	ctx      context.Context
}

func (s *APITestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
}

func (s *APITestSuite) SetupTest() {
	db, err := database.New(filepath.Join(s.T().TempDir(), "folio.db"))
	s.Require().NoError(err)
	s.db = db
	s.notifier = &fakeNotifier{}
	s.ctx = context.Background()

	srv, err := New(testConfig(), db, testHasher(), s.notifier, true)
	s.Require().NoError(err)
	s.server = httptest.NewServer(srv.Handler())
}

func (s *APITestSuite) TearDownTest() {
	s.server.Close()
	s.NoError(s.db.Close())
}

func (s *APITestSuite) visitor() *visitor {
	return newVisitor(s.T(), s.server.URL)
}

func (s *APITestSuite) userCount() int64 {
	n, err := s.db.CountUsers(s.ctx)
	s.Require().NoError(err)
	return n
}

func (s *APITestSuite) contactCount() int64 {
	n, err := s.db.CountContactMessages(s.ctx)
	s.Require().NoError(err)
	return n
}

func (s *APITestSuite) TestStaticPages() {
	v := s.visitor()
	for _, path := range []string{"/", "/about", "/pending", "/contact", "/signup", "/login"} {
		resp, body := v.get(path)
		s.Equal(http.StatusOK, resp.StatusCode, path)
		s.Contains(resp.Header.Get("Content-Type"), "text/html", path)
		s.Contains(body, "<nav", path)
	}

	resp, _ := v.get("/static/style.css")
	s.Equal(http.StatusOK, resp.StatusCode)
}

func (s *APITestSuite) TestResume() {
	resp, body := s.visitor().get("/resume")
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Contains(body, "State University")
	s.Contains(body, "PostgreSQL")
	s.Contains(body, `href="https://example.com/folio"`)
}

func (s *APITestSuite) TestSignUp_CreatesUserWithSaltedHash() {
	resp, _ := s.visitor().submit("/signup", signupValues("alice", "a@x.com", "secret1"))
	s.Require().Equal(http.StatusFound, resp.StatusCode)

	loc, err := url.Parse(resp.Header.Get("Location"))
	s.Require().NoError(err)
	s.Equal("/landing", loc.Path)
	s.Equal("alice", loc.Query().Get("user"))
	s.Equal("Welcome", loc.Query().Get("welcome_message"))
	s.Equal("signing up", loc.Query().Get("action"))

	user, err := s.db.GetUserByEmail(s.ctx, "a@x.com")
	s.Require().NoError(err)
	s.Equal("alice", user.Username)
	s.NotEqual("secret1", user.PasswordHash)

	ok, err := testHasher().Verify(user.PasswordHash, "secret1")
	s.NoError(err)
	s.True(ok)
}

func (s *APITestSuite) TestSignUp_StartsSession() {
	v := s.visitor()
	resp, _ := v.submit("/signup", signupValues("alice", "a@x.com", "secret1"))
	s.Require().Equal(http.StatusFound, resp.StatusCode)

	resp, body := v.get(resp.Header.Get("Location"))
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Contains(body, "Welcome, alice!")
	s.Contains(body, "Thanks for signing up.")
	s.Contains(body, "Account created successfully!")
}

func (s *APITestSuite) TestSignUp_DuplicateEmail() {
	resp, _ := s.visitor().submit("/signup", signupValues("alice", "a@x.com", "secret1"))
	s.Require().Equal(http.StatusFound, resp.StatusCode)

	resp, body := s.visitor().submit("/signup", signupValues("mallory", "a@x.com", "other-secret"))
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Contains(body, "An error occurred:")
	s.Contains(body, `value="mallory"`)
	s.Contains(body, `value="a@x.com"`)
	s.NotContains(body, "other-secret")

	s.EqualValues(1, s.userCount())
	user, err := s.db.GetUserByEmail(s.ctx, "a@x.com")
	s.Require().NoError(err)
	s.Equal("alice", user.Username)
	ok, err := testHasher().Verify(user.PasswordHash, "secret1")
	s.NoError(err)
	s.True(ok)
}

func (s *APITestSuite) TestSignUp_InvalidInput() {
	values := signupValues("bob", "not-an-email", "12345")
	values.Set("confirm_password", "54321")

	resp, body := s.visitor().submit("/signup", values)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Contains(body, "Field must be at least 4 characters long.")
	s.Contains(body, "Invalid email address.")
	s.Contains(body, "Field must be at least 6 characters long.")
	s.Contains(body, "Passwords must match.")
	s.Contains(body, `value="bob"`)
	s.EqualValues(0, s.userCount())
}

func (s *APITestSuite) TestSignUp_MissingCSRFToken() {
	v := s.visitor()
	v.get("/signup")
	resp, body := v.post("/signup", signupValues("alice", "a@x.com", "secret1"))
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Contains(body, "The form has expired")
	s.EqualValues(0, s.userCount())
}

func (s *APITestSuite) TestLogin_FailureIsGeneric() {
	resp, _ := s.visitor().submit("/signup", signupValues("alice", "a@x.com", "secret1"))
	s.Require().Equal(http.StatusFound, resp.StatusCode)

	unknownResp, unknownBody := s.visitor().submit("/login", url.Values{"email": {"nobody@x.com"}, "password": {"secret1"}})
	wrongResp, wrongBody := s.visitor().submit("/login", url.Values{"email": {"a@x.com"}, "password": {"wrong-one"}})

	s.Equal(http.StatusOK, unknownResp.StatusCode)
	s.Equal(unknownResp.StatusCode, wrongResp.StatusCode)
	s.Contains(unknownBody, "Invalid email or password.")

	normalize := func(body, mail string) string {
		body = csrfPattern.ReplaceAllString(body, `name="csrf_token" value=""`)
		return strings.ReplaceAll(body, mail, "EMAIL")
	}
	s.Equal(normalize(unknownBody, "nobody@x.com"), normalize(wrongBody, "a@x.com"))
}

func (s *APITestSuite) TestSignUpThenLoginRoundTrip() {
	v := s.visitor()
	resp, _ := v.submit("/signup", signupValues("alice", "a@x.com", "secret1"))
	s.Require().Equal(http.StatusFound, resp.StatusCode)

	resp, _ = v.get("/logout")
	s.Require().Equal(http.StatusFound, resp.StatusCode)

	resp, _ = v.submit("/login", url.Values{"email": {"a@x.com"}, "password": {"secret1"}})
	s.Require().Equal(http.StatusFound, resp.StatusCode)
	loc, err := url.Parse(resp.Header.Get("Location"))
	s.Require().NoError(err)
	s.Equal("/landing", loc.Path)
	s.Equal("login", loc.Query().Get("action"))
	s.Equal("Welcome Back", loc.Query().Get("welcome_message"))

	resp, body := v.get(resp.Header.Get("Location"))
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Contains(body, "Welcome Back, alice!")
	s.Contains(body, "Thanks for login.")
	s.Contains(body, "Login successful!")
}

func (s *APITestSuite) TestLanding_DefaultsAndQueryOverride() {
	v := s.visitor()
	resp, _ := v.submit("/signup", signupValues("alice", "a@x.com", "secret1"))
	s.Require().Equal(http.StatusFound, resp.StatusCode)

	_, body := v.get("/landing")
	s.Contains(body, "Welcome, alice!")
	s.Contains(body, "Thanks for visiting.")
	s.Contains(body, "Member since")

	_, body = v.get("/landing?user=mallory")
	s.Contains(body, "Welcome, mallory!")
}

func (s *APITestSuite) TestGuardedRoutesRedirectWithoutSession() {
	v := s.visitor()
	for _, path := range []string{"/landing", "/logout"} {
		resp, _ := v.get(path)
		s.Equal(http.StatusFound, resp.StatusCode, path)
		s.Equal("/login", resp.Header.Get("Location"), path)
	}
	s.EqualValues(0, s.userCount())
	s.EqualValues(0, s.contactCount())
}

func (s *APITestSuite) TestLogout() {
	v := s.visitor()
	resp, _ := v.submit("/signup", signupValues("alice", "a@x.com", "secret1"))
	s.Require().Equal(http.StatusFound, resp.StatusCode)

	resp, _ = v.get("/logout")
	s.Equal(http.StatusFound, resp.StatusCode)
	s.Equal("/login", resp.Header.Get("Location"))

	_, body := v.get("/login")
	s.Contains(body, "You have been logged out.")

	resp, _ = v.get("/landing")
	s.Equal(http.StatusFound, resp.StatusCode)
}

func (s *APITestSuite) TestContact_StoresMessage() {
	resp, body := s.visitor().submit("/contact", contactValues())
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Contains(body, "Message sent successfully!")
	s.NotContains(body, `value="Bob"`)

	s.EqualValues(1, s.contactCount())
	s.Empty(s.notifier.Sent())
}

func (s *APITestSuite) TestContact_SameSubmissionTwice() {
	v := s.visitor()
	v.submit("/contact", contactValues())
	v.submit("/contact", contactValues())
	s.EqualValues(2, s.contactCount())
}

func (s *APITestSuite) TestContact_InvalidInput() {
	resp, body := s.visitor().submit("/contact", url.Values{"name": {"Bob"}, "email": {"bob"}})
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Contains(body, "Invalid email address.")
	s.Contains(body, "This field is required.")
	s.EqualValues(0, s.contactCount())
	s.Empty(s.notifier.Sent())
}

func (s *APITestSuite) TestContact_WhitespaceOnlyFieldsRejected() {
	values := contactValues()
	values.Set("name", "   ")
	values.Set("subject", " ")

	resp, body := s.visitor().submit("/contact", values)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Contains(body, "This field is required.")
	s.NotContains(body, "Message sent successfully!")
	s.EqualValues(0, s.contactCount())
}

func (s *APITestSuite) TestHealthz() {
	resp, body := s.visitor().get("/healthz")
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Contains(body, `"ok"`)
}

func TestAPITestSuite(t *testing.T) {
	suite.Run(t, new(APITestSuite))
}

func TestNew_RequiresConfigAndDB(t *testing.T) {
	_, err := New(nil, nil, testHasher(), &fakeNotifier{}, true)
	if err == nil {
		t.Fatal("expected error without config")
	}
	_, err = New(testConfig(), nil, testHasher(), &fakeNotifier{}, true)
	if err == nil {
		t.Fatal("expected error without database")
	}
}
