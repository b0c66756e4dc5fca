package auth

import (
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/jon4hz/folio/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToUserID(t *testing.T) {
	tests := []struct {
		name    string
		val     any
		want    uint
		wantErr bool
	}{
		{name: "uint", val: uint(7), want: 7},
		{name: "int", val: 7, want: 7},
		{name: "int64", val: int64(7), want: 7},
		{name: "uint64", val: uint64(7), want: 7},
		{name: "nil", val: nil, wantErr: true},
		{name: "negative", val: -1, wantErr: true},
		{name: "negative int64", val: int64(math.MinInt64), wantErr: true},
		{name: "string", val: "7", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := toUserID(tt.val)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// sessionCookieOf returns the name=value pair of the response's session cookie.
func sessionCookieOf(w *httptest.ResponseRecorder) string {
	pair, _, _ := strings.Cut(w.Header().Get("Set-Cookie"), ";")
	return pair
}

// newSessionRouter builds a router with a cookie session and the given routes.
func newSessionRouter(routes func(r *gin.Engine)) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(sessions.Sessions("test", cookie.NewStore([]byte("test-secret-test-secret-test-secret"))))
	routes(r)
	return r
}

func TestLoginLogout(t *testing.T) {
	r := newSessionRouter(func(r *gin.Engine) {
		r.GET("/login", func(c *gin.Context) {
			s := sessions.Default(c)
			Login(s, &database.User{ID: 42})
			require.NoError(t, s.Save())
		})
		r.GET("/whoami", func(c *gin.Context) {
			id, ok := sessionUserID(sessions.Default(c))
			if !ok {
				c.String(http.StatusUnauthorized, "")
				return
			}
			c.JSON(http.StatusOK, gin.H{"id": id})
		})
		r.GET("/logout", func(c *gin.Context) {
			s := sessions.Default(c)
			Logout(s)
			require.NoError(t, s.Save())
		})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login", nil))
	loggedIn := sessionCookieOf(w)
	require.NotEmpty(t, loggedIn)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Cookie", loggedIn)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":42}`, w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/logout", nil)
	req.Header.Set("Cookie", loggedIn)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	loggedOut := sessionCookieOf(w)

	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Cookie", loggedOut)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestVerifyCSRF(t *testing.T) {
	var token string
	r := newSessionRouter(func(r *gin.Engine) {
		r.GET("/form", func(c *gin.Context) {
			s := sessions.Default(c)
			token = NewCSRFToken(s)
			require.NoError(t, s.Save())
		})
		r.POST("/form", func(c *gin.Context) {
			if VerifyCSRF(c) {
				c.Status(http.StatusNoContent)
				return
			}
			c.Status(http.StatusForbidden)
		})
	})

	post := func(cookie, value string) int {
		form := url.Values{CSRFFieldName: {value}}
		req := httptest.NewRequest(http.MethodPost, "/form", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		if cookie != "" {
			req.Header.Set("Cookie", cookie)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/form", nil))
	sessionCookie := sessionCookieOf(w)
	require.NotEmpty(t, token)

	assert.Equal(t, http.StatusNoContent, post(sessionCookie, token))
	assert.Equal(t, http.StatusForbidden, post(sessionCookie, "not-the-token"))
	assert.Equal(t, http.StatusForbidden, post("", token))
}
