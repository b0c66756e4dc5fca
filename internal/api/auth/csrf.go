package auth

import (
	"crypto/subtle"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// CSRFFieldName is the name of the hidden form field carrying the token.
	CSRFFieldName = "csrf_token"

	sessionCSRFKey = "csrf_token"
)

// NewCSRFToken issues a fresh anti-forgery token for a rendered form and stores it in the session.
// The caller saves the session.
func NewCSRFToken(session sessions.Session) string {
	token := uuid.NewString()
	session.Set(sessionCSRFKey, token)
	return token
}

// VerifyCSRF reports whether the posted token matches the one issued with the form.
func VerifyCSRF(c *gin.Context) bool {
	want, ok := sessions.Default(c).Get(sessionCSRFKey).(string)
	if !ok || want == "" {
		return false
	}
	got := c.PostForm(CSRFFieldName)
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}
