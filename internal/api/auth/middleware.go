package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/jon4hz/folio/internal/database"
)

const contextUserKey = "user"

// UserLookup resolves a user id to a user record.
type UserLookup interface {
	GetUserByID(ctx context.Context, id uint) (*database.User, error)
}

// Guard restores the principal from the session.
type Guard struct {
	users UserLookup
}

// NewGuard creates a session guard.
func NewGuard(users UserLookup) *Guard {
	return &Guard{
		users: users,
	}
}

// RequireAuth returns middleware that redirects to /login unless the session holds a live user.
func (g *Guard) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := g.CurrentUser(c)
		if user == nil {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser returns the principal of the request or nil.
// The user id is resolved against the store once per request.
// A session pointing at a user that no longer exists is treated as anonymous and its user id is dropped.
func (g *Guard) CurrentUser(c *gin.Context) *database.User {
	if user, ok := c.Get(contextUserKey); ok {
		if u, ok := user.(*database.User); ok {
			return u
		}
	}

	session := sessions.Default(c)
	id, ok := sessionUserID(session)
	if !ok {
		return nil
	}

	user, err := g.users.GetUserByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			log.Warn("session refers to unknown user, dropping it", "user_id", id)
			Logout(session)
			if err := session.Save(); err != nil {
				log.Error("Failed to save session", "error", err)
			}
		}
		return nil
	}

	c.Set(contextUserKey, user)
	return user
}

// UserFromContext returns the user set by RequireAuth.
func UserFromContext(c *gin.Context) *database.User {
	return c.MustGet(contextUserKey).(*database.User)
}
