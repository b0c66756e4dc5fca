package auth

import (
	"fmt"

	"github.com/ccoveille/go-safecast"
	"github.com/gin-contrib/sessions"
	"github.com/jon4hz/folio/internal/database"
)

const sessionUserIDKey = "user_id"

// Login binds the session to user. The caller saves the session.
func Login(session sessions.Session, user *database.User) {
	session.Set(sessionUserIDKey, user.ID)
}

// Logout removes the principal from the session. Flashes survive. The caller saves the session.
func Logout(session sessions.Session) {
	session.Delete(sessionUserIDKey)
}

// sessionUserID returns the user id stored in the session, if any.
func sessionUserID(session sessions.Session) (uint, bool) {
	id, err := toUserID(session.Get(sessionUserIDKey))
	if err != nil {
		return 0, false
	}
	return id, true
}

func toUserID(val any) (uint, error) {
	switch v := val.(type) {
	case nil:
		return 0, fmt.Errorf("no user id in session")
	case uint:
		return v, nil
	case uint64:
		return safecast.Convert[uint](v)
	case int:
		return safecast.Convert[uint](v)
	case int64:
		return safecast.Convert[uint](v)
	default:
		return 0, fmt.Errorf("unexpected user id type %T", val)
	}
}
