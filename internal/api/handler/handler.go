package handler

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/a-h/templ"
	"github.com/charmbracelet/log"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/jon4hz/folio/internal/api/auth"
	"github.com/jon4hz/folio/internal/config"
	"github.com/jon4hz/folio/internal/database"
	"github.com/jon4hz/folio/internal/gravatar"
	"github.com/jon4hz/folio/internal/notify/email"
	"github.com/jon4hz/folio/web/templates/pages"
)

// Flash categories.
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashInfo    = "info"
)

// PasswordHasher derives and checks salted password hashes.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(encoded, password string) (bool, error)
}

// ContactNotifier tells the operator about contact submissions that could not be stored.
type ContactNotifier interface {
	SendContactFailure(f email.ContactFailure) error
}

// Store is the persistence the handlers need.
type Store interface {
	CreateUser(ctx context.Context, username, email, passwordHash string) (*database.User, error)
	GetUserByEmail(ctx context.Context, email string) (*database.User, error)
	CreateContactMessage(ctx context.Context, msg *database.ContactMessage) error
}

type Handler struct {
	db       Store
	guard    *auth.Guard
	hasher   PasswordHasher
	notifier ContactNotifier
	config   *config.Config
}

func New(db Store, guard *auth.Guard, hasher PasswordHasher, notifier ContactNotifier, cfg *config.Config) *Handler {
	return &Handler{
		db:       db,
		guard:    guard,
		hasher:   hasher,
		notifier: notifier,
		config:   cfg,
	}
}

func (h *Handler) Home(c *gin.Context) {
	render(c, http.StatusOK, pages.Home(h.base(c, false)))
}

func (h *Handler) About(c *gin.Context) {
	render(c, http.StatusOK, pages.About(h.base(c, false)))
}

func (h *Handler) Pending(c *gin.Context) {
	render(c, http.StatusOK, pages.Pending(h.base(c, false)))
}

// Resume renders the biography data from the config unmodified.
func (h *Handler) Resume(c *gin.Context) {
	render(c, http.StatusOK, pages.Resume(pages.ResumeData{
		Base:   h.base(c, false),
		Resume: h.config.Resume,
	}))
}

// Landing greets the principal. The query parameters win over the principal's name,
// so any logged in user can make the page show an arbitrary name.
func (h *Handler) Landing(c *gin.Context) {
	user := auth.UserFromContext(c)
	render(c, http.StatusOK, pages.Landing(pages.LandingData{
		Base:           h.base(c, false),
		User:           c.DefaultQuery("user", user.Username),
		WelcomeMessage: c.DefaultQuery("welcome_message", "Welcome"),
		Action:         c.DefaultQuery("action", "visiting"),
		AvatarURL:      gravatar.URL(user.Email, h.config.Gravatar),
		MemberSince:    user.CreatedAt,
	}))
}

// base collects the flashes and, for pages with a form, a fresh anti-forgery token.
func (h *Handler) base(c *gin.Context, withForm bool) pages.Base {
	session := sessions.Default(c)
	b := pages.Base{
		LoggedIn: h.guard.CurrentUser(c) != nil,
	}
	for _, f := range session.Flashes() {
		s, ok := f.(string)
		if !ok {
			continue
		}
		category, message, found := strings.Cut(s, ":")
		if !found {
			category, message = FlashInfo, s
		}
		b.Flashes = append(b.Flashes, pages.Flash{Category: category, Message: message})
	}
	if withForm {
		b.CSRFToken = auth.NewCSRFToken(session)
	}
	if err := session.Save(); err != nil {
		log.Error("Failed to save session", "error", err)
	}
	return b
}

// flash queues a notice for the next rendered page. The caller saves the session.
func flash(session sessions.Session, category, message string) {
	session.AddFlash(category + ":" + message)
}

func landingURL(user, welcomeMessage, action string) string {
	q := url.Values{}
	q.Set("user", user)
	q.Set("welcome_message", welcomeMessage)
	q.Set("action", action)
	return "/landing?" + q.Encode()
}

func render(c *gin.Context, status int, component templ.Component) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(status)
	if err := component.Render(c.Request.Context(), c.Writer); err != nil {
		log.Error("Failed to render page", "path", c.Request.URL.Path, "error", err)
	}
}
