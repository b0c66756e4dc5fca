package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/jon4hz/folio/internal/api/auth"
	"github.com/jon4hz/folio/internal/api/handler"
	"github.com/jon4hz/folio/internal/config"
	"github.com/jon4hz/folio/internal/database"
	"github.com/jon4hz/folio/internal/static"
)

const sessionName = "folio_session"

type Server struct {
	cfg       *config.Config
	ginEngine *gin.Engine
	db        database.DB
	guard     *auth.Guard
	handler   *handler.Handler
}

// New wires the handlers and routes. The returned server is ready to Run.
func New(cfg *config.Config, db database.DB, hasher handler.PasswordHasher, notifier handler.ContactNotifier, debug bool) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}

	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}

	guard := auth.NewGuard(db)

	s := &Server{
		cfg:       cfg,
		ginEngine: gin.New(),
		db:        db,
		guard:     guard,
		handler:   handler.New(db, guard, hasher, notifier, cfg),
	}

	if err := s.setupRoutes(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Server) setupSession() {
	store := cookie.NewStore([]byte(s.cfg.SessionKey))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   s.cfg.SessionMaxAge,
		HttpOnly: true,
		Secure:   s.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	s.ginEngine.Use(sessions.Sessions(sessionName, store))
}

func (s *Server) setupRoutes() error {
	s.ginEngine.Use(gin.Recovery(), requestLogger())
	s.ginEngine.Use(gzip.Gzip(gzip.DefaultCompression))
	s.setupSession()

	staticFS, err := static.FS()
	if err != nil {
		return err
	}
	s.ginEngine.StaticFS("/static", http.FS(staticFS))

	h := s.handler

	s.ginEngine.GET("/", h.Home)
	s.ginEngine.GET("/about", h.About)
	s.ginEngine.GET("/resume", h.Resume)
	s.ginEngine.GET("/pending", h.Pending)

	s.ginEngine.GET("/contact", h.ContactForm)
	s.ginEngine.POST("/contact", h.Contact)

	s.ginEngine.GET("/signup", h.SignUpForm)
	s.ginEngine.POST("/signup", h.SignUp)
	s.ginEngine.GET("/login", h.LoginForm)
	s.ginEngine.POST("/login", h.Login)

	protected := s.ginEngine.Group("/")
	protected.Use(s.guard.RequireAuth())
	protected.GET("/landing", h.Landing)
	protected.GET("/logout", h.Logout)

	s.ginEngine.GET("/healthz", s.healthz)

	return nil
}

func (s *Server) healthz(c *gin.Context) {
	if err := s.db.Ping(c.Request.Context()); err != nil {
		log.Error("health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.ginEngine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.ginEngine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting HTTP server", "listen", s.cfg.Listen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down HTTP server: %w", err)
	}
	return nil
}
