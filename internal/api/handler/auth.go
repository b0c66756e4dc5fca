package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/jon4hz/folio/internal/api/auth"
	"github.com/jon4hz/folio/internal/database"
	"github.com/jon4hz/folio/internal/forms"
	"github.com/jon4hz/folio/web/templates/pages"
)

const (
	msgFormExpired       = "The form has expired, please try again."
	msgInvalidCredential = "Invalid email or password."
)

func (h *Handler) SignUpForm(c *gin.Context) {
	h.renderSignUp(c, forms.SignUp{}, nil)
}

// SignUp creates the account, starts a session and redirects to the landing page.
func (h *Handler) SignUp(c *gin.Context) {
	if !auth.VerifyCSRF(c) {
		h.renderSignUp(c, forms.SignUp{}, forms.FieldErrors{forms.FormErrorKey: msgFormExpired})
		return
	}

	form, errs := forms.Bind[forms.SignUp](c)
	if errs != nil {
		h.renderSignUp(c, form, errs)
		return
	}

	session := sessions.Default(c)

	hash, err := h.hasher.Hash(form.Password)
	if err != nil {
		log.Error("Failed to hash password", "error", err)
		flash(session, FlashError, fmt.Sprintf("An error occurred: %v", err))
		h.renderSignUp(c, form, nil)
		return
	}

	user, err := h.db.CreateUser(c.Request.Context(), form.Username, form.Email, hash)
	if err != nil {
		flash(session, FlashError, fmt.Sprintf("An error occurred: %v", err))
		h.renderSignUp(c, form, nil)
		return
	}

	auth.Login(session, user)
	flash(session, FlashSuccess, "Account created successfully!")
	if err := session.Save(); err != nil {
		c.AbortWithError(http.StatusInternalServerError, err) //nolint:errcheck
		return
	}

	log.Info("New user signed up", "user_id", user.ID)
	c.Redirect(http.StatusFound, landingURL(user.Username, "Welcome", "signing up"))
}

func (h *Handler) LoginForm(c *gin.Context) {
	h.renderLogin(c, forms.Login{}, nil)
}

// Login checks the credentials. Unknown email and wrong password produce the same response.
func (h *Handler) Login(c *gin.Context) {
	if !auth.VerifyCSRF(c) {
		h.renderLogin(c, forms.Login{}, forms.FieldErrors{forms.FormErrorKey: msgFormExpired})
		return
	}

	form, errs := forms.Bind[forms.Login](c)
	if errs != nil {
		h.renderLogin(c, form, errs)
		return
	}

	session := sessions.Default(c)

	user, err := h.db.GetUserByEmail(c.Request.Context(), form.Email)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		c.AbortWithError(http.StatusInternalServerError, err) //nolint:errcheck
		return
	}

	var ok bool
	if user != nil {
		ok, err = h.hasher.Verify(user.PasswordHash, form.Password)
		if err != nil {
			log.Warn("Stored password hash could not be verified", "user_id", user.ID, "error", err)
		}
	}
	if !ok {
		flash(session, FlashError, msgInvalidCredential)
		h.renderLogin(c, forms.Login{Email: form.Email}, nil)
		return
	}

	auth.Login(session, user)
	flash(session, FlashSuccess, "Login successful!")
	if err := session.Save(); err != nil {
		c.AbortWithError(http.StatusInternalServerError, err) //nolint:errcheck
		return
	}

	c.Redirect(http.StatusFound, landingURL(user.Username, "Welcome Back", "login"))
}

// Logout ends the session and sends the visitor back to the login page.
func (h *Handler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	auth.Logout(session)
	flash(session, FlashInfo, "You have been logged out.")
	if err := session.Save(); err != nil {
		if err := c.AbortWithError(http.StatusInternalServerError, err); err != nil {
			log.Error("Failed to abort with error", "error", err)
		}
		return
	}
	c.Redirect(http.StatusFound, "/login")
}

func (h *Handler) renderSignUp(c *gin.Context, form forms.SignUp, errs forms.FieldErrors) {
	// never echo passwords back
	form.Password, form.ConfirmPassword = "", ""
	render(c, http.StatusOK, pages.SignUp(pages.SignUpData{
		Base:   h.base(c, true),
		Form:   form,
		Errors: errs,
	}))
}

func (h *Handler) renderLogin(c *gin.Context, form forms.Login, errs forms.FieldErrors) {
	form.Password = ""
	render(c, http.StatusOK, pages.Login(pages.LoginData{
		Base:   h.base(c, true),
		Form:   form,
		Errors: errs,
	}))
}
