package handler

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/jon4hz/folio/internal/api/auth"
	"github.com/jon4hz/folio/internal/database"
	"github.com/jon4hz/folio/internal/forms"
	"github.com/jon4hz/folio/internal/notify/email"
	"github.com/jon4hz/folio/web/templates/pages"
)

func (h *Handler) ContactForm(c *gin.Context) {
	h.renderContact(c, forms.Contact{}, nil)
}

// Contact stores the message. If that fails the operator is mailed the submission instead.
// A failure to send that mail is not recovered and ends the request with a 500.
func (h *Handler) Contact(c *gin.Context) {
	if !auth.VerifyCSRF(c) {
		h.renderContact(c, forms.Contact{}, forms.FieldErrors{forms.FormErrorKey: msgFormExpired})
		return
	}

	form, errs := forms.Bind[forms.Contact](c)
	if errs != nil {
		h.renderContact(c, form, errs)
		return
	}

	session := sessions.Default(c)

	msg := &database.ContactMessage{
		Name:        form.Name,
		Email:       form.Email,
		Subject:     form.Subject,
		Description: form.Description,
	}
	if err := h.db.CreateContactMessage(c.Request.Context(), msg); err != nil {
		log.Warn("Contact message not stored, notifying operator by email", "error", err)
		if err := h.notifier.SendContactFailure(email.ContactFailure{
			Name:        form.Name,
			Email:       form.Email,
			Subject:     form.Subject,
			Description: form.Description,
			Failure:     err.Error(),
		}); err != nil {
			c.AbortWithError(http.StatusInternalServerError, err) //nolint:errcheck
			return
		}
		flash(session, FlashError, "An error occurred, your message could not be saved.")
		h.renderContact(c, form, nil)
		return
	}

	flash(session, FlashSuccess, "Message sent successfully!")
	h.renderContact(c, forms.Contact{}, nil)
}

func (h *Handler) renderContact(c *gin.Context, form forms.Contact, errs forms.FieldErrors) {
	render(c, http.StatusOK, pages.Contact(pages.ContactData{
		Base:   h.base(c, true),
		Form:   form,
		Errors: errs,
	}))
}
