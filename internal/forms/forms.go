// Package forms holds the typed request structs for the site's HTML forms.
package forms

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

// FormErrorKey holds errors that do not belong to a single field.
const FormErrorKey = "_form"

// FieldErrors maps a form field name to its error message.
type FieldErrors map[string]string

// Has reports whether field has an error.
func (fe FieldErrors) Has(field string) bool {
	_, ok := fe[field]
	return ok
}

// Fields returns the names of all fields with errors.
func (fe FieldErrors) Fields() []string {
	return lo.Keys(fe)
}

// SignUp is the account registration form.
type SignUp struct {
	Username        string `form:"username" binding:"required,notblank,min=4,max=30"`
	Email           string `form:"email" binding:"required,notblank,email"`
	Password        string `form:"password" binding:"required,notblank,min=6"`
	ConfirmPassword string `form:"confirm_password" binding:"required,notblank,eqfield=Password"`
}

// Login is the sign in form.
type Login struct {
	Email    string `form:"email" binding:"required,notblank,email"`
	Password string `form:"password" binding:"required,notblank"`
}

// Contact is the contact form. Description is optional.
type Contact struct {
	Name        string `form:"name" binding:"required,notblank"`
	Email       string `form:"email" binding:"required,notblank,email"`
	Subject     string `form:"subject" binding:"required,notblank"`
	Description string `form:"description"`
}

// Bind decodes the posted form into T and validates it.
// A nil FieldErrors means the returned form is valid.
func Bind[T any](c *gin.Context) (T, FieldErrors) {
	var form T
	err := c.ShouldBindWith(&form, binding.Form)
	if err == nil {
		return form, nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return form, FieldErrors{FormErrorKey: err.Error()}
	}

	t := reflect.TypeOf(form)
	errs := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		name := fe.Field()
		if sf, ok := t.FieldByName(fe.StructField()); ok {
			if tag := sf.Tag.Get("form"); tag != "" {
				name = tag
			}
		}
		// keep the first failing rule per field
		if _, exists := errs[name]; !exists {
			errs[name] = message(fe)
		}
	}
	return form, errs
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "This field is required."
	case "email":
		return "Invalid email address."
	case "min":
		return fmt.Sprintf("Field must be at least %s characters long.", fe.Param())
	case "max":
		return fmt.Sprintf("Field cannot be longer than %s characters.", fe.Param())
	case "eqfield":
		return "Passwords must match."
	default:
		return "Invalid value."
	}
}
