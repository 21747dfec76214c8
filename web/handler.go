package web

import (
	"embed"
	"errors"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	passedit "github.com/credforge/passedit"
)

//go:embed templates/*.html
var templateFS embed.FS

// Handler serves the account-maintenance form over HTTP: GET renders the
// form with the operator's edit token embedded, POST runs the submission
// through the engine.
type Handler struct {
	Engine *passedit.Engine
	Tokens *OperatorTokens
}

// Register mounts the maintenance routes and templates on a gin engine.
func (h *Handler) Register(r *gin.Engine) {
	tmpl := template.Must(template.ParseFS(templateFS, "templates/*.html"))
	r.SetHTMLTemplate(tmpl)

	group := r.Group("/accounts", h.requireOperator())
	group.GET("/edit-password", h.ShowForm)
	group.POST("/edit-password", h.Submit)
}

// ShowForm renders the maintenance form. The edit token is fetched from
// the operator's session so a later submission can be tied back to it.
func (h *Handler) ShowForm(c *gin.Context) {
	operator := operatorFrom(c)

	token, err := h.Engine.IssueEditToken(c.Request.Context(), operator)
	if err != nil {
		status, message := statusFor(err)
		c.HTML(status, "message.html", gin.H{"message": message})
		return
	}

	c.HTML(http.StatusOK, "form.html", gin.H{"token": token})
}

// Submit runs one maintenance submission. Field names match the form
// template; blank password and email fields mean leave that credential
// unchanged.
func (h *Handler) Submit(c *gin.Context) {
	operator := operatorFrom(c)

	sub := passedit.Submission{
		EditToken:       c.PostForm("csrftoken"),
		Username:        c.PostForm("username"),
		Password:        c.PostForm("password"),
		PasswordConfirm: c.PostForm("password2"),
		Email:           c.PostForm("email"),
	}

	if err := h.Engine.EditCredentials(c.Request.Context(), operator, sub); err != nil {
		status, message := statusFor(err)
		c.HTML(status, "message.html", gin.H{"message": message})
		return
	}

	c.HTML(http.StatusOK, "message.html", gin.H{"message": "Account updated."})
}

// statusFor maps engine errors to a response status and operator-facing
// message. Authorization failures stay generic so the response does not
// reveal which check refused the request.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, passedit.ErrUnauthorized):
		return http.StatusForbidden, "You are not permitted to perform this action."
	case errors.Is(err, passedit.ErrSessionForgery):
		return http.StatusForbidden, "Your session has expired. Reload the form and try again."
	case errors.Is(err, passedit.ErrPasswordMismatch):
		return http.StatusUnprocessableEntity, "The passwords you entered do not match."
	case errors.Is(err, passedit.ErrInvalidEmail):
		return http.StatusUnprocessableEntity, "The email address is not valid."
	case errors.Is(err, passedit.ErrUnknownTarget):
		return http.StatusNotFound, "No such account."
	case errors.Is(err, passedit.ErrNothingToUpdate):
		return http.StatusUnprocessableEntity, "Nothing to update."
	default:
		return http.StatusInternalServerError, "The account could not be updated."
	}
}
