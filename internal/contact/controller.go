package contact

import (
	"context"
	"log/slog"

	"github.com/fnaconcept/site/internal/domain"
	"github.com/fnaconcept/site/internal/metrics"
)

// Submitter sends a contact form submission to the form-processing endpoint.
type Submitter interface {
	Submit(ctx context.Context, data domain.ContactFormData) ([]byte, error)
}

// SubmitterFunc adapts a function to the Submitter interface.
type SubmitterFunc func(ctx context.Context, data domain.ContactFormData) ([]byte, error)

func (f SubmitterFunc) Submit(ctx context.Context, data domain.ContactFormData) ([]byte, error) {
	return f(ctx, data)
}

// Controller drives one contact form through its submit cycle:
// idle, submitting, then success or error. A controller is not safe for
// concurrent use; callers create one per form instance.
type Controller struct {
	form      *Form
	state     domain.ContactFormState
	submitter Submitter
	logger    *slog.Logger
}

// NewController returns a controller for form. A nil form means a fresh,
// empty contact form.
func NewController(form *Form, submitter Submitter, logger *slog.Logger) *Controller {
	if form == nil {
		form = NewContactForm()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		form:      form,
		submitter: submitter,
		logger:    logger,
	}
}

// Form returns the controlled form.
func (c *Controller) Form() *Form {
	return c.form
}

// State returns a copy of the submission status.
func (c *Controller) State() domain.ContactFormState {
	return c.state
}

// FieldError returns the message to display for a field, if any.
func (c *Controller) FieldError(name string) string {
	return c.form.FieldError(name)
}

// HasFieldError reports whether a field has an error to display.
func (c *Controller) HasFieldError(name string) bool {
	return c.form.HasFieldError(name)
}

// OnSubmit handles a submit attempt. An invalid form only gets all its fields
// touched, so that their errors show, and nothing is sent. A valid form is
// sent through the submitter; the outcome lands in State. The form is reset
// after a successful submission.
func (c *Controller) OnSubmit(ctx context.Context) {
	if !c.form.Valid() {
		c.form.MarkAllTouched()
		metrics.ContactValidationFailed()
		return
	}

	c.state.IsSubmitting = true
	c.state.SubmitSuccess = false
	c.state.SubmitError = false
	c.state.ErrorMessage = ""

	data := c.form.Data()
	_, err := c.submitter.Submit(ctx, data)

	c.state.IsSubmitting = false
	if err != nil {
		c.state.SubmitError = true
		c.state.ErrorMessage = ErrorMessageFor(err)
		c.logger.Warn("contact form submission failed",
			"error", err,
			"code", domain.ErrorCode(err),
		)
		return
	}

	c.state.SubmitSuccess = true
	c.form.Reset()
}

// ErrorMessageFor maps a submission error to the message shown to the user.
func ErrorMessageFor(err error) string {
	switch domain.ErrorCode(err) {
	case domain.ETIMEOUT:
		return domain.MessageSubmitTimeout
	case domain.ENETWORK:
		return domain.MessageSubmitNetwork
	default:
		return domain.MessageSubmitGeneric
	}
}
