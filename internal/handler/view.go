package handler

import (
	"github.com/fnaconcept/site/internal/contact"
	"github.com/fnaconcept/site/internal/domain"
)

// FieldView is one contact form control as the template draws it.
type FieldView struct {
	Name  string
	Value string
	Error string
}

// ContactFormView is the template data of the contact form partial.
type ContactFormView struct {
	Fields         map[string]FieldView
	ServiceOptions []domain.ServiceOption
	State          domain.ContactFormState
	CSRFToken      string
}

// HasErrors reports whether any field shows an error.
func (v ContactFormView) HasErrors() bool {
	for _, f := range v.Fields {
		if f.Error != "" {
			return true
		}
	}
	return false
}

// NewContactFormView snapshots a controller for rendering.
func NewContactFormView(ctrl *contact.Controller, csrfToken string) ContactFormView {
	form := ctrl.Form()
	fields := make(map[string]FieldView, len(domain.Fields))
	for _, name := range domain.Fields {
		fields[name] = FieldView{
			Name:  name,
			Value: form.Value(name),
			Error: ctrl.FieldError(name),
		}
	}
	return ContactFormView{
		Fields:         fields,
		ServiceOptions: domain.ServiceOptions,
		State:          ctrl.State(),
		CSRFToken:      csrfToken,
	}
}
