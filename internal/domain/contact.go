// Package domain contains core business types and interfaces.
//
// This file defines the contact form model: the submitted data, the
// submission status record, the validation message table and the service
// choices offered in the form.
package domain

// =============================================================================
// Field Names
// =============================================================================

// Contact form field names, as posted by the browser and as serialized for the
// form-processing endpoint.
const (
	FieldNom       = "nom"
	FieldPrenom    = "prenom"
	FieldEmail     = "email"
	FieldTelephone = "telephone"
	FieldService   = "service"
	FieldMessage   = "message"
)

// ContactFormName identifies the contact form to the form-processing endpoint.
const ContactFormName = "contact"

// FormNameField is the discriminator key sent with every submission.
const FormNameField = "form-name"

// Fields lists the contact form fields in display and serialization order.
var Fields = []string{
	FieldNom,
	FieldPrenom,
	FieldEmail,
	FieldTelephone,
	FieldService,
	FieldMessage,
}

// =============================================================================
// Contact Form Data
// =============================================================================

// ContactFormData is one submission attempt. It is rebuilt from field state on
// every submit and never modified afterwards.
type ContactFormData struct {
	Nom       string `json:"nom"`
	Prenom    string `json:"prenom"`
	Email     string `json:"email"`
	Telephone string `json:"telephone"`
	Service   string `json:"service"`
	Message   string `json:"message"`
}

// Get returns the value of the named field, or "" for an unknown name.
func (d ContactFormData) Get(field string) string {
	switch field {
	case FieldNom:
		return d.Nom
	case FieldPrenom:
		return d.Prenom
	case FieldEmail:
		return d.Email
	case FieldTelephone:
		return d.Telephone
	case FieldService:
		return d.Service
	case FieldMessage:
		return d.Message
	}
	return ""
}

// ContactFormDataFromValues builds form data from a field lookup function such
// as url.Values.Get or http.Request.PostFormValue.
func ContactFormDataFromValues(get func(string) string) ContactFormData {
	return ContactFormData{
		Nom:       get(FieldNom),
		Prenom:    get(FieldPrenom),
		Email:     get(FieldEmail),
		Telephone: get(FieldTelephone),
		Service:   get(FieldService),
		Message:   get(FieldMessage),
	}
}

// =============================================================================
// Contact Form State
// =============================================================================

// ContactFormState is the status of the latest submit attempt.
//
// After a completed attempt at most one of SubmitSuccess and SubmitError is
// true. IsSubmitting is true only while a submission is in flight.
type ContactFormState struct {
	IsSubmitting  bool
	SubmitSuccess bool
	SubmitError   bool
	ErrorMessage  string
}

// =============================================================================
// Validation Messages
// =============================================================================

// FieldMessages holds the messages shown for one field. Empty entries mean the
// field has no rule of that kind.
type FieldMessages struct {
	Required  string
	MinLength string
	Pattern   string
}

// ValidationMessages maps field names to their error messages.
var ValidationMessages = map[string]FieldMessages{
	FieldNom: {
		Required:  "Le nom est requis",
		MinLength: "Le nom doit contenir au moins 2 caractères",
	},
	FieldPrenom: {
		Required:  "Le prénom est requis",
		MinLength: "Le prénom doit contenir au moins 2 caractères",
	},
	FieldEmail: {
		Required: "L'adresse e-mail est requise",
		Pattern:  "Veuillez entrer une adresse e-mail valide",
	},
	FieldTelephone: {
		Required: "Le numéro de téléphone est requis",
		Pattern:  "Veuillez entrer un numéro de téléphone français valide",
	},
	FieldService: {
		Required: "Veuillez sélectionner un service",
	},
	FieldMessage: {
		Required:  "Le message est requis",
		MinLength: "Le message doit contenir au moins 10 caractères",
	},
}

// Submission failure messages shown above the form.
const (
	MessageSubmitTimeout = "La demande a pris trop de temps. Veuillez réessayer."
	MessageSubmitNetwork = "Impossible de soumettre le formulaire. Veuillez vérifier votre connexion et réessayer."
	MessageSubmitGeneric = "Une erreur s'est produite lors de l'envoi du formulaire. Veuillez réessayer."
)

// =============================================================================
// Service Options
// =============================================================================

// ServiceOption is one choice of the service dropdown.
type ServiceOption struct {
	Value string
	Label string
}

// ServiceOptions are the dropdown choices. The first one is the placeholder.
var ServiceOptions = []ServiceOption{
	{Value: "", Label: "Sélectionnez un service"},
	{Value: "devis", Label: "Demande de devis gratuit"},
	{Value: "info", Label: "Informations sur un service"},
	{Value: "suivi", Label: "Suivi de chantier"},
	{Value: "autre", Label: "Autre demande"},
}

// ServiceLabel returns the label for a service value, or the value itself when
// it is not one of the known options.
func ServiceLabel(value string) string {
	for _, opt := range ServiceOptions {
		if opt.Value == value {
			return opt.Label
		}
	}
	return value
}
