package contact

import (
	"github.com/fnaconcept/site/internal/domain"
)

// Field is the state of one form control.
type Field struct {
	Value   string
	Touched bool // the user left the control
	Dirty   bool // the user changed the value

	validators []Validator
}

// Failures runs every validator and returns the broken rules.
func (f *Field) Failures() []Failure {
	var out []Failure
	for _, v := range f.validators {
		if fail := v(f.Value); fail != nil {
			out = append(out, *fail)
		}
	}
	return out
}

// Valid reports whether the field passes all of its validators.
func (f *Field) Valid() bool {
	for _, v := range f.validators {
		if v(f.Value) != nil {
			return false
		}
	}
	return true
}

// Form holds the contact form fields, keyed by field name.
type Form struct {
	fields map[string]*Field
	order  []string
}

// NewForm returns an empty form with one field per entry of rules, in the
// given order.
func NewForm(order []string, rules map[string][]Validator) *Form {
	f := &Form{
		fields: make(map[string]*Field, len(order)),
		order:  append([]string(nil), order...),
	}
	for _, name := range order {
		f.fields[name] = &Field{validators: rules[name]}
	}
	return f
}

// NewContactForm returns the contact form with its validation rules.
func NewContactForm() *Form {
	msg := domain.ValidationMessages
	rules := map[string][]Validator{
		domain.FieldNom: {
			Required(msg[domain.FieldNom].Required),
			MinLength(2, msg[domain.FieldNom].MinLength),
		},
		domain.FieldPrenom: {
			Required(msg[domain.FieldPrenom].Required),
			MinLength(2, msg[domain.FieldPrenom].MinLength),
		},
		domain.FieldEmail: {
			Required(msg[domain.FieldEmail].Required),
			Email(msg[domain.FieldEmail].Pattern),
		},
		domain.FieldTelephone: {
			Required(msg[domain.FieldTelephone].Required),
			FrenchPhoneValidator(),
		},
		domain.FieldService: {
			Required(msg[domain.FieldService].Required),
		},
		domain.FieldMessage: {
			Required(msg[domain.FieldMessage].Required),
			MinLength(10, msg[domain.FieldMessage].MinLength),
		},
	}
	return NewForm(domain.Fields, rules)
}

// NewContactFormFrom returns a contact form filled with data. Every field is
// marked dirty, as if typed in by the user.
func NewContactFormFrom(data domain.ContactFormData) *Form {
	f := NewContactForm()
	for _, name := range domain.Fields {
		f.SetValue(name, data.Get(name))
	}
	return f
}

// Field returns the named field, or nil.
func (f *Form) Field(name string) *Field {
	return f.fields[name]
}

// Value returns the value of the named field.
func (f *Form) Value(name string) string {
	if fld := f.fields[name]; fld != nil {
		return fld.Value
	}
	return ""
}

// SetValue changes a field value and marks it dirty.
func (f *Form) SetValue(name, value string) {
	if fld := f.fields[name]; fld != nil {
		fld.Value = value
		fld.Dirty = true
	}
}

// Touch marks a field as visited.
func (f *Form) Touch(name string) {
	if fld := f.fields[name]; fld != nil {
		fld.Touched = true
	}
}

// MarkAllTouched marks every field as visited so their errors show.
func (f *Form) MarkAllTouched() {
	for _, fld := range f.fields {
		fld.Touched = true
	}
}

// Valid reports whether every field passes validation.
func (f *Form) Valid() bool {
	for _, fld := range f.fields {
		if !fld.Valid() {
			return false
		}
	}
	return true
}

// FieldError returns the message to display for a field. It is empty until
// the field is both invalid and dirty or touched. When several rules fail the
// one with the highest priority wins.
func (f *Form) FieldError(name string) string {
	fld := f.fields[name]
	if fld == nil || !(fld.Dirty || fld.Touched) {
		return ""
	}
	best, ok := topFailure(fld.Failures())
	if !ok {
		return ""
	}
	return best.Message
}

// HasFieldError reports whether FieldError would return a message.
func (f *Form) HasFieldError(name string) bool {
	return f.FieldError(name) != ""
}

// Errors returns the top failure message of every invalid field, regardless
// of touched and dirty flags. It returns nil for a valid form.
func (f *Form) Errors() map[string]string {
	var out map[string]string
	for _, name := range f.order {
		best, ok := topFailure(f.fields[name].Failures())
		if !ok {
			continue
		}
		if out == nil {
			out = make(map[string]string)
		}
		out[name] = best.Message
	}
	return out
}

// ValidationError returns the form errors as a domain.ValidationError, or nil
// when the form is valid.
func (f *Form) ValidationError(op string) *domain.ValidationError {
	errs := f.Errors()
	if errs == nil {
		return nil
	}
	return &domain.ValidationError{Op: op, Fields: errs}
}

// Reset empties every value and clears the touched and dirty flags.
func (f *Form) Reset() {
	for _, fld := range f.fields {
		fld.Value = ""
		fld.Touched = false
		fld.Dirty = false
	}
}

// Data snapshots the current values.
func (f *Form) Data() domain.ContactFormData {
	return domain.ContactFormDataFromValues(f.Value)
}

func topFailure(failures []Failure) (Failure, bool) {
	if len(failures) == 0 {
		return Failure{}, false
	}
	best := failures[0]
	for _, fail := range failures[1:] {
		if fail.Rule < best.Rule {
			best = fail
		}
	}
	return best, true
}
