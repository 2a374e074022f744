// Package contact implements the contact form: field validation, the form
// state model and the submit controller.
package contact

import (
	"fmt"
	"regexp"

	"github.com/fnaconcept/site/internal/domain"
)

// whitespace matches what a browser treats as \s: ASCII whitespace, NBSP, the
// Unicode space separators, line and paragraph separators and the BOM.
const whitespace = `[\t\n\v\f\r \x{00a0}\x{1680}\x{2000}-\x{200a}\x{2028}\x{2029}\x{202f}\x{205f}\x{3000}\x{feff}]`

// frenchPhonePattern accepts +33, 0033 or a leading 0, a digit 1-9, then four
// pairs of digits. Separators may appear between pairs but never inside one.
var frenchPhonePattern = regexp.MustCompile(
	`^(?:(?:\+|00)33|0)` + whitespace + `*[1-9](?:(?:` + whitespace + `|[.-])*\d{2}){4}$`,
)

// PhoneError reports a value that is not a French phone number.
type PhoneError struct {
	Value   string
	Message string
}

func (e *PhoneError) Error() string {
	return fmt.Sprintf("%s: %q", e.Message, e.Value)
}

// FrenchPhone validates value as a French phone number. The empty string is
// accepted; whether a number is required is checked separately. The value is
// tested as given, so surrounding spaces make it invalid.
func FrenchPhone(value string) *PhoneError {
	if value == "" {
		return nil
	}
	if frenchPhonePattern.MatchString(value) {
		return nil
	}
	return &PhoneError{
		Value:   value,
		Message: domain.ValidationMessages[domain.FieldTelephone].Pattern,
	}
}

// FrenchPhoneValidator adapts FrenchPhone to a field Validator.
func FrenchPhoneValidator() Validator {
	return func(value string) *Failure {
		if err := FrenchPhone(value); err != nil {
			return &Failure{Rule: RuleFrenchPhone, Message: err.Message}
		}
		return nil
	}
}
