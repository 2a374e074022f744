package contact

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Rule names a kind of field check. Rules are listed in display priority
// order: when a field breaks several, the earliest one is shown.
type Rule int

const (
	RuleRequired Rule = iota
	RuleMinLength
	RuleEmail
	RulePattern
	RuleFrenchPhone
)

func (r Rule) String() string {
	switch r {
	case RuleRequired:
		return "required"
	case RuleMinLength:
		return "minlength"
	case RuleEmail:
		return "email"
	case RulePattern:
		return "pattern"
	case RuleFrenchPhone:
		return "frenchPhone"
	}
	return "unknown"
}

// Failure is one broken rule on a field.
type Failure struct {
	Rule    Rule
	Message string
}

// Validator checks one field value and returns nil when the value passes.
type Validator func(value string) *Failure

// Required fails on an empty value.
func Required(message string) Validator {
	return func(value string) *Failure {
		if value == "" {
			return &Failure{Rule: RuleRequired, Message: message}
		}
		return nil
	}
}

// MinLength fails when a non-empty value has fewer than n characters.
func MinLength(n int, message string) Validator {
	return func(value string) *Failure {
		if value == "" {
			return nil
		}
		if utf8.RuneCountInString(value) < n {
			return &Failure{Rule: RuleMinLength, Message: message}
		}
		return nil
	}
}

// emailPattern is the address syntax accepted by browsers for type=email
// inputs. Length limits are checked separately.
var emailPattern = regexp.MustCompile(
	"^[a-zA-Z0-9!#$%&'*+/=?^_`{|}~-]+(?:\\.[a-zA-Z0-9!#$%&'*+/=?^_`{|}~-]+)*" +
		"@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$",
)

const (
	maxEmailLength     = 254
	maxEmailLocalParts = 64
)

// Email fails when a non-empty value is not a syntactically valid address.
func Email(message string) Validator {
	return func(value string) *Failure {
		if value == "" {
			return nil
		}
		if !IsEmail(value) {
			return &Failure{Rule: RuleEmail, Message: message}
		}
		return nil
	}
}

// IsEmail reports whether value is a syntactically valid e-mail address.
func IsEmail(value string) bool {
	if len(value) > maxEmailLength {
		return false
	}
	at := strings.IndexByte(value, '@')
	if at < 1 || at > maxEmailLocalParts {
		return false
	}
	return emailPattern.MatchString(value)
}

// Pattern fails when a non-empty value does not match re.
func Pattern(re *regexp.Regexp, message string) Validator {
	return func(value string) *Failure {
		if value == "" {
			return nil
		}
		if !re.MatchString(value) {
			return &Failure{Rule: RulePattern, Message: message}
		}
		return nil
	}
}
