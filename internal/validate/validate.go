// Package validate checks account form fields and reports per-field
// user-facing messages. All checks are evaluated independently and the
// result collects every failure, not just the first.
package validate

import (
	"regexp"
	"strings"
)

// Field keys used in Errors maps. They match the wire names of the
// account record fields.
const (
	FieldFirstName    = "firstName"
	FieldLastName     = "lastName"
	FieldEmail        = "email"
	FieldConfirmEmail = "confirmEmail"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Errors maps a field key to a message suitable for direct display.
type Errors map[string]string

// Valid reports whether no field failed.
func (e Errors) Valid() bool { return len(e) == 0 }

// Fields is one candidate set of form values. RequireLastName and
// RequireConfirm widen the checked schema: the login form carries neither
// a last name nor a confirm field, signup carries both.
type Fields struct {
	FirstName    string
	LastName     string
	Email        string
	ConfirmEmail string

	RequireLastName bool
	RequireConfirm  bool
}

// Check evaluates every rule against f. The result is empty iff all
// checks pass. Check never has side effects.
func Check(f Fields) Errors {
	e := Errors{}

	if strings.TrimSpace(f.FirstName) == "" {
		e[FieldFirstName] = "First name is required."
	}

	if f.RequireLastName && strings.TrimSpace(f.LastName) == "" {
		e[FieldLastName] = "Last name is required."
	}

	email := strings.TrimSpace(f.Email)
	if email == "" {
		e[FieldEmail] = "Email is required."
	} else if !emailPattern.MatchString(email) {
		e[FieldEmail] = "Enter a valid email."
	}

	if f.RequireConfirm {
		confirm := strings.TrimSpace(f.ConfirmEmail)
		switch {
		case confirm == "":
			e[FieldConfirmEmail] = "Confirm email is required."
		case email != "" && email != confirm:
			e[FieldConfirmEmail] = "Emails do not match."
		}
	}

	return e
}

// EmailOK reports whether s looks like local@domain.tld. Exposed for
// callers that check a single field without building a full Fields.
func EmailOK(s string) bool {
	return emailPattern.MatchString(strings.TrimSpace(s))
}
