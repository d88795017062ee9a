package session

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/maxxenergy/maxxacct/internal/validate"
)

// ValidationError reports advisory client-side validation failures. No
// request was made.
type ValidationError struct {
	Fields validate.Errors
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msgs := make([]string, len(keys))
	for i, k := range keys {
		msgs[i] = e.Fields[k]
	}
	return strings.Join(msgs, " ")
}

// Login looks up the account matching firstName and email and records
// the identity on success. remember selects the durable tier. Validation
// failures are returned before any network call; a lookup miss surfaces
// as api.ErrNotFound via errors.Is.
func Login(ctx context.Context, store *Store, client API, firstName, email string, remember bool) (string, error) {
	firstName = strings.TrimSpace(firstName)
	email = strings.TrimSpace(email)

	if v := validate.Check(validate.Fields{FirstName: firstName, Email: email}); !v.Valid() {
		return "", &ValidationError{Fields: v}
	}

	rec, err := client.Lookup(ctx, firstName, email)
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}

	persistence := SessionOnly
	if remember {
		persistence = Durable
	}
	if err := store.Set(rec.ID, persistence); err != nil {
		return "", fmt.Errorf("login: %w", err)
	}

	return rec.ID, nil
}

// Signup creates a new account. It never writes an identity; the user
// logs in separately afterwards. A duplicate email surfaces as
// api.ErrConflict via errors.Is.
func Signup(ctx context.Context, client API, firstName, lastName, email, confirmEmail string) error {
	v := validate.Check(validate.Fields{
		FirstName:       firstName,
		LastName:        lastName,
		Email:           email,
		ConfirmEmail:    confirmEmail,
		RequireLastName: true,
		RequireConfirm:  true,
	})
	if !v.Valid() {
		return &ValidationError{Fields: v}
	}

	err := client.Create(ctx,
		strings.TrimSpace(firstName),
		strings.TrimSpace(lastName),
		strings.TrimSpace(email),
	)
	if err != nil {
		return fmt.Errorf("signup: %w", err)
	}

	return nil
}
