package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckAllValid(t *testing.T) {
	e := Check(Fields{
		FirstName:       "Jane",
		LastName:        "Doe",
		Email:           "jane@x.com",
		ConfirmEmail:    "jane@x.com",
		RequireLastName: true,
		RequireConfirm:  true,
	})

	assert.True(t, e.Valid())
	assert.Empty(t, e)
}

func TestCheckRequiredAfterTrim(t *testing.T) {
	e := Check(Fields{
		FirstName:       "   ",
		LastName:        "\t",
		Email:           " ",
		RequireLastName: true,
	})

	assert.Equal(t, "First name is required.", e[FieldFirstName])
	assert.Equal(t, "Last name is required.", e[FieldLastName])
	assert.Equal(t, "Email is required.", e[FieldEmail])
}

func TestCheckLastNameSkippedWhenNotInSchema(t *testing.T) {
	e := Check(Fields{FirstName: "Jane", Email: "jane@x.com"})

	require.True(t, e.Valid())
	_, ok := e[FieldLastName]
	assert.False(t, ok)
}

func TestCheckEmailShape(t *testing.T) {
	bad := []string{
		"plain",
		"no-at.example.com",
		"missing-dot@example",
		"spaces in@local.part",
		"trailing@domain.",
		"@domain.com",
	}
	for _, s := range bad {
		e := Check(Fields{FirstName: "Jane", Email: s})
		assert.Equal(t, "Enter a valid email.", e[FieldEmail], "email %q", s)
	}

	good := []string{"jane@x.com", "a.b+c@sub.domain.org", "x@y.z"}
	for _, s := range good {
		e := Check(Fields{FirstName: "Jane", Email: s})
		_, ok := e[FieldEmail]
		assert.False(t, ok, "email %q", s)
	}
}

func TestCheckCollectsAllErrors(t *testing.T) {
	e := Check(Fields{
		RequireLastName: true,
		RequireConfirm:  true,
	})

	require.Len(t, e, 4)
}

func TestCheckConfirmEmail(t *testing.T) {
	e := Check(Fields{
		FirstName:      "Jane",
		Email:          "jane@x.com",
		ConfirmEmail:   "other@x.com",
		RequireConfirm: true,
	})
	assert.Equal(t, "Emails do not match.", e[FieldConfirmEmail])

	e = Check(Fields{
		FirstName:      "Jane",
		Email:          "jane@x.com",
		RequireConfirm: true,
	})
	assert.Equal(t, "Confirm email is required.", e[FieldConfirmEmail])

	// a match after trimming is a match
	e = Check(Fields{
		FirstName:      "Jane",
		Email:          " jane@x.com ",
		ConfirmEmail:   "jane@x.com",
		RequireConfirm: true,
	})
	_, ok := e[FieldConfirmEmail]
	assert.False(t, ok)
}

func TestCheckDeterministic(t *testing.T) {
	f := Fields{FirstName: "", Email: "nope", RequireLastName: true}

	first := Check(f)
	second := Check(f)
	assert.Equal(t, first, second)
}

func TestEmailOK(t *testing.T) {
	assert.True(t, EmailOK(" jane@x.com "))
	assert.False(t, EmailOK("jane@x"))
}
