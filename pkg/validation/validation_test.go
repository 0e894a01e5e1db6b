package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "assent/pkg/domain-errors"
)

type statusQuery struct {
	Email string `validate:"required,email"`
}

type checkQuery struct {
	Email       string `validate:"required,email"`
	PurposeUUID string `validate:"required,uuid"`
}

// TestValidate verifies struct validation maps to CodeValidation with
// snake_case field names in the message.
func TestValidate(t *testing.T) {
	t.Run("valid struct passes", func(t *testing.T) {
		assert.NoError(t, Validate(&statusQuery{Email: "alice@example.com"}))
	})

	t.Run("missing field names the field", func(t *testing.T) {
		err := Validate(&statusQuery{})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		assert.Equal(t, "email is required", err.Error())
	})

	t.Run("malformed email", func(t *testing.T) {
		err := Validate(&statusQuery{Email: "not-an-email"})
		require.Error(t, err)
		assert.Equal(t, "email must be a valid email", err.Error())
	})

	t.Run("malformed uuid uses snake_case field name", func(t *testing.T) {
		err := Validate(&checkQuery{Email: "alice@example.com", PurposeUUID: "nope"})
		require.Error(t, err)
		assert.Equal(t, "purpose_uuid must be a valid uuid", err.Error())
	})
}
