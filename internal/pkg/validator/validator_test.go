package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	type input struct {
		Name string `validate:"required"`
		URL  string `validate:"omitempty,url"`
	}

	t.Run("valid struct passes", func(t *testing.T) {
		err := Validate(input{Name: "wallet", URL: "http://localhost:24444"})
		assert.NoError(t, err)
	})

	t.Run("missing required field fails with sentinel", func(t *testing.T) {
		err := Validate(input{})

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrValidationFailed)
		assert.Contains(t, err.Error(), "'Name'")
	})

	t.Run("invalid url fails", func(t *testing.T) {
		err := Validate(input{Name: "wallet", URL: "not a url"})

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrValidationFailed)
	})
}
