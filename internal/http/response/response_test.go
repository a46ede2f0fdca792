package response_test

import (
	"testing"

	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-payments/internal/http/response"
)

func TestOKWithData(t *testing.T) {
	resp := response.OKWithData(map[string]any{"payment_id": 42})

	assert.Equal(t, response.StatusOK, resp.Status)
	assert.Empty(t, resp.Error)
	assert.NotNil(t, resp.Data)
}

func TestError(t *testing.T) {
	resp := response.Error("payment not found")

	assert.Equal(t, response.StatusError, resp.Status)
	assert.Equal(t, "payment not found", resp.Error)
}

func TestValidationError(t *testing.T) {
	type request struct {
		Email    string  `validate:"required,email"`
		Password string  `validate:"required,min=6"`
		Amount   float64 `validate:"required,gt=0"`
	}

	v := validator.New()
	err := v.Struct(request{Email: "not-an-email", Password: "123"})
	require.Error(t, err)

	resp := response.ValidationError(err.(validator.ValidationErrors))

	assert.Equal(t, response.StatusError, resp.Status)
	assert.Contains(t, resp.Error, "field Email must be a valid email")
	assert.Contains(t, resp.Error, "field Password is too short")
	assert.Contains(t, resp.Error, "field Amount is a required field")
}
