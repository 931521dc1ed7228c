package handlers

import (
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "cosmos-server/internal/shared/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeAdvanceRequest(t *testing.T) {
	t.Run("empty body means one step", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/api/universes/x/advance", nil)

		req, err := decodeAdvanceRequest(r)
		require.NoError(t, err)
		assert.Zero(t, req.Steps)
	})

	t.Run("steps parsed from body", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/api/universes/x/advance", strings.NewReader(`{"steps": 5}`))

		req, err := decodeAdvanceRequest(r)
		require.NoError(t, err)
		assert.Equal(t, 5, req.Steps)
	})

	t.Run("malformed body rejected", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/api/universes/x/advance", strings.NewReader(`{"steps":`))

		_, err := decodeAdvanceRequest(r)
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	})
}

func TestParseUniverseID(t *testing.T) {
	t.Run("rejects malformed id", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/universes/not-a-uuid", nil)
		r.SetPathValue("id", "not-a-uuid")

		_, err := parseUniverseID(r)
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	})

	t.Run("accepts valid id", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/universes/x", nil)
		r.SetPathValue("id", "7b8a4f6e-9c3d-4e2a-8f1b-0d5c6a7e9b21")

		id, err := parseUniverseID(r)
		require.NoError(t, err)
		assert.Equal(t, "7b8a4f6e-9c3d-4e2a-8f1b-0d5c6a7e9b21", id.String())
	})
}
