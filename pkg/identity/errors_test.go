package identity

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *APIError
		expected string
	}{
		{
			name:     "message and code",
			err:      &APIError{StatusCode: 404, Code: "tenant_not_found", Message: "no such tenant"},
			expected: "identity backend: no such tenant (tenant_not_found)",
		},
		{
			name:     "code only",
			err:      &APIError{StatusCode: 422, Code: "invalid_code"},
			expected: "identity backend: invalid_code",
		},
		{
			name:     "status only",
			err:      &APIError{StatusCode: 502},
			expected: "identity backend: status 502",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.EqualError(t, tt.err, tt.expected)
		})
	}
}

func TestAPIError_Body(t *testing.T) {
	t.Run("raw payload preserved", func(t *testing.T) {
		payload := `{"error":"x","extra":[1,2,3]}`
		err := &APIError{StatusCode: 422, Payload: json.RawMessage(payload)}
		assert.JSONEq(t, payload, string(err.Body()))
	})

	t.Run("synthesized when body was unusable", func(t *testing.T) {
		err := &APIError{StatusCode: 502}
		var body map[string]string
		require.NoError(t, json.Unmarshal(err.Body(), &body))
		assert.Equal(t, "identity backend: status 502", body["error"])
	})
}

func TestAPIError_Unauthorized(t *testing.T) {
	assert.True(t, (&APIError{StatusCode: http.StatusUnauthorized}).Unauthorized())
	assert.False(t, (&APIError{StatusCode: http.StatusForbidden}).Unauthorized())
}

func TestAsAPIError(t *testing.T) {
	apiErr := &APIError{StatusCode: 404, Code: "tenant_not_found"}

	t.Run("direct", func(t *testing.T) {
		got, ok := AsAPIError(apiErr)
		require.True(t, ok)
		assert.Same(t, apiErr, got)
	})

	t.Run("wrapped", func(t *testing.T) {
		got, ok := AsAPIError(fmt.Errorf("get_organization: %w", apiErr))
		require.True(t, ok)
		assert.Same(t, apiErr, got)
	})

	t.Run("unrelated", func(t *testing.T) {
		_, ok := AsAPIError(fmt.Errorf("dial tcp: connection refused"))
		assert.False(t, ok)
	})
}
