package response_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unishare/backend/internal/response"
)

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestErrorMarshalJSON(t *testing.T) {
	t.Parallel()

	t.Run("code lands in the error field", func(t *testing.T) {
		t.Parallel()

		raw, err := json.Marshal(response.ErrUnauthenticated)
		require.NoError(t, err)

		var body map[string]any
		require.NoError(t, json.Unmarshal(raw, &body))
		assert.Equal(t, "unauthenticated", body["error"])
		assert.Equal(t, "Authentication required", body["message"])
	})

	t.Run("empty message is omitted", func(t *testing.T) {
		t.Parallel()

		raw, err := json.Marshal(response.ErrNotFound)
		require.NoError(t, err)

		var body map[string]any
		require.NoError(t, json.Unmarshal(raw, &body))
		assert.Equal(t, "Resource not found", body["error"])
		assert.NotContains(t, body, "message")
	})

	t.Run("details flatten to the top level", func(t *testing.T) {
		t.Parallel()

		respErr := response.ErrCORSRejected.
			WithMessage("Origin not allowed").
			WithDetails(map[string]any{
				"origin":         "https://evil.example",
				"allowedOrigins": []string{"https://app.example"},
			})

		raw, err := json.Marshal(respErr)
		require.NoError(t, err)

		var body map[string]any
		require.NoError(t, json.Unmarshal(raw, &body))
		assert.Equal(t, "CORS Error", body["error"])
		assert.Equal(t, "Origin not allowed", body["message"])
		assert.Equal(t, "https://evil.example", body["origin"])
		assert.Equal(t, []any{"https://app.example"}, body["allowedOrigins"])
	})
}

func TestErrorInterface(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Authentication required", response.ErrUnauthenticated.Error())
	assert.Equal(t, "Resource not found", response.ErrNotFound.Error())
	assert.ErrorAs(t, error(response.ErrForbidden), &response.Error{})
}

func TestWriterError(t *testing.T) {
	t.Parallel()

	t.Run("renders structured errors as-is", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		response.Writer{}.Error(w, response.ErrForbidden)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "forbidden", decodeBody(t, w)["error"])
	})

	t.Run("unexpected errors collapse to a generic 500", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		response.Writer{}.Error(w, errors.New("pq: connection refused"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "server_error", body["error"])
		assert.NotContains(t, body, "cause")
	})

	t.Run("debug mode exposes the cause", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		response.Writer{Debug: true}.Error(w, errors.New("pq: connection refused"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "pq: connection refused", decodeBody(t, w)["cause"])
	})

	t.Run("wrapped structured errors are unwrapped", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		wrapped := errors.Join(response.ErrNotFound, errors.New("room lookup"))
		response.Writer{}.Error(w, wrapped)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
