package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	t.Parallel()

	t.Run("writes JSON with correct content type", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()

		WriteJSON(rec, http.StatusOK, map[string]string{"foo": "bar"})

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		var result map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.Equal(t, "bar", result["foo"])
	})

	t.Run("handles nil data", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()

		WriteJSON(rec, http.StatusNoContent, nil)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.String())
	})
}

func TestWriteNotFound(t *testing.T) {
	t.Parallel()
	rec := httptest.NewRecorder()

	WriteNotFound(rec, "GET", "/nope")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	var result map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "not_found", result["error"])
	assert.Contains(t, result["message"], "GET /nope")
}

func TestWriteMethodNotAllowed(t *testing.T) {
	t.Parallel()
	rec := httptest.NewRecorder()

	WriteMethodNotAllowed(rec, "PUT", []string{"GET", "DELETE"})

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "GET, DELETE", rec.Header().Get("Allow"))
}

func TestWriteRaw(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		status   int
		ct       string
		body     string
		wantBody string
	}{
		{"json body", 200, "application/json", `{"a":1}`, `{"a":1}`},
		{"no content drops body", 204, "application/json", `{"a":1}`, ""},
		{"empty body", 200, "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := httptest.NewRecorder()

			WriteRaw(rec, tt.status, tt.ct, []byte(tt.body))

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.ct, rec.Header().Get("Content-Type"))
			assert.Equal(t, tt.wantBody, rec.Body.String())
		})
	}
}
