package httputil

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestParseJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid", `{"name":"posts","count":2}`, false},
		{"malformed", `{"name":`, true},
		{"unknown field", `{"name":"posts","extra":true}`, true},
		{"trailing data", `{"name":"a"} {"name":"b"}`, true},
		{"empty", ``, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(tt.body))
			var p payload
			err := ParseJSON(req, &p)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, payload{Name: "posts", Count: 2}, p)
		})
	}
}

func TestParseJSONOrError(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`not json`))
	w := httptest.NewRecorder()

	var p payload
	ok := ParseJSONOrError(w, req, &p)

	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid JSON")
}

func TestParsePathString(t *testing.T) {
	req := httptest.NewRequest(http.MethodDelete, "/api/collections/posts", nil)
	req = mux.SetURLVars(req, map[string]string{"slug": "posts"})

	val, err := ParsePathString(req, "slug")
	require.NoError(t, err)
	assert.Equal(t, "posts", val)

	_, err = ParsePathString(req, "id")
	assert.Error(t, err)
}

func TestParsePathStringOrError(t *testing.T) {
	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	w := httptest.NewRecorder()

	_, ok := ParsePathStringOrError(w, req, "slug")
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestParseQueryString(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/openapi?format=yaml", nil)
	assert.Equal(t, "yaml", ParseQueryString(req, "format", "json"))
	assert.Equal(t, "x", ParseQueryString(req, "missing", "x"))
}

