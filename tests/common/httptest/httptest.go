//go:build unit || e2e

package httptest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

// PerformRequest sends a JSON request through h. An empty token sends no Authorization header.
func PerformRequest(t *testing.T, h http.Handler, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	return PerformRequestWithHeaders(t, h, method, path, body, token, nil)
}

func PerformRequestWithHeaders(t *testing.T, h http.Handler, method, path string, body any, token string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, jsonBody(t, body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func jsonBody(t *testing.T, body any) io.Reader {
	t.Helper()
	if body == nil {
		return http.NoBody
	}
	b, err := json.Marshal(body)
	require.NoError(t, err, "encode request body")
	return bytes.NewReader(b)
}
