package httputil

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vx-landing/pkg/errors"
)

type payload struct {
	Name string `json:"name"`
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		maxBytes   int64
		expectCode int
		expectName string
	}{
		{name: "valid", body: `{"name":"Алёна"}`, expectName: "Алёна"},
		{name: "empty body", body: ""},
		{name: "malformed", body: `{"name":`, expectCode: http.StatusBadRequest},
		{name: "wrong type", body: `{"name":42}`, expectCode: http.StatusBadRequest},
		{name: "too large", body: `{"name":"` + strings.Repeat("a", 64) + `"}`, maxBytes: 16, expectCode: http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			var dst payload
			appErr := DecodeJSON(rec, req, tt.maxBytes, &dst)
			if tt.expectCode == 0 {
				require.Nil(t, appErr)
				assert.Equal(t, tt.expectName, dst.Name)
				return
			}
			require.NotNil(t, appErr)
			assert.Equal(t, tt.expectCode, appErr.StatusCode)
		})
	}
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, WriteError(rec, errors.NewNotFoundError(errors.MsgNotFound)))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"ok":false,"error":"Страница не найдена."}`, rec.Body.String())
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "198.51.100.7:4321"
	req.Header.Set("X-Forwarded-For", "10.0.0.1")
	assert.Equal(t, "198.51.100.7", ClientIP(req))

	req.RemoteAddr = "198.51.100.8"
	assert.Equal(t, "198.51.100.8", ClientIP(req))

	req = req.WithContext(WithClientIP(req.Context(), "203.0.113.9"))
	assert.Equal(t, "203.0.113.9", ClientIP(req))
}

func TestResolveClientIP(t *testing.T) {
	tests := []struct {
		name      string
		hops      int
		forwarded []string
		expected  string
	}{
		{name: "no trusted proxy ignores headers", hops: 0, forwarded: []string{"10.0.0.1"}, expected: "198.51.100.7"},
		{name: "one hop takes the last entry", hops: 1, forwarded: []string{"10.0.0.1, 203.0.113.5"}, expected: "203.0.113.5"},
		{name: "two hops", hops: 2, forwarded: []string{"10.0.0.1, 203.0.113.5, 172.16.0.2"}, expected: "203.0.113.5"},
		{name: "entries across headers", hops: 1, forwarded: []string{"10.0.0.1", "203.0.113.6"}, expected: "203.0.113.6"},
		{name: "fewer entries than hops", hops: 3, forwarded: []string{"203.0.113.7"}, expected: "203.0.113.7"},
		{name: "no header", hops: 1, expected: "198.51.100.7"},
		{name: "garbage entry", hops: 1, forwarded: []string{"not-an-ip"}, expected: "198.51.100.7"},
		{name: "ipv6 entry", hops: 1, forwarded: []string{"2001:db8::1"}, expected: "2001:db8::1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = "198.51.100.7:4321"
			for _, value := range tt.forwarded {
				req.Header.Add("X-Forwarded-For", value)
			}
			assert.Equal(t, tt.expected, ResolveClientIP(req, tt.hops))
		})
	}
}
