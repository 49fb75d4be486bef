package metadata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientIPFromRequest(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		expected   string
	}{
		{"forwarded chain uses first hop", "10.0.0.1:4000", map[string]string{"X-Forwarded-For": " 203.0.113.7 , 10.0.0.2"}, "203.0.113.7"},
		{"real ip header", "10.0.0.1:4000", map[string]string{"X-Real-IP": "198.51.100.4"}, "198.51.100.4"},
		{"ipv4 remote addr", "192.0.2.10:5123", nil, "192.0.2.10"},
		{"ipv6 remote addr", "[::1]:5123", nil, "::1"},
		{"remote addr without port", "192.0.2.11", nil, "192.0.2.11"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.expected, ClientIPFromRequest(req))
		})
	}
}

func TestClientMetadata(t *testing.T) {
	var ip, ua string
	h := ClientMetadata(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		ip = GetClientIP(r.Context())
		ua = GetUserAgent(r.Context())
	}))

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.RemoteAddr = "192.0.2.10:5123"
	req.Header.Set("User-Agent", "tablet-kiosk/1.0")
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "192.0.2.10", ip)
	assert.Equal(t, "tablet-kiosk/1.0", ua)
	assert.Empty(t, GetClientIP(context.Background()))
}
