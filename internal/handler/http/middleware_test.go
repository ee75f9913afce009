package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	h := cors([]string{"https://app.example.com"})(next)

	t.Run("allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/links/x", nil)
		req.Header.Set("Origin", "https://app.example.com")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusTeapot, rr.Code)
		assert.Equal(t, "https://app.example.com", rr.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("unknown origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/links/x", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/links", nil)
		req.Header.Set("Origin", "https://app.example.com")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Contains(t, rr.Header().Get("Access-Control-Allow-Headers"), headerWorkspace)
	})
}

func TestCORSWildcardWithoutCredentials(t *testing.T) {
	h := cors([]string{"*"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/links/x", nil)
	req.Header.Set("Origin", "https://anyone.example.com")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Credentials"))
}

func TestProxyList_ClientIP(t *testing.T) {
	proxies, err := ParseProxyList([]string{"10.0.0.0/8", "192.0.2.99"})
	require.NoError(t, err)

	tests := []struct {
		name    string
		proxies *ProxyList
		headers map[string]string
		remote  string
		want    string
	}{
		{name: "trusted chain", proxies: proxies, headers: map[string]string{"X-Forwarded-For": "198.51.100.1, 10.0.0.1"}, remote: "10.0.0.2:80", want: "198.51.100.1"},
		{name: "spoofed leftmost hop ignored", proxies: proxies, headers: map[string]string{"X-Forwarded-For": "6.6.6.6, 198.51.100.1"}, remote: "192.0.2.99:80", want: "198.51.100.1"},
		{name: "all hops trusted", proxies: proxies, headers: map[string]string{"X-Forwarded-For": "10.1.1.1, 10.0.0.1"}, remote: "10.0.0.2:80", want: "10.1.1.1"},
		{name: "real ip from trusted peer", proxies: proxies, headers: map[string]string{"X-Real-IP": " 198.51.100.2 "}, remote: "10.0.0.2:80", want: "198.51.100.2"},
		{name: "untrusted peer headers ignored", proxies: proxies, headers: map[string]string{"X-Forwarded-For": "198.51.100.1", "X-Real-IP": "198.51.100.2"}, remote: "203.0.113.5:80", want: "203.0.113.5"},
		{name: "no proxies configured", headers: map[string]string{"X-Forwarded-For": "198.51.100.1"}, remote: "10.0.0.2:80", want: "10.0.0.2"},
		{name: "remote without port", proxies: proxies, remote: "192.0.2.11", want: "192.0.2.11"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, tt.proxies.ClientIP(req))
		})
	}
}

func TestParseProxyList_Invalid(t *testing.T) {
	_, err := ParseProxyList([]string{"not-an-ip"})
	assert.Error(t, err)

	_, err = ParseProxyList([]string{"10.0.0.0/33"})
	assert.Error(t, err)
}

func TestCallerID(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/links", nil)
	req.RemoteAddr = "192.0.2.10:4321"
	req.Header.Set("X-Forwarded-For", "198.51.100.1")
	assert.Equal(t, "ip:192.0.2.10", callerID(req, nil))

	req.Header.Set(headerAPIKey, "secret-key")
	assert.Equal(t, "key:secret-key", callerID(req, nil))
}
