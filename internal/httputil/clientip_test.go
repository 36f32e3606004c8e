package httputil

import (
	"net/http/httptest"
	"testing"
)

func TestClientIP(t *testing.T) {
	t.Run("prefers forwarded-for first entry", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("X-Forwarded-For", "198.51.100.9, 10.0.0.1")
		req.RemoteAddr = "10.0.0.1:443"
		if ip := ClientIP(req); ip != "198.51.100.9" {
			t.Fatalf("unexpected ip: %s", ip)
		}
	})

	t.Run("falls back to remote addr host", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.RemoteAddr = "203.0.113.7:51234"
		if ip := ClientIP(req); ip != "203.0.113.7" {
			t.Fatalf("unexpected ip: %s", ip)
		}
	})

	t.Run("handles portless remote addr", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.RemoteAddr = "203.0.113.7"
		if ip := ClientIP(req); ip != "203.0.113.7" {
			t.Fatalf("unexpected ip: %s", ip)
		}
	})

	t.Run("empty everything defaults to loopback", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.RemoteAddr = ""
		if ip := ClientIP(req); ip != "127.0.0.1" {
			t.Fatalf("unexpected ip: %s", ip)
		}
	})
}
