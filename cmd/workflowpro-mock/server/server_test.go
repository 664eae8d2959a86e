package server

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestServerStartStop(t *testing.T) {
	srv := NewServer(DefaultConfig(), nil)

	addr, err := srv.Start()
	if err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	if addr == "" || addr == ":0" {
		t.Errorf("Start() returned invalid address: %q", addr)
	}
	t.Logf("Server started on %s", addr)

	if got := srv.Addr(); got != addr {
		t.Errorf("Addr() = %q, want %q", got, addr)
	}

	resp, err := http.Get(srv.BaseURL() + "/health")
	if err != nil {
		t.Fatalf("HTTP GET failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /health status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() failed: %v", err)
	}

	if _, err = http.Get(srv.BaseURL() + "/health"); err == nil {
		t.Error("Expected connection error after shutdown, but request succeeded")
	}
}

func TestLoginPageServed(t *testing.T) {
	srv := NewServer(DefaultConfig(), nil)
	if _, err := srv.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	defer srv.Shutdown(context.Background())

	resp, err := http.Get(srv.BaseURL() + "/login")
	if err != nil {
		t.Fatalf("HTTP GET failed: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	for _, selector := range []string{`id="email"`, `id="password"`, `id="login-btn"`, "error-message"} {
		if !strings.Contains(string(body), selector) {
			t.Errorf("login page missing %s", selector)
		}
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Addr != ":0" {
		t.Errorf("DefaultConfig().Addr = %q, want %q", cfg.Addr, ":0")
	}
	if cfg.TokenTTL != time.Hour {
		t.Errorf("DefaultConfig().TokenTTL = %v, want %v", cfg.TokenTTL, time.Hour)
	}
	if cfg.JWTSecret == "" {
		t.Error("DefaultConfig().JWTSecret must not be empty")
	}
}

func TestServerDoubleStart(t *testing.T) {
	srv := NewServer(DefaultConfig(), nil)
	defer srv.Shutdown(context.Background())

	addr1, err := srv.Start()
	if err != nil {
		t.Fatalf("First Start() failed: %v", err)
	}

	addr2, err := srv.Start()
	if err != nil {
		t.Fatalf("Second Start() failed: %v", err)
	}

	if addr1 != addr2 {
		t.Errorf("Second Start() returned different address: %q vs %q", addr1, addr2)
	}
}
