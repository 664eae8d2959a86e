//go:build e2e

package e2e

import (
	"strings"
	"testing"
)

// TestLogin_Smoke verifies the complete E2E test infrastructure:
// 1. Mock server starts programmatically on a random port
// 2. Browser launches in headless mode
// 3. The login page loads with its expected elements
//
// This is a smoke test - it validates infrastructure, not login behavior.
func TestLogin_Smoke(t *testing.T) {
	srv := startMock(t)
	b := launchBrowser(t)

	login := newLoginPage(t, b, srv.BaseURL())
	if err := login.NavigateToLogin(); err != nil {
		t.Fatalf("failed to open login page: %v", err)
	}

	title, err := login.GetText("title")
	if err == nil && !strings.Contains(title, "WorkFlow Pro") {
		t.Errorf("unexpected page title: got %q, want contains 'WorkFlow Pro'", title)
	}
	if !login.IsVisible("#email") {
		t.Error("email input not visible on login page")
	}
}

func TestLogin_ValidCredentialsReachDashboard(t *testing.T) {
	srv := startMock(t)
	b := launchBrowser(t)

	login := newLoginPage(t, b, srv.BaseURL())
	if err := login.Login("admin@company1.com", "password123"); err != nil {
		t.Fatalf("login flow failed: %v", err)
	}

	if !login.IsLoginSuccessful() {
		t.Fatal("expected login to land on the dashboard")
	}
	if err := login.AssertURLContains("/dashboard"); err != nil {
		t.Errorf("dashboard URL assertion failed: %v", err)
	}
}

func TestLogin_InvalidCredentialsShowError(t *testing.T) {
	srv := startMock(t)
	b := launchBrowser(t)

	login := newLoginPage(t, b, srv.BaseURL())
	if err := login.Login("admin@company1.com", "wrong-password"); err != nil {
		t.Fatalf("login flow failed: %v", err)
	}

	if err := login.AssertLoginError("Invalid credentials"); err != nil {
		t.Errorf("expected visible login error: %v", err)
	}
	if login.IsLoginSuccessful() {
		t.Error("invalid credentials must not reach the dashboard")
	}
}

func TestLogin_TwoFactorPromptFlow(t *testing.T) {
	cfg := serverConfigWith2FA("admin@company1.com", "424242")
	srv := startMockWithConfig(t, cfg)
	b := launchBrowser(t)

	login := newLoginPage(t, b, srv.BaseURL())
	if err := login.LoginWith2FA("admin@company1.com", "password123", "424242"); err != nil {
		t.Fatalf("2fa login flow failed: %v", err)
	}

	if !login.IsLoginSuccessful() {
		t.Fatal("expected 2fa login to land on the dashboard")
	}
}

func TestLogin_TwoFactorAbsentForUnenrolledUser(t *testing.T) {
	srv := startMock(t)
	b := launchBrowser(t)

	// The probe for the 2FA input must time out quietly and the flow
	// proceed as a plain login.
	login := newLoginPage(t, b, srv.BaseURL())
	if err := login.LoginWith2FA("admin@company2.com", "password123", "000000"); err != nil {
		t.Fatalf("login flow failed: %v", err)
	}
	if !login.IsLoginSuccessful() {
		t.Fatal("user without 2fa should log in directly")
	}
}
