//go:build e2e

package e2e

import (
	"context"
	"testing"
	"time"

	"github.com/workflowpro/e2e/cmd/workflowpro-mock/server"
	"github.com/workflowpro/e2e/pkg/harness/apiclient"
	"github.com/workflowpro/e2e/pkg/harness/auth"
	"github.com/workflowpro/e2e/pkg/harness/browser"
	"github.com/workflowpro/e2e/pkg/harness/pages"
)

// startMock boots the mock backend on a random port, torn down with the
// test.
func startMock(t *testing.T) *server.Server {
	t.Helper()
	srv := server.NewServer(server.DefaultConfig(), nil)
	if _, err := srv.Start(); err != nil {
		t.Fatalf("failed to start mock server: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			t.Errorf("server shutdown error: %v", err)
		}
	})
	return srv
}

// startMockWithConfig is startMock with a custom server configuration.
func startMockWithConfig(t *testing.T, cfg server.Config) *server.Server {
	t.Helper()
	srv := server.NewServer(cfg, nil)
	if _, err := srv.Start(); err != nil {
		t.Fatalf("failed to start mock server: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			t.Errorf("server shutdown error: %v", err)
		}
	})
	return srv
}

// serverConfigWith2FA enrolls one user in two-factor auth.
func serverConfigWith2FA(email, code string) server.Config {
	cfg := server.DefaultConfig()
	cfg.TwoFACodes = map[string]string{email: code}
	return cfg
}

// launchBrowser starts headless Chrome, torn down with the test.
func launchBrowser(t *testing.T) *browser.Browser {
	t.Helper()
	b, err := browser.Launch(browser.DefaultConfig())
	if err != nil {
		t.Fatalf("failed to launch browser: %v", err)
	}
	t.Cleanup(func() {
		if err := b.Close(); err != nil {
			t.Errorf("browser close error: %v", err)
		}
	})
	return b
}

// newLoginPage opens a fresh page in a fresh isolated context.
func newLoginPage(t *testing.T, b *browser.Browser, baseURL string) *pages.LoginPage {
	t.Helper()
	ctx, err := b.NewContext()
	if err != nil {
		t.Fatalf("failed to create browser context: %v", err)
	}
	t.Cleanup(func() {
		if err := ctx.Close(); err != nil {
			t.Errorf("context close error: %v", err)
		}
	})
	page, err := ctx.NewPage()
	if err != nil {
		t.Fatalf("failed to open page: %v", err)
	}
	return pages.NewLoginPage(page, baseURL)
}

// adminClient logs in as the tenant's admin over the API and returns a
// ready resource client for data setup.
func adminClient(t *testing.T, srv *server.Server, tenantID string) *apiclient.Client {
	t.Helper()
	gateway := auth.NewGateway(srv.BaseURL(), auth.WithFailFast())
	token, err := gateway.RequestToken(context.Background(), tenantID, "admin@"+tenantID+".com", "password123")
	if err != nil {
		t.Fatalf("failed to fetch token for %s: %v", tenantID, err)
	}
	return apiclient.New(srv.BaseURL(), token.AccessToken, tenantID)
}

// seedProject creates a project under the tenant and registers cleanup.
// Cleanup errors are swallowed so they can never mask the test's own
// outcome.
func seedProject(t *testing.T, srv *server.Server, tenantID, name string) string {
	t.Helper()
	client := adminClient(t, srv, tenantID)
	p, err := client.CreateProject(context.Background(), apiclient.ProjectPayload{
		Name:        name,
		TeamMembers: []string{},
	})
	if err != nil {
		t.Fatalf("failed to seed project %q: %v", name, err)
	}
	t.Cleanup(func() {
		if err := client.DeleteProject(context.Background(), p.ID); err != nil {
			t.Logf("cleanup: delete project %s: %v", p.ID, err)
		}
	})
	return p.ID
}
