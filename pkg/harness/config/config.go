// Package config centralizes environment, browser, and tenant settings for
// the WorkFlow Pro test harness. Values come from environment variables
// (optionally seeded from a .env file) with defaults suitable for staging.
package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Environment identifies a deployment tier of the application under test.
type Environment string

const (
	EnvLocal      Environment = "local"
	EnvStaging    Environment = "staging"
	EnvProduction Environment = "production"
)

// Browser identifies the browser engine used for UI flows.
type Browser string

const (
	BrowserChromium Browser = "chromium"
	BrowserFirefox  Browser = "firefox"
	BrowserWebkit   Browser = "webkit"
)

// Default timeouts for browser interaction.
const (
	DefaultTimeout    = 15 * time.Second
	ElementTimeout    = 10 * time.Second
	NavigationTimeout = 30 * time.Second
)

// apiEndpoints maps each environment to its API service root. Clients append
// their own path prefixes (/api/v1, /auth, /health).
var apiEndpoints = map[Environment]string{
	EnvLocal:      "http://localhost:8000",
	EnvStaging:    "https://api.staging.workflowpro.com",
	EnvProduction: "https://api.workflowpro.com",
}

// Config holds the resolved harness configuration for one test run.
type Config struct {
	Environment Environment
	Browser     Browser
	Headless    bool

	// APIBaseURL overrides the per-environment endpoint when set.
	// Used to point the harness at a locally started mock server.
	APIBaseURL string

	BrowserStack *BrowserStackConfig
}

// BrowserStackConfig carries cloud device-farm credentials. It is nil when
// the credentials are absent, in which case device-farm test variants must
// skip cleanly rather than fail.
type BrowserStackConfig struct {
	Username    string
	AccessKey   string
	ProjectName string
	BuildName   string
}

// HubURL returns the remote WebDriver hub endpoint.
func (b *BrowserStackConfig) HubURL() string {
	return "https://" + b.Username + ":" + b.AccessKey + "@hub-cloud.browserstack.com/wd/hub"
}

// Load resolves the harness configuration from the environment. A .env file
// in the working directory is honored when present.
func Load() *Config {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("WFP")
	v.AutomaticEnv()

	v.SetDefault("test_env", string(EnvStaging))
	v.SetDefault("test_browser", string(BrowserChromium))
	v.SetDefault("headless", true)
	v.SetDefault("api_base_url", "")
	v.SetDefault("browserstack_project", "WorkFlow Pro Tests")
	v.SetDefault("browserstack_build", "Automated Tests")

	cfg := &Config{
		Environment: parseEnvironment(v.GetString("test_env")),
		Browser:     parseBrowser(v.GetString("test_browser")),
		Headless:    v.GetBool("headless"),
		APIBaseURL:  v.GetString("api_base_url"),
	}

	if user, key := v.GetString("browserstack_username"), v.GetString("browserstack_access_key"); user != "" && key != "" {
		cfg.BrowserStack = &BrowserStackConfig{
			Username:    user,
			AccessKey:   key,
			ProjectName: v.GetString("browserstack_project"),
			BuildName:   v.GetString("browserstack_build"),
		}
	}

	return cfg
}

func parseEnvironment(s string) Environment {
	switch Environment(strings.ToLower(s)) {
	case EnvLocal, EnvStaging, EnvProduction:
		return Environment(strings.ToLower(s))
	default:
		return EnvStaging
	}
}

func parseBrowser(s string) Browser {
	switch Browser(strings.ToLower(s)) {
	case BrowserChromium, BrowserFirefox, BrowserWebkit:
		return Browser(strings.ToLower(s))
	default:
		return BrowserChromium
	}
}

// APIBase returns the API base URL for the run, honoring the override.
func (c *Config) APIBase() string {
	if c.APIBaseURL != "" {
		return strings.TrimRight(c.APIBaseURL, "/")
	}
	return apiEndpoints[c.Environment]
}

// IgnoreHTTPSErrors reports whether self-signed certificates are acceptable.
// Production is the only tier with real certificates.
func (c *Config) IgnoreHTTPSErrors() bool {
	return c.Environment != EnvProduction
}
