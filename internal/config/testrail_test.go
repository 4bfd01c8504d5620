package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/casesync.net/internal/static/errs"
)

func validTestRailConfig() *TestRailConfig {
	return &TestRailConfig{
		Enabled:   true,
		Url:       "https://example.testrail.io",
		Username:  "qa@example.com",
		ApiKey:    "secret",
		ProjectID: 3,
	}
}

func TestTestRailConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *TestRailConfig)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *TestRailConfig) {}},
		{name: "disabled ignores missing fields", mutate: func(c *TestRailConfig) {
			*c = TestRailConfig{Enabled: false}
		}},
		{name: "missing url", mutate: func(c *TestRailConfig) { c.Url = "" }, wantErr: true},
		{name: "url without scheme", mutate: func(c *TestRailConfig) { c.Url = "example.testrail.io" }, wantErr: true},
		{name: "missing username", mutate: func(c *TestRailConfig) { c.Username = "" }, wantErr: true},
		{name: "missing api key", mutate: func(c *TestRailConfig) { c.ApiKey = "" }, wantErr: true},
		{name: "zero project", mutate: func(c *TestRailConfig) { c.ProjectID = 0 }, wantErr: true},
		{name: "negative project", mutate: func(c *TestRailConfig) { c.ProjectID = -4 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validTestRailConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, errs.ErrConfiguration)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestNewTestRailConfigFromEnv(t *testing.T) {
	t.Setenv("TESTRAIL_ENABLED", "true")
	t.Setenv("TESTRAIL_URL", "https://example.testrail.io/")
	t.Setenv("TESTRAIL_USERNAME", "qa@example.com")
	t.Setenv("TESTRAIL_API_KEY", "secret")
	t.Setenv("TESTRAIL_PROJECT_ID", "7")

	cfg := NewTestRailConfig()

	assert.True(t, cfg.Enabled)
	assert.Equal(t, "https://example.testrail.io", cfg.Url)
	assert.Equal(t, int64(7), cfg.ProjectID)
	assert.NoError(t, cfg.Validate())
}

func TestNewTestRailConfigDefaults(t *testing.T) {
	t.Setenv("TESTRAIL_ENABLED", "")
	t.Setenv("TESTRAIL_PROJECT_ID", "not-a-number")

	cfg := NewTestRailConfig()

	assert.False(t, cfg.Enabled)
	assert.Equal(t, int64(0), cfg.ProjectID)
	assert.NoError(t, cfg.Validate())
}

func TestCorpusConfigSuites(t *testing.T) {
	t.Setenv("FEATURES_ROOT", "/tmp/features")

	cfg := NewCorpusConfig()

	api, ok := cfg.Suite("API")
	require.True(t, ok)
	assert.Equal(t, "API Test Automation", api.Name)
	assert.Equal(t, "/tmp/features/api", cfg.SuiteRoot(api))

	ui, ok := cfg.Suite("UI")
	require.True(t, ok)
	assert.Equal(t, "Automated UI tests covering login, checkout, and sorting functionality using Playwright", ui.Description)

	_, ok = cfg.Suite("MOBILE")
	assert.False(t, ok)
}

func TestClientConfigTimeoutFallback(t *testing.T) {
	t.Setenv("TESTRAIL_TIMEOUT_SEC", "-1")
	assert.Equal(t, int64(30), int64(NewClientConfig().RequestTimeout.Seconds()))

	t.Setenv("TESTRAIL_TIMEOUT_SEC", "5")
	assert.Equal(t, int64(5), int64(NewClientConfig().RequestTimeout.Seconds()))
}

func TestOptionalBackends(t *testing.T) {
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("SYNC_REPORT_PATH", "")

	assert.False(t, NewRedisConfig().Enabled())
	assert.False(t, NewPostgresConfig().Enabled())
	assert.Equal(t, "casesync-report.yaml", NewCorpusConfig().ReportPath)
	assert.Equal(t, 10*time.Second, NewRedisConfig().LockWait)

	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_LOCK_WAIT_SEC", "2")
	t.Setenv("DATABASE_URL", "postgres://localhost/casesync")

	assert.True(t, NewRedisConfig().Enabled())
	assert.Equal(t, 2*time.Second, NewRedisConfig().LockWait)
	assert.True(t, NewPostgresConfig().Enabled())
}
