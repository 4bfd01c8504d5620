package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"gitlab.com/casesync.net/internal/static/errs"
)

type TestRailConfig struct {
	Enabled   bool
	Url       string
	Username  string
	ApiKey    string
	ProjectID int64
}

func NewTestRailConfig() *TestRailConfig {
	projectID, err := strconv.ParseInt(strings.TrimSpace(os.Getenv("TESTRAIL_PROJECT_ID")), 10, 64)
	if err != nil {
		projectID = 0
	}
	enabled, err := strconv.ParseBool(strings.TrimSpace(os.Getenv("TESTRAIL_ENABLED")))
	if err != nil {
		enabled = false
	}
	return &TestRailConfig{
		Enabled:   enabled,
		Url:       strings.TrimRight(strings.TrimSpace(os.Getenv("TESTRAIL_URL")), "/"),
		Username:  os.Getenv("TESTRAIL_USERNAME"),
		ApiKey:    os.Getenv("TESTRAIL_API_KEY"),
		ProjectID: projectID,
	}
}

// Validate checks everything a remote call needs. A disabled config is always valid.
func (c *TestRailConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Url == "" {
		return fmt.Errorf("%w: TESTRAIL_URL is not configured", errs.ErrConfiguration)
	}
	u, err := url.Parse(c.Url)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%w: TESTRAIL_URL %q is not an http(s) url", errs.ErrConfiguration, c.Url)
	}
	if c.Username == "" {
		return fmt.Errorf("%w: TESTRAIL_USERNAME is not configured", errs.ErrConfiguration)
	}
	if c.ApiKey == "" {
		return fmt.Errorf("%w: TESTRAIL_API_KEY is not configured", errs.ErrConfiguration)
	}
	if c.ProjectID <= 0 {
		return fmt.Errorf("%w: TESTRAIL_PROJECT_ID is not configured", errs.ErrConfiguration)
	}
	return nil
}
