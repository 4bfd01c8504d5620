package config

import (
	"os"
	"path/filepath"
)

// SuiteConfig ties a TestRail suite to the part of the feature tree it covers.
type SuiteConfig struct {
	Label       string
	Name        string
	Description string
	Path        string
}

type CorpusConfig struct {
	Root string
	// ReportPath is the YAML file that records tag actions between passes
	ReportPath string
	Suites     []SuiteConfig
}

func NewCorpusConfig() *CorpusConfig {
	root := os.Getenv("FEATURES_ROOT")
	if root == "" {
		root = filepath.Join("src", "test", "resources", "features")
	}
	reportPath := os.Getenv("SYNC_REPORT_PATH")
	if reportPath == "" {
		reportPath = "casesync-report.yaml"
	}
	return &CorpusConfig{
		Root:       root,
		ReportPath: reportPath,
		Suites: []SuiteConfig{
			{
				Label:       "API",
				Name:        "API Test Automation",
				Description: "Automated API tests covering authentication, products, users, and cart functionality",
				Path:        "api",
			},
			{
				Label:       "UI",
				Name:        "UI Test Automation",
				Description: "Automated UI tests covering login, checkout, and sorting functionality using Playwright",
				Path:        "ui",
			},
		},
	}
}

// Suite returns the suite with the given label.
func (c *CorpusConfig) Suite(label string) (SuiteConfig, bool) {
	for _, s := range c.Suites {
		if s.Label == label {
			return s, true
		}
	}
	return SuiteConfig{}, false
}

// SuiteRoot is the directory scanned for the suite.
func (c *CorpusConfig) SuiteRoot(s SuiteConfig) string {
	return filepath.Join(c.Root, s.Path)
}
