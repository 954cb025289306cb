package models

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dtnitsch/catalog-crawler/pkg/selectors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	config, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}
	if config.SeedURL != DefaultSeedURL {
		t.Errorf("SeedURL = %q, want default", config.SeedURL)
	}
	if config.View360.Policy != View360Fixed || config.View360.Count != 11 {
		t.Errorf("View360 = %+v, want fixed/11", config.View360)
	}
	if err := config.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestLoadConfig_FileOverrides(t *testing.T) {
	path := writeConfig(t, `
seed_url: https://shop.example/catalog/shoes
workers: 8
request_timeout: 5s
headers:
  Accept-Language: en-US
cookies:
  __region: "77"
sale_tag_format: "Скидка %d%%"
view360:
  policy: probe
selectors:
  fields:
    current_price:
      css: ins.final
`)
	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}

	if config.SeedURL != "https://shop.example/catalog/shoes" {
		t.Errorf("SeedURL = %q", config.SeedURL)
	}
	if config.Workers != 8 {
		t.Errorf("Workers = %d, want 8", config.Workers)
	}
	if config.RequestTimeout != 5*time.Second {
		t.Errorf("RequestTimeout = %v, want 5s", config.RequestTimeout)
	}
	if config.Headers["Accept-Language"] != "en-US" || config.Headers["User-Agent"] == "" {
		t.Errorf("Headers not merged: %v", config.Headers)
	}
	if config.Cookies["__region"] != "77" {
		t.Errorf("Cookies = %v", config.Cookies)
	}
	if config.View360.Policy != View360Probe || config.View360.Count != 11 {
		t.Errorf("View360 = %+v", config.View360)
	}
	if got := config.Selectors.CSS(selectors.CurrentPrice); got != "ins.final" {
		t.Errorf("current_price selector = %q", got)
	}
	if got := config.Selectors.CSS(selectors.Breadcrumb); got == "" {
		t.Error("default breadcrumb selector lost in merge")
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv(EnvSeedURL, "https://env.example/catalog/x")
	t.Setenv(EnvDBPath, "/tmp/env.db")

	config, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}
	if config.SeedURL != "https://env.example/catalog/x" || config.DBPath != "/tmp/env.db" {
		t.Errorf("env not applied: seed=%q db=%q", config.SeedURL, config.DBPath)
	}
}

func TestLoadConfig_BadYAML(t *testing.T) {
	path := writeConfig(t, "workers: [not a number")
	if _, err := LoadConfig(path); err == nil {
		t.Error("LoadConfig() accepted malformed YAML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *CrawlConfig)
	}{
		{name: "relative seed", mutate: func(c *CrawlConfig) { c.SeedURL = "/catalog/shoes" }},
		{name: "zero workers", mutate: func(c *CrawlConfig) { c.Workers = 0 }},
		{name: "unknown policy", mutate: func(c *CrawlConfig) { c.View360.Policy = "guess" }},
		{name: "zero count", mutate: func(c *CrawlConfig) { c.View360.Count = 0 }},
		{name: "sale tag without verb", mutate: func(c *CrawlConfig) { c.SaleTagFormat = "Sale" }},
		{name: "sale tag with two verbs", mutate: func(c *CrawlConfig) { c.SaleTagFormat = "%d of %d" }},
		{name: "sale tag with string verb", mutate: func(c *CrawlConfig) { c.SaleTagFormat = "Sale %s" }},
		{name: "sale tag with bare percent", mutate: func(c *CrawlConfig) { c.SaleTagFormat = "Sale 20%" }},
		{name: "empty selector", mutate: func(c *CrawlConfig) { c.Selectors.Fields[selectors.Brand] = selectors.Selector{} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)
			if err := config.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

func TestValidate_SaleTagFormats(t *testing.T) {
	for _, format := range []string{"", "Discount %d%%", "Скидка %d%%", "-%3d%%"} {
		config := DefaultConfig()
		config.SaleTagFormat = format
		if err := config.Validate(); err != nil {
			t.Errorf("Validate(%q) error = %v", format, err)
		}
	}
}
