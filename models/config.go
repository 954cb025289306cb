package models

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/dtnitsch/catalog-crawler/pkg/selectors"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultSeedURL is the women's mules catalog listing.
const DefaultSeedURL = "https://www.wildberries.ru/catalog/obuv/zhenskaya/sabo-i-myuli/myuli"

// View360 policies.
const (
	View360Fixed = "fixed"
	View360Probe = "probe"
)

// Environment overrides, applied after the config file.
const (
	EnvSeedURL = "CATALOG_SEED_URL"
	EnvDBPath  = "CATALOG_DB_PATH"
)

// View360Config selects how the 360° image sequence is resolved.
type View360Config struct {
	Policy     string `yaml:"policy"`
	Count      int    `yaml:"count"`
	ProbeLimit int    `yaml:"probe_limit"`
}

// CrawlConfig holds everything a crawl run needs.
type CrawlConfig struct {
	SeedURL        string            `yaml:"seed_url"`
	DBPath         string            `yaml:"db_path"`
	Workers        int               `yaml:"workers"`
	MaxRequests    int               `yaml:"max_requests"`
	RequestTimeout time.Duration     `yaml:"request_timeout"`
	Headers        map[string]string `yaml:"headers"`
	Cookies        map[string]string `yaml:"cookies"`
	SaleTagFormat  string            `yaml:"sale_tag_format"`
	View360        View360Config     `yaml:"view360"`
	Selectors      selectors.Table   `yaml:"selectors"`
}

// DefaultConfig returns a config that crawls the default seed with the
// built-in selectors.
func DefaultConfig() *CrawlConfig {
	return &CrawlConfig{
		SeedURL:        DefaultSeedURL,
		Workers:        4,
		RequestTimeout: 30 * time.Second,
		Headers: map[string]string{
			"User-Agent":      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
			"Accept-Language": "ru-RU,ru;q=0.9,en-US;q=0.8",
		},
		Cookies:       map[string]string{},
		SaleTagFormat: "Discount %d%%",
		View360: View360Config{
			Policy:     View360Fixed,
			Count:      11,
			ProbeLimit: 64,
		},
		Selectors: selectors.Default(),
	}
}

// LoadConfig reads the YAML file at path over the defaults, then applies the
// .env file and environment overrides. A missing file is not an error.
func LoadConfig(path string) (*CrawlConfig, error) {
	config := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			var file CrawlConfig
			if err := yaml.Unmarshal(data, &file); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
			config.apply(file)
		}
	}

	// .env is optional
	_ = godotenv.Load()
	if v := os.Getenv(EnvSeedURL); v != "" {
		config.SeedURL = v
	}
	if v := os.Getenv(EnvDBPath); v != "" {
		config.DBPath = v
	}

	return config, nil
}

func (c *CrawlConfig) apply(file CrawlConfig) {
	if file.SeedURL != "" {
		c.SeedURL = file.SeedURL
	}
	if file.DBPath != "" {
		c.DBPath = file.DBPath
	}
	if file.Workers > 0 {
		c.Workers = file.Workers
	}
	if file.MaxRequests > 0 {
		c.MaxRequests = file.MaxRequests
	}
	if file.RequestTimeout > 0 {
		c.RequestTimeout = file.RequestTimeout
	}
	for k, v := range file.Headers {
		c.Headers[k] = v
	}
	for k, v := range file.Cookies {
		c.Cookies[k] = v
	}
	if file.SaleTagFormat != "" {
		c.SaleTagFormat = file.SaleTagFormat
	}
	if file.View360.Policy != "" {
		c.View360.Policy = file.View360.Policy
	}
	if file.View360.Count > 0 {
		c.View360.Count = file.View360.Count
	}
	if file.View360.ProbeLimit > 0 {
		c.View360.ProbeLimit = file.View360.ProbeLimit
	}
	c.Selectors = c.Selectors.Merge(file.Selectors)
}

// Validate rejects configs the crawl cannot start with.
func (c *CrawlConfig) Validate() error {
	u, err := url.Parse(c.SeedURL)
	if err != nil {
		return fmt.Errorf("invalid seed_url: %w", err)
	}
	if !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("seed_url must be absolute: %q", c.SeedURL)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be >= 1, got %d", c.Workers)
	}
	if c.MaxRequests < 0 {
		return fmt.Errorf("max_requests must be >= 0, got %d", c.MaxRequests)
	}
	switch c.View360.Policy {
	case View360Fixed, View360Probe:
	default:
		return fmt.Errorf("unknown view360 policy %q", c.View360.Policy)
	}
	if c.View360.Count < 1 {
		return fmt.Errorf("view360 count must be >= 1, got %d", c.View360.Count)
	}
	if c.View360.ProbeLimit < 1 {
		return fmt.Errorf("view360 probe_limit must be >= 1, got %d", c.View360.ProbeLimit)
	}
	if c.SaleTagFormat != "" && strings.Contains(fmt.Sprintf(c.SaleTagFormat, 0), "%!") {
		return fmt.Errorf("sale_tag_format must hold exactly one integer verb such as %%d, got %q", c.SaleTagFormat)
	}
	if err := c.Selectors.Validate(); err != nil {
		return fmt.Errorf("invalid selectors: %w", err)
	}
	return nil
}
