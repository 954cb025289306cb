package common

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dtnitsch/catalog-crawler/models"
	"github.com/urfave/cli/v2"
)

func TestSanitizeURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  https://shop.example/catalog/mules  ", "https://shop.example/catalog/mules"},
		{"https://shop.example/catalog/mules,", "https://shop.example/catalog/mules"},
		{"<https://shop.example/catalog/mules>", "https://shop.example/catalog/mules"},
		{"[mules](https://shop.example/catalog/mules)", "https://shop.example/catalog/mules"},
		{"https://shop.example/catalog/mules?page=2", "https://shop.example/catalog/mules?page=2"},
	}
	for _, tt := range tests {
		if got := SanitizeURL(tt.in); got != tt.want {
			t.Errorf("SanitizeURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// runWithFlags parses args against the crawl flag set and returns the loaded config.
func runWithFlags(t *testing.T, args ...string) (*models.CrawlConfig, error) {
	t.Helper()
	var (
		config *models.CrawlConfig
		err    error
	)
	app := &cli.App{
		Flags: append(ConfigFlags(),
			&cli.IntFlag{Name: "workers"},
			&cli.IntFlag{Name: "max-requests"},
			&cli.DurationFlag{Name: "timeout"},
			&cli.StringFlag{Name: "view360"},
			&cli.StringSliceFlag{Name: "header"},
			&cli.StringSliceFlag{Name: "cookie"},
		),
		Action: func(c *cli.Context) error {
			config, err = LoadConfig(c)
			return nil
		},
	}
	if runErr := app.Run(append([]string{"catalog-crawler"}, args...)); runErr != nil {
		t.Fatalf("app.Run() error = %v", runErr)
	}
	return config, err
}

func TestLoadConfig_FlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "seed_url: https://shop.example/catalog/clogs\nworkers: 2\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	config, err := runWithFlags(t,
		"--config", path,
		"--workers", "8",
		"--view360", "PROBE",
		"--timeout", "5s",
		"--header", "X-Region: moscow",
		"--cookie", "__store=117673",
	)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if config.SeedURL != "https://shop.example/catalog/clogs" {
		t.Errorf("SeedURL = %q, want value from file", config.SeedURL)
	}
	if config.Workers != 8 {
		t.Errorf("Workers = %d, want 8", config.Workers)
	}
	if config.View360.Policy != models.View360Probe {
		t.Errorf("View360.Policy = %q, want probe", config.View360.Policy)
	}
	if config.RequestTimeout != 5*time.Second {
		t.Errorf("RequestTimeout = %v, want 5s", config.RequestTimeout)
	}
	if config.Headers["X-Region"] != "moscow" || config.Cookies["__store"] != "117673" {
		t.Errorf("headers = %v cookies = %v", config.Headers, config.Cookies)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "none.yaml")
	tests := []struct {
		name string
		args []string
	}{
		{"relative seed", []string{"--config", missing, "--seed-url", "/catalog/mules"}},
		{"zero workers", []string{"--config", missing, "--workers", "0"}},
		{"unknown policy", []string{"--config", missing, "--view360", "guess"}},
		{"bad header", []string{"--config", missing, "--header", "no-colon"}},
		{"bad cookie", []string{"--config", missing, "--cookie", "no-equals"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := runWithFlags(t, tt.args...); err == nil {
				t.Error("LoadConfig() error = nil")
			}
		})
	}
}

func TestNewLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, LogFormatJSON, false, false)
	logger.Debug("hidden")
	logger.Info("shown", "url", "https://shop.example")
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}
	if entry["msg"] != "shown" || entry["url"] != "https://shop.example" {
		t.Errorf("entry = %v", entry)
	}

	buf.Reset()
	newLogger(&buf, LogFormatJSON, true, true).Warn("dropped")
	if buf.Len() != 0 {
		t.Errorf("quiet logger wrote %q", buf.String())
	}

	buf.Reset()
	newLogger(&buf, LogFormatText, false, true).Debug("debug line")
	if !bytes.Contains(buf.Bytes(), []byte("debug line")) {
		t.Errorf("text logger output = %q", buf.String())
	}
}
