package common

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/dtnitsch/catalog-crawler/models"
	"github.com/lmittmann/tint"
	"github.com/urfave/cli/v2"
)

// ConfigFlags are shared by every command that loads a crawl config.
func ConfigFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Value: "config.yaml",
			Usage: "YAML config file; missing file means defaults",
		},
		&cli.StringFlag{
			Name:    "seed-url",
			Usage:   "Catalog listing to start from",
			EnvVars: []string{models.EnvSeedURL},
		},
		&cli.StringFlag{
			Name:    "db",
			Usage:   "SQLite database path (default: next to the binary)",
			EnvVars: []string{models.EnvDBPath},
		},
	}
}

// Log formats for --log-format.
const (
	LogFormatJSON = "json"
	LogFormatText = "text"
)

// NewLogger builds the stderr logger; --quiet keeps errors only and
// --verbose enables debug output.
func NewLogger(c *cli.Context) *slog.Logger {
	return newLogger(os.Stderr, c.String("log-format"), c.Bool("quiet"), c.Bool("verbose"))
}

func newLogger(w io.Writer, format string, quiet, verbose bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if quiet {
		logLevel = slog.LevelError
	} else if verbose {
		logLevel = slog.LevelDebug
	}
	if format == LogFormatText {
		return slog.New(tint.NewHandler(w, &tint.Options{
			Level:      logLevel,
			TimeFormat: time.Kitchen,
		}))
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: logLevel}))
}

// LoadConfig reads --config and applies whichever crawl flags were set on
// the command line. The result is validated.
func LoadConfig(c *cli.Context) (*models.CrawlConfig, error) {
	config, err := models.LoadConfig(c.String("config"))
	if err != nil {
		return nil, err
	}

	if c.IsSet("seed-url") {
		config.SeedURL = SanitizeURL(c.String("seed-url"))
	}
	if c.IsSet("db") {
		config.DBPath = c.String("db")
	}
	if c.IsSet("workers") {
		config.Workers = c.Int("workers")
	}
	if c.IsSet("max-requests") {
		config.MaxRequests = c.Int("max-requests")
	}
	if c.IsSet("timeout") {
		config.RequestTimeout = c.Duration("timeout")
	}
	if c.IsSet("view360") {
		config.View360.Policy = strings.ToLower(c.String("view360"))
	}
	for _, header := range c.StringSlice("header") {
		name, value, ok := strings.Cut(header, ":")
		if !ok {
			return nil, fmt.Errorf("invalid --header %q, want Name: value", header)
		}
		config.Headers[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}
	for _, cookie := range c.StringSlice("cookie") {
		name, value, ok := strings.Cut(cookie, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --cookie %q, want name=value", cookie)
		}
		config.Cookies[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// ParseMaxAge reads --max-age; --force-fetch disables the page cache.
func ParseMaxAge(c *cli.Context) (time.Duration, error) {
	if c.Bool("force-fetch") {
		return 0, nil
	}
	maxAge, err := time.ParseDuration(c.String("max-age"))
	if err != nil {
		return 0, fmt.Errorf("invalid max-age duration: %w", err)
	}
	return maxAge, nil
}

var markdownLinkPattern = regexp.MustCompile(`^\[.*?\]\((https?://[^\)]+)\)$`)

// SanitizeURL performs basic cleanup on URLs to handle common copy-paste issues.
// Removes whitespace, trailing punctuation and markdown link syntax.
func SanitizeURL(rawURL string) string {
	// Trim all whitespace from edges
	cleaned := strings.TrimSpace(rawURL)

	// Extract URL from markdown link format: [text](url) -> url
	if matches := markdownLinkPattern.FindStringSubmatch(cleaned); len(matches) > 1 {
		cleaned = matches[1]
	}

	// Remove common trailing punctuation from copy-paste errors
	trailingChars := []string{",", ".", ")", "}", "]", "\"", "'", ">", ";"}
	for _, char := range trailingChars {
		cleaned = strings.TrimSuffix(cleaned, char)
	}

	// Remove leading formatting artifacts
	leadingChars := []string{"(", "[", "<", "\"", "'"}
	for _, char := range leadingChars {
		cleaned = strings.TrimPrefix(cleaned, char)
	}

	return strings.TrimSpace(cleaned)
}
