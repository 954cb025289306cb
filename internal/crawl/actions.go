package crawl

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dtnitsch/catalog-crawler/internal/common"
	"github.com/dtnitsch/catalog-crawler/models"
	"github.com/dtnitsch/catalog-crawler/pkg/caching"
	"github.com/dtnitsch/catalog-crawler/pkg/db"
	"github.com/dtnitsch/catalog-crawler/pkg/extractor"
	"github.com/dtnitsch/catalog-crawler/pkg/fetcher"
	"github.com/dtnitsch/catalog-crawler/pkg/manifest"
	"github.com/dtnitsch/catalog-crawler/pkg/storage"
	"github.com/dtnitsch/catalog-crawler/pkg/traversal"
	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

// Flags for the crawl command, on top of common.ConfigFlags.
func Flags() []cli.Flag {
	return append(common.ConfigFlags(),
		&cli.IntFlag{
			Name:  "workers",
			Usage: "Number of concurrent fetch workers",
		},
		&cli.IntFlag{
			Name:  "max-requests",
			Usage: "Stop after this many requests (0 = unlimited)",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Per-request timeout",
		},
		&cli.StringFlag{
			Name:  "view360",
			Usage: "360 image policy: fixed or probe",
		},
		&cli.StringSliceFlag{
			Name:  "header",
			Usage: "Extra request header as 'Name: value' (repeatable)",
		},
		&cli.StringSliceFlag{
			Name:  "cookie",
			Usage: "Request cookie as name=value (repeatable)",
		},
		&cli.StringFlag{
			Name:  "cache-dir",
			Usage: "Cache fetched pages in this directory",
		},
		&cli.StringFlag{
			Name:  "max-age",
			Value: "1h",
			Usage: "Reuse cached pages younger than this",
		},
		&cli.BoolFlag{
			Name:  "force-fetch",
			Usage: "Ignore cached pages",
		},
		&cli.StringFlag{
			Name:  "results-dir",
			Value: "results",
			Usage: "Directory for the run summary",
		},
		&cli.StringFlag{
			Name:  "manifest-format",
			Value: manifest.FormatYAML,
			Usage: "Run summary format: yaml or json",
		},
	)
}

// Output is printed to stdout when a crawl ends.
type Output struct {
	Status   string `yaml:"status"`
	RunID    string `yaml:"run_id"`
	Records  int    `yaml:"records"`
	Failed   int    `yaml:"failed"`
	Stored   int    `yaml:"stored"`
	Database string `yaml:"database"`
	Summary  string `yaml:"summary,omitempty"`
}

func CrawlAction(c *cli.Context) error {
	logger := common.NewLogger(c)
	startTime := time.Now()

	config, err := common.LoadConfig(c)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	maxAge, err := common.ParseMaxAge(c)
	if err != nil {
		logger.Error("invalid max-age", "error", err)
		os.Exit(1)
	}

	format := c.String("manifest-format")
	if format != manifest.FormatYAML && format != manifest.FormatJSON {
		logger.Error("invalid manifest format", "format", format)
		os.Exit(1)
	}

	var cache *caching.Cache
	if dir := c.String("cache-dir"); dir != "" {
		cache, err = caching.NewCache(dir, maxAge)
		if err != nil {
			logger.Error("failed to initialize page cache", "error", err)
			os.Exit(2)
		}
	}

	database, err := db.Open(config.DBPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(2)
	}
	defer database.Close()

	runID := uuid.NewString()
	if err := database.StartRun(runID, config.SeedURL, config.View360.Policy); err != nil {
		logger.Error("failed to start run", "error", err)
		os.Exit(2)
	}

	f := fetcher.NewFetcher(fetcher.Options{
		Headers: config.Headers,
		Cookies: config.Cookies,
		Timeout: config.RequestTimeout,
		Cache:   cache,
		Logger:  logger,
	})

	assembler := extractor.NewAssembler(config.Selectors)
	assembler.SaleTagFormat = config.SaleTagFormat
	assembler.View360Count = config.View360.Count

	engine := &Engine{
		Controller:  traversal.New(config.SeedURL, assembler, logger),
		Fetcher:     f,
		Sink:        database,
		RunID:       runID,
		Workers:     config.Workers,
		MaxRequests: config.MaxRequests,
		Logger:      logger,
	}
	if config.View360.Policy == models.View360Probe {
		engine.Prober = f
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stats, runErr := engine.Run(ctx)
	if runErr != nil && !Interrupted(runErr) {
		return fmt.Errorf("crawl failed: %w", runErr)
	}

	if err := database.FinishRun(runID, stats.Counts()); err != nil {
		logger.Warn("Failed to finish run in DB", "run_id", runID, "error", err)
	}

	stored, err := database.CountProducts()
	if err != nil {
		logger.Warn("Failed to count stored products", "error", err)
	}

	summaryPath, err := manifest.GenerateSummary(manifest.RunResult{
		RunID:         runID,
		SeedURL:       config.SeedURL,
		View360Policy: config.View360.Policy,
		Started:       startTime,
		Finished:      time.Now(),
		ListingOK:     stats.ListingOK,
		ListingFailed: stats.ListingFailed,
		DetailOK:      stats.DetailOK,
		DetailFailed:  stats.DetailFailed,
		Records:       stats.Records,
		Duplicates:    stats.Duplicates,
		Truncated:     stats.Truncated,
		Errors:        stats.Errors,
		Facets:        stats.Facets,
		Failures:      stats.Failures,
	}, c.String("results-dir"), format, &storage.Storage{})
	if err != nil {
		logger.Warn("Failed to write run summary", "error", err)
	}

	output := Output{
		Status:   status(stats, runErr),
		RunID:    runID,
		Records:  stats.Records,
		Failed:   stats.ListingFailed + stats.DetailFailed,
		Stored:   stored,
		Database: database.Path(),
		Summary:  summaryPath,
	}
	data, err := yaml.Marshal(output)
	if err != nil {
		return fmt.Errorf("error marshalling output: %w", err)
	}
	fmt.Print(string(data))

	return nil
}

func status(stats Stats, runErr error) string {
	switch {
	case runErr != nil:
		return "interrupted"
	case stats.Truncated:
		return "truncated"
	case stats.ListingFailed+stats.DetailFailed > 0:
		return "partial"
	default:
		return "success"
	}
}
