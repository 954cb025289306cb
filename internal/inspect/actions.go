package inspect

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dtnitsch/catalog-crawler/internal/common"
	"github.com/dtnitsch/catalog-crawler/pkg/fetcher"
	"github.com/dtnitsch/catalog-crawler/pkg/probe"
	"github.com/dtnitsch/catalog-crawler/pkg/selectors"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

// SelectorsAction prints the effective selector table after config overrides.
func SelectorsAction(c *cli.Context) error {
	logger := common.NewLogger(c)

	config, err := common.LoadConfig(c)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	return WriteSelectors(os.Stdout, config.Selectors)
}

// WriteSelectors renders table as YAML, fields in name order.
func WriteSelectors(w io.Writer, table selectors.Table) error {
	data, err := yaml.Marshal(table)
	if err != nil {
		return fmt.Errorf("error marshalling selectors: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// ProbeFlags extend the config flags with the probe limit.
func ProbeFlags() []cli.Flag {
	return append(common.ConfigFlags(),
		&cli.IntFlag{
			Name:  "limit",
			Usage: "Maximum frames to probe (default: view360.probe_limit)",
		},
	)
}

// ProbeAction discovers the 360° frames under the base path given as the
// first argument, e.g. //images.example/3d/12345678.
func ProbeAction(c *cli.Context) error {
	logger := common.NewLogger(c)

	if c.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: expected one 360 base path")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  catalog-crawler probe //images.example/3d/12345678")
		os.Exit(1)
	}

	config, err := common.LoadConfig(c)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	limit := config.View360.ProbeLimit
	if c.IsSet("limit") {
		limit = c.Int("limit")
	}

	f := fetcher.NewFetcher(fetcher.Options{
		Headers: config.Headers,
		Cookies: config.Cookies,
		Timeout: config.RequestTimeout,
		Logger:  logger,
	})

	frames, err := probe.Discover(context.Background(), f, c.Args().First(), limit)
	for _, frame := range frames {
		fmt.Println(frame)
	}
	if err != nil {
		return fmt.Errorf("probe stopped after %d frames: %w", len(frames), err)
	}
	logger.Info("Probe finished", "frames", len(frames), "limit", limit)
	return nil
}
