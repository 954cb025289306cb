package main

import (
	"fmt"
	"os"

	"github.com/dtnitsch/catalog-crawler/internal/common"
	"github.com/dtnitsch/catalog-crawler/internal/crawl"
	"github.com/dtnitsch/catalog-crawler/internal/db"
	"github.com/dtnitsch/catalog-crawler/internal/export"
	"github.com/dtnitsch/catalog-crawler/internal/inspect"
	"github.com/dtnitsch/catalog-crawler/models"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "catalog-crawler",
		Usage: "Crawl a paginated storefront catalog into product records",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "Only log errors",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Log debug output",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Value: common.LogFormatJSON,
				Usage: "Log format: json or text",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "crawl",
				Usage:  "Crawl from the seed listing and store every product",
				Flags:  crawl.Flags(),
				Action: crawl.CrawlAction,
			},
			{
				Name:   "export",
				Usage:  "Write stored products as jsonl, json or yaml",
				Flags:  export.Flags(),
				Action: export.ExportAction,
			},
			{
				Name:   "selectors",
				Usage:  "Print the effective selector table",
				Flags:  common.ConfigFlags(),
				Action: inspect.SelectorsAction,
			},
			{
				Name:      "probe",
				Usage:     "Discover the 360 frames under a base path",
				ArgsUsage: "<base-path>",
				Flags:     inspect.ProbeFlags(),
				Action:    inspect.ProbeAction,
			},
			{
				Name:  "db",
				Usage: "Inspect stored runs and products",
				Subcommands: []*cli.Command{
					{
						Name:  "runs",
						Usage: "List crawl runs",
						Flags: append(dbFlags(), &cli.IntFlag{
							Name:  "limit",
							Value: 20,
							Usage: "Maximum runs to list (0 = all)",
						}),
						Action: db.RunsAction,
					},
					{
						Name:      "run",
						Usage:     "Show one run (default: latest)",
						ArgsUsage: "[run-id]",
						Flags: append(dbFlags(), &cli.BoolFlag{
							Name:  "failures",
							Usage: "List every failed request",
						}),
						Action: db.RunAction,
					},
					{
						Name:      "product",
						Usage:     "Show one stored product",
						ArgsUsage: "<article-id>",
						Flags:     dbFlags(),
						Action:    db.ProductAction,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func dbFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			Usage:   "SQLite database path (default: next to the binary)",
			EnvVars: []string{models.EnvDBPath},
		},
	}
}
