package db

import (
	"fmt"

	dbpkg "github.com/dtnitsch/catalog-crawler/pkg/db"
	"github.com/urfave/cli/v2"
)

// GetRunIDOrLatest returns the run ID from args, or the latest run if not provided
func GetRunIDOrLatest(c *cli.Context, database *dbpkg.DB) (string, error) {
	if c.NArg() > 0 {
		return c.Args().First(), nil
	}

	runs, err := database.ListRuns(1)
	if err != nil {
		return "", fmt.Errorf("failed to get latest run: %w", err)
	}
	if len(runs) == 0 {
		return "", fmt.Errorf("no runs found. Run 'catalog-crawler crawl' first")
	}
	return runs[0].RunID, nil
}

func openDatabase(c *cli.Context) (*dbpkg.DB, error) {
	database, err := dbpkg.Open(c.String("db"))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return database, nil
}
