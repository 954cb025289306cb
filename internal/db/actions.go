package db

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

func RunsAction(c *cli.Context) error {
	database, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer database.Close()

	runs, err := database.ListRuns(c.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Println("No runs found")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Run ID", "Started", "Listings", "Details", "Failed", "Dupes", "360"})
	for _, r := range runs {
		t.AppendRow(table.Row{
			r.RunID,
			r.StartedAt.Format("2006-01-02 15:04:05"),
			r.ListingOK,
			r.DetailOK,
			r.ListingFailed + r.DetailFailed,
			r.Duplicates,
			r.View360Policy,
		})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()

	stored, err := database.CountProducts()
	if err != nil {
		return fmt.Errorf("failed to count products: %w", err)
	}
	fmt.Printf("\nTotal: %d runs, %d products stored\n", len(runs), stored)
	fmt.Printf("\nTip: Use 'catalog-crawler db run <id>' to see details\n")

	return nil
}

// RunAction shows details for a specific run
func RunAction(c *cli.Context) error {
	database, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer database.Close()

	runID, err := GetRunIDOrLatest(c, database)
	if err != nil {
		return err
	}

	run, err := database.GetRun(runID)
	if err != nil {
		return fmt.Errorf("failed to get run: %w", err)
	}

	errorCounts, err := database.ErrorCounts(runID)
	if err != nil {
		return fmt.Errorf("failed to get run errors: %w", err)
	}

	fmt.Printf("Run %s\n", run.RunID)
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Seed:        %s\n", run.SeedURL)
	fmt.Printf("Started:     %s\n", run.StartedAt.Format("2006-01-02 15:04:05"))
	if run.FinishedAt != nil {
		fmt.Printf("Finished:    %s (%s)\n", run.FinishedAt.Format("2006-01-02 15:04:05"), run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond))
	} else {
		fmt.Printf("Finished:    -\n")
	}
	fmt.Printf("360 policy:  %s\n", run.View360Policy)
	fmt.Printf("Listings:    %d ok, %d failed\n", run.ListingOK, run.ListingFailed)
	fmt.Printf("Details:     %d ok, %d failed\n", run.DetailOK, run.DetailFailed)
	fmt.Printf("Duplicates:  %d\n", run.Duplicates)

	if len(errorCounts) > 0 {
		types := make([]string, 0, len(errorCounts))
		for t := range errorCounts {
			types = append(types, t)
		}
		sort.Strings(types)

		fmt.Printf("\nErrors:\n")
		for _, t := range types {
			fmt.Printf("  %-20s %d\n", t, errorCounts[t])
		}
	}

	if c.Bool("failures") {
		accesses, err := database.ListAccesses(runID)
		if err != nil {
			return fmt.Errorf("failed to list accesses: %w", err)
		}
		fmt.Printf("\nFailed requests:\n")
		for _, a := range accesses {
			if !a.Success {
				fmt.Printf("  [%s] %s %s: %s\n", a.ErrorType, a.Kind, a.URL, a.ErrorMessage)
			}
		}
	}

	return nil
}

// ProductAction prints one stored product as YAML
func ProductAction(c *cli.Context) error {
	if c.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: expected one article ID")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  catalog-crawler db product 12345678")
		os.Exit(1)
	}

	database, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer database.Close()

	product, err := database.GetProduct(c.Args().First())
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(product)
	if err != nil {
		return fmt.Errorf("error marshalling product: %w", err)
	}
	fmt.Print(string(data))
	return nil
}
