package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/dtnitsch/catalog-crawler/internal/common"
	"github.com/dtnitsch/catalog-crawler/models"
	"github.com/dtnitsch/catalog-crawler/pkg/db"
	"github.com/dtnitsch/catalog-crawler/pkg/storage"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

// Export formats.
const (
	FormatJSONL = "jsonl"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

func Flags() []cli.Flag {
	return append(common.ConfigFlags(),
		&cli.StringFlag{
			Name:  "format",
			Value: FormatJSONL,
			Usage: "Output format: jsonl, json or yaml",
		},
		&cli.StringFlag{
			Name:  "run",
			Usage: "Only export products last saved by this run ID",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Write to this file instead of stdout",
		},
	)
}

func ExportAction(c *cli.Context) error {
	logger := common.NewLogger(c)

	format := c.String("format")
	switch format {
	case FormatJSONL, FormatJSON, FormatYAML:
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown format %q (want jsonl, json or yaml)\n", format)
		os.Exit(1)
	}

	config, err := common.LoadConfig(c)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	database, err := db.Open(config.DBPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(2)
	}
	defer database.Close()

	products, err := database.ListProducts(c.String("run"))
	if err != nil {
		return fmt.Errorf("failed to list products: %w", err)
	}

	var buf bytes.Buffer
	if err := Write(&buf, products, format); err != nil {
		return err
	}

	if path := c.String("output"); path != "" {
		s := &storage.Storage{}
		if err := s.SaveFile(path, buf.Bytes()); err != nil {
			return err
		}
		logger.Info("Exported products", "count", len(products), "file", path)
		return nil
	}

	_, err = os.Stdout.Write(buf.Bytes())
	return err
}

// Write encodes products to w. jsonl writes one record per line.
func Write(w io.Writer, products []models.ProductRecord, format string) error {
	if products == nil {
		products = []models.ProductRecord{}
	}
	switch format {
	case FormatJSONL:
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		for _, p := range products {
			if err := enc.Encode(p); err != nil {
				return fmt.Errorf("error encoding product %s: %w", p.ID, err)
			}
		}
		return nil
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(products); err != nil {
			return fmt.Errorf("error encoding products: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		if err := enc.Encode(products); err != nil {
			return fmt.Errorf("error encoding products: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
