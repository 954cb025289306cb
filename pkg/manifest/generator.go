package manifest

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dtnitsch/catalog-crawler/pkg/mapreduce"
	"github.com/dtnitsch/catalog-crawler/pkg/storage"
	"gopkg.in/yaml.v3"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// topFacets is how many brands, sections and tags the summary lists.
const topFacets = 10

// RunResult is what the crawl engine hands over when a run ends.
type RunResult struct {
	RunID         string
	SeedURL       string
	View360Policy string
	Started       time.Time
	Finished      time.Time
	ListingOK     int
	ListingFailed int
	DetailOK      int
	DetailFailed  int
	Records       int
	Duplicates    int
	Truncated     bool
	Errors        map[string]int
	Facets        map[string]int
	Failures      []Failure
}

// Build turns a run result into its manifest.
func Build(result RunResult) RunManifest {
	return RunManifest{
		RunID:         result.RunID,
		GeneratedAt:   result.Finished.Format(time.RFC3339),
		SeedURL:       result.SeedURL,
		View360Policy: result.View360Policy,
		Duration:      result.Finished.Sub(result.Started).Round(time.Millisecond).String(),
		Listings:      KindSummary{OK: result.ListingOK, Failed: result.ListingFailed},
		Details:       KindSummary{OK: result.DetailOK, Failed: result.DetailFailed},
		Records:       result.Records,
		Duplicates:    result.Duplicates,
		Truncated:     result.Truncated,
		Errors:        result.Errors,
		TopBrands:     mapreduce.TopN(result.Facets, mapreduce.FacetBrand, topFacets),
		TopSections:   mapreduce.TopN(result.Facets, mapreduce.FacetSection, topFacets),
		TopTags:       mapreduce.TopN(result.Facets, mapreduce.FacetTag, topFacets),
		Failures:      result.Failures,
	}
}

// GenerateSummary writes the manifest for result under dir in the given
// format and returns the path of the written file.
func GenerateSummary(result RunResult, dir, format string, s *storage.Storage) (string, error) {
	manifest := Build(result)

	var (
		data []byte
		err  error
	)
	switch format {
	case FormatJSON, "":
		format = FormatJSON
		data, err = json.MarshalIndent(manifest, "", "  ")
	case FormatYAML:
		data, err = yaml.Marshal(manifest)
	default:
		return "", fmt.Errorf("unknown manifest format %q", format)
	}
	if err != nil {
		return "", fmt.Errorf("error marshalling manifest: %w", err)
	}

	manifestPath := filepath.Join(dir, fmt.Sprintf("summary-%s.%s", result.RunID, format))
	if err := s.SaveFile(manifestPath, data); err != nil {
		return "", fmt.Errorf("error saving manifest: %w", err)
	}

	return manifestPath, nil
}
