package manifest

import (
	"encoding/json"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/dtnitsch/catalog-crawler/pkg/storage"
	"gopkg.in/yaml.v3"
)

func sampleResult() RunResult {
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return RunResult{
		RunID:         "run-1",
		SeedURL:       "https://shop.example/catalog/mules",
		View360Policy: "fixed",
		Started:       started,
		Finished:      started.Add(90 * time.Second),
		ListingOK:     2,
		ListingFailed: 1,
		DetailOK:      3,
		DetailFailed:  1,
		Records:       3,
		Duplicates:    4,
		Errors:        map[string]int{"price_parse": 1, "transient_fetch": 1},
		Facets:        map[string]int{"brand:Acme": 2, "brand:Zeta": 1, "tag:Hit": 3},
		Failures: []Failure{
			{URL: "https://shop.example/catalog/9/detail.aspx", Kind: "detail", ErrorType: "price_parse", ErrorMessage: "bad price"},
		},
	}
}

func TestBuild(t *testing.T) {
	m := Build(sampleResult())

	if m.GeneratedAt != "2026-03-01T12:01:30Z" {
		t.Errorf("GeneratedAt = %q", m.GeneratedAt)
	}
	if m.Duration != "1m30s" {
		t.Errorf("Duration = %q, want 1m30s", m.Duration)
	}
	if m.Listings != (KindSummary{OK: 2, Failed: 1}) || m.Details != (KindSummary{OK: 3, Failed: 1}) {
		t.Errorf("kind summaries = %+v / %+v", m.Listings, m.Details)
	}
	if !reflect.DeepEqual(m.TopBrands, []string{"Acme:2", "Zeta:1"}) {
		t.Errorf("TopBrands = %v", m.TopBrands)
	}
	if !reflect.DeepEqual(m.TopTags, []string{"Hit:3"}) {
		t.Errorf("TopTags = %v", m.TopTags)
	}
	if len(m.TopSections) != 0 {
		t.Errorf("TopSections = %v, want empty", m.TopSections)
	}
}

func TestGenerateSummary_JSON(t *testing.T) {
	s := &storage.Storage{}
	dir := filepath.Join(t.TempDir(), "results")

	path, err := GenerateSummary(sampleResult(), dir, FormatJSON, s)
	if err != nil {
		t.Fatalf("GenerateSummary() error = %v", err)
	}
	if path != filepath.Join(dir, "summary-run-1.json") {
		t.Errorf("path = %q", path)
	}

	data, err := s.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	var got RunManifest
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("manifest is not JSON: %v", err)
	}
	if got.RunID != "run-1" || got.Records != 3 || len(got.Failures) != 1 {
		t.Errorf("manifest = %+v", got)
	}
}

func TestGenerateSummary_YAML(t *testing.T) {
	s := &storage.Storage{}
	path, err := GenerateSummary(sampleResult(), t.TempDir(), FormatYAML, s)
	if err != nil {
		t.Fatalf("GenerateSummary() error = %v", err)
	}

	data, err := s.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	var got RunManifest
	if err := yaml.Unmarshal(data, &got); err != nil {
		t.Fatalf("manifest is not YAML: %v", err)
	}
	if got.Errors["price_parse"] != 1 || got.Duplicates != 4 {
		t.Errorf("manifest = %+v", got)
	}
}

func TestGenerateSummary_UnknownFormat(t *testing.T) {
	if _, err := GenerateSummary(sampleResult(), t.TempDir(), "xml", &storage.Storage{}); err == nil {
		t.Error("GenerateSummary(xml) error = nil")
	}
}
