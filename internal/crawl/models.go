package crawl

import (
	"context"

	"github.com/dtnitsch/catalog-crawler/models"
	"github.com/dtnitsch/catalog-crawler/pkg/db"
	"github.com/dtnitsch/catalog-crawler/pkg/document"
	"github.com/dtnitsch/catalog-crawler/pkg/fetcher"
	"github.com/dtnitsch/catalog-crawler/pkg/manifest"
	"github.com/dtnitsch/catalog-crawler/pkg/traversal"
)

// PageFetcher is the part of fetcher.Fetcher the engine needs.
type PageFetcher interface {
	GetHtml(ctx context.Context, url string) (document.Document, *fetcher.Page, error)
}

// Sink receives records and access logs. *db.DB satisfies it.
type Sink interface {
	SaveProduct(runID string, p models.ProductRecord) error
	RecordAccess(a db.Access) error
}

// Result holds the outcome of one processed request.
type Result struct {
	Request   models.Request
	Delta     traversal.State
	Requests  []models.Request
	Records   []models.ProductRecord
	Error     error
	ErrorType string
}

// Stats summarizes a finished or interrupted run.
type Stats struct {
	State         traversal.State
	ListingOK     int
	ListingFailed int
	DetailOK      int
	DetailFailed  int
	Records       int
	Duplicates    int
	Truncated     bool
	Errors        map[string]int
	Facets        map[string]int
	Failures      []manifest.Failure
}

// Counts converts the stats to the counters stored on the run row.
func (s Stats) Counts() db.RunCounts {
	return db.RunCounts{
		ListingOK:     s.ListingOK,
		ListingFailed: s.ListingFailed,
		DetailOK:      s.DetailOK,
		DetailFailed:  s.DetailFailed,
		Duplicates:    s.Duplicates,
	}
}
