// Package extractor turns a parsed product detail page into a ProductRecord.
// Every function here is pure over one Document.
package extractor

import (
	"strings"

	"github.com/dtnitsch/catalog-crawler/pkg/crawlerr"
)

const catalogSegment = "catalog"

// URLToArticle returns the article id of a detail URL shaped
// scheme://host/catalog/<id>/... The URL is split on "/" as a whole, so
// segment 3 must be "catalog" and segment 4 is returned verbatim.
func URLToArticle(rawURL string) (string, error) {
	parts := strings.Split(rawURL, "/")
	if len(parts) < 5 {
		return "", crawlerr.Structure("url %q has no article segment", rawURL)
	}
	if parts[3] != catalogSegment {
		return "", crawlerr.Structure("url %q: segment 3 is %q, want %q", rawURL, parts[3], catalogSegment)
	}
	return parts[4], nil
}
