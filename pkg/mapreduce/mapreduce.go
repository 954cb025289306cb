// Package mapreduce tallies product facets (brands, sections, tags) across a
// crawl so the run summary can list the most common ones.
package mapreduce

import "github.com/dtnitsch/catalog-crawler/models"

// Facet prefixes used as map keys, e.g. "brand:Acme".
const (
	FacetBrand   = "brand"
	FacetSection = "section"
	FacetTag     = "tag"
)

// Map generates the facet counts of a single product.
func Map(p models.ProductRecord) map[string]int {
	counts := make(map[string]int)
	if p.Brand != "" {
		counts[FacetBrand+":"+p.Brand]++
	}
	if len(p.Section) > 0 {
		counts[FacetSection+":"+p.Section[len(p.Section)-1]]++
	}
	for _, tag := range p.MarketingTags {
		counts[FacetTag+":"+tag]++
	}
	return counts
}

// Reduce aggregates a slice of facet maps into a single map.
func Reduce(intermediate []map[string]int) map[string]int {
	finalResults := make(map[string]int)

	for _, counts := range intermediate {
		for key, count := range counts {
			finalResults[key] += count
		}
	}

	return finalResults
}
