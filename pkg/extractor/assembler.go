package extractor

import (
	"fmt"

	"github.com/dtnitsch/catalog-crawler/models"
	"github.com/dtnitsch/catalog-crawler/pkg/document"
	"github.com/dtnitsch/catalog-crawler/pkg/selectors"
)

// DefaultView360Count is the number of 360° frames the storefront serves.
const DefaultView360Count = 11

// Assembler composes the field extractors into one ProductRecord.
type Assembler struct {
	Selectors     selectors.Table
	SaleTagFormat string
	View360Count  int
}

// NewAssembler returns an Assembler over table with the default tag format
// and 360° count.
func NewAssembler(table selectors.Table) *Assembler {
	return &Assembler{
		Selectors:     table,
		SaleTagFormat: DefaultSaleTagFormat,
		View360Count:  DefaultView360Count,
	}
}

// Product builds the record for the detail page doc fetched from rawURL. Any
// fatal field error fails the whole record.
func (a *Assembler) Product(rawURL string, doc document.Document, ctx models.CrawlContext) (models.ProductRecord, error) {
	article, err := URLToArticle(rawURL)
	if err != nil {
		return models.ProductRecord{}, err
	}

	title, colors, brand := TitleColorsBrand(doc, a.Selectors)

	price, err := Price(doc, a.Selectors, a.SaleTagFormat)
	if err != nil {
		return models.ProductRecord{}, fmt.Errorf("article %s: %w", article, err)
	}

	count := a.View360Count
	if count < 1 {
		count = DefaultView360Count
	}

	return models.ProductRecord{
		ID:            article,
		URL:           rawURL,
		Title:         title,
		MarketingTags: MarketingTags(doc, a.Selectors),
		Brand:         brand,
		Section:       ctx.Section(),
		Price:         price,
		Stock:         models.UnknownStock(),
		Assets:        Assets(doc, a.Selectors, count),
		Metadata:      Metadata(doc, a.Selectors),
		VariantCount:  VariantCount(colors),
	}, nil
}
