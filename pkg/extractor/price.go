package extractor

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dtnitsch/catalog-crawler/models"
	"github.com/dtnitsch/catalog-crawler/pkg/crawlerr"
	"github.com/dtnitsch/catalog-crawler/pkg/document"
	"github.com/dtnitsch/catalog-crawler/pkg/selectors"
)

// DefaultSaleTagFormat renders the discount percentage.
const DefaultSaleTagFormat = "Discount %d%%"

// ParsePrice drops the trailing currency token, joins the remaining tokens
// without separators and parses the result: "1 299 ₽" is 1299.
func ParsePrice(raw string) (float64, error) {
	tokens := strings.Fields(raw)
	if len(tokens) < 2 {
		return 0, crawlerr.Price("no amount before currency in %q", raw)
	}
	amount := strings.Join(tokens[:len(tokens)-1], "")
	value, err := strconv.ParseFloat(amount, 64)
	if err != nil {
		return 0, crawlerr.Price("%q is not numeric", amount)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, crawlerr.Price("%q is not a finite number", amount)
	}
	return value, nil
}

// DiscountPercent is 100*(1-current/original) truncated to an integer.
// It is computed as 100*(original-current)/original so that exact decimal
// prices do not lose a point to float rounding.
func DiscountPercent(current, original float64) (int, error) {
	if original <= 0 {
		return 0, crawlerr.Price("original price %v is not positive", original)
	}
	if current > original {
		return 0, crawlerr.Price("current price %v exceeds original %v", current, original)
	}
	pct := 100 * (original - current) / original
	return int(math.Floor(pct + 1e-9)), nil
}

// NewPriceInfo builds the price record. hasOriginal is false when the page
// shows no crossed-out price; original then equals current and there is no tag.
func NewPriceInfo(current, original float64, hasOriginal bool, tagFormat string) (models.PriceInfo, error) {
	if !hasOriginal {
		return models.PriceInfo{Current: current, Original: current}, nil
	}
	pct, err := DiscountPercent(current, original)
	if err != nil {
		return models.PriceInfo{}, err
	}
	if tagFormat == "" {
		tagFormat = DefaultSaleTagFormat
	}
	return models.PriceInfo{
		Current:  current,
		Original: original,
		SaleTag:  fmt.Sprintf(tagFormat, pct),
	}, nil
}

// Price reads the current and crossed-out price nodes.
func Price(doc document.Document, table selectors.Table, tagFormat string) (models.PriceInfo, error) {
	currentRaw, ok := doc.Text(table.CSS(selectors.CurrentPrice))
	if !ok {
		return models.PriceInfo{}, crawlerr.Price("current price not found")
	}
	current, err := ParsePrice(currentRaw)
	if err != nil {
		return models.PriceInfo{}, fmt.Errorf("current price: %w", err)
	}

	originalRaw, hasOriginal := doc.Text(table.CSS(selectors.OriginalPrice))
	var original float64
	if hasOriginal {
		original, err = ParsePrice(originalRaw)
		if err != nil {
			return models.PriceInfo{}, fmt.Errorf("original price: %w", err)
		}
	}
	return NewPriceInfo(current, original, hasOriginal, tagFormat)
}
