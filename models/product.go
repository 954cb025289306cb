// Package models defines the records, requests and configuration shared by
// the crawl packages.
package models

// DescriptionKey is the reserved metadata key holding the free-form product description.
const DescriptionKey = "__description"

// UnknownStockCount is reported when the page carries no stock data.
const UnknownStockCount = -1

// ProductRecord is one product detail page, fully extracted.
type ProductRecord struct {
	ID            string            `json:"id" yaml:"id"`
	URL           string            `json:"url" yaml:"url"`
	Title         string            `json:"title" yaml:"title"`
	MarketingTags []string          `json:"marketing_tags" yaml:"marketing_tags"`
	Brand         string            `json:"brand" yaml:"brand"`
	Section       []string          `json:"section" yaml:"section"`
	Price         PriceInfo         `json:"price" yaml:"price"`
	Stock         StockInfo         `json:"stock" yaml:"stock"`
	Assets        AssetBundle       `json:"assets" yaml:"assets"`
	Metadata      map[string]string `json:"metadata" yaml:"metadata"`
	VariantCount  int               `json:"variants" yaml:"variants"`
}

// WithView360 returns a copy of r whose 360° sequence is replaced by urls.
func (r ProductRecord) WithView360(urls []string) ProductRecord {
	r.Assets = r.Assets.clone()
	r.Assets.View360 = append([]string{}, urls...)
	return r
}

// PriceInfo holds the current and original price of a product.
type PriceInfo struct {
	Current  float64 `json:"current" yaml:"current"`
	Original float64 `json:"original" yaml:"original"`
	SaleTag  string  `json:"sale_tag" yaml:"sale_tag"`
}

// SaleRatio is Current/Original, 1 when there is no discount.
func (p PriceInfo) SaleRatio() float64 {
	if p.Original == 0 {
		return 1
	}
	return p.Current / p.Original
}

// StockInfo is always InStock=true, Count=UnknownStockCount for this storefront.
type StockInfo struct {
	InStock bool `json:"in_stock" yaml:"in_stock"`
	Count   int  `json:"count" yaml:"count"`
}

// UnknownStock is the placeholder stock value.
func UnknownStock() StockInfo {
	return StockInfo{InStock: true, Count: UnknownStockCount}
}

// AssetBundle groups every media URL found on a detail page. MainImage is
// empty when the page has no zoom image.
type AssetBundle struct {
	MainImage string   `json:"main_image,omitempty" yaml:"main_image,omitempty"`
	Images    []string `json:"set_images" yaml:"set_images"`
	View360   []string `json:"view360" yaml:"view360"`
	Video     []string `json:"video" yaml:"video"`
}

func (a AssetBundle) clone() AssetBundle {
	return AssetBundle{
		MainImage: a.MainImage,
		Images:    append([]string{}, a.Images...),
		View360:   append([]string{}, a.View360...),
		Video:     append([]string{}, a.Video...),
	}
}
