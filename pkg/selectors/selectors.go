// Package selectors holds the versioned table of CSS selectors the extractors
// read the target storefront markup with.
package selectors

import (
	"fmt"
	"sort"
)

// DefaultVersion names the markup revision the defaults were written against.
const DefaultVersion = "2021-catalog-v1"

// Logical field names. product_link is evaluated inside a product_card match,
// description and info_row inside info_block, info_label and info_value inside
// an info_row.
const (
	Breadcrumb    = "breadcrumb"
	ProductCard   = "product_card"
	ProductLink   = "product_link"
	NextPage      = "next_page"
	Brand         = "brand"
	Name          = "name"
	Color         = "color"
	CurrentPrice  = "current_price"
	OriginalPrice = "original_price"
	MainImage     = "main_image"
	CarouselImage = "carousel_image"
	View360Base   = "view360_base"
	MarketingTags = "marketing_tags"
	InfoBlock     = "info_block"
	Description   = "description"
	InfoRow       = "info_row"
	InfoLabel     = "info_label"
	InfoValue     = "info_value"
)

// Selector is a CSS selector plus, for attribute fields, the attribute to read.
type Selector struct {
	CSS  string `yaml:"css" json:"css"`
	Attr string `yaml:"attr,omitempty" json:"attr,omitempty"`
}

// Table maps logical field names to selectors.
type Table struct {
	Version string              `yaml:"version" json:"version"`
	Fields  map[string]Selector `yaml:"fields" json:"fields"`
}

// Default returns a fresh copy of the built-in table.
func Default() Table {
	return Table{
		Version: DefaultVersion,
		Fields: map[string]Selector{
			Breadcrumb:    {CSS: "ul.bread-crumbs span"},
			ProductCard:   {CSS: "div.dtList.i-dtList.j-card-item"},
			ProductLink:   {CSS: "a.ref_goods_n_p.j-open-full-product-card", Attr: "href"},
			NextPage:      {CSS: "a.pagination-next", Attr: "href"},
			Brand:         {CSS: "div.brand-and-name.j-product-title span.brand"},
			Name:          {CSS: "div.brand-and-name.j-product-title span.name"},
			Color:         {CSS: "div.color.j-color-name-container span.color"},
			CurrentPrice:  {CSS: "span.final-cost"},
			OriginalPrice: {CSS: "del.c-text-base"},
			MainImage:     {CSS: "img.MagicZoomFullSizeImage", Attr: "src"},
			CarouselImage: {CSS: "a.j-carousel-image", Attr: "href"},
			View360Base:   {CSS: "div.j-3d-container.three-d-container", Attr: "data-path"},
			MarketingTags: {CSS: "li.about-advantages-item"},
			InfoBlock:     {CSS: "div.card-add-info"},
			Description:   {CSS: "span.j-composition"},
			InfoRow:       {CSS: "div.pp"},
			InfoLabel:     {CSS: "b"},
			InfoValue:     {CSS: "span"},
		},
	}
}

// attrFields must carry an attribute name.
var attrFields = []string{ProductLink, NextPage, MainImage, CarouselImage, View360Base}

// Get returns the selector for field. Unknown fields return the zero Selector,
// which matches nothing once Validate has passed.
func (t Table) Get(field string) Selector {
	return t.Fields[field]
}

// CSS is shorthand for Get(field).CSS.
func (t Table) CSS(field string) string {
	return t.Fields[field].CSS
}

// Merge overlays the non-empty entries of override onto a copy of t.
func (t Table) Merge(override Table) Table {
	merged := Table{Version: t.Version, Fields: make(map[string]Selector, len(t.Fields))}
	for k, v := range t.Fields {
		merged.Fields[k] = v
	}
	if override.Version != "" {
		merged.Version = override.Version
	}
	for k, v := range override.Fields {
		if v.CSS == "" {
			continue
		}
		if v.Attr == "" {
			v.Attr = merged.Fields[k].Attr
		}
		merged.Fields[k] = v
	}
	return merged
}

// Validate checks that every built-in field is present and attribute fields
// name their attribute.
func (t Table) Validate() error {
	for _, field := range Names() {
		sel, ok := t.Fields[field]
		if !ok || sel.CSS == "" {
			return fmt.Errorf("selector %q is empty", field)
		}
	}
	for _, field := range attrFields {
		if t.Fields[field].Attr == "" {
			return fmt.Errorf("selector %q needs an attr", field)
		}
	}
	return nil
}

// Names returns the built-in logical field names, sorted.
func Names() []string {
	def := Default()
	names := make([]string, 0, len(def.Fields))
	for k := range def.Fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
