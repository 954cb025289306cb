package extractor

import (
	"strconv"
	"strings"

	"github.com/dtnitsch/catalog-crawler/models"
	"github.com/dtnitsch/catalog-crawler/pkg/document"
	"github.com/dtnitsch/catalog-crawler/pkg/selectors"
)

// TitleColorsBrand composes "<brand> / <name>[, <color>]". colors is "" when
// the page has no color label.
func TitleColorsBrand(doc document.Document, table selectors.Table) (title, colors, brand string) {
	brand, _ = doc.Text(table.CSS(selectors.Brand))
	name, _ := doc.Text(table.CSS(selectors.Name))
	colors, _ = doc.Text(table.CSS(selectors.Color))
	title = ComposeTitle(brand, name, colors)
	return title, colors, brand
}

// ComposeTitle joins brand, name and an optional color label.
func ComposeTitle(brand, name, colors string) string {
	if colors == "" {
		return brand + " / " + name
	}
	return brand + " / " + name + ", " + colors
}

// VariantCount counts whitespace-delimited tokens of the color label; every
// token is one selectable variant.
func VariantCount(colors string) int {
	return len(strings.Fields(colors))
}

// MarketingTags returns every advantage list entry, in page order.
func MarketingTags(doc document.Document, table selectors.Table) []string {
	tags := doc.TextAll(table.CSS(selectors.MarketingTags))
	if tags == nil {
		return []string{}
	}
	return tags
}

// Section reads the breadcrumb trail of a listing page.
func Section(doc document.Document, table selectors.Table) []string {
	section := doc.TextAll(table.CSS(selectors.Breadcrumb))
	if section == nil {
		return []string{}
	}
	return section
}

// View360Fixed builds count candidate URLs http:<base>/<n>.jpg for n in 1..count.
// No URL is checked.
func View360Fixed(base string, count int) []string {
	urls := make([]string, 0, count)
	for i := 1; i <= count; i++ {
		urls = append(urls, "http:"+base+"/"+strconv.Itoa(i)+".jpg")
	}
	return urls
}

// Assets collects the zoom image, carousel and the fixed-length 360° sequence.
// Missing attributes give empty values, never errors.
func Assets(doc document.Document, table selectors.Table, view360Count int) models.AssetBundle {
	main := table.Get(selectors.MainImage)
	carousel := table.Get(selectors.CarouselImage)

	bundle := models.AssetBundle{
		Images:  doc.AttrAll(carousel.CSS, carousel.Attr),
		View360: []string{},
		Video:   []string{},
	}
	bundle.MainImage, _ = doc.Attr(main.CSS, main.Attr)
	if bundle.Images == nil {
		bundle.Images = []string{}
	}
	if base, ok := View360Base(doc, table); ok {
		bundle.View360 = View360Fixed(base, view360Count)
	}
	return bundle
}

// View360Base returns the declared 360° base path, if any.
func View360Base(doc document.Document, table selectors.Table) (string, bool) {
	view := table.Get(selectors.View360Base)
	base, ok := doc.Attr(view.CSS, view.Attr)
	return base, ok && base != ""
}

// Metadata reads the additional-info block. The description is stored under
// models.DescriptionKey (empty when absent); every label/value row follows,
// later labels overwriting earlier ones. Rows without a label are skipped.
func Metadata(doc document.Document, table selectors.Table) map[string]string {
	metadata := map[string]string{models.DescriptionKey: ""}

	blocks := doc.Each(table.CSS(selectors.InfoBlock))
	var described bool
	for _, block := range blocks {
		if !described {
			if description, ok := block.Text(table.CSS(selectors.Description)); ok {
				metadata[models.DescriptionKey] = description
				described = true
			}
		}
		for _, row := range block.Each(table.CSS(selectors.InfoRow)) {
			label, ok := row.Text(table.CSS(selectors.InfoLabel))
			if !ok {
				continue
			}
			value, _ := row.Text(table.CSS(selectors.InfoValue))
			metadata[label] = value
		}
	}
	return metadata
}
