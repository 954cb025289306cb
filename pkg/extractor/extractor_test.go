package extractor

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/dtnitsch/catalog-crawler/models"
	"github.com/dtnitsch/catalog-crawler/pkg/crawlerr"
	"github.com/dtnitsch/catalog-crawler/pkg/document"
	"github.com/dtnitsch/catalog-crawler/pkg/selectors"
)

const detailURL = "https://www.wildberries.ru/catalog/12345678/detail.aspx?targetUrl=GP"

const detailPage = `<html><body>
<div class="brand-and-name j-product-title"><span class="brand">Acme</span><span class="name">Shoe</span></div>
<div class="color j-color-name-container"><span class="color">Red White</span></div>
<span class="final-cost">1 040 ₽</span>
<del class="c-text-base">1 300 ₽</del>
<img class="MagicZoomFullSizeImage" src="//images.example/big/1.jpg">
<a class="j-carousel-image" href="//images.example/big/1.jpg"></a>
<a class="j-carousel-image" href="//images.example/big/2.jpg"></a>
<div class="j-3d-container three-d-container" data-path="//images.example/3d/12345678"></div>
<ul><li class="about-advantages-item">Free delivery</li><li class="about-advantages-item">Try on</li></ul>
<div class="card-add-info">
  <span class="j-composition">Genuine leather mules.</span>
  <div class="pp"><b>Material</b><span>Leather</span></div>
  <div class="pp"><b>Season</b><span>Summer</span></div>
</div>
</body></html>`

func mustDoc(t *testing.T, html string) document.Document {
	t.Helper()
	doc, err := document.ParseString(html)
	if err != nil {
		t.Fatalf("ParseString() failed: %v", err)
	}
	return doc
}

func TestURLToArticle(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{name: "detail page", url: detailURL, want: "12345678"},
		{name: "trailing slash", url: "https://shop.example/catalog/987/", want: "987"},
		{name: "id kept verbatim", url: "http://shop.example/catalog/A-01/detail.aspx", want: "A-01"},
		{name: "wrong segment", url: "https://shop.example/brands/987/detail.aspx", wantErr: true},
		{name: "missing id", url: "https://shop.example/catalog", wantErr: true},
		{name: "relative url", url: "/catalog/987/detail.aspx", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := URLToArticle(tt.url)
			if (err != nil) != tt.wantErr {
				t.Fatalf("URLToArticle() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, crawlerr.ErrFatalStructure) {
					t.Errorf("URLToArticle() error class = %q, want fatal_structure", crawlerr.Classify(err))
				}
				return
			}
			if got != tt.want {
				t.Errorf("URLToArticle() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		raw     string
		want    float64
		wantErr bool
	}{
		{raw: "1 299 ₽", want: 1299},
		{raw: "1 299 ₽", want: 1299},
		{raw: "  80 руб.  ", want: 80},
		{raw: "12.50 $", want: 12.5},
		{raw: "₽", wantErr: true},
		{raw: "", wantErr: true},
		{raw: "free shipping ₽", wantErr: true},
		{raw: "NaN ₽", wantErr: true},
		{raw: "Inf ₽", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParsePrice(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePrice(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, crawlerr.ErrPriceParse) {
				t.Errorf("ParsePrice(%q) error is not a price parse error: %v", tt.raw, err)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParsePrice(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNewPriceInfo(t *testing.T) {
	tests := []struct {
		name        string
		current     float64
		original    float64
		hasOriginal bool
		wantTag     string
		wantRatio   float64
		wantErr     bool
	}{
		{name: "twenty percent", current: 80, original: 100, hasOriginal: true, wantTag: "Discount 20%", wantRatio: 0.8},
		{name: "truncates", current: 1040, original: 1300, hasOriginal: true, wantTag: "Discount 20%", wantRatio: 0.8},
		{name: "truncates down", current: 67, original: 100, hasOriginal: true, wantTag: "Discount 33%", wantRatio: 0.67},
		{name: "equal prices", current: 100, original: 100, hasOriginal: true, wantTag: "Discount 0%", wantRatio: 1},
		{name: "no original", current: 80, wantTag: "", wantRatio: 1},
		{name: "zero original", current: 80, original: 0, hasOriginal: true, wantErr: true},
		{name: "negative original", current: 80, original: -5, hasOriginal: true, wantErr: true},
		{name: "current above original", current: 120, original: 100, hasOriginal: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			price, err := NewPriceInfo(tt.current, tt.original, tt.hasOriginal, "")
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewPriceInfo() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, crawlerr.ErrPriceParse) {
					t.Errorf("NewPriceInfo() error class = %q", crawlerr.Classify(err))
				}
				return
			}
			if price.SaleTag != tt.wantTag {
				t.Errorf("SaleTag = %q, want %q", price.SaleTag, tt.wantTag)
			}
			if got := price.SaleRatio(); fmt.Sprintf("%.6f", got) != fmt.Sprintf("%.6f", tt.wantRatio) {
				t.Errorf("SaleRatio() = %v, want %v", got, tt.wantRatio)
			}
			if !tt.hasOriginal && price.Original != price.Current {
				t.Errorf("Original = %v, want current %v", price.Original, price.Current)
			}
		})
	}
}

func TestNewPriceInfo_CustomFormat(t *testing.T) {
	price, err := NewPriceInfo(75, 100, true, "Скидка %d%%")
	if err != nil {
		t.Fatalf("NewPriceInfo() failed: %v", err)
	}
	if price.SaleTag != "Скидка 25%" {
		t.Errorf("SaleTag = %q, want %q", price.SaleTag, "Скидка 25%")
	}
}

func TestPrice_MissingCurrent(t *testing.T) {
	doc := mustDoc(t, `<html><body><del class="c-text-base">100 ₽</del></body></html>`)
	_, err := Price(doc, selectors.Default(), "")
	if !errors.Is(err, crawlerr.ErrPriceParse) {
		t.Errorf("Price() error = %v, want price parse error", err)
	}
}

func TestTitleColorsBrand(t *testing.T) {
	table := selectors.Default()

	tests := []struct {
		name         string
		html         string
		wantTitle    string
		wantColors   string
		wantBrand    string
		wantVariants int
	}{
		{
			name:         "with color",
			html:         detailPage,
			wantTitle:    "Acme / Shoe, Red White",
			wantColors:   "Red White",
			wantBrand:    "Acme",
			wantVariants: 2,
		},
		{
			name:         "without color",
			html:         `<div class="brand-and-name j-product-title"><span class="brand">Acme</span><span class="name">Shoe</span></div>`,
			wantTitle:    "Acme / Shoe",
			wantColors:   "",
			wantBrand:    "Acme",
			wantVariants: 0,
		},
		{
			name:         "blank color label",
			html:         `<div class="brand-and-name j-product-title"><span class="brand">Acme</span><span class="name">Shoe</span></div><div class="color j-color-name-container"><span class="color">  </span></div>`,
			wantTitle:    "Acme / Shoe",
			wantColors:   "",
			wantBrand:    "Acme",
			wantVariants: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, colors, brand := TitleColorsBrand(mustDoc(t, tt.html), table)
			if title != tt.wantTitle {
				t.Errorf("title = %q, want %q", title, tt.wantTitle)
			}
			if colors != tt.wantColors {
				t.Errorf("colors = %q, want %q", colors, tt.wantColors)
			}
			if brand != tt.wantBrand {
				t.Errorf("brand = %q, want %q", brand, tt.wantBrand)
			}
			if got := VariantCount(colors); got != tt.wantVariants {
				t.Errorf("VariantCount() = %d, want %d", got, tt.wantVariants)
			}
		})
	}
}

func TestAssets(t *testing.T) {
	bundle := Assets(mustDoc(t, detailPage), selectors.Default(), DefaultView360Count)

	if bundle.MainImage != "//images.example/big/1.jpg" {
		t.Errorf("MainImage = %q", bundle.MainImage)
	}
	wantImages := []string{"//images.example/big/1.jpg", "//images.example/big/2.jpg"}
	if !reflect.DeepEqual(bundle.Images, wantImages) {
		t.Errorf("Images = %v, want %v", bundle.Images, wantImages)
	}
	if len(bundle.View360) != 11 {
		t.Fatalf("View360 has %d urls, want 11", len(bundle.View360))
	}
	for i, u := range bundle.View360 {
		want := fmt.Sprintf("http://images.example/3d/12345678/%d.jpg", i+1)
		if u != want {
			t.Errorf("View360[%d] = %q, want %q", i, u, want)
		}
	}
	if bundle.Video == nil || len(bundle.Video) != 0 {
		t.Errorf("Video = %#v, want empty non-nil", bundle.Video)
	}
}

func TestAssets_Empty(t *testing.T) {
	bundle := Assets(mustDoc(t, `<html><body><p>nothing</p></body></html>`), selectors.Default(), DefaultView360Count)

	if bundle.MainImage != "" {
		t.Errorf("MainImage = %q, want empty", bundle.MainImage)
	}
	if bundle.Images == nil || len(bundle.Images) != 0 {
		t.Errorf("Images = %#v, want empty non-nil", bundle.Images)
	}
	if bundle.View360 == nil || len(bundle.View360) != 0 {
		t.Errorf("View360 = %#v, want empty non-nil", bundle.View360)
	}
}

func TestView360Fixed(t *testing.T) {
	got := View360Fixed("//cdn/3d/1", 3)
	want := []string{"http://cdn/3d/1/1.jpg", "http://cdn/3d/1/2.jpg", "http://cdn/3d/1/3.jpg"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("View360Fixed() = %v, want %v", got, want)
	}
}

func TestMetadata(t *testing.T) {
	tests := []struct {
		name string
		html string
		want map[string]string
	}{
		{
			name: "description and rows",
			html: detailPage,
			want: map[string]string{
				models.DescriptionKey: "Genuine leather mules.",
				"Material":            "Leather",
				"Season":              "Summer",
			},
		},
		{
			name: "last write wins",
			html: `<div class="card-add-info">
				<div class="pp"><b>Material</b><span>Leather</span></div>
				<div class="pp"><b>Material</b><span>Suede</span></div>
			</div>`,
			want: map[string]string{models.DescriptionKey: "", "Material": "Suede"},
		},
		{
			name: "row without label skipped",
			html: `<div class="card-add-info"><div class="pp"><span>orphan</span></div><div class="pp"><b>Heel</b></div></div>`,
			want: map[string]string{models.DescriptionKey: "", "Heel": ""},
		},
		{
			name: "no info block",
			html: `<p>bare</p>`,
			want: map[string]string{models.DescriptionKey: ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Metadata(mustDoc(t, tt.html), selectors.Default())
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Metadata() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAssemblerProduct(t *testing.T) {
	a := NewAssembler(selectors.Default())
	ctx := models.NewCrawlContext([]string{"Обувь", "Женская", "Мюли"})

	record, err := a.Product(detailURL, mustDoc(t, detailPage), ctx)
	if err != nil {
		t.Fatalf("Product() failed: %v", err)
	}

	if record.ID != "12345678" || record.URL != detailURL {
		t.Errorf("ID/URL = %q/%q", record.ID, record.URL)
	}
	if record.Title != "Acme / Shoe, Red White" || record.Brand != "Acme" {
		t.Errorf("Title/Brand = %q/%q", record.Title, record.Brand)
	}
	if !reflect.DeepEqual(record.Section, ctx.SectionPath) {
		t.Errorf("Section = %v, want %v", record.Section, ctx.SectionPath)
	}
	if !reflect.DeepEqual(record.MarketingTags, []string{"Free delivery", "Try on"}) {
		t.Errorf("MarketingTags = %v", record.MarketingTags)
	}
	if record.Price.Current != 1040 || record.Price.Original != 1300 || record.Price.SaleTag != "Discount 20%" {
		t.Errorf("Price = %+v", record.Price)
	}
	if record.Stock != models.UnknownStock() {
		t.Errorf("Stock = %+v, want in stock / -1", record.Stock)
	}
	if record.VariantCount != 2 {
		t.Errorf("VariantCount = %d, want 2", record.VariantCount)
	}
	if len(record.Assets.View360) != 11 {
		t.Errorf("View360 has %d urls, want 11", len(record.Assets.View360))
	}
	if record.Metadata["Material"] != "Leather" {
		t.Errorf("Metadata = %v", record.Metadata)
	}

	record.Section[0] = "mutated"
	if ctx.SectionPath[0] != "Обувь" {
		t.Error("record shares section slice with context")
	}
}

func TestAssemblerProduct_Failures(t *testing.T) {
	a := NewAssembler(selectors.Default())

	tests := []struct {
		name      string
		url       string
		html      string
		wantClass string
	}{
		{
			name:      "bad url",
			url:       "https://www.wildberries.ru/brands/acme",
			html:      detailPage,
			wantClass: crawlerr.ClassFatalStructure,
		},
		{
			name:      "zero original price",
			url:       detailURL,
			html:      strings.Replace(detailPage, "1 300 ₽", "0 ₽", 1),
			wantClass: crawlerr.ClassPriceParse,
		},
		{
			name:      "non-numeric price",
			url:       detailURL,
			html:      strings.Replace(detailPage, "1 040 ₽", "sold out", 1),
			wantClass: crawlerr.ClassPriceParse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Product(tt.url, mustDoc(t, tt.html), models.CrawlContext{})
			if got := crawlerr.Classify(err); got != tt.wantClass {
				t.Errorf("Product() error class = %q, want %q (err: %v)", got, tt.wantClass, err)
			}
		})
	}
}
