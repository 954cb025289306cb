package models

import (
	"reflect"
	"testing"
)

func TestWithView360DoesNotShareSlices(t *testing.T) {
	original := ProductRecord{
		ID: "123",
		Assets: AssetBundle{
			Images:  []string{"a.jpg"},
			View360: []string{"1.jpg", "2.jpg", "3.jpg"},
			Video:   []string{},
		},
	}
	verified := original.WithView360([]string{"1.jpg"})

	if !reflect.DeepEqual(verified.Assets.View360, []string{"1.jpg"}) {
		t.Errorf("View360 = %v, want [1.jpg]", verified.Assets.View360)
	}
	if len(original.Assets.View360) != 3 {
		t.Errorf("original View360 changed: %v", original.Assets.View360)
	}
	verified.Assets.Images[0] = "changed.jpg"
	if original.Assets.Images[0] != "a.jpg" {
		t.Error("WithView360() shares the Images slice")
	}
}

func TestCrawlContextCopies(t *testing.T) {
	path := []string{"Shoes", "Women"}
	ctx := NewCrawlContext(path)
	path[0] = "Bags"

	if ctx.SectionPath[0] != "Shoes" {
		t.Errorf("NewCrawlContext() aliased input: %v", ctx.SectionPath)
	}
	section := ctx.Section()
	section[1] = "Men"
	if ctx.SectionPath[1] != "Women" {
		t.Errorf("Section() aliased context: %v", ctx.SectionPath)
	}
}

func TestSaleRatio(t *testing.T) {
	if got := (PriceInfo{Current: 80, Original: 100}).SaleRatio(); got != 0.8 {
		t.Errorf("SaleRatio() = %v, want 0.8", got)
	}
	if got := (PriceInfo{}).SaleRatio(); got != 1 {
		t.Errorf("SaleRatio() on zero price = %v, want 1", got)
	}
}
