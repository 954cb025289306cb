// Package document exposes the structural page access used by the extractors.
// Extractors see only the Document interface; the goquery adapter is the one
// concrete implementation.
package document

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Document is read-only selector access over a parsed page or a sub-tree of it.
type Document interface {
	// Text returns the trimmed text of the first element matching selector.
	// ok is false when nothing matches or the text is empty.
	Text(selector string) (text string, ok bool)
	// TextAll returns the trimmed, non-empty text of every matching element.
	TextAll(selector string) []string
	// Attr returns attr of the first matching element that carries it.
	Attr(selector, attr string) (value string, ok bool)
	// AttrAll returns attr of every matching element that carries it.
	AttrAll(selector, attr string) []string
	// Each returns one scoped Document per matching element.
	Each(selector string) []Document
}

type goqueryDocument struct {
	sel *goquery.Selection
}

// Parse reads HTML from r.
func Parse(r io.Reader) (Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return FromSelection(doc.Selection), nil
}

// ParseString is Parse over an in-memory HTML string.
func ParseString(html string) (Document, error) {
	return Parse(strings.NewReader(html))
}

// FromSelection adapts an existing goquery selection.
func FromSelection(sel *goquery.Selection) Document {
	return goqueryDocument{sel: sel}
}

func (d goqueryDocument) Text(selector string) (string, bool) {
	found := d.sel.Find(selector)
	if found.Length() == 0 {
		return "", false
	}
	text := normalizeText(found.First().Text())
	return text, text != ""
}

func (d goqueryDocument) TextAll(selector string) []string {
	var texts []string
	d.sel.Find(selector).Each(func(_ int, s *goquery.Selection) {
		if text := normalizeText(s.Text()); text != "" {
			texts = append(texts, text)
		}
	})
	return texts
}

func (d goqueryDocument) Attr(selector, attr string) (string, bool) {
	var value string
	var ok bool
	d.sel.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		value, ok = s.Attr(attr)
		return !ok
	})
	return value, ok
}

func (d goqueryDocument) AttrAll(selector, attr string) []string {
	var values []string
	d.sel.Find(selector).Each(func(_ int, s *goquery.Selection) {
		if v, ok := s.Attr(attr); ok {
			values = append(values, v)
		}
	})
	return values
}

func (d goqueryDocument) Each(selector string) []Document {
	var docs []Document
	d.sel.Find(selector).Each(func(_ int, s *goquery.Selection) {
		docs = append(docs, goqueryDocument{sel: s})
	})
	return docs
}

// normalizeText collapses runs of whitespace, including newlines, to one space.
func normalizeText(input string) string {
	return strings.Join(strings.Fields(input), " ")
}
