package models

import "github.com/dtnitsch/catalog-crawler/pkg/document"

// RequestKind tells the controller which parser a response goes to.
type RequestKind int

const (
	KindListing RequestKind = iota + 1
	KindDetail
)

func (k RequestKind) String() string {
	switch k {
	case KindListing:
		return "listing"
	case KindDetail:
		return "detail"
	default:
		return "unknown"
	}
}

// CrawlContext is captured once per listing page and copied onto every
// request derived from it.
type CrawlContext struct {
	SectionPath []string `json:"section_path" yaml:"section_path"`
}

// NewCrawlContext copies path so later mutation of the source slice cannot
// leak into derived requests.
func NewCrawlContext(path []string) CrawlContext {
	return CrawlContext{SectionPath: append([]string{}, path...)}
}

// Section returns a copy of the section path.
func (c CrawlContext) Section() []string {
	return append([]string{}, c.SectionPath...)
}

// Request is an outbound GET the host engine should perform.
type Request struct {
	URL     string
	Kind    RequestKind
	Context CrawlContext
}

// Response is a fetched Request with its parsed body. URL is the final URL
// after redirects and is what relative links are resolved against.
type Response struct {
	Request Request
	URL     string
	Doc     document.Document
}
