// Package traversal is the crawl state machine: it turns the seed into the
// first listing request, listing responses into detail and next-page requests,
// and detail responses into product records. It performs no I/O.
package traversal

import (
	"fmt"
	"io"
	"log/slog"
	"net/url"

	"github.com/dtnitsch/catalog-crawler/models"
	"github.com/dtnitsch/catalog-crawler/pkg/crawlerr"
	"github.com/dtnitsch/catalog-crawler/pkg/extractor"
	"github.com/dtnitsch/catalog-crawler/pkg/selectors"
)

// Phase is the controller's position in the crawl.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseAwaitingListing
	PhaseCrawling
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseAwaitingListing:
		return "awaiting_listing"
	case PhaseCrawling:
		return "crawling"
	default:
		return "unknown"
	}
}

// State counts what the controller has processed. It is a value; Step returns
// the successor and never mutates its input.
type State struct {
	Phase           Phase
	ListingsParsed  int
	DetailsParsed   int
	DetailsQueued   int
	NextPagesQueued int
}

// Controller holds the immutable crawl configuration.
type Controller struct {
	seedURL   string
	selectors selectors.Table
	assembler *extractor.Assembler
	logger    *slog.Logger
}

// New builds a controller. A nil logger discards output.
func New(seedURL string, assembler *extractor.Assembler, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Controller{
		seedURL:   seedURL,
		selectors: assembler.Selectors,
		assembler: assembler,
		logger:    logger,
	}
}

// Seed emits the single request for the starting catalog listing.
func (c *Controller) Seed() (State, []models.Request) {
	return State{Phase: PhaseAwaitingListing}, []models.Request{{
		URL:     c.seedURL,
		Kind:    models.KindListing,
		Context: models.CrawlContext{SectionPath: []string{}},
	}}
}

// Step handles one response. An error drops only this response; the state
// returned alongside it is unchanged.
func (c *Controller) Step(st State, resp models.Response) (State, []models.Request, []models.ProductRecord, error) {
	switch resp.Request.Kind {
	case models.KindListing:
		requests, err := c.listing(resp)
		if err != nil {
			return st, nil, nil, err
		}
		next := st
		next.Phase = PhaseCrawling
		next.ListingsParsed++
		for _, r := range requests {
			if r.Kind == models.KindDetail {
				next.DetailsQueued++
			} else {
				next.NextPagesQueued++
			}
		}
		return next, requests, nil, nil

	case models.KindDetail:
		record, err := c.assembler.Product(resp.Request.URL, resp.Doc, resp.Request.Context)
		if err != nil {
			return st, nil, nil, fmt.Errorf("detail %s: %w", resp.Request.URL, err)
		}
		next := st
		next.DetailsParsed++
		return next, nil, []models.ProductRecord{record}, nil

	default:
		return st, nil, nil, crawlerr.Structure("request %s has unknown kind %d", resp.Request.URL, resp.Request.Kind)
	}
}

// listing emits one detail request per product card, then at most one
// next-page request, all carrying the breadcrumb captured here.
func (c *Controller) listing(resp models.Response) ([]models.Request, error) {
	base, err := url.Parse(resp.URL)
	if err != nil || !base.IsAbs() {
		return nil, crawlerr.Structure("listing response url %q is not absolute", resp.URL)
	}

	section := extractor.Section(resp.Doc, c.selectors)
	c.logger.Debug("Parsed listing breadcrumb", "url", resp.URL, "section", section)

	link := c.selectors.Get(selectors.ProductLink)
	var requests []models.Request
	for i, card := range resp.Doc.Each(c.selectors.CSS(selectors.ProductCard)) {
		href, ok := card.Attr(link.CSS, link.Attr)
		if !ok || href == "" {
			c.logger.Warn("Product card without link", "url", resp.URL, "card", i)
			continue
		}
		detailURL, err := join(base, href)
		if err != nil {
			c.logger.Warn("Unresolvable product link", "url", resp.URL, "href", href, "error", err)
			continue
		}
		requests = append(requests, models.Request{
			URL:     detailURL,
			Kind:    models.KindDetail,
			Context: models.NewCrawlContext(section),
		})
	}

	next := c.selectors.Get(selectors.NextPage)
	if href, ok := resp.Doc.Attr(next.CSS, next.Attr); ok && href != "" {
		nextURL, err := join(base, href)
		if err != nil {
			c.logger.Warn("Unresolvable next page link", "url", resp.URL, "href", href, "error", err)
		} else {
			requests = append(requests, models.Request{
				URL:     nextURL,
				Kind:    models.KindListing,
				Context: models.NewCrawlContext(section),
			})
		}
	}

	c.logger.Debug("Listing parsed", "url", resp.URL, "requests", len(requests))
	return requests, nil
}

func join(base *url.URL, href string) (string, error) {
	ref, err := url.Parse(href)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(ref).String(), nil
}
