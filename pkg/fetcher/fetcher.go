package fetcher

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/dtnitsch/catalog-crawler/pkg/caching"
	"github.com/dtnitsch/catalog-crawler/pkg/crawlerr"
	"github.com/dtnitsch/catalog-crawler/pkg/document"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// HEAD answers are kept per URL.
const (
	existsCacheSize = 4096
	existsCacheTTL  = 15 * time.Minute
)

// Options is the injected header/cookie bundle plus transport knobs.
type Options struct {
	Headers map[string]string
	Cookies map[string]string
	Timeout time.Duration
	Cache   *caching.Cache
	Logger  *slog.Logger
}

// Page is one fetched body. FinalURL is the URL after redirects.
type Page struct {
	URL        string
	FinalURL   string
	StatusCode int
	Body       []byte
	FromCache  bool
}

// Fetcher performs GET requests for pages and HEAD requests for probes, with
// the same headers and cookies on every request.
type Fetcher struct {
	client *resty.Client
	cache  *caching.Cache
	exists *expirable.LRU[string, bool]
	logger *slog.Logger
}

func NewFetcher(opts Options) *Fetcher {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	client := resty.New()
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}
	client.SetHeaders(opts.Headers)
	for name, value := range opts.Cookies {
		client.SetCookie(&http.Cookie{Name: name, Value: value})
	}
	return &Fetcher{
		client: client,
		cache:  opts.Cache,
		exists: expirable.NewLRU[string, bool](existsCacheSize, nil, existsCacheTTL),
		logger: logger,
	}
}

// GetHtml fetches url and parses the body.
func (f *Fetcher) GetHtml(ctx context.Context, url string) (document.Document, *Page, error) {
	page, err := f.GetHtmlBytes(ctx, url)
	if err != nil {
		return nil, page, err
	}
	doc, err := document.Parse(bytes.NewReader(page.Body))
	if err != nil {
		return nil, page, crawlerr.Structure("%s: %v", url, err)
	}
	return doc, page, nil
}

// GetHtmlBytes fetches url, serving from the cache when one is configured
// and holds a fresh copy. Transport failures and non-200 statuses are
// crawlerr.ErrTransientFetch.
func (f *Fetcher) GetHtmlBytes(ctx context.Context, url string) (*Page, error) {
	if f.cache != nil {
		if body, finalURL, ok := f.cache.Get(url); ok {
			f.logger.Debug("Page served from cache", "url", url, "final_url", finalURL)
			return &Page{URL: url, FinalURL: finalURL, StatusCode: http.StatusOK, Body: body, FromCache: true}, nil
		}
	}

	resp, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, crawlerr.Transient(err, "GET %s", url)
	}

	page := &Page{
		URL:        url,
		FinalURL:   url,
		StatusCode: resp.StatusCode(),
		Body:       resp.Body(),
	}
	if raw := resp.RawResponse; raw != nil && raw.Request != nil && raw.Request.URL != nil {
		page.FinalURL = raw.Request.URL.String()
	}
	if page.StatusCode != http.StatusOK {
		return page, crawlerr.Transient(nil, "GET %s: status code %d", url, page.StatusCode)
	}

	if f.cache != nil {
		if err := f.cache.Set(url, page.FinalURL, page.Body); err != nil {
			f.logger.Warn("Failed to cache page", "url", url, "error", err)
		}
	}
	return page, nil
}

// Exists implements probe.Prober with a HEAD request; any status below 400
// counts as present. Transport errors are not cached.
func (f *Fetcher) Exists(ctx context.Context, url string) (bool, error) {
	if ok, hit := f.exists.Get(url); hit {
		return ok, nil
	}
	resp, err := f.client.R().SetContext(ctx).Head(url)
	if err != nil {
		return false, crawlerr.Transient(err, "HEAD %s", url)
	}
	ok := resp.StatusCode() < http.StatusBadRequest
	f.exists.Add(url, ok)
	return ok, nil
}
