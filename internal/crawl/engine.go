package crawl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"sync"

	"github.com/PuerkitoBio/purell"
	"github.com/dtnitsch/catalog-crawler/models"
	"github.com/dtnitsch/catalog-crawler/pkg/crawlerr"
	"github.com/dtnitsch/catalog-crawler/pkg/db"
	"github.com/dtnitsch/catalog-crawler/pkg/manifest"
	"github.com/dtnitsch/catalog-crawler/pkg/mapreduce"
	"github.com/dtnitsch/catalog-crawler/pkg/probe"
	"github.com/dtnitsch/catalog-crawler/pkg/traversal"
)

// Engine drives a traversal.Controller over the network with a pool of
// workers. The controller is pure, so workers step it against an empty
// State and the dispatcher folds the returned counters into the run state.
// Prober, when set, verifies every record's 360° sequence after assembly.
type Engine struct {
	Controller  *traversal.Controller
	Fetcher     PageFetcher
	Prober      probe.Prober
	Sink        Sink
	RunID       string
	Workers     int
	MaxRequests int
	Logger      *slog.Logger
}

// Run crawls from the controller's seed until the frontier is empty, the
// request limit is reached or ctx is cancelled. In-flight requests are
// always drained; a cancelled run returns its partial stats with ctx.Err().
func (e *Engine) Run(ctx context.Context) (Stats, error) {
	logger := e.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	workers := e.Workers
	if workers < 1 {
		workers = 1
	}

	stats := Stats{
		Errors: make(map[string]int),
		Facets: make(map[string]int),
	}
	state, queue := e.Controller.Seed()
	seen := make(map[string]bool)
	for _, r := range queue {
		seen[frontierKey(r.URL)] = true
	}

	logger.Info("Starting crawl", "run_id", e.RunID, "seed_url", queue[0].URL, "workers", workers, "max_requests", e.MaxRequests)

	var wg sync.WaitGroup
	jobs := make(chan models.Request)
	results := make(chan Result)
	for w := 1; w <= workers; w++ {
		wg.Add(1)
		go e.worker(ctx, w, logger, &wg, jobs, results)
	}

	pending, dispatched := 0, 0
	stopping := false
	for {
		if !stopping && ctx.Err() != nil {
			logger.Warn("Crawl interrupted, draining in-flight requests", "pending", pending)
			stopping = true
		}

		var out chan<- models.Request
		var next models.Request
		if !stopping && len(queue) > 0 && (e.MaxRequests == 0 || dispatched < e.MaxRequests) {
			out = jobs
			next = queue[0]
		}
		if out == nil && pending == 0 {
			break
		}
		var done <-chan struct{}
		if !stopping {
			done = ctx.Done()
		}

		select {
		case out <- next:
			queue = queue[1:]
			pending++
			dispatched++
		case result := <-results:
			pending--
			state = fold(state, result.Delta)
			stats.record(result)
			for _, r := range result.Requests {
				key := frontierKey(r.URL)
				if seen[key] {
					stats.Duplicates++
					continue
				}
				seen[key] = true
				queue = append(queue, r)
			}
		case <-done:
			// handled at the top of the loop
		}
	}
	close(jobs)
	wg.Wait()

	stats.State = state
	stats.Truncated = len(queue) > 0
	if stats.Truncated {
		logger.Warn("Crawl stopped with requests left in the frontier", "remaining", len(queue))
	}
	logger.Info("Crawl finished",
		"run_id", e.RunID,
		"listings", stats.ListingOK,
		"details", stats.DetailOK,
		"failed", stats.ListingFailed+stats.DetailFailed,
		"duplicates", stats.Duplicates,
	)

	if stopping {
		return stats, ctx.Err()
	}
	return stats, nil
}

func (e *Engine) worker(ctx context.Context, id int, logger *slog.Logger, wg *sync.WaitGroup, jobs <-chan models.Request, results chan<- Result) {
	defer wg.Done()
	for req := range jobs {
		logger.Debug("Worker started job", "worker_id", id, "url", req.URL, "kind", req.Kind.String())
		result := e.process(ctx, logger, req)
		if result.Error != nil {
			logger.Warn("Request failed", "worker_id", id, "url", req.URL, "kind", req.Kind.String(), "error_type", result.ErrorType, "error", result.Error)
		}
		results <- result
	}
}

// process fetches, steps and stores one request.
func (e *Engine) process(ctx context.Context, logger *slog.Logger, req models.Request) Result {
	result := Result{Request: req}
	access := db.Access{RunID: e.RunID, URL: req.URL, Kind: req.Kind.String()}

	fail := func(err error) Result {
		result.Error = err
		result.ErrorType = crawlerr.Classify(err)
		access.ErrorType = result.ErrorType
		access.ErrorMessage = err.Error()
		e.recordAccess(logger, access)
		return result
	}

	doc, page, err := e.Fetcher.GetHtml(ctx, req.URL)
	if page != nil {
		access.StatusCode = page.StatusCode
		access.FromCache = page.FromCache
	}
	if err != nil {
		return fail(err)
	}

	delta, requests, records, err := e.Controller.Step(traversal.State{}, models.Response{
		Request: req,
		URL:     page.FinalURL,
		Doc:     doc,
	})
	if err != nil {
		return fail(err)
	}

	for i, record := range records {
		records[i] = e.verifyView360(ctx, logger, record)
		if e.Sink != nil {
			if err := e.Sink.SaveProduct(e.RunID, records[i]); err != nil {
				return fail(fmt.Errorf("failed to save product %s: %w", record.ID, err))
			}
		}
	}

	access.Success = true
	e.recordAccess(logger, access)

	result.Delta = delta
	result.Requests = requests
	result.Records = records
	return result
}

// verifyView360 keeps the live prefix of the fixed sequence. A probe error
// leaves the record unchanged.
func (e *Engine) verifyView360(ctx context.Context, logger *slog.Logger, record models.ProductRecord) models.ProductRecord {
	if e.Prober == nil || len(record.Assets.View360) == 0 {
		return record
	}
	live, err := probe.Verify(ctx, e.Prober, record.Assets.View360)
	if err != nil {
		logger.Warn("360 probe failed, keeping unverified sequence", "article", record.ID, "error", err)
		return record
	}
	logger.Debug("360 sequence verified", "article", record.ID, "frames", len(live), "candidates", len(record.Assets.View360))
	return record.WithView360(live)
}

func (e *Engine) recordAccess(logger *slog.Logger, access db.Access) {
	if e.Sink == nil {
		return
	}
	if err := e.Sink.RecordAccess(access); err != nil {
		logger.Warn("Failed to record access to DB", "url", access.URL, "error", err)
	}
}

// frontierKey normalizes a request URL so that trivially different
// spellings of one page (case, fragment, query order) are fetched once.
func frontierKey(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return purell.NormalizeURL(u,
		purell.FlagsSafe|
			purell.FlagRemoveFragment|
			purell.FlagSortQuery,
	)
}

// fold adds the counters of one step to the run state.
func fold(st, delta traversal.State) traversal.State {
	if delta.Phase > st.Phase {
		st.Phase = delta.Phase
	}
	st.ListingsParsed += delta.ListingsParsed
	st.DetailsParsed += delta.DetailsParsed
	st.DetailsQueued += delta.DetailsQueued
	st.NextPagesQueued += delta.NextPagesQueued
	return st
}

func (s *Stats) record(result Result) {
	listing := result.Request.Kind == models.KindListing
	if result.Error != nil {
		if listing {
			s.ListingFailed++
		} else {
			s.DetailFailed++
		}
		s.Errors[result.ErrorType]++
		s.Failures = append(s.Failures, manifest.Failure{
			URL:          result.Request.URL,
			Kind:         result.Request.Kind.String(),
			ErrorType:    result.ErrorType,
			ErrorMessage: result.Error.Error(),
		})
		return
	}

	if listing {
		s.ListingOK++
	} else {
		s.DetailOK++
	}
	intermediate := []map[string]int{s.Facets}
	for _, record := range result.Records {
		s.Records++
		intermediate = append(intermediate, mapreduce.Map(record))
	}
	s.Facets = mapreduce.Reduce(intermediate)
}

// Interrupted reports whether err came from a cancelled or timed out crawl.
func Interrupted(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
