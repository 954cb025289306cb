// Package probe discovers or verifies 360° image sequences by checking
// candidate URLs one at a time. Every check is a blocking network call, so the
// engine runs it inside a worker as an optional pass after assembly.
package probe

import (
	"context"
	"strconv"
	"strings"
)

// Prober reports whether a URL exists. A transport failure returns an error
// classed as crawlerr.ErrTransientFetch.
type Prober interface {
	Exists(ctx context.Context, url string) (bool, error)
}

// CandidateURL is the n-th frame under base. Leading slashes are stripped and
// an http scheme added, so "//cdn/3d/1" and "cdn/3d/1" give the same URL.
func CandidateURL(base string, n int) string {
	return "http://" + strings.TrimLeft(base, "/") + "/" + strconv.Itoa(n) + ".jpg"
}

// Discover probes base/1.jpg, base/2.jpg, ... and stops at the first failing
// check or after limit frames. The frames found before a transport error are
// returned together with the error.
func Discover(ctx context.Context, p Prober, base string, limit int) ([]string, error) {
	found := []string{}
	for n := 1; n <= limit; n++ {
		if err := ctx.Err(); err != nil {
			return found, err
		}
		candidate := CandidateURL(base, n)
		ok, err := p.Exists(ctx, candidate)
		if err != nil {
			return found, err
		}
		if !ok {
			break
		}
		found = append(found, candidate)
	}
	return found, nil
}

// Verify checks candidates in order and keeps the prefix that exists.
func Verify(ctx context.Context, p Prober, candidates []string) ([]string, error) {
	live := []string{}
	for _, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			return live, err
		}
		ok, err := p.Exists(ctx, candidate)
		if err != nil {
			return live, err
		}
		if !ok {
			break
		}
		live = append(live, candidate)
	}
	return live, nil
}
