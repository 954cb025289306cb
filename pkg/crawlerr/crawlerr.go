// Package crawlerr defines the error classes surfaced by the crawl core so the
// host engine can decide what to drop, log or retry.
package crawlerr

import (
	"errors"
	"fmt"
)

var (
	// ErrFatalStructure marks a URL or page that violates a hard structural
	// assumption. The single request is dropped, never retried.
	ErrFatalStructure = errors.New("fatal structure error")
	// ErrPriceParse marks price text that is not numeric or an original price <= 0.
	ErrPriceParse = errors.New("price parse error")
	// ErrTransientFetch marks a network failure. Retrying is the host's call.
	ErrTransientFetch = errors.New("transient fetch error")
)

// Error class names, stored with failed requests.
const (
	ClassFatalStructure = "fatal_structure"
	ClassPriceParse     = "price_parse"
	ClassTransientFetch = "transient_fetch"
	ClassUnknown        = "unknown"
)

// Structure wraps a structural violation.
func Structure(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrFatalStructure, fmt.Sprintf(format, args...))
}

// Price wraps a price parsing failure.
func Price(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrPriceParse, fmt.Sprintf(format, args...))
}

// Transient wraps a network failure, keeping the cause in the chain.
func Transient(err error, format string, args ...any) error {
	if err == nil {
		return fmt.Errorf("%w: %s", ErrTransientFetch, fmt.Sprintf(format, args...))
	}
	return fmt.Errorf("%w: %s: %w", ErrTransientFetch, fmt.Sprintf(format, args...), err)
}

// Classify returns the class name of err, or "" for a nil error.
func Classify(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrFatalStructure):
		return ClassFatalStructure
	case errors.Is(err, ErrPriceParse):
		return ClassPriceParse
	case errors.Is(err, ErrTransientFetch):
		return ClassTransientFetch
	default:
		return ClassUnknown
	}
}

// Retryable reports whether err belongs to a class worth retrying.
func Retryable(err error) bool {
	return errors.Is(err, ErrTransientFetch)
}
