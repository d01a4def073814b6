package scraper

import (
	"errors"
	"fmt"
)

var (
	// ErrTableNotFound means the locator selector matched nothing, usually
	// after an upstream layout change.
	ErrTableNotFound = errors.New("quote table not found")

	// ErrColumnsNotFound means the table has rows but neither the symbol nor
	// the last-price column could be resolved from its headers.
	ErrColumnsNotFound = errors.New("quote columns not found")
)

// ParseError reports a cycle-level failure to turn the fetched document into
// quotes. It is a soft failure: the cycle yields nothing and the caller keeps
// going.
type ParseError struct {
	Selector string
	Err      error
}

func (e *ParseError) Error() string {
	if e.Selector != "" {
		return fmt.Sprintf("parse market page (selector %q): %v", e.Selector, e.Err)
	}
	return fmt.Sprintf("parse market page: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
