// Package browser abstracts the live browser session the scraper drives and
// provides the bounded wait used after every asynchronous page update.
package browser

import "context"

// Driver is the browser-automation capability the pipeline needs. Selectors
// are CSS selectors. Directives are opaque client-side actions taken from the
// page itself and are executed without interpretation.
type Driver interface {
	// Open navigates the session to url and returns once the document is ready.
	Open(ctx context.Context, url string) error
	// Fill clears the input matched by selector and types value into it.
	Fill(ctx context.Context, selector, value string) error
	// Click clicks the first element matched by selector.
	Click(ctx context.Context, selector string) error
	// Dispatch executes a directive in the context of the current page.
	Dispatch(ctx context.Context, directive string) error
	// Snapshot returns the serialized HTML of the current document.
	Snapshot(ctx context.Context) (string, error)
}
