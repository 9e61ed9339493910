package browser

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Default wait parameters.
const (
	DefaultTimeout      = 15 * time.Second
	DefaultPollInterval = 500 * time.Millisecond
)

// Outcome tells a satisfied wait apart from one that ran out of time.
type Outcome int

const (
	// Ready means the predicate held before the timeout.
	Ready Outcome = iota
	// TimedOut means the timeout elapsed first.
	TimedOut
)

func (o Outcome) String() string {
	if o == Ready {
		return "ready"
	}
	return "timed_out"
}

// Wait bounds a poll loop.
type Wait struct {
	Timeout  time.Duration
	Interval time.Duration
}

// Predicate inspects a DOM snapshot.
type Predicate func(doc *goquery.Document) bool

// WaitFor polls snapshots of d until pred holds or w.Timeout elapses. On
// success it returns the snapshot that satisfied pred. A timeout is reported
// as TimedOut with a nil error; only cancellation of ctx is an error.
// Snapshot and parse failures while polling are treated as "not yet".
func WaitFor(ctx context.Context, d Driver, w Wait, pred Predicate) (*goquery.Document, Outcome, error) {
	if w.Timeout <= 0 {
		w.Timeout = DefaultTimeout
	}
	if w.Interval <= 0 {
		w.Interval = DefaultPollInterval
	}

	waitCtx, cancel := context.WithTimeout(ctx, w.Timeout)
	defer cancel()

	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	for {
		if doc, ok := check(waitCtx, d, pred); ok {
			return doc, Ready, nil
		}
		select {
		case <-waitCtx.Done():
			if err := ctx.Err(); err != nil {
				return nil, TimedOut, err
			}
			return nil, TimedOut, nil
		case <-ticker.C:
		}
	}
}

func check(ctx context.Context, d Driver, pred Predicate) (*goquery.Document, bool) {
	html, err := d.Snapshot(ctx)
	if err != nil {
		return nil, false
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, false
	}
	return doc, pred(doc)
}

// Exists holds when selector matches at least one element.
func Exists(selector string) Predicate {
	return MinCount(selector, 1)
}

// MinCount holds when selector matches at least n elements.
func MinCount(selector string, n int) Predicate {
	return func(doc *goquery.Document) bool {
		return doc.Find(selector).Length() >= n
	}
}

// All holds when every predicate holds.
func All(preds ...Predicate) Predicate {
	return func(doc *goquery.Document) bool {
		for _, p := range preds {
			if !p(doc) {
				return false
			}
		}
		return true
	}
}
