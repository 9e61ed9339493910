// Package extranet drives the researcher CV search of the university
// extranet: it fills the search form, picks the exact result row and loads
// the selected profile in place.
package extranet

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"ScraperExtranet/internal/browser"
	"ScraperExtranet/internal/extract"
	"ScraperExtranet/internal/names"
)

// Form and result selectors.
const (
	FirstNameInput = "#nombre_filtro"
	PaternalInput  = "#paterno_filtro"
	MaternalInput  = "#materno_filtro"
	SubmitButton   = "input[value='BUSCAR']"
	ResultRows     = "table.Tabla_lst > tbody > tr"

	loadPrefix = "javascript:Load"
	jsScheme   = "javascript:"
)

var (
	// ErrFormUnavailable means the search form never appeared.
	ErrFormUnavailable = errors.New("el formulario de búsqueda no apareció")
	// ErrNoExactMatch means no result row carries the searched name with a
	// load link.
	ErrNoExactMatch = errors.New("no se encontró enlace exacto")
)

// Options configures a Site.
type Options struct {
	BaseURL string
	Wait    browser.Wait
	// LoadPause is slept after dispatching the load directive, before waiting.
	LoadPause time.Duration
	// Strict also waits for the researcher field after the container appears.
	Strict bool
}

// Site runs searches and profile loads over a single browser session.
type Site struct {
	d    browser.Driver
	opts Options
}

func New(d browser.Driver, opts Options) *Site {
	return &Site{d: d, opts: opts}
}

// BaseURL returns the search page address.
func (s *Site) BaseURL() string { return s.opts.BaseURL }

// Search opens the search page, submits tokens and waits for the result
// table to hold at least one data row. TimedOut means no results. Failures to
// reach or drive the form are returned as errors.
func (s *Site) Search(ctx context.Context, t names.Tokens) (*goquery.Document, browser.Outcome, error) {
	if err := s.d.Open(ctx, s.opts.BaseURL); err != nil {
		return nil, browser.TimedOut, fmt.Errorf("abriendo %s: %w", s.opts.BaseURL, err)
	}

	_, outcome, err := browser.WaitFor(ctx, s.d, s.opts.Wait, browser.Exists(FirstNameInput))
	if err != nil {
		return nil, outcome, err
	}
	if outcome == browser.TimedOut {
		return nil, outcome, ErrFormUnavailable
	}

	fields := []struct{ sel, val string }{
		{FirstNameInput, t.First},
		{PaternalInput, t.Paternal},
		{MaternalInput, t.Maternal},
	}
	for _, f := range fields {
		if err := s.d.Fill(ctx, f.sel, f.val); err != nil {
			return nil, browser.TimedOut, fmt.Errorf("escribiendo en %s: %w", f.sel, err)
		}
	}
	if err := s.d.Click(ctx, SubmitButton); err != nil {
		return nil, browser.TimedOut, fmt.Errorf("enviando búsqueda: %w", err)
	}

	// The header row is always present, so results need a second row.
	return browser.WaitFor(ctx, s.d, s.opts.Wait, browser.MinCount(ResultRows, 2))
}

// Match is the selected result row.
type Match struct {
	// Name as displayed in the result table.
	Name string
	// Directive is the load call taken from the row's link, without scheme.
	Directive string
}

// MatchRow scans the direct result rows after the header for the first one
// whose second cell equals query, ignoring case and whitespace runs. The
// first equal row decides: if its link is not a load call, ErrNoExactMatch
// is returned without looking further.
func MatchRow(doc *goquery.Document, query string) (Match, error) {
	want := strings.ToLower(extract.Clean(query))

	var (
		m     Match
		found bool
	)
	doc.Find(ResultRows).Slice(1, goquery.ToEnd).EachWithBreak(func(_ int, tr *goquery.Selection) bool {
		cell := tr.ChildrenFiltered("td").Eq(1)
		if cell.Length() == 0 {
			return true
		}
		name := extract.Clean(cell.Text())
		if strings.ToLower(name) != want {
			return true
		}
		href := strings.TrimSpace(cell.Find("a").First().AttrOr("href", ""))
		if strings.HasPrefix(href, loadPrefix) {
			m = Match{Name: name, Directive: strings.TrimPrefix(href, jsScheme)}
			found = true
		}
		return false
	})
	if !found {
		return Match{}, ErrNoExactMatch
	}
	return m, nil
}
