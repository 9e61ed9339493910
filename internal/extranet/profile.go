package extranet

import (
	"context"
	"time"

	"github.com/PuerkitoBio/goquery"

	"ScraperExtranet/internal/browser"
	"ScraperExtranet/internal/extract"
	"ScraperExtranet/internal/record"
)

// ResearcherLabel marks the field that corroborates a freshly loaded profile.
const ResearcherLabel = "Investigador"

// LoadProfile dispatches directive in the current page and waits for the
// profile container to hold at least one table. A dispatch failure is
// reported as TimedOut so the entry is skipped; only cancellation of ctx
// returns an error.
func (s *Site) LoadProfile(ctx context.Context, directive string) (*goquery.Document, browser.Outcome, error) {
	if err := s.d.Dispatch(ctx, directive); err != nil {
		if ctx.Err() != nil {
			return nil, browser.TimedOut, ctx.Err()
		}
		return nil, browser.TimedOut, nil
	}

	// The container id survives from the previous profile while the new one
	// is being rendered.
	if s.opts.LoadPause > 0 {
		if err := sleep(ctx, s.opts.LoadPause); err != nil {
			return nil, browser.TimedOut, err
		}
	}

	// The container can exist before Load() fills it, so wait for its tables.
	ready := browser.Exists(extract.ContentSelector + " table")
	if s.opts.Strict {
		ready = browser.All(ready, func(doc *goquery.Document) bool {
			return extract.HasLabel(doc, ResearcherLabel)
		})
	}
	return browser.WaitFor(ctx, s.d, s.opts.Wait, ready)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// LabeledFields reads the discrete labeled columns of a profile. pageURL
// resolves a relative PDF link.
func LabeledFields(doc *goquery.Document, pageURL string) map[string]string {
	return map[string]string{
		record.ColFullName:     extract.LabelValue(doc, ResearcherLabel),
		record.ColSex:          extract.LabelValue(doc, "Sexo"),
		record.ColUnit:         extract.LabelValue(doc, "Unidad"),
		record.ColEmail:        extract.LabelValue(doc, "E-Mail"),
		record.ColTitle:        extract.LabelValue(doc, "Título Profesional"),
		record.ColInstitution:  extract.LabelValue(doc, "Institución"),
		record.ColProjects:     extract.SectionTable(doc, "Proyectos"),
		record.ColPublications: extract.SectionTable(doc, "Publicaciones"),
		record.ColPDFLink:      extract.PDFLink(doc, pageURL),
	}
}

// TableFields reads the personal block plus the flattened degree and table
// columns of a profile.
func TableFields(doc *goquery.Document) map[string]string {
	personal := extract.PersonalInfo(doc)
	return map[string]string{
		record.ColResearcher: personal[ResearcherLabel],
		record.ColEmail:      personal["E-Mail"],
		record.ColPhone:      personal["Fono/Anexo"],
		record.ColUnits:      personal["Unidad(es)"],
		record.ColDegrees:    extract.AcademicDegrees(doc),
		record.ColAllTables:  extract.OtherTables(doc),
		record.ColPDFLocal:   "",
	}
}
