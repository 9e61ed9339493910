// Package pipeline runs the roster through search, match, load and
// extraction, one entry at a time, checkpointing rows to the output CSV.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"ScraperExtranet/internal/browser"
	"ScraperExtranet/internal/checkpoint"
	"ScraperExtranet/internal/config"
	"ScraperExtranet/internal/extranet"
	"ScraperExtranet/internal/logger"
	"ScraperExtranet/internal/names"
	"ScraperExtranet/internal/record"
	"ScraperExtranet/internal/roster"
)

// Runner processes roster entries against a live browser session.
type Runner struct {
	cfg     *config.Config
	driver  browser.Driver
	site    *extranet.Site
	profile Profile
	log     logger.Logger
	now     func() time.Time
}

// New builds a Runner for cfg. cfg is expected to be loaded through
// config.Load so variant defaults are filled.
func New(cfg *config.Config, d browser.Driver, log logger.Logger) *Runner {
	if log == nil {
		log = logger.NewNop()
	}
	site := extranet.New(d, extranet.Options{
		BaseURL:   cfg.BaseURL,
		Wait:      browser.Wait{Timeout: cfg.Wait.Timeout, Interval: cfg.Wait.PollInterval},
		LoadPause: cfg.Wait.LoadPause,
		Strict:    cfg.StrictWait(),
	})
	return &Runner{
		cfg:     cfg,
		driver:  d,
		site:    site,
		profile: ProfileFor(cfg.Variant),
		log:     log,
		now:     time.Now,
	}
}

// Header returns the output columns of the configured variant.
func (r *Runner) Header() []string { return r.profile.Schema.Header() }

// Run processes entries starting at the configured offset and returns a
// summary of what was written. Record-level failures become status rows.
// Fatal errors and cancellation stop the run after the buffered rows are
// flushed.
func (r *Runner) Run(ctx context.Context, entries []roster.Entry) (Summary, error) {
	started := r.now()
	runID := uuid.NewString()

	start := r.cfg.StartIndex
	if r.cfg.Resume {
		n, err := checkpoint.CountRows(r.cfg.Output.Path)
		if err != nil {
			return newSummary(runID, 0), fmt.Errorf("leyendo avance de %s: %w", r.cfg.Output.Path, err)
		}
		start = n
	}
	sum := newSummary(runID, start)

	log := r.log.With(
		logger.String("run_id", runID),
		logger.String("variant", string(r.cfg.Variant)),
	)

	out, err := checkpoint.Open(r.cfg.Output.Path, r.Header(), r.cfg.Output.BatchSize)
	if err != nil {
		return sum, err
	}

	todo := window(entries, start, r.cfg.Limit)
	log.Info("Iniciando extracción",
		logger.Int("total", len(entries)),
		logger.Int("start", start),
		logger.Int("pending", len(todo)),
		logger.String("output", r.cfg.Output.Path),
	)

	var limiter *rate.Limiter
	if r.cfg.Pacing.Interval > 0 {
		limiter = rate.NewLimiter(rate.Every(r.cfg.Pacing.Interval), 1)
	}

	finish := func(runErr error) (Summary, error) {
		closeErr := out.Close()
		sum.Written = out.Written()
		sum.Elapsed = r.now().Sub(started)
		if closeErr != nil {
			log.Error("No se pudo volcar el lote pendiente", logger.Err(closeErr))
		}
		return sum, errors.Join(runErr, closeErr)
	}

	for i, e := range todo {
		if err := ctx.Err(); err != nil {
			log.Warn("Extracción interrumpida", logger.Int("processed", sum.Processed))
			return finish(err)
		}
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return finish(err)
			}
		}

		id := start + i + 1
		rlog := log.With(logger.Int("id", id), logger.String("name", e.Name))

		rec, err := r.process(ctx, id, e.Name)
		if err != nil {
			if ctx.Err() != nil {
				rlog.Warn("Extracción interrumpida", logger.Int("processed", sum.Processed))
			} else {
				rlog.Error("Error fatal procesando registro", logger.Err(err))
			}
			return finish(err)
		}
		sum.add(rec.Status)

		if rec.Status.Failed() {
			rlog.Info("Registro sin perfil", logger.String("status", string(rec.Status)))
			r.dump(ctx, rlog, id, rec.Status)
		} else {
			researcher := rec.Get(record.ColFullName)
			if researcher == "" {
				researcher = rec.Get(record.ColResearcher)
			}
			rlog.Info("Procesado", logger.String("researcher", researcher))
		}

		flushed, err := out.Add(r.profile.Schema.Row(rec))
		if err != nil {
			return finish(err)
		}
		if flushed {
			rlog.Debug("Lote guardado", logger.Int("written", out.Written()))
		}
	}

	s, err := finish(nil)
	if err == nil {
		log.Info("Extracción terminada",
			logger.Int("processed", s.Processed),
			logger.Int("failed", s.Failed()),
			logger.Duration("elapsed", s.Elapsed),
		)
	}
	return s, err
}

// process runs one entry through search, match, load and extraction.
func (r *Runner) process(ctx context.Context, id int, name string) (record.Record, error) {
	rec := record.Record{ID: id, Query: name}

	results, outcome, err := r.site.Search(ctx, names.Split(name))
	if err != nil {
		return rec, err
	}
	if outcome == browser.TimedOut {
		rec.Status = record.StatusNoResults
		return rec, nil
	}

	m, err := extranet.MatchRow(results, name)
	if errors.Is(err, extranet.ErrNoExactMatch) {
		rec.Status = r.profile.NoMatch
		return rec, nil
	}
	if err != nil {
		return rec, err
	}

	doc, outcome, err := r.site.LoadProfile(ctx, m.Directive)
	if err != nil {
		return rec, err
	}
	if outcome == browser.TimedOut {
		rec.Status = record.StatusProfileNotLoaded
		return rec, nil
	}

	rec.Fields = r.profile.Extract(doc, r.site.BaseURL())
	rec.Status = record.StatusOK
	return rec, nil
}

func (r *Runner) dump(ctx context.Context, log logger.Logger, id int, st record.Status) {
	if r.cfg.Output.DumpDir == "" {
		return
	}
	path, err := dumpPage(ctx, r.driver, r.cfg.Output.DumpDir, id, st)
	if err != nil {
		log.Warn("No se pudo guardar el HTML", logger.Err(err))
		return
	}
	log.Debug("HTML guardado", logger.String("path", path))
}

// window returns entries[start:] truncated to limit when limit > 0.
func window(entries []roster.Entry, start, limit int) []roster.Entry {
	if start >= len(entries) {
		return nil
	}
	todo := entries[start:]
	if limit > 0 && limit < len(todo) {
		todo = todo[:limit]
	}
	return todo
}
