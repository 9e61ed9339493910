package pipeline

import (
	"time"

	"ScraperExtranet/internal/record"
)

// Summary describes one run.
type Summary struct {
	RunID string
	// Start is the number of roster entries skipped before the run.
	Start int
	// Processed counts entries that produced a row.
	Processed int
	// Written counts rows flushed to the output by this run.
	Written int
	Counts  map[record.Status]int
	Elapsed time.Duration
}

func newSummary(runID string, start int) Summary {
	return Summary{RunID: runID, Start: start, Counts: make(map[record.Status]int, len(record.Statuses))}
}

func (s *Summary) add(st record.Status) {
	s.Processed++
	s.Counts[st]++
}

// Failed returns the number of processed entries without profile data.
func (s Summary) Failed() int {
	n := 0
	for st, c := range s.Counts {
		if st.Failed() {
			n += c
		}
	}
	return n
}
