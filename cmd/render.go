package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"ScraperExtranet/internal/checkpoint"
	"ScraperExtranet/internal/pipeline"
	"ScraperExtranet/internal/record"
)

func renderSummary(w io.Writer, output string, sum pipeline.Summary) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.SetTitle("Run %s", sum.RunID)
	t.AppendHeader(table.Row{"Estado", "Registros"})
	for _, st := range record.Statuses {
		t.AppendRow(table.Row{st, sum.Counts[st]})
	}
	t.AppendFooter(table.Row{"Total", sum.Processed})
	t.Render()

	fmt.Fprintf(w, "Inicio: %d  Filas escritas: %d  Duración: %s  Salida: %s\n",
		sum.Start, sum.Written, sum.Elapsed.Round(time.Millisecond), output)
}

// statusCounts tallies the status column of tbl, unknown values included.
func statusCounts(tbl checkpoint.Table) (map[string]int, []string) {
	counts := make(map[string]int)
	var order []string
	for _, st := range record.Statuses {
		order = append(order, string(st))
	}
	col := tbl.Column(record.ColStatus)
	for _, row := range tbl.Rows {
		v := ""
		if col >= 0 && col < len(row) {
			v = row[col]
		}
		if _, seen := counts[v]; !seen && !isKnownStatus(v) {
			order = append(order, v)
		}
		counts[v]++
	}
	return counts, order
}

func isKnownStatus(v string) bool {
	for _, st := range record.Statuses {
		if string(st) == v {
			return true
		}
	}
	return false
}

func renderInspect(w io.Writer, path string, tbl checkpoint.Table, preview int, columns []string) {
	counts, order := statusCounts(tbl)

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.SetTitle("%s", path)
	t.AppendHeader(table.Row{"Estado", "Registros"})
	for _, st := range order {
		t.AppendRow(table.Row{st, counts[st]})
	}
	t.AppendFooter(table.Row{"Total", len(tbl.Rows)})
	t.Render()

	if preview <= 0 || len(tbl.Rows) == 0 {
		return
	}

	idx := make([]int, 0, len(columns))
	header := make(table.Row, 0, len(columns))
	for _, c := range columns {
		if i := tbl.Column(c); i >= 0 {
			idx = append(idx, i)
			header = append(header, c)
		}
	}
	if len(idx) == 0 {
		return
	}

	p := table.NewWriter()
	p.SetOutputMirror(w)
	p.SetStyle(table.StyleRounded)
	p.AppendHeader(header)
	for n, row := range tbl.Rows {
		if n >= preview {
			break
		}
		out := make(table.Row, len(idx))
		for j, i := range idx {
			if i < len(row) {
				out[j] = truncate(row[i], 60)
			}
		}
		p.AppendRow(out)
	}
	p.Render()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
