// Package extract reads profile fields out of a rendered researcher page.
//
// Every function tolerates missing markup: an absent label, table or section
// yields an empty string, never an error. Variable-length tables are
// flattened into one string per column using CellSep between cells, RowSep
// between rows and TableSep between tables.
package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Delimiters used when flattening tables.
const (
	CellSep  = " | "
	RowSep   = " || "
	TableSep = " ~~ "
)

// DegreesHeading marks the table that precedes the three degree blocks.
const DegreesHeading = "TITULOS/GRADOS ACADÉMICOS"

// ContentSelector is the region the profile loader populates.
const ContentSelector = "#div_cont"

// Clean collapses whitespace runs (non-breaking spaces included) into single
// spaces and trims the result.
func Clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ownText concatenates the text nodes that are direct children of s.
func ownText(s *goquery.Selection) string {
	return s.Contents().FilterFunction(func(_ int, c *goquery.Selection) bool {
		return goquery.NodeName(c) == "#text"
	}).Text()
}

// labelCell returns the cell right after the first td whose own text
// contains label.
func labelCell(doc *goquery.Document, label string) *goquery.Selection {
	var found *goquery.Selection
	doc.Find("td").EachWithBreak(func(_ int, td *goquery.Selection) bool {
		if !strings.Contains(ownText(td), label) {
			return true
		}
		next := td.NextAllFiltered("td").First()
		if next.Length() == 0 {
			return true
		}
		found = next
		return false
	})
	return found
}

// HasLabel reports whether a labeled cell with a value cell next to it exists.
func HasLabel(doc *goquery.Document, label string) bool {
	return labelCell(doc, label) != nil
}

// LabelValue returns the text of the cell adjacent to the first cell whose
// text contains label.
func LabelValue(doc *goquery.Document, label string) string {
	cell := labelCell(doc, label)
	if cell == nil {
		return ""
	}
	return Clean(cell.Text())
}

// SectionTable flattens the first table that follows an h3 whose text is
// heading. The table's header row is skipped.
func SectionTable(doc *goquery.Document, heading string) string {
	var table *goquery.Selection
	doc.Find("h3").EachWithBreak(func(_ int, h *goquery.Selection) bool {
		if Clean(ownText(h)) != heading {
			return true
		}
		t := h.NextAllFiltered("table").First()
		if t.Length() == 0 {
			return true
		}
		table = t
		return false
	})
	if table == nil {
		return ""
	}
	return FlattenTable(table)
}

// FlattenTable joins every row after the first (header) row.
func FlattenTable(table *goquery.Selection) string {
	return FlattenRows(table.Find("tr").Slice(1, goquery.ToEnd))
}

// FlattenRows joins the cell texts of each row with CellSep and the rows with
// RowSep, preserving document order.
func FlattenRows(rows *goquery.Selection) string {
	out := make([]string, 0, rows.Length())
	rows.Each(func(_ int, tr *goquery.Selection) {
		cells := make([]string, 0, 4)
		tr.Find("td").Each(func(_ int, td *goquery.Selection) {
			cells = append(cells, Clean(td.Text()))
		})
		out = append(out, strings.Join(cells, CellSep))
	})
	return strings.Join(out, RowSep)
}

// PersonalInfo reads rows 2 to 5 of the first content table. Each row holds
// an icon cell, a "Label:" cell and a value cell. Rows with fewer cells are
// ignored.
func PersonalInfo(doc *goquery.Document) map[string]string {
	info := make(map[string]string, 4)
	table := doc.Find(ContentSelector + " table").First()
	table.Find("tr").Slice(1, goquery.ToEnd).EachWithBreak(func(i int, tr *goquery.Selection) bool {
		if i >= 4 {
			return false
		}
		c := tr.Find("td")
		if c.Length() < 3 {
			return true
		}
		key := strings.TrimRight(Clean(c.Eq(1).Text()), ":")
		if key != "" {
			info[key] = Clean(c.Eq(2).Text())
		}
		return true
	})
	return info
}

// degreeIndex returns the index of the degrees heading table or -1.
func degreeIndex(tables *goquery.Selection) int {
	idx := -1
	tables.EachWithBreak(func(i int, t *goquery.Selection) bool {
		th := t.Find("th").First()
		if th.Length() > 0 && strings.Contains(strings.ToUpper(Clean(th.Text())), DegreesHeading) {
			idx = i
			return false
		}
		return true
	})
	return idx
}

// AcademicDegrees reads the three tables after the degrees heading
// (professional title, master's, doctorate) and returns the value cell of
// each one's first row, joined by RowSep.
func AcademicDegrees(doc *goquery.Document) string {
	tables := doc.Find(ContentSelector + " table")
	idx := degreeIndex(tables)
	if idx < 0 {
		return ""
	}

	var degrees []string
	for i := idx + 1; i <= idx+3 && i < tables.Length(); i++ {
		cells := tables.Eq(i).Find("tr").First().Find("td")
		if cells.Length() < 2 {
			continue
		}
		label := strings.TrimRight(Clean(cells.Eq(0).Text()), ":")
		val := Clean(cells.Eq(1).Text())
		if label != "" && val != "" {
			degrees = append(degrees, val)
		}
	}
	return strings.Join(degrees, RowSep)
}

// OtherTables flattens every content table except the personal info table
// and the degree block, joining the results with TableSep.
func OtherTables(doc *goquery.Document) string {
	tables := doc.Find(ContentSelector + " table")
	acad := degreeIndex(tables)

	var out []string
	tables.Each(func(i int, t *goquery.Selection) {
		if i == 0 || (acad >= 0 && i >= acad && i <= acad+3) {
			return
		}
		out = append(out, FlattenTable(t))
	})
	return strings.Join(out, TableSep)
}

// PDFLink returns the first link to a PDF, resolved against base when the
// href is relative.
func PDFLink(doc *goquery.Document, base string) string {
	href, ok := doc.Find(`a[href*=".pdf"]`).First().Attr("href")
	if !ok {
		return ""
	}
	href = strings.TrimSpace(href)
	ref, err := url.Parse(href)
	if err != nil || ref.IsAbs() || base == "" {
		return href
	}
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	return b.ResolveReference(ref).String()
}
