// Package record defines the per-researcher output unit, its status tags and
// the CSV schemas the two extraction variants write.
package record

import (
	"strconv"
)

// Status tags the outcome of one roster entry.
type Status string

const (
	StatusOK               Status = "OK"
	StatusNoResults        Status = "Sin resultados"
	StatusLinkNotFound     Status = "Enlace no encontrado"
	StatusNoExactLink      Status = "No se encontró enlace exacto"
	StatusProfileNotLoaded Status = "Perfil no cargó tras Load()"
)

// Statuses lists every status in reporting order.
var Statuses = []Status{
	StatusOK,
	StatusNoResults,
	StatusLinkNotFound,
	StatusNoExactLink,
	StatusProfileNotLoaded,
}

// Failed reports whether s marks a record without profile data.
func (s Status) Failed() bool {
	return s != StatusOK
}

// Record is one processed roster entry.
type Record struct {
	// ID is the 1-based position of the entry in the roster.
	ID int
	// Query is the full name searched for.
	Query  string
	Fields map[string]string
	Status Status
}

// Get returns a field or "".
func (r Record) Get(key string) string {
	if r.Fields == nil {
		return ""
	}
	return r.Fields[key]
}

// Column maps a CSV header to a value taken from a record.
type Column struct {
	Name  string
	Value func(r Record) string
}

// field is a column backed by Record.Fields under the same name.
func field(name string) Column {
	return Column{Name: name, Value: func(r Record) string { return r.Get(name) }}
}

// Schema is the ordered set of output columns.
type Schema struct {
	Columns []Column
}

// Header returns the column names.
func (s Schema) Header() []string {
	out := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		out[i] = c.Name
	}
	return out
}

// Row renders r in column order. Every row has the full width of the
// header, including rows of failed entries.
func (s Schema) Row(r Record) []string {
	out := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		out[i] = c.Value(r)
	}
	return out
}

// Index returns the position of the named column or -1.
func (s Schema) Index(name string) int {
	for i, c := range s.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Column names shared by both schemas.
const (
	ColStatus = "Estado"
	ColEmail  = "E-Mail"
)

// Column names of the labeled schema.
const (
	ColID           = "ID"
	ColQuery        = "Nombre Buscado"
	ColFullName     = "Nombre Completo"
	ColSex          = "Sexo"
	ColUnit         = "Unidad"
	ColTitle        = "Título Profesional"
	ColInstitution  = "Institución"
	ColProjects     = "Proyectos"
	ColPublications = "Publicaciones"
	ColPDFLink      = "Link CV PDF"
)

// Column names of the tables schema.
const (
	ColResearcher = "Investigador"
	ColPhone      = "Fono/Anexo"
	ColUnits      = "Unidad(es)"
	ColDegrees    = "Grados Académicos"
	ColAllTables  = "Tablas (todas)"
	ColPDFLocal   = "PDF_Local"
)

func statusColumn() Column {
	return Column{Name: ColStatus, Value: func(r Record) string { return string(r.Status) }}
}

// LabeledSchema has one discrete column per labeled profile field.
func LabeledSchema() Schema {
	return Schema{Columns: []Column{
		{Name: ColID, Value: func(r Record) string { return strconv.Itoa(r.ID) }},
		{Name: ColQuery, Value: func(r Record) string { return r.Query }},
		field(ColFullName),
		field(ColSex),
		field(ColUnit),
		field(ColEmail),
		field(ColTitle),
		field(ColInstitution),
		field(ColProjects),
		field(ColPublications),
		field(ColPDFLink),
		statusColumn(),
	}}
}

// TablesSchema keeps the personal info block plus two flattened columns for
// degrees and every other table. Failed entries carry the searched name in
// the researcher column.
func TablesSchema() Schema {
	return Schema{Columns: []Column{
		{Name: ColResearcher, Value: func(r Record) string {
			if r.Status.Failed() {
				return r.Query
			}
			return r.Get(ColResearcher)
		}},
		field(ColEmail),
		field(ColPhone),
		field(ColUnits),
		field(ColDegrees),
		field(ColAllTables),
		field(ColPDFLocal),
		statusColumn(),
	}}
}
