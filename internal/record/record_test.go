package record_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ScraperExtranet/internal/record"
)

func TestLabeledSchema(t *testing.T) {
	t.Parallel()

	s := record.LabeledSchema()
	assert.Equal(t, []string{
		"ID", "Nombre Buscado", "Nombre Completo", "Sexo", "Unidad",
		"E-Mail", "Título Profesional", "Institución",
		"Proyectos", "Publicaciones", "Link CV PDF", "Estado",
	}, s.Header())

	row := s.Row(record.Record{
		ID:     7,
		Query:  "Juan Pérez González",
		Status: record.StatusOK,
		Fields: map[string]string{
			record.ColFullName: "Juan Pérez González",
			record.ColEmail:    "juan@x.cl",
		},
	})
	assert.Equal(t, "7", row[0])
	assert.Equal(t, "Juan Pérez González", row[1])
	assert.Equal(t, "juan@x.cl", row[s.Index(record.ColEmail)])
	assert.Equal(t, "OK", row[s.Index(record.ColStatus)])
	assert.Empty(t, row[s.Index(record.ColProjects)])
}

func TestFailedRowsHaveFullWidth(t *testing.T) {
	t.Parallel()

	for _, s := range []record.Schema{record.LabeledSchema(), record.TablesSchema()} {
		row := s.Row(record.Record{ID: 1, Query: "Nadie", Status: record.StatusNoResults})
		assert.Len(t, row, len(s.Header()))
		assert.Equal(t, "Sin resultados", row[len(row)-1])
	}
}

func TestTablesSchemaResearcherColumn(t *testing.T) {
	t.Parallel()

	s := record.TablesSchema()
	assert.Equal(t, []string{
		"Investigador", "E-Mail", "Fono/Anexo", "Unidad(es)",
		"Grados Académicos", "Tablas (todas)", "PDF_Local", "Estado",
	}, s.Header())

	failed := s.Row(record.Record{Query: "Ana Rojas", Status: record.StatusLinkNotFound})
	assert.Equal(t, "Ana Rojas", failed[0])

	ok := s.Row(record.Record{
		Query:  "ana rojas",
		Status: record.StatusOK,
		Fields: map[string]string{record.ColResearcher: "Ana Rojas Soto"},
	})
	assert.Equal(t, "Ana Rojas Soto", ok[0])
}

func TestIndexMissing(t *testing.T) {
	t.Parallel()

	assert.Equal(t, -1, record.TablesSchema().Index("ID"))
}

func TestStatusFailed(t *testing.T) {
	t.Parallel()

	assert.False(t, record.StatusOK.Failed())
	for _, s := range record.Statuses[1:] {
		assert.True(t, s.Failed(), s)
	}
}
