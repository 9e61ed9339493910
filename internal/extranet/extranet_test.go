package extranet_test

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ScraperExtranet/internal/browser"
	"ScraperExtranet/internal/extranet"
	"ScraperExtranet/internal/extranet/extranettest"
	"ScraperExtranet/internal/names"
	"ScraperExtranet/internal/record"
)

const baseURL = "https://extranet.example.cl/investigacion/ver_cv_investigacion.php"

var fastWait = browser.Wait{Timeout: 80 * time.Millisecond, Interval: 5 * time.Millisecond}

func newSite(d browser.Driver, strict bool) *extranet.Site {
	return extranet.New(d, extranet.Options{BaseURL: baseURL, Wait: fastWait, Strict: strict})
}

func parse(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestSearchFillsFormAndWaitsForRows(t *testing.T) {
	t.Parallel()

	fake := &extranettest.Site{
		Search: func(tk names.Tokens) string {
			return extranettest.ResultsPage(extranettest.Row{
				Name: tk.First + " " + tk.Paternal + " " + tk.Maternal,
				Href: "javascript:Load(42)",
			})
		},
	}
	site := newSite(fake, true)

	doc, outcome, err := site.Search(context.Background(), names.Split("Juan Pérez González"))
	require.NoError(t, err)
	require.Equal(t, browser.Ready, outcome)
	require.NotNil(t, doc)

	assert.Equal(t, []string{baseURL}, fake.Opened())
	assert.Equal(t, "Juan", fake.Input(extranet.FirstNameInput))
	assert.Equal(t, "Pérez", fake.Input(extranet.PaternalInput))
	assert.Equal(t, "González", fake.Input(extranet.MaternalInput))
}

func TestSearchWithoutResultsTimesOut(t *testing.T) {
	t.Parallel()

	fake := &extranettest.Site{
		Search: func(names.Tokens) string { return extranettest.ResultsPage() },
	}

	doc, outcome, err := newSite(fake, true).Search(context.Background(), names.Split("Nadie"))
	require.NoError(t, err)
	assert.Equal(t, browser.TimedOut, outcome)
	assert.Nil(t, doc)
}

func TestSearchFormUnavailable(t *testing.T) {
	t.Parallel()

	fake := &extranettest.Site{Form: extranettest.BlankPage}

	_, _, err := newSite(fake, true).Search(context.Background(), names.Split("Juan Pérez"))
	require.ErrorIs(t, err, extranet.ErrFormUnavailable)
}

func TestSearchDriverErrorsAreFatal(t *testing.T) {
	t.Parallel()

	boom := errors.New("net::ERR_NAME_NOT_RESOLVED")

	_, _, err := newSite(&extranettest.Site{OpenErr: boom}, true).Search(context.Background(), names.Tokens{})
	require.ErrorIs(t, err, boom)

	_, _, err = newSite(&extranettest.Site{FillErr: boom}, true).Search(context.Background(), names.Tokens{})
	require.ErrorIs(t, err, boom)
}

func TestMatchRow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		rows    []extranettest.Row
		query   string
		want    extranet.Match
		wantErr bool
	}{
		{
			name:  "exact",
			rows:  []extranettest.Row{{Name: "Juan Pérez González", Href: "javascript:Load(42)"}},
			query: "Juan Pérez González",
			want:  extranet.Match{Name: "Juan Pérez González", Directive: "Load(42)"},
		},
		{
			name:  "case insensitive",
			rows:  []extranettest.Row{{Name: "JUAN PÉREZ GONZÁLEZ", Href: "javascript:Load(7)"}},
			query: "juan pérez gonzález",
			want:  extranet.Match{Name: "JUAN PÉREZ GONZÁLEZ", Directive: "Load(7)"},
		},
		{
			name: "first equal row wins",
			rows: []extranettest.Row{
				{Name: "Juan Pérez", Href: "javascript:Load(1)"},
				{Name: "Juan Pérez González", Href: "javascript:Load(2)"},
				{Name: "Juan Pérez González", Href: "javascript:Load(3)"},
			},
			query: "Juan Pérez González",
			want:  extranet.Match{Name: "Juan Pérez González", Directive: "Load(2)"},
		},
		{
			name:  "non-breaking space in cell",
			rows:  []extranettest.Row{{Name: "Juan\u00a0Pérez González", Href: "javascript:Load(42)"}},
			query: "Juan Pérez González",
			want:  extranet.Match{Name: "Juan Pérez González", Directive: "Load(42)"},
		},
		{
			name:  "name wrapped across lines",
			rows:  []extranettest.Row{{Name: "Juan\n      Pérez  González", Href: "javascript:Load(42)"}},
			query: " Juan Pérez González ",
			want:  extranet.Match{Name: "Juan Pérez González", Directive: "Load(42)"},
		},
		{
			name:    "partial names do not match",
			rows:    []extranettest.Row{{Name: "Juan Pérez González Soto", Href: "javascript:Load(1)"}},
			query:   "Juan Pérez González",
			wantErr: true,
		},
		{
			name: "bad href stops the scan",
			rows: []extranettest.Row{
				{Name: "Ana Rojas", Href: "ficha.php?id=9"},
				{Name: "Ana Rojas", Href: "javascript:Load(10)"},
			},
			query:   "Ana Rojas",
			wantErr: true,
		},
		{
			name:    "empty table",
			query:   "Ana Rojas",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := extranet.MatchRow(parse(t, extranettest.ResultsPage(tt.rows...)), tt.query)
			if tt.wantErr {
				require.ErrorIs(t, err, extranet.ErrNoExactMatch)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatchRowIgnoresNestedTables(t *testing.T) {
	t.Parallel()

	doc := parse(t, `<table class="Tabla_lst">
		<tr><th>Rut</th><th>Nombre</th></tr>
		<tr><td><table>
			<tr><td>x</td><td>x</td></tr>
			<tr><td>1</td><td><a href="javascript:Load(5)">Juan Pérez González</a></td></tr>
		</table></td><td><a href="javascript:Load(9)">Ana Rojas</a></td></tr>
	</table>`)

	_, err := extranet.MatchRow(doc, "Juan Pérez González")
	require.ErrorIs(t, err, extranet.ErrNoExactMatch)

	m, err := extranet.MatchRow(doc, "Ana Rojas")
	require.NoError(t, err)
	assert.Equal(t, "Load(9)", m.Directive)
}

func TestSearchIgnoresNestedRows(t *testing.T) {
	t.Parallel()

	// The header is the only direct row; the nested table must not count.
	fake := &extranettest.Site{Search: func(names.Tokens) string {
		return `<table class="Tabla_lst"><tr><th>Rut</th><th>Nombre
			<table><tr><td>a</td></tr><tr><td>b</td></tr></table></th></tr></table>`
	}}

	_, outcome, err := newSite(fake, true).Search(context.Background(), names.Split("Ana Rojas"))
	require.NoError(t, err)
	assert.Equal(t, browser.TimedOut, outcome)
}

func TestLoadProfileWaitsForFilledContainer(t *testing.T) {
	t.Parallel()

	fake := &extranettest.Site{
		Rendering: []string{extranettest.EmptyContainerPage, extranettest.EmptyContainerPage},
		Load: func(string) string {
			return extranettest.ProfilePage(map[string]string{
				"Investigador": "Juan Pérez González",
				"E-Mail":       "juan@x.cl",
			})
		},
	}

	doc, outcome, err := newSite(fake, false).LoadProfile(context.Background(), "Load(42)")
	require.NoError(t, err)
	require.Equal(t, browser.Ready, outcome)

	got := extranet.TableFields(doc)
	assert.Equal(t, "juan@x.cl", got[record.ColEmail])
	assert.Equal(t, "Juan Pérez González", got[record.ColResearcher])
}

func TestLoadProfileEmptyContainerTimesOut(t *testing.T) {
	t.Parallel()

	fake := &extranettest.Site{Load: func(string) string { return extranettest.EmptyContainerPage }}

	_, outcome, err := newSite(fake, false).LoadProfile(context.Background(), "Load(42)")
	require.NoError(t, err)
	assert.Equal(t, browser.TimedOut, outcome)
}

func TestLoadProfileStrict(t *testing.T) {
	t.Parallel()

	t.Run("ready", func(t *testing.T) {
		t.Parallel()
		fake := &extranettest.Site{Load: func(string) string {
			return extranettest.ProfilePage(map[string]string{"Investigador": "Juan Pérez González"})
		}}

		doc, outcome, err := newSite(fake, true).LoadProfile(context.Background(), "Load(42)")
		require.NoError(t, err)
		assert.Equal(t, browser.Ready, outcome)
		assert.NotNil(t, doc)
		assert.Equal(t, []string{"Load(42)"}, fake.Directives())
	})

	t.Run("container without researcher times out", func(t *testing.T) {
		t.Parallel()
		fake := &extranettest.Site{Load: func(string) string {
			return extranettest.ProfilePage(nil)
		}}

		_, outcome, err := newSite(fake, true).LoadProfile(context.Background(), "Load(42)")
		require.NoError(t, err)
		assert.Equal(t, browser.TimedOut, outcome)
	})

	t.Run("lenient accepts bare container", func(t *testing.T) {
		t.Parallel()
		fake := &extranettest.Site{Load: func(string) string {
			return extranettest.ProfilePage(nil)
		}}

		_, outcome, err := newSite(fake, false).LoadProfile(context.Background(), "Load(42)")
		require.NoError(t, err)
		assert.Equal(t, browser.Ready, outcome)
	})
}

func TestLoadProfileDispatchFailureSkips(t *testing.T) {
	t.Parallel()

	fake := &extranettest.Site{DispatchErr: errors.New("Load is not defined")}

	_, outcome, err := newSite(fake, true).LoadProfile(context.Background(), "Load(42)")
	require.NoError(t, err)
	assert.Equal(t, browser.TimedOut, outcome)
}

func TestLoadProfilePauseHonorsContext(t *testing.T) {
	t.Parallel()

	site := extranet.New(&extranettest.Site{}, extranet.Options{
		BaseURL:   baseURL,
		Wait:      fastWait,
		LoadPause: time.Minute,
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := site.LoadProfile(ctx, "Load(1)")
	require.ErrorIs(t, err, context.Canceled)
}

func TestLabeledFields(t *testing.T) {
	t.Parallel()

	raw, err := os.ReadFile("../extract/testdata/profile.html")
	require.NoError(t, err)

	got := extranet.LabeledFields(parse(t, string(raw)), baseURL)

	assert.Equal(t, "Juan Pérez González", got[record.ColFullName])
	assert.Equal(t, "Masculino", got[record.ColSex])
	assert.Equal(t, "Departamento de Ingeniería Industrial", got[record.ColUnit])
	assert.Equal(t, "juan@x.cl", got[record.ColEmail])
	assert.Equal(t, "Ingeniero Civil", got[record.ColTitle])
	assert.Equal(t, "Universidad de La Frontera", got[record.ColInstitution])
	assert.Equal(t, "DI21-0001 | Proyecto Uno | 2021 || DI22-0002 | Proyecto Dos | 2022", got[record.ColProjects])
	assert.Equal(t, "Artículo A | Revista X", got[record.ColPublications])
	assert.Equal(t, "https://extranet.example.cl/docs/cv_juan.pdf", got[record.ColPDFLink])
}

func TestTableFields(t *testing.T) {
	t.Parallel()

	raw, err := os.ReadFile("../extract/testdata/profile.html")
	require.NoError(t, err)

	got := extranet.TableFields(parse(t, string(raw)))

	assert.Equal(t, "Juan Pérez González", got[record.ColResearcher])
	assert.Equal(t, "juan@x.cl", got[record.ColEmail])
	assert.Equal(t, "45 2 325000 / 1234", got[record.ColPhone])
	assert.Equal(t, "Departamento de Ingeniería Industrial", got[record.ColUnits])
	assert.Equal(t, "Ingeniero Civil (Chile) || Doctor en Ciencias (España)", got[record.ColDegrees])
	assert.NotEmpty(t, got[record.ColAllTables])
	assert.Empty(t, got[record.ColPDFLocal])
}
