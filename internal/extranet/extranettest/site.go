// Package extranettest provides an in-memory extranet for tests. Site
// implements browser.Driver by swapping canned HTML documents in response to
// navigation, form submission and load directives.
package extranettest

import (
	"context"
	"fmt"
	"html"
	"strings"
	"sync"

	"ScraperExtranet/internal/browser"
	"ScraperExtranet/internal/extranet"
	"ScraperExtranet/internal/names"
)

// FormPage is the search page as served before submission.
const FormPage = `<html><body><form>
<input id="nombre_filtro"><input id="paterno_filtro"><input id="materno_filtro">
<input type="button" value="BUSCAR">
</form></body></html>`

// BlankPage has neither the form nor a profile.
const BlankPage = `<html><body></body></html>`

// EmptyContainerPage has the profile container before Load() fills it.
const EmptyContainerPage = `<html><body><div id="div_cont"></div></body></html>`

// Row is one search result.
type Row struct {
	Name string
	Href string
}

// ResultsPage renders the search page with a result table holding rows.
func ResultsPage(rows ...Row) string {
	var b strings.Builder
	b.WriteString(`<html><body><table class="Tabla_lst"><tr><th>Rut</th><th>Nombre</th></tr>`)
	for i, r := range rows {
		fmt.Fprintf(&b, `<tr><td>%d</td><td><a href="%s">%s</a></td></tr>`,
			i+1, html.EscapeString(r.Href), html.EscapeString(r.Name))
	}
	b.WriteString(`</table></body></html>`)
	return b.String()
}

// ProfilePage renders a labeled profile with the given fields and an
// optional Proyectos table.
func ProfilePage(fields map[string]string, projects ...[]string) string {
	var b strings.Builder
	b.WriteString(`<html><body><div id="div_cont"><table>`)
	b.WriteString(`<tr><th colspan="3">DATOS PERSONALES</th></tr>`)
	for _, label := range []string{"Investigador", "E-Mail", "Fono/Anexo", "Unidad(es)", "Sexo"} {
		v, ok := fields[label]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, `<tr><td></td><td>%s:</td><td>%s</td></tr>`, label, html.EscapeString(v))
	}
	b.WriteString(`</table>`)
	if len(projects) > 0 {
		b.WriteString(`<h3>Proyectos</h3><table><tr><th>Código</th><th>Título</th></tr>`)
		for _, p := range projects {
			b.WriteString(`<tr>`)
			for _, c := range p {
				fmt.Fprintf(&b, `<td>%s</td>`, html.EscapeString(c))
			}
			b.WriteString(`</tr>`)
		}
		b.WriteString(`</table>`)
	}
	b.WriteString(`</div></body></html>`)
	return b.String()
}

// Site is a fake browser session. Zero-valued hooks serve FormPage on open,
// BlankPage on search and BlankPage on load.
type Site struct {
	// Form is served on Open.
	Form string
	// Search returns the page after submitting tokens.
	Search func(t names.Tokens) string
	// Load returns the page after dispatching directive.
	Load func(directive string) string
	// Rendering pages are served one per snapshot after a dispatch, before
	// the page returned by Load.
	Rendering []string

	OpenErr     error
	FillErr     error
	DispatchErr error

	mu         sync.Mutex
	current    string
	inputs     map[string]string
	opened     []string
	directives []string
	rendering  []string
}

var _ browser.Driver = (*Site)(nil)

func (s *Site) Open(_ context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.OpenErr != nil {
		return s.OpenErr
	}
	s.opened = append(s.opened, url)
	s.inputs = map[string]string{}
	s.current = s.Form
	if s.current == "" {
		s.current = FormPage
	}
	return nil
}

func (s *Site) Fill(_ context.Context, selector, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FillErr != nil {
		return s.FillErr
	}
	if s.inputs == nil {
		s.inputs = map[string]string{}
	}
	s.inputs[selector] = value
	return nil
}

func (s *Site) Click(_ context.Context, selector string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if selector != extranet.SubmitButton {
		return fmt.Errorf("extranettest: ningún elemento clicable %q", selector)
	}
	t := names.Tokens{
		First:    s.inputs[extranet.FirstNameInput],
		Paternal: s.inputs[extranet.PaternalInput],
		Maternal: s.inputs[extranet.MaternalInput],
	}
	s.current = BlankPage
	if s.Search != nil {
		s.current = s.Search(t)
	}
	return nil
}

func (s *Site) Dispatch(_ context.Context, directive string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.DispatchErr != nil {
		return s.DispatchErr
	}
	s.directives = append(s.directives, directive)
	s.rendering = append([]string(nil), s.Rendering...)
	s.current = BlankPage
	if s.Load != nil {
		s.current = s.Load(directive)
	}
	return nil
}

func (s *Site) Snapshot(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.rendering) > 0 {
		page := s.rendering[0]
		s.rendering = s.rendering[1:]
		return page, nil
	}
	return s.current, nil
}

// Input returns the last value typed into selector.
func (s *Site) Input(selector string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inputs[selector]
}

// Opened returns every URL navigated to.
func (s *Site) Opened() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.opened...)
}

// Directives returns every dispatched directive in order.
func (s *Site) Directives() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.directives...)
}
