// Package renderer turns account reports into markdown.
//
// Every report is a text/template stored in templates/, with shared parts
// declared as partials. The output is plain markdown: the pts command prints
// it as is or through a terminal renderer.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"
	"time"

	"github.com/etnz/papertrade"
)

//go:embed templates/*.md
var templates embed.FS

// funcs are available to all templates.
var funcs = template.FuncMap{
	"money":    func(m papertrade.Money) string { return m.String() },
	"signed":   func(m papertrade.Money) string { return m.SignedString() },
	"inc":      func(i int) int { return i + 1 },
	"when":     func(tx papertrade.Transaction) string { return tx.When().UTC().Format(time.DateTime) },
	"describe": Transaction,
}

func accountPartials() map[string]string {
	return map[string]string{
		"account_title": "account_title.md",
	}
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, "templates/"+mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Funcs(funcs).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		content, err := fs.ReadFile(templates, "templates/"+file)
		if err != nil {
			return fmt.Sprintf("error reading partial template %q: %v", file, err)
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
