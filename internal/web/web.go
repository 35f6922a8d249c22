// Package web содержит HTML-шаблоны и статику сайта, встроенные в бинарник.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

// Templates разбирает все страницы. Имя шаблона совпадает с именем файла, например "index.html".
func Templates() (*template.Template, error) {
	tmpl, err := template.New("").ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("web: не удалось разобрать шаблоны: %w", err)
	}
	return tmpl, nil
}

// MustTemplates как Templates, но паникует при ошибке.
func MustTemplates() *template.Template {
	tmpl, err := Templates()
	if err != nil {
		panic(err)
	}
	return tmpl
}

// Static возвращает файловую систему со стилями.
func Static() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}
