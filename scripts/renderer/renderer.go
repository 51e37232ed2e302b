package renderer

import (
	"embed"
	"fmt"
	"strings"
	"sync"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

const templateDir = "templates/"

//go:embed templates/*.tmpl
var tplFS embed.FS

// parsed templates by TemplateName
var tplCache sync.Map

func lookup(name TemplateName) (*template.Template, error) {
	if cached, ok := tplCache.Load(name); ok {
		return cached.(*template.Template), nil
	}
	path := templateDir + string(name)
	t, err := template.New(string(name)).
		Funcs(sprig.TxtFuncMap()).
		ParseFS(tplFS, path)
	if err != nil {
		return nil, fmt.Errorf("parsing template %q: %w", path, err)
	}
	actual, _ := tplCache.LoadOrStore(name, t)
	return actual.(*template.Template), nil
}

// Render merges the named template file with data.
func Render(name TemplateName, data any) (string, error) {
	t, err := lookup(name)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	if err := t.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("executing template %q: %w", name, err)
	}
	return sb.String(), nil
}

// MustRender is Render for synth-time callers, where a broken embedded
// template is a programming error.
func MustRender(name TemplateName, data any) string {
	out, err := Render(name, data)
	if err != nil {
		panic(err)
	}
	return out
}

// File is one generated file of an asset directory.
type File struct {
	Path     string
	Template TemplateName
	Data     any
}

// RenderFiles renders every file into a path to content map, stopping at
// the first failure.
func RenderFiles(files ...File) (map[string][]byte, error) {
	out := make(map[string][]byte, len(files))
	for _, f := range files {
		if _, dup := out[f.Path]; dup {
			return nil, fmt.Errorf("file %q rendered twice", f.Path)
		}
		body, err := Render(f.Template, f.Data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Path, err)
		}
		out[f.Path] = []byte(body)
	}
	return out, nil
}
