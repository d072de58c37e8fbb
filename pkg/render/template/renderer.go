package template

import (
	"io"
)

// TemplateRenderer executes named templates. Filters and global values are
// shared by every template the engine renders.
type TemplateRenderer interface {
	// RenderTemplate executes the template name with data and returns the
	// output, copying it to every out writer.
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	// RegisterFilter adds a filter usable as {{ value|name }}.
	RegisterFilter(name string, fn func(input any, param any) (any, error)) error
	// GlobalContext merges data into the values visible to every template.
	GlobalContext(data any) error
}
