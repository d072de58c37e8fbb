package crudgen

import (
	"io/fs"

	"github.com/goliatone/go-crudgen/pkg/render"
)

// EmbeddedTemplates exposes the built-in backend templates so callers can
// reuse or override them with render.WithTemplatesFS.
func EmbeddedTemplates() fs.FS {
	return render.TemplatesFS()
}

// EmbeddedAssets exposes the files copied into every generated tree as is.
func EmbeddedAssets() fs.FS {
	return render.AssetsFS()
}
