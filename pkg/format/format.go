// Package format cleans rendered artifacts: Go sources, the module manifest
// and the OpenAPI document. Every formatter is idempotent.
package format

import (
	"path"
	"strings"
)

// Kinds of formatted artifacts.
const (
	KindGo       = "go"
	KindManifest = "go.mod"
	KindAPI      = "openapi"
)

// Func formats one artifact.
type Func func(src []byte) ([]byte, error)

// Formatter selects a Func per destination path.
type Formatter interface {
	For(dest string) Func
}

// Default formats Go sources, go.mod and openapi.json and leaves every other
// artifact untouched.
type Default struct{}

// For returns the formatter of dest, or nil when dest is copied verbatim.
func (Default) For(dest string) Func {
	return For(dest)
}

// For returns the formatter of dest, or nil when dest is copied verbatim.
func For(dest string) Func {
	base := path.Base(strings.ReplaceAll(dest, "\\", "/"))
	switch {
	case base == "go.mod":
		return Manifest
	case base == "openapi.json":
		return APIDocument
	case strings.HasSuffix(base, ".go"):
		return Go
	}
	return nil
}
