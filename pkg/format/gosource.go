package format

import (
	"bytes"
	"go/ast"
	gofmt "go/format"
	"go/parser"
	"go/token"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/tools/go/ast/astutil"
	"golang.org/x/tools/imports"
)

// Go reformats src, drops imports nothing references and sorts the rest.
// Invalid syntax fails with *Error.
func Go(src []byte) ([]byte, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "artifact.go", src, parser.ParseComments)
	if err != nil {
		return nil, &Error{Kind: KindGo, Err: err}
	}
	removeUnusedImports(fset, file)

	var buf bytes.Buffer
	if err := gofmt.Node(&buf, fset, file); err != nil {
		return nil, &Error{Kind: KindGo, Err: err}
	}

	out, err := imports.Process("artifact.go", buf.Bytes(), &imports.Options{
		FormatOnly: true,
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
	})
	if err != nil {
		return nil, &Error{Kind: KindGo, Err: err}
	}
	return out, nil
}

func removeUnusedImports(fset *token.FileSet, file *ast.File) {
	type unused struct{ name, path string }
	var drop []unused
	for _, spec := range file.Imports {
		importPath, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}
		name := importName(spec, importPath)
		if name == "_" || name == "." {
			continue
		}
		if !usesPackage(file, name) {
			explicit := ""
			if spec.Name != nil {
				explicit = spec.Name.Name
			}
			drop = append(drop, unused{name: explicit, path: importPath})
		}
	}
	for _, imp := range drop {
		astutil.DeleteNamedImport(fset, file, imp.name, imp.path)
	}
}

var majorVersion = regexp.MustCompile(`^v[0-9]+$`)

// importName guesses the package name of an import without loading it: the
// last path element, skipping a major version element and trimming
// ".vN" and "go-" decorations.
func importName(spec *ast.ImportSpec, importPath string) string {
	if spec.Name != nil {
		return spec.Name.Name
	}
	parts := strings.Split(importPath, "/")
	name := parts[len(parts)-1]
	if majorVersion.MatchString(name) && len(parts) > 1 {
		name = parts[len(parts)-2]
	}
	if i := strings.Index(name, ".v"); i > 0 {
		name = name[:i]
	}
	name = strings.TrimPrefix(name, "go-")
	name = strings.TrimSuffix(name, "-go")
	return strings.ReplaceAll(name, "-", "")
}

// usesPackage reports whether file refers to name as a package qualifier.
// Identifiers bound to a local declaration are skipped.
func usesPackage(file *ast.File, name string) bool {
	used := false
	ast.Inspect(file, func(n ast.Node) bool {
		if used {
			return false
		}
		sel, ok := n.(*ast.SelectorExpr)
		if !ok {
			return true
		}
		if ident, ok := sel.X.(*ast.Ident); ok && ident.Name == name && ident.Obj == nil {
			used = true
			return false
		}
		return true
	})
	return used
}
