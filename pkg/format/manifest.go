package format

import (
	"golang.org/x/mod/modfile"
)

// Manifest parses a go.mod and prints it in canonical form.
func Manifest(src []byte) ([]byte, error) {
	file, err := modfile.Parse("go.mod", src, nil)
	if err != nil {
		return nil, &Error{Kind: KindManifest, Err: err}
	}
	file.SortBlocks()
	file.Cleanup()
	out, err := file.Format()
	if err != nil {
		return nil, &Error{Kind: KindManifest, Err: err}
	}
	return out, nil
}
