package format

import (
	"context"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/goccy/go-json"
)

// APIDocument validates an OpenAPI 3 document and re-indents it.
func APIDocument(src []byte) ([]byte, error) {
	loader := &openapi3.Loader{Context: context.Background()}
	doc, err := loader.LoadFromData(src)
	if err != nil {
		return nil, &Error{Kind: KindAPI, Err: err}
	}
	if err := doc.Validate(loader.Context, openapi3.DisableExamplesValidation()); err != nil {
		return nil, &Error{Kind: KindAPI, Err: err}
	}

	var raw any
	if err := json.Unmarshal(src, &raw); err != nil {
		return nil, &Error{Kind: KindAPI, Err: err}
	}
	out, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return nil, &Error{Kind: KindAPI, Err: err}
	}
	return append(out, '\n'), nil
}
