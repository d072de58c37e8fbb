package ir

import (
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseYAML validates a YAML application document. The document shape is
// the same as the JSON one.
func ParseYAML(data []byte) (Application, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Application{}, &ValidationError{Issues: []Issue{{
			Code:    CodeParseError,
			Message: err.Error(),
		}}}
	}
	doc, err := fromYAML(raw)
	if err != nil {
		return Application{}, &ValidationError{Issues: []Issue{{
			Code:    CodeParseError,
			Message: err.Error(),
		}}}
	}
	return FromDocument(doc)
}

// ParseFile picks the decoder from the file extension. Unknown extensions are
// tried as JSON first and then as YAML.
func ParseFile(name string, data []byte) (Application, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return Application{}, fmt.Errorf("ir: file %s is empty", name)
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	case ".json", ".lock":
		return Parse(data)
	}
	app, err := Parse(data)
	if err == nil {
		return app, nil
	}
	if yamlApp, yamlErr := ParseYAML(data); yamlErr == nil {
		return yamlApp, nil
	}
	return Application{}, err
}

// fromYAML converts yaml.v3 output into the value space of a JSON decoder so
// both inputs go through the same validation walk.
func fromYAML(value any) (any, error) {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			converted, err := fromYAML(item)
			if err != nil {
				return nil, err
			}
			out[key] = converted
		}
		return out, nil
	case map[any]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			name, ok := key.(string)
			if !ok {
				return nil, fmt.Errorf("non-string key %v", key)
			}
			converted, err := fromYAML(item)
			if err != nil {
				return nil, err
			}
			out[name] = converted
		}
		return out, nil
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			converted, err := fromYAML(item)
			if err != nil {
				return nil, err
			}
			out[i] = converted
		}
		return out, nil
	default:
		return v, nil
	}
}
