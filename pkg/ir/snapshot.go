package ir

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/hashicorp/go-version"
)

// SnapshotVersion is written into every snapshot produced by this build.
const SnapshotVersion = "0.1.0"

// supportedSnapshots is the range of snapshot versions LoadSnapshot accepts.
var supportedSnapshots = version.MustConstraints(version.NewConstraint(">= 0.1.0, < 1.0.0"))

type snapshotFile struct {
	Version string          `json:"crudgen_version"`
	App     json.RawMessage `json:"app"`
}

// MarshalSnapshot encodes app in the input document shape, wrapped with the
// snapshot version. The "app" member can be sent back to a provider verbatim.
func MarshalSnapshot(app Application) ([]byte, error) {
	body, err := MarshalDocument(app)
	if err != nil {
		return nil, err
	}
	out, err := json.MarshalIndent(snapshotFile{Version: SnapshotVersion, App: body}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("ir: encode snapshot: %w", err)
	}
	return append(out, '\n'), nil
}

// MarshalDocument encodes app as a bare input document.
func MarshalDocument(app Application) ([]byte, error) {
	doc := app.Clone()
	if doc.Entities == nil {
		doc.Entities = []Entity{}
	}
	body, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("ir: encode document: %w", err)
	}
	return body, nil
}

// LoadSnapshot decodes a snapshot written by MarshalSnapshot and re-validates
// the embedded document. A bare application document (no version wrapper) is
// accepted as well.
func LoadSnapshot(data []byte) (Application, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(data, &envelope); err != nil {
		return Application{}, fmt.Errorf("ir: decode snapshot: %w", err)
	}
	if _, wrapped := envelope["crudgen_version"]; !wrapped {
		return Parse(data)
	}

	var file snapshotFile
	if err := json.Unmarshal(data, &file); err != nil {
		return Application{}, fmt.Errorf("ir: decode snapshot: %w", err)
	}
	v, err := version.NewVersion(file.Version)
	if err != nil {
		return Application{}, fmt.Errorf("ir: snapshot version %q: %w", file.Version, err)
	}
	if !supportedSnapshots.Check(v) {
		return Application{}, fmt.Errorf("ir: snapshot version %s is not supported (want %s)", v, supportedSnapshots)
	}
	if len(file.App) == 0 {
		return Application{}, fmt.Errorf("ir: snapshot has no app document")
	}
	return Parse(file.App)
}
