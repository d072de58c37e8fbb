package orchestrator

import (
	"errors"
	"fmt"
)

// ArtifactError reports the artifact a generation pass stopped at. Err is the
// underlying render, format or write failure.
type ArtifactError struct {
	Path string
	Op   string
	Err  error
}

func (e *ArtifactError) Error() string {
	return fmt.Sprintf("orchestrator: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *ArtifactError) Unwrap() error {
	return e.Err
}

// AsArtifactError unwraps err into an ArtifactError.
func AsArtifactError(err error) (*ArtifactError, bool) {
	var target *ArtifactError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}
