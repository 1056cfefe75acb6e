// Package codegen is the small public entry point a caller reaches for
// once it has a finished artifact.Artifact: it hands the artifact to the
// Mach-O format backend (format/macho) and returns the serialized object
// file. Producing the artifact itself — compiling IR, assembling
// instructions — is out of scope for this repo (spec §1); GenerateObject
// only does the container-format half of the job.
package codegen

import (
	"github.com/pkg/errors"

	"github.com/arc-language/core-macho/artifact"
	"github.com/arc-language/core-macho/format/macho"
)

// GenerateObject serializes a to a Mach-O MH_OBJECT relocatable object
// file sized for a's own target architecture.
func GenerateObject(a *artifact.Artifact) ([]byte, error) {
	data, err := macho.ToBytes(a)
	if err != nil {
		return nil, errors.Wrap(err, "generate mach-o object")
	}
	return data, nil
}
