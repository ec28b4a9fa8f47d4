package model

import "strings"

// ArtifactKind is the distribution format of a built artifact
type ArtifactKind string

const (
	ArtifactSdist   ArtifactKind = "sdist"
	ArtifactWheel   ArtifactKind = "bdist_wheel"
	ArtifactUnknown ArtifactKind = "unknown"
)

// Artifact is a distributable file produced by the package builder
type Artifact struct {
	Path   string       // Absolute path on disk
	Name   string       // Base file name
	Kind   ArtifactKind // Distribution format
	Size   int64        // Size in bytes
	SHA256 string       // Hex encoded SHA-256 digest
}

// ArtifactKindOf guesses the distribution format from a file name
func ArtifactKindOf(name string) ArtifactKind {
	switch {
	case strings.HasSuffix(name, ".whl"):
		return ArtifactWheel
	case strings.HasSuffix(name, ".tar.gz"), strings.HasSuffix(name, ".zip"):
		return ArtifactSdist
	default:
		return ArtifactUnknown
	}
}

// PythonTag returns the interpreter tag of a wheel (e.g. "py3"), or
// "source" for an sdist.
func (a *Artifact) PythonTag() string {
	if a.Kind != ArtifactWheel {
		return "source"
	}
	// {distribution}-{version}(-{build tag})?-{python tag}-{abi tag}-{platform tag}.whl
	parts := strings.Split(strings.TrimSuffix(a.Name, ".whl"), "-")
	if len(parts) < 5 {
		return "py3"
	}
	return parts[len(parts)-3]
}
