package model

import (
	"errors"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/m-mizutani/goerr/v2"
)

var (
	// ErrEmptyVersion is returned when the manifest has no version value
	ErrEmptyVersion = errors.New("version is empty")
	// ErrInvalidVersion is returned when the version is not a semantic version
	ErrInvalidVersion = errors.New("version is not a valid semantic version")
	// ErrVersionNotIncreased is returned when a bump would not move the version forward
	ErrVersionNotIncreased = errors.New("new version must be greater than current version")
)

// TagPrefix is prepended to a version to form its tag name
const TagPrefix = "v"

// Version is the version literal read from a manifest. It is never
// normalized, so TagName always reproduces the manifest value.
type Version string

// String returns the raw version literal
func (v Version) String() string {
	return string(v)
}

// TagName returns the git tag for the version
func (v Version) TagName() string {
	return TagPrefix + string(v)
}

// ReleaseName returns the title used for the remote release
func (v Version) ReleaseName() string {
	return v.TagName()
}

// Validate checks that the version is present and parses as a semantic
// version. PEP 440 spellings such as 1.0.0rc1 or 1.0.post1 are rejected; use
// 1.0.0-rc.1 instead.
func (v Version) Validate() error {
	if strings.TrimSpace(string(v)) == "" {
		return ErrEmptyVersion
	}
	if string(v) != strings.TrimSpace(string(v)) {
		return goerr.Wrap(ErrInvalidVersion, "version has surrounding whitespace", goerr.V("version", string(v)))
	}
	if strings.HasPrefix(string(v), TagPrefix) {
		return goerr.Wrap(ErrInvalidVersion, "version must not carry the tag prefix", goerr.V("version", string(v)))
	}
	if _, err := semver.NewVersion(string(v)); err != nil {
		return goerr.Wrap(ErrInvalidVersion, err.Error(), goerr.V("version", string(v)))
	}
	return nil
}

// IsPrerelease reports whether the version carries a prerelease component
func (v Version) IsPrerelease() bool {
	sv, err := semver.NewVersion(string(v))
	if err != nil {
		return false
	}
	return sv.Prerelease() != ""
}

// BumpPart selects the semantic version component to increment
type BumpPart string

const (
	BumpMajor BumpPart = "major"
	BumpMinor BumpPart = "minor"
	BumpPatch BumpPart = "patch"
)

// Bump returns the next version for the given part
func (v Version) Bump(part BumpPart) (Version, error) {
	sv, err := semver.NewVersion(string(v))
	if err != nil {
		return "", goerr.Wrap(ErrInvalidVersion, err.Error(), goerr.V("version", string(v)))
	}

	var next semver.Version
	switch part {
	case BumpMajor:
		next = sv.IncMajor()
	case BumpMinor:
		next = sv.IncMinor()
	case BumpPatch:
		next = sv.IncPatch()
	default:
		return "", goerr.New("unknown bump part", goerr.V("part", string(part)))
	}

	return Version(next.String()), nil
}

// Less reports whether v sorts before other. Both must be valid.
func (v Version) Less(other Version) (bool, error) {
	a, err := semver.NewVersion(string(v))
	if err != nil {
		return false, goerr.Wrap(ErrInvalidVersion, err.Error(), goerr.V("version", string(v)))
	}
	b, err := semver.NewVersion(string(other))
	if err != nil {
		return false, goerr.Wrap(ErrInvalidVersion, err.Error(), goerr.V("version", string(other)))
	}
	return a.LessThan(b), nil
}

// VersionFromTag strips the tag prefix from a tag name or a full tag ref
func VersionFromTag(tag string) (Version, bool) {
	tag = strings.TrimPrefix(tag, "refs/tags/")
	if !IsReleaseTag(tag) {
		return "", false
	}
	return Version(strings.TrimPrefix(tag, TagPrefix)), true
}

// IsReleaseTag reports whether the tag name matches the release pattern v*
func IsReleaseTag(tag string) bool {
	return strings.HasPrefix(tag, TagPrefix) && len(tag) > len(TagPrefix)
}
