package vfs

import (
	"strings"

	"github.com/pkg/errors"
)

// MountPoint binds one non-root path prefix to one FileSource, with optional
// descriptive metadata surfaced in tool descriptions. A mount owns its source
// exclusively for the mount's lifetime; sharing a source between two mounts
// would make relative-path translation ambiguous.
type MountPoint struct {
	Prefix      string // normalized, no leading or trailing separator; may span segments ("a/b")
	Source      FileSource
	Description string
}

// NewMountPoint validates the prefix and constructs a mount point.
// Valid prefixes are non-empty, are not the root, and contain no empty,
// ".", or ".." segments.
func NewMountPoint(prefix string, source FileSource, description string) (MountPoint, error) {
	if source == nil {
		return MountPoint{}, errors.New("mount point requires a source")
	}
	cleaned, err := validatePrefix(prefix)
	if err != nil {
		return MountPoint{}, err
	}
	return MountPoint{Prefix: cleaned, Source: source, Description: description}, nil
}

// validatePrefix normalizes redundant separators away and rejects anything
// that is not a plain relative segment path.
func validatePrefix(prefix string) (string, error) {
	trimmed := strings.Trim(prefix, "/")
	if trimmed == "" {
		return "", errors.Errorf("invalid mount prefix %q: must not be empty or root", prefix)
	}
	for _, seg := range strings.Split(trimmed, "/") {
		switch seg {
		case "":
			return "", errors.Errorf("invalid mount prefix %q: empty segment", prefix)
		case ".", "..":
			return "", errors.Errorf("invalid mount prefix %q: %q segment not allowed", prefix, seg)
		}
	}
	return trimmed, nil
}

// firstSegment returns the leading segment of the mount prefix, the name the
// mount appears under in the root listing.
func (m MountPoint) firstSegment() string {
	if i := strings.IndexByte(m.Prefix, '/'); i >= 0 {
		return m.Prefix[:i]
	}
	return m.Prefix
}
