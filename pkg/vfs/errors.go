package vfs

import (
	"fmt"

	"github.com/pkg/errors"
)

// Expected, recoverable lookup failures. Tool adapters render these as
// agent-visible error text; they never cross the tool boundary as failures.
var (
	ErrNotFound     = errors.New("no such file or directory")
	ErrIsADirectory = errors.New("is a directory")
)

// MountConflictError reports two mounts with equal or overlapping prefixes.
// It is fatal at construction time and must be fixed by the caller.
type MountConflictError struct {
	PrefixA string
	PrefixB string
}

func (e *MountConflictError) Error() string {
	if e.PrefixA == e.PrefixB {
		return fmt.Sprintf("mount conflict: duplicate prefix %q", e.PrefixA)
	}
	return fmt.Sprintf("mount conflict: prefix %q overlaps %q", e.PrefixA, e.PrefixB)
}

// SourceError wraps a provider failure (I/O error, contract violation,
// cancelled call) so it stays distinguishable from ErrNotFound and
// ErrIsADirectory while preserving the original cause.
type SourceError struct {
	Prefix string // mount prefix whose source failed
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source %q: %v", e.Prefix, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

func newSourceError(prefix string, err error) *SourceError {
	return &SourceError{Prefix: prefix, Err: err}
}
