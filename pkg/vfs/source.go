package vfs

import "context"

// FileContent is the payload returned by a FileSource read.
type FileContent struct {
	Data     []byte
	MimeType string // optional mime or free-text hint; empty means unspecified
}

// Size returns the content length in bytes.
func (c FileContent) Size() int64 {
	return int64(len(c.Data))
}

// FileSource is the capability contract content providers implement. Paths are
// always relative to the mount's prefix; the empty string denotes the source
// root. The virtual filesystem never hands a source an absolute virtual path.
//
// Providers must answer the two queries consistently: an entry returned by
// List must subsequently be readable (file) or listable (directory) at the
// same relative path, absent concurrent external mutation. List must return
// only immediate children of the requested path; nested paths in one response
// are treated as a provider contract violation by the routing layer.
//
// Concurrent calls against the same source are safe only if the
// implementation is reentrant; the routing layer does not serialize them.
// Cancellation of the ambient turn arrives through ctx and is the provider's
// responsibility to honor.
type FileSource interface {
	// List returns the immediate children of relPath, each child's Path also
	// relative to the source root. Returns ErrNotFound (possibly wrapped) if
	// relPath does not exist or is a file.
	List(ctx context.Context, relPath string) ([]Entry, error)

	// Read returns the content at relPath. Returns ErrNotFound if there is no
	// entry, ErrIsADirectory if relPath denotes a directory.
	Read(ctx context.Context, relPath string) (FileContent, error)
}
