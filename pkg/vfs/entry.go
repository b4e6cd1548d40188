package vfs

import "strings"

// EntryKind discriminates directory entries from file entries.
type EntryKind int

const (
	EntryDirectory EntryKind = iota
	EntryFile
)

// String returns the string representation of EntryKind
func (k EntryKind) String() string {
	switch k {
	case EntryDirectory:
		return "dir"
	case EntryFile:
		return "file"
	default:
		return "unknown"
	}
}

// SizeUnknown marks a file entry whose size was not reported by its source.
const SizeUnknown int64 = -1

// Entry is one record in a directory listing. Entries carry no content;
// content is fetched separately by path so listing stays cheap.
type Entry struct {
	Kind        EntryKind
	Name        string // single path segment, no separators
	Path        string // resolved path, "/"-separated; source-relative until a mount re-prefixes it
	Size        int64  // file size in bytes; SizeUnknown when not reported, 0 for directories
	Description string // optional human-readable hint shown to the model
}

// NewDirectoryEntry creates a directory entry from a path. The entry name is
// the last path segment.
func NewDirectoryEntry(path string) Entry {
	return Entry{
		Kind: EntryDirectory,
		Name: baseSegment(path),
		Path: path,
	}
}

// NewFileEntry creates a file entry from a path and size, SizeUnknown if the
// source cannot report one.
func NewFileEntry(path string, size int64) Entry {
	return Entry{
		Kind: EntryFile,
		Name: baseSegment(path),
		Path: path,
		Size: size,
	}
}

// WithDescription returns a copy of the entry with the description set.
func (e Entry) WithDescription(desc string) Entry {
	e.Description = desc
	return e
}

// IsDir reports whether the entry denotes a directory.
func (e Entry) IsDir() bool {
	return e.Kind == EntryDirectory
}

func baseSegment(path string) string {
	path = strings.TrimSuffix(path, "/")
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}
