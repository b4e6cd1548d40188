// Package vfs provides a read-only, hierarchical virtual namespace over
// heterogeneous content providers. Mount points bind path prefixes to
// FileSource implementations; the VirtualFileSystem routes list and read
// requests to the matching source and translates paths in both directions.
//
// Routing is pure and synchronous. All I/O happens inside the delegated
// source calls, so the routing layer can be tested entirely with in-memory
// fakes. Instances are built fresh per conversation turn and hold no state
// beyond the immutable mount list.
package vfs

import (
	"context"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// VirtualFileSystem aggregates mount points into one namespace rooted at "/".
// It owns no content, only routing state.
type VirtualFileSystem struct {
	mounts []MountPoint
}

// New constructs a virtual filesystem from the given mounts. Construction
// fails with *MountConflictError if two mounts share a prefix or one prefix
// is an ancestor of another; conflicts are rejected here, once, rather than
// silently shadowed at call time.
func New(mounts ...MountPoint) (*VirtualFileSystem, error) {
	for i := 0; i < len(mounts); i++ {
		for j := i + 1; j < len(mounts); j++ {
			a, b := mounts[i].Prefix, mounts[j].Prefix
			if a == b || strings.HasPrefix(b, a+"/") || strings.HasPrefix(a, b+"/") {
				return nil, &MountConflictError{PrefixA: a, PrefixB: b}
			}
		}
	}
	fs := &VirtualFileSystem{mounts: make([]MountPoint, len(mounts))}
	copy(fs.mounts, mounts)
	return fs, nil
}

// Mounts returns a copy of the mount list, ordered as supplied.
func (fs *VirtualFileSystem) Mounts() []MountPoint {
	out := make([]MountPoint, len(fs.mounts))
	copy(out, fs.mounts)
	return out
}

// ListDirectory returns the entries under path, with every entry path
// rewritten to its absolute virtual form. Listing the root synthesizes one
// directory entry per mount; this is the only place entries are fabricated
// rather than sourced. Fails with ErrNotFound when no mount covers the path
// or the source has no directory there.
func (fs *VirtualFileSystem) ListDirectory(ctx context.Context, path string) ([]Entry, error) {
	rel, err := normalizePath(path)
	if err != nil {
		return nil, err
	}

	if rel == "" {
		return fs.rootEntries(), nil
	}

	mount, sourcePath, ok := fs.resolve(rel)
	if !ok {
		return nil, errors.Wrap(ErrNotFound, path)
	}

	children, err := mount.Source.List(ctx, sourcePath)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, newSourceError(mount.Prefix, err)
	}

	out := make([]Entry, 0, len(children))
	for _, child := range children {
		if !isImmediateChild(sourcePath, child) {
			return nil, newSourceError(mount.Prefix,
				errors.Errorf("entry %q is not an immediate child of %q", child.Path, sourcePath))
		}
		child.Path = "/" + mount.Prefix + "/" + child.Path
		out = append(out, child)
	}
	return out, nil
}

// ReadFile returns the content at path. Fails with ErrNotFound when no mount
// covers the path or the source has no entry, and ErrIsADirectory when the
// path denotes the root, a mount prefix, or a directory inside a source.
func (fs *VirtualFileSystem) ReadFile(ctx context.Context, path string) (FileContent, error) {
	rel, err := normalizePath(path)
	if err != nil {
		return FileContent{}, err
	}

	if rel == "" {
		return FileContent{}, errors.Wrap(ErrIsADirectory, "/")
	}

	mount, sourcePath, ok := fs.resolve(rel)
	if !ok {
		return FileContent{}, errors.Wrap(ErrNotFound, path)
	}
	if sourcePath == "" {
		// The path names the mount itself.
		return FileContent{}, errors.Wrap(ErrIsADirectory, path)
	}

	content, err := mount.Source.Read(ctx, sourcePath)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrIsADirectory) {
			return FileContent{}, err
		}
		return FileContent{}, newSourceError(mount.Prefix, err)
	}
	return content, nil
}

// rootEntries synthesizes the root listing: one directory per distinct mount
// first segment, sorted by name for determinism. A multi-segment prefix
// appears under its first segment only.
func (fs *VirtualFileSystem) rootEntries() []Entry {
	seen := make(map[string]bool, len(fs.mounts))
	entries := make([]Entry, 0, len(fs.mounts))
	for _, m := range fs.mounts {
		name := m.firstSegment()
		if seen[name] {
			continue
		}
		seen[name] = true
		entry := NewDirectoryEntry("/" + name)
		if name == m.Prefix {
			entry.Description = m.Description
		}
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries
}

// resolve finds the mount whose prefix is the longest ancestor of rel and
// returns the source-relative remainder ("" when rel equals the prefix).
func (fs *VirtualFileSystem) resolve(rel string) (MountPoint, string, bool) {
	var best MountPoint
	bestLen := -1
	for _, m := range fs.mounts {
		if rel != m.Prefix && !strings.HasPrefix(rel, m.Prefix+"/") {
			continue
		}
		if len(m.Prefix) > bestLen {
			best = m
			bestLen = len(m.Prefix)
		}
	}
	if bestLen < 0 {
		return MountPoint{}, "", false
	}
	return best, strings.TrimPrefix(strings.TrimPrefix(rel, best.Prefix), "/"), true
}

// normalizePath validates an absolute virtual path and returns it relative to
// the root with separators collapsed: "/" → "", "/a//b/" → "a/b". "." segments
// are dropped and ".." segments resolve against their parent; a ".." that
// would escape the root resolves to nothing and reads as ErrNotFound so a
// traversal can never leave a mount.
func normalizePath(path string) (string, error) {
	if !strings.HasPrefix(path, "/") {
		return "", errors.Wrapf(ErrNotFound, "%s: path must be absolute", path)
	}
	var segments []string
	for _, seg := range strings.Split(path, "/") {
		switch seg {
		case "", ".":
			continue
		case "..":
			if len(segments) == 0 {
				return "", errors.Wrap(ErrNotFound, path)
			}
			segments = segments[:len(segments)-1]
		default:
			segments = append(segments, seg)
		}
	}
	return strings.Join(segments, "/"), nil
}

// isImmediateChild checks the provider contract: every listed entry must sit
// directly under the listed path and carry a separator-free name.
func isImmediateChild(parent string, e Entry) bool {
	if e.Name == "" || strings.ContainsRune(e.Name, '/') {
		return false
	}
	if parent == "" {
		return e.Path == e.Name
	}
	return e.Path == parent+"/"+e.Name
}
