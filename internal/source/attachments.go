// Package source provides concrete vfs.FileSource implementations: a per-turn
// snapshot of uploaded attachments and a disk-backed archive of past
// conversations.
package source

import (
	"context"
	"io/fs"
	"mime"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fpt/contextfs/pkg/vfs"
	"github.com/pkg/errors"
)

// AttachmentMountPrefix is the conventional mount prefix for attachments.
const AttachmentMountPrefix = "attachments"

// Attachment is one uploaded file for the current turn. Name may contain
// forward slashes to place the file in a subdirectory of the mount.
type Attachment struct {
	Name        string
	Data        []byte
	MimeType    string
	Description string
}

// AttachmentSource serves a fixed snapshot of attachments taken at
// construction time. It holds everything in memory and is safe for
// concurrent use.
type AttachmentSource struct {
	files map[string]Attachment  // rel path -> attachment
	dirs  map[string][]vfs.Entry // rel dir path -> immediate children, sorted
}

// NewAttachmentSource builds a source from the given attachments.
// Attachments with empty or invalid names are skipped.
func NewAttachmentSource(attachments []Attachment) *AttachmentSource {
	s := &AttachmentSource{
		files: make(map[string]Attachment),
		dirs:  map[string][]vfs.Entry{"": nil},
	}

	for _, att := range attachments {
		name := cleanAttachmentName(att.Name)
		if name == "" {
			continue
		}
		if att.MimeType == "" {
			att.MimeType = mime.TypeByExtension(path.Ext(name))
		}
		s.files[name] = att
	}

	// Materialize intermediate directories so List answers for any ancestor.
	for name := range s.files {
		for dir := path.Dir(name); dir != "."; dir = path.Dir(dir) {
			if _, ok := s.dirs[dir]; ok {
				break
			}
			s.dirs[dir] = nil
		}
	}

	// Build immediate-children listings per directory.
	for name, att := range s.files {
		dir := parentOf(name)
		entry := vfs.NewFileEntry(name, int64(len(att.Data))).WithDescription(att.Description)
		s.dirs[dir] = append(s.dirs[dir], entry)
	}
	for dir := range s.dirs {
		if dir == "" {
			continue
		}
		parent := parentOf(dir)
		s.dirs[parent] = append(s.dirs[parent], vfs.NewDirectoryEntry(dir))
	}
	for dir, entries := range s.dirs {
		sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
		s.dirs[dir] = entries
	}

	return s
}

// LoadAttachmentsDir reads every regular file under dir into an attachment
// snapshot, preserving the relative directory structure. Hidden files and
// directories are skipped.
func LoadAttachmentsDir(dir string) ([]Attachment, error) {
	var attachments []Attachment
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if strings.HasPrefix(d.Name(), ".") && p != dir {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		attachments = append(attachments, Attachment{
			Name: filepath.ToSlash(rel),
			Data: data,
		})
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load attachments from %s", dir)
	}
	return attachments, nil
}

// Mount wraps the source in the conventional attachments mount point.
func (s *AttachmentSource) Mount() (vfs.MountPoint, error) {
	return vfs.NewMountPoint(AttachmentMountPrefix, s, "files the user shared this conversation")
}

func (s *AttachmentSource) List(ctx context.Context, relPath string) ([]vfs.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, ok := s.dirs[relPath]
	if !ok {
		return nil, errors.Wrap(vfs.ErrNotFound, relPath)
	}
	out := make([]vfs.Entry, len(entries))
	copy(out, entries)
	return out, nil
}

func (s *AttachmentSource) Read(ctx context.Context, relPath string) (vfs.FileContent, error) {
	if err := ctx.Err(); err != nil {
		return vfs.FileContent{}, err
	}
	if _, ok := s.dirs[relPath]; ok {
		return vfs.FileContent{}, errors.Wrap(vfs.ErrIsADirectory, relPath)
	}
	att, ok := s.files[relPath]
	if !ok {
		return vfs.FileContent{}, errors.Wrap(vfs.ErrNotFound, relPath)
	}
	return vfs.FileContent{Data: att.Data, MimeType: att.MimeType}, nil
}

// cleanAttachmentName normalizes an attachment name into a relative path.
// Names that resolve outside the mount are rejected.
func cleanAttachmentName(name string) string {
	cleaned := path.Clean(strings.Trim(name, "/"))
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return ""
	}
	return cleaned
}

func parentOf(relPath string) string {
	dir := path.Dir(relPath)
	if dir == "." {
		return ""
	}
	return dir
}
