package source

import (
	"context"
	"mime"
	"os"
	"path"
	"path/filepath"
	"sort"

	pkgLogger "github.com/fpt/contextfs/pkg/logger"
	"github.com/fpt/contextfs/pkg/vfs"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

var sourceLogger = pkgLogger.NewComponentLogger("source")

// ArchiveMountPrefix is the conventional mount prefix for archived history.
const ArchiveMountPrefix = "history"

// manifestFileName sits at the archive root and carries per-file summaries.
const manifestFileName = "manifest.yaml"

// archiveManifest maps archive-relative file paths to short summaries shown
// in listings.
type archiveManifest struct {
	Files map[string]string `yaml:"files"`
}

// ArchiveSource serves archived conversation files from a directory on disk.
// Listings come from the directory tree; content is read lazily per Read.
// The manifest, if present, is loaded once at construction.
type ArchiveSource struct {
	root     string
	manifest archiveManifest
}

// NewArchiveSource creates a source rooted at dir. A missing or malformed
// manifest is not an error; listings just carry no summaries.
func NewArchiveSource(dir string) *ArchiveSource {
	s := &ArchiveSource{root: dir}

	data, err := os.ReadFile(filepath.Join(dir, manifestFileName))
	if err != nil {
		return s
	}
	if err := yaml.Unmarshal(data, &s.manifest); err != nil {
		sourceLogger.Warn("Ignoring malformed archive manifest", "dir", dir, "error", err)
		s.manifest = archiveManifest{}
	}
	return s
}

// Mount wraps the source in the conventional history mount point.
func (s *ArchiveSource) Mount() (vfs.MountPoint, error) {
	return vfs.NewMountPoint(ArchiveMountPrefix, s, "archived earlier conversations")
}

func (s *ArchiveSource) List(ctx context.Context, relPath string) ([]vfs.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dirEntries, err := os.ReadDir(s.abs(relPath))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(vfs.ErrNotFound, relPath)
		}
		// Listing a regular file has no children.
		if info, statErr := os.Stat(s.abs(relPath)); statErr == nil && !info.IsDir() {
			return nil, errors.Wrap(vfs.ErrNotFound, relPath)
		}
		return nil, err
	}

	entries := make([]vfs.Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		rel := path.Join(relPath, de.Name())
		if relPath == "" && de.Name() == manifestFileName {
			continue
		}
		if de.IsDir() {
			entries = append(entries, vfs.NewDirectoryEntry(rel))
			continue
		}
		size := vfs.SizeUnknown
		if info, infoErr := de.Info(); infoErr == nil {
			size = info.Size()
		}
		entries = append(entries, vfs.NewFileEntry(rel, size).WithDescription(s.manifest.Files[rel]))
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

func (s *ArchiveSource) Read(ctx context.Context, relPath string) (vfs.FileContent, error) {
	if err := ctx.Err(); err != nil {
		return vfs.FileContent{}, err
	}

	abs := s.abs(relPath)
	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return vfs.FileContent{}, errors.Wrap(vfs.ErrNotFound, relPath)
		}
		return vfs.FileContent{}, err
	}
	if info.IsDir() {
		return vfs.FileContent{}, errors.Wrap(vfs.ErrIsADirectory, relPath)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return vfs.FileContent{}, err
	}
	return vfs.FileContent{Data: data, MimeType: mime.TypeByExtension(path.Ext(relPath))}, nil
}

// abs joins an already-normalized relative path onto the archive root.
func (s *ArchiveSource) abs(relPath string) string {
	return filepath.Join(s.root, filepath.FromSlash(relPath))
}
