package tool

import (
	"context"
	"encoding/base64"
	"fmt"
	"sort"
	"strings"

	pkgLogger "github.com/fpt/contextfs/pkg/logger"
	"github.com/fpt/contextfs/pkg/message"
	"github.com/fpt/contextfs/pkg/vfs"
	"github.com/pkg/errors"
)

var logger = pkgLogger.NewComponentLogger("vfs-tool")

// DefaultMaxViewBytes caps view output when no limit is configured.
const DefaultMaxViewBytes = 32 * 1024

// VFSToolManager exposes a virtual filesystem to the model as ls/view tools.
// Filesystem errors never cross the tool boundary as Go errors; they are
// rendered as error text in the tool result so the agent loop can retry
// with a corrected path.
type VFSToolManager struct {
	fs           *vfs.VirtualFileSystem
	maxViewBytes int

	// Tool registry
	tools map[message.ToolName]message.Tool
}

// NewVFSToolManager creates a tool manager over the given virtual filesystem.
// maxViewBytes <= 0 selects DefaultMaxViewBytes.
func NewVFSToolManager(fs *vfs.VirtualFileSystem, maxViewBytes int) *VFSToolManager {
	if maxViewBytes <= 0 {
		maxViewBytes = DefaultMaxViewBytes
	}

	manager := &VFSToolManager{
		fs:           fs,
		maxViewBytes: maxViewBytes,
		tools:        make(map[message.ToolName]message.Tool),
	}

	manager.registerVFSTools()

	return manager
}

// Implement domain.ToolManager interface
func (m *VFSToolManager) GetTool(name message.ToolName) (message.Tool, bool) {
	tool, exists := m.tools[name]
	return tool, exists
}

func (m *VFSToolManager) GetTools() map[message.ToolName]message.Tool {
	return m.tools
}

func (m *VFSToolManager) CallTool(ctx context.Context, name message.ToolName, args message.ToolArgumentValues) (message.ToolResult, error) {
	tool, exists := m.tools[name]
	if !exists {
		return message.NewToolResultError(fmt.Sprintf("tool %s not found", name)), nil
	}

	handler := tool.Handler()
	return handler(ctx, args)
}

func (m *VFSToolManager) RegisterTool(name message.ToolName, description message.ToolDescription, args []message.ToolArgument, handler func(ctx context.Context, args message.ToolArgumentValues) (message.ToolResult, error)) {
	tool := &vfsTool{
		name:        name,
		description: description,
		arguments:   args,
		handler:     handler,
	}
	m.tools[name] = tool
}

// AnnotateTools implements domain.ToolAnnotator. The view description carries
// the active output cap so the model knows when to page with offset/limit.
func (m *VFSToolManager) AnnotateTools() map[message.ToolName]string {
	return map[message.ToolName]string{
		"view": fmt.Sprintf("output limited to %d bytes per call", m.maxViewBytes),
	}
}

func (m *VFSToolManager) registerVFSTools() {
	m.RegisterTool("ls", message.ToolDescription(m.lsDescription()),
		[]message.ToolArgument{
			{Name: "path", Description: "Absolute directory path to list, e.g. / or /attachments", Required: true, Type: "string"},
		},
		m.handleLs)

	m.RegisterTool("view", message.ToolDescription("View the contents of a file. Large files are truncated; use offset and limit to page through them."),
		[]message.ToolArgument{
			{Name: "path", Description: "Absolute file path to view", Required: true, Type: "string"},
			{Name: "offset", Description: "Byte offset to start from (optional)", Required: false, Type: "number"},
			{Name: "limit", Description: "Maximum number of bytes to return (optional)", Required: false, Type: "number"},
		},
		m.handleView)
}

// lsDescription enumerates the mounted top-level directories so the model
// knows what the namespace contains without an initial probing call.
func (m *VFSToolManager) lsDescription() string {
	var b strings.Builder
	b.WriteString("List the contents of a directory in the virtual filesystem.")

	mounts := m.fs.Mounts()
	if len(mounts) == 0 {
		return b.String()
	}

	b.WriteString(" Available directories:")
	for _, mount := range mounts {
		b.WriteString(fmt.Sprintf(" /%s", mount.Prefix))
		if mount.Description != "" {
			b.WriteString(fmt.Sprintf(" (%s)", mount.Description))
		}
		b.WriteString(";")
	}
	return strings.TrimSuffix(b.String(), ";")
}

func (m *VFSToolManager) handleLs(ctx context.Context, args message.ToolArgumentValues) (message.ToolResult, error) {
	path, ok := args["path"].(string)
	if !ok {
		return message.NewToolResultError("path parameter is required"), nil
	}

	entries, err := m.fs.ListDirectory(ctx, path)
	if err != nil {
		return message.NewToolResultError(renderVFSError(path, err)), nil
	}

	return message.NewToolResultText(renderListing(entries)), nil
}

func (m *VFSToolManager) handleView(ctx context.Context, args message.ToolArgumentValues) (message.ToolResult, error) {
	path, ok := args["path"].(string)
	if !ok {
		return message.NewToolResultError("path parameter is required"), nil
	}

	content, err := m.fs.ReadFile(ctx, path)
	if err != nil {
		return message.NewToolResultError(renderVFSError(path, err)), nil
	}

	// Images go back as base64 attachments for vision analysis.
	if strings.HasPrefix(content.MimeType, "image/") {
		b64 := base64.StdEncoding.EncodeToString(content.Data)
		desc := fmt.Sprintf("Image file: %s (%s, %s). Analyze the attached image.", path, content.MimeType, formatSize(content.Size()))
		return message.NewToolResultWithImages(desc, []string{b64}), nil
	}

	data := content.Data
	total := len(data)

	start := intArg(args, "offset", 0)
	if start < 0 {
		start = 0
	}
	if start > total {
		start = total
	}
	data = data[start:]

	if limit := intArg(args, "limit", 0); limit > 0 && limit < len(data) {
		data = data[:limit]
	}

	truncated := false
	if len(data) > m.maxViewBytes {
		data = data[:m.maxViewBytes]
		truncated = true
	}

	text := string(data)
	if truncated {
		text += fmt.Sprintf("\n[truncated: showing %d of %d bytes, use offset to read more]", len(data), total)
	}
	return message.NewToolResultText(text), nil
}

// renderListing formats entries as newline-separated "kind name" lines,
// directories first, each group alphabetical.
func renderListing(entries []vfs.Entry) string {
	sorted := make([]vfs.Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].IsDir() != sorted[j].IsDir() {
			return sorted[i].IsDir()
		}
		return sorted[i].Name < sorted[j].Name
	})

	if len(sorted) == 0 {
		return "(empty directory)"
	}

	var b strings.Builder
	for _, e := range sorted {
		b.WriteString(e.Kind.String())
		b.WriteString(" ")
		b.WriteString(e.Name)
		if !e.IsDir() && e.Size != vfs.SizeUnknown {
			b.WriteString(fmt.Sprintf(" (%d bytes)", e.Size))
		}
		if e.Description != "" {
			b.WriteString(" - ")
			b.WriteString(e.Description)
		}
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// renderVFSError maps filesystem errors to the error text the model sees.
func renderVFSError(path string, err error) string {
	switch {
	case errors.Is(err, vfs.ErrNotFound):
		return fmt.Sprintf("%s: no such file or directory", path)
	case errors.Is(err, vfs.ErrIsADirectory):
		return fmt.Sprintf("%s: is a directory, use ls instead", path)
	default:
		var srcErr *vfs.SourceError
		if errors.As(err, &srcErr) {
			logger.WarnWithIntention(pkgLogger.IntentionWarning, "File source failed", "path", path, "error", err)
		}
		return fmt.Sprintf("%s: %v", path, err)
	}
}

// formatSize renders a byte count, switching to KB at one KiB.
func formatSize(size int64) string {
	if size < 1024 {
		return fmt.Sprintf("%d bytes", size)
	}
	return fmt.Sprintf("%dKB", size/1024)
}

// intArg reads a numeric argument that may arrive as float64 or int.
func intArg(args message.ToolArgumentValues, name string, def int) int {
	v, ok := args[name]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	default:
		return def
	}
}

// vfsTool is a helper struct for tool registration
type vfsTool struct {
	name        message.ToolName
	description message.ToolDescription
	arguments   []message.ToolArgument
	handler     func(ctx context.Context, args message.ToolArgumentValues) (message.ToolResult, error)
}

func (t *vfsTool) RawName() message.ToolName {
	return t.name
}

func (t *vfsTool) Name() message.ToolName {
	return t.name
}

func (t *vfsTool) Description() message.ToolDescription {
	return t.description
}

func (t *vfsTool) Arguments() []message.ToolArgument {
	return t.arguments
}

func (t *vfsTool) Handler() func(ctx context.Context, args message.ToolArgumentValues) (message.ToolResult, error) {
	return t.handler
}
