package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	pkgLogger "github.com/fpt/contextfs/pkg/logger"
)

// UserConfig manages per-user configuration and data directories
type UserConfig struct {
	BaseDir     string // $HOME/.contextfs
	ProjectsDir string // $HOME/.contextfs/projects
}

// DefaultUserConfig creates the default user configuration
func DefaultUserConfig() (*UserConfig, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}

	baseDir := filepath.Join(homeDir, ".contextfs")

	config := &UserConfig{
		BaseDir:     baseDir,
		ProjectsDir: filepath.Join(baseDir, "projects"),
	}

	// Ensure directories exist
	if err := config.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create user directories: %w", err)
	}

	return config, nil
}

// EnsureDirectories creates the user configuration directories if they don't exist
func (c *UserConfig) EnsureDirectories() error {
	dirs := []string{
		c.BaseDir,
		c.ProjectsDir,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// GetProjectDataDir returns a project-specific data directory
// Creates $HOME/.contextfs/projects/{project-hash}/
func (c *UserConfig) GetProjectDataDir(projectPath string) (string, error) {
	// Get absolute path for consistent hashing
	absPath, err := filepath.Abs(projectPath)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	// Create a safe directory name from the project path
	projectHash := generateProjectHash(absPath)
	projectDir := filepath.Join(c.ProjectsDir, projectHash)

	// Create project directory
	if err := os.MkdirAll(projectDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create project directory: %w", err)
	}

	// Create project info file for reference
	infoFile := filepath.Join(projectDir, "project_info.txt")
	if _, err := os.Stat(infoFile); os.IsNotExist(err) {
		info := fmt.Sprintf("Project Path: %s\nCreated: %s\n", absPath, getCurrentTimestamp())
		if err := os.WriteFile(infoFile, []byte(info), 0644); err != nil {
			// Non-fatal error, just log it
			pkgLogger.NewComponentLogger("user-config").WarnWithIntention(pkgLogger.IntentionWarning, "Failed to create project info file", "error", err)
		}
	}

	return projectDir, nil
}

// GetProjectHistoryFile returns the readline history file path for a specific project
func (c *UserConfig) GetProjectHistoryFile(projectPath string) (string, error) {
	projectDir, err := c.GetProjectDataDir(projectPath)
	if err != nil {
		return "", err
	}
	return filepath.Join(projectDir, "history.txt"), nil
}

// GetProjectArchiveDir returns the conversation archive directory for a specific project
// Used as the default archive mount when no archive_dir is configured
func (c *UserConfig) GetProjectArchiveDir(projectPath string) (string, error) {
	projectDir, err := c.GetProjectDataDir(projectPath)
	if err != nil {
		return "", err
	}

	archiveDir := filepath.Join(projectDir, "archive")
	if err := os.MkdirAll(archiveDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}
	return archiveDir, nil
}

// generateProjectHash creates a safe directory name from a project path
func generateProjectHash(projectPath string) string {
	// Full path with slashes replaced by dashes, so the directory name
	// stays readable and stable across runs

	// Convert to slash notation for consistency
	normalizedPath := filepath.ToSlash(projectPath)

	// Replace slashes with dashes
	dashPath := strings.ReplaceAll(normalizedPath, "/", "-")

	// Remove any problematic characters but keep dashes
	result := ""
	for _, r := range dashPath {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'):
			result += string(r)
		case r == '-' || r == '_' || r == '.':
			result += string(r)
		default:
			result += "_"
		}
	}

	return result
}

// getCurrentTimestamp returns the current timestamp as a string
func getCurrentTimestamp() string {
	return time.Now().Format("2006-01-02 15:04:05")
}
