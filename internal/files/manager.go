package files

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Manager stores uploaded files under a root directory, one folder per
// workspace and group (a Cell Manager name or "schedule").
type Manager struct {
	root   string
	logger *slog.Logger
}

// NewManager creates a manager rooted at root.
func NewManager(root string, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		root:   root,
		logger: logger.With(slog.String("component", "upload_store")),
	}
}

// Root returns the upload root directory.
func (m *Manager) Root() string {
	return m.root
}

// WorkspaceDir returns the folder that holds a workspace's uploads.
func (m *Manager) WorkspaceDir(workspace string) string {
	return filepath.Join(m.root, SanitizeFilename(workspace))
}

// SaveUpload copies r into <root>/<workspace>/<group>/<filename> and returns
// the stored path. The file name is reduced to its base name; an existing
// file with the same name is replaced.
func (m *Manager) SaveUpload(workspace, group, filename string, r io.Reader) (string, error) {
	name := SanitizeFilename(filename)
	if name == "" {
		return "", fmt.Errorf("invalid upload file name %q", filename)
	}

	dir := filepath.Join(m.WorkspaceDir(workspace), SanitizeFilename(group))
	if err := m.EnsureDirectory(dir); err != nil {
		return "", err
	}

	path := filepath.Join(dir, name)
	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}

	written, err := io.Copy(tmp, r)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to store upload %s: %w", name, err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to store upload %s: %w", name, err)
	}

	m.logger.Debug("upload stored",
		slog.String("workspace", workspace),
		slog.String("group", group),
		slog.String("file", name),
		slog.Int64("bytes", written))
	return path, nil
}

// ClearGroup removes every stored file of one group so a re-upload replaces
// the previous set.
func (m *Manager) ClearGroup(workspace, group string) error {
	dir := filepath.Join(m.WorkspaceDir(workspace), SanitizeFilename(group))
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to clear uploads in %s: %w", dir, err)
	}
	return nil
}

// RemoveWorkspace deletes all uploads of a workspace.
func (m *Manager) RemoveWorkspace(workspace string) error {
	dir := m.WorkspaceDir(workspace)
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove workspace uploads %s: %w", dir, err)
	}
	m.logger.Debug("workspace uploads removed", slog.String("workspace", workspace))
	return nil
}

// FileExists checks if a regular file exists at path
func (m *Manager) FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// EnsureDirectory creates a directory if it doesn't exist
func (m *Manager) EnsureDirectory(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return nil
}

// SanitizeFilename keeps only the base name of an uploaded file name and
// drops characters that are unsafe in paths. Windows separators are treated
// as separators on every platform.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(strings.TrimSpace(name))
	if name == "." || name == ".." || name == "/" {
		return ""
	}

	return strings.Map(func(r rune) rune {
		switch {
		case r < 0x20, strings.ContainsRune(`<>:"|?*`, r):
			return '_'
		default:
			return r
		}
	}, name)
}
