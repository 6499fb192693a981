package rowcalc

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// BackupSuffix is appended to a resource name to form its backup sibling.
const BackupSuffix = ".bak"

// Resource is a named text resource the settings are read from and written to.
type Resource interface {
	Name() string
	Exists() (bool, error)
	Read() ([]byte, error)
	Write(data []byte) error
	// Backup moves the current contents to the backup sibling, replacing
	// any earlier backup.
	Backup() error
}

// FileResource is a Resource backed by a file on disk.
type FileResource struct {
	Path string
}

// NewFileResource returns a FileResource for path.
func NewFileResource(path string) *FileResource {
	return &FileResource{Path: path}
}

func (f *FileResource) Name() string { return f.Path }

// BackupPath returns the path of the backup sibling.
func (f *FileResource) BackupPath() string { return f.Path + BackupSuffix }

func (f *FileResource) Exists() (bool, error) {
	_, err := os.Stat(f.Path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("stat %q: %w", f.Path, err)
}

func (f *FileResource) Read() ([]byte, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", f.Path, err)
	}
	return data, nil
}

func (f *FileResource) Write(data []byte) error {
	if dir := filepath.Dir(f.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if err := os.WriteFile(f.Path, data, 0o644); err != nil {
		return fmt.Errorf("write %q: %w", f.Path, err)
	}
	return nil
}

func (f *FileResource) Backup() error {
	bak := f.BackupPath()
	// os.Rename does not replace an existing file on every platform.
	if err := os.Remove(bak); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove backup %q: %w", bak, err)
	}
	if err := os.Rename(f.Path, bak); err != nil {
		return fmt.Errorf("backup %q: %w", f.Path, err)
	}
	return nil
}

// SettingsPathFor derives the settings file path from a program path by
// replacing its extension with ".json".
func SettingsPathFor(executable string) string {
	return strings.TrimSuffix(executable, filepath.Ext(executable)) + ".json"
}

// DefaultSettingsPath returns the settings path next to the running binary.
func DefaultSettingsPath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locate executable: %w", err)
	}
	return SettingsPathFor(exe), nil
}
