package validation

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	apierrors "bkpreport/internal/errors"
	"bkpreport/internal/files"
)

// UploadKind selects the accepted extensions for an upload.
type UploadKind int

const (
	// SessionUpload is a Data Protector session export.
	SessionUpload UploadKind = iota
	// WorkbookUpload is a schedule workbook.
	WorkbookUpload
)

// Extensions returns the lower-case extensions accepted for the kind.
func (k UploadKind) Extensions() []string {
	if k == WorkbookUpload {
		return files.WorkbookExtensions
	}
	return files.SessionExtensions
}

// zipMagic starts every .xlsx/.xlsm container.
var zipMagic = []byte("PK\x03\x04")

// FileValidator provides common file validation functions for the CLI and the HTTP API
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger.With(slog.String("component", "file_validator")),
	}
}

// ValidateInputDirectory validates that input directory exists and contains expected files
func (v *FileValidator) ValidateInputDirectory(dir string, requiredPattern string) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		v.logger.Error("Input directory does not exist",
			slog.String("directory", dir))
		return fmt.Errorf("input directory %s does not exist", dir)
	}
	if err != nil {
		v.logger.Error("Failed to stat input directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to stat directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		v.logger.Error("Input path is not a directory",
			slog.String("path", dir))
		return fmt.Errorf("%s is not a directory", dir)
	}

	if requiredPattern != "" {
		count, err := v.CountFiles(dir, requiredPattern)
		if err != nil {
			return err
		}

		// No files is not an error; the report simply has no rows for them.
		if count == 0 {
			v.logger.Warn("No files matching pattern found",
				slog.String("directory", dir),
				slog.String("pattern", requiredPattern))
			return nil
		}

		v.logger.Info("Input directory validated",
			slog.String("directory", dir),
			slog.Int("files_found", count),
			slog.String("pattern", requiredPattern))
	}

	return nil
}

// ValidateOutputDirectory ensures output directory exists or can be created
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	// Verify it's writable by creating a test file
	file, err := os.CreateTemp(dir, ".write_test")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	file.Close()
	os.Remove(file.Name())

	v.logger.Debug("Output directory validated",
		slog.String("directory", dir))
	return nil
}

// ValidateFile checks if a specific file exists and is readable
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("File does not exist",
			slog.String("file", path))
		return fmt.Errorf("file %s does not exist", path)
	}
	if err != nil {
		v.logger.Error("Failed to stat file",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		v.logger.Error("Path is a directory, not a file",
			slog.String("path", path))
		return fmt.Errorf("%s is a directory, not a file", path)
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("File is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("file %s is not readable: %w", path, err)
	}
	file.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// CountFiles counts files matching a pattern in a directory
func (v *FileValidator) CountFiles(dir string, pattern string) (int, error) {
	fullPattern := filepath.Join(dir, pattern)
	matches, err := filepath.Glob(fullPattern)
	if err != nil {
		v.logger.Error("Failed to count files",
			slog.String("pattern", fullPattern),
			slog.String("error", err.Error()))
		return 0, fmt.Errorf("failed to count files: %w", err)
	}

	fileCount := 0
	for _, match := range matches {
		info, err := os.Stat(match)
		if err == nil && !info.IsDir() {
			fileCount++
		}
	}

	return fileCount, nil
}

// ValidateSessionFile checks a session export path before parsing.
func (v *FileValidator) ValidateSessionFile(path string) error {
	if err := v.ValidateFile(path); err != nil {
		return err
	}
	return v.ValidateUploadName(SessionUpload, filepath.Base(path))
}

// ValidateWorkbookFile checks a schedule workbook path before parsing.
func (v *FileValidator) ValidateWorkbookFile(path string) error {
	if err := v.ValidateFile(path); err != nil {
		return err
	}
	if err := v.ValidateUploadName(WorkbookUpload, filepath.Base(path)); err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("file %s is not readable: %w", path, err)
	}
	defer f.Close()

	head := make([]byte, len(zipMagic))
	if _, err := io.ReadFull(f, head); err != nil || !IsWorkbookContent(head) {
		v.logger.Warn("Workbook is not an Office Open XML container",
			slog.String("file", path))
		return apierrors.UnsupportedFileError(filepath.Base(path), WorkbookUpload.Extensions())
	}
	return nil
}

// ValidateUploadName checks the extension of an uploaded file name and
// rejects Office lock files. The error is an *apierrors.APIError with
// status 415.
func (v *FileValidator) ValidateUploadName(kind UploadKind, filename string) error {
	name := files.SanitizeFilename(filename)
	if name == "" || strings.HasPrefix(name, "~$") || !files.HasExtension(name, kind.Extensions()) {
		v.logger.Warn("Rejected upload",
			slog.String("file", filename),
			slog.Any("allowed", kind.Extensions()))
		return apierrors.UnsupportedFileError(filename, kind.Extensions())
	}
	return nil
}

// IsWorkbookContent reports whether head starts like a zip container.
func IsWorkbookContent(head []byte) bool {
	return bytes.HasPrefix(head, zipMagic)
}
