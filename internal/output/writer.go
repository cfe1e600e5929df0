package output

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Writer is the interface for artifact output destinations.
type Writer interface {
	// Write sends serialized bytes to the output destination.
	Write(data []byte) error
}

// StdoutWriter writes artifacts to os.Stdout.
type StdoutWriter struct {
	out io.Writer
}

// NewStdoutWriter creates a writer that sends output to the given writer.
// If w is nil, os.Stdout is used.
func NewStdoutWriter(w io.Writer) *StdoutWriter {
	if w == nil {
		w = os.Stdout
	}

	return &StdoutWriter{out: w}
}

// Write sends data to stdout.
func (sw *StdoutWriter) Write(data []byte) error {
	_, err := sw.out.Write(data)
	if err != nil {
		return fmt.Errorf("writing to stdout: %w", err)
	}

	return nil
}

// FileWriter writes an artifact to a file, creating parent directories as
// needed. The file is replaced atomically.
type FileWriter struct {
	path          string
	perm          os.FileMode
	logger        *slog.Logger
	skipUnchanged bool
	skipped       bool
}

// FileWriterOption configures a FileWriter.
type FileWriterOption func(*FileWriter)

// WithPermissions overrides the default file permissions (0644).
func WithPermissions(perm os.FileMode) FileWriterOption {
	return func(fw *FileWriter) {
		fw.perm = perm
	}
}

// WithLogger sets a logger for the FileWriter.
func WithLogger(logger *slog.Logger) FileWriterOption {
	return func(fw *FileWriter) {
		fw.logger = logger
	}
}

// WithSkipUnchanged leaves the target untouched when it already holds the
// same bytes, so file watchers and editors see no spurious change.
func WithSkipUnchanged() FileWriterOption {
	return func(fw *FileWriter) {
		fw.skipUnchanged = true
	}
}

// NewFileWriter creates a writer that writes to the specified file path.
func NewFileWriter(path string, opts ...FileWriterOption) *FileWriter {
	fw := &FileWriter{
		path:   path,
		perm:   0o644,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(fw)
	}

	return fw
}

// Write creates parent directories, writes data to a temporary sibling of
// the target and renames it into place.
func (fw *FileWriter) Write(data []byte) (err error) {
	dir := filepath.Dir(fw.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	fw.skipped = false

	if existing, readErr := os.ReadFile(fw.path); readErr == nil {
		if fw.skipUnchanged && bytes.Equal(existing, data) {
			fw.skipped = true
			fw.logger.Debug("artifact unchanged", slog.String("path", fw.path))

			return nil
		}

		fw.logger.Debug("overwriting existing file", slog.String("path", fw.path))
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(fw.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temporary file for %s: %w", fw.path, err)
	}

	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("writing file %s: %w", fw.path, err)
	}

	if err = tmp.Chmod(fw.perm); err != nil {
		return fmt.Errorf("setting permissions on %s: %w", fw.path, err)
	}

	if err = tmp.Close(); err != nil {
		return fmt.Errorf("closing file %s: %w", fw.path, err)
	}

	if err = os.Rename(tmp.Name(), fw.path); err != nil {
		return fmt.Errorf("renaming into %s: %w", fw.path, err)
	}

	return nil
}

// Skipped reports whether the last Write left an identical file in place.
func (fw *FileWriter) Skipped() bool {
	return fw.skipped
}

// Path returns the output file path.
func (fw *FileWriter) Path() string {
	return fw.path
}
