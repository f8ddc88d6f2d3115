package output

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Writer is a destination for generated bytes.
type Writer interface {
	Write(data []byte) error
}

// StreamWriter sends output to an io.Writer.
type StreamWriter struct {
	out io.Writer
}

// NewStdoutWriter returns a StreamWriter on w, or on os.Stdout when w is nil.
func NewStdoutWriter(w io.Writer) *StreamWriter {
	if w == nil {
		w = os.Stdout
	}

	return &StreamWriter{out: w}
}

func (sw *StreamWriter) Write(data []byte) error {
	if _, err := sw.out.Write(data); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	return nil
}

// DefaultFileMode is the mode of files written by FileWriter.
const DefaultFileMode os.FileMode = 0o644

// FileWriter replaces one file atomically. Identical content is left alone
// so repeated synthesis does not touch modification times.
type FileWriter struct {
	path   string
	mode   os.FileMode
	logger *slog.Logger
}

// FileWriterOption configures a FileWriter.
type FileWriterOption func(*FileWriter)

// WithFileMode sets the mode of the written file.
func WithFileMode(mode os.FileMode) FileWriterOption {
	return func(fw *FileWriter) {
		fw.mode = mode
	}
}

// WithLogger sets the logger used for per-file debug output.
func WithLogger(logger *slog.Logger) FileWriterOption {
	return func(fw *FileWriter) {
		fw.logger = logger
	}
}

// NewFileWriter returns a writer for path.
func NewFileWriter(path string, opts ...FileWriterOption) *FileWriter {
	fw := &FileWriter{
		path:   path,
		mode:   DefaultFileMode,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(fw)
	}

	return fw
}

// Path returns the target file.
func (fw *FileWriter) Path() string {
	return fw.path
}

// Write stores data at the target path through a temporary file in the same
// directory, so readers never observe a partial file.
func (fw *FileWriter) Write(data []byte) (err error) {
	if current, readErr := os.ReadFile(fw.path); readErr == nil && bytes.Equal(current, data) {
		fw.logger.Debug("file unchanged", slog.String("path", fw.path))
		return nil
	}

	dir := filepath.Dir(fw.path)
	if err := EnsureDir(dir); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(fw.path)+".*")
	if err != nil {
		return fmt.Errorf("writing file %s: %w", fw.path, err)
	}

	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing file %s: %w", fw.path, err)
	}

	if err := tmp.Chmod(fw.mode); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing file %s: %w", fw.path, err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing file %s: %w", fw.path, err)
	}

	if err := os.Rename(tmp.Name(), fw.path); err != nil {
		return fmt.Errorf("writing file %s: %w", fw.path, err)
	}

	fw.logger.Debug("wrote file", slog.String("path", fw.path), slog.Int("bytes", len(data)))

	return nil
}
