package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
)

// WriteError reports a failure to produce the output file
type WriteError struct {
	Path     string
	Op       string
	Cause    error
	Occurred time.Time
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("output %s error on %s: %v", e.Path, e.Op, e.Cause)
}

func (e *WriteError) Unwrap() error {
	return e.Cause
}

func newWriteError(path, op string, cause error) *WriteError {
	return &WriteError{
		Path:     path,
		Op:       op,
		Cause:    cause,
		Occurred: time.Now(),
	}
}

// DefaultFileMode is applied to files produced by Writer
const DefaultFileMode os.FileMode = 0644

// Writer replaces files atomically: content goes to a temp file in the
// target directory which is then renamed over the target.
type Writer struct {
	fs   afero.Fs
	perm os.FileMode
}

// NewWriter returns a writer on fs. A zero perm means DefaultFileMode.
func NewWriter(fs afero.Fs, perm os.FileMode) *Writer {
	if perm == 0 {
		perm = DefaultFileMode
	}
	return &Writer{fs: fs, perm: perm}
}

// WriteFile calls render with the temp file and publishes it at path when
// render succeeds. On any failure the previous file at path is untouched.
func (w *Writer) WriteFile(path string, render func(io.Writer) error) (err error) {
	dir := filepath.Dir(path)

	tmp, err := afero.TempFile(w.fs, dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return newWriteError(path, "create", err)
	}
	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = w.fs.Remove(tmpName)
		}
	}()

	if err = render(tmp); err != nil {
		return newWriteError(path, "write", err)
	}
	if err = tmp.Sync(); err != nil {
		return newWriteError(path, "sync", err)
	}
	if err = tmp.Close(); err != nil {
		return newWriteError(path, "close", err)
	}
	if err = w.fs.Chmod(tmpName, w.perm); err != nil {
		return newWriteError(path, "chmod", err)
	}
	if err = w.fs.Rename(tmpName, path); err != nil {
		return newWriteError(path, "rename", err)
	}

	return nil
}
