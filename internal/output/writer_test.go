package output

import (
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/spf13/afero"
)

func TestWriteFileCreates(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := fs.MkdirAll("/srv/dashy", 0755); err != nil {
		t.Fatal(err)
	}

	w := NewWriter(fs, 0)
	err := w.WriteFile("/srv/dashy/openvpn_logs.json", func(out io.Writer) error {
		_, err := io.WriteString(out, "{}\n")
		return err
	})
	if err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	data, err := afero.ReadFile(fs, "/srv/dashy/openvpn_logs.json")
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	if string(data) != "{}\n" {
		t.Errorf("content = %q", data)
	}

	info, err := fs.Stat("/srv/dashy/openvpn_logs.json")
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != DefaultFileMode {
		t.Errorf("mode = %v, want %v", info.Mode().Perm(), DefaultFileMode)
	}

	assertNoTempFiles(t, fs, "/srv/dashy")
}

func TestWriteFileReplaces(t *testing.T) {
	fs := afero.NewMemMapFs()
	_ = afero.WriteFile(fs, "/out.json", []byte("old"), 0644)

	w := NewWriter(fs, 0)
	err := w.WriteFile("/out.json", func(out io.Writer) error {
		_, err := io.WriteString(out, "new")
		return err
	})
	if err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	data, _ := afero.ReadFile(fs, "/out.json")
	if string(data) != "new" {
		t.Errorf("content = %q, want new", data)
	}
}

func TestWriteFileRenderFailureKeepsPrevious(t *testing.T) {
	fs := afero.NewMemMapFs()
	_ = afero.WriteFile(fs, "/out.json", []byte("old"), 0644)

	boom := errors.New("boom")
	w := NewWriter(fs, 0)
	err := w.WriteFile("/out.json", func(out io.Writer) error {
		_, _ = io.WriteString(out, "partial")
		return boom
	})

	var werr *WriteError
	if !errors.As(err, &werr) {
		t.Fatalf("error = %v, want *WriteError", err)
	}
	if werr.Op != "write" || !errors.Is(err, boom) {
		t.Errorf("WriteError = %+v", werr)
	}

	data, _ := afero.ReadFile(fs, "/out.json")
	if string(data) != "old" {
		t.Errorf("previous content clobbered: %q", data)
	}
	assertNoTempFiles(t, fs, "/")
}

func TestWriteFileReadOnlyFs(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())

	w := NewWriter(fs, 0)
	err := w.WriteFile("/out.json", func(io.Writer) error { return nil })

	var werr *WriteError
	if !errors.As(err, &werr) {
		t.Fatalf("error = %v, want *WriteError", err)
	}
	if werr.Op != "create" {
		t.Errorf("Op = %q, want create", werr.Op)
	}
	if !strings.Contains(err.Error(), "/out.json") {
		t.Errorf("message lacks path: %v", err)
	}
}

func TestWriteFileMissingDirectory(t *testing.T) {
	fs := afero.NewOsFs()
	w := NewWriter(fs, 0)

	path := t.TempDir() + "/missing/out.json"
	err := w.WriteFile(path, func(io.Writer) error { return nil })
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error = %v, want ErrNotExist", err)
	}
}

func assertNoTempFiles(t *testing.T, fs afero.Fs, dir string) {
	t.Helper()

	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}
