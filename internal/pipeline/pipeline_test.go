package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ovpnstatus/internal/output"
	"github.com/ovpnstatus/internal/parser"
	"github.com/ovpnstatus/internal/storage"
	"github.com/spf13/afero"
)

const sampleStatus = `OpenVPN CLIENT LIST
Updated,2024-01-01 00:00:00
Common Name,Real Address,Bytes Received,Bytes Sent,Connected Since
alice,1.2.3.4:5,100,200,2024-01-01 00:00:00
alice2,1.2.3.4:5,300,400,2024-01-01 00:00:01
ROUTING TABLE
Virtual Address,Common Name,Real Address,Last Ref
10.8.0.2,alice,1.2.3.4:5,2024-01-01 00:00:02
10.8.0.3,alice2,1.2.3.4:5,2024-01-01 00:00:03
GLOBAL STATS
Max bcast/mcast queue length,0
END
`

type fakeArchive struct {
	mu    sync.Mutex
	snaps []storage.Snapshot
	err   error
}

func (f *fakeArchive) StoreSnapshot(_ context.Context, snap storage.Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.snaps = append(f.snaps, snap)
	return nil
}

func (f *fakeArchive) Close() error { return nil }

func (f *fakeArchive) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.snaps)
}

func memFsWithStatus(t *testing.T, content string) afero.Fs {
	t.Helper()

	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/var/log/openvpn/status.log", []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	if err := fs.MkdirAll("/srv/dashy", 0755); err != nil {
		t.Fatal(err)
	}
	return fs
}

func testOptions(fs afero.Fs) Options {
	return Options{
		Fs:         fs,
		StatusPath: "/var/log/openvpn/status.log",
		OutputPath: "/srv/dashy/openvpn_logs.json",
	}
}

func TestRunWritesDocument(t *testing.T) {
	fs := memFsWithStatus(t, sampleStatus)

	result, err := Run(context.Background(), testOptions(fs))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !result.Written || result.RunID == "" {
		t.Errorf("result = %+v", result)
	}

	data, err := afero.ReadFile(fs, "/srv/dashy/openvpn_logs.json")
	if err != nil {
		t.Fatalf("output missing: %v", err)
	}

	var doc parser.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if doc.Updated != "2024-01-01 00:00:00" {
		t.Errorf("updated = %q", doc.Updated)
	}
	if len(doc.Clients) != 1 {
		t.Fatalf("clients = %d, want 1", len(doc.Clients))
	}
	got := doc.Clients[0].VirtualAddresses
	if len(got) != 2 || got[0].Address != "10.8.0.2" || got[1].Address != "10.8.0.3" {
		t.Errorf("virtual addresses = %+v", got)
	}
	if doc.GlobalStats["Max bcast/mcast queue length"] != "0" {
		t.Errorf("global stats = %v", doc.GlobalStats)
	}

	if !strings.HasPrefix(string(data), "{\n  \"updated\"") {
		t.Errorf("output not indented with two spaces:\n%s", data)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	fs := memFsWithStatus(t, sampleStatus)
	opts := testOptions(fs)

	if _, err := Run(context.Background(), opts); err != nil {
		t.Fatal(err)
	}
	first, _ := afero.ReadFile(fs, opts.OutputPath)

	if _, err := Run(context.Background(), opts); err != nil {
		t.Fatal(err)
	}
	second, _ := afero.ReadFile(fs, opts.OutputPath)

	if !bytes.Equal(first, second) {
		t.Errorf("outputs differ:\n%s\n---\n%s", first, second)
	}
}

func TestRunEmptyInput(t *testing.T) {
	for _, content := range []string{"", "  \n\t\n"} {
		fs := memFsWithStatus(t, content)
		archive := &fakeArchive{}
		opts := testOptions(fs)
		opts.Archive = archive

		result, err := Run(context.Background(), opts)
		if !errors.Is(err, ErrNoData) {
			t.Errorf("Run(%q) error = %v, want ErrNoData", content, err)
		}
		if result.Written {
			t.Error("Written = true for empty input")
		}
		if exists, _ := afero.Exists(fs, opts.OutputPath); exists {
			t.Errorf("output written for empty input %q", content)
		}
		if archive.count() != 0 {
			t.Error("empty input was archived")
		}
	}
}

func TestRunMissingInput(t *testing.T) {
	fs := afero.NewMemMapFs()

	_, err := Run(context.Background(), testOptions(fs))

	var ferr *parser.FileError
	if !errors.As(err, &ferr) {
		t.Fatalf("error = %v, want *parser.FileError", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error does not unwrap to ErrNotExist: %v", err)
	}
}

func TestRunUnwritableOutput(t *testing.T) {
	base := memFsWithStatus(t, sampleStatus)
	fs := afero.NewReadOnlyFs(base)

	result, err := Run(context.Background(), testOptions(fs))

	var werr *output.WriteError
	if !errors.As(err, &werr) {
		t.Fatalf("error = %v, want *output.WriteError", err)
	}
	if result.Written {
		t.Error("Written = true after write failure")
	}
}

func TestRunStdStreams(t *testing.T) {
	var stdout bytes.Buffer
	opts := Options{
		Fs:         afero.NewMemMapFs(),
		StatusPath: StdStream,
		OutputPath: StdStream,
		Stdin:      strings.NewReader(sampleStatus),
		Stdout:     &stdout,
	}

	if _, err := Run(context.Background(), opts); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(stdout.String(), `"common_name": "alice"`) {
		t.Errorf("stdout = %s", stdout.String())
	}
}

func TestRunArchives(t *testing.T) {
	fs := memFsWithStatus(t, sampleStatus)
	archive := &fakeArchive{}
	fixed := time.Date(2024, 1, 1, 0, 0, 5, 0, time.UTC)

	opts := testOptions(fs)
	opts.Archive = archive
	opts.Now = func() time.Time { return fixed }

	result, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if !result.Archived || archive.count() != 1 {
		t.Fatalf("archived = %v, snapshots = %d", result.Archived, archive.count())
	}

	snap := archive.snaps[0]
	if snap.Updated != "2024-01-01 00:00:00" || !snap.CapturedAt.Equal(fixed) {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestRunArchiveFailureIsNotFatal(t *testing.T) {
	fs := memFsWithStatus(t, sampleStatus)
	opts := testOptions(fs)
	opts.Archive = &fakeArchive{err: errors.New("connection refused")}

	result, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("Run() error = %v, archive failures must not fail the cycle", err)
	}
	if !result.Written || result.Archived {
		t.Errorf("result = %+v", result)
	}
	if exists, _ := afero.Exists(fs, opts.OutputPath); !exists {
		t.Error("output missing after archive failure")
	}
}

func TestWatchStopsOnCancel(t *testing.T) {
	fs := memFsWithStatus(t, sampleStatus)
	archive := &fakeArchive{}
	opts := testOptions(fs)
	opts.Archive = archive

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, opts, 10*time.Millisecond)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for archive.count() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}

	if archive.count() < 2 {
		t.Errorf("cycles = %d, want at least 2", archive.count())
	}
}

func TestWatchSurvivesFailedCycles(t *testing.T) {
	fs := afero.NewMemMapFs()
	_ = fs.MkdirAll("/srv/dashy", 0755)
	archive := &fakeArchive{}
	opts := testOptions(fs)
	opts.Archive = archive

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, opts, 10*time.Millisecond)
	}()

	// status file appears after the first failed cycle
	time.Sleep(30 * time.Millisecond)
	_ = afero.WriteFile(fs, opts.StatusPath, []byte(sampleStatus), 0644)

	deadline := time.Now().Add(2 * time.Second)
	for archive.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-done

	if archive.count() == 0 {
		t.Error("watch never recovered after the status file appeared")
	}
}
