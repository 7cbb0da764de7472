package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/ovpnstatus/internal/logging"
	"github.com/ovpnstatus/internal/output"
	"github.com/ovpnstatus/internal/parser"
	"github.com/ovpnstatus/internal/storage"
	"github.com/spf13/afero"
)

// ErrNoData is returned when the status file holds nothing to report.
// No output is written in that case.
var ErrNoData = errors.New("no data available")

// StdStream as a path selects stdin for input or stdout for output
const StdStream = "-"

// Options describes one parse-and-write cycle
type Options struct {
	Fs         afero.Fs
	StatusPath string
	OutputPath string
	FileMode   os.FileMode

	// Used when StatusPath or OutputPath is StdStream
	Stdin  io.Reader
	Stdout io.Writer

	// Optional history sink; failures are logged and ignored
	Archive storage.Archive

	Now func() time.Time
}

// Result summarizes a completed cycle
type Result struct {
	RunID    string
	Document *parser.Document
	Stats    parser.Stats
	Written  bool
	Archived bool
}

func (o *Options) applyDefaults() {
	if o.Fs == nil {
		o.Fs = afero.NewOsFs()
	}
	if o.Stdin == nil {
		o.Stdin = os.Stdin
	}
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// Run reads the status report, normalizes it and writes the dashboard JSON.
// It returns ErrNoData for empty input, *parser.FileError when the input
// cannot be read and *output.WriteError when the output cannot be written.
func Run(ctx context.Context, opts Options) (*Result, error) {
	opts.applyDefaults()

	result := &Result{RunID: uuid.NewString()}
	log := logging.With(logging.RunID(result.RunID))
	start := opts.Now()

	lines, err := readLines(opts)
	if err != nil {
		log.Error("failed to read status report", logging.File(opts.StatusPath), logging.Err(err))
		return result, err
	}
	if len(lines) == 0 {
		log.Info("status report is empty, nothing written", logging.File(opts.StatusPath))
		return result, ErrNoData
	}

	parsed := parser.Parse(lines)
	result.Document = parsed.Document
	result.Stats = parsed.Stats

	log.Debug("parsed status report",
		logging.File(opts.StatusPath),
		logging.Count("line", parsed.Stats.Lines),
		logging.Count("route", parsed.Stats.Routes),
		logging.Count("orphan_route", parsed.Stats.OrphanRoutes),
		logging.Count("merged_client", parsed.Stats.MergedClients),
		logging.Count("dropped", parsed.Stats.Dropped()),
		logging.Count("unsectioned", parsed.Stats.Unsectioned),
		"terminated", parsed.Stats.Terminated,
	)

	if err := ctx.Err(); err != nil {
		return result, err
	}

	if err := writeDocument(opts, parsed.Document); err != nil {
		log.Error("failed to write output", logging.Output(opts.OutputPath), logging.Err(err))
		return result, err
	}
	result.Written = true

	if opts.Archive != nil {
		snap := storage.NewSnapshot(parsed.Document, start)
		if err := opts.Archive.StoreSnapshot(ctx, snap); err != nil {
			log.Warn("failed to archive snapshot", "snapshot_id", snap.ID.String(), logging.Err(err))
		} else {
			result.Archived = true
		}
	}

	log.Info("status report written",
		logging.Output(opts.OutputPath),
		logging.Count("client", len(parsed.Document.Clients)),
		logging.Duration("cycle", opts.Now().Sub(start)),
	)

	return result, nil
}

func readLines(opts Options) ([]string, error) {
	if opts.StatusPath == StdStream {
		lines, err := parser.ReadLines(opts.Stdin)
		if err != nil {
			return nil, parser.NewFileError("<stdin>", "read", "cannot read status report", err)
		}
		return lines, nil
	}
	return parser.ReadFile(opts.Fs, opts.StatusPath)
}

func writeDocument(opts Options, doc *parser.Document) error {
	if opts.OutputPath == StdStream {
		if err := doc.WriteJSON(opts.Stdout); err != nil {
			return &output.WriteError{Path: "<stdout>", Op: "write", Cause: err, Occurred: time.Now()}
		}
		return nil
	}

	w := output.NewWriter(opts.Fs, opts.FileMode)
	if err := w.WriteFile(opts.OutputPath, doc.WriteJSON); err != nil {
		return fmt.Errorf("publish %s: %w", opts.OutputPath, err)
	}
	return nil
}
