// Package splitter drives the tile export batch: partitioning, rendering,
// encoding, progress reporting, and per-tile failure accounting.
package splitter

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tilecut/tilecut/internal/encode"
	"github.com/tilecut/tilecut/internal/render"
	"github.com/tilecut/tilecut/pkg/grid"
)

// State of the exporter. Only one export may be running at a time.
type State int

const (
	StateIdle State = iota
	StateExporting
	StateCompleted
)

var (
	// ErrBusy is returned when an export or bulk download is requested while
	// one is already in flight. The in-progress run is untouched.
	ErrBusy = errors.New("export already in progress")

	// ErrNoSource is returned when an export is requested without a loaded
	// source image.
	ErrNoSource = errors.New("no source image loaded")

	// ErrNoArtifacts is returned by DownloadAll when no export has retained
	// any artifacts.
	ErrNoArtifacts = errors.New("no retained artifacts to download")
)

// Options configures one exporter.
type Options struct {
	Layout grid.Layout
	Format encode.Format

	// Delay inserted between artifact writes, both during export and during
	// bulk download. Purely to avoid sink-side throttling; has no ordering
	// or correctness purpose.
	Delay time.Duration

	// SuffixFormat is the fmt verb pattern appended to the sanitized base
	// name, receiving the tile ordinal. Defaults to "_tile_%d".
	SuffixFormat string
}

// TileSuccess is one successfully exported tile.
type TileSuccess struct {
	Ordinal  int    `json:"ordinal"`
	Filename string `json:"filename"`
}

// TileFailure is one tile whose encode or write failed.
type TileFailure struct {
	Ordinal int    `json:"ordinal"`
	Reason  string `json:"reason"`
}

// Report is the aggregate batch result. Succeeded and Failed preserve
// row-major tile order.
type Report struct {
	Processed int           `json:"processed"`
	Total     int           `json:"total"`
	Succeeded []TileSuccess `json:"succeeded"`
	Failed    []TileFailure `json:"failed"`
}

// Percent returns batch progress as a percentage.
func (r Report) Percent() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Processed) / float64(r.Total) * 100
}

// Summary returns the human-readable batch outcome.
func (r Report) Summary() string {
	return fmt.Sprintf("%d of %d tiles succeeded", len(r.Succeeded), r.Total)
}

// Progress is a snapshot passed to the progress callback after each tile.
type Progress struct {
	Processed int
	Total     int
	Percent   float64
	Current   string // filename of the tile just processed
}

// Artifact is one retained output, kept in memory after a successful export
// to support bulk re-download without re-rendering.
type Artifact struct {
	Ordinal  int
	Filename string
	Format   encode.Format
	Data     []byte
}

// Exporter runs tile export batches. The report and retained artifact list
// are owned by the exporter; Report and Retained return snapshots.
type Exporter struct {
	opts Options
	enc  encode.Encoder

	onProgress  func(Progress)
	onTileError func(ordinal int, err error)

	mu       sync.Mutex
	state    State
	bulkBusy bool
	report   Report
	retained []Artifact
}

// New creates an exporter for the given options.
func New(opts Options) *Exporter {
	if opts.SuffixFormat == "" {
		opts.SuffixFormat = "_tile_%d"
	}
	return &Exporter{
		opts:  opts,
		enc:   encode.For(opts.Format),
		state: StateIdle,
	}
}

// OnProgress registers a callback invoked after each processed tile.
// Must be set before Export.
func (e *Exporter) OnProgress(fn func(Progress)) {
	e.onProgress = fn
}

// OnTileError registers a callback invoked for each failed tile.
// Must be set before Export.
func (e *Exporter) OnTileError(fn func(ordinal int, err error)) {
	e.onTileError = fn
}

// State returns the current exporter state.
func (e *Exporter) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Report returns a snapshot of the current batch report.
func (e *Exporter) Report() Report {
	e.mu.Lock()
	defer e.mu.Unlock()
	return snapshotReport(e.report)
}

// Retained returns a snapshot of the artifacts kept from the last export.
func (e *Exporter) Retained() []Artifact {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Artifact, len(e.retained))
	copy(out, e.retained)
	return out
}

// Export runs one full batch: partitions src row-major, renders and encodes
// each tile, writes every artifact to sink, and accumulates the report. A
// single tile's failure is recorded and the batch continues. Returns ErrBusy
// if an export is already running and ErrNoSource if src is missing; both
// leave any in-progress run untouched.
//
// Cancelling ctx stops the batch between tiles; the returned report stays
// consistent for the tiles already processed.
func (e *Exporter) Export(ctx context.Context, src *Source, sink Sink) (Report, error) {
	if src == nil || src.Image == nil {
		return Report{}, ErrNoSource
	}

	spec := e.opts.Layout.Spec()

	e.mu.Lock()
	if e.state == StateExporting {
		report := snapshotReport(e.report)
		e.mu.Unlock()
		return report, ErrBusy
	}
	e.state = StateExporting
	e.report = Report{Total: spec.TotalTiles()}
	e.retained = nil
	e.mu.Unlock()

	base := SanitizeFilename(src.Name)
	tiles := grid.Partition(src.Width, src.Height, spec.Rows, spec.Cols)
	marginPx := grid.MarginPx()

	for i, t := range tiles {
		if err := ctx.Err(); err != nil {
			return e.finish(), err
		}

		filename := fmt.Sprintf("%s%s.%s", base, fmt.Sprintf(e.opts.SuffixFormat, t.Ordinal), e.enc.Ext())

		data, err := e.processTile(ctx, src, t, marginPx, filename, sink)
		e.mu.Lock()
		if err != nil {
			e.report.Failed = append(e.report.Failed, TileFailure{Ordinal: t.Ordinal, Reason: err.Error()})
		} else {
			e.report.Succeeded = append(e.report.Succeeded, TileSuccess{Ordinal: t.Ordinal, Filename: filename})
			e.retained = append(e.retained, Artifact{
				Ordinal:  t.Ordinal,
				Filename: filename,
				Format:   e.opts.Format,
				Data:     data,
			})
		}
		e.report.Processed++
		progress := Progress{
			Processed: e.report.Processed,
			Total:     e.report.Total,
			Percent:   e.report.Percent(),
			Current:   filename,
		}
		e.mu.Unlock()

		if err != nil && e.onTileError != nil {
			e.onTileError(t.Ordinal, err)
		}
		if e.onProgress != nil {
			e.onProgress(progress)
		}

		if i < len(tiles)-1 && e.opts.Delay > 0 {
			if err := sleepCtx(ctx, e.opts.Delay); err != nil {
				return e.finish(), err
			}
		}
	}

	return e.finish(), nil
}

// finish transitions to Completed and returns the final report snapshot.
func (e *Exporter) finish() Report {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = StateCompleted
	return snapshotReport(e.report)
}

// processTile renders, encodes, and writes one tile.
func (e *Exporter) processTile(ctx context.Context, src *Source, t grid.Tile, marginPx int, filename string, sink Sink) ([]byte, error) {
	img, err := render.Tile(src.Image, t, marginPx)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}

	data, err := e.enc.Encode(img)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("encoder returned an empty artifact")
	}

	if sink != nil {
		if err := sink.Write(ctx, filename, data); err != nil {
			return nil, fmt.Errorf("write %s: %w", filename, err)
		}
	}
	return data, nil
}

// DownloadAll replays every retained artifact from the last export into sink,
// in order, with the configured delay between writes. Returns ErrBusy while
// an export or another bulk download is running, and ErrNoArtifacts when
// there is nothing to replay.
func (e *Exporter) DownloadAll(ctx context.Context, sink Sink) error {
	e.mu.Lock()
	if e.state == StateExporting || e.bulkBusy {
		e.mu.Unlock()
		return ErrBusy
	}
	if len(e.retained) == 0 {
		e.mu.Unlock()
		return ErrNoArtifacts
	}
	e.bulkBusy = true
	artifacts := make([]Artifact, len(e.retained))
	copy(artifacts, e.retained)
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.bulkBusy = false
		e.mu.Unlock()
	}()

	for i, a := range artifacts {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := sink.Write(ctx, a.Filename, a.Data); err != nil {
			return fmt.Errorf("write %s: %w", a.Filename, err)
		}
		if i < len(artifacts)-1 && e.opts.Delay > 0 {
			if err := sleepCtx(ctx, e.opts.Delay); err != nil {
				return err
			}
		}
	}
	return nil
}

func snapshotReport(r Report) Report {
	out := r
	out.Succeeded = make([]TileSuccess, len(r.Succeeded))
	copy(out.Succeeded, r.Succeeded)
	out.Failed = make([]TileFailure, len(r.Failed))
	copy(out.Failed, r.Failed)
	return out
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
