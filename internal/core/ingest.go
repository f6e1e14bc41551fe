package core

// ingest.go sequences decoding, column modelling, normalization and
// validation across the files of one upload.
//
// State machine:
//
//	idle ──Ingest──▶ ingesting ──▶ merged
//	                     │    └───▶ failed
//	                     └─cancel─▶ idle
//
// Files are merged strictly in input order. The first file fixes the
// column model; later files are mapped positionally onto it.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Options configures an Orchestrator.
type Options struct {
	// Decoders selects a SheetDecoder by file extension.
	// Defaults to DefaultDecoders().
	Decoders Decoders

	// Validator checks every merged row. Defaults to DefaultRuleSet().
	Validator *Validator

	// ReadAhead is the number of files after the first that may be read
	// and decoded concurrently. Values below 2 keep ingestion sequential.
	ReadAhead int

	// Logger receives structured warnings. Defaults to slog.Default().
	Logger *slog.Logger
}

// Orchestrator runs one ingestion at a time and holds its result.
// Its methods are safe for concurrent use.
type Orchestrator struct {
	decoders  Decoders
	validator *Validator
	readAhead int
	logger    *slog.Logger

	mu      sync.Mutex
	state   State
	dataset *Dataset
	err     error
	cancel  context.CancelFunc
	run     uint64 // bumped by Reset so a stale run cannot publish its result
}

// NewOrchestrator creates an idle orchestrator.
func NewOrchestrator(opts Options) *Orchestrator {
	if opts.Decoders == nil {
		opts.Decoders = DefaultDecoders()
	}
	if opts.Validator == nil {
		opts.Validator = NewValidator(DefaultRuleSet(), "")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Orchestrator{
		decoders:  opts.Decoders,
		validator: opts.Validator,
		readAhead: opts.ReadAhead,
		logger:    opts.Logger,
		state:     StateIdle,
	}
}

// State returns the current lifecycle state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Dataset returns the merged dataset, or nil unless the state is merged.
func (o *Orchestrator) Dataset() *Dataset {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != StateMerged {
		return nil
	}
	return o.dataset
}

// Err returns the error that moved the orchestrator to failed.
func (o *Orchestrator) Err() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.err
}

// Cancel requests that a running ingestion stop at the next file boundary.
// It is a no-op when nothing is running.
func (o *Orchestrator) Cancel() {
	o.mu.Lock()
	cancel := o.cancel
	o.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Reset cancels any running ingestion and returns to idle, discarding the
// dataset. It is how a caller restarts after merged, failed or finalize.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
	o.run++
	o.state = StateIdle
	o.dataset = nil
	o.err = nil
}

// Ingest decodes, merges and validates files in order.
//
// It returns ErrNoFiles without leaving idle when files is empty, and
// ErrNotIdle unless the orchestrator is idle. A FileReadError or
// EmptySheetError moves the orchestrator to failed with no dataset.
// Cancellation through ctx or Cancel returns an error wrapping
// ErrCancelled and leaves the orchestrator idle.
//
// progress, if non-nil, is called after each file with a fraction that
// reaches 1 only after the last file.
func (o *Orchestrator) Ingest(ctx context.Context, files []File, progress ProgressCallback) (*Dataset, error) {
	o.mu.Lock()
	if o.state != StateIdle {
		o.mu.Unlock()
		return nil, ErrNotIdle
	}
	if len(files) == 0 {
		o.mu.Unlock()
		return nil, ErrNoFiles
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	o.state = StateIngesting
	o.cancel = cancel
	run := o.run
	o.mu.Unlock()

	ds, err := o.merge(ctx, files, progress)

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.run != run {
		// Reset while running; the caller already moved on.
		return nil, fmt.Errorf("%w: reset during ingestion", ErrCancelled)
	}
	o.cancel = nil

	switch {
	case err == nil:
		o.state = StateMerged
		o.dataset = ds
		return ds, nil
	case ctx.Err() != nil:
		o.state = StateIdle
		return nil, fmt.Errorf("%w: %w", ErrCancelled, context.Cause(ctx))
	default:
		o.state = StateFailed
		o.err = err
		return nil, err
	}
}

// loaded is the outcome of reading and decoding one file.
type loaded struct {
	sheet *Sheet
	err   error
}

// merge runs the per-file pipeline. It never touches orchestrator state.
func (o *Orchestrator) merge(ctx context.Context, files []File, progress ProgressCallback) (*Dataset, error) {
	total := len(files)
	ds := newDataset(o.validator)

	report := func(processed int, name string) {
		if progress == nil {
			return
		}
		progress(Progress{
			State:     StateIngesting,
			FileName:  name,
			Processed: processed,
			Total:     total,
			Fraction:  fraction(processed, total),
		})
	}

	first, err := o.load(ctx, files[0])
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cols, err := BuildColumns(first)
	if err != nil {
		return nil, err
	}
	ds.Columns = cols
	o.appendSheet(ds, first)
	report(1, files[0].Name())

	rest := files[1:]
	next := o.sequential(ctx, rest)
	if o.readAhead > 1 && len(rest) > 1 {
		var stop func()
		next, stop = o.prefetch(ctx, rest, o.readAhead)
		defer stop()
	}

	for i, f := range rest {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res := next(i)
		if res.err != nil {
			return nil, res.err
		}
		// The decode ran to completion; drop it if we were cancelled meanwhile.
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, err := BuildColumns(res.sheet); err != nil {
			return nil, err
		}
		o.checkHeader(cols, res.sheet)
		o.appendSheet(ds, res.sheet)
		report(i+2, f.Name())
	}

	return ds, nil
}

// appendSheet normalizes and validates one sheet onto the dataset.
func (o *Orchestrator) appendSheet(ds *Dataset, sheet *Sheet) {
	rows := NormalizeRows(sheet, ds.Columns)
	diags := o.validator.Validate(ds.Columns, rows, len(ds.Rows))
	ds.appendFile(rows, diags)
}

// checkHeader logs when a later file's header differs from the column
// model. The first file's titles always win.
func (o *Orchestrator) checkHeader(cols []ColumnDescriptor, sheet *Sheet) {
	header := sheet.HeaderRow()
	differs := len(header) != len(cols)
	for i := 0; !differs && i < len(header); i++ {
		title := CoerceCell(header[i])
		if title != "" && title != cols[i].Title {
			differs = true
		}
	}
	if !differs {
		return
	}

	titles := make([]string, len(header))
	for i, cell := range header {
		titles[i] = CoerceCell(cell)
	}
	o.logger.Warn("header differs from first file, using first file's columns",
		"file", sheet.Name,
		"columns", len(cols),
		"file_columns", len(header),
		"file_header", titles,
	)
}

// load reads and decodes one file, wrapping every failure in FileReadError.
func (o *Orchestrator) load(ctx context.Context, f File) (*Sheet, error) {
	name := f.Name()
	dec, ok := o.decoders.For(name)
	if !ok {
		return nil, &FileReadError{FileName: name, Err: ErrUnsupportedFile}
	}

	data, err := f.ReadAll(ctx)
	if err != nil {
		return nil, &FileReadError{FileName: name, Err: err}
	}

	sheet, err := dec.Decode(ctx, name, data)
	if err != nil {
		return nil, &FileReadError{FileName: name, Err: err}
	}
	if sheet.Name == "" {
		sheet.Name = name
	}
	return sheet, nil
}

// sequential returns a loader that decodes each file when asked for it.
func (o *Orchestrator) sequential(ctx context.Context, files []File) func(int) loaded {
	return func(i int) loaded {
		sheet, err := o.load(ctx, files[i])
		return loaded{sheet: sheet, err: err}
	}
}

// prefetch decodes files concurrently with at most limit in flight.
// The returned loader blocks until file i is ready, so results are still
// consumed in input order. stop abandons outstanding work and waits for
// every decode to return.
func (o *Orchestrator) prefetch(ctx context.Context, files []File, limit int) (next func(int) loaded, stop func()) {
	ctx, cancel := context.WithCancel(ctx)

	slots := make([]chan loaded, len(files))
	for i := range slots {
		slots[i] = make(chan loaded, 1)
	}

	var g errgroup.Group
	g.SetLimit(limit)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for i, f := range files {
			slot := slots[i]
			g.Go(func() error {
				sheet, err := o.load(ctx, f)
				slot <- loaded{sheet: sheet, err: err}
				return nil
			})
		}
		_ = g.Wait()
	}()

	next = func(i int) loaded {
		return <-slots[i]
	}
	stop = func() {
		cancel()
		<-done
	}
	return next, stop
}

// IsCancelled reports whether err came from a cancelled ingestion.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}
