package importer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ErrWarnings is returned by Run when FailOnWarning is set and the source
// reported warn-level (or worse) diagnostics.
var ErrWarnings = errors.New("source reported warnings")

// Options tunes an Importer run.
type Options struct {
	// FailOnWarning aborts the run before anything is written when the source
	// reported any diagnostic at warn level or above.
	FailOnWarning bool
}

// Report summarises a completed run.
type Report struct {
	Areas       int
	Rooms       int
	Mobiles     int
	Diagnostics []Diagnostic
	Failed      []string
	Elapsed     time.Duration
}

// Importer orchestrates content import from a Source to a Sink.
type Importer struct {
	source Source
	sink   Sink
	logger *zap.Logger
	opts   Options
}

// New constructs an Importer.
//
// Precondition: source and sink must be non-nil; a nil logger is replaced by a no-op logger.
// Postcondition: returns a non-nil Importer.
func New(source Source, sink Sink, logger *zap.Logger, opts Options) *Importer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Importer{source: source, sink: sink, logger: logger, opts: opts}
}

// Run loads every area under sourceDir, validates each document, and writes
// areas and mobiles through the sink.
//
// Precondition: sourceDir must satisfy the source's layout requirements.
// Postcondition: every loaded area and mobile is written, or an error is
// returned. Nothing is written when loading fails or when FailOnWarning
// trips.
func (imp *Importer) Run(ctx context.Context, sourceDir string) (*Report, error) {
	overall := time.Now()

	t0 := time.Now()
	batch, err := imp.source.Load(ctx, sourceDir)
	if err != nil {
		return nil, fmt.Errorf("loading source: %w", err)
	}
	for _, d := range batch.Diagnostics {
		d.Log(imp.logger)
	}
	imp.logger.Info("loaded source",
		zap.String("source", sourceDir),
		zap.Int("areas", len(batch.Areas)),
		zap.Int("mobiles", len(batch.Mobiles)),
		zap.Int("diagnostics", len(batch.Diagnostics)),
		zap.Strings("failed", batch.Failed),
		zap.Duration("elapsed", time.Since(t0)),
	)

	report := &Report{
		Diagnostics: batch.Diagnostics,
		Failed:      batch.Failed,
	}

	if imp.opts.FailOnWarning {
		if n := CountAtLeast(batch.Diagnostics, zapcore.WarnLevel); n > 0 {
			return report, fmt.Errorf("%w: %d diagnostic(s)", ErrWarnings, n)
		}
	}

	for _, area := range batch.Areas {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		t1 := time.Now()

		data, err := MarshalArea(area, false)
		if err != nil {
			return report, err
		}
		// Validate the serialised form before handing it to the sink.
		if _, err := DecodeArea(data); err != nil {
			return report, fmt.Errorf("area %q failed validation: %w", area.Vnum, err)
		}
		if err := imp.sink.WriteArea(ctx, area); err != nil {
			return report, fmt.Errorf("writing area %q: %w", area.Vnum, err)
		}

		report.Areas++
		report.Rooms += len(area.Rooms)
		imp.logger.Info("wrote area",
			zap.String("vnum", area.Vnum),
			zap.String("name", area.Name),
			zap.Int("rooms", len(area.Rooms)),
			zap.Duration("elapsed", time.Since(t1)),
		)
	}

	for _, mob := range batch.Mobiles {
		if err := mob.Validate(); err != nil {
			return report, fmt.Errorf("mobile %d failed validation: %w", mob.Vnum, err)
		}
		if err := imp.sink.WriteMobile(ctx, mob); err != nil {
			return report, fmt.Errorf("writing mobile %d: %w", mob.Vnum, err)
		}
		report.Mobiles++
	}

	report.Elapsed = time.Since(overall)
	imp.logger.Info("import complete",
		zap.Int("areas", report.Areas),
		zap.Int("rooms", report.Rooms),
		zap.Int("mobiles", report.Mobiles),
		zap.Duration("elapsed", report.Elapsed),
	)
	return report, nil
}
