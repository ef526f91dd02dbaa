// Package main provides the import-areas CLI, which converts a directory of
// ROT area files into area and mobile documents.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cory-johannsen/rotimport/internal/config"
	"github.com/cory-johannsen/rotimport/internal/importer"
	"github.com/cory-johannsen/rotimport/internal/importer/rot"
	"github.com/cory-johannsen/rotimport/internal/observability"
	"github.com/cory-johannsen/rotimport/internal/storage/boltstore"
	"github.com/cory-johannsen/rotimport/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "", "path to configuration file (optional)")
	sourceDir := flag.String("source", "", "directory holding .are files (overrides import.source_dir)")
	outputDir := flag.String("output", "", "file sink data root (overrides output.data_root)")
	sinkName := flag.String("sink", "", "output sink: file, postgres or bolt (overrides output.sink)")
	denylistFile := flag.String("denylist", "", "YAML header denylist file (overrides import.denylist_file)")
	continueOnError := flag.Bool("continue-on-error", false, "skip files that fail to parse")
	failOnWarning := flag.Bool("fail-on-warning", false, "write nothing if any warning was reported")
	flag.Parse()

	v := config.NewViper()
	if *configPath != "" {
		v.SetConfigFile(*configPath)
		if err := v.ReadInConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "error: reading config: %v\n", err)
			os.Exit(1)
		}
	}
	overrides := map[string]string{
		"import.source_dir":    *sourceDir,
		"output.data_root":     *outputDir,
		"output.sink":          *sinkName,
		"import.denylist_file": *denylistFile,
	}
	for key, val := range overrides {
		if val != "" {
			v.Set(key, val)
		}
	}
	if *continueOnError {
		v.Set("import.continue_on_error", true)
	}
	if *failOnWarning {
		v.Set("import.fail_on_warning", true)
	}

	cfg, err := config.LoadFromViper(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: creating logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := run(ctx, cfg, logger)
	if report != nil {
		printSummary(report)
	}
	if err != nil {
		logger.Error("import failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		os.Exit(1)
	}
	fmt.Printf("import complete in %s\n", time.Since(start).Round(time.Millisecond))
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) (*importer.Report, error) {
	denylist, err := rot.ResolveDenylist(cfg.Import.Denylist, cfg.Import.DenylistFile, logger)
	if err != nil {
		return nil, err
	}

	parser := rot.NewParser(rot.WithLogger(logger), rot.WithDenylist(denylist))
	src := rot.NewSource(parser,
		rot.WithPattern(cfg.Import.Pattern),
		rot.WithContinueOnError(cfg.Import.ContinueOnError),
		rot.WithSourceLogger(logger),
	)

	sink, closeSink, err := openSink(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	defer closeSink()

	imp := importer.New(src, sink, logger, importer.Options{FailOnWarning: cfg.Import.FailOnWarning})
	return imp.Run(ctx, cfg.Import.SourceDir)
}

// openSink builds the configured sink and a func releasing everything it holds.
func openSink(ctx context.Context, cfg config.Config, logger *zap.Logger) (importer.Sink, func(), error) {
	switch cfg.Output.Sink {
	case config.SinkFile:
		sink, err := importer.NewFileSink(cfg.Output.DataRoot, cfg.Output.Indent)
		if err != nil {
			return nil, nil, err
		}
		return sink, func() { _ = sink.Close() }, nil

	case config.SinkPostgres:
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to database: %w", err)
		}
		logger.Info("connected to database", zap.String("host", cfg.Database.Host), zap.String("name", pool.Name()))
		repo := pool.Areas()
		return repo, func() {
			_ = repo.Close()
			pool.Close()
		}, nil

	case config.SinkBolt:
		store, err := boltstore.Open(cfg.Bolt.Path, cfg.Bolt.Timeout)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("opened bolt store", zap.String("path", store.Path()))
		return store, func() {
			if err := store.Close(); err != nil {
				logger.Warn("closing bolt store", zap.Error(err))
			}
		}, nil
	}
	return nil, nil, errors.New("unknown sink " + cfg.Output.Sink)
}

func printSummary(r *importer.Report) {
	fmt.Printf("areas: %d  rooms: %d  mobiles: %d  warnings: %d  errors: %d\n",
		r.Areas, r.Rooms, r.Mobiles,
		importer.CountAtLeast(r.Diagnostics, zapcore.WarnLevel)-importer.CountAtLeast(r.Diagnostics, zapcore.ErrorLevel),
		importer.CountAtLeast(r.Diagnostics, zapcore.ErrorLevel),
	)
	for _, path := range r.Failed {
		fmt.Fprintf(os.Stderr, "skipped: %s\n", path)
	}
}
