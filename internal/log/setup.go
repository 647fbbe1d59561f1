package log

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/chainguard-dev/clog"
	charmlog "github.com/charmbracelet/log"
	"github.com/gosimple/slug"
	slogmulti "github.com/samber/slog-multi"
)

// Setup configures the root logger for a pipeline run: a pretty console
// handler on stderr, optionally teed into a per-run log file when
// 'logsDirectory' is non-empty.
//
// The returned closer flushes and closes the run log file, if any.
func Setup(ctx context.Context, runID, logsDirectory string, debug bool) (context.Context, func(), error) {
	level := charmlog.InfoLevel
	if debug {
		level = charmlog.DebugLevel
	}

	console := charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		ReportTimestamp: true,
		Level:           level,
	})

	handlers := []slog.Handler{console}
	closer := func() {}

	if logsDirectory != "" {
		if err := os.MkdirAll(logsDirectory, 0o755); err != nil {
			return ctx, nil, fmt.Errorf("creating logs directory: %w", err)
		}
		logPath := filepath.Join(logsDirectory, fmt.Sprintf("%s.log", slug.Make(runID)))
		logFile, err := os.Create(logPath)
		if err != nil {
			return ctx, nil, fmt.Errorf("creating run log file: %w", err)
		}
		handlers = append(handlers, slog.NewJSONHandler(logFile, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		closer = func() { _ = logFile.Close() }
	}

	logger := clog.New(slogmulti.Fanout(handlers...)).With("run_id", runID)
	ctx = clog.WithLogger(ctx, logger)
	slog.SetDefault(&logger.Logger)

	return ctx, closer, nil
}
