package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/composer-npm-bridge/pkg/observability"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Installed npm dependencies (12.345s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, or log.Default() if none
// is attached.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// =============================================================================
// Logging Hooks
// =============================================================================

// logHooks reports bridge package events at debug level using the logger
// attached to the event context. npm invocations are logged by npm.Client
// itself.
type logHooks struct{}

// InstallLogHooks registers hooks that log bridge package events.
func InstallLogHooks() {
	observability.SetBridgeHooks(logHooks{})
}

func (logHooks) OnPackageStart(ctx context.Context, pkg, action string) {
	loggerFromContext(ctx).Debug("package starting", "package", pkg, "action", action)
}

func (logHooks) OnPackageSkipped(ctx context.Context, pkg, reason string) {
	loggerFromContext(ctx).Debug("package skipped", "package", pkg, "reason", reason)
}

func (logHooks) OnPackageComplete(ctx context.Context, pkg, action string, duration time.Duration, err error) {
	l := loggerFromContext(ctx)
	elapsed := duration.Round(time.Millisecond)
	if err != nil {
		l.Debug("package failed", "package", pkg, "action", action, "elapsed", elapsed, "err", err)
		return
	}
	l.Debug("package finished", "package", pkg, "action", action, "elapsed", elapsed)
}
