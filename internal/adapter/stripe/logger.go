package stripe

import (
	"context"
	"fmt"
	"log/slog"

	stripeapi "github.com/stripe/stripe-go/v76"
)

var _ stripeapi.LeveledLoggerInterface = (*leveledLogger)(nil)

// leveledLogger routes stripe-go's own diagnostics into the service logger.
// Its per-request info lines are demoted to debug.
type leveledLogger struct {
	logger *slog.Logger
}

func newLeveledLogger(logger *slog.Logger) *leveledLogger {
	return &leveledLogger{logger: logger.With(slog.String("component", "stripe-go"))}
}

func (l *leveledLogger) Debugf(format string, v ...interface{}) {
	l.log(slog.LevelDebug, format, v...)
}

func (l *leveledLogger) Infof(format string, v ...interface{}) {
	l.log(slog.LevelDebug, format, v...)
}

func (l *leveledLogger) Warnf(format string, v ...interface{}) {
	l.log(slog.LevelWarn, format, v...)
}

func (l *leveledLogger) Errorf(format string, v ...interface{}) {
	l.log(slog.LevelError, format, v...)
}

func (l *leveledLogger) log(level slog.Level, format string, v ...interface{}) {
	ctx := context.Background()
	if !l.logger.Enabled(ctx, level) {
		return
	}
	l.logger.Log(ctx, level, fmt.Sprintf(format, v...))
}
