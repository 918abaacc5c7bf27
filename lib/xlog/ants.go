package xlog

import (
	"fmt"

	"go.uber.org/zap"
)

// AntsXLogger forwards the ants pool logs to zap at debug level.
type AntsXLogger struct {
	logger *zap.Logger
}

func (l *AntsXLogger) Printf(format string, args ...any) {
	if l == nil || l.logger == nil {
		return
	}
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func NewAntsXLogger(logger *zap.Logger) *AntsXLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AntsXLogger{
		logger: logger.Named("ants"),
	}
}
