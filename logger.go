package graphql

import (
	"github.com/jensneuse/abstractlogger"
	"go.uber.org/zap"
)

// NewZapLogger wraps a *zap.Logger as an abstractlogger.Logger, the default
// non-noop logger a caller can hand to NewPlanner via PlannerOptions.Logger.
func NewZapLogger(zapLogger *zap.Logger) abstractlogger.Logger {
	return abstractlogger.NewZapLogger(zapLogger, abstractlogger.DebugLevel)
}
