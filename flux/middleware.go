package flux

import (
	"reflect"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/minigen/logger"
)

// SilentAction marks actions the logging middleware skips.
type SilentAction interface {
	Silent()
}

// LoggerMiddleware logs each dispatched action with a sequence number and
// the time its subscribers took.
type LoggerMiddleware struct {
	log *zap.SugaredLogger
	seq atomic.Uint64
}

// NewLoggerMiddleware creates a logging middleware. A nil logger uses the
// "flux" component logger.
func NewLoggerMiddleware(log *zap.SugaredLogger) *LoggerMiddleware {
	if log == nil {
		log = logger.ComponentLogger("flux")
	}
	return &LoggerMiddleware{log: log}
}

func (m *LoggerMiddleware) Intercept(action any, next func(any) any) any {
	if _, ok := action.(SilentAction); ok {
		return next(action)
	}
	seq := m.seq.Add(1)
	name := actionName(action)
	m.log.Debugw("Action dispatched", logger.FieldAction, name, logger.FieldSequence, seq)

	start := time.Now()
	out := next(action)
	m.log.Debugw("Action handled",
		logger.FieldAction, name,
		logger.FieldSequence, seq,
		logger.FieldDurationMS, time.Since(start).Milliseconds())
	return out
}

func actionName(action any) string {
	t := reflect.TypeOf(action)
	if t == nil {
		return "<nil>"
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.String()
}
