package arbor

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// logger receives every warning and recovered failure in the package.
// Nothing in arbor returns these to the caller: event-driven call sites
// would otherwise abort unrelated work.
var logger = newDefaultLogger()

func newDefaultLogger() *zap.Logger {
	enc := zap.NewDevelopmentEncoderConfig()
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(enc),
		zapcore.Lock(os.Stderr),
		zap.WarnLevel,
	)
	return zap.New(core).Named("arbor")
}

// SetLogger replaces the package logger. A nil logger silences arbor.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger = l.Named("arbor")
}

// Logger returns the package logger.
func Logger() *zap.Logger {
	return logger
}

// idField is the common zap field for an object's identity.
func idField(o Object) zap.Field {
	if o == nil {
		return zap.String("id", "")
	}
	return zap.String("id", o.AsEventSource().id)
}
