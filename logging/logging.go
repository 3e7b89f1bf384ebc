package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// BuildLogger creates a console logger writing to stderr. The default level
// is Warn; verbose lowers it to Info, debug to Debug and quiet raises it to
// Error. debug wins over the other flags.
func BuildLogger(debug, verbose, quiet bool) *zap.Logger {
	level := zapcore.WarnLevel
	switch {
	case debug:
		level = zapcore.DebugLevel
	case verbose:
		level = zapcore.InfoLevel
	case quiet:
		level = zapcore.ErrorLevel
	}

	enc := zap.NewDevelopmentEncoderConfig()
	enc.EncodeLevel = zapcore.CapitalLevelEncoder
	if !debug {
		enc.TimeKey = ""
		enc.CallerKey = ""
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.Lock(os.Stderr), level)

	opts := []zap.Option{}
	if debug {
		opts = append(opts, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	}
	return zap.New(core, opts...)
}
