// Package log configures zap for the safestream binary.
//
// The SDK packages never build a logger of their own. They log through the logger given with
// client.WithLogger, or the process global zap.S() named "safestream", so an application embedding
// the SDK keeps control of where its output goes. Only the CLI calls InitLog and installs the result
// with zap.ReplaceGlobals.
package log

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// InitLog builds a console logger writing to stderr, leaving stdout to command output
// so that json and yaml results can be piped.
func InitLog(lvl zap.AtomicLevel) *zap.Logger {
	loggerCfg := &zap.Config{
		Level:    lvl,
		Encoding: "console",
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "time",
			LevelKey:       "severity",
			NameKey:        "logger",
			CallerKey:      "caller",
			MessageKey:     "message",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeTime:     zapcore.RFC3339TimeEncoder,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeDuration: zapcore.MillisDurationEncoder, EncodeCaller: zapcore.ShortCallerEncoder},
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}

	plain, err := loggerCfg.Build(zap.AddStacktrace(zap.DPanicLevel))
	if err != nil {
		panic(err)
	}

	return plain
}

// ParseLevel turns a level name such as "debug" into an atomic level.
func ParseLevel(level string) (zap.AtomicLevel, error) {
	return zap.ParseAtomicLevel(level)
}
