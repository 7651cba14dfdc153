package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var log = zap.NewNop()

// Init builds the process logger. Verbose switches to the development
// config; otherwise only warnings and errors reach stderr so command output
// stays clean.
func Init(verbose bool) error {
	var (
		l   *zap.Logger
		err error
	)
	if verbose || os.Getenv("NUTRILOG_DEBUG") != "" {
		l, err = zap.NewDevelopment()
	} else {
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		l, err = cfg.Build()
	}
	if err != nil {
		return err
	}
	log = l
	return nil
}

func L() *zap.Logger { return log }

// Sync flushes buffered entries; call before process exit.
func Sync() {
	_ = log.Sync()
}

func Info(msg string, fields ...zapcore.Field) {
	log.Info(msg, fields...)
}

func Warn(msg string, fields ...zapcore.Field) {
	log.Warn(msg, fields...)
}

func Error(msg string, fields ...zapcore.Field) {
	log.Error(msg, fields...)
}
