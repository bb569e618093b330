// Package logger provides the process-wide structured logger.
//
// The level lives in a zap.AtomicLevel so it can be changed at runtime
// through GET/PUT /log/level. Output is JSON for services and colored
// console text for local runs; both go to stderr.
//
// Import Path: vme-analyzer.io/analyzer/internal/pkg/logger
package logger

import (
	"fmt"
	"net/http"
	"os"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	global atomic.Pointer[zap.Logger]
	level  = zap.NewAtomicLevel()
	once   sync.Once
)

// Init builds the global logger. Only the first call has an effect, so
// commands and tests may call it unconditionally.
//
// level is one of debug, info, warn, error. format is "console" or "json";
// anything else means json.
func Init(lvl, format string) error {
	var err error
	once.Do(func() {
		if err = level.UnmarshalText([]byte(lvl)); err != nil {
			err = fmt.Errorf("parse log level %q: %w", lvl, err)
			return
		}
		core := zapcore.NewCore(newEncoder(format), zapcore.Lock(os.Stderr), level)
		global.Store(zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1), zap.AddStacktrace(zapcore.ErrorLevel)))
	})
	return err
}

func newEncoder(format string) zapcore.Encoder {
	if format == "console" {
		ec := zap.NewDevelopmentEncoderConfig()
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return zapcore.NewConsoleEncoder(ec)
	}
	ec := zap.NewProductionEncoderConfig()
	ec.TimeKey = "ts"
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	return zapcore.NewJSONEncoder(ec)
}

// SetLevel changes the level of the running logger.
func SetLevel(lvl string) error {
	return level.UnmarshalText([]byte(lvl))
}

func GetLevel() zapcore.Level {
	return level.Level()
}

// L returns the global logger. It panics before Init.
func L() *zap.Logger {
	if l := global.Load(); l != nil {
		return l
	}
	panic("logger: Init must be called before L")
}

// Named returns a child logger for a component. Library packages that may
// run before Init (CLI, tests) use it instead of L: it returns a no-op
// logger until Init succeeds.
func Named(component string) *zap.Logger {
	l := global.Load()
	if l == nil {
		return zap.NewNop()
	}
	// Callers log directly, not through the package helpers.
	return l.WithOptions(zap.AddCallerSkip(-1)).Named(component)
}

func Debug(msg string, fields ...zap.Field) { L().Debug(msg, fields...) }

func Info(msg string, fields ...zap.Field) { L().Info(msg, fields...) }

func Warn(msg string, fields ...zap.Field) { L().Warn(msg, fields...) }

func Error(msg string, fields ...zap.Field) { L().Error(msg, fields...) }

// LevelHandler serves the current level as JSON and accepts PUT
// {"level":"debug"} to change it.
func LevelHandler() http.Handler {
	return level
}

// Sync flushes buffered entries. It is a no-op before Init.
func Sync() error {
	if l := global.Load(); l != nil {
		return l.Sync()
	}
	return nil
}
