// Package logging wires logr, controller-runtime and klog to one zap sink.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-logr/logr"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
	klog "k8s.io/klog/v2"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
)

// Options selects the log sink.
type Options struct {
	// Debug switches to zap's development mode (V(1) and stack traces).
	Debug bool
	// Writer receives log lines. Nil discards them.
	Writer io.Writer
}

// New builds a logger without touching global state.
func New(opts Options) logr.Logger {
	w := opts.Writer
	if w == nil {
		w = io.Discard
	}
	return zap.New(zap.UseDevMode(opts.Debug), zap.WriteTo(w), isoTime)
}

func isoTime(o *zap.Options) { o.TimeEncoder = zapcore.ISO8601TimeEncoder }

// Setup installs the logger for controller-runtime and points klog at it so
// client-go output lands in the same place.
func Setup(opts Options) logr.Logger {
	logger := New(opts)
	ctrl.SetLogger(logger)
	klog.SetLogger(logger)
	return logger
}

// DebugFromEnv reports whether DEBUG is set.
func DebugFromEnv() bool { return os.Getenv("DEBUG") != "" }

// LogFileName is the console log file inside the config directory.
const LogFileName = "simconsole.log"

// OpenFile returns a rotating writer for the log file under dir, creating
// dir if needed. The console writes here because stderr belongs to the
// terminal UI.
func OpenFile(dir string) (io.WriteCloser, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	return &lumberjack.Logger{
		Filename:   filepath.Join(dir, LogFileName),
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
	}, nil
}
