// Package logging wraps go.uber.org/zap for the ambient logging the
// teacher's own tooling carries alongside diagnostics: progress tracing
// through parse/resolve/check/analyze/emit (spec §2 "Data flow"). The -v
// toolchain echo (internal/toolchain) and the -typeset dump (cmd/gel2c) do
// not go through it, and source diagnostics go through internal/diag — this
// package is for debug tracing only, never for user-facing compile errors.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a thin façade over *zap.SugaredLogger so callers outside this
// package never import zap directly.
type Logger struct {
	z *zap.SugaredLogger
}

// Config controls verbosity, matching the -d/-v/-typeset CLI flags
// (spec §6).
type Config struct {
	Debug   bool // -d: include debug-level phase tracing
	Verbose bool // -v: carried for callers; New does not read it
}

// New builds a Logger writing to stderr. Debug mode lowers the level to
// zap's Debug; otherwise only Info and above are emitted.
func New(cfg Config) *Logger {
	level := zapcore.InfoLevel
	if cfg.Debug {
		level = zapcore.DebugLevel
	}
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = "" // compiler runs are short-lived; timestamps add noise to -d output
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(os.Stderr),
		level,
	)
	return &Logger{z: zap.New(core).Sugar()}
}

// Nop returns a Logger that discards everything, used by tests and by
// library callers that don't want compiler chatter.
func Nop() *Logger { return &Logger{z: zap.NewNop().Sugar()} }

func (l *Logger) Debugf(format string, args ...interface{}) { l.z.Debugf(format, args...) }
func (l *Logger) Infof(format string, args ...interface{})  { l.z.Infof(format, args...) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.z.Warnf(format, args...) }
func (l *Logger) Errorf(format string, args ...interface{}) { l.z.Errorf(format, args...) }

// Phase logs entry into one of the driver's pipeline stages (spec §2
// "Data flow": parse → resolve → check → destruction-set/ref-count →
// emit).
func (l *Logger) Phase(name string) { l.z.Debugw("phase", "name", name) }

// Sync flushes any buffered log entries; callers should defer this from
// main.
func (l *Logger) Sync() error { return l.z.Sync() }
