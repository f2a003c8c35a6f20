// Package log is the process wide leveled logger.
//
// Until Init is called everything at info and above goes to stderr.
// After Init, output is teed into a rolling file under the data directory.
package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/pkt-cash/iriswallet/er"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// ANSI helpers for making a word stand out in the console.
const (
	Bright = "\x1b[1m"
	Reset  = "\x1b[0m"
	Red    = "\x1b[31m"
	Yellow = "\x1b[33m"
)

// Two levels beyond what zap has.
const (
	traceLevel    = zapcore.DebugLevel - 1
	criticalLevel = zapcore.DPanicLevel
)

type Config struct {
	// Dir receives the rolling file <date>.log, empty means console only.
	Dir string
	// Level is one of trace, debug, info, warn, error, critical.
	Level string
	// Console defaults to stderr.
	Console io.Writer
	// NoConsole suppresses console output entirely.
	NoConsole  bool
	MaxSizeMB  int
	MaxBackups int
	Now        func() time.Time
}

type state struct {
	sugar *zap.SugaredLogger
	file  *lumberjack.Logger
}

var (
	level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	cur   atomic.Pointer[state]
)

func init() {
	cur.Store(&state{sugar: build(zapcore.Lock(os.Stderr), nil)})
}

func encoderConfig() zapcore.EncoderConfig {
	ec := zap.NewProductionEncoderConfig()
	ec.EncodeTime = func(ts time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(ts.Format("2006-01-02 15:04:05.000"))
	}
	ec.EncodeLevel = func(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(levelName(l))
	}
	ec.ConsoleSeparator = " "
	return ec
}

func build(console zapcore.WriteSyncer, file zapcore.WriteSyncer) *zap.SugaredLogger {
	ec := encoderConfig()
	var cores []zapcore.Core
	if console != nil {
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(ec), console, level))
	}
	if file != nil {
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(ec), file, level))
	}
	return zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(2)).Sugar()
}

func levelName(l zapcore.Level) string {
	switch l {
	case traceLevel:
		return "TRC"
	case zapcore.DebugLevel:
		return "DBG"
	case zapcore.InfoLevel:
		return "INF"
	case zapcore.WarnLevel:
		return "WRN"
	case zapcore.ErrorLevel:
		return "ERR"
	case criticalLevel:
		return "CRT"
	}
	return strings.ToUpper(l.String())
}

func parseLevel(s string) (zapcore.Level, er.R) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace", "trc":
		return traceLevel, nil
	case "debug", "dbg":
		return zapcore.DebugLevel, nil
	case "", "info", "inf":
		return zapcore.InfoLevel, nil
	case "warn", "warning", "wrn":
		return zapcore.WarnLevel, nil
	case "error", "err":
		return zapcore.ErrorLevel, nil
	case "critical", "crt":
		return criticalLevel, nil
	}
	return 0, er.Errorf("unknown log level [%s]", s)
}

// ValidLevel reports whether s names a level.
func ValidLevel(s string) bool {
	_, err := parseLevel(s)
	return err == nil
}

// SetLogLevels changes the level at runtime.
func SetLogLevels(s string) er.R {
	l, err := parseLevel(s)
	if err != nil {
		return err
	}
	level.SetLevel(l)
	return nil
}

// Init replaces the startup logger. It may be called more than once, the
// previous log file is closed.
func Init(cfg Config) er.R {
	if err := SetLogLevels(cfg.Level); err != nil {
		return err
	}
	var console zapcore.WriteSyncer
	if !cfg.NoConsole {
		if cfg.Console != nil {
			console = zapcore.Lock(zapcore.AddSync(cfg.Console))
		} else {
			console = zapcore.Lock(os.Stderr)
		}
	}
	st := &state{}
	var file zapcore.WriteSyncer
	if cfg.Dir != "" {
		if errr := os.MkdirAll(cfg.Dir, 0700); errr != nil {
			return er.E(errr)
		}
		now := time.Now
		if cfg.Now != nil {
			now = cfg.Now
		}
		st.file = &lumberjack.Logger{
			Filename:   filepath.Join(cfg.Dir, now().Format("2006-01-02")+".log"),
			MaxSize:    orDefault(cfg.MaxSizeMB, 20),
			MaxBackups: orDefault(cfg.MaxBackups, 7),
			Compress:   true,
		}
		file = zapcore.AddSync(st.file)
	}
	st.sugar = build(console, file)
	if old := cur.Swap(st); old != nil {
		old.close()
	}
	return nil
}

// Sync flushes buffered output.
func Sync() {
	_ = cur.Load().sugar.Sync()
}

// Close flushes and closes the log file, the console keeps working.
func Close() {
	st := &state{sugar: build(zapcore.Lock(os.Stderr), nil)}
	if old := cur.Swap(st); old != nil {
		old.close()
	}
}

func (s *state) close() {
	_ = s.sugar.Sync()
	if s.file != nil {
		_ = s.file.Close()
	}
}

func orDefault(v, d int) int {
	if v <= 0 {
		return d
	}
	return v
}

// Redact hides a secret while still showing whether it was set.
func Redact(s string) string {
	if s == "" {
		return ""
	}
	return "[REDACTED]"
}

func logf(l zapcore.Level, format string, args ...interface{}) {
	cur.Load().sugar.Logf(l, format, args...)
}

func logv(l zapcore.Level, args ...interface{}) {
	cur.Load().sugar.Log(l, sprint(args...))
}

func sprint(args ...interface{}) string {
	for i, a := range args {
		if r, ok := a.(er.R); ok && r != nil {
			args[i] = r.Message()
		}
	}
	return strings.TrimSuffix(fmt.Sprintln(args...), "\n")
}

func Tracef(format string, args ...interface{})    { logf(traceLevel, format, args...) }
func Debugf(format string, args ...interface{})    { logf(zapcore.DebugLevel, format, args...) }
func Infof(format string, args ...interface{})     { logf(zapcore.InfoLevel, format, args...) }
func Warnf(format string, args ...interface{})     { logf(zapcore.WarnLevel, format, args...) }
func Errorf(format string, args ...interface{})    { logf(zapcore.ErrorLevel, format, args...) }
func Criticalf(format string, args ...interface{}) { logf(criticalLevel, format, args...) }

func Trace(args ...interface{})    { logv(traceLevel, args...) }
func Debug(args ...interface{})    { logv(zapcore.DebugLevel, args...) }
func Info(args ...interface{})     { logv(zapcore.InfoLevel, args...) }
func Warn(args ...interface{})     { logv(zapcore.WarnLevel, args...) }
func Error(args ...interface{})    { logv(zapcore.ErrorLevel, args...) }
func Critical(args ...interface{}) { logv(criticalLevel, args...) }
