package log

import "go.uber.org/zap/zapcore"

// Logger is a sub-logger which prefixes every line with one or more fields.
type Logger struct {
	kv []interface{}
}

// WithField returns a sub-logger carrying key=v.
func WithField(key string, v interface{}) *Logger {
	return &Logger{kv: []interface{}{key, v}}
}

// WithField adds another field.
func (l *Logger) WithField(key string, v interface{}) *Logger {
	kv := make([]interface{}, 0, len(l.kv)+2)
	kv = append(kv, l.kv...)
	return &Logger{kv: append(kv, key, v)}
}

func (l *Logger) logf(lvl zapcore.Level, format string, args ...interface{}) {
	cur.Load().sugar.With(l.kv...).Logf(lvl, format, args...)
}

func (l *Logger) Tracef(format string, args ...interface{}) { l.logf(traceLevel, format, args...) }
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.logf(zapcore.DebugLevel, format, args...)
}
func (l *Logger) Infof(format string, args ...interface{}) {
	l.logf(zapcore.InfoLevel, format, args...)
}
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.logf(zapcore.WarnLevel, format, args...)
}
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.logf(zapcore.ErrorLevel, format, args...)
}
