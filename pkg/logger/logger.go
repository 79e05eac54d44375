package logger

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"
)

// Logger is the leveled logger used across the server.
type Logger interface {
	Debugf(format string, v ...interface{})
	Infof(format string, v ...interface{})
	Warnf(format string, v ...interface{})
	Errorf(format string, v ...interface{})
	Fatalf(format string, v ...interface{})
	WithModule(name string) Logger
	WithFields(fields map[string]interface{}) Logger
}

const (
	levelDebug = iota
	levelInfo
	levelWarn
	levelError
)

func parseLevel(l string) int {
	switch strings.ToLower(l) {
	case "debug":
		return levelDebug
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

type stdLogger struct {
	level  int
	module string
	fields map[string]interface{}
	out    *log.Logger
}

// NewLogger creates a logger writing to stderr and, if logFile is not empty,
// to the given file as well.
func NewLogger(level, logFile string) Logger {
	var w io.Writer = os.Stderr
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			log.Printf("[WARN] cannot open log file %s: %v", logFile, err)
		} else {
			w = io.MultiWriter(os.Stderr, f)
		}
	}
	return &stdLogger{
		level: parseLevel(level),
		out:   log.New(w, "", log.LstdFlags),
	}
}

func (l *stdLogger) clone() *stdLogger {
	fields := make(map[string]interface{}, len(l.fields))
	for k, v := range l.fields {
		fields[k] = v
	}
	return &stdLogger{
		level:  l.level,
		module: l.module,
		fields: fields,
		out:    l.out,
	}
}

func (l *stdLogger) WithModule(name string) Logger {
	c := l.clone()
	c.module = name
	return c
}

func (l *stdLogger) WithFields(fields map[string]interface{}) Logger {
	c := l.clone()
	for k, v := range fields {
		c.fields[k] = v
	}
	return c
}

func (l *stdLogger) prefix(tag string) string {
	var b strings.Builder
	b.WriteString("[")
	b.WriteString(tag)
	b.WriteString("]")
	if l.module != "" {
		b.WriteString(" [")
		b.WriteString(strings.ToUpper(l.module))
		b.WriteString("]")
	}
	b.WriteString(" ")
	return b.String()
}

func (l *stdLogger) suffix() string {
	if len(l.fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(l.fields))
	for k := range l.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, l.fields[k]))
	}
	return " " + strings.Join(parts, " ")
}

func (l *stdLogger) Debugf(format string, v ...interface{}) {
	if l.level <= levelDebug {
		l.out.Printf(l.prefix("DEBUG")+format+l.suffix(), v...)
	}
}

func (l *stdLogger) Infof(format string, v ...interface{}) {
	if l.level <= levelInfo {
		l.out.Printf(l.prefix("INFO")+format+l.suffix(), v...)
	}
}

func (l *stdLogger) Warnf(format string, v ...interface{}) {
	if l.level <= levelWarn {
		l.out.Printf(l.prefix("WARN")+format+l.suffix(), v...)
	}
}

func (l *stdLogger) Errorf(format string, v ...interface{}) {
	if l.level <= levelError {
		l.out.Printf(l.prefix("ERROR")+format+l.suffix(), v...)
	}
}

func (l *stdLogger) Fatalf(format string, v ...interface{}) {
	l.out.Fatalf(l.prefix("FATAL")+format+l.suffix(), v...)
}

type ctxKey struct{}

// NewContext returns a context carrying the given logger.
func NewContext(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the logger stored in ctx, or a default one.
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(ctxKey{}).(Logger); ok {
		return l
	}
	return NewLogger("info", "")
}
