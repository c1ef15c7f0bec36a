package alog

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"
)

// Logger writes structured log entries to an injected destination.
type Logger struct {
	mu          sync.Mutex
	out         io.Writer
	level       LogLevel
	environment LoggingEnvironment
	project     string
	source      bool
}

// Options for the New method.
type Options struct {
	Writer      io.Writer
	Level       LogLevel
	Environment LoggingEnvironment
	// Project is used to build the trace resource name.
	//
	// Defaults to the ALIS_OS_PROJECT environment variable.
	Project string
	// SourceLocation adds the file, line and function of the caller to each entry.
	SourceLocation bool
}

// Option is a functional option for the New method.
type Option func(*Options)

// WithWriter sets the destination of the log entries. Defaults to os.Stderr.
func WithWriter(w io.Writer) Option {
	return func(opts *Options) {
		opts.Writer = w
	}
}

// WithLevel sets the minimum logging level.
func WithLevel(level LogLevel) Option {
	return func(opts *Options) {
		opts.Level = level
	}
}

// WithEnvironment sets the logging environment.
func WithEnvironment(e LoggingEnvironment) Option {
	return func(opts *Options) {
		opts.Environment = e
	}
}

// WithProject overrides the Google Cloud project used for trace names.
func WithProject(project string) Option {
	return func(opts *Options) {
		opts.Project = project
	}
}

// WithSourceLocation enables the source location on every entry.
func WithSourceLocation() Option {
	return func(opts *Options) {
		opts.SourceLocation = true
	}
}

// New creates a Logger.
//
// Example:
//
//	log := alog.New(alog.WithLevel(alog.LevelDebug), alog.WithEnvironment(alog.EnvironmentLocal))
//	log.Infof(ctx, "opened %s", title)
func New(opts ...Option) *Logger {
	options := &Options{
		Writer:      os.Stderr,
		Level:       LevelInfo,
		Environment: EnvironmentGoogle,
		Project:     os.Getenv("ALIS_OS_PROJECT"),
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.Writer == nil {
		options.Writer = io.Discard
	}
	return &Logger{
		out:         options.Writer,
		level:       options.Level,
		environment: options.Environment,
		project:     options.Project,
		source:      options.SourceLocation,
	}
}

// Discard returns a Logger that writes nothing.
func Discard() *Logger {
	return New(WithWriter(io.Discard), WithLevel(LevelCritical+1))
}

// Enabled reports whether entries at the given level are written.
func (l *Logger) Enabled(level LogLevel) bool {
	return l != nil && l.level <= level
}

func (l *Logger) log(ctx context.Context, level LogLevel, msg string) {
	if !l.Enabled(level) {
		return
	}
	e := newEntry(ctx, level, msg, l.project)
	if l.source {
		// log <- Info/Infof <- caller
		if pc, file, line, ok := runtime.Caller(2); ok {
			e.SourceLocation = &sourceLocation{File: filepath.Base(file), Line: strconv.Itoa(line)}
			if fn := runtime.FuncForPC(pc); fn != nil {
				e.SourceLocation.Function = fn.Name()
			}
		}
	}
	out := e.render(l.environment, level)

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = io.WriteString(l.out, out+"\n")
}

// Debug logs a Debug level entry.
func (l *Logger) Debug(ctx context.Context, msg string) { l.log(ctx, LevelDebug, msg) }

// Debugf logs a Debug level entry formatted with fmt.Sprintf.
func (l *Logger) Debugf(ctx context.Context, format string, a ...any) {
	l.log(ctx, LevelDebug, fmt.Sprintf(format, a...))
}

// Info logs an Info level entry.
func (l *Logger) Info(ctx context.Context, msg string) { l.log(ctx, LevelInfo, msg) }

// Infof logs an Info level entry formatted with fmt.Sprintf.
func (l *Logger) Infof(ctx context.Context, format string, a ...any) {
	l.log(ctx, LevelInfo, fmt.Sprintf(format, a...))
}

// Notice logs a Notice level entry.
func (l *Logger) Notice(ctx context.Context, msg string) { l.log(ctx, LevelNotice, msg) }

// Noticef logs a Notice level entry formatted with fmt.Sprintf.
func (l *Logger) Noticef(ctx context.Context, format string, a ...any) {
	l.log(ctx, LevelNotice, fmt.Sprintf(format, a...))
}

// Warn logs a Warning level entry.
func (l *Logger) Warn(ctx context.Context, msg string) { l.log(ctx, LevelWarning, msg) }

// Warnf logs a Warning level entry formatted with fmt.Sprintf.
func (l *Logger) Warnf(ctx context.Context, format string, a ...any) {
	l.log(ctx, LevelWarning, fmt.Sprintf(format, a...))
}

// Error logs an Error level entry.
func (l *Logger) Error(ctx context.Context, msg string) { l.log(ctx, LevelError, msg) }

// Errorf logs an Error level entry formatted with fmt.Sprintf.
func (l *Logger) Errorf(ctx context.Context, format string, a ...any) {
	l.log(ctx, LevelError, fmt.Sprintf(format, a...))
}

// Critical logs a Critical level entry.
func (l *Logger) Critical(ctx context.Context, msg string) { l.log(ctx, LevelCritical, msg) }

// Criticalf logs a Critical level entry formatted with fmt.Sprintf.
func (l *Logger) Criticalf(ctx context.Context, format string, a ...any) {
	l.log(ctx, LevelCritical, fmt.Sprintf(format, a...))
}
