// Copyright 2025 The Sigstore Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

var _ Logger = (*DefaultLogger)(nil)

// LoggerOptions configures a DefaultLogger instance.
type LoggerOptions struct {
	Level      LogLevel
	Formatter  Formatter
	Output     io.Writer
	TimeFormat string
	ShowLevel  bool
}

// DefaultLogger provides a structured logging implementation with
// configurable levels and pluggable formatters.
type DefaultLogger struct {
	mu        sync.Mutex
	level     LogLevel
	formatter Formatter
	out       io.Writer
	fields    map[string]interface{}
}

// NewLogger creates a new DefaultLogger at the given level, writing text
// output to stdout.
func NewLogger(level LogLevel) *DefaultLogger {
	return &DefaultLogger{
		level:     level,
		formatter: &TextFormatter{},
		out:       os.Stdout,
	}
}

// NewLoggerWithOptions creates a new DefaultLogger with the specified options.
func NewLoggerWithOptions(opts LoggerOptions) *DefaultLogger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	formatter := opts.Formatter
	if formatter == nil {
		formatter = &TextFormatter{TimeFormat: opts.TimeFormat, ShowLevel: opts.ShowLevel}
	}

	return &DefaultLogger{
		level:     opts.Level,
		formatter: formatter,
		out:       out,
	}
}

// WithFields returns a new Logger with the given fields added to all log
// entries. The original logger is not modified.
func (l *DefaultLogger) WithFields(fields map[string]interface{}) Logger {
	l.mu.Lock()
	defer l.mu.Unlock()

	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}

	return &DefaultLogger{level: l.level, formatter: l.formatter, out: l.out, fields: merged}
}

// WithField returns a new Logger with the given field added to all log entries.
func (l *DefaultLogger) WithField(key string, value interface{}) Logger {
	return l.WithFields(map[string]interface{}{key: value})
}

// GetLevel returns the current log level.
func (l *DefaultLogger) GetLevel() LogLevel {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

func (l *DefaultLogger) log(level LogLevel, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level {
		return
	}

	entry := LogEntry{
		Timestamp: time.Now(),
		Level:     level,
		Message:   fmt.Sprintf(format, args...),
		Fields:    l.fields,
	}

	data, err := l.formatter.Format(entry)
	if err != nil {
		fmt.Fprintf(l.out, "logging error: %v\n", err)
		return
	}
	_, _ = l.out.Write(data)
}

func (l *DefaultLogger) Debug(format string, args ...interface{}) { l.log(LevelDebug, format, args...) }
func (l *DefaultLogger) Debugln(msg string)                       { l.log(LevelDebug, "%s", msg) }
func (l *DefaultLogger) Info(format string, args ...interface{})  { l.log(LevelInfo, format, args...) }
func (l *DefaultLogger) Infoln(msg string)                        { l.log(LevelInfo, "%s", msg) }
func (l *DefaultLogger) Warn(format string, args ...interface{})  { l.log(LevelWarn, format, args...) }
func (l *DefaultLogger) Warnln(msg string)                        { l.log(LevelWarn, "%s", msg) }
func (l *DefaultLogger) Error(format string, args ...interface{}) { l.log(LevelError, format, args...) }
func (l *DefaultLogger) Errorln(msg string)                       { l.log(LevelError, "%s", msg) }
