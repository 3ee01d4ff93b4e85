// Copyright 2023 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package logger provides the structured, leveled logger used throughout
// blockvol. It supports a text and a JSON output format and rotates log
// files through lumberjack when configured with a file path.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/blockvol/blockvol/cfg"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Severity level names, matching cfg.LoggingConfig.Severity.
const (
	TRACE   = "TRACE"
	DEBUG   = "DEBUG"
	INFO    = "INFO"
	WARNING = "WARNING"
	ERROR   = "ERROR"
	OFF     = "OFF"
)

// Custom slog levels. slog only predefines Debug/Info/Warn/Error; Trace and
// Off bracket them on either side.
const (
	LevelTrace = slog.Level(-8)
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
	LevelOff   = slog.Level(12)
)

const timeLayout = "2006/01/02 15:04:05.000000"

// loggerFactory owns the writer the default logger is attached to, so that
// InitLogFile / SetLogFormat can rebuild the handler without callers having
// to re-acquire a *slog.Logger.
type loggerFactory struct {
	mu sync.Mutex

	file      *os.File
	rotator   *lumberjack.Logger
	sysWriter io.Writer

	format          string
	level           string
	logRotateConfig cfg.LogRotateConfig
}

func (f *loggerFactory) writer() io.Writer {
	if f.rotator != nil {
		return f.rotator
	}
	if f.sysWriter != nil {
		return f.sysWriter
	}
	return os.Stderr
}

// createJsonOrTextHandler builds a slog.Handler that renames slog's builtin
// attrs to the severity/message/timestamp vocabulary blockvol logs use.
func (f *loggerFactory) createJsonOrTextHandler(w io.Writer, programLevel *slog.LevelVar, prefix string) slog.Handler {
	replace := func(groups []string, a slog.Attr) slog.Attr {
		switch a.Key {
		case slog.TimeKey:
			t := a.Value.Time()
			if f.format == "json" {
				a.Key = "timestamp"
				a.Value = slog.GroupValue(
					slog.Int64("seconds", t.Unix()),
					slog.Int64("nanos", int64(t.Nanosecond())),
				)
			} else {
				a.Value = slog.StringValue(t.Format(timeLayout))
			}
		case slog.LevelKey:
			a.Key = "severity"
			a.Value = slog.StringValue(levelLabel(a.Value.Any().(slog.Level)))
		case slog.MessageKey:
			a.Key = "message"
			a.Value = slog.StringValue(prefix + a.Value.String())
		}
		return a
	}

	opts := &slog.HandlerOptions{Level: programLevel, ReplaceAttr: replace}
	if f.format == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

func levelLabel(l slog.Level) string {
	switch {
	case l < LevelDebug:
		return TRACE
	case l < LevelInfo:
		return DEBUG
	case l < LevelWarn:
		return INFO
	case l < LevelError:
		return WARNING
	default:
		return ERROR
	}
}

// setLoggingLevel maps a cfg severity string onto a slog.LevelVar.
func setLoggingLevel(level string, programLevel *slog.LevelVar) {
	switch level {
	case TRACE:
		programLevel.Set(LevelTrace)
	case DEBUG:
		programLevel.Set(LevelDebug)
	case INFO:
		programLevel.Set(LevelInfo)
	case WARNING:
		programLevel.Set(LevelWarn)
	case ERROR:
		programLevel.Set(LevelError)
	case OFF:
		programLevel.Set(LevelOff)
	default:
		programLevel.Set(LevelInfo)
	}
}

var (
	programLevel = new(slog.LevelVar)

	defaultLoggerFactory = &loggerFactory{
		format:          "text",
		level:           INFO,
		logRotateConfig: cfg.GetDefaultLoggingConfig().LogRotate,
	}

	defaultLogger = slog.New(defaultLoggerFactory.createJsonOrTextHandler(os.Stderr, programLevel, ""))
)

func init() {
	setLoggingLevel(defaultLoggerFactory.level, programLevel)
}

func rebuild() {
	defaultLogger = slog.New(defaultLoggerFactory.createJsonOrTextHandler(defaultLoggerFactory.writer(), programLevel, ""))
}

// SetLogFormat switches the default logger between "text" and "json" output.
// An empty format is treated as "json", matching the teacher's fallback.
func SetLogFormat(format string) {
	defaultLoggerFactory.mu.Lock()
	defer defaultLoggerFactory.mu.Unlock()

	if format == "" {
		format = "json"
	}
	defaultLoggerFactory.format = format
	rebuild()
}

// InitLogFile points the default logger at a rotating file, configured per
// cfg.LoggingConfig.
func InitLogFile(c cfg.LoggingConfig) error {
	defaultLoggerFactory.mu.Lock()
	defer defaultLoggerFactory.mu.Unlock()

	if c.FilePath == "" {
		defaultLoggerFactory.sysWriter = os.Stderr
		defaultLoggerFactory.rotator = nil
	} else {
		defaultLoggerFactory.rotator = &lumberjack.Logger{
			Filename:   c.FilePath,
			MaxSize:    c.LogRotate.MaxFileSizeMB,
			MaxBackups: c.LogRotate.BackupFileCount,
			Compress:   c.LogRotate.Compress,
		}
	}

	if c.Format != "" {
		defaultLoggerFactory.format = c.Format
	}
	if c.Severity != "" {
		defaultLoggerFactory.level = c.Severity
	}
	defaultLoggerFactory.logRotateConfig = c.LogRotate

	setLoggingLevel(defaultLoggerFactory.level, programLevel)
	rebuild()

	return nil
}

func logf(level slog.Level, format string, v ...any) {
	defaultLogger.Log(context.Background(), level, fmt.Sprintf(format, v...))
}

func Tracef(format string, v ...any) { logf(LevelTrace, format, v...) }
func Debugf(format string, v ...any) { logf(LevelDebug, format, v...) }
func Infof(format string, v ...any)  { logf(LevelInfo, format, v...) }
func Warnf(format string, v ...any)  { logf(LevelWarn, format, v...) }
func Errorf(format string, v ...any) { logf(LevelError, format, v...) }
