// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package log

import (
	"fmt"
	"strings"
	"time"
)

func (l *Logger) logf(logLevel Level, format string, args ...interface{}) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if *l.settings.level > logLevel {
		return
	}

	s := format
	if len(args) > 0 {
		s = fmt.Sprintf(format, args...)
	}

	now := time.Now().Format("2006-01-02T15:04:05")
	line := now + " " + logLevel.ColouredString() + " " + s

	if len(l.settings.context) > 0 {
		keyValues := make([]string, 0, len(l.settings.context))
		for _, kvs := range l.settings.context {
			keyValues = append(keyValues, kvs.key+"="+strings.Join(kvs.values, ","))
		}
		line += "\t" + strings.Join(keyValues, " ")
	}

	if caller := getCallerString(l.settings.caller); caller != "" {
		line += "\t" + caller
	}

	fmt.Fprintln(l.settings.writer, line)
}

// Trace logs with the trce level.
func (l *Logger) Trace(s string) { l.logf(Trace, s) }

// Tracef formats and logs with the trce level.
func (l *Logger) Tracef(format string, args ...interface{}) { l.logf(Trace, format, args...) }

// Debug logs with the dbug level.
func (l *Logger) Debug(s string) { l.logf(Debug, s) }

// Debugf formats and logs with the dbug level.
func (l *Logger) Debugf(format string, args ...interface{}) { l.logf(Debug, format, args...) }

// Info logs with the info level.
func (l *Logger) Info(s string) { l.logf(Info, s) }

// Infof formats and logs with the info level.
func (l *Logger) Infof(format string, args ...interface{}) { l.logf(Info, format, args...) }

// Warn logs with the warn level.
func (l *Logger) Warn(s string) { l.logf(Warn, s) }

// Warnf formats and logs with the warn level.
func (l *Logger) Warnf(format string, args ...interface{}) { l.logf(Warn, format, args...) }

// Error logs with the eror level.
func (l *Logger) Error(s string) { l.logf(Error, s) }

// Errorf formats and logs with the eror level.
func (l *Logger) Errorf(format string, args ...interface{}) { l.logf(Error, format, args...) }

// Critical logs with the crit level.
func (l *Logger) Critical(s string) { l.logf(Critical, s) }

// Criticalf formats and logs with the crit level.
func (l *Logger) Criticalf(format string, args ...interface{}) { l.logf(Critical, format, args...) }
