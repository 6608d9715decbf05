// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package log

import (
	"sync"
)

// Logger is the logger implementation structure.
// It is thread safe to use.
type Logger struct {
	settings settings
	// pointer shared with child loggers so writes to a common
	// writer never interleave.
	mutex  *sync.Mutex
	childs []*Logger
}

// New creates a new logger. Loggers sharing a writer should be derived
// from one root logger with the New method so they share its mutex.
func New(options ...Option) *Logger {
	s := newSettings(options)
	s.setDefaults()

	return &Logger{
		settings: s,
		mutex:    new(sync.Mutex),
	}
}

// New creates a new thread safe child logger, inheriting every setting
// not overridden by the options given.
func (l *Logger) New(options ...Option) *Logger {
	s := newSettings(options)

	l.mutex.Lock()
	defer l.mutex.Unlock()

	s.mergeWith(l.settings)
	s.setDefaults()

	child := &Logger{
		settings: s,
		mutex:    l.mutex,
	}
	l.childs = append(l.childs, child)
	return child
}

// Patch patches the existing settings with any option given.
// This propagates to all child loggers.
func (l *Logger) Patch(options ...Option) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	l.patchWithoutLocking(options...)
	for _, child := range l.childs {
		child.patchWithoutLocking(options...)
	}
}

// PatchLevel patches the level of the logger and all its children.
func (l *Logger) PatchLevel(level Level) {
	l.Patch(SetLevel(level))
}

func (l *Logger) patchWithoutLocking(options ...Option) {
	patched := newSettings(options)
	patched.mergeWith(l.settings)
	l.settings = patched
}
