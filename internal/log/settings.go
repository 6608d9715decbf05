// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package log

import (
	"io"
	"os"
)

type contextKeyValues struct {
	key    string
	values []string
}

type settings struct {
	level   *Level
	writer  io.Writer
	caller  callerSettings
	context []contextKeyValues
}

func newSettings(options []Option) (s settings) {
	for _, option := range options {
		option(&s)
	}
	return s
}

// mergeWith sets every unset field of s from other, and appends
// other's context entries behind the existing ones.
func (s *settings) mergeWith(other settings) {
	if s.level == nil && other.level != nil {
		value := *other.level
		s.level = &value
	}
	if s.writer == nil {
		s.writer = other.writer
	}
	s.caller.mergeWith(other.caller)

	merged := make([]contextKeyValues, 0, len(other.context)+len(s.context))
	for _, kvs := range other.context {
		values := make([]string, len(kvs.values))
		copy(values, kvs.values)
		merged = append(merged, contextKeyValues{key: kvs.key, values: values})
	}
	for _, kvs := range s.context {
		merged = appendContext(merged, kvs.key, kvs.values...)
	}
	s.context = merged
}

func (s *settings) setDefaults() {
	if s.level == nil {
		value := Info
		s.level = &value
	}
	if s.writer == nil {
		s.writer = os.Stdout
	}
	s.caller.setDefaults()
}

func appendContext(context []contextKeyValues, key string, values ...string) []contextKeyValues {
	for i := range context {
		if context[i].key == key {
			context[i].values = append(context[i].values, values...)
			return context
		}
	}
	return append(context, contextKeyValues{key: key, values: values})
}
