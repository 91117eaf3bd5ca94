// Copyright 2025 Poiesic Systems
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

// Package sessionlog provides trace sinks for pipeline stage events.
//
// A sink receives fire-and-forget events keyed by session and stage. The
// file sink appends timestamped lines to a shared log file; the slog sink
// forwards events as structured log records. Both swallow write failures:
// tracing must never interfere with a run.
package sessionlog

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// timestampLayout is the prefix format of every file sink line.
const timestampLayout = "2006-01-02T15:04:05Z07:00"

// FileSink appends stage events to a log file, one line per event. Writes
// are serialized under a mutex so concurrent sessions never interleave
// within a line. The file is opened lazily and kept open until Close.
type FileSink struct {
	mu     sync.Mutex
	path   string
	file   *os.File
	logger *slog.Logger
}

// FileSinkOption configures a FileSink.
type FileSinkOption func(*FileSink)

// WithLogger sets the logger used to report write failures.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) FileSinkOption {
	return func(s *FileSink) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewFileSink creates a sink appending to the file at path, creating parent
// directories as needed.
func NewFileSink(path string, opts ...FileSinkOption) (*FileSink, error) {
	if path == "" {
		return nil, ErrPathRequired
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating log directory: %w", err)
		}
	}

	s := &FileSink{
		path:   path,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Append writes one timestamped event line. Failures are logged and
// swallowed.
func (s *FileSink) Append(sessionID, stage, message string) {
	line := fmt.Sprintf("%s [%s] %s: %s\n",
		time.Now().Format(timestampLayout), sessionID, stage, message)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			s.logger.Warn("opening session log", "path", s.path, "error", err)
			return
		}
		s.file = file
	}

	if _, err := s.file.WriteString(line); err != nil {
		s.logger.Warn("appending to session log", "path", s.path, "error", err)
	}
}

// Close closes the underlying file. The sink may not be used afterwards.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

// SlogSink forwards stage events to a structured logger at Info level.
type SlogSink struct {
	logger *slog.Logger
}

// NewSlogSink creates a sink logging through the given logger.
// A nil logger defaults to slog.Default().
func NewSlogSink(logger *slog.Logger) *SlogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogSink{logger: logger}
}

// Append logs one stage event.
func (s *SlogSink) Append(sessionID, stage, message string) {
	s.logger.Info(message, "session", sessionID, "stage", stage)
}
