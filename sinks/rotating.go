// Package sinks holds dbglog sinks backed by third-party writers and loggers.
package sinks

import (
	"io"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/abyssdigger/dbglog"
)

const DEFAULT_MAX_SIZE_MB = 100

// RotatingFile is a secondary log file that starts a new file once the current
// one grows past a size limit. Old files are kept as they are: no retention
// limit, no compression.
type RotatingFile struct {
	dbglog.SinkBase
	mtx sync.Mutex
	out *lumberjack.Logger
	err error
}

// NewRotatingFile creates a sink writing to path, rotating at maxSizeMB
// megabytes (DEFAULT_MAX_SIZE_MB when <= 0). The file is opened on the first
// write.
func NewRotatingFile(name string, mask dbglog.Mask, path string, maxSizeMB int) *RotatingFile {
	if maxSizeMB <= 0 {
		maxSizeMB = DEFAULT_MAX_SIZE_MB
	}
	return &RotatingFile{
		SinkBase: dbglog.NewSinkBase(name, mask, false),
		out: &lumberjack.Logger{
			Filename: path,
			MaxSize:  maxSizeMB,
		},
	}
}

// Write appends line. The first write error is kept, see Err.
func (s *RotatingFile) Write(line string) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if _, err := io.WriteString(s.out, line); err != nil && s.err == nil {
		s.err = err
	}
}

// Err returns the first write error, if any.
func (s *RotatingFile) Err() error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.err
}

// Rotate closes the current file and starts a new one right away.
func (s *RotatingFile) Rotate() error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.out.Rotate()
}

func (s *RotatingFile) Close() error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.out.Close()
}
