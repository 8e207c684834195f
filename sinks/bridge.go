package sinks

/*
Bridges forward dbglog events into a host application's logger, so a library
that logs through dbglog ends up in the same stream as the rest of the
program. Both bridges implement dbglog.EntrySink and receive the decomposed
event; the level maps by category:

	DD -> debug, I1..I4 -> info, W1..W4 -> warn, E1..E4 -> error, FF -> fatal

A fatal event is only logged, the host logger never exits the process.
*/

import (
	"strings"

	"github.com/rs/zerolog"
	"github.com/sirupsen/logrus"

	"github.com/abyssdigger/dbglog"
)

// Field names attached to bridged events.
const (
	FIELD_PID      = "pid"
	FIELD_THREAD   = "thread"
	FIELD_MODULE   = "module"
	FIELD_LOCATION = "location"
	FIELD_LEVEL    = "dbglog_level"
)

func moduleName(prefix string) string {
	return strings.TrimSuffix(strings.TrimPrefix(prefix, "["), "]")
}

/////////////////////////////////////////////////////////////////////////////////////////
// logrus

// Logrus forwards events to a *logrus.Logger.
type Logrus struct {
	dbglog.SinkBase
	log *logrus.Logger
}

// NewLogrus creates a bridge with its own mask.
func NewLogrus(name string, mask dbglog.Mask, log *logrus.Logger) *Logrus {
	return &Logrus{SinkBase: dbglog.NewSinkBase(name, mask, false), log: log}
}

// NewSharedLogrus creates a bridge that follows the dbglog logger's mask.
func NewSharedLogrus(name string, log *logrus.Logger) *Logrus {
	return &Logrus{SinkBase: dbglog.NewSinkBase(name, dbglog.MASK_NONE, true), log: log}
}

func LogrusLevel(level dbglog.Level) logrus.Level {
	switch {
	case level&dbglog.LVL_FATAL != 0:
		return logrus.FatalLevel
	case level&dbglog.LVL_ERR1 != 0:
		return logrus.ErrorLevel
	case level&dbglog.LVL_WARN1 != 0:
		return logrus.WarnLevel
	case level&dbglog.LVL_INFO1 != 0:
		return logrus.InfoLevel
	}
	return logrus.DebugLevel
}

// Write logs a bare line at info level.
func (s *Logrus) Write(line string) {
	s.log.Info(strings.TrimRight(line, "\n"))
}

func (s *Logrus) WriteEntry(e *dbglog.Entry) {
	fields := logrus.Fields{
		FIELD_LEVEL:    e.Level.Code(),
		FIELD_LOCATION: e.Location.String(),
	}
	if e.Pid != 0 {
		fields[FIELD_PID] = e.Pid
	}
	if e.Thread != "" {
		fields[FIELD_THREAD] = e.Thread
	}
	if e.Prefix != "" {
		fields[FIELD_MODULE] = moduleName(e.Prefix)
	}
	// Entry.Log only exits for Logger.Fatal*, not for FatalLevel
	s.log.WithFields(fields).WithTime(e.Time).Log(LogrusLevel(e.Level), e.Message)
}

/////////////////////////////////////////////////////////////////////////////////////////
// zerolog

// Zerolog forwards events to a zerolog.Logger. The bridge writes the event
// time under zerolog.TimestampFieldName itself unless HostTimestamp is set,
// which is required for host loggers built with With().Timestamp().
type Zerolog struct {
	dbglog.SinkBase
	log      zerolog.Logger
	hostTime bool
}

// NewZerolog creates a bridge with its own mask.
func NewZerolog(name string, mask dbglog.Mask, log zerolog.Logger) *Zerolog {
	return &Zerolog{SinkBase: dbglog.NewSinkBase(name, mask, false), log: log}
}

// NewSharedZerolog creates a bridge that follows the dbglog logger's mask.
func NewSharedZerolog(name string, log zerolog.Logger) *Zerolog {
	return &Zerolog{SinkBase: dbglog.NewSinkBase(name, dbglog.MASK_NONE, true), log: log}
}

func ZerologLevel(level dbglog.Level) zerolog.Level {
	switch {
	case level&dbglog.LVL_FATAL != 0:
		return zerolog.FatalLevel
	case level&dbglog.LVL_ERR1 != 0:
		return zerolog.ErrorLevel
	case level&dbglog.LVL_WARN1 != 0:
		return zerolog.WarnLevel
	case level&dbglog.LVL_INFO1 != 0:
		return zerolog.InfoLevel
	}
	return zerolog.DebugLevel
}

// HostTimestamp leaves the time field to the host logger's own timestamp
// hook. Set it during setup, before logging starts.
func (s *Zerolog) HostTimestamp(value bool) *Zerolog {
	s.hostTime = value
	return s
}

func (s *Zerolog) Write(line string) {
	s.log.Info().Msg(strings.TrimRight(line, "\n"))
}

func (s *Zerolog) WriteEntry(e *dbglog.Entry) {
	// WithLevel never exits, even for FatalLevel
	ev := s.log.WithLevel(ZerologLevel(e.Level))
	if !s.hostTime {
		ev = ev.Time(zerolog.TimestampFieldName, e.Time)
	}
	ev = ev.Str(FIELD_LEVEL, e.Level.Code()).
		Str(FIELD_LOCATION, e.Location.String())
	if e.Pid != 0 {
		ev = ev.Int(FIELD_PID, e.Pid)
	}
	if e.Thread != "" {
		ev = ev.Str(FIELD_THREAD, e.Thread)
	}
	if e.Prefix != "" {
		ev = ev.Str(FIELD_MODULE, moduleName(e.Prefix))
	}
	ev.Msg(e.Message)
}
