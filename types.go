package dbglog

/*
Defines the core data types used by the logger:
  - Level and Mask: severity values and the bitset selecting accepted levels
  - Location: the call site attached to every log line
  - Entry: one decomposed event handed to entry-aware sinks
  - Logger: the aggregation root (mask, display options, LogFile, sinks)
  - Module: a named view of a Logger that prefixes its lines

Level values are nibble-per-category bit patterns; see common.go for the
constants and mask.go for filtering and the textual mask grammar.
*/

import (
	"io"
	"sync"
	"sync/atomic"
	"time"
)

// Level is a severity value. Each level is a bit pattern inside the nibble of
// its category (debug, info, warn, err, fatal); finer tiers use fewer bits.
type Level uint32

// Mask is a set of level bits. A level passes a mask iff all of its bits are
// set in the mask (or the level is fatal).
type Mask uint32

// ColorMode selects whether console lines are ANSI colored.
type ColorMode uint8

// Location is the call site of a log statement.
type Location struct {
	File string
	Func string
	Line int
}

// Entry is one accepted event, decomposed. It is handed to sinks that
// implement EntrySink; the formatted line is in Line.
type Entry struct {
	Time     time.Time
	Level    Level
	Pid      int    // 0 if pid display is off
	Thread   string // empty if thread display is off
	Prefix   string // rendered module prefix ("[name]"), empty for the root logger
	Message  string
	Location Location
	Line     string // fully formatted line including the trailing '\n'
}

// Logger is the central state holder. It owns one LogFile and an ordered
// list of sinks and formats every accepted event exactly once.
//
// Mask and display options can be changed at any time; sink registration is a
// setup-only operation and must happen before goroutines start logging.
type Logger struct {
	sync struct {
		consMtx sync.Mutex   // serializes console writes (no torn lines)
		fbckMtx sync.RWMutex // guards access to fallback writer
	}
	mask      atomic.Uint32 // primary mask
	precision atomic.Uint32 // sub-second digits (0..6)
	flags     atomic.Uint32 // display toggles (_SHOW_* bits)
	color     atomic.Uint32 // ColorMode resolved for the current console
	colorMode ColorMode     // requested mode, guarded by consMtx
	console   io.Writer     // console stream (os.Stderr by default)
	fallbck   io.Writer     // side channel for internal errors
	file      *LogFile
	sinks     []*sinkSlot
}

// sinkSlot pairs a sink with its disabled flag (set after the sink panicked).
type sinkSlot struct {
	sink     Sink
	disabled atomic.Bool
}

// Module is a named producer of log lines. Modules share the logger's
// configuration and destinations and only add a "[name]" prefix.
//
// Modules are lightweight and intended to be created by Logger.Module().
type Module struct {
	logger   *Logger
	name     string // full name ("parent/child")
	prefix   string // rendered "[parent/child]"
	curLevel Level  // current level used by Write / fmt.Fprintf helpers
}
