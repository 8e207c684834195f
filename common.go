package dbglog

/*
Package-wide constants, enums and helper utilities used by the logger:
  - level bit patterns and predefined masks
  - default values
  - ANSI/color related constants and the per-level color map
  - error kinds and error message texts
  - small helpers shared by the write path
*/

import (
	"os"

	"github.com/pkg/errors"
)

const (
	// Level bit patterns. Tiers of one category overlap: a coarser tier is a
	// superset of every finer one (info2 ⊇ info3 ⊇ info4).
	LVL_NONE Level = 0x00000
	LVL_ALL  Level = 0xfffff

	LVL_DEBUG Level = 0x0000f

	LVL_INFO1 Level = 0x000f0
	LVL_INFO2 Level = 0x00070
	LVL_INFO3 Level = 0x00030
	LVL_INFO4 Level = 0x00010

	LVL_WARN1 Level = 0x00f00
	LVL_WARN2 Level = 0x00700
	LVL_WARN3 Level = 0x00300
	LVL_WARN4 Level = 0x00100

	LVL_ERR1 Level = 0x0f000
	LVL_ERR2 Level = 0x07000
	LVL_ERR3 Level = 0x03000
	LVL_ERR4 Level = 0x01000

	LVL_FATAL Level = 0xf0000
)

const (
	// Predefined masks.
	MASK_NONE    Mask = Mask(LVL_NONE)
	MASK_ALL     Mask = Mask(LVL_ALL)
	MASK_DEFAULT Mask = Mask(LVL_INFO3 | LVL_WARN2 | LVL_ERR2)
	MASK_VERBOSE Mask = Mask(LVL_INFO2 | LVL_WARN2 | LVL_ERR2)
)

const (
	// Default values for short init forms
	DEFAULT_LOG_MASK       = MASK_DEFAULT | Mask(LVL_FATAL)
	DEFAULT_TIME_PRECISION = 0
	DEFAULT_FILE_MODE      = os.FileMode(0o600) // owner read/write only
	MAX_TIME_PRECISION     = 6                  // microseconds

	TIME_LAYOUT = "2006-01-02 15:04:05"
)

const (
	// Console color modes.
	COLOR_NEVER ColorMode = iota
	COLOR_ALWAYS
	COLOR_AUTO // color only when the console is a terminal
)

const (
	// ANSI colored text fragments prefix/suffix used when colors are requested.
	// For a colored piece of text the sequence will be:
	// ANSI_COL_PRFX + colorSpec + ANSI_COL_SUFX + text + ANSI_COL_RESET
	ANSI_COL_PRFX  = "\033["
	ANSI_COL_SUFX  = "m"
	ANSI_COL_RESET = ANSI_COL_PRFX + "0" + ANSI_COL_SUFX
)

const (
	// Display toggles stored in Logger.flags.
	_SHOW_PID uint32 = 1 << iota
	_SHOW_THREAD
	_USE_CONSOLE
)

const (
	// Category nibbles, in the fixed order used by Mask.String().
	_CAT_DEBUG Mask = 0x0000f
	_CAT_INFO  Mask = 0x000f0
	_CAT_WARN  Mask = 0x00f00
	_CAT_ERR   Mask = 0x0f000
	_CAT_FATAL Mask = 0xf0000
)

const (
	// Error messages used across logger operations (used for testing).
	_ERROR_MESSAGE_BAD_MASK      = "not a mask definition"
	_ERROR_MESSAGE_BAD_LEVEL     = "not a level definition"
	_ERROR_MESSAGE_FILE_OPEN     = "error opening log file"
	_ERROR_MESSAGE_DUP           = "error duplicating fd"
	_ERROR_MESSAGE_NO_FILE       = "no active log file"
	_ERROR_MESSAGE_NOT_TIED      = "fd is not tied"
	_ERROR_MESSAGE_UNSUPPORTED   = "operation is not supported on this platform"
	_ERROR_MESSAGE_FILE_IO       = "log file i/o error"
	_ERROR_MESSAGE_FILE_WRITE    = "error writing to log file"
	_ERROR_MESSAGE_FILE_RETIE    = "error re-tying fd"
	_ERROR_MESSAGE_SINK_PANIC    = "panic writing log to sink"
	_ERROR_MESSAGE_FILE_CLOSED   = "log file is closed"
	_ERROR_UNKNOWN_PANIC_TEXT    = "[no panic description]"
	_ERROR_MESSAGE_NO_DEFAULT    = "default logger is not initialized"
	_ERROR_MESSAGE_DEFAULT_INUSE = "default logger is already initialized"
)

// Error kinds. Every error returned by this package matches exactly one of
// them via errors.Is.
var (
	ErrInvalidMaskSyntax  = errors.New(_ERROR_MESSAGE_BAD_MASK)
	ErrInvalidLevelSyntax = errors.New(_ERROR_MESSAGE_BAD_LEVEL)
	ErrFileOpen           = errors.New(_ERROR_MESSAGE_FILE_OPEN)
	ErrDescriptorSwap     = errors.New(_ERROR_MESSAGE_DUP)
	ErrFileIO             = errors.New(_ERROR_MESSAGE_FILE_IO)
	ErrNoActiveFile       = errors.New(_ERROR_MESSAGE_NO_FILE)
	ErrNotTied            = errors.New(_ERROR_MESSAGE_NOT_TIED)
	ErrUnsupported        = errors.New(_ERROR_MESSAGE_UNSUPPORTED)
	ErrClosed             = errors.New(_ERROR_MESSAGE_FILE_CLOSED)
)

/////////////////////////////////////////////////////////////////////////////////////////

// levelCodes maps every named level to its 2-letter code.
var levelCodes = map[Level]string{
	LVL_DEBUG: "DD",
	LVL_INFO1: "I1", LVL_INFO2: "I2", LVL_INFO3: "I3", LVL_INFO4: "I4",
	LVL_WARN1: "W1", LVL_WARN2: "W2", LVL_WARN3: "W3", LVL_WARN4: "W4",
	LVL_ERR1: "E1", LVL_ERR2: "E2", LVL_ERR3: "E3", LVL_ERR4: "E4",
	LVL_FATAL: "FF",
}

// Predefined color map for ANSI terminal, indexed by category.
var LevelColorOnBlackMap = map[Mask]string{
	_CAT_DEBUG: "0;90",
	_CAT_INFO:  "0;97",
	_CAT_WARN:  "0;33",
	_CAT_ERR:   "0;91",
	_CAT_FATAL: "101;1;33",
}

// Converts a panic value into a compact readable string (used when
// translating panics into fallback messages)
func panicDesc(panic any) (errtext string) {
	switch v := panic.(type) {
	case string:
		errtext = ": `" + v + "`"
	case error:
		errtext = ": (error) `" + v.Error() + "`"
	default:
		errtext = " " + _ERROR_UNKNOWN_PANIC_TEXT
	}
	return errtext
}

// clampPrecision limits sub-second digits to what the clock provides.
func clampPrecision(p uint) uint32 {
	if p > MAX_TIME_PRECISION {
		return MAX_TIME_PRECISION
	}
	return uint32(p)
}
