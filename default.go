package dbglog

/*
The default instance. Programs that want one process-wide logger install it
once with Init and tear it down at exit; the package level helpers below log
through it and silently do nothing while no instance is installed.

	func main() {
	    if err := dbglog.Init(dbglog.DEFAULT_LOG_MASK); err != nil { ... }
	    defer dbglog.Teardown()
	    dbglog.Logf(dbglog.LVL_INFO3, "started, pid %d", os.Getpid())
	}
*/

import (
	"fmt"
	"sync/atomic"

	"github.com/pkg/errors"
)

var (
	ErrNoDefault    = errors.New(_ERROR_MESSAGE_NO_DEFAULT)
	ErrDefaultInUse = errors.New(_ERROR_MESSAGE_DEFAULT_INUSE)
)

var defaultLogger atomic.Pointer[Logger]

// Init creates the default logger with the given mask.
func Init(mask Mask) error {
	l, err := New(mask)
	if err != nil {
		return err
	}
	if !defaultLogger.CompareAndSwap(nil, l) {
		l.Close()
		return ErrDefaultInUse
	}
	return nil
}

// Install makes an existing logger the default one.
func Install(l *Logger) error {
	if !defaultLogger.CompareAndSwap(nil, l) {
		return ErrDefaultInUse
	}
	return nil
}

// Default returns the default logger, nil if none is installed.
func Default() *Logger {
	return defaultLogger.Load()
}

// Teardown uninstalls and closes the default logger.
func Teardown() error {
	l := defaultLogger.Swap(nil)
	if l == nil {
		return ErrNoDefault
	}
	return l.Close()
}

/////////////////////////////////////////////////////////////////////////////////////////
// Package helpers (no-op without a default logger)

func SetMask(m Mask) {
	if l := Default(); l != nil {
		l.SetMask(m)
	}
}

func SetMaskString(text string) error {
	l := Default()
	if l == nil {
		return ErrNoDefault
	}
	return l.SetMaskString(text)
}

func Check(level Level) bool {
	l := Default()
	return l != nil && l.Check(level)
}

func CheckOnce(level Level, guard *OnceGuard) bool {
	l := Default()
	return l != nil && l.CheckOnce(level, guard)
}

func Log(level Level, message string, loc Location) bool {
	l := Default()
	return l != nil && l.Log(level, message, loc)
}

func LogOnce(guard *OnceGuard, level Level, message string, loc Location) bool {
	l := Default()
	return l != nil && l.LogOnce(guard, level, message, loc)
}

func Logf(level Level, format string, args ...any) bool {
	l := Default()
	return l != nil && l.logf(1, level, "", format, args...)
}

// Fail logs through the default logger (if any) and always returns the error.
func Fail(level Level, format string, args ...any) error {
	if l := Default(); l != nil {
		return l.fail(1, level, "", format, args...)
	}
	return errors.New(fmt.Sprintf(format, args...) + " @" + Here(1).String())
}
