package dbglog

import (
	"strconv"
	"sync"

	"github.com/petermattis/goid"
)

// Thread identity: every goroutine that logs is identified by the runtime's
// goroutine id, a process-wide counter that never repeats and stays stable
// for the goroutine's lifetime. It is derived on every call, nothing is kept
// per goroutine, so goroutine-per-request servers do not grow any state.
//
// Only explicit labels set with SetThreadID are stored, keyed by goroutine
// id. A labeled goroutine should call ForgetThreadID before it exits.

var threadLabels sync.Map // goroutine id (int64) -> string

// ThreadID returns the calling goroutine's label if one was set, its
// goroutine id otherwise.
func ThreadID() string {
	gid := goid.Get()
	if v, ok := threadLabels.Load(gid); ok {
		return v.(string)
	}
	return strconv.FormatInt(gid, 10)
}

// SetThreadID labels the calling goroutine, e.g. a worker ("db", "http-3").
// Later ThreadID calls on this goroutine return id.
func SetThreadID(id string) {
	threadLabels.Store(goid.Get(), id)
}

// ForgetThreadID drops the calling goroutine's label.
func ForgetThreadID() {
	threadLabels.Delete(goid.Get())
}
