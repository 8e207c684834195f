package dbglog

/*********************************************************************************
io.Writer interface implementation

A Module implements io.Writer so it can be handed to code that only knows how
to write bytes (fmt.Fprintf, log.New, exec.Cmd.Stderr, ...). The semantics are:
 - Lvl(level) returns a copy of the module bound to level.
 - Write(p) logs p at that level, one line per call, and returns len(p).

This allows patterns like:
  fmt.Fprintf(module.Lvl(LVL_WARN2), "disk low: %d%%", percent)
*/

import (
	"bytes"
)

// Lvl returns a copy of the module whose Write logs at level. The receiver is
// not modified, so concurrent users can each bind their own level.
func (m *Module) Lvl(level Level) *Module {
	c := *m
	c.curLevel = level
	return &c
}

// Write implements io.Writer. It logs p (without trailing line breaks) at the
// module's current level. The recorded location is the direct caller of
// Write (fmt.Fprintf for formatted writes). Rejected levels are not an error.
func (m *Module) Write(p []byte) (n int, err error) {
	if len(p) == 0 || !m.logger.Check(m.curLevel) {
		return len(p), nil
	}
	m.logger.emit(m.curLevel, m.prefix, string(bytes.TrimRight(p, "\r\n")), Here(1))
	return len(p), nil
}
