package dbglog

/*
Sinks are additional destinations with their own acceptance mask. The logger
formats an event once and hands the same line to every sink whose mask
accepts the level, independently of the logger's own mask.

A sink flagged "shared mask" follows the logger: every Logger.SetMask
overwrites its mask. Other sinks keep their own configuration.

Write is called concurrently from every logging goroutine; implementations
must serialize their own output (SinkBase does not do it for them).
*/

import (
	"io"
	"sync"
	"sync/atomic"
)

// Sink is a log destination with its own mask.
type Sink interface {
	Name() string
	Accepts(level Level) bool
	Write(line string)
	Mask() Mask
	SetMask(m Mask)
	SharedMask() bool
}

// EntrySink is implemented by sinks that want the decomposed event instead
// of (not in addition to) the formatted line.
type EntrySink interface {
	Sink
	WriteEntry(e *Entry)
}

// SinkBase implements everything of Sink except Write. Embed it by value and
// construct it with NewSinkBase.
type SinkBase struct {
	name   string
	mask   uint32 // accessed atomically
	shared bool
}

// NewSinkBase returns a base with the given name and mask. A shared base
// takes the logger's mask when added and follows every later change.
func NewSinkBase(name string, mask Mask, shared bool) SinkBase {
	return SinkBase{name: name, mask: uint32(mask), shared: shared}
}

func (b *SinkBase) Name() string { return b.name }

func (b *SinkBase) Mask() Mask { return Mask(atomic.LoadUint32(&b.mask)) }

func (b *SinkBase) SetMask(m Mask) { atomic.StoreUint32(&b.mask, uint32(m)) }

func (b *SinkBase) SharedMask() bool { return b.shared }

func (b *SinkBase) Accepts(level Level) bool {
	return b.Mask().Accepts(level)
}

/////////////////////////////////////////////////////////////////////////////////////////

// WriterSink writes lines to an io.Writer, one Write call per line.
type WriterSink struct {
	SinkBase
	mtx sync.Mutex
	out io.Writer
}

// NewWriterSink creates a sink writing to out.
func NewWriterSink(name string, mask Mask, out io.Writer) *WriterSink {
	return &WriterSink{SinkBase: NewSinkBase(name, mask, false), out: out}
}

// NewSharedWriterSink creates a writer sink that follows the logger's mask.
func NewSharedWriterSink(name string, out io.Writer) *WriterSink {
	return &WriterSink{SinkBase: NewSinkBase(name, MASK_NONE, true), out: out}
}

func (s *WriterSink) Write(line string) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	io.WriteString(s.out, line)
}

// FuncSink calls a function for every accepted line. The function must be
// safe for concurrent use.
type FuncSink struct {
	SinkBase
	fn func(line string)
}

// NewFuncSink creates a sink calling fn.
func NewFuncSink(name string, mask Mask, fn func(line string)) *FuncSink {
	return &FuncSink{SinkBase: NewSinkBase(name, mask, false), fn: fn}
}

func (s *FuncSink) Write(line string) {
	s.fn(line)
}
