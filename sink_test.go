package dbglog

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_SinkBase(t *testing.T) {
	b := NewSinkBase("base", MASK_DEFAULT, false)
	assert.Equal(t, "base", b.Name())
	assert.False(t, b.SharedMask())
	assert.True(t, b.Accepts(LVL_INFO3))
	assert.False(t, b.Accepts(LVL_INFO1))
	assert.True(t, b.Accepts(LVL_FATAL), "fatal passes any sink mask")
	b.SetMask(MASK_NONE)
	assert.Equal(t, MASK_NONE, b.Mask())
	assert.False(t, b.Accepts(LVL_ERR4))
}

func Test_WriterSink(t *testing.T) {
	out := &FakeWriter{}
	s := NewWriterSink("w", MASK_ALL, out)
	var _ Sink = s
	s.Write("one\n")
	s.Write("two\n")
	assert.Equal(t, []string{"one", "two"}, out.Lines())

	shared := NewSharedWriterSink("s", out)
	assert.True(t, shared.SharedMask())
	assert.Equal(t, MASK_NONE, shared.Mask())
}

func Test_FuncSink(t *testing.T) {
	var mtx sync.Mutex
	var got []string
	s := NewFuncSink("f", Mask(LVL_WARN1), func(line string) {
		mtx.Lock()
		defer mtx.Unlock()
		got = append(got, line)
	})
	l, _, _ := newTestLogger(t, MASK_NONE)
	l.AddSink(s)
	assert.True(t, l.Check(LVL_WARN2))
	assert.True(t, l.Log(LVL_WARN2, "to func", testLoc))
	assert.False(t, l.Log(LVL_INFO1, "dropped", testLoc))
	if assert.Len(t, got, 1) {
		assert.Contains(t, got[0], " W2: to func {main.go:run():42}\n")
	}
}
