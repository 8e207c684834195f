package dbglog

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var lineRe = regexp.MustCompile(`^(\d{4}-\d\d-\d\d \d\d:\d\d:\d\d)(\.\d+)? (\S\S)( \[[^\]]*\])?: (.*) (\{[^{}]*\})\n$`)

// parseLine splits a formatted line into time, fraction, code, pid/thread,
// prefixed message and location.
func parseLine(t *testing.T, line string) []string {
	t.Helper()
	m := lineRe.FindStringSubmatch(line)
	require.NotNil(t, m, "line does not match layout: %q", line)
	return m[1:]
}

func Test_appendTime(t *testing.T) {
	ts := time.Date(2024, 3, 5, 7, 8, 9, 123456789, time.Local)
	tests := []struct {
		digits int
		want   string
	}{
		{0, "2024-03-05 07:08:09"},
		{1, "2024-03-05 07:08:09.1"},
		{3, "2024-03-05 07:08:09.123"},
		{6, "2024-03-05 07:08:09.123456"},
		{9, "2024-03-05 07:08:09.123456"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, string(appendTime(nil, ts, tt.digits)), tt.digits)
	}
	early := time.Date(2024, 3, 5, 7, 8, 9, 999, time.Local)
	assert.Equal(t, "2024-03-05 07:08:09.000000", string(appendTime(nil, early, 6)), "leading zeros")
	almost := time.Date(2024, 3, 5, 7, 8, 9, 999999999, time.Local)
	assert.Equal(t, "2024-03-05 07:08:09.99", string(appendTime(nil, almost, 2)), "truncated, not rounded")
}

func Test_appendLine(t *testing.T) {
	l, _, _ := newTestLogger(t, MASK_ALL)
	ts := time.Date(2024, 1, 2, 3, 4, 5, 600000000, time.Local)
	tests := []struct {
		name  string
		entry Entry
		want  string
	}{
		{"bare", Entry{Time: ts, Level: LVL_INFO3, Message: "hello", Location: testLoc},
			"2024-01-02 03:04:05 I3: hello {main.go:run():42}\n"},
		{"pid_thread", Entry{Time: ts, Level: LVL_ERR1, Pid: 321, Thread: "7", Message: "x", Location: testLoc},
			"2024-01-02 03:04:05 E1 [321(7)]: x {main.go:run():42}\n"},
		{"pid_only", Entry{Time: ts, Level: LVL_WARN4, Pid: 321, Message: "x", Location: testLoc},
			"2024-01-02 03:04:05 W4 [321]: x {main.go:run():42}\n"},
		{"thread_only", Entry{Time: ts, Level: LVL_DEBUG, Thread: "db", Message: "x", Location: testLoc},
			"2024-01-02 03:04:05 DD [(db)]: x {main.go:run():42}\n"},
		{"prefix", Entry{Time: ts, Level: LVL_FATAL, Prefix: "[net/tcp]", Message: "down", Location: testLoc},
			"2024-01-02 03:04:05 FF: [net/tcp] down {main.go:run():42}\n"},
		{"unknown_level", Entry{Time: ts, Level: Level(0x12345), Message: "", Location: testLoc},
			"2024-01-02 03:04:05 ??:  {main.go:run():42}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(l.appendLine(nil, &tt.entry)))
		})
	}
	l.SetTimePrecision(3)
	assert.Equal(t, "2024-01-02 03:04:05.600 I3: hello {main.go:run():42}\n",
		string(l.appendLine(nil, &tests[0].entry)))
}

func Test_Logger_Log(t *testing.T) {
	l, out, ferr := newTestLogger(t, MASK_DEFAULT)
	l.ShowPid(true).ShowThread(true)

	assert.True(t, l.Log(LVL_WARN2, testlogstr, testLoc))
	assert.False(t, l.Log(LVL_INFO1, "masked", testLoc))
	assert.False(t, l.Log(LVL_DEBUG, "masked", testLoc))
	assert.True(t, l.Log(LVL_FATAL, "always", testLoc))
	assert.Empty(t, ferr.buffer)

	lines := out.Lines()
	require.Len(t, lines, 2)
	f := parseLine(t, lines[0]+"\n")
	assert.Empty(t, f[1], "fraction with precision 0")
	assert.Equal(t, "W2", f[2])
	assert.Equal(t, " ["+strconv.Itoa(os.Getpid())+"("+ThreadID()+")]", f[3])
	assert.Equal(t, testlogstr, f[4])
	assert.Equal(t, "{main.go:run():42}", f[5])
	assert.Equal(t, "FF", parseLine(t, lines[1]+"\n")[2])
}

func Test_Logger_TierNesting(t *testing.T) {
	levels := map[byte][]Level{
		'I': {LVL_INFO1, LVL_INFO2, LVL_INFO3, LVL_INFO4},
		'W': {LVL_WARN1, LVL_WARN2, LVL_WARN3, LVL_WARN4},
		'E': {LVL_ERR1, LVL_ERR2, LVL_ERR3, LVL_ERR4},
	}
	for letter, tiers := range levels {
		for tok := range 4 {
			token := string(letter) + strconv.Itoa(tok+1)
			l, _, _ := newTestLogger(t, MustParseMask(token))
			for i, lvl := range tiers {
				assert.Equal(t, i >= tok, l.Check(lvl), "mask %s level %s", token, lvl)
			}
		}
	}
}

func Test_Logger_Logf(t *testing.T) {
	l, out, _ := newTestLogger(t, MASK_ALL)
	line := Here(0).Line + 1
	assert.True(t, l.Logf(LVL_INFO2, "n=%d s=%s", 5, "x"))
	f := parseLine(t, out.String())
	assert.Equal(t, "n=5 s=x", f[4])
	assert.Equal(t, fmt.Sprintf("{proceed_test.go:Test_Logger_Logf():%d}", line), f[5])

	out.Clear()
	l.SetMask(MASK_NONE)
	called := false
	arg := stringerFunc(func() string { called = true; return "" })
	assert.False(t, l.Logf(LVL_INFO1, "%v", arg))
	assert.False(t, called, "formatting done for a rejected level")
	assert.Empty(t, out.buffer)
}

type stringerFunc func() string

func (f stringerFunc) String() string { return f() }

func Test_Logger_Shortcuts(t *testing.T) {
	l, out, _ := newTestLogger(t, MASK_ALL)
	l.Debug("d")
	l.Info("i")
	l.Warn("w")
	l.Error("e")
	var codes []string
	for _, line := range out.Lines() {
		f := parseLine(t, line+"\n")
		codes = append(codes, f[2])
		assert.Contains(t, f[5], "{proceed_test.go:Test_Logger_Shortcuts():")
	}
	assert.Equal(t, []string{"DD", "I3", "W2", "E2"}, codes)

	out.Clear()
	l.SetMask(DEFAULT_LOG_MASK)
	assert.False(t, l.Debug("d"))
	assert.True(t, l.Info("i"), "Info must pass the default mask")
	assert.True(t, l.Warn("w"))
	assert.True(t, l.Error("e"))
}

func Test_Logger_Fail(t *testing.T) {
	l, out, _ := newTestLogger(t, MASK_ALL)
	err := l.Fail(LVL_ERR1, "cannot open %s", "db")
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "cannot open db @{proceed_test.go:Test_Logger_Fail():"), err.Error())
	assert.Contains(t, out.String(), " E1: cannot open db {proceed_test.go:Test_Logger_Fail():")

	out.Clear()
	l.SetMask(MASK_NONE)
	assert.Error(t, l.Fail(LVL_ERR1, "masked"), "error must be returned for rejected levels")
	assert.Empty(t, out.buffer)
}

func Test_Logger_Once(t *testing.T) {
	l, out, _ := newTestLogger(t, MASK_ALL)
	var guard OnceGuard
	logged := 0
	for range 3 {
		if l.LogOnce(&guard, LVL_WARN1, "once", testLoc) {
			logged++
		}
	}
	assert.Equal(t, 1, logged)
	assert.Len(t, out.Lines(), 1)

	var g2 OnceGuard
	assert.True(t, l.CheckOnce(LVL_INFO1, &g2))
	assert.False(t, l.CheckOnce(LVL_INFO1, &g2))

	// a rejected first attempt burns the guard
	var g3 OnceGuard
	l.SetMask(MASK_NONE)
	assert.False(t, l.CheckOnce(LVL_INFO1, &g3))
	l.SetMask(MASK_ALL)
	assert.False(t, l.CheckOnce(LVL_INFO1, &g3))
	assert.True(t, g3.Fired())
}

func Test_Logger_Console(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		l, out, _ := newTestLogger(t, MASK_ALL)
		l.UseConsole(false)
		assert.True(t, l.Log(LVL_INFO1, "nowhere", testLoc))
		assert.Empty(t, out.buffer)
	})
	t.Run("color", func(t *testing.T) {
		l, out, _ := newTestLogger(t, MASK_ALL)
		l.SetConsoleColor(COLOR_ALWAYS)
		l.Log(LVL_WARN3, "colored", testLoc)
		s := out.String()
		assert.True(t, strings.HasPrefix(s, ANSI_COL_PRFX+LevelColorOnBlackMap[_CAT_WARN]+ANSI_COL_SUFX), s)
		assert.True(t, strings.HasSuffix(s, "{main.go:run():42}"+ANSI_COL_RESET+"\n"), s)
	})
	t.Run("auto_not_a_terminal", func(t *testing.T) {
		l, out, _ := newTestLogger(t, MASK_ALL)
		l.SetConsoleColor(COLOR_AUTO)
		assert.Equal(t, uint32(COLOR_NEVER), l.color.Load())
		l.Log(LVL_WARN3, "plain", testLoc)
		assert.NotContains(t, out.String(), ANSI_COL_PRFX)
	})
	t.Run("error", func(t *testing.T) {
		l, _, ferr := newTestLogger(t, MASK_ALL)
		l.SetConsole(&ErrorWriter{})
		assert.True(t, l.Log(LVL_INFO1, "lost", testLoc))
		assert.Contains(t, ferr.String(), errorStr)
	})
}

func Test_Logger_Sinks(t *testing.T) {
	l, out, ferr := newTestLogger(t, MASK_NONE)
	all, warn := &FakeWriter{}, &FakeWriter{}
	var entries []Entry
	l.AddSink(NewWriterSink("all", MASK_ALL, all)).
		AddSink(NewWriterSink("warn", MustParseMask("W2"), warn)).
		AddSink(&entrySink{SinkBase: NewSinkBase("entries", MASK_ALL, false), entries: &entries})

	assert.True(t, l.Check(LVL_DEBUG), "a sink accepting the level makes Check pass")
	assert.True(t, l.Module("m").Log(LVL_WARN2, "to sinks", testLoc))
	assert.True(t, l.Log(LVL_DEBUG, "debug", testLoc))

	assert.Empty(t, out.buffer, "primary mask is NONE")
	assert.Len(t, all.Lines(), 2)
	assert.Equal(t, all.Lines()[0]+"\n", warn.String())
	require.Len(t, entries, 2)
	assert.Equal(t, "[m]", entries[0].Prefix)
	assert.Equal(t, "to sinks", entries[0].Message)
	assert.Equal(t, LVL_WARN2, entries[0].Level)
	assert.Equal(t, all.Lines()[0]+"\n", entries[0].Line)
	assert.Empty(t, ferr.buffer)

	l.SetMask(MASK_ALL)
	for _, s := range l.Sinks() {
		s.SetMask(MASK_NONE)
	}
	assert.True(t, l.Log(LVL_INFO1, "console only", testLoc))
	assert.Len(t, all.Lines(), 2)
	assert.Contains(t, out.String(), "console only")
}

type entrySink struct {
	SinkBase
	entries *[]Entry
}

func (s *entrySink) Write(line string) { panic("WriteEntry must be preferred") }

func (s *entrySink) WriteEntry(e *Entry) { *s.entries = append(*s.entries, *e) }

func Test_Logger_SinkFailures(t *testing.T) {
	panickers := []struct {
		name string
		w    io.Writer
		msg  string
	}{
		{"string", &PanicWriter{}, "`" + panicStr + "`"},
		{"nil", &NilPanicWriter{}, "(error) `"},
		{"zero", &ZeroPanicWriter{}, _ERROR_UNKNOWN_PANIC_TEXT},
	}
	for _, tt := range panickers {
		t.Run(tt.name, func(t *testing.T) {
			l, out, ferr := newTestLogger(t, MASK_ALL)
			good := &FakeWriter{}
			l.AddSink(NewWriterSink("bad", MASK_ALL, tt.w)).AddSink(NewWriterSink("good", MASK_ALL, good))
			assert.NotPanics(t, func() {
				l.Log(LVL_ERR1, "first", testLoc)
				l.Log(LVL_ERR1, "second", testLoc)
			})
			assert.Equal(t, 1, strings.Count(ferr.String(), _ERROR_MESSAGE_SINK_PANIC+" <bad>"), "sink not disabled after panic")
			assert.Contains(t, ferr.String(), tt.msg)
			assert.Len(t, good.Lines(), 2)
			assert.Len(t, out.Lines(), 2)
		})
	}
	t.Run("error_writer", func(t *testing.T) {
		l, _, ferr := newTestLogger(t, MASK_ALL)
		l.AddSink(NewWriterSink("err", MASK_ALL, &ErrorWriter{}))
		assert.NotPanics(t, func() { l.Log(LVL_ERR1, "x", testLoc) })
		assert.Empty(t, ferr.buffer, "writer sinks drop write errors")
	})
	t.Run("func_sink", func(t *testing.T) {
		l, _, _ := newTestLogger(t, MASK_NONE)
		var got []string
		l.AddSink(NewFuncSink("fn", MASK_ALL, func(line string) { got = append(got, line) }))
		l.Log(LVL_INFO4, "via func", testLoc)
		require.Len(t, got, 1)
		assert.Contains(t, got[0], " I4: via func ")
	})
}
