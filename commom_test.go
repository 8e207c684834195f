package dbglog

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Parallel_Multithreading(t *testing.T) {
	const (
		_MAXDATALEN_ = 300 // Max len of message to be logged
		_DATACOUNT_  = 500 // Number of messages every goroutine/module has to log
		_GOROUTINES_ = 40  // Number of simultaneous goroutines/modules logging
	)
	type jobType struct {
		mod  *Module
		task [_DATACOUNT_]int
		curr int
	}
	var data [_DATACOUNT_]string
	var workers [_GOROUTINES_]jobType
	var wg sync.WaitGroup
	hold := make(chan int)

	//Rand := rand.New(rand.NewSource(0)) // repeatable results
	Rand := rand.New(rand.NewSource(time.Now().UnixNano())) // stochastic

	// Random printable data without line breaks or braces
	for i := range _DATACOUNT_ {
		b := make([]byte, Rand.Intn(_MAXDATALEN_)+1)
		for j := range b {
			b[j] = byte(Rand.Intn('z'-' '+1)) + ' '
		}
		data[i] = string(b)
	}

	ferr := &FakeWriter{}
	out := &FakeWriter{}
	sinkOut := &FakeWriter{}
	l, err := New(MASK_ALL)
	require.NoError(t, err)
	defer l.Close()
	l.SetConsole(out).SetFallback(ferr).SetTimePrecision(6)
	l.AddSink(NewWriterSink("copy", MASK_ALL, sinkOut))
	path := filepath.Join(t.TempDir(), "parallel.log")
	require.NoError(t, l.LogToFile(path))

	for i := range _GOROUTINES_ {
		workers[i].mod = l.Module(strconv.Itoa(i))
		for j, s := range Rand.Perm(_DATACOUNT_) { // task #j is to log string #s
			workers[i].task[j] = s
		}
	}

	goWorker := func(n int) {
		defer wg.Done()
		defer ForgetThreadID()
		for range hold { // wait until channel is closed (to start all together)
		}
		for i := range _DATACOUNT_ {
			workers[n].mod.Log(LVL_FATAL, data[workers[n].task[i]], testLoc)
		}
	}
	for i := range _GOROUTINES_ {
		wg.Add(1)
		go goWorker(i)
	}
	close(hold)
	wg.Wait()

	fileData, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, ferr.buffer, "unexpected fallback errors writes")

	// Every destination got whole lines in per-module order
	for name, output := range map[string]string{"console": out.String(), "file": string(fileData), "sink": sinkOut.String()} {
		for i := range workers {
			workers[i].curr = 0
		}
		lines := strings.SplitAfter(output, "\n")
		require.Equal(t, "", lines[len(lines)-1], name)
		lines = lines[:len(lines)-1]
		require.Len(t, lines, _DATACOUNT_*_GOROUTINES_, name)
		for pos, line := range lines {
			f := lineRe.FindStringSubmatch(line)
			require.NotNil(t, f, "%s line %d torn: %q", name, pos, line)
			assert.Equal(t, "FF", f[3])
			prefix, msg, ok := strings.Cut(f[5], " ")
			require.True(t, ok, "%s line %d", name, pos)
			id, err := strconv.Atoi(strings.Trim(prefix, "[]"))
			require.NoError(t, err, "%s line %d", name, pos)
			worker := &workers[id]
			require.Less(t, worker.curr, _DATACOUNT_, fmt.Sprintf("%s: module %d logged too much", name, id))
			require.Equal(t, data[worker.task[worker.curr]], msg, "%s line %d: module %d task %d", name, pos, id, worker.curr)
			worker.curr++
		}
	}
}
