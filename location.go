package dbglog

import (
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

// Here returns the location of its caller. skip works as in runtime.Caller:
// 0 is the function calling Here.
func Here(skip int) Location {
	pc, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return Location{File: "???", Func: "???"}
	}
	loc := Location{File: filepath.Base(file), Line: line}
	if fn := runtime.FuncForPC(pc); fn != nil {
		loc.Func = shortFuncName(fn.Name())
	}
	return loc
}

// shortFuncName strips the import path: "github.com/a/b.(*T).M" -> "(*T).M".
func shortFuncName(name string) string {
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.IndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// String renders the location as it appears in log lines: "{file:func():line}".
func (loc Location) String() string {
	return string(loc.appendTo(nil))
}

func (loc Location) appendTo(b []byte) []byte {
	b = append(b, '{')
	b = append(b, loc.File...)
	b = append(b, ':')
	b = append(b, loc.Func...)
	b = append(b, "():"...)
	b = strconv.AppendInt(b, int64(loc.Line), 10)
	return append(b, '}')
}
