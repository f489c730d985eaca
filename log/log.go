// Copyright 2024 The evmcore Authors
// This file is part of the evmcore library.
//
// The evmcore library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The evmcore library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the evmcore library. If not, see <http://www.gnu.org/licenses/>.

// Package log is a small structured, leveled logger in the style of the
// teacher's own github.com/core-coin/go-core/log: key/value pairs, a
// call-site captured via go-stack, and color output when the sink is a
// terminal. The executor uses it for substate merge/discard tracing;
// the interpreter's hot loop never touches it.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-stack/stack"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// Level is a logging severity.
type Level int

const (
	LvlTrace Level = iota
	LvlDebug
	LvlInfo
	LvlWarn
	LvlError
)

func (l Level) String() string {
	switch l {
	case LvlTrace:
		return "trce"
	case LvlDebug:
		return "dbug"
	case LvlInfo:
		return "info"
	case LvlWarn:
		return "warn"
	case LvlError:
		return "eror"
	default:
		return "????"
	}
}

var levelColor = map[Level]int{
	LvlTrace: 90,
	LvlDebug: 36,
	LvlInfo:  32,
	LvlWarn:  33,
	LvlError: 31,
}

// Logger emits leveled, structured records to an underlying writer.
type Logger struct {
	mu       sync.Mutex
	out      io.Writer
	color    bool
	minLevel Level
	ctx      []interface{}
}

// Root is the package-level default logger, writing to stderr.
var Root = New(colorable.NewColorableStderr())

// New constructs a Logger writing to w, auto-detecting color support
// when w is a terminal.
func New(w io.Writer) *Logger {
	color := false
	if f, ok := w.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd())
	}
	return &Logger{out: w, color: color, minLevel: LvlInfo}
}

// SetLevel sets the minimum level that will be emitted.
func (l *Logger) SetLevel(lvl Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.minLevel = lvl
}

// With returns a child logger that always includes the given key/value
// pairs in addition to its own.
func (l *Logger) With(ctx ...interface{}) *Logger {
	child := &Logger{out: l.out, color: l.color, minLevel: l.minLevel}
	child.ctx = append(append([]interface{}{}, l.ctx...), ctx...)
	return child
}

func (l *Logger) log(lvl Level, msg string, ctx []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if lvl < l.minLevel {
		return
	}
	var b strings.Builder
	ts := time.Now().Format("01-02|15:04:05.000")
	if l.color {
		fmt.Fprintf(&b, "\x1b[%dm%s\x1b[0m[%s] %s", levelColor[lvl], lvl, ts, msg)
	} else {
		fmt.Fprintf(&b, "%s[%s] %s", lvl, ts, msg)
	}
	all := append(append([]interface{}{}, l.ctx...), ctx...)
	for i := 0; i+1 < len(all); i += 2 {
		fmt.Fprintf(&b, " %v=%v", all[i], all[i+1])
	}
	call := stack.Caller(2)
	fmt.Fprintf(&b, " caller=%+v\n", call)
	l.out.Write([]byte(b.String()))
}

func (l *Logger) Trace(msg string, ctx ...interface{}) { l.log(LvlTrace, msg, ctx) }
func (l *Logger) Debug(msg string, ctx ...interface{}) { l.log(LvlDebug, msg, ctx) }
func (l *Logger) Info(msg string, ctx ...interface{})  { l.log(LvlInfo, msg, ctx) }
func (l *Logger) Warn(msg string, ctx ...interface{})  { l.log(LvlWarn, msg, ctx) }
func (l *Logger) Error(msg string, ctx ...interface{}) { l.log(LvlError, msg, ctx) }

func Trace(msg string, ctx ...interface{}) { Root.log(LvlTrace, msg, ctx) }
func Debug(msg string, ctx ...interface{}) { Root.log(LvlDebug, msg, ctx) }
func Info(msg string, ctx ...interface{})  { Root.log(LvlInfo, msg, ctx) }
func Warn(msg string, ctx ...interface{})  { Root.log(LvlWarn, msg, ctx) }
func Error(msg string, ctx ...interface{}) { Root.log(LvlError, msg, ctx) }
