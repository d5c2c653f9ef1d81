package tuitest

import (
	"bytes"
	"io"
)

// probe is a terminal query bubbletea and lipgloss may send at startup,
// paired with the answer a dark xterm would give.
type probe struct {
	query  []byte
	answer []byte
}

var probes = []probe{
	{[]byte("\x1b[6n"), []byte("\x1b[1;1R")},
	{[]byte("\x1b]10;?\x07"), []byte("\x1b]10;rgb:cccc/cccc/cccc\x07")},
	{[]byte("\x1b]10;?\x1b\\"), []byte("\x1b]10;rgb:cccc/cccc/cccc\x1b\\")},
	{[]byte("\x1b]11;?\x07"), []byte("\x1b]11;rgb:0000/0000/0000\x07")},
	{[]byte("\x1b]11;?\x1b\\"), []byte("\x1b]11;rgb:0000/0000/0000\x1b\\")},
}

// maxTail bounds the bytes kept between reads to catch split queries.
const maxTail = 64

type terminalResponder struct {
	w    io.Writer
	tail []byte
}

func newTerminalResponder(w io.Writer) *terminalResponder {
	return &terminalResponder{w: w}
}

// Process answers every probe found in chunk. Without answers the program
// blocks until its own query timeout.
func (tr *terminalResponder) Process(chunk []byte) {
	buf := append(tr.tail, chunk...)
	for {
		idx, p := firstProbe(buf)
		if idx < 0 {
			break
		}
		_, _ = tr.w.Write(p.answer)
		buf = buf[idx+len(p.query):]
	}
	if len(buf) > maxTail {
		buf = buf[len(buf)-maxTail:]
	}
	tr.tail = append(tr.tail[:0], buf...)
}

func firstProbe(buf []byte) (int, probe) {
	best := -1
	var found probe
	for _, p := range probes {
		idx := bytes.Index(buf, p.query)
		if idx >= 0 && (best < 0 || idx < best) {
			best, found = idx, p
		}
	}
	return best, found
}
