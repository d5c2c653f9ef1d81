package tuitest

import (
	"bytes"
	"context"
	"testing"
	"time"
)

func TestParseFramesSplitsOnClear(t *testing.T) {
	raw := []byte("\x1b[2J\x1b[Hfirst   \r\nline\x1b[2J\x1b[H\x1b[1;31msecond\x1b[0m\n\n")
	frames := parseFrames(raw)
	if len(frames) != 2 {
		t.Fatalf("frames = %d, want 2", len(frames))
	}
	if frames[0].Plain != "first\nline" {
		t.Fatalf("first frame = %q", frames[0].Plain)
	}
	if frames[1].Plain != "second" || frames[1].Index != 1 {
		t.Fatalf("second frame = %+v", frames[1])
	}
}

func TestParseFramesWithoutClear(t *testing.T) {
	frames := parseFrames([]byte("rendered out.png\n"))
	if len(frames) != 1 || frames[0].Plain != "rendered out.png" {
		t.Fatalf("unexpected frames %+v", frames)
	}
}

func TestRecordingFind(t *testing.T) {
	rec := &Recording{Frames: parseFrames([]byte("\x1b[2Jidle\x1b[2Jready out.png\x1b[2Jbye"))}
	frame, ok := rec.Find("out.png")
	if !ok || frame.Index != 1 {
		t.Fatalf("find = %+v %v", frame, ok)
	}
	if _, ok := rec.Find("missing"); ok {
		t.Fatal("unexpected match")
	}
	last, ok := rec.FinalFrame()
	if !ok || last.Plain != "bye" {
		t.Fatalf("final = %+v", last)
	}
	var empty *Recording
	if _, ok := empty.FinalFrame(); ok {
		t.Fatal("nil recording has no frames")
	}
}

func TestStripANSI(t *testing.T) {
	in := "\x1b]11;?\x07\x1b[38;5;205mlogo\x1b[0m\x0e"
	if got := stripANSI(in); got != "logo" {
		t.Fatalf("stripANSI = %q", got)
	}
}

func TestResponderAnswersSplitQueries(t *testing.T) {
	var out bytes.Buffer
	tr := newTerminalResponder(&out)
	tr.Process([]byte("hello\x1b]11"))
	if out.Len() != 0 {
		t.Fatal("partial query answered early")
	}
	tr.Process([]byte(";?\x07world\x1b[6n"))
	want := "\x1b]11;rgb:0000/0000/0000\x07\x1b[1;1R"
	if out.String() != want {
		t.Fatalf("answers = %q, want %q", out.String(), want)
	}
	tr.Process([]byte("more output"))
	if out.String() != want {
		t.Fatal("queries must be answered once")
	}
}

func TestKeysBuildsSteps(t *testing.T) {
	steps := Keys(50*time.Millisecond, "o", "\r")
	if len(steps) != 2 || string(steps[1].Input) != "\r" || steps[0].Delay != 50*time.Millisecond {
		t.Fatalf("unexpected steps %+v", steps)
	}
	if Wait(time.Second).Input != nil {
		t.Fatal("wait types nothing")
	}
}

func TestRunRequiresCommand(t *testing.T) {
	if _, err := Run(context.Background(), Config{}); err == nil {
		t.Fatal("expected error for empty command")
	}
}
