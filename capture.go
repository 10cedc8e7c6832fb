package tracechain

import (
	"strings"

	"github.com/isokit/tracechain/internal/runtime"
)

// Capture is an opaque snapshot of "the current call stack" taken
// inside one isolate, innermost frame first. The producing engine owns
// the snapshot; this package only holds a reference to it, and that
// reference is meaningful exactly as long as the owning isolate is
// alive.
type Capture interface {
	// Frames returns the captured call sites, innermost first.
	Frames() []Frame
}

// Isolate is the handle this package keeps for one isolated execution
// context. It is implemented by the sandbox runtime; implementations
// must be comparable, since the key registry is keyed by isolate
// identity, and a handle must not be reused after the isolate is
// destroyed.
type Isolate interface {
	// CaptureStack snapshots the isolate's currently executing call
	// stack. Called at attach and chain points.
	CaptureStack() Capture
}

// Holder pairs one Capture with the isolate that produced it. Exactly
// one Holder exists per adopted Capture, and a Holder is immutable
// after construction. A nil isolate marks a capture taken from host
// code, which is live for the life of the process.
type Holder struct {
	iso Isolate
	key *slotKey
	cap Capture
}

// NewHolder adopts a capture produced by iso. Pass a nil iso for
// captures taken from host code.
func NewHolder(iso Isolate, cap Capture) *Holder {
	return &Holder{iso: iso, key: keyFor(iso), cap: cap}
}

// Render formats the held capture: one four-space-indented,
// newline-prefixed "at" line per frame, in capture order. A holder
// whose isolate has been destroyed renders as "", as does one holding
// no capture. Render never fails.
func (h *Holder) Render() string {
	if h == nil || h.cap == nil || !keyLive(h.iso, h.key) {
		return ""
	}
	var b strings.Builder
	for _, f := range h.cap.Frames() {
		b.WriteString("\n    ")
		b.WriteString(f.String())
	}
	return b.String()
}

// hostCapture is a capture of the host program's own call stack, held
// as program counters and expanded to frames only when rendered. Host
// frames carry no column information; they render with column 0.
type hostCapture []uintptr

var _ Capture = (hostCapture)(nil)

// Frames expands the program counters through the Go runtime.
func (pcs hostCapture) Frames() []Frame {
	resolved := runtime.Resolve(pcs)
	ff := make([]Frame, 0, len(resolved))
	for _, fr := range resolved {
		ff = append(ff, Frame{
			Function: fr.Function,
			Script:   fr.File,
			Line:     fr.Line,
		})
	}
	return ff
}

// captureHost snapshots the calling goroutine's stack. skip counts
// frames to omit beyond captureHost itself, so captureHost(0) starts
// at the caller.
//
//go:noinline
func captureHost(skip int) hostCapture {
	return hostCapture(runtime.Callers(skip + 1))
}
