package sandbox

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/isokit/tracechain"
)

// Isolate is one isolated execution environment. Create isolates
// through a Manager; the zero value is not usable.
//
// One logical thread of control runs guest work inside an isolate at a
// time. The frame ledger is still mutex-guarded so that a capture can
// be taken from another goroutine while the isolate is quiesced.
type Isolate struct {
	name string
	log  logrus.FieldLogger

	mu       sync.Mutex
	frames   []tracechain.Frame
	disposed bool
}

var _ tracechain.Isolate = (*Isolate)(nil)

// capture is a snapshot of the frame ledger, innermost first.
type capture []tracechain.Frame

var _ tracechain.Capture = (capture)(nil)

func (c capture) Frames() []tracechain.Frame { return c }

// Name returns the name the isolate was registered under.
func (iso *Isolate) Name() string { return iso.name }

// Push records entry into a guest frame. Engine hook: called as guest
// execution descends.
func (iso *Isolate) Push(f tracechain.Frame) {
	iso.mu.Lock()
	defer iso.mu.Unlock()
	if iso.disposed {
		return
	}
	iso.frames = append(iso.frames, f)
}

// Pop records return from the innermost guest frame. Popping an empty
// ledger is a no-op.
func (iso *Isolate) Pop() {
	iso.mu.Lock()
	defer iso.mu.Unlock()
	if n := len(iso.frames); n > 0 {
		iso.frames = iso.frames[:n-1]
	}
}

// CaptureStack snapshots the currently executing guest call stack,
// innermost frame first. A disposed isolate captures an empty stack.
func (iso *Isolate) CaptureStack() tracechain.Capture {
	iso.mu.Lock()
	defer iso.mu.Unlock()
	ff := make(capture, len(iso.frames))
	for i, f := range iso.frames {
		ff[len(ff)-1-i] = f
	}
	return ff
}

// NewError builds a guest error of the given class, capturing the
// current stack the way an engine captures at error construction. The
// capture rides with the error and is adopted when the error first
// crosses a boundary.
func (iso *Isolate) NewError(name, message string) *GuestError {
	return &GuestError{
		name:    name,
		message: message,
		holder:  tracechain.NewHolder(iso, iso.CaptureStack()),
	}
}

// Throw raises a guest exception: a guest error with the throw-site
// stack attached as a single-segment trace.
func (iso *Isolate) Throw(name, message string) error {
	ge := iso.NewError(name, message)
	return tracechain.AttachHolder(ge, ge.holder)
}

// Throwf is Throw with a formatted message.
func (iso *Isolate) Throwf(name, format string, args ...interface{}) error {
	ge := iso.NewError(name, fmt.Sprintf(format, args...))
	return tracechain.AttachHolder(ge, ge.holder)
}

// Run executes guest work inside the isolate. A failure crosses the
// boundary back into host code, so it returns with the host's call
// stack chained on as the newest segment.
func (iso *Isolate) Run(fn func(*Isolate) error) error {
	if err := fn(iso); err != nil {
		iso.log.WithError(err).Debug("guest error crossed into host")
		return tracechain.ChainHostAt(err, 1)
	}
	return nil
}

// CallInto executes guest work inside target on behalf of this
// isolate. A failure crosses one boundary: it returns with this
// isolate's stack at the call site chained on as the newest segment.
func (iso *Isolate) CallInto(target *Isolate, fn func(*Isolate) error) error {
	if err := fn(target); err != nil {
		iso.log.WithError(err).WithField("from", target.Name()).Debug("guest error crossed isolates")
		return tracechain.ChainStack(err, iso)
	}
	return nil
}

// dispose clears the ledger and invalidates the isolate's registry
// entry. Idempotent; only the Manager calls it.
func (iso *Isolate) dispose() {
	iso.mu.Lock()
	if iso.disposed {
		iso.mu.Unlock()
		return
	}
	iso.disposed = true
	iso.frames = nil
	iso.mu.Unlock()
	tracechain.IsolateDestroyed(iso)
	iso.log.Debug("isolate disposed")
}
