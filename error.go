package tracechain

import (
	stderrors "errors"
	"fmt"
	"io"

	pkgerrors "github.com/pkg/errors"
)

// Interfaces discovered on errors entering the chain. Implementing any
// of these lets an error contribute the stack state it already carries
// the first time it crosses a boundary.

// holderCarrier is implemented by guest error values that took a
// capture when they were created or thrown.
type holderCarrier interface {
	StackHolder() *Holder
}

// stackTexter is implemented by error values whose stack was flattened
// to text, usually by a value-marshalling layer copying them between
// isolates.
type stackTexter interface {
	StackText() string
}

// stackTracer is implemented by errors carrying raw program counters
// from a host stack capture.
//
// See: https://github.com/getsentry/sentry-go/blob/v0.12.0/stacktrace.go#L81
type stackTracer interface {
	StackTrace() []uintptr
}

// pkgStackTracer matches errors produced by github.com/pkg/errors.
type pkgStackTracer interface {
	StackTrace() pkgerrors.StackTrace
}

// stackStringer is the rendered-stack accessor: implemented by traced
// errors here, and by any foreign error exposing stack text the same
// way.
type stackStringer interface {
	Stack() string
}

// namer and messager override the default header of a rendered stack.
// Guest exception values implement them to report their own error
// class and live message.
type namer interface {
	Name() string
}

type messager interface {
	Message() string
}

// Traced error wrapper.

// traced is the attachment installed on an error: the error itself
// plus the hidden chain data slot, with the computed stack accessor
// over both. Slot and accessor live on one value, so they are
// installed atomically and cannot drift apart.
type traced struct {
	error error
	data  chainData
}

var _ interface { // Assert interface implementation.
	error
	stackStringer
	Unwrap() error
	fmt.Formatter
} = (*traced)(nil)

func (w *traced) Error() string { return w.error.Error() }

func (w *traced) Unwrap() error { return w.error }

// Stack renders the full stack text: the "<Name>: <message>" header
// followed by every chained segment, oldest first. Nothing is cached.
// Each call re-reads the message and re-renders every segment, so a
// message mutated after attach shows its live value and segments of
// destroyed isolates drop out.
func (w *traced) Stack() string {
	return errorHeader(w.error) + renderData(w.data)
}

func (w *traced) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			io.WriteString(s, w.Stack())
			return
		}
		if s.Flag('#') {
			fmt.Fprintf(s, "&tracechain.traced{%q}", w.error)
			return
		}
		fallthrough
	case 's':
		io.WriteString(s, w.Error())
	case 'q':
		fmt.Fprintf(s, "%q", w.Error())
	default:
		// empty
	}
}

// errorHeader renders the "<Name>: <message>" line leading a stack.
// Errors modelling guest exceptions override the defaults through the
// namer and messager interfaces; everything else reports the class
// Error with its Error() text as the message.
func errorHeader(err error) string {
	name := "Error"
	if n, ok := err.(namer); ok {
		name = n.Name()
	}
	msg := err.Error()
	if m, ok := err.(messager); ok {
		msg = m.Message()
	}
	return name + ": " + msg
}

// Attach and chain operations.

// AttachStack captures iso's current stack and installs it on err as a
// single-segment trace, replacing anything already attached. This is
// the attach point for an error at its original throw site inside an
// isolate. A nil iso captures the host program's current Go call stack
// instead, matching the nil-isolate convention of NewHolder.
//
// The returned error carries the attachment; use it in place of err.
// If err is nil, AttachStack returns nil.
func AttachStack(err error, iso Isolate) error {
	if err == nil {
		return nil
	}
	if iso == nil {
		return attach(err, NewHolder(nil, captureHost(1)))
	}
	return attach(err, NewHolder(iso, iso.CaptureStack()))
}

// AttachHolder installs a previously adopted capture on err as a
// single-segment trace, replacing anything already attached. Engines
// that capture at error construction use this to attach that capture
// at throw time. If err is nil, AttachHolder returns nil.
func AttachHolder(err error, h *Holder) error {
	if err == nil {
		return nil
	}
	return attach(err, h)
}

// ChainStack captures iso's current stack and chains it onto err as
// the newest segment. Call it at each point an error is observed
// crossing a boundary into iso; every crossing deepens the chain by
// exactly one segment.
//
// An error arriving without an attachment contributes the stack state
// it brought along: a capture carried by a guest error value, program
// counters recorded by a host errors library, or stack text flattened
// by a marshalling layer. With none of those, the crossing starts a
// fresh single-segment trace.
//
// The returned error carries the attachment; use it in place of err.
// If err is nil, ChainStack returns nil. A nil iso captures the host
// program's current Go call stack, as ChainHost does.
func ChainStack(err error, iso Isolate) error {
	if err == nil {
		return nil
	}
	if iso == nil {
		return chain(err, NewHolder(nil, captureHost(1)))
	}
	return chain(err, NewHolder(iso, iso.CaptureStack()))
}

// ChainHolder is ChainStack for a capture adopted earlier. If err is
// nil, ChainHolder returns nil.
func ChainHolder(err error, h *Holder) error {
	if err == nil {
		return nil
	}
	return chain(err, h)
}

// ChainHost chains the host program's current Go call stack onto err
// as the newest segment. This is the boundary crossing from sandbox
// work back into host code. If err is nil, ChainHost returns nil.
//
//go:noinline
func ChainHost(err error) error {
	return ChainHostAt(err, 1)
}

// ChainHostAt is ChainHost, skipping skipCallers additional frames so
// helpers can report their caller's call site rather than their own.
// If err is nil, ChainHostAt returns nil.
//
//go:noinline
func ChainHostAt(err error, skipCallers int) error {
	if err == nil {
		return nil
	}
	return chain(err, NewHolder(nil, captureHost(1+skipCallers)))
}

// Stack renders the stack text attached to err or to any error it
// wraps, searching the wrap tree depth-first and returning the first
// non-empty stack found. A foreign accessor yielding "" does not end
// the search, so it cannot shadow an attachment deeper in the tree.
// It returns "" when no trace is attached. Reading never mutates the
// error and never fails.
func Stack(err error) string {
	todo := []error{err}
	for len(todo) > 0 {
		e := todo[len(todo)-1]
		todo = todo[:len(todo)-1]
		if e == nil {
			continue
		}
		if s, ok := e.(stackStringer); ok {
			if text := s.Stack(); text != "" {
				return text
			}
		}
		switch u := e.(type) {
		case interface{ Unwrap() error }:
			todo = append(todo, u.Unwrap())
		case interface{ Unwrap() []error }:
			wrapped := u.Unwrap()
			for i := len(wrapped) - 1; i >= 0; i-- {
				todo = append(todo, wrapped[i])
			}
		}
	}
	return ""
}

// attach installs data in err's hidden slot. When err is already
// traced somewhere in its wrap chain the slot is replaced in place, so
// wrapping layers above it are kept; otherwise err gains a wrapper.
func attach(err error, data chainData) error {
	if w := findTraced(err); w != nil {
		w.data = data
		return err
	}
	return &traced{error: err, data: data}
}

// chain makes h the newest segment in front of whatever err already
// carries.
func chain(err error, h *Holder) error {
	if w := findTraced(err); w != nil {
		w.data = &link{newer: h, older: w.data}
		return err
	}
	older := nativeData(err)
	if older == nil {
		return &traced{error: err, data: h}
	}
	return &traced{error: err, data: &link{newer: h, older: older}}
}

// findTraced walks err's wrap chain for an installed attachment.
func findTraced(err error) *traced {
	for ; err != nil; err = stderrors.Unwrap(err) {
		if w, ok := err.(*traced); ok {
			return w
		}
	}
	return nil
}

// nativeData recovers stack state attached to err before it reached
// this package. The walk tries the richest source first on each error
// in the wrap chain: a live guest capture, then host program counters,
// then flattened text.
func nativeData(err error) chainData {
	for e := err; e != nil; e = stderrors.Unwrap(e) {
		if c, ok := e.(holderCarrier); ok {
			if h := c.StackHolder(); h != nil {
				return h
			}
		}
		if t, ok := e.(pkgStackTracer); ok {
			if st := t.StackTrace(); len(st) > 0 {
				pcs := make([]uintptr, len(st))
				for i, fr := range st {
					pcs[i] = uintptr(fr)
				}
				return NewHolder(nil, hostCapture(pcs))
			}
		}
		if t, ok := e.(stackTracer); ok {
			if st := t.StackTrace(); len(st) > 0 {
				pcs := make([]uintptr, len(st))
				copy(pcs, st)
				return NewHolder(nil, hostCapture(pcs))
			}
		}
		if t, ok := e.(stackTexter); ok {
			if s := t.StackText(); s != "" {
				return stringData(s)
			}
		}
		if t, ok := e.(stackStringer); ok {
			if s := t.Stack(); s != "" {
				return stringData(s)
			}
		}
	}
	return nil
}
