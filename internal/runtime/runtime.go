package runtime

import "runtime"

// Callers records the program counters of the calling goroutine's
// stack. skip counts frames to omit beyond Callers itself, so
// Callers(0) starts at the caller.
//
//go:noinline
func Callers(skip int) []uintptr {
	var pcs [32]uintptr
	n := runtime.Callers(skip+2, pcs[:])
	out := make([]uintptr, n)
	copy(out, pcs[:n])
	return out
}

// Resolve expands program counters into runtime frame data, innermost
// first, including frames for inlined calls.
func Resolve(pcs []uintptr) []runtime.Frame {
	if len(pcs) == 0 {
		return nil
	}
	frames := runtime.CallersFrames(pcs)
	ff := make([]runtime.Frame, 0, len(pcs))
	for {
		fr, more := frames.Next()
		ff = append(ff, fr)
		if !more {
			break
		}
	}
	return ff
}
