// Package tracechain captures, chains, and lazily renders execution
// stack traces for errors that cross isolate boundaries.
//
// A host process running the isokit sandbox hosts many memory-isolated
// execution contexts ("isolates"). An error raised inside one isolate
// is frequently observed somewhere else entirely: in the isolate that
// called into it, two isolates up, or in plain host Go code. By the
// time anyone reads the error, the stack that produced it is gone,
// unless it was captured at the right moments and carried along. This
// package is that carrier.
//
// # The trace chain
//
// Each error gets at most one hidden attachment holding its chain
// data. The chain is built from three shapes:
//
// • a capture holder: one snapshot of an isolate's call stack, owned
// by the isolate that produced it;
//
// • a link: an ordered pair of the newest capture and whatever the
// error carried before it, appended at each boundary crossing; and
//
// • plain text: a stack already flattened to a string, usually because
// the error passed through a value-marshalling layer that cannot copy
// live captures.
//
// At each point an error is observed crossing from one isolate to
// another, ChainStack records the observing isolate's stack as the
// newest segment:
//
//	if err := callIntoGuest(iso); err != nil {
//	    return tracechain.ChainStack(err, iso)
//	}
//
// Host code joining the chain uses ChainHost, which captures the Go
// call stack instead of a guest stack. Errorf wraps with fmt.Errorf
// semantics while running every %w operand through the same host step:
//
//	return tracechain.Errorf("loading snapshot: %w", err)
//
// # Reading a stack
//
// Nothing is formatted until someone asks. Stack walks the error chain
// to the attachment and renders it:
//
//	fmt.Println(tracechain.Stack(err))
//	// TypeError: boom
//	//     at inner (worker.js:3:11)
//	//     at (<isokit boundary>)
//	//     at dispatch (host.js:40:5)
//
// Segments print oldest first: the original throw site leads and each
// boundary hop trails it. Every read re-renders, so a message mutated
// after attach shows its live value, and segments whose isolate has
// since been destroyed drop out instead of failing. A read never
// panics: stale captures, tampered chain data, and frames with missing
// metadata all degrade to empty output.
//
// # Isolate lifetime
//
// Captures are only as real as the isolate that took them. The package
// keeps one opaque key per live isolate; the sandbox manager reports
// teardown with IsolateDestroyed, after which every capture taken in
// that isolate renders as the empty string. Holders never keep an
// isolate alive and never crash on a dead one.
//
// # Interop
//
// Errors that never met this package still chain usefully. The first
// crossing adopts, in order: a capture carried by a guest error value
// (StackHolder), program counters recorded by github.com/pkg/errors or
// any StackTrace() []uintptr implementation, or pre-rendered stack
// text (StackText). Failing all of those the crossing starts a fresh
// single-segment chain.
package tracechain
