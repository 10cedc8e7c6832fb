package sandbox

import (
	"fmt"
	"io"

	"github.com/isokit/tracechain"
)

// GuestError is an exception value raised inside an isolate: an error
// class name and message in the guest's own terms, carrying whatever
// stack state it was created with. Errors built by Isolate.NewError or
// Isolate.Throw carry the live throw-site capture; errors rebuilt from
// marshalled copies carry flattened stack text.
type GuestError struct {
	name    string
	message string
	holder  *tracechain.Holder
	text    string
}

var _ interface { // Assert interface implementation.
	error
	fmt.Formatter
} = (*GuestError)(nil)

// RestoreError rebuilds a guest error from its marshalled parts: the
// class name, the message, and the flattened stack text the
// marshalling layer produced (which may be empty). The restored error
// carries no live capture.
func RestoreError(name, message, stack string) *GuestError {
	return &GuestError{name: name, message: message, text: stack}
}

// Name returns the guest error class, such as "TypeError".
func (e *GuestError) Name() string { return e.name }

// Message returns the live message text.
func (e *GuestError) Message() string { return e.message }

// SetMessage replaces the message. Stack reads after this render the
// new value; the trace body is unaffected.
func (e *GuestError) SetMessage(message string) { e.message = message }

func (e *GuestError) Error() string { return e.name + ": " + e.message }

// Stack renders the stack state the error itself carries, before any
// chain segments added later: the throw-site capture when the error
// was created in a live isolate, or the flattened text a marshalling
// layer produced.
func (e *GuestError) Stack() string {
	if e.holder != nil {
		return e.Error() + e.holder.Render()
	}
	return e.text
}

// StackHolder hands the throw-site capture to the chain builder.
func (e *GuestError) StackHolder() *tracechain.Holder { return e.holder }

// StackText hands flattened stack text to the chain builder.
func (e *GuestError) StackText() string { return e.text }

func (e *GuestError) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			if st := e.Stack(); st != "" {
				io.WriteString(s, st)
				return
			}
			io.WriteString(s, e.Error())
			return
		}
		if s.Flag('#') {
			fmt.Fprintf(s, "&sandbox.GuestError{%q}", e.Error())
			return
		}
		fallthrough
	case 's':
		io.WriteString(s, e.Error())
	case 'q':
		fmt.Fprintf(s, "%q", e.Error())
	default:
		// empty
	}
}
