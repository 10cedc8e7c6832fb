package tracechain

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Frame describes one call site in a captured stack. Guest engines
// fill it from their own frame metadata; host captures synthesize it
// from the Go runtime. The zero value renders as an anonymous frame at
// an empty location.
//
// Frames are meant to be seen, so we have implemented the following
// default formatting verbs:
//
//	"%s"  – the frame as it appears in a stack listing, without indentation
//	"%q"  – the same as `%s` but wrapped in `"` delimiters
//	"%d"  – the line number
//	"%v"  – same as `%s`
//	"%+v" – the frame as a full stack line: newline, four spaces, `%s`
//	"%#v" – a Golang representation with the type (`tracechain.Frame`)
type Frame struct {
	// Function is the name of the executing function. Empty means the
	// frame has no name of its own, such as top-level script code.
	Function string

	// Script is the resource name of the code the frame runs in. For
	// host frames this is the Go source file path.
	Script string

	Line   int
	Column int

	// Eval marks a frame running evaluated code rather than a loaded
	// script.
	Eval bool

	// NoScript marks an Eval frame whose originating script could not
	// be resolved.
	NoScript bool
}

var _ interface { // Assert interface implementation.
	fmt.Formatter
	fmt.Stringer
} = Frame{}

// String renders the frame in the "at ..." form used by stack
// listings. The shape depends on what metadata the frame has:
//
//	at [eval]:<line>:<col>              evaluated code, unknown script
//	at [eval] (<script>:<line>:<col>    evaluated code with a script
//	at <script>:<line>:<col>            no function name
//	at <function> (<script>:<line>:<col>)
//
// The unbalanced parenthesis in the second shape is part of the
// established output format and is kept as is; consumers parse it.
func (f Frame) String() string {
	var b strings.Builder
	b.WriteString("at ")
	switch {
	case f.Eval && f.NoScript:
		b.WriteString("[eval]:")
		b.WriteString(f.position())
	case f.Eval:
		b.WriteString("[eval] (")
		b.WriteString(f.site())
	case f.Function == "":
		b.WriteString(f.site())
	default:
		b.WriteString(f.Function)
		b.WriteString(" (")
		b.WriteString(f.site())
		b.WriteString(")")
	}
	return b.String()
}

// site renders the "<script>:<line>:<col>" location suffix. The script
// name is written even when empty; that is the established format.
func (f Frame) site() string {
	return f.Script + ":" + f.position()
}

// position renders the "<line>:<col>" pair.
func (f Frame) position() string {
	return strconv.Itoa(f.Line) + ":" + strconv.Itoa(f.Column)
}

// Format gives this type control over how the location information is
// structured when it is displayed.
func (f Frame) Format(s fmt.State, verb rune) {
	switch verb {
	case 's':
		io.WriteString(s, f.String())
	case 'q':
		io.WriteString(s, `"`)
		io.WriteString(s, f.String())
		io.WriteString(s, `"`)
	case 'd':
		io.WriteString(s, strconv.Itoa(f.Line))
	case 'v':
		switch {
		case s.Flag('+'):
			io.WriteString(s, "\n    ")
			io.WriteString(s, f.String())
		case s.Flag('#'):
			io.WriteString(s, "tracechain.Frame(\"")
			io.WriteString(s, f.String())
			io.WriteString(s, "\")")
		default:
			io.WriteString(s, f.String())
		}
	}
}
