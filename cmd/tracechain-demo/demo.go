package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/isokit/tracechain"
	"github.com/isokit/tracechain/sandbox"
)

type demoOptions struct {
	Depth        int
	Eval         bool
	DisposeInner bool
	LogLevel     string
	CPUProfile   string
}

// runDemo builds a chain of nested isolates, raises a guest error at
// the bottom, walks it across every boundary back into host code, and
// prints the rendered trace chain.
func runDemo(out io.Writer, log logrus.FieldLogger, opts demoOptions) error {
	if opts.Depth < 1 {
		return errors.Errorf("demo: depth must be at least 1, got %d", opts.Depth)
	}

	mgr := sandbox.NewManager(log)
	defer mgr.Shutdown()

	isolates := make([]*sandbox.Isolate, opts.Depth)
	for i := range isolates {
		iso, err := mgr.Create("worker-" + strconv.Itoa(i+1))
		if err != nil {
			return err
		}
		isolates[i] = iso
	}

	err := isolates[0].Run(func(iso *sandbox.Isolate) error {
		return descend(isolates, 0, opts.Eval)
	})
	if err == nil {
		return errors.New("demo: expected a guest failure")
	}

	if opts.DisposeInner {
		// Destroy the isolate that threw: its segment drops out of the
		// render while the rest of the chain stays intact.
		if derr := mgr.Dispose(isolates[len(isolates)-1].Name()); derr != nil {
			return derr
		}
	}

	fmt.Fprintln(out, tracechain.Stack(err))
	return nil
}

// descend simulates guest execution: each isolate pushes a couple of
// frames and calls into the next one; the innermost throws.
func descend(isolates []*sandbox.Isolate, depth int, eval bool) error {
	iso := isolates[depth]
	script := "worker-" + strconv.Itoa(depth+1) + ".js"

	iso.Push(tracechain.Frame{Function: "dispatch", Script: script, Line: 12, Column: 3})
	defer iso.Pop()

	if depth == len(isolates)-1 {
		if eval {
			iso.Push(tracechain.Frame{Line: 30, Column: 9, Eval: true, NoScript: true})
		} else {
			iso.Push(tracechain.Frame{Function: "handle", Script: script, Line: 30, Column: 9})
		}
		defer iso.Pop()
		return iso.Throw("TypeError", "boom in "+iso.Name())
	}

	iso.Push(tracechain.Frame{Function: "callNext", Script: script, Line: 21, Column: 5})
	defer iso.Pop()

	return iso.CallInto(isolates[depth+1], func(*sandbox.Isolate) error {
		return descend(isolates, depth+1, eval)
	})
}
