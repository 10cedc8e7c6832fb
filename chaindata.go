package tracechain

import "strings"

// boundaryMarker is the synthetic line separating segments captured in
// different isolates.
const boundaryMarker = "\n    at (<isokit boundary>)"

// chainData is the hidden attachment riding with a traced error. It
// takes one of three shapes: stringData (a stack already flattened to
// text), *Holder (a single captured segment), or *link (a capture
// chained onto earlier data). The zero case, nil, is an untouched
// error.
type chainData interface {
	chainData()
}

// stringData is stack text that arrived pre-rendered, usually from an
// error flattened by a value-marshalling layer.
type stringData string

// link chains the most recent capture onto whatever the error carried
// before it. The structure leans right: older may itself be a link, so
// depth equals the number of boundary crossings.
type link struct {
	newer *Holder
	older chainData
}

func (stringData) chainData() {}
func (*Holder) chainData()    {}
func (*link) chainData()      {}

// renderData walks chain data into a rendered trace body. Every line
// is newline-prefixed, so the result concatenates directly after the
// "<Name>: <message>" header. renderData never fails: nil, malformed,
// and unknown shapes all render as "", because a missing trace is
// strictly less harmful than a panic inside error reporting.
//
// String data follows three rules. Text already indented with four
// spaces is a rendered stack body and passes through verbatim. Text
// with a newline is a full stack listing whose first line repeats the
// error header, so everything from the first newline on is kept.
// Text with no newline is a bare message: nothing to show.
func renderData(data chainData) string {
	switch d := data.(type) {
	case stringData:
		s := string(d)
		if strings.HasPrefix(s, "    ") {
			return s
		}
		if i := strings.IndexByte(s, '\n'); i >= 0 {
			return s[i:]
		}
		return ""
	case *Holder:
		return d.Render()
	case *link:
		return renderData(d.older) + boundaryMarker + renderData(d.newer)
	default:
		return ""
	}
}
