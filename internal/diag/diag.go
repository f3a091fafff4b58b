// Package diag implements the diagnostic bag and source map shared by every
// compiler pass: byte-range labeled errors and warnings, plus line/column
// lookup for rendering. The bag is append-only and safe to hand to every
// pass in sequence (component 1 of the BT-DSL middle-end).
package diag

import "fmt"

// Severity classifies a Diagnostic.
type Severity int

const (
	Error Severity = iota
	Warning
)

func (s Severity) String() string {
	if s == Warning {
		return "warning"
	}
	return "error"
}

// Code is a stable short diagnostic code, grouped by the taxonomy in the
// specification: Parse, Import, Resolution, ConstEval, Type, Safety, Internal.
type Code string

const (
	CodeParse      Code = "BT0001"
	CodeImport     Code = "BT0100"
	CodeResolution Code = "BT0200"
	CodeConstEval  Code = "BT0300"
	CodeType       Code = "BT0400"
	CodeSafety     Code = "BT0500"
	CodeInternal   Code = "BT0900"
)

// Range is a half-open byte-offset span into a single source file.
type Range struct {
	Start int
	End   int
}

// Contains reports whether offset lies within [r.Start, r.End).
func (r Range) Contains(offset int) bool {
	return offset >= r.Start && offset < r.End
}

// Label attaches a secondary note (e.g. "previous declaration here") to a
// Diagnostic, at its own range.
type Label struct {
	Range   Range
	Message string
}

// Diagnostic is one compiler message with a primary range and optional
// secondary labels.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Range    Range
	Labels   []Label
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s[%s]: %s", d.Severity, d.Code, d.Message)
}

// Bag is an append-only collection of diagnostics produced across the whole
// pipeline for one module. Passes never remove entries another pass added.
type Bag struct {
	items []Diagnostic
}

// NewBag returns an empty diagnostic bag.
func NewBag() *Bag {
	return &Bag{}
}

// Add appends a diagnostic to the bag.
func (b *Bag) Add(d Diagnostic) {
	b.items = append(b.items, d)
}

// Errorf appends an Error-severity diagnostic built with fmt.Sprintf.
func (b *Bag) Errorf(code Code, r Range, format string, args ...any) {
	b.Add(Diagnostic{Severity: Error, Code: code, Message: fmt.Sprintf(format, args...), Range: r})
}

// Warnf appends a Warning-severity diagnostic built with fmt.Sprintf.
func (b *Bag) Warnf(code Code, r Range, format string, args ...any) {
	b.Add(Diagnostic{Severity: Warning, Code: code, Message: fmt.Sprintf(format, args...), Range: r})
}

// Items returns the diagnostics in the order they were added.
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// HasErrors reports whether any diagnostic in the bag is Error severity.
func (b *Bag) HasErrors() bool {
	for _, d := range b.items {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// Len returns the number of diagnostics currently in the bag.
func (b *Bag) Len() int {
	return len(b.items)
}

// Extend appends every diagnostic from other onto b, preserving order.
func (b *Bag) Extend(other *Bag) {
	if other == nil {
		return
	}
	b.items = append(b.items, other.items...)
}
