package constraint

import (
	"fmt"
	"io"
	"strings"
)

// RenderHeader writes the header comment block of spec.md §6's
// "Emitted R1CS" format. Header lines are always comments, so they
// play no part in the round-trip property of spec.md §8 — only
// RenderStream's output is compared on round-trip.
func RenderHeader(w io.Writer, entryFn, compileTime, fieldTag, runID string, signalCount int) {
	fmt.Fprintf(w, "# entry: %s\n", entryFn)
	fmt.Fprintf(w, "# compiled: %s\n", compileTime)
	fmt.Fprintf(w, "# field: %s\n", fieldTag)
	fmt.Fprintf(w, "# run-id: %s\n", runID)
	fmt.Fprintf(w, "# signals: %d\n", signalCount)
}

// RenderStream writes symbolic records first, then witness records,
// both in emission order, matching spec.md §6: "all symbolic records
// in emission order, followed by all witness records in emission
// order."
func RenderStream(w io.Writer, s Stream) {
	for _, r := range s.SymbolicRecords() {
		renderSymbolic(w, r)
	}
	for _, r := range s.WitnessRecords() {
		renderWitness(w, r)
	}
}

func renderWitness(w io.Writer, r WitnessRecord) {
	line := fmt.Sprintf("0 = (%s) * (%s) - (%s)", lcString(r.A), lcString(r.B), lcString(r.C))
	if r.Comment != "" {
		line += " # " + r.Comment
	}
	fmt.Fprintln(w, line)
}

func renderSymbolic(w io.Writer, r SymbolicRecord) {
	line := fmt.Sprintf("%s = (%s) %s (%s)", varName(r.OutIndex), lcString(r.Lhs), r.Op.String(), lcString(r.Rhs))
	if r.Comment != "" {
		line += " # " + r.Comment
	}
	fmt.Fprintln(w, line)
}

// RenderString is the string-returning convenience form of
// RenderStream, used by tests and by cmd/avmc's check command.
func RenderString(s Stream) string {
	var b strings.Builder
	RenderStream(&b, s)
	return b.String()
}
