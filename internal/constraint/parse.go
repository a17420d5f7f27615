package constraint

import (
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/zkavm/avmc/internal/diag"
	"github.com/zkavm/avmc/internal/field"
	"github.com/zkavm/avmc/internal/srcfmt"
)

// Signature is the optional `(arg1,...) -> (ret1,...)` header of a
// precompile template source (spec.md §6).
type Signature struct {
	Args    []string
	Returns []string
}

// ParsedFile is one parsed backend constraint-source chunk: its
// optional signature and its record stream.
type ParsedFile struct {
	Signature *Signature
	Stream    Stream
}

// ParseCombined splits a `=====`-separated combined backend source
// and parses every chunk, keyed by its full `stem.ext` header line
// (the entry chunk is keyed "" since it has no header of its own).
func ParseCombined(f field.Field, src string) (map[string]*ParsedFile, error) {
	entry, chunks := srcfmt.Split(src)
	out := map[string]*ParsedFile{}
	pf, err := Parse(f, entry)
	if err != nil {
		return nil, err
	}
	out[""] = pf
	for stem, body := range chunks {
		pf, err := Parse(f, body)
		if err != nil {
			return nil, diag.Wrap(diag.KindParse, err, "parsing chunk %s", stem)
		}
		out[stem] = pf
	}
	return out, nil
}

// Parse parses one backend constraint-source chunk (spec.md §6): an
// optional signature line, then one constraint per remaining
// non-blank line.
func Parse(f field.Field, src string) (*ParsedFile, error) {
	lines := strings.Split(src, "\n")
	idx := 0
	var sig *Signature
	names := map[string]uint32{"one": OneIndex}

	for idx < len(lines) && strings.TrimSpace(lines[idx]) == "" {
		idx++
	}
	if idx < len(lines) {
		if s, ok := tryParseSignature(lines[idx]); ok {
			sig = s
			idx++
			var next uint32 = 1
			for _, a := range s.Args {
				names[a] = next
				next++
			}
			for _, r := range s.Returns {
				names[r] = next
				next++
			}
		}
	}

	var stream Stream
	for ; idx < len(lines); idx++ {
		line := stripComment(lines[idx])
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		rec, err := parseLine(f, line, lines[idx], names)
		if err != nil {
			return nil, err
		}
		stream = append(stream, rec)
	}
	return &ParsedFile{Signature: sig, Stream: stream}, nil
}

func tryParseSignature(line string) (*Signature, bool) {
	line = strings.TrimSpace(line)
	arrow := strings.Index(line, "->")
	if arrow < 0 {
		return nil, false
	}
	lhs := strings.TrimSpace(line[:arrow])
	rhs := strings.TrimSpace(line[arrow+2:])
	if !strings.HasPrefix(lhs, "(") || !strings.HasSuffix(lhs, ")") {
		return nil, false
	}
	if !strings.HasPrefix(rhs, "(") || !strings.HasSuffix(rhs, ")") {
		return nil, false
	}
	args := splitNames(lhs[1 : len(lhs)-1])
	rets := splitNames(rhs[1 : len(rhs)-1])
	return &Signature{Args: args, Returns: rets}, true
}

func splitNames(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}

func stripComment(line string) string {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		return line[:i]
	}
	return line
}

func commentOf(line string) string {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		return strings.TrimSpace(line[i+1:])
	}
	return ""
}

func parseLine(f field.Field, line, rawLine string, names map[string]uint32) (Record, error) {
	eq := strings.Index(line, "=")
	if eq < 0 {
		return Record{}, diag.Errorf(diag.KindParse, "malformed constraint line: %q", rawLine)
	}
	lhs := strings.TrimSpace(line[:eq])
	rhs := strings.TrimSpace(line[eq+1:])
	comment := commentOf(rawLine)

	if lhs == "0" {
		w, err := parseWitnessRHS(f, rhs, names)
		if err != nil {
			return Record{}, err
		}
		w.Comment = comment
		return NewWitness(w), nil
	}

	out, ok := names[lhs]
	if !ok {
		n, err := parseVarIndex(lhs)
		if err != nil {
			return Record{}, diag.Errorf(diag.KindParse, "unknown output variable %q", lhs)
		}
		out = n
	}
	s, err := parseSymbolicRHS(f, rhs, names)
	if err != nil {
		return Record{}, err
	}
	s.OutIndex = out
	s.Comment = comment
	return NewSymbolic(s), nil
}

// parseWitnessRHS parses "(A) * (B) - (C)".
func parseWitnessRHS(f field.Field, rhs string, names map[string]uint32) (WitnessRecord, error) {
	groups, err := extractParenGroups(rhs, 3)
	if err != nil {
		return WitnessRecord{}, err
	}
	a, err := parseLinComb(f, groups[0], names)
	if err != nil {
		return WitnessRecord{}, err
	}
	b, err := parseLinComb(f, groups[1], names)
	if err != nil {
		return WitnessRecord{}, err
	}
	c, err := parseLinComb(f, groups[2], names)
	if err != nil {
		return WitnessRecord{}, err
	}
	return WitnessRecord{A: a, B: b, C: c}, nil
}

// parseSymbolicRHS parses "(lhs) OP (rhs)".
func parseSymbolicRHS(f field.Field, rhs string, names map[string]uint32) (SymbolicRecord, error) {
	groups, rest, err := extractParenGroupsWithRest(rhs, 1)
	if err != nil {
		return SymbolicRecord{}, err
	}
	lhs, err := parseLinComb(f, groups[0], names)
	if err != nil {
		return SymbolicRecord{}, err
	}
	rest = strings.TrimSpace(rest)
	opText, rhsGroup, err := splitOpAndGroup(rest)
	if err != nil {
		return SymbolicRecord{}, err
	}
	op, err := parseOp(opText)
	if err != nil {
		return SymbolicRecord{}, err
	}
	rhsLC, err := parseLinComb(f, rhsGroup, names)
	if err != nil {
		return SymbolicRecord{}, err
	}
	return SymbolicRecord{Lhs: lhs, Rhs: rhsLC, Op: op}, nil
}

func parseOp(s string) (SymbolicOp, error) {
	switch strings.TrimSpace(s) {
	case "+":
		return OpAdd, nil
	case "*":
		return OpMul, nil
	case "/":
		return OpInv, nil
	case "radix":
		return OpSqrt, nil
	case "input":
		return OpInput, nil
	case "output":
		return OpOutput, nil
	default:
		return 0, diag.Errorf(diag.KindParse, "unknown symbolic operator %q", s)
	}
}

// splitOpAndGroup splits "OP (terms)" into the operator text and the
// inner contents of the following paren group.
func splitOpAndGroup(s string) (op, group string, err error) {
	open := strings.IndexByte(s, '(')
	if open < 0 {
		return "", "", diag.Errorf(diag.KindParse, "malformed symbolic rhs: %q", s)
	}
	op = strings.TrimSpace(s[:open])
	groups, err := extractParenGroups(s[open:], 1)
	if err != nil {
		return "", "", err
	}
	return op, groups[0], nil
}

// extractParenGroups extracts exactly n balanced top-level paren
// groups from s, in order, ignoring any trailing content.
func extractParenGroups(s string, n int) ([]string, error) {
	groups, _, err := extractParenGroupsWithRest(s, n)
	if err != nil {
		return nil, err
	}
	return groups, nil
}

func extractParenGroupsWithRest(s string, n int) ([]string, string, error) {
	var groups []string
	rest := s
	for len(groups) < n {
		open := strings.IndexByte(rest, '(')
		if open < 0 {
			return nil, "", diag.Errorf(diag.KindParse, "expected %d parenthesized groups, found %d in %q", n, len(groups), s)
		}
		depth := 0
		close := -1
		for i := open; i < len(rest); i++ {
			switch rest[i] {
			case '(':
				depth++
			case ')':
				depth--
				if depth == 0 {
					close = i
				}
			}
			if close >= 0 {
				break
			}
		}
		if close < 0 {
			return nil, "", diag.Errorf(diag.KindParse, "unbalanced parentheses in %q", s)
		}
		groups = append(groups, rest[open+1:close])
		rest = rest[close+1:]
	}
	return groups, rest, nil
}

func parseLinComb(f field.Field, s string, names map[string]uint32) (LinComb, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return nil, nil
	}
	terms := strings.Split(s, "+")
	out := make(LinComb, 0, len(terms))
	for _, t := range terms {
		term, err := parseTerm(f, strings.TrimSpace(t), names)
		if err != nil {
			return nil, err
		}
		out = append(out, term)
	}
	return out, nil
}

func parseTerm(f field.Field, s string, names map[string]uint32) (Term, error) {
	star := strings.IndexByte(s, '*')
	if star < 0 {
		return Term{}, diag.Errorf(diag.KindParse, "malformed term %q, expected C*V", s)
	}
	coefText := strings.TrimSpace(s[:star])
	varText := strings.TrimSpace(s[star+1:])

	coef, err := parseCoef(f, coefText)
	if err != nil {
		return Term{}, err
	}

	idx, ok := names[varText]
	if !ok {
		var err error
		idx, err = parseVarIndex(varText)
		if err != nil {
			return Term{}, diag.Errorf(diag.KindParse, "unknown variable %q", varText)
		}
	}
	return Term{Coef: coef, Index: idx}, nil
}

// parseCoef accepts both forms produced across this package's
// external interface: the hex-encoded field bytes this package's own
// renderer emits ("0x...", round-trips any Field), and a plain
// non-negative decimal integer literal, the hand-authored form
// spec.md §6 describes for backend constraint sources.
func parseCoef(f field.Field, s string) (field.Element, error) {
	if rest, ok := strings.CutPrefix(s, "0x"); ok {
		b, err := hex.DecodeString(rest)
		if err != nil {
			return nil, diag.Errorf(diag.KindParse, "malformed hex coefficient %q", s)
		}
		e, err := f.FromBytes(b)
		if err != nil {
			return nil, diag.Wrap(diag.KindParse, err, "decoding coefficient %q", s)
		}
		return e, nil
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return nil, diag.Errorf(diag.KindParse, "malformed coefficient %q", s)
	}
	return f.FromUint64(n), nil
}

func parseVarIndex(s string) (uint32, error) {
	if s == "one" {
		return OneIndex, nil
	}
	if !strings.HasPrefix(s, "x") {
		return 0, diag.Errorf(diag.KindParse, "expected one or xN, got %q", s)
	}
	n, err := strconv.ParseUint(s[1:], 10, 32)
	if err != nil {
		return 0, diag.Errorf(diag.KindParse, "malformed signal index %q", s)
	}
	return uint32(n), nil
}

