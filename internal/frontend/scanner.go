package frontend

import (
	"go/token"
	"unicode"
	"unicode/utf8"

	"github.com/zkavm/avmc/internal/diag"
)

// scanner turns source text into a tok stream. Statements are
// newline-terminated (spec.md §6: "a sequence of statements, one per
// line"), so newline is itself a significant token the parser uses to
// delimit a statement. Blank lines and lines that are entirely a
// comment still yield their newline token; the parser skips runs of
// newlines, so it never sees empty statements.
type scanner struct {
	file   *token.File
	src    string
	offset int
	err    error
}

func newScanner(file *token.File, src string) *scanner {
	return &scanner{file: file, src: src}
}

func (s *scanner) peekByte() byte {
	if s.offset >= len(s.src) {
		return 0
	}
	return s.src[s.offset]
}

func (s *scanner) pos() token.Pos { return s.file.Pos(s.offset) }

// next scans and returns the next token, skipping spaces/tabs and
// comments. '#' followed immediately (no space) by an identifier
// character starts a precompile name (`#write_output`); '#' followed
// by a space or anything else starts a line comment, matching
// spec.md §6's "#comment" convention.
func (s *scanner) next() tok {
	for {
		for s.offset < len(s.src) && (s.peekByte() == ' ' || s.peekByte() == '\t' || s.peekByte() == '\r') {
			s.offset++
		}
		if s.offset >= len(s.src) {
			return tok{kind: tEOF, pos: s.pos()}
		}
		c := s.peekByte()
		if c == '#' {
			nextIsIdentStart := s.offset+1 < len(s.src) && isIdentStart(rune(s.src[s.offset+1]))
			if nextIsIdentStart {
				start := s.pos()
				s.offset++
				return tok{kind: tHash, text: "#", pos: start}
			}
			for s.offset < len(s.src) && s.src[s.offset] != '\n' {
				s.offset++
			}
			continue
		}
		break
	}

	start := s.pos()
	c := s.peekByte()

	switch {
	case c == '\n':
		s.offset++
		return tok{kind: tNewline, text: "\n", pos: start}
	case c == '(':
		s.offset++
		return tok{kind: tLParen, text: "(", pos: start}
	case c == ')':
		s.offset++
		return tok{kind: tRParen, text: ")", pos: start}
	case c == '[':
		s.offset++
		return tok{kind: tLBrack, text: "[", pos: start}
	case c == ']':
		s.offset++
		return tok{kind: tRBrack, text: "]", pos: start}
	case c == '{':
		s.offset++
		return tok{kind: tLBrace, text: "{", pos: start}
	case c == '}':
		s.offset++
		return tok{kind: tRBrace, text: "}", pos: start}
	case c == ',':
		s.offset++
		return tok{kind: tComma, text: ",", pos: start}
	case c == '+':
		s.offset++
		return tok{kind: tPlus, text: "+", pos: start}
	case c == '-':
		s.offset++
		return tok{kind: tMinus, text: "-", pos: start}
	case c == '*':
		s.offset++
		return tok{kind: tStar, text: "*", pos: start}
	case c == '/':
		s.offset++
		return tok{kind: tSlash, text: "/", pos: start}
	case c == '=':
		s.offset++
		if s.peekByte() == '=' {
			s.offset++
			return tok{kind: tEqEq, text: "==", pos: start}
		}
		return tok{kind: tAssign, text: "=", pos: start}
	case c == '!':
		s.offset++
		if s.peekByte() == '=' {
			s.offset++
			return tok{kind: tNeq, text: "!=", pos: start}
		}
		s.err = diag.Errorf(diag.KindParse, "unexpected character '!' at %s", s.file.Position(start))
		return tok{kind: tEOF, pos: start}
	case c == '<':
		s.offset++
		if s.peekByte() == '=' {
			s.offset++
			return tok{kind: tLe, text: "<=", pos: start}
		}
		return tok{kind: tLt, text: "<", pos: start}
	case c == '>':
		s.offset++
		if s.peekByte() == '=' {
			s.offset++
			return tok{kind: tGe, text: ">=", pos: start}
		}
		return tok{kind: tGt, text: ">", pos: start}
	case isDigit(rune(c)):
		begin := s.offset
		for s.offset < len(s.src) && isDigit(rune(s.src[s.offset])) {
			s.offset++
		}
		return tok{kind: tInt, text: s.src[begin:s.offset], pos: start}
	case isIdentStart(rune(c)):
		begin := s.offset
		for s.offset < len(s.src) {
			r, size := utf8.DecodeRuneInString(s.src[s.offset:])
			if !isIdentPart(r) {
				break
			}
			s.offset += size
		}
		text := s.src[begin:s.offset]
		if kw, ok := keywords[text]; ok {
			return tok{kind: kw, text: text, pos: start}
		}
		return tok{kind: tIdent, text: text, pos: start}
	default:
		s.err = diag.Errorf(diag.KindParse, "unexpected character %q at %s", c, s.file.Position(start))
		s.offset++
		return tok{kind: tEOF, pos: start}
	}
}

func isDigit(r rune) bool      { return r >= '0' && r <= '9' }
func isIdentStart(r rune) bool { return r == '_' || unicode.IsLetter(r) }
func isIdentPart(r rune) bool  { return isIdentStart(r) || isDigit(r) }
