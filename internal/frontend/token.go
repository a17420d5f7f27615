package frontend

import "go/token"

// kind enumerates the source language's lexical tokens. The language
// is bespoke (not Go), so we hand-roll a scanner rather than reuse
// go/scanner — but keep go/token's Pos for position tracking, matching
// the teacher's own choice of go/token for identical purposes.
type kind int

const (
	tEOF kind = iota
	tIdent
	tInt
	tLParen
	tRParen
	tLBrack
	tRBrack
	tLBrace
	tRBrace
	tComma
	tAssign
	tPlus
	tMinus
	tStar
	tSlash
	tHash
	tEqEq
	tNeq
	tLt
	tGt
	tLe
	tGe
	tNewline

	tKwLet
	tKwStatic
	tKwLoop
	tKwIf
	tKwReturn
)

var keywords = map[string]kind{
	"let":    tKwLet,
	"static": tKwStatic,
	"loop":   tKwLoop,
	"if":     tKwIf,
	"return": tKwReturn,
}

type tok struct {
	kind kind
	text string
	pos  token.Pos
}
