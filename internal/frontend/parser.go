// Package frontend implements the source-language lexer and
// recursive-descent parser of spec.md §6 (operator precedence `* /`
// tighter than `+ -`, left-associative; vector literals; indexing;
// calls), producing internal/ast trees. Nothing else in the system
// can produce an ast.File, so SPEC_FULL.md supplements spec.md's
// "the parser" collaborator with this concrete implementation.
package frontend

import (
	"go/token"

	"github.com/zkavm/avmc/internal/ast"
	"github.com/zkavm/avmc/internal/diag"
	"github.com/zkavm/avmc/internal/srcfmt"
)

// Parse parses one source file's contents into an ast.File. name is
// used only for position reporting and becomes ast.File.Name (the
// function's name, normally supplied by the include resolver from the
// file's stem).
func Parse(fset *token.FileSet, name, src string) (*ast.File, error) {
	file := fset.AddFile(name, -1, len(src))
	sc := newScanner(file, src)

	var toks []tok
	for {
		t := sc.next()
		if sc.err != nil {
			return nil, sc.err
		}
		toks = append(toks, t)
		if t.kind == tEOF {
			break
		}
	}

	p := &parser{toks: toks, name: name}
	return p.parseFile()
}

type parser struct {
	toks []tok
	pos  int
	name string
}

func (p *parser) cur() tok  { return p.toks[p.pos] }
func (p *parser) at(k kind) bool { return p.cur().kind == k }
func (p *parser) advance() tok {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) expect(k kind, what string) (tok, error) {
	if !p.at(k) {
		return tok{}, diag.Errorf(diag.KindParse, "%s: expected %s, got %q", p.name, what, p.cur().text)
	}
	return p.advance(), nil
}

func (p *parser) skipNewlines() {
	for p.at(tNewline) {
		p.advance()
	}
}

func (p *parser) endOfStmt() error {
	if p.at(tEOF) || p.at(tNewline) || p.at(tRBrace) {
		return nil
	}
	return diag.Errorf(diag.KindParse, "%s: unexpected trailing tokens %q", p.name, p.cur().text)
}

func (p *parser) parseFile() (*ast.File, error) {
	f := &ast.File{Name: p.name}
	p.skipNewlines()

	if params, ok, err := p.tryHeader(); err != nil {
		return nil, err
	} else if ok {
		f.Params = params
	}

	for !p.at(tEOF) {
		p.skipNewlines()
		if p.at(tEOF) {
			break
		}
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		if stmt != nil {
			f.Stmts = append(f.Stmts, stmt)
		}
		if err := p.endOfStmt(); err != nil {
			return nil, err
		}
		p.skipNewlines()
	}
	return f, nil
}

// tryHeader attempts to parse a leading `(arg1, arg2, ...)` parameter
// line. It backtracks cleanly if the line turns out to be an ordinary
// parenthesized expression statement instead.
func (p *parser) tryHeader() ([]string, bool, error) {
	if !p.at(tLParen) {
		return nil, false, nil
	}
	save := p.pos
	p.advance()

	var params []string
	for !p.at(tRParen) {
		if !p.at(tIdent) {
			p.pos = save
			return nil, false, nil
		}
		params = append(params, p.advance().text)
		if p.at(tComma) {
			p.advance()
			continue
		}
		break
	}
	if !p.at(tRParen) {
		p.pos = save
		return nil, false, nil
	}
	p.advance()
	if !(p.at(tNewline) || p.at(tEOF)) {
		p.pos = save
		return nil, false, nil
	}
	p.skipNewlines()
	return params, true, nil
}

func (p *parser) parseStmt() (ast.Stmt, error) {
	switch p.cur().kind {
	case tKwLet:
		return p.parseLet()
	case tKwStatic:
		return p.parseStatic()
	case tKwLoop:
		return p.parseLoop()
	case tKwIf:
		return p.parseIf()
	case tKwReturn:
		return p.parseReturn()
	case tHash:
		return p.parsePrecompile()
	default:
		return p.parseAssignOrExpr()
	}
}

func (p *parser) parseLet() (ast.Stmt, error) {
	pos := p.advance().pos // 'let'
	name, err := p.expect(tIdent, "identifier")
	if err != nil {
		return nil, err
	}
	if p.at(tLBrack) {
		p.advance()
		length, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tRBrack, "]"); err != nil {
			return nil, err
		}
		return ast.NewVecDecl(pos, name.text, length), nil
	}
	if _, err := p.expect(tAssign, "="); err != nil {
		return nil, err
	}
	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return ast.NewLet(pos, name.text, value), nil
}

func (p *parser) parseStatic() (ast.Stmt, error) {
	pos := p.advance().pos // 'static'
	name, err := p.expect(tIdent, "identifier")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tAssign, "="); err != nil {
		return nil, err
	}
	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return ast.NewStatic(pos, name.text, value), nil
}

// parseAssignOrExpr disambiguates `name = expr`, `name[expr] = rhs`,
// and a bare expression statement by looking past a primary for `=`.
func (p *parser) parseAssignOrExpr() (ast.Stmt, error) {
	save := p.pos
	if p.at(tIdent) {
		nameTok := p.advance()
		if p.at(tAssign) {
			pos := p.advance().pos
			value, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			return ast.NewReassign(pos, nameTok.text, value), nil
		}
		if p.at(tLBrack) {
			p.advance()
			idx, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(tRBrack, "]"); err != nil {
				return nil, err
			}
			target := ast.NewIndex(nameTok.pos, ast.NewIdent(nameTok.pos, nameTok.text), idx)
			if p.at(tAssign) {
				pos := p.advance().pos
				value, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				return ast.NewVecAssign(pos, target, value), nil
			}
		}
	}
	p.pos = save
	x, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return ast.NewExprStmt(x.Pos(), x), nil
}

func (p *parser) parseLoop() (ast.Stmt, error) {
	pos := p.advance().pos // 'loop'
	bound, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return ast.NewLoop(pos, bound, body), nil
}

func (p *parser) parseIf() (ast.Stmt, error) {
	pos := p.advance().pos // 'if'
	if _, err := p.expect(tLParen, "("); err != nil {
		return nil, err
	}
	lhs, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	op, err := p.parseCompareOp()
	if err != nil {
		return nil, err
	}
	rhs, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tRParen, ")"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return ast.NewIf(pos, op, lhs, rhs, body), nil
}

func (p *parser) parseCompareOp() (ast.Op, error) {
	switch p.cur().kind {
	case tEqEq:
		p.advance()
		return ast.Eq, nil
	case tNeq:
		p.advance()
		return ast.Neq, nil
	case tLt:
		p.advance()
		return ast.Lt, nil
	case tGt:
		p.advance()
		return ast.Gt, nil
	case tLe:
		p.advance()
		return ast.Le, nil
	case tGe:
		p.advance()
		return ast.Ge, nil
	default:
		return 0, diag.Errorf(diag.KindParse, "%s: expected a comparison operator in if condition, got %q", p.name, p.cur().text)
	}
}

func (p *parser) parseReturn() (ast.Stmt, error) {
	pos := p.advance().pos // 'return'
	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return ast.NewReturn(pos, value), nil
}

func (p *parser) parsePrecompile() (ast.Stmt, error) {
	hashPos := p.advance().pos // '#'
	nameTok, err := p.expect(tIdent, "precompile name")
	if err != nil {
		return nil, err
	}
	args, err := p.parseArgs()
	if err != nil {
		return nil, err
	}
	var body []ast.Stmt
	if p.at(tLBrace) {
		body, err = p.parseBlock()
		if err != nil {
			return nil, err
		}
	}
	return ast.NewPrecompile(hashPos, nameTok.text, args, body), nil
}

func (p *parser) parseArgs() ([]ast.Expr, error) {
	if _, err := p.expect(tLParen, "("); err != nil {
		return nil, err
	}
	var args []ast.Expr
	for !p.at(tRParen) {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, e)
		if p.at(tComma) {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(tRParen, ")"); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *parser) parseBlock() ([]ast.Stmt, error) {
	if _, err := p.expect(tLBrace, "{"); err != nil {
		return nil, err
	}
	p.skipNewlines()
	var stmts []ast.Stmt
	for !p.at(tRBrace) {
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
		if err := p.endOfStmt(); err != nil {
			return nil, err
		}
		p.skipNewlines()
	}
	p.advance() // '}'
	return stmts, nil
}

// parseExpr parses `+ -` level, the loosest binding arithmetic
// operators, left-associative, with `* /` binding tighter (spec.md §6).
func (p *parser) parseExpr() (ast.Expr, error) {
	x, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.at(tPlus) || p.at(tMinus) {
		op := ast.Add
		if p.at(tMinus) {
			op = ast.Sub
		}
		pos := p.advance().pos
		y, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		x = ast.NewBinary(pos, op, x, y)
	}
	return x, nil
}

func (p *parser) parseTerm() (ast.Expr, error) {
	x, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.at(tStar) || p.at(tSlash) {
		op := ast.Mul
		if p.at(tSlash) {
			op = ast.Div
		}
		pos := p.advance().pos
		y, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		x = ast.NewBinary(pos, op, x, y)
	}
	return x, nil
}

// parseUnary handles a leading unary minus by desugaring `-x` to
// `0 - x`, since the source language has no separate unary operator
// in its grammar.
func (p *parser) parseUnary() (ast.Expr, error) {
	if p.at(tMinus) {
		pos := p.advance().pos
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		zero := ast.NewLiteral(pos, "0")
		return ast.NewBinary(pos, ast.Sub, zero, x), nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (ast.Expr, error) {
	switch p.cur().kind {
	case tInt:
		t := p.advance()
		return ast.NewLiteral(t.pos, t.text), nil
	case tLParen:
		p.advance()
		x, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tRParen, ")"); err != nil {
			return nil, err
		}
		return x, nil
	case tLBrack:
		pos := p.advance().pos
		var elems []ast.Expr
		for !p.at(tRBrack) {
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			elems = append(elems, e)
			if p.at(tComma) {
				p.advance()
				continue
			}
			break
		}
		if _, err := p.expect(tRBrack, "]"); err != nil {
			return nil, err
		}
		return ast.NewVectorLit(pos, elems), nil
	case tIdent:
		t := p.advance()
		if p.at(tLParen) {
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			return ast.NewCall(t.pos, t.text, args), nil
		}
		var x ast.Expr = ast.NewIdent(t.pos, t.text)
		for p.at(tLBrack) {
			p.advance()
			idx, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(tRBrack, "]"); err != nil {
				return nil, err
			}
			x = ast.NewIndex(t.pos, x, idx)
		}
		return x, nil
	default:
		return nil, diag.Errorf(diag.KindParse, "%s: unexpected token %q in expression", p.name, p.cur().text)
	}
}

// ParseCombined splits a `=====`-separated combined source (spec.md
// §6) into its named chunks, the first of which is the entry file and
// has no `stem.ext` header line of its own.
func ParseCombined(src string) (entry string, chunks map[string]string) {
	return srcfmt.Split(src)
}
