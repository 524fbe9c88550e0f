package agpconf

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/hashicorp/hcl/v2"
)

// ParseFile parses a build script into a generic block tree.
// Only lexing failures and unbalanced delimiters are fatal; anything else the
// parser cannot structure is kept as Raw statements or RawExpr values.
func ParseFile(src []byte, opt *ParseOptions) (*File, error) {
	popt := opt.normalize()
	if isBinaryScript(src) {
		return nil, ErrBinaryScript
	}

	toks, err := Tokenize(src, &popt)
	if err != nil {
		return nil, err
	}
	if err := checkDelimiters(toks); err != nil {
		return nil, err
	}

	f := &File{Src: src, Filename: popt.Filename}
	p := &parser{toks: toks, file: f, opt: popt}
	root := &Block{Form: BlockBare}
	p.parseBody(root)
	root.Range = hcl.Range{
		Filename: popt.Filename,
		Start:    hcl.Pos{Line: 1, Column: 1, Byte: 0},
		End:      toks[len(toks)-1].Range.End,
	}
	f.Root = root

	return f, nil
}

// parser builds a block tree from a balanced token slice.
type parser struct {
	toks []Token      // Tokens, terminated by TokEOF
	i    int          // Index of the next token
	file *File        // File being built, for verbatim text
	opt  ParseOptions // Options for the parser
}

// peek returns the next token without consuming it.
func (p *parser) peek() Token {
	return p.toks[p.i]
}

// peekAt returns the token n positions ahead without consuming anything.
func (p *parser) peekAt(n int) Token {
	if p.i+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}

	return p.toks[p.i+n]
}

// next consumes and returns the next token. TokEOF is never consumed.
func (p *parser) next() Token {
	tok := p.toks[p.i]
	if tok.Kind != TokEOF {
		p.i++
	}

	return tok
}

// prev returns the last consumed token.
func (p *parser) prev() Token {
	if p.i == 0 {
		return Token{}
	}

	return p.toks[p.i-1]
}

// sameLine reports whether tok starts on the line where the last consumed token ends.
func (p *parser) sameLine(tok Token) bool {
	return p.i > 0 && tok.Range.Start.Line == p.prev().Range.End.Line
}

// lineTail reports whether more tokens of the current logical line follow.
func (p *parser) lineTail() bool {
	tok := p.peek()
	if tok.Kind == TokEOF || tok.Kind == TokBlockClose || tok.Is(";") {
		return false
	}

	return p.sameLine(tok)
}

// parseBody parses statements into b until the closing brace (consumed) or end of input.
func (p *parser) parseBody(b *Block) Token {
	for {
		tok := p.peek()
		switch {
		case tok.Kind == TokEOF:
			return tok
		case tok.Kind == TokBlockClose:
			return p.next()
		case tok.Is(";"):
			p.next()
			continue
		}

		b.Body = append(b.Body, p.parseStatement(b))
	}
}

// parseStatement parses one statement of parent's body.
func (p *parser) parseStatement(parent *Block) Statement {
	tok := p.peek()
	if tok.Kind != TokIdent {
		return p.parseRaw()
	}

	// Kotlin local bindings: val x = ..., var x = ...
	if (tok.Lit == "val" || tok.Lit == "var") && p.peekAt(1).Kind == TokIdent && p.peekAt(2).Is("=") {
		p.next()
		key := p.next()
		p.next()
		value := p.parseValue()
		return &Assignment{Key: key.Lit, Op: OpSet, Value: value, Local: true, Range: hcl.RangeBetween(tok.Range, value.SrcRange())}
	}

	p.next()
	nt := p.peek()
	switch {
	case nt.Is("=") || nt.Is("+="):
		p.next()
		op := OpSet
		if nt.Lit == "+=" {
			op = OpAppend
		}
		value := p.parseValue()
		return &Assignment{Key: tok.Lit, Op: op, Value: value, Range: hcl.RangeBetween(tok.Range, value.SrcRange())}

	case nt.Kind == TokBlockOpen:
		return p.parseBlock(parent, tok, nil, BlockBare)

	case nt.Is("("):
		args, closing := p.parseArgs()
		if next := p.peek(); next.Kind == TokBlockOpen && p.sameLine(next) {
			return p.parseBlock(parent, tok, args, BlockCall)
		}
		if p.lineTail() {
			return p.rawFrom(tok)
		}
		return &Call{Name: tok.Lit, Args: args, Parens: true, Range: hcl.RangeBetween(tok.Range, closing.Range)}

	case !p.opt.DisableGroovy && p.sameLine(nt) && startsExpr(nt):
		args := p.parseCommandArgs()
		if p.lineTail() {
			return p.rawFrom(tok)
		}
		return &Call{Name: tok.Lit, Args: args, Range: hcl.RangeBetween(tok.Range, p.prev().Range)}

	case p.lineTail():
		return p.rawFrom(tok)

	default:
		// A bare name on its own line, e.g. mavenCentral.
		return &Call{Name: tok.Lit, Range: tok.Range}
	}
}

// parseBlock parses `{ body }` after the block name (and arguments) were consumed.
func (p *parser) parseBlock(parent *Block, name Token, args []Expr, form BlockForm) *Block {
	p.next() // consume '{'
	b := &Block{Name: name.Lit, Args: args, Form: form, parent: parent}
	closing := p.parseBody(b)
	b.Range = hcl.RangeBetween(name.Range, closing.Range)

	return b
}

// parseRaw keeps a statement that does not start with an identifier.
func (p *parser) parseRaw() Statement {
	first := p.peek()
	last := p.skipLine(p.skipGroup())
	rng := hcl.RangeBetween(first.Range, last.Range)

	return &Raw{Text: p.file.text(rng), Range: rng}
}

// rawFrom keeps the current logical line, starting at the already consumed token first, verbatim.
func (p *parser) rawFrom(first Token) Statement {
	last := p.skipLine(p.prev())
	rng := hcl.RangeBetween(first.Range, last.Range)

	return &Raw{Text: p.file.text(rng), Range: rng}
}

// parseValue parses the right-hand side of an assignment.
// Trailing tokens on the same line turn the whole value into a RawExpr.
func (p *parser) parseValue() Expr {
	first := p.peek()
	e := p.parseExpr()
	if !p.lineTail() {
		return e
	}

	last := p.skipLine(p.prev())
	rng := hcl.RangeBetween(first.Range, last.Range)
	return &RawExpr{Text: p.file.text(rng), Range: rng}
}

// parseCommandArgs parses Groovy command-call arguments: `name a, b`.
func (p *parser) parseCommandArgs() []Expr {
	var args []Expr
	for {
		args = append(args, p.parseExpr())
		if !p.peek().Is(",") {
			return args
		}
		// A trailing comma continues the argument list on the next line.
		p.next()
	}
}

// parseArgs parses a parenthesized argument list and returns the closing token.
func (p *parser) parseArgs() ([]Expr, Token) {
	p.next() // consume '('
	return p.parseList(")")
}

// parseList parses comma-separated expressions up to closer (consumed).
func (p *parser) parseList(closer string) ([]Expr, Token) {
	var out []Expr
	for {
		tok := p.peek()
		switch {
		case tok.Is(closer), tok.Kind == TokEOF:
			return out, p.next()
		case tok.Is(","):
			p.next()
			continue
		}

		e := p.parseExpr()
		if nt := p.peek(); !nt.Is(",") && !nt.Is(closer) && nt.Kind != TokEOF {
			// Named arguments, operators and the like are kept verbatim.
			last := p.prev()
			for nt := p.peek(); !nt.Is(",") && !nt.Is(closer) && nt.Kind != TokEOF; nt = p.peek() {
				last = p.skipGroup()
			}
			rng := hcl.RangeBetween(tok.Range, last.Range)
			e = &RawExpr{Text: p.file.text(rng), Range: rng}
		}

		out = append(out, e)
	}
}

// parseExpr parses `postfix { '+' postfix }`.
func (p *parser) parseExpr() Expr {
	left := p.parsePostfix()
	for tok := p.peek(); tok.Is("+") && p.sameLine(tok); tok = p.peek() {
		p.next()
		right := p.parsePostfix()
		left = &ConcatExpr{Left: left, Right: right, Range: hcl.RangeBetween(left.SrcRange(), right.SrcRange())}
	}

	return left
}

// parsePostfix parses a primary followed by index, member and cast suffixes.
func (p *parser) parsePostfix() Expr {
	e := p.parsePrimary()
	if _, ok := e.(*RawExpr); ok {
		return e
	}

	for {
		tok := p.peek()
		switch {
		case tok.Is("[") && p.sameLine(tok):
			p.next()
			idx := p.parseExpr()
			closing := p.skipTo("]")
			e = &IndexExpr{Target: e, Index: idx, Range: hcl.RangeBetween(e.SrcRange(), closing.Range)}

		case tok.Is(".") && p.peekAt(1).Kind == TokIdent:
			p.next()
			name := p.next()
			m := &MemberExpr{Target: e, Name: name.Lit, Range: hcl.RangeBetween(e.SrcRange(), name.Range)}
			if nt := p.peek(); nt.Is("(") && p.sameLine(nt) {
				args, closing := p.parseArgs()
				m.Args, m.Call = args, true
				m.Range = hcl.RangeBetween(e.SrcRange(), closing.Range)
			}
			e = m

		case tok.Kind == TokIdent && tok.Lit == "as" && p.sameLine(tok) && p.peekAt(1).Kind == TokIdent:
			// Casts do not change the value: `x as String`.
			p.next()
			p.next()

		default:
			return e
		}
	}
}

// parsePrimary parses a literal, identifier, call, list or parenthesized expression.
func (p *parser) parsePrimary() Expr {
	tok := p.peek()
	switch tok.Kind {
	case TokString:
		p.next()
		if tok.Template {
			// Templates are never expanded.
			return &RawExpr{Text: tok.Lit, Range: tok.Range}
		}
		return &StringLit{Value: tok.Val, Range: tok.Range}

	case TokNumber:
		p.next()
		n, err := strconv.ParseInt(strings.ReplaceAll(tok.Lit, "_", ""), 10, 64)
		if err != nil {
			return &RawExpr{Text: tok.Lit, Range: tok.Range}
		}
		return &IntLit{Value: n, Lit: tok.Lit, Range: tok.Range}

	case TokIdent:
		p.next()
		if tok.Lit == "true" || tok.Lit == "false" {
			return &BoolLit{Value: tok.Lit == "true", Range: tok.Range}
		}

		nt := p.peek()
		if !nt.Is("(") || !p.sameLine(nt) {
			return &IdentRef{Name: tok.Lit, Range: tok.Range}
		}

		args, closing := p.parseArgs()
		rng := hcl.RangeBetween(tok.Range, closing.Range)
		if lambda := p.peek(); lambda.Kind == TokBlockOpen && p.sameLine(lambda) {
			last := p.skipGroup()
			lrng := hcl.RangeBetween(lambda.Range, last.Range)
			args = append(args, &RawExpr{Text: p.file.text(lrng), Range: lrng})
			rng = hcl.RangeBetween(tok.Range, last.Range)
		}
		if isListConstructor(tok.Lit) {
			return &ListLit{Kind: tok.Lit, Elems: args, Range: rng}
		}
		return &CallExpr{Name: tok.Lit, Args: args, Range: rng}

	case TokBlockOpen:
		// Lambda in value position.
		last := p.skipGroup()
		rng := hcl.RangeBetween(tok.Range, last.Range)
		return &RawExpr{Text: p.file.text(rng), Range: rng}

	case TokSymbol:
		switch tok.Lit {
		case "[":
			p.next()
			elems, closing := p.parseList("]")
			return &ListLit{Kind: "[]", Elems: elems, Range: hcl.RangeBetween(tok.Range, closing.Range)}
		case "(":
			p.next()
			inner := p.parseExpr()
			p.skipTo(")")
			return inner
		case ",", ")", "]":
			return &RawExpr{Range: hcl.Range{Filename: tok.Range.Filename, Start: tok.Range.Start, End: tok.Range.Start}}
		}
	}

	if tok.Kind == TokEOF || tok.Kind == TokBlockClose {
		return &RawExpr{Range: hcl.Range{Filename: tok.Range.Filename, Start: tok.Range.Start, End: tok.Range.Start}}
	}

	p.next()
	return &RawExpr{Text: tok.Lit, Range: tok.Range}
}

// skipTo consumes tokens up to and including the closer at the current nesting level.
func (p *parser) skipTo(closer string) Token {
	for {
		tok := p.peek()
		if tok.Is(closer) || tok.Kind == TokEOF {
			return p.next()
		}
		p.skipGroup()
	}
}

// skipLine consumes the rest of the logical line that ends with last and returns the final token.
// Delimited groups are consumed whole, even across lines.
func (p *parser) skipLine(last Token) Token {
	for {
		tok := p.peek()
		if tok.Kind == TokEOF || tok.Kind == TokBlockClose || tok.Is(";") {
			return last
		}
		if tok.Range.Start.Line != last.Range.End.Line {
			return last
		}
		last = p.skipGroup()
	}
}

// skipGroup consumes one token, or a whole balanced group when the token opens one.
func (p *parser) skipGroup() Token {
	tok := p.next()
	if !isOpener(tok) {
		return tok
	}

	depth := 1
	last := tok
	for depth > 0 {
		t := p.next()
		if t.Kind == TokEOF {
			return last
		}
		switch {
		case isOpener(t):
			depth++
		case isCloser(t):
			depth--
		}
		last = t
	}

	return last
}

// checkDelimiters verifies that (), [] and {} are balanced and properly nested.
func checkDelimiters(toks []Token) error {
	var stack []Token
	for _, tok := range toks {
		switch {
		case isOpener(tok):
			stack = append(stack, tok)

		case isCloser(tok):
			if len(stack) == 0 {
				return &ParseError{Kind: UnbalancedDelimiter, Pos: tok.Range.Start, Msg: fmt.Sprintf("unexpected '%s'", tok.Lit)}
			}

			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if want := closerFor(top.Lit); want != tok.Lit {
				return &ParseError{
					Kind: UnbalancedDelimiter,
					Pos:  tok.Range.Start,
					Msg: fmt.Sprintf("expected '%s' to close '%s' opened at %d:%d, found '%s'",
						want, top.Lit, top.Range.Start.Line, top.Range.Start.Column, tok.Lit),
				}
			}
		}
	}

	if len(stack) > 0 {
		top := stack[len(stack)-1]
		return &ParseError{Kind: UnbalancedDelimiter, Pos: top.Range.Start, Msg: fmt.Sprintf("unclosed '%s'", top.Lit)}
	}

	return nil
}

// isOpener checks if a token opens a delimited group.
func isOpener(tok Token) bool {
	return tok.Kind == TokBlockOpen || tok.Is("(") || tok.Is("[")
}

// isCloser checks if a token closes a delimited group.
func isCloser(tok Token) bool {
	return tok.Kind == TokBlockClose || tok.Is(")") || tok.Is("]")
}

// closerFor returns the closing delimiter for an opening one.
func closerFor(open string) string {
	switch open {
	case "(":
		return ")"
	case "[":
		return "]"
	default:
		return "}"
	}
}

// startsExpr checks if a token can start a Groovy command-call argument.
func startsExpr(tok Token) bool {
	switch tok.Kind {
	case TokString, TokNumber, TokIdent:
		return true
	default:
		return tok.Is("[")
	}
}

// isListConstructor checks if a call name builds a list or set literal.
func isListConstructor(name string) bool {
	switch name {
	case "listOf", "setOf", "arrayOf", "mutableListOf", "mutableSetOf", "listOfNotNull":
		return true
	default:
		return false
	}
}

// isBinaryScript checks if the input is not UTF-8 text.
func isBinaryScript(src []byte) bool {
	return bytes.IndexByte(src, 0) >= 0 || !utf8.Valid(src)
}
