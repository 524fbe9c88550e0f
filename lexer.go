package agpconf

import (
	"bufio"
	"bytes"
	"strings"
	"unicode"

	"github.com/hashicorp/hcl/v2"
)

// TokenKind represents a kind of a token.
type TokenKind int

// token kinds.
const (
	TokEOF        TokenKind = iota // End of input
	TokIdent                       // Identifier, possibly a dotted member chain
	TokString                      // String literal
	TokNumber                      // Integer literal
	TokSymbol                      // ( ) = , += + [ ] ; .
	TokBlockOpen                   // {
	TokBlockClose                  // }
	TokUnknown                     // Anything else; later stages decide
)

// String returns a readable name of the token kind.
func (k TokenKind) String() string {
	switch k {
	case TokEOF:
		return "EOF"
	case TokIdent:
		return "identifier"
	case TokString:
		return "string"
	case TokNumber:
		return "number"
	case TokSymbol:
		return "symbol"
	case TokBlockOpen:
		return "{"
	case TokBlockClose:
		return "}"
	default:
		return "unknown"
	}
}

// Token is a lexical unit of a build script.
type Token struct {
	Lit      string    `json:"lit"`                // Raw source text of the token
	Val      string    `json:"val,omitempty"`      // Decoded contents of a string literal
	Kind     TokenKind `json:"kind"`               // Token kind
	Template bool      `json:"template,omitempty"` // String contains $name or ${...} templates
	Range    hcl.Range `json:"-"`                  // Source range, end exclusive
}

// Is reports whether the token is the symbol (or block delimiter) lit.
func (t Token) Is(lit string) bool {
	switch t.Kind {
	case TokSymbol, TokBlockOpen, TokBlockClose:
		return t.Lit == lit
	default:
		return false
	}
}

// Tokenizer produces tokens lazily from an in-memory script.
// It can be restarted from the beginning with Reset but never mid-stream.
type Tokenizer struct {
	src  []byte        // Script text
	r    *bufio.Reader // Reader over src
	opt  ParseOptions  // Options for the tokenizer
	ch   rune          // Current character
	pos  hcl.Pos       // Position of ch
	next hcl.Pos       // Position after ch
	eof  bool          // End of input
}

// NewTokenizer creates a tokenizer over src.
func NewTokenizer(src []byte, opt *ParseOptions) *Tokenizer {
	t := &Tokenizer{src: src, opt: opt.normalize()}
	t.Reset()

	return t
}

// Tokenize returns all tokens of src, terminated by a TokEOF token.
func Tokenize(src []byte, opt *ParseOptions) ([]Token, error) {
	t := NewTokenizer(src, opt)
	var out []Token
	for {
		tok, err := t.Next()
		if err != nil {
			return nil, err
		}

		out = append(out, tok)
		if tok.Kind == TokEOF {
			return out, nil
		}
	}
}

// Reset rewinds the tokenizer to the start of the input.
func (t *Tokenizer) Reset() {
	t.r = bufio.NewReader(bytes.NewReader(t.src))
	t.next = hcl.Pos{Line: 1, Column: 1, Byte: 0}
	t.eof = false
	t.read()
	if t.ch == 0xFEFF {
		// Skip UTF-8 BOM if present.
		t.next.Column = 1
		t.read()
	}
}

// Next returns the next token. After the end of input it keeps returning TokEOF.
func (t *Tokenizer) Next() (Token, error) {
	if err := t.skipTrivia(); err != nil {
		return Token{}, err
	}

	start := t.pos
	if t.eof {
		return Token{Kind: TokEOF, Range: t.rangeFrom(start)}, nil
	}

	switch t.ch {
	case '{':
		t.read()
		return t.token(TokBlockOpen, "{", start), nil
	case '}':
		t.read()
		return t.token(TokBlockClose, "}", start), nil
	case '(', ')', '[', ']', ',', ';', '.':
		lit := string(t.ch)
		t.read()
		return t.token(TokSymbol, lit, start), nil
	case '=':
		t.read()
		if t.ch == '=' {
			t.read()
			return t.token(TokUnknown, "==", start), nil
		}
		return t.token(TokSymbol, "=", start), nil
	case '+':
		t.read()
		if t.ch == '=' {
			t.read()
			return t.token(TokSymbol, "+=", start), nil
		}
		return t.token(TokSymbol, "+", start), nil
	case '"':
		return t.readString(start)
	case '\'':
		if !t.opt.DisableGroovy {
			return t.readQuoted(start, '\'')
		}
	case '-':
		if isDigit(t.peekByte(0)) {
			t.read()
			word := "-" + t.readWord()
			if isInteger(word) {
				return t.token(TokNumber, word, start), nil
			}
			return t.token(TokUnknown, word, start), nil
		}
	}

	if isIdentStart(t.ch) {
		return t.token(TokIdent, t.readIdent(), start), nil
	}

	if unicode.IsDigit(t.ch) {
		// Words such as 21L or 1.0 are not integers; keep them as identifiers.
		word := t.readWord()
		if isInteger(word) {
			return t.token(TokNumber, word, start), nil
		}
		return t.token(TokIdent, word, start), nil
	}

	lit := string(t.ch)
	t.read()
	return t.token(TokUnknown, lit, start), nil
}

// token builds a token ending at the current position.
func (t *Tokenizer) token(kind TokenKind, lit string, start hcl.Pos) Token {
	return Token{Kind: kind, Lit: lit, Range: t.rangeFrom(start)}
}

// rangeFrom returns the range from start to the current position.
func (t *Tokenizer) rangeFrom(start hcl.Pos) hcl.Range {
	return hcl.Range{Filename: t.opt.Filename, Start: start, End: t.pos}
}

// read reads the next character.
func (t *Tokenizer) read() {
	t.pos = t.next
	ch, size, err := t.r.ReadRune()
	if err != nil {
		t.eof = true
		t.ch = 0
		return
	}

	t.next.Byte += size
	if ch == '\n' {
		t.next.Line++
		t.next.Column = 1
	} else {
		t.next.Column++
	}

	t.ch = ch
}

// peekByte returns the byte i positions after the current character without consuming it.
func (t *Tokenizer) peekByte(i int) byte {
	b, err := t.r.Peek(i + 1)
	if err != nil || len(b) <= i {
		return 0
	}

	return b[i]
}

// skipTrivia skips whitespace and comments.
func (t *Tokenizer) skipTrivia() error {
	for !t.eof {
		if unicode.IsSpace(t.ch) {
			t.read()
			continue
		}

		if t.opt.DisableComments || t.ch != '/' {
			return nil
		}

		switch t.peekByte(0) {
		case '/':
			for t.ch != '\n' && !t.eof {
				t.read()
			}
		case '*':
			if err := t.skipBlockComment(); err != nil {
				return err
			}
		default:
			return nil
		}
	}

	return nil
}

// skipBlockComment skips a /* */ comment. Kotlin block comments nest.
func (t *Tokenizer) skipBlockComment() error {
	start := t.pos
	t.read()
	t.read()
	depth := 1
	for depth > 0 {
		if t.eof {
			return &LexError{Kind: UnterminatedLiteral, Pos: start, Msg: "unterminated block comment"}
		}

		switch {
		case t.ch == '*' && t.peekByte(0) == '/':
			depth--
			t.read()
		case t.ch == '/' && t.peekByte(0) == '*':
			depth++
			t.read()
		}
		t.read()
	}

	return nil
}

// readString reads a double-quoted or raw (triple-quoted) string.
func (t *Tokenizer) readString(start hcl.Pos) (Token, error) {
	if t.peekByte(0) != '"' || t.peekByte(1) != '"' {
		return t.readQuoted(start, '"')
	}

	t.read()
	t.read()
	t.read()
	var b strings.Builder
	template := false
	for {
		if t.eof {
			return Token{}, &LexError{Kind: UnterminatedLiteral, Pos: start, Msg: "unterminated raw string"}
		}
		if t.ch == '"' && t.peekByte(0) == '"' && t.peekByte(1) == '"' {
			t.read()
			t.read()
			t.read()
			break
		}
		if t.atTemplate() {
			template = true
			if err := t.readTemplate(&b, start); err != nil {
				return Token{}, err
			}
			continue
		}
		b.WriteRune(t.ch)
		t.read()
	}

	tok := t.token(TokString, string(t.src[start.Byte:t.pos.Byte]), start)
	tok.Val = b.String()
	tok.Template = template
	return tok, nil
}

// readQuoted reads a single-line string delimited by quote.
// Only double-quoted strings expand templates.
func (t *Tokenizer) readQuoted(start hcl.Pos, quote rune) (Token, error) {
	t.read() // consume opening quote
	var b strings.Builder
	template := false
	for {
		if t.eof || t.ch == '\n' {
			return Token{}, &LexError{Kind: UnterminatedLiteral, Pos: start, Msg: "unterminated string"}
		}

		if t.ch == quote {
			t.read()
			break
		}

		// Handle escaped characters.
		if t.ch == '\\' {
			t.read()
			if t.eof {
				continue
			}
			switch t.ch {
			case 'n':
				b.WriteRune('\n')
			case 't':
				b.WriteRune('\t')
			case 'r':
				b.WriteRune('\r')
			default:
				b.WriteRune(t.ch)
			}
			t.read()
			continue
		}

		if quote == '"' && t.atTemplate() {
			template = true
			if err := t.readTemplate(&b, start); err != nil {
				return Token{}, err
			}
			continue
		}

		b.WriteRune(t.ch)
		t.read()
	}

	tok := t.token(TokString, string(t.src[start.Byte:t.pos.Byte]), start)
	tok.Val = b.String()
	tok.Template = template
	return tok, nil
}

// atTemplate checks if the current character starts a $name or ${...} template.
func (t *Tokenizer) atTemplate() bool {
	if t.ch != '$' {
		return false
	}

	c := t.peekByte(0)
	return c == '{' || c == '_' || (c < 0x80 && unicode.IsLetter(rune(c)))
}

// readTemplate copies a template into b. Braced templates may contain
// nested braces and string literals.
func (t *Tokenizer) readTemplate(b *strings.Builder, start hcl.Pos) error {
	b.WriteRune(t.ch) // $
	t.read()
	if t.ch != '{' {
		return nil
	}

	depth := 0
	var quote rune
	for {
		if t.eof {
			return &LexError{Kind: UnterminatedLiteral, Pos: start, Msg: "unterminated string template"}
		}

		ch := t.ch
		b.WriteRune(ch)
		t.read()

		switch {
		case quote != 0:
			if ch == '\\' && !t.eof {
				b.WriteRune(t.ch)
				t.read()
			} else if ch == quote {
				quote = 0
			}
		case ch == '"' || ch == '\'':
			quote = ch
		case ch == '{':
			depth++
		case ch == '}':
			depth--
			if depth == 0 {
				return nil
			}
		}
	}
}

// readIdent reads an identifier, including dotted member chains such as signingConfigs.getByName.
func (t *Tokenizer) readIdent() string {
	var b strings.Builder
	for !t.eof {
		if isIdentPart(t.ch) {
			b.WriteRune(t.ch)
			t.read()
			continue
		}

		if t.ch == '.' && isIdentStart(rune(t.peekByte(0))) {
			b.WriteRune(t.ch)
			t.read()
			continue
		}

		break
	}

	return b.String()
}

// readWord reads a run of identifier characters and dots.
func (t *Tokenizer) readWord() string {
	var b strings.Builder
	for !t.eof && (isIdentPart(t.ch) || t.ch == '.') {
		b.WriteRune(t.ch)
		t.read()
	}

	return b.String()
}

// isIdentStart checks if a character is a valid start of an identifier.
func isIdentStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_' || r == '$'
}

// isIdentPart checks if a character is a valid part of an identifier.
func isIdentPart(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '$'
}

// isDigit checks if a byte is an ASCII digit.
func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// isInteger checks if a word is an optionally signed decimal integer, underscores allowed between digits.
func isInteger(s string) bool {
	s = strings.TrimPrefix(s, "-")
	if s == "" || s[0] == '_' || s[len(s)-1] == '_' {
		return false
	}

	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) && s[i] != '_' {
			return false
		}
	}

	return true
}
