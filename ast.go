package agpconf

import (
	"strings"

	"github.com/hashicorp/hcl/v2"
)

// File is a parsed build script.
type File struct {
	Root     *Block // Root block; has no name and no parent
	Src      []byte // Script text the ranges point into
	Filename string // Name recorded in ranges
}

// text returns the verbatim source of rng.
func (f *File) text(rng hcl.Range) string {
	if f == nil || rng.Start.Byte < 0 || rng.End.Byte > len(f.Src) || rng.Start.Byte > rng.End.Byte {
		return ""
	}

	return string(f.Src[rng.Start.Byte:rng.End.Byte])
}

// BlockForm tells how a block was opened.
type BlockForm int

const (
	// BlockBare is `name { ... }`.
	BlockBare BlockForm = iota
	// BlockCall is `name(args) { ... }`.
	BlockCall
)

// Statement is one entry of a block body: *Assignment, *Call, *Block or *Raw.
type Statement interface {
	statement()
	// SrcRange returns the source range of the statement.
	SrcRange() hcl.Range
}

// Block is a named (or root) node with positional arguments and an ordered body.
type Block struct {
	Name   string      // Block name, possibly dotted; empty for the root
	Args   []Expr      // Positional arguments of the call form
	Body   []Statement // Statements in document order
	Form   BlockForm   // Bare or call form
	Range  hcl.Range   // Source range of the whole block
	parent *Block      // Enclosing block; navigation only
}

func (*Block) statement() {}

// SrcRange implements Statement.
func (b *Block) SrcRange() hcl.Range { return b.Range }

// Parent returns the enclosing block, or nil for the root.
func (b *Block) Parent() *Block { return b.parent }

// Path returns block names from the root (exclusive) down to b.
func (b *Block) Path() []string {
	var out []string
	for cur := b; cur != nil && cur.parent != nil; cur = cur.parent {
		out = append(out, cur.Name)
	}

	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}

	return out
}

// Blocks returns the direct child blocks named name.
func (b *Block) Blocks(name string) []*Block {
	var out []*Block
	for _, st := range b.Body {
		if child, ok := st.(*Block); ok && child.Name == name {
			out = append(out, child)
		}
	}

	return out
}

// AssignOp is the operator of an assignment.
type AssignOp string

const (
	// OpSet replaces the current value.
	OpSet AssignOp = "="
	// OpAppend appends to the current list value.
	OpAppend AssignOp = "+="
)

// Assignment is `key = expr` or `key += expr`.
type Assignment struct {
	Key   string    // Assigned key, possibly dotted
	Op    AssignOp  // Set or append
	Value Expr      // Right-hand side
	Local bool      // Declared with val/var
	Range hcl.Range // Source range
}

func (*Assignment) statement() {}

// SrcRange implements Statement.
func (a *Assignment) SrcRange() hcl.Range { return a.Range }

// Call is `name(args)` or the Groovy command form `name args`.
type Call struct {
	Name   string    // Called name, possibly dotted
	Args   []Expr    // Arguments
	Parens bool      // Arguments were parenthesized
	Range  hcl.Range // Source range
}

func (*Call) statement() {}

// SrcRange implements Statement.
func (c *Call) SrcRange() hcl.Range { return c.Range }

// Raw is a token run the parser could not give structure to. It is kept verbatim.
type Raw struct {
	Text  string    // Verbatim source text
	Range hcl.Range // Source range
}

func (*Raw) statement() {}

// SrcRange implements Statement.
func (r *Raw) SrcRange() hcl.Range { return r.Range }

// Expr is a value expression.
type Expr interface {
	expr()
	// SrcRange returns the source range of the expression.
	SrcRange() hcl.Range
}

// StringLit is a string literal.
type StringLit struct {
	Value string
	Range hcl.Range
}

// IntLit is an integer literal.
type IntLit struct {
	Value int64
	Lit   string // Source text, kept for literals that overflow
	Range hcl.Range
}

// BoolLit is true or false.
type BoolLit struct {
	Value bool
	Range hcl.Range
}

// IdentRef is a bare or dotted identifier used as a value.
type IdentRef struct {
	Name  string
	Range hcl.Range
}

// ListLit is listOf(...), setOf(...), arrayOf(...) or [...].
type ListLit struct {
	Kind  string // Constructor name, "[]" for brackets
	Elems []Expr
	Range hcl.Range
}

// CallExpr is a call used as a value, e.g. file("x").
type CallExpr struct {
	Name  string
	Args  []Expr
	Range hcl.Range
}

// ConcatExpr is `left + right`.
type ConcatExpr struct {
	Left, Right Expr
	Range       hcl.Range
}

// IndexExpr is `target[index]`.
type IndexExpr struct {
	Target Expr
	Index  Expr
	Range  hcl.Range
}

// MemberExpr is `target.name` or `target.name(args)` after a non-identifier target.
type MemberExpr struct {
	Target Expr
	Name   string
	Args   []Expr
	Call   bool
	Range  hcl.Range
}

// RawExpr is an expression the parser kept verbatim.
type RawExpr struct {
	Text  string
	Range hcl.Range
}

func (*StringLit) expr()  {}
func (*IntLit) expr()     {}
func (*BoolLit) expr()    {}
func (*IdentRef) expr()   {}
func (*ListLit) expr()    {}
func (*CallExpr) expr()   {}
func (*ConcatExpr) expr() {}
func (*IndexExpr) expr()  {}
func (*MemberExpr) expr() {}
func (*RawExpr) expr()    {}

func (e *StringLit) SrcRange() hcl.Range  { return e.Range }
func (e *IntLit) SrcRange() hcl.Range     { return e.Range }
func (e *BoolLit) SrcRange() hcl.Range    { return e.Range }
func (e *IdentRef) SrcRange() hcl.Range   { return e.Range }
func (e *ListLit) SrcRange() hcl.Range    { return e.Range }
func (e *CallExpr) SrcRange() hcl.Range   { return e.Range }
func (e *ConcatExpr) SrcRange() hcl.Range { return e.Range }
func (e *IndexExpr) SrcRange() hcl.Range  { return e.Range }
func (e *MemberExpr) SrcRange() hcl.Range { return e.Range }
func (e *RawExpr) SrcRange() hcl.Range    { return e.Range }

// splitDotted splits a dotted name into its segments.
func splitDotted(name string) []string {
	if name == "" {
		return nil
	}

	return strings.Split(name, ".")
}
