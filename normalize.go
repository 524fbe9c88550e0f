package agpconf

import (
	"fmt"
	"slices"
	"strings"

	"github.com/hashicorp/hcl/v2"
)

// DeclStatus tells whether a declaration is part of the known vocabulary.
type DeclStatus string

const (
	// Recognized declarations are understood by the model builder.
	Recognized DeclStatus = "recognized"
	// Unrecognized declarations are kept and reported but not interpreted.
	Unrecognized DeclStatus = "unrecognized"
)

// Declaration is one setting with its fully qualified path.
// Assignment form and call form produce identical declarations.
type Declaration struct {
	Path   []string   `json:"path" yaml:"path"`                   // Block path, entries by their entry name
	Key    string     `json:"key" yaml:"key"`                     // Leaf key as written
	Value  Value      `json:"value" yaml:"value"`                 // Normalized value
	Op     AssignOp   `json:"op" yaml:"op"`                       // Set or append
	Status DeclStatus `json:"status" yaml:"status"`               // Vocabulary status
	Raw    string     `json:"raw,omitempty" yaml:"raw,omitempty"` // Verbatim source text of the value
	Range  hcl.Range  `json:"-" yaml:"-"`                         // Source range of the statement
}

// Equal compares path, key, value and operator. Syntactic form and position are ignored.
func (d Declaration) Equal(o Declaration) bool {
	return slices.Equal(d.Path, o.Path) && d.Key == o.Key && d.Op == o.Op && d.Value.Equal(o.Value)
}

// Scope returns the dotted block path.
func (d Declaration) Scope() string {
	return strings.Join(d.Path, ".")
}

// FullPath returns the dotted path including the key.
func (d Declaration) FullPath() string {
	if len(d.Path) == 0 {
		return d.Key
	}
	if d.Key == "" {
		return d.Scope()
	}

	return d.Scope() + "." + d.Key
}

// EntryForm tells how a container entry was named.
type EntryForm string

const (
	// EntryBlock is `debug { ... }`.
	EntryBlock EntryForm = "block"
	// EntryFactory is `create("debug") { ... }` and the other naming factories.
	EntryFactory EntryForm = "factory"
)

// Entry is a named entry of a buildTypes, productFlavors or signingConfigs container.
type Entry struct {
	Container string    `json:"container" yaml:"container"` // Container name
	Name      string    `json:"name" yaml:"name"`           // Entry name
	Path      []string  `json:"path" yaml:"path"`           // Path of the entry, ending with its name
	Form      EntryForm `json:"form" yaml:"form"`           // Naming form
	Range     hcl.Range `json:"-" yaml:"-"`                 // Source range
}

// Normalized is the flat output of Normalize.
type Normalized struct {
	Declarations []Declaration   // Declarations in document order
	Entries      []Entry         // Named container entries in document order
	Diagnostics  hcl.Diagnostics // Warnings about unrecognized or unparsed statements
}

// Normalize flattens a block tree into declarations and named entries. It never fails.
func Normalize(f *File) *Normalized {
	out := &Normalized{}
	if f == nil || f.Root == nil {
		return out
	}

	n := &normalizer{file: f, out: out}
	n.walk(f.Root.Body, nil, false)

	return out
}

// normalizer walks a block tree.
type normalizer struct {
	file *File
	out  *Normalized
}

// walk visits a block body depth first; path is the current declaration path.
// Declarations inside an opaque body are never recognized.
func (n *normalizer) walk(body []Statement, path []string, opaque bool) {
	for _, st := range body {
		switch st := st.(type) {
		case *Block:
			segs := splitDotted(st.Name)
			inner := opaque
			if cpath, child, ok := containerChild(path, segs); ok && !opaque {
				if name, form, ok := entryName(child, st.Args, st.Form == BlockBare); ok {
					entryPath := appendPath(cpath, name)
					n.addEntry(entryPath, form, st.Range)
					n.walk(st.Body, entryPath, false)
					continue
				}
				// all { }, configureEach { } and getByName(NAME) { } configure
				// entries that cannot be named statically.
				inner = true
			}

			if st.Form == BlockCall && len(st.Args) > 0 {
				// Calls with a trailing lambda still carry their arguments.
				n.emit(path, segs, n.argsValue(st.Args), OpSet, opaque, n.argsRaw(st.Args), st.Range)
			}
			n.walk(st.Body, appendPath(path, segs...), inner)

		case *Assignment:
			n.emit(path, splitDotted(st.Key), n.value(st.Value), st.Op, st.Local || opaque, n.file.text(st.Value.SrcRange()), st.Range)

		case *Call:
			segs := splitDotted(st.Name)
			if cpath, child, ok := containerChild(path, segs); ok && !opaque {
				if name, form, ok := entryName(child, st.Args, false); ok {
					n.addEntry(appendPath(cpath, name), form, st.Range)
					continue
				}
			}

			op := OpSet
			if len(segs) > 1 && isCollectionAdd(segs[len(segs)-1]) && isKnownKey(appendPath(path, segs[:len(segs)-2]...), segs[len(segs)-2]) {
				// flavorDimensions.add("env") appends to flavorDimensions.
				segs = segs[:len(segs)-1]
				op = OpAppend
			}
			n.emit(path, segs, n.argsValue(st.Args), op, opaque, n.argsRaw(st.Args), st.Range)

		case *Raw:
			rng := st.Range
			n.out.Declarations = append(n.out.Declarations, Declaration{
				Path:   slices.Clone(path),
				Value:  Value{},
				Op:     OpSet,
				Status: Unrecognized,
				Raw:    st.Text,
				Range:  rng,
			})
			n.out.Diagnostics = append(n.out.Diagnostics, &hcl.Diagnostic{
				Severity: hcl.DiagWarning,
				Summary:  "Unparsed statement",
				Detail:   fmt.Sprintf("The statement %q could not be structured; it is kept verbatim.", st.Text),
				Subject:  &rng,
			})
		}
	}
}

// emit appends a declaration for the dotted key segs under path.
// Unknown declarations are unrecognized whatever their key.
func (n *normalizer) emit(path, segs []string, v Value, op AssignOp, unknown bool, raw string, rng hcl.Range) {
	if len(segs) == 0 {
		return
	}

	full := appendPath(path, segs[:len(segs)-1]...)
	key := segs[len(segs)-1]
	status := Unrecognized
	if !unknown && isKnownKey(full, key) {
		status = Recognized
	}

	d := Declaration{Path: full, Key: key, Value: v, Op: op, Status: status, Raw: raw, Range: rng}
	n.out.Declarations = append(n.out.Declarations, d)

	if status == Unrecognized {
		n.out.Diagnostics = append(n.out.Diagnostics, &hcl.Diagnostic{
			Severity: hcl.DiagWarning,
			Summary:  "Unrecognized declaration",
			Detail:   fmt.Sprintf("%s is not part of the known vocabulary; it is kept as is.", d.FullPath()),
			Subject:  &rng,
		})
	}
}

// addEntry records a named container entry.
func (n *normalizer) addEntry(path []string, form EntryForm, rng hcl.Range) {
	n.out.Entries = append(n.out.Entries, Entry{
		Container: path[len(path)-2],
		Name:      path[len(path)-1],
		Path:      path,
		Form:      form,
		Range:     rng,
	})
}

// argsValue converts call arguments: none is null, one is its value, several form a list.
func (n *normalizer) argsValue(args []Expr) Value {
	switch len(args) {
	case 0:
		return Value{}
	case 1:
		return n.value(args[0])
	default:
		items := make([]Value, 0, len(args))
		for _, a := range args {
			items = append(items, n.value(a))
		}
		return ListValue(items...)
	}
}

// argsRaw returns the verbatim text spanning all arguments.
func (n *normalizer) argsRaw(args []Expr) string {
	if len(args) == 0 {
		return ""
	}

	return n.file.text(hcl.RangeBetween(args[0].SrcRange(), args[len(args)-1].SrcRange()))
}

// value converts an expression to a Value without evaluating anything.
func (n *normalizer) value(e Expr) Value {
	switch e := e.(type) {
	case *StringLit:
		return StringValue(e.Value)
	case *IntLit:
		return IntValue(e.Value)
	case *BoolLit:
		return BoolValue(e.Value)
	case *IdentRef:
		if e.Name == "null" {
			return Value{}
		}
		return RefValue(e.Name)
	case *ListLit:
		items := make([]Value, 0, len(e.Elems))
		for _, el := range e.Elems {
			items = append(items, n.value(el))
		}
		return ListValue(items...)
	case *CallExpr:
		args := make([]Value, 0, len(e.Args))
		for _, a := range e.Args {
			args = append(args, n.value(a))
		}
		return ExternalValue(e.Name, args...)
	case *ConcatExpr:
		return concat(n.value(e.Left), n.value(e.Right))
	case *IndexExpr:
		// x["k"] is x.get("k").
		if ref, ok := e.Target.(*IdentRef); ok {
			return ExternalValue(ref.Name+".get", n.value(e.Index))
		}
		return ExternalValue("get", n.value(e.Target), n.value(e.Index))
	case *MemberExpr:
		if !e.Call {
			return RefValue(n.file.text(e.Range))
		}
		args := []Value{n.value(e.Target)}
		for _, a := range e.Args {
			args = append(args, n.value(a))
		}
		return ExternalValue(e.Name, args...)
	case *RawExpr:
		if e.Text == "" {
			return Value{}
		}
		return RefValue(e.Text)
	default:
		return Value{}
	}
}

// concat joins two values: strings concatenate, lists append.
func concat(l, r Value) Value {
	switch {
	case l.Kind == ValueString && r.Kind == ValueString:
		return StringValue(l.Str + r.Str)
	case l.Kind == ValueList:
		items := slices.Clone(l.List)
		return ListValue(append(items, r.Items()...)...)
	case r.Kind == ValueList:
		return ListValue(append([]Value{l}, r.List...)...)
	default:
		return ExternalValue("plus", l, r)
	}
}

// containerChild splits a block or call name written as a container child:
// debug inside buildTypes, or buildTypes.getByName. It returns the container path and the child name.
func containerChild(path, segs []string) ([]string, string, bool) {
	switch {
	case len(segs) == 1 && len(path) > 0 && isContainer(path[len(path)-1]):
		return path, segs[0], true
	case len(segs) > 1 && isContainer(segs[len(segs)-2]):
		return appendPath(path, segs[:len(segs)-1]...), segs[len(segs)-1], true
	default:
		return nil, "", false
	}
}

// entryName returns the entry name of a container child: `debug { }` or `create("debug")`.
func entryName(name string, args []Expr, bare bool) (string, EntryForm, bool) {
	if bare {
		if strings.Contains(name, ".") || isWildcard(name) || isEntryFactory(name) {
			return "", "", false
		}
		return name, EntryBlock, true
	}

	if !isEntryFactory(name) || len(args) == 0 {
		return "", "", false
	}
	s, ok := args[0].(*StringLit)
	if !ok || s.Value == "" {
		return "", "", false
	}

	return s.Value, EntryFactory, true
}

// appendPath returns a fresh slice of path followed by segs.
func appendPath(path []string, segs ...string) []string {
	out := make([]string, 0, len(path)+len(segs))
	out = append(out, path...)
	return append(out, segs...)
}
