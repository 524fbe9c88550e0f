package agpconf

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
)

var (
	// ErrBinaryScript indicates the input is not UTF-8 text.
	ErrBinaryScript = errors.New("binary script")

	// ErrLex indicates a lexer failure.
	ErrLex = errors.New("lex error")

	// ErrParse indicates a parser failure.
	ErrParse = errors.New("parse error")

	// ErrResolve indicates a variant resolution failure.
	ErrResolve = errors.New("resolution error")
)

// LexErrorKind classifies lexer failures.
type LexErrorKind string

const (
	// UnterminatedLiteral is reported for a string or block comment without its closing delimiter.
	UnterminatedLiteral LexErrorKind = "UnterminatedLiteral"
)

// LexError is a malformed literal found by the tokenizer.
type LexError struct {
	Kind LexErrorKind // Failure kind
	Msg  string       // Human-readable detail
	Pos  hcl.Pos      // Position where the literal starts
}

// Error implements error.
func (e *LexError) Error() string {
	return fmt.Sprintf("%s at %d:%d: %s", ErrLex, e.Pos.Line, e.Pos.Column, e.Msg)
}

// Unwrap returns ErrLex.
func (e *LexError) Unwrap() error { return ErrLex }

// ParseErrorKind classifies parser failures.
type ParseErrorKind string

const (
	// UnbalancedDelimiter is reported for unclosed, unopened or mismatched (), [] and {}.
	UnbalancedDelimiter ParseErrorKind = "UnbalancedDelimiter"
)

// ParseError is a structural failure of the block parser.
type ParseError struct {
	Kind ParseErrorKind // Failure kind
	Msg  string         // Human-readable detail
	Pos  hcl.Pos        // Position of the offending delimiter
}

// Error implements error.
func (e *ParseError) Error() string {
	return fmt.Sprintf("%s at %d:%d: %s", ErrParse, e.Pos.Line, e.Pos.Column, e.Msg)
}

// Unwrap returns ErrParse.
func (e *ParseError) Unwrap() error { return ErrParse }

// ResolutionErrorKind classifies variant resolution failures.
type ResolutionErrorKind string

const (
	// MissingApplicationId is reported when neither a flavor nor defaultConfig sets applicationId.
	MissingApplicationId ResolutionErrorKind = "MissingApplicationId"
	// InvalidFieldValue is reported when the winning value of a field cannot be used.
	InvalidFieldValue ResolutionErrorKind = "InvalidFieldValue"
	// DanglingReference is reported for a signing config name that matches no entry.
	DanglingReference ResolutionErrorKind = "DanglingReference"
	// UnknownDimension is reported for a flavor whose dimension is not declared.
	UnknownDimension ResolutionErrorKind = "UnknownDimension"
	// IncompleteFlavorSelection is reported when a required dimension has no selected flavor.
	IncompleteFlavorSelection ResolutionErrorKind = "IncompleteFlavorSelection"
	// UnknownFlavor is reported for a requested flavor that is not declared.
	UnknownFlavor ResolutionErrorKind = "UnknownFlavor"
	// UnknownBuildType is reported for a requested build type that is not declared.
	UnknownBuildType ResolutionErrorKind = "UnknownBuildType"
	// ConflictingFlavors is reported when two requested flavors share a dimension.
	ConflictingFlavors ResolutionErrorKind = "ConflictingFlavors"
)

// ResolutionError is a failure to resolve one variant request.
type ResolutionError struct {
	Kind   ResolutionErrorKind // Failure kind
	Detail string              // Human-readable detail
	Path   string              // Offending declaration path, if any
}

// Error implements error.
func (e *ResolutionError) Error() string {
	var b strings.Builder
	b.WriteString(ErrResolve.Error())
	b.WriteString(": ")
	b.WriteString(string(e.Kind))
	if e.Path != "" {
		b.WriteString(" at ")
		b.WriteString(e.Path)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	return b.String()
}

// Unwrap returns ErrResolve.
func (e *ResolutionError) Unwrap() error { return ErrResolve }

// IsResolutionError reports whether err is a ResolutionError of the given kind.
func IsResolutionError(err error, kind ResolutionErrorKind) bool {
	var re *ResolutionError
	if !errors.As(err, &re) {
		return false
	}

	return re.Kind == kind
}

// resolveErrorf builds a ResolutionError.
func resolveErrorf(kind ResolutionErrorKind, path, format string, args ...any) error {
	return &ResolutionError{Kind: kind, Path: path, Detail: fmt.Sprintf(format, args...)}
}
