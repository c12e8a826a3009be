// Package pathexpr parses textual field-path expressions into ordered
// field-access hops. An expression names struct fields by their Go (logical)
// names, separated by dots; segments that are not plain identifiers can be
// double-quoted:
//
//	Address.ZipCode
//	Meta."created-at"
//
// Parsed paths are resolved against record descriptors by the docmap package.
package pathexpr

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Path is a parsed field-path expression: an ordered sequence of field-access
// hops, outermost first. The zero value is the empty path.
type Path struct {
	Steps []string
}

// IsEmpty reports whether the path has no hops.
func (p Path) IsEmpty() bool {
	return len(p.Steps) == 0
}

// String renders the path in its textual form, quoting any segment that is
// not a plain identifier.
func (p Path) String() string {
	var b strings.Builder
	for i, step := range p.Steps {
		if i > 0 {
			b.WriteByte('.')
		}
		if isIdent(step) {
			b.WriteString(step)
		} else {
			b.WriteString(strconv.Quote(step))
		}
	}
	return b.String()
}

// --- Participle grammar ---

// pathAST is the grammar for a dotted field-path expression.
type pathAST struct {
	Head string   `parser:"@(Ident | String)"`
	Tail []string `parser:"( '.' @(Ident | String) )*"`
}

var pathLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "String", Pattern: `"(?:[^"\\]|\\.)*"`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Dot", Pattern: `\.`},
})

var pathParser = participle.MustBuild[pathAST](
	participle.Lexer(pathLexer),
	participle.Elide("Whitespace"),
	participle.Unquote("String"),
)

// Parse parses an expression such as "Address.ZipCode" into a Path.
func Parse(expr string) (Path, error) {
	if strings.TrimSpace(expr) == "" {
		return Path{}, fmt.Errorf("parse path: empty expression")
	}
	ast, err := pathParser.ParseString("path", expr)
	if err != nil {
		return Path{}, fmt.Errorf("parse path %q: %w", expr, err)
	}
	steps := make([]string, 0, 1+len(ast.Tail))
	steps = append(steps, ast.Head)
	steps = append(steps, ast.Tail...)
	return Path{Steps: steps}, nil
}

// MustParse is a helper that calls Parse and panics on error.
// It is intended for statically known expressions.
func MustParse(expr string) Path {
	p, err := Parse(expr)
	if err != nil {
		panic(err)
	}
	return p
}

// Of builds a Path directly from hop names, without parsing.
func Of(steps ...string) Path {
	return Path{Steps: steps}
}

// isIdent reports whether s matches the Ident token rule.
func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
