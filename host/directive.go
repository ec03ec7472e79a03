// Package host adapts Go source to the engine: it loads packages, reads
// //mini: directives from doc comments, turns annotated elements into
// declarations and feeds them to the engine round by round.
package host

import (
	"go/ast"
	"go/token"
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/teranos/minigen/decl"
	"github.com/teranos/minigen/errors"
)

// DirectivePrefix starts an annotation line in a doc comment.
const DirectivePrefix = "//mini:"

// Directive is one parsed //mini: line.
type Directive struct {
	Annotation decl.Annotation
	Pos        token.Pos
}

// ParseDirective parses a comment line. ok is false when the line is not a
// directive at all; err is set when it is one but cannot be read.
//
//	//mini:reducer priority=10 store=Counter
//	//mini:route path="/users/{id}" method=GET
//
// Values are integers, true/false, or strings; quoting forces a string.
// A bare key is the boolean true.
func ParseDirective(line string) (ann decl.Annotation, ok bool, err error) {
	if !strings.HasPrefix(line, DirectivePrefix) {
		return decl.Annotation{}, false, nil
	}
	body := line[len(DirectivePrefix):]
	words, err := shellquote.Split(body)
	if err != nil {
		return decl.Annotation{}, true, errors.Wrapf(err, "directive %q", line)
	}
	if len(words) == 0 || !validName(words[0]) {
		return decl.Annotation{}, true, errors.Newf("directive %q: annotation name must be letters, digits, '_', '-' or '.'", line)
	}

	ann = decl.Annotation{Name: words[0]}
	for _, w := range words[1:] {
		key, raw, hasValue := strings.Cut(w, "=")
		if key == "" || !validName(key) {
			return decl.Annotation{}, true, errors.Newf("directive %q: bad parameter %q", line, w)
		}
		if ann.Params == nil {
			ann.Params = make(map[string]decl.Value)
		}
		if _, dup := ann.Params[key]; dup {
			return decl.Annotation{}, true, errors.Newf("directive %q: parameter %s given twice", line, key)
		}
		switch {
		case !hasValue:
			ann.Params[key] = decl.Bool(true)
		case quoted(body, key):
			ann.Params[key] = decl.String(raw)
		default:
			ann.Params[key] = decl.ParseValue(raw)
		}
	}
	return ann, true, nil
}

// quoted reports whether key's value was written in quotes.
func quoted(body, key string) bool {
	return strings.Contains(body, key+`="`) || strings.Contains(body, key+`='`)
}

func validName(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-', r == '.':
		default:
			return false
		}
	}
	return true
}

// DirectiveError is a malformed directive at a position.
type DirectiveError struct {
	Pos token.Pos
	Err error
}

func (e *DirectiveError) Error() string { return e.Err.Error() }
func (e *DirectiveError) Unwrap() error { return e.Err }

// Directives reads every directive of a doc comment group.
func Directives(doc *ast.CommentGroup) ([]Directive, []*DirectiveError) {
	if doc == nil {
		return nil, nil
	}
	var out []Directive
	var errs []*DirectiveError
	for _, c := range doc.List {
		ann, ok, err := ParseDirective(c.Text)
		switch {
		case err != nil:
			errs = append(errs, &DirectiveError{Pos: c.Slash, Err: err})
		case ok:
			out = append(out, Directive{Annotation: ann, Pos: c.Slash})
		}
	}
	return out, errs
}
