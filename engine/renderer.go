package engine

import (
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/tools/imports"

	"github.com/teranos/minigen/errors"
)

// DefaultHeader marks generated Go files; hosts skip files carrying it.
const DefaultHeader = "// Code generated by minigen. DO NOT EDIT."

// Output is one file a renderer produces for a unit.
type Output struct {
	// Suffix is the artifact role, unique per unit ("go", "doc", ...).
	Suffix string
	// File is the file name, relative to the unit's package directory.
	File string
	Text string
}

// RenderOptions are generator-wide rendering settings.
type RenderOptions struct {
	Header string
	// Format runs gofmt-style formatting over .go outputs.
	Format bool
	// Docs asks kinds that support it for companion documentation.
	Docs bool
}

// DefaultRenderOptions returns the header and formatting minigen uses by default.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{Header: DefaultHeader, Format: true}
}

// Renderer turns a validated unit into outputs. Implementations must be
// deterministic: iterate members in the order the unit provides.
type Renderer interface {
	Render(u *Unit, opts RenderOptions) ([]Output, error)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(u *Unit, opts RenderOptions) ([]Output, error)

func (f RendererFunc) Render(u *Unit, opts RenderOptions) ([]Output, error) { return f(u, opts) }

// Artifact is one rendered file.
type Artifact struct {
	// ID is the unit key plus "#" plus the output suffix.
	ID   string
	Unit Key
	// Path is the file path: the unit package directory joined with the output file.
	Path string
	Text string
}

// ArtifactID builds the identity of a unit's output.
func ArtifactID(key Key, suffix string) string {
	return string(key) + "#" + suffix
}

// Render produces the artifacts of a validated unit, ordered by ID.
func Render(v Validated, opts RenderOptions) ([]Artifact, error) {
	u := v.Unit()
	if u == nil {
		return nil, errors.AssertionFailedf("render called without a validated unit")
	}
	outputs, err := u.Kind.Renderer.Render(u, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "render %s", u.Key)
	}

	dir := u.Package().Dir
	seen := make(map[string]bool, len(outputs))
	arts := make([]Artifact, 0, len(outputs))
	for _, out := range outputs {
		if out.Suffix == "" || out.File == "" {
			return nil, errors.Newf("render %s: output without suffix or file name", u.Key)
		}
		if seen[out.Suffix] {
			return nil, errors.Newf("render %s: suffix %q produced twice", u.Key, out.Suffix)
		}
		seen[out.Suffix] = true
		if escapes(out.File) {
			return nil, errors.Newf("render %s: output file %q must stay inside the package directory", u.Key, out.File)
		}

		text := out.Text
		if strings.HasSuffix(out.File, ".go") {
			text, err = finishGo(out.File, text, opts)
			if err != nil {
				return nil, errors.Wrapf(err, "render %s", u.Key)
			}
		}
		arts = append(arts, Artifact{
			ID:   ArtifactID(u.Key, out.Suffix),
			Unit: u.Key,
			Path: filepath.Join(dir, out.File),
			Text: text,
		})
	}
	sort.Slice(arts, func(i, j int) bool { return arts[i].ID < arts[j].ID })
	return arts, nil
}

// escapes reports whether a relative output file name leaves the package
// directory.
func escapes(file string) bool {
	if filepath.IsAbs(file) {
		return true
	}
	clean := filepath.Clean(file)
	return clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator))
}

// finishGo adds the generated-code header and formats the source.
func finishGo(file, text string, opts RenderOptions) (string, error) {
	if opts.Header != "" && !strings.HasPrefix(text, opts.Header) {
		text = opts.Header + "\n\n" + text
	}
	if !opts.Format {
		return text, nil
	}
	formatted, err := imports.Process(file, []byte(text), &imports.Options{
		FormatOnly: true,
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
	})
	if err != nil {
		return "", errors.Wrapf(err, "format %s", file)
	}
	return string(formatted), nil
}
