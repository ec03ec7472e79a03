package kinds

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/teranos/minigen/engine"
	"github.com/teranos/minigen/errors"
)

// Format is a kind table file format.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", errors.WithHint(
		errors.NewKindTableError("%s: unknown kind table format", path),
		"use a .toml, .yaml or .yml file")
}

// Load reads a kind table file and builds its kinds.
func Load(path string) ([]*engine.Kind, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read kind table %s", path)
	}
	ks, err := Parse(data, format, filepath.Dir(path), os.ReadFile)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	return ks, nil
}

// Parse decodes a table and builds its kinds. Unknown keys are errors.
func Parse(data []byte, format Format, baseDir string, read func(string) ([]byte, error)) ([]*engine.Kind, error) {
	f, err := decode(data, format)
	if err != nil {
		return nil, err
	}
	if len(f.Kinds) == 0 {
		return nil, errors.NewKindTableError("no kinds declared")
	}
	out := make([]*engine.Kind, 0, len(f.Kinds))
	for _, spec := range f.Kinds {
		k, err := spec.Build(baseDir, read)
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, nil
}

func decode(data []byte, format Format) (File, error) {
	var f File
	switch format {
	case FormatTOML:
		meta, err := toml.Decode(string(data), &f)
		if err != nil {
			return File{}, errors.Wrapf(errors.ErrInvalidKindTable, "failed to parse TOML: %v", err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			sort.Strings(keys)
			return File{}, errors.NewKindTableError("unknown keys: %s", strings.Join(keys, ", "))
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
			return File{}, errors.Wrapf(errors.ErrInvalidKindTable, "failed to parse YAML: %v", err)
		}
	default:
		return File{}, errors.NewKindTableError("unsupported format %q", format)
	}
	return f, nil
}
