package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/teranos/minigen/errors"
)

// UserConfigEnv overrides the location of the user config file.
const UserConfigEnv = "MINIGEN_USER_CONFIG"

// Load reads the configuration for a project rooted at or below dir: the
// nearest minigen.toml found walking up from dir, over the user config, over
// defaults, with MINIGEN_* environment variables on top.
func Load(dir string) (*Config, error) {
	return load(FindProjectConfig(dir))
}

// LoadFromFile loads the configuration with path as the project file.
func LoadFromFile(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to resolve %s", path)
	}
	return load(abs)
}

// FindProjectConfig searches for minigen.toml by walking up the directory
// tree from dir. Returns the path to the first file found, or empty string.
func FindProjectConfig(dir string) string {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return ""
		}
		dir = wd
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return ""
	}

	for {
		path := filepath.Join(dir, FileName)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			return ""
		}
		dir = parent
	}
}

// UserConfigPath returns the user config file location: $MINIGEN_USER_CONFIG
// when set, otherwise minigen/minigen.toml under the user config directory.
func UserConfigPath() string {
	if p, ok := os.LookupEnv(UserConfigEnv); ok {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "minigen", FileName)
}

// newViper sets up environment binding and defaults.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// load merges config files in precedence order: user < project < env vars.
func load(project string) (*Config, error) {
	v := newViper()
	sources := make(map[string]SourceInfo)

	files := []SourceInfo{{Source: SourceUser, Path: UserConfigPath()}}
	if project != "" {
		files = append(files, SourceInfo{Source: SourceProject, Path: project})
	}
	for _, f := range files {
		if f.Path == "" {
			continue
		}
		if _, err := os.Stat(f.Path); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, errors.Wrapf(err, "failed to stat config file %s", f.Path)
		}

		fv := viper.New()
		fv.SetConfigFile(f.Path)
		fv.SetConfigType("toml")
		if err := fv.ReadInConfig(); err != nil {
			return nil, errors.WithHint(
				errors.Wrapf(err, "failed to read config file %s", f.Path),
				"the file must be valid TOML; `minigen config init` writes a fresh one")
		}
		for _, key := range fv.AllKeys() {
			sources[key] = f
		}
		if err := v.MergeConfigMap(fv.AllSettings()); err != nil {
			return nil, errors.Wrapf(err, "failed to merge config file %s", f.Path)
		}
	}

	var c Config
	if err := v.UnmarshalExact(&c); err != nil {
		return nil, errors.WithHint(
			errors.Wrap(err, "failed to unmarshal config"),
			"check for misspelled keys; `minigen config show` lists every valid key")
	}
	c.Path = project
	c.viper = v
	c.sources = sources
	return &c, nil
}

// TablePaths returns the configured kind tables, relative paths resolved
// against the directory of the project config file.
func (c *Config) TablePaths() []string {
	out := make([]string, 0, len(c.Kinds.Tables))
	for _, p := range c.Kinds.Tables {
		if !filepath.IsAbs(p) && c.Path != "" {
			p = filepath.Join(filepath.Dir(c.Path), p)
		}
		out = append(out, p)
	}
	return out
}

// Root returns the directory of the project config file, or dir when there
// is none.
func (c *Config) Root(dir string) string {
	if c.Path != "" {
		return filepath.Dir(c.Path)
	}
	return dir
}
