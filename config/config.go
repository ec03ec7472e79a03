// Package config loads minigen's configuration from defaults, the user
// config, the nearest project minigen.toml and MINIGEN_* environment
// variables, in that order of precedence.
package config

import "github.com/spf13/viper"

// FileName is the project configuration file searched for upward from the
// working directory.
const FileName = "minigen.toml"

// EnvPrefix prefixes every environment override, e.g. MINIGEN_OUTPUT_MODE.
const EnvPrefix = "MINIGEN"

// Config represents the complete minigen configuration
type Config struct {
	Generator GeneratorConfig `mapstructure:"generator" toml:"generator" json:"generator" yaml:"generator"`
	Output    OutputConfig    `mapstructure:"output" toml:"output" json:"output" yaml:"output"`
	Log       LogConfig       `mapstructure:"log" toml:"log" json:"log" yaml:"log"`
	Kinds     KindsConfig     `mapstructure:"kinds" toml:"kinds" json:"kinds" yaml:"kinds"`
	Host      HostConfig      `mapstructure:"host" toml:"host" json:"host" yaml:"host"`
	Watch     WatchConfig     `mapstructure:"watch" toml:"watch" json:"watch" yaml:"watch"`

	// Path is the project file the configuration came from; empty when
	// only defaults, user config and environment applied.
	Path string `mapstructure:"-" toml:"-" json:"-" yaml:"-"`

	viper   *viper.Viper
	sources map[string]SourceInfo
}

// GeneratorConfig controls rendering
type GeneratorConfig struct {
	// Header is the first line of every generated file.
	Header string `mapstructure:"header" toml:"header" json:"header" yaml:"header"`
	// Format runs gofmt over generated Go.
	Format bool `mapstructure:"format" toml:"format" json:"format" yaml:"format"`
	// Docs also writes documentation companions.
	Docs bool `mapstructure:"docs" toml:"docs" json:"docs" yaml:"docs"`
	// MinVersion is a semver constraint on the minigen binary, e.g. ">= 0.3".
	MinVersion string `mapstructure:"min_version" toml:"min_version" json:"min_version" yaml:"min_version"`
}

// Output modes
const (
	ModeWrite  = "write"
	ModeCheck  = "check"
	ModeStdout = "stdout"
)

// OutputConfig decides where artifacts go
type OutputConfig struct {
	// Mode is write, check or stdout.
	Mode string `mapstructure:"mode" toml:"mode" json:"mode" yaml:"mode"`
	// CheckIgnore lists line prefixes ignored when comparing in check mode.
	CheckIgnore []string `mapstructure:"check_ignore" toml:"check_ignore" json:"check_ignore" yaml:"check_ignore"`
}

// LogConfig configures the logger
type LogConfig struct {
	JSON bool `mapstructure:"json" toml:"json" json:"json" yaml:"json"`
	// Theme is the console colour theme: everforest or gruvbox.
	Theme string `mapstructure:"theme" toml:"theme" json:"theme" yaml:"theme"`
}

// KindsConfig selects the kind table
type KindsConfig struct {
	// Builtin names built-in kind sets, e.g. ["flux"].
	Builtin []string `mapstructure:"builtin" toml:"builtin" json:"builtin" yaml:"builtin"`
	// Tables are TOML or YAML kind tables, relative to the config file.
	Tables []string `mapstructure:"tables" toml:"tables" json:"tables" yaml:"tables"`
}

// HostConfig configures package loading
type HostConfig struct {
	// Rounds is package or single.
	Rounds string   `mapstructure:"rounds" toml:"rounds" json:"rounds" yaml:"rounds"`
	Tags   []string `mapstructure:"tags" toml:"tags" json:"tags" yaml:"tags"`
	// Tests scans _test.go files too.
	Tests bool `mapstructure:"tests" toml:"tests" json:"tests" yaml:"tests"`
	// Jobs bounds parallel extraction; 0 means GOMAXPROCS.
	Jobs int `mapstructure:"jobs" toml:"jobs" json:"jobs" yaml:"jobs"`
}

// WatchConfig configures minigen watch
type WatchConfig struct {
	DebounceMS int `mapstructure:"debounce_ms" toml:"debounce_ms" json:"debounce_ms" yaml:"debounce_ms"`
}

// File system constants
const (
	DefaultDirPermissions  = 0755
	DefaultFilePermissions = 0644
)
