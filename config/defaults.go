package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/teranos/minigen/engine"
	"github.com/teranos/minigen/host"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Generator defaults
	v.SetDefault("generator.header", engine.DefaultHeader)
	v.SetDefault("generator.format", true)
	v.SetDefault("generator.docs", false)
	v.SetDefault("generator.min_version", "")

	// Output defaults
	v.SetDefault("output.mode", ModeWrite)
	v.SetDefault("output.check_ignore", []string{})

	// Log defaults
	v.SetDefault("log.json", false)
	v.SetDefault("log.theme", "everforest")

	// Kind table defaults: the flux kinds, no external tables
	v.SetDefault("kinds.builtin", []string{"flux"})
	v.SetDefault("kinds.tables", []string{})

	// Host defaults
	v.SetDefault("host.rounds", string(host.RoundsPerPackage))
	v.SetDefault("host.tags", []string{})
	v.SetDefault("host.tests", false)
	v.SetDefault("host.jobs", 0)

	// Watch defaults
	v.SetDefault("watch.debounce_ms", int(host.DefaultDebounce/time.Millisecond))
}

// Default returns the configuration with only defaults applied.
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		panic(fmt.Sprintf("config: defaults do not decode: %v", err))
	}
	c.viper = v
	return &c
}

// RenderOptions returns the engine render options for the generator section.
func (c *Config) RenderOptions() engine.RenderOptions {
	header := c.Generator.Header
	if header == "" {
		header = engine.DefaultHeader
	}
	return engine.RenderOptions{Header: header, Format: c.Generator.Format, Docs: c.Generator.Docs}
}

// Debounce returns the watch debounce period.
func (c *Config) Debounce() time.Duration {
	if c.Watch.DebounceMS <= 0 {
		return host.DefaultDebounce
	}
	return time.Duration(c.Watch.DebounceMS) * time.Millisecond
}

// GetLogTheme returns the log theme (default: everforest)
func (c *Config) GetLogTheme() string {
	if c.Log.Theme == "" {
		return "everforest"
	}
	return c.Log.Theme
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf("Config{Output: %s, Kinds: %v, Tables: %d, Rounds: %s}",
		c.Output.Mode, c.Kinds.Builtin, len(c.Kinds.Tables), c.Host.Rounds)
}
