package config

import (
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/teranos/minigen/errors"
	"github.com/teranos/minigen/host"
	"github.com/teranos/minigen/kinds"
	"github.com/teranos/minigen/logger"
	"github.com/teranos/minigen/version"
)

// Validate checks that the configuration is valid for the running binary.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Generator.Header) == "" {
		return errors.New("generator.header cannot be empty")
	}
	if strings.Contains(c.Generator.Header, "\n") {
		return errors.New("generator.header must be a single line")
	}
	if !strings.HasPrefix(c.Generator.Header, "//") {
		return errors.Newf("generator.header must be a line comment, got %q", c.Generator.Header)
	}

	switch c.Output.Mode {
	case ModeWrite, ModeCheck, ModeStdout:
	default:
		return errors.WithHint(
			errors.Newf("output.mode %q is not supported", c.Output.Mode),
			"use write, check or stdout")
	}

	if c.Log.Theme != "" && !slices.Contains(logger.Themes(), c.Log.Theme) {
		return errors.WithHintf(
			errors.Newf("log.theme %q is not supported", c.Log.Theme),
			"available themes: %s", strings.Join(logger.Themes(), ", "))
	}

	for _, name := range c.Kinds.Builtin {
		if _, err := kinds.Builtin(name); err != nil {
			return err
		}
	}
	if len(c.Kinds.Builtin) == 0 && len(c.Kinds.Tables) == 0 {
		return errors.WithHint(
			errors.New("no kinds configured"),
			"set kinds.builtin = [\"flux\"] or list kind tables in kinds.tables")
	}

	if _, err := host.ParseRoundMode(c.Host.Rounds); err != nil {
		return errors.Wrap(err, "host.rounds")
	}
	if c.Host.Jobs < 0 {
		return errors.Newf("host.jobs must be >= 0, got %d", c.Host.Jobs)
	}

	// 0 = default debounce, negative = invalid
	if c.Watch.DebounceMS < 0 {
		return errors.Newf("watch.debounce_ms must be >= 0, got %d", c.Watch.DebounceMS)
	}

	return c.CheckVersion(version.Version)
}

// CheckVersion checks generator.min_version against a binary version.
// Development builds satisfy every constraint.
func (c *Config) CheckVersion(v string) error {
	if c.Generator.MinVersion == "" {
		return nil
	}
	constraint, err := semver.NewConstraint(c.Generator.MinVersion)
	if err != nil {
		return errors.Wrapf(err, "generator.min_version %q is not a valid constraint", c.Generator.MinVersion)
	}
	if v == "" || v == version.DevVersion {
		return nil
	}
	current, err := semver.NewVersion(v)
	if err != nil {
		return errors.Wrapf(err, "binary version %q is not semver", v)
	}
	if !constraint.Check(current) {
		return errors.WithHintf(
			errors.Newf("minigen %s does not satisfy generator.min_version %q", current, c.Generator.MinVersion),
			"install a newer minigen, or relax min_version in %s", FileName)
	}
	return nil
}
