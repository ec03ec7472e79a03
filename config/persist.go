package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
	"github.com/pelletier/go-toml/v2"

	"github.com/teranos/minigen/errors"
	"github.com/teranos/minigen/logger"
)

// Marshal renders the configuration as a minigen.toml document.
func (c *Config) Marshal() ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal config to TOML")
	}
	return append([]byte("# minigen configuration\n\n"), data...), nil
}

// WriteFile writes the configuration to path. An existing file is kept as
// a rotating backup (.back1 newest, .back3 oldest).
func (c *Config) WriteFile(path string) error {
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), DefaultDirPermissions); err != nil {
		return errors.Wrapf(err, "failed to create directory for %s", path)
	}
	if err := createBackup(path); err != nil {
		return errors.Wrap(err, "failed to create backup")
	}
	if err := renameio.WriteFile(path, data, DefaultFilePermissions); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}

// createBackup rotates backups (.back1, .back2, .back3) before a config is
// overwritten.
func createBackup(configPath string) error {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil
	}

	// .back3 -> delete, .back2 -> .back3, .back1 -> .back2, current -> .back1
	back := func(n int) string { return fmt.Sprintf("%s.back%d", configPath, n) }

	if err := os.Remove(back(3)); err != nil && !os.IsNotExist(err) {
		logger.Warnw("Failed to delete old config backup", logger.FieldPath, back(3), logger.FieldError, err)
	}
	for n := 2; n >= 1; n-- {
		if _, err := os.Stat(back(n)); err == nil {
			if err := os.Rename(back(n), back(n+1)); err != nil {
				return errors.Wrapf(err, "failed to rotate .back%d to .back%d", n, n+1)
			}
		}
	}

	content, err := os.ReadFile(configPath)
	if err != nil {
		return errors.Wrap(err, "failed to read config for backup")
	}
	if err := os.WriteFile(back(1), content, DefaultFilePermissions); err != nil {
		return errors.Wrap(err, "failed to create .back1")
	}
	return nil
}
