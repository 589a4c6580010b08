package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/omarluq/holicache/internal/di"
)

// resolveConfigPath returns the --config value, or the first config file
// found in the default locations. An empty result runs on defaults.
func (o *rootOptions) resolveConfigPath() string {
	if o.configPath != "" {
		return o.configPath
	}
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	return findConfigInWithHome(wd, home)
}

// newContainer builds the DI container for the resolved config path.
func (o *rootOptions) newContainer() (*di.Container, error) {
	return di.NewContainer(o.resolveConfigPath())
}

// findConfigIn looks for the default config file in dir only.
func findConfigIn(dir string) string {
	return findConfigInWithHome(dir, "")
}

// findConfigInWithHome checks dir, then home/.config/holicache. It returns
// "" when neither has a config file.
func findConfigInWithHome(dir, home string) string {
	p := filepath.Join(dir, defaultConfigFile)
	if _, err := os.Stat(p); err == nil {
		return p
	}
	if home != "" {
		p := filepath.Join(home, ".config", appName, "config.yaml")
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// shutdownContainer releases the container, logging rather than returning
// the error so it never masks the command's own result.
func shutdownContainer(container *di.Container) {
	if err := container.Shutdown(); err != nil {
		log.Warn().Err(err).Msg("container shutdown failed")
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}
