package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

const defaultConfigTemplate = `# holicache configuration
#
# Values may reference environment variables as ${VAR}. SUPABASE_URL,
# SUPABASE_SERVICE_ROLE_KEY, HOLICACHE_LOCAL_PATH, HOLICACHE_LOG_LEVEL,
# HOLICACHE_LISTEN and HOLICACHE_STATIC_PATH override their fields directly.

remote:
  enabled: true
  # url and service_key come from SUPABASE_URL and SUPABASE_SERVICE_ROLE_KEY
  table: holiday_descriptions
  batch_threshold: 20
  health_ttl_ms: 60000

local:
  backend: json
  path: data/holiday-descriptions.json
  read_ttl_ms: 300000
  touch_on_read: true

memory:
  mode: single
  ttl_ms: 300000
  ristretto:
    num_counters: 100000
    max_cost: 16777216
    buffer_items: 64

engine:
  fallback_to_local: true
  retry_attempts: 2
  retry_delay_ms: 1000

health:
  monitor:
    enabled: true
    interval_ms: 60000
    probe_timeout_ms: 5000
  circuit_breaker:
    failure_threshold: 5
    open_duration_ms: 30000
    half_open_probes: 3

generator:
  # static_path: data/curated.yaml
  template: true

logging:
  level: info
  format: text
  output: stdout

server:
  listen: 127.0.0.1:8790
  read_timeout_ms: 10000
  shutdown_timeout_ms: 10000
`

func newConfigInitCmd() *cobra.Command {
	var (
		output string
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a default config file",
		Long:  `Generate a default holicache configuration file at ~/.config/holicache/config.yaml`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if output == "" {
				home, err := os.UserHomeDir()
				if err != nil {
					return fmt.Errorf("failed to get home directory: %w", err)
				}
				output = filepath.Join(home, ".config", appName, "config.yaml")
			}
			return writeDefaultConfig(cmd, output, force)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output path (default: ~/.config/holicache/config.yaml)")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing config file")
	return cmd
}

func writeDefaultConfig(cmd *cobra.Command, output string, force bool) error {
	if _, err := os.Stat(output); err == nil && !force {
		return fmt.Errorf("config file already exists at %s (use --force to overwrite)", output)
	}

	if err := os.MkdirAll(filepath.Dir(output), 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(output, []byte(defaultConfigTemplate), 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ Config file created at %s\n", output)
	fmt.Fprintln(out, "\nNext steps:")
	fmt.Fprintln(out, "  1. Set SUPABASE_URL and SUPABASE_SERVICE_ROLE_KEY, or set remote.enabled: false")
	fmt.Fprintln(out, "  2. Validate with: holicache config validate")
	fmt.Fprintln(out, "  3. Start the ops server: holicache serve")
	return nil
}
