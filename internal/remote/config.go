package remote

import "time"

// Default configuration values.
const (
	DefaultTable          = "holiday_descriptions"
	DefaultSchema         = "public"
	DefaultBatchThreshold = 20
	DefaultHealthTTLMS    = 60000
	DefaultEnabled        = true
	DefaultPageLimit      = 20
	MaxPageLimit          = 100
)

// Config defines the remote store connection.
type Config struct {
	Enabled        *bool  `yaml:"enabled" toml:"enabled"`
	URL            string `yaml:"url" toml:"url" env:"SUPABASE_URL"`
	ServiceKey     string `yaml:"service_key" toml:"service_key" env:"SUPABASE_SERVICE_ROLE_KEY"`
	Schema         string `yaml:"schema" toml:"schema"`
	Table          string `yaml:"table" toml:"table"`
	BatchThreshold int    `yaml:"batch_threshold" toml:"batch_threshold"`
	HealthTTLMS    int    `yaml:"health_ttl_ms" toml:"health_ttl_ms"`
}

// IsEnabled returns whether the remote tier should be used. Defaults to true.
func (c *Config) IsEnabled() bool {
	if c.Enabled == nil {
		return DefaultEnabled
	}
	return *c.Enabled
}

// IsConfigured reports whether connection details are present.
func (c *Config) IsConfigured() bool {
	return c.URL != "" && c.ServiceKey != ""
}

// GetTable returns the table name or DefaultTable.
func (c *Config) GetTable() string {
	if c.Table == "" {
		return DefaultTable
	}
	return c.Table
}

// GetSchema returns the schema or DefaultSchema.
func (c *Config) GetSchema() string {
	if c.Schema == "" {
		return DefaultSchema
	}
	return c.Schema
}

// GetBatchThreshold returns the request count above which GetBatch stops
// grouping. Default 20.
func (c *Config) GetBatchThreshold() int {
	if c.BatchThreshold <= 0 {
		return DefaultBatchThreshold
	}
	return c.BatchThreshold
}

// GetHealthTTL returns how long IsConnectionHealthy caches its answer.
// Default 60s.
func (c *Config) GetHealthTTL() time.Duration {
	if c.HealthTTLMS <= 0 {
		return time.Duration(DefaultHealthTTLMS) * time.Millisecond
	}
	return time.Duration(c.HealthTTLMS) * time.Millisecond
}
