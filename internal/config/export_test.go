package config

import "github.com/omarluq/holicache/internal/remote"

// DetectFormat exports detectFormat for testing.
var DetectFormat = detectFormat

// MakeTestConfig returns a minimal valid Config with the remote tier disabled.
func MakeTestConfig() *Config {
	return &Config{
		Remote:  MakeTestRemoteConfig(),
		Logging: MakeTestLoggingConfig(),
		Server: ServerConfig{
			Listen:            "127.0.0.1:8790",
			ReadTimeoutMS:     0,
			ShutdownTimeoutMS: 0,
		},
	}
}

// MakeTestLoggingConfig returns a LoggingConfig with all fields set.
func MakeTestLoggingConfig() LoggingConfig {
	return LoggingConfig{
		Level:  "info",
		Format: "json",
		Output: "stdout",
		Pretty: false,
	}
}

// MakeTestRemoteConfig returns a disabled remote.Config.
func MakeTestRemoteConfig() remote.Config {
	return remote.Config{
		Enabled:        boolPtr(false),
		URL:            "",
		ServiceKey:     "",
		Schema:         "",
		Table:          "",
		BatchThreshold: 0,
		HealthTTLMS:    0,
	}
}

// boolPtr returns a pointer to a bool.
func boolPtr(b bool) *bool {
	return &b
}
