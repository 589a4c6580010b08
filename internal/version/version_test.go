package version_test

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/omarluq/holicache/internal/version"
)

// Not parallel: the tests mutate package variables.

func setVersion(t *testing.T, v, commit string) {
	t.Helper()
	origVersion, origCommit := version.Version, version.Commit
	t.Cleanup(func() {
		version.Version = origVersion
		version.Commit = origCommit
	})
	version.Version = v
	version.Commit = commit
}

func TestDefaultsNonEmpty(t *testing.T) {
	assert.NotEmpty(t, version.Version)
	assert.NotEmpty(t, version.Commit)
	assert.NotEmpty(t, version.BuildDate)
}

func TestShort(t *testing.T) {
	tests := []struct {
		name    string
		version string
		commit  string
		want    string
	}{
		{"dirty describe", "v0.0.11-20-ga961617-dirty", "a961617", "v0.0.11-a961617-20"},
		{"clean describe", "v1.2.3-4-gdeadbee", "deadbee", "v1.2.3-deadbee-4"},
		{"tag", "v1.2.3", "deadbee", "v1.2.3"},
		{"dev", "dev", "none", "dev"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setVersion(t, tt.version, tt.commit)
			assert.Equal(t, tt.want, version.Short())
		})
	}
}

func TestString(t *testing.T) {
	setVersion(t, "v1.0.0", "abc1234")
	got := version.String()
	assert.Contains(t, got, "v1.0.0")
	assert.Contains(t, got, "commit: abc1234")
	assert.Contains(t, got, runtime.Version())
}
