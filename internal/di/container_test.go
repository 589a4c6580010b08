package di_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omarluq/holicache/internal/compat"
	"github.com/omarluq/holicache/internal/content"
	"github.com/omarluq/holicache/internal/di"
	"github.com/omarluq/holicache/internal/generator"
)

// shutdownContainer shuts down the container and logs any error (for use in t.Cleanup).
func shutdownContainer(t *testing.T, container *di.Container) {
	t.Helper()
	if err := container.Shutdown(); err != nil {
		t.Logf("container shutdown: %v", err)
	}
}

const configTemplate = `
remote:
  enabled: false
local:
  path: %q
memory:
  mode: %s
engine:
  retry_attempts: %d
logging:
  level: error
  format: json
  output: stderr
server:
  listen: "127.0.0.1:0"
`

// createTempConfigFile writes a local-only config into a fresh temp dir.
func createTempConfigFile(t *testing.T, memoryMode string, retries int) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "holicache.yaml")
	writeConfig(t, path, filepath.Join(dir, "descriptions.json"), memoryMode, retries)
	return path
}

func writeConfig(t *testing.T, path, localPath, memoryMode string, retries int) {
	t.Helper()
	body := fmt.Sprintf(configTemplate, localPath, memoryMode, retries)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
}

func TestNewContainer(t *testing.T) {
	t.Parallel()

	t.Run("creates container with valid config", func(t *testing.T) {
		t.Parallel()
		container, err := di.NewContainer(createTempConfigFile(t, "disabled", 2))
		require.NoError(t, err)
		require.NotNil(t, container.Injector())
		assert.NoError(t, container.HealthCheck())
		assert.NoError(t, container.Shutdown())
	})

	t.Run("missing config file fails eagerly", func(t *testing.T) {
		t.Parallel()
		_, err := di.NewContainer(filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
	})

	t.Run("invalid config fails eagerly", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "holicache.yaml")
		require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: chatty\n"), 0o600))
		_, err := di.NewContainer(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "logging.level")
	})
}

func TestContainer_ResolvesServices(t *testing.T) {
	t.Parallel()

	container, err := di.NewContainer(createTempConfigFile(t, "single", 2))
	require.NoError(t, err)
	t.Cleanup(func() { shutdownContainer(t, container) })

	remoteSvc, err := di.Invoke[*di.RemoteService](container)
	require.NoError(t, err)
	assert.Nil(t, remoteSvc.Client, "remote disabled in config")

	healthSvc := di.MustInvoke[*di.HealthService](container)
	assert.Nil(t, healthSvc.Monitor)
	healthSvc.Start()

	memorySvc := di.MustInvoke[*di.MemoryService](container)
	assert.NotNil(t, memorySvc.Cache)

	engineSvc := di.MustInvoke[*di.EngineService](container)
	assert.False(t, engineSvc.Engine.Options().RemoteEnabled)

	ctx := context.Background()
	rec := content.Record{Holiday: "Obon", Country: "Japan", Locale: "ja", Body: "お盆", Confidence: 0.8}
	require.NoError(t, engineSvc.Engine.SetDescription(ctx, rec))
	got, ok := engineSvc.Engine.GetDescription(ctx, content.NewKey("Obon", "JP", "ja"))
	require.True(t, ok)
	assert.Equal(t, "お盆", got.Body)

	genSvc := di.MustInvoke[*di.GeneratorService](container)
	res, src, err := genSvc.Service.Resolve(ctx, content.NewKey("Chuseok", "South Korea", "en"))
	require.NoError(t, err)
	assert.Equal(t, generator.SourceGenerated, src)
	assert.Contains(t, res.Body, "Chuseok")

	metricsSvc := di.MustInvoke[*di.MetricsService](container)
	families, err := metricsSvc.Registry.Gatherer().Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)

	serverSvc := di.MustInvoke[*di.ServerService](container)
	assert.Equal(t, "127.0.0.1:0", serverSvc.Server.Addr())
}

func TestContainer_CuratedGenerator(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	curated := filepath.Join(dir, "curated.yaml")
	require.NoError(t, os.WriteFile(curated, []byte(`
- holiday: Hangul Day
  country: South Korea
  locale: ko
  body: 한글날은 한글 창제를 기념하는 날입니다.
`), 0o600))

	path := filepath.Join(dir, "holicache.yaml")
	body := fmt.Sprintf("remote:\n  enabled: false\nlocal:\n  path: %q\ngenerator:\n  static_path: %q\n  template: false\nlogging:\n  level: error\n  output: stderr\n",
		filepath.Join(dir, "d.json"), curated)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	container, err := di.NewContainer(path)
	require.NoError(t, err)
	t.Cleanup(func() { shutdownContainer(t, container) })

	svc := di.MustInvoke[*di.GeneratorService](container).Service
	rec, _, err := svc.Resolve(context.Background(), content.NewKey("Hangul Day", "KR", "ko"))
	require.NoError(t, err)
	assert.Contains(t, rec.Body, "한글날")

	_, _, err = svc.Resolve(context.Background(), content.NewKey("Obon", "Japan", "ko"))
	assert.ErrorIs(t, err, generator.ErrNoContent)
}

// Not parallel: the compat default is process-wide.
func TestContainer_InstallsCompatDefault(t *testing.T) {
	container, err := di.NewContainer(createTempConfigFile(t, "disabled", 2))
	require.NoError(t, err)

	engineSvc := di.MustInvoke[*di.EngineService](container)
	assert.Same(t, engineSvc.Facade, compat.Default())

	ctx := context.Background()
	require.NoError(t, compat.SetCachedDescription(ctx, "", "Diwali", "India", "en", "Festival of lights", 0.9))
	rec := compat.GetCachedDescription(ctx, "Diwali", "IN", "en")
	require.NotNil(t, rec)
	assert.Equal(t, "Festival of lights", rec.Body)

	require.NoError(t, container.Shutdown())
	assert.Nil(t, compat.Default())
}

// Not parallel: t.Setenv.
func TestContainer_DefaultsWithoutFile(t *testing.T) {
	t.Setenv("HOLICACHE_LOCAL_PATH", filepath.Join(t.TempDir(), "env.json"))
	t.Setenv("HOLICACHE_LOG_LEVEL", "error")

	container, err := di.NewContainer("")
	require.NoError(t, err)
	t.Cleanup(func() { shutdownContainer(t, container) })

	cfgSvc := di.MustInvoke[*di.ConfigService](container)
	assert.Empty(t, cfgSvc.Path())
	assert.Equal(t, "error", cfgSvc.Get().Logging.Level)
	assert.NoError(t, container.HealthCheck())
}

func TestContainer_HotReloadUpdatesEngine(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "holicache.yaml")
	localPath := filepath.Join(dir, "descriptions.json")
	writeConfig(t, path, localPath, "disabled", 2)

	container, err := di.NewContainer(path)
	require.NoError(t, err)
	t.Cleanup(func() { shutdownContainer(t, container) })

	cfgSvc := di.MustInvoke[*di.ConfigService](container)
	loggerSvc := di.MustInvoke[*di.LoggerService](container)
	engineSvc := di.MustInvoke[*di.EngineService](container)
	require.Equal(t, 2, engineSvc.Engine.Options().RetryAttempts)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	cfgSvc.StartWatching(ctx, loggerSvc.Logger)

	// Give the watcher a moment to register before writing.
	time.Sleep(50 * time.Millisecond)
	writeConfig(t, path, localPath, "disabled", 5)

	assert.Eventually(t, func() bool {
		return engineSvc.Engine.Options().RetryAttempts == 5
	}, 3*time.Second, 20*time.Millisecond)
	assert.Equal(t, 5, cfgSvc.Get().Engine.RetryAttempts)
}
