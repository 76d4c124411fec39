package routebot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/DenisKhanov/RouteBOT/internal/routebot/api/console"
	"github.com/DenisKhanov/RouteBOT/internal/routebot/config"
	"github.com/DenisKhanov/RouteBOT/internal/routebot/repository"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func consoleConfig() *config.Config {
	return &config.Config{
		EnvTransport:              config.TransportConsole,
		EnvStore:                  config.StoreMemory,
		EnvGreetingToken:          "hola",
		EnvDeepLinkBase:           "https://wa.me/",
		EnvMaxConversations:       10,
		EnvJanitorIntervalSeconds: 60,
	}
}

func TestServiceProvider_MemoryWiring(t *testing.T) {
	sp := NewServiceProvider(consoleConfig())

	engine, err := sp.Engine()
	require.NoError(t, err)
	require.NotNil(t, engine)
	assert.Contains(t, engine.Menu(), "Soporte")

	again, err := sp.Engine()
	require.NoError(t, err)
	assert.Same(t, engine, again)

	transport, err := sp.Transport()
	require.NoError(t, err)
	assert.IsType(t, &console.Console{}, transport)

	repo, err := sp.ConversationRepository()
	require.NoError(t, err)
	assert.IsType(t, &repository.Conversations{}, repo)
	assert.NotNil(t, sp.MemoryStore())

	assert.NotNil(t, sp.Handler())
	assert.NotNil(t, sp.Metrics())
	assert.Same(t, sp.StatusHub(), sp.StatusHub())
}

func TestServiceProvider_DirectoryFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "departments.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`departments:
  - label: ventas
    target: "+573000000001"
`), 0o600))

	cfg := consoleConfig()
	cfg.EnvDirectoryFile = path
	sp := NewServiceProvider(cfg)

	dir, err := sp.Directory()
	require.NoError(t, err)
	assert.Equal(t, []string{"ventas"}, dir.Labels())

	engine, err := sp.Engine()
	require.NoError(t, err)
	assert.Contains(t, engine.Menu(), "Ventas")
}

func TestServiceProvider_BrokenDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "departments.yaml")
	require.NoError(t, os.WriteFile(path, []byte("departments: [\n"), 0o600))

	cfg := consoleConfig()
	cfg.EnvDirectoryFile = path
	sp := NewServiceProvider(cfg)

	engine, err := sp.Engine()
	assert.Error(t, err)
	assert.Nil(t, engine)

	_, err = sp.Engine()
	assert.Error(t, err)
}

func TestServiceProvider_RedisWiring(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := consoleConfig()
	cfg.EnvStore = config.StoreRedis
	cfg.EnvRedisAddr = mr.Addr()
	sp := NewServiceProvider(cfg)

	repo, err := sp.ConversationRepository()
	require.NoError(t, err)
	assert.IsType(t, &repository.RedisConversations{}, repo)
	assert.Nil(t, sp.MemoryStore())

	_, err = sp.Engine()
	assert.NoError(t, err)
}

func TestServiceProvider_RedisUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := consoleConfig()
	cfg.EnvStore = config.StoreRedis
	cfg.EnvRedisAddr = addr
	sp := NewServiceProvider(cfg)

	_, err := sp.ConversationRepository()
	assert.Error(t, err)

	_, err = sp.Engine()
	assert.Error(t, err)
}
