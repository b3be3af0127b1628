package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, ":8080", cfg.HTTP.Address)
	require.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	require.Equal(t, 30*time.Second, cfg.LLM.RequestTimeout)
	require.Equal(t, 12, cfg.Recommender.MaxStemsPerFlower)
	require.Len(t, cfg.Recommender.Tiers, 3)
	require.Equal(t, TierConfig{MinFlowerTypes: 3, MaxFlowerTypes: 4, MinPrice: 5000, MaxPrice: 8000}, cfg.Recommender.Tiers["standard"])
	require.Equal(t, 10, cfg.Trending.TopOccasions)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	payload := `
http:
  address: ":9090"
llm:
  model: gpt-4o
  requestTimeout: 10s
recommender:
  maxStemsPerFlower: 20
trending:
  topOccasions: 5
`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o600))
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, ":9090", cfg.HTTP.Address)
	require.Equal(t, "gpt-4o", cfg.LLM.Model)
	require.Equal(t, 10*time.Second, cfg.LLM.RequestTimeout)
	require.Equal(t, 20, cfg.Recommender.MaxStemsPerFlower)
	require.Equal(t, 5, cfg.Trending.TopOccasions)
	// Untouched sections keep their defaults.
	require.Len(t, cfg.Recommender.Tiers, 3)
}

func TestLoadEnvOverridesWin(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm:\n  model: gpt-4o\n"), 0o600))
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("LLM_MODEL", "gpt-4o-mini")
	t.Setenv("HTTP_ADDRESS", ":7070")
	t.Setenv("TRENDING_REDIS_ENABLED", "true")
	t.Setenv("TRENDING_REDIS_ADDR", "localhost:6379")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	require.Equal(t, ":7070", cfg.HTTP.Address)
	require.True(t, cfg.Trending.Redis.Enabled)
	require.Equal(t, "localhost:6379", cfg.Trending.Redis.Addr)
}

func TestValidateRejectsBadTier(t *testing.T) {
	cfg := defaultConfig()
	cfg.Recommender.Tiers["standard"] = TierConfig{MinFlowerTypes: 4, MaxFlowerTypes: 3, MinPrice: 5000, MaxPrice: 8000}
	require.Error(t, cfg.Validate())

	cfg = defaultConfig()
	cfg.Recommender.Tiers["premium"] = TierConfig{MinFlowerTypes: 4, MaxFlowerTypes: 6, MinPrice: 9000, MaxPrice: 8000}
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsMissingRedisAddr(t *testing.T) {
	cfg := defaultConfig()
	cfg.Trending.Redis.Enabled = true
	cfg.Trending.Redis.Addr = " "
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsEmptyPrompts(t *testing.T) {
	cfg := defaultConfig()
	cfg.Recommender.AnalyzerPrompt = ""
	require.Error(t, cfg.Validate())

	cfg = defaultConfig()
	cfg.Recommender.ComposerPrompt = ""
	require.Error(t, cfg.Validate())
}
