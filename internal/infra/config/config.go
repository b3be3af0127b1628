package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP        HTTPConfig        `yaml:"http"`
	LLM         LLMConfig         `yaml:"llm"`
	Recommender RecommenderConfig `yaml:"recommender"`
	Catalog     CatalogConfig     `yaml:"catalog"`
	Trending    TrendingConfig    `yaml:"trending"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string          `yaml:"address"`
	ReadTimeout    time.Duration   `yaml:"readTimeout"`
	WriteTimeout   time.Duration   `yaml:"writeTimeout"`
	AllowedOrigins []string        `yaml:"allowedOrigins"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// LLMConfig contains ChatGPT/OpenAI settings shared by both pipeline calls.
type LLMConfig struct {
	APIKey         string        `yaml:"apiKey"`
	BaseURL        string        `yaml:"baseUrl"`
	Model          string        `yaml:"model"`
	Temperature    float32       `yaml:"temperature"`
	RequestTimeout time.Duration `yaml:"requestTimeout"`
}

// RecommenderConfig controls the bouquet recommendation domain.
type RecommenderConfig struct {
	AnalyzerPrompt    string                `yaml:"analyzerPrompt"`
	ComposerPrompt    string                `yaml:"composerPrompt"`
	MaxStemsPerFlower int                   `yaml:"maxStemsPerFlower"`
	Tiers             map[string]TierConfig `yaml:"tiers"`
}

// TierConfig is the budget envelope for one tier.
type TierConfig struct {
	MinFlowerTypes int `yaml:"minFlowerTypes"`
	MaxFlowerTypes int `yaml:"maxFlowerTypes"`
	MinPrice       int `yaml:"minPrice"`
	MaxPrice       int `yaml:"maxPrice"`
}

// CatalogConfig contains the flower catalog storage settings.
type CatalogConfig struct {
	Postgres PostgresConfig `yaml:"postgres"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// TrendingConfig controls the occasion trending store.
type TrendingConfig struct {
	Redis        RedisConfig `yaml:"redis"`
	TopOccasions int         `yaml:"topOccasions"`
}

// RedisConfig contains connection information for the trending store.
type RedisConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitAndTrim(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = isTruthy(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_RPM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.RequestsPerMinute = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_BURST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.Burst = parsed
		}
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("LLM_TEMPERATURE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 32); err == nil {
			cfg.LLM.Temperature = float32(parsed)
		}
	}
	if v := os.Getenv("LLM_REQUEST_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.LLM.RequestTimeout = parsed
		}
	}
	if v := os.Getenv("RECOMMENDER_ANALYZER_PROMPT"); v != "" {
		cfg.Recommender.AnalyzerPrompt = v
	}
	if v := os.Getenv("RECOMMENDER_COMPOSER_PROMPT"); v != "" {
		cfg.Recommender.ComposerPrompt = v
	}
	if v := os.Getenv("RECOMMENDER_MAX_STEMS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Recommender.MaxStemsPerFlower = parsed
		}
	}
	if v := os.Getenv("CATALOG_POSTGRES_DSN"); v != "" {
		cfg.Catalog.Postgres.DSN = v
	}
	if v := os.Getenv("CATALOG_POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Catalog.Postgres.MaxConns = int32(parsed)
		}
	}
	if v := os.Getenv("CATALOG_POSTGRES_MIN_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Catalog.Postgres.MinConns = int32(parsed)
		}
	}
	if v := os.Getenv("TRENDING_REDIS_ENABLED"); v != "" {
		cfg.Trending.Redis.Enabled = isTruthy(v)
	}
	if v := os.Getenv("TRENDING_REDIS_ADDR"); v != "" {
		cfg.Trending.Redis.Addr = v
	}
	if v := os.Getenv("TRENDING_TOP_OCCASIONS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Trending.TopOccasions = parsed
		}
	}
}

func isTruthy(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

func splitAndTrim(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if clean := strings.TrimSpace(part); clean != "" {
			out = append(out, clean)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 30 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 60,
				Burst:             20,
			},
		},
		LLM: LLMConfig{
			Model:          "gpt-4o-mini",
			Temperature:    0.3,
			RequestTimeout: 30 * time.Second,
		},
		Recommender: RecommenderConfig{
			AnalyzerPrompt:    "Tu es un fleuriste expert en langage des fleurs. Analyze the customer's message and extract the emotions it conveys, the significant keywords, the occasion if one is identifiable, the overall sentiment, and a one-sentence summary of the intent.",
			ComposerPrompt:    "Tu es un fleuriste expert. Compose a bouquet from the proposed flowers that expresses the customer's intent. Assign a stem quantity to each flower you keep and explain the symbolic meaning of each choice and of the whole composition.",
			MaxStemsPerFlower: 12,
			Tiers: map[string]TierConfig{
				"economique": {MinFlowerTypes: 2, MaxFlowerTypes: 3, MinPrice: 3000, MaxPrice: 5000},
				"standard":   {MinFlowerTypes: 3, MaxFlowerTypes: 4, MinPrice: 5000, MaxPrice: 8000},
				"premium":    {MinFlowerTypes: 4, MaxFlowerTypes: 6, MinPrice: 8000, MaxPrice: 15000},
			},
		},
		Catalog: CatalogConfig{
			Postgres: PostgresConfig{
				MaxConns: 4,
				MinConns: 0,
			},
		},
		Trending: TrendingConfig{
			TopOccasions: 10,
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if strings.TrimSpace(c.LLM.Model) == "" {
		return errors.New("llm.model cannot be empty")
	}
	if c.LLM.RequestTimeout <= 0 {
		return errors.New("llm.requestTimeout must be positive")
	}
	if c.Recommender.AnalyzerPrompt == "" {
		return errors.New("recommender.analyzerPrompt cannot be empty")
	}
	if c.Recommender.ComposerPrompt == "" {
		return errors.New("recommender.composerPrompt cannot be empty")
	}
	if c.Recommender.MaxStemsPerFlower <= 0 {
		return errors.New("recommender.maxStemsPerFlower must be positive")
	}
	if len(c.Recommender.Tiers) == 0 {
		return errors.New("recommender.tiers cannot be empty")
	}
	for name, tier := range c.Recommender.Tiers {
		if tier.MinFlowerTypes <= 0 || tier.MaxFlowerTypes < tier.MinFlowerTypes {
			return fmt.Errorf("recommender.tiers.%s has an invalid flower type range", name)
		}
		if tier.MinPrice <= 0 || tier.MaxPrice < tier.MinPrice {
			return fmt.Errorf("recommender.tiers.%s has an invalid price range", name)
		}
	}
	if c.Trending.Redis.Enabled && strings.TrimSpace(c.Trending.Redis.Addr) == "" {
		return errors.New("trending.redis.addr cannot be empty when the redis store is enabled")
	}
	if c.Trending.TopOccasions < 0 {
		return errors.New("trending.topOccasions cannot be negative")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	return nil
}
