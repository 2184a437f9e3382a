package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config aggregates every setting the service reads from the environment.
type Config struct {
	Env    string
	Debug  bool
	Server ServerConfig
	Model  ModelConfig
	Broker BrokerConfig
}

// Development reports whether the process runs in development mode.
func (c *Config) Development() bool {
	return c.Env == EnvDevelopment
}

// Load reads and validates configuration from environment variables.
func Load() (*Config, error) {
	env := getEnvOrDefault("APP_ENV", EnvDevelopment)
	if env != EnvDevelopment && env != EnvProduction {
		return nil, fmt.Errorf("invalid APP_ENV value %q: expected %s or %s", env, EnvDevelopment, EnvProduction)
	}

	debug, err := parseBoolEnv("DEBUG_ERRORS", env == EnvDevelopment)
	if err != nil {
		return nil, err
	}

	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	model, err := loadModelConfig(env)
	if err != nil {
		return nil, err
	}

	broker, err := loadBrokerConfig(env)
	if err != nil {
		return nil, err
	}

	return &Config{
		Env:    env,
		Debug:  debug,
		Server: server,
		Model:  model,
		Broker: broker,
	}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Accept ":8080" or "127.0.0.1:8080" verbatim.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// ModelConfig describes the upstream model API, or the mock strategy when
// Mock is set in development.
type ModelConfig struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature *float64
	MaxTokens   *int
	Timeout     time.Duration
	Mock        bool
}

func loadModelConfig(env string) (ModelConfig, error) {
	mock, err := parseBoolEnv("MOCK_LLM", false)
	if err != nil {
		return ModelConfig{}, err
	}

	temperature, err := parseOptionalFloatEnv("OPENAI_TEMPERATURE")
	if err != nil {
		return ModelConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("OPENAI_MAX_TOKENS")
	if err != nil {
		return ModelConfig{}, err
	}

	timeoutSeconds := 120
	if override, err := parseOptionalIntEnv("OPENAI_TIMEOUT"); err != nil {
		return ModelConfig{}, err
	} else if override != nil && *override > 0 {
		timeoutSeconds = *override
	}

	apiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	useMock := mock && env == EnvDevelopment
	if apiKey == "" && !useMock {
		return ModelConfig{}, fmt.Errorf("OPENAI_API_KEY is required unless MOCK_LLM=true in development")
	}

	return ModelConfig{
		APIKey:      apiKey,
		Model:       getEnvOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
		BaseURL:     strings.TrimSpace(os.Getenv("OPENAI_BASE_URL")),
		Temperature: temperature,
		MaxTokens:   maxTokens,
		Timeout:     time.Duration(timeoutSeconds) * time.Second,
		Mock:        useMock,
	}, nil
}

// BrokerConfig describes the Redis Streams relay. Empty Addr in development
// selects the in-process relay instead.
type BrokerConfig struct {
	Addr     string
	Password string
	DB       int
}

func loadBrokerConfig(env string) (BrokerConfig, error) {
	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" && env != EnvDevelopment {
		return BrokerConfig{}, fmt.Errorf("REDIS_ADDR is required outside development")
	}

	db := 0
	if override, err := parseOptionalIntEnv("REDIS_DB"); err != nil {
		return BrokerConfig{}, err
	} else if override != nil {
		db = *override
	}

	return BrokerConfig{
		Addr:     addr,
		Password: strings.TrimSpace(os.Getenv("REDIS_PASSWORD")),
		DB:       db,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
