package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EnvProduction = "production"

	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderNone   = "none"
)

// Config holds application configuration.
type Config struct {
	Env                string
	Port               string
	CORSAllowOrigin    []string
	LogLevel           string
	DatabaseURL        string
	LLMProvider        string
	LLMModel           string
	OpenAIAPIKey       string
	GeminiAPIKey       string
	LLMTimeout         time.Duration
	RedisAddr          string
	RedisPassword      string
	RedisChannel       string
	JWTSecret          string
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	UIRedirectURL      string
}

// IsProduction reports whether the service runs with production guarantees.
func (c Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// fileConfig is the optional YAML file named by CONFIG_FILE. Environment
// variables take precedence over every key.
type fileConfig struct {
	Env               string   `yaml:"env"`
	Port              string   `yaml:"port"`
	CORSAllowOrigins  []string `yaml:"corsAllowOrigins"`
	LogLevel          string   `yaml:"logLevel"`
	DatabaseURL       string   `yaml:"databaseURL"`
	LLMProvider       string   `yaml:"llmProvider"`
	LLMModel          string   `yaml:"llmModel"`
	LLMTimeout        string   `yaml:"llmTimeout"`
	RedisAddr         string   `yaml:"redisAddr"`
	RedisChannel      string   `yaml:"redisChannel"`
	GoogleClientID    string   `yaml:"googleClientId"`
	GoogleRedirectURL string   `yaml:"googleRedirectURL"`
	UIRedirectURL     string   `yaml:"uiRedirectURL"`
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (Config, error) {
	// Best-effort load of local env files for dev convenience.
	if files := existing(".env", "cmd/.env"); len(files) > 0 {
		_ = godotenv.Load(files...)
	}

	file, err := loadFile(os.Getenv("CONFIG_FILE"))
	if err != nil {
		return Config{}, err
	}

	timeout, err := time.ParseDuration(getEnv("LLM_TIMEOUT", orDefault(file.LLMTimeout, "120s")))
	if err != nil {
		return Config{}, fmt.Errorf("config: invalid LLM_TIMEOUT: %w", err)
	}
	if timeout <= 0 {
		return Config{}, errors.New("config: LLM_TIMEOUT must be positive")
	}

	origins := strings.Join(file.CORSAllowOrigins, ",")
	provider, err := normalizeProvider(getEnv("LLM_PROVIDER", orDefault(file.LLMProvider, ProviderOpenAI)))
	if err != nil {
		return Config{}, err
	}

	return Config{
		Env:                normalizeEnv(getEnv("ENV", orDefault(file.Env, "dev"))),
		Port:               getEnv("PORT", orDefault(file.Port, "8080")),
		CORSAllowOrigin:    splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", orDefault(origins, "http://localhost:5173"))),
		LogLevel:           getEnv("LOG_LEVEL", orDefault(file.LogLevel, "info")),
		DatabaseURL:        getEnv("DATABASE_URL", file.DatabaseURL),
		LLMProvider:        provider,
		LLMModel:           getEnv("LLM_MODEL", file.LLMModel),
		OpenAIAPIKey:       os.Getenv("OPENAI_API_KEY"),
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		LLMTimeout:         timeout,
		RedisAddr:          getEnv("REDIS_ADDR", file.RedisAddr),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		RedisChannel:       getEnv("REDIS_CHANNEL", orDefault(file.RedisChannel, "resumes.changes")),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", file.GoogleClientID),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", file.GoogleRedirectURL),
		UIRedirectURL:      getEnv("UI_REDIRECT_URL", file.UIRedirectURL),
	}, nil
}

// Validate enforces the production requirements.
func (c Config) Validate() error {
	if !c.IsProduction() {
		return nil
	}
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required in production"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required in production"))
	}
	return errors.Join(errs...)
}

func loadFile(path string) (fileConfig, error) {
	var cfg fileConfig
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func existing(paths ...string) []string {
	var out []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func orDefault(val, def string) string {
	if strings.TrimSpace(val) != "" {
		return val
	}
	return def
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return EnvProduction
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeProvider(raw string) (string, error) {
	switch p := strings.ToLower(strings.TrimSpace(raw)); p {
	case ProviderOpenAI, ProviderGemini, ProviderNone:
		return p, nil
	case "":
		return ProviderNone, nil
	default:
		return "", fmt.Errorf("config: unsupported LLM_PROVIDER %q", raw)
	}
}
