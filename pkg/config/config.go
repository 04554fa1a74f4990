package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds the runtime settings of the server and CLI
type Config struct {
	Port            string        `validate:"required,numeric"`
	DatabaseURL     string        // postgres DSN; sqlite is used when empty
	DataPath        string        `validate:"required_without=DatabaseURL"`
	JWTSecret       string        `validate:"required"`
	APIMasterSecret string        `validate:"required"`
	AdminUsername   string        `validate:"required"`
	AdminPassword   string        `validate:"required,min=6"`
	GinMode         string        `validate:"omitempty,oneof=debug release test"`
	LogEnv          string        `validate:"required,alphanum"`
	LogDir          string        // empty disables the JSON log file
	GenerateTimeout time.Duration `validate:"gte=0"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// envPaths are tried in order; the first existing file wins
var envPaths = []string{".env", "../.env", "../../.env"}

// LoadDotEnv loads the first .env file found, if any
func LoadDotEnv() {
	for _, p := range envPaths {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			return
		}
	}
}

// Load reads the configuration from the environment after loading .env
func Load() (*Config, error) {
	LoadDotEnv()
	return FromEnv()
}

// FromEnv builds and validates the configuration from environment variables only
func FromEnv() (*Config, error) {
	timeout := time.Duration(0)
	if raw := os.Getenv("GENERATE_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			secs, convErr := strconv.Atoi(raw)
			if convErr != nil {
				return nil, fmt.Errorf("invalid GENERATE_TIMEOUT %q: %w", raw, err)
			}
			d = time.Duration(secs) * time.Second
		}
		timeout = d
	}

	cfg := &Config{
		Port:            getEnv("PORT", "8000"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		DataPath:        getEnv("DATA_PATH", "roster.db"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		APIMasterSecret: os.Getenv("API_MASTER_SECRET"),
		AdminUsername:   getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword:   getEnv("ADMIN_PASSWORD", "admin123"),
		GinMode:         os.Getenv("GIN_MODE"),
		LogEnv:          getEnv("LOG_ENV", "server"),
		LogDir:          os.Getenv("LOG_DIR"),
		GenerateTimeout: timeout,
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate validates the configuration struct
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
