package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Data     DataConfig
	Logger   LoggerConfig
	Security SecurityConfig
}

type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

type DataConfig struct {
	InputFile        string
	OutputFile       string
	SheetName        string
	OrderDateColumn  string
	ReturnDateColumn string
	StatusColumn     string
	QuantityColumn   string
	CacheEnabled     bool
	CacheDir         string
}

type LoggerConfig struct {
	Level  string
	Format string
}

type SecurityConfig struct {
	EnableRateLimit bool
	RateLimitRPS    int
	RateLimitBurst  int
	AllowedOrigins  []string
	TrustedProxies  []string
}

var supportedExtensions = []string{".xlsx", ".csv"}

// Load reads configuration from the environment, after merging a .env file
// from the working directory when one exists.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnvString("SERVER_HOST", "localhost"),
			Port:            getEnvInt("SERVER_PORT", 8050),
			ReadTimeout:     getEnvDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:     getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Data: DataConfig{
			InputFile:        getEnvString("DATA_INPUT_FILE", "data/aug_dec_2016.xlsx"),
			OutputFile:       getEnvString("DATA_OUTPUT_FILE", "data/results.xlsx"),
			SheetName:        getEnvString("DATA_SHEET_NAME", ""),
			OrderDateColumn:  getEnvString("DATA_ORDER_DATE_COLUMN", "dateordered"),
			ReturnDateColumn: getEnvString("DATA_RETURN_DATE_COLUMN", "datereturned"),
			StatusColumn:     getEnvString("DATA_STATUS_COLUMN", "orderstatus"),
			QuantityColumn:   getEnvString("DATA_QUANTITY_COLUMN", "orders"),
			CacheEnabled:     getEnvBool("DATA_CACHE_ENABLED", true),
			CacheDir:         getEnvString("DATA_CACHE_DIR", ".cache"),
		},
		Logger: LoggerConfig{
			Level:  getEnvString("LOG_LEVEL", "info"),
			Format: getEnvString("LOG_FORMAT", "json"),
		},
		Security: SecurityConfig{
			EnableRateLimit: getEnvBool("SECURITY_RATE_LIMIT_ENABLED", true),
			RateLimitRPS:    getEnvInt("SECURITY_RATE_LIMIT_RPS", 100),
			RateLimitBurst:  getEnvInt("SECURITY_RATE_LIMIT_BURST", 10),
			AllowedOrigins:  getEnvStringSlice("SECURITY_ALLOWED_ORIGINS", []string{"http://localhost:8050"}),
			TrustedProxies:  getEnvStringSlice("SECURITY_TRUSTED_PROXIES", []string{"127.0.0.1"}),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Data.InputFile == "" {
		return fmt.Errorf("input file path cannot be empty")
	}

	if ext := strings.ToLower(filepath.Ext(c.Data.InputFile)); !slices.Contains(supportedExtensions, ext) {
		return fmt.Errorf("unsupported input file extension %q, must be one of: %s", ext, strings.Join(supportedExtensions, ", "))
	}

	if c.Data.OutputFile != "" {
		if ext := strings.ToLower(filepath.Ext(c.Data.OutputFile)); !slices.Contains(supportedExtensions, ext) {
			return fmt.Errorf("unsupported output file extension %q, must be one of: %s", ext, strings.Join(supportedExtensions, ", "))
		}
	}

	for name, col := range map[string]string{
		"order date":  c.Data.OrderDateColumn,
		"return date": c.Data.ReturnDateColumn,
		"status":      c.Data.StatusColumn,
		"quantity":    c.Data.QuantityColumn,
	} {
		if strings.TrimSpace(col) == "" {
			return fmt.Errorf("%s column name cannot be empty", name)
		}
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLogLevels, c.Logger.Level) {
		return fmt.Errorf("invalid log level %q, must be one of: %s", c.Logger.Level, strings.Join(validLogLevels, ", "))
	}

	validLogFormats := []string{"json", "text"}
	if !slices.Contains(validLogFormats, c.Logger.Format) {
		return fmt.Errorf("invalid log format %q, must be one of: %s", c.Logger.Format, strings.Join(validLogFormats, ", "))
	}

	if c.Security.RateLimitRPS <= 0 {
		return fmt.Errorf("rate limit RPS must be positive")
	}

	if c.Security.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit burst must be positive")
	}

	return nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}

func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
