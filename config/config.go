package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config contains application configuration parameters
type Config struct {
	// Server configuration
	Port         string        `json:"port"`
	Host         string        `json:"host"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	IdleTimeout  time.Duration `json:"idle_timeout"`

	// Application URLs
	BaseURL string `json:"base_url"`

	// Database configuration
	DBName          string        `json:"db_name"`
	DBPath          string        `json:"db_path"`
	MaxOpenConns    int           `json:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime"`

	// Session configuration
	SessionSecret string        `json:"-"`
	SessionMaxAge time.Duration `json:"session_max_age"`

	// Scan cooldown
	CooldownWindow time.Duration `json:"cooldown_window"`
	RedisAddr      string        `json:"redis_addr"` // empty = in-memory limiter

	// Topic generation (Gemini)
	GeminiAPIKey  string        `json:"-"`
	GeminiModel   string        `json:"gemini_model"`
	GeminiBaseURL string        `json:"gemini_base_url"`
	LLMMaxRetries int           `json:"llm_max_retries"`
	LLMRetryDelay time.Duration `json:"llm_retry_delay"`

	// Profile storage
	MaxProfileBytes int `json:"max_profile_bytes"`

	// App configuration
	Environment string `json:"environment"` // development, production
	LogLevel    string `json:"log_level"`   // debug, info, warn, error
}

// NewConfig creates and returns a new configuration instance
func NewConfig() (*Config, error) {
	cfg := &Config{
		// Server defaults
		Port:         ":8080",
		Host:         "0.0.0.0",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,

		BaseURL: "http://localhost:8080",

		// Database defaults
		DBName:          "talkseed.db",
		DBPath:          "./data/",
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,

		// Session defaults
		SessionSecret: "dev-session-secret-change-in-production",
		SessionMaxAge: 86400 * time.Second,

		// Cooldown defaults
		CooldownWindow: 30 * time.Second,

		// Topic generation defaults
		GeminiModel:   "gemini-1.5-flash",
		GeminiBaseURL: "https://generativelanguage.googleapis.com",
		LLMMaxRetries: 2,
		LLMRetryDelay: 500 * time.Millisecond,

		// Profile defaults
		MaxProfileBytes: 8192,

		// App defaults
		Environment: "development",
		LogLevel:    "info",
	}

	// Override with environment variables if set
	if port := os.Getenv("PORT"); port != "" {
		if port[0] != ':' {
			cfg.Port = ":" + port
		} else {
			cfg.Port = port
		}
	}

	if host := os.Getenv("HOST"); host != "" {
		cfg.Host = host
	}

	if baseURL := os.Getenv("BASE_URL"); baseURL != "" {
		cfg.BaseURL = baseURL
	}

	if dbName := os.Getenv("DB_NAME"); dbName != "" {
		cfg.DBName = dbName
	}

	if dbPath := os.Getenv("DB_PATH"); dbPath != "" {
		cfg.DBPath = dbPath
	}

	if secret := os.Getenv("SESSION_SECRET"); secret != "" {
		cfg.SessionSecret = secret
	}

	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		cfg.RedisAddr = redisAddr
	}

	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		cfg.GeminiAPIKey = apiKey
	}

	if model := os.Getenv("GEMINI_MODEL"); model != "" {
		cfg.GeminiModel = model
	}

	if geminiURL := os.Getenv("GEMINI_BASE_URL"); geminiURL != "" {
		cfg.GeminiBaseURL = geminiURL
	}

	if env := os.Getenv("ENVIRONMENT"); env != "" {
		cfg.Environment = env
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		cfg.LogLevel = logLevel
	}

	// Parse numeric environment variables
	if maxOpenConns := os.Getenv("DB_MAX_OPEN_CONNS"); maxOpenConns != "" {
		if conns, err := strconv.Atoi(maxOpenConns); err == nil {
			cfg.MaxOpenConns = conns
		}
	}

	if maxIdleConns := os.Getenv("DB_MAX_IDLE_CONNS"); maxIdleConns != "" {
		if conns, err := strconv.Atoi(maxIdleConns); err == nil {
			cfg.MaxIdleConns = conns
		}
	}

	if maxRetries := os.Getenv("LLM_MAX_RETRIES"); maxRetries != "" {
		if retries, err := strconv.Atoi(maxRetries); err == nil {
			cfg.LLMMaxRetries = retries
		}
	}

	if maxBytes := os.Getenv("MAX_PROFILE_BYTES"); maxBytes != "" {
		if size, err := strconv.Atoi(maxBytes); err == nil {
			cfg.MaxProfileBytes = size
		}
	}

	if maxAge := os.Getenv("SESSION_MAX_AGE_SECONDS"); maxAge != "" {
		if seconds, err := strconv.Atoi(maxAge); err == nil {
			cfg.SessionMaxAge = time.Duration(seconds) * time.Second
		}
	}

	// Parse duration environment variables
	if readTimeout := os.Getenv("READ_TIMEOUT"); readTimeout != "" {
		if timeout, err := time.ParseDuration(readTimeout); err == nil {
			cfg.ReadTimeout = timeout
		}
	}

	if writeTimeout := os.Getenv("WRITE_TIMEOUT"); writeTimeout != "" {
		if timeout, err := time.ParseDuration(writeTimeout); err == nil {
			cfg.WriteTimeout = timeout
		}
	}

	if idleTimeout := os.Getenv("IDLE_TIMEOUT"); idleTimeout != "" {
		if timeout, err := time.ParseDuration(idleTimeout); err == nil {
			cfg.IdleTimeout = timeout
		}
	}

	if connMaxLifetime := os.Getenv("DB_CONN_MAX_LIFETIME"); connMaxLifetime != "" {
		if lifetime, err := time.ParseDuration(connMaxLifetime); err == nil {
			cfg.ConnMaxLifetime = lifetime
		}
	}

	if window := os.Getenv("COOLDOWN_WINDOW"); window != "" {
		if d, err := time.ParseDuration(window); err == nil {
			cfg.CooldownWindow = d
		}
	}

	if retryDelay := os.Getenv("LLM_RETRY_DELAY"); retryDelay != "" {
		if d, err := time.ParseDuration(retryDelay); err == nil {
			cfg.LLMRetryDelay = d
		}
	}

	return cfg, nil
}

// IsDevelopment returns true if the environment is development
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if the environment is production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// GetDatabasePath returns the full path to the database file
func (c *Config) GetDatabasePath() string {
	return c.DBPath + c.DBName
}

// GetServerAddress returns the server address
func (c *Config) GetServerAddress() string {
	return c.Host + c.Port
}

// ValidateConfig validates the configuration
func (c *Config) ValidateConfig() error {
	if c.SessionSecret == "" {
		return fmt.Errorf("session secret is required")
	}

	if c.IsProduction() && c.SessionSecret == "dev-session-secret-change-in-production" {
		return fmt.Errorf("default session secret cannot be used in production")
	}

	if c.BaseURL == "" {
		return fmt.Errorf("base URL is required")
	}

	if c.DBName == "" {
		return fmt.Errorf("database name is required")
	}

	if c.SessionMaxAge <= 0 {
		return fmt.Errorf("session max age must be positive")
	}

	if c.CooldownWindow <= 0 {
		return fmt.Errorf("cooldown window must be positive")
	}

	if c.MaxProfileBytes <= 0 {
		return fmt.Errorf("maximum profile size must be positive")
	}

	if c.LLMMaxRetries < 0 {
		return fmt.Errorf("llm retry count cannot be negative")
	}

	return nil
}
