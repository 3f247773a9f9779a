package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config defines server configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	DB         DBConfig         `yaml:"db"`
	Log        LogConfig        `yaml:"log"`
	Images     ImageConfig      `yaml:"images"`
	Recognizer RecognizerConfig `yaml:"recognizer"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DBConfig struct {
	Path string `yaml:"path"`
	// OpTimeout bounds each ledger/query store operation.
	OpTimeout time.Duration `yaml:"op_timeout"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type ImageConfig struct {
	Dir string `yaml:"dir"`
}

type RecognizerConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// Load reads configuration from an optional .env file, an optional YAML
// file and environment variables, in increasing precedence.
func Load() (Config, error) {
	// Local development convenience; absence is not an error.
	_ = godotenv.Load()

	cfg := Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		DB: DBConfig{
			Path:      "parkledger.db",
			OpTimeout: 5 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
		Images: ImageConfig{
			Dir: "recognized_plates",
		},
		Recognizer: RecognizerConfig{
			URL:     "http://127.0.0.1:5000",
			Timeout: 10 * time.Second,
		},
	}

	if path := os.Getenv("PARKLEDGER_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if host := os.Getenv("PARKLEDGER_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("PARKLEDGER_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid PARKLEDGER_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if dbPath := os.Getenv("PARKLEDGER_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if timeoutStr := os.Getenv("PARKLEDGER_DB_OP_TIMEOUT"); timeoutStr != "" {
		timeout, err := time.ParseDuration(timeoutStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid PARKLEDGER_DB_OP_TIMEOUT: %w", err)
		}
		cfg.DB.OpTimeout = timeout
	}
	if level := os.Getenv("PARKLEDGER_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if dir := os.Getenv("PARKLEDGER_IMAGE_DIR"); dir != "" {
		cfg.Images.Dir = dir
	}
	if url := os.Getenv("PARKLEDGER_RECOGNIZER_URL"); url != "" {
		cfg.Recognizer.URL = url
	}
	if timeoutStr := os.Getenv("PARKLEDGER_RECOGNIZER_TIMEOUT"); timeoutStr != "" {
		timeout, err := time.ParseDuration(timeoutStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid PARKLEDGER_RECOGNIZER_TIMEOUT: %w", err)
		}
		cfg.Recognizer.Timeout = timeout
	}

	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
