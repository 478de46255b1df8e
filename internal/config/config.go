package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port int
	Env  string

	StorageURI     string
	Database       string
	StorageTimeout time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	KafkaBroker  string
	KafkaTopic   string
	KafkaLogFile string

	DocsHost string
	LogLevel string
}

func (c *Config) IsDevelopment() bool {
	return c.Env != "production"
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Load reads the environment, seeded from an optional .env file in the
// working directory.
func Load() (*Config, error) {
	return load(".env")
}

func load(envFile string) (*Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("PORT", 3000)
	v.SetDefault("ENV", "development")
	v.SetDefault("MONGODB_URI", "mongodb://localhost:27017/todo-api")
	v.SetDefault("STORAGE_TIMEOUT", 10*time.Second)
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("KAFKA_TOPIC", "todo-events")
	v.SetDefault("LOG_LEVEL", "info")

	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			v.SetConfigFile(envFile)
			v.SetConfigType("env")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read %s: %w", envFile, err)
			}
		}
	}

	cfg := &Config{
		Port:           v.GetInt("PORT"),
		Env:            strings.ToLower(v.GetString("ENV")),
		StorageURI:     v.GetString("MONGODB_URI"),
		Database:       v.GetString("MONGODB_DATABASE"),
		StorageTimeout: v.GetDuration("STORAGE_TIMEOUT"),
		RedisAddr:      v.GetString("REDIS_ADDR"),
		RedisPassword:  v.GetString("REDIS_PASSWORD"),
		RedisDB:        v.GetInt("REDIS_DB"),
		KafkaBroker:    v.GetString("KAFKA_BROKER"),
		KafkaTopic:     v.GetString("KAFKA_TOPIC"),
		KafkaLogFile:   v.GetString("KAFKA_LOG_FILE"),
		DocsHost:       v.GetString("DOCS_HOST"),
		LogLevel:       v.GetString("LOG_LEVEL"),
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid PORT %d", cfg.Port)
	}
	if cfg.StorageURI == "" {
		return nil, errors.New("MONGODB_URI is not configured")
	}
	if cfg.DocsHost == "" {
		cfg.DocsHost = fmt.Sprintf("localhost:%d", cfg.Port)
	}

	return cfg, nil
}
