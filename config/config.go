// Package config loads platewise settings from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"

	"github.com/jacentio/platewise/store"
)

// Config holds the settings shared by platewise binaries.
type Config struct {
	ServiceName string `env:"SERVICE_NAME" envDefault:"platewise"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// DynamoDB
	TableName        string `env:"TABLE_NAME" envDefault:"platewise"`
	AWSRegion        string `env:"AWS_REGION" envDefault:"us-east-1"`
	DynamoDBEndpoint string `env:"DYNAMODB_ENDPOINT"`

	CascadeConcurrency int           `env:"CASCADE_CONCURRENCY" envDefault:"8"`
	SlowOpThreshold    time.Duration `env:"SLOW_OP_THRESHOLD" envDefault:"500ms"`
}

// Load reads a .env file if one exists, then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.TableName == "" {
		return errors.New("TABLE_NAME is required")
	}
	if c.CascadeConcurrency < 1 {
		return fmt.Errorf("CASCADE_CONCURRENCY must be positive, got %d", c.CascadeConcurrency)
	}
	if c.SlowOpThreshold < 0 {
		return fmt.Errorf("SLOW_OP_THRESHOLD must not be negative, got %s", c.SlowOpThreshold)
	}
	return nil
}

// StoreConfig returns the store settings for the configured table.
func (c *Config) StoreConfig() store.Config {
	sc := store.DefaultConfig()
	sc.TableName = c.TableName
	sc.SlowOpThreshold = c.SlowOpThreshold
	return sc
}
