package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/viper"
)

// maxFetchBatchSize bounds the number of identifiers sent in one lookup
const maxFetchBatchSize = 100

type Config struct {
	Port        string
	Environment string
	Database    DatabaseConfig
	Declaration DeclarationConfig
	API         APIConfig
	LogLevel    string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type DeclarationConfig struct {
	FetchBatchSize     int
	AttributeRolesFile string
	Locale             string
}

type APIConfig struct {
	KeyHashSalt string
}

func Load() (*Config, error) {
	viper.SetConfigType("env")
	viper.SetConfigName(".env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("FETCH_BATCH_SIZE", maxFetchBatchSize)
	viper.SetDefault("DECLARATION_LOCALE", "tr")

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read .env file (optional)
	if err := viper.ReadInConfig(); err != nil {
		// It's okay if .env doesn't exist, we'll use env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	batchSize, err := strconv.Atoi(getEnvOrViper("FETCH_BATCH_SIZE", strconv.Itoa(maxFetchBatchSize)))
	if err != nil {
		return nil, fmt.Errorf("FETCH_BATCH_SIZE must be a number: %w", err)
	}

	cfg := &Config{
		Port:        getEnvOrViper("PORT", "8080"),
		Environment: getEnvOrViper("ENVIRONMENT", "development"),
		Database: DatabaseConfig{
			Host:     getEnvOrViper("DB_HOST", "localhost"),
			Port:     getEnvOrViper("DB_PORT", "5432"),
			User:     getEnvOrViper("DB_USER", "postgres"),
			Password: getEnvOrViper("DB_PASSWORD", "postgres"),
			DBName:   getEnvOrViper("DB_NAME", "backoffice"),
			SSLMode:  getEnvOrViper("DB_SSLMODE", "disable"),
		},
		Declaration: DeclarationConfig{
			FetchBatchSize:     ClampBatchSize(batchSize),
			AttributeRolesFile: getEnvOrViper("ATTRIBUTE_ROLES_FILE", ""),
			Locale:             getEnvOrViper("DECLARATION_LOCALE", "tr"),
		},
		API: APIConfig{
			KeyHashSalt: getEnvOrViper("API_KEY_HASH_SALT", "default-salt-change-in-production"),
		},
		LogLevel: getEnvOrViper("LOG_LEVEL", "info"),
	}

	// Validate required fields
	if cfg.Database.Host == "" {
		return nil, fmt.Errorf("DB_HOST is required")
	}

	return cfg, nil
}

// ClampBatchSize keeps a lookup batch size within 1..100
func ClampBatchSize(n int) int {
	if n < 1 || n > maxFetchBatchSize {
		return maxFetchBatchSize
	}
	return n
}

func getEnvOrViper(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return defaultValue
}
