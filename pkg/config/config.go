package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Telegram TelegramConfig `mapstructure:"telegram"`
	Server   ServerConfig   `mapstructure:"server"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Database DatabaseConfig `mapstructure:"database"`
	R2       R2Config       `mapstructure:"r2"`
}

type TelegramConfig struct {
	Token       string `mapstructure:"token"`
	SecretToken string `mapstructure:"secret_token"`
}

type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type StorageConfig struct {
	// Driver selects the backend: "file", "memory" or "postgres".
	Driver  string `mapstructure:"driver"`
	DataDir string `mapstructure:"data_dir"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type R2Config struct {
	AccountID       string `mapstructure:"account_id"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	Bucket          string `mapstructure:"bucket"`
	PublicURL       string `mapstructure:"public_url"`
	PresignTTL      int    `mapstructure:"presign_ttl_seconds"`
}

func parseDatabaseURL(dbURL string) (DatabaseConfig, error) {
	u, err := url.Parse(dbURL)
	if err != nil {
		return DatabaseConfig{}, err
	}

	password, _ := u.User.Password()
	port := 5432 // default PostgreSQL port
	if u.Port() != "" {
		fmt.Sscanf(u.Port(), "%d", &port)
	}

	// Remove leading slash from path to get database name
	dbName := strings.TrimPrefix(u.Path, "/")

	return DatabaseConfig{
		Host:     u.Hostname(),
		Port:     port,
		User:     u.User.Username(),
		Password: password,
		DBName:   dbName,
		SSLMode:  "disable",
	}, nil
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	// Set default values
	v.SetDefault("server.port", "8080")
	v.SetDefault("storage.driver", "file")
	v.SetDefault("storage.data_dir", "data")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("r2.presign_ttl_seconds", 900)

	// Enable environment variable support
	v.AutomaticEnv()

	// Read the config file
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Check for DATABASE_URL environment variable
	if dbURL := v.GetString("DATABASE_URL"); dbURL != "" {
		dbConfig, err := parseDatabaseURL(dbURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse DATABASE_URL: %v", err)
		}
		config.Database = dbConfig
		config.Storage.Driver = "postgres"
	}

	// Get other environment variables
	if token := v.GetString("TELEGRAM_TOKEN"); token != "" {
		config.Telegram.Token = token
	}
	if secret := v.GetString("TELEGRAM_SECRET_TOKEN"); secret != "" {
		config.Telegram.SecretToken = secret
	}
	if port := v.GetString("PORT"); port != "" {
		config.Server.Port = port
	}
	if accountID := v.GetString("R2_ACCOUNT_ID"); accountID != "" {
		config.R2.AccountID = accountID
	}
	if keyID := v.GetString("R2_ACCESS_KEY_ID"); keyID != "" {
		config.R2.AccessKeyID = keyID
	}
	if secret := v.GetString("R2_SECRET_ACCESS_KEY"); secret != "" {
		config.R2.SecretAccessKey = secret
	}
	if bucket := v.GetString("R2_BUCKET_NAME"); bucket != "" {
		config.R2.Bucket = bucket
	}
	if publicURL := v.GetString("R2_PUBLIC_URL"); publicURL != "" {
		config.R2.PublicURL = publicURL
	}

	return &config, nil
}
