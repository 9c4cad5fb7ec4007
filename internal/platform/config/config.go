package config

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Registry RegistryConfig `mapstructure:"registry"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port" validate:"required,min=1,max=65535"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

type DatabaseConfig struct {
	Path           string `mapstructure:"path" validate:"required"`
	MaxConnections int    `mapstructure:"max_connections" validate:"min=1"`
}

// RegistryConfig carries the registry's tunables. The webhook cap is a
// configuration value, never a literal in command code.
type RegistryConfig struct {
	WebhookCap   int `mapstructure:"webhook_cap" validate:"required,min=1"`
	IDLength     int `mapstructure:"id_length" validate:"min=16,max=64"`
	SecretLength int `mapstructure:"secret_length" validate:"min=128,max=256"`

	// ReceiverURL is the public base URL of the relay service; webhook
	// views and delivery instructions embed it.
	ReceiverURL string `mapstructure:"receiver_url" validate:"required,url"`
}

type JWTConfig struct {
	Secret         string        `mapstructure:"secret" validate:"required"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
}

type LoggingConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	FilePath string `mapstructure:"file_path"`
}

func Load(path string) (*Config, error) {
	viper.SetConfigFile(path)
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("database.max_connections", 4)
	viper.SetDefault("registry.webhook_cap", 5)
	viper.SetDefault("registry.id_length", 32)
	viper.SetDefault("registry.secret_length", 256)
	viper.SetDefault("jwt.access_token_ttl", 15*time.Minute)

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := validator.New().Struct(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
