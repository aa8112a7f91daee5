package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Конечная структура конфигурации приложения.
type Config struct {
	Server struct {
		Address  string `mapstructure:"address"`   // 0.0.0.0
		HTTPPort string `mapstructure:"http_port"` // 8080
	} `mapstructure:"server"`

	Logging struct {
		Level  string `mapstructure:"level"`  // trace|debug|info|warning|error|fatal
		Format string `mapstructure:"format"` // text|json
		File   string `mapstructure:"file"`   // префикс файла, пусто — только stdout
	} `mapstructure:"logs"`

	Database struct {
		Driver string `mapstructure:"driver"` // "postgres" | "mysql" | "" (in-memory)
		DSN    string `mapstructure:"dsn"`
	} `mapstructure:"database"`

	Auth struct {
		JWTSecret string `mapstructure:"jwt_secret"` // HS256
	} `mapstructure:"auth"`

	Redis struct {
		Addr     string        `mapstructure:"addr"` // пусто — без кэша
		Password string        `mapstructure:"password"`
		DB       int           `mapstructure:"db"`
		TTL      time.Duration `mapstructure:"ttl"`
	} `mapstructure:"redis"`

	Messaging struct {
		Provider    string        `mapstructure:"provider"` // "greenapi" | "" (не отправлять)
		APIURL      string        `mapstructure:"api_url"`
		InstanceID  string        `mapstructure:"instance_id"`
		APIToken    string        `mapstructure:"api_token"`
		CountryCode string        `mapstructure:"country_code"`
		Signature   string        `mapstructure:"signature"`
		Timeout     time.Duration `mapstructure:"timeout"`
	} `mapstructure:"messaging"`

	Metrics struct {
		Enabled bool `mapstructure:"enabled"`
	} `mapstructure:"metrics"`
}

// Load читает конфиг из env/файла с дефолтами.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.address", "0.0.0.0")
	v.SetDefault("server.http_port", "8080")

	v.SetDefault("logs.level", "info")
	v.SetDefault("logs.format", "text")
	v.SetDefault("logs.file", "")

	// DB: по умолчанию — in-memory (пустой driver)
	v.SetDefault("database.driver", "")
	v.SetDefault("database.dsn", "")

	v.SetDefault("auth.jwt_secret", "CHANGE_ME")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", "30s")

	v.SetDefault("messaging.provider", "")
	v.SetDefault("messaging.api_url", "https://api.green-api.com")
	v.SetDefault("messaging.instance_id", "")
	v.SetDefault("messaging.api_token", "")
	v.SetDefault("messaging.country_code", "255")
	v.SetDefault("messaging.signature", "")
	v.SetDefault("messaging.timeout", "10s")

	v.SetDefault("metrics.enabled", true)

	if cfgFile := os.Getenv("CONFIG_FILE"); cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			v.AddConfigPath(filepath.Join(xdg, "repairdesk"))
		}
		v.AddConfigPath("/etc/repairdesk")
	}

	// файл опционален
	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) {
			return nil, fmt.Errorf("config read error: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal error: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func validate(c *Config) error {
	if strings.TrimSpace(c.Auth.JWTSecret) == "" || c.Auth.JWTSecret == "CHANGE_ME" {
		return errors.New("auth.jwt_secret must be set (not empty and not CHANGE_ME)")
	}
	if strings.TrimSpace(c.Server.Address) == "" {
		return errors.New("server.address must not be empty")
	}
	if strings.TrimSpace(c.Server.HTTPPort) == "" {
		return errors.New("server.http_port must not be empty")
	}
	switch c.Database.Driver {
	case "", "postgres", "mysql":
	default:
		return fmt.Errorf("database.driver %q is not supported", c.Database.Driver)
	}
	switch c.Messaging.Provider {
	case "":
	case "greenapi":
		if c.Messaging.InstanceID == "" || c.Messaging.APIToken == "" {
			return errors.New("messaging.instance_id and messaging.api_token are required for greenapi")
		}
	default:
		return fmt.Errorf("messaging.provider %q is not supported", c.Messaging.Provider)
	}
	return nil
}
