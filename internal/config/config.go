package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. CLINIC_API_BASE_URL.
const EnvPrefix = "CLINIC"

type Config struct {
	API           APIConfig           `mapstructure:"api"`
	Server        ServerConfig        `mapstructure:"server"`
	Log           LogConfig           `mapstructure:"log"`
	Notifications NotificationsConfig `mapstructure:"notifications"`
	Metrics       MetricsConfig       `mapstructure:"metrics"`
	View          ViewConfig          `mapstructure:"view"`
}

type APIConfig struct {
	BaseURL         string        `mapstructure:"base_url"`
	Timeout         time.Duration `mapstructure:"timeout"`
	RateLimit       float64       `mapstructure:"rate_limit"`
	RateBurst       int           `mapstructure:"rate_burst"`
	BreakerFailures uint32        `mapstructure:"breaker_failures"`
	BreakerTimeout  time.Duration `mapstructure:"breaker_timeout"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
	Debug           bool          `mapstructure:"debug"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

type NotificationsConfig struct {
	// RedisURL selects the redis broker; empty keeps notifications in process.
	RedisURL string `mapstructure:"redis_url"`
	Prefix   string `mapstructure:"prefix"`
}

type MetricsConfig struct {
	Namespace string `mapstructure:"namespace"`
}

type ViewConfig struct {
	CacheDuration   time.Duration `mapstructure:"cache_duration"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// Session is read with envconfig rather than viper so the token never has
// to live in a config file.
type Session struct {
	Token string `envconfig:"TOKEN"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "http://localhost:8080/api")
	v.SetDefault("api.timeout", 0)
	v.SetDefault("api.rate_limit", 0)
	v.SetDefault("api.rate_burst", 10)
	v.SetDefault("api.breaker_failures", 5)
	v.SetDefault("api.breaker_timeout", 30*time.Second)

	v.SetDefault("server.port", 8090)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.request_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.debug", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)

	v.SetDefault("notifications.redis_url", "")
	v.SetDefault("notifications.prefix", "clinic:")

	v.SetDefault("metrics.namespace", "clinic")

	v.SetDefault("view.cache_duration", 30*time.Second)
	v.SetDefault("view.cleanup_interval", 5*time.Minute)
}

// Load reads path when given, otherwise config.yaml from . or ./config. A
// missing default file is not an error; defaults and the environment apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Env values for list keys arrive as one comma separated string.
	if len(config.Server.CORSOrigins) == 1 && strings.Contains(config.Server.CORSOrigins[0], ",") {
		config.Server.CORSOrigins = strings.Split(config.Server.CORSOrigins[0], ",")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.base_url must be an absolute URL, got %q", c.API.BaseURL)
	}
	if c.API.RateLimit < 0 {
		return fmt.Errorf("api.rate_limit must not be negative")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Metrics.Namespace == "" {
		return fmt.Errorf("metrics.namespace is required")
	}
	return nil
}

// LoadSession reads CLINIC_TOKEN.
func LoadSession() (Session, error) {
	var s Session
	if err := envconfig.Process(EnvPrefix, &s); err != nil {
		return Session{}, fmt.Errorf("failed to read session environment: %w", err)
	}
	return s, nil
}
