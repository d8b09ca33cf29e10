package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const (
	envPrefix = "NAV"

	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
	DriverBolt   = "bolt"
)

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Store  StoreConfig  `mapstructure:"store"`
	Data   DataConfig   `mapstructure:"data"`
	Log    LogConfig    `mapstructure:"log"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port" validate:"min=1,max=65535"`
	ShutdownTimeout time.Duration `mapstructure:"shutdownTimeout" validate:"gt=0"`
}

// Addr returns the listen address in host:port form
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type StoreConfig struct {
	Driver         string `mapstructure:"driver" validate:"oneof=sqlite redis bolt"`
	Path           string `mapstructure:"path"` // empty selects the driver's own default file
	Host           string `mapstructure:"host" validate:"required_if=Driver redis"`
	Port           string `mapstructure:"port" validate:"required_if=Driver redis"`
	Username       string `mapstructure:"username"`
	Password       string `mapstructure:"password"`
	Database       int    `mapstructure:"database" validate:"min=0"`
	ConnectRetries uint64 `mapstructure:"connectRetries"`
}

// DataConfig names the payload files. An empty path stands for an empty payload.
type DataConfig struct {
	ClassroomsFile string `mapstructure:"classroomsFile"`
	ImagesFile     string `mapstructure:"imagesFile"`
	Watch          bool   `mapstructure:"watch"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=trace debug info warn error fatal panic disabled"`
	Pretty bool   `mapstructure:"pretty"`
}

// validate is a single instance of Validate, it caches struct info
var validate = validator.New()

// SetDefaults registers the default value of every key on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdownTimeout", 5*time.Second)

	v.SetDefault("store.driver", DriverSQLite)
	v.SetDefault("store.path", "")
	v.SetDefault("store.host", "localhost")
	v.SetDefault("store.port", "6379")
	v.SetDefault("store.username", "")
	v.SetDefault("store.password", "")
	v.SetDefault("store.database", 0)
	v.SetDefault("store.connectRetries", 5)

	v.SetDefault("data.classroomsFile", "")
	v.SetDefault("data.imagesFile", "")
	v.SetDefault("data.watch", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
}

// Load reads configuration from, in increasing priority: defaults, the config
// file at configFile (if not empty), a .env file in the working directory, and
// NAV_ prefixed environment variables. Flags bound to v by the caller win over all of them.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("No .env file loaded")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if errors.As(err, &notFound) {
				return nil, fmt.Errorf("config file %s not found: %w", configFile, err)
			}
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
		log.Info().Str("file", v.ConfigFileUsed()).Msg("Using config file")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Store.Driver = strings.ToLower(cfg.Store.Driver)
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}
