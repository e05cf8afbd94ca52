package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

// Storage backends accepted by MEDICLE_STORAGE.
const (
	StorageSQLite = "sqlite"
	StorageRedis  = "redis"
	StorageMemory = "memory"
)

type Config struct {
	LogLevel     string  `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	Port         string  `yaml:"port" env:"PORT" env-default:"5175"`
	ClientOrigin string  `yaml:"client-origin" env:"CLIENT_ORIGIN"`
	Storage      Storage `yaml:"storage"`
	Redis        Redis   `yaml:"redis"`
}

type Storage struct {
	Backend  string `yaml:"backend" env:"MEDICLE_STORAGE" env-default:"sqlite"`
	DBPath   string `yaml:"db-path" env:"MEDICLE_DB" env-default:"./data/medicle.db"`
	SeedFile string `yaml:"seed-file" env:"MEDICLE_SEED_FILE"`
}

type Redis struct {
	Host   string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port   string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Prefix string `yaml:"prefix" env:"REDIS_PREFIX" env-default:"medicle:"`
}

// Load reads the configuration from the YAML file at path (when given) and
// then from the environment, which takes precedence. Callers apply their
// own overrides and then call Validate.
func Load(path string) (*Config, error) {
	config := &Config{}

	var err error
	if path != "" {
		err = cleanenv.ReadConfig(path, config)
	} else {
		err = cleanenv.ReadEnv(config)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to load config: %w", err)
	}
	return config, nil
}

// Validate rejects settings no component can act on.
func (that *Config) Validate() error {
	switch that.Storage.Backend {
	case StorageSQLite, StorageRedis, StorageMemory:
	default:
		return fmt.Errorf("unknown storage backend %q (want sqlite, redis or memory)", that.Storage.Backend)
	}
	if that.Storage.Backend == StorageSQLite && that.Storage.DBPath == "" {
		return fmt.Errorf("MEDICLE_DB must be set for the sqlite backend")
	}
	if that.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	return nil
}

// Addr is the listen address for the web server.
func (that *Config) Addr() string {
	return ":" + that.Port
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
