package config

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	StorageMemory = "memory"
	StorageFile   = "file"
	StorageBolt   = "bbolt"
	StorageSQLite = "sqlite"
	StorageRedis  = "redis"

	IDSchemeUUID = "uuid"
	IDSchemeTime = "time"
)

type AppConfig struct {
	StorageMode string        `mapstructure:"STORAGE_MODE" validate:"oneof=memory file bbolt sqlite redis"`
	DataDir     string        `mapstructure:"DATA_DIR" validate:"min=1"`
	SlotKey     string        `mapstructure:"SLOT_KEY" validate:"min=1"`
	RedisURL    string        `mapstructure:"REDIS_URL" validate:"required_if=StorageMode redis"`
	APIDelay    time.Duration `mapstructure:"API_DELAY" validate:"min=0"`
	IDScheme    string        `mapstructure:"ID_SCHEME" validate:"oneof=uuid time"`
	IDPrefix    string        `mapstructure:"ID_PREFIX"`
	LogLevel    string        `mapstructure:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	OpenTimeout time.Duration `mapstructure:"OPEN_TIMEOUT" validate:"nonzero_duration"`
}

func (c *AppConfig) Validate() error {
	v := validator.New()

	_ = v.RegisterValidation("nonzero_duration", func(fl validator.FieldLevel) bool {
		if d, ok := fl.Field().Interface().(time.Duration); ok {
			return d > 0
		} else {
			return false
		}
	})
	if err := v.Struct(c); err != nil {
		return err
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("STORAGE_MODE", StorageFile)
	v.SetDefault("DATA_DIR", "./data")
	v.SetDefault("SLOT_KEY", "tasks")
	v.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	v.SetDefault("API_DELAY", 300*time.Millisecond)
	v.SetDefault("ID_SCHEME", IDSchemeUUID)
	v.SetDefault("ID_PREFIX", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("OPEN_TIMEOUT", 5*time.Second)
}

// LoadAppConfig reads name.ext from the first path that has it, then the
// environment. The file is optional; env and defaults still apply.
func LoadAppConfig(name, ext string, paths ...string) (*AppConfig, error) {
	v := viper.New()
	for _, path := range paths {
		v.AddConfigPath(path)
	}
	v.SetConfigName(name)
	v.SetConfigType(ext)
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
