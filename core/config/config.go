package config

import (
	"path/filepath"
	"reflect"
	"strings"

	"enrollment-manager/core/database"
	"enrollment-manager/core/logger"
	"enrollment-manager/core/reconcile"
	"enrollment-manager/core/server"
	"enrollment-manager/core/storage"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	// Server holds configuration for the HTTP server.
	Server server.Config `mapstructure:"server"`
	// Storage holds configuration for the archive object store.
	Storage storage.Config `mapstructure:"storage"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Database holds configuration for the governed database.
	Database database.Config `mapstructure:"database"`
	// Schema holds the reconciliation settings.
	Schema reconcile.Config `mapstructure:"schema"`
}

// LoadConfig loads configuration from environment variables and the .env file in dir.
// Environment variables map to nested keys, e.g. SCHEMA_REBUILD_MODE -> schema.rebuild_mode.
func LoadConfig(dir string) (*Config, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load(filepath.Join(dir, ".env"))

	v := viper.New()
	bindValues(v, Config{}, "")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// bindValues walks the struct and registers every mapstructure key with its
// 'default' tag value so AutomaticEnv can resolve it.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		v.SetDefault(key, field.Tag.Get("default"))
	}
}
