// Package config loads the command line configuration from an optional
// file and PASSCRYPT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/prettyserver/passcrypt/internal/logging"
)

// EnvPrefix prefixes every environment variable, e.g. PASSCRYPT_CLIENT_BASE_URL.
const EnvPrefix = "PASSCRYPT"

// Config is the full configuration.
type Config struct {
	Client ClientConfig   `mapstructure:"client"`
	Server ServerConfig   `mapstructure:"server"`
	Log    logging.Config `mapstructure:"log"`
}

// ClientConfig configures commands that talk to a server.
type ClientConfig struct {
	BaseURL string        `mapstructure:"base_url" validate:"omitempty,url"`
	Backend string        `mapstructure:"backend" validate:"omitempty,oneof=platform bundled"`
	Timeout time.Duration `mapstructure:"timeout" validate:"min=0"`
	Retries int           `mapstructure:"retries" validate:"min=0,max=10"`
}

// ServerConfig configures the key server.
type ServerConfig struct {
	Addr   string `mapstructure:"addr" validate:"required,hostname_port"`
	KeyDir string `mapstructure:"key_dir" validate:"required"`
	Users  []User `mapstructure:"users" validate:"unique=Username,dive"`
}

// User is an account served by the key server.
type User struct {
	Username     string `mapstructure:"username" validate:"required"`
	PasswordHash string `mapstructure:"password_hash" validate:"required,startswith=$2"`
	TOTPSecret   string `mapstructure:"totp_secret" validate:"omitempty,alphanum"`
}

// Loader reads configuration with viper.
type Loader struct {
	v        *viper.Viper
	validate *validator.Validate
	file     string
}

// NewLoader returns a Loader. file may be empty, in which case
// passcrypt.yaml is looked up in the working directory and ignored if
// missing.
func NewLoader(file string) *Loader {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("passcrypt")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	return &Loader{v: v, validate: validator.New(validator.WithRequiredStructEnabled()), file: file}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("client.base_url", "")
	v.SetDefault("client.backend", "platform")
	v.SetDefault("client.timeout", 30*time.Second)
	v.SetDefault("client.retries", 0)
	v.SetDefault("server.addr", "127.0.0.1:8080")
	v.SetDefault("server.key_dir", ".")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.file.path", "")
	v.SetDefault("log.file.max_size_mb", 100)
	v.SetDefault("log.file.max_backups", 5)
	v.SetDefault("log.file.max_age_days", 30)
	v.SetDefault("log.file.compress", false)
}

// Viper exposes the underlying instance so that command line flags can be
// bound to keys.
func (l *Loader) Viper() *viper.Viper {
	return l.v
}

// Load reads the file, applies the environment and validates the result.
func (l *Loader) Load() (*Config, error) {
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if l.file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := l.validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// ConfigFile returns the file that was read, or "" when none was.
func (l *Loader) ConfigFile() string {
	return l.v.ConfigFileUsed()
}

// Watch calls onChange with the reloaded configuration each time the file
// changes. Reloads that fail validation go to onError and the previous
// configuration stays in effect.
func (l *Loader) Watch(onChange func(*Config), onError func(error)) {
	l.v.OnConfigChange(func(fsnotify.Event) {
		cfg, err := l.Load()
		if err != nil {
			onError(err)
			return
		}
		onChange(cfg)
	})
	l.v.WatchConfig()
}
