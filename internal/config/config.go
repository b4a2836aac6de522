package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const DefaultSessionFile = "default.session"

type AppConfig struct {
	Env     string `yaml:"env" env:"ENV" env-default:"prod"`
	ApiID   int32  `yaml:"api_id" env:"TG_ID"`
	ApiHash string `yaml:"api_hash" env:"TG_HASH"`
	Phone   string `yaml:"phone" env:"TG_PHONE"`
	Session string `yaml:"session" env:"TG_SESSION" env-default:"default.session"`

	Device DeviceConfig `yaml:"device"`
	Proxy  ProxyConfig  `yaml:"proxy"`
	Log    LogConfig    `yaml:"log"`
	Redis  RedisConfig  `yaml:"redis"`
	Report ReportConfig `yaml:"report"`
}

type DeviceConfig struct {
	Model      string `yaml:"model" env-default:"Desktop"`
	System     string `yaml:"system_version" env-default:"Windows 10"`
	AppVersion string `yaml:"app_version" env-default:"2.0"`
	LangCode   string `yaml:"lang_code" env-default:"en"`
}

// ProxyConfig SOCKS5 прокси для TDLib
type ProxyConfig struct {
	Server   string `yaml:"server" env:"TG_PROXY_SERVER"`
	Port     int32  `yaml:"port" env:"TG_PROXY_PORT"`
	Username string `yaml:"username" env:"TG_PROXY_USER"`
	Password string `yaml:"password" env:"TG_PROXY_PASSWORD"`
}

func (p ProxyConfig) Enabled() bool {
	return p.Server != "" && p.Port != 0
}

type LogConfig struct {
	File       string `yaml:"file" env:"LOG_FILE"`
	MaxSizeMB  int    `yaml:"max_size_mb" env-default:"10"`
	MaxBackups int    `yaml:"max_backups" env-default:"5"`
	MaxAgeDays int    `yaml:"max_age_days" env-default:"14"`
}

type RedisConfig struct {
	Addr     string        `yaml:"addr" env:"REDIS_ADDR"`
	Password string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int           `yaml:"db" env:"REDIS_DB"`
	LockTTL  time.Duration `yaml:"lock_ttl" env:"REDIS_LOCK_TTL" env-default:"5m"`
}

type ReportConfig struct {
	Reasons []string      `yaml:"reasons"`
	Timeout time.Duration `yaml:"timeout" env-default:"10s"`
}

// Load читает YAML-конфиг (если path не пустой) и переменные окружения.
// Окружение перекрывает файл.
func Load(path string) (*AppConfig, error) {
	var cfg AppConfig

	if path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("ошибка загрузки конфига %s: %w", path, err)
		}
		return &cfg, nil
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}
	return &cfg, nil
}

var ErrMissingCredentials = errors.New("API ID and API HASH must be specified (--id/--hash or TG_ID/TG_HASH)")

// Validate checks what is required before connecting.
func (c *AppConfig) Validate() error {
	if c.ApiID == 0 || c.ApiHash == "" {
		return ErrMissingCredentials
	}
	if c.Session == "" {
		return errors.New("session path must not be empty")
	}
	return nil
}
