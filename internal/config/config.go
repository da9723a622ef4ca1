package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/robfig/cron/v3"
)

const (
	MatchSubstring = "substring"
	MatchExact     = "exact"
)

type Config struct {
	Env     string        `yaml:"env" env-default:"prod"`
	Feed    FeedConfig    `yaml:"feed"`
	Roster  RosterRef     `yaml:"roster"`
	HTTP    HTTPConfig    `yaml:"http"`
	History HistoryConfig `yaml:"history"`
	Log     LogConfig     `yaml:"log"`
}

type FeedConfig struct {
	URL     string        `yaml:"url" env:"FEED_URL" env-default:"http://vibrator.d3llie.tech/data" validate:"required,url"`
	Timeout time.Duration `yaml:"timeout" env-default:"10s" validate:"gt=0"`
}

type RosterRef struct {
	Path      string `yaml:"path" env:"ROSTER_PATH" env-default:"config/roster.yaml" validate:"required"`
	MatchMode string `yaml:"match_mode" env-default:"substring" validate:"oneof=substring exact"`
}

type HTTPConfig struct {
	Address      string        `yaml:"address" env:"HTTP_ADDRESS" env-default:":8080" validate:"required"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env-default:"5s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env-default:"30s"`
}

type HistoryConfig struct {
	Enabled  bool          `yaml:"enabled" env-default:"false"`
	Path     string        `yaml:"path" env-default:"/var/lib/vitaldash/history.db"`
	Schedule string        `yaml:"schedule" env-default:"@every 30s" validate:"cronspec"`
	MaxAge   time.Duration `yaml:"max_age" env-default:"24h"`
	Limit    int           `yaml:"limit" env-default:"50" validate:"gte=1"`
}

type LogConfig struct {
	Level  string `yaml:"level" env-default:"info" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" env-default:"json" validate:"oneof=json text"`
}

func MustLoad(configPath string) *Config {
	if configPath == "" {
		configPath = os.Getenv("CONFIG_PATH")
	}

	if configPath == "" {
		configPath = "config/config.yaml"
	}

	cfg, err := Load(configPath)
	if err != nil {
		panic(err.Error())
	}

	return cfg
}

func Load(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", configPath)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func Validate(cfg *Config) error {
	v := validator.New()
	if err := v.RegisterValidation("cronspec", validateCronSpec); err != nil {
		return err
	}
	return v.Struct(cfg)
}

func validateCronSpec(fl validator.FieldLevel) bool {
	_, err := cron.ParseStandard(fl.Field().String())
	return err == nil
}
