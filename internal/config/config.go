package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type RateLimit struct {
	Count    int           `mapstructure:"count"`
	Interval time.Duration `mapstructure:"interval"`
}

type Config struct {
	Mode       string        `mapstructure:"mode"`
	Port       int           `mapstructure:"port"`
	StaticPath string        `mapstructure:"static_path"`
	ReadLimit  int64         `mapstructure:"read_limit"`
	PingPeriod time.Duration `mapstructure:"ping_period"`
	Secret     string        `mapstructure:"secret"`
	LogLevel   string        `mapstructure:"log_level"`

	GracePeriod    time.Duration `mapstructure:"grace_period"`
	FormingTimeout time.Duration `mapstructure:"forming_timeout"`
	RoomIDAttempts int           `mapstructure:"room_id_attempts"`
	SendBuffer     int           `mapstructure:"send_buffer"`
	LoopBuffer     int           `mapstructure:"loop_buffer"`
	RateLimit      RateLimit     `mapstructure:"rate_limit"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("static_path", "./web")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("secret", "lobby-dev-secret")
	v.SetDefault("log_level", "info")
	v.SetDefault("grace_period", "2m")
	v.SetDefault("forming_timeout", "5m")
	v.SetDefault("room_id_attempts", 10)
	v.SetDefault("send_buffer", 32)
	v.SetDefault("loop_buffer", 1024)
	v.SetDefault("rate_limit.count", 10)
	v.SetDefault("rate_limit.interval", "10s")
}

// Load reads config/config.<CONFIG_ENV>.yaml on top of the defaults.
// LOBBY_* environment variables (optionally from .env) override both.
func Load() (*Config, error) {
	if err := godotenv.Load(); err == nil {
		log.Info().Str("module", "config").Msg("loaded .env")
	}

	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("LOBBY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.RateLimit.Count <= 0 || cfg.RateLimit.Interval <= 0 {
		return nil, fmt.Errorf("invalid rate_limit: %d per %s", cfg.RateLimit.Count, cfg.RateLimit.Interval)
	}
	log.Info().Str("module", "config").Str("mode", cfg.Mode).Int("port", cfg.Port).Str("static", cfg.StaticPath).Msg("config ready")
	return &cfg, nil
}
