package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/noahxzhu/hydrate/internal/model"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Hydration HydrationConfig `mapstructure:"hydration"`
	Pushover  PushoverConfig  `mapstructure:"pushover"`
	Webhook   WebhookConfig   `mapstructure:"webhook"`
	WebPush   WebPushConfig   `mapstructure:"webpush"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

type StorageConfig struct {
	FilePath    string `mapstructure:"file_path"`
	HistoryPath string `mapstructure:"history_path"`
}

type HydrationConfig struct {
	DailyGoalMl  int           `mapstructure:"daily_goal_ml"`
	PerSessionMl int           `mapstructure:"per_session_ml"`
	WindowStart  string        `mapstructure:"window_start"` // "HH:MM"
	WindowEnd    string        `mapstructure:"window_end"`
	GraceMinutes int           `mapstructure:"grace_minutes"`
	TickInterval time.Duration `mapstructure:"tick_interval"`
	Amounts      []int         `mapstructure:"amounts"`
}

type PushoverConfig struct {
	Token string `mapstructure:"token"`
	User  string `mapstructure:"user"`
}

type WebhookConfig struct {
	URL       string        `mapstructure:"url"`
	Token     string        `mapstructure:"token"`
	EventType string        `mapstructure:"event_type"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

type WebPushConfig struct {
	Subject    string `mapstructure:"subject"`
	PublicKey  string `mapstructure:"public_key"`
	PrivateKey string `mapstructure:"private_key"`
	TTL        int    `mapstructure:"ttl"`
}

func (c PushoverConfig) Enabled() bool { return c.Token != "" && c.User != "" }
func (c WebhookConfig) Enabled() bool  { return c.URL != "" }
func (c WebPushConfig) Enabled() bool {
	return c.Subject != "" && c.PublicKey != "" && c.PrivateKey != ""
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", ":8080")
	v.SetDefault("storage.file_path", "data/state.json")
	v.SetDefault("storage.history_path", "data/history.db")
	v.SetDefault("hydration.daily_goal_ml", 3500)
	v.SetDefault("hydration.per_session_ml", 300)
	v.SetDefault("hydration.window_start", "08:00")
	v.SetDefault("hydration.window_end", "21:30")
	v.SetDefault("hydration.grace_minutes", 15)
	v.SetDefault("hydration.tick_interval", "60s")
	v.SetDefault("hydration.amounts", []int{100, 250, 300, 500})
	// Empty defaults register the keys so HYDRATE_* env vars reach Unmarshal.
	v.SetDefault("pushover.token", "")
	v.SetDefault("pushover.user", "")
	v.SetDefault("webhook.url", "")
	v.SetDefault("webhook.token", "")
	v.SetDefault("webhook.event_type", "hydration_reminder")
	v.SetDefault("webhook.timeout", "10s")
	v.SetDefault("webpush.subject", "")
	v.SetDefault("webpush.public_key", "")
	v.SetDefault("webpush.private_key", "")
	v.SetDefault("webpush.ttl", 30)
}

// LoadConfig reads path (if it exists), then .env and HYDRATE_* environment
// overrides, e.g. HYDRATE_HYDRATION_DAILY_GOAL_ML=3000.
func LoadConfig(path string) (*Config, error) {
	// A missing .env is fine.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("HYDRATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the hydration plan.
func (c *Config) Validate() error {
	h := c.Hydration
	if h.DailyGoalMl <= 0 {
		return fmt.Errorf("hydration.daily_goal_ml must be positive, got %d", h.DailyGoalMl)
	}
	if h.PerSessionMl <= 0 {
		return fmt.Errorf("hydration.per_session_ml must be positive, got %d", h.PerSessionMl)
	}
	start, err := ParseClock(h.WindowStart)
	if err != nil {
		return fmt.Errorf("hydration.window_start: %w", err)
	}
	end, err := ParseClock(h.WindowEnd)
	if err != nil {
		return fmt.Errorf("hydration.window_end: %w", err)
	}
	if end < start {
		return fmt.Errorf("hydration.window_end %s is before window_start %s", h.WindowEnd, h.WindowStart)
	}
	if h.GraceMinutes < 0 {
		return fmt.Errorf("hydration.grace_minutes must not be negative, got %d", h.GraceMinutes)
	}
	if h.TickInterval <= 0 {
		return fmt.Errorf("hydration.tick_interval must be positive, got %s", h.TickInterval)
	}
	for _, a := range h.Amounts {
		if a <= 0 {
			return fmt.Errorf("hydration.amounts must be positive, got %d", a)
		}
	}
	return nil
}

// Settings converts the validated hydration section into the core plan.
func (c *Config) Settings() model.Settings {
	start, _ := ParseClock(c.Hydration.WindowStart)
	end, _ := ParseClock(c.Hydration.WindowEnd)
	return model.Settings{
		DailyGoalMl:        c.Hydration.DailyGoalMl,
		PerSessionAmountMl: c.Hydration.PerSessionMl,
		WindowStartMinute:  start,
		WindowEndMinute:    end,
		GraceMinutes:       c.Hydration.GraceMinutes,
	}
}

// ParseClock turns "HH:MM" (24h) into minutes since midnight.
func ParseClock(s string) (int, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid clock %q, want HH:MM", s)
	}
	return t.Hour()*60 + t.Minute(), nil
}
