package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/vonm84/qah-app/common/config"
)

// Config qah 服务配置（qah-api 与 qah-roster 共用）
type Config struct {
	HTTP struct {
		Addr string `env:"HTTP_ADDR" envDefault:":8080"`
	}

	// DBEnabled=false 时 qah-api 使用内存仓库
	DBEnabled bool                  `env:"DB_ENABLED" envDefault:"true"`
	Database  config.DatabaseConfig `envPrefix:"DB_"`

	RedisEnabled bool               `env:"REDIS_ENABLED" envDefault:"true"`
	Redis        config.RedisConfig `envPrefix:"REDIS_"`

	MQTTEnabled bool              `env:"MQTT_ENABLED" envDefault:"false"`
	MQTT        config.MQTTConfig `envPrefix:"MQTT_"`

	Schedule struct {
		Weekday   Weekday `env:"REHEARSAL_WEEKDAY" envDefault:"tuesday"`
		AdminName string  `env:"ADMIN_NAME" envDefault:"Admin"`
		Timezone  string  `env:"SCHEDULE_TIMEZONE" envDefault:"Local"`

		location *time.Location
	}

	// 排练名单聚合（qah-roster）
	Roster struct {
		EventStream   string        `env:"ROSTER_EVENT_STREAM" envDefault:"qah:events"`
		ConsumerGroup string        `env:"ROSTER_CONSUMER_GROUP" envDefault:"qah-roster-group"`
		ConsumerName  string        `env:"ROSTER_CONSUMER_NAME" envDefault:"qah-roster-1"`
		BatchSize     int           `env:"ROSTER_BATCH_SIZE" envDefault:"10"`
		PollInterval  time.Duration `env:"ROSTER_POLL_INTERVAL" envDefault:"60s"`
		SnapshotTTL   time.Duration `env:"ROSTER_SNAPSHOT_TTL" envDefault:"0"`
		MQTTTopic     string        `env:"ROSTER_MQTT_TOPIC" envDefault:"qah/roster"`
	}

	Log struct {
		Level  string `env:"LOG_LEVEL" envDefault:"info"`
		Format string `env:"LOG_FORMAT" envDefault:"json"`
	}
}

// Load 加载配置
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	loc, err := time.LoadLocation(cfg.Schedule.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid SCHEDULE_TIMEZONE %q: %w", cfg.Schedule.Timezone, err)
	}
	cfg.Schedule.location = loc

	if cfg.Roster.BatchSize <= 0 {
		cfg.Roster.BatchSize = 10
	}
	if cfg.Roster.PollInterval <= 0 {
		return nil, fmt.Errorf("ROSTER_POLL_INTERVAL must be positive, got %s", cfg.Roster.PollInterval)
	}
	return cfg, nil
}

// Location returns the zone used to decide what "today" is.
func (c *Config) Location() *time.Location {
	if c.Schedule.location == nil {
		return time.Local
	}
	return c.Schedule.location
}

// Weekday is a time.Weekday parsed from its English name.
type Weekday time.Weekday

func (w *Weekday) UnmarshalText(b []byte) error {
	name := strings.ToLower(strings.TrimSpace(string(b)))
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.ToLower(d.String()) == name {
			*w = Weekday(d)
			return nil
		}
	}
	return fmt.Errorf("unknown weekday %q", string(b))
}

func (w Weekday) Weekday() time.Weekday { return time.Weekday(w) }
