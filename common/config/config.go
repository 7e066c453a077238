package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     int    `env:"PORT" envDefault:"5432"`
	User     string `env:"USER" envDefault:"postgres"`
	Password string `env:"PASSWORD" envDefault:"postgres"`
	Database string `env:"NAME" envDefault:"qah"`
	SSLMode  string `env:"SSLMODE" envDefault:"disable"`
	MaxConns int    `env:"MAX_CONNS" envDefault:"10"`
	MaxIdle  int    `env:"MAX_IDLE" envDefault:"2"`
}

// RedisConfig Redis配置
type RedisConfig struct {
	Addr     string `env:"ADDR" envDefault:"localhost:6379"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

// MQTTConfig MQTT配置
type MQTTConfig struct {
	Broker   string `env:"BROKER" envDefault:"tcp://localhost:1883"`
	ClientID string `env:"CLIENT_ID" envDefault:"qah-app"`
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD"`
	QoS      byte   `env:"QOS" envDefault:"1"`
}

// GetDSN returns the lib/pq connection string.
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// LoadFromEnv 从环境变量加载配置, e.g. prefix "DB_" reads DB_HOST, DB_PORT, ...
func (c *DatabaseConfig) LoadFromEnv(prefix string) error {
	return parseWithPrefix(c, prefix)
}

// LoadFromEnv 从环境变量加载Redis配置
func (c *RedisConfig) LoadFromEnv(prefix string) error {
	return parseWithPrefix(c, prefix)
}

// LoadFromEnv 从环境变量加载MQTT配置
func (c *MQTTConfig) LoadFromEnv(prefix string) error {
	return parseWithPrefix(c, prefix)
}

func parseWithPrefix(target any, prefix string) error {
	if err := env.ParseWithOptions(target, env.Options{Prefix: prefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
