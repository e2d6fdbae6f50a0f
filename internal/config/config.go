package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/spf13/viper"

	"sudooom.sabacc/internal/game"
	"sudooom.sabacc/internal/sabacc/core"
	"sudooom.sabacc/internal/sabacc/engine"
)

type Config struct {
	App        AppConfig        `mapstructure:"app"`
	HTTP       HTTPConfig       `mapstructure:"http"`
	NATS       NATSConfig       `mapstructure:"nats"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Game       GameConfig       `mapstructure:"game"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler"`
	Subscriber SubscriberConfig `mapstructure:"subscriber"`
}

type AppConfig struct {
	Name     string `mapstructure:"name" env:"SABACC_APP_NAME"`
	LogLevel string `mapstructure:"log_level" env:"SABACC_LOG_LEVEL"`
}

type HTTPConfig struct {
	Addr            string        `mapstructure:"addr" env:"SABACC_HTTP_ADDR"`
	HealthAddr      string        `mapstructure:"health_addr" env:"SABACC_HEALTH_ADDR"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" env:"SABACC_HTTP_SHUTDOWN_TIMEOUT"`
}

type NATSConfig struct {
	URL           string        `mapstructure:"url" env:"SABACC_NATS_URL"`
	MaxReconnects int           `mapstructure:"max_reconnects" env:"SABACC_NATS_MAX_RECONNECTS"`
	ReconnectWait time.Duration `mapstructure:"reconnect_wait" env:"SABACC_NATS_RECONNECT_WAIT"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host" env:"SABACC_DB_HOST"`
	Port            int           `mapstructure:"port" env:"SABACC_DB_PORT"`
	Name            string        `mapstructure:"name" env:"SABACC_DB_NAME"`
	User            string        `mapstructure:"user" env:"SABACC_DB_USER"`
	Password        string        `mapstructure:"password" env:"SABACC_DB_PASSWORD"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" env:"SABACC_DB_MAX_OPEN_CONNS"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" env:"SABACC_DB_MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" env:"SABACC_DB_CONN_MAX_LIFETIME"`
}

// DSN 生成 PostgreSQL 连接串
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

type RedisConfig struct {
	Host        string        `mapstructure:"host" env:"SABACC_REDIS_HOST"`
	Port        int           `mapstructure:"port" env:"SABACC_REDIS_PORT"`
	Password    string        `mapstructure:"password" env:"SABACC_REDIS_PASSWORD"`
	DB          int           `mapstructure:"db" env:"SABACC_REDIS_DB"`
	PoolSize    int           `mapstructure:"pool_size" env:"SABACC_REDIS_POOL_SIZE"`
	SnapshotTTL time.Duration `mapstructure:"snapshot_ttl" env:"SABACC_REDIS_SNAPSHOT_TTL"`
}

// Addr host:port
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// GameConfig 会话管理与默认房规
type GameConfig struct {
	EvictTimeout     time.Duration `mapstructure:"evict_timeout" env:"SABACC_GAME_EVICT_TIMEOUT"`
	EvictInterval    time.Duration `mapstructure:"evict_interval" env:"SABACC_GAME_EVICT_INTERVAL"`
	SinkTimeout      time.Duration `mapstructure:"sink_timeout" env:"SABACC_GAME_SINK_TIMEOUT"`
	TurnTimeout      time.Duration `mapstructure:"turn_timeout" env:"SABACC_GAME_TURN_TIMEOUT"`
	TimeoutAction    string        `mapstructure:"timeout_action" env:"SABACC_GAME_TIMEOUT_ACTION"`
	DisconnectAction string        `mapstructure:"disconnect_action" env:"SABACC_GAME_DISCONNECT_ACTION"`
	AllowDiscard     bool          `mapstructure:"allow_discard" env:"SABACC_GAME_ALLOW_DISCARD"`
	Reshuffle        bool          `mapstructure:"reshuffle" env:"SABACC_GAME_RESHUFFLE"`
	SuddenDeath      bool          `mapstructure:"sudden_death" env:"SABACC_GAME_SUDDEN_DEATH"`
}

type SchedulerConfig struct {
	WorkerCount int           `mapstructure:"worker_count" env:"SABACC_SCHEDULER_WORKERS"`
	Tick        time.Duration `mapstructure:"tick" env:"SABACC_SCHEDULER_TICK"`
}

type SubscriberConfig struct {
	WorkerCount int `mapstructure:"worker_count" env:"SABACC_SUBSCRIBER_WORKERS"`
	BufferSize  int `mapstructure:"buffer_size" env:"SABACC_SUBSCRIBER_BUFFER"`
}

// Load 从指定路径加载配置, 再用 SABACC_* 环境变量覆盖
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnv 未设置的环境变量不会覆盖文件中的值
func applyEnv(cfg *Config) error {
	if err := envdecode.Decode(cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return fmt.Errorf("decode environment: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "sabacc-engine")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.health_addr", ":8081")
	v.SetDefault("http.shutdown_timeout", 10*time.Second)
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.max_reconnects", 10)
	v.SetDefault("nats.reconnect_wait", 2*time.Second)
	v.SetDefault("redis.snapshot_ttl", 24*time.Hour)
	v.SetDefault("game.evict_timeout", 30*time.Minute)
	v.SetDefault("game.evict_interval", time.Minute)
	v.SetDefault("game.sink_timeout", 3*time.Second)
	v.SetDefault("game.turn_timeout", 30*time.Second)
	v.SetDefault("game.timeout_action", "stand")
	v.SetDefault("game.disconnect_action", "stand")
	v.SetDefault("game.allow_discard", true)
	v.SetDefault("game.reshuffle", true)
	v.SetDefault("game.sudden_death", true)
	v.SetDefault("scheduler.worker_count", 10)
	v.SetDefault("scheduler.tick", time.Second)
	v.SetDefault("subscriber.worker_count", 32)
	v.SetDefault("subscriber.buffer_size", 4096)
}

// HouseRules 默认房规
func (g GameConfig) HouseRules() (game.HouseRules, error) {
	timeoutAction, err := core.ParseActionType(g.TimeoutAction)
	if err != nil {
		return game.HouseRules{}, err
	}
	disconnectAction, err := core.ParseActionType(g.DisconnectAction)
	if err != nil {
		return game.HouseRules{}, err
	}

	rules := game.HouseRules{
		TurnTimeout:      g.TurnTimeout,
		TimeoutAction:    timeoutAction,
		DisconnectAction: disconnectAction,
		Options: engine.Options{
			AllowDiscard: g.AllowDiscard,
			Reshuffle:    g.Reshuffle,
			SuddenDeath:  g.SuddenDeath,
		},
	}
	return rules, rules.Validate()
}
