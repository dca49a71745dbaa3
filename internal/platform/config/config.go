package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Server captures process level configuration.
type Server struct {
	Addr       string `mapstructure:"addr"`
	LogLevel   string `mapstructure:"log_level"`
	LogFormat  string `mapstructure:"log_format"`
	// AdminToken is the operator token, plain or bcrypt-hashed.
	AdminToken string `mapstructure:"admin_token"`

	Postgres  PostgresConfig  `mapstructure:"postgres"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Threat    ThreatConfig    `mapstructure:"threat"`
	Device    DeviceConfig    `mapstructure:"device"`
	Screening ScreeningConfig `mapstructure:"screening"`
	Recovery  RecoveryConfig  `mapstructure:"recovery"`
	Audit     AuditConfig     `mapstructure:"audit"`
}

// AuditConfig tunes the security ring buffer and operational sampling.
// Compliance events are always written synchronously.
type AuditConfig struct {
	OpsSampleRate         float64       `mapstructure:"ops_sample_rate"`
	SecurityBufferSize    int           `mapstructure:"security_buffer_size"`
	SecurityFlushInterval time.Duration `mapstructure:"security_flush_interval"`
}

// PostgresConfig selects the PostgreSQL record store. An empty DSN keeps the
// in-memory store.
type PostgresConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	Migrate         bool          `mapstructure:"migrate"`
}

// RedisConfig configures the trust-state cache and threat counters.
type RedisConfig struct {
	URL           string        `mapstructure:"url"`
	PoolSize      int           `mapstructure:"pool_size"`
	MinIdleConns  int           `mapstructure:"min_idle_conns"`
	DialTimeout   time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout   time.Duration `mapstructure:"read_timeout"`
	WriteTimeout  time.Duration `mapstructure:"write_timeout"`
	TrustCacheTTL time.Duration `mapstructure:"trust_cache_ttl"`
}

// KafkaConfig configures the threat alert producer.
type KafkaConfig struct {
	Brokers           []string `mapstructure:"brokers"`
	AlertTopic        string   `mapstructure:"alert_topic"`
	Partitions        int32    `mapstructure:"partitions"`
	ReplicationFactor int16    `mapstructure:"replication_factor"`
}

// NATSConfig selects the NATS-backed threat queue. Empty URL keeps the
// in-process channel queue.
type NATSConfig struct {
	URL           string        `mapstructure:"url"`
	Subject       string        `mapstructure:"subject"`
	MaxReconnects int           `mapstructure:"max_reconnects"`
	ReconnectWait time.Duration `mapstructure:"reconnect_wait"`
}

type ThreatConfig struct {
	QueueSize       int           `mapstructure:"queue_size"`
	BatchSize       int           `mapstructure:"batch_size"`
	FlushInterval   time.Duration `mapstructure:"flush_interval"`
	ExternalTimeout time.Duration `mapstructure:"external_timeout"`
	LookupCacheTTL  time.Duration `mapstructure:"lookup_cache_ttl"`
	Blocklist       []BlockedCIDR `mapstructure:"blocklist"`
	GeoRanges       []GeoCIDR     `mapstructure:"geo_ranges"`
}

// BlockedCIDR is a threat-intel entry for a network range.
type BlockedCIDR struct {
	CIDR       string   `mapstructure:"cidr"`
	Score      float64  `mapstructure:"score"`
	Categories []string `mapstructure:"categories"`
}

// GeoCIDR pins a network range to a location for the static geo resolver.
type GeoCIDR struct {
	CIDR      string  `mapstructure:"cidr"`
	Country   string  `mapstructure:"country"`
	City      string  `mapstructure:"city"`
	Latitude  float64 `mapstructure:"latitude"`
	Longitude float64 `mapstructure:"longitude"`
}

type DeviceConfig struct {
	TrustedTTL time.Duration `mapstructure:"trusted_ttl"`
}

type ScreeningConfig struct {
	Timeout   time.Duration    `mapstructure:"timeout"`
	Watchlist []WatchlistEntry `mapstructure:"watchlist"`
}

type WatchlistEntry struct {
	Name   string `mapstructure:"name"`
	List   string `mapstructure:"list"`
	Source string `mapstructure:"source"`
}

// RecoveryConfig signs and verifies MFA recovery tokens.
type RecoveryConfig struct {
	SigningKey string        `mapstructure:"signing_key"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("addr", ":8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")

	v.SetDefault("postgres.max_open_conns", 20)
	v.SetDefault("postgres.max_idle_conns", 5)
	v.SetDefault("postgres.conn_max_lifetime", 30*time.Minute)
	v.SetDefault("postgres.migrate", true)

	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 2)
	v.SetDefault("redis.dial_timeout", 5*time.Second)
	v.SetDefault("redis.read_timeout", 3*time.Second)
	v.SetDefault("redis.write_timeout", 3*time.Second)
	v.SetDefault("redis.trust_cache_ttl", 5*time.Minute)

	v.SetDefault("kafka.alert_topic", "riskgate.threat-alerts")
	v.SetDefault("kafka.partitions", 3)
	v.SetDefault("kafka.replication_factor", 1)

	v.SetDefault("nats.subject", "riskgate.security-events")
	v.SetDefault("nats.max_reconnects", 10)
	v.SetDefault("nats.reconnect_wait", 2*time.Second)

	v.SetDefault("threat.queue_size", 4096)
	v.SetDefault("threat.batch_size", 50)
	v.SetDefault("threat.flush_interval", 2*time.Second)
	v.SetDefault("threat.external_timeout", 3*time.Second)
	v.SetDefault("threat.lookup_cache_ttl", 5*time.Minute)

	v.SetDefault("device.trusted_ttl", 30*24*time.Hour)
	v.SetDefault("screening.timeout", 3*time.Second)

	v.SetDefault("recovery.signing_key", "dev-recovery-key-change-in-production")
	v.SetDefault("recovery.token_ttl", 15*time.Minute)

	v.SetDefault("audit.ops_sample_rate", 1.0)
	v.SetDefault("audit.security_buffer_size", 10000)
	v.SetDefault("audit.security_flush_interval", 500*time.Millisecond)
}

// Load reads defaults, then the optional config file at path, then
// RISKGATE_* environment variables (nested keys use "_", e.g.
// RISKGATE_POSTGRES_DSN).
func Load(path string) (Server, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("RISKGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// AutomaticEnv only resolves keys viper already knows about
	for _, key := range []string{"admin_token", "postgres.dsn", "redis.url", "kafka.brokers", "nats.url"} {
		if err := v.BindEnv(key); err != nil {
			return Server{}, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Server{}, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	var cfg Server
	if err := v.Unmarshal(&cfg); err != nil {
		return Server{}, fmt.Errorf("decode config: %w", err)
	}
	if len(cfg.Kafka.Brokers) == 1 && strings.Contains(cfg.Kafka.Brokers[0], ",") {
		cfg.Kafka.Brokers = strings.Split(cfg.Kafka.Brokers[0], ",")
	}
	return cfg, nil
}
