package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	pstrings "transparency/pkg/platform/strings"
)

// Server captures process level configuration. Values come from an optional
// YAML file and are then overridden by environment variables.
type Server struct {
	Addr        string      `yaml:"addr"`
	LogLevel    string      `yaml:"log_level"`
	DatabaseURL string      `yaml:"database_url"`
	Redis       RedisConfig `yaml:"redis"`
	Kafka       KafkaConfig `yaml:"kafka"`
	JWT         JWTConfig   `yaml:"jwt"`
	ESIC        ESICConfig  `yaml:"esic"`
	RateLimit   RateLimit   `yaml:"rate_limit"`
	HTTP        HTTPConfig  `yaml:"http"`
}

// HTTPConfig holds server timeouts. Zero values use the server defaults.
type HTTPConfig struct {
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	ReadTimeout       time.Duration `yaml:"read_timeout"`
	WriteTimeout      time.Duration `yaml:"write_timeout"`
	IdleTimeout       time.Duration `yaml:"idle_timeout"`
}

// RedisConfig configures the Redis client. An empty URL disables Redis.
type RedisConfig struct {
	URL          string        `yaml:"url"`
	PoolSize     int           `yaml:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// KafkaConfig configures audit publication. No brokers disables the outbox relay.
type KafkaConfig struct {
	Brokers      []string      `yaml:"brokers"`
	AuditTopic   string        `yaml:"audit_topic"`
	PollInterval time.Duration `yaml:"poll_interval"`
	BatchSize    int           `yaml:"batch_size"`
}

type JWTConfig struct {
	SigningKey string        `yaml:"signing_key"`
	Issuer     string        `yaml:"issuer"`
	Audience   string        `yaml:"audience"`
	TTL        time.Duration `yaml:"ttl"`
}

// ESICConfig holds information-request settings.
type ESICConfig struct {
	// ReferenceTimezone is the zone in which request timestamps are reduced to
	// calendar dates for statutory deadline arithmetic.
	ReferenceTimezone string `yaml:"reference_timezone"`
	ProtocolPrefix    string `yaml:"protocol_prefix"`
	// ProtocolStrategy is "random" or "redis".
	ProtocolStrategy string `yaml:"protocol_strategy"`
}

// RateLimit throttles anonymous endpoints per client IP. A zero PublicLimit
// disables it.
type RateLimit struct {
	PublicLimit int           `yaml:"public_limit"`
	Window      time.Duration `yaml:"window"`
}

// Defaults returns the development configuration.
func Defaults() Server {
	return Server{
		Addr:     ":8080",
		LogLevel: "info",
		Redis: RedisConfig{
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: KafkaConfig{
			AuditTopic:   "transparency.audit",
			PollInterval: 2 * time.Second,
			BatchSize:    100,
		},
		JWT: JWTConfig{
			// Use a default for development - should be overridden in production
			SigningKey: "dev-secret-key-change-in-production",
			Issuer:     "transparency",
			Audience:   "transparency-api",
			TTL:        time.Hour,
		},
		ESIC: ESICConfig{
			ReferenceTimezone: "America/Sao_Paulo",
			ProtocolPrefix:    "ESIC",
			ProtocolStrategy:  "random",
		},
		RateLimit: RateLimit{
			PublicLimit: 60,
			Window:      time.Minute,
		},
	}
}

// FromEnv loads the file named by TRANSPARENCY_CONFIG (if any) and applies
// environment overrides so main stays lean.
func FromEnv() (Server, error) {
	return Load(os.Getenv("TRANSPARENCY_CONFIG"))
}

// Load reads path (optional) over the defaults, then applies environment overrides.
func Load(path string) (Server, error) {
	cfg := Defaults()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Server{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Server{}, fmt.Errorf("parse config file: %w", err)
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Server{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Server) error {
	setString(&cfg.Addr, "TRANSPARENCY_ADDR")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.DatabaseURL, "DATABASE_URL")
	setString(&cfg.Redis.URL, "REDIS_URL")
	setString(&cfg.Kafka.AuditTopic, "KAFKA_AUDIT_TOPIC")
	setString(&cfg.JWT.SigningKey, "JWT_SIGNING_KEY")
	setString(&cfg.JWT.Issuer, "JWT_ISSUER")
	setString(&cfg.ESIC.ReferenceTimezone, "ESIC_REFERENCE_TIMEZONE")
	setString(&cfg.ESIC.ProtocolPrefix, "ESIC_PROTOCOL_PREFIX")
	setString(&cfg.ESIC.ProtocolStrategy, "ESIC_PROTOCOL_STRATEGY")

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.Kafka.Brokers = pstrings.SplitList(brokers)
	}
	if v := os.Getenv("OUTBOX_POLL_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("OUTBOX_POLL_INTERVAL: %w", err)
		}
		cfg.Kafka.PollInterval = d
	}
	if v := os.Getenv("HTTP_WRITE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("HTTP_WRITE_TIMEOUT: %w", err)
		}
		cfg.HTTP.WriteTimeout = d
	}
	if v := os.Getenv("PUBLIC_RATE_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PUBLIC_RATE_LIMIT: %w", err)
		}
		cfg.RateLimit.PublicLimit = n
	}
	if v := os.Getenv("REDIS_POOL_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("REDIS_POOL_SIZE: %w", err)
		}
		cfg.Redis.PoolSize = n
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Validate checks settings that would otherwise fail late at first use.
func (s Server) Validate() error {
	if _, err := s.Location(); err != nil {
		return err
	}
	switch s.ESIC.ProtocolStrategy {
	case "random":
	case "redis":
		if s.Redis.URL == "" {
			return fmt.Errorf("esic.protocol_strategy=redis requires redis.url")
		}
	default:
		return fmt.Errorf("unknown esic.protocol_strategy %q", s.ESIC.ProtocolStrategy)
	}
	if s.RateLimit.PublicLimit < 0 {
		return fmt.Errorf("rate_limit.public_limit must not be negative")
	}
	if s.RateLimit.PublicLimit > 0 && s.RateLimit.Window <= 0 {
		return fmt.Errorf("rate_limit.window must be positive")
	}
	if s.HTTP.ReadHeaderTimeout < 0 || s.HTTP.ReadTimeout < 0 || s.HTTP.WriteTimeout < 0 || s.HTTP.IdleTimeout < 0 {
		return fmt.Errorf("http timeouts must not be negative")
	}
	if s.JWT.SigningKey == "" {
		return fmt.Errorf("jwt.signing_key is required")
	}
	return nil
}

// Location resolves the statutory reference timezone.
func (s Server) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(s.ESIC.ReferenceTimezone)
	if err != nil {
		return nil, fmt.Errorf("esic.reference_timezone: %w", err)
	}
	return loc, nil
}
