package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process level configuration.
type Server struct {
	Addr        string
	Environment string
	Version     string

	Log       LogConfig
	Redis     RedisConfig
	Postgres  PostgresConfig
	Kafka     KafkaConfig
	Providers ProvidersConfig
	Cases     CasesConfig
	Decision  DecisionConfig
	AuditSink AuditSinkConfig
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, text
}

// RedisConfig configures the vital-status cache. An empty URL disables Redis.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// PostgresConfig configures verdict persistence and the financial store.
// An empty URL selects in-memory stores.
type PostgresConfig struct {
	URL      string
	MaxConns int32
}

// KafkaConfig configures the audit stream. No brokers disables it.
type KafkaConfig struct {
	Brokers           []string
	AuditTopic        string
	Partitions        int32
	ReplicationFactor int16
}

// ProvidersConfig configures the external collaborators. Empty URLs select
// the static development providers.
type ProvidersConfig struct {
	RegistryURL    string
	RegistryAPIKey string
	VisionURL      string
	VisionAPIKey   string
	Timeout        time.Duration

	// RegistryCacheTTL bounds how long a vital status is reused.
	RegistryCacheTTL time.Duration
	// BreakerThreshold is the consecutive registry failures that open the circuit.
	BreakerThreshold int
}

// CasesConfig configures case intake and retention.
type CasesConfig struct {
	TTL            time.Duration
	SweepInterval  time.Duration
	MaxUploadBytes int64
}

// DecisionConfig configures fact gathering.
type DecisionConfig struct {
	ParallelLookups bool
	EvidenceTimeout time.Duration
	AuditBuffer     int
}

// AuditSinkConfig configures the audit archive consumer (cmd/auditsink). It
// reads the audit topic and copies events into a separate database.
type AuditSinkConfig struct {
	ArchiveURL    string
	ConsumerGroup string
}

// Defaults used when the environment leaves a value unset.
const (
	DefaultAddr             = ":8080"
	DefaultAuditTopic       = "poliza.audit"
	DefaultAuditGroup       = "poliza-audit-archive"
	DefaultProviderTimeout  = 10 * time.Second
	DefaultRegistryCacheTTL = 5 * time.Minute
	DefaultCaseTTL          = 24 * time.Hour
	DefaultSweepInterval    = time.Hour
	DefaultMaxUploadBytes   = 10 << 20
	DefaultEvidenceTimeout  = 30 * time.Second
)

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	var errs []error
	env := envReader{errs: &errs}

	cfg := Server{
		Addr:        env.str("POLIZA_ADDR", DefaultAddr),
		Environment: env.str("POLIZA_ENV", "dev"),
		Version:     env.str("POLIZA_VERSION", "dev"),
		Log: LogConfig{
			Level:  strings.ToLower(env.str("LOG_LEVEL", "info")),
			Format: strings.ToLower(env.str("LOG_FORMAT", "json")),
		},
		Redis: RedisConfig{
			URL:          env.str("REDIS_URL", ""),
			PoolSize:     env.integer("REDIS_POOL_SIZE", 10),
			MinIdleConns: env.integer("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  env.duration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  env.duration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: env.duration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Postgres: PostgresConfig{
			URL:      env.str("DATABASE_URL", ""),
			MaxConns: int32(env.integer("DATABASE_MAX_CONNS", 10)),
		},
		Kafka: KafkaConfig{
			Brokers:           env.list("KAFKA_BROKERS"),
			AuditTopic:        env.str("KAFKA_AUDIT_TOPIC", DefaultAuditTopic),
			Partitions:        int32(env.integer("KAFKA_AUDIT_PARTITIONS", 3)),
			ReplicationFactor: int16(env.integer("KAFKA_AUDIT_REPLICATION", 1)),
		},
		Providers: ProvidersConfig{
			RegistryURL:      env.str("REGISTRY_URL", ""),
			RegistryAPIKey:   env.str("REGISTRY_API_KEY", ""),
			VisionURL:        env.str("VISION_URL", ""),
			VisionAPIKey:     env.str("VISION_API_KEY", ""),
			Timeout:          env.duration("PROVIDER_TIMEOUT", DefaultProviderTimeout),
			RegistryCacheTTL: env.duration("REGISTRY_CACHE_TTL", DefaultRegistryCacheTTL),
			BreakerThreshold: env.integer("REGISTRY_BREAKER_THRESHOLD", 5),
		},
		Cases: CasesConfig{
			TTL:            env.duration("CASE_TTL", DefaultCaseTTL),
			SweepInterval:  env.duration("CASE_SWEEP_INTERVAL", DefaultSweepInterval),
			MaxUploadBytes: int64(env.integer("MAX_UPLOAD_BYTES", DefaultMaxUploadBytes)),
		},
		Decision: DecisionConfig{
			ParallelLookups: env.boolean("PARALLEL_LOOKUPS", false),
			EvidenceTimeout: env.duration("EVIDENCE_TIMEOUT", DefaultEvidenceTimeout),
			AuditBuffer:     env.integer("AUDIT_BUFFER", 256),
		},
		AuditSink: AuditSinkConfig{
			ArchiveURL:    env.str("AUDIT_ARCHIVE_URL", ""),
			ConsumerGroup: env.str("KAFKA_AUDIT_GROUP", DefaultAuditGroup),
		},
	}
	if len(errs) > 0 {
		return Server{}, errors.Join(errs...)
	}
	return cfg, cfg.Validate()
}

// Validate rejects configurations the server cannot run with.
func (s Server) Validate() error {
	var errs []error
	if s.Addr == "" {
		errs = append(errs, errors.New("POLIZA_ADDR must not be empty"))
	}
	switch s.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL %q is not one of debug, info, warn, error", s.Log.Level))
	}
	switch s.Log.Format {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT %q is not one of json, text", s.Log.Format))
	}
	if s.Providers.Timeout <= 0 {
		errs = append(errs, errors.New("PROVIDER_TIMEOUT must be positive"))
	}
	if s.Providers.RegistryCacheTTL < 0 {
		errs = append(errs, errors.New("REGISTRY_CACHE_TTL must not be negative"))
	}
	if s.Providers.BreakerThreshold < 1 {
		errs = append(errs, errors.New("REGISTRY_BREAKER_THRESHOLD must be at least 1"))
	}
	if s.Cases.TTL <= 0 || s.Cases.SweepInterval <= 0 {
		errs = append(errs, errors.New("CASE_TTL and CASE_SWEEP_INTERVAL must be positive"))
	}
	if s.Cases.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_BYTES must be positive"))
	}
	if s.Decision.EvidenceTimeout <= 0 {
		errs = append(errs, errors.New("EVIDENCE_TIMEOUT must be positive"))
	}
	if s.Decision.AuditBuffer < 0 {
		errs = append(errs, errors.New("AUDIT_BUFFER must not be negative"))
	}
	if len(s.Kafka.Brokers) > 0 && s.Kafka.AuditTopic == "" {
		errs = append(errs, errors.New("KAFKA_AUDIT_TOPIC is required when KAFKA_BROKERS is set"))
	}
	return errors.Join(errs...)
}

// ValidateAuditSink rejects a sink configuration that has nothing to read
// from or write to.
func (s Server) ValidateAuditSink() error {
	var errs []error
	if len(s.Kafka.Brokers) == 0 {
		errs = append(errs, errors.New("KAFKA_BROKERS is required for the audit sink"))
	}
	if s.AuditSink.ArchiveURL == "" {
		errs = append(errs, errors.New("AUDIT_ARCHIVE_URL is required for the audit sink"))
	}
	if s.AuditSink.ConsumerGroup == "" {
		errs = append(errs, errors.New("KAFKA_AUDIT_GROUP must not be empty"))
	}
	return errors.Join(errs...)
}

// DevProviders reports whether the static development collaborators are used.
func (s Server) DevProviders() bool {
	return s.Providers.RegistryURL == "" || s.Providers.VisionURL == ""
}

type envReader struct {
	errs *[]error
}

func (e envReader) str(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func (e envReader) integer(key string, def int) int {
	raw := e.str(key, "")
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		*e.errs = append(*e.errs, fmt.Errorf("%s: %q is not an integer", key, raw))
		return def
	}
	return n
}

func (e envReader) duration(key string, def time.Duration) time.Duration {
	raw := e.str(key, "")
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		*e.errs = append(*e.errs, fmt.Errorf("%s: %q is not a duration", key, raw))
		return def
	}
	return d
}

func (e envReader) boolean(key string, def bool) bool {
	raw := e.str(key, "")
	if raw == "" {
		return def
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		*e.errs = append(*e.errs, fmt.Errorf("%s: %q is not a boolean", key, raw))
		return def
	}
	return b
}

func (e envReader) list(key string) []string {
	raw := e.str(key, "")
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
