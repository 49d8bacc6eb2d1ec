// Package config loads service configuration from the environment. Policy
// thresholds live here rather than in code: the similarity cutoff and the
// trusted-source cutoff are operator-tunable, not law.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config captures everything the server needs at startup. All variables are
// prefixed UNIFY_, e.g. UNIFY_DATABASE_URL.
type Config struct {
	Addr     string `envconfig:"ADDR" default:":8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// DatabaseURL selects the Postgres store; empty runs on the in-memory
	// store (dev and tests).
	DatabaseURL string `envconfig:"DATABASE_URL"`

	// RedisURL enables the snapshot cache; empty disables caching.
	RedisURL         string        `envconfig:"REDIS_URL"`
	SnapshotCacheTTL time.Duration `envconfig:"SNAPSHOT_CACHE_TTL" default:"60s"`

	// KafkaBrokers enables decision event publishing; empty keeps events
	// in-process only.
	KafkaBrokers []string `envconfig:"KAFKA_BROKERS"`
	KafkaTopic   string   `envconfig:"KAFKA_TOPIC" default:"unify.decisions"`

	// SnapshotInterval drives the background data-quality worker; zero
	// disables the schedule (snapshots stay on-demand).
	SnapshotInterval time.Duration `envconfig:"SNAPSHOT_INTERVAL" default:"5m"`

	Policy Policy
}

// Policy holds the resolution thresholds described to operators in the
// dashboard copy. Defaults mirror that copy; confirm with stakeholders before
// relying on them for irreversible merges.
type Policy struct {
	// SimilarityThreshold is the name-similarity cutoff separating a strong
	// link signal from a dissimilar-name conflict on identifier matches.
	SimilarityThreshold float64 `envconfig:"SIMILARITY_THRESHOLD" default:"0.5"`

	// TrustedSourceThreshold is the source-confidence cutoff above which a
	// source may create a new person on a dissimilar-name identifier
	// collision instead of routing to review.
	TrustedSourceThreshold float64 `envconfig:"TRUSTED_SOURCE_THRESHOLD" default:"0.7"`

	// DefaultSourceScore is assigned when an unknown source is
	// auto-registered.
	DefaultSourceScore float64 `envconfig:"DEFAULT_SOURCE_SCORE" default:"0.5"`

	// AutoRegisterSources permits ingest from sources missing from the
	// registry by registering them at DefaultSourceScore.
	AutoRegisterSources bool `envconfig:"AUTO_REGISTER_SOURCES" default:"false"`

	// MaxCandidates caps how many candidates are scored per staged record.
	MaxCandidates int `envconfig:"MAX_CANDIDATES" default:"5"`

	// PendingCriticalThreshold flips the review-queue problem from warning
	// to critical.
	PendingCriticalThreshold int `envconfig:"PENDING_CRITICAL_THRESHOLD" default:"500"`
}

// Load reads configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("unify", &cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if cfg.Policy.SimilarityThreshold < 0 || cfg.Policy.SimilarityThreshold > 1 {
		return Config{}, fmt.Errorf("similarity threshold %v out of range [0,1]", cfg.Policy.SimilarityThreshold)
	}
	if cfg.Policy.TrustedSourceThreshold < 0 || cfg.Policy.TrustedSourceThreshold > 1 {
		return Config{}, fmt.Errorf("trusted source threshold %v out of range [0,1]", cfg.Policy.TrustedSourceThreshold)
	}
	return cfg, nil
}
