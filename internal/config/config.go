// Package config loads the enumerated settings of §6.5 from environment
// variables into an explicit struct, using plain os.Getenv/strconv reads
// with typed parse-or-default helpers rather than pulling in a struct-tag
// env-binding library. Unknown environment variables are ignored; missing ones fall
// back to the documented defaults.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/marcus-ai/marcus/internal/service/coordinator"
	"github.com/marcus-ai/marcus/internal/service/inferrer"
	"github.com/marcus-ai/marcus/internal/service/lease"
)

// LedgerBackend selects the ledgerstore/locker implementation pair.
type LedgerBackend string

const (
	LedgerBackendFilesystem LedgerBackend = "filesystem"
	LedgerBackendPostgres   LedgerBackend = "postgres"
)

// OracleBackend selects the oracle.Oracle implementation.
type OracleBackend string

const (
	OracleBackendNone      OracleBackend = "none"
	OracleBackendHeuristic OracleBackend = "heuristic"
	OracleBackendAnthropic OracleBackend = "anthropic"
)

type Config struct {
	// Reconciler / monitor.
	CheckInterval time.Duration

	// Lease Manager.
	Lease lease.Config

	// Dependency Inferer.
	Inferrer inferrer.Config

	// Cancellation & timeouts for outbound calls.
	Coordinator    coordinator.Config
	LedgerTimeout  time.Duration

	// Ledger capacity / queueing.
	AssignmentCapacityPerAgent int
	EventQueueMax              int

	// Persisted state.
	DataDir    string
	FsyncOnSave bool

	// Connection pooling for outbound Board/Oracle calls (§5: "connection-
	// pooled; pool size configurable, default 4").
	BoardPoolSize  int
	OraclePoolSize int

	// Backend selection.
	LedgerBackend LedgerBackend
	DatabaseURL   string

	OracleBackend  OracleBackend
	AnthropicAPIKey string
	AnthropicModel  string

	// Side-channel HTTP: admin health/ping and the event WebSocket bridge.
	// Empty disables the listener entirely — the stdio tool surface never
	// depends on it.
	AdminAddr string
}

// Load reads every recognized key from the environment, falling back to the
// §6.5 defaults for anything unset or malformed.
func Load() Config {
	preset := inferrer.Preset(envString("INFERENCE_PRESET", string(inferrer.PresetBalanced)))
	inf := inferrer.ForPreset(preset)
	inf.PatternConfidenceThreshold = envFloat("PATTERN_CONFIDENCE_THRESHOLD", inf.PatternConfidenceThreshold)
	inf.AIConfidenceThreshold = envFloat("AI_CONFIDENCE_THRESHOLD", inf.AIConfidenceThreshold)
	inf.CombinedConfidenceBoost = envFloat("COMBINED_CONFIDENCE_BOOST", inf.CombinedConfidenceBoost)
	inf.MaxAIPairsPerBatch = envInt("MAX_AI_PAIRS_PER_BATCH", inf.MaxAIPairsPerBatch)
	inf.CacheTTL = envHours("CACHE_TTL_HOURS", inf.CacheTTL)

	return Config{
		CheckInterval: envDuration("CHECK_INTERVAL_SECONDS", 30*time.Second),

		Lease: lease.Config{
			DefaultDuration:    envMinutes("LEASE_DEFAULT_MINUTES", 30*time.Minute),
			MaxDuration:        envMinutes("LEASE_MAX_MINUTES", 240*time.Minute),
			MaxRenewals:        envInt("MAX_RENEWALS", 5),
			HeartbeatTimeout:   envMinutes("HEARTBEAT_TIMEOUT_MINUTES", 10*time.Minute),
			AutoRenewThreshold: envMinutes("AUTO_RENEW_THRESHOLD_MINUTES", 10*time.Minute),
		},

		Inferrer: inf,

		Coordinator: coordinator.Config{
			BoardTimeout:  envSeconds("BOARD_TIMEOUT_SECONDS", 10*time.Second),
			OracleTimeout: envSeconds("ORACLE_TIMEOUT_SECONDS", 30*time.Second),
		},
		LedgerTimeout: envSeconds("LEDGER_TIMEOUT_SECONDS", 2*time.Second),

		AssignmentCapacityPerAgent: envInt("ASSIGNMENT_CAPACITY_PER_AGENT", 1),
		EventQueueMax:              envInt("EVENT_QUEUE_MAX", 1000),

		DataDir:     envString("DATA_DIR", "./data"),
		FsyncOnSave: envBool("FSYNC_ON_SAVE", true),

		BoardPoolSize:  envInt("BOARD_POOL_SIZE", 4),
		OraclePoolSize: envInt("ORACLE_POOL_SIZE", 4),

		LedgerBackend: LedgerBackend(envString("LEDGER_BACKEND", string(LedgerBackendFilesystem))),
		DatabaseURL:   envString("DATABASE_URL", ""),

		OracleBackend:   OracleBackend(envString("ORACLE_BACKEND", string(OracleBackendHeuristic))),
		AnthropicAPIKey: envString("ANTHROPIC_API_KEY", ""),
		AnthropicModel:  envString("ANTHROPIC_MODEL", ""),

		AdminAddr: envString("ADMIN_ADDR", ""),
	}
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

// envDuration reads an integer-seconds env var, matching the teacher's
// envDuration helper in its reaper.
func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return def
}

func envSeconds(key string, def time.Duration) time.Duration {
	return envDuration(key, def)
}

func envMinutes(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if mins, err := strconv.Atoi(v); err == nil && mins > 0 {
			return time.Duration(mins) * time.Minute
		}
	}
	return def
}

func envHours(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if hrs, err := strconv.Atoi(v); err == nil && hrs > 0 {
			return time.Duration(hrs) * time.Hour
		}
	}
	return def
}
