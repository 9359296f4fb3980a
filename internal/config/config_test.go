package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/marcus-ai/marcus/internal/config"
)

func TestLoad_DefaultsWhenUnset(t *testing.T) {
	cfg := config.Load()

	assert.Equal(t, 30*time.Second, cfg.CheckInterval)
	assert.Equal(t, 30*time.Minute, cfg.Lease.DefaultDuration)
	assert.Equal(t, config.LedgerBackendFilesystem, cfg.LedgerBackend)
	assert.Equal(t, config.OracleBackendHeuristic, cfg.OracleBackend)
	assert.True(t, cfg.FsyncOnSave)
}

func TestLoad_OverridesFromEnvironment(t *testing.T) {
	t.Setenv("CHECK_INTERVAL_SECONDS", "45")
	t.Setenv("LEASE_DEFAULT_MINUTES", "15")
	t.Setenv("LEDGER_BACKEND", "postgres")
	t.Setenv("ORACLE_BACKEND", "anthropic")
	t.Setenv("FSYNC_ON_SAVE", "false")
	t.Setenv("ASSIGNMENT_CAPACITY_PER_AGENT", "3")

	cfg := config.Load()

	assert.Equal(t, 45*time.Second, cfg.CheckInterval)
	assert.Equal(t, 15*time.Minute, cfg.Lease.DefaultDuration)
	assert.Equal(t, config.LedgerBackendPostgres, cfg.LedgerBackend)
	assert.Equal(t, config.OracleBackendAnthropic, cfg.OracleBackend)
	assert.False(t, cfg.FsyncOnSave)
	assert.Equal(t, 3, cfg.AssignmentCapacityPerAgent)
}

func TestLoad_MalformedIntFallsBackToDefault(t *testing.T) {
	t.Setenv("CHECK_INTERVAL_SECONDS", "not-a-number")

	cfg := config.Load()
	assert.Equal(t, 30*time.Second, cfg.CheckInterval)
}

func TestLoad_InferencePresetAppliesDefaultsBeforeOverrides(t *testing.T) {
	t.Setenv("INFERENCE_PRESET", "conservative")
	t.Setenv("AI_CONFIDENCE_THRESHOLD", "0.6")

	cfg := config.Load()
	assert.Equal(t, 0.9, cfg.Inferrer.PatternConfidenceThreshold)
	assert.Equal(t, 10, cfg.Inferrer.MaxAIPairsPerBatch)
	assert.Equal(t, 0.6, cfg.Inferrer.AIConfidenceThreshold)
}
