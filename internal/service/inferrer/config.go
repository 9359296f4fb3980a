package inferrer

import "time"

// Preset names the five inference configurations from §4.2's
// "Configuration presets".
type Preset string

const (
	PresetConservative Preset = "conservative"
	PresetBalanced      Preset = "balanced"
	PresetAggressive    Preset = "aggressive"
	PresetCostOptimized Preset = "cost_optimized"
	PresetPatternOnly   Preset = "pattern_only"
)

// Config holds the individual settings enumerated in §6.5. ForPreset fills
// every field from a named preset; the fields are then used as given (a zero
// field is not replaced by a preset value), and Preset itself only decides
// whether the Oracle pass runs.
type Config struct {
	Preset                    Preset
	PatternConfidenceThreshold float64
	AIConfidenceThreshold      float64
	CombinedConfidenceBoost    float64
	MaxAIPairsPerBatch         int
	CacheTTL                   time.Duration
}

// DefaultConfig is the "balanced" preset (§6.5 defaults).
func DefaultConfig() Config {
	return Config{
		Preset:                     PresetBalanced,
		PatternConfidenceThreshold: 0.8,
		AIConfidenceThreshold:      0.7,
		CombinedConfidenceBoost:    0.15,
		MaxAIPairsPerBatch:         20,
		CacheTTL:                   24 * time.Hour,
	}
}

// ForPreset returns the configuration for a named preset, overlaying the
// balanced defaults.
func ForPreset(p Preset) Config {
	cfg := DefaultConfig()
	cfg.Preset = p
	switch p {
	case PresetConservative:
		cfg.PatternConfidenceThreshold = 0.9
		cfg.AIConfidenceThreshold = 0.85
		cfg.MaxAIPairsPerBatch = 10
	case PresetAggressive:
		cfg.PatternConfidenceThreshold = 0.7
		cfg.AIConfidenceThreshold = 0.55
		cfg.MaxAIPairsPerBatch = 40
	case PresetCostOptimized:
		cfg.MaxAIPairsPerBatch = 5
		cfg.CacheTTL = 72 * time.Hour
	case PresetPatternOnly:
		// Oracle pass disabled entirely by the caller checking this flag.
	}
	return cfg
}

func (c Config) OracleDisabled() bool { return c.Preset == PresetPatternOnly }
