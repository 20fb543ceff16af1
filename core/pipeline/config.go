package pipeline

// Config holds environment-tunable defaults for the reconciliation stages.
// Explicitly set flags take precedence over these values.
type Config struct {
	// AutoThreshold is the default confidence for auto-accepting a match.
	AutoThreshold float64 `mapstructure:"auto_threshold" default:"0.9"`
	// MinConf is the default confidence for keeping a match in review.
	MinConf float64 `mapstructure:"min_conf" default:"0.5"`
	// Checkpoint is the default checkpoint file path for pipeline runs.
	Checkpoint string `mapstructure:"checkpoint" default:""`
}
