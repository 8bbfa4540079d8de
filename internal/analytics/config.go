package analytics

// Config holds the thresholds used by the analytics engine.
type Config struct {
	// SlopeThreshold: trends with |slope| below this are stable.
	SlopeThreshold float64 `yaml:"slope_threshold" json:"slope_threshold"`
	// RelativeSlope divides the slope by |mean| before thresholding so series
	// on different unit scales share one threshold.
	RelativeSlope bool `yaml:"relative_slope" json:"relative_slope"`

	SignificanceThreshold         float64 `yaml:"significance_threshold" json:"significance_threshold"`
	SeasonalSignificanceThreshold float64 `yaml:"seasonal_significance_threshold" json:"seasonal_significance_threshold"`

	CorrelationThreshold float64 `yaml:"correlation_threshold" json:"correlation_threshold"`
	MinCorrelationPairs  int     `yaml:"min_correlation_pairs" json:"min_correlation_pairs"`

	PreferenceStableBand float64 `yaml:"preference_stable_band" json:"preference_stable_band"`
	ShiftMagnitudeCap    float64 `yaml:"shift_magnitude_cap" json:"shift_magnitude_cap"`

	ForecastHorizonDays int     `yaml:"forecast_horizon_days" json:"forecast_horizon_days"`
	HighConfidence      float64 `yaml:"high_confidence" json:"high_confidence"`
	LowConfidence       float64 `yaml:"low_confidence" json:"low_confidence"`

	AnomalyZThreshold    float64 `yaml:"anomaly_z_threshold" json:"anomaly_z_threshold"`
	AnomalyIQRMultiplier float64 `yaml:"anomaly_iqr_multiplier" json:"anomaly_iqr_multiplier"`
	MinAnomalyPoints     int     `yaml:"min_anomaly_points" json:"min_anomaly_points"`
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		SlopeThreshold:                0.01,
		SignificanceThreshold:         10,
		SeasonalSignificanceThreshold: 15,
		CorrelationThreshold:          0.3,
		MinCorrelationPairs:           10,
		PreferenceStableBand:          5,
		ShiftMagnitudeCap:             100,
		ForecastHorizonDays:           30,
		HighConfidence:                0.8,
		LowConfidence:                 0.6,
		AnomalyZThreshold:             3,
		AnomalyIQRMultiplier:          1.5,
		MinAnomalyPoints:              5,
	}
}

// withDefaults fills zero fields so a partially specified config behaves.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.SlopeThreshold <= 0 {
		c.SlopeThreshold = d.SlopeThreshold
	}
	if c.SignificanceThreshold <= 0 {
		c.SignificanceThreshold = d.SignificanceThreshold
	}
	if c.SeasonalSignificanceThreshold <= 0 {
		c.SeasonalSignificanceThreshold = d.SeasonalSignificanceThreshold
	}
	if c.CorrelationThreshold <= 0 {
		c.CorrelationThreshold = d.CorrelationThreshold
	}
	if c.MinCorrelationPairs <= 0 {
		c.MinCorrelationPairs = d.MinCorrelationPairs
	}
	if c.PreferenceStableBand <= 0 {
		c.PreferenceStableBand = d.PreferenceStableBand
	}
	if c.ShiftMagnitudeCap <= 0 {
		c.ShiftMagnitudeCap = d.ShiftMagnitudeCap
	}
	if c.ForecastHorizonDays <= 0 {
		c.ForecastHorizonDays = d.ForecastHorizonDays
	}
	if c.HighConfidence <= 0 {
		c.HighConfidence = d.HighConfidence
	}
	if c.LowConfidence <= 0 {
		c.LowConfidence = d.LowConfidence
	}
	if c.AnomalyZThreshold <= 0 {
		c.AnomalyZThreshold = d.AnomalyZThreshold
	}
	if c.AnomalyIQRMultiplier <= 0 {
		c.AnomalyIQRMultiplier = d.AnomalyIQRMultiplier
	}
	if c.MinAnomalyPoints <= 0 {
		c.MinAnomalyPoints = d.MinAnomalyPoints
	}
	return c
}

// Engine runs the statistical analyses with one Config.
type Engine struct {
	cfg Config
}

// NewEngine creates an Engine. Zero fields in cfg take their defaults.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg.withDefaults()}
}

// Config returns the effective configuration.
func (e *Engine) Config() Config {
	return e.cfg
}
