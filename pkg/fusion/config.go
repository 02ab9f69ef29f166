package fusion

import "github.com/spf13/viper"

// Options is the full engine configuration. Zero values are never used
// directly; build from DefaultOptions or FromViper.
type Options struct {
	HighAccuracy  bool `json:"highAccuracy"`
	GpsIntervalMs int  `json:"gpsIntervalMs"`
	ImuHz         int  `json:"imuHz"`

	TargetAccuracyM       float64 `json:"targetAccuracyM"`
	DiscardAccuracyAboveM float64 `json:"discardAccuracyAboveM"`
	SettleSamples         int     `json:"settleSamples"`
	DeadbandMeters        float64 `json:"deadbandMeters"`
	GoodHoldTimeoutMs     int64   `json:"goodHoldTimeoutMs"`

	PromoteHighAboveM    float64 `json:"promoteHighAboveM"`
	DemoteBalancedBelowM float64 `json:"demoteBalancedBelowM"`
	MinSwitchIntervalMs  int64   `json:"minSwitchIntervalMs"`

	EnableSnapToRoads       bool    `json:"enableSnapToRoads"`
	SnapConfidenceThreshold float64 `json:"snapConfidenceThreshold"`
	MaxSnapDistance         float64 `json:"maxSnapDistance"`
}

func DefaultOptions() Options {
	return Options{
		HighAccuracy:            true,
		GpsIntervalMs:           1000,
		ImuHz:                   50,
		TargetAccuracyM:         10,
		DiscardAccuracyAboveM:   30,
		SettleSamples:           3,
		DeadbandMeters:          1.5,
		GoodHoldTimeoutMs:       10000,
		PromoteHighAboveM:       15,
		DemoteBalancedBelowM:    12,
		MinSwitchIntervalMs:     5000,
		EnableSnapToRoads:       false,
		SnapConfidenceThreshold: 0.3,
		MaxSnapDistance:         50,
	}
}

// FromViper reads the engine options from viper, falling back to the
// defaults for unset keys.
func FromViper() Options {
	def := DefaultOptions()

	viper.SetDefault("fusion.highAccuracy", def.HighAccuracy)
	viper.SetDefault("fusion.gpsIntervalMs", def.GpsIntervalMs)
	viper.SetDefault("fusion.imuHz", def.ImuHz)
	viper.SetDefault("fusion.targetAccuracyM", def.TargetAccuracyM)
	viper.SetDefault("fusion.discardAccuracyAboveM", def.DiscardAccuracyAboveM)
	viper.SetDefault("fusion.settleSamples", def.SettleSamples)
	viper.SetDefault("fusion.deadbandMeters", def.DeadbandMeters)
	viper.SetDefault("fusion.goodHoldTimeoutMs", def.GoodHoldTimeoutMs)
	viper.SetDefault("fusion.promoteHighAboveM", def.PromoteHighAboveM)
	viper.SetDefault("fusion.demoteBalancedBelowM", def.DemoteBalancedBelowM)
	viper.SetDefault("fusion.minSwitchIntervalMs", def.MinSwitchIntervalMs)
	viper.SetDefault("fusion.enableSnapToRoads", def.EnableSnapToRoads)
	viper.SetDefault("fusion.snapConfidenceThreshold", def.SnapConfidenceThreshold)
	viper.SetDefault("fusion.maxSnapDistance", def.MaxSnapDistance)

	return Options{
		HighAccuracy:            viper.GetBool("fusion.highAccuracy"),
		GpsIntervalMs:           viper.GetInt("fusion.gpsIntervalMs"),
		ImuHz:                   viper.GetInt("fusion.imuHz"),
		TargetAccuracyM:         viper.GetFloat64("fusion.targetAccuracyM"),
		DiscardAccuracyAboveM:   viper.GetFloat64("fusion.discardAccuracyAboveM"),
		SettleSamples:           viper.GetInt("fusion.settleSamples"),
		DeadbandMeters:          viper.GetFloat64("fusion.deadbandMeters"),
		GoodHoldTimeoutMs:       viper.GetInt64("fusion.goodHoldTimeoutMs"),
		PromoteHighAboveM:       viper.GetFloat64("fusion.promoteHighAboveM"),
		DemoteBalancedBelowM:    viper.GetFloat64("fusion.demoteBalancedBelowM"),
		MinSwitchIntervalMs:     viper.GetInt64("fusion.minSwitchIntervalMs"),
		EnableSnapToRoads:       viper.GetBool("fusion.enableSnapToRoads"),
		SnapConfidenceThreshold: viper.GetFloat64("fusion.snapConfidenceThreshold"),
		MaxSnapDistance:         viper.GetFloat64("fusion.maxSnapDistance"),
	}
}
