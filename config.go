package mapengine

import "time"

// Config is the MapView engine configuration: cache budgets, throttling,
// fade timing, and worker pool sizing. It is designed to be loaded from a
// TOML file by internal/engcfg (mirroring noisetorch-NoiseTorch's
// BurntSushi/toml-based settings file), or constructed directly by an
// embedding application.
type Config struct {
	// CacheBudgetBytes bounds the TileCache's resident cost total. MapView
	// builds its TileCache with the default unit cost per tile, so there
	// the value caps the number of resident tiles.
	CacheBudgetBytes int64 `toml:"cache_budget_bytes"`
	// StorageLevel is the quad-tree level the VisibleTileSet enumerates.
	StorageLevel int `toml:"storage_level"`
	// MaxFPS caps the FrameDriver's tick rate and feeds the Scheduler's
	// process_pending per-frame time budget; 0 means uncapped.
	MaxFPS float64 `toml:"max_fps"`
	// MovementSettleDelayMS is how long the camera must hold still before
	// CameraMovementDetector emits EventMovementFinished.
	MovementSettleDelayMS int `toml:"movement_settle_delay_ms"`
	// WorkerCount sizes the Scheduler's decode worker pool.
	WorkerCount int `toml:"worker_count"`
	// FadeDurationMS is the label/icon fade-in and fade-out duration.
	FadeDurationMS int `toml:"fade_duration_ms"`
	// SearchUpLevels/SearchDownLevels are loaded but not read by the engine:
	// VisibleTileSet.fallback searches every ancestor up to level 0 and
	// then the four direct children, whatever these are set to.
	SearchUpLevels   int `toml:"search_up_levels"`
	SearchDownLevels int `toml:"search_down_levels"`

	// FarPlane is the camera's far clip distance, used by Label Placement
	// for its distance-ratio cull and opacity scale ramp.
	FarPlane float64 `toml:"far_plane"`
	// MaxDistanceRatioForLabels caps label visibility distance as a
	// fraction of FarPlane; <= 0 disables the cull.
	MaxDistanceRatioForLabels float64 `toml:"max_distance_ratio_for_labels"`
	// LabelStartScaleDistance is the distance beyond which label
	// opacity begins ramping down toward FarPlane; <= 0 disables the ramp.
	LabelStartScaleDistance float64 `toml:"label_start_scale_distance"`
	// MaxNumVisibleLabels caps the main label-placement pass; <= 0 means
	// unbounded.
	MaxNumVisibleLabels int `toml:"max_num_visible_labels"`
	// NumSecondChanceLabels caps the second-chance label-placement pass;
	// <= 0 means unbounded.
	NumSecondChanceLabels int `toml:"num_second_chance_labels"`
}

// MovementSettleDelay returns MovementSettleDelayMS as a time.Duration.
func (c Config) MovementSettleDelay() time.Duration {
	return time.Duration(c.MovementSettleDelayMS) * time.Millisecond
}

// FadeDuration returns FadeDurationMS in seconds, the unit gween.Tween uses.
func (c Config) FadeDuration() float32 {
	return float32(c.FadeDurationMS) / 1000
}

// LabelPlacement derives the LabelPlacementConfig a MapView's LabelPlacement
// engine is constructed with from this Config.
func (c Config) LabelPlacement() LabelPlacementConfig {
	return LabelPlacementConfig{
		FarPlane:                  c.FarPlane,
		MaxDistanceRatioForLabels: c.MaxDistanceRatioForLabels,
		LabelStartScaleDistance:   c.LabelStartScaleDistance,
		MaxNumVisibleLabels:       c.MaxNumVisibleLabels,
		NumSecondChanceLabels:     c.NumSecondChanceLabels,
	}
}

// DefaultConfig returns reasonable defaults for a small embedded map view.
func DefaultConfig() Config {
	return Config{
		CacheBudgetBytes:          64 * 1024 * 1024,
		StorageLevel:              14,
		MaxFPS:                    60,
		MovementSettleDelayMS:     150,
		WorkerCount:               4,
		FadeDurationMS:            250,
		SearchUpLevels:            4,
		SearchDownLevels:          2,
		FarPlane:                  10000,
		MaxDistanceRatioForLabels: 0.9,
		LabelStartScaleDistance:   6000,
		MaxNumVisibleLabels:       200,
		NumSecondChanceLabels:     32,
	}
}
