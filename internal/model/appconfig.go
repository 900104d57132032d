package model

// AppConfig holds user-level application preferences persisted between
// runs.
type AppConfig struct {
	// Default bin settings applied to new requests
	DefaultHeightUnits     int     `json:"default_height_units"`
	DefaultWallThickness   float64 `json:"default_wall_thickness"`
	DefaultCutoutDepth     float64 `json:"default_cutout_depth"`
	DefaultCutoutClearance float64 `json:"default_cutout_clearance"`
	DefaultBedSize         float64 `json:"default_bed_size"`
	DefaultMagnets         bool    `json:"default_magnets"`
	DefaultStackingLip     bool    `json:"default_stacking_lip"`

	// Application preferences
	StoreDir   string   `json:"store_dir,omitempty"`  // artifact store root, empty = default
	OutputDir  string   `json:"output_dir,omitempty"` // export target, empty = working dir
	LogLevel   string   `json:"log_level,omitempty"`
	RecentBins []string `json:"recent_bins"`
}

// DefaultAppConfig returns the factory settings.
func DefaultAppConfig() AppConfig {
	d := DefaultBinConfig()
	return AppConfig{
		DefaultHeightUnits:     d.HeightUnits,
		DefaultWallThickness:   d.WallThickness,
		DefaultCutoutDepth:     d.CutoutDepth,
		DefaultCutoutClearance: d.CutoutClearance,
		DefaultBedSize:         d.BedSize,
		DefaultMagnets:         d.Magnets,
		DefaultStackingLip:     d.StackingLip,
		RecentBins:             []string{},
	}
}

// BinDefaults builds a BinConfig from the configured defaults.
func (c AppConfig) BinDefaults() BinConfig {
	cfg := DefaultBinConfig()
	if c.DefaultHeightUnits > 0 {
		cfg.HeightUnits = c.DefaultHeightUnits
	}
	if c.DefaultWallThickness > 0 {
		cfg.WallThickness = c.DefaultWallThickness
	}
	if c.DefaultCutoutDepth > 0 {
		cfg.CutoutDepth = c.DefaultCutoutDepth
	}
	if c.DefaultCutoutClearance > 0 {
		cfg.CutoutClearance = c.DefaultCutoutClearance
	}
	if c.DefaultBedSize > 0 {
		cfg.BedSize = c.DefaultBedSize
	}
	cfg.Magnets = c.DefaultMagnets
	cfg.StackingLip = c.DefaultStackingLip
	return cfg
}
