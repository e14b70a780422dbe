package config

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/banshee-data/spin.report/internal/fsutil"
	"github.com/banshee-data/spin.report/internal/trajectory"
)

// DefaultConfigPath is the path to the canonical analysis defaults file.
const DefaultConfigPath = "config/analysis.defaults.json"

// AnalysisConfig holds the frame rate, velocity window and physical constants
// for a run. Nil fields fall back to the defaults returned by the Get methods,
// so partial files are safe.
type AnalysisConfig struct {
	FPS            *float64 `json:"fps,omitempty"`
	VelocityWindow *int     `json:"velocity_window,omitempty"`

	// Simulator constants, in pixel-space units
	Gravity *float64 `json:"gravity,omitempty"`
	Damping *float64 `json:"damping,omitempty"`
	Drag    *float64 `json:"drag,omitempty"`
	GroundY *float64 `json:"ground_y,omitempty"`

	// Detector class kept at ingestion
	TargetClass *int `json:"target_class,omitempty"`
}

func ptrFloat64(v float64) *float64 { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyAnalysisConfig returns an AnalysisConfig with all fields set to nil.
func EmptyAnalysisConfig() *AnalysisConfig {
	return &AnalysisConfig{}
}

// DefaultAnalysisConfig returns a config with every field populated.
func DefaultAnalysisConfig() *AnalysisConfig {
	p := trajectory.DefaultPhysics()
	return &AnalysisConfig{
		FPS:            ptrFloat64(30),
		VelocityWindow: ptrInt(trajectory.DefaultVelocityWindow),
		Gravity:        ptrFloat64(p.Gravity),
		Damping:        ptrFloat64(p.Damping),
		Drag:           ptrFloat64(p.Drag),
		GroundY:        ptrFloat64(p.GroundY),
		TargetClass:    ptrInt(0),
	}
}

// LoadAnalysisConfig loads an AnalysisConfig from a JSON file on fsys.
// The file must have a .json extension and be under 1MB.
func LoadAnalysisConfig(fsys fsutil.FileSystem, path string) (*AnalysisConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	f, err := fsys.Open(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	const maxFileSize = 1 * 1024 * 1024 // 1MB
	data, err := io.ReadAll(io.LimitReader(f, maxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if len(data) > maxFileSize {
		return nil, fmt.Errorf("config file too large: over %d bytes", maxFileSize)
	}

	cfg := EmptyAnalysisConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads DefaultConfigPath, searching the current
// directory and its parents. Panics if the file cannot be loaded; intended for
// test setup.
func MustLoadDefaultConfig() *AnalysisConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath, // from internal/config/
		"../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadAnalysisConfig(fsutil.OSFileSystem{}, path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the set values are usable.
func (c *AnalysisConfig) Validate() error {
	if c.FPS != nil && *c.FPS <= 0 {
		return fmt.Errorf("fps must be positive, got %f", *c.FPS)
	}
	if c.VelocityWindow != nil && *c.VelocityWindow < 1 {
		return fmt.Errorf("velocity_window must be at least 1, got %d", *c.VelocityWindow)
	}
	if c.Damping != nil && (*c.Damping < 0 || *c.Damping > 1) {
		return fmt.Errorf("damping must be between 0 and 1, got %f", *c.Damping)
	}
	if c.Drag != nil && (*c.Drag < 0 || *c.Drag >= 1) {
		return fmt.Errorf("drag must be in [0, 1), got %f", *c.Drag)
	}
	if c.GroundY != nil && *c.GroundY <= 0 {
		return fmt.Errorf("ground_y must be positive, got %f", *c.GroundY)
	}
	if c.TargetClass != nil && *c.TargetClass < 0 {
		return fmt.Errorf("target_class must be non-negative, got %d", *c.TargetClass)
	}
	return nil
}

// GetFPS returns the fps value or the default.
func (c *AnalysisConfig) GetFPS() float64 {
	if c.FPS == nil {
		return 30
	}
	return *c.FPS
}

// GetVelocityWindow returns the velocity_window value or the default.
func (c *AnalysisConfig) GetVelocityWindow() int {
	if c.VelocityWindow == nil {
		return trajectory.DefaultVelocityWindow
	}
	return *c.VelocityWindow
}

// GetGravity returns the gravity value or the default.
func (c *AnalysisConfig) GetGravity() float64 {
	if c.Gravity == nil {
		return trajectory.DefaultPhysics().Gravity
	}
	return *c.Gravity
}

// GetDamping returns the damping value or the default.
func (c *AnalysisConfig) GetDamping() float64 {
	if c.Damping == nil {
		return trajectory.DefaultPhysics().Damping
	}
	return *c.Damping
}

// GetDrag returns the drag value or the default.
func (c *AnalysisConfig) GetDrag() float64 {
	if c.Drag == nil {
		return trajectory.DefaultPhysics().Drag
	}
	return *c.Drag
}

// GetGroundY returns the ground_y value or the default.
func (c *AnalysisConfig) GetGroundY() float64 {
	if c.GroundY == nil {
		return trajectory.DefaultPhysics().GroundY
	}
	return *c.GroundY
}

// GetTargetClass returns the target_class value or the default.
func (c *AnalysisConfig) GetTargetClass() int {
	if c.TargetClass == nil {
		return 0
	}
	return *c.TargetClass
}

// Options converts the config to trajectory analysis options.
func (c *AnalysisConfig) Options() trajectory.Options {
	return trajectory.Options{
		FPS:    c.GetFPS(),
		Window: c.GetVelocityWindow(),
		Physics: trajectory.Physics{
			Gravity: c.GetGravity(),
			Damping: c.GetDamping(),
			Drag:    c.GetDrag(),
			GroundY: c.GetGroundY(),
		},
	}
}

// JSON returns the config as compact JSON, for recording alongside a run.
func (c *AnalysisConfig) JSON() json.RawMessage {
	data, err := json.Marshal(c)
	if err != nil {
		return nil
	}
	return data
}
