package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/banshee-data/spin.report/internal/fsutil"
	"github.com/banshee-data/spin.report/internal/trajectory"
)

func TestDefaultAnalysisConfig(t *testing.T) {
	cfg := DefaultAnalysisConfig()

	if cfg.FPS == nil || *cfg.FPS != 30 {
		t.Errorf("Expected FPS 30, got %v", cfg.FPS)
	}
	if cfg.VelocityWindow == nil || *cfg.VelocityWindow != 5 {
		t.Errorf("Expected VelocityWindow 5, got %v", cfg.VelocityWindow)
	}
	if cfg.GroundY == nil || *cfg.GroundY != 1080 {
		t.Errorf("Expected GroundY 1080, got %v", cfg.GroundY)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestEmptyConfigFallsBackToDefaults(t *testing.T) {
	cfg := EmptyAnalysisConfig()
	want := trajectory.DefaultOptions()

	if got := cfg.Options(); got != want {
		t.Errorf("Options() = %+v, want %+v", got, want)
	}
	if cfg.GetTargetClass() != 0 {
		t.Errorf("GetTargetClass() = %d, want 0", cfg.GetTargetClass())
	}
}

func TestLoadAnalysisConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "clip.json")

	testJSON := `{
  "fps": 60,
  "velocity_window": 3,
  "gravity": 12.5,
  "ground_y": 720
}`
	if err := os.WriteFile(configPath, []byte(testJSON), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadAnalysisConfig(fsutil.OSFileSystem{}, configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	opts := cfg.Options()
	if opts.FPS != 60 || opts.Window != 3 {
		t.Errorf("FPS/Window = %v/%v, want 60/3", opts.FPS, opts.Window)
	}
	if opts.Physics.Gravity != 12.5 || opts.Physics.GroundY != 720 {
		t.Errorf("Physics = %+v", opts.Physics)
	}
	// omitted fields keep defaults
	if opts.Physics.Damping != 0.7 || opts.Physics.Drag != 0.001 {
		t.Errorf("Damping/Drag = %v/%v, want 0.7/0.001", opts.Physics.Damping, opts.Physics.Drag)
	}
}

func TestLoadAnalysisConfigMissing(t *testing.T) {
	_, err := LoadAnalysisConfig(fsutil.OSFileSystem{}, "/nonexistent/path/to/config.json")
	if err == nil {
		t.Error("Expected error when loading missing file, got nil")
	}
}

func TestLoadAnalysisConfigWrongExtension(t *testing.T) {
	_, err := LoadAnalysisConfig(fsutil.NewMemoryFileSystem(), "config.yaml")
	if err == nil || !strings.Contains(err.Error(), ".json") {
		t.Errorf("Expected extension error, got %v", err)
	}
}

func TestLoadAnalysisConfigInvalid(t *testing.T) {
	mfs := fsutil.NewMemoryFileSystem()
	cases := map[string]string{
		"bad.json":      `{"fps": "fast"`,
		"negative.json": `{"fps": -30}`,
		"huge.json":     `{"fps": 30, "pad": "` + strings.Repeat("x", 1024*1024) + `"}`,
	}
	for name, body := range cases {
		mfs.Put(name, []byte(body))
		if _, err := LoadAnalysisConfig(mfs, name); err == nil {
			t.Errorf("%s: expected error, got nil", name)
		}
	}
}

func TestLoadAnalysisConfigMemoryFileSystem(t *testing.T) {
	mfs := fsutil.NewMemoryFileSystem()
	mfs.Put("configs/clip.json", []byte(`{"fps": 25, "target_class": 32}`))

	cfg, err := LoadAnalysisConfig(mfs, "configs/clip.json")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.GetFPS() != 25 || cfg.GetTargetClass() != 32 {
		t.Errorf("FPS/TargetClass = %v/%v, want 25/32", cfg.GetFPS(), cfg.GetTargetClass())
	}
	if cfg.GetVelocityWindow() != 5 {
		t.Errorf("VelocityWindow = %v, want default 5", cfg.GetVelocityWindow())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *AnalysisConfig
		wantErr bool
	}{
		{"empty", EmptyAnalysisConfig(), false},
		{"defaults", DefaultAnalysisConfig(), false},
		{"zero fps", &AnalysisConfig{FPS: ptrFloat64(0)}, true},
		{"zero window", &AnalysisConfig{VelocityWindow: ptrInt(0)}, true},
		{"damping above one", &AnalysisConfig{Damping: ptrFloat64(1.2)}, true},
		{"damping one", &AnalysisConfig{Damping: ptrFloat64(1)}, false},
		{"drag one", &AnalysisConfig{Drag: ptrFloat64(1)}, true},
		{"negative drag", &AnalysisConfig{Drag: ptrFloat64(-0.1)}, true},
		{"zero ground", &AnalysisConfig{GroundY: ptrFloat64(0)}, true},
		{"negative class", &AnalysisConfig{TargetClass: ptrInt(-1)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMustLoadDefaultConfig(t *testing.T) {
	cfg := MustLoadDefaultConfig()
	if got, want := cfg.Options(), DefaultAnalysisConfig().Options(); got != want {
		t.Errorf("defaults file drifted from code: %+v vs %+v", got, want)
	}
}

func TestConfigJSON(t *testing.T) {
	raw := (&AnalysisConfig{FPS: ptrFloat64(25)}).JSON()

	var decoded map[string]float64
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("JSON() not valid JSON: %v", err)
	}
	if len(decoded) != 1 || decoded["fps"] != 25 {
		t.Errorf("JSON() = %s", raw)
	}
}
