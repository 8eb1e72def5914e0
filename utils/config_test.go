package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sheikhrachel/go-life-engine/engine"
	"github.com/sheikhrachel/go-life-engine/model"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultConfigValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v", err)
	}
}

func TestLoadConfigYAML(t *testing.T) {
	path := writeFile(t, "life.yaml", `
rows: 40
cols: 80
topology: finite
target_rate: 30
device_class: mobile
frame_interval: 20ms
tuning:
  max_steps: 8
log_level: debug
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Rows != 40 || cfg.Cols != 80 || cfg.TargetRate != 30 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.FrameInterval != 20*time.Millisecond {
		t.Errorf("FrameInterval = %v, want 20ms", cfg.FrameInterval)
	}
	if cfg.Tuning.MaxSteps != 8 || cfg.Tuning.HugeGridCells != engine.DefaultStepBudget().HugeGridCells {
		t.Errorf("Tuning = %+v, want max_steps overridden and defaults kept", cfg.Tuning)
	}
	if cfg.MaxDimension != 200 {
		t.Errorf("MaxDimension = %d, want default 200", cfg.MaxDimension)
	}

	sc := cfg.SchedulerConfig()
	if sc.Device != engine.Constrained || sc.TargetRate != 30 {
		t.Errorf("SchedulerConfig() = %+v", sc)
	}

	g := model.NewGrid(cfg.Rows, cfg.Cols, cfg.GridOptions()...)
	if g.Topology() != model.Finite {
		t.Errorf("grid topology = %v, want finite", g.Topology())
	}
}

func TestLoadConfigJSON(t *testing.T) {
	path := writeFile(t, "config.json", `{"rows": 12, "cols": 14, "random_density": 0.5}`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Rows != 12 || cfg.Cols != 14 || cfg.RandomDensity != 0.5 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Topology != "toroidal" {
		t.Errorf("Topology = %q, want default", cfg.Topology)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"bad json", "c.json", `{"rows": `},
		{"bad yaml", "c.yaml", "rows: [1"},
		{"rows too large", "c.yaml", "rows: 500"},
		{"bad topology", "c.yaml", "topology: mobius"},
		{"rate outside bounds", "c.json", `{"target_rate": 120}`},
		{"density above one", "c.json", `{"random_density": 1.5}`},
		{"bad device", "c.yaml", "device_class: toaster"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfig(writeFile(t, tt.file, tt.content)); err == nil {
				t.Fatal("LoadConfig() succeeded, want error")
			}
		})
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("LoadConfig(missing) succeeded")
	}
}
