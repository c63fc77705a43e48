package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/gwquinn/IrisFinder/internal/location"
)

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Location != location.DefaultParams() {
		t.Errorf("missing file should give default params, got %+v", cfg.Location)
	}
	if cfg.Processing.Workers != runtime.NumCPU() {
		t.Errorf("Workers = %d, want %d", cfg.Processing.Workers, runtime.NumCPU())
	}
}

func TestLoadPartial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "iris.yaml")
	data := `
location:
  minPupilRadius: 15
  angleTolerance: 0.9
processing:
  workers: 3
output:
  overlayDir: /tmp/overlays
  pupilColor: "#0000ff"
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	want := location.DefaultParams()
	want.MinPupilRadius = 15
	want.AngleTolerance = 0.9
	if cfg.Location != want {
		t.Errorf("Location = %+v, want %+v", cfg.Location, want)
	}
	if cfg.Processing.Workers != 3 {
		t.Errorf("Workers = %d, want 3", cfg.Processing.Workers)
	}
	if cfg.Output.OverlayDir != "/tmp/overlays" {
		t.Errorf("OverlayDir = %q", cfg.Output.OverlayDir)
	}

	style := cfg.Style()
	if style.PupilColor != "#0000ff" || style.LimbusColor != "#00ff00" {
		t.Errorf("Style() = %+v", style)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad yaml", "location: [1, 2"},
		{"bad params", "location:\n  minPupilRadius: 200\n  maxPupilRadius: 100\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "iris.yaml")
			if err := os.WriteFile(path, []byte(tt.data), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "iris.yaml")

	cfg := DefaultConfig()
	cfg.Location.MaxLimbusRadius = 250
	cfg.Output.TraceDir = "traces"
	cfg.Processing.Workers = 2
	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	back, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if back.Location != cfg.Location || back.Output != cfg.Output || back.Processing != cfg.Processing {
		t.Errorf("round trip changed the config: %+v, want %+v", back, cfg)
	}
}
