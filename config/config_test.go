package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte("server:\n  port: 9000\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Fatalf("expected port 9000, got %d", cfg.Server.Port)
	}
	def := Default()
	if cfg.Playback != def.Playback || cfg.Waveform != def.Waveform || cfg.Track.Path != def.Track.Path {
		t.Fatalf("defaults not kept: %+v", cfg)
	}
	if cfg.FrameInterval() != 16*time.Millisecond {
		t.Fatalf("unexpected frame interval %v", cfg.FrameInterval())
	}
}

func TestParseFullFile(t *testing.T) {
	data := []byte(`
server:
  port: 8081
track:
  path: tracks/run.gpx
  format: gpx
  sort: true
playback:
  coalesceThresholdSec: 0
  frameIntervalMS: 33
events:
  logDir: var/logs
  databasePath: var/events.db
waveform:
  width: 1200
  height: 300
`)
	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Track.Format != "gpx" || !cfg.Track.Sort || cfg.Track.Path != "tracks/run.gpx" {
		t.Fatalf("unexpected track section: %+v", cfg.Track)
	}
	if cfg.Playback.CoalesceThresholdSec != 0 || cfg.Playback.FrameIntervalMS != 33 {
		t.Fatalf("unexpected playback section: %+v", cfg.Playback)
	}
	if cfg.Events.DatabasePath != "var/events.db" || cfg.Waveform.Width != 1200 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"negative port", "server:\n  port: -1\n"},
		{"port too large", "server:\n  port: 70000\n"},
		{"unknown format", "track:\n  format: kml\n"},
		{"negative threshold", "playback:\n  coalesceThresholdSec: -0.5\n"},
		{"huge waveform", "waveform:\n  width: 100000\n"},
		{"bad yaml", "server: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.yaml)); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestLoadFileCandidates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	if err := os.WriteFile(path, []byte("server:\n  port: 7000\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(filepath.Join(dir, "missing.yml"), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 7000 {
		t.Fatalf("expected port 7000, got %d", cfg.Server.Port)
	}

	_, err = LoadFile(filepath.Join(dir, "missing.yml"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLoadWithConfigPathAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yml")
	if err := os.WriteFile(path, []byte("track:\n  path: a.json\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("TRACK_PATH", "b.json")
	t.Setenv("PORT", "9100")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Track.Path != "b.json" || cfg.Server.Port != 9100 {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
}

func TestLoadMissingConfigPath(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "nope.yml"))
	if _, err := Load(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLoadBadPort(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "c.yml")
	if err := os.WriteFile(path, []byte("{}\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("PORT", "eighty")
	if _, err := Load(); err == nil {
		t.Fatal("expected an error for a non-numeric PORT")
	}
}
