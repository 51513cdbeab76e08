package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned when none of the candidate paths holds a config file
var ErrNotFound = errors.New("config: no config file found")

type ServerConfig struct {
	Port int `yaml:"port" validate:"gte=0,lte=65535"`
}

type TrackConfig struct {
	Path   string `yaml:"path"`
	Format string `yaml:"format" validate:"omitempty,oneof=json gpx"`
	Sort   bool   `yaml:"sort"`
}

type PlaybackConfig struct {
	// CoalesceThresholdSec of 0 publishes every tick
	CoalesceThresholdSec float64 `yaml:"coalesceThresholdSec" validate:"gte=0"`
	FrameIntervalMS      int     `yaml:"frameIntervalMS" validate:"gte=0"`
}

type EventsConfig struct {
	LogDir       string `yaml:"logDir"`
	DatabasePath string `yaml:"databasePath"`
}

type WaveformConfig struct {
	Width  int `yaml:"width" validate:"gte=0,lte=8192"`
	Height int `yaml:"height" validate:"gte=0,lte=4096"`
}

// AppConfig is the whole of config.yml
type AppConfig struct {
	Server   ServerConfig   `yaml:"server"`
	Track    TrackConfig    `yaml:"track"`
	Playback PlaybackConfig `yaml:"playback"`
	Events   EventsConfig   `yaml:"events"`
	Waveform WaveformConfig `yaml:"waveform"`
}

// FrameInterval is the animation frame period used to flush coalesced ticks
func (c AppConfig) FrameInterval() time.Duration {
	return time.Duration(c.Playback.FrameIntervalMS) * time.Millisecond
}

// Default returns the configuration used when config.yml leaves a field out
func Default() AppConfig {
	return AppConfig{
		Server:   ServerConfig{Port: 8080},
		Track:    TrackConfig{Path: "data/sample-locations.json"},
		Playback: PlaybackConfig{CoalesceThresholdSec: 0.1, FrameIntervalMS: 16},
		Events:   EventsConfig{LogDir: "logs"},
		Waveform: WaveformConfig{Width: 800, Height: 200},
	}
}

var validate = validator.New()

// Load reads .env, then the first config file found among CONFIG_PATH and the
// default candidates. A missing config file is not an error; defaults are used.
func Load() (AppConfig, error) {
	_ = godotenv.Load(".env")

	paths := []string{"config.yml", "./config/config.yml"}
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		paths = []string{p}
	}

	cfg, err := LoadFile(paths...)
	if errors.Is(err, ErrNotFound) && os.Getenv("CONFIG_PATH") == "" {
		cfg = Default()
		return cfg, applyEnv(&cfg)
	}
	if err != nil {
		return AppConfig{}, err
	}
	return cfg, applyEnv(&cfg)
}

// LoadFile parses the first readable path
func LoadFile(paths ...string) (AppConfig, error) {
	var data []byte
	var err error
	found := false
	for _, p := range paths {
		data, err = os.ReadFile(p)
		if err == nil {
			found = true
			break
		}
	}
	if !found {
		return AppConfig{}, fmt.Errorf("%w (tried %v)", ErrNotFound, paths)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result
func Parse(data []byte) (AppConfig, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return AppConfig{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// Validate runs the struct checks on every section
func Validate(cfg AppConfig) error {
	for _, section := range []any{cfg.Server, cfg.Track, cfg.Playback, cfg.Events, cfg.Waveform} {
		if err := validate.Struct(section); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
	}
	return nil
}

// applyEnv lets PORT and TRACK_PATH override the file
func applyEnv(cfg *AppConfig) error {
	if v := os.Getenv("TRACK_PATH"); v != "" {
		cfg.Track.Path = v
	}
	if v := os.Getenv("PORT"); v != "" {
		var port int
		if _, err := fmt.Sscanf(v, "%d", &port); err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		cfg.Server.Port = port
	}
	return Validate(*cfg)
}
