// Package app wires configuration, the machine and its I/O collaborators
// into a runnable application.
package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"nescore/internal/apu"
	"nescore/internal/graphics"
	"nescore/internal/input"
)

// NTSCFrameRate is the native frame rate: 1789773 Hz / 29780.5 cycles.
const NTSCFrameRate = 60.0988139

// Config holds all application configuration
type Config struct {
	Window    WindowConfig    `json:"window"`
	Video     VideoConfig     `json:"video"`
	Audio     AudioConfig     `json:"audio"`
	Input     InputConfig     `json:"input"`
	Emulation EmulationConfig `json:"emulation"`
	Debug     DebugConfig     `json:"debug"`

	// Internal state
	configPath string
	loaded     bool
}

// WindowConfig contains window-related configuration
type WindowConfig struct {
	Width      int  `json:"width"`
	Height     int  `json:"height"`
	Fullscreen bool `json:"fullscreen"`
}

// VideoConfig contains video output configuration
type VideoConfig struct {
	Backend         string `json:"backend"` // "ebitengine", "headless", "terminal"
	VSync           bool   `json:"vsync"`
	Filter          string `json:"filter"`           // "nearest", "linear"
	OutputDir       string `json:"output_dir"`       // headless PNG directory
	CaptureInterval int    `json:"capture_interval"` // write every Nth frame, 0 disables
	CaptureScale    int    `json:"capture_scale"`
}

// AudioConfig contains audio configuration
type AudioConfig struct {
	Enabled    bool    `json:"enabled"`
	SampleRate int     `json:"sample_rate"`
	Volume     float64 `json:"volume"`
	RecordPath string  `json:"record_path"` // WAV file, empty disables
}

// InputConfig contains keyboard mappings for player one
type InputConfig struct {
	WindowKeys   KeyMapping `json:"window_keys"`
	TerminalKeys string     `json:"terminal_keys"` // one character per button, A B Select Start Up Down Left Right
}

// KeyMapping names the window key bound to each button
type KeyMapping struct {
	A      string `json:"a"`
	B      string `json:"b"`
	Select string `json:"select"`
	Start  string `json:"start"`
	Up     string `json:"up"`
	Down   string `json:"down"`
	Left   string `json:"left"`
	Right  string `json:"right"`
}

// Names returns the key names in button order
func (k KeyMapping) Names() [8]string {
	return [8]string{k.A, k.B, k.Select, k.Start, k.Up, k.Down, k.Left, k.Right}
}

// EmulationConfig contains emulation-specific settings
type EmulationConfig struct {
	FrameRate  float64 `json:"frame_rate"`
	Throttle   bool    `json:"throttle"`
	FrameLimit int     `json:"frame_limit"` // stop after N frames, 0 runs until closed
}

// DebugConfig contains debugging and development options
type DebugConfig struct {
	EnableLogging bool   `json:"enable_logging"`
	CPUTracing    bool   `json:"cpu_tracing"`
	TraceFile     string `json:"trace_file"`
	StateDump     string `json:"state_dump"` // Graphviz file written on exit
	Stats         bool   `json:"stats"`
	StatsAddress  string `json:"stats_address"`
}

// NewConfig creates a new configuration with default values
func NewConfig() *Config {
	keys := graphics.DefaultWindowKeys
	return &Config{
		Window: WindowConfig{
			Width:  768,
			Height: 672,
		},
		Video: VideoConfig{
			Backend:      string(graphics.BackendEbitengine),
			VSync:        true,
			Filter:       "nearest",
			OutputDir:    "screen",
			CaptureScale: 1,
		},
		Audio: AudioConfig{
			Enabled:    true,
			SampleRate: apu.DefaultSampleRate,
			Volume:     0.8,
		},
		Input: InputConfig{
			WindowKeys: KeyMapping{
				A: keys[0], B: keys[1], Select: keys[2], Start: keys[3],
				Up: keys[4], Down: keys[5], Left: keys[6], Right: keys[7],
			},
			TerminalKeys: input.DefaultTerminalKeys,
		},
		Emulation: EmulationConfig{
			FrameRate: NTSCFrameRate,
			Throttle:  true,
		},
		Debug: DebugConfig{
			TraceFile: "trace.log",
		},
	}
}

// LoadFromFile loads configuration from a JSON file. A missing file is
// created with the current values.
func (c *Config) LoadFromFile(path string) error {
	c.configPath = path

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return c.SaveToFile(path)
	}
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	c.loaded = true
	return nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	c.configPath = path
	return nil
}

// Validate rejects values nothing can recover from and clamps the rest.
func (c *Config) Validate() error {
	switch graphics.BackendType(c.Video.Backend) {
	case graphics.BackendEbitengine, graphics.BackendHeadless, graphics.BackendTerminal:
	default:
		return &ConfigError{Field: "video.backend", Value: c.Video.Backend, Err: errors.New("unknown backend")}
	}

	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return &ConfigError{
			Field: "window",
			Value: fmt.Sprintf("%dx%d", c.Window.Width, c.Window.Height),
			Err:   errors.New("dimensions must be positive"),
		}
	}

	// One byte per button, as the terminal delivers them
	keys := c.Input.TerminalKeys
	if len(keys) != 8 {
		return &ConfigError{Field: "input.terminal_keys", Value: keys, Err: errors.New("need exactly 8 single-byte keys")}
	}
	for i := 0; i < len(keys); i++ {
		if strings.IndexByte(keys, keys[i]) != i {
			return &ConfigError{Field: "input.terminal_keys", Value: keys, Err: fmt.Errorf("duplicate key %q", keys[i])}
		}
	}

	if c.Video.CaptureScale <= 0 {
		c.Video.CaptureScale = 1
	}
	if c.Video.CaptureInterval < 0 {
		c.Video.CaptureInterval = 0
	}
	if c.Video.Filter != "nearest" && c.Video.Filter != "linear" {
		c.Video.Filter = "nearest"
	}

	if c.Audio.SampleRate <= 0 {
		c.Audio.SampleRate = apu.DefaultSampleRate
	}
	if c.Audio.Volume < 0.0 || c.Audio.Volume > 1.0 {
		c.Audio.Volume = 0.8
	}

	if c.Emulation.FrameRate <= 0 {
		c.Emulation.FrameRate = NTSCFrameRate
	}
	if c.Emulation.FrameLimit < 0 {
		c.Emulation.FrameLimit = 0
	}

	return nil
}

// IsLoaded returns whether the configuration was loaded from file
func (c *Config) IsLoaded() bool {
	return c.loaded
}

// GetConfigPath returns the path to the config file
func (c *Config) GetConfigPath() string {
	return c.configPath
}

// Clone creates a deep copy of the configuration
func (c *Config) Clone() *Config {
	data, err := json.Marshal(c)
	if err != nil {
		return NewConfig()
	}

	clone := &Config{}
	if err := json.Unmarshal(data, clone); err != nil {
		return NewConfig()
	}

	clone.configPath = c.configPath
	clone.loaded = c.loaded

	return clone
}

// GetDefaultConfigPath returns the default configuration file path
func GetDefaultConfigPath() string {
	return "./config/nescore.json"
}

// ConfigError represents configuration-related errors
type ConfigError struct {
	Field string
	Value interface{}
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error in field '%s' with value '%v': %v", e.Field, e.Value, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
