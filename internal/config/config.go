// Package config loads oxyvr settings from OXYVR_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/gogpu/gputypes"
)

// Config holds the settings of one oxyvr run. Command line flags override it.
type Config struct {
	Width       uint32  `env:"OXYVR_WIDTH" envDefault:"1852"`
	Height      uint32  `env:"OXYVR_HEIGHT" envDefault:"2056"`
	IPD         float32 `env:"OXYVR_IPD" envDefault:"0.064"`
	Fov         float32 `env:"OXYVR_FOV" envDefault:"110"`
	Frames      int     `env:"OXYVR_FRAMES" envDefault:"90"`
	TickRate    int     `env:"OXYVR_TICK_RATE" envDefault:"60"`
	Backend     string  `env:"OXYVR_BACKEND" envDefault:"vulkan"`
	Headless    bool    `env:"OXYVR_HEADLESS" envDefault:"true"`
	DumpDir     string  `env:"OXYVR_DUMP_DIR"`
	DumpEvery   int     `env:"OXYVR_DUMP_EVERY" envDefault:"30"`
	DumpWorkers int     `env:"OXYVR_DUMP_WORKERS" envDefault:"2"`

	OTelEndpoint string `env:"OXYVR_OTEL_ENDPOINT"`
	LogLevel     string `env:"OXYVR_LOG_LEVEL" envDefault:"info"`
}

// Load parses the environment into a Config and validates it.
//
// Returns:
//   - Config: the parsed configuration
//   - error: an error if a variable could not be parsed or a value is out of range
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every out-of-range value.
func (c Config) Validate() error {
	var errs []error
	if c.Width == 0 || c.Height == 0 {
		errs = append(errs, fmt.Errorf("eye size %dx%d must be non-zero", c.Width, c.Height))
	}
	if c.IPD < 0 {
		errs = append(errs, fmt.Errorf("ipd %v must not be negative", c.IPD))
	}
	if c.Fov <= 0 || c.Fov >= 180 {
		errs = append(errs, fmt.Errorf("fov %v must be in (0, 180)", c.Fov))
	}
	if c.Frames < 0 {
		errs = append(errs, fmt.Errorf("frames %d must not be negative", c.Frames))
	}
	if c.TickRate <= 0 {
		errs = append(errs, fmt.Errorf("tick rate %d must be positive", c.TickRate))
	}
	if c.DumpEvery <= 0 {
		errs = append(errs, fmt.Errorf("dump interval %d must be positive", c.DumpEvery))
	}
	if c.DumpWorkers <= 0 {
		errs = append(errs, fmt.Errorf("dump workers %d must be positive", c.DumpWorkers))
	}
	if _, err := ParseBackend(c.Backend); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// GraphicsBackend returns the backend tag named by Backend, BackendEmpty if unknown.
func (c Config) GraphicsBackend() gputypes.Backend {
	b, _ := ParseBackend(c.Backend)
	return b
}

// ParseBackend maps a backend name to its tag.
//
// Parameters:
//   - name: one of vulkan, dx12, metal, gl (case insensitive)
//
// Returns:
//   - gputypes.Backend: the tag
//   - error: an error if the name is unknown
func ParseBackend(name string) (gputypes.Backend, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "vulkan", "vk":
		return gputypes.BackendVulkan, nil
	case "dx12", "d3d12", "directx12":
		return gputypes.BackendDX12, nil
	case "metal":
		return gputypes.BackendMetal, nil
	case "gl", "opengl":
		return gputypes.BackendGL, nil
	default:
		return gputypes.BackendEmpty, fmt.Errorf("unknown graphics backend %q", name)
	}
}
