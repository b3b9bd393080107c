// Package config holds the persisted monitor settings and the runtime
// options parsed from flags and the environment.
package config

import (
	"fmt"
	"runtime"
	"time"
)

// Thresholds maps each monitored metric to the value above which a warning
// is raised. Usage thresholds are percentages, Temperature is in °C.
type Thresholds struct {
	CPU         float64 `json:"cpu" yaml:"cpu"`
	Memory      float64 `json:"memory" yaml:"memory"`
	Disk        float64 `json:"disk" yaml:"disk"`
	Temperature float64 `json:"temperature" yaml:"temperature"`
}

// Settings is the persisted configuration consumed by the poller.
type Settings struct {
	// RefreshInterval is the wait between poll cycles in milliseconds.
	RefreshInterval int `json:"refresh_interval" yaml:"refresh_interval"`

	WarningThresholds Thresholds `json:"warning_thresholds" yaml:"warning_thresholds"`

	// WindowSize is the preferred window geometry ("WxH") for graphical
	// front ends. The terminal UI sizes itself from the terminal instead.
	WindowSize string `json:"window_size" yaml:"window_size"`

	// DiskPath is the mount point reported by the disk collector.
	DiskPath string `json:"disk_path" yaml:"disk_path"`

	// ProcessCount is how many top processes a snapshot carries.
	ProcessCount int `json:"process_count" yaml:"process_count"`
}

// DefaultThresholds returns the stock warning thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		CPU:         80,
		Memory:      85,
		Disk:        90,
		Temperature: 75,
	}
}

// Default returns the settings written on first start.
func Default() Settings {
	return Settings{
		RefreshInterval:   2000,
		WarningThresholds: DefaultThresholds(),
		WindowSize:        "800x600",
		DiskPath:          DefaultDiskPath(),
		ProcessCount:      5,
	}
}

// DefaultDiskPath returns the primary volume for the running OS.
func DefaultDiskPath() string {
	if runtime.GOOS == "windows" {
		return "C:\\"
	}
	return "/"
}

// Interval returns RefreshInterval as a duration.
func (s Settings) Interval() time.Duration {
	return time.Duration(s.RefreshInterval) * time.Millisecond
}

// Validate rejects values the poller cannot run with.
func (s Settings) Validate() error {
	if s.RefreshInterval <= 0 {
		return fmt.Errorf("config: refresh_interval must be positive, got %d", s.RefreshInterval)
	}
	if s.ProcessCount < 0 {
		return fmt.Errorf("config: process_count must not be negative, got %d", s.ProcessCount)
	}
	if s.DiskPath == "" {
		return fmt.Errorf("config: disk_path must not be empty")
	}
	return nil
}
