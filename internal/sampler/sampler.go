// Package sampler reads host metrics through gopsutil and assembles them
// into snapshots. CPU usage is computed from counter deltas kept between
// calls, so no collector ever sleeps to open a measurement window.
package sampler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"regexp"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/net"

	"github.com/Dicklesworthstone/healthmon/internal/config"
)

// Sampler collects every metric category and keeps the counter state
// needed for delta-based CPU percentages. Collect* and Aggregate calls must
// not overlap; the poller guarantees one cycle at a time.
type Sampler struct {
	logger *slog.Logger

	mu       sync.Mutex // guards diskPath, topN, filter
	diskPath string
	topN     int
	filter   *regexp.Regexp

	// CPU counter state from the previous CollectCPU call.
	prevTotal float64
	prevIdle  float64
	lastCPU   float64

	// Per-process CPU seconds from the previous CollectProcesses call.
	prevProc map[int32]procSample

	// Overridable OS sources for testing.
	cpuTimes      func(ctx context.Context) ([]cpu.TimesStat, error)
	cpuCounts     func(ctx context.Context, logical bool) (int, error)
	cpuInfo       func(ctx context.Context) ([]cpu.InfoStat, error)
	virtualMemory func(ctx context.Context) (*mem.VirtualMemoryStat, error)
	diskUsage     func(ctx context.Context, path string) (*disk.UsageStat, error)
	netCounters   func(ctx context.Context) ([]net.IOCountersStat, error)
	processes     func(ctx context.Context) ([]proc, error)
	now           func() time.Time
}

// New returns a sampler reporting disk usage for diskPath and the topN
// busiest processes. If logger is nil, a no-op logger is used.
func New(diskPath string, topN int, logger *slog.Logger) *Sampler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if diskPath == "" {
		diskPath = config.DefaultDiskPath()
	}
	return &Sampler{
		logger:   logger,
		diskPath: diskPath,
		topN:     topN,
		prevProc: make(map[int32]procSample),
		cpuTimes: func(ctx context.Context) ([]cpu.TimesStat, error) {
			return cpu.TimesWithContext(ctx, false)
		},
		cpuCounts:     cpu.CountsWithContext,
		cpuInfo:       cpu.InfoWithContext,
		virtualMemory: mem.VirtualMemoryWithContext,
		diskUsage:     disk.UsageWithContext,
		netCounters: func(ctx context.Context) ([]net.IOCountersStat, error) {
			return net.IOCountersWithContext(ctx, false)
		},
		processes: listProcesses,
		now:       time.Now,
	}
}

// FromSettings builds a sampler from persisted settings.
func FromSettings(s config.Settings, logger *slog.Logger) *Sampler {
	return New(s.DiskPath, s.ProcessCount, logger)
}

// Configure picks up a new disk path and process count. It is called by the
// poller when settings are reloaded.
func (s *Sampler) Configure(cfg config.Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cfg.DiskPath != "" {
		s.diskPath = cfg.DiskPath
	}
	if cfg.ProcessCount >= 0 {
		s.topN = cfg.ProcessCount
	}
}

// SetFilter restricts the process list to names matching expr. An empty
// expression removes the filter.
func (s *Sampler) SetFilter(expr string) error {
	var re *regexp.Regexp
	if expr != "" {
		var err error
		re, err = regexp.Compile(expr)
		if err != nil {
			return fmt.Errorf("sampler: process filter: %w", err)
		}
	}
	s.mu.Lock()
	s.filter = re
	s.mu.Unlock()
	return nil
}

func (s *Sampler) current() (diskPath string, topN int, filter *regexp.Regexp) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.diskPath, s.topN, s.filter
}

// Helpers
const (
	bytesPerGB = 1024 * 1024 * 1024
	bytesPerMB = 1024 * 1024
)

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
