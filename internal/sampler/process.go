package sampler

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"time"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/Dicklesworthstone/healthmon/internal/model"
)

// proc is the subset of a process handle the sampler reads.
type proc interface {
	PID() int32
	Name(ctx context.Context) (string, error)
	// CPUTime is the cumulative user+system CPU time in seconds.
	CPUTime(ctx context.Context) (float64, error)
	// LifetimeCPUPercent is the average CPU percent since process start.
	LifetimeCPUPercent(ctx context.Context) (float64, error)
	MemoryPercent(ctx context.Context) (float64, error)
}

type procSample struct {
	cpuSeconds float64
	at         time.Time
}

// gopsProc adapts *process.Process to proc.
type gopsProc struct{ p *process.Process }

func (g gopsProc) PID() int32 { return g.p.Pid }

func (g gopsProc) Name(ctx context.Context) (string, error) { return g.p.NameWithContext(ctx) }

func (g gopsProc) CPUTime(ctx context.Context) (float64, error) {
	t, err := g.p.TimesWithContext(ctx)
	if err != nil {
		return 0, err
	}
	return t.User + t.System, nil
}

func (g gopsProc) LifetimeCPUPercent(ctx context.Context) (float64, error) {
	return g.p.CPUPercentWithContext(ctx)
}

func (g gopsProc) MemoryPercent(ctx context.Context) (float64, error) {
	v, err := g.p.MemoryPercentWithContext(ctx)
	return float64(v), err
}

func listProcesses(ctx context.Context) ([]proc, error) {
	ps, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]proc, len(ps))
	for i, p := range ps {
		out[i] = gopsProc{p: p}
	}
	return out, nil
}

// vanished reports whether err means the process exited while it was
// being read.
func vanished(err error) bool {
	return errors.Is(err, process.ErrorProcessNotRunning) || errors.Is(err, fs.ErrNotExist)
}

// CollectProcesses enumerates all processes and returns the topN by CPU
// percent, highest first. Ties keep enumeration order. Processes whose name
// cannot be read, or that exit mid-read, are skipped; unreadable CPU or
// memory figures count as 0.
//
// CPU percent is windowed: the CPU seconds a process used since the
// previous call divided by the wall time in between. A process seen for the
// first time reports its lifetime average instead.
func (s *Sampler) CollectProcesses(ctx context.Context, topN int) ([]model.Process, error) {
	list, err := s.processes(ctx)
	if err != nil {
		return nil, fmt.Errorf("sampler: list processes: %w", err)
	}
	_, _, filter := s.current()

	now := s.now()
	seen := make(map[int32]procSample, len(list))
	entries := make([]model.Process, 0, len(list))

	for _, p := range list {
		pid := p.PID()
		name, err := p.Name(ctx)
		if err != nil {
			s.logger.Debug("skipping process", "pid", pid, "error", err)
			continue
		}
		if filter != nil && !filter.MatchString(name) {
			continue
		}

		cpuPct, err := s.processCPU(ctx, p, now, seen)
		if err != nil {
			if vanished(err) {
				continue
			}
			cpuPct = 0
		}

		memPct, err := p.MemoryPercent(ctx)
		if err != nil {
			if vanished(err) {
				delete(seen, pid)
				continue
			}
			memPct = 0
		}

		entries = append(entries, model.Process{
			PID:           pid,
			Name:          name,
			CPUPercent:    max(cpuPct, 0),
			MemoryPercent: max(memPct, 0),
		})
	}
	s.prevProc = seen

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CPUPercent > entries[j].CPUPercent
	})
	if topN >= 0 && len(entries) > topN {
		entries = entries[:topN]
	}
	return entries, nil
}

func (s *Sampler) processCPU(ctx context.Context, p proc, now time.Time, seen map[int32]procSample) (float64, error) {
	secs, err := p.CPUTime(ctx)
	if err != nil {
		return 0, err
	}
	pid := p.PID()
	seen[pid] = procSample{cpuSeconds: secs, at: now}

	if prev, ok := s.prevProc[pid]; ok && secs >= prev.cpuSeconds {
		if elapsed := now.Sub(prev.at).Seconds(); elapsed > 0 {
			return 100 * (secs - prev.cpuSeconds) / elapsed, nil
		}
	}
	return p.LifetimeCPUPercent(ctx)
}
