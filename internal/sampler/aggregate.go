package sampler

import (
	"context"

	"github.com/Dicklesworthstone/healthmon/internal/model"
)

// Aggregate runs every collector once and assembles a snapshot. A
// collector that errors or panics is replaced by its zero record, named in
// Snapshot.Failed and logged; the other categories are unaffected.
func (s *Sampler) Aggregate(ctx context.Context) model.Snapshot {
	diskPath, topN, _ := s.current()
	snap := model.Snapshot{Timestamp: s.now()}

	snap.CPU = isolate(s, &snap, model.CategoryCPU, func() (model.CPU, error) {
		return s.CollectCPU(ctx)
	})
	snap.Memory = isolate(s, &snap, model.CategoryMemory, func() (model.Memory, error) {
		return s.CollectMemory(ctx)
	})
	snap.Disk = isolate(s, &snap, model.CategoryDisk, func() (model.Disk, error) {
		return s.CollectDisk(ctx, diskPath)
	})
	snap.Disk.Path = diskPath
	snap.Network = isolate(s, &snap, model.CategoryNetwork, func() (model.Network, error) {
		return s.CollectNetwork(ctx)
	})
	snap.GPU = isolate(s, &snap, model.CategoryGPU, func() (model.GPU, error) {
		return s.CollectGPU(ctx)
	})
	snap.Processes = isolate(s, &snap, model.CategoryProcesses, func() ([]model.Process, error) {
		return s.CollectProcesses(ctx, topN)
	})
	if snap.Processes == nil {
		snap.Processes = []model.Process{}
	}

	s.logger.Debug("snapshot collected",
		"cpu", snap.CPU.UsagePercent,
		"memory", snap.Memory.UsagePercent,
		"disk", snap.Disk.UsagePercent,
		"processes", len(snap.Processes),
		"failed", snap.Failed,
	)
	return snap
}

// isolate runs fn and converts an error or panic into a zero value plus a
// Failed entry on snap.
func isolate[T any](s *Sampler, snap *model.Snapshot, category string, fn func() (T, error)) (out T) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("collector panicked", "category", category, "panic", r)
			snap.Failed = append(snap.Failed, category)
			var zero T
			out = zero
		}
	}()

	v, err := fn()
	if err != nil {
		s.logger.Warn("collector failed", "category", category, "error", err)
		snap.Failed = append(snap.Failed, category)
		var zero T
		return zero
	}
	return v
}
