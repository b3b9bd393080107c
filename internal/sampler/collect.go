package sampler

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dicklesworthstone/healthmon/internal/model"
)

// CollectCPU reports CPU usage since the previous call. The first call
// reports the average since boot. Core counts and frequency are best
// effort: their failure leaves the field at zero without failing the
// category.
func (s *Sampler) CollectCPU(ctx context.Context) (model.CPU, error) {
	usage, err := s.cpuPercent(ctx)
	if err != nil {
		return model.CPU{}, err
	}

	out := model.CPU{UsagePercent: usage}
	if n, err := s.cpuCounts(ctx, false); err == nil && n > 0 {
		out.PhysicalCores = uint(n)
	}
	if n, err := s.cpuCounts(ctx, true); err == nil && n > 0 {
		out.LogicalCores = uint(n)
	}
	if info, err := s.cpuInfo(ctx); err == nil && len(info) > 0 && info[0].Mhz > 0 {
		out.FrequencyMHz = info[0].Mhz
	}
	return out, nil
}

// cpuPercent computes total usage from the aggregate times delta.
func (s *Sampler) cpuPercent(ctx context.Context) (float64, error) {
	times, err := s.cpuTimes(ctx)
	if err != nil {
		return 0, fmt.Errorf("sampler: cpu times: %w", err)
	}
	if len(times) == 0 {
		return 0, errors.New("sampler: cpu times: no data")
	}

	cur := times[0]
	curTotal := cur.Total()
	curIdle := cur.Idle + cur.Iowait

	pct := s.lastCPU
	switch {
	case s.prevTotal == 0:
		if curTotal > 0 {
			pct = 100 * (1 - curIdle/curTotal)
		}
	case curTotal > s.prevTotal:
		pct = 100 * (1 - (curIdle-s.prevIdle)/(curTotal-s.prevTotal))
	}
	pct = clampPercent(pct)

	s.prevTotal, s.prevIdle = curTotal, curIdle
	s.lastCPU = pct
	return pct, nil
}

// CollectMemory reports virtual memory usage.
func (s *Sampler) CollectMemory(ctx context.Context) (model.Memory, error) {
	vm, err := s.virtualMemory(ctx)
	if err != nil {
		return model.Memory{}, fmt.Errorf("sampler: virtual memory: %w", err)
	}
	return model.Memory{
		TotalGB:      round2(float64(vm.Total) / bytesPerGB),
		UsedGB:       round2(float64(vm.Used) / bytesPerGB),
		FreeGB:       round2(float64(vm.Free) / bytesPerGB),
		UsagePercent: clampPercent(vm.UsedPercent),
	}, nil
}

// CollectDisk reports usage of the filesystem mounted at path.
func (s *Sampler) CollectDisk(ctx context.Context, path string) (model.Disk, error) {
	u, err := s.diskUsage(ctx, path)
	if err != nil {
		return model.Disk{}, fmt.Errorf("sampler: disk usage %s: %w", path, err)
	}
	return model.Disk{
		Path:         path,
		TotalGB:      round2(float64(u.Total) / bytesPerGB),
		UsedGB:       round2(float64(u.Used) / bytesPerGB),
		FreeGB:       round2(float64(u.Free) / bytesPerGB),
		UsagePercent: clampPercent(u.UsedPercent),
	}, nil
}

// CollectNetwork reports cumulative counters summed over all interfaces.
func (s *Sampler) CollectNetwork(ctx context.Context) (model.Network, error) {
	counters, err := s.netCounters(ctx)
	if err != nil {
		return model.Network{}, fmt.Errorf("sampler: net counters: %w", err)
	}
	if len(counters) == 0 {
		return model.Network{}, errors.New("sampler: net counters: no data")
	}
	var out model.Network
	var sent, recv uint64
	for _, c := range counters {
		sent += c.BytesSent
		recv += c.BytesRecv
		out.PacketsSent += c.PacketsSent
		out.PacketsRecv += c.PacketsRecv
	}
	out.BytesSentMB = round2(float64(sent) / bytesPerMB)
	out.BytesRecvMB = round2(float64(recv) / bytesPerMB)
	return out, nil
}

// CollectGPU is a placeholder until a GPU backend exists. It always
// succeeds with zero values.
func (s *Sampler) CollectGPU(context.Context) (model.GPU, error) {
	return model.GPU{}, nil
}
