// Package threshold turns a snapshot into level-triggered warnings.
package threshold

import (
	"fmt"

	"github.com/Dicklesworthstone/healthmon/internal/config"
	"github.com/Dicklesworthstone/healthmon/internal/model"
)

// Evaluate compares s against t and returns one warning per exceeded
// threshold, always in the order cpu, memory, disk, temperature. A value
// equal to its threshold does not warn. The function keeps no state:
// a condition that persists is reported again on every call.
func Evaluate(s model.Snapshot, t config.Thresholds) []model.Warning {
	var out []model.Warning

	if v := s.CPU.UsagePercent; v > t.CPU {
		out = append(out, model.Warning{
			Metric:        model.MetricCPU,
			Message:       fmt.Sprintf("High CPU usage: %.1f%%", v),
			ObservedValue: v,
		})
	}
	if v := s.Memory.UsagePercent; v > t.Memory {
		out = append(out, model.Warning{
			Metric:        model.MetricMemory,
			Message:       fmt.Sprintf("High Memory usage: %.1f%%", v),
			ObservedValue: v,
		})
	}
	if v := s.Disk.UsagePercent; v > t.Disk {
		out = append(out, model.Warning{
			Metric:        model.MetricDisk,
			Message:       fmt.Sprintf("High Disk usage: %.1f%%", v),
			ObservedValue: v,
		})
	}
	if v := s.GPU.TemperatureC; v > t.Temperature {
		out = append(out, model.Warning{
			Metric:        model.MetricTemperature,
			Message:       fmt.Sprintf("High GPU temperature: %g°C", v),
			ObservedValue: v,
		})
	}
	return out
}
