package model

import "time"

// Series keys used by the history buffer and the charts.
const (
	SeriesCPU    = "cpu"
	SeriesMemory = "memory"
	SeriesDisk   = "disk"
	SeriesGPU    = "gpu"
)

// SeriesKeys lists every history series in display order.
var SeriesKeys = []string{SeriesCPU, SeriesMemory, SeriesDisk, SeriesGPU}

// Metric keys understood by the threshold evaluator.
const (
	MetricCPU         = "cpu"
	MetricMemory      = "memory"
	MetricDisk        = "disk"
	MetricTemperature = "temperature"
)

// Collector categories reported in Snapshot.Failed.
const (
	CategoryCPU       = "cpu"
	CategoryMemory    = "memory"
	CategoryDisk      = "disk"
	CategoryNetwork   = "network"
	CategoryGPU       = "gpu"
	CategoryProcesses = "processes"
)

// CPU aggregates instantaneous CPU usage.
type CPU struct {
	UsagePercent  float64 `json:"usage_percent"` // 0-100
	PhysicalCores uint    `json:"physical_cores"`
	LogicalCores  uint    `json:"logical_cores"`
	FrequencyMHz  float64 `json:"frequency_mhz"`
}

// Memory captures RAM usage in GB (rounded to two decimals).
type Memory struct {
	TotalGB      float64 `json:"total_gb"`
	UsedGB       float64 `json:"used_gb"`
	FreeGB       float64 `json:"free_gb"`
	UsagePercent float64 `json:"usage_percent"`
}

// Disk captures usage of a single mount point.
type Disk struct {
	Path         string  `json:"path"`
	TotalGB      float64 `json:"total_gb"`
	UsedGB       float64 `json:"used_gb"`
	FreeGB       float64 `json:"free_gb"`
	UsagePercent float64 `json:"usage_percent"`
}

// Network holds cumulative counters since boot, summed over all interfaces.
type Network struct {
	BytesSentMB float64 `json:"bytes_sent_mb"`
	BytesRecvMB float64 `json:"bytes_recv_mb"`
	PacketsSent uint64  `json:"packets_sent"`
	PacketsRecv uint64  `json:"packets_recv"`
}

// GPU holds a single device reading. All fields are zero when no backend
// is available.
type GPU struct {
	UsagePercent  float64 `json:"usage_percent"`
	TemperatureC  float64 `json:"temperature_c"`
	MemoryUsedMB  float64 `json:"memory_used_mb"`
	MemoryTotalMB float64 `json:"memory_total_mb"`
}

// Process is a lightweight top entry.
type Process struct {
	PID           int32   `json:"pid"`
	Name          string  `json:"name"`
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
}

// Snapshot is one fully assembled set of metrics captured in a single poll
// cycle. Categories whose collector failed carry zero values and are listed
// in Failed.
type Snapshot struct {
	Timestamp time.Time `json:"timestamp"`
	CPU       CPU       `json:"cpu"`
	Memory    Memory    `json:"memory"`
	Disk      Disk      `json:"disk"`
	Network   Network   `json:"network"`
	GPU       GPU       `json:"gpu"`
	Processes []Process `json:"processes"`
	Failed    []string  `json:"failed,omitempty"`
}

// HasFailed reports whether the collector for category fell back to zero.
func (s Snapshot) HasFailed(category string) bool {
	for _, f := range s.Failed {
		if f == category {
			return true
		}
	}
	return false
}

// Warning is a level-triggered alert for one exceeded threshold.
type Warning struct {
	Metric        string  `json:"metric"`
	Message       string  `json:"message"`
	ObservedValue float64 `json:"observed_value"`
}

// Update is what the poller publishes after every completed cycle.
type Update struct {
	Snapshot Snapshot             `json:"snapshot"`
	History  map[string][]float64 `json:"history"`
	Warnings []Warning            `json:"warnings"`
}

// Zero returns an empty update for initialization.
func Zero() Update { return Update{Snapshot: Snapshot{Timestamp: time.Now()}} }
