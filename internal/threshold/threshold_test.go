package threshold

import (
	"reflect"
	"testing"

	"github.com/Dicklesworthstone/healthmon/internal/config"
	"github.com/Dicklesworthstone/healthmon/internal/model"
)

func snapshot(cpu, mem, disk, temp float64) model.Snapshot {
	return model.Snapshot{
		CPU:    model.CPU{UsagePercent: cpu},
		Memory: model.Memory{UsagePercent: mem},
		Disk:   model.Disk{UsagePercent: disk},
		GPU:    model.GPU{TemperatureC: temp},
	}
}

func metrics(ws []model.Warning) []string {
	out := []string{}
	for _, w := range ws {
		out = append(out, w.Metric)
	}
	return out
}

func TestEvaluateStrictBoundary(t *testing.T) {
	th := config.DefaultThresholds()

	got := Evaluate(snapshot(81, 0, 0, 0), th)
	if len(got) != 1 || got[0].Metric != model.MetricCPU {
		t.Fatalf("cpu=81: got %+v, want one cpu warning", got)
	}
	if got[0].ObservedValue != 81 {
		t.Errorf("ObservedValue = %v, want 81", got[0].ObservedValue)
	}
	if got[0].Message != "High CPU usage: 81.0%" {
		t.Errorf("Message = %q", got[0].Message)
	}

	if got := Evaluate(snapshot(80, 0, 0, 0), th); len(got) != 0 {
		t.Errorf("cpu=80 (equal): got %+v, want none", got)
	}
}

func TestEvaluateOrder(t *testing.T) {
	th := config.DefaultThresholds()
	tests := []struct {
		name string
		snap model.Snapshot
		want []string
	}{
		{name: "none", snap: snapshot(10, 10, 10, 10), want: []string{}},
		{name: "all", snap: snapshot(99, 99, 99, 99), want: []string{"cpu", "memory", "disk", "temperature"}},
		{name: "memory and temperature", snap: snapshot(0, 85.1, 90, 76), want: []string{"memory", "temperature"}},
		{name: "disk only", snap: snapshot(80, 85, 90.01, 75), want: []string{"disk"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i := 0; i < 3; i++ {
				if got := metrics(Evaluate(tt.snap, th)); !reflect.DeepEqual(got, tt.want) {
					t.Fatalf("call %d: metrics = %v, want %v", i, got, tt.want)
				}
			}
		})
	}
}

func TestEvaluateCustomThresholds(t *testing.T) {
	th := config.Thresholds{CPU: 10, Memory: 100, Disk: 100, Temperature: 100}
	got := Evaluate(snapshot(50, 50, 50, 50), th)
	if !reflect.DeepEqual(metrics(got), []string{"cpu"}) {
		t.Errorf("metrics = %v, want [cpu]", metrics(got))
	}
}

func TestEvaluateTemperatureMessage(t *testing.T) {
	got := Evaluate(snapshot(0, 0, 0, 76), config.DefaultThresholds())
	if len(got) != 1 {
		t.Fatalf("got %d warnings, want 1", len(got))
	}
	if got[0].Message != "High GPU temperature: 76°C" {
		t.Errorf("Message = %q", got[0].Message)
	}
}
