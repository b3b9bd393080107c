package ui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Dicklesworthstone/healthmon/internal/model"
)

func sampleUpdate() model.Update {
	return model.Update{
		Snapshot: model.Snapshot{
			Timestamp: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
			CPU:       model.CPU{UsagePercent: 42.5, PhysicalCores: 4, LogicalCores: 8, FrequencyMHz: 2400},
			Memory:    model.Memory{TotalGB: 16, UsedGB: 8.25, FreeGB: 7.75, UsagePercent: 51.6},
			Disk:      model.Disk{Path: "/", TotalGB: 100, UsedGB: 91, FreeGB: 9, UsagePercent: 91},
			Network:   model.Network{BytesSentMB: 12.5, BytesRecvMB: 99.25, PacketsSent: 100, PacketsRecv: 200},
			Processes: []model.Process{
				{PID: 42, Name: "a-very-long-process-name-that-keeps-going", CPUPercent: 12.3, MemoryPercent: 1.25},
				{PID: 7, Name: "sshd", CPUPercent: 0.5, MemoryPercent: 0.1},
			},
			Failed: []string{model.CategoryGPU},
		},
		History: map[string][]float64{
			model.SeriesCPU:    {10, 20, 42.5},
			model.SeriesMemory: {51.6},
			model.SeriesDisk:   {91},
			model.SeriesGPU:    {},
		},
		Warnings: []model.Warning{{Metric: model.MetricDisk, Message: "High Disk usage: 91.0%", ObservedValue: 91}},
	}
}

func runeKey(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func TestOverviewView(t *testing.T) {
	m := New(nil, nil, nil)
	m.Update(updateMsg(sampleUpdate()))
	view := m.View()

	for _, want := range []string{
		"System Health Monitor",
		"42.5%",
		"4 physical / 8 logical",
		"8.25 GB / 16.00 GB",
		"Free: 9.00 GB",
		"Sent: 12.50 MB (100 pkts)",
		"(unavailable)",
		"High Disk usage: 91.0%",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("overview missing %q", want)
		}
	}
}

func TestNoWarnings(t *testing.T) {
	m := New(nil, nil, nil)
	if !strings.Contains(m.View(), "No warnings") {
		t.Error("empty model should report no warnings")
	}
}

func TestTabNavigation(t *testing.T) {
	m := New(nil, nil, nil)
	m.Update(updateMsg(sampleUpdate()))

	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.tab != tabProcesses {
		t.Fatalf("tab = %d, want processes", m.tab)
	}
	view := m.View()
	if !strings.Contains(view, "Top Processes by CPU Usage") {
		t.Error("processes tab missing title")
	}
	if !strings.Contains(view, "a-very-long-process-name-that-") {
		t.Error("process name not truncated to 30 characters")
	}
	if strings.Contains(view, "a-very-long-process-name-that-k") {
		t.Error("process name longer than 30 characters")
	}

	m.Update(runeKey("3"))
	if m.tab != tabCharts {
		t.Fatalf("tab = %d, want charts", m.tab)
	}
	if view := m.View(); !strings.Contains(view, "CPU Usage %") || !strings.Contains(view, "GPU Usage %") {
		t.Error("charts tab missing series titles")
	}

	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.tab != tabOverview {
		t.Errorf("tab wrap = %d, want overview", m.tab)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.tab != tabCharts {
		t.Errorf("reverse wrap = %d, want charts", m.tab)
	}
}

func TestQuitCancels(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	m := New(nil, cancel, nil)
	_, cmd := m.Update(runeKey("q"))
	if cmd == nil {
		t.Fatal("quit returned nil command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("quit command did not produce QuitMsg")
	}
	if ctx.Err() == nil {
		t.Error("quit did not cancel the context")
	}
}

func TestReloadKey(t *testing.T) {
	calls := 0
	m := New(nil, nil, func() error {
		calls++
		if calls == 2 {
			return errors.New("bad file")
		}
		return nil
	})

	m.Update(runeKey("r"))
	if calls != 1 || !strings.Contains(m.View(), "settings reloaded") {
		t.Errorf("first reload: calls=%d status=%q", calls, m.status)
	}
	m.Update(runeKey("r"))
	if !strings.Contains(m.status, "reload failed: bad file") {
		t.Errorf("status = %q", m.status)
	}

	// Without a reload func the key does nothing.
	m = New(nil, nil, nil)
	m.Update(runeKey("r"))
	if m.status != "" {
		t.Errorf("status = %q, want empty", m.status)
	}
	if strings.Contains(m.keys.help(), "reload") {
		t.Error("help lists disabled reload binding")
	}
}

func TestTickReadsStream(t *testing.T) {
	ch := make(chan model.Update, 1)
	m := New(ch, nil, nil)

	ch <- sampleUpdate()
	_, cmd := m.Update(tickMsg{})
	if cmd == nil {
		t.Error("tick did not reschedule")
	}
	if m.latest.Snapshot.CPU.UsagePercent != 42.5 {
		t.Errorf("latest not taken from stream: %+v", m.latest.Snapshot.CPU)
	}

	// An empty stream keeps the previous update.
	m.Update(tickMsg{})
	if m.latest.Snapshot.CPU.UsagePercent != 42.5 {
		t.Error("empty tick discarded latest update")
	}
}

func TestGaugeBar(t *testing.T) {
	tests := []struct {
		pct    float64
		filled int
		label  string
	}{
		{pct: -5, filled: 0, label: "  0.0%"},
		{pct: 50, filled: 5, label: " 50.0%"},
		{pct: 150, filled: 10, label: "100.0%"},
	}
	for _, tt := range tests {
		got := gaugeBar(tt.pct, 10)
		if n := strings.Count(got, gaugeFill); n != tt.filled {
			t.Errorf("gaugeBar(%v) filled = %d, want %d", tt.pct, n, tt.filled)
		}
		if !strings.HasSuffix(got, tt.label) {
			t.Errorf("gaugeBar(%v) = %q, want suffix %q", tt.pct, got, tt.label)
		}
	}
}

func TestSparkline(t *testing.T) {
	got := sparkline([]float64{0, 100, 50}, 5, "")
	if got != "  ▁█▅" {
		t.Errorf("sparkline = %q", got)
	}
	if got := sparkline([]float64{1, 2, 3, 4}, 2, ""); len([]rune(got)) != 2 {
		t.Errorf("sparkline not cut to width: %q", got)
	}
	if got := sparkline(nil, 0, ""); got != "" {
		t.Errorf("zero width sparkline = %q", got)
	}
	if got := sparkline([]float64{-10, 200}, 2, ""); got != "▁█" {
		t.Errorf("out of range values not clamped: %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("héllo", 3); got != "hél" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("abc", 30); got != "abc" {
		t.Errorf("truncate short = %q", got)
	}
}
