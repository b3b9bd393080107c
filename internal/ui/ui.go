// Package ui renders poller updates as a Bubble Tea terminal dashboard.
package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Dicklesworthstone/healthmon/internal/model"
	"github.com/Dicklesworthstone/healthmon/internal/poller"
)

type tab int

const (
	tabOverview tab = iota
	tabProcesses
	tabCharts
	tabCount
)

var tabNames = [...]string{"Overview", "Processes", "Charts"}

type keyMap struct {
	Quit   key.Binding
	Next   key.Binding
	Prev   key.Binding
	Jump   key.Binding
	Reload key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Next:   key.NewBinding(key.WithKeys("tab", "right", "l"), key.WithHelp("tab", "next tab")),
		Prev:   key.NewBinding(key.WithKeys("shift+tab", "left", "h"), key.WithHelp("shift+tab", "prev tab")),
		Jump:   key.NewBinding(key.WithKeys("1", "2", "3"), key.WithHelp("1-3", "jump")),
		Reload: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload settings")),
	}
}

func (k keyMap) help() string {
	parts := make([]string, 0, 5)
	for _, b := range []key.Binding{k.Next, k.Prev, k.Jump, k.Reload, k.Quit} {
		if !b.Enabled() {
			continue
		}
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " • ")
}

// Model renders live updates from the poller.
type Model struct {
	latest    model.Update
	stream    <-chan model.Update
	ctxCancel context.CancelFunc
	reload    func() error
	keys      keyMap
	tab       tab
	status    string
	width     int
	height    int
}

// New returns a model reading from stream. cancel is called on quit;
// reload, if non-nil, is bound to the reload key.
func New(stream <-chan model.Update, cancel context.CancelFunc, reload func() error) *Model {
	keys := defaultKeys()
	if reload == nil {
		keys.Reload.SetEnabled(false)
	}
	return &Model{
		latest:    model.Zero(),
		stream:    stream,
		ctxCancel: cancel,
		reload:    reload,
		keys:      keys,
		width:     120,
		height:    40,
	}
}

// Messages
type (
	tickMsg   struct{}
	updateMsg model.Update
)

func tickCmd() tea.Cmd { return tea.Tick(time.Second/5, func(time.Time) tea.Msg { return tickMsg{} }) }

func (m *Model) Init() tea.Cmd { return tickCmd() }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			if m.ctxCancel != nil {
				m.ctxCancel()
			}
			return m, tea.Quit
		case key.Matches(msg, m.keys.Next):
			m.tab = (m.tab + 1) % tabCount
		case key.Matches(msg, m.keys.Prev):
			m.tab = (m.tab + tabCount - 1) % tabCount
		case key.Matches(msg, m.keys.Jump):
			m.tab = tab(msg.Runes[0] - '1')
		case key.Matches(msg, m.keys.Reload):
			if err := m.reload(); err != nil {
				m.status = "reload failed: " + err.Error()
			} else {
				m.status = "settings reloaded"
			}
		}
	case updateMsg:
		m.latest = model.Update(msg)
	case tickMsg:
		select {
		case u, ok := <-m.stream:
			if ok {
				m.latest = u
			}
		default:
		}
		return m, tickCmd()
	}
	return m, nil
}

// Styles
var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("45"))
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("81")).Bold(true)
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	activeTab   = lipgloss.NewStyle().Bold(true).Underline(true).Foreground(lipgloss.Color("45"))
	inactiveTab = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	gaugeFill   = "█"
	gaugeEmpty  = "░"
	cardStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("60")).
			Padding(0, 1).
			MarginRight(1)
)

// Chart colours per series.
var seriesColors = map[string]lipgloss.Color{
	model.SeriesCPU:    lipgloss.Color("196"),
	model.SeriesMemory: lipgloss.Color("33"),
	model.SeriesDisk:   lipgloss.Color("34"),
	model.SeriesGPU:    lipgloss.Color("129"),
}

var seriesTitles = map[string]string{
	model.SeriesCPU:    "CPU Usage %",
	model.SeriesMemory: "Memory Usage %",
	model.SeriesDisk:   "Disk Usage %",
	model.SeriesGPU:    "GPU Usage %",
}

func (m *Model) View() string {
	s := m.latest.Snapshot
	header := titleStyle.Render("System Health Monitor") + "  " +
		subtleStyle.Render(s.Timestamp.Format("Mon Jan 2 15:04:05 MST 2006"))

	var body string
	switch m.tab {
	case tabProcesses:
		body = m.processesView()
	case tabCharts:
		body = m.chartsView()
	default:
		body = m.overviewView()
	}

	footer := []string{m.warningsView()}
	if m.status != "" {
		footer = append(footer, subtleStyle.Render(m.status))
	}
	footer = append(footer, subtleStyle.Render(m.keys.help()))

	return lipgloss.JoinVertical(lipgloss.Left,
		header, m.tabBar(), body, strings.Join(footer, "\n"))
}

func (m *Model) tabBar() string {
	parts := make([]string, len(tabNames))
	for i, name := range tabNames {
		label := fmt.Sprintf("%d %s", i+1, name)
		if tab(i) == m.tab {
			parts[i] = activeTab.Render(label)
		} else {
			parts[i] = inactiveTab.Render(label)
		}
	}
	return strings.Join(parts, "   ")
}

func (m *Model) overviewView() string {
	s := m.latest.Snapshot

	cpuCard := card("CPU", s.HasFailed(model.CategoryCPU),
		fmt.Sprintf("%s\nCores: %d physical / %d logical  %.0f MHz",
			gaugeBar(s.CPU.UsagePercent, 28),
			s.CPU.PhysicalCores, s.CPU.LogicalCores, s.CPU.FrequencyMHz))

	memCard := card("Memory", s.HasFailed(model.CategoryMemory),
		fmt.Sprintf("%s\nUsed: %.2f GB / %.2f GB",
			gaugeBar(s.Memory.UsagePercent, 28),
			s.Memory.UsedGB, s.Memory.TotalGB))

	diskCard := card("Disk "+s.Disk.Path, s.HasFailed(model.CategoryDisk),
		fmt.Sprintf("%s\nFree: %.2f GB",
			gaugeBar(s.Disk.UsagePercent, 28),
			s.Disk.FreeGB))

	gpuCard := card("GPU", s.HasFailed(model.CategoryGPU),
		fmt.Sprintf("%s\nTemp: %.0f°C",
			gaugeBar(s.GPU.UsagePercent, 28),
			s.GPU.TemperatureC))

	n := s.Network
	netCard := card("Network", s.HasFailed(model.CategoryNetwork),
		fmt.Sprintf("Sent: %.2f MB (%d pkts)\nRecv: %.2f MB (%d pkts)",
			n.BytesSentMB, n.PacketsSent, n.BytesRecvMB, n.PacketsRecv))

	line1 := lipgloss.JoinHorizontal(lipgloss.Top, cpuCard, memCard)
	line2 := lipgloss.JoinHorizontal(lipgloss.Top, diskCard, gpuCard)
	return lipgloss.JoinVertical(lipgloss.Left, line1, line2, netCard)
}

func (m *Model) processesView() string {
	s := m.latest.Snapshot
	return card("Top Processes by CPU Usage", s.HasFailed(model.CategoryProcesses),
		renderTable(s.Processes))
}

func (m *Model) chartsView() string {
	width := m.width - 24
	if width > 60 {
		width = 60
	}
	if width < 10 {
		width = 10
	}
	rows := make([]string, 0, len(model.SeriesKeys))
	for _, k := range model.SeriesKeys {
		data := m.latest.History[k]
		last := 0.0
		if len(data) > 0 {
			last = data[len(data)-1]
		}
		line := fmt.Sprintf("%-15s %s %5.1f%%",
			seriesTitles[k],
			sparkline(data, width, seriesColors[k]),
			last)
		rows = append(rows, line)
	}
	return card("Trends", false, strings.Join(rows, "\n"))
}

func (m *Model) warningsView() string {
	ws := m.latest.Warnings
	if len(ws) == 0 {
		return okStyle.Render("No warnings")
	}
	msgs := make([]string, len(ws))
	for i, w := range ws {
		msgs[i] = w.Message
	}
	return warnStyle.Render("Warnings: " + strings.Join(msgs, ", "))
}

// Helpers
func gaugeBar(pct float64, width int) string {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	filled := int((pct / 100) * float64(width))
	if filled > width {
		filled = width
	}
	return fmt.Sprintf("[%s%s] %5.1f%%",
		strings.Repeat(gaugeFill, filled),
		strings.Repeat(gaugeEmpty, width-filled),
		pct)
}

func card(title string, failed bool, body string) string {
	titleStr := labelStyle.Render(title)
	if failed {
		titleStr += " " + warnStyle.Render("(unavailable)")
	}
	return cardStyle.Render(titleStr + "\n" + body)
}

// processNameWidth is the display width of the process name column.
const processNameWidth = 30

func renderTable(rows []model.Process) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-30s %7s %9s %8s\n", "Process Name", "CPU %", "Memory %", "PID")
	for _, r := range rows {
		fmt.Fprintf(&b, "%-30s %7.1f %9.2f %8d\n",
			truncate(r.Name, processNameWidth), r.CPUPercent, r.MemoryPercent, r.PID)
	}
	return strings.TrimRight(b.String(), "\n")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// RunTUI starts the poller and the Bubble Tea program and blocks until the
// user quits or ctx is cancelled.
func RunTUI(ctx context.Context, p *poller.Poller, reload func() error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stream := p.Stream(ctx, 0)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = p.Run(ctx)
	}()

	prog := tea.NewProgram(New(stream, cancel, reload), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := prog.Run()
	cancel()
	<-done
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
