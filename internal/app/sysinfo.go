package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"

	"github.com/ocn-sys/ocn/internal/config"
)

// Sample is one telemetry reading, in percent.
type Sample struct {
	CPU float64
	Mem float64
}

// Sampler reads system telemetry.
type Sampler interface {
	Sample(ctx context.Context) (Sample, error)
}

// SystemSampler reads the host through gopsutil.
type SystemSampler struct{}

// Sample implements Sampler. CPU usage is measured since the previous
// call, so the first reading may be zero.
func (SystemSampler) Sample(ctx context.Context) (Sample, error) {
	pcts, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return Sample{}, fmt.Errorf("cpu percent: %w", err)
	}
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return Sample{}, fmt.Errorf("virtual memory: %w", err)
	}
	s := Sample{Mem: vm.UsedPercent}
	if len(pcts) > 0 {
		s.CPU = pcts[0]
	}
	return s, nil
}

// TelemetryMsg carries a reading taken off the update loop.
type TelemetryMsg struct {
	Sample Sample
	Err    error
}

// SampleCmd reads s after delay in a command goroutine.
func SampleCmd(s Sampler, delay time.Duration) tea.Cmd {
	read := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		sample, err := s.Sample(ctx)
		return TelemetryMsg{Sample: sample, Err: err}
	}
	if delay <= 0 {
		return read
	}
	return tea.Tick(delay, func(time.Time) tea.Msg { return read() })
}

// RecordSample appends a reading to the history.
func (d *Desktop) RecordSample(s Sample) {
	if len(d.CPUHistory) >= config.CPUHistorySize {
		d.CPUHistory = d.CPUHistory[1:]
	}
	d.CPUHistory = append(d.CPUHistory, clampPct(s.CPU))
	d.MemUsage = clampPct(s.Mem)
}

func clampPct(v float64) float64 {
	return max(0, min(v, 100))
}

var (
	graphBlocks = []string{"▁", "▂", "▃", "▄", "▅", "▆", "▇", "█"}
	graphASCII  = []string{"_", ".", "-", "=", "+", "*", "#", "@"}
)

// GetCPUGraph returns the CPU sparkline and current usage. The result is
// always the same width so the status bar never shifts.
func (d *Desktop) GetCPUGraph() string {
	current := 0.0
	if len(d.CPUHistory) > 0 {
		current = d.CPUHistory[len(d.CPUHistory)-1]
	}
	glyphs := graphBlocks
	if d.Config.Appearance.ASCIIOnly {
		glyphs = graphASCII
	}

	var graph strings.Builder
	if pad := config.CPUHistorySize - len(d.CPUHistory); pad > 0 {
		graph.WriteString(strings.Repeat(" ", pad))
	}
	for i, usage := range d.CPUHistory {
		if i >= config.CPUHistorySize {
			break
		}
		// 100/8 = 12.5
		level := min(int(usage/12.5), len(glyphs)-1)
		graph.WriteString(glyphs[level])
	}
	return fmt.Sprintf("CPU:%s %3.0f%%", graph.String(), current)
}

// GetMemGauge returns the memory usage label.
func (d *Desktop) GetMemGauge() string {
	return fmt.Sprintf("MEM:%3.0f%%", d.MemUsage)
}

// ClockText formats the status bar clock, 24 hour.
func (d *Desktop) ClockText() string {
	return d.Clock.Format("15:04:05")
}
