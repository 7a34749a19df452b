package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"

	"github.com/ocn-sys/ocn/internal/config"
)

type fakeSampler struct {
	sample Sample
	err    error
}

func (f fakeSampler) Sample(context.Context) (Sample, error) { return f.sample, f.err }

func TestGetCPUGraph(t *testing.T) {
	tests := []struct {
		name    string
		history []float64
		ascii   bool
		want    string
	}{
		{"empty", nil, false, "CPU:" + strings.Repeat(" ", 10) + "   0%"},
		{"levels", []float64{0, 50, 100}, false, "CPU:" + strings.Repeat(" ", 7) + "▁▅█ 100%"},
		{"ascii", []float64{0, 50, 100}, true, "CPU:" + strings.Repeat(" ", 7) + "_+@ 100%"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDesktop(t, func(c *config.UserConfig) { c.Appearance.ASCIIOnly = tt.ascii })
			d.CPUHistory = tt.history
			if got := d.GetCPUGraph(); got != tt.want {
				t.Errorf("GetCPUGraph() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCPUGraphWidthIsStable(t *testing.T) {
	d := newTestDesktop(t, nil)
	width := ansi.StringWidth(d.GetCPUGraph())
	for i := range config.CPUHistorySize + 5 {
		d.RecordSample(Sample{CPU: float64(i * 9)})
		if got := ansi.StringWidth(d.GetCPUGraph()); got != width {
			t.Fatalf("after %d samples width = %d, want %d", i+1, got, width)
		}
	}
	if got := len(d.CPUHistory); got != config.CPUHistorySize {
		t.Errorf("history length = %d, want %d", got, config.CPUHistorySize)
	}
}

func TestRecordSampleClamps(t *testing.T) {
	d := newTestDesktop(t, nil)
	d.RecordSample(Sample{CPU: 140, Mem: -3})
	if d.CPUHistory[0] != 100 || d.MemUsage != 0 {
		t.Errorf("cpu = %v mem = %v, want 100 and 0", d.CPUHistory[0], d.MemUsage)
	}
	if got := d.GetMemGauge(); got != "MEM:  0%" {
		t.Errorf("GetMemGauge() = %q", got)
	}
}

func TestSampleCmd(t *testing.T) {
	msg := SampleCmd(fakeSampler{sample: Sample{CPU: 12, Mem: 34}}, 0)()
	tm, ok := msg.(TelemetryMsg)
	if !ok {
		t.Fatalf("message = %T, want TelemetryMsg", msg)
	}
	if tm.Err != nil || tm.Sample.CPU != 12 || tm.Sample.Mem != 34 {
		t.Errorf("message = %+v", tm)
	}
}

func TestTelemetryErrorKeepsHistory(t *testing.T) {
	d := newTestDesktop(t, nil)
	d.RecordSample(Sample{CPU: 10})
	d.Update(TelemetryMsg{Err: errors.New("unavailable")})
	if len(d.CPUHistory) != 1 {
		t.Errorf("history = %v, want one sample", d.CPUHistory)
	}
	d.Update(TelemetryMsg{Sample: Sample{CPU: 20, Mem: 50}})
	if len(d.CPUHistory) != 2 || d.MemUsage != 50 {
		t.Errorf("history = %v mem = %v", d.CPUHistory, d.MemUsage)
	}
}

func TestTopBarTelemetryToggle(t *testing.T) {
	d := newTestDesktop(t, func(c *config.UserConfig) {
		c.Appearance.ShowTelemetry = false
		c.Appearance.ShowClock = false
	})
	d.IsSSHMode = true
	bar := ansi.Strip(d.renderTopBar())
	if strings.Contains(bar, "CPU") || strings.Contains(bar, "13:04:05") {
		t.Errorf("top bar = %q, want no telemetry or clock", bar)
	}
	if !strings.Contains(bar, "[SSH]") {
		t.Errorf("top bar = %q, want the ssh marker", bar)
	}
}
