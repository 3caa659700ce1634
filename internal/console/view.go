package console

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rxbook/rxbook-go/internal/receiver"
	"github.com/rxbook/rxbook-go/internal/render"
	"github.com/rxbook/rxbook-go/internal/session"
	"github.com/rxbook/rxbook-go/internal/spectrum"
	"github.com/rxbook/rxbook-go/internal/stream"
	"github.com/rxbook/rxbook-go/internal/ui"
)

// View renders the console
func (m *Model) View() string {
	var sb strings.Builder

	sb.WriteString(m.renderHeader())
	sb.WriteString("\n")

	if _, active := m.store.Active(); active {
		sb.WriteString(m.renderSession())
	} else {
		sb.WriteString(m.renderDirectory())
	}

	sb.WriteString(m.renderStatusLine())
	sb.WriteString("\n")
	sb.WriteString(m.helpView())

	return sb.String()
}

func (m *Model) helpView() string {
	if _, active := m.store.Active(); active {
		return m.help.View(m.keys.sessionHelp())
	}
	return m.help.View(m.keys.directoryHelp())
}

func (m *Model) renderHeader() string {
	title := lipgloss.NewStyle().Foreground(m.theme.PrimaryBright).Bold(true).Reverse(true)
	secondary := lipgloss.NewStyle().Foreground(m.theme.Secondary)
	info := lipgloss.NewStyle().Foreground(m.theme.Info)
	dim := m.theme.TextDimStyle()

	left := title.Render(" RXBOOK ") + dim.Render(" ░ ") + secondary.Render("SDR SPECTRUM CONSOLE")
	if m.remote != nil {
		state := m.remote.State()
		style := dim
		if state == stream.StateConnected {
			style = lipgloss.NewStyle().Foreground(m.theme.Success)
		}
		left += dim.Render(" ── ") + style.Render("LINK "+strings.ToUpper(state.String()))
	}
	right := info.Render(session.FormatClock(m.clock))

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m *Model) renderDirectory() string {
	dir := m.store.Directory()
	border := m.theme.BorderStyle()
	heading := lipgloss.NewStyle().Foreground(m.theme.PrimaryBright).Bold(true)
	dim := m.theme.TextDimStyle()
	text := m.theme.TextStyle()
	online := lipgloss.NewStyle().Foreground(m.theme.Success)
	selected := lipgloss.NewStyle().Foreground(m.theme.Selected).Bold(true).Reverse(true)

	var sb strings.Builder
	sb.WriteString(heading.Render("RECEIVER DIRECTORY"))
	sb.WriteString(dim.Render(fmt.Sprintf("  %d/%d online · span %s kHz",
		dir.OnlineCount(), len(dir.Receivers), strconv.FormatFloat(dir.BandwidthKHz, 'f', -1, 64))))
	sb.WriteString("\n")
	sb.WriteString(border.Render(fmt.Sprintf(" %-3s %-20s %-20s %-10s %12s  %s", "ID", "NAME", "LOCATION", "RANGE", "CENTER MHz", "STATUS")))
	sb.WriteString("\n")

	receivers := m.visible()
	switch {
	case m.searching:
		sb.WriteString(" " + m.query.View() + "\n")
	case m.filter.IsActive():
		sb.WriteString(dim.Render(fmt.Sprintf(" filter %s · %d of %d · esc clears", m.filter.Description(), len(receivers), len(dir.Receivers))))
		sb.WriteString("\n")
	}
	if len(receivers) == 0 {
		sb.WriteString(dim.Render(" no receivers match"))
		sb.WriteString("\n")
	}

	for i, r := range receivers {
		line := directoryRow(r)
		switch {
		case i == m.row:
			sb.WriteString(selected.Render(line))
		case r.Online():
			sb.WriteString(text.Render(line[:len(line)-len(statusLabel(r))]))
			sb.WriteString(online.Render(statusLabel(r)))
		default:
			sb.WriteString(dim.Render(line))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func directoryRow(r receiver.Receiver) string {
	return fmt.Sprintf(" %-3d %-20s %-20s %-10s %12s  %s",
		r.ID, truncate(r.Name, 20), truncate(r.Location, 20), truncate(r.FrequencyRange, 10),
		session.FormatFrequency(r.CenterMHz), statusLabel(r))
}

func statusLabel(r receiver.Receiver) string {
	if r.Online() {
		return "● ONLINE"
	}
	return "○ OFFLINE"
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 1 {
		return string(runes[:n])
	}
	return string(runes[:n-1]) + "…"
}

func (m *Model) renderSession() string {
	snap := m.store.Snapshot()
	specRows, wf := m.surfaceRows()
	surfaces := m.driver.Surfaces()
	ready := m.hasFrame && surfaces.Usable()

	var sb strings.Builder
	sb.WriteString(m.renderReceiverLine(snap))
	sb.WriteString("\n")
	sb.WriteString(m.renderReadout())
	sb.WriteString("\n")
	if m.cfg.Display.ShowControls {
		sb.WriteString(m.renderControls(snap))
		sb.WriteString("\n")
	}

	var specLines, wfLines []string
	if ready {
		specLines = m.canvas.Lines(surfaces.Spectrum)
		wfLines = m.canvas.Lines(surfaces.Waterfall.Image())
	}
	m.writeFramed(&sb, specLines, specRows)

	axis, err := snap.Axis()
	if err == nil && axis.Ready() {
		sb.WriteString(m.renderAxisLabels(axis))
		sb.WriteString("\n")
		if m.cfg.Display.ShowMarkers {
			sb.WriteString(m.renderMarkers(axis, snap.Markers))
			sb.WriteString("\n")
		}
	} else {
		sb.WriteString("\n")
		if m.cfg.Display.ShowMarkers {
			sb.WriteString("\n")
		}
	}

	m.writeFramed(&sb, wfLines, wf)
	return sb.String()
}

// writeFramed writes rows surface lines between side borders, padding with blanks
func (m *Model) writeFramed(sb *strings.Builder, lines []string, rows int) {
	border := m.theme.BorderStyle().Render("│")
	blank := strings.Repeat(" ", m.spectrumWidth())
	for i := 0; i < rows; i++ {
		sb.WriteString(border)
		if i < len(lines) {
			sb.WriteString(lines[i])
		} else {
			sb.WriteString(blank)
		}
		sb.WriteString(border)
		sb.WriteString("\n")
	}
}

func (m *Model) renderReceiverLine(snap session.Snapshot) string {
	primary := m.theme.PrimaryStyle().Bold(true)
	dim := m.theme.TextDimStyle()
	r := snap.Receiver
	return primary.Render("▶ "+r.Name) +
		dim.Render(fmt.Sprintf(" · %s · %s · center %s MHz", r.Location, r.FrequencyRange, session.FormatFrequency(r.CenterMHz)))
}

func (m *Model) renderReadout() string {
	label := m.theme.TextDimStyle()
	value := lipgloss.NewStyle().Foreground(m.theme.PrimaryBright).Bold(true)
	sep := m.theme.BorderStyle().Render(" │ ")

	freq, level := "---.----", "---.-"
	if m.hasFrame {
		freq = session.FormatFrequency(m.last.Readout.FrequencyMHz)
		level = session.FormatLevel(m.last.Readout.LevelDBm)
	}

	var sb strings.Builder
	sb.WriteString(label.Render("FREQ "))
	sb.WriteString(value.Render(freq))
	sb.WriteString(label.Render(" MHz"))
	sb.WriteString(sep)
	sb.WriteString(label.Render("LEVEL "))
	sb.WriteString(value.Render(level))
	sb.WriteString(label.Render(" dBm"))
	sb.WriteString(sep)
	sb.WriteString(m.meter.Render())
	sb.WriteString(sep)

	if m.hasFrame && m.last.SquelchOpen {
		sb.WriteString(lipgloss.NewStyle().Foreground(m.theme.Success).Bold(true).Render("SQL OPEN"))
	} else {
		sb.WriteString(label.Render("SQL SHUT"))
	}

	if m.recorder.Active() {
		elapsed := m.recorder.Elapsed(m.now())
		rec := fmt.Sprintf("● REC %s %d", formatElapsed(int(elapsed.Seconds())), m.recorder.Len())
		sb.WriteString(sep)
		sb.WriteString(lipgloss.NewStyle().Foreground(m.theme.Error).Bold(true).Render(rec))
	}
	return sb.String()
}

func (m *Model) renderControls(snap session.Snapshot) string {
	label := m.theme.TextDimStyle()
	value := m.theme.TextStyle()
	sep := m.theme.BorderStyle().Render(" │ ")
	c := snap.Controls

	peak := "off"
	if snap.PeakHold {
		peak = "on"
	}

	parts := []string{
		label.Render("MODE ") + value.Render(string(c.Mode)),
		label.Render("VOL ") + ui.Gauge(m.theme, float64(c.Volume)/session.VolumeMax, gaugeWidth) + value.Render(fmt.Sprintf(" %3d", c.Volume)),
		label.Render("SQL ") + value.Render(fmt.Sprintf("%.0f dBm", c.SquelchDBm)),
		label.Render("FILTER ") + value.Render(strconv.FormatFloat(c.FilterKHz, 'f', -1, 64)+" kHz"),
		label.Render("NR ") + value.Render(fmt.Sprintf("%+d", c.NoiseReduction)),
		label.Render("PEAK ") + value.Render(peak),
		label.Render("CAL ") + value.Render(fmt.Sprintf("%.0f/%.0f dBm", snap.Calibration.Min, snap.Calibration.Max)),
	}
	return strings.Join(parts, sep)
}

func (m *Model) renderAxisLabels(axis spectrum.Axis) string {
	center, low, high := render.EdgeLabels(axis)
	w := m.spectrumWidth()
	buf := []rune(strings.Repeat(" ", w))
	place(buf, 0, low)
	place(buf, w/2-len([]rune(center))/2, center)
	place(buf, w-len([]rune(high)), high)

	style := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Spectrum.Label))
	return " " + style.Render(string(buf))
}

func (m *Model) renderMarkers(axis spectrum.Axis, markers []receiver.StationMarker) string {
	w := m.spectrumWidth()
	buf := []rune(strings.Repeat(" ", w))
	used := make([]bool, w)

	for _, mk := range markers {
		x, ok := axis.MarkerPixel(mk.OffsetKHz)
		if !ok {
			continue
		}
		text := "▲" + mk.Callsign
		start := int(x)
		if start+len([]rune(text)) > w {
			start = w - len([]rune(text))
		}
		if start < 0 || overlaps(used, start, len([]rune(text))+1) {
			continue
		}
		place(buf, start, text)
		for i := start; i < start+len([]rune(text)) && i < w; i++ {
			used[i] = true
		}
	}

	style := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Spectrum.Marker))
	return " " + style.Render(string(buf))
}

// place writes s into buf at x, dropping what falls outside
func place(buf []rune, x int, s string) {
	for i, r := range []rune(s) {
		if x+i >= 0 && x+i < len(buf) {
			buf[x+i] = r
		}
	}
}

func overlaps(used []bool, start, n int) bool {
	for i := start - 1; i < start+n && i < len(used); i++ {
		if i >= 0 && used[i] {
			return true
		}
	}
	return false
}

func (m *Model) renderStatusLine() string {
	if m.status != "" {
		style := lipgloss.NewStyle().Foreground(m.theme.Info)
		if m.statusErr {
			style = lipgloss.NewStyle().Foreground(m.theme.Error)
		}
		return style.Render(" " + m.status)
	}

	dim := m.theme.TextDimStyle()
	if _, active := m.store.Active(); !active {
		return dim.Render(" select a receiver and press enter")
	}
	if !m.hasFrame {
		return dim.Render(" waiting for the first frame")
	}
	st := m.last.Stats
	return dim.Render(fmt.Sprintf(" frame %d · peak %s dBm · mean %s dBm · floor %s dBm",
		m.last.Seq, session.FormatLevel(st.PeakDBm), session.FormatLevel(st.MeanDBm), session.FormatLevel(st.NoiseFloor)))
}

func formatElapsed(seconds int) string {
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
