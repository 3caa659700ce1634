// Package console provides the interactive rxbook terminal console
package console

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/rxbook/rxbook-go/internal/config"
	"github.com/rxbook/rxbook-go/internal/export"
	"github.com/rxbook/rxbook-go/internal/receiver"
	"github.com/rxbook/rxbook-go/internal/render"
	"github.com/rxbook/rxbook-go/internal/search"
	"github.com/rxbook/rxbook-go/internal/session"
	"github.com/rxbook/rxbook-go/internal/spectrum"
	"github.com/rxbook/rxbook-go/internal/stream"
	"github.com/rxbook/rxbook-go/internal/theme"
	"github.com/rxbook/rxbook-go/internal/ui"
)

// Adjustment steps for keyboard controls
const (
	NudgeStep       = 1.0
	FastNudgeStep   = 10.0
	CalibrationStep = 5.0
	VolumeStep      = 5
	SquelchStep     = 5.0
	statusTimeout   = 4 * time.Second
	meterWidth      = 20
	gaugeWidth      = 10
	spectrumLeft    = 1 // border column before the spectrum
)

// Options configures a console Model
type Options struct {
	Config    *config.Config
	Directory *receiver.Directory
	Source    session.Source // defaults to the synthetic generator
	Remote    *stream.Client // shown in the header when set
	Logger    logrus.FieldLogger
	Now       func() time.Time
}

type tickMsg struct {
	gen uint64
	at  time.Time
}

type clockMsg time.Time

// Model is the bubbletea model of the console
type Model struct {
	cfg      *config.Config
	theme    *theme.Theme
	store    *session.Store
	driver   *session.Driver
	canvas   *ui.Canvas
	meter    *ui.SMeter
	recorder *session.Recorder
	remote   *stream.Client
	log      logrus.FieldLogger
	keys     keyMap
	help     help.Model
	now      func() time.Time

	width  int
	height int
	row    int // highlighted row of the filtered directory

	query     textinput.Model
	searching bool
	filter    *search.Filter

	last     session.FrameEvent
	hasFrame bool
	clock    time.Time

	status    string
	statusErr bool
	statusAt  time.Time
}

// New creates a console over the configured directory
func New(opts Options) (*Model, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	cfg.Validate()

	ramp, err := spectrum.ParseRamp(cfg.Display.ColorRamp)
	if err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		opts.Logger = l
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	t := theme.Get(cfg.Display.Theme)
	store := session.NewStore(opts.Directory, cfg.Calibration)

	query := textinput.New()
	query.Prompt = "/ "
	query.Placeholder = "name, online, band:vhf, mhz:100-200"
	query.CharLimit = 64

	m := &Model{
		cfg:      cfg,
		theme:    t,
		store:    store,
		canvas:   ui.NewCanvas(),
		meter:    ui.NewSMeter(t, meterWidth, cfg.Display.FrameRate),
		recorder: session.NewRecorder(0),
		remote:   opts.Remote,
		log:      opts.Logger.WithField("component", "console"),
		keys:     defaultKeyMap(),
		help:     help.New(),
		now:      opts.Now,
		clock:    opts.Now(),
		query:    query,
	}
	m.driver = session.NewDriver(store, session.DriverConfig{
		Source:    opts.Source,
		Renderer:  render.NewSpectrumRenderer(t.Palette()),
		Mapper:    spectrum.NewColorMapper(ramp),
		FrameRate: cfg.Display.FrameRate,
		Logger:    opts.Logger,
		OnFrame:   m.onFrame,
	})

	m.highlight(cfg.LastReceiver)
	return m, nil
}

// Config returns the settings, including changes made in the console
func (m *Model) Config() *config.Config {
	return m.cfg
}

// Store returns the session store
func (m *Model) Store() *session.Store {
	return m.store
}

// Driver returns the render loop driver
func (m *Model) Driver() *session.Driver {
	return m.driver
}

// Init starts the clock
func (m *Model) Init() tea.Cmd {
	return tea.Batch(clockCmd(), tea.SetWindowTitle("rxbook"))
}

func clockCmd() tea.Cmd {
	return tea.Every(time.Second, func(t time.Time) tea.Msg {
		return clockMsg(t)
	})
}

func (m *Model) tickCmd(gen uint64) tea.Cmd {
	return tea.Tick(m.driver.Interval(), func(t time.Time) tea.Msg {
		return tickMsg{gen: gen, at: t}
	})
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, m.layout()

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil

	case tickMsg:
		return m.handleTick(msg)

	case clockMsg:
		m.clock = time.Time(msg)
		if m.status != "" && m.clock.Sub(m.statusAt) > statusTimeout {
			m.status = ""
		}
		return m, clockCmd()
	}

	return m, nil
}

func (m *Model) onFrame(ev session.FrameEvent) {
	m.last = ev
	m.hasFrame = true
	m.recorder.Add(ev)
	m.meter.Set(ev.Readout.LevelDBm)
}

func (m *Model) handleTick(msg tickMsg) (tea.Model, tea.Cmd) {
	_, again := m.driver.Tick(msg.at, msg.gen)
	if !again {
		return m, nil
	}
	m.meter.Step()
	return m, m.tickCmd(msg.gen)
}

// layout pushes the surface geometry to the store and restarts the loop if it
// stopped for lack of space
func (m *Model) layout() tea.Cmd {
	specRows, wf := m.surfaceRows()
	m.store.Resize(m.spectrumWidth(), ui.PixelRows(specRows), ui.PixelRows(wf))

	if _, active := m.store.Active(); !active || m.driver.Running() {
		return nil
	}
	if specRows == 0 || wf == 0 {
		return nil
	}
	return m.startLoop()
}

func (m *Model) startLoop() tea.Cmd {
	gen := m.driver.Start()
	m.log.WithField("generation", gen).Debug("session loop scheduled")
	return m.tickCmd(gen)
}

func (m *Model) spectrumWidth() int {
	return max(m.width-2*spectrumLeft, 0)
}

// chromeRows counts the session rows that are not spectrum or waterfall
func (m *Model) chromeRows() int {
	rows := 3 + 1 + 1 // header, receiver, readout, axis labels, status
	if m.cfg.Display.ShowControls {
		rows++
	}
	if m.cfg.Display.ShowMarkers {
		rows++
	}
	return rows + lipgloss.Height(m.helpView())
}

// surfaceRows returns the terminal rows given to the spectrum and the
// waterfall, shrinking both when the terminal is short
func (m *Model) surfaceRows() (specRows, wf int) {
	if m.height <= 0 {
		return 0, 0
	}
	specRows, wf = m.cfg.Display.SpectrumRows, m.cfg.Display.WaterfallRows
	avail := m.height - m.chromeRows()
	if specRows+wf <= avail {
		return specRows, wf
	}
	if avail < 2 {
		return 0, 0
	}
	specRows = max(1, avail*specRows/(specRows+wf))
	wf = avail - specRows
	if wf < 1 {
		return 0, 0
	}
	return specRows, wf
}

// spectrumTop returns the first terminal row of the spectrum
func (m *Model) spectrumTop() int {
	top := 3
	if m.cfg.Display.ShowControls {
		top++
	}
	return top
}

// spectrumPixel maps a terminal cell to a spectrum pixel column
func (m *Model) spectrumPixel(x, y int) (float64, bool) {
	specRows, _ := m.surfaceRows()
	col := x - spectrumLeft
	row := y - m.spectrumTop()
	inside := col >= 0 && col < m.spectrumWidth() && row >= 0 && row < specRows
	return float64(col), inside
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	if _, active := m.store.Active(); !active {
		return
	}
	x, inside := m.spectrumPixel(msg.X, msg.Y)

	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonLeft:
			if inside {
				m.store.PointerDown(x)
			}
		case tea.MouseButtonWheelUp:
			m.store.Nudge(NudgeStep)
		case tea.MouseButtonWheelDown:
			m.store.Nudge(-NudgeStep)
		}
	case tea.MouseActionMotion:
		if inside {
			m.store.PointerMove(x)
		} else {
			m.store.PointerLeave()
		}
	case tea.MouseActionRelease:
		m.store.PointerUp()
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		return m.handleSearchKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.shutdown()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, m.layout()
	case key.Matches(msg, m.keys.Theme):
		m.cycleTheme()
		return m, nil
	}

	if _, active := m.store.Active(); !active {
		return m.handleDirectoryKey(msg)
	}
	return m.handleSessionKey(msg)
}

func (m *Model) handleDirectoryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	receivers := m.visible()

	switch {
	case key.Matches(msg, m.keys.Search):
		m.searching = true
		return m, m.query.Focus()
	case key.Matches(msg, m.keys.Back):
		if m.filter.IsActive() {
			m.clearFilter()
		}
	case key.Matches(msg, m.keys.Up):
		if m.row > 0 {
			m.row--
		}
	case key.Matches(msg, m.keys.Down):
		if m.row < len(receivers)-1 {
			m.row++
		}
	case key.Matches(msg, m.keys.Select):
		if m.row >= len(receivers) {
			return m, nil
		}
		return m, m.tuneIn(receivers[m.row])
	}
	return m, nil
}

// handleSearchKey edits the directory query while the search box has focus
func (m *Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.shutdown()
		return m, tea.Quit
	case tea.KeyEsc:
		m.clearFilter()
		return m, nil
	case tea.KeyEnter:
		m.searching = false
		m.query.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.query, cmd = m.query.Update(msg)
	m.filter = search.ParseQuery(m.query.Value())
	if n := len(m.visible()); m.row >= n {
		m.row = max(n-1, 0)
	}
	return m, cmd
}

// visible returns the directory rows passing the current filter
func (m *Model) visible() []receiver.Receiver {
	return search.Apply(m.store.Directory().Receivers, m.filter)
}

// highlight moves the directory cursor to receiver id if it is visible
func (m *Model) highlight(id int) {
	for i, r := range m.visible() {
		if r.ID == id {
			m.row = i
			return
		}
	}
}

func (m *Model) clearFilter() {
	var id int
	if receivers := m.visible(); m.row < len(receivers) {
		id = receivers[m.row].ID
	}
	m.searching = false
	m.query.Reset()
	m.query.Blur()
	m.filter = nil
	m.row = 0
	m.highlight(id)
}

// tuneIn starts a session on r
func (m *Model) tuneIn(r receiver.Receiver) tea.Cmd {
	if err := m.store.Select(r); err != nil {
		m.setError(err)
		return nil
	}
	if m.driver.Running() {
		m.driver.Stop()
	}
	m.cfg.LastReceiver = r.ID
	m.hasFrame = false
	m.meter.Snap(ui.S0Level)
	m.setStatus("tuned to " + r.Name)
	m.log.WithFields(logrus.Fields{"receiver": r.ID, "name": r.Name}).Info("session started")
	return m.layout()
}

// deselect ends the session and returns to the directory
func (m *Model) deselect() {
	if m.recorder.Active() {
		m.stopRecording()
	}
	r, _ := m.store.Active()
	m.store.Deselect()
	m.driver.Stop()
	m.hasFrame = false
	m.meter.Snap(ui.S0Level)
	m.setStatus("left " + r.Name)
	m.log.WithField("receiver", r.ID).Info("session ended")
}

func (m *Model) shutdown() {
	if _, active := m.store.Active(); active {
		m.deselect()
	}
}

func (m *Model) handleSessionKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.deselect()
	case key.Matches(msg, m.keys.Left):
		m.store.Nudge(-NudgeStep)
	case key.Matches(msg, m.keys.Right):
		m.store.Nudge(NudgeStep)
	case key.Matches(msg, m.keys.FastLeft):
		m.store.Nudge(-FastNudgeStep)
	case key.Matches(msg, m.keys.FastRight):
		m.store.Nudge(FastNudgeStep)
	case key.Matches(msg, m.keys.MinDown):
		m.cfg.Calibration = m.store.AdjustCalibration(-CalibrationStep, 0)
	case key.Matches(msg, m.keys.MinUp):
		m.cfg.Calibration = m.store.AdjustCalibration(CalibrationStep, 0)
	case key.Matches(msg, m.keys.MaxDown):
		m.cfg.Calibration = m.store.AdjustCalibration(0, -CalibrationStep)
	case key.Matches(msg, m.keys.MaxUp):
		m.cfg.Calibration = m.store.AdjustCalibration(0, CalibrationStep)
	case key.Matches(msg, m.keys.Peak):
		if m.store.TogglePeakHold() {
			m.setStatus("peak hold on")
		} else {
			m.setStatus("peak hold off")
		}
	case key.Matches(msg, m.keys.Mode):
		m.store.UpdateControls(func(c *session.Controls) { c.Mode = session.NextMode(c.Mode) })
	case key.Matches(msg, m.keys.Filter):
		m.store.UpdateControls(func(c *session.Controls) { c.FilterKHz = session.NextFilter(c.FilterKHz) })
	case key.Matches(msg, m.keys.VolUp):
		m.store.UpdateControls(func(c *session.Controls) { c.Volume += VolumeStep })
	case key.Matches(msg, m.keys.VolDown):
		m.store.UpdateControls(func(c *session.Controls) { c.Volume -= VolumeStep })
	case key.Matches(msg, m.keys.SqlDown):
		m.store.UpdateControls(func(c *session.Controls) { c.SquelchDBm -= SquelchStep })
	case key.Matches(msg, m.keys.SqlUp):
		m.store.UpdateControls(func(c *session.Controls) { c.SquelchDBm += SquelchStep })
	case key.Matches(msg, m.keys.NRDown):
		m.store.UpdateControls(func(c *session.Controls) { c.NoiseReduction-- })
	case key.Matches(msg, m.keys.NRUp):
		m.store.UpdateControls(func(c *session.Controls) { c.NoiseReduction++ })
	case key.Matches(msg, m.keys.Record):
		if m.recorder.Active() {
			m.stopRecording()
		} else {
			m.startRecording()
		}
	case key.Matches(msg, m.keys.PNG):
		m.exportPNG()
	case key.Matches(msg, m.keys.CSV):
		m.exportFrame("csv", export.ExportFrameCSV)
	case key.Matches(msg, m.keys.JSON):
		m.exportFrame("json", export.ExportFrameJSON)
	case key.Matches(msg, m.keys.Capture):
		m.capture()
	}
	return m, nil
}

func (m *Model) cycleTheme() {
	name := theme.Next(m.cfg.Display.Theme)
	m.cfg.Display.Theme = name
	m.theme = theme.Get(name)
	m.meter.Theme = m.theme
	m.driver.SetPalette(m.theme.Palette())
	m.canvas.Reset()
	m.setStatus("theme: " + name)
}

func (m *Model) startRecording() {
	m.recorder.Start(m.now())
	m.store.UpdateControls(func(c *session.Controls) { c.Recording = true })
	m.setStatus("recording started")
}

// stopRecording ends the recording and writes the captured readouts
func (m *Model) stopRecording() {
	records := m.recorder.Stop()
	m.store.UpdateControls(func(c *session.Controls) { c.Recording = false })
	if len(records) == 0 {
		m.setStatus("recording stopped, nothing captured")
		return
	}
	filename, err := export.ExportRecords(records, m.cfg.Export.Directory)
	if err != nil {
		m.setError(fmt.Errorf("saving recording: %w", err))
		return
	}
	m.setStatus(fmt.Sprintf("recorded %d readouts to %s", len(records), export.Describe(filename)))
}

func (m *Model) exportPNG() {
	filename, err := export.ExportPNG(m.driver.Surfaces(), m.cfg.Export.Directory)
	if err != nil {
		m.setError(fmt.Errorf("png export: %w", err))
		return
	}
	m.setStatus("saved " + export.Describe(filename))
}

func (m *Model) exportFrame(kind string, fn func(session.FrameEvent, string) (string, error)) {
	if !m.hasFrame {
		m.setError(fmt.Errorf("%s export: %w", kind, export.ErrNoSurface))
		return
	}
	filename, err := fn(m.last, m.cfg.Export.Directory)
	if err != nil {
		m.setError(fmt.Errorf("%s export: %w", kind, err))
		return
	}
	m.setStatus("saved " + export.Describe(filename))
}

func (m *Model) capture() {
	filename, err := export.CaptureScreen(m.View(), m.cfg.Export.Directory)
	if err != nil {
		m.setError(fmt.Errorf("screenshot: %w", err))
		return
	}
	m.setStatus("saved " + export.Describe(filename))
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusErr = false
	m.statusAt = m.clock
}

func (m *Model) setError(err error) {
	m.status = err.Error()
	m.statusErr = true
	m.statusAt = m.clock
	m.log.WithError(err).Warn("console action failed")
}

// LastFrame returns the most recent painted frame
func (m *Model) LastFrame() (session.FrameEvent, bool) {
	return m.last, m.hasFrame
}

// Status returns the current status line message
func (m *Model) Status() string {
	return m.status
}
