package console

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit      key.Binding
	Help      key.Binding
	Up        key.Binding
	Down      key.Binding
	Select    key.Binding
	Back      key.Binding
	Search    key.Binding
	Left      key.Binding
	Right     key.Binding
	FastLeft  key.Binding
	FastRight key.Binding
	MinDown   key.Binding
	MinUp     key.Binding
	MaxDown   key.Binding
	MaxUp     key.Binding
	Theme     key.Binding
	Peak      key.Binding
	Mode      key.Binding
	Filter    key.Binding
	VolUp     key.Binding
	VolDown   key.Binding
	SqlDown   key.Binding
	SqlUp     key.Binding
	NRDown    key.Binding
	NRUp      key.Binding
	Record    key.Binding
	PNG       key.Binding
	CSV       key.Binding
	JSON      key.Binding
	Capture   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:      key.NewBinding(key.WithKeys("q", "Q", "ctrl+c"), key.WithHelp("q", "quit")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Select:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "tune in")),
		Back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "directory")),
		Search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Left:      key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/→", "tune")),
		Right:     key.NewBinding(key.WithKeys("right", "l")),
		FastLeft:  key.NewBinding(key.WithKeys("shift+left", "H"), key.WithHelp("H/L", "tune fast")),
		FastRight: key.NewBinding(key.WithKeys("shift+right", "L")),
		MinDown:   key.NewBinding(key.WithKeys("["), key.WithHelp("[/]", "min level")),
		MinUp:     key.NewBinding(key.WithKeys("]")),
		MaxDown:   key.NewBinding(key.WithKeys("{"), key.WithHelp("{/}", "max level")),
		MaxUp:     key.NewBinding(key.WithKeys("}")),
		Theme:     key.NewBinding(key.WithKeys("t", "T"), key.WithHelp("t", "theme")),
		Peak:      key.NewBinding(key.WithKeys("P"), key.WithHelp("P", "peak hold")),
		Mode:      key.NewBinding(key.WithKeys("m", "M"), key.WithHelp("m", "mode")),
		Filter:    key.NewBinding(key.WithKeys("f", "F"), key.WithHelp("f", "filter")),
		VolUp:     key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+/-", "volume")),
		VolDown:   key.NewBinding(key.WithKeys("-", "_")),
		SqlDown:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s/S", "squelch")),
		SqlUp:     key.NewBinding(key.WithKeys("S")),
		NRDown:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n/N", "noise red.")),
		NRUp:      key.NewBinding(key.WithKeys("N")),
		Record:    key.NewBinding(key.WithKeys("r", "R"), key.WithHelp("r", "record")),
		PNG:       key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "png")),
		CSV:       key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "csv")),
		JSON:      key.NewBinding(key.WithKeys("ctrl+e"), key.WithHelp("ctrl+e", "json")),
		Capture:   key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "screenshot")),
	}
}

// helpKeys is the subset of bindings shown for one screen
type helpKeys struct {
	short []key.Binding
	full  [][]key.Binding
}

func (h helpKeys) ShortHelp() []key.Binding  { return h.short }
func (h helpKeys) FullHelp() [][]key.Binding { return h.full }

func (k keyMap) directoryHelp() helpKeys {
	return helpKeys{
		short: []key.Binding{k.Up, k.Down, k.Select, k.Search, k.Theme, k.Quit},
		full: [][]key.Binding{
			{k.Up, k.Down, k.Select},
			{k.Search, k.Theme, k.Help, k.Quit},
		},
	}
}

func (k keyMap) sessionHelp() helpKeys {
	return helpKeys{
		short: []key.Binding{k.Left, k.MinDown, k.MaxDown, k.Mode, k.Record, k.Back, k.Help, k.Quit},
		full: [][]key.Binding{
			{k.Left, k.FastLeft, k.MinDown, k.MaxDown, k.Peak},
			{k.Mode, k.Filter, k.VolUp, k.SqlDown, k.NRDown},
			{k.Record, k.PNG, k.CSV, k.JSON, k.Capture},
			{k.Theme, k.Back, k.Quit},
		},
	}
}
