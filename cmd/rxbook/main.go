// Package main provides the entry point for the rxbook CLI application
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rxbook/rxbook-go/internal/config"
	"github.com/rxbook/rxbook-go/internal/console"
	"github.com/rxbook/rxbook-go/internal/receiver"
	"github.com/rxbook/rxbook-go/internal/stream"
	"github.com/rxbook/rxbook-go/internal/theme"
)

// globalFlags are the persistent flags shared by every command
type globalFlags struct {
	themeName     string
	frameRate     int
	ramp          string
	directoryFile string
	exportDir     string
	logFile       string
	logLevel      string
	minLevel      float64
	maxLevel      float64
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	var (
		listThemes bool
		remoteURL  string
	)

	root := &cobra.Command{
		Use:   "rxbook",
		Short: "rxbook - SDR Receiver Spectrum Console",
		Long: `rxbook - SDR Receiver Spectrum Console

Browse a directory of remote receivers, tune in and watch a live spectrum
and waterfall in the terminal. Drag on the spectrum with the mouse or use
the arrow keys to move the tuning cursor.
Settings saved to ~/.config/rxbook/settings.json

Keys:
  [ / ]      Min level down / up     { / }     Max level down / up
  m f        Mode / filter           + - s S   Volume / squelch
  r          Record readouts (CSV)   p         PNG snapshot
  e          Frame CSV               Ctrl+E    Frame JSON
  Ctrl+S     Screenshot (HTML)       t         Next theme

Examples:
  rxbook --theme phosphor
  rxbook --directory ~/receivers.yaml --frame-rate 20
  rxbook --remote ws://pi.local:8073/ws
  rxbook snapshot --receiver 2 --frames 120 --csv
  rxbook serve --listen :8073 --receiver 1`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if listThemes {
				printThemes(cmd.OutOrStdout())
				return nil
			}
			return runConsole(cmd, g, remoteURL)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&g.themeName, "theme", "", "Color theme")
	pf.IntVar(&g.frameRate, "frame-rate", 0, "Target frames per second (1-60)")
	pf.StringVar(&g.ramp, "ramp", "", "Waterfall color ramp (hsl, linear)")
	pf.StringVar(&g.directoryFile, "directory", "", "YAML receiver directory file")
	pf.StringVar(&g.exportDir, "export-dir", "", "Directory for export files (default: current directory)")
	pf.StringVar(&g.logFile, "log-file", "", "Write logs to this file")
	pf.StringVar(&g.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.Float64Var(&g.minLevel, "min-level", 0, "Level in dBm mapped to the coolest color")
	pf.Float64Var(&g.maxLevel, "max-level", 0, "Level in dBm mapped to the hottest color")

	root.Flags().BoolVar(&listThemes, "list-themes", false, "List available themes")
	root.Flags().StringVar(&remoteURL, "remote", "", "Use frames from an rxbook stream (ws://host:port/ws)")

	root.AddCommand(newReceiversCmd(g))
	root.AddCommand(newSnapshotCmd(g))
	root.AddCommand(newServeCmd(g))
	root.AddCommand(newConfigCmd())
	return root
}

func printThemes(w io.Writer) {
	fmt.Fprintln(w, "\nAvailable Themes:")
	for _, t := range theme.GetInfo() {
		fmt.Fprintf(w, "  %-12s %-16s - %s\n", t.Key, t.Name, t.Description)
	}
	fmt.Fprintln(w)
}

// loadSettings loads the saved settings and applies flag overrides
func loadSettings(cmd *cobra.Command, g *globalFlags) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	applyOverrides(cmd, cfg, g)
	return cfg, nil
}

func applyOverrides(cmd *cobra.Command, cfg *config.Config, g *globalFlags) {
	if g.themeName != "" {
		cfg.Display.Theme = g.themeName
	}
	if g.frameRate != 0 {
		cfg.Display.FrameRate = g.frameRate
	}
	if g.ramp != "" {
		cfg.Display.ColorRamp = g.ramp
	}
	if g.directoryFile != "" {
		cfg.Directory.File = g.directoryFile
	}
	if g.exportDir != "" {
		absPath, err := filepath.Abs(g.exportDir)
		if err == nil {
			cfg.Export.Directory = absPath
		} else {
			cfg.Export.Directory = g.exportDir
		}
	}
	if g.logFile != "" {
		cfg.Log.File = g.logFile
	}
	if g.logLevel != "" {
		cfg.Log.Level = g.logLevel
	}
	if cmd.Flags().Changed("min-level") {
		cfg.Calibration.Min = g.minLevel
	}
	if cmd.Flags().Changed("max-level") {
		cfg.Calibration.Max = g.maxLevel
	}
	cfg.Validate()
}

// loadDirectory returns the configured receiver directory or the built-in one
func loadDirectory(cfg *config.Config) (*receiver.Directory, error) {
	if cfg.Directory.File == "" {
		return receiver.Default(), nil
	}
	return receiver.Load(cfg.Directory.File)
}

// newLogger builds the logger for a command. The console owns the terminal,
// so it logs only when a file is configured; headless commands fall back to fallback.
func newLogger(cfg *config.Config, fallback io.Writer) (*logrus.Logger, func(), error) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level: %w", err)
	}
	logger.SetLevel(level)

	if cfg.Log.File == "" {
		logger.SetOutput(fallback)
		return logger, func() {}, nil
	}

	f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	logger.SetOutput(f)
	return logger, func() { f.Close() }, nil
}

// banner prints the startup banner in the theme's primary color
func banner(w io.Writer, t *theme.Theme, subtitle string) {
	fmt.Fprint(w, theme.ANSIForeground(t.PrimaryBright))
	fmt.Fprintln(w, "  ╔════════════════════════════════════════════╗")
	fmt.Fprintln(w, "  ║   RXBOOK  ·  SDR RECEIVER SPECTRUM CONSOLE ║")
	fmt.Fprintln(w, "  ╚════════════════════════════════════════════╝")
	fmt.Fprint(w, "\033[0m")
	fmt.Fprintf(w, "  Theme: %s\n", t.Name)
	if subtitle != "" {
		fmt.Fprintf(w, "  %s\n", subtitle)
	}
	fmt.Fprintln(w)
}

func runConsole(cmd *cobra.Command, g *globalFlags, remoteURL string) error {
	cfg, err := loadSettings(cmd, g)
	if err != nil {
		return err
	}
	dir, err := loadDirectory(cfg)
	if err != nil {
		return err
	}
	logger, closeLog, err := newLogger(cfg, io.Discard)
	if err != nil {
		return err
	}
	defer closeLog()

	opts := console.Options{
		Config:    cfg,
		Directory: dir,
		Logger:    logger,
	}

	subtitle := fmt.Sprintf("%d receivers, %d online", len(dir.Receivers), dir.OnlineCount())
	if remoteURL != "" {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		client := stream.NewClient(remoteURL, 2*time.Second, logger)
		client.Start()
		defer client.Stop()

		source := stream.NewRemoteSource()
		go source.Pump(client, ctx.Done(), nil)

		opts.Source = source
		opts.Remote = client
		subtitle = "Streaming from " + remoteURL
	}

	banner(cmd.OutOrStdout(), theme.Get(cfg.Display.Theme), subtitle)

	model, err := console.New(opts)
	if err != nil {
		return err
	}

	p := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := p.Run(); err != nil {
		return err
	}

	if err := config.Save(model.Config()); err != nil {
		logger.WithError(err).Warn("settings not saved")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\n  Settings saved. 73!\n\n")
	return nil
}
