package main

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rxbook/rxbook-go/internal/config"
	"github.com/rxbook/rxbook-go/internal/export"
	"github.com/rxbook/rxbook-go/internal/receiver"
	"github.com/rxbook/rxbook-go/internal/render"
	"github.com/rxbook/rxbook-go/internal/session"
	"github.com/rxbook/rxbook-go/internal/spectrum"
	"github.com/rxbook/rxbook-go/internal/theme"
)

// snapshotOptions controls a headless snapshot run
type snapshotOptions struct {
	receiverID      int
	frames          int
	width           int
	spectrumHeight  int
	waterfallHeight int
	tuneMHz         float64
	seed            int64
	labelSize       float64
	csv             bool
	json            bool
}

func newSnapshotCmd(g *globalFlags) *cobra.Command {
	opts := snapshotOptions{}

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Render a receiver headlessly and save the surfaces",
		Long: `Render a receiver headlessly for a number of frames and save the spectrum
and waterfall as a PNG, optionally with the last frame as CSV or JSON.

Examples:
  rxbook snapshot --receiver 1
  rxbook snapshot --receiver 4 --frames 300 --width 1024 --csv --json
  rxbook snapshot --receiver 1 --tune 145.700 --seed 42 --export-dir out`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadSettings(cmd, g)
			if err != nil {
				return err
			}
			dir, err := loadDirectory(cfg)
			if err != nil {
				return err
			}
			logger, closeLog, err := newLogger(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeLog()

			files, err := runSnapshot(cmd, cfg, dir, opts, logger)
			if err != nil {
				return err
			}
			for _, f := range files {
				fmt.Fprintf(cmd.OutOrStdout(), "  saved %s\n", export.Describe(f))
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVar(&opts.receiverID, "receiver", 1, "Receiver id")
	f.IntVar(&opts.frames, "frames", 60, "Frames to render before saving")
	f.IntVar(&opts.width, "width", 800, "Surface width in pixels")
	f.IntVar(&opts.spectrumHeight, "spectrum-height", 200, "Spectrum height in pixels")
	f.IntVar(&opts.waterfallHeight, "waterfall-height", 150, "Waterfall height in pixels")
	f.Float64Var(&opts.tuneMHz, "tune", 0, "Move the cursor to this frequency in MHz")
	f.Int64Var(&opts.seed, "seed", 0, "Noise seed (0 = random)")
	f.Float64Var(&opts.labelSize, "label-size", 12, "Label font size in points (0 = no labels)")
	f.BoolVar(&opts.csv, "csv", false, "Also save the last frame as CSV")
	f.BoolVar(&opts.json, "json", false, "Also save the last frame as JSON")
	return cmd
}

// runSnapshot renders opts.frames frames and returns the written files
func runSnapshot(cmd *cobra.Command, cfg *config.Config, dir *receiver.Directory, opts snapshotOptions, logger logrus.FieldLogger) ([]string, error) {
	if opts.frames < 1 {
		return nil, fmt.Errorf("frames must be at least 1")
	}
	ramp, err := spectrum.ParseRamp(cfg.Display.ColorRamp)
	if err != nil {
		return nil, err
	}

	store := session.NewStore(dir, cfg.Calibration)
	if err := store.SelectID(opts.receiverID); err != nil {
		return nil, err
	}
	store.Resize(opts.width, opts.spectrumHeight, opts.waterfallHeight)
	if opts.tuneMHz != 0 {
		if err := store.TuneTo(opts.tuneMHz); err != nil {
			return nil, err
		}
	}

	renderer := render.NewSpectrumRenderer(theme.Get(cfg.Display.Theme).Palette())
	if opts.labelSize > 0 {
		labeler, err := render.NewLabeler(opts.labelSize)
		if err != nil {
			return nil, err
		}
		defer labeler.Close()
		renderer.Labeler = labeler
	}

	var genOpts []spectrum.Option
	if opts.seed != 0 {
		genOpts = append(genOpts, spectrum.WithRand(rand.New(rand.NewSource(opts.seed))))
	}

	var last session.FrameEvent
	driver := session.NewDriver(store, session.DriverConfig{
		Source:    spectrum.NewGenerator(genOpts...),
		Renderer:  renderer,
		Mapper:    spectrum.NewColorMapper(ramp),
		FrameRate: cfg.Display.FrameRate,
		Logger:    logger,
		OnFrame:   func(ev session.FrameEvent) { last = ev },
	})

	painted, err := session.RunFrames(cmd.Context(), driver, opts.frames, time.Now())
	if err != nil {
		return nil, fmt.Errorf("rendered %d of %d frames: %w", painted, opts.frames, err)
	}

	files := make([]string, 0, 3)
	png, err := export.ExportPNG(last.Surfaces, cfg.Export.Directory)
	if err != nil {
		return nil, err
	}
	files = append(files, png)

	if opts.csv {
		f, err := export.ExportFrameCSV(last, cfg.Export.Directory)
		if err != nil {
			return files, err
		}
		files = append(files, f)
	}
	if opts.json {
		f, err := export.ExportFrameJSON(last, cfg.Export.Directory)
		if err != nil {
			return files, err
		}
		files = append(files, f)
	}
	return files, nil
}
