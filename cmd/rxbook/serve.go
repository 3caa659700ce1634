package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rxbook/rxbook-go/internal/config"
	"github.com/rxbook/rxbook-go/internal/export"
	"github.com/rxbook/rxbook-go/internal/receiver"
	"github.com/rxbook/rxbook-go/internal/render"
	"github.com/rxbook/rxbook-go/internal/session"
	"github.com/rxbook/rxbook-go/internal/spectrum"
	"github.com/rxbook/rxbook-go/internal/stream"
	"github.com/rxbook/rxbook-go/internal/telemetry"
	"github.com/rxbook/rxbook-go/internal/theme"
)

// statsEvery is the number of frames between stats broadcasts
const statsEvery = 30

type serveOptions struct {
	listen          string
	receiverID      int
	width           int
	spectrumHeight  int
	waterfallHeight int
	mqtt            bool
}

func newServeCmd(g *globalFlags) *cobra.Command {
	opts := serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a headless session and stream frames over websocket",
		Long: `Run a headless session and stream frames and readouts to websocket clients.
Clients may send tune, calibrate, select, deselect and snapshot commands.
A snapshot writes a PNG of the next painted frame to the export directory.
Readouts are also published to MQTT when enabled in settings or with --mqtt.

Examples:
  rxbook serve
  rxbook serve --listen :8073 --receiver 2
  rxbook serve --mqtt --log-level debug`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadSettings(cmd, g)
			if err != nil {
				return err
			}
			if opts.listen != "" {
				cfg.Stream.Listen = opts.listen
			}
			if opts.mqtt {
				cfg.MQTT.Enabled = true
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

			ln, err := net.Listen("tcp", cfg.Stream.Listen)
			if err != nil {
				return fmt.Errorf("listening on %s: %w", cfg.Stream.Listen, err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Fprintf(cmd.OutOrStdout(), "  Streaming on ws://%s%s\n", ln.Addr(), cfg.Stream.Path)
			return serve(ctx, ln, cfg, dir, opts, logger)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.listen, "listen", "", "Listen address (default from settings)")
	f.IntVar(&opts.receiverID, "receiver", 0, "Receiver to tune at startup (0 = wait for a client)")
	f.IntVar(&opts.width, "width", 800, "Surface width in pixels")
	f.IntVar(&opts.spectrumHeight, "spectrum-height", 200, "Spectrum height in pixels")
	f.IntVar(&opts.waterfallHeight, "waterfall-height", 150, "Waterfall height in pixels")
	f.BoolVar(&opts.mqtt, "mqtt", false, "Publish readouts to MQTT")
	return cmd
}

func telemetryConfig(cfg *config.Config) telemetry.Config {
	m := cfg.MQTT
	return telemetry.Config{
		Enabled:     m.Enabled,
		Host:        m.Host,
		Port:        m.Port,
		UseTLS:      m.UseTLS,
		Username:    m.Username,
		Password:    m.Password,
		TopicPrefix: m.TopicPrefix,
		Interval:    time.Duration(m.IntervalMS) * time.Millisecond,
	}
}

// loop keeps one session.Run goroutine alive while a receiver is selected
type loop struct {
	ctx    context.Context
	driver *session.Driver
	log    logrus.FieldLogger

	mu      sync.Mutex
	id      int
	running bool
	wg      sync.WaitGroup
}

// restart stops the current run and starts a fresh one, so a newly selected
// receiver never inherits the previous waterfall history
func (l *loop) restart() {
	l.driver.Stop()
	l.ensure()
}

// ensure starts the render loop unless one is already painting
func (l *loop) ensure() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.ctx.Err() != nil {
		return
	}
	if l.running && l.driver.Running() {
		return
	}
	l.id++
	id := l.id
	l.running = true
	l.wg.Add(1)

	go func() {
		defer l.wg.Done()
		err := session.Run(l.ctx, l.driver, 0)

		l.mu.Lock()
		if l.id == id {
			l.running = false
		}
		l.mu.Unlock()

		if err != nil && !errors.Is(err, context.Canceled) {
			l.log.WithError(err).Warn("render loop ended")
			return
		}
		l.log.Debug("render loop idle")
	}()
}

func (l *loop) wait() {
	l.wg.Wait()
}

// saveSnapshot writes the surfaces of ev to a PNG and tells the clients its name
func saveSnapshot(ev session.FrameEvent, dir string, hub *stream.Hub, log logrus.FieldLogger) {
	file, err := export.ExportPNG(ev.Surfaces, dir)
	if err != nil {
		log.WithError(err).Warn("snapshot not saved")
		return
	}
	log.WithField("file", file).Info("snapshot saved")
	hub.BroadcastSaved(file)
}

// serve runs the stream server on ln until ctx is done
func serve(ctx context.Context, ln net.Listener, cfg *config.Config, dir *receiver.Directory, opts serveOptions, logger logrus.FieldLogger) error {
	defer ln.Close()

	ramp, err := spectrum.ParseRamp(cfg.Display.ColorRamp)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	store := session.NewStore(dir, cfg.Calibration)
	store.Resize(opts.width, opts.spectrumHeight, opts.waterfallHeight)

	publisher, err := telemetry.NewPublisher(telemetryConfig(cfg), logger)
	if err != nil {
		return err
	}
	defer publisher.Close()

	var hub *stream.Hub
	var wantPNG atomic.Bool
	driver := session.NewDriver(store, session.DriverConfig{
		Renderer:  render.NewSpectrumRenderer(theme.Get(cfg.Display.Theme).Palette()),
		Mapper:    spectrum.NewColorMapper(ramp),
		FrameRate: cfg.Display.FrameRate,
		Logger:    logger,
		OnFrame: func(ev session.FrameEvent) {
			hub.Broadcast(ev)
			if ev.Seq%statsEvery == 0 {
				hub.BroadcastStats(ev.Stats)
			}
			publisher.OnFrame(ev)
			if wantPNG.Swap(false) {
				saveSnapshot(ev, cfg.Export.Directory, hub, logger)
			}
		},
	})

	lp := &loop{ctx: ctx, driver: driver, log: logger.WithField("component", "serve")}
	hub = stream.NewHub(store, stream.HubConfig{
		Logger:     logger,
		OnSelect:   lp.restart,
		OnDeselect: driver.Stop,
		OnSnapshot: func() { wantPNG.Store(true) },
	})

	if opts.receiverID != 0 {
		if err := store.SelectID(opts.receiverID); err != nil {
			return err
		}
		lp.ensure()
	}

	mux := http.NewServeMux()
	mux.Handle(cfg.Stream.Path, hub)
	server := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(ln)
	}()
	logger.WithField("addr", ln.Addr().String()).Info("stream server started")

	var serveErr error
	select {
	case <-ctx.Done():
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			serveErr = err
		}
	}

	cancel()
	hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("stream server shutdown")
	}
	lp.wait()
	logger.Info("stream server stopped")
	return serveErr
}
