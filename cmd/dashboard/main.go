package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"trip-dashboard/internal/config"
	"trip-dashboard/internal/dashboard"
	"trip-dashboard/internal/loader"
	"trip-dashboard/internal/metrics"
	"trip-dashboard/internal/playback"
	"trip-dashboard/internal/publisher"
	"trip-dashboard/internal/trip"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	app := &cli.App{
		Name:  "dashboard",
		Usage: "replay a recorded vehicle trip on a map",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "env-file",
				Usage: "extra .env files loaded before .env",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the dashboard web server",
				Action: serve,
			},
			{
				Name:   "inspect",
				Usage:  "load the configured trip and print its summary",
				Action: inspect,
			},
		},
		DefaultCommand: "serve",
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Send()
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.StringSlice("env-file")...)
	if err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}
	zerolog.SetGlobalLevel(cfg.LogLevel)
	return cfg, nil
}

func serve(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	// Root context with cancellation on SIGINT/SIGTERM
	ctx, cancel := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	mcol := metrics.NewCollector()
	if cfg.MetricsAddr != "" {
		msrv := mcol.Serve(cfg.MetricsAddr)
		defer shutdown(msrv)
	}

	player := playback.NewPlayer()
	panel := playback.NewPanel(player.Apply)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return player.Run(gctx) })

	frames, unsubscribe := player.Subscribe()
	defer unsubscribe()
	g.Go(func() error {
		observeFrames(gctx, frames, mcol)
		return nil
	})

	if cfg.NATSURL != "" {
		pub, err := publisher.NewNATSPublisher(cfg.NATSURL, cfg.NATSSubjectPrefix, cfg.LogNATSSubjects, &pubMetrics{c: mcol})
		if err != nil {
			return fmt.Errorf("nats error: %w", err)
		}
		defer pub.Close()
		natsFrames, natsCancel := player.Subscribe()
		defer natsCancel()
		tripID := cfg.TripID
		if tripID == "" {
			tripID = "default"
		}
		g.Go(func() error {
			pub.Forward(gctx, tripID, natsFrames)
			return nil
		})
	}

	// Fire-once load; failures leave the player empty.
	g.Go(func() error {
		t, _ := loadTrip(gctx, cfg, mcol)
		player.SetTrip(t)
		return nil
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           dashboard.NewServer(cfg, panel, player, mcol),
		ReadHeaderTimeout: 10 * time.Second,
		// streams end with the process context
		BaseContext: func(net.Listener) context.Context { return gctx },
	}
	g.Go(func() error {
		log.Info().Str("addr", cfg.ListenAddr).Msg("starting dashboard")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdown(srv)
		return nil
	})

	err = g.Wait()
	log.Info().Msg("shutdown complete")
	return err
}

func inspect(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	t, err := loadTrip(c.Context, cfg, nil)
	if err != nil {
		return err
	}
	s := trip.Summarize(t)
	if name := loader.TripName(cfg.TripSource, cfg.TripID); name != "" {
		fmt.Fprintf(c.App.Writer, "trip:      %s\n", name)
	}
	fmt.Fprintf(c.App.Writer, "samples:   %d\n", s.Samples)
	fmt.Fprintf(c.App.Writer, "positions: %d\n", s.Positions)
	fmt.Fprintf(c.App.Writer, "distance:  %.1f km\n", s.DistanceMeters/1000)
	if s.Duration > 0 {
		fmt.Fprintf(c.App.Writer, "duration:  %s\n", s.Duration)
	}
	if s.Bounds != nil {
		fmt.Fprintf(c.App.Writer, "bounds:    %.5f,%.5f %.5f,%.5f\n", s.Bounds.MinLat, s.Bounds.MinLng, s.Bounds.MaxLat, s.Bounds.MaxLng)
	}
	return nil
}

func loadTrip(ctx context.Context, cfg *config.Config, mcol *metrics.Collector) (trip.Trip, error) {
	l := &loader.Loader{
		Source:  cfg.TripSource,
		TripID:  cfg.TripID,
		Timeout: cfg.TripLoadTimeout,
	}
	if mcol != nil {
		l.Metrics = mcol
	}
	t, err := l.Load(ctx)
	if mcol != nil {
		mcol.TripSamples.Set(float64(len(t)))
	}
	return t, err
}

func observeFrames(ctx context.Context, frames <-chan playback.Frame, mcol *metrics.Collector) {
	for {
		select {
		case <-ctx.Done():
			return
		case f, ok := <-frames:
			if !ok {
				return
			}
			mcol.ObserveFrame(f)
		}
	}
}

func shutdown(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}

type pubMetrics struct{ c *metrics.Collector }

func (p *pubMetrics) NATSPublishedInc()              { p.c.NATSPublished.Inc() }
func (p *pubMetrics) NATSPublishErrInc()             { p.c.NATSPublishErrs.Inc() }
func (p *pubMetrics) PublishObserve(d time.Duration) { p.c.PublishDuration.Observe(d.Seconds()) }
func (p *pubMetrics) NATSSetConnected(b bool) {
	if b {
		p.c.NATSConnected.Set(1)
	} else {
		p.c.NATSConnected.Set(0)
	}
}
