package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"trip-dashboard/internal/playback"
)

type Collector struct {
	reg *prometheus.Registry

	TripLoads    *prometheus.CounterVec // source, result labels
	LoadDuration prometheus.Histogram
	TripSamples  prometheus.Gauge
	TripPoints   prometheus.Gauge

	Ticks        prometheus.Counter
	Frames       *prometheus.CounterVec // reason label: tick|control|data
	CurrentIndex prometheus.Gauge
	Playing      prometheus.Gauge
	PlayerState  *prometheus.GaugeVec // one-hot over states
	Speed        prometheus.Gauge
	TickPeriod   prometheus.Gauge // seconds

	StreamClients prometheus.Gauge

	NATSPublished   prometheus.Counter
	NATSPublishErrs prometheus.Counter
	NATSConnected   prometheus.Gauge
	PublishDuration prometheus.Histogram
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		TripLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_trip_loads_total",
			Help: "Trip load attempts by source kind and result.",
		}, []string{"source", "result"}),
		LoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dashboard_trip_load_duration_seconds",
			Help:    "Duration of trip loads.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
		TripSamples: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dashboard_trip_samples",
			Help: "Number of samples in the loaded trip.",
		}),
		TripPoints: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dashboard_trip_positions",
			Help: "Number of samples with a usable position.",
		}),
		Ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dashboard_playback_ticks_total",
			Help: "Total timer ticks that advanced the cursor.",
		}),
		Frames: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_playback_frames_total",
			Help: "Frames emitted by the player.",
		}, []string{"reason"}),
		CurrentIndex: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dashboard_playback_index",
			Help: "Current cursor index.",
		}),
		Playing: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dashboard_playback_playing",
			Help: "1 if the play flag is set, 0 otherwise.",
		}),
		PlayerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "dashboard_playback_state",
			Help: "1 for the player's current state.",
		}, []string{"state"}),
		Speed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dashboard_playback_speed",
			Help: "Current speed multiplier.",
		}),
		TickPeriod: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dashboard_playback_tick_period_seconds",
			Help: "Tick period derived from the speed multiplier.",
		}),
		StreamClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dashboard_stream_clients",
			Help: "Connected server-sent event clients.",
		}),
		NATSPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dashboard_nats_published_total",
			Help: "Total NATS messages published.",
		}),
		NATSPublishErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dashboard_nats_publish_errors_total",
			Help: "Total NATS publish errors.",
		}),
		NATSConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dashboard_nats_connected",
			Help: "1 if NATS connection is established, 0 otherwise.",
		}),
		PublishDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dashboard_publish_duration_seconds",
			Help:    "Duration to marshal and publish a NATS message.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 15),
		}),
	}

	reg.MustRegister(
		c.TripLoads, c.LoadDuration, c.TripSamples, c.TripPoints,
		c.Ticks, c.Frames, c.CurrentIndex, c.Playing, c.PlayerState,
		c.Speed, c.TickPeriod, c.StreamClients,
		c.NATSPublished, c.NATSPublishErrs, c.NATSConnected, c.PublishDuration,
	)

	c.Speed.Set(float64(playback.DefaultSpeed))
	c.TickPeriod.Set(playback.Period(playback.DefaultSpeed).Seconds())
	c.setState(playback.StateEmpty)

	return c
}

// LoadObserve records a trip load.
func (c *Collector) LoadObserve(source string, d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.TripLoads.WithLabelValues(source, result).Inc()
	c.LoadDuration.Observe(d.Seconds())
}

// ObserveFrame updates playback gauges from a player frame.
func (c *Collector) ObserveFrame(f playback.Frame) {
	if f.Reason != "" {
		c.Frames.WithLabelValues(string(f.Reason)).Inc()
	}
	if f.Reason == playback.ReasonTick {
		c.Ticks.Inc()
	}
	c.CurrentIndex.Set(float64(f.Index))
	c.TripPoints.Set(float64(f.Total))
	if f.Playing {
		c.Playing.Set(1)
	} else {
		c.Playing.Set(0)
	}
	c.Speed.Set(float64(f.Speed))
	c.TickPeriod.Set((time.Duration(f.PeriodMs) * time.Millisecond).Seconds())
	c.setState(f.State)
}

func (c *Collector) StreamOpened() { c.StreamClients.Inc() }
func (c *Collector) StreamClosed() { c.StreamClients.Dec() }

func (c *Collector) setState(s playback.State) {
	for _, st := range []playback.State{playback.StateEmpty, playback.StateIdle, playback.StatePlaying, playback.StateFinished} {
		v := 0.0
		if st == s {
			v = 1
		}
		c.PlayerState.WithLabelValues(string(st)).Set(v)
	}
}

func (c *Collector) Handler() http.Handler { return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{}) }

// Serve starts an HTTP server exposing /metrics on the given address.
func (c *Collector) Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server error")
		}
	}()
	log.Info().Str("addr", addr).Msg("metrics listening")
	return srv
}
