package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"trip-dashboard/internal/playback"
)

type NATSPublisher struct {
	nc          *nats.Conn
	prefix      string
	logSubjects bool
	metrics     PublisherMetrics
}

type PublisherMetrics interface {
	NATSPublishedInc()
	NATSPublishErrInc()
	PublishObserve(d time.Duration)
	NATSSetConnected(connected bool)
}

func NewNATSPublisher(url, prefix string, logSubjects bool, m PublisherMetrics) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("trip-dashboard"),
		nats.DisconnectHandler(func(_ *nats.Conn) {
			if m != nil {
				m.NATSSetConnected(false)
			}
			log.Warn().Msg("nats disconnected")
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			if m != nil {
				m.NATSSetConnected(true)
			}
			log.Info().Msg("nats reconnected")
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			if m != nil {
				m.NATSSetConnected(false)
			}
			log.Info().Msg("nats closed")
		}),
	)
	if err != nil {
		return nil, err
	}
	if m != nil {
		m.NATSSetConnected(true)
	}
	return &NATSPublisher{nc: nc, prefix: subjectToken(prefix), logSubjects: logSubjects, metrics: m}, nil
}

func (p *NATSPublisher) Close() {
	if p.nc != nil {
		p.nc.Drain()
		p.nc.Close()
	}
}

type PositionMessage struct {
	TripID    string         `json:"tripId"`
	Seq       uint64         `json:"seq"`
	Timestamp time.Time      `json:"timestamp"`
	Index     int            `json:"index"`
	Total     int            `json:"total"`
	Lat       float64        `json:"lat"`
	Lng       float64        `json:"lng"`
	Bearing   float64        `json:"bearing"`
	Progress  float64        `json:"progress"`
	Speed     float64        `json:"speed"`
	State     playback.State `json:"state"`
}

// NewPositionMessage flattens a frame. ok is false for frames without a
// position.
func NewPositionMessage(tripID string, f playback.Frame) (PositionMessage, bool) {
	if f.Position == nil {
		return PositionMessage{}, false
	}
	return PositionMessage{
		TripID:    tripID,
		Seq:       f.Seq,
		Timestamp: f.At,
		Index:     f.Index,
		Total:     f.Total,
		Lat:       f.Position.Lat,
		Lng:       f.Position.Lng,
		Bearing:   f.Bearing,
		Progress:  f.Progress,
		Speed:     float64(f.Speed),
		State:     f.State,
	}, true
}

// Subject returns "<prefix>.<trip>.position".
func (p *NATSPublisher) Subject(tripID string) string {
	return Subject(p.prefix, tripID)
}

func Subject(prefix, tripID string) string {
	return fmt.Sprintf("%s.%s.position", subjectToken(prefix), subjectToken(tripID))
}

func (p *NATSPublisher) PublishPosition(tripID string, msg PositionMessage) error {
	subject := p.Subject(tripID)
	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	if p.logSubjects {
		log.Debug().Str("subject", subject).Msg("nats publish")
	}
	start := time.Now()
	err = p.nc.Publish(subject, b)
	if p.metrics != nil {
		p.metrics.PublishObserve(time.Since(start))
		if err != nil {
			p.metrics.NATSPublishErrInc()
		} else {
			p.metrics.NATSPublishedInc()
		}
	}
	return err
}

// Forward publishes every positioned frame until frames closes or ctx ends.
func (p *NATSPublisher) Forward(ctx context.Context, tripID string, frames <-chan playback.Frame) {
	for {
		select {
		case <-ctx.Done():
			return
		case f, ok := <-frames:
			if !ok {
				return
			}
			msg, ok := NewPositionMessage(tripID, f)
			if !ok {
				continue
			}
			if err := p.PublishPosition(tripID, msg); err != nil {
				log.Error().Err(err).Str("trip", tripID).Msg("publish error")
			}
		}
	}
}

func subjectToken(s string) string {
	s = strings.TrimSpace(s)
	// NATS token cannot contain spaces, '>', '*', or trailing '.'
	repl := strings.NewReplacer(" ", "_", ".", "_", ">", "_", "*", "_", "/", "_", "\t", "_")
	s = repl.Replace(s)
	if s == "" {
		s = "_"
	}
	return s
}
