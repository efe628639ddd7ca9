package telemetry

import (
	"time"

	"github.com/Versifine/stride/internal/event"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics live on a private registry so tests and multiple controllers never collide on the
// default one. Labels are limited to event names, which are a fixed set.
type Metrics struct {
	reg *prometheus.Registry

	tickDuration     prometheus.Histogram
	speed            prometheus.Gauge
	verticalVelocity prometheus.Gauge
	grounded         prometheus.Gauge
	pitch            prometheus.Gauge
	yaw              prometheus.Gauge
	footsteps        prometheus.Counter
	landings         prometheus.Counter
	events           *prometheus.CounterVec
	wsClients        prometheus.Gauge
	wsMessages       prometheus.Counter
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		reg: reg,
		tickDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "stride_tick_duration_seconds",
			Help:    "Time spent stepping the controllers for one frame",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025},
		}),
		speed: f.NewGauge(prometheus.GaugeOpts{
			Name: "stride_speed",
			Help: "Smoothed horizontal speed in units per second",
		}),
		verticalVelocity: f.NewGauge(prometheus.GaugeOpts{
			Name: "stride_vertical_velocity",
			Help: "Vertical velocity in units per second",
		}),
		grounded: f.NewGauge(prometheus.GaugeOpts{
			Name: "stride_grounded",
			Help: "1 while the ground probe hits",
		}),
		pitch: f.NewGauge(prometheus.GaugeOpts{
			Name: "stride_pitch_degrees",
			Help: "Camera pitch",
		}),
		yaw: f.NewGauge(prometheus.GaugeOpts{
			Name: "stride_yaw_degrees",
			Help: "Body heading",
		}),
		footsteps: f.NewCounter(prometheus.CounterOpts{
			Name: "stride_footsteps_total",
			Help: "Footstep cues emitted",
		}),
		landings: f.NewCounter(prometheus.CounterOpts{
			Name: "stride_landings_total",
			Help: "Airborne to grounded transitions",
		}),
		events: f.NewCounterVec(prometheus.CounterOpts{
			Name: "stride_events_total",
			Help: "Events published on the bus",
		}, []string{"event"}),
		wsClients: f.NewGauge(prometheus.GaugeOpts{
			Name: "stride_websocket_clients",
			Help: "Connected websocket clients",
		}),
		wsMessages: f.NewCounter(prometheus.CounterOpts{
			Name: "stride_websocket_messages_total",
			Help: "Messages broadcast to websocket clients",
		}),
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.reg
}

func (m *Metrics) Observe(f Frame, tick time.Duration) {
	m.tickDuration.Observe(tick.Seconds())
	m.speed.Set(f.Speed)
	m.verticalVelocity.Set(f.VerticalVelocity)
	if f.Grounded {
		m.grounded.Set(1)
	} else {
		m.grounded.Set(0)
	}
	m.pitch.Set(f.Pitch)
	m.yaw.Set(f.Yaw)
}

func (m *Metrics) CountEvent(name string) {
	m.events.WithLabelValues(name).Inc()
	switch name {
	case event.EventFootfall:
		m.footsteps.Inc()
	case event.EventLanded:
		m.landings.Inc()
	}
}
