package gaming

import (
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "gamelobby"

type Metrics struct {
	RoomsActive         prometheus.Gauge
	RoomsCreated        prometheus.Counter
	ReservationsPending prometheus.Gauge
	ClientsConnected    prometheus.Gauge
	GamesFinished       *prometheus.CounterVec
}

// NewMetrics registers the lobby metrics, registerer may be nil.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		RoomsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "rooms_active",
			Help:      "Rooms currently indexed by the manager.",
		}),
		RoomsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "rooms_created_total",
			Help:      "Rooms created since start.",
		}),
		ReservationsPending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "reservations_pending",
			Help:      "Reservations not redeemed or freed yet.",
		}),
		ClientsConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "clients_connected",
			Help:      "Connected lobby clients.",
		}),
		GamesFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "games_finished_total",
			Help:      "Finished games by game type.",
		}, []string{"game_type"}),
	}

	if registerer != nil {
		registerer.MustRegister(
			m.RoomsActive,
			m.RoomsCreated,
			m.ReservationsPending,
			m.ClientsConnected,
			m.GamesFinished,
		)
	}

	return m
}
