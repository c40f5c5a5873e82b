package monitor

import "github.com/prometheus/client_golang/prometheus"

// Metrics is the process-wide instrumentation surface. A nil *Metrics is a
// no-op, so tests can wire components without a registry.
type Metrics struct {
	ActiveRooms      prometheus.Gauge
	ConnectedClients prometheus.Gauge
	MessagesReceived prometheus.Counter
	MovesTotal       prometheus.Counter
	GamesFinished    prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	m := &Metrics{
		ActiveRooms: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_rooms",
			Help:      "Number of live game rooms",
		}),
		ConnectedClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connected_clients",
			Help:      "Number of open game connections",
		}),
		MessagesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_received_total",
			Help:      "Total inbound messages decoded",
		}),
		MovesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "moves_total",
			Help:      "Total accepted stone placements",
		}),
		GamesFinished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_finished_total",
			Help:      "Total games that reached a terminal state",
		}),
	}

	reg.MustRegister(
		m.ActiveRooms,
		m.ConnectedClients,
		m.MessagesReceived,
		m.MovesTotal,
		m.GamesFinished,
	)

	return m
}

func (that *Metrics) RoomOpened() {
	if that != nil {
		that.ActiveRooms.Inc()
	}
}

func (that *Metrics) RoomClosed() {
	if that != nil {
		that.ActiveRooms.Dec()
	}
}

func (that *Metrics) ClientConnected() {
	if that != nil {
		that.ConnectedClients.Inc()
	}
}

func (that *Metrics) ClientDisconnected() {
	if that != nil {
		that.ConnectedClients.Dec()
	}
}

func (that *Metrics) MessageReceived() {
	if that != nil {
		that.MessagesReceived.Inc()
	}
}

func (that *Metrics) MoveApplied() {
	if that != nil {
		that.MovesTotal.Inc()
	}
}

func (that *Metrics) GameFinished() {
	if that != nil {
		that.GamesFinished.Inc()
	}
}
