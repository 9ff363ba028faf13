package metrics

import (
	abuse "github.com/CodeAndHammer/ctfconsole/internal/abuse"
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	Commands       *prometheus.CounterVec
	Blocks         *prometheus.CounterVec
	FloodRejected  prometheus.Counter
	trackedClients prometheus.GaugeFunc
	blockedClients prometheus.GaugeFunc
}

// New registers the console collectors on reg. The gauges read the tracker
// at scrape time.
func New(reg prometheus.Registerer, tracker *abuse.Tracker) *Metrics {
	m := &Metrics{
		Commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ctfconsole",
			Name:      "commands_total",
			Help:      "Submitted commands by outcome.",
		}, []string{"outcome"}),
		Blocks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ctfconsole",
			Name:      "blocks_total",
			Help:      "Clients moved into the blocked set, by reason.",
		}, []string{"reason"}),
		FloodRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ctfconsole",
			Name:      "flood_rejected_total",
			Help:      "Requests refused by the server-wide flood guard.",
		}),
		trackedClients: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "ctfconsole",
			Name:      "tracked_clients",
			Help:      "Clients with request/invalid state in memory.",
		}, func() float64 { return float64(tracker.Stats().TrackedClients) }),
		blockedClients: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "ctfconsole",
			Name:      "blocked_clients",
			Help:      "Clients permanently blocked.",
		}, func() float64 { return float64(tracker.Stats().BlockedClients) }),
	}
	reg.MustRegister(m.Commands, m.Blocks, m.FloodRejected, m.trackedClients, m.blockedClients)
	return m
}
