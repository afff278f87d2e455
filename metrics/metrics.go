package metrics

import "github.com/prometheus/client_golang/prometheus"

type Observer interface {
	Observe(val float64, labels ...string)

	// for now we will tightly couple to the prometheus collector type
	// the go otel metrics sdk also has a prometheus adapter that implements this interface.
	prometheus.Collector
}

type Metrics struct {
	// MessagesCount counts chat messages received.
	MessagesCount Observer
	// CommandCount counts command invocations, labeled by command name.
	CommandCount Observer
	// UpstreamLatency observes third-party API latency in seconds, labeled by
	// provider and operation.
	UpstreamLatency Observer
	// Guilds is the number of guilds the bot is in.
	Guilds Observer
}

func (m Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.MessagesCount,
		m.CommandCount,
		m.UpstreamLatency,
		m.Guilds,
	}
}
