// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Retro Display Authors

package vncserver

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus counters for the server's protocol activity.
type Metrics struct {
	MessagesReceived *prometheus.CounterVec
	FramesSent       *prometheus.CounterVec
	BytesWritten     prometheus.Counter
	InputEvents      *prometheus.CounterVec
	ResyncDiscards   prometheus.Counter
	ClientsRejected  prometheus.Counter
}

// NewMetrics registers the server's counters with the given registerer
// under the given namespace and returns the collector.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		MessagesReceived: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_received_total",
			Help:      "Client messages received, by message type.",
		}, []string{"type"}),
		FramesSent: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_sent_total",
			Help:      "Framebuffer updates sent, by encoding.",
		}, []string{"encoding"}),
		BytesWritten: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_written_total",
			Help:      "Bytes written to the client connection.",
		}),
		InputEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "input_events_total",
			Help:      "Input events forwarded to the event sink, by kind.",
		}, []string{"kind"}),
		ResyncDiscards: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resync_discards_total",
			Help:      "Inbound buffers discarded to resynchronize the message stream.",
		}),
		ClientsRejected: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "clients_rejected_total",
			Help:      "Client connections rejected during the handshake.",
		}),
	}
}

func (m *Metrics) messageReceived(msgType string) {
	if m == nil {
		return
	}
	m.MessagesReceived.WithLabelValues(msgType).Inc()
}

func (m *Metrics) frameSent(encoding string, bytes int) {
	if m == nil {
		return
	}
	m.FramesSent.WithLabelValues(encoding).Inc()
	m.BytesWritten.Add(float64(bytes))
}

func (m *Metrics) inputEvent(kind string) {
	if m == nil {
		return
	}
	m.InputEvents.WithLabelValues(kind).Inc()
}

func (m *Metrics) resyncDiscard() {
	if m == nil {
		return
	}
	m.ResyncDiscards.Inc()
}

func (m *Metrics) clientRejected() {
	if m == nil {
		return
	}
	m.ClientsRejected.Inc()
}
