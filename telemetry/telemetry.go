package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Counters for the relay's remote traffic and sync behaviour. Registered on
// the default registry and served by promhttp from main.
var (
	RemoteCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "slack_remote_calls_total",
		Help: "Slack API calls by method and outcome.",
	}, []string{"method", "outcome"})

	SyncTicks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relay_sync_ticks_total",
		Help: "Live sync ticks by kind (messages, chats).",
	}, []string{"kind"})

	StaleSyncDrops = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relay_stale_sync_drops_total",
		Help: "Sync results discarded because the focus changed mid-fetch.",
	})

	IngestEvents = promauto.NewCounter(prometheus.CounterOpts{
		Name: "attendance_ingest_events_total",
		Help: "Attendance events upserted from watched channels.",
	})
)

// Outcome maps an error to the prometheus label value.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
