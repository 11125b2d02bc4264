package replay

// MetricsRecorder is an optional collaborator notified of drain-protocol
// events. It is deliberately tiny and domain-agnostic: the replay package
// has no opinion on where metrics go (hashicorp/go-metrics, Prometheus
// directly, or nowhere at all via noopMetrics). cmd/replaydemo wires a
// concrete implementation backed by github.com/hashicorp/go-metrics.
type MetricsRecorder interface {
	ValueBuffered(size int64)
	ValueDelivered(subscriberID uint64)
	SubscriptionOpened(subscriberID uint64)
	SubscriptionCancelled(subscriberID uint64)
	Terminated(err error)
}

type noopMetrics struct{}

func (noopMetrics) ValueBuffered(int64)             {}
func (noopMetrics) ValueDelivered(uint64)           {}
func (noopMetrics) SubscriptionOpened(uint64)       {}
func (noopMetrics) SubscriptionCancelled(uint64)    {}
func (noopMetrics) Terminated(error)                {}
