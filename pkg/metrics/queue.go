package metrics

import (
	"github.com/go-arcade/reviewhub/pkg/log"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	queueSizeDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "queue", "size"),
		"Number of tasks in the queue by state",
		[]string{"queue", "state"}, nil,
	)
	queueProcessedDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "queue", "processed_today"),
		"Number of tasks processed in the queue today",
		[]string{"queue"}, nil,
	)
)

// QueueCollector reads asynq queue state on scrape.
type QueueCollector struct {
	inspector *asynq.Inspector
	queues    []string
}

func NewQueueCollector(inspector *asynq.Inspector, queues ...string) *QueueCollector {
	return &QueueCollector{inspector: inspector, queues: queues}
}

func (c *QueueCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- queueSizeDesc
	ch <- queueProcessedDesc
}

func (c *QueueCollector) Collect(ch chan<- prometheus.Metric) {
	for _, q := range c.queues {
		info, err := c.inspector.GetQueueInfo(q)
		if err != nil {
			log.Debugw("get queue info failed", "queue", q, "error", err)
			continue
		}
		states := map[string]int{
			"pending":   info.Pending,
			"active":    info.Active,
			"scheduled": info.Scheduled,
			"retry":     info.Retry,
			"archived":  info.Archived,
		}
		for state, n := range states {
			ch <- prometheus.MustNewConstMetric(queueSizeDesc, prometheus.GaugeValue, float64(n), q, state)
		}
		ch <- prometheus.MustNewConstMetric(queueProcessedDesc, prometheus.GaugeValue, float64(info.Processed), q)
	}
}
