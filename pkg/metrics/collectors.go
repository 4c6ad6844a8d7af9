// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "reviewhub"

var (
	// WebhookEventsTotal counts inbound webhook deliveries by outcome
	WebhookEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_events_total",
			Help:      "Total number of webhook events received",
		},
		[]string{"provider", "kind", "result"},
	)

	// DedupHitsTotal counts merge-request events dropped as duplicates
	DedupHitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dedup_hits_total",
			Help:      "Total number of duplicate merge request events skipped",
		},
	)

	// DispatchTotal counts background work handed to the dispatcher
	DispatchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatch_total",
			Help:      "Total number of tasks dispatched",
		},
		[]string{"mode", "result"},
	)

	// NotifyTotal counts notification attempts per channel
	NotifyTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notify_total",
			Help:      "Total number of notification deliveries",
		},
		[]string{"channel", "result"},
	)

	// RosterSyncTotal counts team roster synchronizations
	RosterSyncTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "roster_sync_total",
			Help:      "Total number of team roster synchronizations",
		},
		[]string{"strategy", "result"},
	)
)

func registerReviewhub(registry *prometheus.Registry) {
	registry.MustRegister(
		WebhookEventsTotal,
		DedupHitsTotal,
		DispatchTotal,
		NotifyTotal,
		RosterSyncTotal,
	)
}

// Result 将 error 转换为 result 标签
func Result(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
