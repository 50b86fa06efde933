package metrics

import (
	"strconv"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// LedgerMetrics bundles the collectors exercised by every native/* component
// (C1-C9). It follows the same lazily-initialised singleton shape as the
// teacher's PotsoMetrics registry.
type LedgerMetrics struct {
	visitsRecorded       *prometheus.CounterVec
	visitsDropped        *prometheus.CounterVec
	paymentsRecorded     *prometheus.CounterVec
	synopsisPercentSum   prometheus.Gauge
	synopsisPublishers   prometheus.Gauge
	ballotVotesSum       *prometheus.GaugeVec
	orchestratorQueued   prometheus.Gauge
	orchestratorInflight prometheus.Gauge
	saveFailures         *prometheus.CounterVec
	registryRefreshOK    prometheus.Counter
	registryRefreshFail  *prometheus.CounterVec
	registryRetryDelay   prometheus.Gauge
}

var (
	ledgerOnce     sync.Once
	ledgerRegistry *LedgerMetrics
)

// Ledger returns the process-wide metrics registry.
func Ledger() *LedgerMetrics {
	ledgerOnce.Do(func() {
		ledgerRegistry = &LedgerMetrics{
			visitsRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "attn",
				Subsystem: "attention",
				Name:      "visits_recorded_total",
				Help:      "Count of visit samples accepted by the attention tracker.",
			}, []string{"publisher"}),
			visitsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "attn",
				Subsystem: "attention",
				Name:      "visits_dropped_total",
				Help:      "Count of visit samples dropped, segmented by reason.",
			}, []string{"reason"}),
			paymentsRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "attn",
				Subsystem: "attention",
				Name:      "payments_recorded_total",
				Help:      "Count of contributions appended to a publisher record.",
			}, []string{"category"}),
			synopsisPercentSum: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: "attn",
				Subsystem: "synopsis",
				Name:      "percent_sum",
				Help:      "Sum of assigned percents across the working set after the last normalize() run.",
			}),
			synopsisPublishers: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: "attn",
				Subsystem: "synopsis",
				Name:      "eligible_publishers",
				Help:      "Number of publishers eligible for the current synopsis.",
			}),
			ballotVotesSum: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Namespace: "attn",
				Subsystem: "ballot",
				Name:      "votes_sum",
				Help:      "Sum of votes allocated for the last reconcile, labeled by requested budget.",
			}, []string{"budget"}),
			orchestratorQueued: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: "attn",
				Subsystem: "orchestrator",
				Name:      "queued_operations",
				Help:      "Operations currently queued behind an in-flight per-id update cycle.",
			}),
			orchestratorInflight: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: "attn",
				Subsystem: "orchestrator",
				Name:      "inflight_cycles",
				Help:      "Number of publisher ids with an outstanding load-modify-store cycle.",
			}),
			saveFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "attn",
				Subsystem: "orchestrator",
				Name:      "save_failures_total",
				Help:      "Count of SavePublisherInfo failures, logged and otherwise ignored per spec.",
			}, []string{"publisher"}),
			registryRefreshOK: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "attn",
				Subsystem: "registry",
				Name:      "refresh_success_total",
				Help:      "Count of successful verified/excluded registry refreshes.",
			}),
			registryRefreshFail: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "attn",
				Subsystem: "registry",
				Name:      "refresh_failure_total",
				Help:      "Count of failed registry refresh attempts, labeled by cause.",
			}, []string{"reason"}),
			registryRetryDelay: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: "attn",
				Subsystem: "registry",
				Name:      "retry_delay_seconds",
				Help:      "Delay in seconds chosen for the most recent refresh re-arm.",
			}),
		}
		prometheus.MustRegister(
			ledgerRegistry.visitsRecorded,
			ledgerRegistry.visitsDropped,
			ledgerRegistry.paymentsRecorded,
			ledgerRegistry.synopsisPercentSum,
			ledgerRegistry.synopsisPublishers,
			ledgerRegistry.ballotVotesSum,
			ledgerRegistry.orchestratorQueued,
			ledgerRegistry.orchestratorInflight,
			ledgerRegistry.saveFailures,
			ledgerRegistry.registryRefreshOK,
			ledgerRegistry.registryRefreshFail,
			ledgerRegistry.registryRetryDelay,
		)
	})
	return ledgerRegistry
}

func (m *LedgerMetrics) IncVisitRecorded(publisher string) {
	if m == nil {
		return
	}
	m.visitsRecorded.WithLabelValues(label(publisher)).Inc()
}

func (m *LedgerMetrics) IncVisitDropped(reason string) {
	if m == nil {
		return
	}
	m.visitsDropped.WithLabelValues(label(reason)).Inc()
}

func (m *LedgerMetrics) IncPaymentRecorded(category string) {
	if m == nil {
		return
	}
	m.paymentsRecorded.WithLabelValues(label(category)).Inc()
}

func (m *LedgerMetrics) SetSynopsis(percentSum int, eligible int) {
	if m == nil {
		return
	}
	m.synopsisPercentSum.Set(float64(percentSum))
	m.synopsisPublishers.Set(float64(eligible))
}

func (m *LedgerMetrics) SetBallotVotesSum(budget uint32, sum uint32) {
	if m == nil {
		return
	}
	m.ballotVotesSum.WithLabelValues(label(strconv.Itoa(int(budget)))).Set(float64(sum))
}

func (m *LedgerMetrics) SetOrchestratorDepth(queued, inflight int) {
	if m == nil {
		return
	}
	m.orchestratorQueued.Set(float64(queued))
	m.orchestratorInflight.Set(float64(inflight))
}

func (m *LedgerMetrics) IncSaveFailure(publisher string) {
	if m == nil {
		return
	}
	m.saveFailures.WithLabelValues(label(publisher)).Inc()
}

func (m *LedgerMetrics) IncRegistryRefreshOK() {
	if m == nil {
		return
	}
	m.registryRefreshOK.Inc()
}

func (m *LedgerMetrics) IncRegistryRefreshFailure(reason string) {
	if m == nil {
		return
	}
	m.registryRefreshFail.WithLabelValues(label(reason)).Inc()
}

func (m *LedgerMetrics) SetRetryDelay(seconds float64) {
	if m == nil {
		return
	}
	m.registryRetryDelay.Set(seconds)
}

func label(v string) string {
	trimmed := strings.TrimSpace(v)
	if trimmed == "" {
		return "unknown"
	}
	return trimmed
}

