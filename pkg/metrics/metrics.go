// Package metrics provides Prometheus metrics for grading sessions.
//
// The toolkit is a short-lived interactive process, so metrics are kept on
// a private registry and rendered as an end-of-run summary instead of
// being scraped over HTTP.
package metrics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for a grading session.
type Manager struct {
	namespace string
	subsystem string
	enabled   bool
	registry  *prometheus.Registry

	// Grading metrics
	scoresClassified prometheus.Counter
	studentsSkipped  prometheus.Counter
	gradesUploaded   prometheus.Counter

	// Remote call metrics
	remoteCalls    *prometheus.CounterVec
	remoteFailures *prometheus.CounterVec

	// Operator interaction metrics
	promptRejections prometheus.Counter

	// Side pipeline metrics
	extensionsAssigned prometheus.Counter
	revisionsAssigned  prometheus.Counter
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager()
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "mastery",
		subsystem: "toolkit",
		enabled:   true,
		registry:  prometheus.NewRegistry(),
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.scoresClassified = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scores_classified_total",
		Help:      "Total number of raw scores classified against a rubric",
	})
	m.studentsSkipped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "students_skipped_total",
		Help:      "Total number of students skipped because their score had no matching rating",
	})
	m.gradesUploaded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "grades_uploaded_total",
		Help:      "Total number of grades included in bulk uploads",
	})
	m.remoteCalls = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "remote_calls_total",
		Help:      "Total number of gradebook service calls by operation",
	}, []string{"operation"})
	m.remoteFailures = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "remote_failures_total",
		Help:      "Total number of failed gradebook service calls by operation",
	}, []string{"operation"})
	m.promptRejections = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "prompt_rejections_total",
		Help:      "Total number of operator inputs rejected during threshold negotiation",
	})
	m.extensionsAssigned = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "extensions_assigned_total",
		Help:      "Total number of quiz time extensions assigned",
	})
	m.revisionsAssigned = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "revisions_assigned_total",
		Help:      "Total number of students assigned a revision opportunity",
	})
}

// Summary gathers the session counters and renders the non-zero ones.
func (m *Manager) Summary() string {
	families, err := m.registry.Gather()
	if err != nil {
		return ""
	}

	var lines []string
	for _, fam := range families {
		for _, metric := range fam.GetMetric() {
			value := metric.GetCounter().GetValue()
			if value == 0 {
				continue
			}
			name := fam.GetName()
			for _, lp := range metric.GetLabel() {
				name += "{" + lp.GetName() + "=" + lp.GetValue() + "}"
			}
			lines = append(lines, fmt.Sprintf("%s %g", name, value))
		}
	}
	sort.Strings(lines)
	return strings.Join(lines, "\n")
}

// RecordScoreClassified increments the classified score counter.
func RecordScoreClassified() {
	if globalManager.enabled {
		globalManager.scoresClassified.Inc()
	}
}

// RecordStudentSkipped increments the skipped student counter.
func RecordStudentSkipped() {
	if globalManager.enabled {
		globalManager.studentsSkipped.Inc()
	}
}

// RecordGradesUploaded adds to the uploaded grade counter.
func RecordGradesUploaded(count int) {
	if globalManager.enabled && count > 0 {
		globalManager.gradesUploaded.Add(float64(count))
	}
}

// RecordRemoteCall increments the remote call counter for an operation.
func RecordRemoteCall(operation string) {
	if globalManager.enabled {
		globalManager.remoteCalls.WithLabelValues(operation).Inc()
	}
}

// RecordRemoteFailure increments the remote failure counter for an operation.
func RecordRemoteFailure(operation string) {
	if globalManager.enabled {
		globalManager.remoteFailures.WithLabelValues(operation).Inc()
	}
}

// RecordPromptRejection increments the rejected input counter.
func RecordPromptRejection() {
	if globalManager.enabled {
		globalManager.promptRejections.Inc()
	}
}

// RecordExtensionsAssigned adds to the extension counter.
func RecordExtensionsAssigned(count int) {
	if globalManager.enabled && count > 0 {
		globalManager.extensionsAssigned.Add(float64(count))
	}
}

// RecordRevisionsAssigned adds to the revision counter.
func RecordRevisionsAssigned(count int) {
	if globalManager.enabled && count > 0 {
		globalManager.revisionsAssigned.Add(float64(count))
	}
}

// Summary renders the global session summary.
func Summary() string {
	return globalManager.Summary()
}
