// Package metrics exposes processor activity as Prometheus counters.
//
// A Metrics value observes a mixin registry and counts the diagnostics that
// pass through it. Each value owns its registry so several processing
// environments, or tests, never collide on metric names.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"mixin-ap/internal/diagnostic"
)

const namespace = "mixin_ap"

// Metrics holds the processor counters.
type Metrics struct {
	registry *prometheus.Registry

	mixinsRegistered  prometheus.Counter
	membersRegistered *prometheus.CounterVec
	validatorVetoes   *prometheus.CounterVec
	targetsExported   prometheus.Counter
	diagnostics       *prometheus.CounterVec
	passes            prometheus.Counter
}

// New creates the counters on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		mixinsRegistered: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mixins_registered_total",
			Help:      "Mixin classes registered",
		}),
		membersRegistered: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "members_registered_total",
			Help:      "Mixin members registered by handler kind",
		}, []string{"kind"}),
		validatorVetoes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validator_vetoes_total",
			Help:      "Validator runs stopped by a failing validator, by pass",
		}, []string{"pass"}),
		targetsExported: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "target_associations_exported_total",
			Help:      "Target classes written by target map exports",
		}),
		diagnostics: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "diagnostics_total",
			Help:      "Diagnostics reported by severity",
		}, []string{"severity"}),
		passes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "passes_completed_total",
			Help:      "Processing passes completed",
		}),
	}
}

// Registry returns the registry the counters live in.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// MixinRegistered counts a new mixin declaration.
func (m *Metrics) MixinRegistered() {
	m.mixinsRegistered.Inc()
}

// MemberRegistered counts a member registration.
func (m *Metrics) MemberRegistered(kind string) {
	m.membersRegistered.WithLabelValues(kind).Inc()
}

// ValidatorVeto counts a validator run that stopped early.
func (m *Metrics) ValidatorVeto(pass string) {
	m.validatorVetoes.WithLabelValues(pass).Inc()
}

// TargetsExported adds the number of targets written by an export.
func (m *Metrics) TargetsExported(n int) {
	m.targetsExported.Add(float64(n))
}

// PassCompleted counts a finished pass.
func (m *Metrics) PassCompleted() {
	m.passes.Inc()
}

// Messager wraps next so every diagnostic is counted before delivery.
func (m *Metrics) Messager(next diagnostic.Messager) diagnostic.Messager {
	return diagnostic.MessagerFunc(func(d diagnostic.Diagnostic) {
		m.diagnostics.WithLabelValues(d.Severity.String()).Inc()
		if next != nil {
			next.PrintMessage(d)
		}
	})
}

// WriteTextfile writes the current values in the text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
