/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

// Package metrics exposes Prometheus counters and a histogram for engine activity:
// elements fired, instances created/terminated, events thrown/caught, and
// queue depth reached during execute_elements.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// EngineMetrics collects Prometheus counters and a histogram for FMS/EE activity,
// namespaced "bpmn_engine_".
type EngineMetrics struct {
	ElementsFiredTotal      *prometheus.CounterVec
	InstancesCreatedTotal   prometheus.Counter
	InstancesTerminatedTotal prometheus.Counter
	EventsThrownTotal       *prometheus.CounterVec
	EventsCaughtTotal       *prometheus.CounterVec
	QueueDepth              prometheus.Histogram
	ScriptEvaluationErrors  prometheus.Counter
}

// NewEngineMetrics registers the engine's metrics against registry. Pass
// prometheus.DefaultRegisterer for the global registry.
func NewEngineMetrics(registerer prometheus.Registerer) *EngineMetrics {
	factory := promauto.With(registerer)

	return &EngineMetrics{
		ElementsFiredTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bpmn_engine",
			Name:      "elements_fired_total",
			Help:      "Count of elements that passed enablement and fired, by element kind.",
		}, []string{"kind"}),

		InstancesCreatedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "bpmn_engine",
			Name:      "instances_created_total",
			Help:      "Count of InstanceState records created by create_root_instance/create_instance.",
		}),

		InstancesTerminatedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "bpmn_engine",
			Name:      "instances_terminated_total",
			Help:      "Count of instances whose markings reached zero (kill_process or natural completion).",
		}),

		EventsThrownTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bpmn_engine",
			Name:      "events_thrown_total",
			Help:      "Count of throw_event invocations, by event classification.",
		}, []string{"classification"}),

		EventsCaughtTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bpmn_engine",
			Name:      "events_caught_total",
			Help:      "Count of try_catch_event resolutions, by outcome.",
		}, []string{"outcome"}),

		QueueDepth: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "bpmn_engine",
			Name:      "execute_elements_queue_depth",
			Help:      "Number of elements enqueued during a single execute_elements invocation.",
			Buckets:   []float64{1, 2, 5, 10, 25, 50, 100},
		}),

		ScriptEvaluationErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "bpmn_engine",
			Name:      "script_evaluation_errors_total",
			Help:      "Count of ScriptDecodingError failures from the script evaluator.",
		}),
	}
}
