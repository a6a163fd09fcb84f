// Package metrics provides Prometheus instrumentation for the governance
// service: enforcement decision counters, violation counters by condition
// type, and HTTP request metrics. Collectors register against an injected
// prometheus.Registry so tests can run with isolated registries.
package metrics
