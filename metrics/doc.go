// Package metrics exports logger and handler counters to Prometheus.
package metrics
