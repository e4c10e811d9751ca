// Package metrics defines the Prometheus instrumentation for the service.
package metrics
