// Package telemetry wraps OpenTelemetry SDK initialization and
// provides the centralized TracerProvider and MeterProvider setup.
// When telemetry is disabled the globals stay noop and nothing
// connects to an external collector.
package telemetry
