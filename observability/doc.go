// Package observability exposes the operational surface of TradeMesh:
// Prometheus metrics covering message routing, workflow runs and tool
// calls, plus a small HTTP server with /metrics, /healthz and /status
// endpoints.
//
// Metrics are package-level and registered once via InitMetrics; the
// engine, workflow driver and tools record into them through the
// Record* helpers without holding any observability state themselves.
package observability
