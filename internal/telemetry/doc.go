// Package telemetry exports OpenTelemetry spans and metrics for runs.
//
// Each run gets one span and updates four instruments: iterlab.runs,
// iterlab.steps, iterlab.runs.exhausted and iterlab.run.latency_ms.
package telemetry
