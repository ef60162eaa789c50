// Package report defines the run summary handed to reporting sinks once a
// simulation completes. Sinks are registered by name and built from
// configuration; several configured sinks are combined into a MultiSink.
package report
