// Package infra contains technical adapters: the zerolog logger, the MQTT
// client and the report sinks. These packages depend only on the interfaces
// defined in the core packages.
package infra
