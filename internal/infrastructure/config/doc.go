// Package config loads and validates the adapter configuration.
//
// Configuration is read from a YAML file, with hardcoded defaults applied
// first and environment variable overrides (MEDIAPLAYER_*) applied last.
//
// The root config carries the infrastructure sections (mqtt, logging,
// history, telemetry) plus the list of configured players. Each player has
// a capability map binding logical capabilities (state, title, volume, ...)
// to MQTT status/set topics. The per-capability schema is enforced by the
// player package at construction; this package only validates shape common
// to all capabilities.
package config
