// Package player projects remote media-playback devices onto MQTT topic
// bindings.
//
// Each player is built from a declarative capability map: a fixed set of
// capability names (state, title, volume, mute, seek, source, ...), each
// carrying a status topic to subscribe to, a set topic to publish commands
// on, a default value, and a list of states the capability is disabled in,
// per a fixed schema.
//
// From the map the player derives a feature bitmask once at construction,
// subscribes a typed decode handler per status topic, and maintains a
// mutex-guarded snapshot of the device's visible attributes. Commands
// follow guard, publish, optimistic local update, notify; inbound status
// messages always win over optimistic updates because they arrive later.
//
// The package talks to collaborators through small interfaces (MQTTClient,
// Logger, Recorder, Telemetry) so it can be exercised entirely with mocks.
package player
