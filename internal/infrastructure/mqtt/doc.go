// Package mqtt wraps paho.mqtt.golang for the media player adapter.
//
// It provides a managed client with:
//
//   - Connection lifecycle (connect with timeout, graceful close)
//   - Last Will and Testament for availability tracking
//   - Automatic reconnection with exponential backoff
//   - Subscription restoration after reconnect
//   - Panic-safe message handlers (a bad payload never kills the delivery loop)
//   - Publish/subscribe with per-operation timeouts
//
// Player capability topics are entirely configuration-driven; this package
// imposes no topic scheme on them. Only the adapter's own availability
// status topic (mediaplayer/system/status) is fixed.
package mqtt
