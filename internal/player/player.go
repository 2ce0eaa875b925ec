package player

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/nerrad567/mqtt-mediaplayer/internal/infrastructure/config"
)

// Playback states.
const (
	StateOn      = "on"
	StateOff     = "off"
	StateIdle    = "idle"
	StatePaused  = "paused"
	StatePlaying = "playing"
)

// MediaTypeMusic is the default media content type.
const MediaTypeMusic = "music"

// History source values.
const (
	SourceMQTT    = "mqtt"
	SourceCommand = "command"
)

const (
	// coverFetchTimeout bounds cover art downloads; handlers run on the
	// MQTT delivery path and must complete promptly.
	coverFetchTimeout = 10 * time.Second

	// recordTimeout bounds history writes.
	recordTimeout = 5 * time.Second
)

// MQTTClient is the interface for MQTT operations the player needs.
// This allows mocking in tests and flexibility in implementation.
type MQTTClient interface {
	// Publish sends a message to a topic.
	Publish(topic string, payload []byte, qos byte, retained bool) error

	// Subscribe registers a handler for a topic.
	Subscribe(topic string, qos byte, handler func(topic string, payload []byte)) error

	// IsConnected returns true if connected to the broker.
	IsConnected() bool
}

// Logger is the interface for optional structured logging.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Recorder appends playback transitions to the history store.
// Optional - if nil, the player operates without history.
type Recorder interface {
	RecordChange(ctx context.Context, player, field, value, source string) error
}

// Telemetry writes playback measurements to the time-series store.
// Optional - if nil, the player operates without telemetry.
// Satisfied by *influxdb.Client.
type Telemetry interface {
	WritePlayerMetric(player, measurement string, value float64)
	WriteStateTransition(player, state string)
}

// snapshot is the mutable aggregate of current device state.
//
// All fields are guarded by Player.mu. Volume values are held as 0.0-1.0
// fractions throughout; the 0-100 integer form exists only on the wire.
type snapshot struct {
	state             string
	title             *string
	artist            *string
	album             *string
	app               *string
	seriesTitle       *string
	season            *int
	episode           *int
	volume            *float64
	isMuted           bool
	previousVolume    *float64
	mediaType         string
	source            *string
	sourceList        []string
	icon              *string
	duration          *float64
	position          *float64
	positionUpdatedAt *time.Time
	cover             []byte
	features          Feature
}

// Player projects a remote media-playback device onto MQTT topic bindings.
//
// Every visible attribute is derived from the last message received on a
// configured status topic; every command publishes to a configured set topic
// and applies an optimistic local update.
//
// Thread Safety: all methods are safe for concurrent use. Message handlers
// and commands serialise on a single mutex so a reader never observes a
// partially applied update.
type Player struct {
	name     string
	uniqueID string
	qos      byte

	mqtt      MQTTClient
	logger    Logger
	onChange  func()
	recorder  Recorder
	telemetry Telemetry
	http      *http.Client

	caps map[Capability]binding

	mu   sync.Mutex
	snap snapshot
}

// Options holds configuration for creating a Player.
type Options struct {
	// Config is the player entry from the adapter configuration.
	Config config.PlayerConfig

	// MQTT is the bus client. Required.
	MQTT MQTTClient

	// QoS is the quality of service level for subscriptions and publishes.
	QoS byte

	// OnChange is invoked after every successful state or feature-mask
	// mutation. The presentation layer re-reads accessors in response.
	// Optional.
	OnChange func()

	// Logger is an optional structured logger.
	Logger Logger

	// Recorder is an optional playback history sink.
	Recorder Recorder

	// Telemetry is an optional time-series sink.
	Telemetry Telemetry

	// HTTPClient overrides the cover art fetch client (used in tests).
	HTTPClient *http.Client
}

// New creates a Player from a validated configuration.
//
// It parses the capability map against the fixed schema, derives the
// feature mask, and seeds the snapshot with configured defaults.
// Call Start() to subscribe and begin operation.
//
// Returns:
//   - *Player: Constructed player, not yet subscribed
//   - error: ErrConfig-wrapped description of the first schema violation
func New(opts Options) (*Player, error) {
	if opts.Config.Name == "" {
		return nil, fmt.Errorf("%w: player name is required", ErrConfig)
	}
	if opts.MQTT == nil {
		return nil, fmt.Errorf("%w: MQTT client is required", ErrConfig)
	}

	caps, err := parseCapabilities(opts.Config.Capabilities)
	if err != nil {
		return nil, fmt.Errorf("player %q: %w", opts.Config.Name, err)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: coverFetchTimeout}
	}

	p := &Player{
		name:      opts.Config.Name,
		uniqueID:  opts.Config.GetUniqueID(),
		qos:       opts.QoS,
		mqtt:      opts.MQTT,
		logger:    opts.Logger,
		onChange:  opts.OnChange,
		recorder:  opts.Recorder,
		telemetry: opts.Telemetry,
		http:      httpClient,
		caps:      caps,
	}

	p.snap = seedSnapshot(caps)

	return p, nil
}

// seedSnapshot builds the initial snapshot from capability defaults.
//
// The feature mask is computed here, once; afterwards it changes only via
// a features-topic override message.
func seedSnapshot(caps map[Capability]binding) snapshot {
	s := snapshot{
		mediaType: MediaTypeMusic,
		features:  deriveFeatures(caps),
	}

	if b, ok := caps[CapState]; ok {
		if v, isString := b.defaultValue.(string); isString {
			s.state = v
		}
	}
	if b, ok := caps[CapVolume]; ok {
		if v, isInt := b.defaultValue.(int); isInt {
			fraction := float64(v) / 100.0
			s.volume = &fraction
		}
	}
	if b, ok := caps[CapType]; ok {
		if v, isString := b.defaultValue.(string); isString {
			s.mediaType = v
		}
	}
	if b, ok := caps[CapIcon]; ok {
		if v, isString := b.defaultValue.(string); isString {
			icon := v
			s.icon = &icon
		}
	}
	if b, ok := caps[CapSource]; ok {
		if v, isString := b.defaultValue.(string); isString && v != "" {
			src := v
			s.source = &src
		}
		s.sourceList = b.sourceList
	}

	return s
}

// Start subscribes to all configured status topics and announces the
// default state on the state set topic.
//
// Returns:
//   - error: If any subscription fails
func (p *Player) Start(_ context.Context) error {
	for capability, b := range p.caps {
		if b.statusTopic == "" {
			continue
		}
		handler := p.listenerFor(capability)
		if handler == nil {
			continue
		}

		topic := b.statusTopic
		err := p.mqtt.Subscribe(topic, p.qos, func(_ string, payload []byte) {
			if handleErr := handler(payload); handleErr != nil {
				p.logWarn("dropping message", "topic", topic, "error", handleErr)
			}
		})
		if err != nil {
			return fmt.Errorf("subscribing %s capability: %w", capability, err)
		}
		p.logDebug("subscribed", "capability", string(capability), "topic", topic)
	}

	// Announce the default state so the device and the adapter agree on
	// a starting point before any status message arrives.
	if b, ok := p.caps[CapState]; ok && b.setTopic != "" {
		p.publishOut(b.setTopic, p.State())
	}

	p.logInfo("player started", "capabilities", len(p.caps))
	return nil
}

// outbound is a pending publish computed inside a snapshot transaction.
type outbound struct {
	topic   string
	payload string
}

// transact runs f with the snapshot locked, then performs the publishes f
// requested and fires the change notification if f reported a mutation.
//
// Guard checks, delegation decisions, and field updates all happen inside
// one critical section; publishes and the notification run outside it so
// the bus client and presentation layer can never deadlock back into the
// snapshot.
func (p *Player) transact(f func(s *snapshot) (pubs []outbound, changed bool)) {
	p.mu.Lock()
	pubs, changed := f(&p.snap)
	p.mu.Unlock()

	for _, out := range pubs {
		p.publishOut(out.topic, out.payload)
	}
	if changed {
		p.notifyChange()
	}
}

// apply mutates the snapshot under the lock and fires the change notification.
// Used by message listeners where exactly one field changes per message.
func (p *Player) apply(mutate func(s *snapshot)) {
	p.transact(func(s *snapshot) ([]outbound, bool) {
		mutate(s)
		return nil, true
	})
}

// publishOut publishes a command payload. Failures are logged only: the
// optimistic local update has already been applied and the design accepts
// eventual inconsistency over blocking the caller.
func (p *Player) publishOut(topic, payload string) {
	if topic == "" {
		return
	}
	if err := p.mqtt.Publish(topic, []byte(payload), p.qos, false); err != nil {
		p.logWarn("publish failed", "topic", topic, "error", err)
	}
}

// notifyChange invokes the change notification sink, if set.
func (p *Player) notifyChange() {
	if p.onChange != nil {
		p.onChange()
	}
}

// audit appends a playback transition to the history store, if configured.
func (p *Player) audit(field, value, source string) {
	if p.recorder == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()
	if err := p.recorder.RecordChange(ctx, p.name, field, value, source); err != nil {
		p.logWarn("recording history", "field", field, "error", err)
	}
}

// recordState forwards a state transition to history and telemetry.
func (p *Player) recordState(state, source string) {
	p.audit("state", state, source)
	if p.telemetry != nil {
		p.telemetry.WriteStateTransition(p.name, state)
	}
}

// recordMetric forwards a numeric measurement to telemetry.
func (p *Player) recordMetric(measurement string, value float64) {
	if p.telemetry != nil {
		p.telemetry.WritePlayerMetric(p.name, measurement, value)
	}
}

func (p *Player) logDebug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, append([]any{"player", p.name}, args...)...)
	}
}

func (p *Player) logInfo(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, append([]any{"player", p.name}, args...)...)
	}
}

func (p *Player) logWarn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, append([]any{"player", p.name}, args...)...)
	}
}
