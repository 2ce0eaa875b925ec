package player

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/nerrad567/mqtt-mediaplayer/internal/infrastructure/config"
)

// MockMQTTClient implements MQTTClient for testing.
type MockMQTTClient struct {
	mu           sync.Mutex
	connected    bool
	publishErr   error
	subscribeErr error
	published    []mockMessage
	handlers     map[string]func(topic string, payload []byte)
}

type mockMessage struct {
	topic   string
	payload string
}

func NewMockMQTTClient() *MockMQTTClient {
	return &MockMQTTClient{
		connected: true,
		handlers:  make(map[string]func(topic string, payload []byte)),
	}
}

func (m *MockMQTTClient) Publish(topic string, payload []byte, _ byte, _ bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.publishErr != nil {
		return m.publishErr
	}
	m.published = append(m.published, mockMessage{topic: topic, payload: string(payload)})
	return nil
}

func (m *MockMQTTClient) Subscribe(topic string, _ byte, handler func(topic string, payload []byte)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.subscribeErr != nil {
		return m.subscribeErr
	}
	m.handlers[topic] = handler
	return nil
}

func (m *MockMQTTClient) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

// Deliver simulates an inbound message on a subscribed topic.
func (m *MockMQTTClient) Deliver(t *testing.T, topic, payload string) {
	t.Helper()
	m.mu.Lock()
	handler := m.handlers[topic]
	m.mu.Unlock()
	if handler == nil {
		t.Fatalf("no subscription on topic %s", topic)
	}
	handler(topic, []byte(payload))
}

// PublishedTo returns all payloads published to a topic, in order.
func (m *MockMQTTClient) PublishedTo(topic string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, msg := range m.published {
		if msg.topic == topic {
			out = append(out, msg.payload)
		}
	}
	return out
}

// PublishCount returns the total number of published messages.
func (m *MockMQTTClient) PublishCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.published)
}

// baseCapabilities returns the minimal valid capability map.
func baseCapabilities() map[string]config.Capability {
	return map[string]config.Capability{
		"state": {StatusTopic: "tv/state", SetTopic: "tv/state/set"},
		"title": {StatusTopic: "tv/title"},
	}
}

// newTestPlayer builds a started player over a mock client.
func newTestPlayer(t *testing.T, caps map[string]config.Capability) (*Player, *MockMQTTClient) {
	t.Helper()
	mock := NewMockMQTTClient()
	p, err := New(Options{
		Config: config.PlayerConfig{Name: "living-room", Capabilities: caps},
		MQTT:   mock,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	return p, mock
}

func TestNewRequiresName(t *testing.T) {
	_, err := New(Options{MQTT: NewMockMQTTClient()})
	if !errors.Is(err, ErrConfig) {
		t.Errorf("New() error = %v, want ErrConfig", err)
	}
}

func TestNewRequiresMQTTClient(t *testing.T) {
	_, err := New(Options{Config: config.PlayerConfig{Name: "x", Capabilities: baseCapabilities()}})
	if !errors.Is(err, ErrConfig) {
		t.Errorf("New() error = %v, want ErrConfig", err)
	}
}

func TestNewSeedsDefaults(t *testing.T) {
	caps := baseCapabilities()
	caps["volume"] = config.Capability{SetTopic: "tv/volume/set", Default: 25}
	caps["source"] = config.Capability{SetTopic: "tv/source/set", Default: "hdmi1", SourceList: []string{"hdmi1", "hdmi2"}}

	p, _ := newTestPlayer(t, caps)

	if got := p.State(); got != StateOff {
		t.Errorf("State() = %q, want %q", got, StateOff)
	}
	if v, ok := p.VolumeLevel(); !ok || v != 0.25 {
		t.Errorf("VolumeLevel() = %v, %v, want 0.25, true", v, ok)
	}
	if got := p.MediaType(); got != MediaTypeMusic {
		t.Errorf("MediaType() = %q, want %q", got, MediaTypeMusic)
	}
	if icon, ok := p.Icon(); !ok || icon != defaultIcon {
		t.Errorf("Icon() = %q, %v, want %q, true", icon, ok, defaultIcon)
	}
	if src, ok := p.Source(); !ok || src != "hdmi1" {
		t.Errorf("Source() = %q, %v, want hdmi1, true", src, ok)
	}
	if got := p.SourceList(); len(got) != 2 || got[0] != "hdmi1" {
		t.Errorf("SourceList() = %v, want [hdmi1 hdmi2]", got)
	}
	if title, ok := p.Title(); ok {
		t.Errorf("Title() = %q, set before any message", title)
	}
}

func TestNewConfiguredStateDefault(t *testing.T) {
	caps := baseCapabilities()
	state := caps["state"]
	state.Default = StateIdle
	caps["state"] = state

	p, _ := newTestPlayer(t, caps)
	if got := p.State(); got != StateIdle {
		t.Errorf("State() = %q, want %q", got, StateIdle)
	}
}

func TestUniqueIDDerivedFromName(t *testing.T) {
	p, _ := newTestPlayer(t, baseCapabilities())
	if got := p.UniqueID(); got != "mediaplayer-living-room" {
		t.Errorf("UniqueID() = %q", got)
	}
}

func TestStartSubscribesStatusTopics(t *testing.T) {
	caps := baseCapabilities()
	caps["volume"] = config.Capability{StatusTopic: "tv/volume", SetTopic: "tv/volume/set"}
	caps["next"] = config.Capability{SetTopic: "tv/next/set"}

	_, mock := newTestPlayer(t, caps)

	mock.mu.Lock()
	defer mock.mu.Unlock()
	for _, topic := range []string{"tv/state", "tv/title", "tv/volume"} {
		if mock.handlers[topic] == nil {
			t.Errorf("no subscription on %s", topic)
		}
	}
	if mock.handlers["tv/next/set"] != nil {
		t.Error("subscribed to a command-only set topic")
	}
}

func TestStartAnnouncesDefaultState(t *testing.T) {
	_, mock := newTestPlayer(t, baseCapabilities())

	got := mock.PublishedTo("tv/state/set")
	if len(got) != 1 || got[0] != StateOff {
		t.Errorf("state announce = %v, want [%q]", got, StateOff)
	}
}

func TestStartSubscribeFailure(t *testing.T) {
	mock := NewMockMQTTClient()
	mock.subscribeErr = errors.New("broker gone")
	p, err := New(Options{
		Config: config.PlayerConfig{Name: "x", Capabilities: baseCapabilities()},
		MQTT:   mock,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := p.Start(context.Background()); err == nil {
		t.Error("Start() = nil, want error")
	}
}

func TestOnChangeFiresOncePerMutation(t *testing.T) {
	mock := NewMockMQTTClient()
	var mu sync.Mutex
	count := 0
	p, err := New(Options{
		Config:   config.PlayerConfig{Name: "x", Capabilities: baseCapabilities()},
		MQTT:     mock,
		OnChange: func() { mu.Lock(); count++; mu.Unlock() },
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	mock.Deliver(t, "tv/title", "Track A")
	mock.Deliver(t, "tv/state", StatePlaying)

	mu.Lock()
	defer mu.Unlock()
	if count != 2 {
		t.Errorf("onChange fired %d times, want 2", count)
	}
}

func TestOnChangeMayReadAccessors(t *testing.T) {
	mock := NewMockMQTTClient()
	var seen string
	var p *Player
	var err error
	p, err = New(Options{
		Config:   config.PlayerConfig{Name: "x", Capabilities: baseCapabilities()},
		MQTT:     mock,
		OnChange: func() { seen = p.State() },
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	// Deadlocks here if the notification ran under the snapshot lock.
	mock.Deliver(t, "tv/state", StatePlaying)
	if seen != StatePlaying {
		t.Errorf("state observed in onChange = %q, want %q", seen, StatePlaying)
	}
}

func TestPublishFailureKeepsLocalUpdate(t *testing.T) {
	mock := NewMockMQTTClient()
	mock.publishErr = errors.New("broker gone")
	p, err := New(Options{
		Config: config.PlayerConfig{Name: "x", Capabilities: baseCapabilities()},
		MQTT:   mock,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	p.Play()
	if got := p.State(); got != StatePlaying {
		t.Errorf("State() after failed publish = %q, want %q", got, StatePlaying)
	}
}
