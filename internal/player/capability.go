package player

import (
	"fmt"

	"github.com/nerrad567/mqtt-mediaplayer/internal/infrastructure/config"
)

// Capability is a named axis of device functionality (volume, title, ...)
// optionally bound to MQTT status/set topics.
type Capability string

// The fixed set of capability names.
const (
	CapState       Capability = "state"
	CapTitle       Capability = "title"
	CapArtist      Capability = "artist"
	CapAlbum       Capability = "album"
	CapApp         Capability = "app"
	CapSeriesTitle Capability = "series_title"
	CapSeason      Capability = "season"
	CapEpisode     Capability = "episode"
	CapCover       Capability = "cover"
	CapVolume      Capability = "volume"
	CapVolumeUp    Capability = "volume_up"
	CapVolumeDown  Capability = "volume_down"
	CapMute        Capability = "mute"
	CapNext        Capability = "next"
	CapPrev        Capability = "prev"
	CapStop        Capability = "stop"
	CapType        Capability = "type"
	CapSource      Capability = "source"
	CapIcon        Capability = "icon"
	CapDuration    Capability = "duration"
	CapPosition    Capability = "position"
	CapSeek        Capability = "seek"
	CapFeatures    Capability = "features"
)

// defaultIcon is the fallback icon identifier when none is configured.
const defaultIcon = "mdi:cast"

// rule describes whether a capability sub-key may or must be present.
type rule int

const (
	omitted rule = iota // key must not be set for this capability
	optional
	required
)

// defaultKind describes the expected type of a capability's default value.
type defaultKind int

const (
	noDefault defaultKind = iota
	stringDefault
	intDefault
)

// capabilitySchema fixes which sub-keys each capability accepts.
type capabilitySchema struct {
	status   rule
	set      rule
	def      defaultKind
	fallback any  // applied when the default sub-key is absent
	guard    bool // disabled_in_state allowed
	sources  bool // source_list allowed
}

// capabilitySchemas is the fixed per-capability schema. Capabilities not in
// this map are unknown and rejected at construction.
var capabilitySchemas = map[Capability]capabilitySchema{
	CapState:       {status: required, set: required, def: stringDefault, fallback: StateOff},
	CapTitle:       {status: required},
	CapArtist:      {status: required},
	CapAlbum:       {status: required},
	CapApp:         {status: required},
	CapSeriesTitle: {status: required},
	CapSeason:      {status: required},
	CapEpisode:     {status: required},
	CapCover:       {status: required},
	CapDuration:    {status: required},
	CapPosition:    {status: required},
	CapFeatures:    {status: required},
	CapVolume:      {status: optional, set: required, def: intDefault, fallback: 0, guard: true},
	CapVolumeUp:    {set: required, guard: true},
	CapVolumeDown:  {set: required, guard: true},
	CapMute:        {status: required, set: required, guard: true},
	CapNext:        {set: required, guard: true},
	CapPrev:        {set: required, guard: true},
	CapStop:        {set: required, guard: true},
	CapSeek:        {set: required, guard: true},
	CapType:        {status: optional, def: stringDefault, fallback: MediaTypeMusic},
	CapSource:      {status: optional, set: required, def: stringDefault, fallback: nil, guard: true, sources: true},
	CapIcon:        {status: optional, def: stringDefault, fallback: defaultIcon},
}

// binding is the validated topic binding for a single capability.
// Immutable after construction.
type binding struct {
	statusTopic  string
	setTopic     string
	defaultValue any // string or int per schema, nil when no default applies
	disabledIn   map[string]bool
	sourceList   []string
}

// disabledFor reports whether commands for this binding are suppressed in
// the given player state.
func (b binding) disabledFor(state string) bool {
	return b.disabledIn[state]
}

// parseCapabilities validates a raw capability map against the fixed schema
// and produces typed bindings.
//
// Validation enforces, per capability: allowed/required topics, default value
// type, guard and source list applicability. The state and title capabilities
// are mandatory. The first violation encountered is returned, wrapped in
// ErrConfig.
func parseCapabilities(raw map[string]config.Capability) (map[Capability]binding, error) {
	caps := make(map[Capability]binding, len(raw))

	for name, rc := range raw {
		capability := Capability(name)
		schema, known := capabilitySchemas[capability]
		if !known {
			return nil, fmt.Errorf("%w: unknown capability %q", ErrConfig, name)
		}

		b := binding{
			statusTopic: rc.StatusTopic,
			setTopic:    rc.SetTopic,
		}

		if schema.status == required && b.statusTopic == "" {
			return nil, fmt.Errorf("%w: capability %q requires status_topic", ErrConfig, name)
		}
		if schema.status == omitted && b.statusTopic != "" {
			return nil, fmt.Errorf("%w: capability %q does not accept status_topic", ErrConfig, name)
		}
		if schema.set == required && b.setTopic == "" {
			return nil, fmt.Errorf("%w: capability %q requires set_topic", ErrConfig, name)
		}
		if schema.set == omitted && b.setTopic != "" {
			return nil, fmt.Errorf("%w: capability %q does not accept set_topic", ErrConfig, name)
		}

		def, err := parseDefault(capability, schema, rc.Default)
		if err != nil {
			return nil, err
		}
		b.defaultValue = def

		if len(rc.DisabledInState) > 0 {
			if !schema.guard {
				return nil, fmt.Errorf("%w: capability %q does not accept disabled_in_state", ErrConfig, name)
			}
			b.disabledIn = make(map[string]bool, len(rc.DisabledInState))
			for _, s := range rc.DisabledInState {
				b.disabledIn[s] = true
			}
		}

		if len(rc.SourceList) > 0 {
			if !schema.sources {
				return nil, fmt.Errorf("%w: capability %q does not accept source_list", ErrConfig, name)
			}
			b.sourceList = append([]string(nil), rc.SourceList...)
		}

		caps[capability] = b
	}

	if _, ok := caps[CapState]; !ok {
		return nil, fmt.Errorf("%w: capability %q is required", ErrConfig, CapState)
	}
	if _, ok := caps[CapTitle]; !ok {
		return nil, fmt.Errorf("%w: capability %q is required", ErrConfig, CapTitle)
	}

	return caps, nil
}

// parseDefault validates and normalises a capability's default value.
func parseDefault(capability Capability, schema capabilitySchema, raw any) (any, error) {
	if raw == nil {
		return schema.fallback, nil
	}
	switch schema.def {
	case noDefault:
		return nil, fmt.Errorf("%w: capability %q does not accept a default", ErrConfig, capability)
	case stringDefault:
		v, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("%w: capability %q default must be a string, got %T", ErrConfig, capability, raw)
		}
		return v, nil
	case intDefault:
		v, ok := raw.(int)
		if !ok {
			return nil, fmt.Errorf("%w: capability %q default must be an integer, got %T", ErrConfig, capability, raw)
		}
		if v < 0 || v > 100 {
			return nil, fmt.Errorf("%w: capability %q default must be between 0 and 100", ErrConfig, capability)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("%w: capability %q has no default kind", ErrConfig, capability)
	}
}
