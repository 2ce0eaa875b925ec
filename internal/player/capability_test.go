package player

import (
	"errors"
	"testing"

	"github.com/nerrad567/mqtt-mediaplayer/internal/infrastructure/config"
)

func TestParseCapabilitiesValid(t *testing.T) {
	raw := map[string]config.Capability{
		"state":  {StatusTopic: "tv/state", SetTopic: "tv/state/set"},
		"title":  {StatusTopic: "tv/title"},
		"volume": {StatusTopic: "tv/volume", SetTopic: "tv/volume/set", Default: 30, DisabledInState: []string{"off"}},
		"seek":   {SetTopic: "tv/seek/set", DisabledInState: []string{"off", "idle"}},
		"source": {SetTopic: "tv/source/set", SourceList: []string{"a", "b"}},
	}

	caps, err := parseCapabilities(raw)
	if err != nil {
		t.Fatalf("parseCapabilities() error = %v", err)
	}
	if len(caps) != 5 {
		t.Fatalf("parseCapabilities() produced %d bindings, want 5", len(caps))
	}

	if v, ok := caps[CapVolume].defaultValue.(int); !ok || v != 30 {
		t.Errorf("volume default = %v, want 30", caps[CapVolume].defaultValue)
	}
	if !caps[CapSeek].disabledFor("idle") {
		t.Error("seek not disabled in idle")
	}
	if caps[CapSeek].disabledFor("playing") {
		t.Error("seek disabled in playing")
	}
	if got := caps[CapSource].sourceList; len(got) != 2 {
		t.Errorf("source list = %v, want 2 entries", got)
	}
	if v, ok := caps[CapState].defaultValue.(string); !ok || v != StateOff {
		t.Errorf("state default = %v, want %q", caps[CapState].defaultValue, StateOff)
	}
}

func TestParseCapabilitiesSchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]config.Capability
	}{
		{
			name: "unknown capability",
			raw: map[string]config.Capability{
				"state":  {StatusTopic: "s", SetTopic: "ss"},
				"title":  {StatusTopic: "t"},
				"rewind": {SetTopic: "r"},
			},
		},
		{
			name: "missing state capability",
			raw: map[string]config.Capability{
				"title": {StatusTopic: "t"},
			},
		},
		{
			name: "missing title capability",
			raw: map[string]config.Capability{
				"state": {StatusTopic: "s", SetTopic: "ss"},
			},
		},
		{
			name: "state missing set topic",
			raw: map[string]config.Capability{
				"state": {StatusTopic: "s"},
				"title": {StatusTopic: "t"},
			},
		},
		{
			name: "title missing status topic",
			raw: map[string]config.Capability{
				"state": {StatusTopic: "s", SetTopic: "ss"},
				"title": {},
			},
		},
		{
			name: "seek missing set topic",
			raw: map[string]config.Capability{
				"state": {StatusTopic: "s", SetTopic: "ss"},
				"title": {StatusTopic: "t"},
				"seek":  {StatusTopic: "p"},
			},
		},
		{
			name: "volume default wrong type",
			raw: map[string]config.Capability{
				"state":  {StatusTopic: "s", SetTopic: "ss"},
				"title":  {StatusTopic: "t"},
				"volume": {SetTopic: "v", Default: "loud"},
			},
		},
		{
			name: "volume default out of range",
			raw: map[string]config.Capability{
				"state":  {StatusTopic: "s", SetTopic: "ss"},
				"title":  {StatusTopic: "t"},
				"volume": {SetTopic: "v", Default: 150},
			},
		},
		{
			name: "state default wrong type",
			raw: map[string]config.Capability{
				"state": {StatusTopic: "s", SetTopic: "ss", Default: 7},
				"title": {StatusTopic: "t"},
			},
		},
		{
			name: "title does not accept default",
			raw: map[string]config.Capability{
				"state": {StatusTopic: "s", SetTopic: "ss"},
				"title": {StatusTopic: "t", Default: "x"},
			},
		},
		{
			name: "guard on unguarded capability",
			raw: map[string]config.Capability{
				"state": {StatusTopic: "s", SetTopic: "ss"},
				"title": {StatusTopic: "t", DisabledInState: []string{"off"}},
			},
		},
		{
			name: "source list on non-source capability",
			raw: map[string]config.Capability{
				"state":  {StatusTopic: "s", SetTopic: "ss"},
				"title":  {StatusTopic: "t"},
				"volume": {SetTopic: "v", SourceList: []string{"a"}},
			},
		},
		{
			name: "set topic on status-only capability",
			raw: map[string]config.Capability{
				"state": {StatusTopic: "s", SetTopic: "ss"},
				"title": {StatusTopic: "t"},
				"album": {StatusTopic: "a", SetTopic: "aa"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseCapabilities(tt.raw)
			if !errors.Is(err, ErrConfig) {
				t.Errorf("parseCapabilities() error = %v, want ErrConfig", err)
			}
		})
	}
}

func TestParseCapabilitiesDefaultFallbacks(t *testing.T) {
	raw := map[string]config.Capability{
		"state":  {StatusTopic: "s", SetTopic: "ss"},
		"title":  {StatusTopic: "t"},
		"volume": {SetTopic: "v"},
		"type":   {},
		"icon":   {},
		"source": {SetTopic: "src"},
	}

	caps, err := parseCapabilities(raw)
	if err != nil {
		t.Fatalf("parseCapabilities() error = %v", err)
	}

	if v := caps[CapVolume].defaultValue; v != 0 {
		t.Errorf("volume fallback default = %v, want 0", v)
	}
	if v := caps[CapType].defaultValue; v != MediaTypeMusic {
		t.Errorf("type fallback default = %v, want %q", v, MediaTypeMusic)
	}
	if v := caps[CapIcon].defaultValue; v != defaultIcon {
		t.Errorf("icon fallback default = %v, want %q", v, defaultIcon)
	}
	if v := caps[CapSource].defaultValue; v != nil {
		t.Errorf("source fallback default = %v, want nil", v)
	}
}
