package player

import (
	"fmt"
	"strconv"
	"time"
)

// noneSentinel clears an optional field when received on a status topic
// that supports clearing. Case-sensitive literal.
const noneSentinel = "none"

// listenerFor returns the typed decode-and-apply handler for a capability,
// or nil for command-only capabilities that never carry a status topic.
//
// The dispatch is an explicit table: which decoder serves which capability
// is fixed at construction, never looked up by name at runtime.
func (p *Player) listenerFor(capability Capability) func(payload []byte) error {
	switch capability {
	case CapState:
		return p.handleState
	case CapTitle:
		return p.handleTitle
	case CapArtist:
		return p.clearableString(func(s *snapshot, v *string) { s.artist = v })
	case CapAlbum:
		return p.clearableString(func(s *snapshot, v *string) { s.album = v })
	case CapApp:
		return p.clearableString(func(s *snapshot, v *string) { s.app = v })
	case CapSeriesTitle:
		return p.clearableString(func(s *snapshot, v *string) { s.seriesTitle = v })
	case CapSeason:
		return p.clearableInt(func(s *snapshot, v *int) { s.season = v })
	case CapEpisode:
		return p.clearableInt(func(s *snapshot, v *int) { s.episode = v })
	case CapDuration:
		return p.handleDuration
	case CapPosition:
		return p.handlePosition
	case CapVolume:
		return p.handleVolume
	case CapMute:
		return p.handleMute
	case CapType:
		return p.verbatimString(func(s *snapshot, v string) { s.mediaType = v })
	case CapSource:
		return p.verbatimString(func(s *snapshot, v string) { src := v; s.source = &src })
	case CapIcon:
		return p.verbatimString(func(s *snapshot, v string) { icon := v; s.icon = &icon })
	case CapFeatures:
		return p.handleFeatures
	case CapCover:
		return p.handleCover
	default:
		// volume_up, volume_down, next, prev, stop, seek: command-only.
		return nil
	}
}

// handleState stores the reported playback state verbatim.
// No clearing sentinel: "none" would be taken as a literal state.
func (p *Player) handleState(payload []byte) error {
	state := string(payload)
	p.apply(func(s *snapshot) { s.state = state })
	p.recordState(state, SourceMQTT)
	return nil
}

// handleTitle stores the track title; "none" clears it. Title changes are
// audited so the playback history reads as a track log.
func (p *Player) handleTitle(payload []byte) error {
	text := string(payload)
	if text == noneSentinel {
		p.apply(func(s *snapshot) { s.title = nil })
		return nil
	}
	p.apply(func(s *snapshot) { s.title = &text })
	p.audit("title", text, SourceMQTT)
	return nil
}

// clearableString builds a handler for optional string fields where the
// "none" sentinel clears the field to unset.
func (p *Player) clearableString(set func(s *snapshot, v *string)) func(payload []byte) error {
	return func(payload []byte) error {
		text := string(payload)
		if text == noneSentinel {
			p.apply(func(s *snapshot) { set(s, nil) })
			return nil
		}
		p.apply(func(s *snapshot) { set(s, &text) })
		return nil
	}
}

// verbatimString builds a handler for string fields without a clearing
// sentinel; the raw payload is taken unconditionally.
func (p *Player) verbatimString(set func(s *snapshot, v string)) func(payload []byte) error {
	return func(payload []byte) error {
		text := string(payload)
		p.apply(func(s *snapshot) { set(s, text) })
		return nil
	}
}

// clearableInt builds a handler for optional integer fields where "none"
// clears the field to unset.
func (p *Player) clearableInt(set func(s *snapshot, v *int)) func(payload []byte) error {
	return func(payload []byte) error {
		text := string(payload)
		if text == noneSentinel {
			p.apply(func(s *snapshot) { set(s, nil) })
			return nil
		}
		n, err := strconv.Atoi(text)
		if err != nil {
			return fmt.Errorf("%w: %q is not an integer", ErrDecode, text)
		}
		p.apply(func(s *snapshot) { set(s, &n) })
		return nil
	}
}

// handleDuration stores the media duration in seconds; "none" clears it.
func (p *Player) handleDuration(payload []byte) error {
	text := string(payload)
	if text == noneSentinel {
		p.apply(func(s *snapshot) { s.duration = nil })
		return nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return fmt.Errorf("%w: %q is not a number", ErrDecode, text)
	}
	p.apply(func(s *snapshot) { s.duration = &f })
	p.recordMetric("duration_seconds", f)
	return nil
}

// handlePosition stores the playback position in seconds.
//
// Every applied position message, set or cleared, stamps positionUpdatedAt
// so consumers can extrapolate the position between messages. A payload
// that fails to parse is dropped without stamping.
func (p *Player) handlePosition(payload []byte) error {
	text := string(payload)
	now := time.Now()
	if text == noneSentinel {
		p.apply(func(s *snapshot) {
			s.position = nil
			s.positionUpdatedAt = &now
		})
		return nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return fmt.Errorf("%w: %q is not a number", ErrDecode, text)
	}
	p.apply(func(s *snapshot) {
		s.position = &f
		s.positionUpdatedAt = &now
	})
	p.recordMetric("position_seconds", f)
	return nil
}

// handleVolume stores the reported volume. The wire carries a 0-100
// integer; internally the volume is a 0.0-1.0 fraction.
// No clearing sentinel: a non-integer payload is a decode error.
func (p *Player) handleVolume(payload []byte) error {
	text := string(payload)
	n, err := strconv.Atoi(text)
	if err != nil {
		return fmt.Errorf("%w: volume %q is not an integer", ErrDecode, text)
	}
	fraction := float64(n) / 100.0
	p.apply(func(s *snapshot) { s.volume = &fraction })
	p.recordMetric("volume_level", fraction)
	return nil
}

// handleMute interprets the literal "1" as muted; anything else as unmuted.
func (p *Player) handleMute(payload []byte) error {
	muted := string(payload) == "1"
	p.apply(func(s *snapshot) { s.isMuted = muted })
	return nil
}

// handleFeatures overrides the derived feature mask with an explicit
// integer from the device. No clearing sentinel.
func (p *Player) handleFeatures(payload []byte) error {
	text := string(payload)
	n, err := strconv.ParseUint(text, 10, 32)
	if err != nil {
		return fmt.Errorf("%w: features %q is not an integer", ErrDecode, text)
	}
	p.apply(func(s *snapshot) { s.features = Feature(n) })
	return nil
}
