package player

import (
	"math"
	"strconv"
)

// volumeStep is the fallback increment for VolumeUp/VolumeDown when no
// dedicated step topic is configured.
const volumeStep = 0.01

// Commands follow one pattern: guard on the current state, publish to the
// capability's set topic when one is configured, apply the optimistic local
// update, notify. Guard checks and delegation decisions run inside the
// snapshot critical section so a concurrent status message cannot change
// the state between the decision and the update.

// TurnOn requests power-on. A device reporting idle is treated as already
// on with nothing playing, so the request flips to power-off instead.
func (p *Player) TurnOn() {
	var target string
	p.transact(func(s *snapshot) ([]outbound, bool) {
		target = StateOn
		if s.state == StateIdle {
			target = StateOff
		}
		return p.setStateLocked(s, target)
	})
	p.recordState(target, SourceCommand)
}

// TurnOff requests power-off.
func (p *Player) TurnOff() {
	p.transact(func(s *snapshot) ([]outbound, bool) {
		return p.setStateLocked(s, StateOff)
	})
	p.recordState(StateOff, SourceCommand)
}

// Play requests playback.
func (p *Player) Play() {
	p.transact(func(s *snapshot) ([]outbound, bool) {
		return p.setStateLocked(s, StatePlaying)
	})
	p.recordState(StatePlaying, SourceCommand)
}

// Pause requests a pause.
func (p *Player) Pause() {
	p.transact(func(s *snapshot) ([]outbound, bool) {
		return p.setStateLocked(s, StatePaused)
	})
	p.recordState(StatePaused, SourceCommand)
}

// PlayPause toggles: pause while playing, play otherwise.
func (p *Player) PlayPause() {
	var target string
	p.transact(func(s *snapshot) ([]outbound, bool) {
		target = StatePlaying
		if s.state == StatePlaying {
			target = StatePaused
		}
		return p.setStateLocked(s, target)
	})
	p.recordState(target, SourceCommand)
}

// Stop requests a stop. Without a dedicated stop topic the request
// degrades to a pause, which every device supports.
func (p *Player) Stop() {
	var target string
	p.transact(func(s *snapshot) ([]outbound, bool) {
		b, ok := p.caps[CapStop]
		if ok && b.disabledFor(s.state) {
			return nil, false
		}
		if ok && b.setTopic != "" {
			target = StateIdle
			s.state = StateIdle
			return []outbound{{topic: b.setTopic, payload: "stop"}}, true
		}
		target = StatePaused
		return p.setStateLocked(s, StatePaused)
	})
	if target != "" {
		p.recordState(target, SourceCommand)
	}
}

// NextTrack requests the next track. Publish only: the device reports the
// resulting track change through its status topics.
func (p *Player) NextTrack() {
	p.transact(func(s *snapshot) ([]outbound, bool) {
		b, ok := p.caps[CapNext]
		if !ok || b.disabledFor(s.state) || b.setTopic == "" {
			return nil, false
		}
		return []outbound{{topic: b.setTopic, payload: "next"}}, false
	})
}

// PreviousTrack requests the previous track. Publish only.
func (p *Player) PreviousTrack() {
	p.transact(func(s *snapshot) ([]outbound, bool) {
		b, ok := p.caps[CapPrev]
		if !ok || b.disabledFor(s.state) || b.setTopic == "" {
			return nil, false
		}
		return []outbound{{topic: b.setTopic, payload: "prev"}}, false
	})
}

// SelectSource requests an input source switch and records it locally.
func (p *Player) SelectSource(source string) {
	p.transact(func(s *snapshot) ([]outbound, bool) {
		b, ok := p.caps[CapSource]
		if !ok || b.disabledFor(s.state) {
			return nil, false
		}
		var pubs []outbound
		if b.setTopic != "" {
			pubs = append(pubs, outbound{topic: b.setTopic, payload: source})
		}
		src := source
		s.source = &src
		return pubs, true
	})
}

// Seek requests a jump to the given position in seconds.
//
// The local position is updated optimistically but the extrapolation
// timestamp is not touched; that is owned by position status messages.
func (p *Player) Seek(position float64) {
	p.transact(func(s *snapshot) ([]outbound, bool) {
		b, ok := p.caps[CapSeek]
		if !ok || b.disabledFor(s.state) {
			return nil, false
		}
		var pubs []outbound
		if b.setTopic != "" {
			payload := strconv.FormatFloat(position, 'f', -1, 64)
			pubs = append(pubs, outbound{topic: b.setTopic, payload: payload})
		}
		pos := position
		s.position = &pos
		return pubs, true
	})
}

// SetVolume sets the volume to a 0.0-1.0 fraction. The wire carries the
// rounded 0-100 integer.
func (p *Player) SetVolume(level float64) {
	applied := false
	p.transact(func(s *snapshot) ([]outbound, bool) {
		if b, ok := p.caps[CapVolume]; ok && b.disabledFor(s.state) {
			return nil, false
		}
		applied = true
		return p.setVolumeLocked(s, level)
	})
	if applied {
		p.recordMetric("volume_level", clampFraction(level))
	}
}

// VolumeUp steps the volume up: a configured step topic receives "+",
// otherwise the change degrades to an absolute set one step above the
// current level.
func (p *Player) VolumeUp() {
	p.stepVolume(CapVolumeUp, "+", volumeStep)
}

// VolumeDown steps the volume down, mirroring VolumeUp.
func (p *Player) VolumeDown() {
	p.stepVolume(CapVolumeDown, "-", -volumeStep)
}

func (p *Player) stepVolume(capability Capability, payload string, delta float64) {
	var applied *float64
	p.transact(func(s *snapshot) ([]outbound, bool) {
		b, hasStep := p.caps[capability]
		if hasStep && b.disabledFor(s.state) {
			return nil, false
		}
		if hasStep && b.setTopic != "" {
			return []outbound{{topic: b.setTopic, payload: payload}}, false
		}
		// Fall back to an absolute set, which carries its own guard.
		if vb, ok := p.caps[CapVolume]; ok && vb.disabledFor(s.state) {
			return nil, false
		}
		current := 0.0
		if s.volume != nil {
			current = *s.volume
		}
		level := clampFraction(current + delta)
		applied = &level
		return p.setVolumeLocked(s, level)
	})
	if applied != nil {
		p.recordMetric("volume_level", *applied)
	}
}

// SetMute mutes or unmutes. Muting remembers the current volume; unmuting
// restores it through the volume set topic so the device and the snapshot
// agree again.
func (p *Player) SetMute(muted bool) {
	p.transact(func(s *snapshot) ([]outbound, bool) {
		b, ok := p.caps[CapMute]
		if !ok || b.disabledFor(s.state) {
			return nil, false
		}
		var pubs []outbound
		if b.setTopic != "" {
			payload := "0"
			if muted {
				payload = "1"
			}
			pubs = append(pubs, outbound{topic: b.setTopic, payload: payload})
		}
		if muted {
			if s.volume != nil {
				prev := *s.volume
				s.previousVolume = &prev
			}
		} else if s.previousVolume != nil {
			vb, hasVolume := p.caps[CapVolume]
			if !hasVolume || !vb.disabledFor(s.state) {
				restore, _ := p.setVolumeLocked(s, *s.previousVolume)
				pubs = append(pubs, restore...)
			}
		}
		s.isMuted = muted
		return pubs, true
	})
}

// setStateLocked applies a playback state and queues the matching publish.
// Callers hold the snapshot lock via transact.
func (p *Player) setStateLocked(s *snapshot, target string) ([]outbound, bool) {
	var pubs []outbound
	if b, ok := p.caps[CapState]; ok && b.setTopic != "" {
		pubs = append(pubs, outbound{topic: b.setTopic, payload: target})
	}
	s.state = target
	return pubs, true
}

// setVolumeLocked applies a volume fraction and queues the wire-format
// publish. Callers hold the snapshot lock via transact.
func (p *Player) setVolumeLocked(s *snapshot, level float64) ([]outbound, bool) {
	level = clampFraction(level)
	var pubs []outbound
	if b, ok := p.caps[CapVolume]; ok && b.setTopic != "" {
		wire := strconv.Itoa(int(math.Round(level * 100)))
		pubs = append(pubs, outbound{topic: b.setTopic, payload: wire})
	}
	v := level
	s.volume = &v
	return pubs, true
}

func clampFraction(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
