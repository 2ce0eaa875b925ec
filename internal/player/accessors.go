package player

import (
	"crypto/md5" // #nosec G401 -- content fingerprint for cache busting, not security
	"encoding/hex"
	"time"
)

// coverContentType is the content type reported alongside cover bytes.
// Devices publish JPEG frames; the type is fixed rather than sniffed.
const coverContentType = "image/jpeg"

// Accessors return a copy of the corresponding snapshot field under the
// lock. Optional fields return (value, ok); ok is false when the field is
// unset. None of these block and all are safe to call from the OnChange
// callback.

// Name returns the configured player name.
func (p *Player) Name() string { return p.name }

// UniqueID returns the stable entity identifier.
func (p *Player) UniqueID() string { return p.uniqueID }

// State returns the current playback state.
func (p *Player) State() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snap.state
}

// Title returns the current track title.
func (p *Player) Title() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return deref(p.snap.title)
}

// Artist returns the current track artist.
func (p *Player) Artist() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return deref(p.snap.artist)
}

// Album returns the current album name.
func (p *Player) Album() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return deref(p.snap.album)
}

// AppName returns the reported playback application.
func (p *Player) AppName() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return deref(p.snap.app)
}

// SeriesTitle returns the series title for episodic media.
func (p *Player) SeriesTitle() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return deref(p.snap.seriesTitle)
}

// Season returns the season number for episodic media.
func (p *Player) Season() (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.snap.season == nil {
		return 0, false
	}
	return *p.snap.season, true
}

// Episode returns the episode number for episodic media.
func (p *Player) Episode() (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.snap.episode == nil {
		return 0, false
	}
	return *p.snap.episode, true
}

// VolumeLevel returns the volume as a 0.0-1.0 fraction.
// A genuine zero volume reports (0.0, true), not unset.
func (p *Player) VolumeLevel() (float64, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.snap.volume == nil {
		return 0, false
	}
	return *p.snap.volume, true
}

// IsMuted reports whether the player is muted.
func (p *Player) IsMuted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snap.isMuted
}

// MediaType returns the media content type.
func (p *Player) MediaType() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snap.mediaType
}

// Source returns the current input source.
func (p *Player) Source() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return deref(p.snap.source)
}

// SourceList returns a copy of the selectable input sources.
func (p *Player) SourceList() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.snap.sourceList) == 0 {
		return nil
	}
	out := make([]string, len(p.snap.sourceList))
	copy(out, p.snap.sourceList)
	return out
}

// Icon returns the display icon identifier.
func (p *Player) Icon() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return deref(p.snap.icon)
}

// Duration returns the media duration in seconds.
func (p *Player) Duration() (float64, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.snap.duration == nil {
		return 0, false
	}
	return *p.snap.duration, true
}

// Position returns the last reported playback position in seconds.
func (p *Player) Position() (float64, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.snap.position == nil {
		return 0, false
	}
	return *p.snap.position, true
}

// PositionUpdatedAt returns when the position was last reported, for
// extrapolating between position messages.
func (p *Player) PositionUpdatedAt() (time.Time, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.snap.positionUpdatedAt == nil {
		return time.Time{}, false
	}
	return *p.snap.positionUpdatedAt, true
}

// Features returns the current feature mask.
func (p *Player) Features() Feature {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snap.features
}

// CoverImage returns a copy of the cover art bytes and their content type.
// The bool is false when no cover is set.
func (p *Player) CoverImage() ([]byte, string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.snap.cover) == 0 {
		return nil, "", false
	}
	out := make([]byte, len(p.snap.cover))
	copy(out, p.snap.cover)
	return out, coverContentType, true
}

// CoverHash returns a short content fingerprint of the cover art, for
// cache busting by presentation layers. Empty when no cover is set.
func (p *Player) CoverHash() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.snap.cover) == 0 {
		return ""
	}
	sum := md5.Sum(p.snap.cover) // #nosec G401
	return hex.EncodeToString(sum[:])[:5]
}

func deref(v *string) (string, bool) {
	if v == nil {
		return "", false
	}
	return *v, true
}
