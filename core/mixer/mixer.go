package mixer

import (
	"sync"

	"FrameLoom/model"
)

// Mixer computes the effective gain of each playing source: clip volume
// scaled by the fade envelope at the current offset, silenced by clip or
// track mutes, and scaled by a master gain. The playback engine applies
// the result to the audio-capable elements on every tick.
type Mixer struct {
	mu     sync.Mutex
	master float64
}

// NewMixer creates a mixer with master gain 1.
func NewMixer() *Mixer {
	return &Mixer{master: 1}
}

// SetMasterGain sets the session-wide gain, clamped to [0, 1].
func (m *Mixer) SetMasterGain(g float64) {
	if g < 0 {
		g = 0
	}
	if g > 1 {
		g = 1
	}
	m.mu.Lock()
	m.master = g
	m.mu.Unlock()
}

// MasterGain returns the session-wide gain.
func (m *Mixer) MasterGain() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.master
}

// GainAt returns the effective gain for a clip at timeline time t. Outside
// the clip's active interval the gain is 0.
func (m *Mixer) GainAt(clip *model.Clip, trackMuted bool, t int64) float64 {
	if clip.Muted || trackMuted {
		return 0
	}
	if !clip.ActiveAt(t) {
		return 0
	}

	gain := clip.Volume
	if gain == 0 {
		gain = 1 // unset means full volume; silencing is the mute flag's job
	}
	if gain < 0 {
		gain = 0
	}
	if gain > 1 {
		gain = 1
	}

	offset := t - clip.TimelineStart
	if clip.FadeIn > 0 && offset < clip.FadeIn {
		gain *= float64(offset) / float64(clip.FadeIn)
	}
	if remaining := clip.Duration - offset; clip.FadeOut > 0 && remaining < clip.FadeOut {
		gain *= float64(remaining) / float64(clip.FadeOut)
	}

	m.mu.Lock()
	master := m.master
	m.mu.Unlock()
	return gain * master
}
