package playback

import (
	"context"
	"image"
	"sync"
	"time"

	"FrameLoom/core/compositor"
	"FrameLoom/core/mixer"
	"FrameLoom/core/timeline"
	"FrameLoom/logger"
	"FrameLoom/model"
)

// State is the engine's playback state. Stopped and paused behave the
// same except that stopping also rewinds the playhead to 0.
type State string

const (
	StateStopped State = "stopped"
	StatePlaying State = "playing"
	StatePaused  State = "paused"
)

// Config tunes one engine instance. Zero fields get defaults.
type Config struct {
	Clock        Clock
	FrameRate    int           // ticks per second while playing
	SettleDelay  time.Duration // pause after issuing starts, before the clock advances
	ReadyTimeout time.Duration // bounded wait for pending sources on Play
	VideoDriftMs int64         // resync threshold for video sources
	AudioDriftMs int64         // looser threshold for audio, to avoid audible stutter
}

func (c *Config) applyDefaults() {
	if c.Clock == nil {
		c.Clock = SystemClock()
	}
	if c.FrameRate <= 0 {
		c.FrameRate = 30
	}
	if c.ReadyTimeout <= 0 {
		c.ReadyTimeout = 3 * time.Second
	}
	if c.VideoDriftMs <= 0 {
		c.VideoDriftMs = 100
	}
	if c.AudioDriftMs <= 0 {
		c.AudioDriftMs = 300
	}
}

// Engine maps the single virtual timeline clock onto the independently
// buffering media elements of a session and keeps them phase-locked. The
// tick path is the only place that starts, pauses or seeks elements and
// the only place that updates compositor visibility; nothing else may
// drive either.
type Engine struct {
	store   *timeline.Store
	session *Session
	comp    *compositor.Compositor
	mix     *mixer.Mixer

	clock         Clock
	frameInterval time.Duration
	settleDelay   time.Duration
	readyTimeout  time.Duration
	videoDriftMs  int64
	audioDriftMs  int64

	mu         sync.Mutex
	state      State
	anchorWall time.Time
	anchorTime int64
	cancelLoop context.CancelFunc
}

// NewEngine creates an engine over a store and session.
func NewEngine(store *timeline.Store, session *Session, comp *compositor.Compositor, mix *mixer.Mixer, cfg Config) *Engine {
	cfg.applyDefaults()
	return &Engine{
		store:         store,
		session:       session,
		comp:          comp,
		mix:           mix,
		clock:         cfg.Clock,
		frameInterval: time.Second / time.Duration(cfg.FrameRate),
		settleDelay:   cfg.SettleDelay,
		readyTimeout:  cfg.ReadyTimeout,
		videoDriftMs:  cfg.VideoDriftMs,
		audioDriftMs:  cfg.AudioDriftMs,
		state:         StateStopped,
	}
}

// State returns the current playback state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Play starts playback from the current playhead. Playing from at or after
// the timeline end rewinds to 0 first. Every active source is synchronized
// to its in-source offset and started before the virtual clock begins
// advancing, which bounds worst-case desync to the slowest source's
// startup latency; an optional settle delay masks that further.
func (e *Engine) Play(ctx context.Context) error {
	e.mu.Lock()
	if e.state == StatePlaying {
		e.mu.Unlock()
		return nil
	}
	e.mu.Unlock()

	duration := e.store.Duration()
	if duration == 0 {
		return nil // empty timeline, nothing to play
	}
	t := e.store.CurrentTime()
	if t >= duration {
		t = 0
		e.store.SetCurrentTime(0)
	}

	e.awaitActiveReady(ctx, t)
	e.syncAndStart(t)
	if e.settleDelay > 0 {
		time.Sleep(e.settleDelay)
	}

	e.mu.Lock()
	// A pending frame loop from an earlier Play must die before a new one
	// is scheduled; two overlapping clock-advance loops would fight.
	if e.cancelLoop != nil {
		e.cancelLoop()
	}
	loopCtx, cancel := context.WithCancel(context.Background())
	e.cancelLoop = cancel
	e.state = StatePlaying
	e.anchorWall = e.clock.Now()
	e.anchorTime = t
	e.mu.Unlock()

	go e.runLoop(loopCtx)
	logger.Debug("playback started", logger.Int64("from", t))
	return nil
}

// Pause halts the clock and pauses every tracked element. Idempotent.
func (e *Engine) Pause() {
	e.mu.Lock()
	if e.state == StatePlaying {
		e.state = StatePaused
	}
	if e.cancelLoop != nil {
		e.cancelLoop()
		e.cancelLoop = nil
	}
	e.mu.Unlock()
	e.pauseAllElements()
}

// Stop pauses and rewinds the playhead to 0.
func (e *Engine) Stop() {
	e.Pause()
	e.mu.Lock()
	e.state = StateStopped
	e.mu.Unlock()
	e.store.SetCurrentTime(0)
	e.syncPositions(0)
	e.render(0)
}

// Seek moves the playhead, clamped to [0, duration]. While playing, the
// elements are paused, re-synced to the target offset and restarted, so
// no element is ever left playing at a stale offset. All re-sync seeks
// complete before the clock resumes advancing, and the frame loop is
// replaced together with the anchor so no tick reading the old anchor
// survives the seek.
func (e *Engine) Seek(ms int64) {
	duration := e.store.Duration()
	if ms < 0 {
		ms = 0
	}
	if ms > duration {
		ms = duration
	}

	e.mu.Lock()
	wasPlaying := e.state == StatePlaying
	e.mu.Unlock()

	if wasPlaying {
		e.pauseAllElements()
	}
	e.store.SetCurrentTime(ms)
	e.syncPositions(ms)
	e.render(ms)

	if wasPlaying {
		e.syncAndStart(ms)
		e.mu.Lock()
		if e.cancelLoop != nil {
			e.cancelLoop()
		}
		loopCtx, cancel := context.WithCancel(context.Background())
		e.cancelLoop = cancel
		e.anchorTime = ms
		e.anchorWall = e.clock.Now()
		e.mu.Unlock()
		go e.runLoop(loopCtx)
	}
	logger.Debug("seek", logger.Int64("to", ms), logger.Bool("resumed", wasPlaying))
}

// CurrentFrame returns the most recently composed output frame.
func (e *Engine) CurrentFrame() *image.RGBA {
	return e.comp.Output()
}

func (e *Engine) runLoop(ctx context.Context) {
	ticker := time.NewTicker(e.frameInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.tick(e.clock.Now())
		}
	}
}

// tick advances the virtual clock one frame. It is the single driver of
// element play/pause/seek state, mixer gains and compositor visibility.
func (e *Engine) tick(now time.Time) {
	e.mu.Lock()
	if e.state != StatePlaying {
		e.mu.Unlock()
		return
	}
	newTime := e.anchorTime + now.Sub(e.anchorWall).Milliseconds()
	e.mu.Unlock()

	duration := e.store.Duration()
	if newTime >= duration {
		e.mu.Lock()
		e.state = StatePaused
		if e.cancelLoop != nil {
			e.cancelLoop()
			e.cancelLoop = nil
		}
		e.mu.Unlock()
		e.store.SetCurrentTime(duration)
		e.pauseAllElements()
		e.render(duration)
		logger.Debug("playback reached timeline end", logger.Int64("duration", duration))
		return
	}

	e.store.SetCurrentTime(newTime)
	e.updateElements(newTime)
	e.render(newTime)
}

// updateElements reconciles every registered element against the active
// clip set at time t: newly active sources are seeked and started, stale
// ones paused, playing ones drift-checked, gains reapplied. Activity is
// independent of visibility; a covered video keeps playing.
func (e *Engine) updateElements(t int64) {
	mutedTracks := e.mutedTrackSet()
	wanted := make(map[string]struct{})

	for _, clip := range e.store.ActiveClipsAt(t) {
		switch clip.Kind {
		case model.ClipKindVideo, model.ClipKindAudio:
			src := e.session.Source(clip.SourceID)
			if src == nil || !src.Usable() {
				continue
			}
			wanted[clip.SourceID] = struct{}{}
			el := src.Element()
			_, trackMuted := mutedTracks[clip.TrackID]
			el.SetVolume(e.mix.GainAt(clip, trackMuted, t))

			if el.Kind() == model.MediaTypeImage {
				continue // static sources have no playback position
			}
			expected := clip.SourceOffsetAt(t)
			if !el.Playing() {
				if err := el.SeekTo(expected); err != nil {
					logger.Warn("source seek failed, skipping",
						logger.String("sourceId", clip.SourceID), logger.ErrorField(err))
					continue
				}
				if err := el.Play(); err != nil {
					logger.Warn("source start failed, skipping",
						logger.String("sourceId", clip.SourceID), logger.ErrorField(err))
					continue
				}
			} else if drift := abs64(el.PositionMs() - expected); drift > e.driftThreshold(el.Kind()) {
				if err := el.SeekTo(expected); err != nil {
					logger.Warn("drift resync failed",
						logger.String("sourceId", clip.SourceID), logger.ErrorField(err))
				}
			}
		case model.ClipKindText:
			// No media element behind text clips.
		default:
			logger.Warn("unknown clip kind in active set", logger.String("kind", string(clip.Kind)))
		}
	}

	for _, id := range e.session.SourceIDs() {
		if _, ok := wanted[id]; ok {
			continue
		}
		if src := e.session.Source(id); src != nil && src.Element().Playing() {
			src.Element().Pause()
		}
	}
}

func (e *Engine) driftThreshold(kind model.MediaType) int64 {
	if kind == model.MediaTypeAudio {
		return e.audioDriftMs
	}
	return e.videoDriftMs
}

// awaitActiveReady joins the bounded readiness wait of every pending
// active source, so none is read mid-load once the clock starts.
func (e *Engine) awaitActiveReady(ctx context.Context, t int64) {
	for _, clip := range e.store.ActiveClipsAt(t) {
		if clip.SourceID == "" {
			continue
		}
		src := e.session.Source(clip.SourceID)
		if src == nil || src.State() != StatePending {
			continue
		}
		if st := src.AwaitReady(ctx, e.readyTimeout); st == StateReadyDegraded {
			logger.Warn("source not ready in time, proceeding degraded",
				logger.String("sourceId", clip.SourceID))
		}
	}
}

// syncAndStart seeks every active source to its in-source offset and
// starts it. Failures degrade per-source; the rest keep going.
func (e *Engine) syncAndStart(t int64) {
	for _, clip := range e.store.ActiveClipsAt(t) {
		if clip.Kind == model.ClipKindText {
			continue
		}
		src := e.session.Source(clip.SourceID)
		if src == nil || !src.Usable() {
			continue
		}
		el := src.Element()
		if el.Kind() == model.MediaTypeImage {
			continue
		}
		if err := el.SeekTo(clip.SourceOffsetAt(t)); err != nil {
			logger.Warn("source sync failed", logger.String("sourceId", clip.SourceID), logger.ErrorField(err))
			continue
		}
		if err := el.Play(); err != nil {
			logger.Warn("source start failed", logger.String("sourceId", clip.SourceID), logger.ErrorField(err))
		}
	}
}

// syncPositions seeks active sources without starting them, so a paused
// preview shows the right frame.
func (e *Engine) syncPositions(t int64) {
	for _, clip := range e.store.ActiveClipsAt(t) {
		if clip.Kind == model.ClipKindText {
			continue
		}
		src := e.session.Source(clip.SourceID)
		if src == nil || !src.Usable() {
			continue
		}
		el := src.Element()
		if el.Kind() == model.MediaTypeImage {
			continue
		}
		if err := el.SeekTo(clip.SourceOffsetAt(t)); err != nil {
			logger.Warn("position sync failed", logger.String("sourceId", clip.SourceID), logger.ErrorField(err))
		}
	}
}

func (e *Engine) pauseAllElements() {
	for _, id := range e.session.SourceIDs() {
		if src := e.session.Source(id); src != nil {
			src.Element().Pause()
		}
	}
}

// render resolves the visible layer set for time t and composites it.
func (e *Engine) render(t int64) {
	e.comp.Compose(e.buildLayers(t))
}

// buildLayers maps active video clips with registered, usable sources to
// compositor layers ordered by their track's order.
func (e *Engine) buildLayers(t int64) []compositor.Layer {
	tracks := make(map[string]*model.Track)
	for _, tr := range e.store.Tracks() {
		tracks[tr.ID] = tr
	}

	var layers []compositor.Layer
	for _, clip := range e.store.ActiveClipsAt(t) {
		if clip.Kind != model.ClipKindVideo {
			continue
		}
		track, ok := tracks[clip.TrackID]
		if !ok {
			continue
		}
		src := e.session.Source(clip.SourceID)
		if src == nil || !src.Usable() {
			continue
		}
		opacity := clip.Opacity
		if opacity == 0 {
			opacity = 1 // unset means opaque
		}
		layers = append(layers, compositor.Layer{
			ClipID:  clip.ID,
			Order:   track.Order,
			Source:  src.Element(),
			Opacity: opacity,
			Visible: !track.Muted,
		})
	}
	return layers
}

func (e *Engine) mutedTrackSet() map[string]struct{} {
	out := make(map[string]struct{})
	for _, tr := range e.store.Tracks() {
		if tr.Muted {
			out[tr.ID] = struct{}{}
		}
	}
	return out
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
