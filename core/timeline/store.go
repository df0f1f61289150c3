package timeline

import (
	"fmt"
	"sort"
	"sync"

	"FrameLoom/logger"
	"FrameLoom/model"

	"github.com/google/uuid"
)

// defaultTextDuration is the placement duration for new text clips, in ms.
const defaultTextDuration int64 = 5000

// TrackCaps limits how many tracks of each type a project may hold.
// A zero value for a type means unlimited.
type TrackCaps struct {
	Video int
	Audio int
	Text  int
}

func (c TrackCaps) capFor(t model.TrackType) int {
	switch t {
	case model.TrackTypeVideo:
		return c.Video
	case model.TrackTypeAudio:
		return c.Audio
	case model.TrackTypeText:
		return c.Text
	}
	return 0
}

// Listener is notified after every committed mutation. Rejected operations
// never fire it.
type Listener func()

// Store is the single source of truth for tracks, clips and media
// references of one open project. Every topology-changing operation
// validates the full target state before committing, so a rejection leaves
// the store byte-for-byte unchanged.
type Store struct {
	mu sync.Mutex

	tracks []*model.Track
	clips  map[string]*model.Clip
	media  map[string]*model.MediaFile

	duration       int64
	currentTime    int64
	zoom           float64
	selectedClipID string

	caps      TrackCaps
	listeners []Listener
}

// NewStore creates an empty store with the given per-type track caps.
func NewStore(caps TrackCaps) *Store {
	return &Store{
		clips: make(map[string]*model.Clip),
		media: make(map[string]*model.MediaFile),
		zoom:  1.0,
		caps:  caps,
	}
}

// OnChange registers a listener fired after every committed mutation.
func (s *Store) OnChange(l Listener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, l)
	s.mu.Unlock()
}

// notify runs outside the store lock so listeners may query the store.
func (s *Store) notify() {
	s.mu.Lock()
	ls := make([]Listener, len(s.listeners))
	copy(ls, s.listeners)
	s.mu.Unlock()
	for _, l := range ls {
		l()
	}
}

// ---------- queries ----------

// Tracks returns the tracks sorted by order.
func (s *Store) Tracks() []*model.Track {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.Track, len(s.tracks))
	for i, t := range s.tracks {
		dup := *t
		out[i] = &dup
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// Track returns a copy of the track with the given id, or nil.
func (s *Store) Track(id string) *model.Track {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t := s.trackByID(id); t != nil {
		dup := *t
		return &dup
	}
	return nil
}

// Clips returns copies of all clips, in no particular order.
func (s *Store) Clips() []*model.Clip {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.Clip, 0, len(s.clips))
	for _, c := range s.clips {
		out = append(out, c.Clone())
	}
	return out
}

// Clip returns a copy of the clip with the given id, or nil.
func (s *Store) Clip(id string) *model.Clip {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.clips[id]; ok {
		return c.Clone()
	}
	return nil
}

// ClipsOnTrack returns copies of the clips on one track sorted by start time.
func (s *Store) ClipsOnTrack(trackID string) []*model.Clip {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.Clip
	for _, c := range s.clips {
		if c.TrackID == trackID {
			out = append(out, c.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TimelineStart < out[j].TimelineStart })
	return out
}

// ActiveClipsAt returns copies of every clip whose half-open interval
// contains t. Multiple clips may be active at once across distinct tracks.
func (s *Store) ActiveClipsAt(t int64) []*model.Clip {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.Clip
	for _, c := range s.clips {
		if c.ActiveAt(t) {
			out = append(out, c.Clone())
		}
	}
	return out
}

// MediaFile returns a copy of the media file with the given id, or nil.
func (s *Store) MediaFile(id string) *model.MediaFile {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.media[id]; ok {
		dup := *m
		return &dup
	}
	return nil
}

// MediaFiles returns copies of all imported media files.
func (s *Store) MediaFiles() []*model.MediaFile {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.MediaFile, 0, len(s.media))
	for _, m := range s.media {
		dup := *m
		out = append(out, &dup)
	}
	return out
}

// Duration returns the derived project duration in ms.
func (s *Store) Duration() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.duration
}

// CurrentTime returns the playhead position in ms.
func (s *Store) CurrentTime() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentTime
}

// Zoom returns the timeline view scale factor.
func (s *Store) Zoom() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.zoom
}

// SelectedClipID returns the selected clip id, empty if none.
func (s *Store) SelectedClipID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedClipID
}

// HasCollision reports whether a clip of the given span on the given track
// would overlap an existing clip, excluding excludeClipID. Half-open
// interval test: [start, start+duration) vs [c.start, c.end).
func (s *Store) HasCollision(trackID string, start, duration int64, excludeClipID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasCollisionLocked(trackID, start, duration, excludeClipID)
}

func (s *Store) hasCollisionLocked(trackID string, start, duration int64, excludeClipID string) bool {
	end := start + duration
	for _, c := range s.clips {
		if c.TrackID != trackID || c.ID == excludeClipID {
			continue
		}
		if start < c.End() && c.TimelineStart < end {
			return true
		}
	}
	return false
}

// ---------- track lifecycle ----------

// AddTrack appends a new track of the given type with a derived sequential
// display name. Orders are reassigned grouped by type priority
// (video < audio < text) after the append.
func (s *Store) AddTrack(trackType model.TrackType) (*model.Track, error) {
	s.mu.Lock()
	if !trackType.Valid() {
		s.mu.Unlock()
		return nil, ErrInvalidKind
	}
	sameType := 0
	for _, t := range s.tracks {
		if t.Type == trackType {
			sameType++
		}
	}
	if cap := s.caps.capFor(trackType); cap > 0 && sameType >= cap {
		s.mu.Unlock()
		return nil, ErrTrackCapReached
	}

	track := &model.Track{
		ID:    uuid.NewString(),
		Type:  trackType,
		Name:  fmt.Sprintf("%s %d", displayName(trackType), sameType+1),
		Order: len(s.tracks),
	}
	s.tracks = append(s.tracks, track)
	s.resortTracksLocked()
	dup := *track
	s.mu.Unlock()

	logger.Debug("track added",
		logger.String("trackId", dup.ID),
		logger.String("type", string(dup.Type)),
		logger.String("name", dup.Name))
	s.notify()
	return &dup, nil
}

// RemoveTrack deletes a track and cascades deletion of all its clips. The
// returned bool tells the caller whether any clips were removed, so a UI
// layer can gate a confirmation prompt. Selection is cleared if the
// selected clip was on the removed track.
func (s *Store) RemoveTrack(trackID string) (hadClips bool, err error) {
	s.mu.Lock()
	idx := -1
	for i, t := range s.tracks {
		if t.ID == trackID {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return false, ErrTrackNotFound
	}

	for id, c := range s.clips {
		if c.TrackID == trackID {
			hadClips = true
			if s.selectedClipID == id {
				s.selectedClipID = ""
			}
			delete(s.clips, id)
		}
	}
	s.tracks = append(s.tracks[:idx], s.tracks[idx+1:]...)
	s.resortTracksLocked()
	s.recomputeDurationLocked()
	s.mu.Unlock()

	logger.Debug("track removed",
		logger.String("trackId", trackID),
		logger.Bool("hadClips", hadClips))
	s.notify()
	return hadClips, nil
}

// RenameTrack sets a track's display name.
func (s *Store) RenameTrack(trackID, name string) error {
	s.mu.Lock()
	t := s.trackByID(trackID)
	if t == nil {
		s.mu.Unlock()
		return ErrTrackNotFound
	}
	t.Name = name
	s.mu.Unlock()
	s.notify()
	return nil
}

// SetTrackMuted toggles a track's mute flag.
func (s *Store) SetTrackMuted(trackID string, muted bool) error {
	s.mu.Lock()
	t := s.trackByID(trackID)
	if t == nil {
		s.mu.Unlock()
		return ErrTrackNotFound
	}
	t.Muted = muted
	s.mu.Unlock()
	s.notify()
	return nil
}

// SetTrackLocked toggles a track's lock flag. Clips on a locked track
// reject placement, move and resize.
func (s *Store) SetTrackLocked(trackID string, locked bool) error {
	s.mu.Lock()
	t := s.trackByID(trackID)
	if t == nil {
		s.mu.Unlock()
		return ErrTrackNotFound
	}
	t.Locked = locked
	s.mu.Unlock()
	s.notify()
	return nil
}

func (s *Store) trackByID(id string) *model.Track {
	for _, t := range s.tracks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// resortTracksLocked reassigns sequential orders grouped by type priority,
// preserving relative order within each type.
func (s *Store) resortTracksLocked() {
	sort.SliceStable(s.tracks, func(i, j int) bool {
		pi, pj := s.tracks[i].Type.TypePriority(), s.tracks[j].Type.TypePriority()
		if pi != pj {
			return pi < pj
		}
		return s.tracks[i].Order < s.tracks[j].Order
	})
	for i, t := range s.tracks {
		t.Order = i
	}
}

func displayName(t model.TrackType) string {
	switch t {
	case model.TrackTypeVideo:
		return "Video"
	case model.TrackTypeAudio:
		return "Audio"
	case model.TrackTypeText:
		return "Text"
	}
	return "Track"
}

// ---------- clip operations ----------

// AddClip places a media file on a track at the given timeline start. The
// required track type is resolved from the media type (video/image media
// need a video track, audio media an audio track). Duration is the media
// duration, or DefaultImageDuration for unbounded sources.
func (s *Store) AddClip(mediaFileID, trackID string, timelineStart int64) (*model.Clip, error) {
	s.mu.Lock()
	media, ok := s.media[mediaFileID]
	if !ok {
		s.mu.Unlock()
		return nil, ErrMediaNotFound
	}
	track := s.trackByID(trackID)
	if track == nil {
		s.mu.Unlock()
		return nil, ErrTrackNotFound
	}
	kind := media.Type.ClipKind()
	if track.Type != kind.TrackType() {
		s.mu.Unlock()
		return nil, ErrTrackTypeMismatch
	}
	if track.Locked {
		s.mu.Unlock()
		return nil, ErrTrackLocked
	}
	if timelineStart < 0 {
		s.mu.Unlock()
		return nil, ErrInvalidPlacement
	}

	duration := media.Duration
	if !media.Bounded() {
		duration = model.DefaultImageDuration
	}
	// A source shorter than the minimum clip length can never satisfy the
	// duration floor, so the placement itself is invalid.
	if duration < model.MinClipDuration {
		s.mu.Unlock()
		return nil, ErrInvalidPlacement
	}
	if s.hasCollisionLocked(trackID, timelineStart, duration, "") {
		s.mu.Unlock()
		return nil, ErrCollision
	}

	clip := &model.Clip{
		ID:            uuid.NewString(),
		Kind:          kind,
		TrackID:       trackID,
		TimelineStart: timelineStart,
		Duration:      duration,
		SourceID:      media.ID,
		SourceStart:   0,
		SourceEnd:     duration,
		Volume:        1,
		Opacity:       1,
	}
	s.clips[clip.ID] = clip
	s.recomputeDurationLocked()
	dup := clip.Clone()
	s.mu.Unlock()

	logger.Debug("clip added",
		logger.String("clipId", dup.ID),
		logger.String("trackId", trackID),
		logger.Int64("start", timelineStart),
		logger.Int64("duration", duration))
	s.notify()
	return dup, nil
}

// AddTextClip places an inline text clip on a text track.
func (s *Store) AddTextClip(trackID string, timelineStart int64, text string) (*model.Clip, error) {
	s.mu.Lock()
	track := s.trackByID(trackID)
	if track == nil {
		s.mu.Unlock()
		return nil, ErrTrackNotFound
	}
	if track.Type != model.TrackTypeText {
		s.mu.Unlock()
		return nil, ErrTrackTypeMismatch
	}
	if track.Locked {
		s.mu.Unlock()
		return nil, ErrTrackLocked
	}
	if timelineStart < 0 {
		s.mu.Unlock()
		return nil, ErrInvalidPlacement
	}
	if s.hasCollisionLocked(trackID, timelineStart, defaultTextDuration, "") {
		s.mu.Unlock()
		return nil, ErrCollision
	}

	clip := &model.Clip{
		ID:            uuid.NewString(),
		Kind:          model.ClipKindText,
		TrackID:       trackID,
		TimelineStart: timelineStart,
		Duration:      defaultTextDuration,
		Text:          text,
		FontSize:      48,
		FontColor:     "#ffffff",
		PosX:          0.5,
		PosY:          0.5,
	}
	s.clips[clip.ID] = clip
	s.recomputeDurationLocked()
	dup := clip.Clone()
	s.mu.Unlock()

	s.notify()
	return dup, nil
}

// MoveClip relocates a clip to a new track and start time. The update is
// atomic: either the whole new placement is committed or nothing changes.
func (s *Store) MoveClip(clipID, newTrackID string, newStart int64) error {
	s.mu.Lock()
	clip, ok := s.clips[clipID]
	if !ok {
		s.mu.Unlock()
		return ErrClipNotFound
	}
	src := s.trackByID(clip.TrackID)
	dst := s.trackByID(newTrackID)
	if dst == nil {
		s.mu.Unlock()
		return ErrTrackNotFound
	}
	if dst.Type != clip.Kind.TrackType() {
		s.mu.Unlock()
		return ErrTrackTypeMismatch
	}
	if (src != nil && src.Locked) || dst.Locked {
		s.mu.Unlock()
		return ErrTrackLocked
	}
	if newStart < 0 {
		s.mu.Unlock()
		return ErrInvalidPlacement
	}
	if s.hasCollisionLocked(newTrackID, newStart, clip.Duration, clipID) {
		s.mu.Unlock()
		return ErrCollision
	}

	clip.TrackID = newTrackID
	clip.TimelineStart = newStart
	s.recomputeDurationLocked()
	s.mu.Unlock()

	logger.Debug("clip moved",
		logger.String("clipId", clipID),
		logger.String("trackId", newTrackID),
		logger.Int64("start", newStart))
	s.notify()
	return nil
}

// RemoveClip deletes a clip. Selection is cleared if it pointed to the clip.
func (s *Store) RemoveClip(clipID string) error {
	s.mu.Lock()
	if _, ok := s.clips[clipID]; !ok {
		s.mu.Unlock()
		return ErrClipNotFound
	}
	delete(s.clips, clipID)
	if s.selectedClipID == clipID {
		s.selectedClipID = ""
	}
	s.recomputeDurationLocked()
	s.mu.Unlock()

	s.notify()
	return nil
}

// ---------- media lifecycle ----------

// AddMediaFile registers an imported asset. The probe result (type,
// duration, dimensions) must already be resolved by the caller.
func (s *Store) AddMediaFile(mf *model.MediaFile) (*model.MediaFile, error) {
	if mf.Type.ClipKind() == "" {
		return nil, ErrInvalidKind
	}
	s.mu.Lock()
	dup := *mf
	if dup.ID == "" {
		dup.ID = uuid.NewString()
	}
	s.media[dup.ID] = &dup
	out := dup
	s.mu.Unlock()

	logger.Debug("media file added",
		logger.String("mediaId", out.ID),
		logger.String("type", string(out.Type)),
		logger.Int64("duration", out.Duration))
	s.notify()
	return &out, nil
}

// RemoveMediaFile drops an asset and cascades deletion of every clip that
// references it.
func (s *Store) RemoveMediaFile(id string) error {
	s.mu.Lock()
	if _, ok := s.media[id]; !ok {
		s.mu.Unlock()
		return ErrMediaNotFound
	}
	delete(s.media, id)
	for clipID, c := range s.clips {
		if c.SourceID == id {
			if s.selectedClipID == clipID {
				s.selectedClipID = ""
			}
			delete(s.clips, clipID)
		}
	}
	s.recomputeDurationLocked()
	s.mu.Unlock()

	s.notify()
	return nil
}

// ---------- simple setters ----------

// SelectClip marks a clip as selected; an empty id clears the selection.
func (s *Store) SelectClip(clipID string) error {
	s.mu.Lock()
	if clipID != "" {
		if _, ok := s.clips[clipID]; !ok {
			s.mu.Unlock()
			return ErrClipNotFound
		}
	}
	s.selectedClipID = clipID
	s.mu.Unlock()
	s.notify()
	return nil
}

// SetCurrentTime moves the playhead, clamped to >= 0.
func (s *Store) SetCurrentTime(ms int64) {
	s.mu.Lock()
	if ms < 0 {
		ms = 0
	}
	s.currentTime = ms
	s.mu.Unlock()
}

// SetZoom sets the view scale factor, clamped to [MinZoom, MaxZoom].
func (s *Store) SetZoom(z float64) {
	s.mu.Lock()
	s.zoom = clampZoom(z)
	s.mu.Unlock()
	s.notify()
}

// ZoomIn increases the zoom by one step.
func (s *Store) ZoomIn() { s.stepZoom(model.ZoomStep) }

// ZoomOut decreases the zoom by one step.
func (s *Store) ZoomOut() { s.stepZoom(-model.ZoomStep) }

func (s *Store) stepZoom(delta float64) {
	s.mu.Lock()
	s.zoom = clampZoom(s.zoom + delta)
	s.mu.Unlock()
	s.notify()
}

func clampZoom(z float64) float64 {
	if z < model.MinZoom {
		return model.MinZoom
	}
	if z > model.MaxZoom {
		return model.MaxZoom
	}
	return z
}

// ---------- project lifecycle ----------

// Reset drops all tracks, clips and media and rewinds the playhead. Any
// transient resources bound to media files must be released by listeners.
func (s *Store) Reset() {
	s.mu.Lock()
	s.tracks = nil
	s.clips = make(map[string]*model.Clip)
	s.media = make(map[string]*model.MediaFile)
	s.duration = 0
	s.currentTime = 0
	s.selectedClipID = ""
	s.zoom = 1.0
	s.mu.Unlock()
	s.notify()
}

// Load replaces the whole store state with a persisted project. The
// derived duration is recomputed rather than trusted from the snapshot.
func (s *Store) Load(p *model.Project) {
	s.mu.Lock()
	s.tracks = nil
	s.clips = make(map[string]*model.Clip, len(p.Clips))
	s.media = make(map[string]*model.MediaFile, len(p.MediaFiles))
	for _, t := range p.Tracks {
		dup := *t
		s.tracks = append(s.tracks, &dup)
	}
	for _, c := range p.Clips {
		s.clips[c.ID] = c.Clone()
	}
	for _, m := range p.MediaFiles {
		dup := *m
		s.media[dup.ID] = &dup
	}
	s.selectedClipID = ""
	s.currentTime = 0
	s.resortTracksLocked()
	s.recomputeDurationLocked()
	s.mu.Unlock()
	s.notify()
}

// Snapshot returns the current state in persisted-project form.
func (s *Store) Snapshot() *model.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &model.Project{Duration: s.duration}
	for _, t := range s.tracks {
		dup := *t
		p.Tracks = append(p.Tracks, &dup)
	}
	for _, c := range s.clips {
		p.Clips = append(p.Clips, c.Clone())
	}
	for _, m := range s.media {
		dup := *m
		p.MediaFiles = append(p.MediaFiles, &dup)
	}
	sort.Slice(p.Clips, func(i, j int) bool {
		if p.Clips[i].TrackID != p.Clips[j].TrackID {
			return p.Clips[i].TrackID < p.Clips[j].TrackID
		}
		return p.Clips[i].TimelineStart < p.Clips[j].TimelineStart
	})
	return p
}

// recomputeDurationLocked runs after every structural mutation so derived
// state is consistent before the mutating call returns.
func (s *Store) recomputeDurationLocked() {
	var max int64
	for _, c := range s.clips {
		if end := c.End(); end > max {
			max = end
		}
	}
	s.duration = max
}
