package timeline

// PlayMode identifies which playback elements the transport is driving
type PlayMode string

const (
	PlayNone  PlayMode = "none"
	PlayVideo PlayMode = "video"
	PlayAudio PlayMode = "audio"
	PlayAll   PlayMode = "all"
)

// State is the single owned aggregate of one editing session: the ordered
// clip list, the audio tracks (practically zero or one), the playhead and
// the selection. TotalDuration is derived, never stored.
type State struct {
	Clips       []*Clip
	AudioTracks []*AudioTrack

	CurrentTime float64
	IsPlaying   bool
	PlayMode    PlayMode

	SelectedClipID  string
	SelectedAudioID string
}

// NewState creates an empty editing session state
func NewState() *State {
	return &State{PlayMode: PlayNone}
}

// TotalDuration derives the composition length from the current entities
func (s *State) TotalDuration() float64 {
	return TotalDuration(s.Clips, s.AudioTracks)
}

// VideoSpan derives the overlap-adjusted video length
func (s *State) VideoSpan() float64 {
	return VideoSpan(s.Clips)
}

// AudioSpan derives the furthest audio end position
func (s *State) AudioSpan() float64 {
	return AudioSpan(s.AudioTracks)
}

// SelectClip marks a clip selected and clears any audio selection
func (s *State) SelectClip(id string) {
	s.SelectedClipID = id
	s.SelectedAudioID = ""
}

// SelectAudio marks an audio track selected and clears any clip selection
func (s *State) SelectAudio(id string) {
	s.SelectedAudioID = id
	s.SelectedClipID = ""
}

// ClearSelection drops both selections
func (s *State) ClearSelection() {
	s.SelectedClipID = ""
	s.SelectedAudioID = ""
}

// ClipIndex returns the position of the clip with the given ID, or -1
func (s *State) ClipIndex(id string) int {
	for i, c := range s.Clips {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// AudioIndex returns the position of the audio track with the given ID, or -1
func (s *State) AudioIndex(id string) int {
	for i, t := range s.AudioTracks {
		if t.ID == id {
			return i
		}
	}
	return -1
}
