package speaker

import "context"

// Matcher maps generic speaker labels to enrolled voice profiles using an
// external voice-matching process
type Matcher interface {
	Check(ctx context.Context) error
	Identify(ctx context.Context, audioPath string, segments []Segment) (Match, error)
	List(ctx context.Context) ([]Profile, error)
	// Enroll stores a voice profile for name from a sample recording
	Enroll(ctx context.Context, name, audioPath string) (Profile, error)
	// Delete removes the profile matching name by id or display name
	Delete(ctx context.Context, name string) error
}

// Segment is a span of audio attributed to one generic label
type Segment struct {
	SpeakerID string  `json:"speaker_id"`
	Start     float64 `json:"start"`
	End       float64 `json:"end"`
}

// Match is the result of Identify. Labels with no confident match are absent
// from Names.
type Match struct {
	Names      map[string]string
	Confidence map[string]float64
	Message    string
}

// Profile is an enrolled voice
type Profile struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	DisplayName string  `json:"display_name"`
	CreatedAt   string  `json:"created_at"`
	Duration    float64 `json:"sample_duration_seconds"`
}
