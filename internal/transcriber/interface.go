package transcriber

import "context"

// Transcriber turns an audio file into a timed transcript
type Transcriber interface {
	Transcribe(ctx context.Context, req Request) (Transcript, error)
	Name() string
}

// Request carries the per-directory options relevant to transcription
type Request struct {
	AudioPath   string
	Model       string
	MinSpeakers int
	MaxSpeakers int
}
