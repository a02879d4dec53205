package speaker

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

type request struct {
	Action           string    `json:"action"`
	Name             string    `json:"name,omitempty"`
	AudioPath        string    `json:"audio_path,omitempty"`
	Segments         []Segment `json:"segments,omitempty"`
	ProfilesDir      string    `json:"profiles_dir,omitempty"`
	Threshold        float64   `json:"threshold,omitempty"`
	HuggingFaceToken string    `json:"huggingface_token,omitempty"`
}

type response struct {
	Success          bool               `json:"success"`
	Error            string             `json:"error"`
	ErrorType        string             `json:"error_type"`
	Message          string             `json:"message"`
	SpeakerMapping   map[string]*string `json:"speaker_mapping"`
	ConfidenceScores map[string]float64 `json:"confidence_scores"`
	Profiles         []Profile          `json:"profiles"`
	Missing          []string           `json:"missing"`
	ProfileID        string             `json:"profile_id"`
	Name             string             `json:"name"`
	Duration         *float64           `json:"sample_duration_seconds"`
}

// ProcessError is a failure reported by the voice-matching process itself
type ProcessError struct {
	Type    string
	Message string
}

func (e *ProcessError) Error() string {
	if e.Type == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (m *implMatcher) Check(ctx context.Context) error {
	resp, err := m.call(ctx, request{Action: "check", HuggingFaceToken: m.opts.HuggingFaceToken})
	if err != nil {
		return err
	}
	if len(resp.Missing) > 0 {
		m.logger.Warn(ctx, "Voice matcher is missing dependencies: %s", strings.Join(resp.Missing, ", "))
	}
	return nil
}

// Identify groups segments by label and asks the process for the closest
// enrolled profile per label
func (m *implMatcher) Identify(ctx context.Context, audioPath string, segments []Segment) (Match, error) {
	resp, err := m.call(ctx, request{
		Action:           "identify",
		AudioPath:        audioPath,
		Segments:         segments,
		ProfilesDir:      m.opts.ProfilesDir,
		Threshold:        m.opts.Threshold,
		HuggingFaceToken: m.opts.HuggingFaceToken,
	})
	if err != nil {
		return Match{}, err
	}

	match := Match{
		Names:      make(map[string]string),
		Confidence: resp.ConfidenceScores,
		Message:    resp.Message,
	}
	for id, name := range resp.SpeakerMapping {
		if name != nil && *name != "" {
			match.Names[id] = *name
		}
	}
	if match.Confidence == nil {
		match.Confidence = map[string]float64{}
	}
	return match, nil
}

func (m *implMatcher) List(ctx context.Context) ([]Profile, error) {
	resp, err := m.call(ctx, request{Action: "list", ProfilesDir: m.opts.ProfilesDir})
	if err != nil {
		return nil, err
	}
	return resp.Profiles, nil
}

func (m *implMatcher) Enroll(ctx context.Context, name, audioPath string) (Profile, error) {
	if strings.TrimSpace(name) == "" {
		return Profile{}, fmt.Errorf("profile name is required")
	}
	resp, err := m.call(ctx, request{
		Action:           "enroll",
		Name:             name,
		AudioPath:        audioPath,
		ProfilesDir:      m.opts.ProfilesDir,
		HuggingFaceToken: m.opts.HuggingFaceToken,
	})
	if err != nil {
		return Profile{}, err
	}
	p := Profile{ID: resp.ProfileID, Name: resp.Name, DisplayName: resp.Name}
	if resp.Duration != nil {
		p.Duration = *resp.Duration
	}
	m.logger.Info(ctx, "Enrolled voice profile %s (%s)", p.Name, p.ID)
	return p, nil
}

func (m *implMatcher) Delete(ctx context.Context, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("profile name is required")
	}
	if _, err := m.call(ctx, request{Action: "delete", Name: name, ProfilesDir: m.opts.ProfilesDir}); err != nil {
		return err
	}
	m.logger.Info(ctx, "Deleted voice profile %s", name)
	return nil
}

// call writes one JSON request to the process and decodes its reply. The
// process prints a JSON error and exits non-zero on failure, so stdout is
// decoded before the exit status is considered.
func (m *implMatcher) call(ctx context.Context, req request) (response, error) {
	if m.opts.ScriptPath == "" {
		return response{}, fmt.Errorf("voice matcher script is not configured")
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return response{}, fmt.Errorf("encode request: %w", err)
	}

	m.logger.Debug(ctx, "Voice matcher %s request", req.Action)
	out, runErr := m.executor.ExecuteWithInput(ctx, payload, m.opts.PythonPath, m.opts.ScriptPath)

	var resp response
	if err := json.Unmarshal([]byte(lastJSONLine(out)), &resp); err != nil {
		if runErr != nil {
			return response{}, fmt.Errorf("voice matcher %s: %w", req.Action, runErr)
		}
		return response{}, fmt.Errorf("decode voice matcher reply: %w", err)
	}
	if !resp.Success {
		msg := resp.Error
		if msg == "" {
			msg = "voice matcher reported failure"
		}
		return response{}, &ProcessError{Type: resp.ErrorType, Message: msg}
	}
	return resp, nil
}

// lastJSONLine skips any library chatter printed before the reply
func lastJSONLine(out string) string {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if strings.HasPrefix(line, "{") {
			return line
		}
	}
	return strings.TrimSpace(out)
}

// SegmentsFromLabels converts labelled spans, normalizing "Speaker N" labels
// to the "speaker_N" ids the process expects. The returned map translates ids
// back to the original labels.
func SegmentsFromLabels(spans []Segment) ([]Segment, map[string]string) {
	out := make([]Segment, 0, len(spans))
	back := make(map[string]string)
	for _, s := range spans {
		if s.SpeakerID == "" {
			continue
		}
		id := normalizeID(s.SpeakerID)
		back[id] = s.SpeakerID
		out = append(out, Segment{SpeakerID: id, Start: s.Start, End: s.End})
	}
	return out, back
}

func normalizeID(label string) string {
	label = strings.TrimSpace(label)
	if rest, ok := strings.CutPrefix(label, "Speaker "); ok {
		return "speaker_" + rest
	}
	return label
}
