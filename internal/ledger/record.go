package ledger

import "time"

// Status is the terminal outcome of one processing attempt
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Record is one immutable line of the ledger file
type Record struct {
	ProcessedAt      time.Time  `json:"processedAt"`
	SourcePath       string     `json:"sourcePath,omitempty"`
	SourceName       string     `json:"sourceName,omitempty"`
	Status           Status     `json:"status"`
	DestinationPaths []string   `json:"destinationPaths,omitempty"`
	Service          string     `json:"service,omitempty"`
	Model            string     `json:"model,omitempty"`
	Sizes            *Sizes     `json:"sizes,omitempty"`
	AttemptNumber    int        `json:"attemptNumber,omitempty"`
	Error            *ErrorInfo `json:"error,omitempty"`
	RunID            string     `json:"runId,omitempty"`
}

// Sizes captures file sizes before and after compression
type Sizes struct {
	OriginalBytes   int64 `json:"originalBytes,omitempty"`
	CompressedBytes int64 `json:"compressedBytes,omitempty"`
}

// ErrorInfo is the serialized form of a processing failure
type ErrorInfo struct {
	Message string `json:"message"`
	Type    string `json:"type,omitempty"`
	Code    string `json:"code,omitempty"`
	Service string `json:"service,omitempty"`
}

// Success describes a successful attempt to append
type Success struct {
	SourcePath       string
	DestinationPaths []string
	Service          string
	Model            string
	Sizes            *Sizes
}

// Failure describes a failed attempt to append
type Failure struct {
	SourcePath    string
	AttemptNumber int
	Error         ErrorInfo
	Service       string
	Model         string
}

// key identifies the file a record refers to: its path, or its name for
// legacy records without one
func (r Record) key() string {
	if r.SourcePath != "" {
		return r.SourcePath
	}
	return r.SourceName
}
