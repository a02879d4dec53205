package processor

import "context"

// Router performs the work for one locked, queued file
type Router interface {
	Process(ctx context.Context, path string, opts Options) (Result, error)
}

// Options are the processing settings of the watch directory a file came from
type Options struct {
	Service          string
	Model            string
	MinSpeakers      int
	MaxSpeakers      int
	Compress         bool
	IdentifySpeakers bool
}

// Result describes a successful run
type Result struct {
	FinalName        string
	CompressedPath   string
	TempDir          string
	DestinationPaths []string
	Service          string
	Model            string
	Sizes            Sizes
}

type Sizes struct {
	OriginalBytes   int64
	CompressedBytes int64
}
