package watcher

import (
	"context"

	"github.com/nguyentantai21042004/summarai/internal/media"
)

// Watcher monitors directory trees and reports files once they stop changing
type Watcher interface {
	Start(ctx context.Context) error
	Stop() error
}

// ArrivalHandler receives each stable, accepted file
type ArrivalHandler func(ctx context.Context, file media.CandidateFile)
