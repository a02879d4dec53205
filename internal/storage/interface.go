package storage

import "context"

// Archiver copies finished outputs to object storage
type Archiver interface {
	// Upload stores localPath under <prefix>/<group>/<basename> and returns
	// the object URI
	Upload(ctx context.Context, localPath, group string) (string, error)
}
