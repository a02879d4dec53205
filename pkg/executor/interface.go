package executor

import "context"

// Executor runs external commands and returns their stdout
type Executor interface {
	Execute(ctx context.Context, name string, args ...string) (string, error)
	ExecuteInDir(ctx context.Context, dir string, name string, args ...string) (string, error)
	// ExecuteWithInput writes stdin to the command before collecting stdout
	ExecuteWithInput(ctx context.Context, stdin []byte, name string, args ...string) (string, error)
}
