// Package sandbox provisions isolated Docker containers for judge runs and
// moves files and commands in and out of them.
package sandbox

import (
	"context"
	"sync"
	"time"

	"judgemicro/internal/judge/model"
)

// Handle identifies one acquired sandbox. It is valid until Release.
type Handle struct {
	ID       string
	Language model.Language
	Image    string

	releaseOnce sync.Once
}

// ExecResult captures one command run inside a sandbox.
type ExecResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
	// Killed reports that the outer wall deadline fired and the sandbox
	// was destroyed mid-command.
	Killed bool
	Wall   time.Duration
}

// Manager provisions sandboxes. Implementations must make Release idempotent
// and safe to call from a defer regardless of how far acquisition got.
type Manager interface {
	Acquire(ctx context.Context, lang model.Language, limits model.ResourceLimits) (*Handle, error)
	Upload(ctx context.Context, h *Handle, name string, data []byte) error
	Exec(ctx context.Context, h *Handle, cmd []string, deadline time.Duration) (ExecResult, error)
	Download(ctx context.Context, h *Handle, path string) ([]byte, error)
	Release(ctx context.Context, h *Handle) error
}
