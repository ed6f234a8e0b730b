// Package container runs Plans on a container runtime. Docker is the
// default backend; BuildKit is used when a BuildKit daemon is configured.
package container

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// RuntimeType identifies the container runtime being used.
type RuntimeType string

const (
	RuntimeAuto     RuntimeType = "auto"
	RuntimeDocker   RuntimeType = "docker"
	RuntimeBuildKit RuntimeType = "buildkit"
)

// ErrNoRuntime is returned when no container runtime can be reached.
var ErrNoRuntime = errors.New("no container runtime available")

// Runtime executes Plans.
type Runtime interface {
	// Type returns the runtime type.
	Type() RuntimeType

	// Ping verifies the runtime is accessible.
	Ping(ctx context.Context) error

	// Run executes every step of plan, streaming step output to the
	// runtime's writer. A step exiting non-zero stops the plan.
	Run(ctx context.Context, plan *Plan) error

	// Export runs plan and copies src out of the resulting filesystem into
	// the host directory destDir. A directory's contents are copied; a file
	// is written as destDir/<base name>.
	Export(ctx context.Context, plan *Plan, src, destDir string) error

	// Close releases runtime resources.
	Close() error
}

// ExitError reports a plan step that exited non-zero.
type ExitError struct {
	Step   Step
	Code   int64
	Output string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("step %q exited with code %d", e.Step.String(), e.Code)
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += ": " + lastLine(out)
	}
	return msg
}

func lastLine(s string) string {
	if i := strings.LastIndex(s, "\n"); i >= 0 {
		return s[i+1:]
	}
	return s
}
