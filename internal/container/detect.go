package container

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/majorcontext/plugbuild/internal/log"
)

// pingTimeout bounds the reachability check made when a runtime is created.
const pingTimeout = 5 * time.Second

// NewRuntime creates the requested runtime. RuntimeAuto prefers BuildKit when
// BUILDKIT_HOST is set and reachable, falling back to Docker.
func NewRuntime(kind RuntimeType, out io.Writer) (Runtime, error) {
	switch kind {
	case RuntimeBuildKit:
		rt, err := NewBuildKitRuntime(os.Getenv("BUILDKIT_HOST"), out)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrNoRuntime, err)
		}
		return pinged(rt)
	case RuntimeDocker:
		return newDocker(out)
	case RuntimeAuto, "":
		if rt, reason := tryBuildKit(out); rt != nil {
			return rt, nil
		} else if reason != "" {
			log.Info(reason)
		}
		return newDocker(out)
	default:
		return nil, fmt.Errorf("unknown runtime %q (want auto, docker, or buildkit)", kind)
	}
}

func newDocker(out io.Writer) (Runtime, error) {
	rt, err := NewDockerRuntime(out)
	if err != nil {
		return nil, fmt.Errorf("%w: Docker error: %w", ErrNoRuntime, err)
	}
	return pinged(rt)
}

func pinged(rt Runtime) (Runtime, error) {
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := rt.Ping(ctx); err != nil {
		rt.Close()
		return nil, fmt.Errorf("%w: %w", ErrNoRuntime, err)
	}
	log.Debug("using container runtime", "runtime", rt.Type())
	return rt, nil
}

// tryBuildKit returns (runtime, "") on success, (nil, reason) when BuildKit is
// configured but unusable, or (nil, "") when it is not configured.
func tryBuildKit(out io.Writer) (Runtime, string) {
	addr := os.Getenv("BUILDKIT_HOST")
	if addr == "" {
		return nil, ""
	}
	rt, err := NewBuildKitRuntime(addr, out)
	if err != nil {
		return nil, fmt.Sprintf("BuildKit not available, falling back to Docker: %v", err)
	}
	ready, err := pinged(rt)
	if err != nil {
		return nil, fmt.Sprintf("BuildKit at %s not reachable, falling back to Docker: %v", addr, err)
	}
	return ready, ""
}
