package container

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/moby/buildkit/client"
	"github.com/moby/buildkit/client/llb"
	"github.com/moby/buildkit/util/progress/progressui"
	"github.com/tonistiigi/fsutil"
	"golang.org/x/sync/errgroup"

	"github.com/majorcontext/plugbuild/internal/log"
)

// BuildKitRuntime implements Runtime by compiling plans to LLB and solving
// them on a BuildKit daemon.
type BuildKitRuntime struct {
	addr string
	out  io.Writer
}

// NewBuildKitRuntime creates a runtime for the daemon at addr
// (e.g. "tcp://buildkit:1234"). Progress is written to out (os.Stdout when nil).
func NewBuildKitRuntime(addr string, out io.Writer) (*BuildKitRuntime, error) {
	if addr == "" {
		return nil, fmt.Errorf("buildkit address not set (BUILDKIT_HOST)")
	}
	if out == nil {
		out = os.Stdout
	}
	return &BuildKitRuntime{addr: addr, out: out}, nil
}

// Type returns RuntimeBuildKit.
func (r *BuildKitRuntime) Type() RuntimeType {
	return RuntimeBuildKit
}

// Ping checks that the daemon answers and has at least one worker.
func (r *BuildKitRuntime) Ping(ctx context.Context) error {
	c, err := client.New(ctx, r.addr)
	if err != nil {
		return fmt.Errorf("connecting to buildkit at %s: %w", r.addr, err)
	}
	defer c.Close()

	workers, err := c.ListWorkers(ctx)
	if err != nil {
		return fmt.Errorf("buildkit at %s not accessible: %w", r.addr, err)
	}
	if len(workers) == 0 {
		return fmt.Errorf("buildkit at %s has no workers", r.addr)
	}
	return nil
}

// Close is a no-op; connections are opened per solve.
func (r *BuildKitRuntime) Close() error {
	return nil
}

// Run solves plan without exporting anything.
func (r *BuildKitRuntime) Run(ctx context.Context, plan *Plan) error {
	locals := map[string]fsutil.FS{}
	st, err := compile(plan, locals)
	if err != nil {
		return err
	}
	return r.solve(ctx, st, locals, nil)
}

// Export solves plan and writes src into destDir through the local exporter.
func (r *BuildKitRuntime) Export(ctx context.Context, plan *Plan, src, destDir string) error {
	locals := map[string]fsutil.FS{}
	st, err := compile(plan, locals)
	if err != nil {
		return err
	}
	out := llb.Scratch().File(llb.Copy(st, src, "/", &llb.CopyInfo{
		CopyDirContentsOnly: true,
	}))
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("create %s: %w", destDir, err)
	}
	return r.solve(ctx, out, locals, []client.ExportEntry{{
		Type:      client.ExporterLocal,
		OutputDir: destDir,
	}})
}

func (r *BuildKitRuntime) solve(ctx context.Context, st llb.State, locals map[string]fsutil.FS, exports []client.ExportEntry) error {
	def, err := st.Marshal(ctx)
	if err != nil {
		return fmt.Errorf("marshaling build definition: %w", err)
	}

	c, err := client.New(ctx, r.addr)
	if err != nil {
		return fmt.Errorf("connecting to buildkit at %s: %w", r.addr, err)
	}
	defer c.Close()

	ch := make(chan *client.SolveStatus)
	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		display, err := progressui.NewDisplay(r.out, progressui.AutoMode)
		if err != nil {
			return err
		}
		_, err = display.UpdateFrom(ctx, ch)
		return err
	})

	eg.Go(func() error {
		_, err := c.Solve(ctx, def, client.SolveOpt{
			LocalMounts: locals,
			Exports:     exports,
		}, ch)
		return err
	})

	if err := eg.Wait(); err != nil {
		return fmt.Errorf("buildkit solve failed: %w", err)
	}
	return nil
}

// compile translates plan into an LLB state. Host directories and files are
// registered in locals under generated names.
func compile(plan *Plan, locals map[string]fsutil.FS) (llb.State, error) {
	st := llb.Image(plan.image)
	if plan.workdir != "" {
		st = st.Dir(plan.workdir)
	}
	for _, e := range plan.env {
		st = st.AddEnv(e.Name, e.Value)
	}

	for _, d := range plan.dirs {
		name, err := addLocal(locals, d.HostDir)
		if err != nil {
			return llb.State{}, err
		}
		st = st.File(llb.Copy(llb.Local(name, llb.ExcludePatterns([]string{".git"})), "/", d.Path, &llb.CopyInfo{
			CopyDirContentsOnly: true,
			CreateDestPath:      true,
		}))
	}

	for _, fm := range plan.files {
		var (
			srcState llb.State
			srcPath  string
		)
		if fm.File.plan == nil {
			name, err := addLocal(locals, filepath.Dir(fm.File.hostPath))
			if err != nil {
				return llb.State{}, err
			}
			base := filepath.Base(fm.File.hostPath)
			srcState = llb.Local(name, llb.IncludePatterns([]string{base}))
			srcPath = "/" + base
		} else {
			var err error
			if srcState, err = compile(fm.File.plan, locals); err != nil {
				return llb.State{}, err
			}
			srcPath = fm.File.path
		}
		st = st.File(llb.Copy(srcState, srcPath, fm.Path, &llb.CopyInfo{CreateDestPath: true}))
	}

	for _, step := range plan.steps {
		st = st.Run(llb.Args(step.Args), llb.WithCustomName(step.String())).Root()
	}
	return st, nil
}

func addLocal(locals map[string]fsutil.FS, dir string) (string, error) {
	name := fmt.Sprintf("local-%d-%s", len(locals), path.Base(filepath.ToSlash(dir)))
	fs, err := fsutil.NewFS(dir)
	if err != nil {
		return "", fmt.Errorf("opening %s for buildkit: %w", dir, err)
	}
	locals[name] = fs
	log.Debug("registered buildkit local", "name", name, "dir", dir)
	return name, nil
}
