package container

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/containerd/errdefs"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"

	"github.com/majorcontext/plugbuild/internal/id"
	"github.com/majorcontext/plugbuild/internal/log"
	"github.com/majorcontext/plugbuild/internal/ui"
)

// planLabel marks containers created for plans so leftovers can be found.
// Its value is the container name.
const planLabel = "dev.plugbuild.plan"

// idleCommand keeps a plan container alive while steps run through exec.
var idleCommand = []string{"/bin/sh", "-c", "trap 'exit 0' TERM; while :; do sleep 1; done"}

// DockerRuntime implements Runtime using the Docker Engine API. Each plan
// runs in one container: inputs are copied in, steps run as execs, and
// outputs are copied out before the container is removed.
type DockerRuntime struct {
	cli *client.Client
	out io.Writer
}

// NewDockerRuntime creates a Docker runtime that streams step output to out
// (os.Stdout when nil).
func NewDockerRuntime(out io.Writer) (*DockerRuntime, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("creating docker client: %w", err)
	}
	if out == nil {
		out = os.Stdout
	}
	return &DockerRuntime{cli: cli, out: out}, nil
}

// Type returns RuntimeDocker.
func (r *DockerRuntime) Type() RuntimeType {
	return RuntimeDocker
}

// Ping verifies the Docker daemon is accessible.
func (r *DockerRuntime) Ping(ctx context.Context) error {
	if _, err := r.cli.Ping(ctx); err != nil {
		return fmt.Errorf("docker daemon not accessible: %w", err)
	}
	return nil
}

// Close releases Docker client resources.
func (r *DockerRuntime) Close() error {
	return r.cli.Close()
}

// Run executes plan in a fresh container.
func (r *DockerRuntime) Run(ctx context.Context, plan *Plan) error {
	cid, err := r.realize(ctx, plan)
	if cid != "" {
		defer r.remove(cid)
	}
	return err
}

// Export executes plan and copies src out to destDir.
func (r *DockerRuntime) Export(ctx context.Context, plan *Plan, src, destDir string) error {
	cid, err := r.realize(ctx, plan)
	if cid != "" {
		defer r.remove(cid)
	}
	if err != nil {
		return err
	}

	reader, stat, err := r.cli.CopyFromContainer(ctx, cid, src)
	if err != nil {
		if errdefs.IsNotFound(err) {
			return fmt.Errorf("%s not found in %s: %w", src, plan.image, err)
		}
		return fmt.Errorf("copying %s from container: %w", src, err)
	}
	defer reader.Close()

	log.Debug("exporting from container", "container", shortID(cid), "src", src, "dest", destDir, "dir", stat.Mode.IsDir())
	if err := extractTar(reader, destDir, stat.Mode.IsDir()); err != nil {
		return fmt.Errorf("exporting %s: %w", src, err)
	}
	return nil
}

// realize creates a container for plan, copies its inputs in, and runs its
// steps. The returned ID is set whenever a container was created, even on
// error, so the caller can remove it.
func (r *DockerRuntime) realize(ctx context.Context, plan *Plan) (string, error) {
	// Resolve files produced by other plans before creating this container.
	type staged struct {
		dest string
		data []byte
		mode int64
	}
	var files []staged
	for _, fm := range plan.files {
		data, mode, err := r.readFile(ctx, fm.File)
		if err != nil {
			return "", err
		}
		files = append(files, staged{dest: fm.Path, data: data, mode: mode})
	}

	if err := r.ensureImage(ctx, plan.image); err != nil {
		return "", err
	}

	name := id.New("plugbuild")
	resp, err := r.cli.ContainerCreate(ctx,
		&container.Config{
			Image:      plan.image,
			Entrypoint: idleCommand,
			WorkingDir: plan.workdir,
			Env:        plan.envList(),
			Labels:     map[string]string{planLabel: name},
		},
		&container.HostConfig{
			NetworkMode: "bridge",
		},
		nil, // network config
		nil, // platform
		name,
	)
	if err != nil {
		return "", fmt.Errorf("creating container from %s: %w", plan.image, err)
	}
	cid := resp.ID
	log.Debug("created plan container", "container", name, "id", shortID(cid), "image", plan.image)

	if err := r.cli.ContainerStart(ctx, cid, container.StartOptions{}); err != nil {
		return cid, fmt.Errorf("starting container: %w", err)
	}

	for _, d := range plan.dirs {
		archive, err := tarDirectory(d.HostDir)
		if err != nil {
			return cid, err
		}
		if err := r.copyIn(ctx, cid, d.Path, archive); err != nil {
			return cid, err
		}
	}
	for _, f := range files {
		archive, err := tarFile(path.Base(f.dest), f.data, f.mode)
		if err != nil {
			return cid, fmt.Errorf("archiving %s: %w", f.dest, err)
		}
		if err := r.copyIn(ctx, cid, path.Dir(f.dest), archive); err != nil {
			return cid, err
		}
	}

	for _, step := range plan.steps {
		if err := r.exec(ctx, cid, plan, step); err != nil {
			return cid, err
		}
	}
	return cid, nil
}

// readFile returns the content and permission bits of f.
func (r *DockerRuntime) readFile(ctx context.Context, f File) ([]byte, int64, error) {
	if f.plan == nil {
		data, err := os.ReadFile(f.hostPath)
		if err != nil {
			return nil, 0, fmt.Errorf("reading %s: %w", f.hostPath, err)
		}
		info, err := os.Stat(f.hostPath)
		if err != nil {
			return nil, 0, fmt.Errorf("stat %s: %w", f.hostPath, err)
		}
		return data, int64(info.Mode().Perm()), nil
	}

	cid, err := r.realize(ctx, f.plan)
	if cid != "" {
		defer r.remove(cid)
	}
	if err != nil {
		return nil, 0, err
	}
	reader, _, err := r.cli.CopyFromContainer(ctx, cid, f.path)
	if err != nil {
		return nil, 0, fmt.Errorf("copying %s from container: %w", f.path, err)
	}
	defer reader.Close()
	data, mode, err := readSingleFile(reader)
	if err != nil {
		return nil, 0, fmt.Errorf("reading %s: %w", f, err)
	}
	return data, mode, nil
}

// copyIn extracts archive into dir inside the container, creating dir first.
func (r *DockerRuntime) copyIn(ctx context.Context, cid, dir string, archive io.Reader) error {
	if err := r.exec(ctx, cid, &Plan{}, Step{Args: []string{"mkdir", "-p", dir}}); err != nil {
		return fmt.Errorf("preparing %s: %w", dir, err)
	}
	if err := r.cli.CopyToContainer(ctx, cid, dir, archive, container.CopyToContainerOptions{}); err != nil {
		return fmt.Errorf("copying into %s: %w", dir, err)
	}
	return nil
}

// exec runs one step and streams its output. Non-zero exits become
// *ExitError.
func (r *DockerRuntime) exec(ctx context.Context, cid string, plan *Plan, step Step) error {
	log.Debug("running step", "container", shortID(cid), "step", step.String())

	created, err := r.cli.ContainerExecCreate(ctx, cid, container.ExecOptions{
		Cmd:          step.Args,
		WorkingDir:   plan.workdir,
		Env:          plan.envList(),
		AttachStdout: true,
		AttachStderr: true,
	})
	if err != nil {
		return fmt.Errorf("creating exec for %q: %w", step.String(), err)
	}

	resp, err := r.cli.ContainerExecAttach(ctx, created.ID, container.ExecAttachOptions{})
	if err != nil {
		return fmt.Errorf("attaching to exec for %q: %w", step.String(), err)
	}
	defer resp.Close()

	var captured bytes.Buffer
	w := io.MultiWriter(r.out, &captured)
	if _, err := stdcopy.StdCopy(w, w, resp.Reader); err != nil {
		return fmt.Errorf("reading output of %q: %w", step.String(), err)
	}

	inspect, err := r.cli.ContainerExecInspect(ctx, created.ID)
	if err != nil {
		return fmt.Errorf("inspecting exec for %q: %w", step.String(), err)
	}
	if inspect.ExitCode != 0 {
		return &ExitError{Step: step, Code: int64(inspect.ExitCode), Output: captured.String()}
	}
	return nil
}

// remove deletes a plan container. It runs with a fresh context so cleanup
// still happens after the caller's context is canceled.
func (r *DockerRuntime) remove(cid string) {
	err := r.cli.ContainerRemove(context.Background(), cid, container.RemoveOptions{Force: true})
	if err != nil && !errdefs.IsNotFound(err) {
		log.Warn("failed to remove plan container", "container", shortID(cid), "error", err)
	}
}

// ensureImage pulls an image if it doesn't exist locally.
func (r *DockerRuntime) ensureImage(ctx context.Context, imageName string) error {
	_, err := r.cli.ImageInspect(ctx, imageName)
	if err == nil {
		return nil
	}
	if !errdefs.IsNotFound(err) {
		return fmt.Errorf("inspecting image %s: %w", imageName, err)
	}

	ui.Infof("Pulling image %s...", imageName)
	reader, err := r.cli.ImagePull(ctx, imageName, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("pulling image %s: %w", imageName, err)
	}
	defer reader.Close()

	// Drain the reader to complete the pull (discard JSON progress output)
	_, _ = io.Copy(io.Discard, reader)
	return nil
}

func shortID(cid string) string {
	if len(cid) > 12 {
		return cid[:12]
	}
	return cid
}
