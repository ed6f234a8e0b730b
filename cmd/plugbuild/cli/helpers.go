package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/majorcontext/plugbuild/internal/config"
	"github.com/majorcontext/plugbuild/internal/container"
	"github.com/majorcontext/plugbuild/internal/log"
	"github.com/majorcontext/plugbuild/internal/pipeline"
	"github.com/majorcontext/plugbuild/internal/source"
)

// project is an opened plugin source directory with its settings file.
type project struct {
	tree     *source.Tree
	settings *config.Project
}

func openProject(dir string) (*project, error) {
	tree, err := source.Open(dir)
	if err != nil {
		return nil, err
	}
	settings, err := config.LoadProject(tree.Root())
	if err != nil {
		return nil, err
	}
	return &project{tree: tree, settings: settings}, nil
}

// repository resolves the module path: flag, then .plugbuild.yaml, then the
// origin remote of the enclosing git repository.
func (p *project) repository(flag string) (string, error) {
	if repo := config.FirstSet(flag, p.settings.Repository); repo != "" {
		return repo, nil
	}
	repo, err := source.RepositoryPath(p.tree.Root())
	if err != nil {
		if errors.Is(err, source.ErrNoOrigin) {
			return "", errors.New("--repository is required: no repository in " + config.ProjectFile + " and no origin remote")
		}
		return "", fmt.Errorf("--repository is required: %w", err)
	}
	log.Debug("repository from origin remote", "repository", repo)
	return repo, nil
}

func newPipeline() *pipeline.Pipeline {
	return pipeline.New(pipeline.Images{
		Go:     globalCfg.Images.Go,
		Packer: globalCfg.Images.Packer,
		Alpine: globalCfg.Images.Alpine,
	})
}

// newRuntime connects to the runtime chosen by --runtime or the global
// config. Step output streams to out.
func newRuntime(out io.Writer) (container.Runtime, error) {
	kind := container.RuntimeType(config.FirstSet(runtimeFlag, globalCfg.Runtime))
	rt, err := container.NewRuntime(kind, out)
	if err != nil {
		return nil, fmt.Errorf("initializing runtime: %w", err)
	}
	return rt, nil
}

// printJSON writes v to stdout, indented.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
