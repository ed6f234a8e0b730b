package pipeline

import (
	"path"
	"path/filepath"

	"github.com/majorcontext/plugbuild/internal/container"
	"github.com/majorcontext/plugbuild/internal/log"
	"github.com/majorcontext/plugbuild/internal/plugin"
	"github.com/majorcontext/plugbuild/internal/toolchain"
)

// InstallInputs are the caller-supplied install parameters.
type InstallInputs struct {
	// Binary is the plugin executable: a host file or a file produced by a
	// build plan.
	Binary        container.File
	Repository    string
	PluginName    string
	PackerVersion string
}

// InstallResult describes an install plan.
type InstallResult struct {
	Plan *container.Plan

	// Failure is set when an earlier stage rejected its inputs. Plan then
	// fails with this message when run.
	Failure string

	Repository    string
	PluginName    string
	BinaryName    string
	InstallSource string
	// ArtifactsPath is the directory inside Plan holding the installed
	// binary and its checksum file.
	ArtifactsPath string
	Notices       []Notice
}

// Failed reports whether an earlier stage rejected its inputs.
func (r InstallResult) Failed() bool {
	return r.Failure != ""
}

// ArtifactsDir returns the path under which the installed layout is
// conventionally placed on the host: the install source below root.
func (r InstallResult) ArtifactsDir(root string) string {
	return filepath.Join(root, filepath.FromSlash(r.InstallSource))
}

// Install plans `packer plugins install` for a built binary. The install
// source is the repository with the plugin prefix removed from its last
// segment, which is the form Packer registers plugins under.
func (p *Pipeline) Install(in InstallInputs) InstallResult {
	r := normalizeInputs(in.Repository, in.PluginName)
	return p.install(in.Binary, r, in.PackerVersion, notices(r.repositoryNotice, r.pluginNameNotice))
}

func (p *Pipeline) install(binary container.File, r resolved, packerVersion string, extra []Notice) InstallResult {
	if packerVersion == "" {
		packerVersion = DefaultPackerVersion
	}
	result := InstallResult{
		Repository:    r.repository,
		PluginName:    r.name(),
		InstallSource: plugin.StripPrefixFromSource(r.repository),
		Notices:       extra,
	}
	result.BinaryName = plugin.BinaryName(result.PluginName)
	result.ArtifactsPath = path.Join(PluginRoot, result.InstallSource)

	plan := container.From(toolchain.Image(p.images.Packer, packerVersion)).
		WithFile("/"+result.BinaryName, binary).
		WithWorkdir("/")
	plan = echoAll(plan, extra)
	result.Plan = plan.WithExec("packer", "plugins", "install",
		"--path", result.BinaryName,
		result.InstallSource,
	)
	log.Debug("planned install",
		"install_source", result.InstallSource,
		"binary", result.BinaryName,
		"packer", packerVersion)
	return result
}

// BuildAndInstall plans a build followed by an install of its binary.
// Inputs are normalized and the toolchain resolved once; the resulting
// notices are echoed at the end of the build plan and reported once.
func (p *Pipeline) BuildAndInstall(in BuildInputs, packerVersion string) (BuildResult, InstallResult) {
	r := normalizeInputs(in.Repository, in.PluginName)
	goVersion, src := toolchain.Resolve(in.Source, in.GoVersion)
	extra := notices(
		Notice(toolchain.Notice(goVersion, src)),
		r.repositoryNotice,
		r.pluginNameNotice,
	)

	build := p.build(in, r, goVersion, nil)
	if build.Failed() {
		build.Notices = extra
		return build, InstallResult{
			Plan:          build.Plan,
			Failure:       build.Failure,
			Repository:    r.repository,
			PluginName:    r.name(),
			InstallSource: plugin.StripPrefixFromSource(r.repository),
			Notices:       extra,
		}
	}
	build.Plan = echoAll(build.Plan, extra)
	build.Notices = extra

	install := p.install(build.Binary(), r, packerVersion, nil)
	install.Notices = extra
	return build, install
}
