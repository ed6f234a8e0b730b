package pipeline

import (
	"fmt"
	"path"
	"strconv"

	"github.com/majorcontext/plugbuild/internal/container"
	"github.com/majorcontext/plugbuild/internal/log"
	"github.com/majorcontext/plugbuild/internal/plugin"
	"github.com/majorcontext/plugbuild/internal/source"
	"github.com/majorcontext/plugbuild/internal/toolchain"
	"github.com/majorcontext/plugbuild/internal/versioning"
)

// User-facing failure messages.
const (
	MsgNoVersionFile   = "use_version_file is true but no VERSION file found"
	MsgVersionRequired = "version is required. Provide --version or use --use-version-file"
	MsgNoSource        = "source directory is required"
)

// BuildInputs are the caller-supplied build parameters. Empty strings mean
// "not given".
type BuildInputs struct {
	Source            *source.Tree
	Repository        string
	Version           string
	PluginName        string
	UseVersionFile    bool
	UpdateVersionFile bool
	GoVersion         string
}

// BuildResult describes a build plan and the values resolved for it.
type BuildResult struct {
	Plan *container.Plan

	// Failure is the user-facing message when the inputs were rejected.
	// Plan then fails with this message when run.
	Failure string

	Repository string
	PluginName string
	BinaryName string
	Version    string
	GoVersion  string
	Report     versioning.Report
	Notices    []Notice
}

// Failed reports whether the inputs were rejected.
func (r BuildResult) Failed() bool {
	return r.Failure != ""
}

// BinaryPath is the binary's location inside the build plan's filesystem.
func (r BuildResult) BinaryPath() string {
	return path.Join(SourceDir, r.BinaryName)
}

// Binary refers to the built binary.
func (r BuildResult) Binary() container.File {
	return r.Plan.File(r.BinaryPath())
}

// LinkerFlags returns the -ldflags value embedding version in the plugin's
// version package and clearing its prerelease marker.
func LinkerFlags(repository, version string) string {
	return fmt.Sprintf("-X %s/version.Version=%s -X %s/version.VersionPrerelease=", repository, version, repository)
}

// Build plans compiling a plugin. Repository and plugin name are normalized,
// the Go toolchain is resolved, and the resulting notices are echoed before
// the build runs.
func (p *Pipeline) Build(in BuildInputs) BuildResult {
	r := normalizeInputs(in.Repository, in.PluginName)
	goVersion, src := toolchain.Resolve(in.Source, in.GoVersion)
	return p.build(in, r, goVersion, notices(
		r.repositoryNotice,
		Notice(toolchain.Notice(goVersion, src)),
		r.pluginNameNotice,
	))
}

// build plans a build from already-normalized inputs and a resolved
// toolchain. extra notices are echoed after the environment is set up.
func (p *Pipeline) build(in BuildInputs, r resolved, goVersion string, extra []Notice) BuildResult {
	result := BuildResult{
		Repository: r.repository,
		GoVersion:  goVersion,
		Notices:    extra,
	}
	if in.Source == nil {
		return p.fail(result, MsgNoSource)
	}

	result.Report = versioning.Detect(in.Source)
	version, msg := effectiveVersion(in, result.Report)
	if msg != "" {
		return p.fail(result, msg)
	}
	if ok, msg := versioning.Validate(version); !ok {
		return p.fail(result, msg)
	}
	result.Version = version
	result.PluginName = r.name()
	result.BinaryName = plugin.BinaryName(result.PluginName)

	plan := container.From(toolchain.Image(p.images.Go, goVersion)).
		WithDirectory(SourceDir, in.Source.Root()).
		WithWorkdir(SourceDir).
		WithEnv("CGO_ENABLED", "0").
		WithEnv(CacheBustEnv, strconv.FormatInt(p.now().UnixMilli(), 10))
	plan = echoAll(plan, extra)

	if in.UpdateVersionFile && result.Report.VersionFile != "" {
		plan = plan.WithExec("sh", "-c", fmt.Sprintf("echo %s > %s",
			container.ShellQuote(version), container.ShellQuote(result.Report.VersionFile)))
	}

	result.Plan = plan.WithExec("go", "build",
		"-ldflags="+LinkerFlags(r.repository, version),
		"-o", result.BinaryName,
		".",
	)
	log.Debug("planned build",
		"repository", r.repository,
		"plugin", result.PluginName,
		"version", version,
		"go", goVersion,
		"version_source", result.Report.VersionSource)
	return result
}

func (p *Pipeline) fail(result BuildResult, msg string) BuildResult {
	log.Debug("build inputs rejected", "reason", msg)
	result.Failure = msg
	result.Plan = container.Failure(p.images.Alpine, msg)
	return result
}

// effectiveVersion applies the version precedence. It returns a failure
// message when no version can be determined.
func effectiveVersion(in BuildInputs, report versioning.Report) (string, string) {
	if in.Version != "" {
		return in.Version, ""
	}
	if in.UseVersionFile {
		if report.VersionFile != "" && report.CurrentVersion != "" {
			return report.CurrentVersion, ""
		}
		return "", MsgNoVersionFile
	}
	return "", MsgVersionRequired
}
