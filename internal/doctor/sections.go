package doctor

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/majorcontext/plugbuild/internal/container"
	"github.com/majorcontext/plugbuild/internal/ignorelist"
	"github.com/majorcontext/plugbuild/internal/pipeline"
	"github.com/majorcontext/plugbuild/internal/source"
	"github.com/majorcontext/plugbuild/internal/toolchain"
	"github.com/majorcontext/plugbuild/internal/versioning"
)

func mark(ok bool) string {
	if ok {
		return "✓"
	}
	return "✗"
}

// ProjectSection summarizes how a plugin project will be built.
type ProjectSection struct {
	Tree *source.Tree
	// PluginName overrides the name derived from go.mod.
	PluginName string
}

func (s *ProjectSection) Name() string { return "Project" }

func (s *ProjectSection) Print(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Source:\t%s\n", s.Tree.Root())

	module, ok := s.Tree.ModulePath()
	if !ok {
		module = "(no go.mod)"
	}
	fmt.Fprintf(tw, "Module:\t%s\n", module)

	goVersion, src := toolchain.Resolve(s.Tree, "")
	fmt.Fprintf(tw, "Go toolchain:\t%s (%s)\n", goVersion, src)

	report := versioning.Detect(s.Tree)
	fmt.Fprintf(tw, "Version source:\t%s\n", report.VersionSource)
	if report.VersionFile != "" {
		fmt.Fprintf(tw, "Version file:\t%s\n", report.VersionFile)
	}
	if report.CurrentVersion != "" {
		valid, msg := versioning.Validate(report.CurrentVersion)
		line := report.CurrentVersion
		if !valid {
			line += " (" + msg + ")"
		}
		fmt.Fprintf(tw, "Current version:\t%s %s\n", mark(valid), line)
	}
	if report.Recommendation != "" {
		fmt.Fprintf(tw, "Recommendation:\t--use-version-file\n")
	}

	ignore := pipeline.PrepIgnoreList(s.Tree, s.PluginName)
	if ignore.Failed {
		fmt.Fprintf(tw, "%s:\t%s plugin name unknown\n", ignorelist.FileName, mark(false))
	} else {
		fmt.Fprintf(tw, "Plugin:\t%s\n", ignore.PluginName)
		existing, _ := s.Tree.ReadString(ignorelist.FileName)
		cov := ignorelist.Covers(existing, ignore.PluginName)
		fmt.Fprintf(tw, "%s:\t%s binary  %s versioned  %s checksum\n", ignorelist.FileName,
			mark(cov.Binary), mark(cov.Versioned), mark(cov.Checksum))
	}
	return tw.Flush()
}

// RuntimeSection reports which container runtime would be used.
type RuntimeSection struct {
	Kind container.RuntimeType
	// Open connects to a runtime; it defaults to container.NewRuntime.
	Open func(kind container.RuntimeType) (container.Runtime, error)
}

func (s *RuntimeSection) Name() string { return "Container Runtime" }

func (s *RuntimeSection) Print(w io.Writer) error {
	open := s.Open
	if open == nil {
		open = func(kind container.RuntimeType) (container.Runtime, error) {
			return container.NewRuntime(kind, io.Discard)
		}
	}
	kind := s.Kind
	if kind == "" {
		kind = container.RuntimeAuto
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Requested:\t%s\n", kind)
	rt, err := open(kind)
	if err != nil {
		fmt.Fprintf(tw, "Status:\t%s unavailable\n", mark(false))
		tw.Flush()
		return err
	}
	defer rt.Close()

	status := mark(true) + " reachable"
	if err := rt.Ping(context.Background()); err != nil {
		status = mark(false) + " " + err.Error()
	}
	fmt.Fprintf(tw, "Using:\t%s\n", rt.Type())
	fmt.Fprintf(tw, "Status:\t%s\n", status)
	return tw.Flush()
}
