// Package pipeline turns build and install requests into container plans.
//
// Every operation resolves its inputs up front and returns a plan describing
// the work. User input problems never surface as Go errors; they produce a
// plan that prints "✗ Error: ..." and exits non-zero, so callers handle every
// outcome by running the plan.
package pipeline

import (
	"time"

	"github.com/majorcontext/plugbuild/internal/container"
	"github.com/majorcontext/plugbuild/internal/plugin"
)

// Fixed container paths.
const (
	// SourceDir is where the plugin source is placed in the build container.
	SourceDir = "/work"
	// PluginRoot is where `packer plugins install` writes installed plugins.
	PluginRoot = "/root/.config/packer/plugins"
	// CacheBustEnv carries a per-invocation timestamp so backends that cache
	// by content never reuse a stale build.
	CacheBustEnv = "PLUGBUILD_CACHE_BUST"
)

// DefaultPackerVersion is the hashicorp/packer tag used when none is given.
const DefaultPackerVersion = "latest"

// Images names the container images plans run on.
type Images struct {
	// Go is the Go toolchain repository; the tag is the toolchain version.
	Go string
	// Packer is the Packer repository; the tag is the Packer version.
	Packer string
	// Alpine is the full reference used for failure plans.
	Alpine string
}

// DefaultImages returns the public images.
func DefaultImages() Images {
	return Images{
		Go:     "golang",
		Packer: "hashicorp/packer",
		Alpine: "alpine:latest",
	}
}

func (i Images) withDefaults() Images {
	d := DefaultImages()
	if i.Go == "" {
		i.Go = d.Go
	}
	if i.Packer == "" {
		i.Packer = d.Packer
	}
	if i.Alpine == "" {
		i.Alpine = d.Alpine
	}
	return i
}

// Notice is a user-facing warning or informational line produced while
// resolving inputs. Notices are echoed inside the plan and returned to the
// caller.
type Notice string

// Pipeline builds plans. The zero value is not usable; use New.
type Pipeline struct {
	images Images
	now    func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithClock overrides the time source used for the cache-bust value.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// New returns a Pipeline using images. Empty image fields fall back to
// DefaultImages.
func New(images Images, opts ...Option) *Pipeline {
	p := &Pipeline{images: images.withDefaults(), now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Images returns the images in use.
func (p *Pipeline) Images() Images {
	return p.images
}

// resolved holds inputs after normalization. An empty pluginName means
// "derive from repository". The notice fields are empty when the value was
// already lowercase.
type resolved struct {
	repository string
	pluginName string

	repositoryNotice Notice
	pluginNameNotice Notice
}

// normalizeInputs lowercases repository and plugin name.
func normalizeInputs(repository, pluginName string) resolved {
	var r resolved
	var changed bool
	r.repository, changed = plugin.Normalize(repository)
	if changed {
		r.repositoryNotice = Notice(plugin.NormalizationWarning("repository", r.repository))
	}
	if pluginName != "" {
		r.pluginName, changed = plugin.Normalize(pluginName)
		if changed {
			r.pluginNameNotice = Notice(plugin.NormalizationWarning("plugin-name", r.pluginName))
		}
	}
	return r
}

// name returns the explicit plugin name or derives one from the repository.
// Derived names never produce a notice; the repository was already
// normalized.
func (r resolved) name() string {
	if r.pluginName != "" {
		return r.pluginName
	}
	name, _ := plugin.NameFromRepository(r.repository)
	return name
}

// notices drops empty entries.
func notices(candidates ...Notice) []Notice {
	var out []Notice
	for _, n := range candidates {
		if n != "" {
			out = append(out, n)
		}
	}
	return out
}

func echoAll(plan *container.Plan, ns []Notice) *container.Plan {
	for _, n := range ns {
		plan = plan.WithEcho(string(n))
	}
	return plan
}
