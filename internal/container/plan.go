package container

import (
	"fmt"
	"path"
	"strings"
)

// Plan is an immutable description of work inside one container: a base
// image, its environment, the files copied in, and the commands to run in
// order. Plans are lazy; nothing happens until a Runtime runs or exports one.
// Every With method returns a new Plan and leaves the receiver untouched.
type Plan struct {
	image   string
	workdir string
	env     []EnvVar
	dirs    []DirMount
	files   []FileMount
	steps   []Step
}

// EnvVar is one environment variable set on every step.
type EnvVar struct {
	Name  string
	Value string
}

// DirMount copies a host directory into the container at Path.
type DirMount struct {
	Path    string
	HostDir string
}

// FileMount places File at Path inside the container.
type FileMount struct {
	Path string
	File File
}

// Step is one command run in the container.
type Step struct {
	Args []string
}

// String renders the step for logs and error messages.
func (s Step) String() string {
	return strings.Join(s.Args, " ")
}

// File refers to a file on the host or to a path inside another plan's
// resulting filesystem.
type File struct {
	hostPath string
	plan     *Plan
	path     string
}

// HostFile refers to a file on the host.
func HostFile(p string) File {
	return File{hostPath: p}
}

// HostPath returns the host path, or "" for a file produced by a plan.
func (f File) HostPath() string { return f.hostPath }

// Plan returns the producing plan, or nil for a host file.
func (f File) Plan() *Plan { return f.plan }

// Path returns the path inside the producing plan.
func (f File) Path() string { return f.path }

// Base returns the file's name without directories.
func (f File) Base() string {
	if f.plan != nil {
		return path.Base(f.path)
	}
	return path.Base(strings.ReplaceAll(f.hostPath, "\\", "/"))
}

func (f File) String() string {
	if f.plan != nil {
		return fmt.Sprintf("%s:%s", f.plan.image, f.path)
	}
	return f.hostPath
}

// From starts a plan on image.
func From(image string) *Plan {
	return &Plan{image: image}
}

// Failure returns a plan whose only action prints "✗ Error: msg" and exits
// non-zero. It reports user input problems through the same execution path
// callers already inspect for success.
func Failure(image, msg string) *Plan {
	return From(image).WithExec("sh", "-c", fmt.Sprintf("echo %s && exit 1", ShellQuote("✗ Error: "+msg)))
}

func (p *Plan) clone() *Plan {
	return &Plan{
		image:   p.image,
		workdir: p.workdir,
		env:     append([]EnvVar(nil), p.env...),
		dirs:    append([]DirMount(nil), p.dirs...),
		files:   append([]FileMount(nil), p.files...),
		steps:   append([]Step(nil), p.steps...),
	}
}

// WithWorkdir sets the working directory for subsequent steps.
func (p *Plan) WithWorkdir(dir string) *Plan {
	c := p.clone()
	c.workdir = dir
	return c
}

// WithEnv sets an environment variable, replacing an earlier value.
func (p *Plan) WithEnv(name, value string) *Plan {
	c := p.clone()
	for i, e := range c.env {
		if e.Name == name {
			c.env[i].Value = value
			return c
		}
	}
	c.env = append(c.env, EnvVar{Name: name, Value: value})
	return c
}

// WithDirectory copies hostDir into the container at dir.
func (p *Plan) WithDirectory(dir, hostDir string) *Plan {
	c := p.clone()
	c.dirs = append(c.dirs, DirMount{Path: dir, HostDir: hostDir})
	return c
}

// WithFile places f at dest inside the container.
func (p *Plan) WithFile(dest string, f File) *Plan {
	c := p.clone()
	c.files = append(c.files, FileMount{Path: dest, File: f})
	return c
}

// WithExec appends a command.
func (p *Plan) WithExec(args ...string) *Plan {
	c := p.clone()
	c.steps = append(c.steps, Step{Args: append([]string(nil), args...)})
	return c
}

// WithEcho appends a step that prints line to the execution output.
func (p *Plan) WithEcho(line string) *Plan {
	return p.WithExec("sh", "-c", "echo "+ShellQuote(line))
}

// File refers to a path inside the filesystem this plan produces.
func (p *Plan) File(filePath string) File {
	return File{plan: p, path: filePath}
}

// Image returns the base image reference.
func (p *Plan) Image() string { return p.image }

// Workdir returns the working directory, or "" for the image default.
func (p *Plan) Workdir() string { return p.workdir }

// Env returns the environment in insertion order.
func (p *Plan) Env() []EnvVar { return append([]EnvVar(nil), p.env...) }

// EnvValue returns the value of the named variable.
func (p *Plan) EnvValue(name string) (string, bool) {
	for _, e := range p.env {
		if e.Name == name {
			return e.Value, true
		}
	}
	return "", false
}

// Dirs returns the directories copied in.
func (p *Plan) Dirs() []DirMount { return append([]DirMount(nil), p.dirs...) }

// Files returns the files placed in the container.
func (p *Plan) Files() []FileMount { return append([]FileMount(nil), p.files...) }

// Steps returns the commands in execution order.
func (p *Plan) Steps() []Step { return append([]Step(nil), p.steps...) }

// envList renders the environment as NAME=value pairs.
func (p *Plan) envList() []string {
	out := make([]string, len(p.env))
	for i, e := range p.env {
		out[i] = e.Name + "=" + e.Value
	}
	return out
}

// ShellQuote wraps s in single quotes for sh, escaping embedded quotes.
func ShellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
