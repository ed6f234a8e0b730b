// Package doctor prints diagnostics for a plugin project and the host's
// container runtime.
package doctor

import (
	"fmt"
	"io"
	"strings"
)

// Section is one block of diagnostic output.
type Section interface {
	// Name returns the section heading (e.g., "Container Runtime").
	Name() string

	// Print writes the section body. A returned error is reported under the
	// heading and does not stop later sections.
	Print(w io.Writer) error
}

// Registry holds sections in registration order.
type Registry struct {
	sections []Section
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends a section.
func (r *Registry) Register(s Section) {
	r.sections = append(r.sections, s)
}

// Sections returns the registered sections.
func (r *Registry) Sections() []Section {
	return r.sections
}

// Write prints every section under an underlined heading and returns the
// number of sections that failed.
func (r *Registry) Write(w io.Writer) int {
	failed := 0
	for i, s := range r.sections {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, s.Name())
		fmt.Fprintln(w, strings.Repeat("─", len([]rune(s.Name()))))
		if err := s.Print(w); err != nil {
			fmt.Fprintf(w, "✗ Error: %v\n", err)
			failed++
		}
	}
	return failed
}
