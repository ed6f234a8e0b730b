// Package versioning classifies how a Packer plugin project manages its
// version string and validates the versions it is built with.
package versioning

import "encoding/json"

// Source identifies where a project's version string comes from.
type Source string

const (
	// SourceFile means a VERSION file holds the version.
	SourceFile Source = "file"
	// SourceHardcoded means version.go assigns a string literal.
	SourceHardcoded Source = "hardcoded"
	// SourceLDFlags means the version is injected at link time.
	SourceLDFlags Source = "ldflags"
)

// RecommendVersionFile is the recommendation emitted when a VERSION file
// should be used as the build version.
const RecommendVersionFile = "use_version_file"

// Report is the result of a detection pass. Empty strings mean "not found".
type Report struct {
	VersionSource  Source
	VersionFile    string
	CurrentVersion string
	VersionPackage string
	Recommendation string
}

type reportJSON struct {
	VersionSource  Source  `json:"version_source"`
	VersionFile    *string `json:"version_file"`
	CurrentVersion *string `json:"current_version"`
	VersionPackage *string `json:"version_package"`
	Recommendation *string `json:"recommendation"`
}

// MarshalJSON encodes absent fields as null so the field set is stable.
func (r Report) MarshalJSON() ([]byte, error) {
	return json.Marshal(reportJSON{
		VersionSource:  r.VersionSource,
		VersionFile:    nullable(r.VersionFile),
		CurrentVersion: nullable(r.CurrentVersion),
		VersionPackage: nullable(r.VersionPackage),
		Recommendation: nullable(r.Recommendation),
	})
}

// UnmarshalJSON accepts the encoding produced by MarshalJSON.
func (r *Report) UnmarshalJSON(data []byte) error {
	var raw reportJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = Report{
		VersionSource:  raw.VersionSource,
		VersionFile:    deref(raw.VersionFile),
		CurrentVersion: deref(raw.CurrentVersion),
		VersionPackage: deref(raw.VersionPackage),
		Recommendation: deref(raw.Recommendation),
	}
	return nil
}

// JSON returns the report indented the way detect-version prints it.
func (r Report) JSON() (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
