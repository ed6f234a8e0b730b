package versioning

import (
	"fmt"
	"regexp"
	"strings"
)

// semverPattern is MAJOR.MINOR.PATCH with optional dot-separated
// alphanumeric prerelease and build metadata.
var semverPattern = regexp.MustCompile(`^(\d+)\.(\d+)\.(\d+)(-[a-zA-Z0-9]+(\.[a-zA-Z0-9]+)*)?(\+[a-zA-Z0-9]+(\.[a-zA-Z0-9]+)*)?$`)

// Validate checks that version is a plain semantic version. On failure the
// message names the offending value and the expected form.
func Validate(version string) (bool, string) {
	if strings.HasPrefix(version, "v") {
		return false, fmt.Sprintf("Version '%s' should not have 'v' prefix. Use '%s' instead.", version, version[1:])
	}
	if !semverPattern.MatchString(version) {
		return false, fmt.Sprintf("Version '%s' is not valid semantic versioning. Use format: MAJOR.MINOR.PATCH (e.g., 1.0.0)", version)
	}
	return true, ""
}
