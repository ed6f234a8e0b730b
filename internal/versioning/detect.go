package versioning

import (
	"regexp"
	"strings"

	"github.com/majorcontext/plugbuild/internal/source"
)

// versionFileCandidates are probed in order; the first non-empty one wins.
var versionFileCandidates = []string{"version/VERSION", "VERSION"}

const (
	versionGoPath     = "version/version.go"
	rootVersionGoPath = "version.go"
)

var (
	embedDirectives = []string{"//go:embed VERSION", "//go:embed version/VERSION"}

	// var Version = "1.2.3" (single quotes tolerated)
	hardcodedPattern = regexp.MustCompile(`var\s+Version\s*=\s*["']([^"']+)["']`)
	// var Version string, left for -X injection
	ldflagsPattern = regexp.MustCompile(`(?m)var\s+Version\s+string\s*$`)
)

// Detect inspects tree and classifies its version management. It always
// returns a report; files that cannot be read are treated as absent.
//
// The scan is textual. The first unambiguous pattern wins and the default
// is SourceLDFlags.
func Detect(tree *source.Tree) Report {
	report := Report{VersionSource: SourceLDFlags}

	for _, candidate := range versionFileCandidates {
		if version, ok := tree.ReadTrimmed(candidate); ok {
			report.VersionFile = candidate
			report.CurrentVersion = version
			report.VersionSource = SourceFile
			break
		}
	}

	if versionGo, ok := tree.ReadString(versionGoPath); ok {
		if hasEmbedDirective(versionGo) && report.VersionFile != "" {
			report.VersionSource = SourceFile
			report.Recommendation = RecommendVersionFile
		}

		if module, ok := tree.ModulePath(); ok {
			report.VersionPackage = module + "/version"
		}

		hardcoded := hardcodedPattern.FindStringSubmatch(versionGo)
		switch {
		case hardcoded != nil && report.VersionFile == "":
			report.VersionSource = SourceHardcoded
			report.CurrentVersion = hardcoded[1]
		case hardcoded == nil && report.VersionFile == "" && ldflagsPattern.MatchString(versionGo):
			report.VersionSource = SourceLDFlags
		}
	} else if rootGo, ok := tree.ReadString(rootVersionGoPath); ok {
		if m := hardcodedPattern.FindStringSubmatch(rootGo); m != nil && report.VersionFile == "" {
			report.VersionSource = SourceHardcoded
			report.CurrentVersion = m[1]
		}
	}

	if report.VersionFile != "" && report.VersionSource == SourceFile {
		report.Recommendation = RecommendVersionFile
	}
	return report
}

func hasEmbedDirective(content string) bool {
	for _, directive := range embedDirectives {
		if strings.Contains(content, directive) {
			return true
		}
	}
	return false
}
