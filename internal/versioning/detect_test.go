package versioning

import (
	"encoding/json"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/majorcontext/plugbuild/internal/source"
)

const goMod = "module github.com/user/packer-plugin-docker\n\ngo 1.21\n"

func tree(files map[string]string) *source.Tree {
	m := fstest.MapFS{}
	for name, content := range files {
		m[name] = &fstest.MapFile{Data: []byte(content)}
	}
	return source.New("", m)
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		want  Report
	}{
		{
			name:  "empty project defaults to ldflags",
			files: map[string]string{},
			want:  Report{VersionSource: SourceLDFlags},
		},
		{
			name:  "nested VERSION file",
			files: map[string]string{"version/VERSION": "2.1.0\n"},
			want: Report{
				VersionSource:  SourceFile,
				VersionFile:    "version/VERSION",
				CurrentVersion: "2.1.0",
				Recommendation: RecommendVersionFile,
			},
		},
		{
			name:  "root VERSION file",
			files: map[string]string{"VERSION": " 0.3.0 \n"},
			want: Report{
				VersionSource:  SourceFile,
				VersionFile:    "VERSION",
				CurrentVersion: "0.3.0",
				Recommendation: RecommendVersionFile,
			},
		},
		{
			name:  "nested VERSION takes priority over root",
			files: map[string]string{"version/VERSION": "2.0.0", "VERSION": "1.0.0"},
			want: Report{
				VersionSource:  SourceFile,
				VersionFile:    "version/VERSION",
				CurrentVersion: "2.0.0",
				Recommendation: RecommendVersionFile,
			},
		},
		{
			name:  "empty nested VERSION falls through to root",
			files: map[string]string{"version/VERSION": "\n", "VERSION": "1.0.0"},
			want: Report{
				VersionSource:  SourceFile,
				VersionFile:    "VERSION",
				CurrentVersion: "1.0.0",
				Recommendation: RecommendVersionFile,
			},
		},
		{
			name: "embed directive with version file",
			files: map[string]string{
				"version/VERSION":    "1.4.0\n",
				"version/version.go": "package version\n\nimport _ \"embed\"\n\n//go:embed VERSION\nvar Version string\n",
				"go.mod":             goMod,
			},
			want: Report{
				VersionSource:  SourceFile,
				VersionFile:    "version/VERSION",
				CurrentVersion: "1.4.0",
				VersionPackage: "github.com/user/packer-plugin-docker/version",
				Recommendation: RecommendVersionFile,
			},
		},
		{
			name: "hardcoded version",
			files: map[string]string{
				"version/version.go": "package version\n\nvar Version = \"0.9.1\"\nvar VersionPrerelease = \"dev\"\n",
				"go.mod":             goMod,
			},
			want: Report{
				VersionSource:  SourceHardcoded,
				CurrentVersion: "0.9.1",
				VersionPackage: "github.com/user/packer-plugin-docker/version",
			},
		},
		{
			name: "hardcoded with single quotes",
			files: map[string]string{
				"version/version.go": "package version\nvar Version = '1.0.0'\n",
			},
			want: Report{VersionSource: SourceHardcoded, CurrentVersion: "1.0.0"},
		},
		{
			name: "version file wins over hardcoded",
			files: map[string]string{
				"VERSION":            "3.0.0",
				"version/version.go": "package version\nvar Version = \"0.1.0\"\n",
			},
			want: Report{
				VersionSource:  SourceFile,
				VersionFile:    "VERSION",
				CurrentVersion: "3.0.0",
				Recommendation: RecommendVersionFile,
			},
		},
		{
			name: "uninitialized declaration",
			files: map[string]string{
				"version/version.go": "package version\n\nvar Version string\n",
				"go.mod":             goMod,
			},
			want: Report{
				VersionSource:  SourceLDFlags,
				VersionPackage: "github.com/user/packer-plugin-docker/version",
			},
		},
		{
			name: "hardcoded wins when both patterns appear",
			files: map[string]string{
				"version/version.go": "package version\nvar Version string\nfunc init() {}\nvar Version = \"4.5.6\"\n",
			},
			want: Report{VersionSource: SourceHardcoded, CurrentVersion: "4.5.6"},
		},
		{
			name: "root version.go hardcoded",
			files: map[string]string{
				"version.go": "package main\nvar Version = \"1.1.1\"\n",
			},
			want: Report{VersionSource: SourceHardcoded, CurrentVersion: "1.1.1"},
		},
		{
			name: "root version.go ignored when nested exists",
			files: map[string]string{
				"version/version.go": "package version\nvar Version string\n",
				"version.go":         "package main\nvar Version = \"1.1.1\"\n",
			},
			want: Report{VersionSource: SourceLDFlags},
		},
		{
			name: "go.mod not consulted without version.go",
			files: map[string]string{
				"go.mod": goMod,
			},
			want: Report{VersionSource: SourceLDFlags},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tree(tt.files)))
		})
	}
}

func TestReportJSON(t *testing.T) {
	r := Detect(tree(map[string]string{"version/VERSION": "2.1.0\n"}))
	out, err := r.JSON()
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &raw))
	assert.Equal(t, "file", raw["version_source"])
	assert.Equal(t, "version/VERSION", raw["version_file"])
	assert.Equal(t, "2.1.0", raw["current_version"])
	assert.Nil(t, raw["version_package"])
	assert.Contains(t, raw, "version_package", "absent fields are encoded as null, not omitted")
	assert.Equal(t, "use_version_file", raw["recommendation"])

	var decoded Report
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, r, decoded)
}
