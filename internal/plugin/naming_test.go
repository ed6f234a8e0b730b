package plugin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		changed bool
	}{
		{"already lowercase", "github.com/user/packer-plugin-docker", "github.com/user/packer-plugin-docker", false},
		{"uppercase owner", "github.com/SolomonHD/packer-plugin-docker", "github.com/solomonhd/packer-plugin-docker", true},
		{"mixed case", "GitHub.com/MyUser/Packer-Plugin-MyPlugin", "github.com/myuser/packer-plugin-myplugin", true},
		{"plugin name", "Docker", "docker", true},
		{"empty", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed := Normalize(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.changed, changed)
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := rapid.StringMatching(`[A-Za-z0-9._/-]{0,40}`).Draw(t, "s")
		first, _ := Normalize(s)
		second, changed := Normalize(first)
		if second != first {
			t.Fatalf("Normalize(%q) not idempotent: %q then %q", s, first, second)
		}
		if changed {
			t.Fatalf("second Normalize(%q) reported a change", first)
		}
	})
}

func TestNormalizationWarning(t *testing.T) {
	w := NormalizationWarning("git-source", "github.com/solomonhd/packer-plugin-docker")
	assert.Equal(t, "⚠ Warning: git-source normalized to lowercase: github.com/solomonhd/packer-plugin-docker", w)
}

func TestExtractName(t *testing.T) {
	tests := []struct {
		dirname string
		want    string
		changed bool
	}{
		{"packer-plugin-docker", "docker", false},
		{"packer-plugin-aws", "aws", false},
		{"packer-plugin-ansible-navigator", "ansible-navigator", false},
		{"packer-plugin-Docker", "docker", true},
		{"Packer-Plugin-AWS", "aws", true},
		{"my-custom-plugin", "my-custom-plugin", false},
		{"docker-builder", "docker-builder", false},
		{"docker", "docker", false},
		{"packer-plugin-", "", false},
		{"packer-plugin-k8s2", "k8s2", false},
		{"Docker", "docker", true},
	}
	for _, tt := range tests {
		t.Run(tt.dirname, func(t *testing.T) {
			got, changed := ExtractName(tt.dirname)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.changed, changed)
		})
	}
}

func TestNameFromRepository(t *testing.T) {
	name, changed := NameFromRepository("github.com/SolomonHD/packer-plugin-Docker")
	assert.Equal(t, "docker", name)
	assert.True(t, changed)

	name, changed = NameFromRepository("github.com/user/packer-plugin-ansible-navigator/")
	assert.Equal(t, "ansible-navigator", name)
	assert.False(t, changed)

	name, _ = NameFromRepository("")
	assert.Equal(t, "plugin", name)
}

func TestStripPrefixFromSource(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"github.com/solomonhd/packer-plugin-ansible-navigator", "github.com/solomonhd/ansible-navigator"},
		{"github.com/user/packer-plugin-docker/", "github.com/user/docker"},
		{"github.com/user/docker", "github.com/user/docker"},
		{"github.com/packer-plugin-org/docker", "github.com/packer-plugin-org/docker"},
		{"github.com/packer-plugin-org/packer-plugin-docker", "github.com/packer-plugin-org/docker"},
		{"packer-plugin-solo", "solo"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, StripPrefixFromSource(tt.in))
		})
	}
}

func TestBinaryName(t *testing.T) {
	assert.Equal(t, "packer-plugin-docker", BinaryName("docker"))
}
