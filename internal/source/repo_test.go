package source

import (
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRemoteURL(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"https://github.com/SolomonHD/packer-plugin-ansible-navigator.git", "github.com/SolomonHD/packer-plugin-ansible-navigator", false},
		{"https://github.com/user/packer-plugin-docker", "github.com/user/packer-plugin-docker", false},
		{"git@github.com:user/packer-plugin-docker.git", "github.com/user/packer-plugin-docker", false},
		{"ssh://git@github.com:22/user/packer-plugin-docker.git", "github.com/user/packer-plugin-docker", false},
		{"", "", true},
		{"git@github.com", "", true},
		{"/local/path", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRemoteURL(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRepositoryPath(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	_, err = RepositoryPath(dir)
	assert.ErrorIs(t, err, ErrNoOrigin)

	_, err = repo.CreateRemote(&config.RemoteConfig{
		Name: "origin",
		URLs: []string{"git@github.com:user/packer-plugin-docker.git"},
	})
	require.NoError(t, err)

	path, err := RepositoryPath(dir)
	require.NoError(t, err)
	assert.Equal(t, "github.com/user/packer-plugin-docker", path)
}

func TestRepositoryPathNotARepo(t *testing.T) {
	_, err := RepositoryPath(t.TempDir())
	assert.Error(t, err)
}
