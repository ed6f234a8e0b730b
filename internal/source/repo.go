package source

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-git/go-git/v5"
)

// ErrNoOrigin is returned when a repository has no usable origin remote.
var ErrNoOrigin = errors.New("no origin remote configured")

// RepositoryPath derives the plugin's repository path (host/owner/repo) from
// the origin remote of the git repository containing dir.
func RepositoryPath(dir string) (string, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", fmt.Errorf("opening git repository at %s: %w", dir, err)
	}
	remote, err := repo.Remote("origin")
	if err != nil {
		if errors.Is(err, git.ErrRemoteNotFound) {
			return "", ErrNoOrigin
		}
		return "", fmt.Errorf("reading origin remote: %w", err)
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", ErrNoOrigin
	}
	return ParseRemoteURL(urls[0])
}

// ParseRemoteURL normalizes a git remote URL to host/owner/repo format.
// Handles scp-style SSH (git@host:owner/repo.git) and URL forms, and strips
// the .git suffix.
func ParseRemoteURL(rawURL string) (string, error) {
	if rawURL == "" {
		return "", fmt.Errorf("empty remote URL")
	}

	if at := strings.Index(rawURL, "@"); at >= 0 && !strings.Contains(rawURL, "://") {
		hostPath := rawURL[at+1:]
		host, path, ok := strings.Cut(hostPath, ":")
		if !ok || host == "" || path == "" {
			return "", fmt.Errorf("invalid SSH remote URL: %s", rawURL)
		}
		return host + "/" + strings.TrimSuffix(strings.Trim(path, "/"), ".git"), nil
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid remote URL %q: %w", rawURL, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("remote URL %q has no host", rawURL)
	}
	path := strings.TrimSuffix(strings.Trim(u.Path, "/"), ".git")
	return u.Hostname() + "/" + path, nil
}
