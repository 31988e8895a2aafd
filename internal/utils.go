package textlinks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Repository identifies a GitHub repository.
type Repository struct {
	Owner string
	Name  string
}

func (r Repository) String() string {
	return r.Owner + "/" + r.Name
}

// DetectRepository determines the owner/name pair for dir. GH_REPO wins,
// then `gh repo view`, then the origin remote.
func DetectRepository(ctx context.Context, dir string) (Repository, error) {
	if repo := os.Getenv("GH_REPO"); repo != "" {
		return ParseRepo(repo)
	}

	if HasCommand("gh") {
		if repo, err := detectRepoViaGH(ctx, dir); err == nil {
			return repo, nil
		}
	}

	return detectRepoViaGitAt(ctx, dir)
}

func detectRepoViaGH(ctx context.Context, dir string) (Repository, error) {
	cmd := exec.CommandContext(ctx, "gh", "repo", "view", "--json", "nameWithOwner", "--jq", ".nameWithOwner")
	cmd.Dir = dir
	cmd.Stdin = nil
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = io.Discard
	if err := cmd.Run(); err != nil {
		return Repository{}, err
	}
	return ParseRepo(strings.TrimSpace(stdout.String()))
}

func detectRepoViaGitAt(ctx context.Context, path string) (Repository, error) {
	cmd := exec.CommandContext(ctx, "git", "-C", path, "config", "--get", "remote.origin.url")
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = io.Discard
	if err := cmd.Run(); err != nil {
		return Repository{}, errors.New("unable to determine repository; pass --repo or run inside a git repo")
	}

	remote := strings.TrimSpace(stdout.String())
	repo := parseRepoFromRemote(remote)
	if repo == "" {
		return Repository{}, fmt.Errorf("could not parse repository from remote: %s", remote)
	}
	return ParseRepo(repo)
}

// ParseRepo splits an owner/name identifier.
func ParseRepo(repo string) (Repository, error) {
	repo = strings.TrimSpace(repo)
	parts := strings.Split(repo, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Repository{}, fmt.Errorf("invalid repo identifier: %s", repo)
	}
	return Repository{Owner: parts[0], Name: parts[1]}, nil
}

func parseRepoFromRemote(remote string) string {
	remote = strings.TrimSuffix(remote, ".git")
	if strings.HasPrefix(remote, "git@") {
		if idx := strings.Index(remote, ":"); idx != -1 {
			return remote[idx+1:]
		}
	}
	if strings.HasPrefix(remote, "https://") || strings.HasPrefix(remote, "http://") {
		segments := strings.Split(remote, "/")
		if len(segments) >= 2 {
			return strings.Join(segments[len(segments)-2:], "/")
		}
	}
	if strings.Contains(remote, "/") {
		segments := strings.Split(remote, "/")
		return strings.Join(segments[len(segments)-2:], "/")
	}
	return ""
}

// ResolveToken finds a GitHub token in GH_TOKEN, GITHUB_TOKEN, or from the
// GitHub CLI when the user is already logged in there.
func ResolveToken(ctx context.Context) (string, error) {
	token := os.Getenv("GH_TOKEN")
	if token == "" {
		token = os.Getenv("GITHUB_TOKEN")
	}

	if token == "" && HasCommand("gh") {
		if out, err := exec.CommandContext(ctx, "gh", "auth", "token").Output(); err == nil {
			token = strings.TrimSpace(string(out))
		}
	}

	if token == "" {
		return "", errors.New("GH_TOKEN or GITHUB_TOKEN not set; run `gh auth login`")
	}
	return token, nil
}

// HasCommand reports whether a CLI is available on PATH.
func HasCommand(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
