package textlinks

import (
	"context"
	"fmt"
	"time"

	"github.com/google/go-github/v61/github"
	"golang.org/x/oauth2"
)

// Fetcher loads issue and pull request text from GitHub.
type Fetcher struct {
	client *github.Client
}

// NewGitHubClient constructs an authenticated GitHub REST client.
func NewGitHubClient(ctx context.Context, token, host string) (*github.Client, error) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	client := oauth2.NewClient(ctx, ts)

	if host == "" || host == "github.com" {
		return github.NewClient(client), nil
	}

	base := fmt.Sprintf("https://%s/api/v3/", host)
	upload := fmt.Sprintf("https://%s/uploads/", host)
	return github.NewEnterpriseClient(base, upload, client)
}

// NewFetcher creates a Fetcher instance.
func NewFetcher(client *github.Client) *Fetcher {
	return &Fetcher{client: client}
}

// SourceKind distinguishes issues from pull requests.
type SourceKind string

const (
	SourceIssue       SourceKind = "issue"
	SourcePullRequest SourceKind = "pull"
)

// Source is the raw markdown fetched for one issue or pull request.
type Source struct {
	Kind     SourceKind
	Owner    string
	Repo     string
	Number   int
	Title    string
	Author   string
	State    string
	URL      string
	Body     string
	Updated  time.Time
	Comments []SourceComment
}

// SourceComment is one conversation comment on the issue or pull request.
type SourceComment struct {
	Author  string
	Body    string
	URL     string
	Created time.Time
}

// FetchOptions controls how much of the conversation is loaded.
type FetchOptions struct {
	IncludeComments bool
}

// Fetch loads an issue or pull request and, optionally, its comments.
func (f *Fetcher) Fetch(ctx context.Context, kind SourceKind, owner, repo string, number int, opts FetchOptions) (*Source, error) {
	var (
		src *Source
		err error
	)
	switch kind {
	case SourcePullRequest:
		src, err = f.getPullRequest(ctx, owner, repo, number)
	case SourceIssue:
		src, err = f.getIssue(ctx, owner, repo, number)
	default:
		return nil, fmt.Errorf("unknown source kind %q", kind)
	}
	if err != nil {
		return nil, err
	}

	src.Owner = owner
	src.Repo = repo

	if opts.IncludeComments {
		comments, err := f.listIssueComments(ctx, owner, repo, number)
		if err != nil {
			return nil, fmt.Errorf("list comments: %w", err)
		}
		for _, c := range comments {
			src.Comments = append(src.Comments, SourceComment{
				Author:  safeLogin(c.GetUser()),
				Body:    c.GetBody(),
				URL:     c.GetHTMLURL(),
				Created: derefTimestamp(c.CreatedAt),
			})
		}
	}

	return src, nil
}

func (f *Fetcher) getPullRequest(ctx context.Context, owner, repo string, number int) (*Source, error) {
	pr, _, err := f.client.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		return nil, err
	}
	return &Source{
		Kind:    SourcePullRequest,
		Number:  pr.GetNumber(),
		Title:   pr.GetTitle(),
		Author:  safeLogin(pr.GetUser()),
		State:   pr.GetState(),
		URL:     pr.GetHTMLURL(),
		Body:    pr.GetBody(),
		Updated: derefTimestamp(pr.UpdatedAt),
	}, nil
}

func (f *Fetcher) getIssue(ctx context.Context, owner, repo string, number int) (*Source, error) {
	issue, _, err := f.client.Issues.Get(ctx, owner, repo, number)
	if err != nil {
		return nil, err
	}
	return &Source{
		Kind:    SourceIssue,
		Number:  issue.GetNumber(),
		Title:   issue.GetTitle(),
		Author:  safeLogin(issue.GetUser()),
		State:   issue.GetState(),
		URL:     issue.GetHTMLURL(),
		Body:    issue.GetBody(),
		Updated: derefTimestamp(issue.UpdatedAt),
	}, nil
}

func (f *Fetcher) listIssueComments(ctx context.Context, owner, repo string, number int) ([]*github.IssueComment, error) {
	opts := &github.IssueListCommentsOptions{ListOptions: github.ListOptions{PerPage: 100}}
	var all []*github.IssueComment
	for {
		items, resp, err := f.client.Issues.ListComments(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
		if resp.NextPage == 0 {
			return all, nil
		}
		opts.Page = resp.NextPage
	}
}

func derefTimestamp(ts *github.Timestamp) time.Time {
	if ts == nil {
		return time.Time{}
	}
	return ts.Time
}

func safeLogin(user *github.User) string {
	if user == nil {
		return ""
	}
	if login := user.GetLogin(); login != "" {
		return login
	}
	return user.GetName()
}
