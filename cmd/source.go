package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	textlinks "github.com/Quish-Labs/gh-textlinks/internal"
)

const fetchTimeout = 60 * time.Second

// sourceFlags select where a document comes from.
type sourceFlags struct {
	Repo     string
	Issue    int
	PR       int
	Links    string
	Comments bool
	BareURLs bool
}

func (s *sourceFlags) flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "repo",
			Aliases:     []string{"R"},
			Usage:       "GitHub repository as owner/name (defaults to the current repository)",
			Destination: &s.Repo,
		},
		&cli.IntFlag{
			Name:        "issue",
			Usage:       "load the body of this issue",
			Destination: &s.Issue,
		},
		&cli.IntFlag{
			Name:        "pr",
			Aliases:     []string{"p"},
			Usage:       "load the body of this pull request",
			Destination: &s.PR,
		},
		&cli.BoolFlag{
			Name:        "comments",
			Usage:       "append issue or pull request comments to the text",
			Destination: &s.Comments,
		},
		&cli.BoolFlag{
			Name:        "bare-urls",
			Usage:       "link URLs that appear outside markdown links",
			Value:       true,
			Destination: &s.BareURLs,
		},
		&cli.StringFlag{
			Name:        "links",
			Usage:       "YAML file with extra link definitions",
			Destination: &s.Links,
		},
	}
}

// target resolves the GitHub issue or pull request to load.
func (s *sourceFlags) target(ctx context.Context) (textlinks.SourceKind, textlinks.Repository, int, error) {
	var (
		kind   textlinks.SourceKind
		number int
	)
	switch {
	case s.Issue > 0 && s.PR > 0:
		return "", textlinks.Repository{}, 0, errors.New("cannot use --issue together with --pr")
	case s.Issue > 0:
		kind, number = textlinks.SourceIssue, s.Issue
	case s.PR > 0:
		kind, number = textlinks.SourcePullRequest, s.PR
	default:
		return "", textlinks.Repository{}, 0, errors.New("no document: pass a YAML file or --issue/--pr")
	}

	var (
		repo textlinks.Repository
		err  error
	)
	if s.Repo != "" {
		repo, err = textlinks.ParseRepo(s.Repo)
	} else {
		repo, err = textlinks.DetectRepository(ctx, ".")
	}
	if err != nil {
		return "", textlinks.Repository{}, 0, fmt.Errorf("detect repository: %w", err)
	}
	return kind, repo, number, nil
}

// label names the GitHub source for the loading screen.
func (s *sourceFlags) label(ctx context.Context) (string, error) {
	_, repo, number, err := s.target(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s#%d", repo, number), nil
}

// loadDocument reads the document from path, or from GitHub when path is
// empty, merges --links and binds every link to a handler.
func (a *app) loadDocument(ctx context.Context, path string, actions textlinks.Actions) (textlinks.Document, error) {
	var def *textlinks.DocumentDef
	if path != "" {
		if a.src.Issue > 0 || a.src.PR > 0 {
			return textlinks.Document{}, errors.New("cannot combine a document file with --issue/--pr")
		}
		loaded, err := textlinks.LoadDocument(path)
		if err != nil {
			return textlinks.Document{}, fmt.Errorf("load document: %w", err)
		}
		a.logger.Debug().Str("path", path).Int("links", len(loaded.Links)).Msg("document loaded")
		def = loaded
	} else {
		fetched, err := a.fetchDocument(ctx)
		if err != nil {
			return textlinks.Document{}, err
		}
		def = fetched
	}

	if a.src.Links != "" {
		links, err := textlinks.LoadLinks(a.src.Links)
		if err != nil {
			return textlinks.Document{}, fmt.Errorf("load links: %w", err)
		}
		def.Append(links...)
	}

	doc, err := def.Bind(actions)
	if err != nil {
		return textlinks.Document{}, fmt.Errorf("bind links: %w", err)
	}
	return doc, nil
}

func (a *app) fetchDocument(ctx context.Context) (*textlinks.DocumentDef, error) {
	kind, repo, number, err := a.src.target(ctx)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	token, err := textlinks.ResolveToken(ctx)
	if err != nil {
		return nil, err
	}

	client, err := textlinks.NewGitHubClient(ctx, token, os.Getenv("GH_HOST"))
	if err != nil {
		return nil, fmt.Errorf("create GitHub client: %w", err)
	}

	a.logger.Debug().Str("repo", repo.String()).Str("kind", string(kind)).Int("number", number).Msg("fetching source")
	src, err := textlinks.NewFetcher(client).Fetch(ctx, kind, repo.Owner, repo.Name, number, textlinks.FetchOptions{
		IncludeComments: a.src.Comments,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", kind, err)
	}

	def := textlinks.DocumentFromSource(src, textlinks.NormalizationOptions{LinkBareURLs: a.src.BareURLs})
	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("invalid document: %w", err)
	}
	return &def, nil
}
