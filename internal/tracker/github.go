package tracker

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/go-github/v81/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/temirov/relpick/internal/shared"
)

const (
	githubLoggerRequiredMessageConstant     = "github backend requires a logger"
	githubClientRequiredMessageConstant     = "github backend requires a client"
	githubOwnerRequiredMessageConstant      = "github repository owner must be provided"
	githubRepositoryRequiredMessageConstant = "github repository name must be provided"

	githubMilestoneStateAllConstant = "all"
	githubIssueKeyTemplateConstant  = "#%d"
	githubListPageSizeConstant      = 100

	githubMilestoneFoundLogMessageConstant = "github milestone resolved"
	githubMilestoneLogFieldConstant        = "milestone"
	githubRepositoryLogFieldConstant       = "repository"
)

// GitHubConfiguration carries the repository coordinates for a GitHub backend.
type GitHubConfiguration struct {
	Owner      string
	Repository string
}

// GitHubBackend resolves release task keys from GitHub milestones. The
// milestone whose title equals the release version defines the release scope;
// issue numbers are rendered as #-prefixed keys.
type GitHubBackend struct {
	logger        *zap.Logger
	client        *github.Client
	configuration GitHubConfiguration
	reporter      shared.Reporter
}

// NewGitHubClient builds an authenticated GitHub API client. An empty token
// yields an unauthenticated client suitable for public repositories.
func NewGitHubClient(executionContext context.Context, token string) *github.Client {
	trimmedToken := strings.TrimSpace(token)
	if len(trimmedToken) == 0 {
		return github.NewClient(nil)
	}
	tokenSource := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: trimmedToken})
	return github.NewClient(oauth2.NewClient(executionContext, tokenSource))
}

// NewGitHubBackend validates the configuration and constructs a GitHubBackend.
func NewGitHubBackend(logger *zap.Logger, client *github.Client, configuration GitHubConfiguration, reporter shared.Reporter) (*GitHubBackend, error) {
	if logger == nil {
		return nil, errors.New(githubLoggerRequiredMessageConstant)
	}
	if client == nil {
		return nil, errors.New(githubClientRequiredMessageConstant)
	}

	sanitizedConfiguration := GitHubConfiguration{
		Owner:      strings.TrimSpace(configuration.Owner),
		Repository: strings.TrimSpace(configuration.Repository),
	}
	if len(sanitizedConfiguration.Owner) == 0 {
		return nil, errors.New(githubOwnerRequiredMessageConstant)
	}
	if len(sanitizedConfiguration.Repository) == 0 {
		return nil, errors.New(githubRepositoryRequiredMessageConstant)
	}

	resolvedReporter := reporter
	if resolvedReporter == nil {
		resolvedReporter = shared.NewWriterReporter(nil)
	}

	return &GitHubBackend{
		logger:        logger,
		client:        client,
		configuration: sanitizedConfiguration,
		reporter:      resolvedReporter,
	}, nil
}

// SearchReleaseTasks finds the milestone titled after the release version and
// returns the issue keys attached to it.
func (backend *GitHubBackend) SearchReleaseTasks(executionContext context.Context, releaseVersion string) ([]string, error) {
	milestoneNumber, milestoneError := backend.resolveMilestoneNumber(executionContext, releaseVersion)
	if milestoneError != nil {
		return nil, milestoneError
	}
	return backend.listMilestoneIssueKeys(executionContext, milestoneNumber)
}

func (backend *GitHubBackend) resolveMilestoneNumber(executionContext context.Context, releaseVersion string) (int, error) {
	listOptions := &github.MilestoneListOptions{
		State:       githubMilestoneStateAllConstant,
		ListOptions: github.ListOptions{PerPage: githubListPageSizeConstant},
	}
	for {
		milestones, response, listError := backend.client.Issues.ListMilestones(
			executionContext,
			backend.configuration.Owner,
			backend.configuration.Repository,
			listOptions,
		)
		if listError != nil {
			return 0, listError
		}
		for _, milestone := range milestones {
			if milestone.GetTitle() == releaseVersion {
				backend.reporter.Printf(foundVersionTemplateConstant, milestone.GetTitle())
				backend.logger.Debug(githubMilestoneFoundLogMessageConstant,
					zap.String(githubRepositoryLogFieldConstant, backend.repositorySlug()),
					zap.Int(githubMilestoneLogFieldConstant, milestone.GetNumber()),
				)
				return milestone.GetNumber(), nil
			}
		}
		if response == nil || response.NextPage == 0 {
			return 0, ErrReleaseVersionNotFound
		}
		listOptions.Page = response.NextPage
	}
}

func (backend *GitHubBackend) listMilestoneIssueKeys(executionContext context.Context, milestoneNumber int) ([]string, error) {
	listOptions := &github.IssueListByRepoOptions{
		Milestone:   strconv.Itoa(milestoneNumber),
		State:       githubMilestoneStateAllConstant,
		ListOptions: github.ListOptions{PerPage: githubListPageSizeConstant},
	}

	issueKeys := []string{}
	for {
		issues, response, listError := backend.client.Issues.ListByRepo(
			executionContext,
			backend.configuration.Owner,
			backend.configuration.Repository,
			listOptions,
		)
		if listError != nil {
			return nil, listError
		}
		for _, issue := range issues {
			issueKeys = append(issueKeys, fmt.Sprintf(githubIssueKeyTemplateConstant, issue.GetNumber()))
		}
		if response == nil || response.NextPage == 0 {
			break
		}
		listOptions.ListOptions.Page = response.NextPage
	}
	return issueKeys, nil
}

func (backend *GitHubBackend) repositorySlug() string {
	return backend.configuration.Owner + "/" + backend.configuration.Repository
}
