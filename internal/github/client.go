package github

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"
)

// Client defines the interface for GitHub API operations.
// Two instances exist at runtime: one authenticated as the bot
// installation, one as the acting end user.
type Client interface {
	// GetRepository fetches repository metadata (default branch)
	GetRepository(ctx context.Context, repo RepositoryRef) (*Repository, error)

	// CreateFork forks a repository under forkOwner with the given name.
	// Fork provisioning is asynchronous on the remote side; a 202 response
	// is treated as success.
	CreateFork(ctx context.Context, source RepositoryRef, forkOwner, forkName string) (RepositoryRef, error)

	// GetBranchHead fetches the head commit and tree of a branch
	GetBranchHead(ctx context.Context, repo RepositoryRef, branch string) (*BranchHead, error)

	// CreateBranch creates a new branch pointing at the given commit
	CreateBranch(ctx context.Context, repo RepositoryRef, branch, sha string) error

	// CreateEmptyCommit creates a commit reusing an existing tree, and
	// returns the new commit SHA
	CreateEmptyCommit(ctx context.Context, repo RepositoryRef, message, treeSHA, parentSHA string) (string, error)

	// UpdateBranch force-updates a branch to point at the given commit
	UpdateBranch(ctx context.Context, repo RepositoryRef, branch, sha string) error

	// CreatePullRequest opens a pull request into base from head ("owner:branch")
	CreatePullRequest(ctx context.Context, base RepositoryRef, head, baseBranch, title, body string) (PullRequestRef, error)

	// MergePullRequest merges the pull request by number
	MergePullRequest(ctx context.Context, pr PullRequestRef) error

	// RemoveAllLabels removes every label from an issue
	RemoveAllLabels(ctx context.Context, issue IssueRef) error

	// AddLabels applies labels to an issue
	AddLabels(ctx context.Context, issue IssueRef, labels []string) error

	// ReopenIssue sets the issue state to open
	ReopenIssue(ctx context.Context, issue IssueRef) error

	// CreateIssueComment appends a comment to the issue thread
	CreateIssueComment(ctx context.Context, issue IssueRef, body string) error

	// GetOrgMembership checks membership of user in org; a nil error
	// means the membership exists
	GetOrgMembership(ctx context.Context, org, user string) error

	// IsCollaboratorAdmin reports whether the user's collaborator
	// permission level on the repository carries the admin flag
	IsCollaboratorAdmin(ctx context.Context, repo RepositoryRef, user string) (bool, error)
}

// ClientImpl is the concrete implementation using go-github
type ClientImpl struct {
	client *github.Client
}

// NewClient creates a GitHub API client authenticated with the given token
func NewClient(token string) (Client, error) {
	if token == "" {
		return nil, errors.New("GitHub token is required")
	}

	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(context.Background(), ts)

	return &ClientImpl{client: github.NewClient(tc)}, nil
}

// GetRepository fetches repository metadata
func (c *ClientImpl) GetRepository(ctx context.Context, repo RepositoryRef) (*Repository, error) {
	r, _, err := c.client.Repositories.Get(ctx, repo.Owner, repo.Name)
	if err != nil {
		return nil, err
	}

	return &Repository{
		Ref: RepositoryRef{
			Owner: r.GetOwner().GetLogin(),
			Name:  r.GetName(),
		},
		DefaultBranch: r.GetDefaultBranch(),
	}, nil
}

// CreateFork forks source under forkOwner with the given name
func (c *ClientImpl) CreateFork(ctx context.Context, source RepositoryRef, forkOwner, forkName string) (RepositoryRef, error) {
	opts := &github.RepositoryCreateForkOptions{Name: forkName}

	fork, _, err := c.client.Repositories.CreateFork(ctx, source.Owner, source.Name, opts)
	if err != nil {
		// The fork endpoint answers 202 while provisioning continues in the
		// background; go-github surfaces that as AcceptedError.
		var accepted *github.AcceptedError
		if !errors.As(err, &accepted) {
			return RepositoryRef{}, err
		}
		return RepositoryRef{Owner: forkOwner, Name: forkName}, nil
	}

	return RepositoryRef{
		Owner: fork.GetOwner().GetLogin(),
		Name:  fork.GetName(),
	}, nil
}

// GetBranchHead fetches the head commit and tree of a branch
func (c *ClientImpl) GetBranchHead(ctx context.Context, repo RepositoryRef, branch string) (*BranchHead, error) {
	b, _, err := c.client.Repositories.GetBranch(ctx, repo.Owner, repo.Name, branch, 0)
	if err != nil {
		return nil, err
	}

	return &BranchHead{
		SHA:     b.GetCommit().GetSHA(),
		TreeSHA: b.GetCommit().GetCommit().GetTree().GetSHA(),
	}, nil
}

// CreateBranch creates refs/heads/{branch} pointing at sha
func (c *ClientImpl) CreateBranch(ctx context.Context, repo RepositoryRef, branch, sha string) error {
	ref := &github.Reference{
		Ref:    github.String("refs/heads/" + branch),
		Object: &github.GitObject{SHA: github.String(sha)},
	}

	_, _, err := c.client.Git.CreateRef(ctx, repo.Owner, repo.Name, ref)
	return err
}

// CreateEmptyCommit creates a commit with the given tree and parent
func (c *ClientImpl) CreateEmptyCommit(ctx context.Context, repo RepositoryRef, message, treeSHA, parentSHA string) (string, error) {
	commit := &github.Commit{
		Message: github.String(message),
		Tree:    &github.Tree{SHA: github.String(treeSHA)},
		Parents: []*github.Commit{{SHA: github.String(parentSHA)}},
	}

	created, _, err := c.client.Git.CreateCommit(ctx, repo.Owner, repo.Name, commit, nil)
	if err != nil {
		return "", err
	}

	return created.GetSHA(), nil
}

// UpdateBranch force-updates refs/heads/{branch} to sha
func (c *ClientImpl) UpdateBranch(ctx context.Context, repo RepositoryRef, branch, sha string) error {
	ref := &github.Reference{
		Ref:    github.String("refs/heads/" + branch),
		Object: &github.GitObject{SHA: github.String(sha)},
	}

	_, _, err := c.client.Git.UpdateRef(ctx, repo.Owner, repo.Name, ref, true)
	return err
}

// CreatePullRequest opens a pull request into base
func (c *ClientImpl) CreatePullRequest(ctx context.Context, base RepositoryRef, head, baseBranch, title, body string) (PullRequestRef, error) {
	pr := &github.NewPullRequest{
		Title:               github.String(title),
		Head:                github.String(head),
		Base:                github.String(baseBranch),
		Body:                github.String(body),
		MaintainerCanModify: github.Bool(true),
	}

	created, _, err := c.client.PullRequests.Create(ctx, base.Owner, base.Name, pr)
	if err != nil {
		return PullRequestRef{}, err
	}

	return PullRequestRef{Repository: base, Number: created.GetNumber()}, nil
}

// MergePullRequest merges the pull request by number
func (c *ClientImpl) MergePullRequest(ctx context.Context, pr PullRequestRef) error {
	_, _, err := c.client.PullRequests.Merge(ctx, pr.Repository.Owner, pr.Repository.Name, pr.Number, "", nil)
	return err
}

// RemoveAllLabels removes every label from an issue
func (c *ClientImpl) RemoveAllLabels(ctx context.Context, issue IssueRef) error {
	_, err := c.client.Issues.RemoveLabelsForIssue(ctx, issue.Repository.Owner, issue.Repository.Name, issue.Number)
	return err
}

// AddLabels applies labels to an issue
func (c *ClientImpl) AddLabels(ctx context.Context, issue IssueRef, labels []string) error {
	_, _, err := c.client.Issues.AddLabelsToIssue(ctx, issue.Repository.Owner, issue.Repository.Name, issue.Number, labels)
	return err
}

// ReopenIssue sets the issue state to open
func (c *ClientImpl) ReopenIssue(ctx context.Context, issue IssueRef) error {
	req := &github.IssueRequest{State: github.String("open")}

	_, _, err := c.client.Issues.Edit(ctx, issue.Repository.Owner, issue.Repository.Name, issue.Number, req)
	return err
}

// CreateIssueComment appends a comment to the issue thread
func (c *ClientImpl) CreateIssueComment(ctx context.Context, issue IssueRef, body string) error {
	comment := &github.IssueComment{Body: github.String(body)}

	_, _, err := c.client.Issues.CreateComment(ctx, issue.Repository.Owner, issue.Repository.Name, issue.Number, comment)
	return err
}

// GetOrgMembership checks membership of user in org
func (c *ClientImpl) GetOrgMembership(ctx context.Context, org, user string) error {
	_, _, err := c.client.Organizations.GetOrgMembership(ctx, user, org)
	if err != nil {
		return fmt.Errorf("get org membership of %s in %s: %w", user, org, err)
	}
	return nil
}

// IsCollaboratorAdmin reports the admin flag of the user's collaborator
// permission level on the repository
func (c *ClientImpl) IsCollaboratorAdmin(ctx context.Context, repo RepositoryRef, user string) (bool, error) {
	level, _, err := c.client.Repositories.GetPermissionLevel(ctx, repo.Owner, repo.Name, user)
	if err != nil {
		return false, err
	}

	return level.GetUser().GetPermissions()["admin"], nil
}
