// Package actions holds the fixed set of side-effecting operations the
// bot performs against a repository. Each action is a short sequence of
// remote calls with no transactional guarantee; a partial failure leaves
// partial remote state, which is acceptable because every action is
// re-triggerable.
package actions

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ubiquity-os/onboarding-bot/internal/github"
)

// demoLabels is the fixed label set applied by SetDemoLabels
var demoLabels = []string{
	"Priority: 1 (Normal)",
	"Time: <1 Hour",
}

const emptyCommitMessage = "chore: start demo task"

// Catalog executes demo actions through the bot and user identities
type Catalog struct {
	bot    github.Client
	user   github.Client
	waiter ProvisioningWaiter
	logger *slog.Logger
}

// NewCatalog creates a catalog. The bot client carries installation
// authority; the user client acts as the onboarding end user and is
// only used for the fork-and-PR flow.
func NewCatalog(bot, user github.Client, waiter ProvisioningWaiter, logger *slog.Logger) *Catalog {
	return &Catalog{
		bot:    bot,
		user:   user,
		waiter: waiter,
		logger: logger,
	}
}

// SetDemoLabels removes all labels on the issue, then applies the fixed
// demo label set. The remove happens strictly before the add; if the add
// fails the issue is left label-less and the action can be re-run.
func (c *Catalog) SetDemoLabels(ctx context.Context, issue github.IssueRef) error {
	if err := c.bot.RemoveAllLabels(ctx, issue); err != nil {
		return fmt.Errorf("remove labels from %s: %w", issue, err)
	}

	if err := c.bot.AddLabels(ctx, issue, demoLabels); err != nil {
		return fmt.Errorf("add demo labels to %s: %w", issue, err)
	}

	c.logger.Info("demo labels set", "issue", issue.String())
	return nil
}

// ReopenIssue sets the issue state to open. Reopening an already-open
// issue is a no-op from the caller's perspective.
func (c *Catalog) ReopenIssue(ctx context.Context, issue github.IssueRef) error {
	if err := c.bot.ReopenIssue(ctx, issue); err != nil {
		return fmt.Errorf("reopen %s: %w", issue, err)
	}

	c.logger.Info("issue reopened", "issue", issue.String())
	return nil
}

// ForkAndOpenPullRequest forks the issue's repository under the actor,
// waits for provisioning, pushes an empty commit on a fresh branch and
// opens a pull request resolving the issue. All remote calls run as the
// actor's own identity. Steps are strictly ordered by data dependency.
func (c *Catalog) ForkAndOpenPullRequest(ctx context.Context, issue github.IssueRef, actor string) (github.PullRequestRef, error) {
	source := issue.Repository
	forkName := fmt.Sprintf("%s-%s", source.Name, source.Owner)

	fork, err := c.user.CreateFork(ctx, source, actor, forkName)
	if err != nil {
		return github.PullRequestRef{}, fmt.Errorf("fork %s as %s/%s: %w", source, actor, forkName, err)
	}

	if err := c.waiter.Wait(ctx, fork); err != nil {
		return github.PullRequestRef{}, fmt.Errorf("wait for fork %s: %w", fork, err)
	}

	repo, err := c.user.GetRepository(ctx, source)
	if err != nil {
		return github.PullRequestRef{}, fmt.Errorf("get repository %s: %w", source, err)
	}

	head, err := c.user.GetBranchHead(ctx, source, repo.DefaultBranch)
	if err != nil {
		return github.PullRequestRef{}, fmt.Errorf("get head of %s@%s: %w", source, repo.DefaultBranch, err)
	}

	branch := "fix/" + uuid.NewString()
	if err := c.user.CreateBranch(ctx, fork, branch, head.SHA); err != nil {
		return github.PullRequestRef{}, fmt.Errorf("create branch %s in %s: %w", branch, fork, err)
	}

	// Same tree as the branch head, new parent: an empty commit so the
	// pull request has something to propose.
	commitSHA, err := c.user.CreateEmptyCommit(ctx, fork, emptyCommitMessage, head.TreeSHA, head.SHA)
	if err != nil {
		return github.PullRequestRef{}, fmt.Errorf("create empty commit in %s: %w", fork, err)
	}

	if err := c.user.UpdateBranch(ctx, fork, branch, commitSHA); err != nil {
		return github.PullRequestRef{}, fmt.Errorf("update branch %s in %s: %w", branch, fork, err)
	}

	pr, err := c.user.CreatePullRequest(ctx, source,
		actor+":"+branch,
		repo.DefaultBranch,
		emptyCommitMessage,
		fmt.Sprintf("Resolves #%d", issue.Number),
	)
	if err != nil {
		return github.PullRequestRef{}, fmt.Errorf("open pull request into %s: %w", source, err)
	}

	c.logger.Info("pull request opened", "pr", pr.String(), "actor", actor, "branch", branch)
	return pr, nil
}

// MergePullRequest merges the pull request by number
func (c *Catalog) MergePullRequest(ctx context.Context, pr github.PullRequestRef) error {
	if err := c.bot.MergePullRequest(ctx, pr); err != nil {
		return fmt.Errorf("merge %s: %w", pr, err)
	}

	c.logger.Info("pull request merged", "pr", pr.String())
	return nil
}

// PostComment appends a comment with the literal text to the issue thread
func (c *Catalog) PostComment(ctx context.Context, issue github.IssueRef, text string) error {
	if err := c.bot.CreateIssueComment(ctx, issue, text); err != nil {
		return fmt.Errorf("comment on %s: %w", issue, err)
	}

	return nil
}
