// Package dispatch maps inbound webhook events to demo actions. Routing
// is an explicit ordered list of (predicate, handler) pairs evaluated
// first-match-wins, so at most one command runs per event.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ubiquity-os/onboarding-bot/internal/github"
	"github.com/ubiquity-os/onboarding-bot/internal/permission"
)

const (
	demoCommand = "/demo"

	// Comment-body markers for the scripted command flows. Matching is
	// substring containment of the marker plus the acting username
	// anywhere in the body; that is loose on purpose and mirrors how the
	// demo comments are authored.
	startStopMarker = "command-start-stop"
	walletMarker    = "command-wallet"

	// Label events only trigger on repositories whose name carries this
	demoRepoMarker = "ubiquity-os-demo"

	priceLabelPrefix = "Price"
)

// CommentEvent is an issue-comment created/edited event
type CommentEvent struct {
	// Actor is the login of the user whose comment triggered the event
	Actor string

	// ActingUser is the login the user-scoped token acts as
	ActingUser string

	Issue github.IssueRef
	Body  string
}

// LabelEvent is an issue labeled event
type LabelEvent struct {
	Actor string
	Issue github.IssueRef
	Label string
}

// ActionCatalog is the set of side-effecting operations the dispatcher
// can invoke
type ActionCatalog interface {
	SetDemoLabels(ctx context.Context, issue github.IssueRef) error
	ReopenIssue(ctx context.Context, issue github.IssueRef) error
	ForkAndOpenPullRequest(ctx context.Context, issue github.IssueRef, actor string) (github.PullRequestRef, error)
	MergePullRequest(ctx context.Context, pr github.PullRequestRef) error
	PostComment(ctx context.Context, issue github.IssueRef, text string) error
}

// AdminChecker resolves administrative authority for privileged commands
type AdminChecker interface {
	IsAdmin(ctx context.Context, actor string, repo github.RepositoryRef) permission.Decision
}

// Dispatcher classifies inbound events and runs the matching action
// sequence
type Dispatcher struct {
	catalog ActionCatalog
	perms   AdminChecker
	msgs    Messages
	logger  *slog.Logger
}

// NewDispatcher creates a dispatcher
func NewDispatcher(catalog ActionCatalog, perms AdminChecker, msgs Messages, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		catalog: catalog,
		perms:   perms,
		msgs:    msgs,
		logger:  logger,
	}
}

type commentRoute struct {
	name  string
	match func(d *Dispatcher, ev *CommentEvent) bool
	run   func(d *Dispatcher, ctx context.Context, ev *CommentEvent) error
}

// commentRoutes is evaluated in order; the first matching route wins.
// The order is a contract, not an accident: /demo must win over the
// marker routes so an admin comment quoting a marker still runs /demo.
var commentRoutes = []commentRoute{
	{
		name:  "demo",
		match: (*Dispatcher).matchDemo,
		run:   (*Dispatcher).runDemo,
	},
	{
		name:  "start-stop",
		match: (*Dispatcher).matchStartStop,
		run:   (*Dispatcher).runStartStop,
	},
	{
		name:  "wallet",
		match: (*Dispatcher).matchWallet,
		run:   (*Dispatcher).runWallet,
	},
}

// HandleIssueComment dispatches a comment created/edited event. A body
// matching no route completes silently.
func (d *Dispatcher) HandleIssueComment(ctx context.Context, ev *CommentEvent) error {
	for _, rt := range commentRoutes {
		if !rt.match(d, ev) {
			continue
		}

		d.logger.Info("dispatching comment command",
			"route", rt.name, "actor", ev.Actor, "issue", ev.Issue.String())
		return rt.run(d, ctx, ev)
	}

	d.logger.Debug("comment matched no route", "actor", ev.Actor, "issue", ev.Issue.String())
	return nil
}

// HandleIssueLabeled dispatches an issue labeled event. Only Price
// labels on demo repositories trigger the scripted welcome sequence.
func (d *Dispatcher) HandleIssueLabeled(ctx context.Context, ev *LabelEvent) error {
	if !strings.HasPrefix(ev.Label, priceLabelPrefix) ||
		!strings.Contains(ev.Issue.Repository.Name, demoRepoMarker) {
		d.logger.Debug("label matched no route",
			"label", ev.Label, "actor", ev.Actor, "repository", ev.Issue.Repository.String())
		return nil
	}

	d.logger.Info("dispatching priced-issue welcome",
		"label", ev.Label, "actor", ev.Actor, "issue", ev.Issue.String())

	comments := []string{
		d.msgs.Welcome,
		d.msgs.WalletIntro,
		"/wallet " + d.msgs.WalletAddress,
	}
	for _, text := range comments {
		if err := d.catalog.PostComment(ctx, ev.Issue, text); err != nil {
			return fmt.Errorf("post welcome sequence on %s: %w", ev.Issue, err)
		}
	}

	return nil
}

func (d *Dispatcher) matchDemo(ev *CommentEvent) bool {
	return strings.HasPrefix(strings.TrimSpace(ev.Body), demoCommand)
}

func (d *Dispatcher) runDemo(ctx context.Context, ev *CommentEvent) error {
	decision := d.perms.IsAdmin(ctx, ev.Actor, ev.Issue.Repository)
	if !decision.Authorized {
		return NewAuthorizationError(ev.Actor, demoCommand)
	}

	d.logger.Debug("demo command authorized", "actor", ev.Actor, "basis", string(decision.Basis))

	if err := d.catalog.ReopenIssue(ctx, ev.Issue); err != nil {
		return err
	}
	return d.catalog.SetDemoLabels(ctx, ev.Issue)
}

func (d *Dispatcher) matchStartStop(ev *CommentEvent) bool {
	return strings.Contains(ev.Body, startStopMarker) && strings.Contains(ev.Body, ev.ActingUser)
}

// runStartStop runs the demo task pickup as the acting user's own
// identity: fork, open a pull request, then merge it
func (d *Dispatcher) runStartStop(ctx context.Context, ev *CommentEvent) error {
	pr, err := d.catalog.ForkAndOpenPullRequest(ctx, ev.Issue, ev.ActingUser)
	if err != nil {
		return err
	}
	return d.catalog.MergePullRequest(ctx, pr)
}

func (d *Dispatcher) matchWallet(ev *CommentEvent) bool {
	return strings.Contains(ev.Body, walletMarker) && strings.Contains(ev.Body, ev.ActingUser)
}

func (d *Dispatcher) runWallet(ctx context.Context, ev *CommentEvent) error {
	if err := d.catalog.PostComment(ctx, ev.Issue, d.msgs.WalletExplainer); err != nil {
		return err
	}
	return d.catalog.PostComment(ctx, ev.Issue, "/start")
}
