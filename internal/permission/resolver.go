// Package permission decides whether an actor has administrative
// authority over a repository. The check fails closed: any failure to
// query the authority source counts as "not authorized".
package permission

import (
	"context"
	"log/slog"

	"github.com/ubiquity-os/onboarding-bot/internal/github"
)

// Basis records which check authorized (or denied) the actor
type Basis string

const (
	BasisOwner             Basis = "owner"
	BasisOrgMember         Basis = "org-member"
	BasisCollaboratorAdmin Basis = "collaborator-admin"
	BasisDenied            Basis = "denied"
)

// Decision is the result of an authorization check. Decisions are
// computed fresh on every call; nothing is cached between requests.
type Decision struct {
	Authorized bool
	Basis      Basis
}

// AuthorityClient is the remote query surface the resolver needs
type AuthorityClient interface {
	GetOrgMembership(ctx context.Context, org, user string) error
	IsCollaboratorAdmin(ctx context.Context, repo github.RepositoryRef, user string) (bool, error)
}

// Resolver runs an ordered cascade of authority checks. Each check
// either determines the outcome or declares itself indeterminate, in
// which case the next check runs; if every check is indeterminate the
// actor is denied.
type Resolver struct {
	client AuthorityClient
	logger *slog.Logger
}

// NewResolver creates a resolver backed by the elevated client
func NewResolver(client AuthorityClient, logger *slog.Logger) *Resolver {
	return &Resolver{
		client: client,
		logger: logger,
	}
}

type check struct {
	basis Basis
	run   func(ctx context.Context, actor string, repo github.RepositoryRef) (authorized, determined bool)
}

// IsAdmin reports whether the actor has administrative authority over
// the repository. It never returns an error; query failures are logged
// and collapse to a denial.
func (r *Resolver) IsAdmin(ctx context.Context, actor string, repo github.RepositoryRef) Decision {
	checks := []check{
		{basis: BasisOwner, run: r.checkOwner},
		{basis: BasisOrgMember, run: r.checkOrgMembership},
		{basis: BasisCollaboratorAdmin, run: r.checkCollaboratorAdmin},
	}

	for _, c := range checks {
		authorized, determined := c.run(ctx, actor, repo)
		if !determined {
			continue
		}

		if !authorized {
			r.logger.Debug("actor denied", "actor", actor, "repository", repo.String(), "basis", string(BasisDenied))
			return Decision{Authorized: false, Basis: BasisDenied}
		}

		r.logger.Debug("actor authorized", "actor", actor, "repository", repo.String(), "basis", string(c.basis))
		return Decision{Authorized: true, Basis: c.basis}
	}

	r.logger.Debug("actor denied, no check determined authority", "actor", actor, "repository", repo.String())
	return Decision{Authorized: false, Basis: BasisDenied}
}

// checkOwner authorizes the repository owner without any remote call
func (r *Resolver) checkOwner(_ context.Context, actor string, repo github.RepositoryRef) (bool, bool) {
	if actor == repo.Owner {
		return true, true
	}
	return false, false
}

// checkOrgMembership authorizes members of the org owning the
// repository. Any query failure (not a member, no such org, network
// error) is indeterminate, not a denial.
func (r *Resolver) checkOrgMembership(ctx context.Context, actor string, repo github.RepositoryRef) (bool, bool) {
	if err := r.client.GetOrgMembership(ctx, repo.Owner, actor); err != nil {
		r.logger.Debug("org membership not confirmed", "actor", actor, "org", repo.Owner, "error", err)
		return false, false
	}
	return true, true
}

// checkCollaboratorAdmin mirrors the admin flag of the actor's
// collaborator permission level; a query failure is indeterminate
func (r *Resolver) checkCollaboratorAdmin(ctx context.Context, actor string, repo github.RepositoryRef) (bool, bool) {
	admin, err := r.client.IsCollaboratorAdmin(ctx, repo, actor)
	if err != nil {
		r.logger.Debug("collaborator permission lookup failed", "actor", actor, "repository", repo.String(), "error", err)
		return false, false
	}
	return admin, true
}
