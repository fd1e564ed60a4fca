package permission

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/ubiquity-os/onboarding-bot/internal/github"
)

// mockAuthorityClient implements AuthorityClient for testing
type mockAuthorityClient struct {
	// Control test behavior
	OrgMembershipErr     error
	CollaboratorAdmin    bool
	CollaboratorAdminErr error

	// Track method calls
	OrgMembershipCalls     int
	CollaboratorAdminCalls int
}

func (m *mockAuthorityClient) GetOrgMembership(ctx context.Context, org, user string) error {
	m.OrgMembershipCalls++
	return m.OrgMembershipErr
}

func (m *mockAuthorityClient) IsCollaboratorAdmin(ctx context.Context, repo github.RepositoryRef, user string) (bool, error) {
	m.CollaboratorAdminCalls++
	return m.CollaboratorAdmin, m.CollaboratorAdminErr
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var testRepo = github.RepositoryRef{Owner: "ubiquity-os", Name: "ubiquity-os-demo"}

// TestIsAdmin_Owner tests that the repository owner is authorized
// without any remote query
func TestIsAdmin_Owner(t *testing.T) {
	client := &mockAuthorityClient{}
	resolver := NewResolver(client, testLogger())

	decision := resolver.IsAdmin(context.Background(), "ubiquity-os", testRepo)

	if !decision.Authorized {
		t.Error("IsAdmin() = false for repository owner, want true")
	}
	if decision.Basis != BasisOwner {
		t.Errorf("Basis = %q, want %q", decision.Basis, BasisOwner)
	}
	if client.OrgMembershipCalls != 0 || client.CollaboratorAdminCalls != 0 {
		t.Errorf("owner check issued remote queries: org=%d collaborator=%d, want zero",
			client.OrgMembershipCalls, client.CollaboratorAdminCalls)
	}
}

// TestIsAdmin_OrgMember tests that an org member is authorized even
// when their collaborator level would not be admin
func TestIsAdmin_OrgMember(t *testing.T) {
	client := &mockAuthorityClient{
		OrgMembershipErr:  nil,
		CollaboratorAdmin: false,
	}
	resolver := NewResolver(client, testLogger())

	decision := resolver.IsAdmin(context.Background(), "member-user", testRepo)

	if !decision.Authorized {
		t.Error("IsAdmin() = false for org member, want true")
	}
	if decision.Basis != BasisOrgMember {
		t.Errorf("Basis = %q, want %q", decision.Basis, BasisOrgMember)
	}
	if client.CollaboratorAdminCalls != 0 {
		t.Errorf("org member check fell through to collaborator lookup %d times, want zero",
			client.CollaboratorAdminCalls)
	}
}

// TestIsAdmin_CollaboratorFlag tests that non-owners outside the org
// mirror the admin flag of the collaborator permission level
func TestIsAdmin_CollaboratorFlag(t *testing.T) {
	tests := []struct {
		name      string
		admin     bool
		wantBasis Basis
	}{
		{
			name:      "admin collaborator",
			admin:     true,
			wantBasis: BasisCollaboratorAdmin,
		},
		{
			name:      "non-admin collaborator",
			admin:     false,
			wantBasis: BasisDenied,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mockAuthorityClient{
				OrgMembershipErr:  errors.New("404 not a member"),
				CollaboratorAdmin: tt.admin,
			}
			resolver := NewResolver(client, testLogger())

			decision := resolver.IsAdmin(context.Background(), "outside-user", testRepo)

			if decision.Authorized != tt.admin {
				t.Errorf("IsAdmin() = %v, want %v", decision.Authorized, tt.admin)
			}
			if decision.Basis != tt.wantBasis {
				t.Errorf("Basis = %q, want %q", decision.Basis, tt.wantBasis)
			}
			if client.CollaboratorAdminCalls != 1 {
				t.Errorf("collaborator lookup called %d times, want 1", client.CollaboratorAdminCalls)
			}
		})
	}
}

// TestIsAdmin_AllQueriesFail tests that the resolver fails closed when
// both remote queries error, without propagating anything
func TestIsAdmin_AllQueriesFail(t *testing.T) {
	client := &mockAuthorityClient{
		OrgMembershipErr:     errors.New("network error"),
		CollaboratorAdminErr: errors.New("network error"),
	}
	resolver := NewResolver(client, testLogger())

	decision := resolver.IsAdmin(context.Background(), "any-user", testRepo)

	if decision.Authorized {
		t.Error("IsAdmin() = true when every authority query failed, want false")
	}
	if decision.Basis != BasisDenied {
		t.Errorf("Basis = %q, want %q", decision.Basis, BasisDenied)
	}
}

// TestIsAdmin_FreshQueries tests that consecutive checks re-query the
// authority source instead of caching
func TestIsAdmin_FreshQueries(t *testing.T) {
	client := &mockAuthorityClient{
		OrgMembershipErr: errors.New("404 not a member"),
	}
	resolver := NewResolver(client, testLogger())

	resolver.IsAdmin(context.Background(), "outside-user", testRepo)
	resolver.IsAdmin(context.Background(), "outside-user", testRepo)

	if client.OrgMembershipCalls != 2 {
		t.Errorf("org membership queried %d times across two checks, want 2", client.OrgMembershipCalls)
	}
	if client.CollaboratorAdminCalls != 2 {
		t.Errorf("collaborator level queried %d times across two checks, want 2", client.CollaboratorAdminCalls)
	}
}
