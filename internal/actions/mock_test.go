package actions

import (
	"context"

	"github.com/ubiquity-os/onboarding-bot/internal/github"
)

// mockClient implements github.Client for testing, recording the order
// of remote calls and failing on demand per operation
type mockClient struct {
	// Calls records operation names in invocation order
	Calls []string

	// FailOn maps an operation name to the error it should return
	FailOn map[string]error

	// Store call arguments for verification
	LastForkName   string
	LastBranch     string
	LastCommitSHA  string
	LastLabels     []string
	LastHead       string
	LastPRBody     string
	LastBaseBranch string
	LastComments   []string

	// Canned responses
	DefaultBranch string
	HeadSHA       string
	TreeSHA       string
	PRNumber      int
}

func (m *mockClient) record(op string) error {
	m.Calls = append(m.Calls, op)
	if err, ok := m.FailOn[op]; ok {
		return err
	}
	return nil
}

func (m *mockClient) GetRepository(ctx context.Context, repo github.RepositoryRef) (*github.Repository, error) {
	if err := m.record("GetRepository"); err != nil {
		return nil, err
	}
	return &github.Repository{Ref: repo, DefaultBranch: m.DefaultBranch}, nil
}

func (m *mockClient) CreateFork(ctx context.Context, source github.RepositoryRef, forkOwner, forkName string) (github.RepositoryRef, error) {
	m.LastForkName = forkName
	if err := m.record("CreateFork"); err != nil {
		return github.RepositoryRef{}, err
	}
	return github.RepositoryRef{Owner: forkOwner, Name: forkName}, nil
}

func (m *mockClient) GetBranchHead(ctx context.Context, repo github.RepositoryRef, branch string) (*github.BranchHead, error) {
	if err := m.record("GetBranchHead"); err != nil {
		return nil, err
	}
	return &github.BranchHead{SHA: m.HeadSHA, TreeSHA: m.TreeSHA}, nil
}

func (m *mockClient) CreateBranch(ctx context.Context, repo github.RepositoryRef, branch, sha string) error {
	m.LastBranch = branch
	return m.record("CreateBranch")
}

func (m *mockClient) CreateEmptyCommit(ctx context.Context, repo github.RepositoryRef, message, treeSHA, parentSHA string) (string, error) {
	if err := m.record("CreateEmptyCommit"); err != nil {
		return "", err
	}
	return "new-commit-sha", nil
}

func (m *mockClient) UpdateBranch(ctx context.Context, repo github.RepositoryRef, branch, sha string) error {
	m.LastCommitSHA = sha
	return m.record("UpdateBranch")
}

func (m *mockClient) CreatePullRequest(ctx context.Context, base github.RepositoryRef, head, baseBranch, title, body string) (github.PullRequestRef, error) {
	m.LastHead = head
	m.LastBaseBranch = baseBranch
	m.LastPRBody = body
	if err := m.record("CreatePullRequest"); err != nil {
		return github.PullRequestRef{}, err
	}
	return github.PullRequestRef{Repository: base, Number: m.PRNumber}, nil
}

func (m *mockClient) MergePullRequest(ctx context.Context, pr github.PullRequestRef) error {
	return m.record("MergePullRequest")
}

func (m *mockClient) RemoveAllLabels(ctx context.Context, issue github.IssueRef) error {
	return m.record("RemoveAllLabels")
}

func (m *mockClient) AddLabels(ctx context.Context, issue github.IssueRef, labels []string) error {
	m.LastLabels = labels
	return m.record("AddLabels")
}

func (m *mockClient) ReopenIssue(ctx context.Context, issue github.IssueRef) error {
	return m.record("ReopenIssue")
}

func (m *mockClient) CreateIssueComment(ctx context.Context, issue github.IssueRef, body string) error {
	m.LastComments = append(m.LastComments, body)
	return m.record("CreateIssueComment")
}

func (m *mockClient) GetOrgMembership(ctx context.Context, org, user string) error {
	return m.record("GetOrgMembership")
}

func (m *mockClient) IsCollaboratorAdmin(ctx context.Context, repo github.RepositoryRef, user string) (bool, error) {
	if err := m.record("IsCollaboratorAdmin"); err != nil {
		return false, err
	}
	return false, nil
}
