package github

import "fmt"

// RepositoryRef identifies a repository by owner and name
type RepositoryRef struct {
	Owner string
	Name  string
}

func (r RepositoryRef) String() string {
	return r.Owner + "/" + r.Name
}

// IssueRef identifies an issue (or PR thread) within a repository
type IssueRef struct {
	Repository RepositoryRef
	Number     int
}

func (i IssueRef) String() string {
	return fmt.Sprintf("%s#%d", i.Repository, i.Number)
}

// PullRequestRef identifies a pull request within its base repository
type PullRequestRef struct {
	Repository RepositoryRef
	Number     int
}

func (p PullRequestRef) String() string {
	return fmt.Sprintf("%s#%d", p.Repository, p.Number)
}

// Repository carries the repository metadata the bot reads
type Repository struct {
	Ref           RepositoryRef
	DefaultBranch string
}

// BranchHead carries the head commit of a branch together with its tree
type BranchHead struct {
	SHA     string
	TreeSHA string
}
