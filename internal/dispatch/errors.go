package dispatch

import "fmt"

// AuthorizationError is returned when an actor lacks the authority to
// run a privileged command. Its message is user-facing.
type AuthorizationError struct {
	Username string
	Command  string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("permission denied: user '%s' is not allowed to run %s\n"+
		"  → Required: repository owner, organization member, or admin collaborator",
		e.Username, e.Command)
}

// NewAuthorizationError creates a new authorization error
func NewAuthorizationError(username, command string) *AuthorizationError {
	return &AuthorizationError{
		Username: username,
		Command:  command,
	}
}
