package engine

import "context"

// Directory is the read-only capability set the planner consumes from the
// directory service. Implementations must be safe for concurrent use; every
// method may block on network I/O and must honor the context.
type Directory interface {
	// OUExists reports whether the organizational unit at the given
	// distinguished path exists.
	OUExists(ctx context.Context, path string) (bool, error)

	// UserExists reports whether an identity with the given (normalized)
	// account name exists.
	UserExists(ctx context.Context, accountName string) (bool, error)

	// CurrentOU returns the distinguished path of the OU currently
	// containing the identity, or "" when it cannot be resolved.
	CurrentOU(ctx context.Context, accountName string) (string, error)

	// Attributes fetches the current values of the named attributes in
	// one bulk query. Missing attributes map to the empty string.
	Attributes(ctx context.Context, accountName string, names []string) (map[string]string, error)

	// ListUsersUnder enumerates all identities in the subtree rooted at
	// rootDN.
	ListUsersUnder(ctx context.Context, rootDN string) ([]DirectoryUser, error)
}

// ShareChecker is the folder-provisioning collaborator used to skip
// share creation for users whose share already exists.
type ShareChecker interface {
	// ShareExists reports whether the user's share already exists on the
	// given server at the given local path.
	ShareExists(ctx context.Context, server, accountName, localPath string) (bool, error)
}
