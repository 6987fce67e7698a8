// Package directory implements the engine's directory capability over LDAP
// (Active Directory), plus an in-memory fake for tests and offline
// planning. All operations are read-only; mutations belong to the
// execution phase.
package directory

import (
	"context"
	"fmt"
	"time"

	"github.com/go-ldap/ldap/v3"

	"github.com/ADManagerLND/ADManagerAPI-sub003/pkg/engine"
	"github.com/ADManagerLND/ADManagerAPI-sub003/pkg/telemetry"
)

// Config holds LDAP connection settings.
type Config struct {
	// URL is the LDAP endpoint (ldap://host:389 or ldaps://host:636).
	URL string

	// BindDN and Password authenticate the read-only service account.
	BindDN   string
	Password string

	// BaseDN is the search base for identity lookups.
	BaseDN string

	// PageSize bounds paged searches. Zero defaults to 500.
	PageSize uint32

	// Timeout applies to each LDAP request. Zero defaults to 30s.
	Timeout time.Duration
}

// Client is an LDAP-backed implementation of engine.Directory. A single
// client multiplexes concurrent searches over one connection.
type Client struct {
	conn     *ldap.Conn
	baseDN   string
	pageSize uint32
	log      *telemetry.Logger
}

var _ engine.Directory = (*Client)(nil)

// NewClient dials and binds an LDAP connection.
func NewClient(cfg Config, log *telemetry.Logger) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("directory: URL is required")
	}
	if cfg.BaseDN == "" {
		return nil, fmt.Errorf("directory: BaseDN is required")
	}
	if log == nil {
		log = telemetry.NewNopLogger()
	}

	conn, err := ldap.DialURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("directory: failed to dial %s: %w", cfg.URL, err)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	conn.SetTimeout(timeout)

	if cfg.BindDN != "" {
		if err := conn.Bind(cfg.BindDN, cfg.Password); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("directory: bind failed for %s: %w", cfg.BindDN, err)
		}
	}

	pageSize := cfg.PageSize
	if pageSize == 0 {
		pageSize = 500
	}

	return &Client{
		conn:     conn,
		baseDN:   cfg.BaseDN,
		pageSize: pageSize,
		log:      log.Component("directory"),
	}, nil
}

// Close terminates the LDAP connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// OUExists reports whether an organizational unit exists at the given
// distinguished path.
func (c *Client) OUExists(ctx context.Context, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	req := ldap.NewSearchRequest(
		path,
		ldap.ScopeBaseObject, ldap.NeverDerefAliases, 1, 0, false,
		"(objectClass=organizationalUnit)",
		[]string{"ou"},
		nil,
	)

	res, err := c.conn.Search(req)
	if err != nil {
		if ldap.IsErrorWithCode(err, ldap.LDAPResultNoSuchObject) {
			return false, nil
		}
		return false, fmt.Errorf("directory: OU search failed for %s: %w", path, err)
	}

	return len(res.Entries) > 0, nil
}

// UserExists reports whether an identity with the given account name
// exists under the search base.
func (c *Client) UserExists(ctx context.Context, accountName string) (bool, error) {
	entry, err := c.findUser(ctx, accountName, []string{"sAMAccountName"})
	if err != nil {
		return false, err
	}
	return entry != nil, nil
}

// CurrentOU returns the distinguished path of the OU containing the
// identity, or "" when the identity or its parent cannot be resolved.
func (c *Client) CurrentOU(ctx context.Context, accountName string) (string, error) {
	entry, err := c.findUser(ctx, accountName, []string{"distinguishedName"})
	if err != nil {
		return "", err
	}
	if entry == nil {
		return "", nil
	}
	return ParentDN(entry.DN), nil
}

// Attributes fetches the named attributes of the identity in one query.
// Attributes the directory does not carry map to the empty string.
func (c *Client) Attributes(ctx context.Context, accountName string, names []string) (map[string]string, error) {
	entry, err := c.findUser(ctx, accountName, names)
	if err != nil {
		return nil, err
	}

	values := make(map[string]string, len(names))
	for _, name := range names {
		if entry != nil {
			values[name] = entry.GetAttributeValue(name)
		} else {
			values[name] = ""
		}
	}
	return values, nil
}

// ListUsersUnder enumerates all user accounts in the subtree rooted at
// rootDN using paged search.
func (c *Client) ListUsersUnder(ctx context.Context, rootDN string) ([]engine.DirectoryUser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req := ldap.NewSearchRequest(
		rootDN,
		ldap.ScopeWholeSubtree, ldap.NeverDerefAliases, 0, 0, false,
		"(&(objectCategory=person)(objectClass=user))",
		[]string{"sAMAccountName", "displayName"},
		nil,
	)

	res, err := c.conn.SearchWithPaging(req, c.pageSize)
	if err != nil {
		return nil, fmt.Errorf("directory: subtree listing failed for %s: %w", rootDN, err)
	}

	users := make([]engine.DirectoryUser, 0, len(res.Entries))
	for _, entry := range res.Entries {
		users = append(users, engine.DirectoryUser{
			AccountName:       entry.GetAttributeValue("sAMAccountName"),
			DistinguishedName: entry.DN,
			DisplayName:       entry.GetAttributeValue("displayName"),
		})
	}

	c.log.Debugf("listed %d users under %s", len(users), rootDN)
	return users, nil
}

// findUser searches the base for the account name and returns its entry,
// or nil when absent.
func (c *Client) findUser(ctx context.Context, accountName string, attrs []string) (*ldap.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	filter := fmt.Sprintf("(&(objectClass=user)(sAMAccountName=%s))", ldap.EscapeFilter(accountName))
	req := ldap.NewSearchRequest(
		c.baseDN,
		ldap.ScopeWholeSubtree, ldap.NeverDerefAliases, 1, 0, false,
		filter,
		attrs,
		nil,
	)

	res, err := c.conn.Search(req)
	if err != nil {
		if ldap.IsErrorWithCode(err, ldap.LDAPResultNoSuchObject) {
			return nil, nil
		}
		return nil, fmt.Errorf("directory: user search failed for %s: %w", accountName, err)
	}
	if len(res.Entries) == 0 {
		return nil, nil
	}
	return res.Entries[0], nil
}
