package directory

import (
	"context"
	"strings"
	"sync"

	"github.com/ADManagerLND/ADManagerAPI-sub003/pkg/engine"
)

// FakeUser is one identity held by the in-memory fake.
type FakeUser struct {
	AccountName string
	OU          string
	DisplayName string
	Attributes  map[string]string
}

// Fake is a deterministic in-memory implementation of engine.Directory and
// engine.ShareChecker, used by tests and offline planning. It records query
// counts so callers can assert caching behavior. Safe for concurrent use.
type Fake struct {
	mu     sync.Mutex
	ous    map[string]struct{}
	users  map[string]FakeUser
	shares map[string]struct{}

	// OUQueries counts OUExists calls per path.
	OUQueries map[string]int

	// Err, when set, is returned by every query. Used to simulate an
	// unreachable directory.
	Err error
}

var (
	_ engine.Directory    = (*Fake)(nil)
	_ engine.ShareChecker = (*Fake)(nil)
)

// NewFake creates an empty fake directory.
func NewFake() *Fake {
	return &Fake{
		ous:       make(map[string]struct{}),
		users:     make(map[string]FakeUser),
		shares:    make(map[string]struct{}),
		OUQueries: make(map[string]int),
	}
}

// AddOU records an existing organizational unit.
func (f *Fake) AddOU(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ous[foldDN(path)] = struct{}{}
}

// AddUser records an existing identity.
func (f *Fake) AddUser(u FakeUser) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[engine.NormalizeAccountName(u.AccountName)] = u
}

// AddShare records an existing share.
func (f *Fake) AddShare(server, localPath string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shares[shareKey(server, localPath)] = struct{}{}
}

// OUExists implements engine.Directory.
func (f *Fake) OUExists(_ context.Context, path string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.OUQueries[path]++
	if f.Err != nil {
		return false, f.Err
	}
	_, ok := f.ous[foldDN(path)]
	return ok, nil
}

// UserExists implements engine.Directory.
func (f *Fake) UserExists(_ context.Context, accountName string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return false, f.Err
	}
	_, ok := f.users[engine.NormalizeAccountName(accountName)]
	return ok, nil
}

// CurrentOU implements engine.Directory.
func (f *Fake) CurrentOU(_ context.Context, accountName string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return "", f.Err
	}
	u, ok := f.users[engine.NormalizeAccountName(accountName)]
	if !ok {
		return "", nil
	}
	return u.OU, nil
}

// Attributes implements engine.Directory.
func (f *Fake) Attributes(_ context.Context, accountName string, names []string) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}

	values := make(map[string]string, len(names))
	u, ok := f.users[engine.NormalizeAccountName(accountName)]
	for _, name := range names {
		if !ok {
			values[name] = ""
			continue
		}
		values[name] = u.Attributes[name]
	}
	return values, nil
}

// ListUsersUnder implements engine.Directory. The fake treats every stored
// user as belonging to the subtree.
func (f *Fake) ListUsersUnder(_ context.Context, rootDN string) ([]engine.DirectoryUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}

	users := make([]engine.DirectoryUser, 0, len(f.users))
	for _, u := range f.users {
		ou := u.OU
		if ou == "" {
			ou = rootDN
		}
		users = append(users, engine.DirectoryUser{
			AccountName:       u.AccountName,
			DistinguishedName: "CN=" + u.AccountName + "," + ou,
			DisplayName:       u.DisplayName,
		})
	}
	return users, nil
}

// ShareExists implements engine.ShareChecker.
func (f *Fake) ShareExists(_ context.Context, server, _ string, localPath string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return false, f.Err
	}
	_, ok := f.shares[shareKey(server, localPath)]
	return ok, nil
}

func foldDN(dn string) string {
	return strings.ToLower(strings.TrimSpace(dn))
}

func shareKey(server, localPath string) string {
	return strings.ToLower(server) + "|" + strings.ToLower(localPath)
}
