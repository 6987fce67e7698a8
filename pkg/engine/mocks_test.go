package engine

import (
	"context"
	"strings"
	"sync"
)

// Mock implementations of the directory collaborators for testing.

type mockUser struct {
	ou    string
	attrs map[string]string
}

type mockDirectory struct {
	mu      sync.Mutex
	ous     map[string]bool
	users   map[string]mockUser
	ouCalls map[string]int

	ouErr   error
	userErr error
	listErr error
}

func newMockDirectory() *mockDirectory {
	return &mockDirectory{
		ous:     make(map[string]bool),
		users:   make(map[string]mockUser),
		ouCalls: make(map[string]int),
	}
}

func (m *mockDirectory) addOU(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ous[strings.ToLower(path)] = true
}

func (m *mockDirectory) addUser(name, ou string, attrs map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[NormalizeAccountName(name)] = mockUser{ou: ou, attrs: attrs}
}

func (m *mockDirectory) ouQueries(path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ouCalls[path]
}

func (m *mockDirectory) OUExists(_ context.Context, path string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ouCalls[path]++
	if m.ouErr != nil {
		return false, m.ouErr
	}
	return m.ous[strings.ToLower(path)], nil
}

func (m *mockDirectory) UserExists(_ context.Context, accountName string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.userErr != nil {
		return false, m.userErr
	}
	_, ok := m.users[NormalizeAccountName(accountName)]
	return ok, nil
}

func (m *mockDirectory) CurrentOU(_ context.Context, accountName string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.userErr != nil {
		return "", m.userErr
	}
	return m.users[NormalizeAccountName(accountName)].ou, nil
}

func (m *mockDirectory) Attributes(_ context.Context, accountName string, names []string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.userErr != nil {
		return nil, m.userErr
	}

	u := m.users[NormalizeAccountName(accountName)]
	values := make(map[string]string, len(names))
	for _, name := range names {
		values[name] = u.attrs[name]
	}
	return values, nil
}

func (m *mockDirectory) ListUsersUnder(_ context.Context, rootDN string) ([]DirectoryUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}

	users := make([]DirectoryUser, 0, len(m.users))
	for name, u := range m.users {
		ou := u.ou
		if ou == "" {
			ou = rootDN
		}
		users = append(users, DirectoryUser{
			AccountName:       name,
			DistinguishedName: "CN=" + name + "," + ou,
			DisplayName:       u.attrs["displayName"],
		})
	}
	return users, nil
}

type mockShares struct {
	mu       sync.Mutex
	existing map[string]bool
	calls    int
}

func newMockShares() *mockShares {
	return &mockShares{existing: make(map[string]bool)}
}

func (m *mockShares) ShareExists(_ context.Context, _, _ string, localPath string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.existing[strings.ToLower(localPath)], nil
}
