package engine

import (
	"context"
	"sync"
)

// ouResolution memoizes the outcome of resolving one OU path: the effective
// path rows targeting it should use, or the query error.
type ouResolution struct {
	once sync.Once
	path string
	err  error
}

// ouCache memoizes which OU paths exist or are already scheduled for
// creation during one analysis. It guarantees at most one directory
// existence query per distinct path and exactly one scheduled CreateOU
// action per missing path, regardless of how many rows target the path
// concurrently. Lifetime is one Analyze call.
type ouCache struct {
	dir           Directory
	defaultOU     string
	createMissing bool

	mu      sync.Mutex
	entries map[string]*ouResolution
	known   map[string]struct{}
	creates []Action
}

func newOUCache(dir Directory, defaultOU string, createMissing bool) *ouCache {
	return &ouCache{
		dir:           dir,
		defaultOU:     defaultOU,
		createMissing: createMissing,
		entries:       make(map[string]*ouResolution),
		known:         make(map[string]struct{}),
	}
}

// Contains reports whether the path is known to exist or is scheduled for
// creation.
func (c *ouCache) Contains(path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.known[path]
	return ok
}

// Add records a path as existing for planning purposes.
func (c *ouCache) Add(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.known[path] = struct{}{}
}

// Ensure resolves the effective OU path for rows targeting path. Existing
// paths resolve to themselves. Missing paths resolve to themselves and
// schedule a single CreateOU action when creation is allowed, or fall back
// to the default OU otherwise. Concurrent callers for the same path share
// one resolution; distinct paths resolve independently.
func (c *ouCache) Ensure(ctx context.Context, path string) (string, error) {
	c.mu.Lock()
	entry, ok := c.entries[path]
	if !ok {
		entry = &ouResolution{}
		c.entries[path] = entry
	}
	c.mu.Unlock()

	entry.once.Do(func() {
		entry.path, entry.err = c.resolve(ctx, path)
	})

	return entry.path, entry.err
}

// resolve performs the single existence check and scheduling step for one
// path. It runs at most once per distinct path per analysis.
func (c *ouCache) resolve(ctx context.Context, path string) (string, error) {
	if c.Contains(path) {
		return path, nil
	}

	exists, err := c.dir.OUExists(ctx, path)
	if err != nil {
		return "", NewTransientError("failed to query OU existence", err).
			WithCode(ErrCodeDirectory).
			WithObject(path)
	}

	if exists {
		c.Add(path)
		return path, nil
	}

	if !c.createMissing {
		return c.defaultOU, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.known[path] = struct{}{}
	c.creates = append(c.creates, Action{
		Kind:       KindCreateOU,
		ObjectName: OUName(path),
		Path:       path,
		RowIndex:   -1,
	})
	return path, nil
}

// ScheduledCreates returns the CreateOU actions scheduled so far, in
// scheduling order. Each path appears at most once.
func (c *ouCache) ScheduledCreates() []Action {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Action, len(c.creates))
	copy(out, c.creates)
	return out
}
