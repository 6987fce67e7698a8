package engine

import "sync"

// groupRef is one class group declared for auto-creation in the batch.
type groupRef struct {
	id   string
	name string
}

// groupIndex tracks, per target OU, the class groups declared by the rows
// of the current batch. It is shared across row-planning workers and safe
// for concurrent use.
type groupIndex struct {
	mu      sync.RWMutex
	byOU    map[string][]groupRef
	folders map[string]struct{}
}

func newGroupIndex() *groupIndex {
	return &groupIndex{
		byOU:    make(map[string][]groupRef),
		folders: make(map[string]struct{}),
	}
}

// Register declares a class group for an OU. It reports whether the group
// was seen for the first time.
func (g *groupIndex) Register(ou, id, name string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, ref := range g.byOU[ou] {
		if ref.id == id {
			return false
		}
	}
	g.byOU[ou] = append(g.byOU[ou], groupRef{id: id, name: name})
	return true
}

// For returns the groups declared for an OU.
func (g *groupIndex) For(ou string) []groupRef {
	g.mu.RLock()
	defer g.mu.RUnlock()
	refs := g.byOU[ou]
	out := make([]groupRef, len(refs))
	copy(out, refs)
	return out
}

// ClaimFolder records that folder provisioning for the given group was
// scheduled and reports whether this caller won the claim. At most one
// caller per group id wins, regardless of concurrency.
func (g *groupIndex) ClaimFolder(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.folders[id]; ok {
		return false
	}
	g.folders[id] = struct{}{}
	return true
}
