package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestOUCacheExistingPath(t *testing.T) {
	dir := newMockDirectory()
	dir.addOU("OU=6A,DC=test,DC=local")

	cache := newOUCache(dir, "DC=test,DC=local", true)

	path, err := cache.Ensure(context.Background(), "OU=6A,DC=test,DC=local")
	if err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}
	if path != "OU=6A,DC=test,DC=local" {
		t.Errorf("got %q", path)
	}
	if creates := cache.ScheduledCreates(); len(creates) != 0 {
		t.Errorf("expected no scheduled creates, got %d", len(creates))
	}
}

func TestOUCacheSchedulesCreateOnce(t *testing.T) {
	dir := newMockDirectory()
	cache := newOUCache(dir, "DC=test,DC=local", true)

	const target = "OU=6A,DC=test,DC=local"
	const workers = 50

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			path, err := cache.Ensure(context.Background(), target)
			if err != nil {
				t.Errorf("Ensure failed: %v", err)
			}
			if path != target {
				t.Errorf("got %q, want %q", path, target)
			}
		}()
	}
	wg.Wait()

	if n := dir.ouQueries(target); n != 1 {
		t.Errorf("expected exactly 1 directory query, got %d", n)
	}

	creates := cache.ScheduledCreates()
	if len(creates) != 1 {
		t.Fatalf("expected exactly 1 CreateOU, got %d", len(creates))
	}
	if creates[0].Kind != KindCreateOU || creates[0].Path != target {
		t.Errorf("unexpected action: %+v", creates[0])
	}
	if creates[0].ObjectName != "6A" {
		t.Errorf("ObjectName = %q, want 6A", creates[0].ObjectName)
	}
}

func TestOUCacheFallsBackWhenCreationDisabled(t *testing.T) {
	dir := newMockDirectory()
	cache := newOUCache(dir, "DC=test,DC=local", false)

	path, err := cache.Ensure(context.Background(), "OU=6A,DC=test,DC=local")
	if err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}
	if path != "DC=test,DC=local" {
		t.Errorf("got %q, want default OU", path)
	}
	if creates := cache.ScheduledCreates(); len(creates) != 0 {
		t.Errorf("expected no scheduled creates, got %d", len(creates))
	}
}

func TestOUCacheQueryError(t *testing.T) {
	dir := newMockDirectory()
	dir.ouErr = errors.New("connection reset")
	cache := newOUCache(dir, "DC=test,DC=local", true)

	_, err := cache.Ensure(context.Background(), "OU=6A,DC=test,DC=local")
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsTransient(err) {
		t.Errorf("expected transient classification, got %v", err)
	}
}

func TestOUCacheContainsAdd(t *testing.T) {
	cache := newOUCache(newMockDirectory(), "DC=test,DC=local", true)

	const path = "OU=6A,DC=test,DC=local"
	if cache.Contains(path) {
		t.Error("empty cache should not contain path")
	}
	cache.Add(path)
	if !cache.Contains(path) {
		t.Error("cache should contain added path")
	}
}
