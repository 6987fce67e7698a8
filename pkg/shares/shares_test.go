package shares

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestLocalToRelative(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`D:\Eleves\jean.dupont`, "eleves/jean.dupont"},
		{`d:\Eleves\6A\marie`, "eleves/6a/marie"},
		{"/exports/eleves/jean", "exports/eleves/jean"},
		{"relative/path", "relative/path"},
	}

	for _, tt := range tests {
		if got := localToRelative(tt.in); got != tt.want {
			t.Errorf("localToRelative(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestShareExists(t *testing.T) {
	root := t.TempDir()
	existing := filepath.Join(root, "srv-files", "eleves", "jean.dupont")
	if err := os.MkdirAll(existing, 0o755); err != nil {
		t.Fatal(err)
	}

	c := &LocalChecker{MountRoot: root}
	ctx := context.Background()

	ok, err := c.ShareExists(ctx, "SRV-FILES", "jean.dupont", `D:\Eleves\jean.dupont`)
	if err != nil {
		t.Fatalf("ShareExists failed: %v", err)
	}
	if !ok {
		t.Error("expected existing share to be found")
	}

	ok, err = c.ShareExists(ctx, "srv-files", "marie.durand", `D:\Eleves\marie.durand`)
	if err != nil {
		t.Fatalf("ShareExists failed: %v", err)
	}
	if ok {
		t.Error("expected missing share to be reported absent")
	}
}

func TestShareExistsCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := &LocalChecker{MountRoot: t.TempDir()}
	if _, err := c.ShareExists(ctx, "srv", "u", `D:\Eleves\u`); err == nil {
		t.Error("expected cancellation error")
	}
}
