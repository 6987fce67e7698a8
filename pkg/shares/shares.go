// Package shares implements the folder-provisioning collaborator: checks
// for existing user shares so the planner can skip redundant provisioning
// actions.
package shares

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/ADManagerLND/ADManagerAPI-sub003/pkg/engine"
)

// LocalChecker resolves share paths against a locally mounted root per
// server (e.g. an SMB mount at /mnt/shares/<server>) and checks existence
// on the filesystem.
type LocalChecker struct {
	// MountRoot is the directory under which each server's share tree is
	// mounted.
	MountRoot string
}

var _ engine.ShareChecker = (*LocalChecker)(nil)

// ShareExists reports whether the user's share directory exists under the
// server's mount.
func (c *LocalChecker) ShareExists(ctx context.Context, server, _ string, localPath string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	path := filepath.Join(c.MountRoot, strings.ToLower(server), localToRelative(localPath))
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// localToRelative converts a server-local Windows path ("D:\Eleves\jdupont")
// into a relative slash path ("eleves/jdupont") under the mount.
func localToRelative(localPath string) string {
	p := strings.ReplaceAll(localPath, "\\", "/")
	if len(p) >= 2 && p[1] == ':' {
		p = p[2:]
	}
	return strings.ToLower(strings.TrimPrefix(p, "/"))
}
