package engine

import (
	"context"

	"github.com/ADManagerLND/ADManagerAPI-sub003/pkg/mapping"
)

// detectOrphans compares the identities present in the directory subtree
// under the configured root OU against the identity keys found in the input
// batch, and emits one DeleteUser action per directory identity absent from
// the batch. Every row contributes its key, including rows whose planning
// degraded. A listing failure is batch-fatal.
func detectOrphans(ctx context.Context, rows []Row, cfg *mapping.Config, dir Directory) ([]Action, error) {
	tmpl := cfg.Attributes[cfg.AccountNameAttribute]

	present := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		key := NormalizeAccountName(ResolveTemplate(row, tmpl))
		if key != "" {
			present[key] = struct{}{}
		}
	}

	users, err := dir.ListUsersUnder(ctx, cfg.DefaultOU)
	if err != nil {
		return nil, NewTransientError("failed to list identities for orphan detection", err).
			WithCode(ErrCodeDirectory).
			WithObject(cfg.DefaultOU)
	}

	var actions []Action
	for _, user := range users {
		key := NormalizeAccountName(user.AccountName)
		if key == "" {
			continue
		}
		if _, ok := present[key]; ok {
			continue
		}
		actions = append(actions, Action{
			Kind:       KindDeleteUser,
			ObjectName: key,
			Path:       user.DistinguishedName,
			Message:    user.DisplayName,
			RowIndex:   -1,
		})
	}

	return actions, nil
}
