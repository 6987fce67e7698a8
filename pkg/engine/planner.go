package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-ldap/ldap/v3"

	"github.com/ADManagerLND/ADManagerAPI-sub003/pkg/mapping"
	"github.com/ADManagerLND/ADManagerAPI-sub003/pkg/telemetry"
)

// rowPlanner classifies a single input row into directory actions. One
// instance is shared by all workers of an analysis; the existence cache and
// the group index are its only mutable state.
type rowPlanner struct {
	cfg    *mapping.Config
	dir    Directory
	shares ShareChecker
	ous    *ouCache
	groups *groupIndex
	log    *telemetry.Logger
}

// Plan resolves the row's attributes and target OU, classifies the identity
// action (create, move, update or none) and appends the gated side-effect
// actions. Row-level failures degrade into Error or best-effort UpdateUser
// actions; Plan never fails the batch.
func (p *rowPlanner) Plan(ctx context.Context, index int, row Row) []Action {
	attrs := ResolveAttributes(row, p.cfg)

	accountName := NormalizeAccountName(attrs[p.cfg.AccountNameAttribute])
	if accountName == "" {
		return []Action{{
			Kind:     KindError,
			Message:  fmt.Sprintf("row has no value for account name attribute %s", p.cfg.AccountNameAttribute),
			RowIndex: index,
		}}
	}
	attrs[p.cfg.AccountNameAttribute] = accountName

	targetOU, err := p.ous.Ensure(ctx, TargetOU(row, p.cfg))
	if err != nil {
		return []Action{p.bestEffortUpdate(index, accountName, p.cfg.DefaultOU, attrs, err)}
	}

	actions := p.classify(ctx, index, row, accountName, targetOU, attrs)

	// Side-effect generators are independent of the identity action and
	// of each other; a generator missing its parameters skips silently.
	if a := p.planStudentFolder(ctx, index, row, accountName, attrs); a != nil {
		actions = append(actions, *a)
	}
	if a := p.planClassGroupFolder(index, row); a != nil {
		actions = append(actions, *a)
	}
	if a := p.planTeam(index, row); a != nil {
		actions = append(actions, *a)
	}

	return actions
}

// classify determines the identity action for the row.
func (p *rowPlanner) classify(ctx context.Context, index int, row Row, accountName, targetOU string, attrs map[string]string) []Action {
	exists, err := p.dir.UserExists(ctx, accountName)
	if err != nil {
		return []Action{p.bestEffortUpdate(index, accountName, targetOU, attrs, err)}
	}

	if !exists {
		actions := []Action{{
			Kind:       KindCreateUser,
			ObjectName: accountName,
			Path:       targetOU,
			Attributes: attrs,
			RowIndex:   index,
		}}
		return append(actions, p.memberships(index, accountName, targetOU)...)
	}

	if !p.cfg.OverwriteExisting {
		p.log.Debugf("row %d: %s exists and overwrite is disabled, skipping", index, accountName)
		return nil
	}

	currentOU, err := p.dir.CurrentOU(ctx, accountName)
	if err != nil {
		return []Action{p.bestEffortUpdate(index, accountName, targetOU, attrs, err)}
	}

	// A move takes precedence over attribute differences; the engine
	// never combines a move with an update in one action.
	if currentOU != "" && !EqualDN(currentOU, targetOU) {
		moveAttrs := map[string]string{"sourceOU": currentOU}
		return []Action{{
			Kind:       KindMoveUser,
			ObjectName: accountName,
			Path:       targetOU,
			Attributes: moveAttrs,
			RowIndex:   index,
		}}
	}

	current, err := p.dir.Attributes(ctx, accountName, ComparableAttributes(attrs))
	if err != nil {
		return []Action{p.bestEffortUpdate(index, accountName, targetOU, attrs, err)}
	}

	if NeedsUpdate(attrs, current) {
		return []Action{{
			Kind:       KindUpdateUser,
			ObjectName: accountName,
			Path:       targetOU,
			Attributes: attrs,
			RowIndex:   index,
		}}
	}

	return nil
}

// bestEffortUpdate converts a row-level query failure into an UpdateUser
// action: scheduling a redundant update is preferred over silently dropping
// the row.
func (p *rowPlanner) bestEffortUpdate(index int, accountName, path string, attrs map[string]string, err error) Action {
	p.log.Warnf("row %d: directory query failed for %s, scheduling best-effort update: %v", index, accountName, err)
	return Action{
		Kind:       KindUpdateUser,
		ObjectName: accountName,
		Path:       path,
		Message:    fmt.Sprintf("best-effort update after query failure: %v", err),
		Attributes: attrs,
		RowIndex:   index,
	}
}

// memberships emits one AddUserToGroup action per class group declared for
// the target OU in this batch. Only newly created identities join groups.
func (p *rowPlanner) memberships(index int, accountName, targetOU string) []Action {
	refs := p.groups.For(targetOU)
	if len(refs) == 0 {
		return nil
	}

	memberDN := "CN=" + ldap.EscapeDN(accountName) + "," + targetOU
	actions := make([]Action, 0, len(refs))
	for _, ref := range refs {
		actions = append(actions, Action{
			Kind:       KindAddUserToGroup,
			ObjectName: ref.name,
			Path:       targetOU,
			Attributes: map[string]string{
				"member":  memberDN,
				"group":   ref.name,
				"groupId": ref.id,
			},
			RowIndex: index,
		})
	}
	return actions
}

// planStudentFolder evaluates the per-user share generator. Rows whose flag
// column is not set, or whose share already exists, produce no action.
func (p *rowPlanner) planStudentFolder(ctx context.Context, index int, row Row, accountName string, attrs map[string]string) *Action {
	cfg := p.cfg.StudentFolders
	if cfg == nil || p.cfg.ActionDisabled(string(KindCreateStudentFolder)) {
		return nil
	}
	if !isTruthy(row.Value(cfg.FlagColumn)) {
		return nil
	}

	localPath := strings.TrimSpace(ResolveTemplate(mergedRow(row, attrs), cfg.LocalPath))
	if localPath == "" {
		p.log.Debugf("row %d: student folder skipped, empty local path", index)
		return nil
	}

	if p.shares != nil {
		exists, err := p.shares.ShareExists(ctx, cfg.Server, accountName, localPath)
		if err != nil {
			p.log.Warnf("row %d: share existence check failed for %s: %v", index, accountName, err)
		} else if exists {
			return nil
		}
	}

	return &Action{
		Kind:       KindCreateStudentFolder,
		ObjectName: accountName,
		Path:       localPath,
		Attributes: map[string]string{"server": cfg.Server, "localPath": localPath},
		RowIndex:   index,
	}
}

// planClassGroupFolder evaluates the class-group folder generator. Each
// group id yields at most one folder action per batch.
func (p *rowPlanner) planClassGroupFolder(index int, row Row) *Action {
	cfg := p.cfg.ClassGroupFolders
	if cfg == nil || p.cfg.ActionDisabled(string(KindCreateClassGroupFolder)) {
		return nil
	}
	if !isTruthy(row.Value(cfg.FlagColumn)) {
		return nil
	}

	groupID := strings.TrimSpace(row.Value(cfg.GroupIDColumn))
	groupName := strings.TrimSpace(row.Value(cfg.GroupNameColumn))
	if groupID == "" || groupName == "" {
		p.log.Debugf("row %d: class group folder skipped, missing group id or name", index)
		return nil
	}

	if !p.groups.ClaimFolder(groupID) {
		return nil
	}

	return &Action{
		Kind:       KindCreateClassGroupFolder,
		ObjectName: groupName,
		Path:       cfg.BasePath,
		Attributes: map[string]string{
			"server":  cfg.Server,
			"groupId": groupID,
			"group":   groupName,
		},
		RowIndex: index,
	}
}

// planTeam evaluates the groupware team generator.
func (p *rowPlanner) planTeam(index int, row Row) *Action {
	cfg := p.cfg.Teams
	if cfg == nil || p.cfg.ActionDisabled(string(KindCreateTeam)) {
		return nil
	}
	if !isTruthy(row.Value(cfg.FlagColumn)) {
		return nil
	}

	teamName := strings.TrimSpace(row.Value(cfg.NameColumn))
	if teamName == "" {
		p.log.Debugf("row %d: team creation skipped, empty team name", index)
		return nil
	}

	attrs := map[string]string{"team": teamName}
	if cfg.DescriptionTemplate != "" {
		attrs["description"] = strings.TrimSpace(ResolveTemplate(row, cfg.DescriptionTemplate))
	}

	return &Action{
		Kind:       KindCreateTeam,
		ObjectName: teamName,
		Attributes: attrs,
		RowIndex:   index,
	}
}

// mergedRow overlays resolved attribute values on top of the raw row so
// auxiliary templates can reference both source columns and resolved
// attributes (e.g. %sAMAccountName% in a share path).
func mergedRow(row Row, attrs map[string]string) Row {
	merged := make(Row, len(row)+len(attrs))
	for k, v := range row {
		merged[k] = v
	}
	for k, v := range attrs {
		merged[k] = v
	}
	return merged
}

// isTruthy interprets a flag column value. French-language sources use
// "oui" alongside the usual boolean spellings.
func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "oui", "o", "x", "vrai":
		return true
	default:
		return false
	}
}
