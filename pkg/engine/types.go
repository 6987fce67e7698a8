package engine

import (
	"strings"
	"time"
)

// Row is one input record: a mapping from column name to raw string value.
// Column lookups are case-insensitive. Rows are immutable once read.
type Row map[string]string

// Value returns the row's value for the given column, matching the column
// name case-insensitively. A missing column yields the empty string.
func (r Row) Value(column string) string {
	if v, ok := r[column]; ok {
		return v
	}
	for k, v := range r {
		if strings.EqualFold(k, column) {
			return v
		}
	}
	return ""
}

// ActionKind identifies the type of a planned directory mutation.
type ActionKind string

const (
	// KindCreateOU creates an organizational unit.
	KindCreateOU ActionKind = "CREATE_OU"

	// KindCreateUser creates a user account.
	KindCreateUser ActionKind = "CREATE_USER"

	// KindUpdateUser updates attributes of an existing user account.
	KindUpdateUser ActionKind = "UPDATE_USER"

	// KindMoveUser moves a user account to a different OU.
	KindMoveUser ActionKind = "MOVE_USER"

	// KindDeleteUser deletes a user account absent from the input batch.
	KindDeleteUser ActionKind = "DELETE_USER"

	// KindDeleteOU deletes an organizational unit. The planner never
	// emits it; the executor may derive it after orphan cleanup.
	KindDeleteOU ActionKind = "DELETE_OU"

	// KindCreateGroup creates a class security group.
	KindCreateGroup ActionKind = "CREATE_GROUP"

	// KindAddUserToGroup adds a user to a class group.
	KindAddUserToGroup ActionKind = "ADD_USER_TO_GROUP"

	// KindCreateStudentFolder provisions a personal share for a user.
	KindCreateStudentFolder ActionKind = "CREATE_STUDENT_FOLDER"

	// KindCreateClassGroupFolder provisions a shared folder for a class
	// group.
	KindCreateClassGroupFolder ActionKind = "CREATE_CLASS_GROUP_FOLDER"

	// KindCreateTeam creates a groupware team for a class.
	KindCreateTeam ActionKind = "CREATE_TEAM"

	// KindError records a row that could not be classified.
	KindError ActionKind = "ERROR"
)

// Validate checks that the action kind is part of the closed enumeration.
func (k ActionKind) Validate() error {
	switch k {
	case KindCreateOU, KindCreateUser, KindUpdateUser, KindMoveUser,
		KindDeleteUser, KindDeleteOU, KindCreateGroup, KindAddUserToGroup,
		KindCreateStudentFolder, KindCreateClassGroupFolder, KindCreateTeam,
		KindError:
		return nil
	default:
		return NewPermanentError("invalid action kind", nil).
			WithCode(ErrCodeValidation).
			WithObject(string(k))
	}
}

// IsDestructive reports whether the action removes directory objects.
func (k ActionKind) IsDestructive() bool {
	return k == KindDeleteUser || k == KindDeleteOU
}

// Action is a planned, not-yet-executed directory mutation. Immutable once
// created.
type Action struct {
	// Kind is the type of mutation.
	Kind ActionKind `json:"kind"`

	// ObjectName is the primary name of the object the action targets
	// (account name, OU name, group name...). Identity names are
	// normalized (trimmed, lowercased) before being recorded.
	ObjectName string `json:"objectName"`

	// Path is the distinguished path the action applies to or under.
	Path string `json:"path,omitempty"`

	// Message carries human-readable context (error causes, fallback
	// explanations).
	Message string `json:"message,omitempty"`

	// Attributes carries the attribute values the executor needs
	// (resolved user attributes, source OU of a move, share server and
	// path, member DN of a group add...).
	Attributes map[string]string `json:"attributes,omitempty"`

	// RowIndex is the zero-based input row that produced the action, or
	// -1 for actions not tied to a single row (scheduled OU creations,
	// orphan deletions, class group creations).
	RowIndex int `json:"rowIndex"`
}

// Analysis is the immutable artifact of one planning run: the ordered
// action list plus derived summary counts. It is owned by the caller and
// never mutated by the executor.
type Analysis struct {
	// ID uniquely identifies this analysis.
	ID string `json:"id"`

	// CreatedAt is when the analysis was computed.
	CreatedAt time.Time `json:"createdAt"`

	// RowCount is the number of input rows that were planned.
	RowCount int `json:"rowCount"`

	// Actions is the ordered list of planned mutations. Scheduled OU
	// creations come first so that every action referencing an OU is
	// preceded by its creation.
	Actions []Action `json:"actions"`

	// Summary tallies Actions by kind. Always derived from Actions,
	// never hand-maintained.
	Summary Summary `json:"summary"`
}

// Summary tallies the actions of one analysis by kind.
type Summary struct {
	// TotalObjects is the total number of planned actions.
	TotalObjects int `json:"totalObjects"`

	OUsToCreate       int `json:"ousToCreate"`
	UsersToCreate     int `json:"usersToCreate"`
	UsersToUpdate     int `json:"usersToUpdate"`
	UsersToMove       int `json:"usersToMove"`
	UsersToDelete     int `json:"usersToDelete"`
	OUsToDelete       int `json:"ousToDelete"`
	GroupsToCreate    int `json:"groupsToCreate"`
	GroupMemberships  int `json:"groupMemberships"`
	StudentFolders    int `json:"studentFolders"`
	ClassGroupFolders int `json:"classGroupFolders"`
	Teams             int `json:"teams"`
	Errors            int `json:"errors"`
}

// Summarize folds an action list into per-kind counts.
func Summarize(actions []Action) Summary {
	s := Summary{TotalObjects: len(actions)}
	for _, a := range actions {
		switch a.Kind {
		case KindCreateOU:
			s.OUsToCreate++
		case KindCreateUser:
			s.UsersToCreate++
		case KindUpdateUser:
			s.UsersToUpdate++
		case KindMoveUser:
			s.UsersToMove++
		case KindDeleteUser:
			s.UsersToDelete++
		case KindDeleteOU:
			s.OUsToDelete++
		case KindCreateGroup:
			s.GroupsToCreate++
		case KindAddUserToGroup:
			s.GroupMemberships++
		case KindCreateStudentFolder:
			s.StudentFolders++
		case KindCreateClassGroupFolder:
			s.ClassGroupFolders++
		case KindCreateTeam:
			s.Teams++
		case KindError:
			s.Errors++
		}
	}
	return s
}

// DirectoryUser is one identity returned by a directory subtree listing.
type DirectoryUser struct {
	// AccountName is the unique account-name attribute value.
	AccountName string `json:"accountName"`

	// DistinguishedName is the full distinguished path of the account.
	DistinguishedName string `json:"distinguishedName"`

	// DisplayName is the human-readable name, if set.
	DisplayName string `json:"displayName,omitempty"`
}

// Analysis phases reported through ProgressFunc.
const (
	// PhaseRows covers per-row planning.
	PhaseRows = "rows"

	// PhaseOrphans covers orphan detection.
	PhaseOrphans = "orphans"

	// PhaseComplete marks the end of an analysis.
	PhaseComplete = "complete"
)

// ProgressFunc receives coarse progress updates during an analysis. The
// reported percentage is monotonically increasing within one call.
type ProgressFunc func(percent int, phase, message string)

// NormalizeAccountName canonicalizes an identity key for deduplication and
/// comparison: surrounding whitespace is trimmed and the result lowercased.
func NormalizeAccountName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
