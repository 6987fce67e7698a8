package mapping

// Config declares how tabular input rows map onto directory objects.
// Attribute values are template expressions over column names; see the
// engine package for the %column:modifier% grammar.
type Config struct {
	// Attributes maps a target directory attribute name to the template
	// expression that produces its value (e.g. "sAMAccountName" ->
	// "%prenom:username%.%nom:username%").
	Attributes map[string]string `yaml:"attributes" validate:"required,min=1"`

	// AccountNameAttribute is the attribute holding the unique identity
	// key. Defaults to "sAMAccountName".
	AccountNameAttribute string `yaml:"accountNameAttribute,omitempty"`

	// OUColumn is the column holding the destination OU segment for a
	// row. When empty, or when a row has no value for it, the row is
	// placed directly under DefaultOU.
	OUColumn string `yaml:"ouColumn,omitempty"`

	// DefaultOU is the root distinguished name under which objects are
	// provisioned (e.g. "OU=Eleves,DC=lycee,DC=local").
	DefaultOU string `yaml:"defaultOU" validate:"required"`

	// Delimiter is the column delimiter of the source file. The planner
	// itself never reads it; it is carried for the decoding layer.
	Delimiter string `yaml:"delimiter,omitempty"`

	// CreateMissingOUs schedules creation of destination OUs that do not
	// exist yet. When false, rows targeting a missing OU fall back to
	// DefaultOU.
	CreateMissingOUs bool `yaml:"createMissingOUs"`

	// OverwriteExisting allows updating or moving identities that
	// already exist in the directory.
	OverwriteExisting bool `yaml:"overwriteExisting"`

	// DisabledActions lists action kinds the planner must not emit
	// (e.g. "DELETE_USER" to suppress orphan cleanup).
	DisabledActions []string `yaml:"disabledActions,omitempty"`

	// StudentFolders configures per-user share provisioning. Nil disables
	// the generator.
	StudentFolders *FolderConfig `yaml:"studentFolders,omitempty"`

	// ClassGroupFolders configures per-class group folder provisioning.
	// Nil disables the generator.
	ClassGroupFolders *ClassGroupFolderConfig `yaml:"classGroupFolders,omitempty"`

	// Teams configures groupware team creation. Nil disables the
	// generator.
	Teams *TeamConfig `yaml:"teams,omitempty"`
}

// FolderConfig parameterizes per-user share provisioning.
type FolderConfig struct {
	// FlagColumn is the boolean column gating the generator for a row.
	FlagColumn string `yaml:"flagColumn" validate:"required"`

	// Server is the file server hosting the shares.
	Server string `yaml:"server" validate:"required"`

	// LocalPath is a template expression for the share's local path on
	// the server (e.g. "D:\\Eleves\\%sAMAccountName%").
	LocalPath string `yaml:"localPath" validate:"required"`
}

// ClassGroupFolderConfig parameterizes class-group folder provisioning.
type ClassGroupFolderConfig struct {
	// FlagColumn is the boolean column gating the generator for a row.
	FlagColumn string `yaml:"flagColumn" validate:"required"`

	// GroupIDColumn is the column holding the class group identifier.
	GroupIDColumn string `yaml:"groupIdColumn" validate:"required"`

	// GroupNameColumn is the column holding the class group display name.
	GroupNameColumn string `yaml:"groupNameColumn" validate:"required"`

	// Server is the file server hosting the class folders.
	Server string `yaml:"server,omitempty"`

	// BasePath is the root path under which class folders are created.
	BasePath string `yaml:"basePath,omitempty"`
}

// TeamConfig parameterizes groupware team creation.
type TeamConfig struct {
	// FlagColumn is the boolean column gating the generator for a row.
	FlagColumn string `yaml:"flagColumn" validate:"required"`

	// NameColumn is the column holding the team name.
	NameColumn string `yaml:"nameColumn" validate:"required"`

	// DescriptionTemplate is an optional template expression for the
	// team description.
	DescriptionTemplate string `yaml:"descriptionTemplate,omitempty"`
}

// ActionDisabled reports whether the given action kind is listed in
// DisabledActions. Matching is exact.
func (c *Config) ActionDisabled(kind string) bool {
	for _, k := range c.DisabledActions {
		if k == kind {
			return true
		}
	}
	return false
}
