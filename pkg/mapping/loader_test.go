package mapping

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validYAML = `
attributes:
  sAMAccountName: "%prenom:username%.%nom:username%"
  givenName: "%prenom%"
  sn: "%nom:uppercase%"
ouColumn: classe
defaultOU: "OU=Eleves,DC=lycee,DC=local"
createMissingOUs: true
overwriteExisting: true
`

func TestLoadValidConfig(t *testing.T) {
	cfg, err := Load([]byte(validYAML))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.DefaultOU != "OU=Eleves,DC=lycee,DC=local" {
		t.Errorf("DefaultOU = %q", cfg.DefaultOU)
	}
	if cfg.OUColumn != "classe" {
		t.Errorf("OUColumn = %q", cfg.OUColumn)
	}
	if !cfg.CreateMissingOUs || !cfg.OverwriteExisting {
		t.Error("boolean flags not parsed")
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load([]byte(validYAML))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.AccountNameAttribute != DefaultAccountNameAttribute {
		t.Errorf("AccountNameAttribute = %q, want %q", cfg.AccountNameAttribute, DefaultAccountNameAttribute)
	}
	if cfg.Delimiter != ";" {
		t.Errorf("Delimiter = %q, want ;", cfg.Delimiter)
	}
}

func TestLoadRejectsMissingDefaultOU(t *testing.T) {
	yaml := `
attributes:
  sAMAccountName: "%login%"
`
	if _, err := Load([]byte(yaml)); err == nil {
		t.Fatal("expected error for missing defaultOU")
	}
}

func TestLoadRejectsMissingAccountNameTemplate(t *testing.T) {
	yaml := `
attributes:
  givenName: "%prenom%"
defaultOU: "DC=lycee,DC=local"
`
	_, err := Load([]byte(yaml))
	if err == nil {
		t.Fatal("expected error for missing account name template")
	}
	if !strings.Contains(err.Error(), "sAMAccountName") {
		t.Errorf("error does not name the missing attribute: %v", err)
	}
}

func TestLoadRejectsIncompleteGeneratorBlock(t *testing.T) {
	yaml := validYAML + `
studentFolders:
  flagColumn: dossier
`
	if _, err := Load([]byte(yaml)); err == nil {
		t.Fatal("expected error for student folder block without server and path")
	}
}

func TestLoadGeneratorBlocks(t *testing.T) {
	yaml := validYAML + `
studentFolders:
  flagColumn: dossier
  server: srv-files
  localPath: 'D:\Eleves\%sAMAccountName%'
classGroupFolders:
  flagColumn: dossierClasse
  groupIdColumn: groupeId
  groupNameColumn: groupe
  server: srv-files
  basePath: 'D:\Classes'
teams:
  flagColumn: equipe
  nameColumn: classe
disabledActions:
  - DELETE_USER
`
	cfg, err := Load([]byte(yaml))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.StudentFolders == nil || cfg.StudentFolders.Server != "srv-files" {
		t.Errorf("student folders block not parsed: %+v", cfg.StudentFolders)
	}
	if cfg.ClassGroupFolders == nil || cfg.ClassGroupFolders.GroupIDColumn != "groupeId" {
		t.Errorf("class group folders block not parsed: %+v", cfg.ClassGroupFolders)
	}
	if cfg.Teams == nil || cfg.Teams.NameColumn != "classe" {
		t.Errorf("teams block not parsed: %+v", cfg.Teams)
	}
	if !cfg.ActionDisabled("DELETE_USER") {
		t.Error("DELETE_USER should be disabled")
	}
	if cfg.ActionDisabled("CREATE_USER") {
		t.Error("CREATE_USER should not be disabled")
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	if _, err := Load([]byte("attributes: [not a map")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mapping.yaml")
	if err := os.WriteFile(path, []byte(validYAML), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.DefaultOU == "" {
		t.Error("config not loaded")
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
