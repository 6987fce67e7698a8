package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ADManagerLND/ADManagerAPI-sub003/pkg/mapping"
)

func TestReadRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "6A.csv")
	content := "prenom;nom;classe\nJean;Dupont;6A\nMarie;Durand;6A\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := &mapping.Config{Delimiter: ";"}
	rows, err := readRows(path, cfg)
	if err != nil {
		t.Fatalf("readRows failed: %v", err)
	}

	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Value("prenom") != "Jean" || rows[0].Value("nom") != "Dupont" {
		t.Errorf("first row = %+v", rows[0])
	}
	if rows[1].Value("classe") != "6A" {
		t.Errorf("second row = %+v", rows[1])
	}
}

func TestReadRowsMultibyteDelimiter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken-bar.csv")
	content := "prenom¦nom¦classe\nJean¦Dupont¦6A\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	rows, err := readRows(path, &mapping.Config{Delimiter: "¦"})
	if err != nil {
		t.Fatalf("readRows failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].Value("nom") != "Dupont" || rows[0].Value("classe") != "6A" {
		t.Errorf("row = %+v", rows[0])
	}
}

func TestReadRowsRaggedRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ragged.csv")
	content := "prenom;nom;classe\nJean;Dupont\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	rows, err := readRows(path, &mapping.Config{Delimiter: ";"})
	if err != nil {
		t.Fatalf("readRows failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].Value("classe") != "" {
		t.Errorf("missing trailing column should be absent, got %q", rows[0].Value("classe"))
	}
}

func TestReadRowsEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatal(err)
	}

	rows, err := readRows(path, &mapping.Config{Delimiter: ";"})
	if err != nil {
		t.Fatalf("readRows failed: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("expected no rows, got %d", len(rows))
	}
}

func TestReadRowsMissingFile(t *testing.T) {
	if _, err := readRows(filepath.Join(t.TempDir(), "missing.csv"), &mapping.Config{}); err == nil {
		t.Error("expected error for missing file")
	}
}
