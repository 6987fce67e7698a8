package directory

import (
	"context"
	"errors"
	"testing"

	"github.com/ADManagerLND/ADManagerAPI-sub003/pkg/engine"
	"github.com/ADManagerLND/ADManagerAPI-sub003/pkg/mapping"
)

func TestFakeDirectoryQueries(t *testing.T) {
	f := NewFake()
	f.AddOU("OU=6A,DC=test,DC=local")
	f.AddUser(FakeUser{
		AccountName: "Jean.Dupont",
		OU:          "OU=6A,DC=test,DC=local",
		DisplayName: "Jean Dupont",
		Attributes:  map[string]string{"sn": "DUPONT"},
	})
	f.AddShare("srv-files", `D:\Eleves\jean.dupont`)

	ctx := context.Background()

	ok, err := f.OUExists(ctx, "ou=6a, DC=test,DC=local")
	if err != nil || !ok {
		t.Errorf("OUExists = %v, %v; want true", ok, err)
	}
	if n := f.OUQueries["ou=6a, DC=test,DC=local"]; n != 1 {
		t.Errorf("query count = %d, want 1", n)
	}

	ok, err = f.UserExists(ctx, "JEAN.DUPONT")
	if err != nil || !ok {
		t.Errorf("UserExists = %v, %v; want true", ok, err)
	}

	ou, err := f.CurrentOU(ctx, "jean.dupont")
	if err != nil || ou != "OU=6A,DC=test,DC=local" {
		t.Errorf("CurrentOU = %q, %v", ou, err)
	}

	attrs, err := f.Attributes(ctx, "jean.dupont", []string{"sn", "mail"})
	if err != nil {
		t.Fatalf("Attributes failed: %v", err)
	}
	if attrs["sn"] != "DUPONT" || attrs["mail"] != "" {
		t.Errorf("attrs = %+v", attrs)
	}

	ok, err = f.ShareExists(ctx, "SRV-FILES", "jean.dupont", `d:\eleves\JEAN.DUPONT`)
	if err != nil || !ok {
		t.Errorf("ShareExists = %v, %v; want true", ok, err)
	}
}

func TestFakeSimulatesFailure(t *testing.T) {
	f := NewFake()
	f.Err = errors.New("directory unreachable")

	if _, err := f.UserExists(context.Background(), "jean.dupont"); err == nil {
		t.Error("expected query error")
	}
	if _, err := f.ListUsersUnder(context.Background(), "DC=test,DC=local"); err == nil {
		t.Error("expected listing error")
	}
}

// The fake must be usable as the analyzer's directory for offline planning.
func TestFakeDrivesAnalyzer(t *testing.T) {
	f := NewFake()
	cfg := &mapping.Config{
		Attributes: map[string]string{
			"sAMAccountName": "%prenom:username%.%nom:username%",
			"sn":             "%nom:uppercase%",
		},
		AccountNameAttribute: "sAMAccountName",
		OUColumn:             "classe",
		DefaultOU:            "DC=test,DC=local",
		CreateMissingOUs:     true,
	}

	analyzer := engine.NewAnalyzer(f, f, engine.Options{})
	rows := []engine.Row{{"prenom": "Jean", "nom": "Dupont", "classe": "6A"}}

	analysis, err := analyzer.Analyze(context.Background(), rows, cfg)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if analysis.Summary.OUsToCreate != 1 || analysis.Summary.UsersToCreate != 1 {
		t.Errorf("unexpected summary: %+v", analysis.Summary)
	}
}
