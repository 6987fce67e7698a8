package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ADManagerLND/ADManagerAPI-sub003/pkg/directory"
	"github.com/ADManagerLND/ADManagerAPI-sub003/pkg/engine"
	"github.com/ADManagerLND/ADManagerAPI-sub003/pkg/mapping"
	"github.com/ADManagerLND/ADManagerAPI-sub003/pkg/shares"
	"github.com/ADManagerLND/ADManagerAPI-sub003/pkg/stores"
	"github.com/ADManagerLND/ADManagerAPI-sub003/pkg/telemetry"
)

func newPlanCommand() *cobra.Command {
	var (
		outDir     string
		dbPath     string
		offline    bool
		ldapURL    string
		bindDN     string
		baseDN     string
		mountRoot  string
		maxWorkers int
	)

	cmd := &cobra.Command{
		Use:   "plan <input.csv> [input2.csv ...]",
		Short: "Compute a provisioning plan from CSV input",
		Long: `Compute a provisioning plan by reconciling CSV rows against the
directory. Each input file is analyzed independently; the resulting
analyses are printed, optionally written as JSON and recorded in the
history database.

The directory is only read. Use --offline to plan against an empty
in-memory directory (every row becomes a creation).`,
		Example: `  # Plan one class file against the directory
  adplan plan --mapping eleves.yaml --ldap-url ldaps://dc1:636 \
      --bind-dn "CN=svc,DC=lycee,DC=local" --base-dn "DC=lycee,DC=local" 6A.csv

  # Offline dry planning, JSON output
  adplan plan --mapping eleves.yaml --offline --out plans/ 6A.csv 6B.csv`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := mapping.LoadFile(mappingPath)
			if err != nil {
				return err
			}

			logger, err := telemetry.NewLogger(telemetry.LoggingConfig{
				Level:  logLevel(),
				Format: "console",
			})
			if err != nil {
				return err
			}

			dir, shareChecker, closeDir, err := buildCollaborators(offline, ldapURL, bindDN, baseDN, mountRoot, logger)
			if err != nil {
				return err
			}
			defer closeDir()

			var store *stores.SQLiteStore
			if dbPath != "" {
				store, err = stores.NewSQLiteStore(dbPath)
				if err != nil {
					return err
				}
				if err := store.Init(cmd.Context()); err != nil {
					return err
				}
				defer store.Close()
			}

			metrics, err := telemetry.NewMetrics(prometheus.NewRegistry())
			if err != nil {
				return err
			}

			var progressMu sync.Mutex
			analyzer := engine.NewAnalyzer(dir, shareChecker, engine.Options{
				MaxParallel: maxWorkers,
				Logger:      logger,
				Metrics:     metrics,
				Progress: func(percent int, phase, message string) {
					progressMu.Lock()
					defer progressMu.Unlock()
					log.Debug().Int("percent", percent).Str("phase", phase).Msg(message)
				},
			})

			g, ctx := errgroup.WithContext(cmd.Context())
			for _, input := range args {
				g.Go(func() error {
					return planFile(ctx, analyzer, store, cfg, input, outDir)
				})
			}
			return g.Wait()
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "", "directory to write plan JSON files to")
	cmd.Flags().StringVar(&dbPath, "db", "adplan.db", "history database path (empty disables history)")
	cmd.Flags().BoolVar(&offline, "offline", false, "plan against an empty in-memory directory")
	cmd.Flags().StringVar(&ldapURL, "ldap-url", "", "LDAP endpoint (ldap:// or ldaps://)")
	cmd.Flags().StringVar(&bindDN, "bind-dn", "", "bind DN of the read-only service account")
	cmd.Flags().StringVar(&baseDN, "base-dn", "", "search base DN")
	cmd.Flags().StringVar(&mountRoot, "mount-root", "", "local mount root for share existence checks")
	cmd.Flags().IntVar(&maxWorkers, "workers", 0, "max parallel row planners (0 = auto)")

	return cmd
}

// planFile analyzes one input file and reports, persists and writes the
// result.
func planFile(ctx context.Context, analyzer *engine.Analyzer, store *stores.SQLiteStore, cfg *mapping.Config, input, outDir string) error {
	rows, err := readRows(input, cfg)
	if err != nil {
		return err
	}

	analysis, err := analyzer.Analyze(ctx, rows, cfg)
	if err != nil {
		return fmt.Errorf("analysis of %s failed: %w", input, err)
	}

	printSummary(input, analysis)

	if store != nil {
		if err := store.SaveAnalysis(ctx, analysis); err != nil {
			return err
		}
	}

	if outDir != "" {
		if err := writePlan(analysis, input, outDir); err != nil {
			return err
		}
	}
	return nil
}

// printSummary logs the per-kind counts of an analysis.
func printSummary(input string, analysis *engine.Analysis) {
	s := analysis.Summary
	log.Info().
		Str("input", input).
		Str("analysis", analysis.ID).
		Int("total", s.TotalObjects).
		Int("ous_to_create", s.OUsToCreate).
		Int("users_to_create", s.UsersToCreate).
		Int("users_to_update", s.UsersToUpdate).
		Int("users_to_move", s.UsersToMove).
		Int("users_to_delete", s.UsersToDelete).
		Int("groups_to_create", s.GroupsToCreate).
		Int("memberships", s.GroupMemberships).
		Int("student_folders", s.StudentFolders).
		Int("class_folders", s.ClassGroupFolders).
		Int("teams", s.Teams).
		Int("errors", s.Errors).
		Msg("Plan computed")
}

// writePlan writes the full analysis as JSON next to the input's base name.
func writePlan(analysis *engine.Analysis, input, outDir string) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	path := filepath.Join(outDir, base+".plan.json")

	data, err := json.MarshalIndent(analysis, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}

	log.Info().Str("path", path).Msg("Plan written")
	return nil
}

// buildCollaborators wires the directory and share collaborators for the
// selected mode.
func buildCollaborators(offline bool, ldapURL, bindDN, baseDN, mountRoot string, logger *telemetry.Logger) (engine.Directory, engine.ShareChecker, func(), error) {
	if offline {
		fake := directory.NewFake()
		return fake, fake, func() {}, nil
	}

	client, err := directory.NewClient(directory.Config{
		URL:      ldapURL,
		BindDN:   bindDN,
		Password: os.Getenv("ADPLAN_LDAP_PASSWORD"),
		BaseDN:   baseDN,
	}, logger)
	if err != nil {
		return nil, nil, nil, err
	}

	var checker engine.ShareChecker
	if mountRoot != "" {
		checker = &shares.LocalChecker{MountRoot: mountRoot}
	}

	return client, checker, func() { _ = client.Close() }, nil
}

// logLevel maps the global verbose flag to a logger level.
func logLevel() string {
	if verbose {
		return "debug"
	}
	return "info"
}
