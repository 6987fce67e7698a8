package engine

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/ADManagerLND/ADManagerAPI-sub003/pkg/mapping"
	"github.com/ADManagerLND/ADManagerAPI-sub003/pkg/telemetry"
)

// Progress sub-ranges per phase. Row planning owns the lower range, orphan
// detection the middle one; completion always reports 100.
const (
	rowPhaseUpper    = 70
	orphanPhaseUpper = 95
)

// Options configures an Analyzer.
type Options struct {
	// MaxParallel bounds the number of concurrent row-planning workers.
	// Zero defaults to the available parallelism.
	MaxParallel int

	// Progress receives coarse progress updates. Nil disables reporting.
	Progress ProgressFunc

	// Logger is the structured logger. Nil disables logging.
	Logger *telemetry.Logger

	// Metrics is the metrics collector. Nil disables metrics.
	Metrics *telemetry.Metrics
}

// Analyzer computes reconciliation analyses. It is safe for concurrent use;
// every Analyze call carries its own caches and shares nothing across
// invocations.
type Analyzer struct {
	dir         Directory
	shares      ShareChecker
	maxParallel int
	progress    ProgressFunc
	log         *telemetry.Logger
	metrics     *telemetry.Metrics
}

// NewAnalyzer creates an analyzer over the given directory and share
// collaborators. shares may be nil when folder provisioning is not
// configured.
func NewAnalyzer(dir Directory, shares ShareChecker, opts Options) *Analyzer {
	maxParallel := opts.MaxParallel
	if maxParallel <= 0 {
		maxParallel = runtime.GOMAXPROCS(0)
	}

	log := opts.Logger
	if log == nil {
		log = telemetry.NewNopLogger()
	}

	return &Analyzer{
		dir:         dir,
		shares:      shares,
		maxParallel: maxParallel,
		progress:    opts.Progress,
		log:         log.Component("engine"),
		metrics:     opts.Metrics,
	}
}

// Analyze plans the full batch: every row is classified under bounded
// parallelism, orphan identities are detected once over the whole batch,
// and the resulting actions are folded into a Summary. The returned
// Analysis is complete or the call fails; cancellation and orphan-phase
// directory failures are batch-fatal.
func (a *Analyzer) Analyze(ctx context.Context, rows []Row, cfg *mapping.Config) (*Analysis, error) {
	if cfg == nil {
		return nil, NewPermanentError("mapping config is nil", nil).WithCode(ErrCodeValidation)
	}
	if err := cfg.Validate(); err != nil {
		return nil, NewPermanentError("mapping config is invalid", err).WithCode(ErrCodeValidation)
	}

	start := time.Now()
	a.log.Infof("starting analysis of %d rows under %s", len(rows), cfg.DefaultOU)
	a.report(0, PhaseRows, fmt.Sprintf("planning %d rows", len(rows)))

	ous := newOUCache(a.dir, cfg.DefaultOU, cfg.CreateMissingOUs)
	groups := newGroupIndex()
	groupCreates := a.prescanGroups(ctx, rows, cfg, ous, groups)

	planner := &rowPlanner{
		cfg:    cfg,
		dir:    a.dir,
		shares: a.shares,
		ous:    ous,
		groups: groups,
		log:    a.log,
	}

	perRow, err := a.planRows(ctx, planner, rows)
	if err != nil {
		return nil, err
	}

	a.report(rowPhaseUpper, PhaseOrphans, "detecting orphan identities")

	var orphans []Action
	if cfg.ActionDisabled(string(KindDeleteUser)) {
		a.log.Debug("orphan detection disabled by configuration")
	} else {
		orphans, err = detectOrphans(ctx, rows, cfg, a.dir)
		if err != nil {
			return nil, err
		}
	}
	a.report(orphanPhaseUpper, PhaseOrphans, fmt.Sprintf("%d orphan identities", len(orphans)))

	// Scheduled OU creations lead the list so that every action
	// referencing an OU is preceded by its creation.
	actions := ous.ScheduledCreates()
	actions = append(actions, groupCreates...)
	for _, rowActions := range perRow {
		actions = append(actions, rowActions...)
	}
	actions = append(actions, orphans...)
	actions = filterDisabled(actions, cfg)

	analysis := &Analysis{
		ID:        uuid.New().String(),
		CreatedAt: time.Now(),
		RowCount:  len(rows),
		Actions:   actions,
		Summary:   Summarize(actions),
	}

	a.observe(analysis, time.Since(start))
	a.report(100, PhaseComplete, fmt.Sprintf("%d actions planned", len(actions)))
	a.log.Infof("analysis %s complete: %d actions in %s", analysis.ID, len(actions), time.Since(start))

	return analysis, nil
}

// planRows fans the batch out to the row planner under the worker bound.
// Worker results land in per-row slots, so no locking is needed beyond the
// shared caches inside the planner.
func (a *Analyzer) planRows(ctx context.Context, planner *rowPlanner, rows []Row) ([][]Action, error) {
	perRow := make([][]Action, len(rows))
	if len(rows) == 0 {
		return perRow, ctxErr(ctx)
	}

	workers := min(a.maxParallel, len(rows))
	jobs := make(chan int)
	var done atomic.Int64

	reportEvery := int64(len(rows) / 20)
	if reportEvery == 0 {
		reportEvery = 1
	}

	// Workers race between incrementing the counter and reporting, so the
	// callback is guarded by a max-so-far threshold to keep the reported
	// percentage monotone.
	var reportMu sync.Mutex
	reported := 0

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}

				perRow[idx] = planner.Plan(ctx, idx, rows[idx])

				if n := done.Add(1); n%reportEvery == 0 {
					percent := int(int64(rowPhaseUpper) * n / int64(len(rows)))
					reportMu.Lock()
					if percent > reported {
						reported = percent
						a.report(percent, PhaseRows, fmt.Sprintf("%d/%d rows planned", n, len(rows)))
					}
					reportMu.Unlock()
				}
			}
		}()
	}

feed:
	for idx := range rows {
		select {
		case jobs <- idx:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	return perRow, ctxErr(ctx)
}

// prescanGroups walks the batch once, sequentially, to register every class
// group declared for auto-creation. Doing this before row planning makes
// group membership deterministic regardless of worker interleaving. Each
// group's OU is resolved through the existence cache so that registration
// and the CreateGroup path agree with where the group's member rows will
// actually land, including the fallback to the default OU when creation of
// missing OUs is disabled. A group whose OU cannot be resolved is skipped;
// its member rows degrade on their own when they hit the same cached
// failure. Returns one CreateGroup action per distinct group.
func (a *Analyzer) prescanGroups(ctx context.Context, rows []Row, cfg *mapping.Config, ous *ouCache, groups *groupIndex) []Action {
	gcfg := cfg.ClassGroupFolders
	if gcfg == nil {
		return nil
	}

	var actions []Action
	for _, row := range rows {
		if !isTruthy(row.Value(gcfg.FlagColumn)) {
			continue
		}
		groupID := strings.TrimSpace(row.Value(gcfg.GroupIDColumn))
		groupName := strings.TrimSpace(row.Value(gcfg.GroupNameColumn))
		if groupID == "" || groupName == "" {
			continue
		}

		targetOU, err := ous.Ensure(ctx, TargetOU(row, cfg))
		if err != nil {
			a.log.Warnf("group %s skipped, OU resolution failed: %v", groupName, err)
			continue
		}
		if groups.Register(targetOU, groupID, groupName) {
			actions = append(actions, Action{
				Kind:       KindCreateGroup,
				ObjectName: groupName,
				Path:       targetOU,
				Attributes: map[string]string{"groupId": groupID},
				RowIndex:   -1,
			})
		}
	}
	return actions
}

// filterDisabled drops actions whose kind the configuration disables.
// Error actions always survive so the summary keeps reporting failed rows.
func filterDisabled(actions []Action, cfg *mapping.Config) []Action {
	if len(cfg.DisabledActions) == 0 {
		return actions
	}
	out := actions[:0]
	for _, action := range actions {
		if action.Kind != KindError && cfg.ActionDisabled(string(action.Kind)) {
			continue
		}
		out = append(out, action)
	}
	return out
}

// report forwards a progress update when a callback is configured.
func (a *Analyzer) report(percent int, phase, message string) {
	if a.progress != nil {
		a.progress(percent, phase, message)
	}
}

// observe records metrics for a completed analysis.
func (a *Analyzer) observe(analysis *Analysis, elapsed time.Duration) {
	if a.metrics == nil {
		return
	}
	a.metrics.ObserveAnalysis(analysis.RowCount, elapsed)
	for _, action := range analysis.Actions {
		a.metrics.CountAction(string(action.Kind))
	}
}

// ctxErr converts a cancelled context into the engine's batch-fatal error.
func ctxErr(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return NewPermanentError("analysis cancelled", err).WithCode(ErrCodeCancelled)
	}
	return nil
}
