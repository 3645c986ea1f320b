package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sysup/internal/config"
	"sysup/internal/privilege"
	"sysup/pkg/manager"
)

// fakeManager is a scriptable Manager for orchestration tests.
type fakeManager struct {
	name       string
	available  bool
	candidates []manager.PackageInfo
	checkErr   error
	applyErr   error
	panicApply bool
	applyHook  func()
	applyDelay time.Duration

	mu      sync.Mutex
	applied [][]manager.PackageInfo
}

func (f *fakeManager) Name() string        { return f.name }
func (f *fakeManager) DisplayName() string { return f.name }
func (f *fakeManager) IsAvailable() bool   { return f.available }

func (f *fakeManager) CheckUpdates(ctx context.Context) ([]manager.PackageInfo, error) {
	if f.checkErr != nil {
		return nil, f.checkErr
	}
	return append([]manager.PackageInfo(nil), f.candidates...), nil
}

func (f *fakeManager) ApplyUpdates(ctx context.Context, candidates []manager.PackageInfo, opts manager.ApplyOpts) manager.UpdateResult {
	if f.panicApply {
		panic("scripted failure")
	}
	if f.applyHook != nil {
		f.applyHook()
	}
	if f.applyDelay > 0 {
		time.Sleep(f.applyDelay)
	}

	f.mu.Lock()
	f.applied = append(f.applied, candidates)
	f.mu.Unlock()

	result := manager.UpdateResult{Manager: f.name}
	if opts.DryRun {
		result.Updated = candidates
		result.Status = manager.StatusSimulated
		return result
	}
	if f.applyErr != nil {
		result.Errors = append(result.Errors, manager.ErrorRecord{Message: f.applyErr.Error()})
	} else {
		result.Updated = candidates
	}
	result.Status = result.DeriveStatus(false)
	return result
}

func (f *fakeManager) appliedCandidates() [][]manager.PackageInfo {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]manager.PackageInfo(nil), f.applied...)
}

// fakeMaintainer adds the optional capabilities on top of fakeManager.
type fakeMaintainer struct {
	*fakeManager
	cleanupErr error
	selfErr    error
}

func (f *fakeMaintainer) Cleanup(ctx context.Context) error    { return f.cleanupErr }
func (f *fakeMaintainer) SelfUpdate(ctx context.Context) error { return f.selfErr }

// fakeProber scripts the sudo credential probe.
type fakeProber struct {
	creds bool
}

func (f *fakeProber) ProbeSudo(ctx context.Context) bool { return f.creds }
func (f *fakeProber) LookPath(name string) bool          { return true }

func newTestOrchestrator(t *testing.T, cfg *config.Config, strategy privilege.Strategy, creds bool, managers ...manager.Manager) *Orchestrator {
	t.Helper()

	if cfg == nil {
		cfg = config.Default()
	}
	registry := manager.NewRegistry()
	for _, mgr := range managers {
		require.NoError(t, registry.Register(mgr, true))
	}
	neg := privilege.New(strategy, cfg.Sudo.Whitelist, &fakeProber{creds: creds}, false)
	return New(registry, cfg, neg)
}

func pkg(name, mgr string, privileged bool) manager.PackageInfo {
	return manager.PackageInfo{Name: name, Manager: mgr, RequiresPrivilege: privileged}
}

func TestRunStatusCollectsPending(t *testing.T) {
	a := &fakeManager{name: "a", available: true, candidates: []manager.PackageInfo{pkg("x", "a", false)}}
	b := &fakeManager{name: "b", available: false}
	o := newTestOrchestrator(t, nil, privilege.StrategyPrompt, true, a, b)

	report, err := o.RunStatus(context.Background(), nil)
	require.NoError(t, err)

	require.Len(t, report.Results, 2)
	assert.Equal(t, manager.StatusSuccess, report.Results[0].Status)
	assert.Equal(t, manager.StatusUnavailable, report.Results[1].Status)
	assert.Len(t, report.Pending["a"], 1)
	assert.Equal(t, manager.StatusSuccess, report.Overall)
	assert.Equal(t, ModeStatus, report.Mode)
}

func TestRunStatusIdempotent(t *testing.T) {
	a := &fakeManager{name: "a", available: true, candidates: []manager.PackageInfo{pkg("x", "a", false)}}
	o := newTestOrchestrator(t, nil, privilege.StrategyPrompt, true, a)

	first, err := o.RunStatus(context.Background(), nil)
	require.NoError(t, err)
	second, err := o.RunStatus(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, first.Pending, second.Pending)
	assert.Empty(t, a.appliedCandidates(), "status mode must never apply anything")
}

func TestRunUpdateUnknownManager(t *testing.T) {
	o := newTestOrchestrator(t, nil, privilege.StrategyPrompt, true,
		&fakeManager{name: "a", available: true})

	_, err := o.RunUpdate(context.Background(), []string{"nope"}, false)
	assert.ErrorIs(t, err, manager.ErrNotFound)
}

// One manager is not installed, the other has two pending updates of which
// one needs privileges under a skip policy. The privileged candidate lands
// in skipped with the policy reason, the rest is applied, and the overall
// status is partial because the unavailable manager does not count.
func TestRunUpdateMixedOutcome(t *testing.T) {
	a := &fakeManager{name: "a", available: false}
	b := &fakeManager{name: "b", available: true, candidates: []manager.PackageInfo{
		pkg("plain", "b", false),
		pkg("elevated", "b", true),
	}}
	o := newTestOrchestrator(t, nil, privilege.StrategySkip, false, a, b)

	report, err := o.RunUpdate(context.Background(), nil, false)
	require.NoError(t, err)

	require.Len(t, report.Results, 2)
	assert.Equal(t, manager.StatusUnavailable, report.Results[0].Status)

	resB := report.Results[1]
	assert.Equal(t, manager.StatusPartial, resB.Status)
	require.Len(t, resB.Updated, 1)
	assert.Equal(t, "plain", resB.Updated[0].Name)
	require.Len(t, resB.Skipped, 1)
	assert.Equal(t, "elevated", resB.Skipped[0].Package.Name)
	assert.Equal(t, privilege.ReasonDisabledByPolicy, resB.Skipped[0].Reason)

	assert.Equal(t, manager.StatusPartial, report.Overall)
	assert.Equal(t, ExitPartial, ExitCode(report.Overall))
}

func TestRunUpdateAppliesExclusions(t *testing.T) {
	cfg := config.Default()
	cfg.General.Exclude = []string{"global-held"}
	cfg.Managers["a"] = config.ManagerConfig{Exclude: []string{"local-held"}}

	a := &fakeManager{name: "a", available: true, candidates: []manager.PackageInfo{
		pkg("keep", "a", false),
		pkg("global-held", "a", false),
		pkg("local-held", "a", false),
	}}
	o := newTestOrchestrator(t, cfg, privilege.StrategyPrompt, true, a)

	report, err := o.RunUpdate(context.Background(), nil, false)
	require.NoError(t, err)

	applied := a.appliedCandidates()
	require.Len(t, applied, 1)
	require.Len(t, applied[0], 1)
	assert.Equal(t, "keep", applied[0][0].Name)
	assert.Equal(t, manager.StatusSuccess, report.Overall)
}

func TestRunUpdatePanicIsolation(t *testing.T) {
	bad := &fakeManager{name: "bad", available: true, panicApply: true,
		candidates: []manager.PackageInfo{pkg("x", "bad", false)}}
	good := &fakeManager{name: "good", available: true,
		candidates: []manager.PackageInfo{pkg("y", "good", false)}}
	o := newTestOrchestrator(t, nil, privilege.StrategyPrompt, true, bad, good)

	report, err := o.RunUpdate(context.Background(), nil, false)
	require.NoError(t, err)

	require.Len(t, report.Results, 2)
	assert.Equal(t, manager.StatusFailed, report.Results[0].Status)
	require.NotEmpty(t, report.Results[0].Errors)
	assert.Contains(t, report.Results[0].Errors[0].Message, "internal error")

	assert.Equal(t, manager.StatusSuccess, report.Results[1].Status)
	assert.Equal(t, manager.StatusFailed, report.Overall)
}

func TestRunUpdateDiscoveryFailure(t *testing.T) {
	a := &fakeManager{name: "a", available: true, checkErr: errors.New("network down")}
	o := newTestOrchestrator(t, nil, privilege.StrategyPrompt, true, a)

	report, err := o.RunUpdate(context.Background(), nil, false)
	require.NoError(t, err)

	assert.Equal(t, manager.StatusFailed, report.Results[0].Status)
	assert.Contains(t, report.Results[0].Errors[0].Message, "network down")
	assert.Empty(t, a.appliedCandidates(), "apply must not run after failed discovery")
}

func TestRunUpdateDryRun(t *testing.T) {
	a := &fakeManager{name: "a", available: true, candidates: []manager.PackageInfo{
		pkg("plain", "a", false),
		pkg("other", "a", false),
	}}
	o := newTestOrchestrator(t, nil, privilege.StrategyPrompt, true, a)

	report, err := o.RunUpdate(context.Background(), nil, true)
	require.NoError(t, err)

	res := report.Results[0]
	assert.Equal(t, manager.StatusSimulated, res.Status)
	assert.Len(t, res.Updated, 2)
	assert.Empty(t, res.Skipped)
	assert.True(t, report.DryRun)
	assert.Equal(t, manager.StatusSimulated, report.Overall)
	assert.Equal(t, ExitSuccess, ExitCode(report.Overall))
}

// A dry run negotiates privileges like a real run would, so the simulation
// reports the same skips: under a skip policy a privileged candidate lands in
// skipped, never in the would-be-updated list.
func TestRunUpdateDryRunNegotiatesPrivileges(t *testing.T) {
	a := &fakeManager{name: "a", available: true, candidates: []manager.PackageInfo{
		pkg("plain", "a", false),
		pkg("elevated", "a", true),
	}}
	o := newTestOrchestrator(t, nil, privilege.StrategySkip, false, a)

	report, err := o.RunUpdate(context.Background(), nil, true)
	require.NoError(t, err)

	res := report.Results[0]
	assert.Equal(t, manager.StatusSimulated, res.Status)
	require.Len(t, res.Updated, 1)
	assert.Equal(t, "plain", res.Updated[0].Name)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, "elevated", res.Skipped[0].Package.Name)
	assert.Equal(t, privilege.ReasonDisabledByPolicy, res.Skipped[0].Reason)
}

func TestRunUpdateCancellationBetweenSteps(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	first := &fakeManager{name: "first", available: true,
		candidates: []manager.PackageInfo{pkg("x", "first", false)},
		applyHook:  cancel}
	second := &fakeManager{name: "second", available: true,
		candidates: []manager.PackageInfo{pkg("y", "second", false)}}
	o := newTestOrchestrator(t, nil, privilege.StrategyPrompt, true, first, second)

	report, err := o.RunUpdate(ctx, nil, false)
	require.NoError(t, err)

	assert.True(t, report.Cancelled)
	assert.Equal(t, StatusCancelled, report.Overall)
	assert.Equal(t, ExitCancelled, ExitCode(report.Overall))

	// The completed step survives; the never-started one is absent.
	require.Len(t, report.Results, 1)
	assert.Equal(t, "first", report.Results[0].Manager)
	assert.Empty(t, second.appliedCandidates())
}

func TestRunUpdateAlreadyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := &fakeManager{name: "a", available: true}
	o := newTestOrchestrator(t, nil, privilege.StrategyPrompt, true, a)

	report, err := o.RunUpdate(ctx, nil, false)
	require.NoError(t, err)

	assert.True(t, report.Cancelled)
	assert.Empty(t, report.Results)
	assert.Empty(t, a.appliedCandidates())
}

func TestRunUpdateMaintenanceDegrades(t *testing.T) {
	base := &fakeManager{name: "a", available: true,
		candidates: []manager.PackageInfo{pkg("x", "a", false)}}
	mgr := &fakeMaintainer{fakeManager: base, cleanupErr: errors.New("cleanup exploded")}
	o := newTestOrchestrator(t, nil, privilege.StrategyPrompt, true, mgr)

	report, err := o.RunUpdate(context.Background(), nil, false)
	require.NoError(t, err)

	res := report.Results[0]
	assert.Equal(t, manager.StatusDegraded, res.Status)
	require.NotEmpty(t, res.Errors)
	assert.Contains(t, res.Errors[0].Message, "cleanup")
	assert.Len(t, res.Updated, 1, "maintenance failure must not undo the update outcome")
	assert.Equal(t, manager.StatusDegraded, report.Overall)
	assert.Equal(t, ExitSuccess, ExitCode(report.Overall))
}

func TestRunUpdateMaintenanceSkippedInDryRun(t *testing.T) {
	base := &fakeManager{name: "a", available: true,
		candidates: []manager.PackageInfo{pkg("x", "a", false)}}
	mgr := &fakeMaintainer{fakeManager: base, cleanupErr: errors.New("cleanup exploded")}
	o := newTestOrchestrator(t, nil, privilege.StrategyPrompt, true, mgr)

	report, err := o.RunUpdate(context.Background(), nil, true)
	require.NoError(t, err)

	assert.Equal(t, manager.StatusSimulated, report.Results[0].Status)
	assert.Empty(t, report.Results[0].Errors)
}

func TestRunUpdateParallelPreservesOrder(t *testing.T) {
	cfg := config.Default()
	cfg.General.Parallel = 3

	slow := &fakeManager{name: "slow", available: true, applyDelay: 30 * time.Millisecond,
		candidates: []manager.PackageInfo{pkg("x", "slow", false)}}
	mid := &fakeManager{name: "mid", available: true, applyDelay: 10 * time.Millisecond,
		candidates: []manager.PackageInfo{pkg("y", "mid", false)}}
	fast := &fakeManager{name: "fast", available: true,
		candidates: []manager.PackageInfo{pkg("z", "fast", false)}}
	o := newTestOrchestrator(t, cfg, privilege.StrategyPrompt, true, slow, mid, fast)

	report, err := o.RunUpdate(context.Background(), nil, false)
	require.NoError(t, err)

	require.Len(t, report.Results, 3)
	assert.Equal(t, "slow", report.Results[0].Manager)
	assert.Equal(t, "mid", report.Results[1].Manager)
	assert.Equal(t, "fast", report.Results[2].Manager)
	assert.Equal(t, manager.StatusSuccess, report.Overall)
}

func TestRunUpdatePrivilegedProceedsWithCredentials(t *testing.T) {
	a := &fakeManager{name: "a", available: true, candidates: []manager.PackageInfo{
		pkg("elevated", "a", true),
	}}
	o := newTestOrchestrator(t, nil, privilege.StrategyPasswordlessAll, true, a)

	report, err := o.RunUpdate(context.Background(), nil, false)
	require.NoError(t, err)

	res := report.Results[0]
	assert.Equal(t, manager.StatusSuccess, res.Status)
	assert.Len(t, res.Updated, 1)
	assert.Empty(t, res.Skipped)
}

func TestObserverSeesEveryResult(t *testing.T) {
	cfg := config.Default()
	registry := manager.NewRegistry()
	require.NoError(t, registry.Register(&fakeManager{name: "a", available: true}, true))
	require.NoError(t, registry.Register(&fakeManager{name: "b", available: false}, true))
	neg := privilege.New(privilege.StrategyPrompt, nil, &fakeProber{creds: true}, false)

	var seen []string
	o := New(registry, cfg, neg, WithObserver(func(res manager.UpdateResult) {
		seen = append(seen, res.Manager)
	}))

	_, err := o.RunUpdate(context.Background(), nil, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, seen)
}
