package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	log "github.com/sirupsen/logrus"

	"sysup/internal/config"
	"sysup/internal/executor"
	"sysup/internal/privilege"
	"sysup/pkg/manager"
)

// Orchestrator runs registered managers through discovery and update flows.
// It owns the run-level policy: exclusion filtering, privilege negotiation,
// fault isolation, and aggregation. Managers never see policy.
type Orchestrator struct {
	registry *manager.Registry
	cfg      *config.Config
	neg      *privilege.Negotiator

	// observer, when set, receives each completed per-manager result as it
	// lands. Called from the orchestration goroutine only.
	observer func(manager.UpdateResult)
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithObserver registers a callback invoked after each manager completes.
func WithObserver(fn func(manager.UpdateResult)) Option {
	return func(o *Orchestrator) {
		o.observer = fn
	}
}

// New creates an orchestrator over a populated registry.
func New(registry *manager.Registry, cfg *config.Config, neg *privilege.Negotiator, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		registry: registry,
		cfg:      cfg,
		neg:      neg,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ListManagers reports every registered manager with availability and
// enablement.
func (o *Orchestrator) ListManagers() []manager.ManagerStatus {
	return o.registry.List()
}

// RunStatus discovers pending updates without mutating anything. The report's
// Pending map holds the post-exclusion candidates per manager.
func (o *Orchestrator) RunStatus(ctx context.Context, filter []string) (*RunReport, error) {
	managers, err := o.registry.Select(filter)
	if err != nil {
		return nil, err
	}

	report := &RunReport{
		StartedAt: time.Now(),
		Mode:      ModeStatus,
		Pending:   make(map[string][]manager.PackageInfo),
	}

	for _, mgr := range managers {
		if ctx.Err() != nil {
			report.Cancelled = true
			break
		}

		result := manager.UpdateResult{Manager: mgr.Name()}
		start := time.Now()

		if !mgr.IsAvailable() {
			result.Status = manager.StatusUnavailable
		} else if pending, err := o.discover(ctx, mgr); err != nil {
			result.Errors = append(result.Errors, errorRecord(err))
			result.Status = manager.StatusFailed
		} else {
			report.Pending[mgr.Name()] = pending
			result.Status = manager.StatusSuccess
		}

		result.Duration = time.Since(start)
		report.Results = append(report.Results, result)
		o.notify(result)
	}

	o.finish(report, false)
	return report, nil
}

// RunUpdate performs a full update run over the selected managers. Per-manager
// failures land in that manager's result; only selection errors are returned.
func (o *Orchestrator) RunUpdate(ctx context.Context, filter []string, dryRun bool) (*RunReport, error) {
	managers, err := o.registry.Select(filter)
	if err != nil {
		return nil, err
	}

	report := &RunReport{
		StartedAt: time.Now(),
		Mode:      ModeUpdate,
		DryRun:    dryRun,
	}

	workers := o.cfg.General.Parallel
	if workers <= 1 {
		o.runSequential(ctx, managers, dryRun, report)
	} else {
		o.runParallel(ctx, managers, dryRun, workers, report)
	}

	o.finish(report, dryRun)
	return report, nil
}

func (o *Orchestrator) runSequential(ctx context.Context, managers []manager.Manager, dryRun bool, report *RunReport) {
	for _, mgr := range managers {
		if ctx.Err() != nil {
			report.Cancelled = true
			return
		}
		result := o.updateOne(ctx, mgr, dryRun)
		report.Results = append(report.Results, result)
		o.notify(result)
	}
}

// runParallel fans managers out over a bounded worker pool. Results are
// reassembled in registry order; a cancellation lets in-flight steps finish
// and drops the ones that never started.
func (o *Orchestrator) runParallel(ctx context.Context, managers []manager.Manager, dryRun bool, workers int, report *RunReport) {
	type slot struct {
		result manager.UpdateResult
		ran    bool
	}

	slots := make([]slot, len(managers))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, mgr := range managers {
		if ctx.Err() != nil {
			report.Cancelled = true
			break
		}

		sem <- struct{}{}
		wg.Add(1)
		go func(i int, mgr manager.Manager) {
			defer wg.Done()
			defer func() { <-sem }()
			slots[i] = slot{result: o.updateOne(ctx, mgr, dryRun), ran: true}
		}(i, mgr)
	}
	wg.Wait()

	for _, s := range slots {
		if s.ran {
			report.Results = append(report.Results, s.result)
			o.notify(s.result)
		}
	}
}

// updateOne runs the complete update step for a single manager. A panic in a
// manager is contained here and becomes a failed result for that manager
// alone.
func (o *Orchestrator) updateOne(ctx context.Context, mgr manager.Manager, dryRun bool) (result manager.UpdateResult) {
	start := time.Now()
	result.Manager = mgr.Name()

	defer func() {
		if r := recover(); r != nil {
			log.WithField("manager", mgr.Name()).Errorf("manager panicked: %v", r)
			result.Errors = append(result.Errors, manager.ErrorRecord{
				Message: fmt.Sprintf("internal error: %v", r),
			})
			result.Status = manager.StatusFailed
			result.Duration = time.Since(start)
		}
	}()

	if !mgr.IsAvailable() {
		result.Status = manager.StatusUnavailable
		result.Duration = time.Since(start)
		return result
	}

	candidates, err := o.discover(ctx, mgr)
	if err != nil {
		result.Errors = append(result.Errors, errorRecord(err))
		result.Status = manager.StatusFailed
		result.Duration = time.Since(start)
		return result
	}

	candidates, policySkips, abort := o.negotiate(ctx, mgr, candidates)
	if abort != "" {
		result.Errors = append(result.Errors, manager.ErrorRecord{Message: abort})
		result.Status = manager.StatusFailed
		result.Duration = time.Since(start)
		return result
	}

	// ApplyUpdates runs even with an empty candidate set: some tools only
	// expose a bulk update verb and discover nothing up front.
	result = mgr.ApplyUpdates(ctx, candidates, manager.ApplyOpts{DryRun: dryRun})
	result.Manager = mgr.Name()
	result.Skipped = append(result.Skipped, policySkips...)
	result.Status = result.DeriveStatus(dryRun)

	if !dryRun {
		o.maintain(ctx, mgr, &result)
	}

	result.Duration = time.Since(start)
	return result
}

// discover runs CheckUpdates and applies the exclusion filter: the union of
// the global and per-manager sets, matched by exact package name.
func (o *Orchestrator) discover(ctx context.Context, mgr manager.Manager) ([]manager.PackageInfo, error) {
	candidates, err := mgr.CheckUpdates(ctx)
	if err != nil {
		return nil, err
	}

	excluded := o.cfg.ExcludedFor(mgr.Name())
	if len(excluded) == 0 {
		return candidates, nil
	}

	kept := candidates[:0]
	for _, pkg := range candidates {
		if excluded[pkg.Name] {
			log.WithFields(log.Fields{"manager": mgr.Name(), "package": pkg.Name}).
				Debug("excluded by configuration")
			continue
		}
		kept = append(kept, pkg)
	}
	return kept, nil
}

// negotiate decides each privileged candidate against the sudo strategy.
// Skipped candidates carry the negotiator's reason; an Abort is fatal to this
// manager's step and comes back as a non-empty message. Dry runs negotiate
// too, so the simulation reports the same skips a real run would; the
// credential probe never mutates anything.
func (o *Orchestrator) negotiate(ctx context.Context, mgr manager.Manager, candidates []manager.PackageInfo) ([]manager.PackageInfo, []manager.SkippedPackage, string) {
	var skips []manager.SkippedPackage
	kept := candidates[:0]
	for _, pkg := range candidates {
		if !pkg.RequiresPrivilege {
			kept = append(kept, pkg)
			continue
		}

		decision := o.neg.Decide(ctx, binaryOf(mgr))
		switch decision.Outcome {
		case privilege.Proceed:
			kept = append(kept, pkg)
		case privilege.Skip:
			skips = append(skips, manager.SkippedPackage{Package: pkg, Reason: decision.Reason})
		case privilege.Abort:
			return nil, nil, decision.Reason
		}
	}
	return kept, skips, ""
}

// maintain runs the optional cleanup and self-update capabilities after a
// manager's updates. Failures here never undo the update outcome: they are
// recorded, and a clean result becomes degraded.
func (o *Orchestrator) maintain(ctx context.Context, mgr manager.Manager, result *manager.UpdateResult) {
	if result.Status != manager.StatusSuccess && result.Status != manager.StatusPartial {
		return
	}

	var merr *multierror.Error
	if cleaner, ok := mgr.(manager.Cleaner); ok {
		if err := cleaner.Cleanup(ctx); err != nil {
			merr = multierror.Append(merr, fmt.Errorf("cleanup: %w", err))
		}
	}
	if updater, ok := mgr.(manager.SelfUpdater); ok {
		if err := updater.SelfUpdate(ctx); err != nil {
			merr = multierror.Append(merr, fmt.Errorf("self-update: %w", err))
		}
	}

	if merr == nil {
		return
	}
	for _, err := range merr.Errors {
		result.Errors = append(result.Errors, errorRecord(err))
	}
	if result.Status == manager.StatusSuccess {
		result.Status = manager.StatusDegraded
	}
}

func (o *Orchestrator) finish(report *RunReport, dryRun bool) {
	report.FinishedAt = time.Now()
	if report.Cancelled {
		report.Overall = StatusCancelled
		return
	}
	report.Overall = Aggregate(report.Results, dryRun)
}

func (o *Orchestrator) notify(result manager.UpdateResult) {
	if o.observer != nil {
		o.observer(result)
	}
}

// binaryOf resolves the command prefix a manager elevates with. Managers
// expose it through an optional accessor; the registry id is the fallback.
func binaryOf(mgr manager.Manager) string {
	if b, ok := mgr.(interface{ Binary() string }); ok {
		return b.Binary()
	}
	return mgr.Name()
}

func errorRecord(err error) manager.ErrorRecord {
	rec := manager.ErrorRecord{Message: err.Error()}
	var invErr *executor.InvocationError
	if errors.As(err, &invErr) {
		rec.ExitCode = invErr.ExitCode
	}
	return rec
}
