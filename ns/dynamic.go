package ns

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
)

// Options configures a dynamic nested sampling run.
type Options struct {
	Ninit      int // live points for the initial exploratory run
	NliveConst int // live points of the equivalent-cost non-dynamic run
	MaxWorkers int // concurrent sampler invocations, <= 0 for one per thread

	ImportancePolicy ImportancePolicy // nil: GoalWeighted
	Smoothing        SmoothingFilter  // nil: centered moving average
	PeakFactor       float64          // 0: spend the whole remaining budget
	DuplicateTol     float64          // merge degeneracy tolerance
}

// RunDynamicNS performs a dynamic nested sampling run: an exploratory run
// with Ninit live points, an importance-driven allocation of additional
// live points within the budget a uniform NliveConst-point run implies,
// one sampler thread per allocation entry, and a merge of everything into
// one combined run written to settings.BaseDir/settings.FileRoot.
//
// Configuration problems surface as ConfigurationError before any sampler
// is invoked. Sampler failures and merge violations abort the run with no
// combined output written. The combined run is also returned for callers
// that consume it in memory.
func RunDynamicNS(ctx context.Context, sampler Sampler, dynamicGoal float64, settings *Settings, opts Options) (*Run, error) {
	if err := checkDynamicGoal(dynamicGoal); err != nil {
		return nil, err
	}
	if opts.Ninit < 1 {
		return nil, newConfigErrorf("ninit must be positive, got %d", opts.Ninit)
	}
	if opts.NliveConst <= opts.Ninit {
		return nil, newConfigErrorf("nlive_const (%d) must exceed ninit (%d)", opts.NliveConst, opts.Ninit)
	}
	if settings == nil {
		settings = NewSettings()
	}
	settings.CheckDynamicSettings()
	key := NewRunKey(settings.Seed)

	logrus.Infof("dynamic nested sampling: goal=%v ninit=%d nlive_const=%d seed=%d",
		dynamicGoal, opts.Ninit, opts.NliveConst, settings.Seed)

	initCfg := NewSamplerConfig(opts.Ninit, key.SeedFor(SubsystemInit), settings.BaseDir, settings.FileRoot+"_init")
	initCfg.NumRepeats = settings.NumRepeats
	initCfg.MaxDead = settings.MaxDead
	initial, err := sampler.Run(ctx, initCfg)
	if err != nil {
		return nil, asInitFailure(err)
	}
	if err := initial.Validate(0); err != nil {
		return nil, err
	}
	if len(initial.Points) == 0 {
		return nil, newMalformedf("initial run produced no dead points")
	}
	logrus.Infof("initial run: %d dead points, logl range [%v, %v]",
		len(initial.Points), initial.Points[0].LogL, initial.MaxLogL())

	planner := &AllocationPlanner{
		Policy:     opts.ImportancePolicy,
		Smoothing:  opts.Smoothing,
		PeakFactor: opts.PeakFactor,
	}
	plan, err := planner.Allocate(initial, dynamicGoal, opts.Ninit, opts.NliveConst)
	if err != nil {
		return nil, err
	}
	logrus.Infof("allocation plan: %d threads, %d extra live points", len(plan.Entries), plan.TotalExtra())

	runner := &DynamicRunner{
		Sampler:    sampler,
		Key:        key,
		BaseDir:    settings.BaseDir,
		FileRoot:   settings.FileRoot,
		NumRepeats: settings.NumRepeats,
		MaxWorkers: opts.MaxWorkers,
	}
	threads, err := runner.RunThreads(ctx, plan)
	if err != nil {
		return nil, err
	}

	merger := &Merger{DuplicateTol: opts.DuplicateTol}
	combined, err := merger.Merge(initial, threads)
	if err != nil {
		return nil, err
	}
	logrus.Infof("combined run: %d dead points from %d threads, log(Z)=%.4f",
		len(combined.Points), combined.NumThreads(), combined.LogZ())

	if err := WriteDeadFile(combined, settings.BaseDir, settings.FileRoot); err != nil {
		return nil, err
	}
	if settings.WriteStats {
		if err := WriteStatsFile(combined, settings.BaseDir, settings.FileRoot); err != nil {
			return nil, err
		}
	}
	if settings.Posteriors {
		if err := WritePosteriorFile(combined, settings.BaseDir, settings.FileRoot); err != nil {
			return nil, err
		}
	}
	return combined, nil
}

func asInitFailure(err error) error {
	var extRun *ExternalRunFailure
	if errors.As(err, &extRun) {
		extRun.Stage = "init"
		extRun.ThreadIndex = -1
		return extRun
	}
	return &ExternalRunFailure{Stage: "init", ThreadIndex: -1, Err: err}
}
