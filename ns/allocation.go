package ns

import (
	"math"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
)

// PlanEntry asks for NLive additional live points sampled from the
// likelihood contour LogLMin upward. LogLMin is math.Inf(-1) for points
// needed from the start of the prior.
type PlanEntry struct {
	LogLMin float64
	NLive   int
}

// AllocationPlan is the ordered set of sampler invocations needed to
// realize a target live-point profile on top of the initial run. Entries
// are non-decreasing in LogLMin.
type AllocationPlan struct {
	Entries []PlanEntry

	// Diagnostics, aligned with the initial run's dead points.
	Importance            []float64 // normalized importance profile
	TargetExtra           []int     // planned extra live points per contour
	TargetExtraUnsmoothed []int
	ScaledBy              float64 // < 1 when the budget forced a scale-down
}

// TotalExtra returns the summed live point counts over all entries.
func (p *AllocationPlan) TotalExtra() int {
	total := 0
	for _, e := range p.Entries {
		total += e.NLive
	}
	return total
}

// SmoothingFilter smooths a target live-point allocation before it is
// quantized into plan entries. It must return a slice of the same length.
type SmoothingFilter func([]float64) []float64

// MovingAverage returns a centered box smoothing filter of the given
// half-width.
func MovingAverage(halfWidth int) SmoothingFilter {
	return func(xs []float64) []float64 {
		out := make([]float64, len(xs))
		for i := range xs {
			lo, hi := i-halfWidth, i+halfWidth
			if lo < 0 {
				lo = 0
			}
			if hi > len(xs)-1 {
				hi = len(xs) - 1
			}
			out[i] = floats.Sum(xs[lo:hi+1]) / float64(hi-lo+1)
		}
		return out
	}
}

// AllocationPlanner converts an importance profile plus a computational
// budget into an AllocationPlan.
//
// The live-point budget is the one a non-dynamic run with NliveConst live
// points would spend over the initial run's sampled prior volume, minus
// what the initial run already spent. PeakFactor == 0 (the default)
// normalizes the profile peak to the largest affordable live point count;
// PeakFactor > 0 pins the peak to PeakFactor*NliveConst instead and scales
// the whole profile down proportionally if that overruns the budget.
type AllocationPlanner struct {
	Policy     ImportancePolicy
	Smoothing  SmoothingFilter
	PeakFactor float64
}

// Allocate builds the plan for adding live points to run, an exploratory
// run made with ninit live points, targeting the cost of a uniform
// nliveConst-point run.
func (pl *AllocationPlanner) Allocate(run *Run, dynamicGoal float64, ninit, nliveConst int) (*AllocationPlan, error) {
	if ninit < 1 {
		return nil, newConfigErrorf("ninit must be positive, got %d", ninit)
	}
	if nliveConst < 1 {
		return nil, newConfigErrorf("nlive_const must be positive, got %d", nliveConst)
	}
	if nliveConst <= ninit {
		return nil, newConfigErrorf("nlive_const (%d) must exceed ninit (%d): the initial run already spends the whole budget", nliveConst, ninit)
	}
	policy := pl.Policy
	if policy == nil {
		policy = GoalWeighted{}
	}
	imp, err := policy.Importance(run, dynamicGoal)
	if err != nil {
		return nil, err
	}

	smoothing := pl.Smoothing
	if smoothing == nil {
		smoothing = MovingAverage(defaultSmoothingHalfWidth(ninit, len(imp)))
	}
	smoothed := smoothing(imp)
	if len(smoothed) != len(imp) {
		return nil, newConfigErrorf("smoothing filter changed profile length from %d to %d", len(imp), len(smoothed))
	}
	// Smoothing must not shift the allocation off the evidence-weighted
	// shape: for dynamic_goal=0 the profile is non-increasing, and a filter
	// that breaks that would allocate points above contours that do not
	// need them.
	if dynamicGoal == 0 && !nonIncreasing(smoothed, 1e-12) {
		logrus.Warn("smoothing filter introduced convexity in the evidence allocation; using unsmoothed importance")
		smoothed = imp
	}

	frac := append([]float64(nil), smoothed...)
	floats.Scale(1/floats.Max(frac), frac)

	// dx[i] approximates the prior-volume cost of holding one extra live
	// point across contour i: the expected log-volume shrinkage there.
	logx := run.LogX()
	dx := make([]float64, len(logx))
	prev := 0.0
	for i, lx := range logx {
		dx[i] = prev - lx
		prev = lx
	}
	budget := float64(nliveConst-ninit) * -logx[len(logx)-1]

	costOf := func(peak float64) float64 {
		cost := 0.0
		for i, f := range frac {
			if extra := f*peak - float64(ninit); extra > 0 {
				cost += extra * dx[i]
			}
		}
		return cost
	}

	plan := &AllocationPlan{Importance: imp, ScaledBy: 1}
	var extras []float64
	if pl.PeakFactor > 0 {
		peak := pl.PeakFactor * float64(nliveConst)
		extras = extrasFor(frac, peak, ninit)
		if cost := costOf(peak); cost > budget {
			scale := budget / cost
			floats.Scale(scale, extras)
			plan.ScaledBy = scale
			logrus.Warnf("allocation budget exhausted: scaling extra live points by %.3f to stay within the nlive_const=%d budget", scale, nliveConst)
		}
	} else {
		extras = extrasFor(frac, solvePeak(costOf, budget, ninit), ninit)
	}

	plan.TargetExtra = roundAll(extras)
	plan.TargetExtraUnsmoothed = plan.TargetExtra
	if !sameSlice(smoothed, imp) {
		fracU := append([]float64(nil), imp...)
		floats.Scale(1/floats.Max(fracU), fracU)
		peakU := solvePeak(func(p float64) float64 {
			c := 0.0
			for i, f := range fracU {
				if extra := f*p - float64(ninit); extra > 0 {
					c += extra * dx[i]
				}
			}
			return c
		}, budget, ninit)
		plan.TargetExtraUnsmoothed = roundAll(extrasFor(fracU, peakU, ninit))
	}

	plan.Entries = entriesFromExtras(run, plan.TargetExtra)
	return plan, nil
}

// entriesFromExtras converts a per-contour extra live point profile into
// the minimal ordered set of (threshold, count) entries: one entry per
// positive step in the profile. Decreasing steps need no entry because a
// thread stops contributing once it passes its own termination contour.
func entriesFromExtras(run *Run, extras []int) []PlanEntry {
	var entries []PlanEntry
	prev := 0
	for i, e := range extras {
		if e > prev {
			thr := math.Inf(-1)
			if i > 0 {
				thr = run.Points[i-1].LogL
			}
			entries = append(entries, PlanEntry{LogLMin: thr, NLive: e - prev})
		}
		prev = e
	}
	return entries
}

// solvePeak finds the peak live point count whose implied cost matches the
// budget, by bisection. costOf is continuous and non-decreasing in the
// peak, zero at peak <= ninit.
func solvePeak(costOf func(float64) float64, budget float64, ninit int) float64 {
	lo := float64(ninit)
	hi := lo + 1
	for costOf(hi) < budget {
		hi *= 2
		if hi > 1e12 {
			break
		}
	}
	for i := 0; i < 100; i++ {
		mid := (lo + hi) / 2
		if costOf(mid) < budget {
			lo = mid
		} else {
			hi = mid
		}
	}
	return lo
}

func extrasFor(frac []float64, peak float64, ninit int) []float64 {
	extras := make([]float64, len(frac))
	for i, f := range frac {
		if e := f*peak - float64(ninit); e > 0 {
			extras[i] = e
		}
	}
	return extras
}

func defaultSmoothingHalfWidth(ninit, n int) int {
	hw := ninit / 2
	if hw > n/4 {
		hw = n / 4
	}
	if hw < 1 {
		hw = 1
	}
	return hw
}

func nonIncreasing(xs []float64, tol float64) bool {
	for i := 1; i < len(xs); i++ {
		if xs[i] > xs[i-1]+tol {
			return false
		}
	}
	return true
}

func roundAll(xs []float64) []int {
	out := make([]int, len(xs))
	for i, x := range xs {
		out[i] = int(math.Round(x))
	}
	return out
}

func sameSlice(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
