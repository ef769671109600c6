package ns

import (
	"math"
	"sort"

	"github.com/sirupsen/logrus"
)

// Merger combines nested sampling runs into one statistically valid run.
// DuplicateTol is the per-coordinate tolerance below which two parameter
// vectors at (near-)equal likelihood count as the same sample; finding one
// indicates sampler degeneracy and fails the merge.
type Merger struct {
	DuplicateTol float64
}

// MergeRuns combines the initial run and all thread runs with the default
// degeneracy tolerance (exact duplicates only).
func MergeRuns(initial *Run, threads []*Run) (*Run, error) {
	return (&Merger{}).Merge(initial, threads)
}

type taggedPoint struct {
	DeadPoint
	source int // 0 = initial, 1+i = thread i
}

// Merge takes the union of dead points across the initial run and every
// thread run, orders it by log-likelihood (stable tie-break: initial before
// threads, then thread index, then original order), and reconstructs the
// live point count at each position as the sum over all contributing runs
// active at that likelihood. A thread contributes only between its starting
// contour (exclusive) and its own maximum (inclusive).
//
// The result is deterministic in the identity of the threads, not their
// arrival order: merging any permutation of the same runs yields the same
// points, likelihoods and live counts. Thread labels are the exception;
// they are renumbered in argument order (initial run first, then each
// thread run), so a permuted call relabels the same threads.
func (m *Merger) Merge(initial *Run, threads []*Run) (*Run, error) {
	runs := append([]*Run{initial}, threads...)
	total := 0
	for i, r := range runs {
		if r == nil {
			return nil, newMalformedf("run %d is missing", i)
		}
		if r.NDim != initial.NDim {
			return nil, newMalformedf("dimension mismatch: run %d has ndim %d, initial has %d",
				i, r.NDim, initial.NDim)
		}
		total += len(r.Points)
	}

	// Relabel threads so labels are unique across the combined run.
	combined := &Run{NDim: initial.NDim, Points: make([]DeadPoint, 0, total)}
	offsets := make([]int, len(runs))
	for i, r := range runs {
		offsets[i] = len(combined.ThreadMinMax)
		combined.ThreadMinMax = append(combined.ThreadMinMax, r.ThreadMinMax...)
	}

	points := make([]taggedPoint, 0, total)
	for i, r := range runs {
		for _, p := range r.Points {
			q := p
			q.ThreadLabel += offsets[i]
			points = append(points, taggedPoint{DeadPoint: q, source: i})
		}
	}
	sort.SliceStable(points, func(a, b int) bool {
		return points[a].LogL < points[b].LogL
	})

	combined.NLive = make([]int, len(points))
	for k, p := range points {
		combined.Points = append(combined.Points, p.DeadPoint)
		nlive := 0
		for _, r := range runs {
			nlive += liveCountAt(r, p.LogL)
		}
		if nlive < 1 {
			return nil, newMalformedf("reconstructed live count %d at logl %v", nlive, p.LogL)
		}
		combined.NLive[k] = nlive
	}

	if err := m.checkDegenerate(combined); err != nil {
		return nil, err
	}
	if err := combined.Validate(0); err != nil {
		return nil, err
	}
	return combined, nil
}

// liveCountAt returns run r's live point count at likelihood contour l:
// its recorded count at the first dead point with logl >= l, zero once l
// passes the run's maximum or while l is at or below the run's starting
// threshold.
func liveCountAt(r *Run, l float64) int {
	n := len(r.Points)
	if n == 0 || l > r.Points[n-1].LogL || l <= r.MinLogL() {
		return 0
	}
	j := sort.Search(n, func(i int) bool { return r.Points[i].LogL >= l })
	if j == n {
		return 0
	}
	return r.NLive[j]
}

// checkDegenerate scans likelihood tie groups for parameter vectors that
// coincide within the tolerance. Distinct samples land on the same theta
// with probability zero, so a coincidence means a sampler re-emitted a
// point (e.g. two threads resumed from the same state).
func (m *Merger) checkDegenerate(run *Run) error {
	for i := 1; i < len(run.Points); i++ {
		for j := i - 1; j >= 0; j-- {
			if run.Points[i].LogL-run.Points[j].LogL > m.DuplicateTol {
				break
			}
			if thetaEqual(run.Points[i].Theta, run.Points[j].Theta, m.DuplicateTol) {
				return newMalformedf("duplicate sample at logl %v: threads %d and %d produced identical parameters",
					run.Points[i].LogL, run.Points[j].ThreadLabel, run.Points[i].ThreadLabel)
			}
		}
	}
	return nil
}

func thetaEqual(a, b []float64, tol float64) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) > tol {
			return false
		}
	}
	return true
}

// CombineResumedRun merges an initial run with a dynamic run that resumed
// from the initial run's state after resumeNDead dead points. The two runs
// share those dead points plus the live points present at the resume, so
// the shared samples are counted once and the dynamic run's threads are
// stitched onto the initial threads they continued.
//
// A live point at the resume that does not appear in both runs indicates
// the runs diverged before the resume; this is reported as a warning and
// the combination proceeds with the points actually shared.
func CombineResumedRun(initial, dyn *Run, resumeNDead int) (*Run, error) {
	if resumeNDead < 0 || resumeNDead > len(initial.Points) || resumeNDead > len(dyn.Points) {
		return nil, newConfigErrorf("resume point %d outside both runs", resumeNDead)
	}
	for i := 0; i < resumeNDead; i++ {
		if initial.Points[i].LogL != dyn.Points[i].LogL {
			return nil, newMalformedf("runs disagree on shared dead point %d: %v != %v",
				i, initial.Points[i].LogL, dyn.Points[i].LogL)
		}
	}
	resumeLogL := math.Inf(-1)
	if resumeNDead > 0 {
		resumeLogL = initial.Points[resumeNDead-1].LogL
	}

	dynHas := make(map[float64]bool, len(dyn.Points))
	for _, p := range dyn.Points {
		dynHas[p.LogL] = true
	}
	initHas := make(map[float64]bool, len(initial.Points))
	for _, p := range initial.Points {
		initHas[p.LogL] = true
	}

	// Live points at the resume: initial points past the shared prefix that
	// the dynamic run also recorded.
	inherited := make(map[float64]int) // logl -> initial thread label
	for _, p := range initial.Points[resumeNDead:] {
		if dynHas[p.LogL] {
			inherited[p.LogL] = p.ThreadLabel
		}
	}
	if resumeNDead < len(initial.NLive) && len(inherited) != initial.NLive[resumeNDead] {
		logrus.Warnf("resumed run combination: %d of the %d live points at the resume are present in both runs",
			len(inherited), initial.NLive[resumeNDead])
	}

	combined := &Run{NDim: initial.NDim}
	combined.ThreadMinMax = append(combined.ThreadMinMax, initial.ThreadMinMax...)

	// The dynamic run continues each inherited live point in its own
	// thread; the initial run's continuation of that same point becomes a
	// separate thread born at the inherited point's contour.
	dynThreadLabel := make([]int, dyn.NumThreads())
	for t := range dynThreadLabel {
		dynThreadLabel[t] = -1
	}
	for _, p := range dyn.Points {
		if lbl, ok := inherited[p.LogL]; ok {
			dynThreadLabel[p.ThreadLabel] = lbl
		}
	}
	for t, lbl := range dynThreadLabel {
		if lbl < 0 {
			dynThreadLabel[t] = len(combined.ThreadMinMax)
			combined.ThreadMinMax = append(combined.ThreadMinMax, dyn.ThreadMinMax[t])
		}
	}
	initLabel := make([]int, len(initial.Points))
	splitLabel := make(map[int]int) // initial thread -> its post-split label
	for i, p := range initial.Points {
		initLabel[i] = p.ThreadLabel
		if lbl, ok := inherited[p.LogL]; ok && lbl == p.ThreadLabel {
			// later points of this thread belong to the split-off
			// continuation
			splitLabel[p.ThreadLabel] = -1
		} else if split, ok := splitLabel[p.ThreadLabel]; ok {
			if split == -1 {
				split = len(combined.ThreadMinMax)
				combined.ThreadMinMax = append(combined.ThreadMinMax,
					[2]float64{resumeLogL, initial.ThreadMinMax[p.ThreadLabel][1]})
				splitLabel[p.ThreadLabel] = split
			}
			initLabel[i] = split
		}
	}

	type srcPoint struct {
		DeadPoint
		src int
	}
	var points []srcPoint
	for i, p := range initial.Points {
		q := p
		q.ThreadLabel = initLabel[i]
		points = append(points, srcPoint{q, 0})
	}
	for _, p := range dyn.Points {
		if initHas[p.LogL] {
			continue // shared sample, already counted from the initial run
		}
		q := p
		q.ThreadLabel = dynThreadLabel[p.ThreadLabel]
		points = append(points, srcPoint{q, 1})
	}
	sort.SliceStable(points, func(a, b int) bool { return points[a].LogL < points[b].LogL })

	combined.NLive = make([]int, len(points))
	for k, p := range points {
		combined.Points = append(combined.Points, p.DeadPoint)
		nlive := liveCountAt(initial, p.LogL)
		if p.LogL > resumeLogL {
			// The dynamic run's live set includes the inherited points;
			// count only its genuinely extra contribution.
			stillInherited := 0
			for logl := range inherited {
				if logl >= p.LogL {
					stillInherited++
				}
			}
			if extra := liveCountAt(dyn, p.LogL) - stillInherited; extra > 0 {
				nlive += extra
			}
		}
		if nlive < 1 {
			return nil, newMalformedf("reconstructed live count %d at logl %v", nlive, p.LogL)
		}
		combined.NLive[k] = nlive
	}
	return combined, combined.Validate(0)
}
