package ns

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// ImportancePolicy maps an exploratory run and a dynamic goal to a
// non-negative importance weight per dead point. Implementations must
// return weights summing to 1, aligned one-to-one with run.Points.
//
// dynamicGoal trades off evidence accuracy (0) against parameter
// estimation accuracy (1); values outside [0, 1] are a ConfigurationError.
type ImportancePolicy interface {
	Importance(run *Run, dynamicGoal float64) ([]float64, error)
}

// GoalWeighted is the default ImportancePolicy. The parameter term is each
// point's relative posterior mass; the evidence term is the evidence
// remaining beyond each point divided by the local live point count. The
// two terms are individually normalized and combined as a convex mixture
// so profiles are comparable across goals.
type GoalWeighted struct{}

func (GoalWeighted) Importance(run *Run, dynamicGoal float64) ([]float64, error) {
	if err := checkDynamicGoal(dynamicGoal); err != nil {
		return nil, err
	}
	n := len(run.Points)
	if n == 0 {
		return nil, newMalformedf("cannot compute importance of an empty run")
	}
	if n == 1 {
		return []float64{1}, nil
	}

	logx := run.LogX()
	logw := make([]float64, n)
	for i := range logw {
		logw[i] = logx[i] + run.Points[i].LogL
	}
	wMax := floats.Max(logw)
	wRel := make([]float64, n)
	for i := range wRel {
		wRel[i] = math.Exp(logw[i] - wMax)
	}

	var imp []float64
	switch {
	case dynamicGoal == 0:
		imp = zImportance(wRel, run.NLive)
	case dynamicGoal == 1:
		imp = append([]float64(nil), wRel...)
	default:
		impZ := zImportance(wRel, run.NLive)
		impP := wRel
		sumZ, sumP := floats.Sum(impZ), floats.Sum(impP)
		imp = make([]float64, n)
		for i := range imp {
			imp[i] = (1-dynamicGoal)*impZ[i]/sumZ + dynamicGoal*impP[i]/sumP
		}
	}

	total := floats.Sum(imp)
	if total <= 0 {
		return nil, newMalformedf("importance profile sums to %v", total)
	}
	floats.Scale(1/total, imp)
	return imp, nil
}

// zImportance is the importance of each point for the evidence estimate:
// the evidence mass remaining past the point, divided by the live point
// count there, rescaled to a maximum of 1. Low-likelihood (early) points
// score highest.
func zImportance(w []float64, nlive []int) []float64 {
	imp := make([]float64, len(w))
	floats.CumSum(imp, w)
	total := imp[len(imp)-1]
	for i := range imp {
		imp[i] = (total - imp[i]) / float64(nlive[i])
	}
	if max := floats.Max(imp); max > 0 {
		floats.Scale(1/max, imp)
	}
	return imp
}

// SampleImportance computes the importance profile of run under the
// default GoalWeighted policy.
func SampleImportance(run *Run, dynamicGoal float64) ([]float64, error) {
	return GoalWeighted{}.Importance(run, dynamicGoal)
}

func checkDynamicGoal(goal float64) error {
	if math.IsNaN(goal) || goal < 0 || goal > 1 {
		return newConfigErrorf("dynamic goal must be in [0, 1], got %v", goal)
	}
	return nil
}
