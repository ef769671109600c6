package ns

import (
	"math"
)

// makeRun builds a valid single-threaded-per-label run for tests: logls must
// be ascending, nlive positive, labels within the given thread count.
func makeRun(ndim int, logls []float64, nlive []int, labels []int, threadMinMax [][2]float64) *Run {
	run := &Run{NDim: ndim, NLive: nlive, ThreadMinMax: threadMinMax}
	for i, l := range logls {
		theta := make([]float64, ndim)
		for j := range theta {
			theta[j] = l + float64(i)/1000 + float64(j)
		}
		run.Points = append(run.Points, DeadPoint{Theta: theta, LogL: l, ThreadLabel: labels[i]})
	}
	return run
}

// makeUniformRun builds a run with a constant live point count, likelihoods
// 0, 1, ..., n-1 and all points on a single pair of threads from the prior.
func makeUniformRun(ndim, n, nlive int) *Run {
	logls := make([]float64, n)
	nlives := make([]int, n)
	labels := make([]int, n)
	for i := range logls {
		logls[i] = float64(i)
		nlives[i] = nlive
		labels[i] = i % 2
	}
	mm := [][2]float64{
		{math.Inf(-1), logls[n-1]},
		{math.Inf(-1), logls[n-1]},
	}
	return makeRun(ndim, logls, nlives, labels, mm)
}
