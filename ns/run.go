package ns

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// DeadPoint is a sample removed from the live-point set during nested
// sampling, permanently recorded with its log-likelihood. Immutable once
// produced.
type DeadPoint struct {
	Theta       []float64 // parameter vector, length NDim
	LogL        float64
	ThreadLabel int // index into the owning Run's ThreadMinMax
}

// Run is an in-memory nested sampling run: dead points ordered
// non-decreasing in LogL (ties broken by insertion order) plus the number
// of live points present immediately before each dead point was removed.
//
// ThreadMinMax records, per thread label, the log-likelihood the thread
// started from (math.Inf(-1) for threads sampled from the whole prior) and
// the highest log-likelihood it reached.
type Run struct {
	NDim         int
	Points       []DeadPoint
	NLive        []int
	ThreadMinMax [][2]float64
}

// NumThreads returns the number of threads contributing to the run.
func (r *Run) NumThreads() int {
	return len(r.ThreadMinMax)
}

// MinLogL returns the lowest starting threshold over all threads, i.e. the
// likelihood contour the run as a whole became active at.
func (r *Run) MinLogL() float64 {
	min := math.Inf(1)
	for _, mm := range r.ThreadMinMax {
		if mm[0] < min {
			min = mm[0]
		}
	}
	if math.IsInf(min, 1) {
		return math.Inf(-1)
	}
	return min
}

// MaxLogL returns the highest log-likelihood in the run, or -Inf for an
// empty run.
func (r *Run) MaxLogL() float64 {
	if len(r.Points) == 0 {
		return math.Inf(-1)
	}
	return r.Points[len(r.Points)-1].LogL
}

// LogLs returns the dead point log-likelihoods as a slice.
func (r *Run) LogLs() []float64 {
	out := make([]float64, len(r.Points))
	for i, p := range r.Points {
		out[i] = p.LogL
	}
	return out
}

// LogX estimates the log of the enclosed prior volume remaining at each
// dead point using the standard expectation E[log X_i] = -sum_{j<=i} 1/n_j.
func (r *Run) LogX() []float64 {
	logx := make([]float64, len(r.Points))
	acc := 0.0
	for i := range r.Points {
		acc -= 1.0 / float64(r.NLive[i])
		logx[i] = acc
	}
	return logx
}

// LogW returns the log of each dead point's contribution to the evidence
// integral: log-likelihood plus the log prior-volume shell width, with the
// shell widths estimated by the trapezium rule.
func (r *Run) LogW() []float64 {
	n := len(r.Points)
	logx := r.LogX()
	logw := make([]float64, n)
	switch n {
	case 0:
		return logw
	case 1:
		logw[0] = r.Points[0].LogL + logSubtract(0, logx[0])
		return logw
	}
	// interior shells span (X_{i-1} - X_{i+1}) / 2
	for i := 1; i < n-1; i++ {
		logw[i] = logSubtract(logx[i-1], logx[i+1]) - math.Ln2
	}
	logw[0] = logSubtract(0, logx[1]) - math.Ln2
	logw[n-1] = logSubtract(logx[n-2], logx[n-1]) - math.Ln2
	for i := range logw {
		logw[i] += r.Points[i].LogL
	}
	return logw
}

// LogZ estimates the log evidence of the run.
func (r *Run) LogZ() float64 {
	if len(r.Points) == 0 {
		return math.Inf(-1)
	}
	return floats.LogSumExp(r.LogW())
}

// PosteriorWeights returns the normalized posterior weight of each dead
// point. The weights sum to 1.
func (r *Run) PosteriorWeights() []float64 {
	logw := r.LogW()
	logz := floats.LogSumExp(logw)
	w := make([]float64, len(logw))
	for i, lw := range logw {
		w[i] = math.Exp(lw - logz)
	}
	return w
}

// ParamMean returns the posterior mean of parameter dim.
func (r *Run) ParamMean(dim int) float64 {
	w := r.PosteriorWeights()
	mean := 0.0
	for i, p := range r.Points {
		mean += w[i] * p.Theta[dim]
	}
	return mean
}

// Validate checks the Run invariants. Log-likelihood decreases larger than
// tol are reported; exact ties are always allowed (they are resolved by
// stable ordering).
func (r *Run) Validate(tol float64) error {
	if len(r.Points) != len(r.NLive) {
		return newMalformedf("length mismatch: %d dead points but %d live counts",
			len(r.Points), len(r.NLive))
	}
	prev := math.Inf(-1)
	for i, p := range r.Points {
		if len(p.Theta) != r.NDim {
			return newMalformedf("point %d has %d parameters, want %d", i, len(p.Theta), r.NDim)
		}
		if math.IsNaN(p.LogL) {
			return newMalformedf("point %d has NaN log-likelihood", i)
		}
		if p.LogL < prev-tol {
			return newMalformedf("log-likelihood not ordered at point %d: %v < %v", i, p.LogL, prev)
		}
		if p.LogL > prev {
			prev = p.LogL
		}
		if r.NLive[i] < 1 {
			return newMalformedf("live count %d at point %d", r.NLive[i], i)
		}
		if p.ThreadLabel < 0 || p.ThreadLabel >= len(r.ThreadMinMax) {
			return newMalformedf("point %d has unknown thread label %d", i, p.ThreadLabel)
		}
	}
	return nil
}

// logSubtract computes log(exp(a) - exp(b)) for a >= b.
func logSubtract(a, b float64) float64 {
	if b >= a {
		return math.Inf(-1)
	}
	return a + math.Log1p(-math.Exp(b-a))
}
