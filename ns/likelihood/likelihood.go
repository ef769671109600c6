// Package likelihood provides the standard test likelihoods used to
// exercise nested sampling runs.
package likelihood

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// Likelihood maps a parameter vector to its log-likelihood.
type Likelihood interface {
	LogL(theta []float64) float64
	Name() string
}

// Gaussian is an isotropic Gaussian likelihood centred on the origin.
type Gaussian struct {
	Sigma float64
}

func (g Gaussian) Name() string { return "gaussian" }

func (g Gaussian) LogL(theta []float64) float64 {
	sigma := g.Sigma
	if sigma == 0 {
		sigma = 1
	}
	r2 := 0.0
	for _, t := range theta {
		r2 += t * t
	}
	dim := float64(len(theta))
	return -r2/(2*sigma*sigma) - math.Log(2*math.Pi*sigma*sigma)*dim/2
}

// GaussianShell peaks on a spherical shell of radius RShell.
type GaussianShell struct {
	Sigma  float64
	RShell float64
}

func (g GaussianShell) Name() string { return "gaussian_shell" }

func (g GaussianShell) LogL(theta []float64) float64 {
	sigma := g.Sigma
	if sigma == 0 {
		sigma = 1
	}
	r2 := 0.0
	for _, t := range theta {
		r2 += t * t
	}
	r := math.Sqrt(r2)
	return -((r - g.RShell) * (r - g.RShell)) / (2 * sigma * sigma)
}

// GaussianMix is a mixture of four Gaussian components of shared width
// placed at (0, +sep), (0, -sep), (+sep, 0), (-sep, 0) in the first two
// dimensions.
type GaussianMix struct {
	Sep     float64   // component separation, default 4
	Weights []float64 // component weights, default 0.4, 0.3, 0.2, 0.1
	Sigma   float64   // shared width, default 1
}

func (g GaussianMix) Name() string { return "gaussian_mix" }

func (g GaussianMix) LogL(theta []float64) float64 {
	sep := g.Sep
	if sep == 0 {
		sep = 4
	}
	sigma := g.Sigma
	if sigma == 0 {
		sigma = 1
	}
	weights := g.Weights
	if len(weights) == 0 {
		weights = []float64{0.4, 0.3, 0.2, 0.1}
	}
	centres := [][2]float64{{0, sep}, {0, -sep}, {sep, 0}, {-sep, 0}}
	norm := distuv.Normal{Mu: 0, Sigma: sigma}
	comps := make([]float64, len(weights))
	for c := range comps {
		lp := math.Log(weights[c])
		for i, t := range theta {
			mu := 0.0
			if i < 2 {
				mu = centres[c][i]
			}
			lp += norm.LogProb(t - mu)
		}
		comps[c] = lp
	}
	return floats.LogSumExp(comps)
}

// LogGammaMix is the standard log-gamma mixture benchmark: the first two
// dimensions mix shifted log-gamma and Gaussian pairs at +/-10, the
// remaining dimensions split between centred log-gamma and Gaussian.
// Requires an even dimension of at least 2.
type LogGammaMix struct{}

func (LogGammaMix) Name() string { return "loggamma_mix" }

func (LogGammaMix) LogL(theta []float64) float64 {
	dim := len(theta)
	norm := distuv.Normal{Mu: 0, Sigma: 1}
	logl := 0.0
	for i, t := range theta {
		switch {
		case i == 0:
			logl += mix2(logGammaLogPDF(t, -10, 1), logGammaLogPDF(t, 10, 1))
		case i == 1:
			logl += mix2(norm.LogProb(t+10), norm.LogProb(t-10))
		case i < 2+(dim-2)/2:
			logl += logGammaLogPDF(t, 0, 1)
		default:
			logl += norm.LogProb(t)
		}
	}
	return logl
}

// logGammaLogPDF is the log density of a unit-shape log-gamma distribution
// with the given location and scale.
func logGammaLogPDF(x, loc, scale float64) float64 {
	y := (x - loc) / scale
	return y - math.Exp(y) - math.Log(scale)
}

func mix2(a, b float64) float64 {
	return floats.LogSumExp([]float64{a, b}) + math.Log(0.5)
}

// Rastrigin is the Rastrigin ("bunch of grapes") likelihood; its global
// maximum of zero sits at the origin.
type Rastrigin struct{}

func (Rastrigin) Name() string { return "rastrigin" }

func (Rastrigin) LogL(theta []float64) float64 {
	f := 10 * float64(len(theta))
	for _, t := range theta {
		f += t*t - 10*math.Cos(2*math.Pi*t)
	}
	return -f
}

// Rosenbrock is the Rosenbrock ("banana") likelihood.
type Rosenbrock struct{}

func (Rosenbrock) Name() string { return "rosenbrock" }

func (Rosenbrock) LogL(theta []float64) float64 {
	f := 0.0
	for i := 0; i+1 < len(theta); i++ {
		a := 1 - theta[i]
		b := theta[i+1] - theta[i]*theta[i]
		f += a*a + 100*b*b
	}
	if len(theta) == 1 {
		a := 1 - theta[0]
		f = a * a
	}
	return -f
}