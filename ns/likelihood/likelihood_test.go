package likelihood

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/stat/distuv"
)

func TestGaussian(t *testing.T) {
	g := Gaussian{Sigma: 2}
	norm := distuv.Normal{Mu: 0, Sigma: 2}

	theta := []float64{0.3, -1.2, 4}
	want := 0.0
	for _, x := range theta {
		want += norm.LogProb(x)
	}
	assert.InDelta(t, want, g.LogL(theta), 1e-12)

	// zero sigma falls back to the unit width
	assert.InDelta(t, Gaussian{Sigma: 1}.LogL(theta), Gaussian{}.LogL(theta), 0)
}

func TestGaussian_PeakAtOrigin(t *testing.T) {
	g := Gaussian{Sigma: 1}
	origin := g.LogL([]float64{0, 0})
	assert.Greater(t, origin, g.LogL([]float64{0.5, 0}))
	assert.Greater(t, origin, g.LogL([]float64{-3, 2}))
}

func TestGaussianShell(t *testing.T) {
	g := GaussianShell{Sigma: 0.5, RShell: 2}
	// maximal anywhere on the shell
	assert.Equal(t, 0.0, g.LogL([]float64{2, 0}))
	assert.Equal(t, 0.0, g.LogL([]float64{0, -2}))
	// one sigma off the shell
	assert.InDelta(t, -0.5, g.LogL([]float64{2.5, 0}), 1e-12)
}

func TestGaussianMix(t *testing.T) {
	g := GaussianMix{}
	// the heaviest component sits at (0, +sep)
	atHeaviest := g.LogL([]float64{0, 4})
	atLightest := g.LogL([]float64{-4, 0})
	assert.Greater(t, atHeaviest, atLightest)

	// far from every centre the mixture is dominated by the nearest
	// component; the log weight difference survives
	assert.InDelta(t, math.Log(0.4)-math.Log(0.1), atHeaviest-atLightest, 1e-9)
}

func TestLogGammaMix(t *testing.T) {
	l := LogGammaMix{}
	v := l.LogL([]float64{-10, 10, 0, 0})
	assert.False(t, math.IsNaN(v))
	assert.False(t, math.IsInf(v, 0))

	// symmetric under swapping the two modes of the first two dimensions
	assert.InDelta(t, l.LogL([]float64{-10, -10}), l.LogL([]float64{10, 10}), 1e-6)
}

func TestRastrigin(t *testing.T) {
	r := Rastrigin{}
	assert.InDelta(t, 0, r.LogL([]float64{0, 0}), 1e-12)
	// local maxima near integer grid points stay below the global one
	assert.Less(t, r.LogL([]float64{1, 1}), 0.0)
	assert.Less(t, r.LogL([]float64{0.5, 0}), r.LogL([]float64{0, 0}))
}

func TestRosenbrock(t *testing.T) {
	r := Rosenbrock{}
	assert.InDelta(t, -1, r.LogL([]float64{0, 0}), 1e-12)
	assert.InDelta(t, 0, r.LogL([]float64{1, 1}), 1e-12)
	assert.InDelta(t, 0, r.LogL([]float64{1}), 1e-12)
	assert.Greater(t, r.LogL([]float64{1, 1}), r.LogL([]float64{2, 1}))
}

func TestNames(t *testing.T) {
	for _, tt := range []struct {
		l    Likelihood
		want string
	}{
		{Gaussian{}, "gaussian"},
		{GaussianShell{}, "gaussian_shell"},
		{GaussianMix{}, "gaussian_mix"},
		{LogGammaMix{}, "loggamma_mix"},
		{Rastrigin{}, "rastrigin"},
		{Rosenbrock{}, "rosenbrock"},
	} {
		assert.Equal(t, tt.want, tt.l.Name())
	}
}
