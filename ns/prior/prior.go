// Package prior provides the prior transforms used with nested sampling:
// each maps a unit hypercube sample to the physical parameter space.
package prior

import "math"

// Prior maps a point in the unit hypercube to parameter space. Transform
// must not modify cube.
type Prior interface {
	Transform(cube []float64) []float64
}

// ForcedIdentifiability maps a unit cube to a sorted unit cube: the output
// is uniformly distributed over ordered coordinates. Computed with the
// recursive form theta_{n-1} = x_{n-1}^{1/n}, theta_i = x_i^{1/(i+1)} *
// theta_{i+1}.
func ForcedIdentifiability(cube []float64) []float64 {
	n := len(cube)
	theta := make([]float64, n)
	if n == 0 {
		return theta
	}
	theta[n-1] = math.Pow(cube[n-1], 1/float64(n))
	for i := n - 2; i >= 0; i-- {
		theta[i] = math.Pow(cube[i], 1/float64(i+1)) * theta[i+1]
	}
	return theta
}

// base holds the sorting and adaptive behavior shared by all priors.
//
// With Sort, the hypercube is passed through the forced identifiability
// transform, so the physical parameters come out ordered. With Adaptive,
// the first cube coordinate selects how many of the remaining parameters
// are active and only that many are sorted; NaN in the selector propagates
// NaN to every output.
type base struct {
	Sort     bool
	Adaptive bool
}

func (b base) cubeTransform(cube []float64) []float64 {
	if b.Adaptive {
		return b.adaptiveTransform(cube)
	}
	if b.Sort {
		return ForcedIdentifiability(cube)
	}
	return append([]float64(nil), cube...)
}

func (b base) adaptiveTransform(cube []float64) []float64 {
	out := append([]float64(nil), cube...)
	if len(out) == 0 {
		return out
	}
	if math.IsNaN(out[0]) {
		for i := range out {
			out[i] = math.NaN()
		}
		return out
	}
	// map the selector onto [0.5, nfuncMax + 0.5] and round
	out[0] = 0.5 + out[0]*float64(len(out)-1)
	nfunc := int(math.Round(out[0]))
	if b.Sort && nfunc >= 1 && 1+nfunc <= len(out) {
		sorted := ForcedIdentifiability(out[1 : 1+nfunc])
		copy(out[1:1+nfunc], sorted)
	}
	return out
}

// Uniform is a uniform prior on [Min, Max] in every dimension.
type Uniform struct {
	Min, Max float64
	Sort     bool
	Adaptive bool
}

func (u Uniform) Transform(cube []float64) []float64 {
	out := base{Sort: u.Sort, Adaptive: u.Adaptive}.cubeTransform(cube)
	start := 0
	if u.Adaptive {
		start = 1 // the selector coordinate stays untransformed
	}
	for i := start; i < len(out); i++ {
		out[i] = u.Min + out[i]*(u.Max-u.Min)
	}
	return out
}

// Gaussian is a spherically symmetric Gaussian prior centred on Mu with
// standard deviation Sigma. With Half, parameters are restricted to values
// above Mu.
type Gaussian struct {
	Sigma    float64
	Mu       float64
	Half     bool
	Sort     bool
	Adaptive bool
}

func (g Gaussian) Transform(cube []float64) []float64 {
	out := base{Sort: g.Sort, Adaptive: g.Adaptive}.cubeTransform(cube)
	start := 0
	if g.Adaptive {
		start = 1
	}
	for i := start; i < len(out); i++ {
		if g.Half {
			out[i] = g.Mu + math.Erfinv(out[i])*g.Sigma*math.Sqrt2
		} else {
			out[i] = g.Mu + math.Erfinv(2*out[i]-1)*g.Sigma*math.Sqrt2
		}
	}
	return out
}

// Exponential is an exponential prior with rate Lambda.
type Exponential struct {
	Lambda   float64
	Sort     bool
	Adaptive bool
}

func (e Exponential) Transform(cube []float64) []float64 {
	out := base{Sort: e.Sort, Adaptive: e.Adaptive}.cubeTransform(cube)
	start := 0
	if e.Adaptive {
		start = 1
	}
	for i := start; i < len(out); i++ {
		out[i] = -math.Log1p(-out[i]) / e.Lambda
	}
	return out
}

// PowerUniform distributes theta so that theta^(1/Power) is uniform on the
// interval implied by [Min, Max]. For negative powers the hypercube is
// inverted so theta still increases with the cube coordinate.
type PowerUniform struct {
	Min, Max float64
	Power    float64
}

func (p PowerUniform) Transform(cube []float64) []float64 {
	umin := math.Min(math.Pow(p.Min, 1/p.Power), math.Pow(p.Max, 1/p.Power))
	umax := math.Max(math.Pow(p.Min, 1/p.Power), math.Pow(p.Max, 1/p.Power))
	out := make([]float64, len(cube))
	for i, c := range cube {
		if p.Power < 0 {
			c = 1 - c
		}
		out[i] = math.Pow(umin+c*(umax-umin), p.Power)
	}
	return out
}

// Block applies a different prior to each contiguous block of parameters.
type Block struct {
	Priors []Prior
	Sizes  []int
}

func (b Block) Transform(cube []float64) []float64 {
	out := make([]float64, 0, len(cube))
	start := 0
	for i, p := range b.Priors {
		end := start + b.Sizes[i]
		out = append(out, p.Transform(cube[start:end])...)
		start = end
	}
	return out
}
