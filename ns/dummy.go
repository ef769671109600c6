package ns

import (
	"context"
	"math"
	"math/rand"
	"sort"
)

// DummySampler synthesizes nested sampling output without running a real
// sampler: each live point becomes a chain of NSample dead points with
// likelihoods drawn uniformly above the start threshold. Deterministic
// given the config seed. Useful for tests and smoke runs of the dynamic
// machinery.
type DummySampler struct {
	NDim      int
	NSample   int     // dead points per thread, default 10
	LogLRange float64 // likelihood span per invocation, default 10
}

func (d *DummySampler) Run(ctx context.Context, cfg SamplerConfig) (*Run, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	nsample := d.NSample
	if nsample <= 0 {
		nsample = 10
	}
	logLRange := d.LogLRange
	if logLRange <= 0 {
		logLRange = 10
	}
	base := cfg.StartThreshold
	if math.IsInf(base, -1) {
		base = 0
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	type born struct {
		point DeadPoint
		birth float64
	}
	var chain []born
	for t := 0; t < cfg.NLive; t++ {
		logls := make([]float64, nsample)
		for i := range logls {
			logls[i] = base + rng.Float64()*logLRange
		}
		sort.Float64s(logls)
		prev := cfg.StartThreshold
		for _, l := range logls {
			theta := make([]float64, d.NDim)
			for j := range theta {
				theta[j] = rng.Float64()
			}
			chain = append(chain, born{DeadPoint{Theta: theta, LogL: l, ThreadLabel: t}, prev})
			prev = l
		}
	}
	sort.SliceStable(chain, func(a, b int) bool { return chain[a].point.LogL < chain[b].point.LogL })
	if cfg.MaxDead > 0 && len(chain) > cfg.MaxDead {
		chain = chain[:cfg.MaxDead]
	}
	points := make([]DeadPoint, len(chain))
	births := make([]float64, len(chain))
	for i, c := range chain {
		points[i] = c.point
		births[i] = c.birth
	}
	return RunFromDeadPoints(d.NDim, points, births)
}
