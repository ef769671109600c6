package ns

import (
	"context"
	"math"
)

// SamplerConfig parameterizes one sampler invocation. The likelihood and
// prior are opaque to this package: concrete Sampler implementations carry
// them (a compiled executable bakes them in, the dummy sampler synthesizes
// them).
type SamplerConfig struct {
	NLive          int
	NumRepeats     int
	Seed           int64
	BaseDir        string
	FileRoot       string
	StartThreshold float64         // math.Inf(-1): sample from the whole prior
	MaxDead        int             // <= 0: run to natural termination
	Nlives         map[float64]int // optional varying live point schedule
}

// NewSamplerConfig returns a config with no start threshold and no dead
// point cap.
func NewSamplerConfig(nlive int, seed int64, baseDir, fileRoot string) SamplerConfig {
	return SamplerConfig{
		NLive:          nlive,
		Seed:           seed,
		BaseDir:        baseDir,
		FileRoot:       fileRoot,
		StartThreshold: math.Inf(-1),
		MaxDead:        -1,
	}
}

// Sampler is the external nested sampling capability: given a live point
// count and a starting likelihood threshold it produces a sequence of dead
// points. Implementations must honor ctx cancellation and report abnormal
// termination as an ExternalRunFailure.
//
// A start threshold at or above the likelihood maximum is not an error:
// the sampler returns a run with zero dead points.
type Sampler interface {
	Run(ctx context.Context, cfg SamplerConfig) (*Run, error)
}
