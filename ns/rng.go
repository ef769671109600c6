package ns

import (
	"fmt"
	"hash/fnv"
)

// RunKey uniquely identifies a reproducible dynamic run. Two runs with the
// same RunKey and identical configuration MUST dispatch identically seeded
// sampler invocations, independent of execution concurrency or completion
// order.
type RunKey int64

// NewRunKey creates a RunKey from a base seed value.
func NewRunKey(seed int64) RunKey {
	return RunKey(seed)
}

const (
	// SubsystemInit is the seed subsystem for the initial exploratory run.
	// Uses the base seed directly so a dynamic run's first invocation
	// matches a plain run with the same seed.
	SubsystemInit = "init"
)

// SubsystemThread returns the subsystem name for plan entry i.
func SubsystemThread(i int) string {
	return fmt.Sprintf("thread_%d", i)
}

// SeedFor derives the sampler seed for the named subsystem.
//
// Derivation:
//   - SubsystemInit: the base seed unchanged
//   - everything else: base seed XOR fnv1a64(name)
//
// The derivation is a pure function of (base seed, name), so repeated runs
// with the same key and plan are reproducible regardless of dispatch order.
func (k RunKey) SeedFor(name string) int64 {
	if name == SubsystemInit {
		return int64(k)
	}
	return int64(k) ^ fnv1a64(name)
}

// ThreadSeed derives the seed for plan entry i.
func (k RunKey) ThreadSeed(i int) int64 {
	return k.SeedFor(SubsystemThread(i))
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
