// Package ns implements dynamic nested sampling: it adaptively allocates
// additional live points across the likelihood range of a Bayesian
// inference problem to optimize evidence or parameter estimation accuracy
// for a fixed computational budget.
//
// # Reading Guide
//
// Start with these three files to understand the engine:
//   - run.go: the Run data structure (dead points + live point bookkeeping)
//     and the estimators derived from it
//   - dynamic.go: RunDynamicNS, the driver stringing the stages together
//   - merge.go: how an initial run and its threads become one valid run
//
// # Architecture
//
// The pipeline is: sampler (initial exploratory run) -> importance profile
// -> allocation plan -> thread fan-out (sampler per plan entry) -> merge.
// The sampler itself is external: this package only defines the Sampler
// interface plus two implementations, CompiledSampler (shells out to a
// PolyChord-style executable) and DummySampler (synthetic output for tests
// and smoke runs).
//
// The extension points are small interfaces and function types:
//   - Sampler: produce a Run for a live point count and start threshold
//   - ImportancePolicy: map a run and a dynamic goal to per-point weights
//   - SmoothingFilter: smooth the target live point allocation
//
// Sub-packages ns/likelihood and ns/prior provide the standard test
// problems for compiled samplers and demos.
package ns
