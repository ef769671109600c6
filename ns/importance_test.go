package ns

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoPointRun has logl {0, 1} with two live points throughout, giving
// logx {-0.5, -1} and relative posterior masses {exp(-0.5), 1}.
func twoPointRun() *Run {
	return makeRun(2, []float64{0, 1}, []int{2, 2}, []int{0, 1},
		[][2]float64{{math.Inf(-1), 0}, {math.Inf(-1), 1}})
}

func TestSampleImportance_ParameterGoal(t *testing.T) {
	imp, err := SampleImportance(twoPointRun(), 1)
	require.NoError(t, err)
	w0 := math.Exp(-0.5)
	assert.InDelta(t, w0/(w0+1), imp[0], 1e-12)
	assert.InDelta(t, 1/(w0+1), imp[1], 1e-12)
}

func TestSampleImportance_EvidenceGoal(t *testing.T) {
	imp, err := SampleImportance(twoPointRun(), 0)
	require.NoError(t, err)
	// All the evidence-remaining importance sits on the first point.
	assert.InDelta(t, 1, imp[0], 1e-12)
	assert.InDelta(t, 0, imp[1], 1e-12)
}

func TestSampleImportance_Mixture(t *testing.T) {
	imp, err := SampleImportance(twoPointRun(), 0.5)
	require.NoError(t, err)
	w0 := math.Exp(-0.5)
	assert.InDelta(t, 0.5+0.5*w0/(w0+1), imp[0], 1e-12)
	assert.InDelta(t, 0.5/(w0+1), imp[1], 1e-12)
}

// A four-point single-live-point thread with known likelihoods; the
// expected profile comes from evaluating the goal=0.5 mixture by hand:
// logx_i = -(i+1), w_rel = exp(logx + logl - max), evidence term
// (reverse cumulative sum rescaled to max 1) and parameter term each
// normalized then averaged.
func TestSampleImportance_FourPointProfile(t *testing.T) {
	logls := []float64{
		0.5448831829968969,
		0.5488135039273248,
		0.6027633760716439,
		0.7151893663724195,
	}
	run := makeRun(1, logls, []int{1, 1, 1, 1}, []int{0, 0, 0, 0},
		[][2]float64{{math.Inf(-1), logls[3]}})

	imp, err := SampleImportance(run, 0.5)
	require.NoError(t, err)
	want := []float64{0.66121679, 0.23896365, 0.08104094, 0.01877862}
	assert.InDeltaSlice(t, want, imp, 1e-7)
}

func TestSampleImportance_SumsToOne(t *testing.T) {
	run := makeUniformRun(2, 40, 5)
	for _, goal := range []float64{0, 0.25, 0.5, 0.75, 1} {
		imp, err := SampleImportance(run, goal)
		require.NoError(t, err)
		require.Len(t, imp, 40)
		sum := 0.0
		for _, w := range imp {
			assert.GreaterOrEqual(t, w, 0.0)
			sum += w
		}
		assert.InDeltaf(t, 1.0, sum, 1e-12, "goal %v", goal)
	}
}

// Increasing the goal moves importance towards the high posterior mass
// region, so the importance-weighted mean position increases monotonically.
func TestSampleImportance_MonotonicInGoal(t *testing.T) {
	run := makeUniformRun(2, 60, 6)
	prev := -1.0
	for _, goal := range []float64{0, 0.2, 0.4, 0.6, 0.8, 1} {
		imp, err := SampleImportance(run, goal)
		require.NoError(t, err)
		centre := 0.0
		for i, w := range imp {
			centre += w * float64(i)
		}
		assert.Greaterf(t, centre, prev, "goal %v should shift importance later", goal)
		prev = centre
	}
}

func TestSampleImportance_GoalValidation(t *testing.T) {
	run := twoPointRun()
	for _, goal := range []float64{-0.1, 1.1, math.NaN()} {
		_, err := SampleImportance(run, goal)
		var cfgErr *ConfigurationError
		assert.ErrorAsf(t, err, &cfgErr, "goal %v", goal)
	}
}

func TestSampleImportance_SinglePoint(t *testing.T) {
	run := makeRun(2, []float64{1}, []int{1}, []int{0}, [][2]float64{{math.Inf(-1), 1}})
	imp, err := SampleImportance(run, 0.5)
	require.NoError(t, err)
	assert.Equal(t, []float64{1}, imp)
}
