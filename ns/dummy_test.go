package ns

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDummySampler(t *testing.T) {
	d := &DummySampler{NDim: 3, NSample: 8}
	cfg := NewSamplerConfig(4, 11, "", "")

	run, err := d.Run(context.Background(), cfg)
	require.NoError(t, err)
	require.NoError(t, run.Validate(0))
	assert.Len(t, run.Points, 4*8)
	assert.Equal(t, 4, run.NumThreads())
	// all threads sample from the whole prior and stay live until the run
	// thins out at the top
	assert.Equal(t, 4, run.NLive[0])

	again, err := d.Run(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, run.Points, again.Points)

	other, err := d.Run(context.Background(), NewSamplerConfig(4, 12, "", ""))
	require.NoError(t, err)
	assert.NotEqual(t, run.LogLs(), other.LogLs())
}

func TestDummySampler_StartThreshold(t *testing.T) {
	d := &DummySampler{NDim: 1, NSample: 5, LogLRange: 2}
	cfg := NewSamplerConfig(3, 5, "", "")
	cfg.StartThreshold = 100

	run, err := d.Run(context.Background(), cfg)
	require.NoError(t, err)
	for _, p := range run.Points {
		assert.Greater(t, p.LogL, 100.0)
		assert.LessOrEqual(t, p.LogL, 102.0)
	}
	for _, mm := range run.ThreadMinMax {
		assert.Equal(t, 100.0, mm[0])
	}
}

func TestDummySampler_MaxDead(t *testing.T) {
	d := &DummySampler{NDim: 1, NSample: 10}
	cfg := NewSamplerConfig(2, 9, "", "")
	cfg.MaxDead = 7

	run, err := d.Run(context.Background(), cfg)
	require.NoError(t, err)
	assert.Len(t, run.Points, 7)
}

func TestDummySampler_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := (&DummySampler{NDim: 1}).Run(ctx, NewSamplerConfig(2, 1, "", ""))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDummySampler_BirthChain(t *testing.T) {
	d := &DummySampler{NDim: 1, NSample: 6}
	run, err := d.Run(context.Background(), NewSamplerConfig(1, 3, "", ""))
	require.NoError(t, err)
	// a single chain holds exactly one live point throughout
	for _, n := range run.NLive {
		assert.Equal(t, 1, n)
	}
	assert.True(t, math.IsInf(run.ThreadMinMax[0][0], -1))
}
