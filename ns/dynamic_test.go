package ns

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dynamicTestSettings(t *testing.T) *Settings {
	t.Helper()
	s := NewSettings()
	s.BaseDir = t.TempDir()
	s.FileRoot = "dyntest"
	s.Seed = 4242
	return s
}

func TestRunDynamicNS_EndToEnd(t *testing.T) {
	sampler := &DummySampler{NDim: 2, NSample: 20}
	settings := dynamicTestSettings(t)

	combined, err := RunDynamicNS(context.Background(), sampler, 0.5, settings, Options{
		Ninit:      5,
		NliveConst: 20,
	})
	require.NoError(t, err)
	require.NoError(t, combined.Validate(0))
	assert.Equal(t, 2, combined.NDim)
	assert.Greater(t, len(combined.Points), 5*20, "threads must add dead points beyond the initial run")
	assert.False(t, os.IsNotExist(statErr(DeadFileName(settings.BaseDir, settings.FileRoot))))
	assert.False(t, os.IsNotExist(statErr(settings.BaseDir+"/dyntest.stats")))
	assert.False(t, os.IsNotExist(statErr(settings.BaseDir+"/dyntest.txt")))
}

func statErr(path string) error {
	_, err := os.Stat(path)
	return err
}

func TestRunDynamicNS_Deterministic(t *testing.T) {
	run := func() *Run {
		sampler := &DummySampler{NDim: 2, NSample: 15}
		settings := dynamicTestSettings(t)
		combined, err := RunDynamicNS(context.Background(), sampler, 1, settings, Options{
			Ninit:      4,
			NliveConst: 16,
			MaxWorkers: 2,
		})
		require.NoError(t, err)
		return combined
	}
	first, second := run(), run()
	assert.Equal(t, first.LogLs(), second.LogLs())
	assert.Equal(t, first.NLive, second.NLive)
	assert.Equal(t, first.LogZ(), second.LogZ())
}

func TestRunDynamicNS_InvalidGoalFailsFast(t *testing.T) {
	settings := dynamicTestSettings(t)
	_, err := RunDynamicNS(context.Background(), &DummySampler{NDim: 1}, 1.5, settings, Options{
		Ninit:      2,
		NliveConst: 8,
	})
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)

	// fail-fast means no output files
	entries, readErr := os.ReadDir(settings.BaseDir)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

func TestRunDynamicNS_BadOptions(t *testing.T) {
	settings := dynamicTestSettings(t)
	tests := []struct {
		name string
		opts Options
	}{
		{"zero ninit", Options{Ninit: 0, NliveConst: 10}},
		{"nlive_const not above ninit", Options{Ninit: 10, NliveConst: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RunDynamicNS(context.Background(), &DummySampler{NDim: 1}, 0.5, settings, tt.opts)
			var cfgErr *ConfigurationError
			assert.ErrorAs(t, err, &cfgErr)
		})
	}
}

type failingSampler struct{ err error }

func (f *failingSampler) Run(context.Context, SamplerConfig) (*Run, error) {
	return nil, f.err
}

func TestRunDynamicNS_InitFailure(t *testing.T) {
	settings := dynamicTestSettings(t)
	boom := errors.New("no such binary")
	_, err := RunDynamicNS(context.Background(), &failingSampler{err: boom}, 0.5, settings, Options{
		Ninit:      2,
		NliveConst: 8,
	})
	var extRun *ExternalRunFailure
	require.ErrorAs(t, err, &extRun)
	assert.Equal(t, "init", extRun.Stage)
	assert.ErrorIs(t, err, boom)

	entries, readErr := os.ReadDir(settings.BaseDir)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

func TestRunDynamicNS_NilSettingsUsesDefaults(t *testing.T) {
	// defaults write under "chains"; run from a temp working directory so
	// the test does not litter the repository
	origWD, wdErr := os.Getwd()
	require.NoError(t, wdErr)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(origWD) })

	combined, err := RunDynamicNS(context.Background(), &DummySampler{NDim: 1, NSample: 10}, 0, nil, Options{
		Ninit:      3,
		NliveConst: 9,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, combined.Points)
}
