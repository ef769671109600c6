package ns

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/tilmantroester/dyPolyChord/ns/prior"
)

// CompiledSampler runs an external PolyChord-style executable with a
// compiled-in likelihood. Each invocation writes an ini file for the
// configuration, executes the binary (optionally under an MPI launcher)
// and parses the dead points file it leaves under BaseDir/FileRoot.
type CompiledSampler struct {
	ExecutablePath string
	PriorStr       string // prior block lines for the ini file
	DerivedStr     string // optional derived parameter line
	ConfigStr      string // optional extra ini lines
	MPIStr         string // e.g. "mpirun -np 4"; empty runs directly
}

// NewCompiledSampler checks the executable exists and returns a sampler
// for it.
func NewCompiledSampler(executablePath, priorStr string) (*CompiledSampler, error) {
	info, err := os.Stat(executablePath)
	if err != nil {
		return nil, newConfigErrorf("sampler executable %s: %v", executablePath, err)
	}
	if info.IsDir() {
		return nil, newConfigErrorf("sampler executable %s is a directory", executablePath)
	}
	return &CompiledSampler{ExecutablePath: executablePath, PriorStr: priorStr}, nil
}

// Run invokes the executable for cfg and parses its output.
func (s *CompiledSampler) Run(ctx context.Context, cfg SamplerConfig) (*Run, error) {
	if err := os.MkdirAll(cfg.BaseDir, 0o755); err != nil {
		return nil, &ExternalRunFailure{Stage: "setup", ThreadIndex: -1, Err: err}
	}
	iniPath := filepath.Join(cfg.BaseDir, cfg.FileRoot+".ini")
	if err := os.WriteFile(iniPath, []byte(s.IniString(cfg)), 0o644); err != nil {
		return nil, &ExternalRunFailure{Stage: "setup", ThreadIndex: -1, Err: err}
	}

	args := append(strings.Fields(s.MPIStr), s.ExecutablePath, iniPath)
	logrus.Debugf("running sampler: %s", strings.Join(args, " "))
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		failure := &ExternalRunFailure{Stage: "sampler", ThreadIndex: -1, Err: err}
		if exitErr, ok := err.(*exec.ExitError); ok {
			failure.ExitCode = exitErr.ExitCode()
		}
		return nil, failure
	}

	run, err := ParseDeadFile(cfg.BaseDir, cfg.FileRoot)
	if err != nil {
		return nil, &ExternalRunFailure{Stage: "sampler", ThreadIndex: -1,
			Err: fmt.Errorf("parsing output: %w", err)}
	}
	return run, nil
}

// IniString renders cfg as a PolyChord ini file, including the prior block
// and any extra configured lines.
func (s *CompiledSampler) IniString(cfg SamplerConfig) string {
	settings := map[string]any{
		"nlive":     cfg.NLive,
		"seed":      cfg.Seed,
		"base_dir":  cfg.BaseDir,
		"file_root": cfg.FileRoot,
		"max_ndead": cfg.MaxDead,
	}
	if cfg.NumRepeats > 0 {
		settings["num_repeats"] = cfg.NumRepeats
	}
	if !math.IsInf(cfg.StartThreshold, -1) {
		settings["logl_start"] = cfg.StartThreshold
	}

	var b strings.Builder
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "%s = %s\n", k, FormatSetting(settings[k]))
	}
	if len(cfg.Nlives) > 0 {
		logls := make([]float64, 0, len(cfg.Nlives))
		for l := range cfg.Nlives {
			logls = append(logls, l)
		}
		sort.Float64s(logls)
		nlives := make([]int, len(logls))
		for i, l := range logls {
			nlives[i] = cfg.Nlives[l]
		}
		fmt.Fprintf(&b, "loglikes = %s\n", FormatSetting(logls))
		fmt.Fprintf(&b, "nlives = %s\n", FormatSetting(nlives))
	}
	if s.ConfigStr != "" {
		b.WriteString(strings.TrimRight(s.ConfigStr, "\n") + "\n")
	}
	b.WriteString(strings.TrimRight(s.PriorStr, "\n") + "\n")
	if s.DerivedStr != "" {
		b.WriteString(s.DerivedStr + "\n")
	}
	return b.String()
}

// FormatSetting renders a value in ini file syntax: booleans become T/F,
// slices are space separated.
func FormatSetting(v any) string {
	switch x := v.(type) {
	case bool:
		if x {
			return "T"
		}
		return "F"
	case []int:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = strconv.Itoa(e)
		}
		return strings.Join(parts, " ")
	case []float64:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = trimFloat(e)
		}
		return strings.Join(parts, " ")
	default:
		return fmt.Sprint(v)
	}
}

// PriorBlockString renders one prior block in ini syntax: a line per
// parameter naming the prior type and its parameters.
func PriorBlockString(name string, params []float64, nparam, speed, block int) string {
	var b strings.Builder
	for i := 1; i <= nparam; i++ {
		fmt.Fprintf(&b, `P : p%d | \theta_{%d} | %d | %s | %d | %s`,
			i, i, speed, name, block, FormatSetting(params))
		b.WriteByte('\n')
	}
	return b.String()
}

// PriorToIniString maps a prior object to its ini block representation.
func PriorToIniString(p prior.Prior, nparam int) (string, error) {
	name, params, err := priorIniSpec(p)
	if err != nil {
		return "", err
	}
	return PriorBlockString(name, params, nparam, 1, 1), nil
}

// BlockPriorToIniString renders a block prior as consecutive ini blocks.
func BlockPriorToIniString(b prior.Block) (string, error) {
	var out strings.Builder
	for i, p := range b.Priors {
		s, err := PriorToIniString(p, b.Sizes[i])
		if err != nil {
			return "", err
		}
		out.WriteString(s)
	}
	return out.String(), nil
}

func priorIniSpec(p prior.Prior) (string, []float64, error) {
	switch x := p.(type) {
	case prior.Uniform:
		return prefixSortAdaptive("uniform", x.Sort, x.Adaptive), []float64{x.Min, x.Max}, nil
	case prior.PowerUniform:
		return "power_uniform", []float64{x.Min, x.Max, x.Power}, nil
	case prior.Exponential:
		return prefixSortAdaptive("exponential", x.Sort, x.Adaptive), []float64{x.Lambda}, nil
	case prior.Gaussian:
		name := prefixSortAdaptive("gaussian", x.Sort, x.Adaptive)
		if x.Half {
			return prefixSortAdaptive("half_gaussian", x.Sort, x.Adaptive), []float64{x.Mu, x.Sigma}, nil
		}
		return name, []float64{x.Sigma}, nil
	default:
		return "", nil, newConfigErrorf("no ini representation for prior %T", p)
	}
}

func prefixSortAdaptive(name string, sorted, adaptive bool) string {
	if sorted {
		name = "sorted_" + name
	}
	if adaptive {
		name = "adaptive_" + name
	}
	return name
}
