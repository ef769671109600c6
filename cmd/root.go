package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tilmantroester/dyPolyChord/ns"
)

var (
	// CLI flags for the dynamic run
	dynamicGoal  float64 // trade-off between evidence (0) and parameter (1) accuracy
	ninit        int     // live points for the initial exploratory run
	nliveConst   int     // live points of the equivalent-cost non-dynamic run
	seed         int64   // base seed for sampler invocations
	baseDir      string  // output directory
	fileRoot     string  // output file root
	numRepeats   int     // sampler num_repeats setting
	maxWorkers   int     // concurrent sampler invocations
	settingsPath string  // optional YAML settings file
	logLevel     string  // log verbosity level

	// CLI flags for sampler selection
	executable string // compiled sampler executable path
	priorBlock string // prior block string passed to the compiled sampler
	mpiStr     string // MPI launcher prefix, e.g. "mpirun -np 4"
	dummy      bool   // use the synthetic dummy sampler
	ndim       int    // dimension for the dummy sampler
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "dypolychord",
	Short: "Dynamic nested sampling driver",
}

// runCmd performs a dynamic nested sampling run using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run dynamic nested sampling",
	Run: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		settings := ns.NewSettings()
		if settingsPath != "" {
			settings, err = ns.LoadSettings(settingsPath)
			if err != nil {
				logrus.Fatalf("Unable to read settings: %v", err)
			}
		}
		settings.Seed = seed
		settings.NumRepeats = numRepeats
		if baseDir != "" {
			settings.BaseDir = baseDir
		}
		if fileRoot != "" {
			settings.FileRoot = fileRoot
		}

		var sampler ns.Sampler
		switch {
		case dummy:
			sampler = &ns.DummySampler{NDim: ndim}
		case executable != "":
			compiled, err := ns.NewCompiledSampler(executable, priorBlock)
			if err != nil {
				logrus.Fatalf("Sampler setup failed: %v", err)
			}
			compiled.MPIStr = mpiStr
			sampler = compiled
		default:
			logrus.Fatalf("No sampler given: pass --executable or --dummy")
		}

		combined, err := ns.RunDynamicNS(cmd.Context(), sampler, dynamicGoal, settings, ns.Options{
			Ninit:      ninit,
			NliveConst: nliveConst,
			MaxWorkers: maxWorkers,
		})
		if err != nil {
			logrus.Fatalf("Dynamic run failed: %v", err)
		}
		logrus.Infof("Wrote combined run to %s (log(Z)=%.4f)",
			ns.DeadFileName(settings.BaseDir, settings.FileRoot), combined.LogZ())
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	runCmd.Flags().Float64Var(&dynamicGoal, "dynamic-goal", 1.0, "Trade-off between evidence (0) and parameter estimation (1) accuracy")
	runCmd.Flags().IntVar(&ninit, "ninit", 100, "Live points for the initial exploratory run")
	runCmd.Flags().IntVar(&nliveConst, "nlive-const", 500, "Live points of the equivalent-cost non-dynamic run")
	runCmd.Flags().Int64Var(&seed, "seed", 1, "Base seed for sampler invocations")
	runCmd.Flags().StringVar(&baseDir, "base-dir", "chains", "Output directory")
	runCmd.Flags().StringVar(&fileRoot, "file-root", "dypolychord_run", "Output file root")
	runCmd.Flags().IntVar(&numRepeats, "num-repeats", 0, "Sampler num_repeats setting (0 = sampler default)")
	runCmd.Flags().IntVar(&maxWorkers, "max-workers", 0, "Concurrent sampler invocations (0 = one per thread)")
	runCmd.Flags().StringVar(&settingsPath, "settings", "", "YAML settings file")
	runCmd.Flags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")

	runCmd.Flags().StringVar(&executable, "executable", "", "Compiled sampler executable")
	runCmd.Flags().StringVar(&priorBlock, "prior-block", "", "Prior block string for the compiled sampler ini file")
	runCmd.Flags().StringVar(&mpiStr, "mpi", "", "MPI launcher prefix, e.g. \"mpirun -np 4\"")
	runCmd.Flags().BoolVar(&dummy, "dummy", false, "Use the synthetic dummy sampler (smoke runs)")
	runCmd.Flags().IntVar(&ndim, "ndim", 2, "Parameter dimension for the dummy sampler")

	// Attach `run` as a subcommand to `root`
	rootCmd.AddCommand(runCmd)
}
