package ns

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
)

// Dead point files hold one row per dead point: the parameter vector, the
// log-likelihood, the birth contour (the likelihood the point's thread
// became active at, -inf from the whole prior) and the thread label.

// DeadFileName returns the dead points file path for a run root.
func DeadFileName(baseDir, fileRoot string) string {
	return filepath.Join(baseDir, fileRoot+"_dead-birth.txt")
}

// WriteDeadFile writes run's dead points under baseDir/fileRoot.
func WriteDeadFile(run *Run, baseDir, fileRoot string) error {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return err
	}
	path := DeadFileName(baseDir, fileRoot)
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	// a thread's first point is born at the thread's start contour, each
	// later point at the contour of the thread's previous dead point
	prevLogL := make([]float64, run.NumThreads())
	for t, mm := range run.ThreadMinMax {
		prevLogL[t] = mm[0]
	}
	w := bufio.NewWriter(file)
	for _, p := range run.Points {
		for _, th := range p.Theta {
			fmt.Fprintf(w, "%.18e ", th)
		}
		fmt.Fprintf(w, "%.18e %.18e %d\n", p.LogL, prevLogL[p.ThreadLabel], p.ThreadLabel)
		prevLogL[p.ThreadLabel] = p.LogL
	}
	if err := w.Flush(); err != nil {
		return err
	}
	logrus.Debugf("wrote %d dead points to %s", len(run.Points), path)
	return nil
}

// ParseDeadFile reads a dead points file back into a Run, reconstructing
// the live point counts from the birth contours.
func ParseDeadFile(baseDir, fileRoot string) (*Run, error) {
	path := DeadFileName(baseDir, fileRoot)
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var (
		points []DeadPoint
		births []float64
		ndim   = -1
	)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if ndim == -1 {
			ndim = len(fields) - 3
			if ndim < 1 {
				return nil, newMalformedf("%s line %d: %d columns, need at least 4", path, lineNo, len(fields))
			}
		}
		if len(fields) != ndim+3 {
			return nil, newMalformedf("%s line %d: %d columns, want %d", path, lineNo, len(fields), ndim+3)
		}
		vals := make([]float64, ndim+2)
		for i := 0; i < ndim+2; i++ {
			v, err := strconv.ParseFloat(fields[i], 64)
			if err != nil {
				return nil, newMalformedf("%s line %d: %v", path, lineNo, err)
			}
			vals[i] = v
		}
		label, err := strconv.Atoi(fields[ndim+2])
		if err != nil {
			return nil, newMalformedf("%s line %d: thread label %q", path, lineNo, fields[ndim+2])
		}
		points = append(points, DeadPoint{Theta: vals[:ndim], LogL: vals[ndim], ThreadLabel: label})
		births = append(births, vals[ndim+1])
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return RunFromDeadPoints(ndim, points, births)
}

// RunFromDeadPoints assembles a Run from raw sampler output: dead points
// (ordered by likelihood) and the birth contour of each. The live point
// count at each position is the number of points born strictly below it
// and dying at or above it.
func RunFromDeadPoints(ndim int, points []DeadPoint, births []float64) (*Run, error) {
	if len(points) != len(births) {
		return nil, newMalformedf("%d dead points but %d birth contours", len(points), len(births))
	}
	run := &Run{NDim: ndim, Points: points, NLive: make([]int, len(points))}

	maxLabel := -1
	for _, p := range points {
		if p.ThreadLabel > maxLabel {
			maxLabel = p.ThreadLabel
		}
	}
	run.ThreadMinMax = make([][2]float64, maxLabel+1)
	for t := range run.ThreadMinMax {
		run.ThreadMinMax[t] = [2]float64{math.Inf(1), math.Inf(-1)}
	}
	for i, p := range points {
		mm := &run.ThreadMinMax[p.ThreadLabel]
		if births[i] < mm[0] {
			mm[0] = births[i]
		}
		if p.LogL > mm[1] {
			mm[1] = p.LogL
		}
	}

	sortedBirths := append([]float64(nil), births...)
	sort.Float64s(sortedBirths)
	for i, p := range points {
		born := sort.SearchFloat64s(sortedBirths, p.LogL) // births strictly below logl
		run.NLive[i] = born - i
	}
	if err := run.Validate(0); err != nil {
		return nil, err
	}
	return run, nil
}

// WriteStatsFile writes the run's summary statistics next to its dead
// points file.
func WriteStatsFile(run *Run, baseDir, fileRoot string) error {
	path := filepath.Join(baseDir, fileRoot+".stats")
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	w := bufio.NewWriter(file)
	fmt.Fprintf(w, "log(Z)       = %.12f\n", run.LogZ())
	fmt.Fprintf(w, "ndead        = %d\n", len(run.Points))
	fmt.Fprintf(w, "nthreads     = %d\n", run.NumThreads())
	return w.Flush()
}

// WritePosteriorFile writes the equally-spaced posterior sample file: one
// row per dead point with columns weight/max(weight), -2*logl, then the
// parameter vector.
func WritePosteriorFile(run *Run, baseDir, fileRoot string) error {
	path := filepath.Join(baseDir, fileRoot+".txt")
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	weights := run.PosteriorWeights()
	wMax := floats.Max(weights)
	w := bufio.NewWriter(file)
	for i, p := range run.Points {
		fmt.Fprintf(w, "%.18e %.18e", weights[i]/wMax, -2*p.LogL)
		for _, th := range p.Theta {
			fmt.Fprintf(w, " %.18e", th)
		}
		fmt.Fprintln(w)
	}
	return w.Flush()
}

// RootOptions carries the run parameters encoded into a standard output
// file root.
type RootOptions struct {
	PriorScale  float64
	DynamicGoal float64
	Ninit       int
	InitStep    int
	NliveConst  int
	NumRepeats  int
}

// SettingsRoot builds the standard output file root for a likelihood,
// prior and parameter combination, e.g.
// "gaussian_uniform_1_dg1_100init_100is_10d_500nlive_5nrepeats".
func SettingsRoot(likelihoodName, priorName string, ndim int, o RootOptions) string {
	parts := []string{
		likelihoodName,
		priorName,
		trimFloat(o.PriorScale),
		"dg" + trimFloat(o.DynamicGoal),
		fmt.Sprintf("%dinit", o.Ninit),
		fmt.Sprintf("%dis", o.InitStep),
		fmt.Sprintf("%dd", ndim),
		fmt.Sprintf("%dnlive", o.NliveConst),
		fmt.Sprintf("%dnrepeats", o.NumRepeats),
	}
	return strings.Join(parts, "_")
}

func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
