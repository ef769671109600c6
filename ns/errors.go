package ns

import "fmt"

// ConfigurationError reports an invalid combination of run parameters. It is
// always raised before any sampler invocation, so no partial state exists
// when it is returned.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string {
	return "configuration: " + e.Msg
}

func newConfigErrorf(format string, args ...any) error {
	return &ConfigurationError{Msg: fmt.Sprintf(format, args...)}
}

// ExternalRunFailure reports a sampler invocation that exited abnormally or
// produced no parseable output. It aborts the whole dynamic run: no combined
// output is written.
type ExternalRunFailure struct {
	Stage       string // "init" or "thread"
	ThreadIndex int    // plan entry index, -1 for the initial run
	ExitCode    int    // process exit status, 0 if not a process failure
	Err         error
}

func (e *ExternalRunFailure) Error() string {
	where := e.Stage
	if e.ThreadIndex >= 0 {
		where = fmt.Sprintf("%s %d", e.Stage, e.ThreadIndex)
	}
	if e.ExitCode != 0 {
		return fmt.Sprintf("sampler failed (%s, exit status %d): %v", where, e.ExitCode, e.Err)
	}
	return fmt.Sprintf("sampler failed (%s): %v", where, e.Err)
}

func (e *ExternalRunFailure) Unwrap() error { return e.Err }

// MalformedOutputError reports sampler output or a merge result that
// violates the Run invariants (unordered likelihoods beyond tolerance,
// non-positive live counts, dimension mismatches, degenerate duplicates).
type MalformedOutputError struct {
	Reason string
}

func (e *MalformedOutputError) Error() string {
	return "malformed run: " + e.Reason
}

func newMalformedf(format string, args ...any) error {
	return &MalformedOutputError{Reason: fmt.Sprintf(format, args...)}
}
