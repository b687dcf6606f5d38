// Package logging defines the verbosity levels used across the engine and
// zap-backed logger constructors for tests. Engine code obtains its logger
// from the context via ctrl.LoggerFrom; this package holds no global state
// beyond what controller-runtime already manages.
package logging

// Verbosity levels for logr's V(). Higher is more verbose.
const (
	// INFO is the default level for operational messages.
	INFO = 0
	// DEBUG is for messages useful when diagnosing allocation decisions.
	DEBUG = 1
	// TRACE is for high-volume diagnostics such as per-check validator output.
	TRACE = 2
)
