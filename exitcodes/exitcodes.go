// Package exitcodes defines the standard exit codes used by specstream.
package exitcodes

// Exit code constants used by specstream
// These constants define the exit codes that the harness uses to indicate
// various states when it exits:
//
// * Success (0): Used when all scenarios pass
// * ScenarioFailure (1): Used when one or more scenarios fail
// * RuntimeErr (2): Used for runtime errors such as bad plans, registry collisions or panics
const (
	Success         = 0 // All scenarios pass
	ScenarioFailure = 1 // Scenario failures
	RuntimeErr      = 2 // Runtime or configuration errors
)
