// Rategate is a client-side call throttler with a policy-driven CLI.
//
// It bounds how many operations a process performs within a rolling time
// window, so that many concurrent callers collectively stay under a
// configured rate when hitting an external resource.
//
// Usage:
//
//	# Drive a throttled workload using policies from config.yaml
//	rategate run --policy search-api --calls 100 --workers 100
//
//	# Pick up policy edits without restarting
//	rategate run --policy search-api --calls 1000 --watch
//
//	# Check a configuration file
//	rategate validate --config config.yaml
//
//	# Show version information
//	rategate version
package main

func main() {
	Execute()
}
