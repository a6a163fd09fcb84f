// Aegis is an AI model governance service with policy-gated compliance
// transitions.
//
// It keeps a registry of AI models, versions, and evaluation metrics, and
// guards every compliance status change behind a set of governance policies.
// Blocked transitions are recorded in an append-only violation log; allowed
// ones land in the audit trail.
//
// Usage:
//
//	# Start the server with default configuration
//	aegis run
//
//	# Start with a custom configuration file
//	aegis run --config /path/to/config.yaml
//
//	# Validate a policy seed file without touching the database
//	aegis policy lint --file policies.yaml
//
//	# Show version information
//	aegis version
package main

func main() {
	Execute()
}
