/*
Package cli provides command-line utilities for the aegis command.

It includes output formatters for command results, common CLI error types,
and signal handling for graceful shutdown:

	sigChan := cli.WaitForShutdown()
	select {
	case err := <-errChan:
		// Server failed.
	case <-sigChan:
		// Stop the server and drain before exiting.
	}
*/
package cli
