// Package commands defines the omr-eval CLI.
//
// Commands
//
//   - evaluate   Score one sheet and write its overlay
//   - batch      Score every sheet in a directory
//   - keys       List the answer sets of a key file
//   - serve      Run the MCP server on stdio
//   - version    Print build information
//
// # Implementation
//
// The root command loads the configuration (file, OMR_* environment) and
// builds the logger before any subcommand runs. Results go to stdout, logs to
// stderr.
package commands
