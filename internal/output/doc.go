// Package output provides structured output and error handling for the icex CLI.
//
// The Printer renders human-readable (lipgloss-styled) or JSON output, and
// ExitError carries the failure taxonomy that determines the process exit
// code: user errors, system errors (network, remote protocol, local I/O),
// authentication failures, and unsupported verification challenges.
package output
