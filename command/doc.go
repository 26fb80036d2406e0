// Package command hosts the go-command handlers that drive the password reset
// workflow: intake, administrator review, retention cleanup and security alert
// closure. Handlers return rich go-errors values whose text codes are stable
// and safe to show to the caller.
package command
