// Package query exposes go-command Querier implementations for the reset
// workflow read side. Administrator queries go through the scope guard; the
// rate limit status query is public so request forms can pre-empt a doomed
// submission.
package query
