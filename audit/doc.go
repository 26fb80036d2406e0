// Package audit persists the append-only administrative audit log. The
// Repository implements both the types.AuditSink write side and the
// types.AuditRepository read side. Snapshots are masked with go-masker before
// they are written so credential material never lands in the log.
package audit
