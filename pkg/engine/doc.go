// Package engine implements the reconciliation planner for bulk directory
// provisioning. Given a batch of tabular input rows and a mapping
// configuration, it computes the ordered set of directory actions (create,
// update, move and delete organizational units, users, group memberships
// and auxiliary provisioning tasks) required to bring the directory into
// the desired state, without executing any of them.
//
// The engine is strictly read-only against the directory: every mutation is
// emitted as an Action record inside an Analysis, which a separate
// execution phase consumes. One call to Analyzer.Analyze produces either a
// complete Analysis or an error, never a partial result.
//
// Workflow per invocation:
//
//	Rows -> Row Planner (bounded worker pool) -> Orphan Detector -> Summary
//
// The OU existence cache and the class-group index are the only state
// shared across workers; everything else is row-local.
package engine
