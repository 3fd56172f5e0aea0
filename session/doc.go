// Package session tracks every loaded and derived PDF curve of one
// analysis session.
//
// Curves are keyed by stable ids assigned at load time. The session
// owns its curves exclusively: hold ids, not pointers, and re-fetch
// after mutating calls. Difference curves remember their recipe and are
// recomputed eagerly (ids stable, their own transform history replayed)
// whenever a source curve transforms.
// Removal of a curve with dependents fails with a DependencyError
// unless cascading removal is requested explicitly.
//
// The whole session round-trips through the zlib-compressed JSON .pvp
// project format.
//
// The session is not safe for concurrent use; it assumes a single
// writer and exposes no internal cancellation, so long computations
// should be run on an abortable worker by the caller.
package session
