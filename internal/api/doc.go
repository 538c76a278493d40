// Package api defines the wire types of the composite controller sync hook.
//
// A SyncRequest carries the parent resource and the observed children keyed by
// KindID; a SyncResult carries the readiness status, the desired children and
// an optional resync hint. Observed children are kept as raw JSON because the
// dispatcher only counts them.
package api
