// Package invalidation encodes the dependency graph between cached entities
// and exposes the named helpers that mutation code paths call after a write.
//
// The graph is an explicit, centrally defined table rather than ad hoc clear
// calls scattered through handlers, so the dependency edges can be audited
// and tested as data. Mutating an entity whose fields are embedded in other
// entities' cached listings clears those patterns too; a unit rename, for
// example, stales every cached product query.
package invalidation
