// Package requestcache coordinates cache lookups with in-flight asynchronous
// fetches.
//
// A Binding is a consumer's live association with one cache key and one
// producer function. Activating a binding adopts a fresh cached value when
// one exists, or invokes the producer and writes the result back through the
// cache facade. Deactivating the binding makes any later producer completion
// a no-op, which prevents both stale overwrites and writes on behalf of a
// consumer that no longer exists.
//
// Typical UI usage:
//
//	b := requestcache.NewBinding(svc, key, fetchProducts, requestcache.DefaultOptions(), logger)
//	go b.Activate(ctx)
//	// render from b.Snapshot(); call b.Refetch(ctx) on pull-to-refresh
//	defer b.Deactivate()
//
// Bindings sharing a key fetch independently by default. Handing the same
// singleflight group to several bindings via Options.Flight collapses their
// concurrent producer calls into one.
package requestcache
