// internal/application/cartsync/resolver.go
package cartsync

import (
	cartdom "costtracker/internal/domain/cart"
	productdom "costtracker/internal/domain/product"
)

// resolver tracks the products fetched on demand for cart entries whose
// productId is not (yet) in the catalog mirror.
//
// Cache semantics:
//   - cache[id] = &Product  — point read succeeded
//   - cache[id] = nil       — tombstone: the read failed or the doc does not
//     exist; the id is NOT refetched on every recompute
//   - id absent             — never fetched (or pruned)
//
// Invalidation policy (deliberate, see DESIGN.md): an id is pruned as soon
// as no cart entry references it (so remove + re-add retries the fetch), a
// tombstone is superseded whenever the catalog mirror later observes the
// product, and invalidateAll wipes everything.
//
// The resolver is owned by a single session loop and is not safe for
// concurrent use; fetch goroutines never touch it directly, they deliver
// results back into the loop.
type resolver struct {
	cache    map[string]*productdom.Product
	inFlight map[string]struct{}
}

func newResolver() *resolver {
	return &resolver{
		cache:    map[string]*productdom.Product{},
		inFlight: map[string]struct{}{},
	}
}

// missing returns the distinct product ids referenced by entries that are
// absent from the catalog snapshot, the cache, and the in-flight set —
// i.e. the ids the session must point-read now. Each returned id is marked
// in-flight.
func (r *resolver) missing(entries []cartdom.Entry, snap productdom.Snapshot) []string {
	var out []string
	seen := map[string]struct{}{}

	for _, e := range entries {
		id := e.ProductID
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		if _, ok := snap[id]; ok {
			continue
		}
		if _, ok := r.cache[id]; ok {
			continue
		}
		if _, ok := r.inFlight[id]; ok {
			continue
		}

		r.inFlight[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// apply records one fetch outcome. p == nil stores a tombstone.
func (r *resolver) apply(id string, p *productdom.Product) {
	delete(r.inFlight, id)
	r.cache[id] = p
}

// merged builds the resolution map for Summarize: catalog snapshot first
// (live data supersedes any cached copy or tombstone), then the fetch
// cache. Ids in neither stay absent and count as unresolved.
func (r *resolver) merged(entries []cartdom.Entry, snap productdom.Snapshot) map[string]*productdom.Product {
	out := make(map[string]*productdom.Product, len(entries))
	for _, e := range entries {
		id := e.ProductID
		if id == "" {
			continue
		}
		if p, ok := snap[id]; ok {
			cp := p
			out[id] = &cp
			continue
		}
		if p, ok := r.cache[id]; ok {
			out[id] = p // may be nil (tombstone)
		}
	}
	return out
}

// prune drops cached products and tombstones no cart entry references
// anymore. Called after every recompute so a removed-then-re-added entry
// gets a fresh fetch.
func (r *resolver) prune(entries []cartdom.Entry) {
	if len(r.cache) == 0 {
		return
	}

	ref := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		ref[e.ProductID] = struct{}{}
	}

	for id := range r.cache {
		if _, ok := ref[id]; !ok {
			delete(r.cache, id)
		}
	}
}

// pendingFetches reports how many point reads are still in flight.
func (r *resolver) pendingFetches() int {
	return len(r.inFlight)
}

// invalidateAll wipes the cache and the in-flight set (in-flight results
// still arrive but carry a stale scope token and get discarded).
func (r *resolver) invalidateAll() {
	r.cache = map[string]*productdom.Product{}
	r.inFlight = map[string]struct{}{}
}
