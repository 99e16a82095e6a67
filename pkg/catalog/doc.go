// Package catalog resolves the two-level make → model choice lists used by
// vehicle editors.
//
// Static serves the embedded seed catalog under data/catalog.yaml. Remote reads
// the same lists from a catalog HTTP endpoint (see components/catalog) and
// caches successful responses. Both satisfy Resolver, whose operations are
// context-aware and fallible so callers handle load failures uniformly.
package catalog
