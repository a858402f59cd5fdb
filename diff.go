package delta

import (
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
)

// ChangeSet is the set of selectors whose fields differ between two values.
type ChangeSet[Root any] struct {
	keys      mapset.Set[string]
	selectors []Selector[Root]
}

func newChangeSet[Root any]() ChangeSet[Root] {
	return ChangeSet[Root]{keys: mapset.NewThreadUnsafeSet[string]()}
}

func (c *ChangeSet[Root]) add(sel Selector[Root]) {
	if c.keys.Add(sel.Key()) {
		c.selectors = append(c.selectors, sel)
	}
}

// Len returns the number of changed selectors.
func (c ChangeSet[Root]) Len() int {
	if c.keys == nil {
		return 0
	}
	return c.keys.Cardinality()
}

// IsEmpty reports whether nothing changed.
func (c ChangeSet[Root]) IsEmpty() bool { return c.Len() == 0 }

// Contains reports whether sel is in the change set.
func (c ChangeSet[Root]) Contains(sel Selector[Root]) bool {
	if sel == nil {
		return false
	}
	return c.ContainsKey(sel.Key())
}

// ContainsKey reports whether a selector with key is in the change set.
func (c ChangeSet[Root]) ContainsKey(key string) bool {
	if c.keys == nil {
		return false
	}
	return c.keys.Contains(key)
}

// Keys returns the changed keys, sorted.
func (c ChangeSet[Root]) Keys() []string {
	if c.keys == nil {
		return nil
	}
	keys := c.keys.ToSlice()
	sort.Strings(keys)
	return keys
}

// Selectors returns the changed selectors. Order is unspecified.
func (c ChangeSet[Root]) Selectors() []Selector[Root] {
	out := make([]Selector[Root], len(c.selectors))
	copy(out, c.selectors)
	return out
}

// Diff returns the selectors whose field differs between old and new.
// An empty selector set always yields an empty change set; whole-value
// comparison is the caller's concern.
func Diff[Root any](selectors Selectors[Root], old, new Root) ChangeSet[Root] {
	changes := newChangeSet[Root]()
	for _, sel := range selectors.order {
		if sel.Changed(old, new) {
			changes.add(sel)
		}
	}
	return changes
}
