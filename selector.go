package delta

// Selector names one comparable field of Root and reports whether that field
// differs between two instances. Selectors are identified by their key: two
// selectors with the same key are the same selector.
type Selector[Root any] interface {
	// Key returns the stable identity token of the field.
	Key() string

	// Changed reports whether the field differs between old and new.
	Changed(old, new Root) bool
}

type funcSelector[Root any] struct {
	key     string
	changed func(old, new Root) bool
}

func (s funcSelector[Root]) Key() string { return s.key }

func (s funcSelector[Root]) Changed(old, new Root) bool { return s.changed(old, new) }

// NewSelector builds a Selector from an explicit comparison. The changed
// function must capture both the projection and the equality test.
//
// Example:
//
//	port := delta.NewSelector("port", func(old, new Config) bool {
//	    return old.Port != new.Port
//	})
func NewSelector[Root any](key string, changed func(old, new Root) bool) Selector[Root] {
	return funcSelector[Root]{key: key, changed: changed}
}

// Property is a named projection from Root to one of its fields. It is a
// Selector over Root and also the accessor used by hook bindings.
type Property[Root, P any] struct {
	key   string
	get   func(Root) P
	equal func(a, b P) bool
}

// Field builds a Property for a field with native equality.
//
// Example:
//
//	var Port = delta.Field("port", func(c Config) int { return c.Port })
func Field[Root any, P comparable](key string, get func(Root) P) Property[Root, P] {
	return Property[Root, P]{
		key:   key,
		get:   get,
		equal: func(a, b P) bool { return a == b },
	}
}

// FieldFunc builds a Property for a field compared with equal. Use it for
// fields that are not comparable with ==, such as slices or maps.
func FieldFunc[Root, P any](key string, get func(Root) P, equal func(a, b P) bool) Property[Root, P] {
	return Property[Root, P]{key: key, get: get, equal: equal}
}

// Key returns the property name.
func (p Property[Root, P]) Key() string { return p.key }

// Get projects the field out of v.
func (p Property[Root, P]) Get(v Root) P { return p.get(v) }

// Changed reports whether the projected field differs between old and new.
func (p Property[Root, P]) Changed(old, new Root) bool {
	return !p.equal(p.get(old), p.get(new))
}

// Selectors is a set of selectors deduplicated by key. Iteration follows
// insertion order; the first selector registered for a key wins.
type Selectors[Root any] struct {
	order []Selector[Root]
	index map[string]int
}

// NewSelectors builds a selector set.
func NewSelectors[Root any](selectors ...Selector[Root]) Selectors[Root] {
	s := Selectors[Root]{index: make(map[string]int, len(selectors))}
	for _, sel := range selectors {
		if sel == nil {
			continue
		}
		if _, ok := s.index[sel.Key()]; ok {
			continue
		}
		s.index[sel.Key()] = len(s.order)
		s.order = append(s.order, sel)
	}
	return s
}

// Len returns the number of distinct selectors.
func (s Selectors[Root]) Len() int { return len(s.order) }

// Contains reports whether a selector with the same key is in the set.
func (s Selectors[Root]) Contains(sel Selector[Root]) bool {
	if sel == nil {
		return false
	}
	_, ok := s.index[sel.Key()]
	return ok
}

// Keys returns the selector keys in insertion order.
func (s Selectors[Root]) Keys() []string {
	keys := make([]string, len(s.order))
	for i, sel := range s.order {
		keys[i] = sel.Key()
	}
	return keys
}

// Each calls fn for every selector in insertion order.
func (s Selectors[Root]) Each(fn func(Selector[Root])) {
	for _, sel := range s.order {
		fn(sel)
	}
}
