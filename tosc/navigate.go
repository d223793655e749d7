package tosc

import (
	"iter"
	"regexp"
)

// Predicate selects controls during a search.
type Predicate func(*Control) bool

// Walk visits root and its descendants depth-first in pre-order, each
// node before its children and children in document order. Returning
// false from fn skips the subtree below that control.
func Walk(root *Control, fn func(*Control) bool) {
	if root == nil || !fn(root) {
		return
	}
	for _, c := range root.children {
		Walk(c, fn)
	}
}

// visit is a pre-order traversal that stops entirely once fn returns
// false. It reports whether the traversal ran to completion.
func visit(c *Control, fn func(*Control) bool) bool {
	if !fn(c) {
		return false
	}
	for _, ch := range c.children {
		if !visit(ch, fn) {
			return false
		}
	}
	return true
}

// FindFirst returns the first control in pre-order that matches pred,
// or nil.
func FindFirst(root *Control, pred Predicate) *Control {
	var found *Control
	if root == nil {
		return nil
	}
	visit(root, func(c *Control) bool {
		if pred(c) {
			found = c
			return false
		}
		return true
	})
	return found
}

// FindAll returns a lazy sequence of every control matching pred, in
// pre-order. Each range over the sequence starts a fresh traversal, so
// it may be consumed any number of times. Mutating the tree while
// ranging over it is not supported.
func FindAll(root *Control, pred Predicate) iter.Seq[*Control] {
	return func(yield func(*Control) bool) {
		if root == nil {
			return
		}
		visit(root, func(c *Control) bool {
			if pred(c) {
				return yield(c)
			}
			return true
		})
	}
}

// ============================================================
// Predicates
// ============================================================

// Any matches every control.
func Any(*Control) bool { return true }

// ByType matches controls of type t.
func ByType(t ControlType) Predicate {
	return func(c *Control) bool { return c.typ == t }
}

// ByName matches controls whose "name" property equals name.
func ByName(name string) Predicate {
	return func(c *Control) bool {
		d, ok := c.Get("name")
		s, err := d.AsStr()
		return ok && err == nil && s == name
	}
}

// MatchName matches controls whose whole "name" property matches re.
func MatchName(re *regexp.Regexp) Predicate {
	full := regexp.MustCompile(`^(?:` + re.String() + `)$`)
	return func(c *Control) bool {
		d, ok := c.Get("name")
		s, err := d.AsStr()
		return ok && err == nil && full.MatchString(s)
	}
}

// ByID matches the control with the given ID.
func ByID(id string) Predicate {
	return func(c *Control) bool { return c.id == id }
}

// ByProperty matches controls holding a property equal to d.
func ByProperty(key string, d Datum) Predicate {
	return func(c *Control) bool {
		got, ok := c.Get(key)
		return ok && got.Equal(d)
	}
}

// HasProperty matches controls that carry key at all.
func HasProperty(key string) Predicate {
	return func(c *Control) bool {
		_, ok := c.Property(key)
		return ok
	}
}

// And matches controls accepted by every predicate.
func And(preds ...Predicate) Predicate {
	return func(c *Control) bool {
		for _, p := range preds {
			if !p(c) {
				return false
			}
		}
		return true
	}
}
