// Package collection provides id-indexed, ordered containers for timetable
// entities and the sorted/merging variants built on top of them.
package collection

import (
	"fmt"
	"iter"
	"reflect"
	"slices"
	"time"

	"untiscal/internal/model"
)

// Predicate selects entities in Find and FindAll.
type Predicate[T any] func(T) bool

// Collection maps entity ids to entities. Iteration follows insertion order;
// overwriting an id keeps its original position.
type Collection[T model.Entity] struct {
	items map[int]T
	order []int
}

// New builds a collection from items. Later items overwrite earlier ones with
// the same id.
func New[T model.Entity](items ...T) *Collection[T] {
	c := &Collection[T]{items: make(map[int]T, len(items))}
	for _, it := range items {
		c.Add(it)
	}
	return c
}

// Add inserts or overwrites by the entity's own id.
func (c *Collection[T]) Add(e T) *Collection[T] {
	id := e.EntityID()
	if _, ok := c.items[id]; !ok {
		c.order = append(c.order, id)
	}
	c.items[id] = e
	return c
}

// Remove deletes e's slot; absent ids are ignored.
func (c *Collection[T]) Remove(e T) *Collection[T] {
	return c.RemoveID(e.EntityID())
}

// RemoveID deletes the slot for id; absent ids are ignored.
func (c *Collection[T]) RemoveID(id int) *Collection[T] {
	if _, ok := c.items[id]; !ok {
		return c
	}
	delete(c.items, id)
	if i := slices.Index(c.order, id); i >= 0 {
		c.order = slices.Delete(c.order, i, i+1)
	}
	return c
}

func (c *Collection[T]) Get(id int) (T, bool) {
	e, ok := c.items[id]
	return e, ok
}

// Find returns the first entity, in collection order, matching every
// predicate. With no predicates the first entity is returned.
func (c *Collection[T]) Find(preds ...Predicate[T]) (T, bool) {
	for _, id := range c.order {
		e := c.items[id]
		if matchAll(e, preds) {
			return e, true
		}
	}
	var zero T
	return zero, false
}

// FindAll returns a snapshot of every entity matching all predicates, in
// collection order. With no predicates it returns every entity.
func (c *Collection[T]) FindAll(preds ...Predicate[T]) []T {
	out := make([]T, 0, len(c.order))
	for _, id := range c.order {
		e := c.items[id]
		if matchAll(e, preds) {
			out = append(out, e)
		}
	}
	return out
}

func (c *Collection[T]) Count() int {
	return len(c.order)
}

// IDs returns the ids in collection order.
func (c *Collection[T]) IDs() []int {
	return slices.Clone(c.order)
}

// All iterates the entities in collection order. The sequence can be ranged
// over any number of times.
func (c *Collection[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, id := range c.order {
			if !yield(c.items[id]) {
				return
			}
		}
	}
}

// sortStable reorders the collection with cmp, keeping insertion order for ties.
func (c *Collection[T]) sortStable(cmp func(a, b T) int) {
	slices.SortStableFunc(c.order, func(a, b int) int {
		return cmp(c.items[a], c.items[b])
	})
}

func matchAll[T any](e T, preds []Predicate[T]) bool {
	for _, p := range preds {
		if p != nil && !p(e) {
			return false
		}
	}
	return true
}

// Where builds a predicate from (attribute name, expected value) pairs. Every
// pair must match; an unknown attribute never matches. An empty map matches
// every entity.
//
// A string expectation is compared against the attribute's textual form, so
// values taken straight from a query string work for ints, bools and dates.
func Where[T model.Attributed](criteria map[string]any) Predicate[T] {
	return func(e T) bool {
		for name, want := range criteria {
			got, ok := e.Attr(name)
			if !ok || !attrEqual(got, want) {
				return false
			}
		}
		return true
	}
}

func attrEqual(got, want any) bool {
	if s, ok := want.(string); ok {
		if _, isString := got.(string); !isString {
			return textEqual(got, s)
		}
	}
	if gt, ok := got.(time.Time); ok {
		wt, ok := want.(time.Time)
		return ok && gt.Equal(wt)
	}
	return reflect.DeepEqual(got, want)
}

func textEqual(got any, want string) bool {
	switch v := got.(type) {
	case nil:
		return want == "" || want == "null"
	case time.Time:
		return v.Format(time.RFC3339) == want || v.Format("2006-01-02") == want
	default:
		return fmt.Sprint(v) == want
	}
}

// NullsLast compares two optional values with cmp. A nil operand sorts after
// every non-nil operand; two nils compare equal. Every sorted collection uses
// it so records with missing sort keys end up at the back.
func NullsLast[V any](a, b *V, cmp func(V, V) int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return cmp(*a, *b)
}

// timeKey treats the zero time as a missing value.
func timeKey(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func byTime[T any](key func(T) time.Time) func(a, b T) int {
	return func(a, b T) int {
		return NullsLast(timeKey(key(a)), timeKey(key(b)), time.Time.Compare)
	}
}
