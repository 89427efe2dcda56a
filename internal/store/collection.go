package store

import (
	"sort"

	"github.com/jwalitptl/clinic-console/internal/model"
)

// Collection is an insertion-ordered map keyed by record id. It is not safe
// for concurrent use; Store guards it.
type Collection[T model.Entity] struct {
	order []string
	items map[string]T
}

func NewCollection[T model.Entity]() *Collection[T] {
	return &Collection[T]{items: make(map[string]T)}
}

// Replace swaps the contents for records, keeping their order. Later
// duplicates of an id are dropped, as are records without an id; the number
// of dropped records is returned.
func (c *Collection[T]) Replace(records []T) int {
	c.order = make([]string, 0, len(records))
	c.items = make(map[string]T, len(records))
	dropped := 0
	for _, r := range records {
		id := r.GetID()
		if id == "" {
			dropped++
			continue
		}
		if _, dup := c.items[id]; dup {
			dropped++
			continue
		}
		c.order = append(c.order, id)
		c.items[id] = r
	}
	return dropped
}

// PushFront inserts r before every other record unless its id is already
// present. It reports whether r was inserted.
func (c *Collection[T]) PushFront(r T) bool {
	id := r.GetID()
	if id == "" {
		return false
	}
	if _, ok := c.items[id]; ok {
		return false
	}
	c.order = append([]string{id}, c.order...)
	c.items[id] = r
	return true
}

// Set replaces the record at id in place. Unknown ids are ignored.
func (c *Collection[T]) Set(id string, r T) bool {
	if _, ok := c.items[id]; !ok {
		return false
	}
	c.items[id] = r
	return true
}

func (c *Collection[T]) Delete(id string) bool {
	if _, ok := c.items[id]; !ok {
		return false
	}
	delete(c.items, id)
	for i, k := range c.order {
		if k == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true
}

func (c *Collection[T]) Get(id string) (T, bool) {
	r, ok := c.items[id]
	return r, ok
}

func (c *Collection[T]) Len() int {
	return len(c.order)
}

// Values returns a copy of the records in order.
func (c *Collection[T]) Values() []T {
	out := make([]T, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.items[id])
	}
	return out
}

// SortStable re-orders the collection; equal records keep their relative order.
func (c *Collection[T]) SortStable(less func(a, b T) bool) {
	sort.SliceStable(c.order, func(i, j int) bool {
		return less(c.items[c.order[i]], c.items[c.order[j]])
	})
}
