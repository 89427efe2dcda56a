package store

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jwalitptl/clinic-console/internal/model"
)

func room(id, numero string) model.Room {
	return model.Room{Base: model.Base{ID: model.ID(id)}, Numero: numero}
}

func TestCollection(t *testing.T) {
	tests := []struct {
		name string
		run  func(c *Collection[model.Room])
		want []string
	}{
		{
			name: "replace keeps order",
			run: func(c *Collection[model.Room]) {
				c.Replace([]model.Room{room("3", "A"), room("1", "B"), room("2", "C")})
			},
			want: []string{"3", "1", "2"},
		},
		{
			name: "push front prepends",
			run: func(c *Collection[model.Room]) {
				c.Replace([]model.Room{room("1", "A")})
				c.PushFront(room("2", "B"))
			},
			want: []string{"2", "1"},
		},
		{
			name: "push front ignores known id",
			run: func(c *Collection[model.Room]) {
				c.Replace([]model.Room{room("1", "A"), room("2", "B")})
				assert.False(t, c.PushFront(room("2", "B2")))
			},
			want: []string{"1", "2"},
		},
		{
			name: "delete unknown id is a no-op",
			run: func(c *Collection[model.Room]) {
				c.Replace([]model.Room{room("1", "A")})
				assert.False(t, c.Delete("9"))
			},
			want: []string{"1"},
		},
		{
			name: "delete keeps remaining order",
			run: func(c *Collection[model.Room]) {
				c.Replace([]model.Room{room("1", "A"), room("2", "B"), room("3", "C")})
				assert.True(t, c.Delete("2"))
			},
			want: []string{"1", "3"},
		},
		{
			name: "stable sort",
			run: func(c *Collection[model.Room]) {
				c.Replace([]model.Room{room("1", "B"), room("2", "A"), room("3", "B"), room("4", "A")})
				c.SortStable(func(a, b model.Room) bool { return a.Numero < b.Numero })
			},
			want: []string{"2", "4", "1", "3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCollection[model.Room]()
			tt.run(c)
			assert.Equal(t, tt.want, ids(c.Values()))
			assert.Equal(t, len(tt.want), c.Len())
		})
	}
}

func TestCollectionSetUnknownIDIgnored(t *testing.T) {
	c := NewCollection[model.Room]()
	c.Replace([]model.Room{room("1", "A")})

	assert.False(t, c.Set("2", room("2", "B")))
	assert.True(t, c.Set("1", room("1", "Z")))
	r, ok := c.Get("1")
	assert.True(t, ok)
	assert.Equal(t, "Z", r.Numero)
	assert.Equal(t, 1, c.Len())
}

func TestCollectionReplaceCountsDropped(t *testing.T) {
	c := NewCollection[model.Room]()
	dropped := c.Replace([]model.Room{room("1", "A"), room("", "B"), room("1", "C")})
	assert.Equal(t, 2, dropped)
	assert.Equal(t, []string{"1"}, ids(c.Values()))
}
