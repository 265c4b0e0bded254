package plan

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypePair_EqualityAndMapKey(t *testing.T) {
	a := PairOf[widgetSource, widget]()
	b := NewTypePair(reflect.TypeOf(widgetSource{}), reflect.TypeOf(widget{}))

	assert.Equal(t, a, b)

	seen := map[TypePair]int{a: 1}
	assert.Equal(t, 1, seen[b])
}

func TestTypePair_HashIsDirectional(t *testing.T) {
	forward := PairOf[widgetSource, widget]()
	backward := PairOf[widget, widgetSource]()

	assert.Equal(t, forward.Hash(), PairOf[widgetSource, widget]().Hash())
	assert.NotEqual(t, forward.Hash(), backward.Hash())
}

func TestTypePair_String(t *testing.T) {
	p := PairOf[widgetSource, widget]()

	assert.Contains(t, p.String(), "widgetSource")
	assert.Contains(t, p.String(), " -> ")
}

func TestResolutionContext_ChainAndCache(t *testing.T) {
	pair := PairOf[widgetSource, widget]()
	nested := PairOf[resolverInner, widget]()

	root := NewRootContext(pair, widgetSource{ID: 1})
	child := root.Child(nested, resolverInner{Value: "x"})

	assert.Nil(t, root.Parent())
	assert.Same(t, root, child.Parent())
	assert.Equal(t, nested, child.Pair())
	assert.Equal(t, resolverInner{Value: "x"}, child.Source())

	// The cache is shared across the chain and keyed by pair and source.
	child.CacheInstance(widget{ID: 7})

	got, ok := root.Child(nested, resolverInner{Value: "x"}).CachedInstance()
	require.True(t, ok)
	assert.Equal(t, widget{ID: 7}, got)

	_, ok = root.CachedInstance()
	assert.False(t, ok)
}
