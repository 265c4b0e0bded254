package plan

// ResolutionContext is one node of the call chain of a single top-level
// mapping invocation: the current type pair, the source value being mapped,
// a parent pointer, and the per-invocation instance cache. The execution
// engine owns and mutates the chain; this core only reads it while
// evaluating guard conditions.
type ResolutionContext struct {
	pair   TypePair
	source any
	parent *ResolutionContext

	// instanceCache holds destination instances already produced during this
	// invocation, keyed by context identity. Shared by the whole chain.
	instanceCache map[ContextKey]any
}

// ContextKey is the identity of a context node inside the instance cache.
// Source values placed in keys must be comparable.
type ContextKey struct {
	Pair   TypePair
	Source any
}

// NewRootContext starts a call chain for a top-level mapping invocation.
func NewRootContext(pair TypePair, source any) *ResolutionContext {
	return &ResolutionContext{
		pair:          pair,
		source:        source,
		instanceCache: make(map[ContextKey]any),
	}
}

// Child pushes a nested mapping call onto the chain. The child shares the
// root's instance cache.
func (c *ResolutionContext) Child(pair TypePair, source any) *ResolutionContext {
	return &ResolutionContext{
		pair:          pair,
		source:        source,
		parent:        c,
		instanceCache: c.instanceCache,
	}
}

// Pair returns the type pair being mapped at this node.
func (c *ResolutionContext) Pair() TypePair { return c.pair }

// Source returns the source value being mapped at this node.
func (c *ResolutionContext) Source() any { return c.source }

// Parent returns the calling context, or nil at the chain root.
func (c *ResolutionContext) Parent() *ResolutionContext { return c.parent }

// Key returns this node's identity for instance-cache lookups.
func (c *ResolutionContext) Key() ContextKey {
	return ContextKey{Pair: c.pair, Source: c.source}
}

// CacheInstance records a produced destination instance for this node.
func (c *ResolutionContext) CacheInstance(destination any) {
	c.instanceCache[c.Key()] = destination
}

// CachedInstance returns the destination instance already produced for this
// node's identity, if any.
func (c *ResolutionContext) CachedInstance() (any, bool) {
	v, ok := c.instanceCache[c.Key()]
	return v, ok
}
