package plan

import (
	"sync"
	"sync/atomic"

	"mapping-planner/internal/member"
)

// defaultMappingOrder is the order value of property maps without an
// explicit order. They sort ahead of explicitly ordered maps (which use
// positive orders) and keep declaration order among themselves.
const defaultMappingOrder = 0

// PropertyMap is the plan entry for one destination member: its accessor,
// its resolver chain, an optional custom expression and source member
// back-reference, and its mapping order. Mutable until the owning TypeMap
// is sealed; afterwards all reads are lock-free.
type PropertyMap struct {
	dest member.Accessor

	mu             sync.Mutex
	sealedFlag     atomic.Bool
	resolvers      []ValueResolver
	customExpr     ValueResolver
	customResolver bool
	sourceMember   member.Accessor
	order          int
	ignored        bool
}

func newPropertyMap(dest member.Accessor) *PropertyMap {
	return &PropertyMap{dest: dest, order: defaultMappingOrder}
}

// newInheritedPropertyMap copies a base map's resolution for reuse in a
// derived TypeMap's plan.
func newInheritedPropertyMap(base *PropertyMap) *PropertyMap {
	base.mu.Lock()
	defer base.mu.Unlock()

	return &PropertyMap{
		dest:           base.dest,
		resolvers:      append([]ValueResolver(nil), base.resolvers...),
		customExpr:     base.customExpr,
		customResolver: base.customResolver,
		sourceMember:   base.sourceMember,
		order:          base.order,
		ignored:        base.ignored,
	}
}

// Dest returns the destination member accessor.
func (pm *PropertyMap) Dest() member.Accessor { return pm.dest }

// DestName returns the destination member name.
func (pm *PropertyMap) DestName() string { return pm.dest.Name() }

// ChainResolvers appends resolvers to the chain in the given order.
func (pm *PropertyMap) ChainResolvers(resolvers ...ValueResolver) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.mustBeOpen()

	pm.resolvers = append(pm.resolvers, resolvers...)
}

// AssignCustomResolver installs explicit resolution logic, replacing any
// convention-derived chain.
func (pm *PropertyMap) AssignCustomResolver(r ValueResolver) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.mustBeOpen()

	pm.resolvers = []ValueResolver{r}
	pm.customResolver = true
}

// AssignCustomExpression records the custom transformation expression.
func (pm *PropertyMap) AssignCustomExpression(expr ValueResolver) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.mustBeOpen()

	pm.customExpr = expr
}

// CustomExpression returns the custom transformation expression, if any.
func (pm *PropertyMap) CustomExpression() ValueResolver {
	if pm.sealedFlag.Load() {
		return pm.customExpr
	}

	pm.mu.Lock()
	defer pm.mu.Unlock()

	return pm.customExpr
}

// HasCustomResolver reports whether explicit resolution logic was assigned.
func (pm *PropertyMap) HasCustomResolver() bool {
	if pm.sealedFlag.Load() {
		return pm.customResolver
	}

	pm.mu.Lock()
	defer pm.mu.Unlock()

	return pm.customResolver
}

// SetSourceMember records the source member this entry reads from.
func (pm *PropertyMap) SetSourceMember(src member.Accessor) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.mustBeOpen()

	pm.sourceMember = src
}

// SourceMember returns the source member back-reference, if any.
func (pm *PropertyMap) SourceMember() member.Accessor {
	if pm.sealedFlag.Load() {
		return pm.sourceMember
	}

	pm.mu.Lock()
	defer pm.mu.Unlock()

	return pm.sourceMember
}

// SetMappingOrder assigns an explicit mapping order.
func (pm *PropertyMap) SetMappingOrder(order int) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.mustBeOpen()

	pm.order = order
}

// MappingOrder returns the mapping order, defaultMappingOrder when unset.
func (pm *PropertyMap) MappingOrder() int {
	if pm.sealedFlag.Load() {
		return pm.order
	}

	pm.mu.Lock()
	defer pm.mu.Unlock()

	return pm.order
}

// Ignore marks the destination member as deliberately not mapped.
func (pm *PropertyMap) Ignore() {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.mustBeOpen()

	pm.ignored = true
}

// Ignored reports whether the destination member is explicitly ignored.
func (pm *PropertyMap) Ignored() bool {
	if pm.sealedFlag.Load() {
		return pm.ignored
	}

	pm.mu.Lock()
	defer pm.mu.Unlock()

	return pm.ignored
}

// Mapped reports whether the member is covered by this entry: it has
// resolution logic, a source member, or is explicitly ignored.
func (pm *PropertyMap) Mapped() bool {
	if pm.sealedFlag.Load() {
		return pm.mappedLocked()
	}

	pm.mu.Lock()
	defer pm.mu.Unlock()

	return pm.mappedLocked()
}

func (pm *PropertyMap) mappedLocked() bool {
	return len(pm.resolvers) > 0 || pm.customExpr != nil || pm.sourceMember != nil || pm.ignored
}

// Resolvers returns the resolver chain in order. An empty chain means
// resolution is delegated to the convention engine. Pre-seal callers get a
// snapshot copy; post-seal the frozen slice is returned without locking or
// allocating.
func (pm *PropertyMap) Resolvers() []ValueResolver {
	if pm.sealedFlag.Load() {
		return pm.resolvers
	}

	pm.mu.Lock()
	defer pm.mu.Unlock()

	out := make([]ValueResolver, len(pm.resolvers))
	copy(out, pm.resolvers)

	return out
}

// inheritResolution overwrites this map's chain and custom expression with
// the base map's. Lock order is derived then base; a base map never locks a
// derived one.
func (pm *PropertyMap) inheritResolution(base *PropertyMap) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.mustBeOpen()

	base.mu.Lock()
	defer base.mu.Unlock()

	pm.resolvers = append([]ValueResolver(nil), base.resolvers...)
	pm.customExpr = base.customExpr
	pm.customResolver = base.customResolver
}

func (pm *PropertyMap) seal() {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	pm.sealedFlag.Store(true)
}

func (pm *PropertyMap) mustBeOpen() {
	if pm.sealedFlag.Load() {
		panic("plan: property map mutated after seal: " + pm.dest.Name())
	}
}
