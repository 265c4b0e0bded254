package plan

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"mapping-planner/internal/common"
	"mapping-planner/internal/member"
)

// ErrAmbiguousMemberMap signals more than one convention-level property map
// for the same destination member in an inheritance merge target.
var ErrAmbiguousMemberMap = errors.New("multiple property maps for destination member")

// ErrConstructorMapExists signals a second AddConstructorMap on one TypeMap.
var ErrConstructorMapExists = errors.New("type map already has a constructor map")

// MemberList selects which side's member set GetUnmappedPropertyNames
// computes against.
type MemberList int

const (
	// MemberListDestination checks that every destination member is covered.
	MemberListDestination MemberList = iota
	// MemberListSource checks that every source member is consumed.
	MemberListSource
)

// String returns a human-readable member list name.
func (m MemberList) String() string {
	switch m {
	case MemberListDestination:
		return "destination"
	case MemberListSource:
		return "source"
	default:
		return common.UnknownStr
	}
}

// Condition gates whether a mapping should proceed for a given context.
type Condition func(ctx *ResolutionContext) bool

// MapHook is a side-effecting lifecycle action bracketing the member-copy
// phase. The execution engine invokes it; this core only stores and
// composes hooks.
type MapHook func(source, destination any)

// MapperFunc fully replaces the member-by-member plan.
type MapperFunc func(source any, ctx *ResolutionContext) (any, error)

// TypeMap aggregates the full mapping plan for one TypePair: property maps,
// source member configs, the derived-type registry, lifecycle hooks,
// construction plan, and guard condition. It transitions once, irreversibly,
// from open (concurrency-safe configuration) to sealed (frozen, lock-free
// reads). Structural mutation after Seal panics.
type TypeMap struct {
	pair TypePair

	ownMaps        common.SyncList[*PropertyMap]
	inheritedMaps  common.SyncList[*PropertyMap]
	sourceConfigs  common.SyncList[*SourceMemberConfig]
	includedPairs  common.SyncList[TypePair]
	beforeActions  common.SyncList[MapHook]
	afterActions   common.SyncList[MapHook]
	ignorePrefixes common.SyncList[string]

	memberList       atomic.Int32
	maxDepth         atomic.Int64
	condition        atomic.Pointer[Condition]
	customMapper     atomic.Pointer[MapperFunc]
	customProjection atomic.Pointer[MapperFunc]

	ctorMu           sync.Mutex
	ctorMap          *ConstructorMap
	destCtor         Constructor
	destTypeOverride reflect.Type

	sealOnce       sync.Once
	sealed         atomic.Bool
	orderedMaps    []*PropertyMap
	beforeComposed MapHook
	afterComposed  MapHook
}

// NewTypeMap creates an open plan for the (source, destination) pair.
func NewTypeMap(source, destination reflect.Type) *TypeMap {
	return NewTypeMapFor(NewTypePair(source, destination))
}

// NewTypeMapFor creates an open plan for the pair.
func NewTypeMapFor(pair TypePair) *TypeMap {
	return &TypeMap{pair: pair}
}

// Pair returns the identity of this plan.
func (tm *TypeMap) Pair() TypePair { return tm.pair }

// SourceType returns the source side of the pair.
func (tm *TypeMap) SourceType() reflect.Type { return tm.pair.Source }

// DestinationType returns the destination side of the pair.
func (tm *TypeMap) DestinationType() reflect.Type { return tm.pair.Destination }

// SetConfiguredMemberList selects which side unmapped-member checks run
// against.
func (tm *TypeMap) SetConfiguredMemberList(ml MemberList) {
	tm.mustBeOpen()
	tm.memberList.Store(int32(ml))
}

// ConfiguredMemberList returns the configured member list policy.
func (tm *TypeMap) ConfiguredMemberList() MemberList {
	return MemberList(tm.memberList.Load())
}

// AddPropertyMap creates a property map for the destination member and
// chains the given resolvers onto it in order.
func (tm *TypeMap) AddPropertyMap(dest member.Accessor, resolvers ...ValueResolver) *PropertyMap {
	tm.mustBeOpen()

	pm := newPropertyMap(dest)
	pm.ChainResolvers(resolvers...)
	tm.ownMaps.Append(pm)

	return pm
}

// FindOrCreatePropertyMapFor returns the applicable property map for the
// destination member, creating an empty one when none applies.
func (tm *TypeMap) FindOrCreatePropertyMapFor(dest member.Accessor) *PropertyMap {
	if pm := tm.GetExistingPropertyMapFor(dest); pm != nil {
		return pm
	}

	return tm.AddPropertyMap(dest)
}

// GetExistingPropertyMapFor returns the property map already covering the
// destination member, or nil. Own maps match by name. Inherited maps match
// by name only when the inherited accessor is overridable or both accessors
// are declared by the same concrete type; an inherited map for a
// non-overridable member of an unrelated concrete type is not applicable.
func (tm *TypeMap) GetExistingPropertyMapFor(dest member.Accessor) *PropertyMap {
	for _, pm := range tm.ownMaps.Snapshot() {
		if pm.DestName() == dest.Name() {
			return pm
		}
	}

	for _, pm := range tm.inheritedMaps.Snapshot() {
		if pm.DestName() != dest.Name() {
			continue
		}

		if pm.Dest().Overridable() || pm.Dest().DeclaringType() == dest.DeclaringType() {
			return pm
		}
	}

	return nil
}

// GetPropertyMaps returns the plan entries. Post-seal this is the frozen,
// ordered array in O(1); pre-seal it is a freshly concatenated, unordered
// view and callers must not rely on its ordering.
func (tm *TypeMap) GetPropertyMaps() []*PropertyMap {
	if tm.sealed.Load() {
		return tm.orderedMaps
	}

	return append(tm.ownMaps.Snapshot(), tm.inheritedMaps.Snapshot()...)
}

// GetUnmappedPropertyNames computes the names in the configured member list
// that no mapped property map covers. In source-list mode, source members
// redirected through a custom expression and source members explicitly
// ignored via SourceMemberConfig are also excluded. Names matching a
// configured ignore prefix are dropped last.
func (tm *TypeMap) GetUnmappedPropertyNames() []string {
	covered := make(map[string]bool)

	for _, pm := range tm.GetPropertyMaps() {
		if pm.Mapped() {
			covered[pm.DestName()] = true
		}
	}

	var names []string

	if tm.ConfiguredMemberList() == MemberListDestination {
		for _, acc := range member.Writable(tm.pair.Destination) {
			if !covered[acc.Name()] {
				names = append(names, acc.Name())
			}
		}

		return tm.filterIgnoredPrefixes(names)
	}

	redirected := make(map[string]bool)

	for _, pm := range tm.ownMaps.Snapshot() {
		if pm.Mapped() && pm.CustomExpression() != nil && pm.SourceMember() != nil {
			redirected[pm.SourceMember().Name()] = true
		}
	}

	ignored := make(map[string]bool)

	for _, smc := range tm.sourceConfigs.Snapshot() {
		if smc.Ignored() {
			ignored[smc.MemberName()] = true
		}
	}

	for _, acc := range member.Readable(tm.pair.Source) {
		n := acc.Name()
		if covered[n] || redirected[n] || ignored[n] {
			continue
		}

		names = append(names, n)
	}

	return tm.filterIgnoredPrefixes(names)
}

func (tm *TypeMap) filterIgnoredPrefixes(names []string) []string {
	prefixes := tm.ignorePrefixes.Snapshot()
	if common.IsEmpty(prefixes) {
		return names
	}

	out := make([]string, 0, len(names))

	for _, n := range names {
		keep := true

		for _, p := range prefixes {
			if strings.HasPrefix(n, p) {
				keep = false
				break
			}
		}

		if keep {
			out = append(out, n)
		}
	}

	return out
}

// AddMemberNamePrefixToIgnore drops members whose name starts with prefix
// from unmapped-member reporting.
func (tm *TypeMap) AddMemberNamePrefixToIgnore(prefix string) {
	tm.mustBeOpen()
	tm.ignorePrefixes.Append(prefix)
}

// FindOrCreateSourceMemberConfigFor returns the config for the source
// member, creating it on first use. At most one per source member.
func (tm *TypeMap) FindOrCreateSourceMemberConfigFor(src member.Accessor) *SourceMemberConfig {
	existing, ok := common.FirstWhere(tm.sourceConfigs.Snapshot(), func(c *SourceMemberConfig) bool {
		return c.MemberName() == src.Name()
	})
	if ok {
		return existing
	}

	tm.mustBeOpen()

	c := newSourceMemberConfig(src)
	tm.sourceConfigs.Append(c)

	return c
}

// SourceMemberConfigs returns the configured source member entries.
func (tm *TypeMap) SourceMemberConfigs() []*SourceMemberConfig {
	return tm.sourceConfigs.Snapshot()
}

// IncludeDerivedTypes registers polymorphic dispatch from a derived source
// type to a specific derived destination type. Only one destination per
// distinct derived source type is honored; the first registration wins.
func (tm *TypeMap) IncludeDerivedTypes(derivedSource, derivedDestination reflect.Type) {
	tm.mustBeOpen()

	if !tm.TypeHasBeenIncluded(derivedSource, derivedDestination) {
		tm.includedPairs.Append(NewTypePair(derivedSource, derivedDestination))
	}
}

// TypeHasBeenIncluded reports whether the exact derived pair is registered.
func (tm *TypeMap) TypeHasBeenIncluded(derivedSource, derivedDestination reflect.Type) bool {
	p := NewTypePair(derivedSource, derivedDestination)

	for _, q := range tm.includedPairs.Snapshot() {
		if q == p {
			return true
		}
	}

	return false
}

// GetDerivedTypeFor returns the destination type registered for the derived
// source type, or this map's own destination type when none is registered.
// The execution engine uses this as the polymorphic dispatch table.
func (tm *TypeMap) GetDerivedTypeFor(derivedSourceType reflect.Type) reflect.Type {
	p, ok := common.FirstWhere(tm.includedPairs.Snapshot(), func(p TypePair) bool {
		return p.Source == derivedSourceType
	})
	if ok {
		return p.Destination
	}

	return tm.DestinationTypeToUse()
}

// HasDerivedTypesToInclude reports whether dispatch can re-route to a more
// specific destination type.
func (tm *TypeMap) HasDerivedTypesToInclude() bool {
	return tm.includedPairs.Len() > 0 || tm.DestinationTypeOverride() != nil
}

// IncludedDerivedTypes returns the registered derived pairs in insertion
// order.
func (tm *TypeMap) IncludedDerivedTypes() []TypePair {
	return tm.includedPairs.Snapshot()
}

// AddBeforeMapAction appends a hook run before the member-copy phase.
func (tm *TypeMap) AddBeforeMapAction(h MapHook) {
	tm.mustBeOpen()
	tm.beforeActions.Append(h)
}

// AddAfterMapAction appends a hook run after the member-copy phase.
func (tm *TypeMap) AddAfterMapAction(h MapHook) {
	tm.mustBeOpen()
	tm.afterActions.Append(h)
}

// BeforeMap returns the composed before-hook running the registered actions
// in insertion order.
func (tm *TypeMap) BeforeMap() MapHook {
	if tm.sealed.Load() {
		return tm.beforeComposed
	}

	return composeHooks(tm.beforeActions.Snapshot())
}

// AfterMap returns the composed after-hook running the registered actions
// in insertion order.
func (tm *TypeMap) AfterMap() MapHook {
	if tm.sealed.Load() {
		return tm.afterComposed
	}

	return composeHooks(tm.afterActions.Snapshot())
}

func composeHooks(hooks []MapHook) MapHook {
	return func(source, destination any) {
		for _, h := range hooks {
			h(source, destination)
		}
	}
}

// UseCustomMapper replaces the member-by-member plan with fn. Existing
// property maps are cleared; the two are mutually exclusive.
func (tm *TypeMap) UseCustomMapper(fn MapperFunc) {
	tm.mustBeOpen()
	tm.customMapper.Store(&fn)
	tm.ownMaps.Clear()
}

// CustomMapper returns the custom mapper override, if any.
func (tm *TypeMap) CustomMapper() MapperFunc {
	if p := tm.customMapper.Load(); p != nil {
		return *p
	}

	return nil
}

// UseCustomProjection replaces the member-by-member plan with a projection.
// Existing property maps are cleared.
func (tm *TypeMap) UseCustomProjection(fn MapperFunc) {
	tm.mustBeOpen()
	tm.customProjection.Store(&fn)
	tm.ownMaps.Clear()
}

// CustomProjection returns the custom projection override, if any.
func (tm *TypeMap) CustomProjection() MapperFunc {
	if p := tm.customProjection.Load(); p != nil {
		return *p
	}

	return nil
}

// SetCondition installs the guard evaluated by ShouldAssignValue. The slot
// holds exactly one guard: SetMaxDepth overwrites a previously set
// condition and vice versa.
func (tm *TypeMap) SetCondition(cond Condition) {
	tm.condition.Store(&cond)
}

// SetMaxDepth bounds re-descent into this map's type pair by installing the
// depth guard as the condition. Depth is counted by recurrence of the exact
// type pair along the context chain, not by object identity, so recursion
// through other type pairs is not detected.
func (tm *TypeMap) SetMaxDepth(depth int) {
	tm.maxDepth.Store(int64(depth))
	tm.SetCondition(func(ctx *ResolutionContext) bool {
		return tm.passesDepthCheck(ctx, depth)
	})
}

// MaxDepth returns the configured maximum depth, 0 meaning unbounded.
func (tm *TypeMap) MaxDepth() int {
	return int(tm.maxDepth.Load())
}

// passesDepthCheck allows a context whose identity is already cached (a
// materialized node being reused, not a re-descent); otherwise it counts
// occurrences of this map's pair along the ancestor chain, current node
// included, and denies past maxDepth.
func (tm *TypeMap) passesDepthCheck(ctx *ResolutionContext, maxDepth int) bool {
	if _, ok := ctx.CachedInstance(); ok {
		return true
	}

	depth := 1

	for c := ctx.Parent(); c != nil; c = c.Parent() {
		if c.Pair() == tm.pair {
			depth++
		}
	}

	return depth <= maxDepth
}

// ShouldAssignValue evaluates the installed condition; true when none set.
func (tm *TypeMap) ShouldAssignValue(ctx *ResolutionContext) bool {
	if p := tm.condition.Load(); p != nil {
		return (*p)(ctx)
	}

	return true
}

// SetDestinationConstructor installs an explicit construction plan. It takes
// priority over a constructor map and default construction.
func (tm *TypeMap) SetDestinationConstructor(fn Constructor) {
	tm.mustBeOpen()

	tm.ctorMu.Lock()
	defer tm.ctorMu.Unlock()

	tm.destCtor = fn
}

// AddConstructorMap declares the constructor-driven construction plan.
// At most one per TypeMap.
func (tm *TypeMap) AddConstructorMap(cm *ConstructorMap) error {
	tm.mustBeOpen()

	tm.ctorMu.Lock()
	defer tm.ctorMu.Unlock()

	if tm.ctorMap != nil {
		return fmt.Errorf("%w: %s", ErrConstructorMapExists, tm.pair)
	}

	tm.ctorMap = cm

	return nil
}

// ConstructorMap returns the declared constructor map, if any.
func (tm *TypeMap) ConstructorMap() *ConstructorMap {
	tm.ctorMu.Lock()
	defer tm.ctorMu.Unlock()

	return tm.ctorMap
}

// SetDestinationTypeOverride redirects construction to a more derived
// destination type, used for polymorphic construction.
func (tm *TypeMap) SetDestinationTypeOverride(t reflect.Type) {
	tm.mustBeOpen()

	tm.ctorMu.Lock()
	defer tm.ctorMu.Unlock()

	tm.destTypeOverride = t
}

// DestinationTypeOverride returns the construction override type, or nil.
func (tm *TypeMap) DestinationTypeOverride() reflect.Type {
	tm.ctorMu.Lock()
	defer tm.ctorMu.Unlock()

	return tm.destTypeOverride
}

// DestinationTypeToUse returns the type construction targets: the override
// when set, otherwise the pair's destination type.
func (tm *TypeMap) DestinationTypeToUse() reflect.Type {
	if o := tm.DestinationTypeOverride(); o != nil {
		return o
	}

	return tm.pair.Destination
}

// DestinationConstructor returns the construction plan, in priority order:
// the explicit constructor, the constructor map, then default construction
// of the destination type (or its override).
func (tm *TypeMap) DestinationConstructor() Constructor {
	tm.ctorMu.Lock()
	explicit, cm, override := tm.destCtor, tm.ctorMap, tm.destTypeOverride
	tm.ctorMu.Unlock()

	if explicit != nil {
		return explicit
	}

	if cm != nil {
		return cm.Constructor()
	}

	destType := tm.pair.Destination
	if override != nil {
		destType = override
	}

	return func(*ResolutionContext) (any, error) {
		return defaultConstruct(destType)
	}
}

func defaultConstruct(t reflect.Type) (any, error) {
	if t.Kind() == reflect.Ptr {
		return reflect.New(t.Elem()).Interface(), nil
	}

	return reflect.New(t).Elem().Interface(), nil
}

// InheritTypes copies the base map's derived-type registrations that are
// not already present; existing registrations are never overwritten.
func (tm *TypeMap) InheritTypes(base *TypeMap) {
	tm.mustBeOpen()

	for _, p := range base.includedPairs.Snapshot() {
		if !tm.TypeHasBeenIncluded(p.Source, p.Destination) {
			tm.includedPairs.Append(p)
		}
	}
}

// ApplyInheritedMap folds the base map's resolved mappings and hooks into
// this map. For a destination member mapped on both levels, the base map's
// custom resolution overwrites a convention-level map here (never this
// map's own custom logic, which is configured after inheritance applies);
// members mapped only on the base level join this plan as inherited maps.
// Hooks concatenate in insertion order, base after own. Returns an error
// when this map holds more than one property map for the same destination
// member, since the merge target would be ambiguous.
func (tm *TypeMap) ApplyInheritedMap(base *TypeMap) error {
	tm.mustBeOpen()

	for _, basePM := range base.GetPropertyMaps() {
		if !basePM.Mapped() {
			continue
		}

		existing, err := tm.singlePropertyMapFor(basePM.DestName())
		if err != nil {
			return err
		}

		switch {
		case existing != nil && basePM.HasCustomResolver():
			existing.inheritResolution(basePM)
		case existing == nil:
			tm.inheritedMaps.Append(newInheritedPropertyMap(basePM))
		}
	}

	for _, h := range base.beforeActions.Snapshot() {
		tm.beforeActions.Append(h)
	}

	for _, h := range base.afterActions.Snapshot() {
		tm.afterActions.Append(h)
	}

	return nil
}

func (tm *TypeMap) singlePropertyMapFor(name string) (*PropertyMap, error) {
	var found *PropertyMap

	for _, pm := range tm.GetPropertyMaps() {
		if pm.DestName() != name {
			continue
		}

		if found != nil {
			return nil, fmt.Errorf("%w: %s on %s", ErrAmbiguousMemberMap, name, tm.pair)
		}

		found = pm
	}

	return found, nil
}

// Seal freezes the plan: the ordered property-map list is computed once as
// the union of own and inherited maps sorted by mapping order (stable; ties
// keep insertion order), every property map becomes immutable, and hook
// composition is precomputed. Idempotent. Afterwards GetPropertyMaps is
// O(1), lock-free, and allocation-free.
func (tm *TypeMap) Seal() {
	tm.sealOnce.Do(func() {
		own := tm.ownMaps.Freeze()
		inherited := tm.inheritedMaps.Freeze()

		maps := make([]*PropertyMap, 0, len(own)+len(inherited))
		maps = append(maps, own...)
		maps = append(maps, inherited...)

		sort.SliceStable(maps, func(i, j int) bool {
			return maps[i].MappingOrder() < maps[j].MappingOrder()
		})

		for _, pm := range maps {
			pm.seal()
		}

		tm.orderedMaps = maps
		tm.beforeComposed = composeHooks(tm.beforeActions.Freeze())
		tm.afterComposed = composeHooks(tm.afterActions.Freeze())

		tm.sourceConfigs.Freeze()
		tm.includedPairs.Freeze()
		tm.ignorePrefixes.Freeze()

		tm.sealed.Store(true)
	})
}

// Sealed reports whether the plan is frozen.
func (tm *TypeMap) Sealed() bool { return tm.sealed.Load() }

// Equal reports whether both maps plan the same type pair. Identity is
// structural because plans are looked up by pair from an external registry.
func (tm *TypeMap) Equal(other *TypeMap) bool {
	return other != nil && tm.pair == other.pair
}

// Hash derives the map's hash from its type pair.
func (tm *TypeMap) Hash() uint64 { return tm.pair.Hash() }

// String renders the plan identity.
func (tm *TypeMap) String() string { return tm.pair.String() }

func (tm *TypeMap) mustBeOpen() {
	if tm.sealed.Load() {
		panic("plan: type map mutated after seal: " + tm.pair.String())
	}
}
