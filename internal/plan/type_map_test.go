package plan

import (
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mapping-planner/internal/member"
)

type testOrder struct {
	ID           int
	Customer     string
	Note         string
	InternalFlag bool
}

type testOrderDTO struct {
	ID       int
	Customer string
	Extra    string
}

type testPerson struct {
	Name string
	Age  int
}

type testPersonDTO struct {
	Name  string
	Age   int
	Extra string
}

func mustField(t *testing.T, typ reflect.Type, name string) member.Accessor {
	t.Helper()

	acc, err := member.FieldByName(typ, name)
	require.NoError(t, err)

	return acc
}

func identityResolver() ValueResolver {
	return NewExprResolver(func(value any, _ *ResolutionContext) (any, error) {
		return value, nil
	})
}

func TestTypeMap_SealOrdering(t *testing.T) {
	src := reflect.TypeOf(testOrder{})
	dst := reflect.TypeOf(testPersonDTO{})
	tm := NewTypeMap(src, dst)

	// Declaration order A, B, C with explicit orders 3, 1, 2.
	a := tm.AddPropertyMap(mustField(t, dst, "Name"), identityResolver())
	b := tm.AddPropertyMap(mustField(t, dst, "Age"), identityResolver())
	c := tm.AddPropertyMap(mustField(t, dst, "Extra"), identityResolver())

	a.SetMappingOrder(3)
	b.SetMappingOrder(1)
	c.SetMappingOrder(2)

	tm.Seal()

	got := tm.GetPropertyMaps()
	require.Len(t, got, 3)
	assert.Equal(t, "Age", got[0].DestName())
	assert.Equal(t, "Extra", got[1].DestName())
	assert.Equal(t, "Name", got[2].DestName())
}

func TestTypeMap_SealIdempotent(t *testing.T) {
	dst := reflect.TypeOf(testPersonDTO{})
	tm := NewTypeMap(reflect.TypeOf(testPerson{}), dst)

	tm.AddPropertyMap(mustField(t, dst, "Name"), identityResolver()).SetMappingOrder(2)
	tm.AddPropertyMap(mustField(t, dst, "Age"), identityResolver()).SetMappingOrder(1)

	tm.Seal()
	first := tm.GetPropertyMaps()

	tm.Seal()
	second := tm.GetPropertyMaps()

	require.Equal(t, len(first), len(second))

	for i := range first {
		assert.Same(t, first[i], second[i])
	}
}

func TestTypeMap_DefaultOrderKeepsDeclarationOrder(t *testing.T) {
	dst := reflect.TypeOf(testPersonDTO{})
	tm := NewTypeMap(reflect.TypeOf(testPerson{}), dst)

	// Unordered maps keep declaration order and sort before ordered ones.
	tm.AddPropertyMap(mustField(t, dst, "Extra"), identityResolver())
	tm.AddPropertyMap(mustField(t, dst, "Age"), identityResolver())
	tm.AddPropertyMap(mustField(t, dst, "Name"), identityResolver()).SetMappingOrder(1)

	tm.Seal()

	got := tm.GetPropertyMaps()
	require.Len(t, got, 3)
	assert.Equal(t, "Extra", got[0].DestName())
	assert.Equal(t, "Age", got[1].DestName())
	assert.Equal(t, "Name", got[2].DestName())
}

type testAnimal struct{ Name string }

type testDog struct{ testAnimal }

type testAnimalDTO struct{ Name string }

type testDogDTO struct{ testAnimalDTO }

func TestTypeMap_DerivedTypeDispatch(t *testing.T) {
	src := reflect.TypeOf(testAnimal{})
	dst := reflect.TypeOf(testAnimalDTO{})
	srcSub := reflect.TypeOf(testDog{})
	dstSub := reflect.TypeOf(testDogDTO{})
	unrelated := reflect.TypeOf(testOrder{})

	tm := NewTypeMap(src, dst)

	assert.False(t, tm.HasDerivedTypesToInclude())

	tm.IncludeDerivedTypes(srcSub, dstSub)

	assert.True(t, tm.HasDerivedTypesToInclude())
	assert.True(t, tm.TypeHasBeenIncluded(srcSub, dstSub))
	assert.False(t, tm.TypeHasBeenIncluded(srcSub, dst))
	assert.Equal(t, dstSub, tm.GetDerivedTypeFor(srcSub))
	assert.Equal(t, dst, tm.GetDerivedTypeFor(unrelated))
}

func TestTypeMap_DerivedTypeFirstMatchWins(t *testing.T) {
	tm := NewTypeMap(reflect.TypeOf(testAnimal{}), reflect.TypeOf(testAnimalDTO{}))
	srcSub := reflect.TypeOf(testDog{})

	tm.IncludeDerivedTypes(srcSub, reflect.TypeOf(testDogDTO{}))
	tm.IncludeDerivedTypes(srcSub, reflect.TypeOf(testPersonDTO{}))

	assert.Equal(t, reflect.TypeOf(testDogDTO{}), tm.GetDerivedTypeFor(srcSub))
}

func TestTypeMap_DepthGuard(t *testing.T) {
	tm := NewTypeMap(reflect.TypeOf(testPerson{}), reflect.TypeOf(testPersonDTO{}))
	tm.SetMaxDepth(2)

	pair := tm.Pair()
	root := NewRootContext(pair, "a")
	second := root.Child(pair, "b")
	third := second.Child(pair, "c")

	assert.True(t, tm.ShouldAssignValue(root))
	assert.True(t, tm.ShouldAssignValue(second))
	assert.False(t, tm.ShouldAssignValue(third))
}

func TestTypeMap_DepthGuardOtherPairsDoNotCount(t *testing.T) {
	tm := NewTypeMap(reflect.TypeOf(testPerson{}), reflect.TypeOf(testPersonDTO{}))
	tm.SetMaxDepth(2)

	pair := tm.Pair()
	other := PairOf[testOrder, testOrderDTO]()

	root := NewRootContext(pair, "a")
	mid := root.Child(other, "b")
	leaf := mid.Child(pair, "c")

	// The repeated pair appears only twice along the chain.
	assert.True(t, tm.ShouldAssignValue(leaf))
}

func TestTypeMap_DepthGuardAllowsCachedInstances(t *testing.T) {
	tm := NewTypeMap(reflect.TypeOf(testPerson{}), reflect.TypeOf(testPersonDTO{}))
	tm.SetMaxDepth(1)

	pair := tm.Pair()
	root := NewRootContext(pair, "a")
	deep := root.Child(pair, "b").Child(pair, "c")

	require.False(t, tm.ShouldAssignValue(deep))

	// An already-materialized node is being reused, not re-descended.
	deep.CacheInstance(&testPersonDTO{})
	assert.True(t, tm.ShouldAssignValue(deep))
}

func TestTypeMap_ConditionSlotOverwrite(t *testing.T) {
	tm := NewTypeMap(reflect.TypeOf(testPerson{}), reflect.TypeOf(testPersonDTO{}))
	ctx := NewRootContext(tm.Pair(), "a")

	assert.True(t, tm.ShouldAssignValue(ctx), "no condition set")

	tm.SetCondition(func(*ResolutionContext) bool { return false })
	assert.False(t, tm.ShouldAssignValue(ctx))

	// SetMaxDepth replaces the custom condition.
	tm.SetMaxDepth(5)
	assert.True(t, tm.ShouldAssignValue(ctx))
}

func TestTypeMap_UnmappedDestinationMode(t *testing.T) {
	src := reflect.TypeOf(testPerson{})
	dst := reflect.TypeOf(testPersonDTO{})
	tm := NewTypeMap(src, dst)

	tm.AddPropertyMap(mustField(t, dst, "Name"), identityResolver())
	tm.AddPropertyMap(mustField(t, dst, "Age"), identityResolver())

	assert.Equal(t, []string{"Extra"}, tm.GetUnmappedPropertyNames())
}

func TestTypeMap_UnmappedSourceModeWithIgnores(t *testing.T) {
	src := reflect.TypeOf(testOrder{})
	dst := reflect.TypeOf(testOrderDTO{})
	tm := NewTypeMap(src, dst)
	tm.SetConfiguredMemberList(MemberListSource)
	tm.AddMemberNamePrefixToIgnore("Internal")

	// ID is mapped, Note is explicitly ignored, InternalFlag matches the
	// prefix, Customer remains.
	tm.AddPropertyMap(mustField(t, dst, "ID"), identityResolver())

	note, err := member.ReadableByName(src, "Note")
	require.NoError(t, err)
	tm.FindOrCreateSourceMemberConfigFor(note).Ignore()

	assert.Equal(t, []string{"Customer"}, tm.GetUnmappedPropertyNames())
}

func TestTypeMap_UnmappedSourceModeExcludesRedirected(t *testing.T) {
	src := reflect.TypeOf(testOrder{})
	dst := reflect.TypeOf(testOrderDTO{})
	tm := NewTypeMap(src, dst)
	tm.SetConfiguredMemberList(MemberListSource)
	tm.AddMemberNamePrefixToIgnore("Internal")

	tm.AddPropertyMap(mustField(t, dst, "ID"), identityResolver())

	// Customer feeds Extra through a custom expression.
	customer, err := member.ReadableByName(src, "Customer")
	require.NoError(t, err)

	pm := tm.AddPropertyMap(mustField(t, dst, "Extra"))
	resolver := NewMemberResolver(customer)
	pm.AssignCustomResolver(resolver)
	pm.AssignCustomExpression(resolver)
	pm.SetSourceMember(customer)

	assert.Equal(t, []string{"Note"}, tm.GetUnmappedPropertyNames())
}

func TestTypeMap_UseCustomMapperClearsMaps(t *testing.T) {
	dst := reflect.TypeOf(testPersonDTO{})
	tm := NewTypeMap(reflect.TypeOf(testPerson{}), dst)

	tm.AddPropertyMap(mustField(t, dst, "Name"), identityResolver())
	tm.AddPropertyMap(mustField(t, dst, "Age"), identityResolver())
	tm.AddPropertyMap(mustField(t, dst, "Extra"), identityResolver())

	require.Len(t, tm.GetPropertyMaps(), 3)

	tm.UseCustomMapper(func(source any, _ *ResolutionContext) (any, error) {
		return &testPersonDTO{}, nil
	})

	assert.Empty(t, tm.GetPropertyMaps())
	assert.NotNil(t, tm.CustomMapper())
}

func TestTypeMap_EqualityByPair(t *testing.T) {
	a := NewTypeMap(reflect.TypeOf(testPerson{}), reflect.TypeOf(testPersonDTO{}))
	b := NewTypeMap(reflect.TypeOf(testPerson{}), reflect.TypeOf(testPersonDTO{}))
	c := NewTypeMap(reflect.TypeOf(testOrder{}), reflect.TypeOf(testOrderDTO{}))

	// Contents differ, identity does not.
	a.AddPropertyMap(mustField(t, reflect.TypeOf(testPersonDTO{}), "Name"), identityResolver())

	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Hash(), b.Hash())
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(nil))
}

func TestTypeMap_HooksComposeInInsertionOrder(t *testing.T) {
	tm := NewTypeMap(reflect.TypeOf(testPerson{}), reflect.TypeOf(testPersonDTO{}))

	var calls []string

	tm.AddBeforeMapAction(func(any, any) { calls = append(calls, "first") })
	tm.AddBeforeMapAction(func(any, any) { calls = append(calls, "second") })
	tm.AddAfterMapAction(func(any, any) { calls = append(calls, "after") })

	tm.Seal()

	tm.BeforeMap()(nil, nil)
	tm.AfterMap()(nil, nil)

	assert.Equal(t, []string{"first", "second", "after"}, calls)
}

func TestTypeMap_MutationAfterSealPanics(t *testing.T) {
	dst := reflect.TypeOf(testPersonDTO{})
	tm := NewTypeMap(reflect.TypeOf(testPerson{}), dst)
	pm := tm.AddPropertyMap(mustField(t, dst, "Name"), identityResolver())

	tm.Seal()

	assert.Panics(t, func() { tm.AddPropertyMap(mustField(t, dst, "Age")) })
	assert.Panics(t, func() { tm.IncludeDerivedTypes(reflect.TypeOf(testDog{}), reflect.TypeOf(testDogDTO{})) })
	assert.Panics(t, func() { tm.AddBeforeMapAction(func(any, any) {}) })
	assert.Panics(t, func() { pm.SetMappingOrder(7) })
	assert.Panics(t, func() { pm.Ignore() })
}

func TestTypeMap_ConcurrentConfiguration(t *testing.T) {
	src := reflect.TypeOf(testOrder{})
	dst := reflect.TypeOf(testOrderDTO{})
	tm := NewTypeMap(src, dst)

	fields := member.Writable(dst)
	require.NotEmpty(t, fields)

	var wg sync.WaitGroup

	for i := 0; i < 16; i++ {
		wg.Add(1)

		go func(n int) {
			defer wg.Done()

			acc := fields[n%len(fields)]
			tm.FindOrCreatePropertyMapFor(acc).ChainResolvers(identityResolver())
			tm.AddBeforeMapAction(func(any, any) {})
			_ = tm.GetPropertyMaps()
		}(i)
	}

	wg.Wait()

	tm.Seal()
	assert.NotEmpty(t, tm.GetPropertyMaps())
}
