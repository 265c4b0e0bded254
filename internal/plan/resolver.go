package plan

import (
	"fmt"
	"reflect"

	"mapping-planner/internal/member"
)

// ValueResolver produces a value for one destination member. Resolvers
// compose by chaining: each receives the previous resolver's output, the
// first in the chain receives the source object. The closed variant set is
// MemberResolver (member chain), ExprResolver (custom expression), and any
// user-supplied resolver instance chained as-is.
type ValueResolver interface {
	Resolve(value any, ctx *ResolutionContext) (any, error)
}

// MemberResolver reads an ordered member chain off the incoming value.
// A nil value mid-chain resolves to nil rather than an error.
type MemberResolver struct {
	members []member.Accessor
}

// NewMemberResolver builds a resolver walking the given accessors in order.
func NewMemberResolver(members ...member.Accessor) *MemberResolver {
	return &MemberResolver{members: members}
}

// Members returns the accessor chain in order.
func (r *MemberResolver) Members() []member.Accessor {
	out := make([]member.Accessor, len(r.members))
	copy(out, r.members)

	return out
}

// Resolve walks the member chain starting from value.
func (r *MemberResolver) Resolve(value any, _ *ResolutionContext) (any, error) {
	cur := value

	for _, m := range r.members {
		if isNil(cur) {
			return nil, nil
		}

		v, err := m.Read(cur)
		if err != nil {
			return nil, fmt.Errorf("resolve member %s: %w", m.Name(), err)
		}

		cur = v
	}

	return cur, nil
}

// isNil catches typed nils boxed in a non-nil interface, which a plain
// == nil comparison misses.
func isNil(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}

// ExprFunc is a custom transformation expression over the incoming value.
type ExprFunc func(value any, ctx *ResolutionContext) (any, error)

// ExprResolver evaluates a custom expression against the incoming value.
type ExprResolver struct {
	fn ExprFunc
}

// NewExprResolver wraps fn as a chainable resolver.
func NewExprResolver(fn ExprFunc) *ExprResolver {
	return &ExprResolver{fn: fn}
}

// Resolve applies the expression.
func (r *ExprResolver) Resolve(value any, ctx *ResolutionContext) (any, error) {
	return r.fn(value, ctx)
}
