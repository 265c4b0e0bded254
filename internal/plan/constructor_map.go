package plan

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	ErrNotAFunction     = errors.New("constructor is not a function")
	ErrBadResult        = errors.New("constructor must return a value or a value and an error")
	ErrParameterCount   = errors.New("parameter plans do not match constructor arity")
	ErrNilParamResolver = errors.New("constructor parameter has no resolver")
)

// Constructor produces the destination instance for a mapping call.
type Constructor func(ctx *ResolutionContext) (any, error)

// CtorParam plans one constructor parameter: its name, type, and the
// resolver producing its value from the source object.
type CtorParam struct {
	Name     string
	Type     reflect.Type
	Resolver ValueResolver
}

// ConstructorMap plans invocation of a destination factory function with
// per-parameter value plans. Used when the destination type has no usable
// zero-value construction path. At most one per TypeMap; immutable after
// creation.
type ConstructorMap struct {
	fn     reflect.Value
	hasErr bool
	params []CtorParam
}

// NewConstructorMap inspects fn and pairs its parameters with the given
// plans. Parameter types left nil default to the function's signature.
//
// Supported factory shapes:
//   - func(args...) Destination
//   - func(args...) (Destination, error)
func NewConstructorMap(fn any, params ...CtorParam) (*ConstructorMap, error) {
	fnVal := reflect.ValueOf(fn)
	if !fnVal.IsValid() || fnVal.Kind() != reflect.Func {
		return nil, ErrNotAFunction
	}

	fnType := fnVal.Type()
	if fnType.NumIn() != len(params) {
		return nil, fmt.Errorf("%w: %d parameters, %d plans", ErrParameterCount, fnType.NumIn(), len(params))
	}

	hasErr := false

	switch fnType.NumOut() {
	case 1:
	case 2:
		// Exactly the error interface: a concrete error type here would
		// break the IsNil check on the call result.
		if fnType.Out(1) != errorType {
			return nil, ErrBadResult
		}

		hasErr = true
	default:
		return nil, ErrBadResult
	}

	ps := make([]CtorParam, len(params))
	copy(ps, params)

	for i := range ps {
		if ps[i].Resolver == nil {
			return nil, fmt.Errorf("%w: %s", ErrNilParamResolver, ps[i].Name)
		}

		if ps[i].Type == nil {
			ps[i].Type = fnType.In(i)
		}
	}

	return &ConstructorMap{fn: fnVal, hasErr: hasErr, params: ps}, nil
}

// Parameters returns the per-parameter plans in call order.
func (cm *ConstructorMap) Parameters() []CtorParam {
	out := make([]CtorParam, len(cm.params))
	copy(out, cm.params)

	return out
}

// Constructor returns the construction plan: resolve every parameter from
// the context's source object, then invoke the factory.
func (cm *ConstructorMap) Constructor() Constructor {
	return func(ctx *ResolutionContext) (any, error) {
		args := make([]reflect.Value, len(cm.params))

		for i, p := range cm.params {
			v, err := p.Resolver.Resolve(ctx.Source(), ctx)
			if err != nil {
				return nil, fmt.Errorf("constructor parameter %s: %w", p.Name, err)
			}

			if v == nil {
				args[i] = reflect.Zero(p.Type)
				continue
			}

			rv := reflect.ValueOf(v)
			if !rv.Type().AssignableTo(p.Type) {
				if !rv.Type().ConvertibleTo(p.Type) {
					return nil, fmt.Errorf("constructor parameter %s: cannot assign %s to %s", p.Name, rv.Type(), p.Type)
				}

				rv = rv.Convert(p.Type)
			}

			args[i] = rv
		}

		out := cm.fn.Call(args)
		if cm.hasErr && !out[1].IsNil() {
			return nil, out[1].Interface().(error)
		}

		return out[0].Interface(), nil
	}
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()
