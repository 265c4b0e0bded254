package member

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	ErrNotFound   = errors.New("member not found")
	ErrReadOnly   = errors.New("member is read-only")
	ErrNotAStruct = errors.New("type is not a struct")
	ErrNilObject  = errors.New("object is nil")
)

// Accessor reads and writes one named member of an object.
type Accessor interface {
	// Name is the member name.
	Name() string

	// Type is the member's value type.
	Type() reflect.Type

	// DeclaringType is the type that declares the member: the struct the
	// field belongs to (the embedded struct for promoted fields), or the
	// interface type for interface-method accessors.
	DeclaringType() reflect.Type

	// Overridable reports whether a more derived type may redeclare the
	// member. Interface-method accessors are overridable; struct fields
	// and concrete getter methods are not.
	Overridable() bool

	// Read returns the member's value from obj.
	Read(obj any) (any, error)

	// Write sets the member's value on obj, which must be addressable
	// (a pointer for struct fields).
	Write(obj, value any) error
}

// fieldAccessor accesses a (possibly promoted) exported struct field.
type fieldAccessor struct {
	name      string
	typ       reflect.Type
	declaring reflect.Type
	index     []int
}

func (f *fieldAccessor) Name() string                { return f.name }
func (f *fieldAccessor) Type() reflect.Type          { return f.typ }
func (f *fieldAccessor) DeclaringType() reflect.Type { return f.declaring }
func (f *fieldAccessor) Overridable() bool           { return false }

func (f *fieldAccessor) Read(obj any) (any, error) {
	rv, err := structValue(obj)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.name, err)
	}

	fv, err := rv.FieldByIndexErr(f.index)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.name, err)
	}

	if !fv.CanInterface() {
		return nil, fmt.Errorf("read %s: promoted through unexported embedding", f.name)
	}

	return fv.Interface(), nil
}

func (f *fieldAccessor) Write(obj, value any) error {
	rv := reflect.ValueOf(obj)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("write %s: %w: need non-nil pointer to struct", f.name, ErrNilObject)
	}

	rv = rv.Elem()
	if rv.Kind() != reflect.Struct {
		return fmt.Errorf("write %s: %w", f.name, ErrNotAStruct)
	}

	// Walk the index path, allocating nil embedded pointers along the way.
	// Fields reached through unexported embedding are not settable.
	for _, idx := range f.index {
		if rv.Kind() == reflect.Ptr {
			if rv.IsNil() {
				if !rv.CanSet() {
					return fmt.Errorf("write %s: cannot allocate embedded %s through unexported field", f.name, rv.Type())
				}

				rv.Set(reflect.New(rv.Type().Elem()))
			}

			rv = rv.Elem()
		}

		rv = rv.Field(idx)
	}

	if !rv.CanSet() {
		return fmt.Errorf("write %s: promoted through unexported embedding", f.name)
	}

	val := reflect.ValueOf(value)
	if !val.IsValid() {
		rv.Set(reflect.Zero(f.typ))
		return nil
	}

	if !val.Type().AssignableTo(f.typ) {
		if !val.Type().ConvertibleTo(f.typ) {
			return fmt.Errorf("write %s: cannot assign %s to %s", f.name, val.Type(), f.typ)
		}

		val = val.Convert(f.typ)
	}

	rv.Set(val)

	return nil
}

// methodAccessor accesses a zero-argument, single-result getter method.
// For interface types the accessor is overridable.
type methodAccessor struct {
	name        string
	typ         reflect.Type
	declaring   reflect.Type
	overridable bool
}

func (m *methodAccessor) Name() string                { return m.name }
func (m *methodAccessor) Type() reflect.Type          { return m.typ }
func (m *methodAccessor) DeclaringType() reflect.Type { return m.declaring }
func (m *methodAccessor) Overridable() bool           { return m.overridable }

func (m *methodAccessor) Read(obj any) (any, error) {
	rv := reflect.ValueOf(obj)
	if !rv.IsValid() {
		return nil, fmt.Errorf("read %s: %w", m.name, ErrNilObject)
	}

	fn := rv.MethodByName(m.name)
	if !fn.IsValid() {
		// Pointer-receiver getters are not in a value's method set; retry
		// on an addressable copy.
		addr := reflect.New(rv.Type())
		addr.Elem().Set(rv)
		fn = addr.MethodByName(m.name)

		if !fn.IsValid() {
			return nil, fmt.Errorf("read %s: %w", m.name, ErrNotFound)
		}
	}

	out := fn.Call(nil)

	return out[0].Interface(), nil
}

func (m *methodAccessor) Write(any, any) error {
	return fmt.Errorf("write %s: %w", m.name, ErrReadOnly)
}

// structValue dereferences obj down to its struct value.
func structValue(obj any) (reflect.Value, error) {
	rv := reflect.ValueOf(obj)
	if !rv.IsValid() {
		return reflect.Value{}, ErrNilObject
	}

	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return reflect.Value{}, ErrNilObject
		}

		rv = rv.Elem()
	}

	if rv.Kind() != reflect.Struct {
		return reflect.Value{}, ErrNotAStruct
	}

	return rv, nil
}
