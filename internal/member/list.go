package member

import (
	"fmt"
	"reflect"
	"strings"
)

// baseType strips pointer indirections.
func baseType(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	return t
}

// Fields returns accessors for all visible exported fields of t,
// including promoted fields of embedded structs.
func Fields(t reflect.Type) []Accessor {
	st := baseType(t)
	if st.Kind() != reflect.Struct {
		return nil
	}

	var out []Accessor

	for _, f := range reflect.VisibleFields(st) {
		if f.Anonymous || !f.IsExported() {
			continue
		}

		out = append(out, &fieldAccessor{
			name:      f.Name,
			typ:       f.Type,
			declaring: declaringType(st, f.Index),
			index:     f.Index,
		})
	}

	return out
}

// declaringType walks the field index path to the struct that directly
// declares the field.
func declaringType(root reflect.Type, index []int) reflect.Type {
	t := root
	for _, idx := range index[:len(index)-1] {
		t = baseType(t.Field(idx).Type)
	}

	return t
}

// Readable returns accessors for everything readable on t: exported fields
// plus exported zero-argument single-result methods.
func Readable(t reflect.Type) []Accessor {
	return append(Fields(t), getterMethods(t)...)
}

// Writable returns accessors for all writable members of t. Every exported
// field is writable through a pointer to the struct.
func Writable(t reflect.Type) []Accessor {
	return Fields(t)
}

func getterMethods(t reflect.Type) []Accessor {
	iface := t.Kind() == reflect.Interface

	// Concrete method types carry the receiver as In(0).
	wantIn := 1
	if iface {
		wantIn = 0
	}

	var out []Accessor

	for i := 0; i < t.NumMethod(); i++ {
		m := t.Method(i)
		if !m.IsExported() || m.Type.NumIn() != wantIn || m.Type.NumOut() != 1 {
			continue
		}

		out = append(out, &methodAccessor{
			name:        m.Name,
			typ:         m.Type.Out(0),
			declaring:   t,
			overridable: iface,
		})
	}

	return out
}

// FieldByName returns the accessor for the named exported field of t.
func FieldByName(t reflect.Type, name string) (Accessor, error) {
	for _, a := range Fields(t) {
		if a.Name() == name {
			return a, nil
		}
	}

	return nil, fmt.Errorf("%s.%s: %w", baseType(t), name, ErrNotFound)
}

// ReadableByName returns the accessor for the named field or getter of t.
func ReadableByName(t reflect.Type, name string) (Accessor, error) {
	for _, a := range Readable(t) {
		if a.Name() == name {
			return a, nil
		}
	}

	return nil, fmt.Errorf("%s.%s: %w", baseType(t), name, ErrNotFound)
}

// InterfaceMethod returns an overridable accessor for a zero-argument
// single-result method declared on an interface type.
func InterfaceMethod(iface reflect.Type, name string) (Accessor, error) {
	if iface.Kind() != reflect.Interface {
		return nil, fmt.Errorf("%s: not an interface type", iface)
	}

	m, ok := iface.MethodByName(name)
	if !ok {
		return nil, fmt.Errorf("%s.%s: %w", iface, name, ErrNotFound)
	}

	if m.Type.NumIn() != 0 || m.Type.NumOut() != 1 {
		return nil, fmt.Errorf("%s.%s: not a getter method", iface, name)
	}

	return &methodAccessor{
		name:        m.Name,
		typ:         m.Type.Out(0),
		declaring:   iface,
		overridable: true,
	}, nil
}

// Chain resolves a dotted member path like "Address.City" into the ordered
// accessor chain, hop by hop.
func Chain(t reflect.Type, path string) ([]Accessor, error) {
	parts := strings.Split(path, ".")
	out := make([]Accessor, 0, len(parts))
	cur := t

	for _, part := range parts {
		if part == "" {
			return nil, fmt.Errorf("invalid member path %q", path)
		}

		acc, err := ReadableByName(cur, part)
		if err != nil {
			return nil, fmt.Errorf("member path %q: %w", path, err)
		}

		out = append(out, acc)
		cur = acc.Type()
	}

	return out, nil
}

// Names returns the member names of the given accessors in order.
func Names(accessors []Accessor) []string {
	out := make([]string, len(accessors))
	for i, a := range accessors {
		out[i] = a.Name()
	}

	return out
}
