package plan

import (
	"hash/fnv"
	"reflect"
)

// hashMultiplier is a fixed odd multiplier combining the two component
// hashes, chosen to avoid pathological clustering in power-of-two tables.
const hashMultiplier = 397

// TypePair is the identity of a (source type, destination type) mapping.
// It is comparable and usable as a map key; equality is structural on both
// components.
type TypePair struct {
	Source      reflect.Type
	Destination reflect.Type
}

// NewTypePair builds the identity key for a source/destination type pair.
func NewTypePair(source, destination reflect.Type) TypePair {
	return TypePair{Source: source, Destination: destination}
}

// PairOf is the generic convenience form of NewTypePair.
func PairOf[Source, Destination any]() TypePair {
	return TypePair{
		Source:      reflect.TypeOf((*Source)(nil)).Elem(),
		Destination: reflect.TypeOf((*Destination)(nil)).Elem(),
	}
}

// Hash derives a hash from both component type identities.
func (p TypePair) Hash() uint64 {
	return typeHash(p.Source)*hashMultiplier + typeHash(p.Destination)
}

// String renders the pair as "source -> destination".
func (p TypePair) String() string {
	return typeName(p.Source) + " -> " + typeName(p.Destination)
}

func typeHash(t reflect.Type) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(typeName(t)))

	return h.Sum64()
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}

	if t.PkgPath() != "" {
		return t.PkgPath() + "." + t.Name()
	}

	return t.String()
}
