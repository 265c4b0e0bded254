package profile

import "errors"

// File represents the root of a YAML mapping profile.
// This is the authoritative, human-reviewed mapping configuration.
type File struct {
	// Version of the profile schema (for future compatibility).
	Version string `yaml:"version,omitempty" json:"version,omitempty"`

	// Mappings is a list of type pair mappings.
	Mappings []Mapping `yaml:"mappings" json:"mappings"`
}

// Mapping configures the plan for one source/target type pair.
type Mapping struct {
	// Source is the registered name of the source type.
	Source string `yaml:"source" json:"source"`

	// Target is the registered name of the target type.
	Target string `yaml:"target" json:"target"`

	// MemberList selects which side unmapped-member checks run against:
	// "target" (default) or "source".
	MemberList string `yaml:"member_list,omitempty" json:"member_list,omitempty"`

	// MaxDepth bounds recursive re-descent into this type pair.
	// 0 means unbounded.
	MaxDepth int `yaml:"max_depth,omitempty" json:"max_depth,omitempty"`

	// IgnorePrefixes drops members with these name prefixes from
	// unmapped-member reporting.
	IgnorePrefixes StringArray `yaml:"ignore_prefixes,omitempty" json:"ignore_prefixes,omitempty"`

	// InheritFrom folds another pair's resolved mappings, includes, and
	// hooks into this one. The referenced pair must be defined in the
	// same profile.
	InheritFrom *PairRef `yaml:"inherit_from,omitempty" json:"inherit_from,omitempty"`

	// Include registers derived-type dispatch pairs.
	Include []PairRef `yaml:"include,omitempty" json:"include,omitempty"`

	// Members configures individual target members.
	Members []MemberRule `yaml:"members,omitempty" json:"members,omitempty"`

	// IgnoreSource marks source members as deliberately unused.
	IgnoreSource StringArray `yaml:"ignore_source,omitempty" json:"ignore_source,omitempty"`
}

// PairRef names a source/target type pair.
type PairRef struct {
	Source string `yaml:"source" json:"source"`
	Target string `yaml:"target" json:"target"`
}

// MemberRule configures one target member of a mapping.
type MemberRule struct {
	// Target is the target member name.
	Target string `yaml:"target" json:"target"`

	// Source is a dotted member path on the source type
	// (e.g. "Name" or "Address.City"). Mutually exclusive with Ignore.
	Source string `yaml:"source,omitempty" json:"source,omitempty"`

	// Ignore marks the target member as deliberately not mapped.
	Ignore bool `yaml:"ignore,omitempty" json:"ignore,omitempty"`

	// Order assigns an explicit mapping order. Positive; members without
	// an order run first, in declaration order.
	Order int `yaml:"order,omitempty" json:"order,omitempty"`
}

// StringArray is a string slice that can be unmarshaled from a single
// string or a list.
type StringArray []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *StringArray) UnmarshalYAML(unmarshal func(any) error) error {
	var single string
	if err := unmarshal(&single); err == nil {
		*s = []string{single}
		return nil
	}

	var multi []string
	if err := unmarshal(&multi); err == nil {
		*s = multi
		return nil
	}

	return errors.New("expected string or list of strings")
}

// Key identifies the mapping's pair within a profile.
func (m *Mapping) Key() string {
	return m.Source + "->" + m.Target
}

// Key identifies the referenced pair within a profile.
func (p *PairRef) Key() string {
	return p.Source + "->" + p.Target
}
