package profile

import (
	"fmt"

	"mapping-planner/internal/diagnostic"
)

// Recognized member_list values.
const (
	MemberListTarget = "target"
	MemberListSource = "source"
)

// Validate checks a parsed profile for structural problems: duplicate or
// conflicting member rules, duplicate pairs, unknown member_list values,
// and dangling inherit_from references. It never touches live types; type
// resolution problems surface later in Apply.
func Validate(f *File) diagnostic.Diagnostics {
	var diags diagnostic.Diagnostics

	if f.Version != "" && f.Version != "1" {
		diags.AddError("unsupported_version",
			fmt.Sprintf("unsupported profile version %q", f.Version), "", "")
	}

	if len(f.Mappings) == 0 {
		diags.AddWarning("empty_profile", "profile defines no mappings", "", "")
	}

	pairs := make(map[string]bool, len(f.Mappings))
	for i := range f.Mappings {
		pairs[f.Mappings[i].Key()] = true
	}

	seen := make(map[string]bool, len(f.Mappings))

	for i := range f.Mappings {
		m := &f.Mappings[i]
		validateMapping(m, seen, pairs, &diags)
	}

	return diags
}

func validateMapping(m *Mapping, seen, pairs map[string]bool, diags *diagnostic.Diagnostics) {
	pair := m.Key()

	if m.Source == "" || m.Target == "" {
		diags.AddError("incomplete_pair", "mapping needs both source and target", pair, "")
		return
	}

	if seen[pair] {
		diags.AddError("duplicate_pair", "pair mapped more than once", pair, "")
	}

	seen[pair] = true

	if m.MemberList != "" && m.MemberList != MemberListTarget && m.MemberList != MemberListSource {
		diags.AddError("bad_member_list",
			fmt.Sprintf("member_list must be %q or %q, got %q", MemberListTarget, MemberListSource, m.MemberList),
			pair, "")
	}

	if m.MaxDepth < 0 {
		diags.AddError("bad_max_depth", "max_depth must not be negative", pair, "")
	}

	if m.InheritFrom != nil {
		if !pairs[m.InheritFrom.Key()] {
			diags.AddError("unknown_base_pair",
				fmt.Sprintf("inherit_from references pair %q not defined in this profile", m.InheritFrom.Key()),
				pair, "")
		} else if m.InheritFrom.Key() == pair {
			diags.AddError("self_inheritance", "mapping cannot inherit from itself", pair, "")
		}
	}

	includes := make(map[string]bool, len(m.Include))

	for _, inc := range m.Include {
		if includes[inc.Key()] {
			diags.AddWarning("duplicate_include", "derived pair included more than once", pair, inc.Key())
		}

		includes[inc.Key()] = true
	}

	targets := make(map[string]bool, len(m.Members))

	for _, rule := range m.Members {
		validateMemberRule(pair, &rule, targets, diags)
	}
}

func validateMemberRule(pair string, rule *MemberRule, targets map[string]bool, diags *diagnostic.Diagnostics) {
	if rule.Target == "" {
		diags.AddError("missing_target", "member rule needs a target", pair, "")
		return
	}

	if targets[rule.Target] {
		diags.AddError("duplicate_member_rule", "target member configured more than once", pair, rule.Target)
	}

	targets[rule.Target] = true

	if rule.Ignore && rule.Source != "" {
		diags.AddError("conflicting_member_rule", "member rule cannot both ignore and redirect", pair, rule.Target)
	}

	if rule.Order < 0 {
		diags.AddError("bad_order", "explicit order must be positive", pair, rule.Target)
	}

	if !rule.Ignore && rule.Source == "" && rule.Order == 0 {
		diags.AddWarning("empty_member_rule", "member rule has no effect", pair, rule.Target)
	}
}
