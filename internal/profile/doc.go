// Package profile defines the YAML mapping-profile format and applies it
// onto plan.TypeMaps.
//
// A profile is the human-reviewed configuration of the planner:
//   - type pairs with member redirects, ignores, and explicit ordering
//   - derived-type includes for polymorphic dispatch
//   - inheritance between pairs
//   - recursion depth limits and unmapped-member reporting policy
package profile
