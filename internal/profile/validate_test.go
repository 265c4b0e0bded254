package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mapping-planner/internal/diagnostic"
)

func codes(diags diagnostic.Diagnostics) []string {
	var out []string
	for _, d := range diags.All() {
		out = append(out, d.Code)
	}

	return out
}

func TestValidate_CleanProfile(t *testing.T) {
	f, err := Parse([]byte(`
mappings:
  - source: Order
    target: OrderView
    members:
      - target: CustomerName
        source: Customer.Name
`))
	require.NoError(t, err)

	diags := Validate(f)
	assert.False(t, diags.HasErrors())
	assert.Empty(t, diags.All())
}

func TestValidate_EmptyProfileWarns(t *testing.T) {
	diags := Validate(&File{Version: "1"})

	assert.False(t, diags.HasErrors())
	assert.Contains(t, codes(diags), "empty_profile")
}

func TestValidate_UnsupportedVersion(t *testing.T) {
	diags := Validate(&File{Version: "2", Mappings: []Mapping{{Source: "A", Target: "B"}}})

	assert.True(t, diags.HasErrors())
	assert.Contains(t, codes(diags), "unsupported_version")
}

func TestValidate_PairProblems(t *testing.T) {
	f := &File{Version: "1", Mappings: []Mapping{
		{Source: "A"},
		{Source: "A", Target: "B"},
		{Source: "A", Target: "B"},
		{Source: "A", Target: "C", MemberList: "both"},
		{Source: "A", Target: "D", MaxDepth: -1},
	}}

	got := codes(Validate(f))

	assert.Contains(t, got, "incomplete_pair")
	assert.Contains(t, got, "duplicate_pair")
	assert.Contains(t, got, "bad_member_list")
	assert.Contains(t, got, "bad_max_depth")
}

func TestValidate_Inheritance(t *testing.T) {
	f := &File{Version: "1", Mappings: []Mapping{
		{Source: "A", Target: "B", InheritFrom: &PairRef{Source: "X", Target: "Y"}},
		{Source: "C", Target: "D", InheritFrom: &PairRef{Source: "C", Target: "D"}},
	}}

	got := codes(Validate(f))

	assert.Contains(t, got, "unknown_base_pair")
	assert.Contains(t, got, "self_inheritance")
}

func TestValidate_DuplicateInclude(t *testing.T) {
	f := &File{Version: "1", Mappings: []Mapping{
		{Source: "A", Target: "B", Include: []PairRef{
			{Source: "X", Target: "Y"},
			{Source: "X", Target: "Y"},
		}},
	}}

	diags := Validate(f)

	assert.False(t, diags.HasErrors())
	assert.Contains(t, codes(diags), "duplicate_include")
}

func TestValidate_MemberRules(t *testing.T) {
	f := &File{Version: "1", Mappings: []Mapping{
		{Source: "A", Target: "B", Members: []MemberRule{
			{},
			{Target: "Name", Source: "X"},
			{Target: "Name", Source: "Y"},
			{Target: "Both", Source: "X", Ignore: true},
			{Target: "Neg", Order: -1},
			{Target: "Empty"},
		}},
	}}

	got := codes(Validate(f))

	assert.Contains(t, got, "missing_target")
	assert.Contains(t, got, "duplicate_member_rule")
	assert.Contains(t, got, "conflicting_member_rule")
	assert.Contains(t, got, "bad_order")
	assert.Contains(t, got, "empty_member_rule")
}
