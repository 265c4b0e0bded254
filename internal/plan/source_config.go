package plan

import (
	"sync/atomic"

	"mapping-planner/internal/member"
)

// SourceMemberConfig holds per-source-member metadata that is independent
// of any single destination member. At most one per source member within a
// TypeMap.
type SourceMemberConfig struct {
	src     member.Accessor
	ignored atomic.Bool
}

func newSourceMemberConfig(src member.Accessor) *SourceMemberConfig {
	return &SourceMemberConfig{src: src}
}

// SourceMember returns the configured source member accessor.
func (c *SourceMemberConfig) SourceMember() member.Accessor { return c.src }

// MemberName returns the source member name.
func (c *SourceMemberConfig) MemberName() string { return c.src.Name() }

// Ignore marks the source member as deliberately unused.
func (c *SourceMemberConfig) Ignore() { c.ignored.Store(true) }

// Ignored reports whether the source member is marked ignored.
func (c *SourceMemberConfig) Ignored() bool { return c.ignored.Load() }
