package profile

import (
	"fmt"
	"reflect"

	"golang.org/x/sync/errgroup"

	"mapping-planner/internal/match"
	"mapping-planner/internal/member"
	"mapping-planner/internal/plan"
)

// TypeSet names the Go types a profile may reference.
type TypeSet map[string]reflect.Type

// Register adds T under name.
func Register[T any](ts TypeSet, name string) {
	ts[name] = reflect.TypeOf((*T)(nil)).Elem()
}

// Apply configures one TypeMap per profile mapping, folds inheritance, and
// seals every map. Independent mappings are configured concurrently; the
// open-phase plan collections tolerate that. The returned maps are sealed
// and ready for execution use.
func Apply(f *File, types TypeSet) ([]*plan.TypeMap, error) {
	built := make([]*plan.TypeMap, len(f.Mappings))

	var g errgroup.Group

	for i := range f.Mappings {
		i := i
		g.Go(func() error {
			tm, err := applyMapping(&f.Mappings[i], types)
			if err != nil {
				return err
			}

			built[i] = tm

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Inheritance folds after all pairs exist, base before derived.
	index := make(map[string]*plan.TypeMap, len(built))
	for i := range f.Mappings {
		index[f.Mappings[i].Key()] = built[i]
	}

	for i := range f.Mappings {
		m := &f.Mappings[i]
		if m.InheritFrom == nil {
			continue
		}

		base, ok := index[m.InheritFrom.Key()]
		if !ok {
			return nil, fmt.Errorf("mapping %s inherits from unknown pair %s", m.Key(), m.InheritFrom.Key())
		}

		built[i].InheritTypes(base)

		if err := built[i].ApplyInheritedMap(base); err != nil {
			return nil, fmt.Errorf("mapping %s: %w", m.Key(), err)
		}
	}

	for _, tm := range built {
		tm.Seal()
	}

	return built, nil
}

func applyMapping(m *Mapping, types TypeSet) (*plan.TypeMap, error) {
	src, ok := types[m.Source]
	if !ok {
		return nil, fmt.Errorf("mapping %s: unknown source type %q%s", m.Key(), m.Source, suggestType(m.Source, types))
	}

	dst, ok := types[m.Target]
	if !ok {
		return nil, fmt.Errorf("mapping %s: unknown target type %q%s", m.Key(), m.Target, suggestType(m.Target, types))
	}

	tm := plan.NewTypeMap(src, dst)

	if m.MemberList == MemberListSource {
		tm.SetConfiguredMemberList(plan.MemberListSource)
	}

	if m.MaxDepth > 0 {
		tm.SetMaxDepth(m.MaxDepth)
	}

	for _, prefix := range m.IgnorePrefixes {
		tm.AddMemberNamePrefixToIgnore(prefix)
	}

	for _, inc := range m.Include {
		incSrc, ok := types[inc.Source]
		if !ok {
			return nil, fmt.Errorf("mapping %s: unknown included source type %q", m.Key(), inc.Source)
		}

		incDst, ok := types[inc.Target]
		if !ok {
			return nil, fmt.Errorf("mapping %s: unknown included target type %q", m.Key(), inc.Target)
		}

		tm.IncludeDerivedTypes(incSrc, incDst)
	}

	for i := range m.Members {
		if err := applyMemberRule(tm, m, &m.Members[i], src, dst); err != nil {
			return nil, err
		}
	}

	for _, name := range m.IgnoreSource {
		srcAcc, err := member.ReadableByName(src, name)
		if err != nil {
			return nil, fmt.Errorf("mapping %s: ignore_source: %w", m.Key(), err)
		}

		tm.FindOrCreateSourceMemberConfigFor(srcAcc).Ignore()
	}

	return tm, nil
}

func applyMemberRule(tm *plan.TypeMap, m *Mapping, rule *MemberRule, src, dst reflect.Type) error {
	dest, err := member.FieldByName(dst, rule.Target)
	if err != nil {
		return fmt.Errorf("mapping %s: member %s: %w%s",
			m.Key(), rule.Target, err, suggestion(rule.Target, member.Names(member.Fields(dst))))
	}

	pm := tm.FindOrCreatePropertyMapFor(dest)

	if rule.Ignore {
		pm.Ignore()
		return nil
	}

	if rule.Source != "" {
		chain, err := member.Chain(src, rule.Source)
		if err != nil {
			return fmt.Errorf("mapping %s: member %s: %w", m.Key(), rule.Target, err)
		}

		resolver := plan.NewMemberResolver(chain...)
		pm.AssignCustomResolver(resolver)
		pm.AssignCustomExpression(resolver)
		pm.SetSourceMember(chain[0])
	}

	if rule.Order > 0 {
		pm.SetMappingOrder(rule.Order)
	}

	return nil
}

func suggestType(name string, types TypeSet) string {
	known := make([]string, 0, len(types))
	for k := range types {
		known = append(known, k)
	}

	return suggestion(name, known)
}

func suggestion(name string, known []string) string {
	s := match.Suggest(name, known)
	if s == "" {
		return ""
	}

	return fmt.Sprintf(" (did you mean %q?)", s)
}
