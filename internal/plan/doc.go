// Package plan holds the configuration and resolution core of the mapper:
// for each (source, destination) type pair it builds a TypeMap describing
// how every destination member is produced and how the destination instance
// is constructed.
//
// Plan lifecycle:
//  1. Configure — property maps, source member configs, derived-type
//     includes, hooks, and guards accumulate on an open TypeMap; the
//     collections tolerate concurrent registration.
//  2. Inherit — a base TypeMap's resolved mappings, includes, and hooks
//     fold into a derived TypeMap.
//  3. Seal — one-way transition freezing the ordered plan for lock-free,
//     allocation-free reads by the execution engine.
//
// The package never executes mappings; it produces the frozen description
// an external engine runs.
package plan
