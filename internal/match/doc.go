// Package match provides identifier normalization and edit-distance based
// name similarity, used to suggest the closest known name when a profile
// references a member or type that does not exist.
package match
