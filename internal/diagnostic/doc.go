// Package diagnostic provides structured findings from mapping-plan
// configuration and profile validation.
//
// Key capabilities:
//   - Unmapped member reports
//   - Duplicate / conflicting member rule errors
//   - Profile schema problems with per-pair, per-member context
package diagnostic
