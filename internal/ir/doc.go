// Package ir defines the shared data model of the augmented ε-constraint
// pipeline.
//
// All objective vectors are in maximize-form: natively minimized objectives are
// negated before they reach this package, so "larger is better" holds for
// every component.
//
// Objective identifiers in configuration are 1-based (z1..z_n) to match the
// model formulation; slices in this package are 0-based.
//
// # Canonical Fingerprints
//
// Instances and run configurations are identified by content-addressed
// fingerprints computed from canonical JSON (sorted keys, NFC-normalized
// strings, shortest round-trip floats) hashed with SHA-256 under a domain
// prefix. See canonical.go and hash.go.
package ir
