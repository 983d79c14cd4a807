// Package projection computes year-by-year savings, debt and net worth for a
// financial snapshot under one of the fixed strategies.
//
// The engine is pure: it performs no I/O, keeps no state between calls and
// returns bit-identical timelines for identical inputs. Input validation and
// horizon clamping belong to the caller.
package projection
