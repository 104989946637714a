// Package util provides common utility functions and constants used across the
// opentunnel application. This package is intentionally kept dependency-free
// (no imports from other internal/* packages) to serve as a shared foundation
// without introducing circular dependencies.
package util

import "strings"

// DefaultString returns the fallback value if v is empty or consists entirely
// of whitespace; otherwise it returns v unchanged.
//
// Examples:
//
//	DefaultString("hello", "world")  → "hello"   // non-empty → kept
//	DefaultString("",      "world")  → "world"   // empty → fallback
//	DefaultString("  ",    "world")  → "world"   // whitespace-only → fallback
func DefaultString(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

// EmptyDash returns "-" if s is empty or consists entirely of whitespace;
// otherwise it returns s unchanged.
//
// Used throughout the CLI and TUI to display a visible placeholder when an
// optional field (such as a tunnel's status or a record's TTL) has no value.
// Showing "-" instead of a blank space keeps table output readable.
func EmptyDash(s string) string {
	return DefaultString(s, "-")
}

// ShortID returns the first 8 runes of an identifier, the conventional short
// form for tunnel and record IDs in list output.
func ShortID(id string) string {
	r := []rune(id)
	if len(r) <= 8 {
		return id
	}
	return string(r[:8])
}

// Truncate shortens s to at most max runes, replacing the tail with ".." when
// trimming occurred. Rune-based so multi-byte record contents don't get cut
// mid-character.
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 2 {
		return string(r[:max])
	}
	return string(r[:max-2]) + ".."
}
