// Package directive extracts expectation directives from fixture comments and
// selects the subset that applies to one platform variant.
//
// # Directive Syntax
//
// A directive is a tag followed by a colon and a pattern:
//
//	// CHECK-macosx: attr.swift:[[@LINE-2]]:18: error: methods must have a single argument
//	// CHECK-ios-NOT: attr.swift:[[@LINE-1]]
//
// The tag is <prefix>-<variant>, optionally followed by -NOT to forbid the
// pattern instead of requiring it. The prefix defaults to CHECK. Variants are
// identifiers that may contain interior dashes (ios, macosx, watch-sim).
//
// Patterns are literal text with two kinds of embedded blocks:
//
//   - [[@LINE]], [[@LINE+N]], [[@LINE-N]] resolve to the directive's own line
//     number offset by N. They are resolved once, at extraction time.
//   - {{re}} embeds an RE2 regular expression.
//
// The text before the tag is ignored, so any comment syntax works. Only the
// first tag on a line is considered.
//
// # Ordering
//
// Extract returns directives in file order. Select keeps that order, which the
// matcher relies on: must-match directives of a variant are matched against the
// tool output in the order they were written.
package directive
