package directive

// Select returns the directives belonging to variant, in their original order.
// An unknown variant yields an empty (non-nil) slice.
func Select(ds []Directive, variant string) []Directive {
	out := make([]Directive, 0, len(ds))
	for _, d := range ds {
		if d.Variant == variant {
			out = append(out, d)
		}
	}
	return out
}

// Variants returns the distinct variants in order of first appearance.
func Variants(ds []Directive) []string {
	seen := make(map[string]bool)
	var out []string
	for _, d := range ds {
		if seen[d.Variant] {
			continue
		}
		seen[d.Variant] = true
		out = append(out, d.Variant)
	}
	return out
}

// Count returns the number of must-match and must-not-match directives.
func Count(ds []Directive) (match, not int) {
	for _, d := range ds {
		if d.Polarity == MustNotMatch {
			not++
		} else {
			match++
		}
	}
	return match, not
}
