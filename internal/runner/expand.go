package runner

import "strings"

// Substitutions are the values available to tool arguments.
type Substitutions struct {
	// Fixture replaces %s.
	Fixture string

	// Variant replaces %variant.
	Variant string
}

// Expand applies subs to each argument. %% yields a literal %. Unknown
// placeholders are left untouched.
func Expand(args []string, subs Substitutions) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = expandOne(a, subs)
	}
	return out
}

func expandOne(s string, subs Substitutions) string {
	if !strings.Contains(s, "%") {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '%' {
			b.WriteByte(s[i])
			continue
		}
		rest := s[i+1:]
		switch {
		case strings.HasPrefix(rest, "%"):
			b.WriteByte('%')
			i++
		case strings.HasPrefix(rest, "variant"):
			b.WriteString(subs.Variant)
			i += len("variant")
		case strings.HasPrefix(rest, "s"):
			b.WriteString(subs.Fixture)
			i++
		default:
			b.WriteByte('%')
		}
	}
	return b.String()
}
