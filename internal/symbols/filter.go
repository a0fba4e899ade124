package symbols

import "strings"

// FilterFunc returns true when a symbol should be kept.
type FilterFunc func(string) bool

// Usable rejects symbols that cannot be shown on a card or stored in a score
// line: empty strings and anything with whitespace or commas.
func Usable(symbol string) bool {
	if symbol == "" {
		return false
	}
	return !strings.ContainsAny(symbol, " \t,")
}

// Filter keeps symbols accepted by keep, dropping repeats while preserving order.
func Filter(in []string, keep FilterFunc) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !keep(s) {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
