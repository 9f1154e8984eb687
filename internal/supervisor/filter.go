// internal/supervisor/filter.go
package supervisor

import "strings"

// Candidates keeps the names containing any marker, case-insensitively.
// Input order is preserved; it is the activation order.
func Candidates(names, markers []string) []string {
	if len(names) == 0 || len(markers) == 0 {
		return nil
	}

	folded := make([]string, 0, len(markers))
	for _, m := range markers {
		if m = strings.ToLower(strings.TrimSpace(m)); m != "" {
			folded = append(folded, m)
		}
	}

	var out []string
	for _, n := range names {
		ln := strings.ToLower(n)
		for _, m := range folded {
			if strings.Contains(ln, m) {
				out = append(out, n)
				break
			}
		}
	}
	return out
}
