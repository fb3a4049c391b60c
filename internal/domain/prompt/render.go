// Task 3.2: template rendering — conditional regions, then substitution.
package prompt

import "strings"

const (
	condOpen  = "((?"
	condClose = "))"
)

// Render fills template with vars in two passes. Pass one resolves the
// conditional regions; pass two replaces every {{key}} with its value.
// Rendering output that contains no markers is a no-op, so Render is
// idempotent on its own output.
func Render(template string, vars map[string]string) string {
	out := renderConditionals(template, vars)
	for k, v := range vars {
		out = strings.ReplaceAll(out, "{{"+k+"}}", v)
	}
	return out
}

// renderConditionals scans left to right for ((? ... )) regions. A region is
// kept (markers stripped) when at least one {{var}} inside it has a
// non-empty value, otherwise it is removed entirely. Regions do not nest:
// the first closing delimiter ends the region.
func renderConditionals(template string, vars map[string]string) string {
	var b strings.Builder
	rest := template
	for {
		start := strings.Index(rest, condOpen)
		if start < 0 {
			b.WriteString(rest)
			return b.String()
		}
		b.WriteString(rest[:start])

		after := rest[start+len(condOpen):]
		end := strings.Index(after, condClose)
		if end < 0 {
			// Unterminated marker: emit verbatim rather than eat the tail.
			b.WriteString(rest[start:])
			return b.String()
		}

		region := after[:end]
		if regionActive(region, vars) {
			b.WriteString(region)
		}
		rest = after[end+len(condClose):]
	}
}

// regionActive reports whether any placeholder inside region resolves to a
// non-empty value.
func regionActive(region string, vars map[string]string) bool {
	for k, v := range vars {
		if v == "" {
			continue
		}
		if strings.Contains(region, "{{"+k+"}}") {
			return true
		}
	}
	return false
}
