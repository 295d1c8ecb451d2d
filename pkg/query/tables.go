package query

import (
	"regexp"
)

// placeholderRe matches a symbolic table reference such as {users}
var placeholderRe = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Tables resolves symbolic table names to prefixed real table names
type Tables struct {
	Prefix string
}

// Name returns the real name of a logical table
func (t Tables) Name(table string) string {
	return t.Prefix + table
}

// Placeholder returns the symbolic reference for a logical table
func Placeholder(table string) string {
	return "{" + table + "}"
}

// Substitute replaces every {name} placeholder in sql with the prefixed table name.
// Repeated placeholders resolve identically.
func (t Tables) Substitute(sql string) string {
	return placeholderRe.ReplaceAllStringFunc(sql, func(match string) string {
		return t.Name(match[1 : len(match)-1])
	})
}

// Referenced returns the distinct logical tables a statement refers to, in order of first use
func Referenced(sql string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range placeholderRe.FindAllStringSubmatch(sql, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			out = append(out, m[1])
		}
	}
	return out
}
