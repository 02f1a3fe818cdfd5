package repository

import "strings"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern builds a case-insensitive substring pattern for
// `LOWER(col) LIKE ? ESCAPE '\'`. Wildcards in the input match literally.
func likePattern(search string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(search))) + "%"
}

// isAllStatuses reports whether a status filter means "no filter".
func isAllStatuses(status string) bool {
	switch strings.TrimSpace(status) {
	case "", "all", "all_statuses":
		return true
	}
	return false
}
