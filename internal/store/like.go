package store

import "strings"

const likeEscapeClause = "ESCAPE '\\'"

var likeEscaper = strings.NewReplacer(
	"\\", "\\\\",
	"%", "\\%",
	"_", "\\_",
)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// likeContains returns a LIKE condition on column with one placeholder.
func likeContains(column string) string {
	return column + " LIKE ? " + likeEscapeClause
}
