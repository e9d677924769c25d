package postgres

import "strings"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike escapes LIKE metacharacters so text matches literally.
func escapeLike(text string) string {
	return likeEscaper.Replace(text)
}
