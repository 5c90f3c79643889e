package storage

import "strings"

// LikeEscape is the escape character used in LIKE / ILIKE clauses built
// with ContainsPattern. Queries must declare it with ESCAPE '\'.
const LikeEscape = `\`

var likeReplacer = strings.NewReplacer(
	LikeEscape, LikeEscape+LikeEscape,
	"%", LikeEscape+"%",
	"_", LikeEscape+"_",
)

// ContainsPattern turns a user-supplied substring into a LIKE pattern
// that matches it anywhere in the column. Wildcards in the input are
// matched literally.
func ContainsPattern(s string) string {
	return "%" + likeReplacer.Replace(s) + "%"
}
