package filters

import (
	"strings"

	"gorm.io/gorm"
)

// ContainsFold matches column values containing needle, ignoring case. LIKE
// wildcards in the needle are escaped so user input is matched literally.
func ContainsFold(column, needle string) func(*gorm.DB) *gorm.DB {
	pattern := ContainsPattern(needle)
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(ContainsClause(column), pattern)
	}
}

// ContainsPattern is the lower-cased, escaped LIKE pattern used by ContainsFold.
func ContainsPattern(needle string) string {
	return "%" + escapeLike(strings.ToLower(strings.TrimSpace(needle))) + "%"
}

// ContainsClause is the SQL fragment ContainsFold applies, for use inside OR groups.
func ContainsClause(column string) string {
	return "LOWER(" + column + ") LIKE ? ESCAPE '\\'"
}

// EqualFold matches column values equal to value, ignoring case.
func EqualFold(column, value string) func(*gorm.DB) *gorm.DB {
	normalized := strings.ToLower(strings.TrimSpace(value))
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("LOWER("+column+") = ?", normalized)
	}
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}
