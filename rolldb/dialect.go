package rolldb

import (
	"fmt"
	"strconv"
	"strings"
)

// LikeEscape is the escape character declared on every generated LIKE.
const LikeEscape = '!'

// Dialect captures the SQL differences between the supported drivers that
// matter to dynamically built queries.
type Dialect struct {
	Name string
	// numbered placeholders ($1, $2, ...) instead of ?
	numbered bool
	likeOp   string
	// collate is appended to a column before LIKE and to join keys so that
	// comparisons ignore case.
	likeCollate string
	joinCollate string
}

var (
	SQLiteDialect = Dialect{
		Name:        "sqlite",
		likeOp:      "LIKE",
		joinCollate: "COLLATE NOCASE",
	}
	MySQLDialect = Dialect{
		Name:        "mysql",
		likeOp:      "LIKE",
		likeCollate: "COLLATE utf8mb4_unicode_ci",
		joinCollate: "COLLATE utf8mb4_unicode_ci",
	}
	PostgresDialect = Dialect{
		Name:     "postgres",
		numbered: true,
		likeOp:   "ILIKE",
	}
)

// DialectFor maps a database/sql driver name to its Dialect.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case "", "sqlite", "sqlite3":
		return SQLiteDialect, nil
	case "mysql":
		return MySQLDialect, nil
	case "pgx", "postgres":
		return PostgresDialect, nil
	default:
		return Dialect{}, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// Placeholder returns the bind marker for the n-th (1-based) argument.
func (d Dialect) Placeholder(n int) string {
	if d.numbered {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// Like renders a case-insensitive LIKE of column against placeholder,
// honouring LikeEscape.
func (d Dialect) Like(column, placeholder string) string {
	col := column
	if d.likeCollate != "" {
		col += " " + d.likeCollate
	}
	return fmt.Sprintf("%s %s %s ESCAPE '%c'", col, d.likeOp, placeholder, LikeEscape)
}

// JoinEq renders an equality used as a join key.
func (d Dialect) JoinEq(left, right string) string {
	if d.joinCollate == "" {
		return left + " = " + right
	}
	return left + " = " + right + " " + d.joinCollate
}

// Rebind rewrites the ? markers of a static query for numbered dialects.
// Static queries never contain a literal question mark.
func (d Dialect) Rebind(query string) string {
	if !d.numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// EscapeLike escapes LIKE metacharacters so user input matches literally.
func EscapeLike(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '%', '_', LikeEscape:
			b.WriteRune(LikeEscape)
		}
		b.WriteRune(r)
	}
	return b.String()
}
