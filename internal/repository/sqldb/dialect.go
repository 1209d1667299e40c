// Package sqldb holds the database/sql implementations of the storage ports.
// Queries are written with ? placeholders; a Dialect adapts them to the driver
// and classifies constraint errors.
package sqldb

import (
	"strconv"
	"strings"
)

// Dialect describes the driver-specific parts of the SQL repositories.
type Dialect struct {
	// Numbered rewrites ? placeholders to $1, $2, ... before execution.
	Numbered bool
	// UniqueViolation reports whether err is a unique constraint violation.
	UniqueViolation func(err error) bool
	// ForeignKeyViolation reports whether err is a foreign key violation.
	ForeignKeyViolation func(err error) bool
}

// Rebind adapts a ?-placeholder query to the dialect.
func (d Dialect) Rebind(query string) string {
	if !d.Numbered {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

func (d Dialect) isUnique(err error) bool {
	return err != nil && d.UniqueViolation != nil && d.UniqueViolation(err)
}

func (d Dialect) isForeignKey(err error) bool {
	return err != nil && d.ForeignKeyViolation != nil && d.ForeignKeyViolation(err)
}

// placeholders returns "?, ?, ?" for n arguments.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// likePattern builds a case-insensitive substring pattern for use with ESCAPE '\'.
func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(q)) + "%"
}
