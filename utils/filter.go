package utils

import (
	"strings"

	"gorm.io/gorm"
)

// Filter is an immutable set of case-insensitive substring constraints
// built from optional query parameters. With* methods return a new value;
// an empty search term adds nothing, so a Filter built only from blank
// parameters is equivalent to an unfiltered query.
type Filter struct {
	clauses []filterClause
}

type filterClause struct {
	column string
	term   string
}

// WithUsername constrains the username column.
func (f Filter) WithUsername(username string) Filter {
	return f.contains("username", username)
}

// WithTagName constrains the tag name column.
func (f Filter) WithTagName(name string) Filter {
	return f.contains("name", name)
}

// WithBlogTitle constrains the blog title column.
func (f Filter) WithBlogTitle(title string) Filter {
	return f.contains("title", title)
}

func (f Filter) contains(column, term string) Filter {
	if term == "" {
		return f
	}
	clauses := make([]filterClause, len(f.clauses), len(f.clauses)+1)
	copy(clauses, f.clauses)
	return Filter{clauses: append(clauses, filterClause{column: column, term: term})}
}

// IsEmpty reports whether no constraint was added.
func (f Filter) IsEmpty() bool {
	return len(f.clauses) == 0
}

// Scope applies the constraints to a gorm query. LOWER on both sides keeps
// the match case-insensitive regardless of column collation.
func (f Filter) Scope() func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		for _, c := range f.clauses {
			q = q.Where("LOWER("+c.column+") LIKE ?", "%"+strings.ToLower(c.term)+"%")
		}
		return q
	}
}
