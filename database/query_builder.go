package database

import (
	"fmt"
	"strings"
)

// QueryBuilder helps build WHERE clauses safely. Every value goes through a
// $N placeholder; only column names and operators chosen by this package are
// written into the SQL text.
type QueryBuilder struct {
	conditions []string
	args       []interface{}
	argCount   int
}

func NewQueryBuilder() *QueryBuilder {
	return &QueryBuilder{
		conditions: []string{},
		args:       []interface{}{},
		argCount:   1,
	}
}

// Bind registers value as the next argument and returns its placeholder.
// Use it for values referenced outside the WHERE clause (select list, EXISTS).
func (qb *QueryBuilder) Bind(value interface{}) string {
	placeholder := fmt.Sprintf("$%d", qb.argCount)
	qb.args = append(qb.args, value)
	qb.argCount++
	return placeholder
}

func (qb *QueryBuilder) AddCondition(column string, value interface{}) {
	qb.conditions = append(qb.conditions, fmt.Sprintf("%s = %s", column, qb.Bind(value)))
}

// AddComparison adds `column op $N`; op must be a literal operator such as ">=".
func (qb *QueryBuilder) AddComparison(column, op string, value interface{}) {
	qb.conditions = append(qb.conditions, fmt.Sprintf("%s %s %s", column, op, qb.Bind(value)))
}

// AddIn matches column against any element of values, which must be a slice.
func (qb *QueryBuilder) AddIn(column string, values interface{}) {
	qb.conditions = append(qb.conditions, fmt.Sprintf("%s = ANY(%s)", column, qb.Bind(values)))
}

// AddArrayContains matches rows whose array column has value as an element.
func (qb *QueryBuilder) AddArrayContains(column string, value interface{}) {
	qb.conditions = append(qb.conditions, fmt.Sprintf("%s = ANY(%s)", qb.Bind(value), column))
}

// AddTextSearch ORs a case-insensitive LIKE over scalar columns and over every
// element of array columns. pattern must already be lower-cased and escaped.
func (qb *QueryBuilder) AddTextSearch(pattern string, columns, arrayColumns []string) {
	if len(columns) == 0 && len(arrayColumns) == 0 {
		return
	}

	placeholder := qb.Bind(pattern)
	parts := make([]string, 0, len(columns)+len(arrayColumns))
	for _, column := range columns {
		parts = append(parts, fmt.Sprintf("LOWER(%s) LIKE %s", column, placeholder))
	}
	for _, column := range arrayColumns {
		parts = append(parts, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM unnest(%s) AS tag WHERE LOWER(tag) LIKE %s)", column, placeholder))
	}

	qb.conditions = append(qb.conditions, "("+strings.Join(parts, " OR ")+")")
}

// AddRaw appends a condition that carries no user input of its own.
func (qb *QueryBuilder) AddRaw(condition string) {
	qb.conditions = append(qb.conditions, condition)
}

func (qb *QueryBuilder) WhereClause() string {
	if len(qb.conditions) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(qb.conditions, " AND ")
}

// Args returns a copy of the bound arguments.
func (qb *QueryBuilder) Args() []interface{} {
	args := make([]interface{}, len(qb.args))
	copy(args, qb.args)
	return args
}

func (qb *QueryBuilder) NextArgNum() int {
	return qb.argCount
}

// Helper functions

func validateLimit(limit, defaultLimit, maxLimit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

func validatePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}
