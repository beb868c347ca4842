package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestQueryBuilder_AddCondition(t *testing.T) {
	qb := NewQueryBuilder()

	qb.AddCondition("p.status", "PUBLISHED")

	assert.Equal(t, "WHERE p.status = $1", qb.WhereClause())
	assert.Equal(t, []interface{}{"PUBLISHED"}, qb.Args())
	assert.Equal(t, 2, qb.NextArgNum())
}

func TestQueryBuilder_MultipleConditions(t *testing.T) {
	qb := NewQueryBuilder()

	qb.AddCondition("p.status", "PUBLISHED")
	qb.AddCondition("p.user_id", "u-1")
	qb.AddComparison("p.ai_match_score", ">=", 70.0)

	assert.Equal(t, "WHERE p.status = $1 AND p.user_id = $2 AND p.ai_match_score >= $3", qb.WhereClause())
	assert.Equal(t, []interface{}{"PUBLISHED", "u-1", 70.0}, qb.Args())
	assert.Equal(t, 4, qb.NextArgNum())
}

func TestQueryBuilder_AddIn(t *testing.T) {
	qb := NewQueryBuilder()

	qb.AddIn("p.status", []string{"DRAFT", "PUBLISHED"})

	assert.Equal(t, "WHERE p.status = ANY($1)", qb.WhereClause())
	assert.Equal(t, []interface{}{[]string{"DRAFT", "PUBLISHED"}}, qb.Args())
}

func TestQueryBuilder_AddArrayContains(t *testing.T) {
	qb := NewQueryBuilder()

	qb.AddArrayContains("p.sdg_tags", "SDG 4")

	assert.Equal(t, "WHERE $1 = ANY(p.sdg_tags)", qb.WhereClause())
	assert.Equal(t, []interface{}{"SDG 4"}, qb.Args())
}

func TestQueryBuilder_AddTextSearch(t *testing.T) {
	qb := NewQueryBuilder()

	qb.AddTextSearch("%react%", []string{"p.title", "u.name"}, []string{"p.tech_tags"})

	where := qb.WhereClause()
	assert.Contains(t, where, "LOWER(p.title) LIKE $1")
	assert.Contains(t, where, "LOWER(u.name) LIKE $1")
	assert.Contains(t, where, "EXISTS (SELECT 1 FROM unnest(p.tech_tags) AS tag WHERE LOWER(tag) LIKE $1)")
	assert.Contains(t, where, " OR ")
	assert.NotContains(t, where, "react", "pattern must be bound, not interpolated")
	assert.Equal(t, []interface{}{"%react%"}, qb.Args(), "one placeholder shared by every column")
}

func TestQueryBuilder_AddTextSearch_NoColumns(t *testing.T) {
	qb := NewQueryBuilder()

	qb.AddTextSearch("%react%", nil, nil)

	assert.Equal(t, "", qb.WhereClause())
	assert.Empty(t, qb.Args())
}

func TestQueryBuilder_Bind(t *testing.T) {
	qb := NewQueryBuilder()

	qb.AddCondition("p.status", "PUBLISHED")
	placeholder := qb.Bind("viewer")

	assert.Equal(t, "$2", placeholder)
	assert.Equal(t, "WHERE p.status = $1", qb.WhereClause(), "Bind does not add a condition")
	assert.Len(t, qb.Args(), 2)
}

func TestQueryBuilder_ArgsIsACopy(t *testing.T) {
	qb := NewQueryBuilder()
	qb.AddCondition("p.status", "PUBLISHED")

	args := qb.Args()
	args[0] = "DRAFT"
	_ = append(args, 10, 20)

	assert.Equal(t, []interface{}{"PUBLISHED"}, qb.Args())
}

func TestQueryBuilder_WhereClause_Empty(t *testing.T) {
	qb := NewQueryBuilder()

	assert.Equal(t, "", qb.WhereClause())
	assert.Empty(t, qb.Args())
}

func TestQueryBuilder_ComplexQuery(t *testing.T) {
	qb := NewQueryBuilder()

	qb.AddIn("p.status", []string{"PUBLISHED"})
	qb.AddCondition("p.user_id", "abc-123")
	qb.AddArrayContains("p.sdg_tags", "SDG 13")
	qb.AddComparison("p.created_at", ">=", time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC))
	qb.AddRaw("p.featured = TRUE")
	qb.AddTextSearch("%climate%", []string{"p.title"}, []string{"p.sdg_tags"})

	whereClause := qb.WhereClause()

	assert.Contains(t, whereClause, "p.status = ANY($1)")
	assert.Contains(t, whereClause, "p.user_id = $2")
	assert.Contains(t, whereClause, "$3 = ANY(p.sdg_tags)")
	assert.Contains(t, whereClause, "p.created_at >= $4")
	assert.Contains(t, whereClause, "p.featured = TRUE")
	assert.Contains(t, whereClause, "LOWER(p.title) LIKE $5")
	assert.Len(t, qb.Args(), 5)
}
