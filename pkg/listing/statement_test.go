package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAverage = Average{
	Base:       "s.id",
	Table:      "ratings",
	Alias:      "r",
	ForeignKey: "store_id",
	Score:      "score",
	Status:     "status",
	Active:     "active",
	As:         "average_rating",
}

var testStoreSorts = Sorts{
	Allowed: map[string]string{
		"name":           "s.name",
		"average_rating": "average_rating",
		"created_at":     "s.created_at",
	},
	TieBreak: "s.id",
}

func newTestStoreStatement(d Dialect) *Statement {
	st := &Statement{Dialect: d, From: "stores s"}
	st.Select("s.id", "s.name")
	st.SelectExpr("(SELECT ur.score FROM ratings ur WHERE ur.store_id = s.id AND ur.user_id = ? AND ur.status = 'active') AS user_rating", int64(42))
	testAverage.Apply(st)

	st.Where = NewBuilder(Fields{"name": {Expr: "s.name", Op: OpContains}})
	return st
}

func TestStatement_SelectSQL_NumbersAcrossPieces(t *testing.T) {
	st := newTestStoreStatement(Postgres)
	require.NoError(t, st.Where.Add("name", "pi"))
	st.Order = testStoreSorts.Resolve("average_rating", "asc")
	st.Page = Page{Number: 2, Limit: 5}

	sql, args := st.SelectSQL()

	want := "SELECT s.id, s.name, " +
		"(SELECT ur.score FROM ratings ur WHERE ur.store_id = s.id AND ur.user_id = $1 AND ur.status = 'active') AS user_rating, " +
		"COALESCE(ROUND(AVG(r.score), 2), 0) AS average_rating " +
		"FROM stores s LEFT JOIN ratings r ON r.store_id = s.id AND r.status = $2 " +
		"WHERE s.name ILIKE $3 GROUP BY s.id ORDER BY average_rating ASC, s.id ASC LIMIT $4 OFFSET $5"
	assert.Equal(t, want, sql)
	assert.Equal(t, []interface{}{int64(42), "active", "%pi%", 5, 5}, args)
}

func TestStatement_CountSQL_SameFiltersWithoutPaging(t *testing.T) {
	st := newTestStoreStatement(Postgres)
	require.NoError(t, st.Where.Add("name", "pi"))
	st.Page = Page{Number: 3, Limit: 20}

	sql, args := st.CountSQL()

	assert.Equal(t, "SELECT COUNT(*) FROM stores s WHERE s.name ILIKE $1", sql)
	assert.Equal(t, []interface{}{"%pi%"}, args)
}

func TestStatement_CountSQL_KeepsFilteringJoins(t *testing.T) {
	st := &Statement{Dialect: Postgres, From: "ratings r"}
	st.Select("r.rating_id", "s.name AS store_name")
	st.Join("JOIN stores s ON s.id = r.store_id", true)
	st.Join("LEFT JOIN users u ON u.id = r.user_id", false)
	st.Where = NewBuilder(Fields{"status": {Expr: "r.status", Op: OpEqual}})
	st.Where.Require("s.owner_id = ?", int64(9))
	require.NoError(t, st.Where.Add("status", "pending"))

	sql, args := st.CountSQL()

	assert.Equal(t, "SELECT COUNT(*) FROM ratings r JOIN stores s ON s.id = r.store_id WHERE s.owner_id = $1 AND r.status = $2", sql)
	assert.Equal(t, []interface{}{int64(9), "pending"}, args)
}

func TestStatement_NoWhereNoGroup(t *testing.T) {
	st := &Statement{Dialect: SQLite, From: "users u"}
	st.Select("u.id")
	st.Order = OrderBy("u.id DESC")
	st.Page = Page{Number: 1, Limit: 10}

	sql, args := st.SelectSQL()
	assert.Equal(t, "SELECT u.id FROM users u ORDER BY u.id DESC LIMIT ? OFFSET ?", sql)
	assert.Equal(t, []interface{}{10, 0}, args)

	countSQL, countArgs := st.CountSQL()
	assert.Equal(t, "SELECT COUNT(*) FROM users u", countSQL)
	assert.Empty(t, countArgs)
}

func TestStatement_NoOffset(t *testing.T) {
	st := &Statement{Dialect: Postgres, From: "users u", NoOffset: true}
	st.Select("u.id")
	st.Page = Page{Number: 1, Limit: 50}

	sql, args := st.SelectSQL()
	assert.Equal(t, "SELECT u.id FROM users u LIMIT $1", sql)
	assert.Equal(t, []interface{}{50}, args)
}

func TestAverage_WithCountAndGroupBy(t *testing.T) {
	st := &Statement{Dialect: Postgres, From: "stores s"}
	st.Select("s.id", "u.name AS owner_name")
	st.Join("JOIN users u ON u.id = s.owner_id", true)
	testAverage.WithCount("total_ratings_count").WithGroupBy("u.name").Apply(st)

	sql, args := st.SelectSQL()

	assert.Equal(t, "SELECT s.id, u.name AS owner_name, "+
		"COALESCE(ROUND(AVG(r.score), 2), 0) AS average_rating, COUNT(r.rating_id) AS total_ratings_count "+
		"FROM stores s JOIN users u ON u.id = s.owner_id "+
		"LEFT JOIN ratings r ON r.store_id = s.id AND r.status = $1 GROUP BY s.id, u.name", sql)
	assert.Equal(t, []interface{}{"active"}, args)
	assert.Empty(t, testAverage.GroupBy, "WithGroupBy 不应修改原值")
}
