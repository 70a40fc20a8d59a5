package listing

import "strings"

// Expr 带参数的 SQL 片段，SQL 中每个 ? 对应 Args 中的一个值
type Expr struct {
	SQL  string
	Args []interface{}
}

// Join 关联子句
type Join struct {
	Expr
	// Count 是否也出现在 count 查询中（内连接过滤需要，聚合用的 LEFT JOIN 不需要）
	Count bool
}

// Statement 一条列表查询
// 同一份过滤条件分别渲染出 count 查询与分页查询，参数各自从 1 编号
type Statement struct {
	Dialect Dialect
	Columns []Expr
	From    string
	Joins   []Join
	Where   *Builder
	GroupBy []string
	Order   Order
	Page    Page

	// NoOffset 只截断不分页（搜索接口）
	NoOffset bool
}

// Select 追加投影列
func (st *Statement) Select(cols ...string) *Statement {
	for _, c := range cols {
		st.Columns = append(st.Columns, Expr{SQL: c})
	}
	return st
}

// SelectExpr 追加带参数的投影列（如关联子查询）
func (st *Statement) SelectExpr(sql string, args ...interface{}) *Statement {
	st.Columns = append(st.Columns, Expr{SQL: sql, Args: args})
	return st
}

// Join 追加关联
func (st *Statement) Join(sql string, inCount bool, args ...interface{}) *Statement {
	st.Joins = append(st.Joins, Join{Expr: Expr{SQL: sql, Args: args}, Count: inCount})
	return st
}

// SelectSQL 分页查询：投影参数 -> JOIN 参数 -> WHERE 参数 -> LIMIT/OFFSET
func (st *Statement) SelectSQL() (string, []interface{}) {
	bd := newBinder(st.Dialect, 0)

	cols := make([]string, len(st.Columns))
	for i, c := range st.Columns {
		cols[i] = bd.bind(c.SQL, c.Args...)
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(cols, ", "))
	sb.WriteString(" FROM ")
	sb.WriteString(st.From)

	for _, j := range st.Joins {
		sb.WriteString(" ")
		sb.WriteString(bd.bind(j.SQL, j.Args...))
	}

	if where := st.Where.build(bd); !where.Empty() {
		sb.WriteString(" WHERE ")
		sb.WriteString(where.SQL())
	}

	if len(st.GroupBy) > 0 {
		sb.WriteString(" GROUP BY ")
		sb.WriteString(strings.Join(st.GroupBy, ", "))
	}

	if order := st.Order.SQL(); order != "" {
		sb.WriteString(" ")
		sb.WriteString(order)
	}

	if st.Page.Limit > 0 {
		sb.WriteString(" ")
		if st.NoOffset {
			sb.WriteString(bd.bind("LIMIT ?", st.Page.Limit))
		} else {
			sb.WriteString(bd.bind("LIMIT ? OFFSET ?", st.Page.Limit, st.Page.Offset()))
		}
	}

	return sb.String(), bd.args
}

// CountSQL count 查询：与分页查询使用相同的过滤条件，不带 LIMIT/OFFSET 和聚合
func (st *Statement) CountSQL() (string, []interface{}) {
	bd := newBinder(st.Dialect, 0)

	var sb strings.Builder
	sb.WriteString("SELECT COUNT(*) FROM ")
	sb.WriteString(st.From)

	for _, j := range st.Joins {
		if !j.Count {
			continue
		}
		sb.WriteString(" ")
		sb.WriteString(bd.bind(j.SQL, j.Args...))
	}

	if where := st.Where.build(bd); !where.Empty() {
		sb.WriteString(" WHERE ")
		sb.WriteString(where.SQL())
	}

	return sb.String(), bd.args
}
