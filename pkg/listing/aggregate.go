package listing

import "fmt"

// Average 评分均值派生列
// 通过 LEFT JOIN 关联指定状态的评分行，输出 COALESCE(ROUND(AVG(score), 2), 0)
type Average struct {
	Base       string // 主表主键，如 s.id
	Table      string // 评分表
	Alias      string // 评分表别名
	ForeignKey string // 评分表指向主表的外键
	Score      string // 分数列
	Status     string // 状态列
	Active     string // 参与计算的状态值
	As         string // 输出别名

	// CountAs 非空时额外输出评分条数
	CountAs  string
	CountKey string

	// GroupBy 需要一并分组的非主表列，如关联出的店主名
	GroupBy []string
}

// WithCount 同时输出评分条数
func (a Average) WithCount(as string) Average {
	a.CountAs = as
	if a.CountKey == "" {
		a.CountKey = "rating_id"
	}
	return a
}

// WithGroupBy 追加分组列
func (a Average) WithGroupBy(cols ...string) Average {
	a.GroupBy = append(append([]string{}, a.GroupBy...), cols...)
	return a
}

// Apply 扩展查询：追加投影、LEFT JOIN 和 GROUP BY
// 连接条件里的状态值作为参数，编号排在 WHERE 之前；count 查询不带这个 JOIN
func (a Average) Apply(st *Statement) {
	st.Columns = append(st.Columns, Expr{
		SQL: fmt.Sprintf("COALESCE(ROUND(AVG(%s.%s), 2), 0) AS %s", a.Alias, a.Score, a.As),
	})
	if a.CountAs != "" {
		st.Columns = append(st.Columns, Expr{
			SQL: fmt.Sprintf("COUNT(%s.%s) AS %s", a.Alias, a.CountKey, a.CountAs),
		})
	}

	st.Joins = append(st.Joins, Join{
		Expr: Expr{
			SQL: fmt.Sprintf("LEFT JOIN %s %s ON %s.%s = %s AND %s.%s = ?",
				a.Table, a.Alias, a.Alias, a.ForeignKey, a.Base, a.Alias, a.Status),
			Args: []interface{}{a.Active},
		},
	})

	st.GroupBy = append(st.GroupBy, a.Base)
	st.GroupBy = append(st.GroupBy, a.GroupBy...)
}
