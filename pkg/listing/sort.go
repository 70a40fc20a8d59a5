package listing

import "strings"

// DefaultSortField 默认排序字段
const DefaultSortField = "created_at"

// Sorts 排序白名单
type Sorts struct {
	// Allowed 排序参数 -> SQL 表达式；派生列直接写输出别名
	Allowed map[string]string
	// Default 未命中白名单时使用的字段，为空时取 created_at
	Default string
	// TieBreak 同值时的次序，一般是主键
	TieBreak string
}

// Order ORDER BY 子句
type Order struct {
	Field string
	Terms []string
}

// OrderBy 直接指定排序项
func OrderBy(terms ...string) Order {
	return Order{Terms: terms}
}

// Resolve 校验排序参数
// 未知字段静默回退到默认字段；只有 asc 为升序，其余一律降序
func (s Sorts) Resolve(field, order string) Order {
	def := s.Default
	if def == "" {
		def = DefaultSortField
	}

	expr, ok := s.Allowed[field]
	if !ok {
		field = def
		expr = s.Allowed[def]
	}

	dir := "DESC"
	if strings.EqualFold(strings.TrimSpace(order), "asc") {
		dir = "ASC"
	}

	terms := []string{expr + " " + dir}
	if s.TieBreak != "" && s.TieBreak != expr {
		terms = append(terms, s.TieBreak+" "+dir)
	}
	return Order{Field: field, Terms: terms}
}

// SQL 渲染 ORDER BY，无排序项时为空
func (o Order) SQL() string {
	if len(o.Terms) == 0 {
		return ""
	}
	return "ORDER BY " + strings.Join(o.Terms, ", ")
}
