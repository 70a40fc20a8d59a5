package listing

import (
	"strconv"
	"strings"

	"gorm.io/gorm"
)

// ==================== 方言 ====================

// Dialect 数据库方言
// 只关心列表查询用到的两处差异：占位符与大小写不敏感匹配
type Dialect struct {
	Name string

	// Placeholder 第 n 个参数的占位符，n 从 1 开始
	Placeholder func(n int) string

	// Contains 大小写不敏感的子串匹配
	Contains func(column, placeholder string) string

	// FullText 是否支持 to_tsvector / ts_rank_cd
	FullText bool
}

// Postgres 生产环境方言
var Postgres = Dialect{
	Name:        "postgres",
	Placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
	Contains: func(column, placeholder string) string {
		return column + " ILIKE " + placeholder
	},
	FullText: true,
}

// SQLite 本地开发 / 测试方言
var SQLite = Dialect{
	Name:        "sqlite",
	Placeholder: func(int) string { return "?" },
	Contains: func(column, placeholder string) string {
		return "LOWER(" + column + ") LIKE LOWER(" + placeholder + ")"
	},
}

// DialectOf 根据 gorm 连接选择方言
func DialectOf(db *gorm.DB) Dialect {
	if db != nil && db.Dialector != nil && db.Dialector.Name() == "postgres" {
		return Postgres
	}
	return SQLite
}

// ==================== 参数绑定 ====================

// binder 按顺序渲染占位符并收集参数
type binder struct {
	d    Dialect
	n    int
	args []interface{}
}

func newBinder(d Dialect, offset int) *binder {
	return &binder{d: d, n: offset}
}

// bind 把模板中的每个 ? 替换成方言占位符，args 与 ? 一一对应
func (b *binder) bind(tpl string, args ...interface{}) string {
	if len(args) == 0 {
		return tpl
	}

	var sb strings.Builder
	i := 0
	for _, r := range tpl {
		if r == '?' && i < len(args) {
			b.n++
			sb.WriteString(b.d.Placeholder(b.n))
			b.args = append(b.args, args[i])
			i++
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

