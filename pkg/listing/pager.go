package listing

import (
	"encoding/json"
	"strconv"
	"strings"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10

	// MaxLimit 每页上限，超出时按上限取
	MaxLimit = 100
	// MaxPage 页码上限，保证 (page-1)*limit 不溢出
	MaxPage = 1_000_000
)

// Page 页码与每页数量
type Page struct {
	Number int
	Limit  int
}

// ParsePage 解析查询参数中的 page / limit
// 解析失败或小于 1 时使用默认值，超出上限时取上限
func ParsePage(page, limit string) Page {
	return Page{
		Number: atoiOr(page, DefaultPage),
		Limit:  atoiOr(limit, DefaultLimit),
	}.clamp()
}

// clamp 把页码和每页数量限制在 [1, MaxPage] 与 [1, MaxLimit]
func (p Page) clamp() Page {
	p.Number = min(max(p.Number, 1), MaxPage)
	p.Limit = min(max(p.Limit, 1), MaxLimit)
	return p
}

func atoiOr(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return def
	}
	return n
}

// Offset (page-1) * limit
func (p Page) Offset() int {
	p = p.clamp()
	return (p.Number - 1) * p.Limit
}

// Paginate 根据总数计算分页信息，key 为响应中总数字段名，如 totalUsers
func (p Page) Paginate(total int64, key string) Pagination {
	p = p.clamp()
	var pages int
	if total > 0 {
		pages = int((total-1)/int64(p.Limit) + 1)
	}
	return Pagination{
		CurrentPage: p.Number,
		TotalPages:  pages,
		Total:       total,
		HasNext:     p.Number < pages,
		HasPrev:     p.Number > 1,
		TotalKey:    key,
	}
}

// Pagination 分页信息
type Pagination struct {
	CurrentPage int
	TotalPages  int
	Total       int64
	HasNext     bool
	HasPrev     bool

	// TotalKey 序列化时总数字段的名字
	TotalKey string
}

// MarshalJSON {currentPage, totalPages, total<Entity>, hasNext, hasPrev}
func (p Pagination) MarshalJSON() ([]byte, error) {
	key := p.TotalKey
	if key == "" {
		key = "total"
	}
	return json.Marshal(map[string]interface{}{
		"currentPage": p.CurrentPage,
		"totalPages":  p.TotalPages,
		key:           p.Total,
		"hasNext":     p.HasNext,
		"hasPrev":     p.HasPrev,
	})
}
