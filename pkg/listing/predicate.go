package listing

import (
	"errors"
	"fmt"
	"strings"
)

// ==================== 过滤字段白名单 ====================

// Operator 比较方式
type Operator int

const (
	// OpEqual 精确匹配
	OpEqual Operator = iota
	// OpContains 大小写不敏感子串匹配，值两侧自动补 %
	OpContains
)

// Column 白名单中的一个可过滤字段
type Column struct {
	Expr string   // SQL 列表达式，如 s.name
	Op   Operator // 比较方式
	Or   []string // 非空时同一个值按 OR 匹配多列（仅用于搜索）
}

// Fields 过滤名 -> 列
type Fields map[string]Column

// Predicate 一个过滤条件
type Predicate struct {
	Field string
	Op    Operator
	Value interface{}
}

// ErrFieldNotAllowed 过滤字段不在白名单中
var ErrFieldNotAllowed = errors.New("listing: filter field not allowed")

// ==================== Builder ====================

// Builder 把过滤条件组装成 AND 连接的参数化 WHERE 片段
// 强制条件 (Require) 总是排在用户过滤条件之前
type Builder struct {
	fields   Fields
	required []requirement
	preds    []Predicate
}

type requirement struct {
	tpl  string
	args []interface{}
}

// Clause Build 的结果
type Clause struct {
	Fragments []string
	Args      []interface{}
}

// NewBuilder 创建 Builder
func NewBuilder(fields Fields) *Builder {
	return &Builder{fields: fields}
}

// Require 追加强制条件，tpl 中的 ? 与 args 一一对应
// 只供代码内部使用（权限范围、搜索），不接受用户输入的 SQL
func (b *Builder) Require(tpl string, args ...interface{}) *Builder {
	b.required = append(b.required, requirement{tpl: tpl, args: args})
	return b
}

// Add 追加一个白名单内的过滤条件
func (b *Builder) Add(field string, value interface{}) error {
	col, ok := b.fields[field]
	if !ok {
		return fmt.Errorf("%w: %s", ErrFieldNotAllowed, field)
	}
	b.preds = append(b.preds, Predicate{Field: field, Op: col.Op, Value: value})
	return nil
}

// AddString 非空字符串才追加
func (b *Builder) AddString(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return b.Add(field, value)
}

// Len 条件总数（含强制条件）
func (b *Builder) Len() int {
	if b == nil {
		return 0
	}
	return len(b.required) + len(b.preds)
}

// Build 渲染条件，占位符从 offset+1 开始编号
func (b *Builder) Build(d Dialect, offset int) Clause {
	bd := newBinder(d, offset)
	return b.build(bd)
}

func (b *Builder) build(bd *binder) Clause {
	if b == nil {
		return Clause{}
	}

	start := len(bd.args)
	frags := make([]string, 0, b.Len())

	for _, r := range b.required {
		frags = append(frags, bd.bind(r.tpl, r.args...))
	}

	for _, p := range b.preds {
		col := b.fields[p.Field]
		frags = append(frags, b.render(bd, col, p))
	}

	args := make([]interface{}, len(bd.args)-start)
	copy(args, bd.args[start:])
	return Clause{Fragments: frags, Args: args}
}

func (b *Builder) render(bd *binder, col Column, p Predicate) string {
	switch p.Op {
	case OpContains:
		pattern := fmt.Sprintf("%%%v%%", p.Value)
		if len(col.Or) == 0 {
			return bd.d.Contains(col.Expr, bd.bind("?", pattern))
		}
		parts := make([]string, len(col.Or))
		for i, expr := range col.Or {
			parts[i] = bd.d.Contains(expr, bd.bind("?", pattern))
		}
		return "(" + strings.Join(parts, " OR ") + ")"
	default:
		return col.Expr + " = " + bd.bind("?", p.Value)
	}
}

// SQL AND 连接后的条件，无条件时为空串
func (c Clause) SQL() string {
	return strings.Join(c.Fragments, " AND ")
}

// Empty 是否没有任何条件
func (c Clause) Empty() bool {
	return len(c.Fragments) == 0
}
