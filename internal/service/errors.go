package service

import (
	"errors"
	"fmt"
)

// ErrorKind 错误分类，controller 按分类映射 HTTP 状态码
type ErrorKind int

const (
	KindUnexpected     ErrorKind = iota // 500
	KindValidation                      // 400
	KindAuthentication                  // 401
	KindAuthorization                   // 403
	KindNotFound                        // 404
	KindConflict                        // 409
)

// Error 业务错误，Message 直接返回给调用方
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is 同类同文案视为同一错误，便于 errors.Is 匹配哨兵值
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

func newError(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// ValidationError 参数校验失败
func ValidationError(msg string) *Error {
	return newError(KindValidation, msg)
}

// ConflictError 唯一约束冲突
func ConflictError(msg string, err error) *Error {
	return &Error{Kind: KindConflict, Message: msg, Err: err}
}

// KindOf 取错误分类，非业务错误一律视为 KindUnexpected
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}
