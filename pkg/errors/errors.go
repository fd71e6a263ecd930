// Package errors 定义跨层共享的业务错误分类。
//
// Service 层返回的错误通过 Kind 归类为 NotFound / Conflict / Validation，
// Handler 层据此映射 HTTP 状态码，并使用 Message 作为面向客户端的提示。
package errors

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

// ── 错误分类 ──

var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrValidation = errors.New("validation failed")
)

// FieldError 单个字段的校验失败详情
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error 携带分类、客户端提示与原始原因的业务错误
type Error struct {
	Kind    error
	Message string
	Cause   error
	Fields  []FieldError
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is 使 errors.Is(err, ErrNotFound) 等分类判断成立
func (e *Error) Is(target error) bool {
	return e.Kind == target
}

func newError(kind, cause error, format string, args ...interface{}) error {
	return errors.WithStackDepth(&Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}, 2)
}

// NotFound 引用的实体不存在；cause 通常是 Service 层的哨兵错误
func NotFound(cause error, format string, args ...interface{}) error {
	return newError(ErrNotFound, cause, format, args...)
}

// Conflict 唯一性或重复记录冲突
func Conflict(cause error, format string, args ...interface{}) error {
	return newError(ErrConflict, cause, format, args...)
}

// Validation 字段校验失败，fields 为逐字段详情
func Validation(fields ...FieldError) error {
	return errors.WithStackDepth(&Error{
		Kind:    ErrValidation,
		Message: "Validation failed",
		Fields:  fields,
	}, 1)
}

// Message 返回面向客户端的提示；非业务错误返回空串
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return ""
}

// Fields 返回校验错误的字段详情
func Fields(err error) []FieldError {
	var e *Error
	if errors.As(err, &e) {
		return e.Fields
	}
	return nil
}

// HTTPStatus 将错误分类映射为 HTTP 状态码
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrValidation):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
