package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	pkgerrors "hrms-lite/backend/pkg/errors"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// ── 通用错误码 ──

const (
	CodeOK              = 0
	CodeValidation      = 10001
	CodeNotFound        = 10002
	CodeConflict        = 10003
	CodeTooManyRequests = 10004
	CodeBodyTooLarge    = 10005
	CodeRouteNotFound   = 10006
	CodeInternal        = 50000
)

// ── 成功响应 ──

// OK 200 成功响应
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeOK,
		Message: "success",
		Data:    data,
	})
}

// Created 201 创建成功
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    CodeOK,
		Message: "success",
		Data:    data,
	})
}

// NoContent 204 无响应体（删除成功）
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// ── 错误响应 ──

// Error 通用错误响应
func Error(c *gin.Context, httpStatus int, code int, message string) {
	c.JSON(httpStatus, Response{
		Code:    code,
		Message: message,
	})
}

// ErrorWithDetails 带详情的错误响应
func ErrorWithDetails(c *gin.Context, httpStatus int, code int, message string, details interface{}) {
	c.JSON(httpStatus, Response{
		Code:    code,
		Message: message,
		Details: details,
	})
}

// ── 常见快捷方式 ──

// NotFound 404
func NotFound(c *gin.Context, code int, message string) {
	Error(c, http.StatusNotFound, code, message)
}

// Conflict 409
func Conflict(c *gin.Context, code int, message string) {
	Error(c, http.StatusConflict, code, message)
}

// ValidationFailed 422，details 为逐字段错误
func ValidationFailed(c *gin.Context, fields []pkgerrors.FieldError) {
	ErrorWithDetails(c, http.StatusUnprocessableEntity, CodeValidation, "Validation failed", fields)
}

// FromError 按业务错误分类输出响应，未分类的错误一律 500
func FromError(c *gin.Context, err error) {
	switch status := pkgerrors.HTTPStatus(err); status {
	case http.StatusNotFound:
		NotFound(c, CodeNotFound, pkgerrors.Message(err))
	case http.StatusConflict:
		Conflict(c, CodeConflict, pkgerrors.Message(err))
	case http.StatusUnprocessableEntity:
		ValidationFailed(c, pkgerrors.Fields(err))
	default:
		InternalError(c)
	}
}

// InternalError 500
func InternalError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, CodeInternal, "Internal server error")
}
