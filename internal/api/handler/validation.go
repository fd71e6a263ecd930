package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"hrms-lite/backend/internal/model"
	pkgerrors "hrms-lite/backend/pkg/errors"
	"hrms-lite/backend/pkg/response"
)

var registerOnce sync.Once

// RegisterValidators 在 gin 的校验引擎上注册自定义规则，并让错误字段名使用 json/form 标签
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return fld.Name
		})
		_ = v.RegisterValidation("notblank", validators.NotBlank)
		_ = v.RegisterValidation("attstatus", func(fl validator.FieldLevel) bool {
			return model.AttendanceStatus(fl.Field().String()).Valid()
		})
	})
}

// bindJSON 绑定请求体，失败时写入 422 并返回 false
func bindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, http.StatusRequestEntityTooLarge, response.CodeBodyTooLarge, "Request body too large")
			return false
		}
		response.ValidationFailed(c, fieldErrors(err))
		return false
	}
	return true
}

// bindQuery 绑定 query 参数，失败时写入 422 并返回 false
func bindQuery(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		response.ValidationFailed(c, fieldErrors(err))
		return false
	}
	return true
}

// fieldErrors 将绑定错误转换为逐字段详情
func fieldErrors(err error) []pkgerrors.FieldError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make([]pkgerrors.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			out = append(out, pkgerrors.FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
		}
		return out
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return []pkgerrors.FieldError{{Field: typeErr.Field, Message: "Invalid type, expected " + typeErr.Type.String()}}
	}

	return []pkgerrors.FieldError{{Field: "body", Message: "Invalid request body"}}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Field required"
	case "notblank":
		return "Field cannot be empty or whitespace"
	case "email":
		return "Invalid email address"
	case "max":
		return fmt.Sprintf("Must be at most %s characters", fe.Param())
	case "min":
		return fmt.Sprintf("Must be at least %s", fe.Param())
	case "oneof", "attstatus":
		return "Status must be one of: Present, Absent"
	case "datetime":
		return "Invalid date format, expected YYYY-MM-DD"
	default:
		return "Invalid value"
	}
}
