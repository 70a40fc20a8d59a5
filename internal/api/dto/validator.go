package dto

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// ==================== 自定义校验规则 ====================

const (
	passwordMinLen = 8
	passwordMaxLen = 16

	// passwordSpecials 密码必须包含其中之一
	passwordSpecials = "!@#$%^&*"

	PasswordRuleMessage = "Password must be 8-16 characters, include at least one lowercase letter and one special character (!@#$%^&*)"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail 邮箱格式校验
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidPassword 8-16 位，仅允许字母数字下划线和 !@#$%^&*，至少一个小写字母和一个特殊字符
func ValidPassword(password string) bool {
	if len(password) < passwordMinLen || len(password) > passwordMaxLen {
		return false
	}
	var lower, special bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		default:
			return false
		}
	}
	return lower && special
}

// RegisterValidators 向 gin 的校验引擎注册 password / email_format 规则
// 字段名取 json / form tag，错误信息里出现的是请求字段名
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("binding validator is not go-playground/validator")
	}

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		for _, key := range []string{"json", "form"} {
			name := strings.SplitN(field.Tag.Get(key), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return field.Name
	})

	if err := v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return ValidPassword(fl.Field().String())
	}); err != nil {
		return fmt.Errorf("register password rule: %w", err)
	}
	if err := v.RegisterValidation("email_format", func(fl validator.FieldLevel) bool {
		return ValidEmail(fl.Field().String())
	}); err != nil {
		return fmt.Errorf("register email_format rule: %w", err)
	}
	return nil
}

// ==================== 错误文案 ====================

// FieldMessenger 请求体按字段和规则给出错误文案，返回空串时使用默认文案
type FieldMessenger interface {
	FieldMessage(field, tag string) string
}

// DefaultFieldMessage 通用错误文案
func DefaultFieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s cannot exceed %s characters", field, fe.Param())
	case "email_format":
		return "Invalid email format"
	case "password":
		return PasswordRuleMessage
	case "eqfield":
		return fmt.Sprintf("%s must match %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("Invalid %s", field)
	}
	return fmt.Sprintf("%s is invalid", field)
}

func (r *LoginRequest) FieldMessage(field, tag string) string {
	return "Email and password are required"
}

func (r *RegisterRequest) FieldMessage(field, tag string) string {
	switch {
	case tag == "required":
		return "Name, email, and password are required"
	case field == "name":
		return "Name must be between 2 and 60 characters"
	case field == "address":
		return "Address cannot exceed 400 characters"
	}
	return ""
}

func (r *ChangePasswordRequest) FieldMessage(field, tag string) string {
	switch {
	case tag == "required":
		return "Old password, new password and confirmation are required"
	case tag == "eqfield":
		return "New password and confirmation do not match"
	}
	return ""
}

func (r *CreateUserRequest) FieldMessage(field, tag string) string {
	switch {
	case tag == "required":
		return "Name, email, password, and role are required"
	case field == "role":
		return "Invalid role"
	case field == "name":
		return "Name must be between 2 and 60 characters"
	case field == "address":
		return "Address cannot exceed 400 characters"
	}
	return ""
}

func (r *CreateStoreRequest) FieldMessage(field, tag string) string {
	switch {
	case tag == "required":
		return "Name and address are required"
	case field == "name":
		return "Store name must be between 2 and 100 characters"
	case field == "address":
		return "Address cannot exceed 400 characters"
	}
	return ""
}

func (r *AdminCreateStoreRequest) FieldMessage(field, tag string) string {
	switch {
	case tag == "required":
		return "Name, address, and owner_id are required"
	case field == "name":
		return "Store name must be between 2 and 100 characters"
	case field == "address":
		return "Address cannot exceed 400 characters"
	}
	return ""
}
