package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"store_rating_v1/internal/api/dto"
	"store_rating_v1/internal/middleware"
	"store_rating_v1/internal/service"
)

// MsgInternalError 未分类错误统一文案
const MsgInternalError = "Internal server error"

var kindStatus = map[service.ErrorKind]int{
	service.KindValidation:     http.StatusBadRequest,
	service.KindAuthentication: http.StatusUnauthorized,
	service.KindAuthorization:  http.StatusForbidden,
	service.KindNotFound:       http.StatusNotFound,
	service.KindConflict:       http.StatusConflict,
}

// respondError 业务错误按分类映射状态码，其他错误记录日志后返回 500
func respondError(c *gin.Context, log *zap.Logger, err error) {
	var se *service.Error
	if errors.As(err, &se) {
		if status, ok := kindStatus[se.Kind]; ok {
			c.JSON(status, dto.MessageResponse{Message: se.Message})
			return
		}
	}

	if log == nil {
		log = zap.NewNop()
	}
	log.Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.String("request_id", middleware.GetRequestID(c)),
		zap.Error(err),
	)
	c.JSON(http.StatusInternalServerError, dto.MessageResponse{Message: MsgInternalError})
}

// bindJSON 绑定请求体，失败时直接写 400 并返回 false
// 空请求体按零值校验，缺字段时给出与字段缺失一致的文案
func bindJSON(c *gin.Context, obj any) bool {
	err := c.ShouldBindJSON(obj)
	if errors.Is(err, io.EOF) {
		err = binding.Validator.ValidateStruct(obj)
	}
	if err == nil {
		return true
	}
	c.JSON(http.StatusBadRequest, dto.MessageResponse{Message: bindingMessage(obj, err)})
	return false
}

// bindQuery 绑定查询参数
func bindQuery(c *gin.Context, obj any) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		c.JSON(http.StatusBadRequest, dto.MessageResponse{Message: bindingMessage(obj, err)})
		return false
	}
	return true
}

func bindingMessage(obj any, err error) string {
	var ves validator.ValidationErrors
	if errors.As(err, &ves) && len(ves) > 0 {
		fe := ves[0]
		if m, ok := obj.(dto.FieldMessenger); ok {
			if msg := m.FieldMessage(fe.Field(), fe.Tag()); msg != "" {
				return msg
			}
		}
		return dto.DefaultFieldMessage(fe)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return fmt.Sprintf("%s is invalid", typeErr.Field)
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) || errors.Is(err, io.ErrUnexpectedEOF) {
		return "Invalid JSON body"
	}
	return "Invalid request"
}

// pathID 解析路径中的 id，非法时返回 0 由 service 给出对应的错误文案
func pathID(c *gin.Context, name string) int64 {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
