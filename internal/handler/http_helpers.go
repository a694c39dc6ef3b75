package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ariane/internal/auth"
	"github.com/ariane/internal/entity"
)

// maxUploadSize 限制封面、页面图片和归档的上传大小。
const maxUploadSize = 32 << 20

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, message)
		return false
	}
	return true
}

// respondServiceError 把领域错误映射为 HTTP 状态码，未知错误统一返回 message。
func respondServiceError(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, entity.ErrValidation), errors.Is(err, entity.ErrArchiveFormat):
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, entity.ErrInvalidCredentials):
		respondError(c, http.StatusUnauthorized, "邮箱或密码错误")
	case errors.Is(err, entity.ErrUnauthorized):
		respondError(c, http.StatusUnauthorized, "未授权")
	case errors.Is(err, entity.ErrNotFound):
		respondError(c, http.StatusNotFound, "资源不存在")
	case errors.Is(err, entity.ErrEmailTaken):
		respondError(c, http.StatusConflict, "邮箱已被注册")
	case errors.Is(err, entity.ErrNoContent):
		c.Status(http.StatusNoContent)
	default:
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, message)
	}
}

// requireSelf 确认路径中的 userId 就是令牌持有者。
func requireSelf(c *gin.Context) (string, bool) {
	userID := strings.TrimSpace(c.Param("userId"))
	if userID == "" || userID != auth.UserID(c) {
		respondError(c, http.StatusForbidden, "无权访问该用户的数据")
		return "", false
	}
	return userID, true
}

// readUpload 读取 multipart 字段 field 的全部内容。
func readUpload(c *gin.Context, field string) ([]byte, bool) {
	header, err := c.FormFile(field)
	if err != nil {
		respondError(c, http.StatusBadRequest, fmt.Sprintf("未找到上传字段 %s", field))
		return nil, false
	}
	if header.Size > maxUploadSize {
		respondError(c, http.StatusRequestEntityTooLarge, "上传文件过大")
		return nil, false
	}

	file, err := header.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "无法读取上传文件")
		return nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadSize))
	if err != nil {
		respondError(c, http.StatusBadRequest, "无法读取上传文件")
		return nil, false
	}
	return data, true
}

func currentUser(c *gin.Context) string {
	return auth.UserID(c)
}
