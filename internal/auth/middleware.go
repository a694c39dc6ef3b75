package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// UserIDKey 是中间件写入 gin.Context 的键。
const UserIDKey = "auth.user_id"

// Verifier 校验令牌并返回用户 ID。
type Verifier interface {
	Verify(token string) (string, error)
}

// RequireToken 拒绝没有有效 Bearer 令牌的请求。
func RequireToken(v Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "缺少访问令牌"})
			return
		}

		userID, err := v.Verify(strings.TrimSpace(token))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "访问令牌无效或已过期"})
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// UserID returns the authenticated user id, if any.
func UserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}
