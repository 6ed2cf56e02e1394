package user

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// IdentityKey 是解析后的身份在Gin上下文中的键名
const IdentityKey = "identity"

// LoadIdentityMiddleware 从Authorization头解析调用者身份并放入Gin上下文。
// 任何形式的无效令牌都解析为匿名占位身份，请求继续执行。
func LoadIdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := bearerToken(c.GetHeader("Authorization"))
		c.Set(IdentityKey, ResolveIdentity(tokenStr))
		c.Next()
	}
}

// IdentityFromContext 读取中间件放入上下文的身份。
// 中间件未运行时返回匿名占位身份。
func IdentityFromContext(c *gin.Context) Identity {
	value, exists := c.Get(IdentityKey)
	if !exists {
		return Identity{}
	}
	identity, ok := value.(Identity)
	if !ok {
		return Identity{}
	}
	return identity
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if strings.HasPrefix(header, prefix) {
		return strings.TrimPrefix(header, prefix)
	}
	return ""
}
