package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	db "github.com/mlin93/snaplink/db/sqlc"
	"github.com/mlin93/snaplink/internal/auth"
)

const userCacheDuration = time.Hour

func (server *Server) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errResponse(errors.New("请求未包含授权令牌")))
			return
		}

		// 令牌格式是 "Bearer <token>"，解析出 <token> 部分
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errResponse(errors.New("授权令牌格式不正确")))
			return
		}

		claims, err := auth.ValidateAccessToken(parts[1])
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) || errors.Is(err, jwt.ErrTokenNotValidYet) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, errResponse(errors.New("令牌已过期或未激活")))
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, errResponse(errors.New("无效的令牌")))
			return
		}

		userID := claims.UserID
		redisKey := fmt.Sprintf("user:%d", userID)

		// 1. 优先从 Redis 缓存中获取用户信息
		userDataJSON, err := server.rdb.Get(c, redisKey).Result()
		if err == nil {
			var user db.User
			if jsonErr := json.Unmarshal([]byte(userDataJSON), &user); jsonErr == nil {
				c.Set("user", user)
				c.Next()
				return
			}
		}

		if err != nil && err != redis.Nil {
			log.Warn().Err(err).Msg("redis error while getting cached user")
		}

		// 2. 缓存未命中，从数据库中查找
		user, dbErr := server.store.GetUserByID(c, userID)
		if dbErr != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errResponse(errors.New("用户不存在")))
			return
		}

		// 3. 写回缓存，敏感字段不进缓存
		user.PasswordHash = ""
		userDataBytes, _ := json.Marshal(user)
		server.rdb.Set(c, redisKey, userDataBytes, userCacheDuration)

		c.Set("user", user)
		c.Next()
	}
}

// currentUser 取出 AuthMiddleware 放入 Context 的用户
func currentUser(ctx *gin.Context) (db.User, bool) {
	val, ok := ctx.Get("user")
	if !ok {
		return db.User{}, false
	}
	user, ok := val.(db.User)
	return user, ok
}
